package rocketlane

// User is a Rocketlane workspace user. Customers are external collaborators.
type User struct {
	UserID    int64  `json:"userId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Type      string `json:"type,omitempty"` // TEAM_MEMBER, CUSTOMER
}

// Template is a Rocketlane project template.
type Template struct {
	TemplateID   int64  `json:"templateId"`
	TemplateName string `json:"templateName"`
	Description  string `json:"description,omitempty"`
}

// Task is one task of a project template.
type Task struct {
	TaskID          int64  `json:"taskId"`
	TaskName        string `json:"taskName"`
	TaskDescription string `json:"taskDescription,omitempty"`
	Assignees       []User `json:"assignees,omitempty"`
	DueDate         string `json:"dueDate,omitempty"`
}

// ProjectStatus is the lifecycle label of a project.
type ProjectStatus struct {
	Label string `json:"label"`
}

// Project is a Rocketlane project, migrated as an instance of its template.
type Project struct {
	ProjectID   int64         `json:"projectId"`
	ProjectName string        `json:"projectName"`
	TemplateID  int64         `json:"templateId,omitempty"`
	Status      ProjectStatus `json:"status"`
	Owner       *User         `json:"owner,omitempty"`
	CreatedAt   int64         `json:"createdAt,omitempty"` // epoch milliseconds
}
