package clickup

// User is a ClickUp account.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	// Role within the workspace: 1 owner, 2 admin, 3 member, 4 guest.
	Role int `json:"role,omitempty"`
}

// TeamMember wraps a user inside a workspace member list.
type TeamMember struct {
	User User `json:"user"`
}

// Team is a ClickUp workspace.
type Team struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Members []TeamMember `json:"members"`
}

// Group is a ClickUp user group.
type Group struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Members []User `json:"members"`
}

// Space is a top-level container inside a workspace.
type Space struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Folder groups lists inside a space.
type Folder struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Lists []List `json:"lists"`
}

// List is a ClickUp list, migrated as a template.
type List struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Content string `json:"content,omitempty"`
}

// Status is the workflow status of a task.
type Status struct {
	Status string `json:"status"`
}

// Task is a single task inside a list.
type Task struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Status      Status `json:"status"`
	Assignees   []User `json:"assignees,omitempty"`
	DueDate     string `json:"due_date,omitempty"` // epoch milliseconds
}

// FieldOption is one choice of a drop-down or label field.
type FieldOption struct {
	Name  string `json:"name,omitempty"`
	Label string `json:"label,omitempty"`
}

// FieldTypeConfig carries the per-type settings of a custom field.
type FieldTypeConfig struct {
	Options []FieldOption `json:"options,omitempty"`
}

// Field is a custom field definition.
type Field struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Type       string          `json:"type"` // short_text, text, drop_down, labels, date, users, ...
	TypeConfig FieldTypeConfig `json:"type_config"`
}

// optionName prefers the drop-down name and falls back to the label form
// used by label fields.
func (o FieldOption) optionName() string {
	if o.Name != "" {
		return o.Name
	}

	return o.Label
}
