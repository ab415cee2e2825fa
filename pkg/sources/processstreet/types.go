package processstreet

// User is a Process Street organization user.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role,omitempty"` // Admin, Member, Guest
}

// Group is a Process Street group.
type Group struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Workflow is one workflow in the organization listing.
type Workflow struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// TaskTemplate is one task of a workflow definition.
type TaskTemplate struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"` // Standard, Approval
}

// FormField is a form field of a workflow. Fields attached to a task carry
// its id; the rest belong to the kickoff form.
type FormField struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Type     string   `json:"type"` // Text, Textarea, Select, MultiChoice, ...
	Required bool     `json:"required,omitempty"`
	TaskID   string   `json:"taskId,omitempty"`
	Options  []string `json:"options,omitempty"`
}

// WorkflowDetail is a workflow with its full definition.
type WorkflowDetail struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Tasks       []TaskTemplate `json:"tasks,omitempty"`
	FormFields  []FormField    `json:"formFields,omitempty"`
}

// WorkflowRun is a running or finished copy of a workflow.
type WorkflowRun struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	WorkflowID string `json:"workflowId"`
	Status     string `json:"status"` // Active, Completed, Archived
	CreatedAt  string `json:"createdAt,omitempty"`
	CreatedBy  *User  `json:"createdBy,omitempty"`
}

// RunTask is the state of one task inside a workflow run.
type RunTask struct {
	ID             string `json:"id"`
	TaskTemplateID string `json:"taskTemplateId"`
	Name           string `json:"name"`
	Status         string `json:"status"` // Completed, NotCompleted
	CompletedDate  string `json:"completedDate,omitempty"`
	CompletedBy    *User  `json:"completedBy,omitempty"`
}

// FormFieldValue is one filled form value inside a workflow run.
type FormFieldValue struct {
	FormFieldID string `json:"formFieldId"`
	Label       string `json:"label,omitempty"`
	Value       any    `json:"value,omitempty"`
}
