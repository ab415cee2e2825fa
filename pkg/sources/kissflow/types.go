package kissflow

// User is a Kissflow account user.
type User struct {
	ID       string `json:"_id"`
	Name     string `json:"Name"`
	Email    string `json:"Email"`
	UserType string `json:"UserType,omitempty"` // Admin, Member, Light
	Status   string `json:"Status,omitempty"`   // Active, Deactivated
}

// Group is a Kissflow user group.
type Group struct {
	ID          string `json:"_id"`
	Name        string `json:"Name"`
	Description string `json:"Description,omitempty"`
}

// Process is one flow in the process list.
type Process struct {
	ID          string `json:"Id"`
	Name        string `json:"Name"`
	Description string `json:"Description,omitempty"`
}

// Field is a process form field definition.
type Field struct {
	ID       string   `json:"Id"`
	Name     string   `json:"Name"`
	Type     string   `json:"Type"` // Text, TextArea, Dropdown, Checklist, ...
	Required bool     `json:"Required,omitempty"`
	Values   []string `json:"Values,omitempty"` // Choices of Dropdown/Checklist/RadioButton
}

// WorkflowStep is one step of a process workflow.
type WorkflowStep struct {
	ID   string `json:"Id"`
	Name string `json:"Name"`
	Type string `json:"Type"` // Input, Approval, Task
}

// ProcessDetail is a process with its full form and workflow definition.
type ProcessDetail struct {
	ID          string         `json:"Id"`
	Name        string         `json:"Name"`
	Description string         `json:"Description,omitempty"`
	Fields      []Field        `json:"Fields,omitempty"`
	Steps       []WorkflowStep `json:"Steps,omitempty"`
}

// Item is a raw process item. Form values arrive as top-level keys next to
// the underscore-prefixed system fields.
type Item map[string]any
