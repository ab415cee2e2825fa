package asana

// User is an Asana workspace member.
type User struct {
	GID   string `json:"gid"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Workspace is an Asana workspace or organization.
type Workspace struct {
	GID            string `json:"gid"`
	Name           string `json:"name"`
	IsOrganization bool   `json:"is_organization"`
}

// Team is a team inside an organization workspace.
type Team struct {
	GID  string `json:"gid"`
	Name string `json:"name"`
}

// EnumOption is one choice of an enum custom field.
type EnumOption struct {
	Name string `json:"name"`
}

// CustomField is a project-level custom field definition.
type CustomField struct {
	GID         string       `json:"gid"`
	Name        string       `json:"name"`
	Type        string       `json:"type"` // text, number, enum, multi_enum, date, people
	EnumOptions []EnumOption `json:"enum_options,omitempty"`
}

// CustomFieldSetting attaches a custom field to a project.
type CustomFieldSetting struct {
	CustomField CustomField `json:"custom_field"`
}

// Project is an Asana project, migrated as a template.
type Project struct {
	GID                 string               `json:"gid"`
	Name                string               `json:"name"`
	Notes               string               `json:"notes"`
	Archived            bool                 `json:"archived"`
	Team                *Team                `json:"team,omitempty"`
	CustomFieldSettings []CustomFieldSetting `json:"custom_field_settings,omitempty"`
}

// Task is a single task inside a project.
type Task struct {
	GID             string `json:"gid"`
	Name            string `json:"name"`
	Notes           string `json:"notes"`
	Completed       bool   `json:"completed"`
	ResourceSubtype string `json:"resource_subtype"` // default_task, approval, milestone
	Assignee        *User  `json:"assignee,omitempty"`
	DueOn           string `json:"due_on,omitempty"`
}
