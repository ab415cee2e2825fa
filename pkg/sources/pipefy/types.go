package pipefy

// User is a Pipefy account.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Organization is a Pipefy organization.
type Organization struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// OrgMember pairs a user with their organization role.
type OrgMember struct {
	RoleName string `json:"role_name"` // admin, member, guest
	User     User   `json:"user"`
}

// PipeSummary is one pipe in the organization listing.
type PipeSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PipeField is a form field, either on the start form or on a phase.
type PipeField struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Type     string   `json:"type"` // short_text, long_text, select, radio_vertical, ...
	Required bool     `json:"required"`
	Options  []string `json:"options"`
}

// Phase is one column of a pipe. Done phases terminate the flow.
type Phase struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Done   bool        `json:"done"`
	Fields []PipeField `json:"fields"`
}

// Pipe is a Pipefy pipe with its full definition, migrated as a template.
type Pipe struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Description     string      `json:"description"`
	StartFormFields []PipeField `json:"start_form_fields"`
	Phases          []Phase     `json:"phases"`
}

// CardField is one filled form value on a card.
type CardField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Field struct {
		ID string `json:"id"`
	} `json:"field"`
}

// CardPhase is the phase a card currently sits in.
type CardPhase struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Card is a Pipefy card, migrated as an instance.
type Card struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	Done         bool        `json:"done"`
	CreatedAt    string      `json:"createdAt"`
	CurrentPhase *CardPhase  `json:"current_phase"`
	Assignees    []User      `json:"assignees"`
	Fields       []CardField `json:"fields"`
}
