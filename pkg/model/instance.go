package model

import "time"

// InstanceStatus is the lifecycle state of a running instance in the source
// system.
type InstanceStatus string

const (
	InstanceActive    InstanceStatus = "active"
	InstanceCompleted InstanceStatus = "completed"
	InstanceArchived  InstanceStatus = "archived"
)

// StepState records how far a single step of an instance had progressed at
// export time.
type StepState struct {
	StepSourceID string     `json:"step_source_id"`
	Completed    bool       `json:"completed"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CompletedBy  string     `json:"completed_by,omitempty"` // Member email
}

// Instance is a running copy of a template (a Tallyfy process). Completed
// instances are migrated for the audit trail; active ones resume in Tallyfy.
type Instance struct {
	SourceID         string         `json:"source_id"`
	Name             string         `json:"name"               validate:"required"`
	TemplateSourceID string         `json:"template_source_id" validate:"required"`
	Status           InstanceStatus `json:"status"`
	Owner            string         `json:"owner,omitempty"` // Member email
	FieldValues      map[string]any `json:"field_values,omitempty"`
	StepStates       []StepState    `json:"step_states,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
}
