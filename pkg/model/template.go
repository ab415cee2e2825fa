package model

// StepType mirrors the Tallyfy step task types.
type StepType string

const (
	StepTask     StepType = "task"     // Regular task checked off by an assignee
	StepApprove  StepType = "approve"  // Approve/reject decision
	StepExpiring StepType = "expiring" // Auto-completes at its deadline
	StepEmail    StepType = "email"    // Sends an email when reached
)

// CaptureType enumerates the Tallyfy form field types a source field can map
// onto. Transformers fall back to CaptureText for anything unknown.
type CaptureType string

const (
	CaptureText        CaptureType = "text"
	CaptureTextarea    CaptureType = "textarea"
	CaptureRadio       CaptureType = "radio"
	CaptureSelect      CaptureType = "select"
	CaptureMultiselect CaptureType = "multiselect"
	CaptureDate        CaptureType = "date"
	CaptureFile        CaptureType = "file"
	CaptureTable       CaptureType = "table"
	CaptureAssignees   CaptureType = "assignees_form"
)

// Capture is a single form field, either on the template kickoff form or on a
// step.
type Capture struct {
	SourceID string      `json:"source_id,omitempty"`
	Alias    string      `json:"alias,omitempty"` // Stable reference used by conditional rules
	Label    string      `json:"label"            validate:"required"`
	Type     CaptureType `json:"type"             validate:"required"`
	Required bool        `json:"required"`
	Options  []string    `json:"options,omitempty"` // radio/select/multiselect choices
	Position int         `json:"position"`
	Guidance string      `json:"guidance,omitempty"` // Help text shown under the field
}

// DeadlineAnchor says what a step deadline is relative to.
type DeadlineAnchor string

const (
	DeadlineFromLaunch       DeadlineAnchor = "start_run"
	DeadlineFromPreviousStep DeadlineAnchor = "step_completed"
)

// Deadline is a relative step deadline ("3 days after launch").
type Deadline struct {
	Value  int            `json:"value"  validate:"min=0"`
	Unit   string         `json:"unit"   validate:"oneof=minutes hours days weeks months"`
	Anchor DeadlineAnchor `json:"anchor"`
}

// Step is one task in a template.
type Step struct {
	SourceID    string    `json:"source_id,omitempty"`
	Alias       string    `json:"alias,omitempty"` // Stable reference used by conditional rules
	Title       string    `json:"title"            validate:"required"`
	Description string    `json:"description,omitempty"`
	Type        StepType  `json:"type"             validate:"required"`
	Position    int       `json:"position"`
	Assignees   []string  `json:"assignees,omitempty"` // Member emails
	GroupNames  []string  `json:"group_names,omitempty"`
	Deadline    *Deadline `json:"deadline,omitempty"`
	Captures    []Capture `json:"captures,omitempty"`
	Webhook     string    `json:"webhook,omitempty"` // Outbound webhook URL fired on completion
}

// RuleOperator compares a capture value in a conditional rule.
type RuleOperator string

const (
	OperatorEquals      RuleOperator = "equals"
	OperatorNotEquals   RuleOperator = "not_equals"
	OperatorContains    RuleOperator = "contains"
	OperatorGreaterThan RuleOperator = "greater_than"
)

// RuleAction is what a matched conditional rule does to its target steps.
type RuleAction string

const (
	ActionShow RuleAction = "show"
	ActionHide RuleAction = "hide"
)

// ConditionalRule shows or hides steps based on a capture value, the Tallyfy
// equivalent of a diverging exclusive gateway.
type ConditionalRule struct {
	ID          string       `json:"id,omitempty"`
	CaptureRef  string       `json:"capture_ref"  validate:"required"` // Capture alias
	Operator    RuleOperator `json:"operator"     validate:"required"`
	Value       string       `json:"value"`
	Action      RuleAction   `json:"action"       validate:"required"`
	TargetSteps []string     `json:"target_steps" validate:"min=1"` // Step aliases
}

// Template is the write-once accumulator for a migrated blueprint: steps,
// kickoff captures, conditional rules and groups are appended during
// transformation and the whole thing is serialized or loaded once at the end.
type Template struct {
	SourceID    string            `json:"source_id,omitempty"`
	Title       string            `json:"title"       validate:"required"`
	Description string            `json:"description,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	Steps       []Step            `json:"steps"`
	Captures    []Capture         `json:"captures,omitempty"` // Kickoff form fields
	Rules       []ConditionalRule `json:"rules,omitempty"`
	Groups      []Group           `json:"groups,omitempty"`
	Warnings    []string          `json:"warnings,omitempty"` // Mapping caveats surfaced in the report
}

// StepByAlias returns the step with the given alias, or nil.
func (t *Template) StepByAlias(alias string) *Step {
	for i := range t.Steps {
		if t.Steps[i].Alias == alias {
			return &t.Steps[i]
		}
	}

	return nil
}
