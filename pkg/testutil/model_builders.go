// Package testutil provides test data builders for the migration model.
package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/tallyfy/migrator/pkg/model"
)

// CreateTestMember creates an active member with default values that can be
// overridden.
func CreateTestMember(overrides ...func(*model.Member)) model.Member {
	member := model.Member{
		SourceID:  uuid.New().String(),
		Email:     "ada@example.com",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Role:      model.RoleStandard,
		Active:    true,
	}

	for _, override := range overrides {
		override(&member)
	}

	return member
}

// WithEmail sets the member email.
func WithEmail(email string) func(*model.Member) {
	return func(m *model.Member) {
		m.Email = email
	}
}

// WithName sets the member first and last name.
func WithName(first, last string) func(*model.Member) {
	return func(m *model.Member) {
		m.FirstName = first
		m.LastName = last
	}
}

// WithRole sets the member role.
func WithRole(role model.MemberRole) func(*model.Member) {
	return func(m *model.Member) {
		m.Role = role
	}
}

// Deactivated marks the member as no longer active in the source.
func Deactivated() func(*model.Member) {
	return func(m *model.Member) {
		m.Active = false
		m.FirstName = ""
		m.LastName = ""
	}
}

// CreateTestTemplate creates a two-step onboarding template: a task carrying
// a text field, then an approval, plus one kickoff date field.
func CreateTestTemplate(overrides ...func(*model.Template)) model.Template {
	template := model.Template{
		SourceID: "tpl-1",
		Title:    "Onboarding",
		Tags:     []string{"HR"},
		Captures: []model.Capture{{Label: "Start date", Type: model.CaptureDate}},
		Steps: []model.Step{
			CreateTestStep(0),
			{SourceID: "step-2", Title: "Approve access", Type: model.StepApprove, Position: 1},
		},
	}

	for _, override := range overrides {
		override(&template)
	}

	return template
}

// WithTemplateID sets the template source id.
func WithTemplateID(id string) func(*model.Template) {
	return func(t *model.Template) {
		t.SourceID = id
	}
}

// WithTitle sets the template title.
func WithTitle(title string) func(*model.Template) {
	return func(t *model.Template) {
		t.Title = title
	}
}

// WithSteps replaces the template steps.
func WithSteps(steps ...model.Step) func(*model.Template) {
	return func(t *model.Template) {
		t.Steps = steps
	}
}

// CreateTestStep creates a task step at the given position with default
// values that can be overridden.
func CreateTestStep(position int, overrides ...func(*model.Step)) model.Step {
	step := model.Step{
		SourceID: "step-1",
		Title:    "Prepare laptop",
		Type:     model.StepTask,
		Position: position,
		Captures: []model.Capture{{Label: "Serial number", Type: model.CaptureText}},
	}

	for _, override := range overrides {
		override(&step)
	}

	return step
}

// WithStepID sets the step source id.
func WithStepID(id string) func(*model.Step) {
	return func(s *model.Step) {
		s.SourceID = id
	}
}

// WithStepTitle sets the step title.
func WithStepTitle(title string) func(*model.Step) {
	return func(s *model.Step) {
		s.Title = title
	}
}

// WithStepType sets the step type.
func WithStepType(stepType model.StepType) func(*model.Step) {
	return func(s *model.Step) {
		s.Type = stepType
	}
}

// CreateTestInstance creates an active instance of CreateTestTemplate whose
// first step was completed in the source.
func CreateTestInstance(overrides ...func(*model.Instance)) model.Instance {
	completedAt := time.Date(2024, 11, 5, 10, 0, 0, 0, time.UTC)

	instance := model.Instance{
		SourceID:         "run-1",
		Name:             "Onboard Margaret",
		TemplateSourceID: "tpl-1",
		Status:           model.InstanceActive,
		Owner:            "ada@example.com",
		FieldValues:      map[string]any{"Start date": "2024-11-04"},
		StepStates: []model.StepState{
			{StepSourceID: "step-1", Completed: true, CompletedAt: &completedAt, CompletedBy: "ada@example.com"},
			{StepSourceID: "step-2"},
		},
		CreatedAt: completedAt,
	}

	for _, override := range overrides {
		override(&instance)
	}

	return instance
}

// WithInstanceStatus sets the instance lifecycle status.
func WithInstanceStatus(status model.InstanceStatus) func(*model.Instance) {
	return func(i *model.Instance) {
		i.Status = status
	}
}

// WithFieldValues replaces the kickoff field values.
func WithFieldValues(values map[string]any) func(*model.Instance) {
	return func(i *model.Instance) {
		i.FieldValues = values
	}
}
