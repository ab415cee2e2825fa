package processstreet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyfy/migrator/pkg/model"
)

func TestTransformUser(t *testing.T) {
	member := transformUser(User{ID: "u1", Email: "vinay@example.com", FirstName: "Vinay", LastName: "Patankar", Role: "Admin"})

	assert.Equal(t, "u1", member.SourceID)
	assert.Equal(t, model.RoleAdmin, member.Role)
	assert.Equal(t, "Vinay", member.FirstName)

	assert.Equal(t, model.RoleLight, transformUser(User{Role: "Guest"}).Role)
	assert.Equal(t, model.RoleStandard, transformUser(User{Role: "FullMember"}).Role)
}

func TestTransformWorkflow(t *testing.T) {
	detail := WorkflowDetail{
		ID:          "wf1",
		Name:        "Client Intake",
		Description: "New client setup",
		Tasks: []TaskTemplate{
			{ID: "t1", Name: "Collect details", Type: "Standard"},
			{ID: "t2", Name: "Partner sign-off", Type: "Approval"},
		},
		FormFields: []FormField{
			{ID: "f1", Label: "Client name", Type: "Text", Required: true},
			{ID: "f2", Label: "Industry", Type: "Select", Options: []string{"Retail", "SaaS"}},
			{ID: "f3", Label: "Contract", Type: "File", TaskID: "t1"},
			{ID: "f4", Label: "Widget", Type: "Snippet", TaskID: "t1"},
		},
	}

	template := transformWorkflow(detail)

	assert.Equal(t, "wf1", template.SourceID)
	assert.Equal(t, "Client Intake", template.Title)

	// Fields without a task form the kickoff.
	require.Len(t, template.Captures, 2)
	assert.True(t, template.Captures[0].Required)
	assert.Equal(t, model.CaptureSelect, template.Captures[1].Type)
	assert.Equal(t, []string{"Retail", "SaaS"}, template.Captures[1].Options)

	require.Len(t, template.Steps, 2)
	assert.Equal(t, model.StepTask, template.Steps[0].Type)
	assert.Equal(t, model.StepApprove, template.Steps[1].Type)

	// Task-bound fields land on their step; unknown types warn.
	require.Len(t, template.Steps[0].Captures, 2)
	assert.Equal(t, model.CaptureFile, template.Steps[0].Captures[0].Type)
	assert.Equal(t, model.CaptureText, template.Steps[0].Captures[1].Type)
	require.Len(t, template.Warnings, 1)
	assert.Contains(t, template.Warnings[0], "Widget")
}

func TestTransformRun(t *testing.T) {
	run := WorkflowRun{
		ID:         "run1",
		Name:       "Acme intake",
		WorkflowID: "wf1",
		Status:     "Completed",
		CreatedAt:  "2025-01-15T12:00:00Z",
		CreatedBy:  &User{Email: "owner@example.com"},
	}

	tasks := []RunTask{
		{ID: "rt1", TaskTemplateID: "t1", Status: "Completed", CompletedDate: "2025-01-16T09:00:00Z", CompletedBy: &User{Email: "done@example.com"}},
		{ID: "rt2", TaskTemplateID: "t2", Status: "NotCompleted"},
	}

	values := []FormFieldValue{
		{FormFieldID: "f1", Value: "Acme Corp"},
		{FormFieldID: "f2", Value: nil},
		{FormFieldID: "", Value: "orphan"},
	}

	instance := transformRun(run, tasks, values)

	assert.Equal(t, "run1", instance.SourceID)
	assert.Equal(t, model.InstanceCompleted, instance.Status)
	assert.Equal(t, "owner@example.com", instance.Owner)
	assert.Equal(t, time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC), instance.CreatedAt)

	require.Len(t, instance.StepStates, 2)
	assert.True(t, instance.StepStates[0].Completed)
	require.NotNil(t, instance.StepStates[0].CompletedAt)
	assert.Equal(t, "done@example.com", instance.StepStates[0].CompletedBy)
	assert.False(t, instance.StepStates[1].Completed)
	assert.Nil(t, instance.StepStates[1].CompletedAt)

	assert.Equal(t, map[string]any{"f1": "Acme Corp"}, instance.FieldValues)
}

func TestTransformRun_UnknownStatus(t *testing.T) {
	instance := transformRun(WorkflowRun{ID: "r", Name: "n", WorkflowID: "w", Status: "OnHold"}, nil, nil)

	assert.Equal(t, model.InstanceActive, instance.Status)
}
