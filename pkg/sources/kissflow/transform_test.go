package kissflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyfy/migrator/pkg/model"
)

func TestTransformUser(t *testing.T) {
	member := transformUser(User{ID: "u1", Name: "Suresh Sambandam", Email: "suresh@example.com", UserType: "Admin", Status: "Active"})

	assert.Equal(t, "u1", member.SourceID)
	assert.Equal(t, model.RoleAdmin, member.Role)
	assert.Equal(t, "Suresh", member.FirstName)
	assert.Equal(t, "Sambandam", member.LastName)
	assert.True(t, member.Active)

	deactivated := transformUser(User{ID: "u2", Name: "Gone", Email: "gone@example.com", Status: "Deactivated"})
	assert.Equal(t, model.RoleStandard, deactivated.Role)
	assert.False(t, deactivated.Active)
}

func TestTransformProcess(t *testing.T) {
	detail := ProcessDetail{
		ID:          "Purchase_Request",
		Name:        "Purchase Request",
		Description: "Raise and approve purchases",
		Fields: []Field{
			{ID: "Amount", Name: "Amount", Type: "Currency", Required: true},
			{ID: "Category", Name: "Category", Type: "Dropdown", Values: []string{"Hardware", "Software"}},
			{ID: "Sig", Name: "Signature", Type: "Signature"},
		},
		Steps: []WorkflowStep{
			{ID: "s1", Name: "Fill request", Type: "Input"},
			{ID: "s2", Name: "Manager approval", Type: "Approval"},
			{ID: "s3", Name: "", Type: "Input"}, // unnamed steps are dropped
		},
	}

	template := transformProcess(detail)

	assert.Equal(t, "Purchase_Request", template.SourceID)
	assert.Equal(t, "Purchase Request", template.Title)

	require.Len(t, template.Steps, 2)
	assert.Equal(t, model.StepTask, template.Steps[0].Type)
	assert.Equal(t, model.StepApprove, template.Steps[1].Type)
	assert.Equal(t, 2, template.Steps[1].Position)

	require.Len(t, template.Captures, 3)
	assert.True(t, template.Captures[0].Required)
	assert.Equal(t, model.CaptureSelect, template.Captures[1].Type)
	assert.Equal(t, []string{"Hardware", "Software"}, template.Captures[1].Options)

	// Unknown field type falls back to text with a warning.
	assert.Equal(t, model.CaptureText, template.Captures[2].Type)
	require.Len(t, template.Warnings, 1)
	assert.Contains(t, template.Warnings[0], "Signature")
}

func TestTransformField_BooleanGetsYesNo(t *testing.T) {
	capture, warning := transformField(Field{ID: "b1", Name: "Urgent", Type: "Boolean"}, 1)

	assert.Empty(t, warning)
	assert.Equal(t, model.CaptureRadio, capture.Type)
	assert.Equal(t, []string{"Yes", "No"}, capture.Options)
}

func TestTransformItem(t *testing.T) {
	process := Process{ID: "Purchase_Request", Name: "Purchase Request"}
	item := Item{
		"_id":         "PR-42",
		"_status":     "Completed",
		"_created_at": "2025-02-01T10:00:00Z",
		"Name":        "New laptops",
		"Amount":      float64(2400),
		"Category":    "Hardware",
		"Notes":       nil,
	}

	instance := transformItem(process, item)

	assert.Equal(t, "PR-42", instance.SourceID)
	assert.Equal(t, "New laptops", instance.Name)
	assert.Equal(t, "Purchase_Request", instance.TemplateSourceID)
	assert.Equal(t, model.InstanceCompleted, instance.Status)
	assert.Equal(t, time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC), instance.CreatedAt)

	// System fields, the name and nil values stay out of the form values.
	assert.Equal(t, map[string]any{
		"Amount":   float64(2400),
		"Category": "Hardware",
	}, instance.FieldValues)
}

func TestTransformItem_FallbackName(t *testing.T) {
	instance := transformItem(Process{ID: "P", Name: "Process"}, Item{"_id": "7"})

	assert.Equal(t, "Process 7", instance.Name)
	assert.Equal(t, model.InstanceActive, instance.Status)
}
