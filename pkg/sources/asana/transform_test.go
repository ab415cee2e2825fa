package asana

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyfy/migrator/pkg/model"
)

func TestTransformUser(t *testing.T) {
	member := transformUser(User{GID: "u1", Name: "Ada Maria Lovelace", Email: "ada@example.com"})

	assert.Equal(t, "u1", member.SourceID)
	assert.Equal(t, "ada@example.com", member.Email)
	assert.Equal(t, "Ada Maria", member.FirstName)
	assert.Equal(t, "Lovelace", member.LastName)
	assert.Equal(t, model.RoleStandard, member.Role)
	assert.True(t, member.Active)
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		name  string
		first string
		last  string
	}{
		{"Ada Lovelace", "Ada", "Lovelace"},
		{"Cher", "Cher", ""},
		{"", "", ""},
		{"  Grace Hopper  ", "Grace", "Hopper"},
	}

	for _, tt := range tests {
		first, last := splitName(tt.name)
		assert.Equal(t, tt.first, first, "name %q", tt.name)
		assert.Equal(t, tt.last, last, "name %q", tt.name)
	}
}

func TestTransformProject(t *testing.T) {
	project := Project{
		GID:   "p1",
		Name:  "Employee Onboarding",
		Notes: "New-hire checklist",
		Team:  &Team{GID: "t1", Name: "People Ops"},
		CustomFieldSettings: []CustomFieldSetting{
			{CustomField: CustomField{GID: "cf1", Name: "Office", Type: "enum", EnumOptions: []EnumOption{{Name: "Berlin"}, {Name: "NYC"}}}},
			{CustomField: CustomField{GID: "cf2", Name: "Budget", Type: "currency"}},
		},
	}

	tasks := []Task{
		{GID: "task1", Name: "Sign contract", ResourceSubtype: "default_task", Assignee: &User{Email: "hr@example.com"}},
		{GID: "task2", Name: "Manager approval", ResourceSubtype: "approval"},
		{GID: "task3", Name: ""}, // unnamed tasks are dropped
	}

	template := transformProject(project, tasks)

	assert.Equal(t, "p1", template.SourceID)
	assert.Equal(t, "Employee Onboarding", template.Title)
	assert.Equal(t, []string{"People Ops"}, template.Tags)

	require.Len(t, template.Steps, 2)
	assert.Equal(t, "Sign contract", template.Steps[0].Title)
	assert.Equal(t, model.StepTask, template.Steps[0].Type)
	assert.Equal(t, 1, template.Steps[0].Position)
	assert.Equal(t, []string{"hr@example.com"}, template.Steps[0].Assignees)
	assert.Equal(t, model.StepApprove, template.Steps[1].Type)
	assert.Equal(t, 2, template.Steps[1].Position)

	require.Len(t, template.Captures, 2)
	assert.Equal(t, model.CaptureSelect, template.Captures[0].Type)
	assert.Equal(t, []string{"Berlin", "NYC"}, template.Captures[0].Options)

	// Unknown custom field type falls back to text with a warning.
	assert.Equal(t, model.CaptureText, template.Captures[1].Type)
	require.Len(t, template.Warnings, 1)
	assert.Contains(t, template.Warnings[0], "Budget")
}

func TestTransformProject_DueDateWarning(t *testing.T) {
	template := transformProject(Project{GID: "p1", Name: "Plan"}, []Task{
		{GID: "t1", Name: "Kickoff", DueOn: "2025-09-01"},
	})

	require.Len(t, template.Warnings, 1)
	assert.Contains(t, template.Warnings[0], "due dates")
}

func TestTransformCustomField_UnknownType(t *testing.T) {
	capture, warning := transformCustomField(CustomField{GID: "cf9", Name: "Score", Type: "formula"}, 3)

	assert.Equal(t, model.CaptureText, capture.Type)
	assert.Equal(t, 3, capture.Position)
	assert.NotEmpty(t, warning)
}
