package clickup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyfy/migrator/pkg/model"
)

func TestTransformUser(t *testing.T) {
	member := transformUser(User{ID: 42, Username: "Grace Hopper", Email: "grace@example.com", Role: 2})

	assert.Equal(t, "42", member.SourceID)
	assert.Equal(t, "grace@example.com", member.Email)
	assert.Equal(t, "Grace", member.FirstName)
	assert.Equal(t, "Hopper", member.LastName)
	assert.Equal(t, model.RoleAdmin, member.Role)
	assert.True(t, member.Active)
}

func TestTransformUser_Roles(t *testing.T) {
	assert.Equal(t, model.RoleAdmin, transformUser(User{Role: 1}).Role)
	assert.Equal(t, model.RoleStandard, transformUser(User{Role: 3}).Role)
	assert.Equal(t, model.RoleLight, transformUser(User{Role: 4}).Role)
	assert.Equal(t, model.RoleStandard, transformUser(User{Role: 0}).Role)
}

func TestTransformGroup(t *testing.T) {
	group := transformGroup(Group{
		ID:   "g1",
		Name: "Engineering",
		Members: []User{
			{Email: "one@example.com"},
			{Username: "no-email"},
			{Email: "two@example.com"},
		},
	})

	assert.Equal(t, "g1", group.SourceID)
	assert.Equal(t, "Engineering", group.Name)
	assert.Equal(t, []string{"one@example.com", "two@example.com"}, group.Members)
}

func TestTransformList(t *testing.T) {
	space := Space{ID: "s1", Name: "Operations"}
	folder := &Folder{ID: "f1", Name: "Processes"}
	list := List{ID: "l1", Name: "Client Onboarding", Content: "Standard onboarding flow"}

	tasks := []Task{
		{ID: "t1", Name: "Collect documents", Assignees: []User{{Email: "ops@example.com"}}},
		{ID: "t2", Name: "Schedule kickoff", Description: "Within five days", DueDate: "1730000000000"},
		{ID: "t3", Name: ""}, // unnamed tasks are dropped
	}

	fields := []Field{
		{ID: "cf1", Name: "Region", Type: "drop_down", TypeConfig: FieldTypeConfig{Options: []FieldOption{{Name: "EMEA"}, {Name: "APAC"}}}},
		{ID: "cf2", Name: "Progress", Type: "automatic_progress"},
	}

	template := transformList(space, folder, list, tasks, fields)

	assert.Equal(t, "l1", template.SourceID)
	assert.Equal(t, "Client Onboarding", template.Title)
	assert.Equal(t, []string{"Operations", "Processes"}, template.Tags)

	require.Len(t, template.Steps, 2)
	assert.Equal(t, "Collect documents", template.Steps[0].Title)
	assert.Equal(t, 1, template.Steps[0].Position)
	assert.Equal(t, []string{"ops@example.com"}, template.Steps[0].Assignees)
	assert.Equal(t, "Within five days", template.Steps[1].Description)
	assert.Equal(t, 2, template.Steps[1].Position)

	require.Len(t, template.Captures, 2)
	assert.Equal(t, model.CaptureSelect, template.Captures[0].Type)
	assert.Equal(t, []string{"EMEA", "APAC"}, template.Captures[0].Options)
	assert.Equal(t, model.CaptureText, template.Captures[1].Type)

	// One warning for the unknown field type, one for absolute due dates.
	require.Len(t, template.Warnings, 2)
	assert.Contains(t, template.Warnings[0], "Progress")
	assert.Contains(t, template.Warnings[1], "due dates")
}

func TestTransformField_LabelOptions(t *testing.T) {
	capture, warning := transformField(Field{
		ID:   "cf3",
		Name: "Tags",
		Type: "labels",
		TypeConfig: FieldTypeConfig{Options: []FieldOption{
			{Label: "urgent"},
			{Label: "blocked"},
		}},
	}, 1)

	assert.Empty(t, warning)
	assert.Equal(t, model.CaptureMultiselect, capture.Type)
	assert.Equal(t, []string{"urgent", "blocked"}, capture.Options)
}
