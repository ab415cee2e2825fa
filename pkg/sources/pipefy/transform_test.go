package pipefy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyfy/migrator/pkg/model"
)

func TestTransformMember(t *testing.T) {
	member := transformMember(OrgMember{RoleName: "admin", User: User{ID: "1", Name: "Alessio Alionço", Email: "a@example.com"}})

	assert.Equal(t, model.RoleAdmin, member.Role)
	assert.Equal(t, "Alessio", member.FirstName)
	assert.Equal(t, "Alionço", member.LastName)

	guest := transformMember(OrgMember{RoleName: "guest", User: User{ID: "2", Email: "g@example.com"}})
	assert.Equal(t, model.RoleLight, guest.Role)

	unknown := transformMember(OrgMember{RoleName: "company_admin", User: User{ID: "3", Email: "c@example.com"}})
	assert.Equal(t, model.RoleStandard, unknown.Role)
}

func testPipe() Pipe {
	return Pipe{
		ID:          "pipe1",
		Name:        "Hiring",
		Description: "Candidate pipeline",
		StartFormFields: []PipeField{
			{ID: "name", Label: "Candidate", Type: "short_text", Required: true},
			{ID: "cv", Label: "CV", Type: "attachment"},
			{ID: "info", Label: "Read this first", Type: "statement"},
		},
		Phases: []Phase{
			{ID: "ph1", Name: "Screening", Fields: []PipeField{
				{ID: "score", Label: "Score", Type: "number"},
			}},
			{ID: "ph2", Name: "Interview"},
			{ID: "ph3", Name: "Hired", Done: true},
		},
	}
}

func TestTransformPipe(t *testing.T) {
	template := transformPipe(testPipe())

	assert.Equal(t, "pipe1", template.SourceID)
	assert.Equal(t, "Hiring", template.Title)

	// Statement fields are display-only and dropped.
	require.Len(t, template.Captures, 2)
	assert.Equal(t, model.CaptureText, template.Captures[0].Type)
	assert.True(t, template.Captures[0].Required)
	assert.Equal(t, model.CaptureFile, template.Captures[1].Type)
	assert.Equal(t, 2, template.Captures[1].Position)

	require.Len(t, template.Steps, 3)
	assert.Equal(t, "Screening", template.Steps[0].Title)
	assert.Equal(t, 1, template.Steps[0].Position)
	require.Len(t, template.Steps[0].Captures, 1)
	assert.Equal(t, "Score", template.Steps[0].Captures[0].Label)
	assert.Empty(t, template.Steps[1].Captures)
	assert.Equal(t, "Hired", template.Steps[2].Title)
}

func TestTransformField_UnknownType(t *testing.T) {
	capture, warning := transformField(PipeField{ID: "f1", Label: "Dynamic", Type: "dynamic_content"}, 1)

	assert.Equal(t, model.CaptureText, capture.Type)
	assert.Contains(t, warning, "Dynamic")
}

func TestTransformCard(t *testing.T) {
	pipe := testPipe()
	card := Card{
		ID:           "card1",
		Title:        "Jane Doe",
		CreatedAt:    "2025-04-01T08:00:00Z",
		CurrentPhase: &CardPhase{ID: "ph2", Name: "Interview"},
		Assignees:    []User{{Email: "recruiter@example.com"}},
		Fields: []CardField{
			{Name: "Candidate", Value: "Jane Doe", Field: struct {
				ID string `json:"id"`
			}{ID: "name"}},
			{Name: "Score", Value: "8"},
			{Name: "Empty", Value: ""},
		},
	}

	instance := transformCard(pipe, card)

	assert.Equal(t, "card1", instance.SourceID)
	assert.Equal(t, "Jane Doe", instance.Name)
	assert.Equal(t, "pipe1", instance.TemplateSourceID)
	assert.Equal(t, model.InstanceActive, instance.Status)
	assert.Equal(t, "recruiter@example.com", instance.Owner)

	// Field values key by field id when present, else by name.
	assert.Equal(t, map[string]any{"name": "Jane Doe", "Score": "8"}, instance.FieldValues)

	// Screening precedes the current phase, so it counts as completed.
	require.Len(t, instance.StepStates, 3)
	assert.True(t, instance.StepStates[0].Completed)
	assert.False(t, instance.StepStates[1].Completed)
	assert.False(t, instance.StepStates[2].Completed)
}

func TestTransformCard_Done(t *testing.T) {
	instance := transformCard(testPipe(), Card{ID: "card2", Title: "Closed", Done: true})

	assert.Equal(t, model.InstanceCompleted, instance.Status)

	require.Len(t, instance.StepStates, 3)
	for _, state := range instance.StepStates {
		assert.True(t, state.Completed)
	}
}
