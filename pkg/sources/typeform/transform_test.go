package typeform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyfy/migrator/pkg/model"
)

func testForm() Form {
	return Form{
		ID:    "form1",
		Title: "Customer Survey",
		Fields: []FormField{
			{ID: "q1", Title: "Your name", Type: "short_text", Validations: FieldValidations{Required: true}},
			{ID: "q2", Title: "Favorite color", Type: "multiple_choice", Properties: FieldProperties{
				Choices: []Choice{{Label: "Red"}, {Label: "Blue"}},
			}},
			{ID: "q3", Title: "Toppings", Type: "multiple_choice", Properties: FieldProperties{
				AllowMultipleSelection: true,
				Choices:                []Choice{{Label: "Cheese"}, {Label: "Olives"}},
			}},
			{ID: "q4", Title: "Subscribe?", Type: "yes_no"},
			{ID: "q5", Title: "Rate us", Type: "rating", Properties: FieldProperties{Steps: 5}},
			{ID: "q6", Title: "Read this", Type: "statement"},
			{ID: "q7", Title: "Mood", Type: "emoji_scale"},
		},
	}
}

func TestTransformForm(t *testing.T) {
	template := transformForm(testForm())

	assert.Equal(t, "form1", template.SourceID)
	assert.Equal(t, "Customer Survey", template.Title)
	assert.Empty(t, template.Steps)

	// The statement is dropped; six questions remain.
	require.Len(t, template.Captures, 6)

	assert.Equal(t, model.CaptureText, template.Captures[0].Type)
	assert.True(t, template.Captures[0].Required)

	assert.Equal(t, model.CaptureRadio, template.Captures[1].Type)
	assert.Equal(t, []string{"Red", "Blue"}, template.Captures[1].Options)

	assert.Equal(t, model.CaptureMultiselect, template.Captures[2].Type)

	assert.Equal(t, model.CaptureRadio, template.Captures[3].Type)
	assert.Equal(t, []string{"Yes", "No"}, template.Captures[3].Options)

	assert.Equal(t, model.CaptureSelect, template.Captures[4].Type)
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, template.Captures[4].Options)

	// Unknown question type falls back to text with a warning.
	assert.Equal(t, model.CaptureText, template.Captures[5].Type)
	require.Len(t, template.Warnings, 1)
	assert.Contains(t, template.Warnings[0], "Mood")

	// Positions skip dropped questions without gaps.
	assert.Equal(t, 6, template.Captures[5].Position)
}

func TestScaleOptions_DefaultSteps(t *testing.T) {
	assert.Len(t, scaleOptions(0), 11)
}

func TestTransformResponse(t *testing.T) {
	number := 4.0
	yes := true

	response := Response{
		Token:       "abcdef123456",
		SubmittedAt: "2025-05-20T14:30:00Z",
		Answers: []Answer{
			{Field: AnswerField{ID: "q1"}, Type: "text", Text: "Ada"},
			{Field: AnswerField{ID: "q2"}, Type: "choice", Choice: &Choice{Label: "Blue"}},
			{Field: AnswerField{ID: "q3"}, Type: "choices", Choices: &struct {
				Labels []string `json:"labels"`
			}{Labels: []string{"Cheese", "Olives"}}},
			{Field: AnswerField{ID: "q4"}, Type: "boolean", Boolean: &yes},
			{Field: AnswerField{ID: "q5"}, Type: "number", Number: &number},
		},
	}

	instance := transformResponse(testForm(), response)

	assert.Equal(t, "abcdef123456", instance.SourceID)
	assert.Equal(t, "Customer Survey response abcdef12", instance.Name)
	assert.Equal(t, "form1", instance.TemplateSourceID)
	assert.Equal(t, model.InstanceCompleted, instance.Status)
	assert.Equal(t, time.Date(2025, 5, 20, 14, 30, 0, 0, time.UTC), instance.CreatedAt)

	assert.Equal(t, map[string]any{
		"q1": "Ada",
		"q2": "Blue",
		"q3": "Cheese, Olives",
		"q4": "Yes",
		"q5": 4.0,
	}, instance.FieldValues)
}

func TestAnswerValue_EmptyMembers(t *testing.T) {
	assert.Nil(t, answerValue(Answer{Type: "number"}))
	assert.Nil(t, answerValue(Answer{Type: "choice"}))
	assert.Nil(t, answerValue(Answer{Type: "payment"}))
}
