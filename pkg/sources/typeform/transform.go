package typeform

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tallyfy/migrator/pkg/model"
)

// fieldTypes maps Typeform question types onto capture types. Choice
// questions are resolved separately because multi-selection changes the
// capture type. Unknown types fall back to text.
var fieldTypes = map[string]model.CaptureType{
	"short_text":    model.CaptureText,
	"long_text":     model.CaptureTextarea,
	"dropdown":      model.CaptureSelect,
	"date":          model.CaptureDate,
	"file_upload":   model.CaptureFile,
	"yes_no":        model.CaptureRadio,
	"legal":         model.CaptureRadio,
	"email":         model.CaptureText,
	"website":       model.CaptureText,
	"phone_number":  model.CaptureText,
	"number":        model.CaptureText,
	"rating":        model.CaptureSelect,
	"opinion_scale": model.CaptureSelect,
	"nps":           model.CaptureSelect,
}

// skippedFields are display-only or structural question types.
var skippedFields = map[string]bool{
	"statement": true,
	"group":     true,
	"payment":   true,
}

// transformForm turns a form into a kickoff-form template. Forms have no
// steps; responses later replay their answers against the captures.
func transformForm(form Form) model.Template {
	template := model.Template{
		SourceID: form.ID,
		Title:    form.Title,
	}

	position := 0

	for _, field := range form.Fields {
		if skippedFields[field.Type] {
			continue
		}

		position++

		capture, warning := transformField(field, position)
		if warning != "" {
			template.Warnings = append(template.Warnings, warning)
		}

		template.Captures = append(template.Captures, capture)
	}

	return template
}

func transformField(field FormField, position int) (model.Capture, string) {
	captureType, warning := resolveFieldType(field)

	capture := model.Capture{
		SourceID: field.ID,
		Label:    field.Title,
		Type:     captureType,
		Required: field.Validations.Required,
		Position: position,
		Guidance: field.Properties.Description,
	}

	switch field.Type {
	case "multiple_choice", "picture_choice", "dropdown", "ranking":
		for _, choice := range field.Properties.Choices {
			capture.Options = append(capture.Options, choice.Label)
		}
	case "yes_no", "legal":
		capture.Options = []string{"Yes", "No"}
	case "rating", "opinion_scale", "nps":
		capture.Options = scaleOptions(field.Properties.Steps)
	}

	return capture, warning
}

func resolveFieldType(field FormField) (model.CaptureType, string) {
	switch field.Type {
	case "multiple_choice", "picture_choice", "ranking":
		if field.Properties.AllowMultipleSelection {
			return model.CaptureMultiselect, ""
		}

		return model.CaptureRadio, ""
	}

	captureType, ok := fieldTypes[field.Type]
	if !ok {
		return model.CaptureText,
			fmt.Sprintf("question %q has unsupported type %q, defaulted to text", field.Title, field.Type)
	}

	return captureType, ""
}

// scaleOptions renders a rating scale as numbered choices. Typeform defaults
// to 11 opinion-scale steps when unspecified.
func scaleOptions(steps int) []string {
	if steps <= 0 {
		steps = 11
	}

	options := make([]string, 0, steps)

	for i := 1; i <= steps; i++ {
		options = append(options, strconv.Itoa(i))
	}

	return options
}

// transformResponse turns a completed response into an instance.
func transformResponse(form Form, response Response) model.Instance {
	instance := model.Instance{
		SourceID:         response.Token,
		Name:             fmt.Sprintf("%s response %s", form.Title, shortToken(response.Token)),
		TemplateSourceID: form.ID,
		Status:           model.InstanceCompleted,
	}

	if submittedAt, err := time.Parse(time.RFC3339, response.SubmittedAt); err == nil {
		instance.CreatedAt = submittedAt.UTC()
	}

	for _, answer := range response.Answers {
		value := answerValue(answer)
		if value == nil {
			continue
		}

		if instance.FieldValues == nil {
			instance.FieldValues = make(map[string]any)
		}

		instance.FieldValues[answer.Field.ID] = value
	}

	return instance
}

// answerValue extracts the one populated value member of an answer.
func answerValue(answer Answer) any {
	switch answer.Type {
	case "text":
		return answer.Text
	case "email":
		return answer.Email
	case "url":
		return answer.URL
	case "file_url":
		return answer.FileURL
	case "phone_number":
		return answer.PhoneNumber
	case "date":
		return answer.Date
	case "number":
		if answer.Number != nil {
			return *answer.Number
		}
	case "boolean":
		if answer.Boolean != nil {
			if *answer.Boolean {
				return "Yes"
			}

			return "No"
		}
	case "choice":
		if answer.Choice != nil {
			return answer.Choice.Label
		}
	case "choices":
		if answer.Choices != nil {
			return strings.Join(answer.Choices.Labels, ", ")
		}
	}

	return nil
}

func shortToken(token string) string {
	if len(token) > 8 {
		return token[:8]
	}

	return token
}
