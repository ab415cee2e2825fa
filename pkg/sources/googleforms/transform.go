package googleforms

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tallyfy/migrator/pkg/model"
)

// choiceTypes maps Google Forms choice layouts onto capture types.
var choiceTypes = map[string]model.CaptureType{
	"RADIO":     model.CaptureRadio,
	"CHECKBOX":  model.CaptureMultiselect,
	"DROP_DOWN": model.CaptureSelect,
}

// transformForm turns a form into a kickoff-form template. Static items
// (page breaks, text, media) are dropped silently; question grids are
// dropped with a warning because they have no form-field equivalent.
func transformForm(form Form) model.Template {
	template := model.Template{
		SourceID:    form.FormID,
		Title:       form.Info.Title,
		Description: form.Info.Description,
	}

	if template.Title == "" {
		template.Title = form.FormID
	}

	position := 0

	for _, item := range form.Items {
		if item.QuestionGroupItem != nil {
			template.Warnings = append(template.Warnings,
				fmt.Sprintf("question grid %q was not migrated", item.Title))

			continue
		}

		if item.QuestionItem == nil {
			continue
		}

		position++

		capture, warning := transformQuestion(item, position)
		if warning != "" {
			template.Warnings = append(template.Warnings, warning)
		}

		template.Captures = append(template.Captures, capture)
	}

	return template
}

func transformQuestion(item Item, position int) (model.Capture, string) {
	question := item.QuestionItem.Question

	capture := model.Capture{
		SourceID: question.QuestionID,
		Label:    item.Title,
		Required: question.Required,
		Position: position,
		Guidance: item.Description,
	}

	warning := ""

	switch {
	case question.ChoiceQuestion != nil:
		captureType, ok := choiceTypes[question.ChoiceQuestion.Type]
		if !ok {
			captureType = model.CaptureRadio
		}

		capture.Type = captureType

		for _, option := range question.ChoiceQuestion.Options {
			capture.Options = append(capture.Options, option.Value)
		}
	case question.TextQuestion != nil:
		capture.Type = model.CaptureText
		if question.TextQuestion.Paragraph {
			capture.Type = model.CaptureTextarea
		}
	case question.ScaleQuestion != nil:
		capture.Type = model.CaptureSelect
		capture.Options = scaleOptions(question.ScaleQuestion.Low, question.ScaleQuestion.High)
	case question.DateQuestion != nil:
		capture.Type = model.CaptureDate
	case question.TimeQuestion != nil:
		capture.Type = model.CaptureText
	case question.FileUploadQuestion != nil:
		capture.Type = model.CaptureFile
	default:
		capture.Type = model.CaptureText
		warning = fmt.Sprintf("question %q has an unsupported kind, defaulted to text", item.Title)
	}

	return capture, warning
}

func scaleOptions(low, high int) []string {
	if high <= low {
		return nil
	}

	options := make([]string, 0, high-low+1)

	for i := low; i <= high; i++ {
		options = append(options, strconv.Itoa(i))
	}

	return options
}

// transformResponse turns a submission into a completed instance. Field
// values are keyed by question id, matching the capture source ids.
func transformResponse(form Form, response Response) model.Instance {
	instance := model.Instance{
		SourceID:         response.ResponseID,
		Name:             fmt.Sprintf("%s response %s", form.Info.Title, shortID(response.ResponseID)),
		TemplateSourceID: form.FormID,
		Status:           model.InstanceCompleted,
		Owner:            response.RespondentEmail,
	}

	submitted := response.LastSubmittedTime
	if submitted == "" {
		submitted = response.CreateTime
	}

	if submittedAt, err := time.Parse(time.RFC3339, submitted); err == nil {
		instance.CreatedAt = submittedAt.UTC()
	}

	for questionID, answer := range response.Answers {
		value := answerValue(answer)
		if value == "" {
			continue
		}

		if instance.FieldValues == nil {
			instance.FieldValues = make(map[string]any)
		}

		instance.FieldValues[questionID] = value
	}

	return instance
}

// answerValue flattens the one-or-many text answers of a question.
func answerValue(answer Answer) string {
	if answer.TextAnswers == nil {
		return ""
	}

	values := make([]string, 0, len(answer.TextAnswers.Answers))

	for _, item := range answer.TextAnswers.Answers {
		if item.Value != "" {
			values = append(values, item.Value)
		}
	}

	return strings.Join(values, ", ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}

	return id
}
