package kissflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/tallyfy/migrator/pkg/model"
)

// fieldTypes maps Kissflow form field types onto capture types. Unknown
// types fall back to text.
var fieldTypes = map[string]model.CaptureType{
	"Text":        model.CaptureText,
	"TextArea":    model.CaptureTextarea,
	"Number":      model.CaptureText,
	"Currency":    model.CaptureText,
	"Dropdown":    model.CaptureSelect,
	"Checklist":   model.CaptureMultiselect,
	"RadioButton": model.CaptureRadio,
	"Date":        model.CaptureDate,
	"DateTime":    model.CaptureDate,
	"Attachment":  model.CaptureFile,
	"User":        model.CaptureAssignees,
	"Email":       model.CaptureText,
	"Boolean":     model.CaptureRadio,
}

// stepTypes maps Kissflow workflow step types onto step types.
var stepTypes = map[string]model.StepType{
	"Input":    model.StepTask,
	"Task":     model.StepTask,
	"Approval": model.StepApprove,
}

// itemStatuses maps Kissflow item progress states onto instance statuses.
var itemStatuses = map[string]model.InstanceStatus{
	"Active":     model.InstanceActive,
	"InProgress": model.InstanceActive,
	"Completed":  model.InstanceCompleted,
	"Approved":   model.InstanceCompleted,
	"Rejected":   model.InstanceArchived,
	"Withdrawn":  model.InstanceArchived,
}

func transformUser(user User) model.Member {
	first, last := splitName(user.Name)

	role := model.RoleStandard

	switch user.UserType {
	case "Admin":
		role = model.RoleAdmin
	case "Light":
		role = model.RoleLight
	}

	return model.Member{
		SourceID:  user.ID,
		Email:     user.Email,
		FirstName: first,
		LastName:  last,
		Role:      role,
		Active:    user.Status == "" || user.Status == "Active",
	}
}

func transformGroup(group Group, memberEmails []string) model.Group {
	return model.Group{
		SourceID: group.ID,
		Name:     group.Name,
		Members:  memberEmails,
	}
}

// transformProcess turns a process definition into a template: workflow
// steps become steps and form fields become kickoff captures.
func transformProcess(detail ProcessDetail) model.Template {
	template := model.Template{
		SourceID:    detail.ID,
		Title:       detail.Name,
		Description: detail.Description,
	}

	for i, field := range detail.Fields {
		capture, warning := transformField(field, i+1)
		if warning != "" {
			template.Warnings = append(template.Warnings, warning)
		}

		template.Captures = append(template.Captures, capture)
	}

	position := 0

	for _, step := range detail.Steps {
		if step.Name == "" {
			continue
		}

		position++

		stepType, ok := stepTypes[step.Type]
		if !ok {
			stepType = model.StepTask
		}

		template.Steps = append(template.Steps, model.Step{
			SourceID: step.ID,
			Title:    step.Name,
			Type:     stepType,
			Position: position,
		})
	}

	return template
}

func transformField(field Field, position int) (model.Capture, string) {
	captureType, ok := fieldTypes[field.Type]

	warning := ""
	if !ok {
		captureType = model.CaptureText
		warning = fmt.Sprintf("form field %q has unsupported type %q, defaulted to text", field.Name, field.Type)
	}

	capture := model.Capture{
		SourceID: field.ID,
		Label:    field.Name,
		Type:     captureType,
		Required: field.Required,
		Position: position,
		Options:  field.Values,
	}

	if field.Type == "Boolean" && len(capture.Options) == 0 {
		capture.Options = []string{"Yes", "No"}
	}

	return capture, warning
}

// transformItem turns a raw process item into an instance. System fields
// are underscore-prefixed; every other key is a form value.
func transformItem(process Process, item Item) model.Instance {
	instance := model.Instance{
		SourceID:         itemString(item, "_id"),
		Name:             itemString(item, "Name"),
		TemplateSourceID: process.ID,
		Status:           model.InstanceActive,
	}

	if instance.Name == "" {
		instance.Name = itemString(item, "Title")
	}

	if instance.Name == "" {
		instance.Name = process.Name + " " + instance.SourceID
	}

	if status, ok := itemStatuses[itemString(item, "_status")]; ok {
		instance.Status = status
	}

	if createdAt, err := time.Parse(time.RFC3339, itemString(item, "_created_at")); err == nil {
		instance.CreatedAt = createdAt.UTC()
	}

	for key, value := range item {
		if strings.HasPrefix(key, "_") || key == "Name" || key == "Title" || value == nil {
			continue
		}

		if instance.FieldValues == nil {
			instance.FieldValues = make(map[string]any)
		}

		instance.FieldValues[key] = value
	}

	return instance
}

func itemString(item Item, key string) string {
	value, ok := item[key].(string)
	if !ok {
		return ""
	}

	return value
}

// splitName splits a display name into first and last parts on the final
// space, keeping multi-word first names intact.
func splitName(name string) (string, string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ""
	}

	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return name, ""
	}

	return name[:idx], name[idx+1:]
}
