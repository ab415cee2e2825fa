package processstreet

import (
	"fmt"
	"time"

	"github.com/tallyfy/migrator/pkg/model"
)

// fieldTypes maps Process Street form field types onto capture types.
// Unknown types fall back to text.
var fieldTypes = map[string]model.CaptureType{
	"Text":        model.CaptureText,
	"Textarea":    model.CaptureTextarea,
	"Select":      model.CaptureSelect,
	"Dropdown":    model.CaptureSelect,
	"MultiChoice": model.CaptureRadio,
	"MultiSelect": model.CaptureMultiselect,
	"Date":        model.CaptureDate,
	"File":        model.CaptureFile,
	"Table":       model.CaptureTable,
	"Members":     model.CaptureAssignees,
	"Email":       model.CaptureText,
	"Url":         model.CaptureText,
	"Number":      model.CaptureText,
}

// userRoles maps Process Street roles onto member roles.
var userRoles = map[string]model.MemberRole{
	"Admin":  model.RoleAdmin,
	"Member": model.RoleStandard,
	"Guest":  model.RoleLight,
}

// runStatuses maps run states onto instance statuses.
var runStatuses = map[string]model.InstanceStatus{
	"Active":    model.InstanceActive,
	"Completed": model.InstanceCompleted,
	"Archived":  model.InstanceArchived,
}

func transformUser(user User) model.Member {
	role, ok := userRoles[user.Role]
	if !ok {
		role = model.RoleStandard
	}

	return model.Member{
		SourceID:  user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      role,
		Active:    true,
	}
}

func transformGroup(group Group, memberEmails []string) model.Group {
	return model.Group{
		SourceID: group.ID,
		Name:     group.Name,
		Members:  memberEmails,
	}
}

// transformWorkflow turns a workflow definition into a template: task
// templates become steps, task-bound form fields become step captures, and
// the remaining fields become the kickoff form.
func transformWorkflow(detail WorkflowDetail) model.Template {
	template := model.Template{
		SourceID:    detail.ID,
		Title:       detail.Name,
		Description: detail.Description,
	}

	// Group form fields by owning task up front; the kickoff form keeps
	// the fields with no task.
	fieldsByTask := make(map[string][]FormField)

	for _, field := range detail.FormFields {
		fieldsByTask[field.TaskID] = append(fieldsByTask[field.TaskID], field)
	}

	for i, field := range fieldsByTask[""] {
		capture, warning := transformFormField(field, i+1)
		if warning != "" {
			template.Warnings = append(template.Warnings, warning)
		}

		template.Captures = append(template.Captures, capture)
	}

	position := 0

	for _, task := range detail.Tasks {
		if task.Name == "" {
			continue
		}

		position++

		stepType := model.StepTask
		if task.Type == "Approval" {
			stepType = model.StepApprove
		}

		step := model.Step{
			SourceID: task.ID,
			Title:    task.Name,
			Type:     stepType,
			Position: position,
		}

		for i, field := range fieldsByTask[task.ID] {
			capture, warning := transformFormField(field, i+1)
			if warning != "" {
				template.Warnings = append(template.Warnings, warning)
			}

			step.Captures = append(step.Captures, capture)
		}

		template.Steps = append(template.Steps, step)
	}

	return template
}

func transformFormField(field FormField, position int) (model.Capture, string) {
	captureType, ok := fieldTypes[field.Type]

	warning := ""
	if !ok {
		captureType = model.CaptureText
		warning = fmt.Sprintf("form field %q has unsupported type %q, defaulted to text", field.Label, field.Type)
	}

	return model.Capture{
		SourceID: field.ID,
		Label:    field.Label,
		Type:     captureType,
		Required: field.Required,
		Position: position,
		Options:  field.Options,
	}, warning
}

// transformRun turns a workflow run into an instance with its task states
// and filled form values.
func transformRun(run WorkflowRun, tasks []RunTask, values []FormFieldValue) model.Instance {
	instance := model.Instance{
		SourceID:         run.ID,
		Name:             run.Name,
		TemplateSourceID: run.WorkflowID,
		Status:           model.InstanceActive,
	}

	if status, ok := runStatuses[run.Status]; ok {
		instance.Status = status
	}

	if run.CreatedBy != nil {
		instance.Owner = run.CreatedBy.Email
	}

	if createdAt, err := time.Parse(time.RFC3339, run.CreatedAt); err == nil {
		instance.CreatedAt = createdAt.UTC()
	}

	for _, task := range tasks {
		state := model.StepState{
			StepSourceID: task.TaskTemplateID,
			Completed:    task.Status == "Completed",
		}

		if completedAt, err := time.Parse(time.RFC3339, task.CompletedDate); err == nil {
			utc := completedAt.UTC()
			state.CompletedAt = &utc
		}

		if task.CompletedBy != nil {
			state.CompletedBy = task.CompletedBy.Email
		}

		instance.StepStates = append(instance.StepStates, state)
	}

	for _, value := range values {
		if value.Value == nil || value.FormFieldID == "" {
			continue
		}

		if instance.FieldValues == nil {
			instance.FieldValues = make(map[string]any)
		}

		instance.FieldValues[value.FormFieldID] = value.Value
	}

	return instance
}
