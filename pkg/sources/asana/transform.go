package asana

import (
	"fmt"
	"strings"

	"github.com/tallyfy/migrator/pkg/model"
)

// customFieldTypes maps Asana custom field types onto capture types. Unknown
// types fall back to text.
var customFieldTypes = map[string]model.CaptureType{
	"text":       model.CaptureText,
	"number":     model.CaptureText,
	"enum":       model.CaptureSelect,
	"multi_enum": model.CaptureMultiselect,
	"date":       model.CaptureDate,
	"people":     model.CaptureAssignees,
}

// taskSubtypes maps Asana task subtypes onto step types.
var taskSubtypes = map[string]model.StepType{
	"default_task": model.StepTask,
	"approval":     model.StepApprove,
	"milestone":    model.StepTask,
}

func transformUser(user User) model.Member {
	first, last := splitName(user.Name)

	return model.Member{
		SourceID:  user.GID,
		Email:     user.Email,
		FirstName: first,
		LastName:  last,
		Role:      model.RoleStandard,
		Active:    true,
	}
}

func transformTeam(team Team, memberEmails []string) model.Group {
	return model.Group{
		SourceID: team.GID,
		Name:     team.Name,
		Members:  memberEmails,
	}
}

func transformProject(project Project, tasks []Task) model.Template {
	template := model.Template{
		SourceID:    project.GID,
		Title:       project.Name,
		Description: project.Notes,
	}

	if project.Team != nil && project.Team.Name != "" {
		template.Tags = []string{project.Team.Name}
	}

	for i, setting := range project.CustomFieldSettings {
		capture, warning := transformCustomField(setting.CustomField, i+1)
		if warning != "" {
			template.Warnings = append(template.Warnings, warning)
		}

		template.Captures = append(template.Captures, capture)
	}

	position := 0

	for _, task := range tasks {
		if task.Name == "" {
			continue
		}

		position++
		template.Steps = append(template.Steps, transformTask(task, position))
	}

	if hasDueDates(tasks) {
		template.Warnings = append(template.Warnings,
			"task due dates are absolute and were not converted to relative deadlines")
	}

	return template
}

func transformTask(task Task, position int) model.Step {
	stepType, ok := taskSubtypes[task.ResourceSubtype]
	if !ok {
		stepType = model.StepTask
	}

	step := model.Step{
		SourceID:    task.GID,
		Title:       task.Name,
		Description: task.Notes,
		Type:        stepType,
		Position:    position,
	}

	if task.Assignee != nil && task.Assignee.Email != "" {
		step.Assignees = []string{task.Assignee.Email}
	}

	return step
}

func transformCustomField(field CustomField, position int) (model.Capture, string) {
	captureType, ok := customFieldTypes[field.Type]

	warning := ""
	if !ok {
		captureType = model.CaptureText
		warning = fmt.Sprintf("custom field %q has unsupported type %q, defaulted to text", field.Name, field.Type)
	}

	capture := model.Capture{
		SourceID: field.GID,
		Label:    field.Name,
		Type:     captureType,
		Position: position,
	}

	for _, option := range field.EnumOptions {
		capture.Options = append(capture.Options, option.Name)
	}

	return capture, warning
}

func hasDueDates(tasks []Task) bool {
	for _, task := range tasks {
		if task.DueOn != "" {
			return true
		}
	}

	return false
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
