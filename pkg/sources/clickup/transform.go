package clickup

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tallyfy/migrator/pkg/model"
)

// fieldTypes maps ClickUp custom field types onto capture types. Unknown
// types fall back to text.
var fieldTypes = map[string]model.CaptureType{
	"short_text": model.CaptureText,
	"text":       model.CaptureTextarea,
	"drop_down":  model.CaptureSelect,
	"labels":     model.CaptureMultiselect,
	"date":       model.CaptureDate,
	"users":      model.CaptureAssignees,
	"number":     model.CaptureText,
	"currency":   model.CaptureText,
	"email":      model.CaptureText,
	"url":        model.CaptureText,
	"phone":      model.CaptureText,
}

// roles maps ClickUp workspace roles onto member roles.
var roles = map[int]model.MemberRole{
	1: model.RoleAdmin, // owner
	2: model.RoleAdmin,
	3: model.RoleStandard,
	4: model.RoleLight, // guest
}

func transformUser(user User) model.Member {
	first, last := splitName(user.Username)

	role, ok := roles[user.Role]
	if !ok {
		role = model.RoleStandard
	}

	return model.Member{
		SourceID:  strconv.FormatInt(user.ID, 10),
		Email:     user.Email,
		FirstName: first,
		LastName:  last,
		Role:      role,
		Active:    true,
	}
}

func transformGroup(group Group) model.Group {
	out := model.Group{
		SourceID: group.ID,
		Name:     group.Name,
	}

	for _, member := range group.Members {
		if member.Email != "" {
			out.Members = append(out.Members, member.Email)
		}
	}

	return out
}

// transformList turns one list with its tasks and custom fields into a
// template. The space and folder names become tags so the origin stays
// visible after migration.
func transformList(space Space, folder *Folder, list List, tasks []Task, fields []Field) model.Template {
	template := model.Template{
		SourceID:    list.ID,
		Title:       list.Name,
		Description: list.Content,
	}

	if space.Name != "" {
		template.Tags = append(template.Tags, space.Name)
	}

	if folder != nil && folder.Name != "" {
		template.Tags = append(template.Tags, folder.Name)
	}

	for i, field := range fields {
		capture, warning := transformField(field, i+1)
		if warning != "" {
			template.Warnings = append(template.Warnings, warning)
		}

		template.Captures = append(template.Captures, capture)
	}

	position := 0
	dueDates := false

	for _, task := range tasks {
		if task.Name == "" {
			continue
		}

		position++
		template.Steps = append(template.Steps, transformTask(task, position))

		if task.DueDate != "" {
			dueDates = true
		}
	}

	if dueDates {
		template.Warnings = append(template.Warnings,
			"task due dates are absolute and were not converted to relative deadlines")
	}

	return template
}

func transformTask(task Task, position int) model.Step {
	step := model.Step{
		SourceID:    task.ID,
		Title:       task.Name,
		Description: task.Description,
		Type:        model.StepTask,
		Position:    position,
	}

	for _, assignee := range task.Assignees {
		if assignee.Email != "" {
			step.Assignees = append(step.Assignees, assignee.Email)
		}
	}

	return step
}

func transformField(field Field, position int) (model.Capture, string) {
	captureType, ok := fieldTypes[field.Type]

	warning := ""
	if !ok {
		captureType = model.CaptureText
		warning = fmt.Sprintf("custom field %q has unsupported type %q, defaulted to text", field.Name, field.Type)
	}

	capture := model.Capture{
		SourceID: field.ID,
		Label:    field.Name,
		Type:     captureType,
		Position: position,
	}

	for _, option := range field.TypeConfig.Options {
		if name := option.optionName(); name != "" {
			capture.Options = append(capture.Options, name)
		}
	}

	return capture, warning
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
