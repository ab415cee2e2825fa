package pipefy

import (
	"fmt"
	"strings"
	"time"

	"github.com/tallyfy/migrator/pkg/model"
)

// fieldTypes maps Pipefy field types onto capture types. Unknown types fall
// back to text.
var fieldTypes = map[string]model.CaptureType{
	"short_text":           model.CaptureText,
	"long_text":            model.CaptureTextarea,
	"select":               model.CaptureSelect,
	"radio_vertical":       model.CaptureRadio,
	"radio_horizontal":     model.CaptureRadio,
	"checklist_vertical":   model.CaptureMultiselect,
	"checklist_horizontal": model.CaptureMultiselect,
	"label_select":         model.CaptureMultiselect,
	"date":                 model.CaptureDate,
	"datetime":             model.CaptureDate,
	"due_date":             model.CaptureDate,
	"attachment":           model.CaptureFile,
	"assignee_select":      model.CaptureAssignees,
	"email":                model.CaptureText,
	"phone":                model.CaptureText,
	"number":               model.CaptureText,
	"currency":             model.CaptureText,
	"time":                 model.CaptureText,
	"cpf":                  model.CaptureText,
	"cnpj":                 model.CaptureText,
}

// skippedFields are display-only or relational field types with no form
// equivalent.
var skippedFields = map[string]bool{
	"statement":  true,
	"connector":  true,
	"connection": true,
}

// memberRoles maps Pipefy organization roles onto member roles.
var memberRoles = map[string]model.MemberRole{
	"admin":  model.RoleAdmin,
	"member": model.RoleStandard,
	"guest":  model.RoleLight,
}

func transformMember(member OrgMember) model.Member {
	first, last := splitName(member.User.Name)

	role, ok := memberRoles[member.RoleName]
	if !ok {
		role = model.RoleStandard
	}

	return model.Member{
		SourceID:  member.User.ID,
		Email:     member.User.Email,
		FirstName: first,
		LastName:  last,
		Role:      role,
		Active:    true,
	}
}

// transformPipe turns a pipe into a template: the start form becomes the
// kickoff captures and each phase becomes a step carrying its phase fields.
func transformPipe(pipe Pipe) model.Template {
	template := model.Template{
		SourceID:    pipe.ID,
		Title:       pipe.Name,
		Description: pipe.Description,
	}

	capturePosition := 0

	for _, field := range pipe.StartFormFields {
		if skippedFields[field.Type] {
			continue
		}

		capturePosition++

		capture, warning := transformField(field, capturePosition)
		if warning != "" {
			template.Warnings = append(template.Warnings, warning)
		}

		template.Captures = append(template.Captures, capture)
	}

	for i, phase := range pipe.Phases {
		step := model.Step{
			SourceID: phase.ID,
			Title:    phase.Name,
			Type:     model.StepTask,
			Position: i + 1,
		}

		fieldPosition := 0

		for _, field := range phase.Fields {
			if skippedFields[field.Type] {
				continue
			}

			fieldPosition++

			capture, warning := transformField(field, fieldPosition)
			if warning != "" {
				template.Warnings = append(template.Warnings, warning)
			}

			step.Captures = append(step.Captures, capture)
		}

		template.Steps = append(template.Steps, step)
	}

	return template
}

func transformField(field PipeField, position int) (model.Capture, string) {
	captureType, ok := fieldTypes[field.Type]

	warning := ""
	if !ok {
		captureType = model.CaptureText
		warning = fmt.Sprintf("field %q has unsupported type %q, defaulted to text", field.Label, field.Type)
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

// transformCard turns a card into an instance. Phases before the card's
// current phase count as completed steps; done cards complete everything.
func transformCard(pipe Pipe, card Card) model.Instance {
	instance := model.Instance{
		SourceID:         card.ID,
		Name:             card.Title,
		TemplateSourceID: pipe.ID,
		Status:           model.InstanceActive,
	}

	if card.Done {
		instance.Status = model.InstanceCompleted
	}

	if len(card.Assignees) > 0 && card.Assignees[0].Email != "" {
		instance.Owner = card.Assignees[0].Email
	}

	if createdAt, err := time.Parse(time.RFC3339, card.CreatedAt); err == nil {
		instance.CreatedAt = createdAt.UTC()
	}

	for _, field := range card.Fields {
		if field.Value == "" {
			continue
		}

		key := field.Field.ID
		if key == "" {
			key = field.Name
		}

		if instance.FieldValues == nil {
			instance.FieldValues = make(map[string]any)
		}

		instance.FieldValues[key] = field.Value
	}

	currentIndex := len(pipe.Phases)
	if !card.Done && card.CurrentPhase != nil {
		for i, phase := range pipe.Phases {
			if phase.ID == card.CurrentPhase.ID {
				currentIndex = i

				break
			}
		}
	}

	for i, phase := range pipe.Phases {
		instance.StepStates = append(instance.StepStates, model.StepState{
			StepSourceID: phase.ID,
			Completed:    i < currentIndex,
		})
	}

	return instance
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
