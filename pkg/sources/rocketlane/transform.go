package rocketlane

import (
	"strconv"
	"strings"
	"time"

	"github.com/tallyfy/migrator/pkg/model"
)

func transformUser(user User) model.Member {
	role := model.RoleStandard
	if user.Type == "CUSTOMER" {
		role = model.RoleLight
	}

	return model.Member{
		SourceID:  strconv.FormatInt(user.UserID, 10),
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      role,
		Active:    true,
	}
}

// transformTemplate turns a project template with its tasks into a template.
func transformTemplate(template Template, tasks []Task) model.Template {
	out := model.Template{
		SourceID:    strconv.FormatInt(template.TemplateID, 10),
		Title:       template.TemplateName,
		Description: template.Description,
	}

	position := 0
	dueDates := false

	for _, task := range tasks {
		if task.TaskName == "" {
			continue
		}

		position++

		step := model.Step{
			SourceID:    strconv.FormatInt(task.TaskID, 10),
			Title:       task.TaskName,
			Description: task.TaskDescription,
			Type:        model.StepTask,
			Position:    position,
		}

		for _, assignee := range task.Assignees {
			if assignee.Email != "" {
				step.Assignees = append(step.Assignees, assignee.Email)
			}
		}

		if task.DueDate != "" {
			dueDates = true
		}

		out.Steps = append(out.Steps, step)
	}

	if dueDates {
		out.Warnings = append(out.Warnings,
			"task due dates are absolute and were not converted to relative deadlines")
	}

	return out
}

// transformProject turns a project into an instance of its template.
func transformProject(project Project) model.Instance {
	instance := model.Instance{
		SourceID:         strconv.FormatInt(project.ProjectID, 10),
		Name:             project.ProjectName,
		TemplateSourceID: strconv.FormatInt(project.TemplateID, 10),
		Status:           projectStatus(project.Status.Label),
	}

	if project.Owner != nil {
		instance.Owner = project.Owner.Email
	}

	if project.CreatedAt > 0 {
		instance.CreatedAt = time.UnixMilli(project.CreatedAt).UTC()
	}

	return instance
}

// projectStatus folds free-form status labels into the three instance
// states.
func projectStatus(label string) model.InstanceStatus {
	lowered := strings.ToLower(label)

	switch {
	case strings.Contains(lowered, "complete") || strings.Contains(lowered, "done") || strings.Contains(lowered, "delivered"):
		return model.InstanceCompleted
	case strings.Contains(lowered, "archiv") || strings.Contains(lowered, "cancel"):
		return model.InstanceArchived
	default:
		return model.InstanceActive
	}
}
