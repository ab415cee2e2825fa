package basecamp

import (
	"strconv"
	"strings"

	"github.com/tallyfy/migrator/pkg/model"
)

func transformPerson(person Person) model.Member {
	first, last := splitName(person.Name)

	role := model.RoleStandard
	if person.Admin {
		role = model.RoleAdmin
	} else if !person.Employee {
		// Clients and other outside collaborators get view-only access.
		role = model.RoleLight
	}

	return model.Member{
		SourceID:  strconv.FormatInt(person.ID, 10),
		Email:     person.EmailAddress,
		FirstName: first,
		LastName:  last,
		Role:      role,
		Active:    true,
	}
}

// transformTodoList turns one to-do list into a template. The project name
// prefixes the title so lists from different projects stay distinguishable.
func transformTodoList(project Project, list TodoList, todos []Todo) model.Template {
	template := model.Template{
		SourceID:    strconv.FormatInt(list.ID, 10),
		Title:       project.Name + ": " + list.Title,
		Description: list.Description,
		Tags:        []string{project.Name},
	}

	position := 0
	dueDates := false

	for _, todo := range todos {
		if todo.Title == "" {
			continue
		}

		position++

		step := model.Step{
			SourceID:    strconv.FormatInt(todo.ID, 10),
			Title:       todo.Title,
			Description: todo.Description,
			Type:        model.StepTask,
			Position:    position,
		}

		for _, assignee := range todo.Assignees {
			if assignee.EmailAddress != "" {
				step.Assignees = append(step.Assignees, assignee.EmailAddress)
			}
		}

		if todo.DueOn != "" {
			dueDates = true
		}

		template.Steps = append(template.Steps, step)
	}

	if dueDates {
		template.Warnings = append(template.Warnings,
			"to-do due dates are absolute and were not converted to relative deadlines")
	}

	return template
}

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
