package basecamp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tallyfy/migrator/pkg/model"
)

// Source implements the connector contract for Basecamp.
type Source struct {
	client *Client
	logger *slog.Logger
}

// New builds the Basecamp connector.
func New(cfg Config, logger *slog.Logger) (*Source, error) {
	apiClient, err := NewClient(cfg, logger)
	if err != nil {
		return nil, err
	}

	return &Source{client: apiClient, logger: logger}, nil
}

// Name returns the vendor id.
func (s *Source) Name() string {
	return "basecamp"
}

// Readiness verifies the token against the account.
func (s *Source) Readiness(ctx context.Context) error {
	profile, err := s.client.MyProfile(ctx)
	if err != nil {
		return fmt.Errorf("basecamp readiness: %w", err)
	}

	s.logger.Info("Basecamp access verified", "user", profile.EmailAddress)

	return nil
}

// Discover counts the people, projects and to-do lists in scope. Basecamp has
// no team concept, so groups stay at zero.
func (s *Source) Discover(ctx context.Context) (*model.Discovery, error) {
	discovery := &model.Discovery{Source: s.Name(), GeneratedAt: time.Now().UTC()}

	people, err := s.client.People(ctx)
	if err != nil {
		return nil, err
	}

	discovery.Members = len(people)

	projects, err := s.client.Projects(ctx)
	if err != nil {
		return nil, err
	}

	for _, project := range projects {
		todoset := project.Todoset()
		if todoset == nil {
			continue
		}

		lists, err := s.client.TodoLists(ctx, project.ID, todoset.ID)
		if err != nil {
			return nil, err
		}

		discovery.Templates += len(lists)
	}

	if discovery.Templates == 0 && len(projects) > 0 {
		discovery.Warnings = append(discovery.Warnings, "no projects expose a to-do set; templates phase will be empty")
	}

	return discovery, nil
}

// Members lists account people as members.
func (s *Source) Members(ctx context.Context) ([]model.Member, error) {
	people, err := s.client.People(ctx)
	if err != nil {
		return nil, err
	}

	members := make([]model.Member, 0, len(people))

	for _, person := range people {
		if person.EmailAddress == "" {
			s.logger.Warn("Skipping person without email", "id", person.ID, "name", person.Name)

			continue
		}

		members = append(members, transformPerson(person))
	}

	return members, nil
}

// Templates transforms every to-do list of every project into a template.
func (s *Source) Templates(ctx context.Context) ([]model.Template, error) {
	projects, err := s.client.Projects(ctx)
	if err != nil {
		return nil, err
	}

	var templates []model.Template

	for _, project := range projects {
		todoset := project.Todoset()
		if todoset == nil {
			s.logger.Debug("Project has no enabled to-do set", "project", project.Name)

			continue
		}

		lists, err := s.client.TodoLists(ctx, project.ID, todoset.ID)
		if err != nil {
			return nil, err
		}

		for _, list := range lists {
			todos, err := s.client.Todos(ctx, project.ID, list.ID)
			if err != nil {
				return nil, err
			}

			templates = append(templates, transformTodoList(project, list, todos))
		}
	}

	return templates, nil
}
