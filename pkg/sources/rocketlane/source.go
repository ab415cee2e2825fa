package rocketlane

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/tallyfy/migrator/pkg/model"
)

// Source implements the connector contract for Rocketlane.
type Source struct {
	client *Client
	logger *slog.Logger
}

// New builds the Rocketlane connector.
func New(cfg Config, logger *slog.Logger) (*Source, error) {
	apiClient, err := NewClient(cfg, logger)
	if err != nil {
		return nil, err
	}

	return &Source{client: apiClient, logger: logger}, nil
}

// Name returns the vendor id.
func (s *Source) Name() string {
	return "rocketlane"
}

// Readiness verifies the key against the workspace.
func (s *Source) Readiness(ctx context.Context) error {
	users, err := s.client.Users(ctx)
	if err != nil {
		return fmt.Errorf("rocketlane readiness: %w", err)
	}

	s.logger.Info("Rocketlane access verified", "users", len(users))

	return nil
}

// Discover counts the users, templates and projects in scope.
func (s *Source) Discover(ctx context.Context) (*model.Discovery, error) {
	discovery := &model.Discovery{Source: s.Name(), GeneratedAt: time.Now().UTC()}

	users, err := s.client.Users(ctx)
	if err != nil {
		return nil, err
	}

	discovery.Members = len(users)

	templates, err := s.client.Templates(ctx)
	if err != nil {
		return nil, err
	}

	discovery.Templates = len(templates)

	projects, err := s.client.Projects(ctx)
	if err != nil {
		return nil, err
	}

	discovery.Instances = len(projects)

	return discovery, nil
}

// Members lists workspace users as members.
func (s *Source) Members(ctx context.Context) ([]model.Member, error) {
	users, err := s.client.Users(ctx)
	if err != nil {
		return nil, err
	}

	members := make([]model.Member, 0, len(users))

	for _, user := range users {
		if user.Email == "" {
			s.logger.Warn("Skipping user without email", "id", user.UserID)

			continue
		}

		members = append(members, transformUser(user))
	}

	return members, nil
}

// Templates transforms every project template with its tasks.
func (s *Source) Templates(ctx context.Context) ([]model.Template, error) {
	templates, err := s.client.Templates(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]model.Template, 0, len(templates))

	for _, template := range templates {
		tasks, err := s.client.TemplateTasks(ctx, template.TemplateID)
		if err != nil {
			return nil, err
		}

		out = append(out, transformTemplate(template, tasks))
	}

	return out, nil
}

// Instances transforms every template-based project into an instance.
// Projects created from scratch have no template to attach to and are
// skipped with a warning.
func (s *Source) Instances(ctx context.Context) ([]model.Instance, error) {
	projects, err := s.client.Projects(ctx)
	if err != nil {
		return nil, err
	}

	instances := make([]model.Instance, 0, len(projects))

	for _, project := range projects {
		if project.TemplateID == 0 {
			s.logger.Warn("Skipping project without template",
				"id", strconv.FormatInt(project.ProjectID, 10), "name", project.ProjectName)

			continue
		}

		instances = append(instances, transformProject(project))
	}

	return instances, nil
}
