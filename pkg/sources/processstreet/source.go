package processstreet

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tallyfy/migrator/pkg/model"
)

// Source implements the connector contract for Process Street.
type Source struct {
	client *Client
	logger *slog.Logger
}

// New builds the Process Street connector.
func New(cfg Config, logger *slog.Logger) (*Source, error) {
	apiClient, err := NewClient(cfg, logger)
	if err != nil {
		return nil, err
	}

	return &Source{client: apiClient, logger: logger}, nil
}

// Name returns the vendor id.
func (s *Source) Name() string {
	return "processstreet"
}

// Readiness verifies the key against the organization.
func (s *Source) Readiness(ctx context.Context) error {
	users, err := s.client.Users(ctx)
	if err != nil {
		return fmt.Errorf("processstreet readiness: %w", err)
	}

	s.logger.Info("Process Street access verified", "users", len(users))

	return nil
}

// Discover counts the users, groups, workflows and runs in scope.
func (s *Source) Discover(ctx context.Context) (*model.Discovery, error) {
	discovery := &model.Discovery{Source: s.Name(), GeneratedAt: time.Now().UTC()}

	users, err := s.client.Users(ctx)
	if err != nil {
		return nil, err
	}

	discovery.Members = len(users)

	groups, err := s.client.Groups(ctx)
	if err != nil {
		return nil, err
	}

	discovery.Groups = len(groups)

	workflows, err := s.client.Workflows(ctx)
	if err != nil {
		return nil, err
	}

	discovery.Templates = len(workflows)

	for _, workflow := range workflows {
		runs, err := s.client.WorkflowRuns(ctx, workflow.ID)
		if err != nil {
			return nil, err
		}

		discovery.Instances += len(runs)
	}

	return discovery, nil
}

// Members lists organization users as members.
func (s *Source) Members(ctx context.Context) ([]model.Member, error) {
	users, err := s.client.Users(ctx)
	if err != nil {
		return nil, err
	}

	members := make([]model.Member, 0, len(users))

	for _, user := range users {
		if user.Email == "" {
			s.logger.Warn("Skipping user without email", "id", user.ID)

			continue
		}

		members = append(members, transformUser(user))
	}

	return members, nil
}

// Groups lists organization groups with their member emails.
func (s *Source) Groups(ctx context.Context) ([]model.Group, error) {
	groups, err := s.client.Groups(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]model.Group, 0, len(groups))

	for _, group := range groups {
		users, err := s.client.GroupMembers(ctx, group.ID)
		if err != nil {
			return nil, err
		}

		emails := make([]string, 0, len(users))

		for _, user := range users {
			if user.Email != "" {
				emails = append(emails, user.Email)
			}
		}

		out = append(out, transformGroup(group, emails))
	}

	return out, nil
}

// Templates transforms every workflow definition into a template.
func (s *Source) Templates(ctx context.Context) ([]model.Template, error) {
	workflows, err := s.client.Workflows(ctx)
	if err != nil {
		return nil, err
	}

	templates := make([]model.Template, 0, len(workflows))

	for _, workflow := range workflows {
		detail, err := s.client.Workflow(ctx, workflow.ID)
		if err != nil {
			return nil, err
		}

		templates = append(templates, transformWorkflow(*detail))
	}

	return templates, nil
}

// Instances transforms every workflow run into an instance with its task
// states and form values.
func (s *Source) Instances(ctx context.Context) ([]model.Instance, error) {
	workflows, err := s.client.Workflows(ctx)
	if err != nil {
		return nil, err
	}

	var instances []model.Instance

	for _, workflow := range workflows {
		runs, err := s.client.WorkflowRuns(ctx, workflow.ID)
		if err != nil {
			return nil, err
		}

		for _, run := range runs {
			tasks, err := s.client.RunTasks(ctx, run.ID)
			if err != nil {
				return nil, err
			}

			values, err := s.client.FormFieldValues(ctx, run.ID)
			if err != nil {
				return nil, err
			}

			instances = append(instances, transformRun(run, tasks, values))
		}
	}

	return instances, nil
}
