package kissflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tallyfy/migrator/pkg/model"
)

// Source implements the connector contract for Kissflow.
type Source struct {
	client *Client
	logger *slog.Logger
}

// New builds the Kissflow connector.
func New(cfg Config, logger *slog.Logger) (*Source, error) {
	apiClient, err := NewClient(cfg, logger)
	if err != nil {
		return nil, err
	}

	return &Source{client: apiClient, logger: logger}, nil
}

// Name returns the vendor id.
func (s *Source) Name() string {
	return "kissflow"
}

// Readiness verifies the access keys against the account.
func (s *Source) Readiness(ctx context.Context) error {
	users, err := s.client.Users(ctx)
	if err != nil {
		return fmt.Errorf("kissflow readiness: %w", err)
	}

	s.logger.Info("Kissflow access verified", "users", len(users))

	return nil
}

// Discover counts the users, groups, processes and items in scope.
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

	processes, err := s.client.Processes(ctx)
	if err != nil {
		return nil, err
	}

	discovery.Templates = len(processes)

	for _, process := range processes {
		items, err := s.client.Items(ctx, process.ID)
		if err != nil {
			return nil, err
		}

		discovery.Instances += len(items)
	}

	return discovery, nil
}

// Members lists account users as members.
func (s *Source) Members(ctx context.Context) ([]model.Member, error) {
	users, err := s.client.Users(ctx)
	if err != nil {
		return nil, err
	}

	members := make([]model.Member, 0, len(users))

	for _, user := range users {
		if user.Email == "" {
			s.logger.Warn("Skipping user without email", "id", user.ID, "name", user.Name)

			continue
		}

		members = append(members, transformUser(user))
	}

	return members, nil
}

// Groups lists account groups with their member emails.
func (s *Source) Groups(ctx context.Context) ([]model.Group, error) {
	groups, err := s.client.Groups(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]model.Group, 0, len(groups))

	for _, group := range groups {
		members, err := s.client.GroupMembers(ctx, group.ID)
		if err != nil {
			return nil, err
		}

		emails := make([]string, 0, len(members))

		for _, member := range members {
			if member.Email != "" {
				emails = append(emails, member.Email)
			}
		}

		out = append(out, transformGroup(group, emails))
	}

	return out, nil
}

// Templates transforms every process definition into a template.
func (s *Source) Templates(ctx context.Context) ([]model.Template, error) {
	processes, err := s.client.Processes(ctx)
	if err != nil {
		return nil, err
	}

	templates := make([]model.Template, 0, len(processes))

	for _, process := range processes {
		detail, err := s.client.ProcessDetail(ctx, process.ID)
		if err != nil {
			return nil, err
		}

		templates = append(templates, transformProcess(*detail))
	}

	return templates, nil
}

// Instances transforms every process item into an instance.
func (s *Source) Instances(ctx context.Context) ([]model.Instance, error) {
	processes, err := s.client.Processes(ctx)
	if err != nil {
		return nil, err
	}

	var instances []model.Instance

	for _, process := range processes {
		items, err := s.client.Items(ctx, process.ID)
		if err != nil {
			return nil, err
		}

		for _, item := range items {
			instances = append(instances, transformItem(process, item))
		}
	}

	return instances, nil
}
