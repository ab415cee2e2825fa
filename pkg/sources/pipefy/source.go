package pipefy

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tallyfy/migrator/pkg/model"
)

// Source implements the connector contract for Pipefy.
type Source struct {
	client *Client
	logger *slog.Logger

	organization string // configured or resolved on first use
}

// New builds the Pipefy connector.
func New(cfg Config, logger *slog.Logger) (*Source, error) {
	apiClient, err := NewClient(cfg, logger)
	if err != nil {
		return nil, err
	}

	return &Source{
		client:       apiClient,
		logger:       logger,
		organization: cfg.Organization,
	}, nil
}

// Name returns the vendor id.
func (s *Source) Name() string {
	return "pipefy"
}

// Readiness verifies the token and resolves the organization.
func (s *Source) Readiness(ctx context.Context) error {
	me, err := s.client.Me(ctx)
	if err != nil {
		return fmt.Errorf("pipefy readiness: %w", err)
	}

	organization, err := s.organizationID(ctx)
	if err != nil {
		return fmt.Errorf("pipefy readiness: %w", err)
	}

	s.logger.Info("Pipefy access verified", "user", me.Email, "organization", organization)

	return nil
}

// Discover counts the members, pipes and cards in scope.
func (s *Source) Discover(ctx context.Context) (*model.Discovery, error) {
	organization, err := s.organizationID(ctx)
	if err != nil {
		return nil, err
	}

	discovery := &model.Discovery{Source: s.Name(), GeneratedAt: time.Now().UTC()}

	members, err := s.client.Members(ctx, organization)
	if err != nil {
		return nil, err
	}

	discovery.Members = len(members)

	pipes, err := s.client.Pipes(ctx, organization)
	if err != nil {
		return nil, err
	}

	discovery.Templates = len(pipes)

	for _, pipe := range pipes {
		cards, err := s.client.Cards(ctx, pipe.ID)
		if err != nil {
			return nil, err
		}

		discovery.Instances += len(cards)
	}

	return discovery, nil
}

// Members lists organization members.
func (s *Source) Members(ctx context.Context) ([]model.Member, error) {
	organization, err := s.organizationID(ctx)
	if err != nil {
		return nil, err
	}

	orgMembers, err := s.client.Members(ctx, organization)
	if err != nil {
		return nil, err
	}

	members := make([]model.Member, 0, len(orgMembers))

	for _, member := range orgMembers {
		if member.User.Email == "" {
			s.logger.Warn("Skipping member without email", "id", member.User.ID, "name", member.User.Name)

			continue
		}

		members = append(members, transformMember(member))
	}

	return members, nil
}

// Templates transforms every pipe into a template.
func (s *Source) Templates(ctx context.Context) ([]model.Template, error) {
	organization, err := s.organizationID(ctx)
	if err != nil {
		return nil, err
	}

	pipes, err := s.client.Pipes(ctx, organization)
	if err != nil {
		return nil, err
	}

	templates := make([]model.Template, 0, len(pipes))

	for _, summary := range pipes {
		pipe, err := s.client.Pipe(ctx, summary.ID)
		if err != nil {
			return nil, err
		}

		templates = append(templates, transformPipe(*pipe))
	}

	return templates, nil
}

// Instances transforms every card into an instance.
func (s *Source) Instances(ctx context.Context) ([]model.Instance, error) {
	organization, err := s.organizationID(ctx)
	if err != nil {
		return nil, err
	}

	pipes, err := s.client.Pipes(ctx, organization)
	if err != nil {
		return nil, err
	}

	var instances []model.Instance

	for _, summary := range pipes {
		pipe, err := s.client.Pipe(ctx, summary.ID)
		if err != nil {
			return nil, err
		}

		cards, err := s.client.Cards(ctx, summary.ID)
		if err != nil {
			return nil, err
		}

		for _, card := range cards {
			instances = append(instances, transformCard(*pipe, card))
		}
	}

	return instances, nil
}

func (s *Source) organizationID(ctx context.Context) (string, error) {
	if s.organization != "" {
		return s.organization, nil
	}

	organizations, err := s.client.Organizations(ctx)
	if err != nil {
		return "", err
	}

	if len(organizations) == 0 {
		return "", fmt.Errorf("pipefy: token has no visible organizations")
	}

	s.organization = organizations[0].ID

	return s.organization, nil
}
