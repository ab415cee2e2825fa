package monday

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tallyfy/migrator/pkg/model"
)

// Source implements the connector contract for monday.com.
type Source struct {
	client *Client
	logger *slog.Logger
}

// New builds the monday.com connector.
func New(cfg Config, logger *slog.Logger) (*Source, error) {
	apiClient, err := NewClient(cfg, logger)
	if err != nil {
		return nil, err
	}

	return &Source{client: apiClient, logger: logger}, nil
}

// Name returns the vendor id.
func (s *Source) Name() string {
	return "monday"
}

// Readiness verifies the token.
func (s *Source) Readiness(ctx context.Context) error {
	me, err := s.client.Me(ctx)
	if err != nil {
		return fmt.Errorf("monday readiness: %w", err)
	}

	s.logger.Info("monday.com access verified", "user", me.Email)

	return nil
}

// Discover counts the users, teams, boards and items in scope.
func (s *Source) Discover(ctx context.Context) (*model.Discovery, error) {
	discovery := &model.Discovery{Source: s.Name(), GeneratedAt: time.Now().UTC()}

	users, err := s.client.Users(ctx)
	if err != nil {
		return nil, err
	}

	discovery.Members = len(users)

	teams, err := s.client.Teams(ctx)
	if err != nil {
		return nil, err
	}

	discovery.Groups = len(teams)

	boards, err := s.boards(ctx)
	if err != nil {
		return nil, err
	}

	discovery.Templates = len(boards)

	for _, board := range boards {
		items, err := s.client.Items(ctx, board.ID)
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

// Groups lists teams with their member emails.
func (s *Source) Groups(ctx context.Context) ([]model.Group, error) {
	teams, err := s.client.Teams(ctx)
	if err != nil {
		return nil, err
	}

	groups := make([]model.Group, 0, len(teams))

	for _, team := range teams {
		groups = append(groups, transformTeam(team))
	}

	return groups, nil
}

// Templates transforms every board into a kickoff-form template.
func (s *Source) Templates(ctx context.Context) ([]model.Template, error) {
	boards, err := s.boards(ctx)
	if err != nil {
		return nil, err
	}

	templates := make([]model.Template, 0, len(boards))

	for _, board := range boards {
		templates = append(templates, transformBoard(board))
	}

	return templates, nil
}

// Instances transforms every board item into an instance.
func (s *Source) Instances(ctx context.Context) ([]model.Instance, error) {
	boards, err := s.boards(ctx)
	if err != nil {
		return nil, err
	}

	var instances []model.Instance

	for _, board := range boards {
		items, err := s.client.Items(ctx, board.ID)
		if err != nil {
			return nil, err
		}

		for _, item := range items {
			instances = append(instances, transformItem(board, item))
		}
	}

	return instances, nil
}

// boards lists the migratable boards, dropping the shadow boards monday.com
// maintains for subitems.
func (s *Source) boards(ctx context.Context) ([]Board, error) {
	boards, err := s.client.Boards(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Board, 0, len(boards))

	for _, board := range boards {
		if strings.HasPrefix(board.Name, "Subitems of ") {
			continue
		}

		out = append(out, board)
	}

	return out, nil
}
