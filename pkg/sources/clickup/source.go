package clickup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tallyfy/migrator/pkg/model"
)

// Source implements the connector contract for ClickUp.
type Source struct {
	client *Client
	logger *slog.Logger

	team string // configured or resolved on first use
}

// New builds the ClickUp connector.
func New(cfg Config, logger *slog.Logger) (*Source, error) {
	apiClient, err := NewClient(cfg, logger)
	if err != nil {
		return nil, err
	}

	return &Source{
		client: apiClient,
		logger: logger,
		team:   cfg.Team,
	}, nil
}

// Name returns the vendor id.
func (s *Source) Name() string {
	return "clickup"
}

// Readiness verifies the token and resolves the workspace.
func (s *Source) Readiness(ctx context.Context) error {
	me, err := s.client.Me(ctx)
	if err != nil {
		return fmt.Errorf("clickup readiness: %w", err)
	}

	team, err := s.teamID(ctx)
	if err != nil {
		return fmt.Errorf("clickup readiness: %w", err)
	}

	s.logger.Info("ClickUp access verified", "user", me.Email, "team", team)

	return nil
}

// Discover counts the members, groups and lists in scope.
func (s *Source) Discover(ctx context.Context) (*model.Discovery, error) {
	team, err := s.selectedTeam(ctx)
	if err != nil {
		return nil, err
	}

	discovery := &model.Discovery{Source: s.Name(), GeneratedAt: time.Now().UTC()}
	discovery.Members = len(team.Members)

	groups, err := s.client.Groups(ctx, team.ID)
	if err != nil {
		s.logger.Warn("Failed to list user groups", "error", err)
		discovery.Warnings = append(discovery.Warnings, "user groups unavailable; groups phase will be empty")
	} else {
		discovery.Groups = len(groups)
	}

	err = s.walkLists(ctx, team.ID, func(_ Space, _ *Folder, _ List) error {
		discovery.Templates++

		return nil
	})
	if err != nil {
		return nil, err
	}

	return discovery, nil
}

// Members lists workspace members.
func (s *Source) Members(ctx context.Context) ([]model.Member, error) {
	team, err := s.selectedTeam(ctx)
	if err != nil {
		return nil, err
	}

	members := make([]model.Member, 0, len(team.Members))

	for _, member := range team.Members {
		if member.User.Email == "" {
			s.logger.Warn("Skipping member without email", "id", member.User.ID, "username", member.User.Username)

			continue
		}

		members = append(members, transformUser(member.User))
	}

	return members, nil
}

// Groups lists user groups with their member emails.
func (s *Source) Groups(ctx context.Context) ([]model.Group, error) {
	team, err := s.teamID(ctx)
	if err != nil {
		return nil, err
	}

	groups, err := s.client.Groups(ctx, team)
	if err != nil {
		return nil, err
	}

	out := make([]model.Group, 0, len(groups))

	for _, group := range groups {
		out = append(out, transformGroup(group))
	}

	return out, nil
}

// Templates transforms every list of every space into a template.
func (s *Source) Templates(ctx context.Context) ([]model.Template, error) {
	team, err := s.teamID(ctx)
	if err != nil {
		return nil, err
	}

	var templates []model.Template

	err = s.walkLists(ctx, team, func(space Space, folder *Folder, list List) error {
		tasks, err := s.client.Tasks(ctx, list.ID)
		if err != nil {
			return err
		}

		fields, err := s.client.Fields(ctx, list.ID)
		if err != nil {
			return err
		}

		templates = append(templates, transformList(space, folder, list, tasks, fields))

		return nil
	})
	if err != nil {
		return nil, err
	}

	return templates, nil
}

// walkLists visits every list in the workspace, both inside folders and
// directly under spaces.
func (s *Source) walkLists(ctx context.Context, teamID string, visit func(Space, *Folder, List) error) error {
	spaces, err := s.client.Spaces(ctx, teamID)
	if err != nil {
		return err
	}

	for _, space := range spaces {
		folders, err := s.client.Folders(ctx, space.ID)
		if err != nil {
			return err
		}

		for _, folder := range folders {
			for _, list := range folder.Lists {
				err := visit(space, &folder, list)
				if err != nil {
					return err
				}
			}
		}

		lists, err := s.client.FolderlessLists(ctx, space.ID)
		if err != nil {
			return err
		}

		for _, list := range lists {
			err := visit(space, nil, list)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *Source) teamID(ctx context.Context) (string, error) {
	team, err := s.selectedTeam(ctx)
	if err != nil {
		return "", err
	}

	return team.ID, nil
}

func (s *Source) selectedTeam(ctx context.Context) (*Team, error) {
	teams, err := s.client.Teams(ctx)
	if err != nil {
		return nil, err
	}

	if len(teams) == 0 {
		return nil, fmt.Errorf("clickup: token has no visible workspaces")
	}

	if s.team == "" {
		return &teams[0], nil
	}

	for i := range teams {
		if teams[i].ID == s.team {
			return &teams[i], nil
		}
	}

	return nil, fmt.Errorf("clickup: workspace %s is not visible to this token", s.team)
}
