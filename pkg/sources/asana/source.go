package asana

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tallyfy/migrator/pkg/model"
)

// Source implements the connector contract for Asana.
type Source struct {
	client *Client
	logger *slog.Logger

	workspace string // configured or resolved on first use
}

// New builds the Asana connector.
func New(cfg Config, logger *slog.Logger) (*Source, error) {
	apiClient, err := NewClient(cfg, logger)
	if err != nil {
		return nil, err
	}

	return &Source{
		client:    apiClient,
		logger:    logger,
		workspace: cfg.Workspace,
	}, nil
}

// Name returns the vendor id.
func (s *Source) Name() string {
	return "asana"
}

// Readiness verifies the token and resolves the workspace.
func (s *Source) Readiness(ctx context.Context) error {
	me, err := s.client.Me(ctx)
	if err != nil {
		return fmt.Errorf("asana readiness: %w", err)
	}

	workspace, err := s.workspaceGID(ctx)
	if err != nil {
		return fmt.Errorf("asana readiness: %w", err)
	}

	s.logger.Info("Asana access verified", "user", me.Email, "workspace", workspace)

	return nil
}

// Discover counts the users, teams and projects in scope.
func (s *Source) Discover(ctx context.Context) (*model.Discovery, error) {
	workspace, err := s.workspaceGID(ctx)
	if err != nil {
		return nil, err
	}

	discovery := &model.Discovery{Source: s.Name(), GeneratedAt: time.Now().UTC()}

	users, err := s.client.Users(ctx, workspace)
	if err != nil {
		return nil, err
	}

	discovery.Members = len(users)

	teams, err := s.client.Teams(ctx, workspace)
	if err != nil {
		s.logger.Warn("Failed to list teams, workspace may not be an organization", "error", err)
		discovery.Warnings = append(discovery.Warnings, "teams unavailable; groups phase will be empty")
	} else {
		discovery.Groups = len(teams)
	}

	projects, err := s.client.Projects(ctx, workspace)
	if err != nil {
		return nil, err
	}

	discovery.Templates = len(projects)

	return discovery, nil
}

// Members lists workspace users as members.
func (s *Source) Members(ctx context.Context) ([]model.Member, error) {
	workspace, err := s.workspaceGID(ctx)
	if err != nil {
		return nil, err
	}

	users, err := s.client.Users(ctx, workspace)
	if err != nil {
		return nil, err
	}

	members := make([]model.Member, 0, len(users))

	for _, user := range users {
		if user.Email == "" {
			s.logger.Warn("Skipping user without email", "gid", user.GID, "name", user.Name)

			continue
		}

		members = append(members, transformUser(user))
	}

	return members, nil
}

// Groups lists organization teams with their member emails.
func (s *Source) Groups(ctx context.Context) ([]model.Group, error) {
	workspace, err := s.workspaceGID(ctx)
	if err != nil {
		return nil, err
	}

	teams, err := s.client.Teams(ctx, workspace)
	if err != nil {
		return nil, err
	}

	groups := make([]model.Group, 0, len(teams))

	for _, team := range teams {
		users, err := s.client.TeamUsers(ctx, team.GID)
		if err != nil {
			return nil, err
		}

		emails := make([]string, 0, len(users))

		for _, user := range users {
			if user.Email != "" {
				emails = append(emails, user.Email)
			}
		}

		groups = append(groups, transformTeam(team, emails))
	}

	return groups, nil
}

// Templates transforms every project with its tasks into a template.
func (s *Source) Templates(ctx context.Context) ([]model.Template, error) {
	workspace, err := s.workspaceGID(ctx)
	if err != nil {
		return nil, err
	}

	projects, err := s.client.Projects(ctx, workspace)
	if err != nil {
		return nil, err
	}

	templates := make([]model.Template, 0, len(projects))

	for _, project := range projects {
		tasks, err := s.client.Tasks(ctx, project.GID)
		if err != nil {
			return nil, err
		}

		templates = append(templates, transformProject(project, tasks))
	}

	return templates, nil
}

func (s *Source) workspaceGID(ctx context.Context) (string, error) {
	if s.workspace != "" {
		return s.workspace, nil
	}

	workspaces, err := s.client.Workspaces(ctx)
	if err != nil {
		return "", err
	}

	if len(workspaces) == 0 {
		return "", fmt.Errorf("asana: token has no visible workspaces")
	}

	s.workspace = workspaces[0].GID

	return s.workspace, nil
}
