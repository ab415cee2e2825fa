// Package asana migrates Asana workspaces into Tallyfy: workspace users
// become members, teams become groups, and projects with their tasks and
// custom fields become templates.
package asana

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/tallyfy/migrator/pkg/client"
)

const defaultBaseURL = "https://app.asana.com/api/1.0"

// Asana allows 150 requests per minute on the standard tier.
const (
	rateLimitRequests = 150
	rateLimitWindow   = time.Minute
)

// Config holds the Asana credentials.
type Config struct {
	AccessToken string
	BaseURL     string

	// Workspace restricts the migration to one workspace GID. Empty means
	// the first workspace visible to the token.
	Workspace string
}

// Client is a typed wrapper over the Asana REST API.
type Client struct {
	http   *client.Client
	logger *slog.Logger
}

// NewClient validates the config and builds an Asana API client.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("asana: access token is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	httpClient := client.New(client.Options{
		BaseURL:    cfg.BaseURL,
		AuthHeader: "Authorization",
		AuthValue:  "Bearer " + cfg.AccessToken,
		RateLimit:  client.RateLimit{Requests: rateLimitRequests, Window: rateLimitWindow},
		Retry:      client.DefaultRetryPolicy(),
	}, logger)

	return &Client{http: httpClient, logger: logger}, nil
}

// page is the standard Asana response envelope.
type page[T any] struct {
	Data     []T `json:"data"`
	NextPage *struct {
		Offset string `json:"offset"`
	} `json:"next_page"`
}

// collect drains an offset-paginated Asana collection endpoint.
func collect[T any](ctx context.Context, c *Client, path string, params url.Values) ([]T, error) {
	if params == nil {
		params = url.Values{}
	}

	params.Set("limit", "100")

	var items []T

	for {
		var response page[T]

		err := c.http.Get(ctx, path, params, &response)
		if err != nil {
			return nil, err
		}

		items = append(items, response.Data...)

		if response.NextPage == nil || response.NextPage.Offset == "" {
			break
		}

		params.Set("offset", response.NextPage.Offset)
	}

	return items, nil
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var response struct {
		Data User `json:"data"`
	}

	err := c.http.Get(ctx, "users/me", nil, &response)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch authenticated user: %w", err)
	}

	return &response.Data, nil
}

// Workspaces lists the workspaces visible to the token.
func (c *Client) Workspaces(ctx context.Context) ([]Workspace, error) {
	workspaces, err := collect[Workspace](ctx, c, "workspaces", url.Values{
		"opt_fields": {"name,is_organization"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch workspaces: %w", err)
	}

	return workspaces, nil
}

// Users lists the members of a workspace.
func (c *Client) Users(ctx context.Context, workspaceGID string) ([]User, error) {
	users, err := collect[User](ctx, c, "users", url.Values{
		"workspace":  {workspaceGID},
		"opt_fields": {"name,email"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users for workspace %s: %w", workspaceGID, err)
	}

	return users, nil
}

// Teams lists the teams of an organization workspace.
func (c *Client) Teams(ctx context.Context, workspaceGID string) ([]Team, error) {
	teams, err := collect[Team](ctx, c, fmt.Sprintf("organizations/%s/teams", workspaceGID), url.Values{
		"opt_fields": {"name"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch teams for workspace %s: %w", workspaceGID, err)
	}

	return teams, nil
}

// TeamUsers lists the members of a team.
func (c *Client) TeamUsers(ctx context.Context, teamGID string) ([]User, error) {
	users, err := collect[User](ctx, c, fmt.Sprintf("teams/%s/users", teamGID), url.Values{
		"opt_fields": {"name,email"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users for team %s: %w", teamGID, err)
	}

	return users, nil
}

// Projects lists the non-archived projects of a workspace.
func (c *Client) Projects(ctx context.Context, workspaceGID string) ([]Project, error) {
	projects, err := collect[Project](ctx, c, "projects", url.Values{
		"workspace":  {workspaceGID},
		"archived":   {"false"},
		"opt_fields": {"name,notes,archived,team.name,custom_field_settings.custom_field.(name|type|enum_options.name)"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch projects for workspace %s: %w", workspaceGID, err)
	}

	return projects, nil
}

// Tasks lists the tasks of a project in board order.
func (c *Client) Tasks(ctx context.Context, projectGID string) ([]Task, error) {
	tasks, err := collect[Task](ctx, c, fmt.Sprintf("projects/%s/tasks", projectGID), url.Values{
		"opt_fields": {"name,notes,completed,resource_subtype,assignee.email,due_on"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tasks for project %s: %w", projectGID, err)
	}

	return tasks, nil
}
