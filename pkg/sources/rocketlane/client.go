// Package rocketlane migrates Rocketlane workspaces into Tallyfy: workspace
// users become members, project templates with their tasks become templates,
// and projects become instances.
package rocketlane

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/tallyfy/migrator/pkg/client"
)

const defaultBaseURL = "https://api.rocketlane.com/api/1.0"

// Rocketlane allows 60 requests per minute per key.
const (
	rateLimitRequests = 60
	rateLimitWindow   = time.Minute
)

// Config holds the Rocketlane credentials.
type Config struct {
	APIKey  string
	BaseURL string
}

// Client is a typed wrapper over the Rocketlane REST API.
type Client struct {
	http   *client.Client
	logger *slog.Logger
}

// NewClient validates the config and builds a Rocketlane API client.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("rocketlane: api key is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	httpClient := client.New(client.Options{
		BaseURL:    cfg.BaseURL,
		AuthHeader: "api-key",
		AuthValue:  cfg.APIKey,
		RateLimit:  client.RateLimit{Requests: rateLimitRequests, Window: rateLimitWindow},
		Retry:      client.DefaultRetryPolicy(),
	}, logger)

	return &Client{http: httpClient, logger: logger}, nil
}

// page is the standard Rocketlane list envelope.
type page[T any] struct {
	Data       []T `json:"data"`
	Pagination struct {
		HasMore       bool   `json:"hasMore"`
		NextPageToken string `json:"nextPageToken"`
	} `json:"pagination"`
}

// collect drains a token-paginated Rocketlane collection endpoint.
func collect[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var (
		items []T
		token string
	)

	for {
		params := url.Values{"pageSize": {"100"}}
		if token != "" {
			params.Set("pageToken", token)
		}

		var response page[T]

		err := c.http.Get(ctx, path, params, &response)
		if err != nil {
			return nil, err
		}

		items = append(items, response.Data...)

		if !response.Pagination.HasMore || response.Pagination.NextPageToken == "" {
			break
		}

		token = response.Pagination.NextPageToken
	}

	return items, nil
}

// Users lists the workspace users, both team members and customers.
func (c *Client) Users(ctx context.Context) ([]User, error) {
	users, err := collect[User](ctx, c, "users")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}

	return users, nil
}

// Templates lists the project templates.
func (c *Client) Templates(ctx context.Context) ([]Template, error) {
	templates, err := collect[Template](ctx, c, "project-templates")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch project templates: %w", err)
	}

	return templates, nil
}

// TemplateTasks lists the tasks of one project template.
func (c *Client) TemplateTasks(ctx context.Context, templateID int64) ([]Task, error) {
	tasks, err := collect[Task](ctx, c, fmt.Sprintf("project-templates/%d/tasks", templateID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tasks for template %d: %w", templateID, err)
	}

	return tasks, nil
}

// Projects lists the workspace projects.
func (c *Client) Projects(ctx context.Context) ([]Project, error) {
	projects, err := collect[Project](ctx, c, "projects")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch projects: %w", err)
	}

	return projects, nil
}
