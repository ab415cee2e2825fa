// Package clickup migrates ClickUp workspaces into Tallyfy: workspace
// members become members, user groups become groups, and lists with their
// tasks and custom fields become templates.
package clickup

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/tallyfy/migrator/pkg/client"
)

const defaultBaseURL = "https://api.clickup.com/api/v2"

// ClickUp allows 100 requests per minute per token on the free plan.
const (
	rateLimitRequests = 100
	rateLimitWindow   = time.Minute
)

// Config holds the ClickUp credentials.
type Config struct {
	AccessToken string
	BaseURL     string

	// Team restricts the migration to one workspace id. Empty means the
	// first workspace visible to the token.
	Team string
}

// Client is a typed wrapper over the ClickUp REST API.
type Client struct {
	http   *client.Client
	logger *slog.Logger
}

// NewClient validates the config and builds a ClickUp API client.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("clickup: access token is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	// ClickUp personal tokens go in the Authorization header without a
	// Bearer prefix.
	httpClient := client.New(client.Options{
		BaseURL:    cfg.BaseURL,
		AuthHeader: "Authorization",
		AuthValue:  cfg.AccessToken,
		RateLimit:  client.RateLimit{Requests: rateLimitRequests, Window: rateLimitWindow},
		Retry:      client.DefaultRetryPolicy(),
	}, logger)

	return &Client{http: httpClient, logger: logger}, nil
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var response struct {
		User User `json:"user"`
	}

	err := c.http.Get(ctx, "user", nil, &response)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch authenticated user: %w", err)
	}

	return &response.User, nil
}

// Teams lists the workspaces visible to the token together with their
// members.
func (c *Client) Teams(ctx context.Context) ([]Team, error) {
	var response struct {
		Teams []Team `json:"teams"`
	}

	err := c.http.Get(ctx, "team", nil, &response)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch teams: %w", err)
	}

	return response.Teams, nil
}

// Groups lists the user groups of a workspace.
func (c *Client) Groups(ctx context.Context, teamID string) ([]Group, error) {
	var response struct {
		Groups []Group `json:"groups"`
	}

	err := c.http.Get(ctx, "group", url.Values{"team_id": {teamID}}, &response)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch groups for team %s: %w", teamID, err)
	}

	return response.Groups, nil
}

// Spaces lists the non-archived spaces of a workspace.
func (c *Client) Spaces(ctx context.Context, teamID string) ([]Space, error) {
	var response struct {
		Spaces []Space `json:"spaces"`
	}

	err := c.http.Get(ctx, fmt.Sprintf("team/%s/space", teamID), url.Values{"archived": {"false"}}, &response)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch spaces for team %s: %w", teamID, err)
	}

	return response.Spaces, nil
}

// Folders lists the non-archived folders of a space, each carrying its
// lists inline.
func (c *Client) Folders(ctx context.Context, spaceID string) ([]Folder, error) {
	var response struct {
		Folders []Folder `json:"folders"`
	}

	err := c.http.Get(ctx, fmt.Sprintf("space/%s/folder", spaceID), url.Values{"archived": {"false"}}, &response)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch folders for space %s: %w", spaceID, err)
	}

	return response.Folders, nil
}

// FolderlessLists lists the lists that live directly under a space.
func (c *Client) FolderlessLists(ctx context.Context, spaceID string) ([]List, error) {
	var response struct {
		Lists []List `json:"lists"`
	}

	err := c.http.Get(ctx, fmt.Sprintf("space/%s/list", spaceID), url.Values{"archived": {"false"}}, &response)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lists for space %s: %w", spaceID, err)
	}

	return response.Lists, nil
}

// Tasks drains the page-numbered task collection of a list.
func (c *Client) Tasks(ctx context.Context, listID string) ([]Task, error) {
	var tasks []Task

	for page := 0; ; page++ {
		var response struct {
			Tasks    []Task `json:"tasks"`
			LastPage bool   `json:"last_page"`
		}

		params := url.Values{
			"archived": {"false"},
			"page":     {strconv.Itoa(page)},
		}

		err := c.http.Get(ctx, fmt.Sprintf("list/%s/task", listID), params, &response)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch tasks for list %s: %w", listID, err)
		}

		tasks = append(tasks, response.Tasks...)

		if response.LastPage || len(response.Tasks) == 0 {
			break
		}
	}

	return tasks, nil
}

// Fields lists the custom field definitions accessible from a list.
func (c *Client) Fields(ctx context.Context, listID string) ([]Field, error) {
	var response struct {
		Fields []Field `json:"fields"`
	}

	err := c.http.Get(ctx, fmt.Sprintf("list/%s/field", listID), nil, &response)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fields for list %s: %w", listID, err)
	}

	return response.Fields, nil
}
