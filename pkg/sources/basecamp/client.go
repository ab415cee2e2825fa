// Package basecamp migrates Basecamp 3 accounts into Tallyfy: people become
// members and every to-do list becomes a template whose to-dos are steps.
package basecamp

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/tallyfy/migrator/pkg/client"
)

const defaultBaseURL = "https://3.basecampapi.com"

// Basecamp allows 50 requests per 10 seconds.
const (
	rateLimitRequests = 50
	rateLimitWindow   = 10 * time.Second
)

// Config holds the Basecamp credentials. Basecamp requires a User-Agent
// identifying the integration.
type Config struct {
	AccessToken string
	AccountID   string
	BaseURL     string
	UserAgent   string
}

// Client is a typed wrapper over the Basecamp 3 REST API.
type Client struct {
	http   *client.Client
	logger *slog.Logger
}

// NewClient validates the config and builds a Basecamp API client.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("basecamp: access token is required")
	}

	if cfg.AccountID == "" {
		return nil, fmt.Errorf("basecamp: account id is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	if cfg.UserAgent == "" {
		cfg.UserAgent = "Tallyfy Migrator (support@tallyfy.com)"
	}

	httpClient := client.New(client.Options{
		BaseURL:    cfg.BaseURL + "/" + cfg.AccountID,
		UserAgent:  cfg.UserAgent,
		AuthHeader: "Authorization",
		AuthValue:  "Bearer " + cfg.AccessToken,
		RateLimit:  client.RateLimit{Requests: rateLimitRequests, Window: rateLimitWindow},
		Retry:      client.DefaultRetryPolicy(),
	}, logger)

	return &Client{http: httpClient, logger: logger}, nil
}

// collect drains a page-numbered Basecamp collection endpoint. Basecamp
// returns an empty array past the last page.
func collect[T any](ctx context.Context, c *Client, path string, params url.Values) ([]T, error) {
	if params == nil {
		params = url.Values{}
	}

	var items []T

	for pageNum := 1; ; pageNum++ {
		params.Set("page", strconv.Itoa(pageNum))

		var page []T

		err := c.http.Get(ctx, path, params, &page)
		if err != nil {
			return nil, err
		}

		if len(page) == 0 {
			break
		}

		items = append(items, page...)
	}

	return items, nil
}

// MyProfile returns the authenticated person.
func (c *Client) MyProfile(ctx context.Context) (*Person, error) {
	var person Person

	err := c.http.Get(ctx, "my/profile.json", nil, &person)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}

	return &person, nil
}

// People lists every person on the account.
func (c *Client) People(ctx context.Context) ([]Person, error) {
	people, err := collect[Person](ctx, c, "people.json", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch people: %w", err)
	}

	return people, nil
}

// Projects lists the active projects.
func (c *Client) Projects(ctx context.Context) ([]Project, error) {
	projects, err := collect[Project](ctx, c, "projects.json", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch projects: %w", err)
	}

	return projects, nil
}

// TodoLists lists the to-do lists of a project's todoset.
func (c *Client) TodoLists(ctx context.Context, projectID, todosetID int64) ([]TodoList, error) {
	path := fmt.Sprintf("buckets/%d/todosets/%d/todolists.json", projectID, todosetID)

	lists, err := collect[TodoList](ctx, c, path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch to-do lists for project %d: %w", projectID, err)
	}

	return lists, nil
}

// Todos lists the to-dos of a to-do list. Basecamp serves active and
// completed to-dos from separate queries, so both are fetched and merged.
func (c *Client) Todos(ctx context.Context, projectID, todolistID int64) ([]Todo, error) {
	path := fmt.Sprintf("buckets/%d/todolists/%d/todos.json", projectID, todolistID)

	active, err := collect[Todo](ctx, c, path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch to-dos for list %d: %w", todolistID, err)
	}

	completed, err := collect[Todo](ctx, c, path, url.Values{"completed": {"true"}})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch completed to-dos for list %d: %w", todolistID, err)
	}

	return append(active, completed...), nil
}
