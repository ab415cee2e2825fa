// Package monday migrates monday.com accounts into Tallyfy: account users
// become members, teams become groups, boards with their columns become
// templates, and board items become instances.
package monday

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tallyfy/migrator/pkg/client"
)

const defaultBaseURL = "https://api.monday.com/v2"

const apiVersion = "2024-01"

// monday.com budgets complexity rather than requests; 40 per minute keeps a
// migration well inside the smallest plan's budget.
const (
	rateLimitRequests = 40
	rateLimitWindow   = time.Minute
)

// Config holds the monday.com credentials.
type Config struct {
	APIToken string
	BaseURL  string
}

// Client is a typed wrapper over the monday.com GraphQL API.
type Client struct {
	http   *client.Client
	logger *slog.Logger
}

// NewClient validates the config and builds a monday.com API client.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIToken == "" {
		return nil, fmt.Errorf("monday: api token is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	// monday.com expects the bare token in the Authorization header and
	// pins the schema with an API-Version header.
	httpClient := client.New(client.Options{
		BaseURL:      cfg.BaseURL,
		AuthHeader:   "Authorization",
		AuthValue:    cfg.APIToken,
		ExtraHeaders: map[string]string{"API-Version": apiVersion},
		RateLimit:    client.RateLimit{Requests: rateLimitRequests, Window: rateLimitWindow},
		Retry:        client.DefaultRetryPolicy(),
	}, logger)

	return &Client{http: httpClient, logger: logger}, nil
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var response struct {
		Me User `json:"me"`
	}

	err := c.http.GraphQL(ctx, `query { me { id name email } }`, nil, &response)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch authenticated user: %w", err)
	}

	return &response.Me, nil
}

// Users drains the page-numbered user collection.
func (c *Client) Users(ctx context.Context) ([]User, error) {
	const query = `query ($page: Int!) {
		users (limit: 100, page: $page) { id name email enabled is_admin is_guest }
	}`

	var users []User

	for page := 1; ; page++ {
		var response struct {
			Users []User `json:"users"`
		}

		err := c.http.GraphQL(ctx, query, map[string]any{"page": page}, &response)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch users page %d: %w", page, err)
		}

		if len(response.Users) == 0 {
			break
		}

		users = append(users, response.Users...)
	}

	return users, nil
}

// Teams lists the account teams with their members.
func (c *Client) Teams(ctx context.Context) ([]Team, error) {
	var response struct {
		Teams []Team `json:"teams"`
	}

	err := c.http.GraphQL(ctx, `query { teams { id name users { id email } } }`, nil, &response)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch teams: %w", err)
	}

	return response.Teams, nil
}

// Boards drains the page-numbered board collection, including each board's
// column definitions.
func (c *Client) Boards(ctx context.Context) ([]Board, error) {
	const query = `query ($page: Int!) {
		boards (limit: 25, page: $page, state: active) {
			id name description board_kind
			columns { id title type settings_str }
		}
	}`

	var boards []Board

	for page := 1; ; page++ {
		var response struct {
			Boards []Board `json:"boards"`
		}

		err := c.http.GraphQL(ctx, query, map[string]any{"page": page}, &response)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch boards page %d: %w", page, err)
		}

		if len(response.Boards) == 0 {
			break
		}

		boards = append(boards, response.Boards...)
	}

	return boards, nil
}

// Items drains the cursor-paginated items of a board.
func (c *Client) Items(ctx context.Context, boardID string) ([]Item, error) {
	const query = `query ($board: ID!, $cursor: String) {
		boards (ids: [$board]) {
			items_page (limit: 100, cursor: $cursor) {
				cursor
				items {
					id name created_at
					creator { id email }
					column_values { id text type }
				}
			}
		}
	}`

	var (
		items  []Item
		cursor string
	)

	for {
		variables := map[string]any{"board": boardID}
		if cursor != "" {
			variables["cursor"] = cursor
		}

		var response struct {
			Boards []struct {
				ItemsPage struct {
					Cursor string `json:"cursor"`
					Items  []Item `json:"items"`
				} `json:"items_page"`
			} `json:"boards"`
		}

		err := c.http.GraphQL(ctx, query, variables, &response)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch items for board %s: %w", boardID, err)
		}

		if len(response.Boards) == 0 {
			break
		}

		page := response.Boards[0].ItemsPage
		items = append(items, page.Items...)

		if page.Cursor == "" {
			break
		}

		cursor = page.Cursor
	}

	return items, nil
}
