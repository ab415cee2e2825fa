// Package pipefy migrates Pipefy organizations into Tallyfy: organization
// members become members, pipes with their phases and start forms become
// templates, and cards become instances.
package pipefy

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tallyfy/migrator/pkg/client"
)

const defaultBaseURL = "https://api.pipefy.com/graphql"

// Pipefy allows 60 requests per minute per token.
const (
	rateLimitRequests = 60
	rateLimitWindow   = time.Minute
)

// Config holds the Pipefy credentials.
type Config struct {
	APIToken string
	BaseURL  string

	// Organization restricts the migration to one organization id. Empty
	// means the first organization visible to the token.
	Organization string
}

// Client is a typed wrapper over the Pipefy GraphQL API.
type Client struct {
	http   *client.Client
	logger *slog.Logger
}

// NewClient validates the config and builds a Pipefy API client.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIToken == "" {
		return nil, fmt.Errorf("pipefy: api token is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	httpClient := client.New(client.Options{
		BaseURL:    cfg.BaseURL,
		AuthHeader: "Authorization",
		AuthValue:  "Bearer " + cfg.APIToken,
		RateLimit:  client.RateLimit{Requests: rateLimitRequests, Window: rateLimitWindow},
		Retry:      client.DefaultRetryPolicy(),
	}, logger)

	return &Client{http: httpClient, logger: logger}, nil
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var response struct {
		Me User `json:"me"`
	}

	err := c.http.GraphQL(ctx, `{ me { id name email } }`, nil, &response)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch authenticated user: %w", err)
	}

	return &response.Me, nil
}

// Organizations lists the organizations visible to the token.
func (c *Client) Organizations(ctx context.Context) ([]Organization, error) {
	var response struct {
		Organizations []Organization `json:"organizations"`
	}

	err := c.http.GraphQL(ctx, `{ organizations { id name } }`, nil, &response)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch organizations: %w", err)
	}

	return response.Organizations, nil
}

// Members lists the members of an organization with their roles.
func (c *Client) Members(ctx context.Context, organizationID string) ([]OrgMember, error) {
	const query = `query ($org: ID!) {
		organization (id: $org) {
			members { role_name user { id name email } }
		}
	}`

	var response struct {
		Organization struct {
			Members []OrgMember `json:"members"`
		} `json:"organization"`
	}

	err := c.http.GraphQL(ctx, query, map[string]any{"org": organizationID}, &response)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch members for organization %s: %w", organizationID, err)
	}

	return response.Organization.Members, nil
}

// Pipes lists the pipes of an organization.
func (c *Client) Pipes(ctx context.Context, organizationID string) ([]PipeSummary, error) {
	const query = `query ($org: ID!) {
		organization (id: $org) {
			pipes { id name }
		}
	}`

	var response struct {
		Organization struct {
			Pipes []PipeSummary `json:"pipes"`
		} `json:"organization"`
	}

	err := c.http.GraphQL(ctx, query, map[string]any{"org": organizationID}, &response)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pipes for organization %s: %w", organizationID, err)
	}

	return response.Organization.Pipes, nil
}

// Pipe fetches one pipe with its phases, phase fields and start form.
func (c *Client) Pipe(ctx context.Context, pipeID string) (*Pipe, error) {
	const query = `query ($pipe: ID!) {
		pipe (id: $pipe) {
			id name description
			start_form_fields { id label type required options }
			phases {
				id name done
				fields { id label type required options }
			}
		}
	}`

	var response struct {
		Pipe Pipe `json:"pipe"`
	}

	err := c.http.GraphQL(ctx, query, map[string]any{"pipe": pipeID}, &response)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pipe %s: %w", pipeID, err)
	}

	return &response.Pipe, nil
}

// Cards drains the cursor-paginated cards of a pipe.
func (c *Client) Cards(ctx context.Context, pipeID string) ([]Card, error) {
	const query = `query ($pipe: ID!, $cursor: String) {
		cards (pipe_id: $pipe, first: 50, after: $cursor) {
			edges {
				node {
					id title done createdAt
					current_phase { id name }
					assignees { id name email }
					fields { name value field { id } }
				}
			}
			pageInfo { hasNextPage endCursor }
		}
	}`

	var (
		cards  []Card
		cursor string
	)

	for {
		variables := map[string]any{"pipe": pipeID}
		if cursor != "" {
			variables["cursor"] = cursor
		}

		var response struct {
			Cards struct {
				Edges []struct {
					Node Card `json:"node"`
				} `json:"edges"`
				PageInfo struct {
					HasNextPage bool   `json:"hasNextPage"`
					EndCursor   string `json:"endCursor"`
				} `json:"pageInfo"`
			} `json:"cards"`
		}

		err := c.http.GraphQL(ctx, query, variables, &response)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch cards for pipe %s: %w", pipeID, err)
		}

		for _, edge := range response.Cards.Edges {
			cards = append(cards, edge.Node)
		}

		if !response.Cards.PageInfo.HasNextPage {
			break
		}

		cursor = response.Cards.PageInfo.EndCursor
	}

	return cards, nil
}
