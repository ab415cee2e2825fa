// Package googleforms migrates Google Forms into Tallyfy: each form becomes
// a kickoff-form template and each response becomes a completed instance.
// The Forms API has no listing endpoint, so the form ids to migrate are
// configured explicitly.
package googleforms

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/tallyfy/migrator/pkg/client"
)

const defaultBaseURL = "https://forms.googleapis.com/v1"

// The Forms API allows 300 read requests per minute per project; 60 leaves
// room for other consumers of the same quota.
const (
	rateLimitRequests = 60
	rateLimitWindow   = time.Minute
)

// Config holds the Google Forms credentials and the forms in scope.
type Config struct {
	AccessToken string
	BaseURL     string
	FormIDs     []string
}

// Client is a typed wrapper over the Google Forms REST API.
type Client struct {
	http   *client.Client
	logger *slog.Logger
}

// NewClient validates the config and builds a Forms API client.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("googleforms: access token is required")
	}

	if len(cfg.FormIDs) == 0 {
		return nil, fmt.Errorf("googleforms: at least one form id is required")
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

// Form fetches one form definition.
func (c *Client) Form(ctx context.Context, formID string) (*Form, error) {
	var form Form

	err := c.http.Get(ctx, fmt.Sprintf("forms/%s", formID), nil, &form)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch form %s: %w", formID, err)
	}

	return &form, nil
}

// Responses drains the token-paginated responses of a form.
func (c *Client) Responses(ctx context.Context, formID string) ([]Response, error) {
	var (
		responses []Response
		pageToken string
	)

	for {
		params := url.Values{}
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		var page struct {
			Responses     []Response `json:"responses"`
			NextPageToken string     `json:"nextPageToken"`
		}

		err := c.http.Get(ctx, fmt.Sprintf("forms/%s/responses", formID), params, &page)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch responses for form %s: %w", formID, err)
		}

		responses = append(responses, page.Responses...)

		if page.NextPageToken == "" {
			break
		}

		pageToken = page.NextPageToken
	}

	return responses, nil
}
