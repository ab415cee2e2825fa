// Package typeform migrates Typeform workspaces into Tallyfy: each form
// becomes a kickoff-form template and each response becomes a completed
// instance. The account owner is the only member a token can see.
package typeform

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/tallyfy/migrator/pkg/client"
)

const defaultBaseURL = "https://api.typeform.com"

// Typeform allows 2 requests per second; 120 per minute matches that budget.
const (
	rateLimitRequests = 120
	rateLimitWindow   = time.Minute
)

// Config holds the Typeform credentials.
type Config struct {
	AccessToken string
	BaseURL     string
}

// Client is a typed wrapper over the Typeform REST API.
type Client struct {
	http   *client.Client
	logger *slog.Logger
}

// NewClient validates the config and builds a Typeform API client.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("typeform: access token is required")
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

// Me returns the authenticated account.
func (c *Client) Me(ctx context.Context) (*Account, error) {
	var account Account

	err := c.http.Get(ctx, "me", nil, &account)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch account: %w", err)
	}

	return &account, nil
}

// Forms drains the page-numbered form listing.
func (c *Client) Forms(ctx context.Context) ([]FormSummary, error) {
	var forms []FormSummary

	for page := 1; ; page++ {
		params := url.Values{
			"page":      {strconv.Itoa(page)},
			"page_size": {"200"},
		}

		var response struct {
			PageCount int           `json:"page_count"`
			Items     []FormSummary `json:"items"`
		}

		err := c.http.Get(ctx, "forms", params, &response)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch forms page %d: %w", page, err)
		}

		forms = append(forms, response.Items...)

		if page >= response.PageCount || len(response.Items) == 0 {
			break
		}
	}

	return forms, nil
}

// Form fetches one form definition with its fields.
func (c *Client) Form(ctx context.Context, formID string) (*Form, error) {
	var form Form

	err := c.http.Get(ctx, fmt.Sprintf("forms/%s", formID), nil, &form)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch form %s: %w", formID, err)
	}

	return &form, nil
}

// Responses drains the token-paginated completed responses of a form.
func (c *Client) Responses(ctx context.Context, formID string) ([]Response, error) {
	var (
		responses []Response
		before    string
	)

	for {
		params := url.Values{
			"page_size": {"200"},
			"completed": {"true"},
		}
		if before != "" {
			params.Set("before", before)
		}

		var page struct {
			Items []Response `json:"items"`
		}

		err := c.http.Get(ctx, fmt.Sprintf("forms/%s/responses", formID), params, &page)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch responses for form %s: %w", formID, err)
		}

		if len(page.Items) == 0 {
			break
		}

		responses = append(responses, page.Items...)
		before = page.Items[len(page.Items)-1].Token
	}

	return responses, nil
}
