// Package tallyfy is the write side of every migration: a typed client for
// the Tallyfy REST API. Each operation takes an enumerated options struct,
// and every create accepts an idempotency key so an orchestrator retry after
// a crash lands on the same remote object instead of a duplicate.
package tallyfy

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tallyfy/migrator/pkg/cache"
	"github.com/tallyfy/migrator/pkg/client"
)

const (
	// DefaultBaseURL is the production API endpoint.
	DefaultBaseURL = "https://go.tallyfy.com/api"

	// IdempotencyHeader carries the client-generated key create calls are
	// deduplicated on.
	IdempotencyHeader = "X-Idempotency-Key"
)

// Config holds the connection settings for one organization.
type Config struct {
	BaseURL  string
	APIToken string
	OrgID    string

	// Requests per window; zero values fall back to 100 per minute.
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Cache memoizes title-to-id lookups across resume attempts. Nil
	// disables memoization.
	Cache cache.Cache
}

// Client talks to the Tallyfy API for a single organization.
type Client struct {
	http   *client.Client
	orgID  string
	cache  cache.Cache
	logger *slog.Logger
}

// New validates the config and builds a client.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIToken == "" {
		return nil, fmt.Errorf("tallyfy: API token is required")
	}

	if cfg.OrgID == "" {
		return nil, fmt.Errorf("tallyfy: organization id is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	if cfg.RateLimitRequests <= 0 {
		cfg.RateLimitRequests = 100
	}

	if cfg.RateLimitWindow <= 0 {
		cfg.RateLimitWindow = time.Minute
	}

	httpClient := client.New(client.Options{
		BaseURL:    cfg.BaseURL,
		AuthHeader: "Authorization",
		AuthValue:  "Bearer " + cfg.APIToken,
		ExtraHeaders: map[string]string{
			"X-Tallyfy-Client": "APIClient",
		},
		RateLimit: client.RateLimit{
			Requests: cfg.RateLimitRequests,
			Window:   cfg.RateLimitWindow,
		},
		Retry: client.DefaultRetryPolicy(),
	}, logger)

	return &Client{http: httpClient, orgID: cfg.OrgID, cache: cfg.Cache, logger: logger}, nil
}

// Me returns the authenticated account. Readiness checks call it to verify
// the token before any write happens.
func (c *Client) Me(ctx context.Context) (*Account, error) {
	var resp struct {
		Data Account `json:"data"`
	}

	if err := c.http.Get(ctx, "me", nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch account: %w", err)
	}

	return &resp.Data, nil
}

func (c *Client) orgPath(format string, args ...any) string {
	return fmt.Sprintf("organizations/%s/", c.orgID) + fmt.Sprintf(format, args...)
}

func idempotencyHeaders(key string) map[string]string {
	if key == "" {
		return nil
	}

	return map[string]string{IdempotencyHeader: key}
}

func checklistTitleKey(title string) string {
	return "checklist:title:" + title
}

// cachedChecklistID resolves a title from the lookup cache. Cache errors
// degrade to a miss.
func (c *Client) cachedChecklistID(ctx context.Context, title string) (string, bool) {
	if c.cache == nil {
		return "", false
	}

	id, ok, err := c.cache.Get(ctx, checklistTitleKey(title))
	if err != nil {
		c.logger.Debug("Failed to read checklist cache", "title", title, "error", err)

		return "", false
	}

	return id, ok
}

// primeChecklist stores a title-to-id lookup. Failures are non-fatal, the
// next lookup just goes back to the API.
func (c *Client) primeChecklist(ctx context.Context, title, id string) {
	if c.cache == nil || id == "" {
		return
	}

	if err := c.cache.Set(ctx, checklistTitleKey(title), id); err != nil {
		c.logger.Debug("Failed to prime checklist cache", "title", title, "error", err)
	}
}
