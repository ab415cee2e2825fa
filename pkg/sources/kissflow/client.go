// Package kissflow migrates Kissflow accounts into Tallyfy: account users
// become members, groups stay groups, processes with their form fields and
// workflow steps become templates, and process items become instances.
package kissflow

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/tallyfy/migrator/pkg/client"
)

const pageSize = 50

// Kissflow publishes no hard limit; 120 per minute stays well under the
// abuse threshold observed in practice.
const (
	rateLimitRequests = 120
	rateLimitWindow   = time.Minute
)

// Config holds the Kissflow credentials. Access keys come in pairs and the
// account id scopes every path.
type Config struct {
	AccessKeyID     string
	AccessKeySecret string
	Subdomain       string
	AccountID       string
	BaseURL         string
}

// Client is a typed wrapper over the Kissflow REST API.
type Client struct {
	http    *client.Client
	logger  *slog.Logger
	account string
}

// NewClient validates the config and builds a Kissflow API client.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.AccessKeyID == "" || cfg.AccessKeySecret == "" {
		return nil, fmt.Errorf("kissflow: access key id and secret are required")
	}

	if cfg.AccountID == "" {
		return nil, fmt.Errorf("kissflow: account id is required")
	}

	if cfg.BaseURL == "" {
		if cfg.Subdomain == "" {
			return nil, fmt.Errorf("kissflow: subdomain is required")
		}

		cfg.BaseURL = fmt.Sprintf("https://%s.kissflow.com", cfg.Subdomain)
	}

	// Kissflow authenticates with a key pair in custom headers instead of
	// a single Authorization value.
	httpClient := client.New(client.Options{
		BaseURL: cfg.BaseURL,
		ExtraHeaders: map[string]string{
			"X-Access-Key-Id":     cfg.AccessKeyID,
			"X-Access-Key-Secret": cfg.AccessKeySecret,
		},
		RateLimit: client.RateLimit{Requests: rateLimitRequests, Window: rateLimitWindow},
		Retry:     client.DefaultRetryPolicy(),
	}, logger)

	return &Client{http: httpClient, logger: logger, account: cfg.AccountID}, nil
}

// page is the standard Kissflow list envelope.
type page[T any] struct {
	Data       []T `json:"Data"`
	TotalCount int `json:"TotalCount"`
}

// collect drains a page-numbered Kissflow collection endpoint.
func collect[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var items []T

	for pageNumber := 1; ; pageNumber++ {
		params := url.Values{
			"page_number": {strconv.Itoa(pageNumber)},
			"page_size":   {strconv.Itoa(pageSize)},
		}

		var response page[T]

		err := c.http.Get(ctx, path, params, &response)
		if err != nil {
			return nil, err
		}

		if len(response.Data) == 0 {
			break
		}

		items = append(items, response.Data...)

		if len(response.Data) < pageSize {
			break
		}
	}

	return items, nil
}

// Users lists the account users.
func (c *Client) Users(ctx context.Context) ([]User, error) {
	users, err := collect[User](ctx, c, fmt.Sprintf("user/2/%s", c.account))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}

	return users, nil
}

// Groups lists the account groups.
func (c *Client) Groups(ctx context.Context) ([]Group, error) {
	groups, err := collect[Group](ctx, c, fmt.Sprintf("group/2/%s", c.account))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch groups: %w", err)
	}

	return groups, nil
}

// GroupMembers lists the users of one group.
func (c *Client) GroupMembers(ctx context.Context, groupID string) ([]User, error) {
	users, err := collect[User](ctx, c, fmt.Sprintf("group/2/%s/%s/member", c.account, groupID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch members for group %s: %w", groupID, err)
	}

	return users, nil
}

// Processes lists the process flows of the account.
func (c *Client) Processes(ctx context.Context) ([]Process, error) {
	processes, err := collect[Process](ctx, c, fmt.Sprintf("process/2/%s", c.account))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch processes: %w", err)
	}

	return processes, nil
}

// ProcessDetail fetches one process with its form fields and workflow steps.
func (c *Client) ProcessDetail(ctx context.Context, processID string) (*ProcessDetail, error) {
	var detail ProcessDetail

	err := c.http.Get(ctx, fmt.Sprintf("process/2/%s/%s", c.account, processID), nil, &detail)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch process %s: %w", processID, err)
	}

	return &detail, nil
}

// Items lists the items of a process. Kissflow returns form values as
// top-level keys, so items stay loose maps until transformation.
func (c *Client) Items(ctx context.Context, processID string) ([]Item, error) {
	items, err := collect[Item](ctx, c, fmt.Sprintf("process/2/%s/%s/item", c.account, processID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch items for process %s: %w", processID, err)
	}

	return items, nil
}
