// Package processstreet migrates Process Street organizations into Tallyfy:
// organization users become members, groups stay groups, workflows with
// their tasks and form fields become templates, and workflow runs become
// instances.
package processstreet

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/tallyfy/migrator/pkg/client"
)

const defaultBaseURL = "https://public-api.process.st/api/v1.1"

const pageLimit = 100

// Process Street allows 60 requests per minute per key.
const (
	rateLimitRequests = 60
	rateLimitWindow   = time.Minute
)

// Config holds the Process Street credentials.
type Config struct {
	APIKey  string
	BaseURL string
}

// Client is a typed wrapper over the Process Street REST API.
type Client struct {
	http   *client.Client
	logger *slog.Logger
}

// NewClient validates the config and builds a Process Street API client.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("processstreet: api key is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	httpClient := client.New(client.Options{
		BaseURL:    cfg.BaseURL,
		AuthHeader: "X-API-KEY",
		AuthValue:  cfg.APIKey,
		RateLimit:  client.RateLimit{Requests: rateLimitRequests, Window: rateLimitWindow},
		Retry:      client.DefaultRetryPolicy(),
	}, logger)

	return &Client{http: httpClient, logger: logger}, nil
}

func pageParams(params url.Values, offset int) url.Values {
	if params == nil {
		params = url.Values{}
	}

	params.Set("limit", strconv.Itoa(pageLimit))
	params.Set("offset", strconv.Itoa(offset))

	return params
}

// Users lists the organization users.
func (c *Client) Users(ctx context.Context) ([]User, error) {
	var users []User

	for offset := 0; ; offset += pageLimit {
		var response struct {
			Users []User `json:"users"`
		}

		err := c.http.Get(ctx, "users", pageParams(nil, offset), &response)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch users: %w", err)
		}

		users = append(users, response.Users...)

		if len(response.Users) < pageLimit {
			break
		}
	}

	return users, nil
}

// Groups lists the organization groups.
func (c *Client) Groups(ctx context.Context) ([]Group, error) {
	var groups []Group

	for offset := 0; ; offset += pageLimit {
		var response struct {
			Groups []Group `json:"groups"`
		}

		err := c.http.Get(ctx, "groups", pageParams(nil, offset), &response)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch groups: %w", err)
		}

		groups = append(groups, response.Groups...)

		if len(response.Groups) < pageLimit {
			break
		}
	}

	return groups, nil
}

// GroupMembers lists the users of one group.
func (c *Client) GroupMembers(ctx context.Context, groupID string) ([]User, error) {
	var response struct {
		Users []User `json:"users"`
	}

	err := c.http.Get(ctx, fmt.Sprintf("groups/%s/members", groupID), nil, &response)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch members for group %s: %w", groupID, err)
	}

	return response.Users, nil
}

// Workflows lists the organization workflows.
func (c *Client) Workflows(ctx context.Context) ([]Workflow, error) {
	var workflows []Workflow

	for offset := 0; ; offset += pageLimit {
		var response struct {
			Workflows []Workflow `json:"workflows"`
		}

		err := c.http.Get(ctx, "workflows", pageParams(nil, offset), &response)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch workflows: %w", err)
		}

		workflows = append(workflows, response.Workflows...)

		if len(response.Workflows) < pageLimit {
			break
		}
	}

	return workflows, nil
}

// Workflow fetches one workflow with its task templates and form fields.
func (c *Client) Workflow(ctx context.Context, workflowID string) (*WorkflowDetail, error) {
	var response struct {
		Workflow WorkflowDetail `json:"workflow"`
	}

	err := c.http.Get(ctx, fmt.Sprintf("workflows/%s", workflowID), nil, &response)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch workflow %s: %w", workflowID, err)
	}

	return &response.Workflow, nil
}

// WorkflowRuns lists the runs of one workflow.
func (c *Client) WorkflowRuns(ctx context.Context, workflowID string) ([]WorkflowRun, error) {
	var runs []WorkflowRun

	for offset := 0; ; offset += pageLimit {
		params := pageParams(url.Values{"workflowId": {workflowID}}, offset)

		var response struct {
			WorkflowRuns []WorkflowRun `json:"workflowRuns"`
		}

		err := c.http.Get(ctx, "workflow-runs", params, &response)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch runs for workflow %s: %w", workflowID, err)
		}

		runs = append(runs, response.WorkflowRuns...)

		if len(response.WorkflowRuns) < pageLimit {
			break
		}
	}

	return runs, nil
}

// RunTasks lists the task states of one workflow run.
func (c *Client) RunTasks(ctx context.Context, runID string) ([]RunTask, error) {
	var response struct {
		Tasks []RunTask `json:"tasks"`
	}

	err := c.http.Get(ctx, "tasks", url.Values{"workflowRunId": {runID}}, &response)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tasks for run %s: %w", runID, err)
	}

	return response.Tasks, nil
}

// FormFieldValues lists the filled form values of one workflow run.
func (c *Client) FormFieldValues(ctx context.Context, runID string) ([]FormFieldValue, error) {
	var response struct {
		FormFieldValues []FormFieldValue `json:"formFieldValues"`
	}

	err := c.http.Get(ctx, "form-field-values", url.Values{"workflowRunId": {runID}}, &response)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch form values for run %s: %w", runID, err)
	}

	return response.FormFieldValues, nil
}
