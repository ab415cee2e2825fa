package tallyfy

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// LaunchProcessOptions starts one run of a checklist.
type LaunchProcessOptions struct {
	ChecklistID string
	Name        string
	OwnerEmail  string
	FieldValues map[string]string // kickoff capture alias -> value

	IdempotencyKey string
}

// LaunchProcess launches a process from a template.
func (c *Client) LaunchProcess(ctx context.Context, opts LaunchProcessOptions) (*RunRecord, error) {
	if opts.ChecklistID == "" || opts.Name == "" {
		return nil, fmt.Errorf("tallyfy: launch requires a checklist id and name")
	}

	body := map[string]any{
		"checklist_id": opts.ChecklistID,
		"name":         opts.Name,
	}

	if opts.OwnerEmail != "" {
		body["owner"] = opts.OwnerEmail
	}

	if len(opts.FieldValues) > 0 {
		body["prerun"] = opts.FieldValues
	}

	var resp struct {
		Data RunRecord `json:"data"`
	}

	err := c.http.DoWithHeaders(ctx, http.MethodPost, c.orgPath("runs"),
		nil, idempotencyHeaders(opts.IdempotencyKey), body, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to launch process %s: %w", opts.Name, err)
	}

	return &resp.Data, nil
}

// Run fetches one process run.
func (c *Client) Run(ctx context.Context, runID string) (*RunRecord, error) {
	var resp struct {
		Data RunRecord `json:"data"`
	}

	if err := c.http.Get(ctx, c.orgPath("runs/%s", runID), nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch run %s: %w", runID, err)
	}

	return &resp.Data, nil
}

// RunTasks lists the tasks of a run, used to replay completion state.
func (c *Client) RunTasks(ctx context.Context, runID string) ([]TaskRecord, error) {
	var resp struct {
		Data []TaskRecord `json:"data"`
	}

	if err := c.http.Get(ctx, c.orgPath("runs/%s/tasks", runID), nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list tasks of run %s: %w", runID, err)
	}

	return resp.Data, nil
}

// CompleteTaskOptions marks one task of a run as done.
type CompleteTaskOptions struct {
	RunID       string
	TaskID      string
	CompletedBy string // member email
	CompletedAt time.Time
}

// CompleteTask marks a task complete, preserving who did it and when.
func (c *Client) CompleteTask(ctx context.Context, opts CompleteTaskOptions) error {
	if opts.RunID == "" || opts.TaskID == "" {
		return fmt.Errorf("tallyfy: completing a task requires a run id and task id")
	}

	body := map[string]any{}

	if opts.CompletedBy != "" {
		body["completed_by"] = opts.CompletedBy
	}

	if !opts.CompletedAt.IsZero() {
		body["completed_at"] = opts.CompletedAt.UTC().Format(time.RFC3339)
	}

	err := c.http.Put(ctx, c.orgPath("runs/%s/tasks/%s/complete", opts.RunID, opts.TaskID), body, nil)
	if err != nil {
		return fmt.Errorf("failed to complete task %s: %w", opts.TaskID, err)
	}

	return nil
}

// ArchiveRun archives a completed or abandoned run.
func (c *Client) ArchiveRun(ctx context.Context, runID string) error {
	if err := c.http.Put(ctx, c.orgPath("runs/%s/archive", runID), nil, nil); err != nil {
		return fmt.Errorf("failed to archive run %s: %w", runID, err)
	}

	return nil
}
