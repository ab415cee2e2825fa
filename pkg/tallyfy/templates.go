package tallyfy

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tallyfy/migrator/pkg/client"
	"github.com/tallyfy/migrator/pkg/model"
)

// CreateChecklistOptions creates a template shell; steps, captures and rules
// are added with their own calls.
type CreateChecklistOptions struct {
	Title       string
	Description string
	Tags        []string

	IdempotencyKey string
}

// CreateChecklist creates an empty template.
func (c *Client) CreateChecklist(ctx context.Context, opts CreateChecklistOptions) (*ChecklistRecord, error) {
	if opts.Title == "" {
		return nil, fmt.Errorf("tallyfy: checklist requires a title")
	}

	body := map[string]any{
		"title":       opts.Title,
		"description": opts.Description,
		"tags":        opts.Tags,
	}

	var resp struct {
		Data ChecklistRecord `json:"data"`
	}

	err := c.http.DoWithHeaders(ctx, http.MethodPost, c.orgPath("checklists"),
		nil, idempotencyHeaders(opts.IdempotencyKey), body, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to create checklist %s: %w", opts.Title, err)
	}

	c.primeChecklist(ctx, resp.Data.Title, resp.Data.ID)

	return &resp.Data, nil
}

// FindChecklistByTitle returns the first checklist with an exact title
// match, or client.ErrNotFound wrapped when none exists. Validation phases
// use it to confirm templates landed.
func (c *Client) FindChecklistByTitle(ctx context.Context, title string) (*ChecklistRecord, error) {
	if id, ok := c.cachedChecklistID(ctx, title); ok {
		return &ChecklistRecord{ID: id, Title: title}, nil
	}

	params := url.Values{}
	params.Set("search", title)

	var resp struct {
		Data []ChecklistRecord `json:"data"`
	}

	if err := c.http.Get(ctx, c.orgPath("checklists"), params, &resp); err != nil {
		return nil, fmt.Errorf("failed to search checklists: %w", err)
	}

	for i := range resp.Data {
		if resp.Data[i].Title == title {
			c.primeChecklist(ctx, title, resp.Data[i].ID)

			return &resp.Data[i], nil
		}
	}

	return nil, fmt.Errorf("checklist %q: %w", title, client.ErrNotFound)
}

// AddStepOptions appends one step to a checklist.
type AddStepOptions struct {
	ChecklistID string
	Alias       string
	Title       string
	Description string
	Type        model.StepType
	Position    int
	Assignees   []string // Member emails
	GroupNames  []string
	Deadline    *model.Deadline
	Webhook     string

	IdempotencyKey string
}

// AddStep adds a step to a template.
func (c *Client) AddStep(ctx context.Context, opts AddStepOptions) (*StepRecord, error) {
	if opts.ChecklistID == "" || opts.Title == "" {
		return nil, fmt.Errorf("tallyfy: step requires a checklist id and title")
	}

	if opts.Type == "" {
		opts.Type = model.StepTask
	}

	body := map[string]any{
		"alias":       opts.Alias,
		"title":       opts.Title,
		"description": opts.Description,
		"task_type":   string(opts.Type),
		"position":    opts.Position,
	}

	if len(opts.Assignees) > 0 {
		body["assignees"] = opts.Assignees
	}

	if len(opts.GroupNames) > 0 {
		body["groups"] = opts.GroupNames
	}

	if opts.Deadline != nil {
		body["deadline"] = map[string]any{
			"value":  opts.Deadline.Value,
			"unit":   opts.Deadline.Unit,
			"anchor": string(opts.Deadline.Anchor),
		}
	}

	if opts.Webhook != "" {
		body["webhook"] = opts.Webhook
	}

	var resp struct {
		Data StepRecord `json:"data"`
	}

	err := c.http.DoWithHeaders(ctx, http.MethodPost,
		c.orgPath("checklists/%s/steps", opts.ChecklistID),
		nil, idempotencyHeaders(opts.IdempotencyKey), body, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to add step %s: %w", opts.Title, err)
	}

	return &resp.Data, nil
}

// AddCaptureOptions appends one form field, either to the kickoff form
// (StepID empty) or to a step.
type AddCaptureOptions struct {
	ChecklistID string
	StepID      string
	Alias       string
	Label       string
	Type        model.CaptureType
	Required    bool
	Options     []string
	Position    int
	Guidance    string

	IdempotencyKey string
}

// AddCapture adds a form field to a template.
func (c *Client) AddCapture(ctx context.Context, opts AddCaptureOptions) (*CaptureRecord, error) {
	if opts.ChecklistID == "" || opts.Label == "" {
		return nil, fmt.Errorf("tallyfy: capture requires a checklist id and label")
	}

	if opts.Type == "" {
		opts.Type = model.CaptureText
	}

	body := map[string]any{
		"alias":      opts.Alias,
		"label":      opts.Label,
		"field_type": string(opts.Type),
		"required":   opts.Required,
		"position":   opts.Position,
	}

	if len(opts.Options) > 0 {
		body["options"] = opts.Options
	}

	if opts.Guidance != "" {
		body["guidance"] = opts.Guidance
	}

	path := c.orgPath("checklists/%s/prerun", opts.ChecklistID)
	if opts.StepID != "" {
		path = c.orgPath("checklists/%s/steps/%s/captures", opts.ChecklistID, opts.StepID)
	}

	var resp struct {
		Data CaptureRecord `json:"data"`
	}

	err := c.http.DoWithHeaders(ctx, http.MethodPost, path,
		nil, idempotencyHeaders(opts.IdempotencyKey), body, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to add capture %s: %w", opts.Label, err)
	}

	return &resp.Data, nil
}

// CreateRuleOptions creates one conditional rule on a checklist.
type CreateRuleOptions struct {
	ChecklistID string
	CaptureRef  string
	Operator    model.RuleOperator
	Value       string
	Action      model.RuleAction
	TargetSteps []string

	IdempotencyKey string
}

// CreateRule creates a show/hide rule driven by a capture value.
func (c *Client) CreateRule(ctx context.Context, opts CreateRuleOptions) (*RuleRecord, error) {
	if opts.ChecklistID == "" || opts.CaptureRef == "" || len(opts.TargetSteps) == 0 {
		return nil, fmt.Errorf("tallyfy: rule requires a checklist id, capture and target steps")
	}

	body := map[string]any{
		"capture_ref":  opts.CaptureRef,
		"operator":     string(opts.Operator),
		"value":        opts.Value,
		"action":       string(opts.Action),
		"target_steps": opts.TargetSteps,
	}

	var resp struct {
		Data RuleRecord `json:"data"`
	}

	err := c.http.DoWithHeaders(ctx, http.MethodPost,
		c.orgPath("checklists/%s/rules", opts.ChecklistID),
		nil, idempotencyHeaders(opts.IdempotencyKey), body, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to create rule on capture %s: %w", opts.CaptureRef, err)
	}

	return &resp.Data, nil
}
