package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/tallyfy/migrator/pkg/checkpoint"
	"github.com/tallyfy/migrator/pkg/report"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Runs serves the status console's views over recorded migration runs.
type Runs struct {
	store checkpoint.Store
}

// NewRuns creates a run service over the given store.
func NewRuns(store checkpoint.Store) *Runs {
	return &Runs{store: store}
}

// HealthCheck checks the health of the checkpoint store.
func (s *Runs) HealthCheck(ctx context.Context) (string, bool) {
	if s.store == nil {
		return "Checkpoint store not initialized", false
	}

	if err := s.store.HealthCheck(ctx); err != nil {
		return "Checkpoint store is unhealthy: " + err.Error(), false
	}

	return "Checkpoint store is healthy", true
}

// ListRunsRequest filters and bounds the run listing.
type ListRunsRequest struct {
	Source string
	Limit  int
}

// ListRunsResponse contains the newest runs first. TotalCount counts all
// matching runs, not just the returned page.
type ListRunsResponse struct {
	Runs       []*checkpoint.Run `json:"runs"`
	TotalCount int               `json:"total_count"`
}

// ListRuns returns runs newest first, optionally filtered by source.
func (s *Runs) ListRuns(ctx context.Context, req ListRunsRequest) (*ListRunsResponse, error) {
	if req.Limit == 0 {
		req.Limit = defaultListLimit
	}

	if req.Limit < 1 || req.Limit > maxListLimit {
		return nil, ErrInvalidLimit
	}

	runs, err := s.store.Runs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	var filtered []*checkpoint.Run

	for _, run := range runs {
		if req.Source == "" || run.Source == req.Source {
			filtered = append(filtered, run)
		}
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].StartedAt.After(filtered[j].StartedAt)
	})

	total := len(filtered)
	if len(filtered) > req.Limit {
		filtered = filtered[:req.Limit]
	}

	return &ListRunsResponse{Runs: filtered, TotalCount: total}, nil
}

// FetchByID retrieves one run. The store's not-found sentinel passes
// through for the web layer to map.
func (s *Runs) FetchByID(ctx context.Context, id string) (*checkpoint.Run, error) {
	if id == "" {
		return nil, ErrEmptyRunID
	}

	return s.store.RunByID(ctx, id)
}

// Report parses the report the orchestrator attached when the run finished.
func (s *Runs) Report(ctx context.Context, id string) (*report.RunReport, error) {
	run, err := s.FetchByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if len(run.Report) == 0 {
		return nil, fmt.Errorf("run %s: %w", id, ErrNoReport)
	}

	parsed, err := report.ParseJSON(run.Report)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored report: %w", err)
	}

	return parsed, nil
}

// Mappings lists a run's object mappings, optionally filtered by kind. An
// unknown run id is a not-found error, not an empty list.
func (s *Runs) Mappings(ctx context.Context, id, kind string) ([]*checkpoint.Mapping, error) {
	if id == "" {
		return nil, ErrEmptyRunID
	}

	if _, err := s.store.RunByID(ctx, id); err != nil {
		return nil, err
	}

	mappings, err := s.store.MappingsByRun(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list mappings: %w", err)
	}

	if kind == "" {
		return mappings, nil
	}

	filtered := make([]*checkpoint.Mapping, 0, len(mappings))

	for _, mapping := range mappings {
		if mapping.Kind == kind {
			filtered = append(filtered, mapping)
		}
	}

	return filtered, nil
}
