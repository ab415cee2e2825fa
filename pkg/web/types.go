// Package web provides the status console's HTTP handlers: read-only views
// over recorded migration runs.
package web

import (
	"time"

	"github.com/tallyfy/migrator/pkg/checkpoint"
)

// RunSummary is the list view of a run: identity plus aggregated counts,
// without the per-phase table.
type RunSummary struct {
	ID          string     `json:"id"`
	Source      string     `json:"source"`
	Status      string     `json:"status"`
	DryRun      bool       `json:"dry_run"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Processed   int        `json:"processed"`
	Failed      int        `json:"failed"`
}

// TransformRunSummary flattens a run into its list view.
func TransformRunSummary(run *checkpoint.Run) RunSummary {
	summary := RunSummary{
		ID:          run.ID,
		Source:      run.Source,
		Status:      string(run.Status),
		DryRun:      run.DryRun,
		StartedAt:   run.StartedAt,
		CompletedAt: run.CompletedAt,
	}

	for _, phase := range run.Phases {
		summary.Processed += phase.Processed
		summary.Failed += phase.Failed
	}

	return summary
}
