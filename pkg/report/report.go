// Package report turns a finished migration run into the artifacts operators
// read: a JSON file next to the checkpoint data and a text summary on the
// terminal. A bus subscriber collects per-item failures so the report can
// name what went wrong, not just count it.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/template"
	"time"

	"github.com/tallyfy/migrator/pkg/checkpoint"
	"github.com/tallyfy/migrator/pkg/migration"
)

// RunReport is the serializable summary of one migration run.
type RunReport struct {
	RunID       string               `json:"run_id"`
	Source      string               `json:"source"`
	Status      checkpoint.RunStatus `json:"status"`
	DryRun      bool                 `json:"dry_run"`
	StartedAt   time.Time            `json:"started_at"`
	CompletedAt *time.Time           `json:"completed_at,omitempty"`
	Phases      []PhaseReport        `json:"phases"`
	Totals      Totals               `json:"totals"`
	Issues      []migration.Issue    `json:"issues,omitempty"`
	Failures    []ItemFailure        `json:"failures,omitempty"`
}

// PhaseReport is one row of the per-phase table.
type PhaseReport struct {
	Phase     string `json:"phase"`
	Status    string `json:"status"`
	Processed int    `json:"processed"`
	Failed    int    `json:"failed"`
	Duration  string `json:"duration,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Totals aggregates the run.
type Totals struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
	Issues    int `json:"issues"`
}

// ItemFailure names one object that could not be migrated.
type ItemFailure struct {
	Phase    string `json:"phase"`
	Kind     string `json:"kind"`
	SourceID string `json:"source_id"`
	Error    string `json:"error"`
}

// FromRun builds a report from a checkpointed run. Issues and failures are
// merged in by the caller when available.
func FromRun(run *checkpoint.Run) *RunReport {
	r := &RunReport{
		RunID:       run.ID,
		Source:      run.Source,
		Status:      run.Status,
		DryRun:      run.DryRun,
		StartedAt:   run.StartedAt,
		CompletedAt: run.CompletedAt,
		Phases:      make([]PhaseReport, 0, len(run.Phases)),
	}

	for _, phase := range run.Phases {
		row := PhaseReport{
			Phase:     string(phase.Phase),
			Status:    string(phase.Status),
			Processed: phase.Processed,
			Failed:    phase.Failed,
			Error:     phase.Error,
		}

		if phase.StartedAt != nil && phase.CompletedAt != nil {
			row.Duration = phase.CompletedAt.Sub(*phase.StartedAt).Round(time.Millisecond).String()
		}

		r.Phases = append(r.Phases, row)
		r.Totals.Processed += phase.Processed
		r.Totals.Failed += phase.Failed
	}

	return r
}

// FromResult builds a report from a finished run, including its validation
// issues and any failures the builder collected from the event stream.
func FromResult(result *migration.Result, builder *Builder) *RunReport {
	r := FromRun(result.Run)
	r.Issues = result.Issues
	r.Totals.Issues = len(result.Issues)

	if builder != nil {
		r.Failures = builder.Failures(result.Run.ID)
	}

	return r
}

// FileName is the well-known name the report is written under.
func (r *RunReport) FileName() string {
	return fmt.Sprintf("migration_report_%s.json", r.RunID)
}

// WriteJSON writes the report into dir and returns the full path.
func (r *RunReport) WriteJSON(dir string) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report for run %s: %w", r.RunID, err)
	}

	if dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return "", fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	path := filepath.Join(dir, r.FileName())

	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write report %s: %w", path, err)
	}

	return path, nil
}

// ParseJSON loads a report previously stored as raw JSON, e.g. from the
// checkpointed run.
func ParseJSON(data []byte) (*RunReport, error) {
	var r RunReport

	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse stored report: %w", err)
	}

	return &r, nil
}

const textTemplate = `Migration report for run {{.RunID}}
Source:    {{.Source}}{{if .DryRun}} (dry run){{end}}
Status:    {{.Status}}
Started:   {{.StartedAt.Format "2006-01-02 15:04:05 MST"}}
{{- if .CompletedAt}}
Completed: {{.CompletedAt.Format "2006-01-02 15:04:05 MST"}}
{{- end}}

{{printf "%-12s %-10s %10s %7s %10s" "PHASE" "STATUS" "PROCESSED" "FAILED" "DURATION"}}
{{- range .Phases}}
{{printf "%-12s %-10s %10d %7d %10s" .Phase .Status .Processed .Failed .Duration}}
{{- if .Error}}
             error: {{.Error}}
{{- end}}
{{- end}}

Totals: {{.Totals.Processed}} migrated, {{.Totals.Failed}} failed, {{.Totals.Issues}} validation issues
{{- if .Issues}}

Validation issues:
{{- range .Issues}}
  - [{{.Phase}}{{if .Kind}}/{{.Kind}}{{end}}] {{if .SourceID}}{{.SourceID}}: {{end}}{{.Message}}
{{- end}}
{{- end}}
{{- if .Failures}}

Failed items:
{{- range .Failures}}
  - [{{.Phase}}/{{.Kind}}] {{.SourceID}}: {{.Error}}
{{- end}}
{{- end}}
`

// RenderText writes the human-readable summary.
func (r *RunReport) RenderText(w io.Writer) error {
	tmpl, err := template.New("report").Parse(textTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse report template: %w", err)
	}

	if err := tmpl.Execute(w, r); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	return nil
}
