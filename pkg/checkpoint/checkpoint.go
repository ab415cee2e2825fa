// Package checkpoint persists migration run state so interrupted runs can
// resume without repeating completed work. A Run tracks per-phase progress,
// and Mappings record which source objects already exist in the target
// account together with the idempotency key used to create them.
package checkpoint

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Phase identifies one stage of a migration run. Phases always execute in
// the order returned by Phases.
type Phase string

const (
	PhaseDiscovery  Phase = "discovery"
	PhaseUsers      Phase = "users"
	PhaseGroups     Phase = "groups"
	PhaseTemplates  Phase = "templates"
	PhaseInstances  Phase = "instances"
	PhaseValidation Phase = "validation"
)

// Phases returns every phase in execution order.
func Phases() []Phase {
	return []Phase{
		PhaseDiscovery,
		PhaseUsers,
		PhaseGroups,
		PhaseTemplates,
		PhaseInstances,
		PhaseValidation,
	}
}

// PhaseStatus describes the progress of a single phase within a run.
type PhaseStatus string

const (
	PhasePending   PhaseStatus = "pending"
	PhaseRunning   PhaseStatus = "running"
	PhaseCompleted PhaseStatus = "completed"
	PhaseFailed    PhaseStatus = "failed"
	PhaseSkipped   PhaseStatus = "skipped"
)

// PhaseRecord holds the outcome of one phase of a run.
type PhaseRecord struct {
	Phase       Phase       `json:"phase"`
	Status      PhaseStatus `json:"status"`
	StartedAt   *time.Time  `json:"started_at,omitempty"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
	Error       string      `json:"error,omitempty"`
	Processed   int         `json:"processed"`
	Failed      int         `json:"failed"`
}

// RunStatus describes the overall state of a migration run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// Run is the persistent record of one migration attempt against a source.
type Run struct {
	ID          string          `json:"id"`
	Source      string          `json:"source"`
	Status      RunStatus       `json:"status"`
	DryRun      bool            `json:"dry_run"`
	StartedAt   time.Time       `json:"started_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	Phases      []PhaseRecord   `json:"phases"`
	Report      json.RawMessage `json:"report,omitempty"`
}

// NewRun creates a running Run for the given source with every phase pending.
func NewRun(source string, dryRun bool) *Run {
	run := &Run{
		ID:        uuid.New().String(),
		Source:    source,
		Status:    RunRunning,
		DryRun:    dryRun,
		StartedAt: time.Now().UTC(),
	}

	for _, phase := range Phases() {
		run.Phases = append(run.Phases, PhaseRecord{Phase: phase, Status: PhasePending})
	}

	return run
}

// PhaseRecordFor returns the record for the given phase, or nil when the run
// does not track it.
func (r *Run) PhaseRecordFor(phase Phase) *PhaseRecord {
	for i := range r.Phases {
		if r.Phases[i].Phase == phase {
			return &r.Phases[i]
		}
	}

	return nil
}

// IsPhaseCompleted reports whether the given phase already finished, either
// successfully or by being skipped.
func (r *Run) IsPhaseCompleted(phase Phase) bool {
	record := r.PhaseRecordFor(phase)
	if record == nil {
		return false
	}

	return record.Status == PhaseCompleted || record.Status == PhaseSkipped
}

// MappingStatus tracks whether a mapped object was only claimed (intent) or
// confirmed created in the target (done).
type MappingStatus string

const (
	// MappingIntent is written before the create call, carrying the
	// idempotency key the call will use. A crash between intent and done
	// leaves a record that makes the retry reuse the same key.
	MappingIntent MappingStatus = "intent"

	// MappingDone means the target object exists and TargetID is set.
	MappingDone MappingStatus = "done"
)

// Mapping links one source object to its target counterpart within a run.
type Mapping struct {
	RunID     string        `json:"run_id"`
	Kind      string        `json:"kind"`
	SourceID  string        `json:"source_id"`
	TargetID  string        `json:"target_id,omitempty"`
	Key       string        `json:"key,omitempty"`
	Status    MappingStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Store persists runs and mappings. Implementations must make SaveRun and
// SaveMapping upserts keyed on Run.ID and (RunID, Kind, SourceID).
type Store interface {
	SaveRun(ctx context.Context, run *Run) error
	RunByID(ctx context.Context, id string) (*Run, error)
	Runs(ctx context.Context) ([]*Run, error)
	LatestRun(ctx context.Context, source string) (*Run, error)

	SaveMapping(ctx context.Context, mapping *Mapping) error
	MappingFor(ctx context.Context, runID, kind, sourceID string) (*Mapping, error)
	MappingsByRun(ctx context.Context, runID string) ([]*Mapping, error)

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
