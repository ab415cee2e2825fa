// Package migration drives a full migration run: six ordered phases from
// discovery to validation, checkpointed after every item so an interrupted
// run resumes where it stopped instead of duplicating work in the target.
package migration

import (
	"context"
	"time"

	"github.com/tallyfy/migrator/pkg/checkpoint"
	"github.com/tallyfy/migrator/pkg/tallyfy"
)

// Mapping kinds recorded in the checkpoint store, one per class of object
// the run creates in the target.
const (
	KindMember   = "member"
	KindGroup    = "group"
	KindTemplate = "template"
	KindStep     = "step"
	KindInstance = "instance"
)

// Target is the slice of the Tallyfy API the phases write to.
// *tallyfy.Client satisfies it; tests substitute a mock.
type Target interface {
	Me(ctx context.Context) (*tallyfy.Account, error)
	Members(ctx context.Context) ([]tallyfy.MemberRecord, error)
	InviteMember(ctx context.Context, opts tallyfy.InviteMemberOptions) (*tallyfy.MemberRecord, error)
	Groups(ctx context.Context) ([]tallyfy.GroupRecord, error)
	CreateGroup(ctx context.Context, opts tallyfy.CreateGroupOptions) (*tallyfy.GroupRecord, error)
	FindChecklistByTitle(ctx context.Context, title string) (*tallyfy.ChecklistRecord, error)
	CreateChecklist(ctx context.Context, opts tallyfy.CreateChecklistOptions) (*tallyfy.ChecklistRecord, error)
	AddStep(ctx context.Context, opts tallyfy.AddStepOptions) (*tallyfy.StepRecord, error)
	AddCapture(ctx context.Context, opts tallyfy.AddCaptureOptions) (*tallyfy.CaptureRecord, error)
	CreateRule(ctx context.Context, opts tallyfy.CreateRuleOptions) (*tallyfy.RuleRecord, error)
	LaunchProcess(ctx context.Context, opts tallyfy.LaunchProcessOptions) (*tallyfy.RunRecord, error)
	RunTasks(ctx context.Context, runID string) ([]tallyfy.TaskRecord, error)
	CompleteTask(ctx context.Context, opts tallyfy.CompleteTaskOptions) error
	ArchiveRun(ctx context.Context, runID string) error
}

// Options tune a single migration run.
type Options struct {
	// DryRun extracts and transforms but never writes to the target or the
	// mapping table.
	DryRun bool

	// Resume picks up the latest unfinished run for the source, skipping
	// completed phases and items already marked done.
	Resume bool

	// Delta reuses the latest run even when it completed, re-walking every
	// phase so that only source data without a done mapping is created.
	// Scheduled passes set it.
	Delta bool

	// ContinueOnError moves on to the next phase when one fails instead of
	// aborting the run. Auth failures and cancellation always abort.
	ContinueOnError bool

	// Phases restricts the run to a subset. Empty means all of them.
	Phases []checkpoint.Phase
}

// Issue is a single validation finding. Issues land on the report; they
// never fail the run.
type Issue struct {
	Phase    checkpoint.Phase `json:"phase"`
	Kind     string           `json:"kind,omitempty"`
	SourceID string           `json:"source_id,omitempty"`
	Message  string           `json:"message"`
}

// Result summarizes a finished run.
type Result struct {
	Run       *checkpoint.Run
	Processed int
	Failed    int
	Issues    []Issue
	Duration  time.Duration
}
