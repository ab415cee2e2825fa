package migration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tallyfy/migrator/pkg/checkpoint"
	"github.com/tallyfy/migrator/pkg/client"
	"github.com/tallyfy/migrator/pkg/eventbus"
	"github.com/tallyfy/migrator/pkg/events"
	"github.com/tallyfy/migrator/pkg/otelhelper"
	"github.com/tallyfy/migrator/pkg/source"
)

// Orchestrator runs the migration phases for one source against one target
// organization.
type Orchestrator struct {
	source source.Source
	target Target
	store  checkpoint.Store
	bus    eventbus.EventPublisher
	logger *slog.Logger
	tracer trace.Tracer
	opts   Options
}

// New wires an orchestrator. The bus may be nil when nobody listens for
// progress events.
func New(
	src source.Source,
	target Target,
	store checkpoint.Store,
	bus eventbus.EventPublisher,
	logger *slog.Logger,
	opts Options,
) *Orchestrator {
	return &Orchestrator{
		source: src,
		target: target,
		store:  store,
		bus:    bus,
		logger: logger.With("source", src.Name()),
		tracer: otel.Tracer("migrator"),
		opts:   opts,
	}
}

// Readiness verifies both ends before anything is written: the source with
// its own cheap read, the target by fetching the token's account.
func (o *Orchestrator) Readiness(ctx context.Context) error {
	if err := o.source.Readiness(ctx); err != nil {
		return fmt.Errorf("source %s is not ready: %w", o.source.Name(), err)
	}

	account, err := o.target.Me(ctx)
	if err != nil {
		return fmt.Errorf("target organization is not ready: %w", err)
	}

	o.logger.Info("Source and target are reachable", "target_account", account.Email)

	return nil
}

// Run executes every selected phase in order and returns the finished run
// with its validation issues. The error is non-nil only when the run as a
// whole failed; item failures are counted and reported instead.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	started := time.Now()

	if err := o.Readiness(ctx); err != nil {
		return nil, err
	}

	run, err := o.resolveRun(ctx)
	if err != nil {
		return nil, err
	}

	ctx, span := o.tracer.Start(ctx, "migration.run", trace.WithAttributes(
		attribute.String(otelhelper.RunIDKey, run.ID),
		attribute.String(otelhelper.SourceKey, run.Source),
		attribute.Bool(otelhelper.DryRunKey, run.DryRun),
	))
	defer span.End()

	result := &Result{Run: run}

	o.logger.Info("Migration run starting",
		"run_id", run.ID, "dry_run", run.DryRun, "resume", o.opts.Resume, "delta", o.opts.Delta)
	o.publish(ctx, run.ID, events.NewRunStarted(run.ID, run.Source, run.DryRun, o.selectedPhaseNames()))

	for _, phase := range checkpoint.Phases() {
		if err := ctx.Err(); err != nil {
			otelhelper.SetError(span, err)

			return o.abort(ctx, result, phase, err, started)
		}

		record := run.PhaseRecordFor(phase)

		if o.opts.Resume && !o.opts.Delta && run.IsPhaseCompleted(phase) {
			o.logger.Info("Phase already completed, skipping", "phase", phase)

			continue
		}

		if !o.phaseSelected(phase) {
			record.Status = checkpoint.PhaseSkipped

			if err := o.checkpointRun(ctx, run); err != nil {
				return nil, err
			}

			o.publish(ctx, run.ID, events.NewPhaseCompleted(run.ID, string(phase), 0, 0, true, 0))

			continue
		}

		resumed := record.StartedAt != nil
		phaseStarted := time.Now()
		startedAt := phaseStarted.UTC()
		record.StartedAt = &startedAt
		record.Status = checkpoint.PhaseRunning
		record.Error = ""

		if err := o.checkpointRun(ctx, run); err != nil {
			return nil, err
		}

		o.logger.Info("Phase starting", "phase", phase, "resumed", resumed)
		o.publish(ctx, run.ID, events.NewPhaseStarted(run.ID, string(phase), resumed))

		phaseCtx, phaseSpan := o.tracer.Start(ctx, "migration.phase", trace.WithAttributes(
			attribute.String(otelhelper.RunIDKey, run.ID),
			attribute.String(otelhelper.PhaseKey, string(phase)),
		))

		res, phaseErr := o.runPhase(phaseCtx, run, phase)

		if phaseErr != nil {
			otelhelper.SetError(phaseSpan, phaseErr, attribute.String(otelhelper.PhaseKey, string(phase)))
		}

		phaseSpan.End()

		record.Processed = res.processed
		record.Failed = res.failed
		result.Processed += res.processed
		result.Failed += res.failed
		result.Issues = append(result.Issues, res.issues...)

		completedAt := time.Now().UTC()
		record.CompletedAt = &completedAt

		switch {
		case phaseErr != nil:
			record.Status = checkpoint.PhaseFailed
			record.Error = phaseErr.Error()
		case res.skipped:
			record.Status = checkpoint.PhaseSkipped
		default:
			record.Status = checkpoint.PhaseCompleted
		}

		if err := o.checkpointRun(ctx, run); err != nil {
			return nil, err
		}

		if phaseErr != nil {
			o.logger.Error("Phase failed", "phase", phase, "error", phaseErr)
			o.publish(ctx, run.ID, events.NewPhaseFailed(run.ID, string(phase), phaseErr.Error()))

			if !o.opts.ContinueOnError || fatal(phaseErr) {
				otelhelper.SetError(span, phaseErr)

				return o.abort(ctx, result, phase, phaseErr, started)
			}

			continue
		}

		o.logger.Info("Phase finished",
			"phase", phase, "processed", res.processed, "failed", res.failed, "skipped", res.skipped)
		o.publish(ctx, run.ID, events.NewPhaseCompleted(
			run.ID, string(phase), res.processed, res.failed, res.skipped, time.Since(phaseStarted)))
	}

	run.Status = checkpoint.RunCompleted
	completedAt := time.Now().UTC()
	run.CompletedAt = &completedAt

	if err := o.checkpointRun(ctx, run); err != nil {
		return nil, err
	}

	result.Duration = time.Since(started)

	o.publish(ctx, run.ID, events.NewRunCompleted(run.ID, run.Source, result.Duration, result.Processed, result.Failed))
	o.logger.Info("Migration run finished",
		"run_id", run.ID,
		"processed", result.Processed,
		"failed", result.Failed,
		"issues", len(result.Issues),
		"duration", result.Duration)

	return result, nil
}

// resolveRun finds the run to operate on: a fresh one by default, the latest
// one for the source when resuming or running a delta pass.
func (o *Orchestrator) resolveRun(ctx context.Context) (*checkpoint.Run, error) {
	name := o.source.Name()

	if o.opts.Resume || o.opts.Delta {
		last, err := o.store.LatestRun(ctx, name)

		switch {
		case err == nil:
			if o.opts.Delta || last.Status != checkpoint.RunCompleted {
				o.reopen(last)

				if err := o.checkpointRun(ctx, last); err != nil {
					return nil, err
				}

				return last, nil
			}

			o.logger.Info("Latest run already completed, starting a new one", "previous_run_id", last.ID)
		case !checkpoint.IsRunNotFound(err):
			return nil, fmt.Errorf("failed to load the latest run for %s: %w", name, err)
		}
	}

	run := checkpoint.NewRun(name, o.opts.DryRun)

	if err := o.checkpointRun(ctx, run); err != nil {
		return nil, err
	}

	return run, nil
}

// reopen returns a finished or interrupted run to the running state. Delta
// passes additionally reset every phase so the pipeline re-walks the whole
// source; item-level mappings still skip everything already done.
func (o *Orchestrator) reopen(run *checkpoint.Run) {
	run.Status = checkpoint.RunRunning
	run.CompletedAt = nil
	run.DryRun = o.opts.DryRun

	if !o.opts.Delta {
		return
	}

	for i := range run.Phases {
		run.Phases[i].Status = checkpoint.PhasePending
		run.Phases[i].CompletedAt = nil
		run.Phases[i].Error = ""
		run.Phases[i].Processed = 0
		run.Phases[i].Failed = 0
	}
}

// abort marks the run failed and persists it even when the context is
// already canceled, so the next --resume sees an accurate checkpoint.
func (o *Orchestrator) abort(
	ctx context.Context,
	result *Result,
	phase checkpoint.Phase,
	err error,
	started time.Time,
) (*Result, error) {
	saveCtx := context.WithoutCancel(ctx)

	run := result.Run
	run.Status = checkpoint.RunFailed
	completedAt := time.Now().UTC()
	run.CompletedAt = &completedAt

	if saveErr := o.store.SaveRun(saveCtx, run); saveErr != nil {
		o.logger.Error("Failed to checkpoint the failed run", "run_id", run.ID, "error", saveErr)
	}

	result.Duration = time.Since(started)

	o.publish(saveCtx, run.ID, events.NewRunFailed(run.ID, run.Source, string(phase), err.Error(), result.Duration))
	o.logger.Error("Migration run failed", "run_id", run.ID, "phase", phase, "error", err)

	return result, fmt.Errorf("phase %s: %w", phase, err)
}

func (o *Orchestrator) checkpointRun(ctx context.Context, run *checkpoint.Run) error {
	if err := o.store.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("failed to checkpoint run %s: %w", run.ID, err)
	}

	return nil
}

func (o *Orchestrator) phaseSelected(phase checkpoint.Phase) bool {
	return len(o.opts.Phases) == 0 || slices.Contains(o.opts.Phases, phase)
}

func (o *Orchestrator) selectedPhaseNames() []string {
	names := make([]string, 0, len(checkpoint.Phases()))

	for _, phase := range checkpoint.Phases() {
		if o.phaseSelected(phase) {
			names = append(names, string(phase))
		}
	}

	return names
}

// publish sends a progress event, logging instead of failing: events feed
// observers, never control flow.
func (o *Orchestrator) publish(ctx context.Context, runID string, event eventbus.Event) {
	if o.bus == nil {
		return
	}

	if err := o.bus.Publish(ctx, runID, event); err != nil {
		o.logger.Warn("Failed to publish event", "event_type", event.GetType(), "error", err)
	}
}

// fatal reports errors that abort the run even with ContinueOnError set:
// cancellation and authentication failures, which no later phase can recover
// from.
func fatal(err error) bool {
	var authErr *client.AuthError

	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.As(err, &authErr)
}
