package report

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tallyfy/migrator/pkg/eventbus"
	"github.com/tallyfy/migrator/pkg/events"
)

// Builder collects per-item failures from the event stream so the final
// report can name every object that did not make it. It never feeds back
// into migration control flow.
type Builder struct {
	mu       sync.Mutex
	failures map[string][]ItemFailure
}

func NewBuilder() *Builder {
	return &Builder{failures: make(map[string][]ItemFailure)}
}

// RegisterHandlers attaches the builder to the bus. Call before Subscribe.
func (b *Builder) RegisterHandlers(bus eventbus.EventSubscriber) error {
	if err := bus.Handle(events.ItemFailedEvent, b.handleItemFailed); err != nil {
		return fmt.Errorf("failed to register report handler: %w", err)
	}

	return nil
}

func (b *Builder) handleItemFailed(_ context.Context, event any) error {
	failed, ok := event.(*events.ItemFailed)
	if !ok {
		return fmt.Errorf("unexpected event payload %T", event)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures[failed.RunID] = append(b.failures[failed.RunID], ItemFailure{
		Phase:    failed.Phase,
		Kind:     failed.Kind,
		SourceID: failed.SourceID,
		Error:    failed.Error,
	})

	return nil
}

// Failures returns what was collected for a run, in arrival order.
func (b *Builder) Failures(runID string) []ItemFailure {
	b.mu.Lock()
	defer b.mu.Unlock()

	collected := b.failures[runID]
	out := make([]ItemFailure, len(collected))
	copy(out, collected)

	return out
}

// ProgressLogger echoes migration progress events to the log, giving a
// running commentary during long migrations.
type ProgressLogger struct {
	logger *slog.Logger
}

func NewProgressLogger(logger *slog.Logger) *ProgressLogger {
	return &ProgressLogger{logger: logger}
}

// RegisterHandlers attaches the progress logger to the bus.
func (p *ProgressLogger) RegisterHandlers(bus eventbus.EventSubscriber) error {
	handlers := map[events.EventType]eventbus.EventHandler{
		events.RunStartedEvent:     p.handleRunStarted,
		events.RunCompletedEvent:   p.handleRunCompleted,
		events.RunFailedEvent:      p.handleRunFailed,
		events.PhaseStartedEvent:   p.handlePhaseStarted,
		events.PhaseCompletedEvent: p.handlePhaseCompleted,
		events.ItemMigratedEvent:   p.handleItemMigrated,
		events.ItemFailedEvent:     p.handleItemFailed,
	}

	for eventType, handler := range handlers {
		if err := bus.Handle(eventType, handler); err != nil {
			return fmt.Errorf("failed to register progress handler for %s: %w", eventType, err)
		}
	}

	return nil
}

func (p *ProgressLogger) handleRunStarted(_ context.Context, event any) error {
	started, ok := event.(*events.RunStarted)
	if !ok {
		return fmt.Errorf("unexpected event payload %T", event)
	}

	p.logger.Info("Run started",
		"run_id", started.RunID, "source", started.Source, "dry_run", started.DryRun)

	return nil
}

func (p *ProgressLogger) handleRunCompleted(_ context.Context, event any) error {
	completed, ok := event.(*events.RunCompleted)
	if !ok {
		return fmt.Errorf("unexpected event payload %T", event)
	}

	p.logger.Info("Run completed",
		"run_id", completed.RunID,
		"processed", completed.Processed,
		"failed", completed.Failed,
		"duration_ms", completed.DurationMs)

	return nil
}

func (p *ProgressLogger) handleRunFailed(_ context.Context, event any) error {
	failed, ok := event.(*events.RunFailed)
	if !ok {
		return fmt.Errorf("unexpected event payload %T", event)
	}

	p.logger.Error("Run failed",
		"run_id", failed.RunID, "phase", failed.Phase, "error", failed.Error)

	return nil
}

func (p *ProgressLogger) handlePhaseStarted(_ context.Context, event any) error {
	started, ok := event.(*events.PhaseStarted)
	if !ok {
		return fmt.Errorf("unexpected event payload %T", event)
	}

	p.logger.Info("Phase started", "run_id", started.RunID, "phase", started.Phase, "resumed", started.Resumed)

	return nil
}

func (p *ProgressLogger) handlePhaseCompleted(_ context.Context, event any) error {
	completed, ok := event.(*events.PhaseCompleted)
	if !ok {
		return fmt.Errorf("unexpected event payload %T", event)
	}

	p.logger.Info("Phase completed",
		"run_id", completed.RunID,
		"phase", completed.Phase,
		"processed", completed.Processed,
		"failed", completed.Failed,
		"skipped", completed.Skipped)

	return nil
}

func (p *ProgressLogger) handleItemMigrated(_ context.Context, event any) error {
	migrated, ok := event.(*events.ItemMigrated)
	if !ok {
		return fmt.Errorf("unexpected event payload %T", event)
	}

	p.logger.Info("Migrated",
		"run_id", migrated.RunID, "kind", migrated.Kind, "source_id", migrated.SourceID, "target_id", migrated.TargetID)

	return nil
}

func (p *ProgressLogger) handleItemFailed(_ context.Context, event any) error {
	failed, ok := event.(*events.ItemFailed)
	if !ok {
		return fmt.Errorf("unexpected event payload %T", event)
	}

	p.logger.Warn("Failed",
		"run_id", failed.RunID, "kind", failed.Kind, "source_id", failed.SourceID, "error", failed.Error)

	return nil
}
