// Package events defines event types for migration run lifecycle notifications.
package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

// Topic is the stream all migration events are published to.
const Topic = "migrator.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Run lifecycle events.
	RunStartedEvent   EventType = "run.started"
	RunCompletedEvent EventType = "run.completed"
	RunFailedEvent    EventType = "run.failed"

	// Phase lifecycle events.
	PhaseStartedEvent   EventType = "phase.started"
	PhaseCompletedEvent EventType = "phase.completed"
	PhaseFailedEvent    EventType = "phase.failed"

	// Per-object events.
	ItemMigratedEvent EventType = "item.migrated"
	ItemFailedEvent   EventType = "item.failed"
)

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	RunID     string         `json:"run_id"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// NewBaseEvent creates base event metadata with a fresh ID and timestamp.
func NewBaseEvent(eventType EventType, runID string) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		RunID:     runID,
		Metadata:  make(map[string]any),
	}
}

type RunStarted struct {
	BaseEvent

	Source string   `json:"source"`
	DryRun bool     `json:"dry_run"`
	Phases []string `json:"phases"`
}

func (r RunStarted) GetType() EventType {
	return RunStartedEvent
}

// NewRunStarted creates a run started event.
func NewRunStarted(runID, source string, dryRun bool, phases []string) RunStarted {
	return RunStarted{
		BaseEvent: NewBaseEvent(RunStartedEvent, runID),
		Source:    source,
		DryRun:    dryRun,
		Phases:    phases,
	}
}

type RunCompleted struct {
	BaseEvent

	Source     string `json:"source"`
	DurationMs int64  `json:"duration_ms"`
	Processed  int    `json:"processed"`
	Failed     int    `json:"failed"`
}

func (r RunCompleted) GetType() EventType {
	return RunCompletedEvent
}

// NewRunCompleted creates a run completed event.
func NewRunCompleted(runID, source string, duration time.Duration, processed, failed int) RunCompleted {
	return RunCompleted{
		BaseEvent:  NewBaseEvent(RunCompletedEvent, runID),
		Source:     source,
		DurationMs: duration.Milliseconds(),
		Processed:  processed,
		Failed:     failed,
	}
}

type RunFailed struct {
	BaseEvent

	Source     string `json:"source"`
	Phase      string `json:"phase"`
	Error      string `json:"error"`
	DurationMs int64  `json:"duration_ms"`
}

func (r RunFailed) GetType() EventType {
	return RunFailedEvent
}

// NewRunFailed creates a run failed event.
func NewRunFailed(runID, source, phase, errMessage string, duration time.Duration) RunFailed {
	return RunFailed{
		BaseEvent:  NewBaseEvent(RunFailedEvent, runID),
		Source:     source,
		Phase:      phase,
		Error:      errMessage,
		DurationMs: duration.Milliseconds(),
	}
}

type PhaseStarted struct {
	BaseEvent

	Phase   string `json:"phase"`
	Resumed bool   `json:"resumed"`
}

func (p PhaseStarted) GetType() EventType {
	return PhaseStartedEvent
}

// NewPhaseStarted creates a phase started event. Resumed marks phases picked
// up from a checkpoint rather than started fresh.
func NewPhaseStarted(runID, phase string, resumed bool) PhaseStarted {
	return PhaseStarted{
		BaseEvent: NewBaseEvent(PhaseStartedEvent, runID),
		Phase:     phase,
		Resumed:   resumed,
	}
}

type PhaseCompleted struct {
	BaseEvent

	Phase      string `json:"phase"`
	Processed  int    `json:"processed"`
	Failed     int    `json:"failed"`
	Skipped    bool   `json:"skipped"`
	DurationMs int64  `json:"duration_ms"`
}

func (p PhaseCompleted) GetType() EventType {
	return PhaseCompletedEvent
}

// NewPhaseCompleted creates a phase completed event. Skipped marks phases a
// resumed run did not need to repeat.
func NewPhaseCompleted(runID, phase string, processed, failed int, skipped bool, duration time.Duration) PhaseCompleted {
	return PhaseCompleted{
		BaseEvent:  NewBaseEvent(PhaseCompletedEvent, runID),
		Phase:      phase,
		Processed:  processed,
		Failed:     failed,
		Skipped:    skipped,
		DurationMs: duration.Milliseconds(),
	}
}

type PhaseFailed struct {
	BaseEvent

	Phase string `json:"phase"`
	Error string `json:"error"`
}

func (p PhaseFailed) GetType() EventType {
	return PhaseFailedEvent
}

// NewPhaseFailed creates a phase failed event.
func NewPhaseFailed(runID, phase, errMessage string) PhaseFailed {
	return PhaseFailed{
		BaseEvent: NewBaseEvent(PhaseFailedEvent, runID),
		Phase:     phase,
		Error:     errMessage,
	}
}

type ItemMigrated struct {
	BaseEvent

	Phase    string `json:"phase"`
	Kind     string `json:"kind"`
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
}

func (i ItemMigrated) GetType() EventType {
	return ItemMigratedEvent
}

// NewItemMigrated creates an item migrated event.
func NewItemMigrated(runID, phase, kind, sourceID, targetID string) ItemMigrated {
	return ItemMigrated{
		BaseEvent: NewBaseEvent(ItemMigratedEvent, runID),
		Phase:     phase,
		Kind:      kind,
		SourceID:  sourceID,
		TargetID:  targetID,
	}
}

type ItemFailed struct {
	BaseEvent

	Phase    string `json:"phase"`
	Kind     string `json:"kind"`
	SourceID string `json:"source_id"`
	Error    string `json:"error"`
}

func (i ItemFailed) GetType() EventType {
	return ItemFailedEvent
}

// NewItemFailed creates an item failed event.
func NewItemFailed(runID, phase, kind, sourceID, errMessage string) ItemFailed {
	return ItemFailed{
		BaseEvent: NewBaseEvent(ItemFailedEvent, runID),
		Phase:     phase,
		Kind:      kind,
		SourceID:  sourceID,
		Error:     errMessage,
	}
}
