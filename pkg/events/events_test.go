package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBaseEvent(t *testing.T) {
	event := NewBaseEvent(RunStartedEvent, "run-123")

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, RunStartedEvent, event.Type)
	assert.Equal(t, "run-123", event.RunID)
	assert.False(t, event.Timestamp.IsZero())
	assert.NotNil(t, event.Metadata)

	other := NewBaseEvent(RunStartedEvent, "run-123")
	assert.NotEqual(t, event.ID, other.ID)
}

func TestRunStarted_JSONSerialization(t *testing.T) {
	original := NewRunStarted("run-123", "asana", true, []string{"discovery", "users"})

	jsonData, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Contains(t, string(jsonData), `"run_id":"run-123"`)
	assert.Contains(t, string(jsonData), `"source":"asana"`)
	assert.Contains(t, string(jsonData), `"dry_run":true`)

	var deserialized RunStarted

	err = json.Unmarshal(jsonData, &deserialized)
	require.NoError(t, err)

	assert.Equal(t, original.RunID, deserialized.RunID)
	assert.Equal(t, original.Source, deserialized.Source)
	assert.Equal(t, original.Phases, deserialized.Phases)
	assert.Equal(t, RunStartedEvent, deserialized.GetType())
}

func TestPhaseCompleted_JSONSerialization(t *testing.T) {
	original := NewPhaseCompleted("run-123", "templates", 10, 2, false, 1500*time.Millisecond)

	jsonData, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Contains(t, string(jsonData), `"phase":"templates"`)
	assert.Contains(t, string(jsonData), `"duration_ms":1500`)

	var deserialized PhaseCompleted

	err = json.Unmarshal(jsonData, &deserialized)
	require.NoError(t, err)

	assert.Equal(t, 10, deserialized.Processed)
	assert.Equal(t, 2, deserialized.Failed)
	assert.False(t, deserialized.Skipped)
	assert.Equal(t, PhaseCompletedEvent, deserialized.GetType())
}

func TestItemEvents(t *testing.T) {
	migrated := NewItemMigrated("run-1", "users", "user", "u-9", "member-44")
	assert.Equal(t, ItemMigratedEvent, migrated.GetType())
	assert.Equal(t, "member-44", migrated.TargetID)

	failed := NewItemFailed("run-1", "users", "user", "u-10", "invite rejected")
	assert.Equal(t, ItemFailedEvent, failed.GetType())
	assert.Equal(t, "invite rejected", failed.Error)
}

func TestEventTypes_Distinct(t *testing.T) {
	types := []EventType{
		RunStarted{}.GetType(),
		RunCompleted{}.GetType(),
		RunFailed{}.GetType(),
		PhaseStarted{}.GetType(),
		PhaseCompleted{}.GetType(),
		PhaseFailed{}.GetType(),
		ItemMigrated{}.GetType(),
		ItemFailed{}.GetType(),
	}

	seen := make(map[EventType]bool)
	for _, eventType := range types {
		assert.False(t, seen[eventType], "duplicate event type %s", eventType)
		seen[eventType] = true
	}
}
