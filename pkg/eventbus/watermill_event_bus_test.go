package eventbus_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyfy/migrator/pkg/channels/gochannel"
	"github.com/tallyfy/migrator/pkg/eventbus"
	"github.com/tallyfy/migrator/pkg/events"
)

func newTestBus(t *testing.T) eventbus.EventBus {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	pub, sub, err := gochannel.CreateTestChannel(watermill.NewSlogLogger(logger))
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)

	t.Cleanup(func() {
		_ = bus.Close()
	})

	return bus
}

func TestWatermillEventBus_PublishAndHandle(t *testing.T) {
	bus := newTestBus(t)

	received := make(chan *events.ItemMigrated, 1)

	err := bus.Handle(events.ItemMigratedEvent, func(_ context.Context, event interface{}) error {
		migrated, ok := event.(*events.ItemMigrated)
		require.True(t, ok)
		received <- migrated

		return nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	published := events.NewItemMigrated("run-1", "users", "user", "u-5", "member-9")
	require.NoError(t, bus.Publish(ctx, "run-1", published))

	select {
	case got := <-received:
		assert.Equal(t, "run-1", got.RunID)
		assert.Equal(t, "users", got.Phase)
		assert.Equal(t, "u-5", got.SourceID)
		assert.Equal(t, "member-9", got.TargetID)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestWatermillEventBus_RoutesByType(t *testing.T) {
	bus := newTestBus(t)

	phaseEvents := make(chan *events.PhaseCompleted, 2)

	err := bus.Handle(events.PhaseCompletedEvent, func(_ context.Context, event interface{}) error {
		completed, ok := event.(*events.PhaseCompleted)
		require.True(t, ok)
		phaseEvents <- completed

		return nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	// The item event has no handler and must be acked without delivery.
	require.NoError(t, bus.Publish(ctx, "run-1", events.NewItemMigrated("run-1", "users", "user", "u-1", "m-1")))
	require.NoError(t, bus.Publish(ctx, "run-1", events.NewPhaseCompleted("run-1", "users", 3, 0, false, time.Second)))

	select {
	case got := <-phaseEvents:
		assert.Equal(t, "users", got.Phase)
		assert.Equal(t, 3, got.Processed)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for phase event")
	}

	assert.Empty(t, phaseEvents)
}

func TestWatermillEventBus_MultipleHandlers(t *testing.T) {
	bus := newTestBus(t)

	first := make(chan string, 1)
	second := make(chan string, 1)

	err := bus.Handle(events.ItemFailedEvent, func(_ context.Context, event interface{}) error {
		failed, ok := event.(*events.ItemFailed)
		require.True(t, ok)
		first <- failed.SourceID

		return nil
	})
	require.NoError(t, err)

	err = bus.Handle(events.ItemFailedEvent, func(_ context.Context, event interface{}) error {
		failed, ok := event.(*events.ItemFailed)
		require.True(t, ok)
		second <- failed.SourceID

		return nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))
	require.NoError(t, bus.Publish(ctx, "run-1", events.NewItemFailed("run-1", "templates", "template", "t-1", "boom")))

	for _, ch := range []chan string{first, second} {
		select {
		case got := <-ch:
			assert.Equal(t, "t-1", got)
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for handler")
		}
	}
}

func TestWatermillEventBus_GenerateID(t *testing.T) {
	bus := newTestBus(t)

	first := bus.GenerateID()
	second := bus.GenerateID()

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}
