package report_test

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tallyfy/migrator/pkg/checkpoint"
	"github.com/tallyfy/migrator/pkg/eventbus"
	"github.com/tallyfy/migrator/pkg/events"
	"github.com/tallyfy/migrator/pkg/migration"
	"github.com/tallyfy/migrator/pkg/mocks"
	"github.com/tallyfy/migrator/pkg/report"
)

func finishedRun() *checkpoint.Run {
	run := checkpoint.NewRun("asana", false)
	run.Status = checkpoint.RunCompleted

	started := run.StartedAt
	completed := started.Add(90 * time.Second)
	run.CompletedAt = &completed

	users := run.PhaseRecordFor(checkpoint.PhaseUsers)
	users.Status = checkpoint.PhaseCompleted
	users.Processed = 12
	users.Failed = 1
	users.StartedAt = &started
	users.CompletedAt = &completed

	templates := run.PhaseRecordFor(checkpoint.PhaseTemplates)
	templates.Status = checkpoint.PhaseCompleted
	templates.Processed = 3

	return run
}

func TestFromRunAggregatesPhaseTotals(t *testing.T) {
	t.Parallel()

	run := finishedRun()

	rep := report.FromRun(run)

	assert.Equal(t, run.ID, rep.RunID)
	assert.Equal(t, "asana", rep.Source)
	assert.Equal(t, checkpoint.RunCompleted, rep.Status)
	assert.Len(t, rep.Phases, len(checkpoint.Phases()))
	assert.Equal(t, 15, rep.Totals.Processed)
	assert.Equal(t, 1, rep.Totals.Failed)

	users := rep.Phases[1]
	assert.Equal(t, "users", users.Phase)
	assert.Equal(t, "1m30s", users.Duration)

	// phases that never ran carry no duration
	assert.Empty(t, rep.Phases[0].Duration)
}

func TestFromResultMergesIssuesAndFailures(t *testing.T) {
	t.Parallel()

	builder := report.NewBuilder()
	handler := captureItemFailedHandler(t, builder)

	run := finishedRun()
	failed := events.NewItemFailed(run.ID, "users", "member", "u-9", "HTTP 500")
	require.NoError(t, handler(t.Context(), &failed))

	result := &migration.Result{
		Run: run,
		Issues: []migration.Issue{
			{Phase: checkpoint.PhaseValidation, Kind: "group", SourceID: "g1", Message: "group missing in target"},
		},
	}

	rep := report.FromResult(result, builder)

	assert.Equal(t, 1, rep.Totals.Issues)
	require.Len(t, rep.Failures, 1)
	assert.Equal(t, "u-9", rep.Failures[0].SourceID)
	assert.Equal(t, "HTTP 500", rep.Failures[0].Error)
}

func TestWriteJSONIsReadBackByParseJSON(t *testing.T) {
	t.Parallel()

	rep := report.FromRun(finishedRun())
	dir := t.TempDir()

	path, err := rep.WriteJSON(dir)
	require.NoError(t, err)
	assert.Contains(t, path, "migration_report_"+rep.RunID+".json")

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	parsed, err := report.ParseJSON(data)
	require.NoError(t, err)
	assert.Equal(t, rep.RunID, parsed.RunID)
	assert.Equal(t, rep.Totals, parsed.Totals)
}

func TestParseJSONRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := report.ParseJSON([]byte("{not json"))
	require.Error(t, err)
}

func TestRenderTextListsPhasesAndFailures(t *testing.T) {
	t.Parallel()

	rep := report.FromRun(finishedRun())
	rep.Issues = []migration.Issue{
		{Phase: checkpoint.PhaseValidation, Message: "instance count mismatch"},
	}
	rep.Totals.Issues = 1
	rep.Failures = []report.ItemFailure{
		{Phase: "users", Kind: "member", SourceID: "u-9", Error: "HTTP 500"},
	}

	var out bytes.Buffer
	require.NoError(t, rep.RenderText(&out))

	text := out.String()
	assert.Contains(t, text, "Migration report for run "+rep.RunID)
	assert.Contains(t, text, "users")
	assert.Contains(t, text, "15 migrated, 1 failed, 1 validation issues")
	assert.Contains(t, text, "instance count mismatch")
	assert.Contains(t, text, "[users/member] u-9: HTTP 500")
}

func TestBuilderIgnoresOtherRuns(t *testing.T) {
	t.Parallel()

	builder := report.NewBuilder()
	handler := captureItemFailedHandler(t, builder)

	failed := events.NewItemFailed("run-a", "users", "member", "u-1", "boom")
	require.NoError(t, handler(t.Context(), &failed))

	assert.Len(t, builder.Failures("run-a"), 1)
	assert.Empty(t, builder.Failures("run-b"))
}

func TestBuilderRejectsUnexpectedPayload(t *testing.T) {
	t.Parallel()

	builder := report.NewBuilder()
	handler := captureItemFailedHandler(t, builder)

	require.Error(t, handler(t.Context(), "not an event"))
}

// captureItemFailedHandler registers the builder on a bus mock and returns
// the handler it registered for item failures.
func captureItemFailedHandler(t *testing.T, builder *report.Builder) eventbus.EventHandler {
	t.Helper()

	var handler eventbus.EventHandler

	bus := &mocks.MockEventBus{}
	bus.On("Handle", events.ItemFailedEvent, mock.Anything).Run(func(args mock.Arguments) {
		handler = args.Get(1).(eventbus.EventHandler)
	}).Return(nil)

	require.NoError(t, builder.RegisterHandlers(bus))
	require.NotNil(t, handler)

	return handler
}
