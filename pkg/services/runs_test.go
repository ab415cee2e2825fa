package services_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyfy/migrator/pkg/checkpoint"
	"github.com/tallyfy/migrator/pkg/checkpoint/file"
	"github.com/tallyfy/migrator/pkg/report"
	"github.com/tallyfy/migrator/pkg/services"
)

func newRunService(t *testing.T) (*services.Runs, checkpoint.Store) {
	t.Helper()

	store := file.NewStore(t.TempDir())

	return services.NewRuns(store), store
}

func seedRun(t *testing.T, store checkpoint.Store, source string, age time.Duration) *checkpoint.Run {
	t.Helper()

	run := checkpoint.NewRun(source, false)
	run.StartedAt = time.Now().UTC().Add(-age)
	require.NoError(t, store.SaveRun(t.Context(), run))

	return run
}

func TestRuns_ListRuns(t *testing.T) {
	t.Parallel()

	service, store := newRunService(t)

	oldest := seedRun(t, store, "asana", 3*time.Hour)
	middle := seedRun(t, store, "monday", 2*time.Hour)
	newest := seedRun(t, store, "asana", time.Hour)

	result, err := service.ListRuns(t.Context(), services.ListRunsRequest{})
	require.NoError(t, err)
	require.Len(t, result.Runs, 3)
	assert.Equal(t, 3, result.TotalCount)
	assert.Equal(t, newest.ID, result.Runs[0].ID, "newest run first")
	assert.Equal(t, middle.ID, result.Runs[1].ID)
	assert.Equal(t, oldest.ID, result.Runs[2].ID)
}

func TestRuns_ListRunsFiltersBySource(t *testing.T) {
	t.Parallel()

	service, store := newRunService(t)

	seedRun(t, store, "asana", 2*time.Hour)
	seedRun(t, store, "monday", time.Hour)

	result, err := service.ListRuns(t.Context(), services.ListRunsRequest{Source: "asana"})
	require.NoError(t, err)
	require.Len(t, result.Runs, 1)
	assert.Equal(t, "asana", result.Runs[0].Source)
}

func TestRuns_ListRunsBoundsLimit(t *testing.T) {
	t.Parallel()

	service, store := newRunService(t)

	for i := 0; i < 3; i++ {
		seedRun(t, store, "asana", time.Duration(i)*time.Hour)
	}

	result, err := service.ListRuns(t.Context(), services.ListRunsRequest{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, result.Runs, 2)
	assert.Equal(t, 3, result.TotalCount, "total counts beyond the page")

	_, err = service.ListRuns(t.Context(), services.ListRunsRequest{Limit: 1000})
	require.Error(t, err)
	assert.True(t, services.IsValidationError(err))
}

func TestRuns_FetchByID(t *testing.T) {
	t.Parallel()

	service, store := newRunService(t)
	run := seedRun(t, store, "asana", time.Hour)

	found, err := service.FetchByID(t.Context(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, found.ID)

	_, err = service.FetchByID(t.Context(), "missing")
	require.Error(t, err)
	assert.True(t, services.IsNotFound(err))

	_, err = service.FetchByID(t.Context(), "")
	require.Error(t, err)
	assert.True(t, services.IsValidationError(err))
}

func TestRuns_Report(t *testing.T) {
	t.Parallel()

	service, store := newRunService(t)

	run := seedRun(t, store, "asana", time.Hour)

	_, err := service.Report(t.Context(), run.ID)
	require.Error(t, err)
	assert.True(t, services.IsNotFound(err), "run without report is a 404")

	data, err := json.Marshal(report.FromRun(run))
	require.NoError(t, err)

	run.Report = data
	require.NoError(t, store.SaveRun(t.Context(), run))

	parsed, err := service.Report(t.Context(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, parsed.RunID)
	assert.Equal(t, "asana", parsed.Source)
}

func TestRuns_Mappings(t *testing.T) {
	t.Parallel()

	service, store := newRunService(t)
	run := seedRun(t, store, "asana", time.Hour)

	now := time.Now().UTC()
	for _, mapping := range []*checkpoint.Mapping{
		{RunID: run.ID, Kind: "member", SourceID: "u1", TargetID: "m1", Status: checkpoint.MappingDone, CreatedAt: now, UpdatedAt: now},
		{RunID: run.ID, Kind: "template", SourceID: "t1", TargetID: "cl1", Status: checkpoint.MappingDone, CreatedAt: now, UpdatedAt: now},
	} {
		require.NoError(t, store.SaveMapping(t.Context(), mapping))
	}

	all, err := service.Mappings(t.Context(), run.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	members, err := service.Mappings(t.Context(), run.ID, "member")
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "u1", members[0].SourceID)

	_, err = service.Mappings(t.Context(), "missing", "")
	require.Error(t, err)
	assert.True(t, services.IsNotFound(err))
}

func TestRuns_HealthCheck(t *testing.T) {
	t.Parallel()

	service, _ := newRunService(t)

	message, healthy := service.HealthCheck(t.Context())
	assert.True(t, healthy)
	assert.Contains(t, message, "healthy")

	message, healthy = services.NewRuns(nil).HealthCheck(t.Context())
	assert.False(t, healthy)
	assert.Contains(t, message, "not initialized")
}
