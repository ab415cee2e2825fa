package migration_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tallyfy/migrator/pkg/checkpoint"
	"github.com/tallyfy/migrator/pkg/checkpoint/file"
	"github.com/tallyfy/migrator/pkg/client"
	"github.com/tallyfy/migrator/pkg/eventbus"
	"github.com/tallyfy/migrator/pkg/events"
	"github.com/tallyfy/migrator/pkg/migration"
	"github.com/tallyfy/migrator/pkg/mocks"
	"github.com/tallyfy/migrator/pkg/model"
	"github.com/tallyfy/migrator/pkg/tallyfy"
	"github.com/tallyfy/migrator/pkg/testutil"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func notFoundErr(title string) error {
	return fmt.Errorf("checklist %q: %w", title, client.ErrNotFound)
}

// fullSource returns a source mock with two active members, one group, one
// two-step template and one instance that completed its first step.
func fullSource(t *testing.T) *mocks.MockFullSource {
	t.Helper()

	src := &mocks.MockFullSource{}
	src.On("Name").Return("clickup")
	src.On("Readiness", mock.Anything).Return(nil)
	src.On("Discover", mock.Anything).Return(&model.Discovery{
		Source:      "clickup",
		Members:     2,
		Groups:      1,
		Templates:   1,
		Instances:   1,
		GeneratedAt: time.Now().UTC(),
	}, nil)
	src.On("Members", mock.Anything).Return([]model.Member{
		testutil.CreateTestMember(testutil.WithEmail("Ada@Example.com"), testutil.WithRole(model.RoleAdmin)),
		testutil.CreateTestMember(testutil.WithEmail("grace@example.com"), testutil.WithName("Grace", "Hopper")),
		testutil.CreateTestMember(testutil.WithEmail("gone@example.com"), testutil.Deactivated()),
	}, nil)
	src.On("Groups", mock.Anything).Return([]model.Group{
		{SourceID: "g1", Name: "Engineering", Members: []string{"ada@example.com", "missing@example.com"}},
	}, nil)
	src.On("Templates", mock.Anything).Return([]model.Template{
		testutil.CreateTestTemplate(),
	}, nil)
	src.On("Instances", mock.Anything).Return([]model.Instance{
		testutil.CreateTestInstance(testutil.WithFieldValues(
			map[string]any{"Start date": "2024-11-04", "Budget": 1200.5, "Empty": nil},
		)),
	}, nil)

	return src
}

func readyTarget() *mocks.MockTarget {
	target := &mocks.MockTarget{}
	target.On("Me", mock.Anything).Return(&tallyfy.Account{ID: "acct-1", Email: "owner@example.com"}, nil)

	return target
}

func TestRunMigratesEverything(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	store := file.NewStore(t.TempDir())
	src := fullSource(t)

	target := readyTarget()
	target.On("InviteMember", mock.Anything, mock.MatchedBy(func(o tallyfy.InviteMemberOptions) bool {
		return o.Email == "Ada@Example.com" && o.Role == "admin" && o.IdempotencyKey != ""
	})).Return(&tallyfy.MemberRecord{ID: "m-ada", Email: "ada@example.com"}, nil)
	target.On("InviteMember", mock.Anything, mock.MatchedBy(func(o tallyfy.InviteMemberOptions) bool {
		return o.Email == "grace@example.com" && o.Role == "standard"
	})).Return(&tallyfy.MemberRecord{ID: "m-grace", Email: "grace@example.com"}, nil)
	target.On("CreateGroup", mock.Anything, mock.MatchedBy(func(o tallyfy.CreateGroupOptions) bool {
		// the member that was never migrated stays out of the group
		return o.Name == "Engineering" && len(o.MemberIDs) == 1 && o.MemberIDs[0] == "m-ada"
	})).Return(&tallyfy.GroupRecord{ID: "grp-1", Name: "Engineering"}, nil)
	target.On("FindChecklistByTitle", mock.Anything, "Onboarding").Return(nil, notFoundErr("Onboarding"))
	target.On("CreateChecklist", mock.Anything, mock.MatchedBy(func(o tallyfy.CreateChecklistOptions) bool {
		return o.Title == "Onboarding" && o.IdempotencyKey != ""
	})).Return(&tallyfy.ChecklistRecord{ID: "chk-1", Title: "Onboarding"}, nil)
	target.On("AddCapture", mock.Anything, mock.Anything).Return(&tallyfy.CaptureRecord{ID: "cap-1"}, nil)
	target.On("AddStep", mock.Anything, mock.MatchedBy(func(o tallyfy.AddStepOptions) bool {
		return o.Alias == "step-1"
	})).Return(&tallyfy.StepRecord{ID: "st-1", Alias: "step-1"}, nil)
	target.On("AddStep", mock.Anything, mock.MatchedBy(func(o tallyfy.AddStepOptions) bool {
		return o.Alias == "step-2"
	})).Return(&tallyfy.StepRecord{ID: "st-2", Alias: "step-2"}, nil)
	target.On("LaunchProcess", mock.Anything, mock.MatchedBy(func(o tallyfy.LaunchProcessOptions) bool {
		return o.ChecklistID == "chk-1" &&
			o.Name == "Onboard Margaret" &&
			o.FieldValues["Start date"] == "2024-11-04" &&
			o.FieldValues["Budget"] == "1200.5"
	})).Return(&tallyfy.RunRecord{ID: "prun-1", Status: "active"}, nil)
	target.On("RunTasks", mock.Anything, "prun-1").Return([]tallyfy.TaskRecord{
		{ID: "task-1", Alias: "step-1", Title: "Prepare laptop"},
		{ID: "task-2", Alias: "step-2", Title: "Approve access"},
	}, nil)
	target.On("CompleteTask", mock.Anything, mock.MatchedBy(func(o tallyfy.CompleteTaskOptions) bool {
		return o.RunID == "prun-1" && o.TaskID == "task-1" && o.CompletedBy == "ada@example.com"
	})).Return(nil)
	target.On("Members", mock.Anything).Return([]tallyfy.MemberRecord{
		{ID: "m-ada", Email: "ada@example.com"},
		{ID: "m-grace", Email: "grace@example.com"},
	}, nil)
	target.On("Groups", mock.Anything).Return([]tallyfy.GroupRecord{{ID: "grp-1", Name: "Engineering"}}, nil)

	orc := migration.New(src, target, store, nil, testLogger(), migration.Options{})

	result, err := orc.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, checkpoint.RunCompleted, result.Run.Status)
	assert.Empty(t, result.Issues)
	assert.Zero(t, result.Failed)

	users := result.Run.PhaseRecordFor(checkpoint.PhaseUsers)
	assert.Equal(t, checkpoint.PhaseCompleted, users.Status)
	assert.Equal(t, 2, users.Processed)

	// the deactivated member was never invited
	target.AssertNumberOfCalls(t, "InviteMember", 2)
	target.AssertNotCalled(t, "ArchiveRun", mock.Anything, mock.Anything)

	templateMapping, err := store.MappingFor(ctx, result.Run.ID, migration.KindTemplate, "tpl-1")
	require.NoError(t, err)
	assert.Equal(t, checkpoint.MappingDone, templateMapping.Status)
	assert.Equal(t, "chk-1", templateMapping.TargetID)

	stepMapping, err := store.MappingFor(ctx, result.Run.ID, migration.KindStep, "tpl-1/step-1")
	require.NoError(t, err)
	assert.Equal(t, "st-1", stepMapping.TargetID)

	target.AssertExpectations(t)
	src.AssertExpectations(t)
}

func TestRunDryRunWritesNothing(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	store := file.NewStore(t.TempDir())
	src := fullSource(t)

	// any write call would hit an expectation-less mock and fail the test
	target := readyTarget()

	orc := migration.New(src, target, store, nil, testLogger(), migration.Options{DryRun: true})

	result, err := orc.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, checkpoint.RunCompleted, result.Run.Status)
	assert.True(t, result.Run.DryRun)

	mappings, err := store.MappingsByRun(ctx, result.Run.ID)
	require.NoError(t, err)
	assert.Empty(t, mappings)

	target.AssertExpectations(t)
}

func TestRunResumeSkipsCompletedWork(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	store := file.NewStore(t.TempDir())

	// previous attempt: discovery done, users crashed after inviting ada
	previous := checkpoint.NewRun("clickup", false)
	previous.Status = checkpoint.RunFailed
	previous.PhaseRecordFor(checkpoint.PhaseDiscovery).Status = checkpoint.PhaseCompleted

	startedAt := time.Now().UTC().Add(-time.Hour)
	usersRecord := previous.PhaseRecordFor(checkpoint.PhaseUsers)
	usersRecord.Status = checkpoint.PhaseFailed
	usersRecord.StartedAt = &startedAt
	require.NoError(t, store.SaveRun(ctx, previous))
	require.NoError(t, store.SaveMapping(ctx, &checkpoint.Mapping{
		RunID:    previous.ID,
		Kind:     migration.KindMember,
		SourceID: "ada@example.com",
		TargetID: "m-ada",
		Key:      "key-ada",
		Status:   checkpoint.MappingDone,
	}))

	src := &mocks.MockFullSource{}
	src.On("Name").Return("clickup")
	src.On("Readiness", mock.Anything).Return(nil)
	src.On("Discover", mock.Anything).Return(&model.Discovery{Source: "clickup", Members: 2}, nil)
	src.On("Members", mock.Anything).Return([]model.Member{
		{Email: "ada@example.com", Role: model.RoleAdmin, Active: true},
		{Email: "grace@example.com", Role: model.RoleStandard, Active: true},
	}, nil)
	src.On("Groups", mock.Anything).Return([]model.Group{}, nil)
	src.On("Templates", mock.Anything).Return([]model.Template{}, nil)
	src.On("Instances", mock.Anything).Return([]model.Instance{}, nil)

	target := readyTarget()
	target.On("InviteMember", mock.Anything, mock.MatchedBy(func(o tallyfy.InviteMemberOptions) bool {
		return o.Email == "grace@example.com"
	})).Return(&tallyfy.MemberRecord{ID: "m-grace"}, nil)
	target.On("Members", mock.Anything).Return([]tallyfy.MemberRecord{
		{ID: "m-ada", Email: "ada@example.com"},
		{ID: "m-grace", Email: "grace@example.com"},
	}, nil)
	target.On("Groups", mock.Anything).Return([]tallyfy.GroupRecord{}, nil)

	orc := migration.New(src, target, store, nil, testLogger(), migration.Options{Resume: true})

	result, err := orc.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, previous.ID, result.Run.ID)
	assert.Equal(t, checkpoint.RunCompleted, result.Run.Status)

	// ada's done mapping skipped the invite, grace's was created
	target.AssertNumberOfCalls(t, "InviteMember", 1)
	assert.Equal(t, 2, result.Run.PhaseRecordFor(checkpoint.PhaseUsers).Processed)

	// discovery phase was skipped; the one Discover call is validation's
	src.AssertNumberOfCalls(t, "Discover", 1)
}

func TestRunReplaysIntentKeyAfterCrash(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	store := file.NewStore(t.TempDir())

	// a crash between the invite and the done record leaves an intent behind
	previous := checkpoint.NewRun("clickup", false)
	previous.Status = checkpoint.RunFailed
	require.NoError(t, store.SaveRun(ctx, previous))
	require.NoError(t, store.SaveMapping(ctx, &checkpoint.Mapping{
		RunID:    previous.ID,
		Kind:     migration.KindMember,
		SourceID: "ada@example.com",
		Key:      "crashed-key",
		Status:   checkpoint.MappingIntent,
	}))

	src := &mocks.MockFullSource{}
	src.On("Name").Return("clickup")
	src.On("Readiness", mock.Anything).Return(nil)
	src.On("Discover", mock.Anything).Return(&model.Discovery{Source: "clickup", Members: 1}, nil)
	src.On("Members", mock.Anything).Return([]model.Member{
		{Email: "ada@example.com", Role: model.RoleAdmin, Active: true},
	}, nil)
	src.On("Groups", mock.Anything).Return([]model.Group{}, nil)
	src.On("Templates", mock.Anything).Return([]model.Template{}, nil)
	src.On("Instances", mock.Anything).Return([]model.Instance{}, nil)

	target := readyTarget()
	target.On("InviteMember", mock.Anything, mock.MatchedBy(func(o tallyfy.InviteMemberOptions) bool {
		return o.IdempotencyKey == "crashed-key"
	})).Return(&tallyfy.MemberRecord{ID: "m-ada"}, nil)
	target.On("Members", mock.Anything).Return([]tallyfy.MemberRecord{{ID: "m-ada", Email: "ada@example.com"}}, nil)
	target.On("Groups", mock.Anything).Return([]tallyfy.GroupRecord{}, nil)

	orc := migration.New(src, target, store, nil, testLogger(), migration.Options{Resume: true})

	_, err := orc.Run(ctx)
	require.NoError(t, err)

	mapping, err := store.MappingFor(ctx, previous.ID, migration.KindMember, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, checkpoint.MappingDone, mapping.Status)
	assert.Equal(t, "m-ada", mapping.TargetID)
	assert.Equal(t, "crashed-key", mapping.Key)

	target.AssertExpectations(t)
}

func TestRunDeltaReusesCompletedRun(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	store := file.NewStore(t.TempDir())

	previous := checkpoint.NewRun("clickup", false)
	previous.Status = checkpoint.RunCompleted

	for _, phase := range checkpoint.Phases() {
		previous.PhaseRecordFor(phase).Status = checkpoint.PhaseCompleted
	}

	require.NoError(t, store.SaveRun(ctx, previous))
	require.NoError(t, store.SaveMapping(ctx, &checkpoint.Mapping{
		RunID:    previous.ID,
		Kind:     migration.KindMember,
		SourceID: "ada@example.com",
		TargetID: "m-ada",
		Key:      "key-ada",
		Status:   checkpoint.MappingDone,
	}))

	src := &mocks.MockFullSource{}
	src.On("Name").Return("clickup")
	src.On("Readiness", mock.Anything).Return(nil)
	src.On("Discover", mock.Anything).Return(&model.Discovery{Source: "clickup", Members: 2}, nil)
	src.On("Members", mock.Anything).Return([]model.Member{
		{Email: "ada@example.com", Role: model.RoleAdmin, Active: true},
		{Email: "new-hire@example.com", Role: model.RoleStandard, Active: true},
	}, nil)
	src.On("Groups", mock.Anything).Return([]model.Group{}, nil)
	src.On("Templates", mock.Anything).Return([]model.Template{}, nil)
	src.On("Instances", mock.Anything).Return([]model.Instance{}, nil)

	target := readyTarget()
	target.On("InviteMember", mock.Anything, mock.MatchedBy(func(o tallyfy.InviteMemberOptions) bool {
		return o.Email == "new-hire@example.com"
	})).Return(&tallyfy.MemberRecord{ID: "m-new"}, nil)
	target.On("Members", mock.Anything).Return([]tallyfy.MemberRecord{
		{ID: "m-ada", Email: "ada@example.com"},
		{ID: "m-new", Email: "new-hire@example.com"},
	}, nil)
	target.On("Groups", mock.Anything).Return([]tallyfy.GroupRecord{}, nil)

	orc := migration.New(src, target, store, nil, testLogger(), migration.Options{Delta: true})

	result, err := orc.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, previous.ID, result.Run.ID)
	assert.Equal(t, checkpoint.RunCompleted, result.Run.Status)

	// only the member that appeared since the last pass was invited
	target.AssertNumberOfCalls(t, "InviteMember", 1)
	assert.Equal(t, 2, result.Run.PhaseRecordFor(checkpoint.PhaseUsers).Processed)
}

func TestRunAbortsOnAuthFailure(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	store := file.NewStore(t.TempDir())
	src := fullSource(t)

	target := readyTarget()
	target.On("InviteMember", mock.Anything, mock.Anything).
		Return(nil, &client.AuthError{StatusCode: 401, Message: "token expired"})

	// ContinueOnError does not override an auth failure
	orc := migration.New(src, target, store, nil, testLogger(), migration.Options{ContinueOnError: true})

	result, err := orc.Run(ctx)
	require.Error(t, err)
	require.NotNil(t, result)

	assert.Equal(t, checkpoint.RunFailed, result.Run.Status)
	assert.Equal(t, checkpoint.PhaseFailed, result.Run.PhaseRecordFor(checkpoint.PhaseUsers).Status)

	target.AssertNotCalled(t, "CreateChecklist", mock.Anything, mock.Anything)
	target.AssertNotCalled(t, "LaunchProcess", mock.Anything, mock.Anything)
}

func TestRunFailsWhenSourceNotReady(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	store := file.NewStore(t.TempDir())

	src := &mocks.MockSource{}
	src.On("Name").Return("asana")
	src.On("Readiness", mock.Anything).Return(errors.New("HTTP 401"))

	orc := migration.New(src, &mocks.MockTarget{}, store, nil, testLogger(), migration.Options{})

	result, err := orc.Run(ctx)
	require.Error(t, err)
	assert.Nil(t, result)

	runs, err := store.Runs(ctx)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestRunSkipsPhasesTheSourceCannotServe(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	store := file.NewStore(t.TempDir())

	src := &mocks.MockSource{}
	src.On("Name").Return("basecamp")
	src.On("Readiness", mock.Anything).Return(nil)
	src.On("Discover", mock.Anything).Return(&model.Discovery{Source: "basecamp", Members: 1}, nil)
	src.On("Members", mock.Anything).Return([]model.Member{
		{Email: "ada@example.com", Role: model.RoleAdmin, Active: true},
	}, nil)
	src.On("Templates", mock.Anything).Return([]model.Template{}, nil)

	target := readyTarget()
	target.On("InviteMember", mock.Anything, mock.Anything).Return(&tallyfy.MemberRecord{ID: "m-ada"}, nil)
	target.On("Members", mock.Anything).Return([]tallyfy.MemberRecord{{ID: "m-ada", Email: "ada@example.com"}}, nil)
	target.On("Groups", mock.Anything).Return([]tallyfy.GroupRecord{}, nil)

	orc := migration.New(src, target, store, nil, testLogger(), migration.Options{})

	result, err := orc.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, checkpoint.RunCompleted, result.Run.Status)
	assert.Equal(t, checkpoint.PhaseSkipped, result.Run.PhaseRecordFor(checkpoint.PhaseGroups).Status)
	assert.Equal(t, checkpoint.PhaseSkipped, result.Run.PhaseRecordFor(checkpoint.PhaseInstances).Status)
}

func TestRunHonorsPhaseSelection(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	store := file.NewStore(t.TempDir())

	src := &mocks.MockSource{}
	src.On("Name").Return("asana")
	src.On("Readiness", mock.Anything).Return(nil)
	src.On("Members", mock.Anything).Return([]model.Member{
		{Email: "ada@example.com", Role: model.RoleAdmin, Active: true},
	}, nil)

	target := readyTarget()
	target.On("InviteMember", mock.Anything, mock.Anything).Return(&tallyfy.MemberRecord{ID: "m-ada"}, nil)

	orc := migration.New(src, target, store, nil, testLogger(), migration.Options{
		Phases: []checkpoint.Phase{checkpoint.PhaseUsers},
	})

	result, err := orc.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, checkpoint.PhaseSkipped, result.Run.PhaseRecordFor(checkpoint.PhaseDiscovery).Status)
	assert.Equal(t, checkpoint.PhaseCompleted, result.Run.PhaseRecordFor(checkpoint.PhaseUsers).Status)
	assert.Equal(t, checkpoint.PhaseSkipped, result.Run.PhaseRecordFor(checkpoint.PhaseValidation).Status)

	src.AssertNotCalled(t, "Discover", mock.Anything)
}

func TestRunPublishesLifecycleEvents(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	store := file.NewStore(t.TempDir())
	src := fullSource(t)
	target := readyTarget()

	bus := &mocks.MockEventBus{}
	bus.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	orc := migration.New(src, target, store, bus, testLogger(), migration.Options{DryRun: true})

	result, err := orc.Run(ctx)
	require.NoError(t, err)

	for _, eventType := range []events.EventType{
		events.RunStartedEvent,
		events.PhaseStartedEvent,
		events.PhaseCompletedEvent,
		events.RunCompletedEvent,
	} {
		bus.AssertCalled(t, "Publish", mock.Anything, result.Run.ID, mock.MatchedBy(func(e eventbus.Event) bool {
			return e.GetType() == eventType
		}))
	}
}

func TestScheduleRejectsInvalidSpec(t *testing.T) {
	t.Parallel()

	err := migration.Schedule(t.Context(), "not a cron line", testLogger(), func(context.Context) error {
		return nil
	})
	require.Error(t, err)
}

func TestScheduleRunsPassesUntilCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	ticks := make(chan struct{}, 1)
	done := make(chan error, 1)

	go func() {
		done <- migration.Schedule(ctx, "@every 10ms", testLogger(), func(context.Context) error {
			select {
			case ticks <- struct{}{}:
			default:
			}

			return nil
		})
	}()

	select {
	case <-ticks:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduled pass never ran")
	}

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop after cancellation")
	}
}
