package checkpoint_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyfy/migrator/pkg/checkpoint"
)

func TestPhases_Order(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []checkpoint.Phase{
		checkpoint.PhaseDiscovery,
		checkpoint.PhaseUsers,
		checkpoint.PhaseGroups,
		checkpoint.PhaseTemplates,
		checkpoint.PhaseInstances,
		checkpoint.PhaseValidation,
	}, checkpoint.Phases())
}

func TestNewRun(t *testing.T) {
	t.Parallel()

	run := checkpoint.NewRun("basecamp", true)

	assert.NotEmpty(t, run.ID)
	assert.Equal(t, "basecamp", run.Source)
	assert.Equal(t, checkpoint.RunRunning, run.Status)
	assert.True(t, run.DryRun)
	assert.False(t, run.StartedAt.IsZero())
	require.Len(t, run.Phases, len(checkpoint.Phases()))

	for i, phase := range checkpoint.Phases() {
		assert.Equal(t, phase, run.Phases[i].Phase)
		assert.Equal(t, checkpoint.PhasePending, run.Phases[i].Status)
	}

	// IDs must differ between runs
	other := checkpoint.NewRun("basecamp", true)
	assert.NotEqual(t, run.ID, other.ID)
}

func TestRun_PhaseRecordFor(t *testing.T) {
	t.Parallel()

	run := checkpoint.NewRun("asana", false)

	record := run.PhaseRecordFor(checkpoint.PhaseTemplates)
	require.NotNil(t, record)

	// The pointer aliases the run's slice, so mutations stick.
	record.Status = checkpoint.PhaseFailed
	record.Error = "boom"

	assert.Equal(t, checkpoint.PhaseFailed, run.PhaseRecordFor(checkpoint.PhaseTemplates).Status)
	assert.Nil(t, run.PhaseRecordFor(checkpoint.Phase("unknown")))
}

func TestRun_IsPhaseCompleted(t *testing.T) {
	t.Parallel()

	run := checkpoint.NewRun("asana", false)
	assert.False(t, run.IsPhaseCompleted(checkpoint.PhaseUsers))

	run.PhaseRecordFor(checkpoint.PhaseUsers).Status = checkpoint.PhaseCompleted
	assert.True(t, run.IsPhaseCompleted(checkpoint.PhaseUsers))

	run.PhaseRecordFor(checkpoint.PhaseGroups).Status = checkpoint.PhaseSkipped
	assert.True(t, run.IsPhaseCompleted(checkpoint.PhaseGroups))

	run.PhaseRecordFor(checkpoint.PhaseTemplates).Status = checkpoint.PhaseFailed
	assert.False(t, run.IsPhaseCompleted(checkpoint.PhaseTemplates))

	assert.False(t, run.IsPhaseCompleted(checkpoint.Phase("unknown")))
}

func TestStandardizedErrors(t *testing.T) {
	t.Parallel()

	t.Run("error constants are available", func(t *testing.T) {
		assert.NotNil(t, checkpoint.ErrRunNotFound)
		assert.NotNil(t, checkpoint.ErrMappingNotFound)
	})

	t.Run("error checking functions work correctly", func(t *testing.T) {
		runErr := fmt.Errorf("run abc: %w", checkpoint.ErrRunNotFound)
		mappingErr := fmt.Errorf("user u-1 in run abc: %w", checkpoint.ErrMappingNotFound)

		assert.True(t, checkpoint.IsRunNotFound(runErr))
		assert.True(t, checkpoint.IsMappingNotFound(mappingErr))
		assert.False(t, checkpoint.IsRunNotFound(mappingErr))
		assert.False(t, checkpoint.IsMappingNotFound(errors.New("other")))
	})
}
