package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyfy/migrator/pkg/checkpoint"
	"github.com/tallyfy/migrator/pkg/report"
)

func TestParsePhases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   []string
		want    []checkpoint.Phase
		wantErr bool
	}{
		{
			name:  "empty means all phases",
			input: nil,
			want:  nil,
		},
		{
			name:  "single phase",
			input: []string{"users"},
			want:  []checkpoint.Phase{checkpoint.PhaseUsers},
		},
		{
			name:  "mixed case and whitespace",
			input: []string{" Templates ", "VALIDATION"},
			want:  []checkpoint.Phase{checkpoint.PhaseTemplates, checkpoint.PhaseValidation},
		},
		{
			name:    "unknown phase",
			input:   []string{"users", "cleanup"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := parsePhases(tt.input)
			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReportForRun_RebuildsWhenMissing(t *testing.T) {
	t.Parallel()

	run := checkpoint.NewRun("asana", false)
	run.Phases[0].Processed = 4

	rep, err := reportForRun(run)
	require.NoError(t, err)
	assert.Equal(t, run.ID, rep.RunID)
	assert.Equal(t, 4, rep.Totals.Processed)
}

func TestReportForRun_PrefersStoredReport(t *testing.T) {
	t.Parallel()

	run := checkpoint.NewRun("asana", false)

	stored := report.FromRun(run)
	stored.Totals.Issues = 3

	data, err := json.Marshal(stored)
	require.NoError(t, err)

	run.Report = data

	rep, err := reportForRun(run)
	require.NoError(t, err)
	assert.Equal(t, 3, rep.Totals.Issues)
}

func TestReportForRun_RejectsCorruptReport(t *testing.T) {
	t.Parallel()

	run := checkpoint.NewRun("asana", false)
	run.Report = []byte("{not json")

	_, err := reportForRun(run)
	require.Error(t, err)
}
