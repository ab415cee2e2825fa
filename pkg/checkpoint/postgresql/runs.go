package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tallyfy/migrator/pkg/checkpoint"
)

// RunRepository handles run-related database operations.
type RunRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewRunRepository creates a new run repository.
func NewRunRepository(db *sql.DB, logger *slog.Logger) *RunRepository {
	return &RunRepository{db: db, logger: logger}
}

// Save inserts or updates a run.
func (r *RunRepository) Save(ctx context.Context, run *checkpoint.Run) error {
	phases, err := json.Marshal(run.Phases)
	if err != nil {
		return fmt.Errorf("failed to marshal phases for run %s: %w", run.ID, err)
	}

	var report any
	if len(run.Report) > 0 {
		report = []byte(run.Report)
	}

	query := `
		INSERT INTO runs (id, source, status, dry_run, started_at, completed_at, phases, report)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			completed_at = EXCLUDED.completed_at,
			phases = EXCLUDED.phases,
			report = EXCLUDED.report
	`

	_, err = r.db.ExecContext(ctx, query,
		run.ID,
		run.Source,
		run.Status,
		run.DryRun,
		run.StartedAt,
		run.CompletedAt,
		phases,
		report,
	)
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", run.ID, err)
	}

	return nil
}

// GetByID returns a run by its ID.
func (r *RunRepository) GetByID(ctx context.Context, id string) (*checkpoint.Run, error) {
	query := `
		SELECT
			id
		  , source
		  , status
		  , dry_run
		  , started_at
		  , completed_at
		  , phases
		  , report
		FROM runs
		WHERE id = $1
	`

	run, err := r.scanRun(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("run %s: %w", id, checkpoint.ErrRunNotFound)
		}

		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	return run, nil
}

// GetAll returns all runs, most recently started first.
func (r *RunRepository) GetAll(ctx context.Context) ([]*checkpoint.Run, error) {
	query := `
		SELECT
			id
		  , source
		  , status
		  , dry_run
		  , started_at
		  , completed_at
		  , phases
		  , report
		FROM runs
		ORDER BY started_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}

	defer func(ctx context.Context, r *RunRepository) {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}(ctx, r)

	runs := make([]*checkpoint.Run, 0)

	for rows.Next() {
		run, err := r.scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		runs = append(runs, run)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// Latest returns the most recently started run for a source.
func (r *RunRepository) Latest(ctx context.Context, source string) (*checkpoint.Run, error) {
	query := `
		SELECT
			id
		  , source
		  , status
		  , dry_run
		  , started_at
		  , completed_at
		  , phases
		  , report
		FROM runs
		WHERE source = $1
		ORDER BY started_at DESC
		LIMIT 1
	`

	run, err := r.scanRun(r.db.QueryRowContext(ctx, query, source))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("source %s: %w", source, checkpoint.ErrRunNotFound)
		}

		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	return run, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *RunRepository) scanRun(row rowScanner) (*checkpoint.Run, error) {
	var (
		run         checkpoint.Run
		completedAt sql.NullTime
		phases      []byte
		report      []byte
	)

	err := row.Scan(
		&run.ID,
		&run.Source,
		&run.Status,
		&run.DryRun,
		&run.StartedAt,
		&completedAt,
		&phases,
		&report,
	)
	if err != nil {
		return nil, err
	}

	if completedAt.Valid {
		t := completedAt.Time.UTC()
		run.CompletedAt = &t
	}

	run.StartedAt = run.StartedAt.UTC()

	if len(phases) > 0 {
		err = json.Unmarshal(phases, &run.Phases)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal phases: %w", err)
		}
	}

	if len(report) > 0 {
		run.Report = json.RawMessage(report)
	}

	normalizePhaseTimes(&run)

	return &run, nil
}

// normalizePhaseTimes forces phase timestamps to UTC after JSON decoding.
func normalizePhaseTimes(run *checkpoint.Run) {
	for i := range run.Phases {
		record := &run.Phases[i]
		if record.StartedAt != nil {
			t := record.StartedAt.UTC()
			record.StartedAt = &t
		}

		if record.CompletedAt != nil {
			t := record.CompletedAt.UTC()
			record.CompletedAt = &t
		}
	}
}
