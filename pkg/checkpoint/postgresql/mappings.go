package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tallyfy/migrator/pkg/checkpoint"
)

// MappingRepository handles mapping-related database operations.
type MappingRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewMappingRepository creates a new mapping repository.
func NewMappingRepository(db *sql.DB, logger *slog.Logger) *MappingRepository {
	return &MappingRepository{db: db, logger: logger}
}

// Save inserts or updates a mapping keyed on (run_id, kind, source_id).
func (r *MappingRepository) Save(ctx context.Context, mapping *checkpoint.Mapping) error {
	now := time.Now().UTC()
	if mapping.CreatedAt.IsZero() {
		mapping.CreatedAt = now
	}

	mapping.UpdatedAt = now

	query := `
		INSERT INTO mappings (run_id, kind, source_id, target_id, key, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (run_id, kind, source_id) DO UPDATE SET
			target_id = EXCLUDED.target_id,
			key = EXCLUDED.key,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		mapping.RunID,
		mapping.Kind,
		mapping.SourceID,
		mapping.TargetID,
		mapping.Key,
		mapping.Status,
		mapping.CreatedAt,
		mapping.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save mapping %s/%s: %w", mapping.Kind, mapping.SourceID, err)
	}

	return nil
}

// GetFor returns the mapping for (runID, kind, sourceID).
func (r *MappingRepository) GetFor(ctx context.Context, runID, kind, sourceID string) (*checkpoint.Mapping, error) {
	query := `
		SELECT
			run_id
		  , kind
		  , source_id
		  , target_id
		  , key
		  , status
		  , created_at
		  , updated_at
		FROM mappings
		WHERE run_id = $1 AND kind = $2 AND source_id = $3
	`

	mapping, err := r.scanMapping(r.db.QueryRowContext(ctx, query, runID, kind, sourceID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s %s in run %s: %w", kind, sourceID, runID, checkpoint.ErrMappingNotFound)
		}

		return nil, fmt.Errorf("failed to scan mapping: %w", err)
	}

	return mapping, nil
}

// GetByRun returns every mapping recorded for a run.
func (r *MappingRepository) GetByRun(ctx context.Context, runID string) ([]*checkpoint.Mapping, error) {
	query := `
		SELECT
			run_id
		  , kind
		  , source_id
		  , target_id
		  , key
		  , status
		  , created_at
		  , updated_at
		FROM mappings
		WHERE run_id = $1
		ORDER BY created_at, kind, source_id
	`

	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query mappings: %w", err)
	}

	defer func(ctx context.Context, r *MappingRepository) {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}(ctx, r)

	mappings := make([]*checkpoint.Mapping, 0)

	for rows.Next() {
		mapping, err := r.scanMapping(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mapping: %w", err)
		}

		mappings = append(mappings, mapping)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating mappings: %w", err)
	}

	return mappings, nil
}

func (r *MappingRepository) scanMapping(row rowScanner) (*checkpoint.Mapping, error) {
	var mapping checkpoint.Mapping

	err := row.Scan(
		&mapping.RunID,
		&mapping.Kind,
		&mapping.SourceID,
		&mapping.TargetID,
		&mapping.Key,
		&mapping.Status,
		&mapping.CreatedAt,
		&mapping.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	mapping.CreatedAt = mapping.CreatedAt.UTC()
	mapping.UpdatedAt = mapping.UpdatedAt.UTC()

	return &mapping, nil
}
