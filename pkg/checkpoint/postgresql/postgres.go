// Package postgresql provides a PostgreSQL checkpoint store implementation.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/tallyfy/migrator/pkg/checkpoint"
	"github.com/tallyfy/migrator/pkg/checkpoint/sqlbase"
)

// Store implements the checkpoint.Store interface backed by PostgreSQL.
type Store struct {
	db       *sql.DB
	logger   *slog.Logger
	runs     *RunRepository
	mappings *MappingRepository
}

// NewStore connects to PostgreSQL, runs schema migrations and returns a
// ready-to-use store.
func NewStore(ctx context.Context, logger *slog.Logger, databaseURL string) (*Store, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	store := &Store{
		db:       database,
		logger:   logger,
		runs:     NewRunRepository(database, logger),
		mappings: NewMappingRepository(database, logger),
	}

	// Run migrations on initialization
	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close(_ context.Context) error {
	if s.db != nil {
		err := s.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (s *Store) HealthCheck(ctx context.Context) error {
	err := s.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// SaveRun saves a run to the database.
func (s *Store) SaveRun(ctx context.Context, run *checkpoint.Run) error {
	return s.runs.Save(ctx, run)
}

// RunByID returns a run by its ID.
func (s *Store) RunByID(ctx context.Context, id string) (*checkpoint.Run, error) {
	return s.runs.GetByID(ctx, id)
}

// Runs returns all runs from the database.
func (s *Store) Runs(ctx context.Context) ([]*checkpoint.Run, error) {
	return s.runs.GetAll(ctx)
}

// LatestRun returns the most recently started run for the given source.
func (s *Store) LatestRun(ctx context.Context, source string) (*checkpoint.Run, error) {
	return s.runs.Latest(ctx, source)
}

// SaveMapping saves a mapping to the database.
func (s *Store) SaveMapping(ctx context.Context, mapping *checkpoint.Mapping) error {
	return s.mappings.Save(ctx, mapping)
}

// MappingFor returns a mapping by its natural key.
func (s *Store) MappingFor(ctx context.Context, runID, kind, sourceID string) (*checkpoint.Mapping, error) {
	return s.mappings.GetFor(ctx, runID, kind, sourceID)
}

// MappingsByRun returns all mappings recorded for a run.
func (s *Store) MappingsByRun(ctx context.Context, runID string) ([]*checkpoint.Mapping, error) {
	return s.mappings.GetByRun(ctx, runID)
}
