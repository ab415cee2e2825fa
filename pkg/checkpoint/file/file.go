// Package file provides a file-based checkpoint store implementation.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tallyfy/migrator/pkg/checkpoint"
)

// Store implements the checkpoint.Store interface using the file system.
// Each run is stored as runs/<id>.json and its mappings as
// mappings/<id>.json under the root directory.
type Store struct {
	root string
	mu   sync.Mutex
}

// NewStore creates a new file store rooted at the given directory.
func NewStore(root string) *Store {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Store{root: cleanRoot}
}

// Close performs any necessary cleanup. For file-based storage, there is nothing to clean up.
func (s *Store) Close(_ context.Context) error {
	return nil
}

// HealthCheck checks if the store is healthy by verifying the root directory exists.
func (s *Store) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(s.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// SaveRun writes the run to disk, overwriting any previous version.
func (s *Store) SaveRun(_ context.Context, run *checkpoint.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.MkdirAll(path.Join(s.root, "runs"), 0750)
	if err != nil {
		return fmt.Errorf("failed to create runs directory: %w", err)
	}

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run %s: %w", run.ID, err)
	}

	filePath := path.Join(s.root, "runs", run.ID+".json")

	return os.WriteFile(filePath, data, 0600)
}

// RunByID retrieves a run by its ID from the file system.
func (s *Store) RunByID(_ context.Context, id string) (*checkpoint.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.readRun(id)
}

func (s *Store) readRun(id string) (*checkpoint.Run, error) {
	filePath := filepath.Clean(path.Join(s.root, "runs", id+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("run %s: %w", id, checkpoint.ErrRunNotFound)
		}

		return nil, fmt.Errorf("failed to fetch run %s: %w", id, err)
	}

	var run checkpoint.Run

	err = json.Unmarshal(body, &run)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal run %s: %w", id, err)
	}

	return &run, nil
}

// Runs returns every stored run, most recently started first.
func (s *Store) Runs(_ context.Context) ([]*checkpoint.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.readRuns()
}

func (s *Store) readRuns() ([]*checkpoint.Run, error) {
	root := os.DirFS(path.Join(s.root, "runs"))

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list run files: %w", err)
	}

	runs := make([]*checkpoint.Run, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		runID := strings.TrimSuffix(file, ".json")

		run, err := s.readRun(runID)
		if err != nil {
			return nil, fmt.Errorf("failed to load run %s: %w", runID, err)
		}

		runs = append(runs, run)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})

	return runs, nil
}

// LatestRun returns the most recently started run for the given source.
func (s *Store) LatestRun(_ context.Context, source string) (*checkpoint.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runs, err := s.readRuns()
	if err != nil {
		return nil, err
	}

	for _, run := range runs {
		if run.Source == source {
			return run, nil
		}
	}

	return nil, fmt.Errorf("source %s: %w", source, checkpoint.ErrRunNotFound)
}

// SaveMapping inserts or updates the mapping for (RunID, Kind, SourceID).
func (s *Store) SaveMapping(_ context.Context, mapping *checkpoint.Mapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mappings, err := s.readMappings(mapping.RunID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	updated := false

	for i, existing := range mappings {
		if existing.Kind == mapping.Kind && existing.SourceID == mapping.SourceID {
			mapping.CreatedAt = existing.CreatedAt
			mapping.UpdatedAt = now
			mappings[i] = mapping
			updated = true

			break
		}
	}

	if !updated {
		if mapping.CreatedAt.IsZero() {
			mapping.CreatedAt = now
		}

		mapping.UpdatedAt = now
		mappings = append(mappings, mapping)
	}

	return s.writeMappings(mapping.RunID, mappings)
}

// MappingFor retrieves a single mapping by its natural key.
func (s *Store) MappingFor(_ context.Context, runID, kind, sourceID string) (*checkpoint.Mapping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mappings, err := s.readMappings(runID)
	if err != nil {
		return nil, err
	}

	for _, mapping := range mappings {
		if mapping.Kind == kind && mapping.SourceID == sourceID {
			return mapping, nil
		}
	}

	return nil, fmt.Errorf("%s %s in run %s: %w", kind, sourceID, runID, checkpoint.ErrMappingNotFound)
}

// MappingsByRun returns every mapping recorded for the given run.
func (s *Store) MappingsByRun(_ context.Context, runID string) ([]*checkpoint.Mapping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.readMappings(runID)
}

func (s *Store) readMappings(runID string) ([]*checkpoint.Mapping, error) {
	filePath := filepath.Clean(path.Join(s.root, "mappings", runID+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []*checkpoint.Mapping{}, nil
		}

		return nil, fmt.Errorf("failed to fetch mappings for run %s: %w", runID, err)
	}

	var mappings []*checkpoint.Mapping

	err = json.Unmarshal(body, &mappings)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal mappings for run %s: %w", runID, err)
	}

	return mappings, nil
}

func (s *Store) writeMappings(runID string, mappings []*checkpoint.Mapping) error {
	err := os.MkdirAll(path.Join(s.root, "mappings"), 0750)
	if err != nil {
		return fmt.Errorf("failed to create mappings directory: %w", err)
	}

	data, err := json.MarshalIndent(mappings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal mappings for run %s: %w", runID, err)
	}

	filePath := path.Join(s.root, "mappings", runID+".json")

	return os.WriteFile(filePath, data, 0600)
}
