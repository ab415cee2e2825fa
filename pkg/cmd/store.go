package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tallyfy/migrator/pkg/checkpoint"
	"github.com/tallyfy/migrator/pkg/checkpoint/file"
	"github.com/tallyfy/migrator/pkg/checkpoint/postgresql"
)

// NewCheckpointStore creates a checkpoint store from a URL. postgres:// and
// postgresql:// connect to PostgreSQL; anything else is treated as a file
// store root.
func NewCheckpointStore(ctx context.Context, logger *slog.Logger, url string) (checkpoint.Store, error) {
	switch {
	case strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://"):
		store, err := postgresql.NewStore(ctx, logger, url)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL checkpoint store: %w", err)
		}

		return store, nil
	default:
		return file.NewStore(url), nil
	}
}
