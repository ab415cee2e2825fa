package migration

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Schedule runs a migration pass on a cron expression until the context is
// canceled. Each tick is a delta pass: mappings recorded by earlier passes
// keep creation idempotent, so only data that appeared in the source since
// the last tick is migrated. A tick that fires while the previous one is
// still running is skipped.
func Schedule(ctx context.Context, spec string, logger *slog.Logger, pass func(context.Context) error) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}

	scheduler := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	_, err := scheduler.AddFunc(spec, func() {
		logger.Info("Scheduled migration pass starting", "schedule", spec)

		if err := pass(ctx); err != nil {
			logger.Error("Scheduled migration pass failed", "error", err)

			return
		}

		logger.Info("Scheduled migration pass finished", "schedule", spec)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule migration: %w", err)
	}

	scheduler.Start()
	logger.Info("Migration scheduled", "schedule", spec)

	<-ctx.Done()

	stopCtx := scheduler.Stop()
	<-stopCtx.Done()

	return nil
}
