// Package log configures the process-wide structured logger for the migrator.
package log

import (
	"log/slog"
	"os"
)

// Setup installs the default slog logger writing text to stderr at the given
// level. Unknown level names fall back to info.
func Setup(logLevel string) {
	var level slog.Level

	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// WithModule returns a child logger tagged with the originating module.
func WithModule(module string) *slog.Logger {
	return slog.With("module", module)
}

// WithRun returns a child logger carrying the migration run and source vendor,
// so every line of a run can be grepped by either.
func WithRun(logger *slog.Logger, runID, source string) *slog.Logger {
	return logger.With("run_id", runID, "source", source)
}
