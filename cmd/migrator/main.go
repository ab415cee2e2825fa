package main

import (
	"context"
	"log/slog"
	"os"

	cli "github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:                  "migrator",
		Usage:                 "Migrate work-management data into Tallyfy",
		EnableShellCompletion: true,
		Commands: []*cli.Command{
			NewMigrateCommand(),
			NewReadinessCommand(),
			NewReportCommand(),
			NewSourcesCommand(),
			NewBPMNCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to a YAML config file",
		Sources: cli.EnvVars("MIGRATOR_CONFIG"),
	}
}

func logLevelFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "log-level",
		Usage:   "Log level (debug, info, warn, error)",
		Value:   "info",
		Sources: cli.EnvVars("LOG_LEVEL"),
	}
}

func checkpointFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "checkpoint",
		Usage:   "Checkpoint store URL (file://<dir> or postgres://...)",
		Sources: cli.EnvVars("CHECKPOINT_URL"),
	}
}
