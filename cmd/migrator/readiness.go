package main

import (
	"context"
	"log/slog"

	cli "github.com/urfave/cli/v3"

	"github.com/tallyfy/migrator/pkg/cmd"
	"github.com/tallyfy/migrator/pkg/config"
	"github.com/tallyfy/migrator/pkg/log"
	"github.com/tallyfy/migrator/pkg/migration"
	"github.com/tallyfy/migrator/pkg/source"
)

func NewReadinessCommand() *cli.Command {
	return &cli.Command{
		Name:  "readiness",
		Usage: "Verify source and target credentials without migrating anything",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:     "source",
				Aliases:  []string{"s"},
				Usage:    "Source platform id (see: migrator sources)",
				Required: true,
				Sources:  cli.EnvVars("MIGRATOR_SOURCE"),
			},
			logLevelFlag(),
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger := log.WithModule("migrator")

			config.LoadEnv(logger)

			cfg, err := config.Load(command.String("config"))
			if err != nil {
				return err
			}

			registry := cmd.NewSourceRegistry(logger, cfg)

			src, err := registry.Create(command.String("source"))
			if err != nil {
				return err
			}

			target, err := newTarget(cfg, nil)
			if err != nil {
				return err
			}

			return checkReadiness(ctx, logger, src, target)
		},
	}
}

// checkReadiness probes both ends through the orchestrator. Readiness never
// touches the checkpoint store or the bus, so neither is wired.
func checkReadiness(ctx context.Context, logger *slog.Logger, src source.Source, target migration.Target) error {
	orch := migration.New(src, target, nil, nil, logger, migration.Options{})

	return orch.Readiness(ctx)
}
