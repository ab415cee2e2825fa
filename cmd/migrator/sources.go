package main

import (
	"context"
	"fmt"

	cli "github.com/urfave/cli/v3"

	"github.com/tallyfy/migrator/pkg/cmd"
	"github.com/tallyfy/migrator/pkg/config"
	"github.com/tallyfy/migrator/pkg/log"
)

func NewSourcesCommand() *cli.Command {
	return &cli.Command{
		Name:    "sources",
		Aliases: []string{"ls"},
		Usage:   "List the source platforms this build can migrate from",
		Flags: []cli.Flag{
			configFlag(),
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

			fmt.Println("Available sources:")

			for _, name := range registry.Names() {
				fmt.Printf("  - %s\n", name)
			}

			return nil
		},
	}
}
