package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/tallyfy/migrator/pkg/checkpoint"
	"github.com/tallyfy/migrator/pkg/cmd"
	"github.com/tallyfy/migrator/pkg/config"
	"github.com/tallyfy/migrator/pkg/log"
	"github.com/tallyfy/migrator/pkg/report"
)

func NewReportCommand() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Render the report of a recorded migration run",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "run",
				Usage: "Run id to report on (defaults to the latest run for --source)",
			},
			&cli.StringFlag{
				Name:    "source",
				Aliases: []string{"s"},
				Usage:   "Source platform whose latest run is reported",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format (text or json)",
				Value:   "text",
			},
			checkpointFlag(),
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

			if url := command.String("checkpoint"); url != "" {
				cfg.Checkpoint.URL = url
			}

			runID := command.String("run")
			source := command.String("source")

			if runID == "" && source == "" {
				return fmt.Errorf("either --run or --source is required")
			}

			return printStoredReport(ctx, logger, cfg, runID, source, command.String("format"))
		},
	}
}

// printStoredReport renders the report of a recorded run to stdout. Runs that
// finished before their report was attached are rebuilt from the checkpoint
// record, which carries everything but the per-item failure list.
func printStoredReport(
	ctx context.Context,
	logger *slog.Logger,
	cfg *config.Config,
	runID, source, format string,
) error {
	store, err := cmd.NewCheckpointStore(ctx, logger, cfg.Checkpoint.URL)
	if err != nil {
		return err
	}

	defer func() {
		if err := store.Close(ctx); err != nil {
			logger.Error("Failed to close checkpoint store", "error", err)
		}
	}()

	var run *checkpoint.Run

	if runID != "" {
		run, err = store.RunByID(ctx, runID)
	} else {
		run, err = store.LatestRun(ctx, source)
	}

	if err != nil {
		return fmt.Errorf("failed to load the run: %w", err)
	}

	rep, err := reportForRun(run)
	if err != nil {
		return err
	}

	switch format {
	case "", "text":
		return rep.RenderText(os.Stdout)
	case "json":
		data, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to serialize the report: %w", err)
		}

		fmt.Println(string(data))

		return nil
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

func reportForRun(run *checkpoint.Run) (*report.RunReport, error) {
	if len(run.Report) == 0 {
		return report.FromRun(run), nil
	}

	rep, err := report.ParseJSON(run.Report)
	if err != nil {
		return nil, fmt.Errorf("stored report for run %s is unreadable: %w", run.ID, err)
	}

	return rep, nil
}
