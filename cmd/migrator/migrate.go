package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	cli "github.com/urfave/cli/v3"

	"github.com/tallyfy/migrator/pkg/cache"
	"github.com/tallyfy/migrator/pkg/checkpoint"
	"github.com/tallyfy/migrator/pkg/cmd"
	"github.com/tallyfy/migrator/pkg/config"
	"github.com/tallyfy/migrator/pkg/log"
	"github.com/tallyfy/migrator/pkg/migration"
	"github.com/tallyfy/migrator/pkg/otelhelper"
	"github.com/tallyfy/migrator/pkg/report"
	"github.com/tallyfy/migrator/pkg/tallyfy"
)

func NewMigrateCommand() *cli.Command {
	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Run a migration from a source platform into Tallyfy",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:     "source",
				Aliases:  []string{"s"},
				Usage:    "Source platform id (see: migrator sources)",
				Required: true,
				Sources:  cli.EnvVars("MIGRATOR_SOURCE"),
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Extract and transform without writing to Tallyfy",
			},
			&cli.BoolFlag{
				Name:  "resume",
				Usage: "Continue the latest unfinished run for the source",
			},
			&cli.BoolFlag{
				Name:  "delta",
				Usage: "Reuse the latest run and migrate only items without a done mapping",
			},
			&cli.BoolFlag{
				Name:  "continue-on-error",
				Usage: "Move on to the next phase when one fails",
			},
			&cli.StringSliceFlag{
				Name:  "phases",
				Usage: "Run only these phases (discovery, users, groups, templates, instances, validation)",
			},
			&cli.BoolFlag{
				Name:  "report-only",
				Usage: "Render the latest run's report and exit without migrating",
			},
			&cli.BoolFlag{
				Name:  "readiness-check",
				Usage: "Verify source and target access, then exit",
			},
			checkpointFlag(),
			&cli.StringFlag{
				Name:  "report-dir",
				Usage: "Directory the JSON report is written to",
				Value: ".",
			},
			&cli.StringFlag{
				Name:    "schedule",
				Usage:   "Cron expression for repeated delta passes (keeps running until interrupted)",
				Sources: cli.EnvVars("MIGRATOR_SCHEDULE"),
			},
			logLevelFlag(),
		},
		Action: runMigrate,
	}
}

func runMigrate(ctx context.Context, command *cli.Command) error {
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

	name := command.String("source")

	if command.Bool("report-only") {
		return printStoredReport(ctx, logger, cfg, "", name, "text")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if otelhelper.Enabled() {
		tracerProvider, err := otelhelper.InitTracer(ctx, "migrator")
		if err != nil {
			return fmt.Errorf("failed to initialize tracer: %w", err)
		}

		defer func() {
			if err := tracerProvider.Shutdown(context.WithoutCancel(ctx)); err != nil {
				logger.Error("Failed to shutdown tracer provider", "error", err)
			}
		}()
	}

	registry := cmd.NewSourceRegistry(logger, cfg)

	src, err := registry.Create(name)
	if err != nil {
		return err
	}

	lookupCache, err := cache.New(cfg.Cache.URL, cfg.Cache.MaxEntries,
		time.Duration(cfg.Cache.TTLSeconds)*time.Second)
	if err != nil {
		return fmt.Errorf("failed to build the lookup cache: %w", err)
	}

	defer func() {
		if err := lookupCache.Close(); err != nil {
			logger.Error("Failed to close the lookup cache", "error", err)
		}
	}()

	target, err := newTarget(cfg, lookupCache)
	if err != nil {
		return err
	}

	if command.Bool("readiness-check") {
		return checkReadiness(ctx, logger, src, target)
	}

	phases, err := parsePhases(command.StringSlice("phases"))
	if err != nil {
		return err
	}

	store, err := cmd.NewCheckpointStore(ctx, logger, cfg.Checkpoint.URL)
	if err != nil {
		return err
	}

	defer func() {
		if err := store.Close(ctx); err != nil {
			logger.Error("Failed to close checkpoint store", "error", err)
		}
	}()

	bus, err := cmd.NewEventBus("migrator", cfg.Events.BrokerList(), logger)
	if err != nil {
		return err
	}

	defer func() {
		if err := bus.Close(); err != nil {
			logger.Error("Failed to close event bus", "error", err)
		}
	}()

	builder := report.NewBuilder()
	if err := builder.RegisterHandlers(bus); err != nil {
		return fmt.Errorf("failed to register report handlers: %w", err)
	}

	progress := report.NewProgressLogger(log.WithModule("progress"))
	if err := progress.RegisterHandlers(bus); err != nil {
		return fmt.Errorf("failed to register progress handlers: %w", err)
	}

	if err := bus.Subscribe(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to migration events: %w", err)
	}

	opts := migration.Options{
		DryRun:          command.Bool("dry-run"),
		Resume:          command.Bool("resume"),
		Delta:           command.Bool("delta"),
		ContinueOnError: command.Bool("continue-on-error"),
		Phases:          phases,
	}

	schedule := command.String("schedule")
	if schedule != "" {
		// Every scheduled tick is a delta pass over the same source.
		opts.Delta = true
	}

	reportDir := command.String("report-dir")

	pass := func(ctx context.Context) error {
		orch := migration.New(src, target, store, bus, logger, opts)

		result, runErr := orch.Run(ctx)

		if result != nil && result.Run != nil {
			if err := finishRun(ctx, logger, store, builder, result, reportDir); err != nil {
				logger.Error("Failed to write the run report", "error", err)
			}
		}

		if runErr != nil {
			return runErr
		}

		if result.Failed > 0 {
			return fmt.Errorf("migration finished with %d failed items", result.Failed)
		}

		return nil
	}

	if schedule != "" {
		return migration.Schedule(ctx, schedule, logger, pass)
	}

	return pass(ctx)
}

// newTarget builds the Tallyfy client for the configured organization. The
// constructor rejects missing credentials, so report-only and BPMN commands
// never get here without a token.
func newTarget(cfg *config.Config, lookupCache cache.Cache) (*tallyfy.Client, error) {
	return tallyfy.New(tallyfy.Config{
		BaseURL:           cfg.Tallyfy.BaseURL,
		APIToken:          cfg.Tallyfy.APIToken,
		OrgID:             cfg.Tallyfy.OrgID,
		RateLimitRequests: cfg.Tallyfy.RateLimitRequests,
		RateLimitWindow:   time.Duration(cfg.Tallyfy.RateLimitWindowSeconds) * time.Second,
		Cache:             lookupCache,
	}, log.WithModule("tallyfy"))
}

// finishRun attaches the finished report to the persisted run, writes the
// JSON file and prints the text summary. Uses a context that survives
// cancellation so an interrupted run still leaves its report behind.
func finishRun(
	ctx context.Context,
	logger *slog.Logger,
	store checkpoint.Store,
	builder *report.Builder,
	result *migration.Result,
	dir string,
) error {
	rep := report.FromResult(result, builder)

	data, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("failed to serialize the report: %w", err)
	}

	run := result.Run
	run.Report = data

	saveCtx := context.WithoutCancel(ctx)

	if err := store.SaveRun(saveCtx, run); err != nil {
		return fmt.Errorf("failed to attach the report to run %s: %w", run.ID, err)
	}

	path, err := rep.WriteJSON(dir)
	if err != nil {
		return err
	}

	logger.Info("Report written", "run_id", run.ID, "path", path)

	return rep.RenderText(os.Stdout)
}

func parsePhases(names []string) ([]checkpoint.Phase, error) {
	if len(names) == 0 {
		return nil, nil
	}

	valid := checkpoint.Phases()
	phases := make([]checkpoint.Phase, 0, len(names))

	for _, name := range names {
		phase := checkpoint.Phase(strings.ToLower(strings.TrimSpace(name)))

		if !slices.Contains(valid, phase) {
			return nil, fmt.Errorf("unknown phase %q", name)
		}

		phases = append(phases, phase)
	}

	return phases, nil
}
