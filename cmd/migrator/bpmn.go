package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/tallyfy/migrator/pkg/bpmn/advisor"
	"github.com/tallyfy/migrator/pkg/bpmn/convert"
	"github.com/tallyfy/migrator/pkg/log"
)

func NewBPMNCommand() *cli.Command {
	return &cli.Command{
		Name:  "bpmn",
		Usage: "Convert and analyze BPMN 2.0 process files",
		Commands: []*cli.Command{
			newBPMNConvertCommand(),
			newBPMNAnalyzeCommand(),
		},
	}
}

func newBPMNConvertCommand() *cli.Command {
	return &cli.Command{
		Name:  "convert",
		Usage: "Convert a BPMN file into a Tallyfy template JSON document",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "Path to the BPMN 2.0 XML file",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the template JSON here instead of stdout",
			},
			&cli.BoolFlag{
				Name:  "flow-order",
				Usage: "Order steps by walking sequence flows from the start event",
			},
			&cli.BoolFlag{
				Name:  "assist",
				Usage: "Ask the AI advisor to review low-confidence mappings (needs ANTHROPIC_API_KEY)",
			},
			logLevelFlag(),
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger := log.WithModule("bpmn")

			converter := convert.New(logger, convert.Options{
				FlowOrder: command.Bool("flow-order"),
			})

			result, err := converter.ConvertFile(command.String("file"))
			if err != nil {
				return err
			}

			if command.Bool("assist") {
				reviewDecisions(ctx, logger, result)
			}

			data, err := json.MarshalIndent(result.Template, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to serialize the template: %w", err)
			}

			output := command.String("output")
			if output == "" || output == "-" {
				fmt.Println(string(data))

				return nil
			}

			if err := os.WriteFile(output, append(data, '\n'), 0o600); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}

			logger.Info("Template written",
				"path", output,
				"steps", len(result.Template.Steps),
				"rules", len(result.Template.Rules),
				"warnings", len(result.Template.Warnings))

			return nil
		},
	}
}

func newBPMNAnalyzeCommand() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "Report how each BPMN element would map, without writing a template",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "Path to the BPMN 2.0 XML file",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Output format (text or json)",
				Value: "text",
			},
			&cli.BoolFlag{
				Name:  "assist",
				Usage: "Ask the AI advisor to review low-confidence mappings (needs ANTHROPIC_API_KEY)",
			},
			logLevelFlag(),
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger := log.WithModule("bpmn")

			converter := convert.New(logger, convert.Options{})

			result, err := converter.ConvertFile(command.String("file"))
			if err != nil {
				return err
			}

			if command.Bool("assist") {
				reviewDecisions(ctx, logger, result)
			}

			switch command.String("format") {
			case "", "text":
				printAnalysis(result)

				return nil
			case "json":
				data, err := json.MarshalIndent(map[string]any{
					"decisions": result.Decisions,
					"summary":   result.Summary,
				}, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to serialize the analysis: %w", err)
				}

				fmt.Println(string(data))

				return nil
			default:
				return fmt.Errorf("unknown analysis format %q", command.String("format"))
			}
		},
	}
}

func printAnalysis(result *convert.Result) {
	fmt.Println("Element mappings:")
	fmt.Println("=================")

	for _, decision := range result.Decisions {
		name := decision.ElementName
		if name == "" {
			name = decision.ElementID
		}

		fmt.Printf("\n%s (%s)\n", name, decision.ElementType)
		fmt.Printf("  Strategy:   %s (confidence %.2f)\n", decision.Strategy, decision.Confidence)

		for _, step := range decision.ManualSteps {
			fmt.Printf("  Manual:     %s\n", step)
		}

		for _, warning := range decision.Warnings {
			fmt.Printf("  Warning:    %s\n", warning)
		}
	}

	fmt.Printf("\nSummary: %d elements, %d direct, %d transform, %d partial, %d unsupported, %d manual steps\n",
		result.Summary.Elements,
		result.Summary.Direct,
		result.Summary.Transform,
		result.Summary.Partial,
		result.Summary.Unsupported,
		result.Summary.ManualSteps)
}

// reviewDecisions runs the optional AI review and folds the advice into the
// template warnings, so it lands in the converted output too.
func reviewDecisions(ctx context.Context, logger *slog.Logger, result *convert.Result) {
	reviewer := advisor.NewFromEnv(logger)
	if reviewer == nil {
		logger.Warn("Advisor requested but ANTHROPIC_API_KEY is not set, skipping review")

		return
	}

	suggestions, err := reviewer.Review(ctx, result.Decisions)
	if err != nil {
		logger.Warn("Advisor review failed", "error", err)

		return
	}

	for _, suggestion := range suggestions {
		label := suggestion.ElementName
		if label == "" {
			label = suggestion.ElementID
		}

		logger.Info("Advisor suggestion", "element", label, "advice", suggestion.Advice)

		result.Template.Warnings = append(result.Template.Warnings,
			fmt.Sprintf("advisor on %s: %s", label, suggestion.Advice))
	}
}
