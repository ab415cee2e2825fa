// Package advisor asks a language model to double-check low-confidence
// conversion decisions. It talks to any OpenAI-compatible chat endpoint and
// defaults to Anthropic's. The advisor is strictly optional: without an API
// key the conversion runs exactly the same, just without suggestions.
package advisor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/tallyfy/migrator/pkg/bpmn/rules"
)

const (
	defaultBaseURL = "https://api.anthropic.com/v1/"
	defaultModel   = "claude-sonnet-4-5"

	// confidenceThreshold marks the decisions worth a second opinion.
	confidenceThreshold = 0.7

	// maxReviews bounds the number of API calls per conversion.
	maxReviews = 10
)

const systemPrompt = `You are reviewing how elements of a BPMN diagram were mapped ` +
	`into a Tallyfy checklist template. For the element you are given, say in 2-3 ` +
	`sentences whether the mapping is reasonable and what the operator should adjust ` +
	`by hand. Be concrete and terse; no preamble.`

// Suggestion is the model's advice for one element.
type Suggestion struct {
	ElementID   string `json:"element_id"`
	ElementName string `json:"element_name,omitempty"`
	Advice      string `json:"advice"`
}

// Advisor reviews conversion decisions through a chat completion API.
type Advisor struct {
	client openai.Client
	model  string
	logger *slog.Logger
}

// New creates an Advisor against the given endpoint.
func New(apiKey, baseURL, model string, logger *slog.Logger) *Advisor {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	if model == "" {
		model = defaultModel
	}

	return &Advisor{
		client: openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithBaseURL(baseURL),
		),
		model:  model,
		logger: logger,
	}
}

// NewFromEnv builds an Advisor from ANTHROPIC_API_KEY, ADVISOR_BASE_URL and
// ADVISOR_MODEL. It returns nil when no key is set.
func NewFromEnv(logger *slog.Logger) *Advisor {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return nil
	}

	return New(apiKey, os.Getenv("ADVISOR_BASE_URL"), os.Getenv("ADVISOR_MODEL"), logger)
}

// Review asks for advice on every decision under the confidence threshold,
// up to the per-conversion budget. A failed call skips that element rather
// than failing the whole review.
func (a *Advisor) Review(ctx context.Context, decisions []rules.Decision) ([]Suggestion, error) {
	flagged := flagDecisions(decisions)
	if len(flagged) == 0 {
		return nil, nil
	}

	suggestions := make([]Suggestion, 0, len(flagged))

	for _, decision := range flagged {
		advice, err := a.ask(ctx, decision)
		if err != nil {
			if ctx.Err() != nil {
				return suggestions, ctx.Err()
			}

			a.logger.WarnContext(ctx, "Advisor call failed",
				"element", decision.ElementID, "error", err)

			continue
		}

		suggestions = append(suggestions, Suggestion{
			ElementID:   decision.ElementID,
			ElementName: decision.ElementName,
			Advice:      advice,
		})
	}

	return suggestions, nil
}

func (a *Advisor) ask(ctx context.Context, decision rules.Decision) (string, error) {
	resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: a.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(describeDecision(decision)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// flagDecisions picks the decisions worth reviewing: anything below the
// confidence threshold, in document order, capped at the review budget.
func flagDecisions(decisions []rules.Decision) []rules.Decision {
	var flagged []rules.Decision

	for _, d := range decisions {
		if d.Confidence < confidenceThreshold {
			flagged = append(flagged, d)
		}

		if len(flagged) == maxReviews {
			break
		}
	}

	return flagged
}

func describeDecision(d rules.Decision) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Element: %s (type %s", d.ElementID, d.ElementType)

	if d.ElementName != "" {
		fmt.Fprintf(&sb, ", named %q", d.ElementName)
	}

	sb.WriteString(")\n")
	fmt.Fprintf(&sb, "Mapped as: %s (strategy %s, confidence %.2f)\n",
		d.Mapping.Kind, d.Strategy, d.Confidence)

	if d.Mapping.Note != "" {
		fmt.Fprintf(&sb, "Mapping note: %s\n", d.Mapping.Note)
	}

	if len(d.ManualSteps) > 0 {
		fmt.Fprintf(&sb, "Manual follow-ups already listed: %s\n", strings.Join(d.ManualSteps, "; "))
	}

	if len(d.Warnings) > 0 {
		fmt.Fprintf(&sb, "Warnings: %s\n", strings.Join(d.Warnings, "; "))
	}

	return sb.String()
}
