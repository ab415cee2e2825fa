package advisor

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyfy/migrator/pkg/bpmn"
	"github.com/tallyfy/migrator/pkg/bpmn/rules"
)

func TestNewFromEnvWithoutKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	assert.Nil(t, NewFromEnv(logger))
}

func TestNewFromEnvWithKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	t.Setenv("ADVISOR_MODEL", "claude-haiku-4-5")

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	advisor := NewFromEnv(logger)
	require.NotNil(t, advisor)
	assert.Equal(t, "claude-haiku-4-5", advisor.model)
}

func TestFlagDecisionsPicksLowConfidence(t *testing.T) {
	decisions := []rules.Decision{
		{ElementID: "t1", Confidence: 1.0},
		{ElementID: "t2", Confidence: 0.5},
		{ElementID: "t3", Confidence: 0.9},
		{ElementID: "g1", Confidence: 0.0, Strategy: rules.StrategyUnsupported},
	}

	flagged := flagDecisions(decisions)
	require.Len(t, flagged, 2)
	assert.Equal(t, "t2", flagged[0].ElementID)
	assert.Equal(t, "g1", flagged[1].ElementID)
}

func TestFlagDecisionsHonorsBudget(t *testing.T) {
	var decisions []rules.Decision

	for range maxReviews * 2 {
		decisions = append(decisions, rules.Decision{Confidence: 0.1})
	}

	assert.Len(t, flagDecisions(decisions), maxReviews)
}

func TestDescribeDecision(t *testing.T) {
	described := describeDecision(rules.Decision{
		ElementID:   "g1",
		ElementName: "Claim valid?",
		ElementType: bpmn.TypeExclusiveGateway,
		Strategy:    rules.StrategyPartial,
		Confidence:  0.3,
		Mapping:     rules.TargetMapping{Kind: rules.TargetDecision, Note: "approximate"},
		ManualSteps: []string{"split the gateway"},
		Warnings:    []string{"mapping is approximate"},
	})

	assert.Contains(t, described, "g1")
	assert.Contains(t, described, "Claim valid?")
	assert.Contains(t, described, "exclusiveGateway")
	assert.Contains(t, described, "0.30")
	assert.Contains(t, described, "split the gateway")
}
