// Package rules classifies BPMN elements into migration decisions. The
// tables are static configuration: one rule per element type, with composite
// keys for gateways (type plus direction) and events (type plus definition).
// Typed keys make a missing combination a visible gap in this file instead
// of a silent runtime default.
package rules

import (
	"github.com/tallyfy/migrator/pkg/bpmn"
	"github.com/tallyfy/migrator/pkg/model"
)

// Strategy describes how faithfully an element maps onto the target schema.
type Strategy string

const (
	StrategyDirect      Strategy = "direct"
	StrategyTransform   Strategy = "transform"
	StrategyPartial     Strategy = "partial"
	StrategyUnsupported Strategy = "unsupported"
)

// Direction is the inferred flow role of a gateway.
type Direction string

const (
	DirectionDiverging   Direction = "diverging"
	DirectionConverging  Direction = "converging"
	DirectionMixed       Direction = "mixed"
	DirectionUnspecified Direction = "unspecified"
)

// TargetKind names the construct an element becomes in the output template.
type TargetKind string

const (
	TargetStep             TargetKind = "step"
	TargetDecision         TargetKind = "decision"
	TargetParallelBranches TargetKind = "parallel_branches"
	TargetMerge            TargetKind = "merge"
	TargetKickoff          TargetKind = "kickoff"
	TargetCompletion       TargetKind = "completion"
	TargetDeadline         TargetKind = "deadline"
	TargetNone             TargetKind = "none"
)

// TargetMapping carries the construct plus the step type when the element
// becomes a step.
type TargetMapping struct {
	Kind     TargetKind
	StepType model.StepType
	Note     string
}

// Rule is one immutable row of the mapping table.
type Rule struct {
	Strategy    Strategy
	Confidence  float64
	Mapping     TargetMapping
	ManualSteps []string
	Warnings    []string
}

// GatewayKey addresses a gateway rule by type and inferred direction.
// DirectionUnspecified rows are the fallback when the directed row is
// missing.
type GatewayKey struct {
	Type      bpmn.ElementType
	Direction Direction
}

// EventKey addresses an event rule by type and definition. DefinitionNone
// doubles as the row for events without a trigger.
type EventKey struct {
	Type       bpmn.ElementType
	Definition bpmn.EventDefinition
}

// unsupportedRule is the terminal default for anything the tables do not
// cover.
var unsupportedRule = Rule{
	Strategy:   StrategyUnsupported,
	Confidence: 0,
	Mapping:    TargetMapping{Kind: TargetNone, Note: "no mapping for this element"},
	ManualSteps: []string{
		"Review the element in the source diagram and model it manually",
	},
}

var taskRules = map[bpmn.ElementType]Rule{
	bpmn.TypeTask: {
		Strategy:   StrategyDirect,
		Confidence: 0.9,
		Mapping:    TargetMapping{Kind: TargetStep, StepType: model.StepTask},
	},
	bpmn.TypeUserTask: {
		Strategy:   StrategyDirect,
		Confidence: 1.0,
		Mapping:    TargetMapping{Kind: TargetStep, StepType: model.StepTask},
	},
	bpmn.TypeManualTask: {
		Strategy:   StrategyDirect,
		Confidence: 0.95,
		Mapping:    TargetMapping{Kind: TargetStep, StepType: model.StepTask},
	},
	bpmn.TypeSendTask: {
		Strategy:   StrategyTransform,
		Confidence: 0.8,
		Mapping:    TargetMapping{Kind: TargetStep, StepType: model.StepEmail, Note: "send task becomes an email step"},
		ManualSteps: []string{
			"Fill in the email body and recipients on the generated step",
		},
	},
	bpmn.TypeServiceTask: {
		Strategy:   StrategyTransform,
		Confidence: 0.7,
		Mapping:    TargetMapping{Kind: TargetStep, StepType: model.StepTask, Note: "automated work becomes a task with a webhook"},
		ManualSteps: []string{
			"Point the step webhook at the service this task invoked",
		},
		Warnings: []string{
			"Service task automation is not carried over; the step fires a webhook instead",
		},
	},
	bpmn.TypeScriptTask: {
		Strategy:   StrategyPartial,
		Confidence: 0.5,
		Mapping:    TargetMapping{Kind: TargetStep, StepType: model.StepTask, Note: "script body is preserved as step guidance"},
		ManualSteps: []string{
			"Reimplement the script logic outside the workflow or via a webhook",
		},
		Warnings: []string{
			"Script task logic does not execute in the target",
		},
	},
	bpmn.TypeReceiveTask: {
		Strategy:   StrategyPartial,
		Confidence: 0.6,
		Mapping:    TargetMapping{Kind: TargetStep, StepType: model.StepTask, Note: "wait-for-message becomes a checklist task"},
		ManualSteps: []string{
			"Decide who confirms the awaited message arrived",
		},
	},
	bpmn.TypeBusinessRuleTask: {
		Strategy:   StrategyPartial,
		Confidence: 0.5,
		Mapping:    TargetMapping{Kind: TargetStep, StepType: model.StepApprove, Note: "rule evaluation becomes an approval"},
		ManualSteps: []string{
			"Encode the decision table as step guidance or kickoff rules",
		},
		Warnings: []string{
			"Business rule tables are not evaluated automatically",
		},
	},
	bpmn.TypeCallActivity: {
		Strategy:   StrategyPartial,
		Confidence: 0.4,
		Mapping:    TargetMapping{Kind: TargetStep, StepType: model.StepTask, Note: "called process is referenced, not expanded"},
		ManualSteps: []string{
			"Migrate the called process separately and link it from the step",
		},
		Warnings: []string{
			"Called process is not inlined",
		},
	},
	bpmn.TypeSubProcess: {
		Strategy:   StrategyPartial,
		Confidence: 0.5,
		Mapping:    TargetMapping{Kind: TargetStep, StepType: model.StepTask, Note: "sub-process collapses to a single step"},
		ManualSteps: []string{
			"Flatten the sub-process contents into explicit steps",
		},
		Warnings: []string{
			"Sub-process interior was collapsed into one step",
		},
	},
}

var gatewayRules = map[GatewayKey]Rule{
	{bpmn.TypeExclusiveGateway, DirectionDiverging}: {
		Strategy:   StrategyTransform,
		Confidence: 0.85,
		Mapping:    TargetMapping{Kind: TargetDecision, Note: "becomes a decision field with show rules per branch"},
	},
	{bpmn.TypeExclusiveGateway, DirectionConverging}: {
		Strategy:   StrategyDirect,
		Confidence: 0.9,
		Mapping:    TargetMapping{Kind: TargetMerge, Note: "branches rejoin; no artifact needed"},
	},
	{bpmn.TypeExclusiveGateway, DirectionMixed}: {
		Strategy:   StrategyPartial,
		Confidence: 0.3,
		Mapping:    TargetMapping{Kind: TargetDecision, Note: "mixed gateway approximated as a decision"},
		ManualSteps: []string{
			"Split the gateway into separate converge and diverge points",
		},
		Warnings: []string{
			"Gateway has multiple incoming and outgoing flows; mapping is approximate",
		},
	},
	{bpmn.TypeExclusiveGateway, DirectionUnspecified}: {
		Strategy:   StrategyTransform,
		Confidence: 0.6,
		Mapping:    TargetMapping{Kind: TargetDecision},
	},
	{bpmn.TypeParallelGateway, DirectionDiverging}: {
		Strategy:   StrategyPartial,
		Confidence: 0.6,
		Mapping:    TargetMapping{Kind: TargetParallelBranches, Note: "branches become sequential placeholder steps"},
		ManualSteps: []string{
			"Reorder the generated branch steps if true parallel work is needed",
		},
		Warnings: []string{
			"Parallel execution becomes sequential steps in the target",
		},
	},
	{bpmn.TypeParallelGateway, DirectionConverging}: {
		Strategy:   StrategyDirect,
		Confidence: 0.85,
		Mapping:    TargetMapping{Kind: TargetMerge, Note: "synchronization point; steps simply continue"},
	},
	{bpmn.TypeParallelGateway, DirectionMixed}: {
		Strategy:   StrategyPartial,
		Confidence: 0.3,
		Mapping:    TargetMapping{Kind: TargetMerge},
		Warnings: []string{
			"Gateway has multiple incoming and outgoing flows; mapping is approximate",
		},
	},
	{bpmn.TypeParallelGateway, DirectionUnspecified}: {
		Strategy:   StrategyPartial,
		Confidence: 0.5,
		Mapping:    TargetMapping{Kind: TargetParallelBranches},
	},
	{bpmn.TypeInclusiveGateway, DirectionDiverging}: {
		Strategy:   StrategyPartial,
		Confidence: 0.5,
		Mapping:    TargetMapping{Kind: TargetDecision, Note: "multi-choice becomes a multi-select decision"},
		ManualSteps: []string{
			"Verify the generated multi-select rules cover every branch combination",
		},
	},
	{bpmn.TypeInclusiveGateway, DirectionConverging}: {
		Strategy:   StrategyPartial,
		Confidence: 0.4,
		Mapping:    TargetMapping{Kind: TargetMerge},
		Warnings: []string{
			"Inclusive join semantics are not enforced in the target",
		},
	},
	{bpmn.TypeInclusiveGateway, DirectionMixed}: {
		Strategy:   StrategyPartial,
		Confidence: 0.25,
		Mapping:    TargetMapping{Kind: TargetDecision},
		Warnings: []string{
			"Gateway has multiple incoming and outgoing flows; mapping is approximate",
		},
	},
	{bpmn.TypeInclusiveGateway, DirectionUnspecified}: {
		Strategy:   StrategyPartial,
		Confidence: 0.4,
		Mapping:    TargetMapping{Kind: TargetDecision},
	},
	{bpmn.TypeEventBasedGateway, DirectionDiverging}: {
		Strategy:   StrategyPartial,
		Confidence: 0.4,
		Mapping:    TargetMapping{Kind: TargetDecision, Note: "event race approximated as an operator decision"},
		ManualSteps: []string{
			"Document which external event selects each branch",
		},
	},
	{bpmn.TypeEventBasedGateway, DirectionUnspecified}: {
		Strategy:   StrategyPartial,
		Confidence: 0.35,
		Mapping:    TargetMapping{Kind: TargetDecision},
	},
	{bpmn.TypeComplexGateway, DirectionUnspecified}: {
		Strategy:   StrategyUnsupported,
		Confidence: 0.1,
		Mapping:    TargetMapping{Kind: TargetNone},
		ManualSteps: []string{
			"Model the complex gateway condition manually",
		},
		Warnings: []string{
			"Complex gateways have no target equivalent",
		},
	},
}

var eventRules = map[EventKey]Rule{
	{bpmn.TypeStartEvent, bpmn.DefinitionNone}: {
		Strategy:   StrategyDirect,
		Confidence: 1.0,
		Mapping:    TargetMapping{Kind: TargetKickoff, Note: "process start becomes the kickoff form"},
	},
	{bpmn.TypeStartEvent, bpmn.DefinitionMessage}: {
		Strategy:   StrategyTransform,
		Confidence: 0.75,
		Mapping:    TargetMapping{Kind: TargetKickoff, Note: "message start approximated by a launch trigger"},
		ManualSteps: []string{
			"Wire the sending system to launch the process via the API",
		},
	},
	{bpmn.TypeStartEvent, bpmn.DefinitionTimer}: {
		Strategy:   StrategyTransform,
		Confidence: 0.7,
		Mapping:    TargetMapping{Kind: TargetKickoff, Note: "timer start approximated by a scheduled launch"},
		ManualSteps: []string{
			"Configure a scheduled launch matching the timer expression",
		},
	},
	{bpmn.TypeStartEvent, bpmn.DefinitionSignal}: {
		Strategy:   StrategyPartial,
		Confidence: 0.4,
		Mapping:    TargetMapping{Kind: TargetKickoff},
		Warnings: []string{
			"Signal subscription is not carried over",
		},
	},
	{bpmn.TypeStartEvent, bpmn.DefinitionConditional}: {
		Strategy:   StrategyPartial,
		Confidence: 0.35,
		Mapping:    TargetMapping{Kind: TargetKickoff},
		Warnings: []string{
			"Condition monitoring is not carried over",
		},
	},
	{bpmn.TypeEndEvent, bpmn.DefinitionNone}: {
		Strategy:   StrategyDirect,
		Confidence: 1.0,
		Mapping:    TargetMapping{Kind: TargetCompletion, Note: "process completion; no artifact needed"},
	},
	{bpmn.TypeEndEvent, bpmn.DefinitionMessage}: {
		Strategy:   StrategyTransform,
		Confidence: 0.7,
		Mapping:    TargetMapping{Kind: TargetStep, StepType: model.StepEmail, Note: "closing notification becomes a final email step"},
		ManualSteps: []string{
			"Fill in the notification recipients on the final email step",
		},
	},
	{bpmn.TypeEndEvent, bpmn.DefinitionError}: {
		Strategy:   StrategyPartial,
		Confidence: 0.45,
		Mapping:    TargetMapping{Kind: TargetCompletion},
		Warnings: []string{
			"Error end semantics are not represented; the run simply completes",
		},
	},
	{bpmn.TypeEndEvent, bpmn.DefinitionTerminate}: {
		Strategy:   StrategyTransform,
		Confidence: 0.65,
		Mapping:    TargetMapping{Kind: TargetCompletion, Note: "terminate approximated by archiving the run"},
	},
	{bpmn.TypeEndEvent, bpmn.DefinitionEscalation}: {
		Strategy:   StrategyPartial,
		Confidence: 0.4,
		Mapping:    TargetMapping{Kind: TargetCompletion},
		Warnings: []string{
			"Escalation is not propagated on completion",
		},
	},
	{bpmn.TypeIntermediateCatchEvent, bpmn.DefinitionTimer}: {
		Strategy:   StrategyTransform,
		Confidence: 0.75,
		Mapping:    TargetMapping{Kind: TargetStep, StepType: model.StepExpiring, Note: "wait becomes an expiring step with a deadline"},
	},
	{bpmn.TypeIntermediateCatchEvent, bpmn.DefinitionMessage}: {
		Strategy:   StrategyPartial,
		Confidence: 0.55,
		Mapping:    TargetMapping{Kind: TargetStep, StepType: model.StepTask, Note: "wait-for-message becomes a confirmation task"},
		ManualSteps: []string{
			"Decide who confirms the awaited message arrived",
		},
	},
	{bpmn.TypeIntermediateCatchEvent, bpmn.DefinitionSignal}: {
		Strategy:   StrategyPartial,
		Confidence: 0.4,
		Mapping:    TargetMapping{Kind: TargetStep, StepType: model.StepTask},
		Warnings: []string{
			"Signal wait becomes a manual confirmation task",
		},
	},
	{bpmn.TypeIntermediateCatchEvent, bpmn.DefinitionLink}: {
		Strategy:   StrategyPartial,
		Confidence: 0.35,
		Mapping:    TargetMapping{Kind: TargetNone, Note: "link target; flow continues at the paired throw"},
		Warnings: []string{
			"Link events are dropped; verify step order across the link",
		},
	},
	{bpmn.TypeIntermediateThrowEvent, bpmn.DefinitionNone}: {
		Strategy:   StrategyDirect,
		Confidence: 0.8,
		Mapping:    TargetMapping{Kind: TargetStep, StepType: model.StepTask, Note: "milestone becomes a checklist task"},
	},
	{bpmn.TypeIntermediateThrowEvent, bpmn.DefinitionMessage}: {
		Strategy:   StrategyTransform,
		Confidence: 0.7,
		Mapping:    TargetMapping{Kind: TargetStep, StepType: model.StepEmail, Note: "message throw becomes an email step"},
		ManualSteps: []string{
			"Fill in the email body and recipients on the generated step",
		},
	},
	{bpmn.TypeIntermediateThrowEvent, bpmn.DefinitionSignal}: {
		Strategy:   StrategyPartial,
		Confidence: 0.4,
		Mapping:    TargetMapping{Kind: TargetStep, StepType: model.StepTask},
		Warnings: []string{
			"Signal broadcast is not carried over",
		},
	},
	{bpmn.TypeIntermediateThrowEvent, bpmn.DefinitionEscalation}: {
		Strategy:   StrategyPartial,
		Confidence: 0.4,
		Mapping:    TargetMapping{Kind: TargetStep, StepType: model.StepTask},
		ManualSteps: []string{
			"Decide who handles the escalation and assign the step to them",
		},
	},
	{bpmn.TypeIntermediateThrowEvent, bpmn.DefinitionLink}: {
		Strategy:   StrategyPartial,
		Confidence: 0.35,
		Mapping:    TargetMapping{Kind: TargetNone, Note: "link source; flow continues at the paired catch"},
		Warnings: []string{
			"Link events are dropped; verify step order across the link",
		},
	},
	{bpmn.TypeIntermediateThrowEvent, bpmn.DefinitionCompensate}: {
		Strategy:   StrategyUnsupported,
		Confidence: 0.1,
		Mapping:    TargetMapping{Kind: TargetNone},
		Warnings: []string{
			"Compensation has no target equivalent",
		},
	},
	{bpmn.TypeBoundaryEvent, bpmn.DefinitionTimer}: {
		Strategy:   StrategyTransform,
		Confidence: 0.7,
		Mapping:    TargetMapping{Kind: TargetDeadline, Note: "timer boundary becomes a deadline on the host step"},
	},
	{bpmn.TypeBoundaryEvent, bpmn.DefinitionMessage}: {
		Strategy:   StrategyPartial,
		Confidence: 0.4,
		Mapping:    TargetMapping{Kind: TargetNone},
		Warnings: []string{
			"Message interruption on the host step is not represented",
		},
	},
	{bpmn.TypeBoundaryEvent, bpmn.DefinitionError}: {
		Strategy:   StrategyPartial,
		Confidence: 0.35,
		Mapping:    TargetMapping{Kind: TargetNone},
		ManualSteps: []string{
			"Add a recovery step covering the error path of the host step",
		},
		Warnings: []string{
			"Error handling on the host step is not represented",
		},
	},
	{bpmn.TypeBoundaryEvent, bpmn.DefinitionEscalation}: {
		Strategy:   StrategyPartial,
		Confidence: 0.3,
		Mapping:    TargetMapping{Kind: TargetNone},
		Warnings: []string{
			"Escalation on the host step is not represented",
		},
	},
}

// eventDefaults are the bare-type fallback rows used when no (type,
// definition) row exists.
var eventDefaults = map[bpmn.ElementType]Rule{
	bpmn.TypeStartEvent: {
		Strategy:   StrategyDirect,
		Confidence: 0.9,
		Mapping:    TargetMapping{Kind: TargetKickoff},
	},
	bpmn.TypeEndEvent: {
		Strategy:   StrategyDirect,
		Confidence: 0.9,
		Mapping:    TargetMapping{Kind: TargetCompletion},
	},
	bpmn.TypeIntermediateCatchEvent: {
		Strategy:   StrategyPartial,
		Confidence: 0.5,
		Mapping:    TargetMapping{Kind: TargetStep, StepType: model.StepTask},
	},
	bpmn.TypeIntermediateThrowEvent: {
		Strategy:   StrategyPartial,
		Confidence: 0.5,
		Mapping:    TargetMapping{Kind: TargetStep, StepType: model.StepTask},
	},
	bpmn.TypeBoundaryEvent: {
		Strategy:   StrategyPartial,
		Confidence: 0.4,
		Mapping:    TargetMapping{Kind: TargetNone},
		Warnings: []string{
			"Boundary behavior on the host step is not represented",
		},
	},
}
