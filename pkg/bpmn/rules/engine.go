package rules

import (
	"github.com/tallyfy/migrator/pkg/bpmn"
)

// Decision is the outcome of classifying one element. It copies the matched
// rule so later table edits cannot change a recorded decision.
type Decision struct {
	ElementID   string
	ElementName string
	ElementType bpmn.ElementType
	Direction   Direction // gateways only, DirectionUnspecified otherwise

	Strategy    Strategy
	Confidence  float64
	Mapping     TargetMapping
	ManualSteps []string
	Warnings    []string
}

// Supported reports whether the element maps onto the target at all.
func (d Decision) Supported() bool {
	return d.Strategy != StrategyUnsupported
}

// Engine classifies elements against the static rule tables.
type Engine struct{}

// NewEngine returns a classifier over the built-in tables.
func NewEngine() *Engine {
	return &Engine{}
}

// InferDirection derives a gateway's flow role from its edge counts. A
// gateway with several incoming and several outgoing flows lands in the
// mixed bucket, which the tables map with very low confidence.
func InferDirection(el bpmn.Element) Direction {
	in, out := len(el.Incoming), len(el.Outgoing)

	switch {
	case in == 1 && out > 1:
		return DirectionDiverging
	case in > 1 && out == 1:
		return DirectionConverging
	default:
		return DirectionMixed
	}
}

// Classify resolves the rule for one element. Lookup order: the task table
// by exact type; for gateways the (type, inferred direction) row falling
// back to the bare type; for events the (type, definition) row falling back
// to the bare type; and finally the unsupported default with confidence 0.
func (e *Engine) Classify(el bpmn.Element) Decision {
	decision := Decision{
		ElementID:   el.ID,
		ElementName: el.Name,
		ElementType: el.Type,
		Direction:   DirectionUnspecified,
	}

	rule, direction := e.lookup(el)
	decision.Direction = direction
	decision.Strategy = rule.Strategy
	decision.Confidence = rule.Confidence
	decision.Mapping = rule.Mapping
	decision.ManualSteps = append([]string(nil), rule.ManualSteps...)
	decision.Warnings = append([]string(nil), rule.Warnings...)

	return decision
}

func (e *Engine) lookup(el bpmn.Element) (Rule, Direction) {
	switch {
	case el.Type.IsTask():
		if rule, ok := taskRules[el.Type]; ok {
			return rule, DirectionUnspecified
		}
	case el.Type.IsGateway():
		direction := InferDirection(el)

		if rule, ok := gatewayRules[GatewayKey{Type: el.Type, Direction: direction}]; ok {
			return rule, direction
		}

		if rule, ok := gatewayRules[GatewayKey{Type: el.Type, Direction: DirectionUnspecified}]; ok {
			return rule, direction
		}
	case el.Type.IsEvent():
		definition := el.Definition
		if definition == "" {
			definition = bpmn.DefinitionNone
		}

		if rule, ok := eventRules[EventKey{Type: el.Type, Definition: definition}]; ok {
			return rule, DirectionUnspecified
		}

		if rule, ok := eventDefaults[el.Type]; ok {
			return rule, DirectionUnspecified
		}
	}

	return unsupportedRule, DirectionUnspecified
}

// ClassifyAll classifies every element of a process in document order.
func (e *Engine) ClassifyAll(proc *bpmn.Process) []Decision {
	decisions := make([]Decision, 0, len(proc.Elements))

	for _, el := range proc.Elements {
		decisions = append(decisions, e.Classify(el))
	}

	return decisions
}
