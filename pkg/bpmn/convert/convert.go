// Package convert turns a parsed BPMN process into a Tallyfy template. Tasks
// become steps, lanes become groups, diverging exclusive gateways become
// decision fields with show rules, and data objects become kickoff fields.
// Every mapping caveat ends up either in the template warnings or in the
// per-element decisions of the result.
package convert

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/tallyfy/migrator/pkg/bpmn"
	"github.com/tallyfy/migrator/pkg/bpmn/rules"
	"github.com/tallyfy/migrator/pkg/model"
)

// Options controls the conversion.
type Options struct {
	// FlowOrder walks elements breadth-first from the start events instead
	// of document order, so step positions follow the diagram.
	FlowOrder bool
}

// Summary tallies the classification outcome for reporting.
type Summary struct {
	Elements    int `json:"elements"`
	Direct      int `json:"direct"`
	Transform   int `json:"transform"`
	Partial     int `json:"partial"`
	Unsupported int `json:"unsupported"`
	ManualSteps int `json:"manual_steps"`
}

// Result is the converted template plus the decisions that produced it.
type Result struct {
	Template  *model.Template  `json:"template"`
	Decisions []rules.Decision `json:"decisions"`
	Summary   Summary          `json:"summary"`
}

// Converter builds templates from BPMN definitions.
type Converter struct {
	engine *rules.Engine
	logger *slog.Logger
	opts   Options
}

// New creates a Converter.
func New(logger *slog.Logger, opts Options) *Converter {
	return &Converter{engine: rules.NewEngine(), logger: logger, opts: opts}
}

// ConvertFile parses and converts a BPMN file from disk.
func (c *Converter) ConvertFile(path string) (*Result, error) {
	defs, err := bpmn.ParseFile(path)
	if err != nil {
		return nil, err
	}

	return c.Convert(defs)
}

// Convert builds a template from the first process of the document. The
// finished template is validated against the output schema before it is
// returned.
func (c *Converter) Convert(defs *bpmn.Definitions) (*Result, error) {
	if defs == nil || len(defs.Processes) == 0 {
		return nil, bpmn.ErrNoProcess
	}

	proc := &defs.Processes[0]
	result := c.convertProcess(proc)

	if len(defs.Processes) > 1 {
		result.Template.Warnings = append(result.Template.Warnings,
			fmt.Sprintf("document has %d processes; only %q was converted", len(defs.Processes), proc.ID))
	}

	if err := ValidateTemplate(result.Template); err != nil {
		return nil, fmt.Errorf("converted template is invalid: %w", err)
	}

	c.logger.Info("Converted BPMN process",
		"process", proc.ID,
		"steps", len(result.Template.Steps),
		"rules", len(result.Template.Rules),
		"unsupported", result.Summary.Unsupported)

	return result, nil
}

func (c *Converter) convertProcess(proc *bpmn.Process) *Result {
	b := newBuilder(proc)

	elements := proc.Elements
	if c.opts.FlowOrder {
		elements = flowOrder(proc)
	}

	for _, el := range elements {
		decision := c.engine.Classify(el)
		b.decisions = append(b.decisions, decision)
		b.apply(el, decision)
	}

	b.addKickoffCaptures()
	b.buildDecisionRules()
	b.applyBoundaryDeadlines()

	return &Result{
		Template:  b.template,
		Decisions: b.decisions,
		Summary:   summarize(b.decisions),
	}
}

func summarize(decisions []rules.Decision) Summary {
	summary := Summary{Elements: len(decisions)}

	for _, d := range decisions {
		switch d.Strategy {
		case rules.StrategyDirect:
			summary.Direct++
		case rules.StrategyTransform:
			summary.Transform++
		case rules.StrategyPartial:
			summary.Partial++
		case rules.StrategyUnsupported:
			summary.Unsupported++
		}

		summary.ManualSteps += len(d.ManualSteps)
	}

	return summary
}

// builder accumulates the write-once template while elements are applied.
type builder struct {
	proc     *bpmn.Process
	template *model.Template

	decisions []rules.Decision

	stepPosition    int
	capturePosition int

	stepAlias  map[string]string // element id -> step alias
	aliases    map[string]int
	laneNames  map[string]string
	gateways   []deferredGateway
	boundaries []bpmn.Element
}

type deferredGateway struct {
	element  bpmn.Element
	decision rules.Decision
}

func newBuilder(proc *bpmn.Process) *builder {
	b := &builder{
		proc:      proc,
		stepAlias: map[string]string{},
		aliases:   map[string]int{},
		laneNames: map[string]string{},
	}

	title := proc.Name
	if title == "" {
		title = proc.ID
	}

	if title == "" {
		title = "Imported process"
	}

	b.template = &model.Template{SourceID: proc.ID, Title: title}

	for _, lane := range proc.Lanes {
		b.laneNames[lane.ID] = lane.Name
		b.template.Groups = append(b.template.Groups, model.Group{
			SourceID: lane.ID,
			Name:     lane.Name,
		})
	}

	return b
}

func (b *builder) apply(el bpmn.Element, decision rules.Decision) {
	switch decision.Mapping.Kind {
	case rules.TargetStep:
		b.addStep(el, decision)
	case rules.TargetDecision:
		if len(el.Outgoing) > 1 {
			b.gateways = append(b.gateways, deferredGateway{element: el, decision: decision})
		}
	case rules.TargetParallelBranches:
		b.addParallelBranches(el)
	case rules.TargetDeadline:
		b.boundaries = append(b.boundaries, el)
	case rules.TargetKickoff, rules.TargetCompletion, rules.TargetMerge, rules.TargetNone:
		// No artifact; warnings and manual steps still surface below.
	}

	for _, warning := range decision.Warnings {
		b.warn(el, warning)
	}

	if !decision.Supported() {
		b.warn(el, "element is not supported and was skipped")
	}
}

func (b *builder) addStep(el bpmn.Element, decision rules.Decision) {
	b.stepPosition++

	step := model.Step{
		SourceID:    el.ID,
		Alias:       b.alias(el.ID),
		Title:       elementLabel(el),
		Description: el.Documentation,
		Type:        decision.Mapping.StepType,
		Position:    b.stepPosition,
	}

	if name, ok := b.laneNames[el.LaneID]; ok && name != "" {
		step.GroupNames = []string{name}
	}

	if el.Type == bpmn.TypeIntermediateCatchEvent && el.Definition == bpmn.DefinitionTimer {
		if deadline, ok := parseISODuration(el.Properties["timeDuration"]); ok {
			step.Deadline = deadline
		} else {
			b.warn(el, fmt.Sprintf("timer expression %q was not understood; set the deadline manually", el.Properties["timeDuration"]))
		}
	}

	b.stepAlias[el.ID] = step.Alias
	b.template.Steps = append(b.template.Steps, step)
}

// addParallelBranches fabricates one placeholder step per outgoing branch.
// The real branch tasks are still converted on their own, so the operator
// sees both and prunes whichever is redundant.
func (b *builder) addParallelBranches(el bpmn.Element) {
	for i, flowID := range el.Outgoing {
		flow := b.proc.FlowByID(flowID)
		if flow == nil {
			continue
		}

		b.stepPosition++

		b.template.Steps = append(b.template.Steps, model.Step{
			SourceID:    el.ID + "_" + flow.ID,
			Alias:       b.alias(el.ID + "_branch"),
			Title:       fmt.Sprintf("Branch %d: %s", i+1, b.branchLabel(flow)),
			Description: "Placeholder for a parallel branch.",
			Type:        model.StepTask,
			Position:    b.stepPosition,
		})
	}
}

func (b *builder) addKickoffCaptures() {
	seen := map[string]bool{}

	for _, obj := range b.proc.DataObjects {
		label := obj.Name
		if label == "" {
			label = obj.ID
		}

		if label == "" || seen[label] {
			continue
		}

		seen[label] = true
		b.capturePosition++

		b.template.Captures = append(b.template.Captures, model.Capture{
			SourceID: obj.ID,
			Alias:    b.alias(obj.ID),
			Label:    label,
			Type:     model.CaptureText,
			Position: b.capturePosition,
		})
	}
}

// buildDecisionRules turns each deferred diverging gateway into a decision
// capture plus one show rule per branch that leads to a generated step.
func (b *builder) buildDecisionRules() {
	for _, gw := range b.gateways {
		el := gw.element

		captureType := model.CaptureRadio
		operator := model.OperatorEquals

		if el.Type == bpmn.TypeInclusiveGateway {
			captureType = model.CaptureMultiselect
			operator = model.OperatorContains
		}

		label := el.Name
		if label == "" {
			label = "Decision"
		}

		b.capturePosition++
		capture := model.Capture{
			SourceID: el.ID,
			Alias:    b.alias(el.ID),
			Label:    label,
			Type:     captureType,
			Required: true,
			Position: b.capturePosition,
			Guidance: el.Documentation,
		}

		for _, flowID := range el.Outgoing {
			flow := b.proc.FlowByID(flowID)
			if flow == nil {
				continue
			}

			branch := b.branchLabel(flow)
			capture.Options = append(capture.Options, branch)

			targetAlias, ok := b.stepAlias[flow.TargetRef]
			if !ok {
				b.warn(el, fmt.Sprintf("branch %q does not lead directly to a step; no rule generated", branch))

				continue
			}

			b.template.Rules = append(b.template.Rules, model.ConditionalRule{
				ID:          el.ID + "_" + flow.ID,
				CaptureRef:  capture.Alias,
				Operator:    operator,
				Value:       branch,
				Action:      model.ActionShow,
				TargetSteps: []string{targetAlias},
			})
		}

		b.template.Captures = append(b.template.Captures, capture)
	}
}

func (b *builder) applyBoundaryDeadlines() {
	for _, el := range b.boundaries {
		hostAlias, ok := b.stepAlias[el.AttachedTo]
		if !ok {
			b.warn(el, "timer boundary is attached to an element that produced no step")

			continue
		}

		deadline, ok := parseISODuration(el.Properties["timeDuration"])
		if !ok {
			b.warn(el, fmt.Sprintf("timer expression %q was not understood; set the deadline manually", el.Properties["timeDuration"]))

			continue
		}

		if step := b.template.StepByAlias(hostAlias); step != nil {
			step.Deadline = deadline
		}
	}
}

// branchLabel names a branch: the flow's own name, else the target element's
// name, else the flow id.
func (b *builder) branchLabel(flow *bpmn.SequenceFlow) string {
	if flow.Name != "" {
		return flow.Name
	}

	if target := b.proc.ElementByID(flow.TargetRef); target != nil && target.Name != "" {
		return target.Name
	}

	return flow.ID
}

func (b *builder) warn(el bpmn.Element, message string) {
	b.template.Warnings = append(b.template.Warnings,
		fmt.Sprintf("%s: %s", elementLabel(el), message))
}

func elementLabel(el bpmn.Element) string {
	if el.Name != "" {
		return el.Name
	}

	return el.ID
}

// alias returns a unique slug for the given id. Collisions get a numeric
// suffix so rules always reference exactly one step or capture.
func (b *builder) alias(id string) string {
	base := slugify(id)
	if base == "" {
		base = "item"
	}

	n := b.aliases[base]
	b.aliases[base] = n + 1

	if n == 0 {
		return base
	}

	return fmt.Sprintf("%s_%d", base, n+1)
}

func slugify(s string) string {
	var out []rune

	lastUnderscore := true // trims leading separators

	for _, r := range strings.ToLower(s) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			out = append(out, r)
			lastUnderscore = false
		case !lastUnderscore:
			out = append(out, '_')
			lastUnderscore = true
		}
	}

	return strings.Trim(string(out), "_")
}
