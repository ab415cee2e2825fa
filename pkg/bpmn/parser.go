package bpmn

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrNoProcess indicates a well-formed document that contains no process
// element. Parsing succeeds; converters reject the empty result.
var ErrNoProcess = errors.New("document contains no process")

// elementTypes maps XML local names to their typed constants. Locals missing
// here are skipped silently.
var elementTypes = map[string]ElementType{
	"task":                   TypeTask,
	"userTask":               TypeUserTask,
	"serviceTask":            TypeServiceTask,
	"scriptTask":             TypeScriptTask,
	"sendTask":               TypeSendTask,
	"receiveTask":            TypeReceiveTask,
	"manualTask":             TypeManualTask,
	"businessRuleTask":       TypeBusinessRuleTask,
	"callActivity":           TypeCallActivity,
	"subProcess":             TypeSubProcess,
	"exclusiveGateway":       TypeExclusiveGateway,
	"parallelGateway":        TypeParallelGateway,
	"inclusiveGateway":       TypeInclusiveGateway,
	"eventBasedGateway":      TypeEventBasedGateway,
	"complexGateway":         TypeComplexGateway,
	"startEvent":             TypeStartEvent,
	"endEvent":               TypeEndEvent,
	"intermediateCatchEvent": TypeIntermediateCatchEvent,
	"intermediateThrowEvent": TypeIntermediateThrowEvent,
	"boundaryEvent":          TypeBoundaryEvent,
}

var eventDefinitions = map[string]EventDefinition{
	"message":     DefinitionMessage,
	"timer":       DefinitionTimer,
	"signal":      DefinitionSignal,
	"error":       DefinitionError,
	"terminate":   DefinitionTerminate,
	"conditional": DefinitionConditional,
	"escalation":  DefinitionEscalation,
	"link":        DefinitionLink,
	"compensate":  DefinitionCompensate,
}

// ParseFile parses a BPMN file from disk.
func ParseFile(path string) (*Definitions, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open BPMN file: %w", err)
	}

	defer func() {
		_ = f.Close()
	}()

	defs, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return defs, nil
}

// Parse reads BPMN 2.0 XML and returns the typed process graph. Element
// prefixes are ignored, so documents using bpmn:, bpmn2: or no prefix all
// parse the same way. Malformed XML is fatal; unknown elements are skipped.
func Parse(r io.Reader) (*Definitions, error) {
	dec := xml.NewDecoder(r)
	defs := &Definitions{}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("failed to parse BPMN XML: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "definitions":
			defs.TargetNamespace = attr(start, "targetNamespace")
		case "process":
			proc, err := parseProcess(dec, start)
			if err != nil {
				return nil, err
			}

			defs.Processes = append(defs.Processes, *proc)
		}
	}

	return defs, nil
}

func parseProcess(dec *xml.Decoder, start xml.StartElement) (*Process, error) {
	proc := &Process{
		ID:         attr(start, "id"),
		Name:       attr(start, "name"),
		Executable: attr(start, "isExecutable") == "true",
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to parse process %s: %w", proc.ID, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if err := parseProcessChild(dec, t, proc); err != nil {
				return nil, err
			}
		case xml.EndElement:
			if t.Name.Local == "process" {
				linkElements(proc)

				return proc, nil
			}
		}
	}
}

func parseProcessChild(dec *xml.Decoder, start xml.StartElement, proc *Process) error {
	local := start.Name.Local

	switch local {
	case "sequenceFlow":
		flow, err := parseSequenceFlow(dec, start)
		if err != nil {
			return err
		}

		proc.Flows = append(proc.Flows, *flow)

		return nil
	case "laneSet":
		return parseLaneSet(dec, proc)
	case "dataObject", "dataObjectReference":
		proc.DataObjects = append(proc.DataObjects, DataObject{
			ID:   attr(start, "id"),
			Name: attr(start, "name"),
		})

		return dec.Skip()
	}

	if typ, ok := elementTypes[local]; ok {
		el, err := parseFlowNode(dec, start, typ)
		if err != nil {
			return err
		}

		proc.Elements = append(proc.Elements, *el)

		return nil
	}

	return dec.Skip()
}

func parseFlowNode(dec *xml.Decoder, start xml.StartElement, typ ElementType) (*Element, error) {
	el := &Element{
		ID:         attr(start, "id"),
		Name:       attr(start, "name"),
		Type:       typ,
		AttachedTo: attr(start, "attachedToRef"),
		Default:    attr(start, "default"),
	}

	if typ.IsEvent() {
		el.Definition = DefinitionNone
	}

	if called := attr(start, "calledElement"); called != "" {
		setProperty(el, "calledElement", called)
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to parse element %s: %w", el.ID, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if err := parseFlowNodeChild(dec, t, el); err != nil {
				return nil, err
			}
		case xml.EndElement:
			if t.Name.Local == start.Name.Local {
				return el, nil
			}
		}
	}
}

func parseFlowNodeChild(dec *xml.Decoder, start xml.StartElement, el *Element) error {
	local := start.Name.Local

	switch local {
	case "incoming":
		text, err := readText(dec)
		if err != nil {
			return err
		}

		if text != "" {
			el.Incoming = appendUnique(el.Incoming, text)
		}

		return nil
	case "outgoing":
		text, err := readText(dec)
		if err != nil {
			return err
		}

		if text != "" {
			el.Outgoing = appendUnique(el.Outgoing, text)
		}

		return nil
	case "documentation":
		text, err := readText(dec)
		if err != nil {
			return err
		}

		el.Documentation = text

		return nil
	case "timerEventDefinition":
		el.Definition = DefinitionTimer

		return parseTimerDefinition(dec, el)
	}

	if def, ok := eventDefinitionFor(local); ok {
		el.Definition = def
	}

	return dec.Skip()
}

// parseTimerDefinition keeps the timer expression so converters can turn it
// into a deadline.
func parseTimerDefinition(dec *xml.Decoder, el *Element) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("failed to parse timer definition on %s: %w", el.ID, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "timeDuration", "timeDate", "timeCycle":
				text, err := readText(dec)
				if err != nil {
					return err
				}

				setProperty(el, t.Name.Local, text)
			default:
				if err := dec.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			return nil
		}
	}
}

func parseSequenceFlow(dec *xml.Decoder, start xml.StartElement) (*SequenceFlow, error) {
	flow := &SequenceFlow{
		ID:        attr(start, "id"),
		Name:      attr(start, "name"),
		SourceRef: attr(start, "sourceRef"),
		TargetRef: attr(start, "targetRef"),
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to parse sequence flow %s: %w", flow.ID, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "conditionExpression" {
				text, err := readText(dec)
				if err != nil {
					return nil, err
				}

				flow.Condition = text

				continue
			}

			if err := dec.Skip(); err != nil {
				return nil, err
			}
		case xml.EndElement:
			return flow, nil
		}
	}
}

func parseLaneSet(dec *xml.Decoder, proc *Process) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("failed to parse lane set: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "lane" {
				if err := dec.Skip(); err != nil {
					return err
				}

				continue
			}

			lane, err := parseLane(dec, t)
			if err != nil {
				return err
			}

			proc.Lanes = append(proc.Lanes, *lane)
		case xml.EndElement:
			if t.Name.Local == "laneSet" {
				return nil
			}
		}
	}
}

func parseLane(dec *xml.Decoder, start xml.StartElement) (*Lane, error) {
	lane := &Lane{ID: attr(start, "id"), Name: attr(start, "name")}

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to parse lane %s: %w", lane.ID, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "flowNodeRef" {
				text, err := readText(dec)
				if err != nil {
					return nil, err
				}

				if text != "" {
					lane.FlowNodeRefs = append(lane.FlowNodeRefs, text)
				}

				continue
			}

			if err := dec.Skip(); err != nil {
				return nil, err
			}
		case xml.EndElement:
			if t.Name.Local == "lane" {
				return lane, nil
			}
		}
	}
}

// linkElements reconciles declared incoming/outgoing children with the
// sequence flows and stamps lane membership. Documents that omit the
// incoming/outgoing children still get a complete graph.
func linkElements(proc *Process) {
	for _, flow := range proc.Flows {
		if src := proc.ElementByID(flow.SourceRef); src != nil {
			src.Outgoing = appendUnique(src.Outgoing, flow.ID)
		}

		if dst := proc.ElementByID(flow.TargetRef); dst != nil {
			dst.Incoming = appendUnique(dst.Incoming, flow.ID)
		}
	}

	for _, lane := range proc.Lanes {
		for _, ref := range lane.FlowNodeRefs {
			if el := proc.ElementByID(ref); el != nil {
				el.LaneID = lane.ID
			}
		}
	}
}

// readText consumes the current element through its end tag and returns the
// accumulated character data.
func readText(dec *xml.Decoder) (string, error) {
	var sb strings.Builder

	depth := 0

	for {
		tok, err := dec.Token()
		if err != nil {
			return "", fmt.Errorf("failed to read element text: %w", err)
		}

		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			if depth == 0 {
				return strings.TrimSpace(sb.String()), nil
			}

			depth--
		}
	}
}

func eventDefinitionFor(local string) (EventDefinition, bool) {
	name, found := strings.CutSuffix(local, "EventDefinition")
	if !found {
		return "", false
	}

	def, ok := eventDefinitions[name]

	return def, ok
}

func attr(start xml.StartElement, name string) string {
	for _, a := range start.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}

	return ""
}

func setProperty(el *Element, key, value string) {
	if el.Properties == nil {
		el.Properties = map[string]string{}
	}

	el.Properties[key] = value
}

func appendUnique(list []string, value string) []string {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}

	return append(list, value)
}
