// Package bpmn parses BPMN 2.0 XML into a typed process graph. The parser is
// namespace-tolerant and collects only the vocabulary the migration rules
// know about; unknown elements are skipped without error. No XSD validation
// is performed, so a well-formed document always parses even when fields are
// missing.
package bpmn

// ElementType identifies a BPMN flow node. The constants cover the task,
// gateway and event variants the rule tables classify.
type ElementType string

const (
	TypeTask             ElementType = "task"
	TypeUserTask         ElementType = "userTask"
	TypeServiceTask      ElementType = "serviceTask"
	TypeScriptTask       ElementType = "scriptTask"
	TypeSendTask         ElementType = "sendTask"
	TypeReceiveTask      ElementType = "receiveTask"
	TypeManualTask       ElementType = "manualTask"
	TypeBusinessRuleTask ElementType = "businessRuleTask"
	TypeCallActivity     ElementType = "callActivity"
	TypeSubProcess       ElementType = "subProcess"

	TypeExclusiveGateway  ElementType = "exclusiveGateway"
	TypeParallelGateway   ElementType = "parallelGateway"
	TypeInclusiveGateway  ElementType = "inclusiveGateway"
	TypeEventBasedGateway ElementType = "eventBasedGateway"
	TypeComplexGateway    ElementType = "complexGateway"

	TypeStartEvent             ElementType = "startEvent"
	TypeEndEvent               ElementType = "endEvent"
	TypeIntermediateCatchEvent ElementType = "intermediateCatchEvent"
	TypeIntermediateThrowEvent ElementType = "intermediateThrowEvent"
	TypeBoundaryEvent          ElementType = "boundaryEvent"
)

// IsTask reports whether the type is an activity (task variant, call
// activity or sub-process).
func (t ElementType) IsTask() bool {
	switch t {
	case TypeTask, TypeUserTask, TypeServiceTask, TypeScriptTask, TypeSendTask,
		TypeReceiveTask, TypeManualTask, TypeBusinessRuleTask, TypeCallActivity, TypeSubProcess:
		return true
	default:
		return false
	}
}

// IsGateway reports whether the type is a gateway variant.
func (t ElementType) IsGateway() bool {
	switch t {
	case TypeExclusiveGateway, TypeParallelGateway, TypeInclusiveGateway,
		TypeEventBasedGateway, TypeComplexGateway:
		return true
	default:
		return false
	}
}

// IsEvent reports whether the type is an event variant.
func (t ElementType) IsEvent() bool {
	switch t {
	case TypeStartEvent, TypeEndEvent, TypeIntermediateCatchEvent,
		TypeIntermediateThrowEvent, TypeBoundaryEvent:
		return true
	default:
		return false
	}
}

// EventDefinition is the trigger attached to an event element. Events with
// no definition child carry DefinitionNone.
type EventDefinition string

const (
	DefinitionNone        EventDefinition = "none"
	DefinitionMessage     EventDefinition = "message"
	DefinitionTimer       EventDefinition = "timer"
	DefinitionSignal      EventDefinition = "signal"
	DefinitionError       EventDefinition = "error"
	DefinitionTerminate   EventDefinition = "terminate"
	DefinitionConditional EventDefinition = "conditional"
	DefinitionEscalation  EventDefinition = "escalation"
	DefinitionLink        EventDefinition = "link"
	DefinitionCompensate  EventDefinition = "compensate"
)

// Element is one flow node of a process. Identity is the XML id attribute;
// uniqueness is assumed, not enforced.
type Element struct {
	ID            string
	Name          string
	Type          ElementType
	Incoming      []string // sequence flow ids
	Outgoing      []string
	Definition    EventDefinition // events only
	AttachedTo    string          // boundary events: id of the host activity
	Default       string          // gateways: id of the default flow
	Documentation string
	LaneID        string
	Properties    map[string]string
}

// SequenceFlow is a directed edge between two flow nodes.
type SequenceFlow struct {
	ID        string
	Name      string
	SourceRef string
	TargetRef string
	Condition string // raw condition expression, empty when absent
}

// Lane partitions a process by responsible actor.
type Lane struct {
	ID           string
	Name         string
	FlowNodeRefs []string
}

// DataObject is a declared process input or artifact.
type DataObject struct {
	ID   string
	Name string
}

// Process is one bpmn:process element with its flow nodes in document order.
type Process struct {
	ID          string
	Name        string
	Executable  bool
	Elements    []Element
	Flows       []SequenceFlow
	Lanes       []Lane
	DataObjects []DataObject
}

// Definitions is the parsed document root.
type Definitions struct {
	TargetNamespace string
	Processes       []Process
}

// ElementByID returns the element with the given id, or nil.
func (p *Process) ElementByID(id string) *Element {
	for i := range p.Elements {
		if p.Elements[i].ID == id {
			return &p.Elements[i]
		}
	}

	return nil
}

// FlowByID returns the sequence flow with the given id, or nil.
func (p *Process) FlowByID(id string) *SequenceFlow {
	for i := range p.Flows {
		if p.Flows[i].ID == id {
			return &p.Flows[i]
		}
	}

	return nil
}

// Tasks returns the activity elements in document order.
func (p *Process) Tasks() []Element {
	return p.filter(ElementType.IsTask)
}

// Gateways returns the gateway elements in document order.
func (p *Process) Gateways() []Element {
	return p.filter(ElementType.IsGateway)
}

// Events returns the event elements in document order.
func (p *Process) Events() []Element {
	return p.filter(ElementType.IsEvent)
}

// StartEvents returns the start events of the process.
func (p *Process) StartEvents() []Element {
	var out []Element

	for _, el := range p.Elements {
		if el.Type == TypeStartEvent {
			out = append(out, el)
		}
	}

	return out
}

func (p *Process) filter(match func(ElementType) bool) []Element {
	var out []Element

	for _, el := range p.Elements {
		if match(el.Type) {
			out = append(out, el)
		}
	}

	return out
}
