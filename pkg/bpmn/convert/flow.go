package convert

import "github.com/tallyfy/migrator/pkg/bpmn"

// flowOrder walks the process breadth-first from its start events so step
// positions follow the diagram instead of the XML. Elements unreachable from
// any start event are appended afterwards in document order; a diagram with
// a disconnected island still converts completely.
func flowOrder(proc *bpmn.Process) []bpmn.Element {
	visited := map[string]bool{}

	var queue []string

	for _, el := range proc.StartEvents() {
		if !visited[el.ID] {
			visited[el.ID] = true
			queue = append(queue, el.ID)
		}
	}

	var order []bpmn.Element

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		el := proc.ElementByID(id)
		if el == nil {
			continue
		}

		order = append(order, *el)

		for _, flowID := range el.Outgoing {
			flow := proc.FlowByID(flowID)
			if flow == nil || visited[flow.TargetRef] {
				continue
			}

			visited[flow.TargetRef] = true
			queue = append(queue, flow.TargetRef)
		}
	}

	for _, el := range proc.Elements {
		if !visited[el.ID] {
			order = append(order, el)
		}
	}

	return order
}
