package validation

import (
	"fmt"

	"github.com/dukex/leadflow/pkg/models"
)

// Validate inspects a whole graph and reports errors (graph is unusable) and
// warnings (usable but suspicious). It never mutates its input and runs in time
// linear in nodes plus edges, so editors call it synchronously after every change.
func Validate(nodes []models.Node, edges []models.Edge) Result {
	v := newValidator(nodes, edges)

	v.checkIdentity()
	v.checkDanglingEdges()
	v.checkTriggerPresence()
	v.checkReachability()
	v.checkConditionBranching()
	v.checkHandles()
	v.checkDefaultPaths()
	v.checkLoopBounds()
	v.checkDelays()
	v.checkOrphans()
	v.checkConfigSchemas()
	v.checkSchedules()

	return Result{
		IsValid:  len(v.errors) == 0,
		Errors:   v.errors,
		Warnings: v.warnings,
	}
}

// ValidateDocument validates the nodes and edges of a serialized workflow.
func ValidateDocument(doc models.Document) Result {
	return Validate(doc.Nodes, doc.Edges)
}

type validator struct {
	nodes    []models.Node
	edges    []models.Edge
	byID     map[string]*models.Node
	outgoing map[string][]*models.Edge
	incoming map[string]int

	reachable map[string]bool

	errors   []Issue
	warnings []Issue
}

func newValidator(nodes []models.Node, edges []models.Edge) *validator {
	v := &validator{
		nodes:    nodes,
		edges:    edges,
		byID:     make(map[string]*models.Node, len(nodes)),
		outgoing: make(map[string][]*models.Edge, len(nodes)),
		incoming: make(map[string]int, len(nodes)),
		errors:   make([]Issue, 0),
		warnings: make([]Issue, 0),
	}

	for i := range nodes {
		v.byID[nodes[i].ID] = &nodes[i]
	}

	for i := range edges {
		edge := &edges[i]
		if !v.resolvable(edge) {
			continue
		}

		v.outgoing[edge.Source] = append(v.outgoing[edge.Source], edge)
		v.incoming[edge.Target]++
	}

	return v
}

func (v *validator) resolvable(edge *models.Edge) bool {
	_, hasSource := v.byID[edge.Source]
	_, hasTarget := v.byID[edge.Target]

	return hasSource && hasTarget
}

func (v *validator) addError(issue Issue) {
	v.errors = append(v.errors, issue)
}

func (v *validator) addWarning(issue Issue) {
	v.warnings = append(v.warnings, issue)
}

// checkIdentity reports ids and kinds that would make the graph unimportable:
// empty ids, ids used twice and node kinds outside the catalogue.
func (v *validator) checkIdentity() {
	seenNodes := make(map[string]bool, len(v.nodes))

	for _, node := range v.nodes {
		switch {
		case node.ID == "":
			v.addError(Issue{Code: CodeMissingID, Message: "node has no id"})
		case seenNodes[node.ID]:
			v.addError(Issue{
				Code:    CodeDuplicateNodeID,
				NodeID:  node.ID,
				Message: fmt.Sprintf("node id %s is used more than once", node.ID),
			})
		}

		seenNodes[node.ID] = true

		if !node.Kind.IsValid() {
			v.addError(Issue{
				Code:    CodeUnknownKind,
				NodeID:  node.ID,
				Message: fmt.Sprintf("node %s has unknown kind %q", node.ID, node.Kind),
			})
		}
	}

	seenEdges := make(map[string]bool, len(v.edges))

	for _, edge := range v.edges {
		switch {
		case edge.ID == "":
			v.addError(Issue{Code: CodeMissingID, Message: fmt.Sprintf("edge %s -> %s has no id", edge.Source, edge.Target)})
		case seenEdges[edge.ID]:
			v.addError(Issue{
				Code:    CodeDuplicateEdgeID,
				EdgeID:  edge.ID,
				Message: fmt.Sprintf("edge id %s is used more than once", edge.ID),
			})
		}

		seenEdges[edge.ID] = true
	}
}

func (v *validator) checkDanglingEdges() {
	for _, edge := range v.edges {
		for _, endpoint := range []string{edge.Source, edge.Target} {
			if _, ok := v.byID[endpoint]; ok {
				continue
			}

			v.addError(Issue{
				Code:    CodeDanglingEdge,
				EdgeID:  edge.ID,
				NodeID:  endpoint,
				Message: fmt.Sprintf("edge %s references missing node %s", edge.ID, endpoint),
			})
		}
	}
}

func (v *validator) checkTriggerPresence() {
	for _, node := range v.nodes {
		if node.IsTrigger() {
			return
		}
	}

	v.addError(Issue{
		Code:    CodeNoTrigger,
		Message: "workflow has no trigger node: a workflow must start somewhere",
	})
}

// checkReachability walks outgoing edges breadth-first from every trigger. The
// visited set keeps loop back-edges from being followed forever.
func (v *validator) checkReachability() {
	v.reachable = make(map[string]bool, len(v.nodes))
	queue := make([]string, 0, len(v.nodes))

	for _, node := range v.nodes {
		if node.IsTrigger() && !v.reachable[node.ID] {
			v.reachable[node.ID] = true
			queue = append(queue, node.ID)
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, edge := range v.outgoing[current] {
			if v.reachable[edge.Target] {
				continue
			}

			v.reachable[edge.Target] = true
			queue = append(queue, edge.Target)
		}
	}

	for _, node := range v.nodes {
		if node.IsTrigger() || v.reachable[node.ID] {
			continue
		}

		v.addWarning(Issue{
			Code:    CodeUnreachableNode,
			NodeID:  node.ID,
			Message: fmt.Sprintf("%s node %s is not reachable from any trigger and will never run", node.Kind, node.ID),
		})
	}
}

func (v *validator) checkConditionBranching() {
	for _, node := range v.nodes {
		if !node.IsCondition() {
			continue
		}

		counts := make(map[string]int)
		order := make([]string, 0)

		for _, edge := range v.outgoing[node.ID] {
			handle := edge.SourceHandleName()
			if counts[handle] == 0 {
				order = append(order, handle)
			}

			counts[handle]++
		}

		for _, handle := range order {
			if counts[handle] < 2 {
				continue
			}

			name := handle
			if name == "" {
				name = "(unset)"
			}

			v.addError(Issue{
				Code:   CodeAmbiguousBranch,
				NodeID: node.ID,
				Message: fmt.Sprintf("condition %s has %d outgoing edges on handle %s; execution cannot tell which to follow",
					node.ID, counts[handle], name),
			})
		}
	}
}

func (v *validator) checkHandles() {
	for _, edge := range v.edges {
		if !v.resolvable(&edge) {
			continue
		}

		source := v.byID[edge.Source]
		if !models.HasHandle(source.Kind, models.PortDirectionOutput, edge.SourceHandleName()) {
			v.addError(Issue{
				Code:   CodeInvalidHandle,
				NodeID: source.ID,
				EdgeID: edge.ID,
				Message: fmt.Sprintf("edge %s leaves %s node %s through unknown handle %q",
					edge.ID, source.Kind, source.ID, edge.SourceHandleName()),
			})
		}

		target := v.byID[edge.Target]
		if !models.HasHandle(target.Kind, models.PortDirectionInput, edge.TargetHandleName()) {
			v.addError(Issue{
				Code:   CodeInvalidHandle,
				NodeID: target.ID,
				EdgeID: edge.ID,
				Message: fmt.Sprintf("edge %s enters %s node %s through unknown handle %q",
					edge.ID, target.Kind, target.ID, edge.TargetHandleName()),
			})
		}
	}
}

func (v *validator) checkDefaultPaths() {
	for _, node := range v.nodes {
		if !node.IsCondition() {
			continue
		}

		path := node.ConditionConfig().DefaultPath
		if path == nil {
			continue
		}

		if _, ok := v.byID[*path]; ok {
			continue
		}

		v.addError(Issue{
			Code:    CodeDanglingDefaultPath,
			NodeID:  node.ID,
			Message: fmt.Sprintf("condition %s default path references missing node %s", node.ID, *path),
		})
	}
}

func (v *validator) checkLoopBounds() {
	for _, node := range v.nodes {
		if node.Kind != models.NodeKindLoop {
			continue
		}

		limit := node.LoopConfig().MaxIterations
		if limit > 0 {
			continue
		}

		v.addError(Issue{
			Code:    CodeInvalidLoopBound,
			NodeID:  node.ID,
			Message: fmt.Sprintf("loop %s must allow at least one iteration (maxIterations is %d)", node.ID, limit),
		})
	}
}

func (v *validator) checkDelays() {
	for _, node := range v.nodes {
		if node.Kind != models.NodeKindDelay {
			continue
		}

		delay := node.DelayConfig().DelayMs
		if delay >= 0 {
			continue
		}

		v.addError(Issue{
			Code:    CodeInvalidDelay,
			NodeID:  node.ID,
			Message: fmt.Sprintf("delay %s has negative duration %dms", node.ID, delay),
		})
	}
}

func (v *validator) checkOrphans() {
	for _, node := range v.nodes {
		if node.Kind != models.NodeKindAction && node.Kind != models.NodeKindDelay {
			continue
		}

		if v.incoming[node.ID] > 0 {
			continue
		}

		v.addWarning(Issue{
			Code:    CodeOrphanNode,
			NodeID:  node.ID,
			Message: fmt.Sprintf("%s %s has no incoming connection", node.Kind, node.ID),
		})
	}
}
