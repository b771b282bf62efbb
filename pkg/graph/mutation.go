package graph

import (
	"maps"
	"slices"

	"github.com/dukex/leadflow/pkg/models"
)

// AddNode stores a new node with a fresh id. The config is not validated: a node may
// exist half-configured while the user is still editing it.
func (g *Graph) AddNode(kind models.NodeKind, position models.Position, config map[string]any) (models.Node, error) {
	if !kind.IsValid() {
		return models.Node{}, newMutationError("AddNode", string(kind), ErrInvalidNodeKind)
	}

	node := models.Node{
		ID:       g.nextNodeID(),
		Kind:     kind,
		Position: position,
		Config:   models.CloneConfig(config),
	}

	g.nodes = append(g.nodes, node)
	g.dirty = true

	return node.Clone(), nil
}

// RemoveNode deletes the node and every edge that has it as source or target, in a
// single step. It reports whether the node existed.
func (g *Graph) RemoveNode(id string) bool {
	i := g.indexOfNode(id)
	if i < 0 {
		return false
	}

	g.nodes = slices.Delete(g.nodes, i, i+1)
	g.edges = slices.DeleteFunc(g.edges, func(e models.Edge) bool {
		return e.References(id)
	})
	g.dirty = true

	return true
}

// UpdateNodeConfig shallow-merges partial into the node's config. A missing node is a
// silent no-op so the editor tolerates races between UI events and deletions; the
// return value reports whether a node was updated.
func (g *Graph) UpdateNodeConfig(id string, partial map[string]any) bool {
	i := g.indexOfNode(id)
	if i < 0 {
		return false
	}

	config := models.CloneConfig(g.nodes[i].Config)
	maps.Copy(config, partial)

	g.nodes[i].Config = config
	g.dirty = true

	return true
}

// UpdateNodePosition moves a node on the canvas. Like UpdateNodeConfig it is a no-op
// for unknown ids.
func (g *Graph) UpdateNodePosition(id string, position models.Position) bool {
	i := g.indexOfNode(id)
	if i < 0 {
		return false
	}

	g.nodes[i].Position = position
	g.dirty = true

	return true
}

// SetPositions applies several positions at once, ignoring unknown ids, and returns
// how many nodes moved.
func (g *Graph) SetPositions(positions map[string]models.Position) int {
	moved := 0

	for i := range g.nodes {
		position, ok := positions[g.nodes[i].ID]
		if !ok || position == g.nodes[i].Position {
			continue
		}

		g.nodes[i].Position = position
		moved++
	}

	if moved > 0 {
		g.dirty = true
	}

	return moved
}

// DuplicateNode copies kind and config into a new node offset by DuplicateOffset.
// Edges are not copied.
func (g *Graph) DuplicateNode(id string) (models.Node, error) {
	i := g.indexOfNode(id)
	if i < 0 {
		return models.Node{}, newMutationError("DuplicateNode", id, ErrNodeNotFound)
	}

	original := g.nodes[i]

	node := models.Node{
		ID:       g.nextNodeID(),
		Kind:     original.Kind,
		Position: original.Position.Offset(DuplicateOffset),
		Config:   models.CloneConfig(original.Config),
	}

	g.nodes = append(g.nodes, node)
	g.dirty = true

	return node.Clone(), nil
}

// EdgeOption sets an optional field of a new edge.
type EdgeOption func(*models.Edge)

func WithSourceHandle(handle string) EdgeOption {
	return func(e *models.Edge) {
		e.SourceHandle = models.StringPtr(handle)
	}
}

func WithTargetHandle(handle string) EdgeOption {
	return func(e *models.Edge) {
		e.TargetHandle = models.StringPtr(handle)
	}
}

func WithLabel(label string) EdgeOption {
	return func(e *models.Edge) {
		e.Label = models.StringPtr(label)
	}
}

// Connect creates an edge between two existing nodes. Referencing a missing node is a
// caller bug and fails with ErrNodeNotFound.
func (g *Graph) Connect(source, target string, opts ...EdgeOption) (models.Edge, error) {
	if g.indexOfNode(source) < 0 {
		return models.Edge{}, newMutationError("Connect", source, ErrNodeNotFound)
	}

	if g.indexOfNode(target) < 0 {
		return models.Edge{}, newMutationError("Connect", target, ErrNodeNotFound)
	}

	edge := models.Edge{
		Source: source,
		Target: target,
	}

	for _, opt := range opts {
		opt(&edge)
	}

	edge.ID = g.nextEdgeID()

	g.edges = append(g.edges, edge)
	g.dirty = true

	return edge.Clone(), nil
}

// RemoveEdge deletes an edge and reports whether it existed.
func (g *Graph) RemoveEdge(id string) bool {
	i := g.indexOfEdge(id)
	if i < 0 {
		return false
	}

	g.edges = slices.Delete(g.edges, i, i+1)
	g.dirty = true

	return true
}

// EdgePatch lists the edge fields to change; nil fields are left untouched. A handle or
// label pointing at "" clears it.
type EdgePatch struct {
	Source       *string
	Target       *string
	SourceHandle *string
	TargetHandle *string
	Label        *string
}

// UpdateEdge applies patch to an edge. New endpoints must reference existing nodes;
// on failure the edge is left unchanged.
func (g *Graph) UpdateEdge(id string, patch EdgePatch) (models.Edge, error) {
	i := g.indexOfEdge(id)
	if i < 0 {
		return models.Edge{}, newMutationError("UpdateEdge", id, ErrEdgeNotFound)
	}

	edge := g.edges[i].Clone()

	if patch.Source != nil {
		if g.indexOfNode(*patch.Source) < 0 {
			return models.Edge{}, newMutationError("UpdateEdge", *patch.Source, ErrNodeNotFound)
		}

		edge.Source = *patch.Source
	}

	if patch.Target != nil {
		if g.indexOfNode(*patch.Target) < 0 {
			return models.Edge{}, newMutationError("UpdateEdge", *patch.Target, ErrNodeNotFound)
		}

		edge.Target = *patch.Target
	}

	if patch.SourceHandle != nil {
		edge.SourceHandle = models.StringPtr(*patch.SourceHandle)
	}

	if patch.TargetHandle != nil {
		edge.TargetHandle = models.StringPtr(*patch.TargetHandle)
	}

	if patch.Label != nil {
		edge.Label = models.StringPtr(*patch.Label)
	}

	g.edges[i] = edge
	g.dirty = true

	return edge.Clone(), nil
}
