// Package graph provides the editable automation graph and its mutation API.
//
// A Graph is owned by a single editing session. It is not safe for concurrent use;
// callers that share one across goroutines must serialize access themselves.
package graph

import (
	"slices"

	"github.com/dukex/leadflow/pkg/models"
)

// DuplicateOffset is added to a node's position when it is duplicated.
var DuplicateOffset = models.Position{X: 40, Y: 40}

// Graph is the aggregate owning every node and edge of a workflow being edited.
// Accessors return copies, so no caller can observe or alter internal state
// between mutations.
type Graph struct {
	nodes []models.Node
	edges []models.Edge

	ids     IDGenerator
	nodeIDs map[string]struct{} // every node id ever held in this session
	edgeIDs map[string]struct{} // every edge id ever held in this session
	dirty   bool
}

// Option configures a Graph.
type Option func(*Graph)

// WithIDGenerator overrides the default UUID generator.
func WithIDGenerator(ids IDGenerator) Option {
	return func(g *Graph) {
		g.ids = ids
	}
}

// New creates an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{
		nodes:   make([]models.Node, 0),
		edges:   make([]models.Edge, 0),
		ids:     UUIDGenerator{},
		nodeIDs: make(map[string]struct{}),
		edgeIDs: make(map[string]struct{}),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Load creates a graph holding the given nodes and edges. It enforces the structural
// invariants an editor relies on: unique ids, known kinds and resolvable edge
// endpoints. The returned graph starts clean.
func Load(nodes []models.Node, edges []models.Edge, opts ...Option) (*Graph, error) {
	g := New(opts...)

	for _, node := range nodes {
		if !node.Kind.IsValid() {
			return nil, newMutationError("Load", node.ID, ErrInvalidNodeKind)
		}

		if node.ID == "" {
			return nil, newMutationError("Load", node.ID, ErrEmptyID)
		}

		if _, exists := g.nodeIDs[node.ID]; exists {
			return nil, newMutationError("Load", node.ID, ErrDuplicateID)
		}

		g.nodeIDs[node.ID] = struct{}{}
		g.nodes = append(g.nodes, node.Clone())
	}

	for _, edge := range edges {
		if edge.ID == "" {
			return nil, newMutationError("Load", edge.ID, ErrEmptyID)
		}

		if _, exists := g.edgeIDs[edge.ID]; exists {
			return nil, newMutationError("Load", edge.ID, ErrDuplicateID)
		}

		if g.indexOfNode(edge.Source) < 0 {
			return nil, newMutationError("Load", edge.Source, ErrNodeNotFound)
		}

		if g.indexOfNode(edge.Target) < 0 {
			return nil, newMutationError("Load", edge.Target, ErrNodeNotFound)
		}

		g.edgeIDs[edge.ID] = struct{}{}
		g.edges = append(g.edges, edge.Clone())
	}

	return g, nil
}

// Nodes returns a copy of the nodes in insertion order.
func (g *Graph) Nodes() []models.Node {
	out := make([]models.Node, len(g.nodes))
	for i, node := range g.nodes {
		out[i] = node.Clone()
	}

	return out
}

// Edges returns a copy of the edges in insertion order.
func (g *Graph) Edges() []models.Edge {
	out := make([]models.Edge, len(g.edges))
	for i, edge := range g.edges {
		out[i] = edge.Clone()
	}

	return out
}

// Node returns a copy of the node with the given id.
func (g *Graph) Node(id string) (models.Node, bool) {
	i := g.indexOfNode(id)
	if i < 0 {
		return models.Node{}, false
	}

	return g.nodes[i].Clone(), true
}

// Edge returns a copy of the edge with the given id.
func (g *Graph) Edge(id string) (models.Edge, bool) {
	i := g.indexOfEdge(id)
	if i < 0 {
		return models.Edge{}, false
	}

	return g.edges[i].Clone(), true
}

// Dirty reports whether the graph changed since creation or the last MarkClean.
func (g *Graph) Dirty() bool {
	return g.dirty
}

// MarkClean clears the dirty flag, typically after the graph was exported and saved.
func (g *Graph) MarkClean() {
	g.dirty = false
}

// Document returns the plain node and edge lists of the graph.
func (g *Graph) Document() models.Document {
	return models.Document{
		Nodes: g.Nodes(),
		Edges: g.Edges(),
	}
}

func (g *Graph) indexOfNode(id string) int {
	return slices.IndexFunc(g.nodes, func(n models.Node) bool { return n.ID == id })
}

func (g *Graph) indexOfEdge(id string) int {
	return slices.IndexFunc(g.edges, func(e models.Edge) bool { return e.ID == id })
}

func (g *Graph) nextNodeID() string {
	for {
		id := g.ids.NewNodeID()
		if _, used := g.nodeIDs[id]; !used && id != "" {
			g.nodeIDs[id] = struct{}{}

			return id
		}
	}
}

func (g *Graph) nextEdgeID() string {
	for {
		id := g.ids.NewEdgeID()
		if _, used := g.edgeIDs[id]; !used && id != "" {
			g.edgeIDs[id] = struct{}{}

			return id
		}
	}
}
