// Package layout assigns canvas coordinates to automation graph nodes.
//
// Layout levels nodes by breadth-first distance from the trigger nodes and spaces
// levels evenly along one axis and the nodes of a level along the other. Positions
// are a rendering convenience only: they never influence validation or execution.
//
// # Algorithm
//
//  1. Every trigger node is placed at level 0 and enqueued.
//  2. Nodes are dequeued in order; each unvisited successor gets the dequeued
//     node's level plus one. First discovery wins, which is the shallowest level.
//  3. Nodes no trigger reaches are levelled by a second pass seeded from those of
//     them without predecessors; anything still left (a detached cycle) sits at
//     level 0.
//  4. Within a level nodes keep graph insertion order.
//
// The visited set makes the traversal terminate on cyclic graphs, which loop
// nodes routinely create through back-edges.
//
// Layout is deterministic: the same nodes and edges always yield the same
// coordinates, so running it twice without an intervening edit is a no-op.
package layout

import "github.com/dukex/leadflow/pkg/models"

// Direction selects the axis along which levels advance.
type Direction string

const (
	DirectionHorizontal Direction = "horizontal" // levels advance along X
	DirectionVertical   Direction = "vertical"   // levels advance along Y
)

// Default spacing, in canvas units.
const (
	DefaultLevelSpacing = 250
	DefaultNodeSpacing  = 120
)

// Options tune the coordinates produced by Layout.
type Options struct {
	Direction    Direction
	LevelSpacing float64
	NodeSpacing  float64
	Origin       models.Position
}

// DefaultOptions returns the options used by the editor's "arrange" action.
func DefaultOptions() Options {
	return Options{
		Direction:    DirectionHorizontal,
		LevelSpacing: DefaultLevelSpacing,
		NodeSpacing:  DefaultNodeSpacing,
	}
}

func (o Options) withDefaults() Options {
	if o.Direction == "" {
		o.Direction = DirectionHorizontal
	}

	if o.LevelSpacing <= 0 {
		o.LevelSpacing = DefaultLevelSpacing
	}

	if o.NodeSpacing <= 0 {
		o.NodeSpacing = DefaultNodeSpacing
	}

	return o
}

// Result holds the repositioned nodes, in input order, and the level of each node.
type Result struct {
	Nodes  []models.Node
	Levels map[string]int
}

// Positions returns the new coordinates keyed by node id.
func (r Result) Positions() map[string]models.Position {
	positions := make(map[string]models.Position, len(r.Nodes))
	for _, node := range r.Nodes {
		positions[node.ID] = node.Position
	}

	return positions
}

// Layout computes positions for nodes. The input slices are not modified; edges
// whose endpoints are missing are ignored.
func Layout(nodes []models.Node, edges []models.Edge, opts Options) Result {
	opts = opts.withDefaults()
	levels := AssignLevels(nodes, edges)

	slots := make(map[int]int)
	out := make([]models.Node, len(nodes))

	for i, node := range nodes {
		level := levels[node.ID]
		slot := slots[level]
		slots[level]++

		position := opts.Origin
		levelOffset := float64(level) * opts.LevelSpacing
		slotOffset := float64(slot) * opts.NodeSpacing

		if opts.Direction == DirectionVertical {
			position = position.Offset(models.Position{X: slotOffset, Y: levelOffset})
		} else {
			position = position.Offset(models.Position{X: levelOffset, Y: slotOffset})
		}

		repositioned := node.Clone()
		repositioned.Position = position
		out[i] = repositioned
	}

	return Result{Nodes: out, Levels: levels}
}

// AssignLevels returns the breadth-first level of every node.
func AssignLevels(nodes []models.Node, edges []models.Edge) map[string]int {
	known := make(map[string]bool, len(nodes))
	for _, node := range nodes {
		known[node.ID] = true
	}

	children := make(map[string][]string, len(nodes))
	hasParent := make(map[string]bool, len(nodes))

	for _, edge := range edges {
		if !known[edge.Source] || !known[edge.Target] {
			continue
		}

		children[edge.Source] = append(children[edge.Source], edge.Target)
		hasParent[edge.Target] = true
	}

	levels := make(map[string]int, len(nodes))
	visited := make(map[string]bool, len(nodes))

	roots := make([]string, 0)

	for _, node := range nodes {
		if node.IsTrigger() {
			roots = append(roots, node.ID)
		}
	}

	bfs(roots, children, levels, visited)

	roots = roots[:0]

	for _, node := range nodes {
		if !visited[node.ID] && !hasParent[node.ID] {
			roots = append(roots, node.ID)
		}
	}

	bfs(roots, children, levels, visited)

	for _, node := range nodes {
		if !visited[node.ID] {
			levels[node.ID] = 0
		}
	}

	return levels
}

func bfs(roots []string, children map[string][]string, levels map[string]int, visited map[string]bool) {
	queue := make([]string, 0, len(roots))

	for _, root := range roots {
		if visited[root] {
			continue
		}

		visited[root] = true
		levels[root] = 0
		queue = append(queue, root)
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, child := range children[current] {
			if visited[child] {
				continue
			}

			visited[child] = true
			levels[child] = levels[current] + 1
			queue = append(queue, child)
		}
	}
}
