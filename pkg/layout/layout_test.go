package layout

import (
	"testing"

	"github.com/dukex/leadflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func node(id string, kind models.NodeKind) models.Node {
	return models.Node{ID: id, Kind: kind, Config: map[string]any{}, Position: models.Position{X: -7, Y: 3}}
}

func edge(id, source, target string) models.Edge {
	return models.Edge{ID: id, Source: source, Target: target}
}

// branchingGraph: T1 -> A1 -> C1 -> {A2, A3}, T1 -> A3, A3 -> L1 -> A1 (back-edge).
func branchingGraph() ([]models.Node, []models.Edge) {
	nodes := []models.Node{
		node("T1", models.NodeKindTrigger),
		node("A1", models.NodeKindAction),
		node("C1", models.NodeKindCondition),
		node("A2", models.NodeKindAction),
		node("A3", models.NodeKindAction),
		node("L1", models.NodeKindLoop),
	}
	edges := []models.Edge{
		edge("e1", "T1", "A1"),
		edge("e2", "A1", "C1"),
		edge("e3", "C1", "A2"),
		edge("e4", "C1", "A3"),
		edge("e5", "T1", "A3"),
		edge("e6", "A3", "L1"),
		edge("e7", "L1", "A1"),
	}

	return nodes, edges
}

func TestAssignLevels_ShallowestDiscoveryWins(t *testing.T) {
	nodes, edges := branchingGraph()

	levels := AssignLevels(nodes, edges)

	assert.Equal(t, map[string]int{
		"T1": 0,
		"A1": 1,
		"A3": 1,
		"C1": 2,
		"L1": 2,
		"A2": 3,
	}, levels)
}

func TestAssignLevels_TerminatesOnCycles(t *testing.T) {
	nodes := []models.Node{node("T1", models.NodeKindTrigger), node("L1", models.NodeKindLoop), node("A1", models.NodeKindAction)}
	edges := []models.Edge{edge("e1", "T1", "L1"), edge("e2", "L1", "A1"), edge("e3", "A1", "L1"), edge("e4", "A1", "A1")}

	levels := AssignLevels(nodes, edges)

	assert.Equal(t, map[string]int{"T1": 0, "L1": 1, "A1": 2}, levels)
}

func TestAssignLevels_UnreachedNodes(t *testing.T) {
	nodes := []models.Node{
		node("T1", models.NodeKindTrigger),
		node("X1", models.NodeKindAction),
		node("X2", models.NodeKindDelay),
		node("Y1", models.NodeKindAction),
		node("Y2", models.NodeKindAction),
	}
	edges := []models.Edge{
		edge("e1", "X1", "X2"),
		edge("e2", "Y1", "Y2"),
		edge("e3", "Y2", "Y1"),
		edge("e4", "T1", "ghost"),
	}

	levels := AssignLevels(nodes, edges)

	assert.Equal(t, map[string]int{"T1": 0, "X1": 0, "X2": 1, "Y1": 0, "Y2": 0}, levels)
}

func TestLayout_TriggersHoldMinimumLevel(t *testing.T) {
	nodes, edges := branchingGraph()

	result := Layout(nodes, edges, DefaultOptions())

	minLevel := result.Levels["T1"]
	for _, level := range result.Levels {
		assert.GreaterOrEqual(t, level, minLevel)
	}
}

func TestLayout_EveryNodeFollowsAPredecessor(t *testing.T) {
	nodes, edges := branchingGraph()

	result := Layout(nodes, edges, DefaultOptions())

	predecessors := make(map[string][]string)
	for _, e := range edges {
		predecessors[e.Target] = append(predecessors[e.Target], e.Source)
	}

	for _, n := range nodes {
		if n.IsTrigger() || len(predecessors[n.ID]) == 0 {
			continue
		}

		exceedsOne := false
		for _, p := range predecessors[n.ID] {
			if result.Levels[n.ID] > result.Levels[p] {
				exceedsOne = true
			}
		}

		assert.True(t, exceedsOne, "node %s does not exceed any predecessor", n.ID)
	}
}

func TestLayout_Coordinates(t *testing.T) {
	nodes, edges := branchingGraph()

	result := Layout(nodes, edges, Options{LevelSpacing: 100, NodeSpacing: 10, Origin: models.Position{X: 5, Y: 5}})

	positions := result.Positions()
	assert.Equal(t, models.Position{X: 5, Y: 5}, positions["T1"])
	assert.Equal(t, models.Position{X: 105, Y: 5}, positions["A1"])
	assert.Equal(t, models.Position{X: 105, Y: 15}, positions["A3"])
	assert.Equal(t, models.Position{X: 205, Y: 5}, positions["C1"])
	assert.Equal(t, models.Position{X: 205, Y: 15}, positions["L1"])
	assert.Equal(t, models.Position{X: 305, Y: 5}, positions["A2"])
}

func TestLayout_VerticalDirection(t *testing.T) {
	nodes := []models.Node{node("T1", models.NodeKindTrigger), node("A1", models.NodeKindAction), node("A2", models.NodeKindAction)}
	edges := []models.Edge{edge("e1", "T1", "A1"), edge("e2", "T1", "A2")}

	result := Layout(nodes, edges, Options{Direction: DirectionVertical})

	positions := result.Positions()
	assert.Equal(t, models.Position{X: 0, Y: 0}, positions["T1"])
	assert.Equal(t, models.Position{X: 0, Y: DefaultLevelSpacing}, positions["A1"])
	assert.Equal(t, models.Position{X: DefaultNodeSpacing, Y: DefaultLevelSpacing}, positions["A2"])
}

func TestLayout_IsIdempotent(t *testing.T) {
	nodes, edges := branchingGraph()

	first := Layout(nodes, edges, DefaultOptions())
	second := Layout(first.Nodes, edges, DefaultOptions())

	assert.Equal(t, first.Nodes, second.Nodes)
	assert.Equal(t, first.Levels, second.Levels)
}

func TestLayout_OnlyPositionChanges(t *testing.T) {
	nodes, edges := branchingGraph()
	nodes[1].Config["actionType"] = "send_email"

	result := Layout(nodes, edges, DefaultOptions())

	require.Len(t, result.Nodes, len(nodes))

	for i := range nodes {
		assert.Equal(t, nodes[i].ID, result.Nodes[i].ID)
		assert.Equal(t, nodes[i].Kind, result.Nodes[i].Kind)
		assert.Equal(t, nodes[i].Config, result.Nodes[i].Config)
		assert.Equal(t, models.Position{X: -7, Y: 3}, nodes[i].Position, "input must not be modified")
	}
}

func TestLayout_NoOverlap(t *testing.T) {
	nodes, edges := branchingGraph()
	nodes = append(nodes, node("Z1", models.NodeKindAction), node("Z2", models.NodeKindAction))

	result := Layout(nodes, edges, DefaultOptions())

	seen := make(map[models.Position]string)
	for _, n := range result.Nodes {
		other, taken := seen[n.Position]
		assert.False(t, taken, "%s overlaps %s", n.ID, other)
		seen[n.Position] = n.ID
	}
}
