package graph

import (
	"strconv"

	"github.com/google/uuid"
)

// IDGenerator produces candidate identifiers for new nodes and edges. The graph
// rejects candidates already in use and asks again, so generators need not track
// imported identifiers themselves.
type IDGenerator interface {
	NewNodeID() string
	NewEdgeID() string
}

// UUIDGenerator issues random UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewNodeID() string { return uuid.NewString() }

func (UUIDGenerator) NewEdgeID() string { return uuid.NewString() }

// SequenceGenerator issues monotonic identifiers such as "node-1" and "edge-1".
// The zero value is ready to use.
type SequenceGenerator struct {
	nodes int
	edges int
}

func (g *SequenceGenerator) NewNodeID() string {
	g.nodes++

	return "node-" + strconv.Itoa(g.nodes)
}

func (g *SequenceGenerator) NewEdgeID() string {
	g.edges++

	return "edge-" + strconv.Itoa(g.edges)
}
