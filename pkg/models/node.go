// Package models defines the core domain models for lead automation workflow graphs
package models

import (
	"maps"
	"math"
)

// NodeKind is the discriminant of a workflow node.
type NodeKind string

const (
	NodeKindTrigger   NodeKind = "trigger"   // Entry point, starts a run on an event class
	NodeKindAction    NodeKind = "action"    // Single side-effecting step
	NodeKindCondition NodeKind = "condition" // Branches on rules or a default path
	NodeKindDelay     NodeKind = "delay"     // Suspends the run for a duration
	NodeKindLoop      NodeKind = "loop"      // Repeats its outgoing sub-graph up to a bound
)

// NodeKinds lists every kind in declaration order.
var NodeKinds = []NodeKind{
	NodeKindTrigger,
	NodeKindAction,
	NodeKindCondition,
	NodeKindDelay,
	NodeKindLoop,
}

// IsValid reports whether k is one of the known node kinds.
func (k NodeKind) IsValid() bool {
	switch k {
	case NodeKindTrigger, NodeKindAction, NodeKindCondition, NodeKindDelay, NodeKindLoop:
		return true
	default:
		return false
	}
}

// Position is a canvas coordinate. It never affects validity or execution order.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Offset returns p moved by d.
func (p Position) Offset(d Position) Position {
	return Position{X: p.X + d.X, Y: p.Y + d.Y}
}

// IsFinite reports whether both coordinates are real numbers. NaN and infinities
// can come from YAML documents but cannot be drawn or encoded as JSON.
func (p Position) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Node represents a vertex in an automation graph.
type Node struct {
	ID       string         `json:"id"       yaml:"id"       validate:"required"`
	Kind     NodeKind       `json:"kind"     yaml:"kind"     validate:"required,oneof=trigger action condition delay loop"`
	Config   map[string]any `json:"config"   yaml:"config"`
	Position Position       `json:"position" yaml:"position"`
}

// Helper methods for kind checking.
func (n *Node) IsTrigger() bool {
	return n.Kind == NodeKindTrigger
}

func (n *Node) IsCondition() bool {
	return n.Kind == NodeKindCondition
}

// Clone returns a copy of the node whose config map is independent of the original.
// Nested values inside the config are shared.
func (n Node) Clone() Node {
	clone := n
	clone.Config = CloneConfig(n.Config)

	return clone
}

// CloneConfig copies the top level of a config map. A nil map yields an empty map.
func CloneConfig(config map[string]any) map[string]any {
	out := make(map[string]any, len(config))
	maps.Copy(out, config)

	return out
}
