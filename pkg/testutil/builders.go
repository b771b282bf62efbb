// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"github.com/dukex/leadflow/pkg/models"
	"github.com/google/uuid"
)

// CreateTestNode creates a test action Node with default values that can be overridden.
// Config values use JSON types so nodes survive a store round trip unchanged.
func CreateTestNode(overrides ...func(*models.Node)) models.Node {
	node := models.Node{
		ID:   uuid.New().String(),
		Kind: models.NodeKindAction,
		Config: map[string]any{
			models.ConfigActionType: "send_email",
			models.ConfigParameters: map[string]any{"template": "welcome"},
		},
		Position: models.Position{X: 100, Y: 200},
	}

	for _, override := range overrides {
		override(&node)
	}

	return node
}

// WithTriggerNode configures the node as a lead-created trigger.
func WithTriggerNode() func(*models.Node) {
	return func(n *models.Node) {
		n.Kind = models.NodeKindTrigger
		n.Config = map[string]any{models.ConfigTriggerType: "lead_created"}
	}
}

// WithConditionNode configures the node as a condition on the lead source.
func WithConditionNode() func(*models.Node) {
	return func(n *models.Node) {
		n.Kind = models.NodeKindCondition
		n.Config = map[string]any{
			models.ConfigConditionType: "if",
			models.ConfigRules: []any{
				map[string]any{"field": "lead.source", "operator": "equals", "value": "zillow"},
			},
		}
	}
}

// WithKind sets the node kind and clears its config.
func WithKind(kind models.NodeKind) func(*models.Node) {
	return func(n *models.Node) {
		n.Kind = kind
		n.Config = map[string]any{}
	}
}

// WithConfig sets the node configuration.
func WithConfig(config map[string]any) func(*models.Node) {
	return func(n *models.Node) {
		n.Config = config
	}
}

// WithPosition sets the node position.
func WithPosition(x, y float64) func(*models.Node) {
	return func(n *models.Node) {
		n.Position = models.Position{X: x, Y: y}
	}
}

// WithID sets the node ID.
func WithID(id string) func(*models.Node) {
	return func(n *models.Node) {
		n.ID = id
	}
}

// CreateTestEdge creates an edge between two nodes.
func CreateTestEdge(sourceNodeID, targetNodeID string, overrides ...func(*models.Edge)) models.Edge {
	edge := models.Edge{
		ID:     uuid.New().String(),
		Source: sourceNodeID,
		Target: targetNodeID,
	}

	for _, override := range overrides {
		override(&edge)
	}

	return edge
}

// WithEdgeID sets the edge ID.
func WithEdgeID(id string) func(*models.Edge) {
	return func(e *models.Edge) {
		e.ID = id
	}
}

// WithSourceHandle sets the edge source handle.
func WithSourceHandle(handle string) func(*models.Edge) {
	return func(e *models.Edge) {
		e.SourceHandle = models.StringPtr(handle)
	}
}

// CreateTestWorkflow creates an empty draft workflow.
func CreateTestWorkflow(overrides ...func(*models.Workflow)) *models.Workflow {
	workflow := &models.Workflow{
		ID:          uuid.New().String(),
		Name:        "Test Workflow",
		Description: "A workflow for testing",
		Status:      models.WorkflowStatusDraft,
		Owner:       "test-user",
		Document: models.Document{
			Nodes: []models.Node{},
			Edges: []models.Edge{},
		},
	}

	for _, override := range overrides {
		override(workflow)
	}

	return workflow
}

// CreateTestWorkflowWithNodes creates a draft workflow holding a valid graph:
// trigger-1 -> condition-1 -(true)-> action-1, condition-1 -(false)-> action-2.
func CreateTestWorkflowWithNodes(overrides ...func(*models.Workflow)) *models.Workflow {
	withGraph := func(w *models.Workflow) {
		w.Document = LeadIntakeDocument()
	}

	return CreateTestWorkflow(append([]func(*models.Workflow){withGraph}, overrides...)...)
}

// LeadIntakeDocument returns the graph used by CreateTestWorkflowWithNodes.
func LeadIntakeDocument() models.Document {
	return models.Document{
		Nodes: []models.Node{
			CreateTestNode(WithTriggerNode(), WithID("trigger-1"), WithPosition(0, 0)),
			CreateTestNode(WithConditionNode(), WithID("condition-1"), WithPosition(250, 0)),
			CreateTestNode(WithID("action-1"), WithPosition(500, 0)),
			CreateTestNode(WithID("action-2"), WithPosition(500, 120), WithConfig(map[string]any{
				models.ConfigActionType: "assign_agent",
				models.ConfigParameters: map[string]any{"team": "inside-sales", "priority": float64(2)},
			})),
		},
		Edges: []models.Edge{
			CreateTestEdge("trigger-1", "condition-1", WithEdgeID("edge-1")),
			CreateTestEdge("condition-1", "action-1", WithEdgeID("edge-2"), WithSourceHandle(models.HandleTrue)),
			CreateTestEdge("condition-1", "action-2", WithEdgeID("edge-3"), WithSourceHandle(models.HandleFalse)),
		},
	}
}
