package models

import "time"

// WorkflowStatus represents the lifecycle state of a workflow.
type WorkflowStatus string

const (
	WorkflowStatusDraft       WorkflowStatus = "draft"       // Editable, not executable
	WorkflowStatusPublished   WorkflowStatus = "published"   // Structurally valid snapshot handed to execution
	WorkflowStatusUnpublished WorkflowStatus = "unpublished" // Withdrawn from execution, editable again
)

// WorkflowStatuses lists every valid status.
var WorkflowStatuses = []WorkflowStatus{WorkflowStatusDraft, WorkflowStatusPublished, WorkflowStatusUnpublished}

// IsValid reports whether s is a known status.
func (s WorkflowStatus) IsValid() bool {
	switch s {
	case WorkflowStatusDraft, WorkflowStatusPublished, WorkflowStatusUnpublished:
		return true
	default:
		return false
	}
}

// Document is the serialized, transport-safe representation of a workflow graph.
// Nodes and edges appear in insertion order and carry no editor-only state.
type Document struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}

// Workflow is the persisted record of a lead automation. The graph is kept as an
// exported document so the store never sees editor state.
type Workflow struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"                   validate:"required,min=3"`
	Description string         `json:"description"`
	Status      WorkflowStatus `json:"status"                 validate:"required"`
	Owner       string         `json:"owner"`
	Document    Document       `json:"document"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	PublishedAt *time.Time     `json:"published_at,omitempty"`
}

// IsDraft reports whether the workflow has never been published.
func (w *Workflow) IsDraft() bool {
	return w.Status == WorkflowStatusDraft
}

// IsEditable reports whether the graph may be changed. Published workflows are
// frozen until they are unpublished.
func (w *Workflow) IsEditable() bool {
	return w.Status != WorkflowStatusPublished
}
