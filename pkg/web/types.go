// Package web provides HTTP request and response types for the workflow API.
package web

import (
	"github.com/dukex/leadflow/pkg/graph"
	"github.com/dukex/leadflow/pkg/layout"
	"github.com/dukex/leadflow/pkg/models"
	"github.com/dukex/leadflow/pkg/services"
	"github.com/dukex/leadflow/pkg/validation"
)

// CreateWorkflowRequest represents the request body for creating a new workflow.
// Document is optional; without it the workflow starts with an empty graph.
type CreateWorkflowRequest struct {
	Name        string           `json:"name"               validate:"required,min=3"`
	Description string           `json:"description"`
	Owner       string           `json:"owner"              validate:"required"`
	Document    *models.Document `json:"document,omitempty"`
}

// UpdateWorkflowRequest represents the request body for updating an existing workflow.
// All fields are optional to support partial updates.
type UpdateWorkflowRequest struct {
	Name        *string `json:"name,omitempty"        validate:"omitempty,min=3"`
	Description *string `json:"description,omitempty"`
}

// PositionRequest is a canvas coordinate.
type PositionRequest struct {
	X *float64 `json:"x" validate:"required"`
	Y *float64 `json:"y" validate:"required"`
}

func (p PositionRequest) toPosition() models.Position {
	var position models.Position

	if p.X != nil {
		position.X = *p.X
	}

	if p.Y != nil {
		position.Y = *p.Y
	}

	return position
}

// CreateNodeRequest represents the request body for adding a node.
type CreateNodeRequest struct {
	Kind     string          `json:"kind"     validate:"required,oneof=trigger action condition delay loop"`
	Position PositionRequest `json:"position"`
	Config   map[string]any  `json:"config"`
}

// UpdateNodeConfigRequest carries the keys merged into a node's config.
type UpdateNodeConfigRequest struct {
	Config map[string]any `json:"config" validate:"required"`
}

// ConnectRequest represents the request body for creating an edge. Handles are
// checked by the validator, not here, so half-built graphs can still be saved.
type ConnectRequest struct {
	Source       string `json:"source"                 validate:"required"`
	Target       string `json:"target"                 validate:"required"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
	Label        string `json:"label,omitempty"`
}

// UpdateEdgeRequest lists the edge fields to change. An empty string clears a
// handle or label.
type UpdateEdgeRequest struct {
	Source       *string `json:"source,omitempty"       validate:"omitempty,min=1"`
	Target       *string `json:"target,omitempty"       validate:"omitempty,min=1"`
	SourceHandle *string `json:"sourceHandle,omitempty"`
	TargetHandle *string `json:"targetHandle,omitempty"`
	Label        *string `json:"label,omitempty"`
}

func (r UpdateEdgeRequest) toPatch() graph.EdgePatch {
	return graph.EdgePatch{
		Source:       r.Source,
		Target:       r.Target,
		SourceHandle: r.SourceHandle,
		TargetHandle: r.TargetHandle,
		Label:        r.Label,
	}
}

// LayoutRequest tunes auto-layout. Zero values fall back to the defaults.
type LayoutRequest struct {
	Direction    string           `json:"direction,omitempty"    validate:"omitempty,oneof=horizontal vertical"`
	LevelSpacing float64          `json:"levelSpacing,omitempty" validate:"gte=0"`
	NodeSpacing  float64          `json:"nodeSpacing,omitempty"  validate:"gte=0"`
	Origin       *PositionRequest `json:"origin,omitempty"`
}

func (r LayoutRequest) toOptions() layout.Options {
	opts := layout.Options{
		Direction:    layout.Direction(r.Direction),
		LevelSpacing: r.LevelSpacing,
		NodeSpacing:  r.NodeSpacing,
	}

	if r.Origin != nil {
		opts.Origin = r.Origin.toPosition()
	}

	return opts
}

// ListWorkflowsResponse is the paginated workflow listing.
type ListWorkflowsResponse struct {
	Workflows   []*models.Workflow `json:"workflows"`
	TotalCount  int64              `json:"total_count"`
	HasNextPage bool               `json:"has_next_page"`
	Pagination  PaginationResponse `json:"pagination"`
	Sorting     SortingResponse    `json:"sorting"`
}

type PaginationResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type SortingResponse struct {
	SortBy    string `json:"sort_by"`
	SortOrder string `json:"sort_order"`
}

// PublishResponse is returned by publish: the record and the validator output
// that allowed it, warnings included.
type PublishResponse struct {
	Workflow   *models.Workflow  `json:"workflow"`
	Validation validation.Result `json:"validation"`
}

// MutationResponse is returned by every graph edit.
type MutationResponse = services.MutationResult
