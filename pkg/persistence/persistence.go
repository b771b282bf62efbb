// Package persistence provides the storage abstraction for workflow records.
package persistence

import (
	"context"

	"github.com/dukex/leadflow/pkg/models"
)

// Persistence stores workflow records. Implementations must return errors that
// satisfy IsWorkflowNotFound when a record does not exist.
type Persistence interface {
	ListWorkflows(ctx context.Context, opts ListWorkflowsOptions) (*WorkflowListResult, error)
	SaveWorkflow(ctx context.Context, workflow *models.Workflow) error
	WorkflowByID(ctx context.Context, id string) (*models.Workflow, error)
	DeleteWorkflow(ctx context.Context, id string) error
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}

// Sort fields accepted by ListWorkflowsOptions.SortBy.
const (
	SortByCreatedAt = "created_at"
	SortByUpdatedAt = "updated_at"
	SortByName      = "name"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// ListWorkflowsOptions filters, sorts and paginates ListWorkflows.
type ListWorkflowsOptions struct {
	Owner     string
	Status    *models.WorkflowStatus
	SortBy    string // created_at, updated_at or name
	SortOrder string // asc or desc
	Limit     int
	Offset    int
}

// WorkflowListResult is one page of workflows.
type WorkflowListResult struct {
	Workflows   []*models.Workflow `json:"workflows"`
	TotalCount  int64              `json:"total_count"`
	HasNextPage bool               `json:"has_next_page"`
}

// Normalize applies defaults and rejects unknown sort fields.
func (o ListWorkflowsOptions) Normalize() (ListWorkflowsOptions, error) {
	if o.Limit <= 0 || o.Limit > MaxListLimit {
		o.Limit = DefaultListLimit
	}

	if o.Offset < 0 {
		o.Offset = 0
	}

	if o.SortBy == "" {
		o.SortBy = SortByCreatedAt
	}

	if o.SortOrder == "" {
		o.SortOrder = "desc"
	}

	switch o.SortBy {
	case SortByCreatedAt, SortByUpdatedAt, SortByName:
	default:
		return o, NewSortFieldError(o.SortBy)
	}

	if o.SortOrder != "asc" && o.SortOrder != "desc" {
		return o, NewSortFieldError(o.SortBy + " " + o.SortOrder)
	}

	return o, nil
}
