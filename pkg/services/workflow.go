package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/dukex/leadflow/pkg/document"
	"github.com/dukex/leadflow/pkg/events"
	"github.com/dukex/leadflow/pkg/models"
	"github.com/dukex/leadflow/pkg/otelhelper"
	"github.com/dukex/leadflow/pkg/persistence"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// Workflow manages workflow records: listing, creation, metadata edits and deletion.
// Graph edits go through Editor.
type Workflow struct {
	deps

	persistence persistence.Persistence
}

// NewWorkflow creates a new workflow service.
func NewWorkflow(persistence persistence.Persistence, opts ...Option) *Workflow {
	return &Workflow{
		deps:        newDeps("workflow_service", opts),
		persistence: persistence,
	}
}

// HealthCheck checks the health of the persistence layer.
func (w *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	if w.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := w.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// ListWorkflowsRequest contains options for listing workflows.
type ListWorkflowsRequest struct {
	// Pagination
	Limit  int
	Offset int

	// Filtering
	OwnerID string
	Status  *models.WorkflowStatus

	// Sorting
	SortBy    string
	SortOrder string
}

// ListWorkflowsResponse contains the result of listing workflows.
type ListWorkflowsResponse struct {
	Workflows   []*models.Workflow `json:"workflows"`
	TotalCount  int64              `json:"total_count"`
	HasNextPage bool               `json:"has_next_page"`

	// Request is the listing request after defaults and clamping were applied.
	Request ListWorkflowsRequest `json:"-"`
}

// ListWorkflows retrieves workflows with filtering, sorting, and pagination.
func (w *Workflow) ListWorkflows(ctx context.Context, req ListWorkflowsRequest) (*ListWorkflowsResponse, error) {
	ctx, span := otelhelper.StartSpan(ctx, w.tracer, "workflow.list")
	defer span.End()

	if err := w.validateListWorkflowsRequest(&req); err != nil {
		return nil, err
	}

	result, err := w.persistence.ListWorkflows(ctx, persistence.ListWorkflowsOptions{
		Limit:     req.Limit,
		Offset:    req.Offset,
		Owner:     req.OwnerID,
		Status:    req.Status,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		if persistence.IsInvalidSortField(err) {
			return nil, ErrInvalidSortField
		}

		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	return &ListWorkflowsResponse{
		Workflows:   result.Workflows,
		TotalCount:  result.TotalCount,
		HasNextPage: result.HasNextPage,
		Request:     req,
	}, nil
}

// validateListWorkflowsRequest validates and sets defaults for the request.
func (w *Workflow) validateListWorkflowsRequest(req *ListWorkflowsRequest) error {
	if req.Limit <= 0 {
		req.Limit = persistence.DefaultListLimit
	}

	if req.Limit > persistence.MaxListLimit {
		req.Limit = persistence.MaxListLimit
	}

	if req.Offset < 0 {
		req.Offset = 0
	}

	if req.SortBy == "" {
		req.SortBy = persistence.SortByCreatedAt
	}

	if req.SortOrder == "" {
		req.SortOrder = "desc"
	}

	allowedSorts := []string{persistence.SortByCreatedAt, persistence.SortByUpdatedAt, persistence.SortByName}

	if !slices.Contains(allowedSorts, req.SortBy) {
		return NewValidationError(
			"validateListWorkflowsRequest",
			"INVALID_SORT_FIELD",
			fmt.Sprintf("invalid sort field '%s', allowed: %s", req.SortBy, strings.Join(allowedSorts, ", ")),
			ErrInvalidSortField,
		)
	}

	if req.SortOrder != "asc" && req.SortOrder != "desc" {
		return NewValidationError(
			"validateListWorkflowsRequest",
			"INVALID_SORT_ORDER",
			fmt.Sprintf("invalid sort order '%s', allowed: asc, desc", req.SortOrder),
			ErrInvalidSortOrder,
		)
	}

	if req.Status != nil && !req.Status.IsValid() {
		return NewValidationError(
			"validateListWorkflowsRequest",
			"INVALID_STATUS",
			fmt.Sprintf("invalid status '%s'", *req.Status),
			ErrInvalidStatus,
		)
	}

	if req.OwnerID != "" {
		req.OwnerID = strings.TrimSpace(req.OwnerID)
		if req.OwnerID == "" {
			return ErrEmptyOwnerID
		}
	}

	return nil
}

// FetchByID retrieves a workflow by its ID.
func (w *Workflow) FetchByID(ctx context.Context, id string) (*models.Workflow, error) {
	ctx, span := otelhelper.StartSpan(ctx, w.tracer, "workflow.fetch", attribute.String(otelhelper.WorkflowIDKey, id))
	defer span.End()

	workflow, err := w.persistence.WorkflowByID(ctx, id)
	if err != nil {
		if !persistence.IsWorkflowNotFound(err) {
			otelhelper.SetError(span, err)
		}

		return nil, err
	}

	return workflow, nil
}

// Create stores a new draft workflow. A supplied document must pass the same
// structural checks as an import; it may still fail validation.
func (w *Workflow) Create(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	ctx, span := otelhelper.StartSpan(ctx, w.tracer, "workflow.create")
	defer span.End()

	if workflow == nil {
		return nil, ErrWorkflowNil
	}

	if strings.TrimSpace(workflow.Name) == "" {
		return nil, ErrWorkflowNameRequired
	}

	err := document.Check(workflow.Document)
	if err != nil {
		return nil, err
	}

	workflow.ID = uuid.New().String()
	workflow.Status = models.WorkflowStatusDraft
	workflow.PublishedAt = nil
	workflow.Document = emptyListsAsNeeded(workflow.Document)

	span.SetAttributes(attribute.String(otelhelper.WorkflowIDKey, workflow.ID))

	err = w.persistence.SaveWorkflow(ctx, workflow)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}

	w.logger.InfoContext(ctx, "Workflow created", "workflow_id", workflow.ID, "nodes", len(workflow.Document.Nodes))

	w.publish(ctx, workflow.ID, &events.WorkflowCreated{
		BaseEvent: events.NewBaseEvent(events.WorkflowCreatedEvent, workflow.ID),
		Name:      workflow.Name,
		Owner:     workflow.Owner,
	})

	return workflow, nil
}

// UpdateWorkflowRequest changes record metadata. Nil fields are left as they are.
type UpdateWorkflowRequest struct {
	Name        *string
	Description *string
}

// Update modifies the name or description of a workflow that is not published.
func (w *Workflow) Update(ctx context.Context, workflowID string, req UpdateWorkflowRequest) (*models.Workflow, error) {
	ctx, span := otelhelper.StartSpan(ctx, w.tracer, "workflow.update", attribute.String(otelhelper.WorkflowIDKey, workflowID))
	defer span.End()

	unlock := w.locks.Lock(workflowID)
	defer unlock()

	existing, err := w.persistence.WorkflowByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if !existing.IsEditable() {
		return nil, ErrCannotModifyPublished
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, ErrWorkflowNameRequired
		}

		existing.Name = *req.Name
	}

	if req.Description != nil {
		existing.Description = *req.Description
	}

	err = w.persistence.SaveWorkflow(ctx, existing)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to update workflow: %w", err)
	}

	return existing, nil
}

// Delete removes a workflow by its ID.
func (w *Workflow) Delete(ctx context.Context, workflowID string) error {
	ctx, span := otelhelper.StartSpan(ctx, w.tracer, "workflow.delete", attribute.String(otelhelper.WorkflowIDKey, workflowID))
	defer span.End()

	unlock := w.locks.Lock(workflowID)
	defer unlock()

	err := w.persistence.DeleteWorkflow(ctx, workflowID)
	if err != nil {
		if !persistence.IsWorkflowNotFound(err) {
			otelhelper.SetError(span, err)
		}

		return err
	}

	w.logger.InfoContext(ctx, "Workflow deleted", "workflow_id", workflowID)

	w.publish(ctx, workflowID, &events.WorkflowDeleted{
		BaseEvent: events.NewBaseEvent(events.WorkflowDeletedEvent, workflowID),
	})

	return nil
}

func emptyListsAsNeeded(doc models.Document) models.Document {
	if doc.Nodes == nil {
		doc.Nodes = make([]models.Node, 0)
	}

	if doc.Edges == nil {
		doc.Edges = make([]models.Edge, 0)
	}

	return doc
}
