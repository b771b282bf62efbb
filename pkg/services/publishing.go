package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dukex/leadflow/pkg/events"
	"github.com/dukex/leadflow/pkg/models"
	"github.com/dukex/leadflow/pkg/otelhelper"
	"github.com/dukex/leadflow/pkg/persistence"
	"github.com/dukex/leadflow/pkg/validation"
	"go.opentelemetry.io/otel/attribute"
)

// Publishing moves workflows between draft, published and unpublished. Only a
// graph without structural errors can be published; warnings never block it.
type Publishing struct {
	deps

	persistence persistence.Persistence
	now         func() time.Time
}

// NewPublishing creates a new workflow publishing service.
func NewPublishing(persistence persistence.Persistence, opts ...Option) *Publishing {
	return &Publishing{
		deps:        newDeps("publishing_service", opts),
		persistence: persistence,
		now:         time.Now,
	}
}

// PublishWorkflow validates the stored graph and marks the workflow published.
// Validation errors are returned as a *PublishError carrying the full result.
func (p *Publishing) PublishWorkflow(ctx context.Context, workflowID string) (*models.Workflow, validation.Result, error) {
	ctx, span := otelhelper.StartSpan(ctx, p.tracer, "workflow.publish", attribute.String(otelhelper.WorkflowIDKey, workflowID))
	defer span.End()

	unlock := p.locks.Lock(workflowID)
	defer unlock()

	workflow, err := p.persistence.WorkflowByID(ctx, workflowID)
	if err != nil {
		recordError(span, err)

		return nil, validation.Result{}, err
	}

	result := validation.ValidateDocument(workflow.Document)

	span.SetAttributes(
		attribute.Bool(otelhelper.ValidKey, result.IsValid),
		attribute.Int(otelhelper.ErrorCountKey, len(result.Errors)),
		attribute.Int(otelhelper.WarningCountKey, len(result.Warnings)),
	)

	if workflow.Status == models.WorkflowStatusPublished {
		return nil, result, ErrAlreadyPublished
	}

	if !result.IsValid {
		p.logger.InfoContext(ctx, "Workflow not published, graph has errors",
			"workflow_id", workflowID,
			"errors", result.ErrorMessages(),
		)

		return nil, result, &PublishError{WorkflowID: workflowID, Result: result}
	}

	publishedAt := p.now().UTC()
	workflow.Status = models.WorkflowStatusPublished
	workflow.PublishedAt = &publishedAt

	err = p.persistence.SaveWorkflow(ctx, workflow)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, result, fmt.Errorf("failed to publish workflow: %w", err)
	}

	p.logger.InfoContext(ctx, "Workflow published", "workflow_id", workflowID, "warnings", len(result.Warnings))

	p.publish(ctx, workflowID, &events.WorkflowPublished{
		BaseEvent:   events.NewBaseEvent(events.WorkflowPublishedEvent, workflowID),
		PublishedAt: publishedAt,
		Document:    workflow.Document,
	})

	return workflow, result, nil
}

// UnpublishWorkflow withdraws a published workflow so its graph can be edited again.
// PublishedAt is kept as the time of the last publication.
func (p *Publishing) UnpublishWorkflow(ctx context.Context, workflowID string) (*models.Workflow, error) {
	ctx, span := otelhelper.StartSpan(ctx, p.tracer, "workflow.unpublish", attribute.String(otelhelper.WorkflowIDKey, workflowID))
	defer span.End()

	unlock := p.locks.Lock(workflowID)
	defer unlock()

	workflow, err := p.persistence.WorkflowByID(ctx, workflowID)
	if err != nil {
		recordError(span, err)

		return nil, err
	}

	if workflow.Status != models.WorkflowStatusPublished {
		return nil, ErrNotPublished
	}

	workflow.Status = models.WorkflowStatusUnpublished

	err = p.persistence.SaveWorkflow(ctx, workflow)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to unpublish workflow: %w", err)
	}

	p.logger.InfoContext(ctx, "Workflow unpublished", "workflow_id", workflowID)

	p.publish(ctx, workflowID, &events.WorkflowUpdated{
		BaseEvent: events.NewBaseEvent(events.WorkflowUpdatedEvent, workflowID),
		NodeCount: len(workflow.Document.Nodes),
		EdgeCount: len(workflow.Document.Edges),
		IsValid:   true,
	})

	return workflow, nil
}
