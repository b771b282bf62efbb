package services

import (
	"context"
	"fmt"

	"github.com/dukex/leadflow/pkg/document"
	"github.com/dukex/leadflow/pkg/events"
	"github.com/dukex/leadflow/pkg/graph"
	"github.com/dukex/leadflow/pkg/layout"
	"github.com/dukex/leadflow/pkg/models"
	"github.com/dukex/leadflow/pkg/otelhelper"
	"github.com/dukex/leadflow/pkg/persistence"
	"github.com/dukex/leadflow/pkg/validation"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// MutationResult is returned by every editor operation: the stored record, the
// node or edge the operation produced (if any), whether the graph changed and
// the validator output for the graph after the change.
type MutationResult struct {
	Workflow   *models.Workflow  `json:"workflow"`
	Node       *models.Node      `json:"node,omitempty"`
	Edge       *models.Edge      `json:"edge,omitempty"`
	Changed    bool              `json:"changed"`
	Validation validation.Result `json:"validation"`
}

// Editor runs graph edits against stored workflows. Each call loads the stored
// document into a graph, applies one mutation, validates the result and saves the
// document only when the graph is dirty. Calls on the same workflow are serialized
// through the shared WorkflowLocks.
type Editor struct {
	deps

	persistence persistence.Persistence
}

// NewEditor creates a new editor service.
func NewEditor(persistence persistence.Persistence, opts ...Option) *Editor {
	return &Editor{
		deps:        newDeps("editor_service", opts),
		persistence: persistence,
	}
}

// session loads a workflow and its graph.
func (e *Editor) session(ctx context.Context, workflowID string) (*models.Workflow, *graph.Graph, error) {
	workflow, err := e.persistence.WorkflowByID(ctx, workflowID)
	if err != nil {
		return nil, nil, err
	}

	g, err := document.Import(workflow.Document, graph.WithIDGenerator(e.ids))
	if err != nil {
		// %v: the cause must not classify as a malformed client document.
		return nil, nil, fmt.Errorf("%w: workflow %s: %v", ErrCorruptWorkflow, workflowID, err)
	}

	return workflow, g, nil
}

// edit runs mutate inside a locked session on an editable workflow.
func (e *Editor) edit(
	ctx context.Context,
	op string,
	workflowID string,
	mutate func(g *graph.Graph, result *MutationResult) error,
) (*MutationResult, error) {
	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "editor."+op,
		attribute.String(otelhelper.WorkflowIDKey, workflowID),
		attribute.String(otelhelper.OperationKey, op),
	)
	defer span.End()

	unlock := e.locks.Lock(workflowID)
	defer unlock()

	workflow, g, err := e.session(ctx, workflowID)
	if err != nil {
		recordError(span, err)

		return nil, err
	}

	if !workflow.IsEditable() {
		return nil, ErrCannotModifyPublished
	}

	result := &MutationResult{}

	err = mutate(g, result)
	if err != nil {
		recordError(span, err)

		return nil, err
	}

	err = e.commit(ctx, span, workflow, g, result)
	if err != nil {
		return nil, err
	}

	return result, nil
}

// commit validates g and saves it into workflow if it is dirty.
func (e *Editor) commit(ctx context.Context, span trace.Span, workflow *models.Workflow, g *graph.Graph, result *MutationResult) error {
	result.Validation = validation.Validate(g.Nodes(), g.Edges())
	result.Changed = g.Dirty()
	result.Workflow = workflow

	span.SetAttributes(
		attribute.Bool(otelhelper.ValidKey, result.Validation.IsValid),
		attribute.Int(otelhelper.ErrorCountKey, len(result.Validation.Errors)),
		attribute.Int(otelhelper.WarningCountKey, len(result.Validation.Warnings)),
	)

	if !g.Dirty() {
		return nil
	}

	err := e.save(ctx, span, workflow, document.Export(g), result.Validation)
	if err != nil {
		return err
	}

	g.MarkClean()

	return nil
}

// save stores doc as the workflow's graph and announces the update.
func (e *Editor) save(ctx context.Context, span trace.Span, workflow *models.Workflow, doc models.Document, result validation.Result) error {
	workflow.Document = doc

	err := e.persistence.SaveWorkflow(ctx, workflow)
	if err != nil {
		otelhelper.SetError(span, err)

		return fmt.Errorf("failed to save workflow: %w", err)
	}

	e.logger.DebugContext(ctx, "Workflow graph saved",
		"workflow_id", workflow.ID,
		"nodes", len(doc.Nodes),
		"edges", len(doc.Edges),
		"valid", result.IsValid,
	)

	e.publish(ctx, workflow.ID, &events.WorkflowUpdated{
		BaseEvent:    events.NewBaseEvent(events.WorkflowUpdatedEvent, workflow.ID),
		NodeCount:    len(doc.Nodes),
		EdgeCount:    len(doc.Edges),
		IsValid:      result.IsValid,
		ErrorCount:   len(result.Errors),
		WarningCount: len(result.Warnings),
	})

	return nil
}

func recordError(span trace.Span, err error) {
	if IsNotFoundError(err) {
		return
	}

	otelhelper.SetError(span, err)
}

// AddNode adds a node of kind at position.
func (e *Editor) AddNode(ctx context.Context, workflowID string, kind models.NodeKind, position models.Position, config map[string]any) (*MutationResult, error) {
	return e.edit(ctx, "add_node", workflowID, func(g *graph.Graph, result *MutationResult) error {
		node, err := g.AddNode(kind, position, config)
		if err != nil {
			return err
		}

		result.Node = &node

		return nil
	})
}

// RemoveNode deletes a node together with its edges. A missing node leaves the
// graph unchanged and is reported through Changed.
func (e *Editor) RemoveNode(ctx context.Context, workflowID, nodeID string) (*MutationResult, error) {
	return e.edit(ctx, "remove_node", workflowID, func(g *graph.Graph, _ *MutationResult) error {
		g.RemoveNode(nodeID)

		return nil
	})
}

// UpdateNodeConfig shallow-merges partial into a node's config. A missing node is
// a no-op.
func (e *Editor) UpdateNodeConfig(ctx context.Context, workflowID, nodeID string, partial map[string]any) (*MutationResult, error) {
	return e.edit(ctx, "update_node_config", workflowID, func(g *graph.Graph, result *MutationResult) error {
		if g.UpdateNodeConfig(nodeID, partial) {
			result.Node = nodePtr(g, nodeID)
		}

		return nil
	})
}

// UpdateNodePosition moves a node. A missing node is a no-op.
func (e *Editor) UpdateNodePosition(ctx context.Context, workflowID, nodeID string, position models.Position) (*MutationResult, error) {
	return e.edit(ctx, "update_node_position", workflowID, func(g *graph.Graph, result *MutationResult) error {
		if g.UpdateNodePosition(nodeID, position) {
			result.Node = nodePtr(g, nodeID)
		}

		return nil
	})
}

// DuplicateNode copies a node without its edges.
func (e *Editor) DuplicateNode(ctx context.Context, workflowID, nodeID string) (*MutationResult, error) {
	return e.edit(ctx, "duplicate_node", workflowID, func(g *graph.Graph, result *MutationResult) error {
		node, err := g.DuplicateNode(nodeID)
		if err != nil {
			return err
		}

		result.Node = &node

		return nil
	})
}

// ConnectRequest describes a new edge. Empty handles and labels are left unset.
type ConnectRequest struct {
	Source       string
	Target       string
	SourceHandle string
	TargetHandle string
	Label        string
}

// Connect creates an edge between two existing nodes.
func (e *Editor) Connect(ctx context.Context, workflowID string, req ConnectRequest) (*MutationResult, error) {
	return e.edit(ctx, "connect", workflowID, func(g *graph.Graph, result *MutationResult) error {
		var opts []graph.EdgeOption

		if req.SourceHandle != "" {
			opts = append(opts, graph.WithSourceHandle(req.SourceHandle))
		}

		if req.TargetHandle != "" {
			opts = append(opts, graph.WithTargetHandle(req.TargetHandle))
		}

		if req.Label != "" {
			opts = append(opts, graph.WithLabel(req.Label))
		}

		edge, err := g.Connect(req.Source, req.Target, opts...)
		if err != nil {
			return err
		}

		result.Edge = &edge

		return nil
	})
}

// UpdateEdge applies patch to an edge.
func (e *Editor) UpdateEdge(ctx context.Context, workflowID, edgeID string, patch graph.EdgePatch) (*MutationResult, error) {
	return e.edit(ctx, "update_edge", workflowID, func(g *graph.Graph, result *MutationResult) error {
		edge, err := g.UpdateEdge(edgeID, patch)
		if err != nil {
			return err
		}

		result.Edge = &edge

		return nil
	})
}

// RemoveEdge deletes an edge. A missing edge is reported through Changed.
func (e *Editor) RemoveEdge(ctx context.Context, workflowID, edgeID string) (*MutationResult, error) {
	return e.edit(ctx, "remove_edge", workflowID, func(g *graph.Graph, _ *MutationResult) error {
		g.RemoveEdge(edgeID)

		return nil
	})
}

// Layout repositions every node by level. Running it twice in a row leaves the
// second call unchanged.
func (e *Editor) Layout(ctx context.Context, workflowID string, opts layout.Options) (*MutationResult, error) {
	return e.edit(ctx, "layout", workflowID, func(g *graph.Graph, _ *MutationResult) error {
		arranged := layout.Layout(g.Nodes(), g.Edges(), opts)
		g.SetPositions(arranged.Positions())

		return nil
	})
}

// Validate runs the validator over the stored graph. Published workflows can be
// validated too.
func (e *Editor) Validate(ctx context.Context, workflowID string) (validation.Result, error) {
	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "editor.validate", attribute.String(otelhelper.WorkflowIDKey, workflowID))
	defer span.End()

	workflow, err := e.persistence.WorkflowByID(ctx, workflowID)
	if err != nil {
		recordError(span, err)

		return validation.Result{}, err
	}

	result := validation.ValidateDocument(workflow.Document)

	span.SetAttributes(attribute.Bool(otelhelper.ValidKey, result.IsValid))

	return result, nil
}

// ExportDocument encodes the stored graph in format.
func (e *Editor) ExportDocument(ctx context.Context, workflowID string, format document.Format) ([]byte, error) {
	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "editor.export",
		attribute.String(otelhelper.WorkflowIDKey, workflowID),
		attribute.String(otelhelper.DocumentFormatKey, string(format)),
	)
	defer span.End()

	if !document.IsSupported(format) {
		return nil, ErrUnsupportedFormat
	}

	_, g, err := e.session(ctx, workflowID)
	if err != nil {
		recordError(span, err)

		return nil, err
	}

	return document.Marshal(document.Export(g), format)
}

// ImportDocument replaces the stored graph with a decoded document. A malformed
// document is rejected as a whole and the stored graph is kept.
func (e *Editor) ImportDocument(ctx context.Context, workflowID string, data []byte, format document.Format) (*MutationResult, error) {
	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "editor.import",
		attribute.String(otelhelper.WorkflowIDKey, workflowID),
		attribute.String(otelhelper.DocumentFormatKey, string(format)),
	)
	defer span.End()

	if !document.IsSupported(format) {
		return nil, ErrUnsupportedFormat
	}

	doc, err := document.Unmarshal(data, format)
	if err != nil {
		return nil, err
	}

	imported, err := document.Import(doc, graph.WithIDGenerator(e.ids))
	if err != nil {
		return nil, err
	}

	unlock := e.locks.Lock(workflowID)
	defer unlock()

	workflow, err := e.persistence.WorkflowByID(ctx, workflowID)
	if err != nil {
		recordError(span, err)

		return nil, err
	}

	if !workflow.IsEditable() {
		return nil, ErrCannotModifyPublished
	}

	result := &MutationResult{
		Workflow:   workflow,
		Changed:    true,
		Validation: validation.Validate(imported.Nodes(), imported.Edges()),
	}

	err = e.save(ctx, span, workflow, document.Export(imported), result.Validation)
	if err != nil {
		return nil, err
	}

	return result, nil
}

func nodePtr(g *graph.Graph, id string) *models.Node {
	node, ok := g.Node(id)
	if !ok {
		return nil
	}

	return &node
}
