package services

import (
	"context"
	"log/slog"

	"github.com/dukex/leadflow/pkg/eventbus"
	"github.com/dukex/leadflow/pkg/graph"
	"github.com/dukex/leadflow/pkg/otelhelper"
	"go.opentelemetry.io/otel/trace"
)

// Option configures a service.
type Option func(*deps)

// deps are the collaborators shared by every service.
type deps struct {
	logger *slog.Logger
	tracer trace.Tracer
	bus    eventbus.EventPublisher
	ids    graph.IDGenerator
	locks  *WorkflowLocks
}

func newDeps(module string, opts []Option) deps {
	d := deps{
		logger: slog.Default(),
		tracer: otelhelper.NewNoopTracer(),
		ids:    graph.UUIDGenerator{},
		locks:  NewWorkflowLocks(),
	}

	for _, opt := range opts {
		opt(&d)
	}

	d.logger = d.logger.With("module", module)

	return d
}

// WithLogger sets the logger; the service adds its own module attribute.
func WithLogger(logger *slog.Logger) Option {
	return func(d *deps) {
		d.logger = logger
	}
}

// WithTracer sets the tracer used for service spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(d *deps) {
		d.tracer = tracer
	}
}

// WithEventBus publishes lifecycle events on bus.
func WithEventBus(bus eventbus.EventPublisher) Option {
	return func(d *deps) {
		d.bus = bus
	}
}

// WithIDGenerator sets the node and edge id source used by editor sessions.
func WithIDGenerator(ids graph.IDGenerator) Option {
	return func(d *deps) {
		d.ids = ids
	}
}

// WithWorkflowLocks shares per-workflow locks between services.
func WithWorkflowLocks(locks *WorkflowLocks) Option {
	return func(d *deps) {
		d.locks = locks
	}
}

// publish sends event when a bus is configured. Delivery failures are logged,
// never returned: the record is already stored.
func (d deps) publish(ctx context.Context, workflowID string, event eventbus.Event) {
	if d.bus == nil {
		return
	}

	err := d.bus.Publish(ctx, workflowID, event)
	if err != nil {
		d.logger.ErrorContext(ctx, "Failed to publish event",
			"event_type", event.GetType(),
			"workflow_id", workflowID,
			"error", err,
		)
	}
}
