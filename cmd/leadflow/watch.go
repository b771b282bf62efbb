package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dukex/leadflow/pkg/cmd"
	"github.com/dukex/leadflow/pkg/eventbus"
	"github.com/dukex/leadflow/pkg/events"
	"github.com/dukex/leadflow/pkg/log"
	cli "github.com/urfave/cli/v3"
)

var watchedEvents = []events.EventType{
	events.WorkflowCreatedEvent,
	events.WorkflowUpdatedEvent,
	events.WorkflowPublishedEvent,
	events.WorkflowDeletedEvent,
}

func NewWatchCommand() *cli.Command {
	return &cli.Command{
		Name:    "watch",
		Aliases: []string{"w"},
		Usage:   "Log workflow lifecycle events as they are published",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (gochannel, kafka)",
				Value:   "kafka",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.SetupWithFormat(command.String("log-level"), command.String("log-format"))

			logger := log.WithModule("watch")

			bus, err := cmd.NewEventBus(command.String("event-bus"), logger)
			if err != nil {
				return err
			}

			defer func() {
				if err := bus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			return watch(ctx, bus, logger)
		},
	}
}

// watch logs every lifecycle event delivered by bus until ctx is done.
func watch(ctx context.Context, bus eventbus.EventSubscriber, logger *slog.Logger) error {
	for _, eventType := range watchedEvents {
		err := bus.Handle(eventType, func(ctx context.Context, event any) error {
			logEvent(ctx, logger, event)

			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to register %s handler: %w", eventType, err)
		}
	}

	if err := bus.Subscribe(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", events.Topic, err)
	}

	logger.InfoContext(ctx, "Watching workflow events", "topic", events.Topic)

	<-ctx.Done()

	return nil
}

func logEvent(ctx context.Context, logger *slog.Logger, event any) {
	switch e := event.(type) {
	case *events.WorkflowCreated:
		logger.InfoContext(ctx, "Workflow created", "workflow_id", e.WorkflowID, "name", e.Name, "owner", e.Owner)
	case *events.WorkflowUpdated:
		logger.InfoContext(ctx, "Workflow updated",
			"workflow_id", e.WorkflowID,
			"nodes", e.NodeCount,
			"edges", e.EdgeCount,
			"valid", e.IsValid,
			"errors", e.ErrorCount,
			"warnings", e.WarningCount)
	case *events.WorkflowPublished:
		logger.InfoContext(ctx, "Workflow published",
			"workflow_id", e.WorkflowID,
			"published_at", e.PublishedAt,
			"nodes", len(e.Document.Nodes))
	case *events.WorkflowDeleted:
		logger.InfoContext(ctx, "Workflow deleted", "workflow_id", e.WorkflowID)
	default:
		logger.WarnContext(ctx, "Unknown event", "event", fmt.Sprintf("%T", event))
	}
}
