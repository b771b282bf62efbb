// Package events defines the workflow lifecycle notifications published by the
// editor so that downstream consumers (the execution engine, audit, search)
// can react to saved and published graphs.
package events

import (
	"time"

	"github.com/dukex/leadflow/pkg/models"
	"github.com/google/uuid"
)

type EventType string

// Topic carries every workflow lifecycle event.
const Topic = "leadflow.workflow.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	WorkflowCreatedEvent   EventType = "workflow.created"
	WorkflowUpdatedEvent   EventType = "workflow.updated"
	WorkflowPublishedEvent EventType = "workflow.published"
	WorkflowDeletedEvent   EventType = "workflow.deleted"
)

type BaseEvent struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	Timestamp  time.Time      `json:"timestamp"`
	WorkflowID string         `json:"workflow_id"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// WorkflowCreated is published when a new draft record is stored.
type WorkflowCreated struct {
	BaseEvent

	Name  string `json:"name"`
	Owner string `json:"owner,omitempty"`
}

func (w WorkflowCreated) GetType() EventType {
	return WorkflowCreatedEvent
}

// WorkflowUpdated is published after a dirty graph or changed record is saved.
type WorkflowUpdated struct {
	BaseEvent

	NodeCount    int  `json:"node_count"`
	EdgeCount    int  `json:"edge_count"`
	IsValid      bool `json:"is_valid"`
	ErrorCount   int  `json:"error_count"`
	WarningCount int  `json:"warning_count"`
}

func (w WorkflowUpdated) GetType() EventType {
	return WorkflowUpdatedEvent
}

// WorkflowPublished carries the structurally valid document handed to execution.
type WorkflowPublished struct {
	BaseEvent

	PublishedAt time.Time       `json:"published_at"`
	Document    models.Document `json:"document"`
}

func (w WorkflowPublished) GetType() EventType {
	return WorkflowPublishedEvent
}

// WorkflowDeleted is published after a record is removed.
type WorkflowDeleted struct {
	BaseEvent
}

func (w WorkflowDeleted) GetType() EventType {
	return WorkflowDeletedEvent
}

// New returns an empty event value for eventType, ready to be decoded into, or
// nil for an unknown type.
func New(eventType EventType) any {
	switch eventType {
	case WorkflowCreatedEvent:
		return &WorkflowCreated{}
	case WorkflowUpdatedEvent:
		return &WorkflowUpdated{}
	case WorkflowPublishedEvent:
		return &WorkflowPublished{}
	case WorkflowDeletedEvent:
		return &WorkflowDeleted{}
	default:
		return nil
	}
}

func NewBaseEvent(eventType EventType, workflowID string) BaseEvent {
	return BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkflowID: workflowID,
		Metadata:   make(map[string]any),
	}
}
