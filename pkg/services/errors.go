// Package services provides standardized error types for service layer operations.
package services

import (
	"errors"
	"fmt"

	"github.com/dukex/leadflow/pkg/document"
	"github.com/dukex/leadflow/pkg/graph"
	"github.com/dukex/leadflow/pkg/persistence"
	"github.com/dukex/leadflow/pkg/validation"
)

// Business Logic Errors - These indicate client errors (4xx responses).
var (
	// Validation Errors (400 Bad Request).
	ErrInvalidRequest   = errors.New("invalid request")
	ErrInvalidSortField = errors.New("invalid sort field")
	ErrInvalidSortOrder = errors.New("invalid sort order")
	ErrInvalidStatus    = errors.New("invalid workflow status")
	ErrEmptyOwnerID     = errors.New("owner ID cannot be empty")

	ErrWorkflowNameRequired = errors.New("workflow name is required")
	ErrWorkflowNil          = errors.New("workflow cannot be nil")
	ErrUnsupportedFormat    = errors.New("unsupported document format")

	// Not Found (404).
	ErrWorkflowNotFound = persistence.ErrWorkflowNotFound

	// Business Logic Conflicts (409 Conflict).
	ErrCannotModifyPublished = errors.New("cannot modify published workflow")
	ErrValidationFailed      = errors.New("workflow has validation errors")
	ErrAlreadyPublished      = errors.New("workflow is already published")
	ErrNotPublished          = errors.New("workflow is not published")
)

// ErrCorruptWorkflow marks a stored document that no longer imports. It is a
// server-side fault, never a client error (500).
var ErrCorruptWorkflow = errors.New("stored workflow document is corrupt")

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// PublishError is returned when a graph with structural errors is published.
// Result holds the validator output that blocked it.
type PublishError struct {
	WorkflowID string
	Result     validation.Result
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("workflow %s has %d validation error(s)", e.WorkflowID, len(e.Result.Errors))
}

func (e *PublishError) Unwrap() error {
	return ErrValidationFailed
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrInvalidSortField) ||
		errors.Is(err, ErrInvalidSortOrder) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrEmptyOwnerID) ||
		errors.Is(err, ErrWorkflowNameRequired) ||
		errors.Is(err, ErrWorkflowNil) ||
		errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, graph.ErrInvalidNodeKind) ||
		document.IsMalformedDocument(err)
}

// IsNotFoundError checks if an error names a missing workflow, node or edge (HTTP 404).
func IsNotFoundError(err error) bool {
	return persistence.IsWorkflowNotFound(err) ||
		graph.IsNodeNotFound(err) ||
		graph.IsEdgeNotFound(err)
}

// IsConflictError checks if an error is a business logic conflict that should return HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrCannotModifyPublished) ||
		errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrAlreadyPublished) ||
		errors.Is(err, ErrNotPublished)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
