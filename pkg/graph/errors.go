package graph

import (
	"errors"
	"fmt"
)

// Mutation contract violations. They signal a caller bug such as a stale id, never a
// user-authored invalid graph, which is reported by the validator instead.
var (
	ErrNodeNotFound    = errors.New("node not found")
	ErrEdgeNotFound    = errors.New("edge not found")
	ErrInvalidNodeKind = errors.New("invalid node kind")
	ErrDuplicateID     = errors.New("duplicate id")
	ErrEmptyID         = errors.New("empty id")
)

// MutationError wraps a mutation failure with the operation and offending id.
type MutationError struct {
	Op  string // Operation name, e.g. "Connect"
	ID  string // Node or edge id the operation referenced
	Err error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.ID, e.Err)
}

func (e *MutationError) Unwrap() error {
	return e.Err
}

func (e *MutationError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

func newMutationError(op, id string, err error) *MutationError {
	return &MutationError{Op: op, ID: id, Err: err}
}

// IsNodeNotFound checks if an error indicates a node was not found.
func IsNodeNotFound(err error) bool {
	return errors.Is(err, ErrNodeNotFound)
}

// IsEdgeNotFound checks if an error indicates an edge was not found.
func IsEdgeNotFound(err error) bool {
	return errors.Is(err, ErrEdgeNotFound)
}
