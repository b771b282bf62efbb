package services

import "sync"

// WorkflowLocks serializes operations per workflow id. Services that change the
// same records must share one instance.
type WorkflowLocks struct {
	locks sync.Map // workflow id -> *sync.Mutex
}

// NewWorkflowLocks creates an empty lock set.
func NewWorkflowLocks() *WorkflowLocks {
	return &WorkflowLocks{}
}

// Lock blocks until workflowID is free and returns the matching unlock.
func (l *WorkflowLocks) Lock(workflowID string) func() {
	value, _ := l.locks.LoadOrStore(workflowID, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()

	return mu.Unlock
}
