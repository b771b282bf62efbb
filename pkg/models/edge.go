package models

// Edge is a directed connection between two nodes of the same graph.
type Edge struct {
	ID           string  `json:"id"           yaml:"id"           validate:"required"`
	Source       string  `json:"source"       yaml:"source"       validate:"required"`
	Target       string  `json:"target"       yaml:"target"       validate:"required"`
	SourceHandle *string `json:"sourceHandle" yaml:"sourceHandle"`
	TargetHandle *string `json:"targetHandle" yaml:"targetHandle"`
	Label        *string `json:"label"        yaml:"label"`
}

// Clone returns a copy of the edge that shares no pointers with the original.
func (e Edge) Clone() Edge {
	clone := e
	clone.SourceHandle = cloneString(e.SourceHandle)
	clone.TargetHandle = cloneString(e.TargetHandle)
	clone.Label = cloneString(e.Label)

	return clone
}

// SourceHandleName returns the source handle, or "" when unset.
func (e *Edge) SourceHandleName() string {
	if e.SourceHandle == nil {
		return ""
	}

	return *e.SourceHandle
}

// TargetHandleName returns the target handle, or "" when unset.
func (e *Edge) TargetHandleName() string {
	if e.TargetHandle == nil {
		return ""
	}

	return *e.TargetHandle
}

// References reports whether either endpoint of the edge is nodeID.
func (e *Edge) References(nodeID string) bool {
	return e.Source == nodeID || e.Target == nodeID
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}

	v := *s

	return &v
}
