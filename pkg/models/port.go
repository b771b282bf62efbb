// Handle (port) catalogues for node connections.

package models

import "slices"

// Built-in handle names.
const (
	HandleIn      = "in"
	HandleOut     = "out"
	HandleTrue    = "true"
	HandleFalse   = "false"
	HandleDefault = "default"
	HandleBody    = "body"
	HandleDone    = "done"
)

// PortDirection represents the direction of flow through a handle.
type PortDirection string

const (
	PortDirectionInput  PortDirection = "input"
	PortDirectionOutput PortDirection = "output"
)

var outputHandles = map[NodeKind][]string{
	NodeKindTrigger:   {HandleOut},
	NodeKindAction:    {HandleOut},
	NodeKindCondition: {HandleTrue, HandleFalse, HandleDefault},
	NodeKindDelay:     {HandleOut},
	NodeKindLoop:      {HandleBody, HandleDone},
}

var inputHandles = map[NodeKind][]string{
	NodeKindTrigger:   {},
	NodeKindAction:    {HandleIn},
	NodeKindCondition: {HandleIn},
	NodeKindDelay:     {HandleIn},
	NodeKindLoop:      {HandleIn},
}

// OutputHandles returns the named output ports a node kind exposes.
func OutputHandles(kind NodeKind) []string {
	return slices.Clone(outputHandles[kind])
}

// InputHandles returns the named input ports a node kind exposes.
func InputHandles(kind NodeKind) []string {
	return slices.Clone(inputHandles[kind])
}

// HasHandle reports whether kind exposes handle in the given direction.
// The empty handle is the node's implicit port and is always accepted.
func HasHandle(kind NodeKind, direction PortDirection, handle string) bool {
	if handle == "" {
		return true
	}

	switch direction {
	case PortDirectionInput:
		return slices.Contains(inputHandles[kind], handle)
	case PortDirectionOutput:
		return slices.Contains(outputHandles[kind], handle)
	default:
		return false
	}
}
