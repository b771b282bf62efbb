// Package validation provides the structural validator for automation graphs.
package validation

import "fmt"

// Code identifies the category of a structural issue so callers can branch on it.
type Code string

const (
	CodeMissingID           Code = "missing_id"
	CodeDuplicateNodeID     Code = "duplicate_node_id"
	CodeDuplicateEdgeID     Code = "duplicate_edge_id"
	CodeUnknownKind         Code = "unknown_kind"
	CodeDanglingEdge        Code = "dangling_edge"
	CodeNoTrigger           Code = "no_trigger"
	CodeUnreachableNode     Code = "unreachable_node"
	CodeAmbiguousBranch     Code = "ambiguous_branch"
	CodeInvalidHandle       Code = "invalid_handle"
	CodeDanglingDefaultPath Code = "dangling_default_path"
	CodeInvalidLoopBound    Code = "invalid_loop_bound"
	CodeInvalidDelay        Code = "invalid_delay"
	CodeOrphanNode          Code = "orphan_node"
	CodeInvalidConfig       Code = "invalid_config"
	CodeInvalidSchedule     Code = "invalid_schedule"
)

// Issue is a single validator finding.
type Issue struct {
	Code    Code   `json:"code"`
	NodeID  string `json:"nodeId,omitempty"`
	EdgeID  string `json:"edgeId,omitempty"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Code, i.Message)
}

// Result is the outcome of a validation pass. Warnings never affect IsValid.
type Result struct {
	IsValid  bool    `json:"isValid"`
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
}

// ErrorMessages returns the error list as plain strings.
func (r Result) ErrorMessages() []string {
	return messages(r.Errors)
}

// WarningMessages returns the warning list as plain strings.
func (r Result) WarningMessages() []string {
	return messages(r.Warnings)
}

// ErrorsWithCode returns the errors of one category.
func (r Result) ErrorsWithCode(code Code) []Issue {
	return filter(r.Errors, code)
}

// WarningsWithCode returns the warnings of one category.
func (r Result) WarningsWithCode(code Code) []Issue {
	return filter(r.Warnings, code)
}

func messages(issues []Issue) []string {
	out := make([]string, len(issues))
	for i, issue := range issues {
		out[i] = issue.Message
	}

	return out
}

func filter(issues []Issue, code Code) []Issue {
	out := make([]Issue, 0)

	for _, issue := range issues {
		if issue.Code == code {
			out = append(out, issue)
		}
	}

	return out
}
