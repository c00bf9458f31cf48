package core

import (
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a path, thread or checkpoint does not
	// exist in the addressed store. Backend implementations must return it
	// (or wrap it) so callers can branch with errors.Is.
	ErrNotFound = fmt.Errorf("not found")
)

// AmbiguousEditError reports an edit whose search string matched more than
// once while no occurrence index was supplied to disambiguate it.
type AmbiguousEditError struct {
	Path  string `json:"path"`
	Find  string `json:"find"`
	Count int    `json:"count"`
}

func (e *AmbiguousEditError) Error() string {
	return fmt.Sprintf("ambiguous edit in %s: %q occurs %d times, supply an occurrence index", e.Path, e.Find, e.Count)
}

// ValidationError reports a malformed resume payload: a decision list whose
// length or order does not match the pending action requests, a disallowed
// decision kind, or an edited payload that does not re-assert the target
// action name. The stored checkpoint is left untouched so the same resume
// can be retried with corrected input.
type ValidationError struct {
	Reason string `json:"reason"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("resume validation failed: %s", e.Reason)
}

// PolicyViolationError reports an attempt to execute a protected operation
// without it having gone through the suspension protocol.
type PolicyViolationError struct {
	Tool string `json:"tool"`
}

func (e *PolicyViolationError) Error() string {
	return fmt.Sprintf("tool %s is protected and requires an approval decision", e.Tool)
}

// TimeoutError reports a delegated invocation exceeding its allotted bound.
// It is surfaced to the parent as a structured failure result, never as a
// crash of the parent's own execution.
type TimeoutError struct {
	Name  string        `json:"name"`
	Limit time.Duration `json:"limit"`
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("subagent %s timed out after %s", e.Name, e.Limit)
}

// RecursionLimitError reports a nested delegation exceeding the configured
// depth ceiling. Depth is threaded explicitly through each invocation.
type RecursionLimitError struct {
	Depth int `json:"depth"`
	Max   int `json:"max"`
}

func (e *RecursionLimitError) Error() string {
	return fmt.Sprintf("delegation depth %d exceeds maximum %d", e.Depth, e.Max)
}
