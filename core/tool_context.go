package core

import (
	"context"
	"fmt"

	"github.com/hupe1980/deeprun/logging"
)

// ToolContext provides the constrained, auditable surface handed to tool
// implementations. It exposes the thread's filesystem view and identity
// without granting access to engine internals.
type ToolContext struct {
	runCtx *RunContext
	callID string

	*loggerAdapter
}

// NewToolContext binds a tool invocation to its parent RunContext and the
// unique tool call identifier.
func NewToolContext(runCtx *RunContext, callID string) *ToolContext {
	return &ToolContext{
		runCtx:        runCtx,
		callID:        callID,
		loggerAdapter: newLoggerAdapter(runCtx.Logger()),
	}
}

// Context returns the context associated with the tool invocation.
func (tc *ToolContext) Context() context.Context { return tc.runCtx.Context }

// ThreadID returns the thread identifier scoping this invocation.
func (tc *ToolContext) ThreadID() string { return tc.runCtx.ThreadID }

// RunID returns the run identifier associated with the tool invocation.
func (tc *ToolContext) RunID() string { return tc.runCtx.RunID }

// CallID returns the tool call identifier (correlates model request and
// tool execution in logs).
func (tc *ToolContext) CallID() string { return tc.callID }

// Depth returns the delegation depth of the enclosing run.
func (tc *ToolContext) Depth() int { return tc.runCtx.Depth }

// FS returns the thread's filesystem capability layer.
func (tc *ToolContext) FS() FileSystem { return tc.runCtx.FS }

// Logger returns the logger associated with the tool invocation.
func (tc *ToolContext) Logger() logging.Logger { return tc.loggerAdapter.Logger() }

// RunContext returns the enclosing run context. Used by the engine when
// dispatching delegated invocations.
func (tc *ToolContext) RunContext() *RunContext { return tc.runCtx }

// Validate performs a structural sanity check of the context.
func (tc *ToolContext) Validate() error {
	if tc.runCtx == nil || tc.runCtx.ThreadID == "" || tc.callID == "" {
		return fmt.Errorf("invalid ToolContext")
	}
	return nil
}
