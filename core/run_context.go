package core

import (
	"context"

	"github.com/hupe1980/deeprun/logging"
)

// RunContext is the per-run execution scope threaded through the engine,
// tools and delegated sub-executions. It aggregates:
//   - The ambient cancellation Context
//   - Identifiers (ThreadID, RunID)
//   - The explicit delegation Depth (never inferred from a global counter)
//   - The thread's FileSystem view bound to the composite router
//
// A child run derives its own RunContext via NewChildContext: fresh RunID,
// incremented depth, and its own FileSystem instance (shared durable
// routing, isolated ephemeral state unless configured otherwise).
type RunContext struct {
	Context  context.Context
	ThreadID string
	RunID    string
	Depth    int
	FS       FileSystem

	*loggerAdapter
}

// NewRunContext constructs a root-level RunContext (depth zero).
func NewRunContext(
	ctx context.Context,
	threadID, runID string,
	fs FileSystem,
	logger logging.Logger,
) *RunContext {
	return &RunContext{
		Context:       ctx,
		ThreadID:      threadID,
		RunID:         runID,
		FS:            fs,
		loggerAdapter: newLoggerAdapter(logger),
	}
}

// Done mirrors context.Context's Done.
func (rc *RunContext) Done() <-chan struct{} { return rc.Context.Done() }

// Err returns the cancellation error (if any) from the underlying context.
func (rc *RunContext) Err() error { return rc.Context.Err() }

// WithFS returns a copy of the context bound to a different filesystem
// view. Identifiers and depth are preserved.
func (rc *RunContext) WithFS(fs FileSystem) *RunContext {
	nc := *rc
	nc.FS = fs
	return &nc
}

// NewChildContext derives the context for a delegated sub-execution. The
// child thread identifier scopes its ephemeral content; the caller passes
// the parent's identifier to share ephemeral state explicitly.
func (rc *RunContext) NewChildContext(ctx context.Context, childThreadID string, fs FileSystem) *RunContext {
	return &RunContext{
		Context:       ctx,
		ThreadID:      childThreadID,
		RunID:         NewID(),
		Depth:         rc.Depth + 1,
		FS:            fs,
		loggerAdapter: rc.loggerAdapter,
	}
}
