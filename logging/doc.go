// Package logging provides a tiny abstraction over slog so downstream code
// can depend on a minimal interface (Logger) while allowing users to plug
// any structured logger. It also offers a richer RuntimeLogger with
// contextual helpers (thread, run, component) and domain specific helpers
// for tool calls, model calls, interrupts, checkpoints and subagents.
package logging
