// Package core defines the shared contracts of the deeprun runtime: the
// storage Backend capability set, the checkpoint store, the review/decision
// types driving the interrupt protocol, the conversation message model, and
// the run/tool execution contexts threaded through every component.
//
// Concrete implementations live in sibling packages (backend, checkpoint,
// files, tool, interrupt, subagent, engine); core holds only the types they
// exchange so the dependency graph stays acyclic.
package core
