package tool

import (
	"fmt"

	"github.com/hupe1980/deeprun/core"
)

// Registration binds one tool to its default review policy. A nil Review
// means the operation is unprotected: it never produces an action request.
type Registration struct {
	Tool   Tool
	Review *core.ReviewConfig
}

// Registry is the explicit mapping from operation name to callable plus
// default policy. It is built once at startup and never mutated at call
// time; Execute and lookup methods are safe for concurrent use once
// registration is complete.
type Registry struct {
	order   []string
	entries map[string]Registration
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Registration)}
}

// Register adds a tool with an optional default review config. Registering
// a duplicate name is a programming error and fails loudly.
func (r *Registry) Register(t Tool, review *core.ReviewConfig) error {
	name := t.Name()
	if name == "" {
		return fmt.Errorf("tool with empty name")
	}
	if _, exists := r.entries[name]; exists {
		return fmt.Errorf("tool %s already registered", name)
	}
	if review != nil && review.ActionName == "" {
		cp := *review
		cp.ActionName = name
		review = &cp
	}
	r.order = append(r.order, name)
	r.entries[name] = Registration{Tool: t, Review: review}
	return nil
}

// MustRegister registers like Register but panics on error. Intended for
// static startup wiring where a failure is a bug.
func (r *Registry) MustRegister(t Tool, review *core.ReviewConfig) {
	if err := r.Register(t, review); err != nil {
		panic(err)
	}
}

// Get returns the registration for a tool name.
func (r *Registry) Get(name string) (Registration, bool) {
	reg, ok := r.entries[name]
	return reg, ok
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Subset returns a new registry restricted to the named tools, preserving
// registration order and review defaults. Unknown names error so a subagent
// configuration cannot silently reference a missing capability.
func (r *Registry) Subset(names []string) (*Registry, error) {
	sub := NewRegistry()
	for _, name := range names {
		reg, ok := r.entries[name]
		if !ok {
			return nil, fmt.Errorf("tool %s not registered", name)
		}
		if err := sub.Register(reg.Tool, reg.Review); err != nil {
			return nil, err
		}
	}
	return sub, nil
}

// Execute runs the named tool. The approved flag marks that the call has
// passed through the suspension protocol; executing a protected tool
// without it fails with *core.PolicyViolationError so no protected
// operation can sidestep review.
func (r *Registry) Execute(toolCtx *core.ToolContext, name string, args map[string]any, approved bool) (any, error) {
	reg, ok := r.entries[name]
	if !ok {
		return nil, NewToolError(name, "unknown tool", "UNKNOWN_TOOL")
	}
	if reg.Review != nil && !approved {
		return nil, &core.PolicyViolationError{Tool: name}
	}
	return reg.Tool.Call(toolCtx, args)
}
