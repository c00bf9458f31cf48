// Package subagent implements delegated execution: named sub-executors a
// run can hand scoped work to. A pool enforces the delegation depth ceiling
// and per-invocation timeout, runs concurrent fan-outs, and reassembles
// results in call order.
package subagent

import (
	"fmt"

	"github.com/hupe1980/deeprun/core"
	"github.com/hupe1980/deeprun/interrupt"
	"github.com/hupe1980/deeprun/model"
)

// SubAgent is an invocable delegated executor. Invoke runs to completion
// within the child run context and returns the final textual result.
type SubAgent interface {
	Name() string
	Description() string
	Invoke(rc *core.RunContext, input string) (string, error)
}

// Spec declares a subagent in one of two variants. The declarative variant
// names a prompt, an optional tool subset and an optional model override,
// and is compiled into a full execution loop by the engine. The compiled
// variant carries a caller-built SubAgent as-is.
type Spec struct {
	Name        string
	Description string

	// Declarative variant.
	Prompt string
	Tools  []string // tool names the subagent may use; empty means all
	Model  model.Model
	// Policy overlays the inherited review policy for this delegation
	// level. Nil inherits the parent's policy unchanged.
	Policy *interrupt.Policy

	// Compiled variant. When set, the declarative fields above (except
	// Name and Description) are ignored.
	Agent SubAgent
}

// Compiled reports whether the spec carries a pre-built agent.
func (s Spec) Compiled() bool { return s.Agent != nil }

// Validate checks the spec's structural invariants.
func (s Spec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("subagent spec without a name")
	}
	if s.Agent == nil && s.Prompt == "" {
		return fmt.Errorf("subagent %q: declarative spec without a prompt", s.Name)
	}
	return nil
}

// Request addresses one delegated invocation inside a fan-out.
type Request struct {
	Name  string `json:"name"`
	Input string `json:"input"`
}

// Result is the outcome of one delegated invocation. Err is structured
// failure data (timeout, recursion limit, execution error); it never
// crashes the parent run.
type Result struct {
	Name   string
	Output string
	Err    error
}
