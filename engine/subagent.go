package engine

import (
	"fmt"

	"github.com/hupe1980/deeprun/core"
	"github.com/hupe1980/deeprun/internal/util"
	"github.com/hupe1980/deeprun/interrupt"
	"github.com/hupe1980/deeprun/model"
	"github.com/hupe1980/deeprun/subagent"
	"github.com/hupe1980/deeprun/tool"
)

// NameGeneralPurpose is the built-in fallback subagent carrying the
// parent's full tool and model configuration.
const NameGeneralPurpose = "general-purpose"

// compileSubAgents turns declarative specs into runnable agents backed by
// the engine's own loop. Compiled specs pass through untouched. When any
// subagent is declared, a general-purpose agent with the parent's own
// toolset is registered as well, unless a spec claims the name.
func (e *Engine) compileSubAgents(specs []subagent.Spec) ([]subagent.SubAgent, error) {
	agents := make([]subagent.SubAgent, 0, len(specs))
	for _, spec := range specs {
		if err := spec.Validate(); err != nil {
			return nil, err
		}
		if spec.Compiled() {
			agents = append(agents, spec.Agent)
			continue
		}
		reg := e.registry
		if len(spec.Tools) > 0 {
			sub, err := e.registry.Subset(spec.Tools)
			if err != nil {
				return nil, fmt.Errorf("subagent %q: %w", spec.Name, err)
			}
			reg = sub
		}
		mdl := spec.Model
		if mdl == nil {
			mdl = e.mdl
		}
		agents = append(agents, &compiledAgent{
			name:        spec.Name,
			description: spec.Description,
			prompt:      spec.Prompt,
			mdl:         mdl,
			registry:    reg,
			policy:      e.policy.Merge(spec.Policy),
			engine:      e,
		})
	}
	if len(agents) > 0 && !hasAgent(agents, NameGeneralPurpose) {
		agents = append(agents, &compiledAgent{
			name:        NameGeneralPurpose,
			description: "handles any self-contained task with the full toolset",
			prompt:      "You are a capable assistant. Complete the task you are given and reply with a single concise result.",
			mdl:         e.mdl,
			registry:    e.registry,
			policy:      e.policy.Merge(nil),
			engine:      e,
		})
	}
	return agents, nil
}

func hasAgent(agents []subagent.SubAgent, name string) bool {
	for _, a := range agents {
		if a.Name() == name {
			return true
		}
	}
	return false
}

// compiledAgent runs a declarative subagent through the engine loop with a
// restricted tool registry and its own system prompt. Delegated runs never
// suspend: a protected tool call fails as an ordinary tool error.
type compiledAgent struct {
	name        string
	description string
	prompt      string
	mdl         model.Model
	registry    *tool.Registry
	policy      *interrupt.Policy
	engine      *Engine
}

var _ subagent.SubAgent = (*compiledAgent)(nil)

func (a *compiledAgent) Name() string        { return a.name }
func (a *compiledAgent) Description() string { return a.description }

// Invoke runs to completion inside the child thread's own ephemeral space.
// The durable prefix routes to the shared durable backend, so persistent
// content crosses the delegation boundary while scratch content does not.
func (a *compiledAgent) Invoke(rc *core.RunContext, input string) (string, error) {
	system, err := util.RenderTemplate(a.prompt, map[string]any{
		"Name":  a.name,
		"Input": input,
	})
	if err != nil {
		return "", fmt.Errorf("subagent %q prompt: %w", a.name, err)
	}

	child := rc.WithFS(a.engine.fileSystem(rc.ThreadID))
	// The child thread's scratch space is reclaimed once the delegation
	// returns; only content under the durable prefix outlives it.
	defer a.engine.threads.Discard(rc.ThreadID)

	messages := []core.Message{core.NewUserMessage(input)}
	outcome, err := a.engine.runLoop(child, a.mdl, a.registry, a.policy, system, messages, 0, false)
	if err != nil {
		return "", err
	}
	return outcome.Result, nil
}
