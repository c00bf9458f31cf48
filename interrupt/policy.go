// Package interrupt implements the human-in-the-loop protocol: a policy
// declaring which tools require review, and a controller that persists
// checkpoints at suspension and validates decision payloads on resume.
package interrupt

import (
	"sort"

	"github.com/hupe1980/deeprun/core"
)

// Policy maps tool names to the decision kinds a reviewer may take. Tools
// absent from the policy execute without review.
type Policy struct {
	configs map[string]core.ReviewConfig
}

// NewPolicy builds a policy from per-tool review configs. A config with an
// empty AllowedDecisions list permits any decision.
func NewPolicy(configs ...core.ReviewConfig) *Policy {
	p := &Policy{configs: make(map[string]core.ReviewConfig, len(configs))}
	for _, rc := range configs {
		p.configs[rc.ActionName] = rc
	}
	return p
}

// Protect marks a tool as requiring review, restricted to the given
// decision kinds. Passing none allows all decisions.
func (p *Policy) Protect(tool string, allowed ...core.DecisionType) *Policy {
	p.configs[tool] = core.ReviewConfig{ActionName: tool, AllowedDecisions: allowed}
	return p
}

// Protected reports whether the tool requires review before execution.
func (p *Policy) Protected(tool string) bool {
	if p == nil {
		return false
	}
	_, ok := p.configs[tool]
	return ok
}

// ConfigFor returns the review config for a protected tool. The second
// return is false for unprotected tools.
func (p *Policy) ConfigFor(tool string) (core.ReviewConfig, bool) {
	if p == nil {
		return core.ReviewConfig{}, false
	}
	rc, ok := p.configs[tool]
	return rc, ok
}

// ProtectedTools returns the sorted names of all tools under review.
func (p *Policy) ProtectedTools() []string {
	if p == nil {
		return nil
	}
	names := make([]string, 0, len(p.configs))
	for name := range p.configs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Merge overlays other onto p, returning a new policy. Configs in other win
// on name collisions.
func (p *Policy) Merge(other *Policy) *Policy {
	merged := NewPolicy()
	if p != nil {
		for name, rc := range p.configs {
			merged.configs[name] = rc
		}
	}
	if other != nil {
		for name, rc := range other.configs {
			merged.configs[name] = rc
		}
	}
	return merged
}
