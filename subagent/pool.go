package subagent

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/deeprun/core"
	"github.com/hupe1980/deeprun/logging"
)

// Options configure the delegation pool.
type Options struct {
	// MaxDepth is the delegation depth ceiling. A root run has depth zero;
	// an invocation that would exceed MaxDepth fails with
	// core.RecursionLimitError. Zero or negative disables the check.
	MaxDepth int
	// Timeout bounds each delegated invocation. Zero or negative disables it.
	Timeout time.Duration
	// Logger for delegation metrics. Nil constructs a default.
	Logger *logging.RuntimeLogger
}

// Pool holds the registered subagents and enforces delegation limits.
type Pool struct {
	agents map[string]SubAgent
	order  []string
	opts   Options
}

// NewPool registers the given agents. Duplicate names are an error.
func NewPool(agents []SubAgent, optFns ...func(o *Options)) (*Pool, error) {
	opts := Options{MaxDepth: 3, Timeout: 5 * time.Minute}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewLogger(nil)
	}
	opts.Logger = opts.Logger.WithComponent("subagent")

	p := &Pool{agents: make(map[string]SubAgent, len(agents)), opts: opts}
	for _, a := range agents {
		if a.Name() == "" {
			return nil, fmt.Errorf("subagent without a name")
		}
		if _, exists := p.agents[a.Name()]; exists {
			return nil, fmt.Errorf("duplicate subagent %q", a.Name())
		}
		p.agents[a.Name()] = a
		p.order = append(p.order, a.Name())
	}
	return p, nil
}

// Get returns the named agent.
func (p *Pool) Get(name string) (SubAgent, bool) {
	a, ok := p.agents[name]
	return a, ok
}

// Names returns registered agent names in registration order.
func (p *Pool) Names() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// Describe renders a one-line-per-agent catalog for embedding in a tool
// description, sorted by name for stable output.
func (p *Pool) Describe() string {
	names := make([]string, len(p.order))
	copy(names, p.order)
	sort.Strings(names)
	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "- %s: %s\n", name, p.agents[name].Description())
	}
	return b.String()
}

// Invoke runs one delegated invocation synchronously. Depth is taken from
// the parent run context and threaded explicitly into the child; the
// invocation is bounded by the pool timeout.
func (p *Pool) Invoke(rc *core.RunContext, name, input string) (string, error) {
	agent, ok := p.agents[name]
	if !ok {
		return "", fmt.Errorf("unknown subagent %q", name)
	}

	childDepth := rc.Depth + 1
	if p.opts.MaxDepth > 0 && childDepth > p.opts.MaxDepth {
		err := &core.RecursionLimitError{Depth: childDepth, Max: p.opts.MaxDepth}
		p.opts.Logger.LogSubagent(name, childDepth, 0, false, err)
		return "", err
	}

	ctx := rc.Context
	cancel := func() {}
	if p.opts.Timeout > 0 {
		ctx, cancel = context.WithTimeout(rc.Context, p.opts.Timeout)
	}
	defer cancel()

	childThreadID := rc.ThreadID + ":" + name + ":" + core.NewID()
	child := rc.NewChildContext(ctx, childThreadID, rc.FS)

	start := time.Now()

	type invocation struct {
		output string
		err    error
	}
	done := make(chan invocation, 1)
	go func() {
		out, err := agent.Invoke(child, input)
		done <- invocation{output: out, err: err}
	}()

	select {
	case inv := <-done:
		p.opts.Logger.LogSubagent(name, childDepth, time.Since(start), inv.err == nil, inv.err)
		return inv.output, inv.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err := &core.TimeoutError{Name: name, Limit: p.opts.Timeout}
			p.opts.Logger.LogSubagent(name, childDepth, time.Since(start), false, err)
			return "", err
		}
		p.opts.Logger.LogSubagent(name, childDepth, time.Since(start), false, ctx.Err())
		return "", ctx.Err()
	}
}

// InvokeAll fans out the requests concurrently and returns results in the
// requests' call order, regardless of completion order. Individual failures
// are recorded in their Result; InvokeAll itself never fails.
func (p *Pool) InvokeAll(rc *core.RunContext, requests []Request) []Result {
	results := make([]Result, len(requests))
	var wg sync.WaitGroup
	for i, req := range requests {
		wg.Add(1)
		go func(i int, req Request) {
			defer wg.Done()
			out, err := p.Invoke(rc, req.Name, req.Input)
			results[i] = Result{Name: req.Name, Output: out, Err: err}
		}(i, req)
	}
	wg.Wait()
	return results
}
