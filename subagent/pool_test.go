package subagent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/hupe1980/deeprun/backend"
	"github.com/hupe1980/deeprun/core"
	"github.com/hupe1980/deeprun/files"
	"github.com/hupe1980/deeprun/logging"
)

// stubAgent is a scripted SubAgent for pool behavior tests.
type stubAgent struct {
	name        string
	description string
	delay       time.Duration
	fail        error
	invoke      func(rc *core.RunContext, input string) (string, error)
}

func (a *stubAgent) Name() string        { return a.name }
func (a *stubAgent) Description() string { return a.description }

func (a *stubAgent) Invoke(rc *core.RunContext, input string) (string, error) {
	if a.invoke != nil {
		return a.invoke(rc, input)
	}
	if a.delay > 0 {
		select {
		case <-time.After(a.delay):
		case <-rc.Context.Done():
			return "", rc.Context.Err()
		}
	}
	if a.fail != nil {
		return "", a.fail
	}
	return "answer:" + input, nil
}

func rootContext() *core.RunContext {
	fs := files.New(backend.NewStateBackend(), nil)
	return core.NewRunContext(context.Background(), "thread-root", core.NewID(), fs, logging.NoOpLogger{})
}

func newTestPool(t *testing.T, agents []SubAgent, optFns ...func(o *Options)) *Pool {
	t.Helper()
	p, err := NewPool(agents, optFns...)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	return p
}

func TestPool_InvokeReturnsAgentOutput(t *testing.T) {
	p := newTestPool(t, []SubAgent{&stubAgent{name: "worker"}})

	out, err := p.Invoke(rootContext(), "worker", "task-1")
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if out != "answer:task-1" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestPool_InvokeUnknownAgent(t *testing.T) {
	p := newTestPool(t, nil)
	if _, err := p.Invoke(rootContext(), "ghost", "x"); err == nil {
		t.Fatal("expected error for unknown agent")
	}
}

func TestPool_DepthThreadedExplicitly(t *testing.T) {
	var observedDepth int
	agent := &stubAgent{name: "worker", invoke: func(rc *core.RunContext, input string) (string, error) {
		observedDepth = rc.Depth
		return "", nil
	}}
	p := newTestPool(t, []SubAgent{agent})

	if _, err := p.Invoke(rootContext(), "worker", "x"); err != nil {
		t.Fatal(err)
	}
	if observedDepth != 1 {
		t.Fatalf("expected child depth 1, got %d", observedDepth)
	}
}

func TestPool_DepthCeiling(t *testing.T) {
	p := newTestPool(t, []SubAgent{&stubAgent{name: "worker"}}, func(o *Options) {
		o.MaxDepth = 2
	})

	rc := rootContext()
	deep := rc.NewChildContext(rc.Context, "child-1", rc.FS) // depth 1

	// Depth 2 is allowed.
	if _, err := p.Invoke(deep, "worker", "x"); err != nil {
		t.Fatalf("depth 2 should be allowed: %v", err)
	}

	deeper := deep.NewChildContext(deep.Context, "child-2", deep.FS) // depth 2
	_, err := p.Invoke(deeper, "worker", "x")
	var limit *core.RecursionLimitError
	if !errors.As(err, &limit) {
		t.Fatalf("expected RecursionLimitError, got %v", err)
	}
	if limit.Depth != 3 || limit.Max != 2 {
		t.Fatalf("unexpected limit payload %+v", limit)
	}
}

func TestPool_Timeout(t *testing.T) {
	p := newTestPool(t, []SubAgent{&stubAgent{name: "slow", delay: time.Second}}, func(o *Options) {
		o.Timeout = 20 * time.Millisecond
	})

	_, err := p.Invoke(rootContext(), "slow", "x")
	var timeout *core.TimeoutError
	if !errors.As(err, &timeout) {
		t.Fatalf("expected TimeoutError, got %v", err)
	}
	if timeout.Name != "slow" {
		t.Fatalf("unexpected timeout payload %+v", timeout)
	}
}

func TestPool_InvokeAllPreservesCallOrder(t *testing.T) {
	agents := []SubAgent{
		&stubAgent{name: "slow", delay: 80 * time.Millisecond},
		&stubAgent{name: "fast"},
		&stubAgent{name: "broken", fail: fmt.Errorf("boom")},
	}
	p := newTestPool(t, agents)

	results := p.InvokeAll(rootContext(), []Request{
		{Name: "slow", Input: "a"},
		{Name: "fast", Input: "b"},
		{Name: "broken", Input: "c"},
	})

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	// Call order, not completion order.
	if results[0].Name != "slow" || results[0].Output != "answer:a" || results[0].Err != nil {
		t.Fatalf("slot 0 wrong: %+v", results[0])
	}
	if results[1].Name != "fast" || results[1].Output != "answer:b" {
		t.Fatalf("slot 1 wrong: %+v", results[1])
	}
	if results[2].Err == nil {
		t.Fatalf("slot 2 should carry the failure: %+v", results[2])
	}
}

func TestPool_FailureIsStructuredNotFatal(t *testing.T) {
	p := newTestPool(t, []SubAgent{&stubAgent{name: "broken", fail: fmt.Errorf("boom")}})

	results := p.InvokeAll(rootContext(), []Request{{Name: "broken", Input: "x"}})
	if results[0].Err == nil || !strings.Contains(results[0].Err.Error(), "boom") {
		t.Fatalf("expected structured failure, got %+v", results[0])
	}
}

func TestNewPool_RejectsDuplicates(t *testing.T) {
	_, err := NewPool([]SubAgent{
		&stubAgent{name: "a"},
		&stubAgent{name: "a"},
	})
	if err == nil {
		t.Fatal("expected duplicate name error")
	}
}

func TestSpec_Validate(t *testing.T) {
	if err := (Spec{}).Validate(); err == nil {
		t.Fatal("nameless spec must fail")
	}
	if err := (Spec{Name: "x"}).Validate(); err == nil {
		t.Fatal("declarative spec without prompt must fail")
	}
	if err := (Spec{Name: "x", Prompt: "p"}).Validate(); err != nil {
		t.Fatalf("valid declarative spec failed: %v", err)
	}
	if err := (Spec{Name: "x", Agent: &stubAgent{name: "x"}}).Validate(); err != nil {
		t.Fatalf("valid compiled spec failed: %v", err)
	}
}

func TestPool_DescribeListsAgents(t *testing.T) {
	p := newTestPool(t, []SubAgent{
		&stubAgent{name: "b", description: "second"},
		&stubAgent{name: "a", description: "first"},
	})
	desc := p.Describe()
	if !strings.Contains(desc, "- a: first") || !strings.Contains(desc, "- b: second") {
		t.Fatalf("unexpected catalog:\n%s", desc)
	}
	if strings.Index(desc, "- a:") > strings.Index(desc, "- b:") {
		t.Fatalf("catalog not sorted:\n%s", desc)
	}
}
