package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/hupe1980/deeprun/logging"
)

func TestMessageConstructors(t *testing.T) {
	u := NewUserMessage("hi")
	if u.Role != RoleUser || u.Text != "hi" {
		t.Fatalf("unexpected user message %+v", u)
	}

	calls := []ToolCall{{ID: "c1", Name: "ls"}}
	a := NewAssistantMessage("listing", calls)
	if a.Role != RoleAssistant || len(a.ToolCalls) != 1 {
		t.Fatalf("unexpected assistant message %+v", a)
	}

	results := []ToolResult{{ID: "c1", Name: "ls", Content: "a.txt"}}
	m := NewToolMessage(results)
	if m.Role != RoleTool || len(m.ToolResults) != 1 {
		t.Fatalf("unexpected tool message %+v", m)
	}
}

func TestNewIDUniqueness(t *testing.T) {
	seen := map[string]struct{}{}
	for i := 0; i < 1000; i++ {
		id := NewID()
		if id == "" {
			t.Fatal("empty id")
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = struct{}{}
	}
}

func TestCheckpointSuspensionPayload(t *testing.T) {
	cp := &Checkpoint{
		ThreadID: "t1",
		Pending: []ActionRequest{
			{ID: "c1", Name: "write_file"},
			{ID: "c2", Name: "delete_data"},
		},
		ReviewConfigs: []ReviewConfig{
			{ActionName: "write_file"},
			{ActionName: "delete_data"},
		},
	}
	s := cp.Suspension()
	if s.ThreadID != "t1" || len(s.ActionRequests) != 2 || len(s.ReviewConfigs) != 2 {
		t.Fatalf("unexpected suspension %+v", s)
	}
	if s.ActionRequests[0].ID != "c1" || s.ActionRequests[1].ID != "c2" {
		t.Fatalf("call order lost: %+v", s.ActionRequests)
	}
}

func TestReviewConfigAllows(t *testing.T) {
	open := ReviewConfig{ActionName: "x"}
	for _, d := range AllDecisions {
		if !open.Allows(d) {
			t.Fatalf("empty allowed list must permit %s", d)
		}
	}

	narrow := ReviewConfig{ActionName: "x", AllowedDecisions: []DecisionType{DecisionApprove}}
	if !narrow.Allows(DecisionApprove) || narrow.Allows(DecisionEdit) || narrow.Allows(DecisionReject) {
		t.Fatal("narrowed config misbehaves")
	}
}

func TestErrorTypes(t *testing.T) {
	wrapped := fmt.Errorf("reading /x: %w", ErrNotFound)
	if !errors.Is(wrapped, ErrNotFound) {
		t.Fatal("wrapped ErrNotFound not detected")
	}

	var ambiguous *AmbiguousEditError
	err := error(&AmbiguousEditError{Path: "/f", Find: "x", Count: 2})
	if !errors.As(err, &ambiguous) || ambiguous.Count != 2 {
		t.Fatalf("AmbiguousEditError lost: %v", err)
	}

	var violation *PolicyViolationError
	err = fmt.Errorf("dispatch: %w", &PolicyViolationError{Tool: "rm"})
	if !errors.As(err, &violation) || violation.Tool != "rm" {
		t.Fatalf("PolicyViolationError lost: %v", err)
	}
}

func TestRunContextChildDerivation(t *testing.T) {
	rc := NewRunContext(context.Background(), "t1", "r1", nil, logging.NoOpLogger{})
	if rc.Depth != 0 {
		t.Fatalf("root depth must be 0, got %d", rc.Depth)
	}

	child := rc.NewChildContext(context.Background(), "t1:child", nil)
	if child.Depth != 1 {
		t.Fatalf("child depth must be 1, got %d", child.Depth)
	}
	if child.RunID == rc.RunID {
		t.Fatal("child must get a fresh run id")
	}
	if child.ThreadID != "t1:child" {
		t.Fatalf("unexpected child thread id %s", child.ThreadID)
	}

	grandchild := child.NewChildContext(context.Background(), "t1:gc", nil)
	if grandchild.Depth != 2 {
		t.Fatalf("depth must thread explicitly, got %d", grandchild.Depth)
	}
}

func TestToolContextAccessors(t *testing.T) {
	rc := NewRunContext(context.Background(), "t1", "r1", nil, logging.NoOpLogger{})
	tc := NewToolContext(rc, "call-1")

	if tc.ThreadID() != "t1" || tc.RunID() != "r1" || tc.CallID() != "call-1" {
		t.Fatalf("accessor mismatch")
	}
	if err := tc.Validate(); err != nil {
		t.Fatalf("valid context rejected: %v", err)
	}

	bad := NewToolContext(rc, "")
	if err := bad.Validate(); err == nil {
		t.Fatal("empty call id must be invalid")
	}
}
