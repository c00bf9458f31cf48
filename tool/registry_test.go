package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/deeprun/backend"
	"github.com/hupe1980/deeprun/core"
	"github.com/hupe1980/deeprun/files"
	"github.com/hupe1980/deeprun/logging"
)

func newTestToolContext(t *testing.T) *core.ToolContext {
	t.Helper()
	fs := files.New(backend.NewStateBackend(), nil)
	rc := core.NewRunContext(context.Background(), "thread-1", core.NewID(), fs, logging.NoOpLogger{})
	return core.NewToolContext(rc, "call-1")
}

func echoTool(name string) Tool {
	return NewFunctionTool(
		name,
		"echoes its input",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text": map[string]any{"type": "string"},
			},
			"required": []string{"text"},
		},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			return args["text"], nil
		},
	)
}

func TestRegistry_RegisterDuplicateFails(t *testing.T) {
	r := NewRegistry()
	assert.NoError(t, r.Register(echoTool("echo"), nil))
	assert.Error(t, r.Register(echoTool("echo"), nil))
}

func TestRegistry_NamesPreserveOrder(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"c", "a", "b"} {
		if err := r.Register(echoTool(name), nil); err != nil {
			t.Fatal(err)
		}
	}
	assert.Equal(t, []string{"c", "a", "b"}, r.Names())
}

func TestRegistry_SubsetRestrictsTools(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"a", "b", "c"} {
		if err := r.Register(echoTool(name), nil); err != nil {
			t.Fatal(err)
		}
	}

	sub, err := r.Subset([]string{"a", "c"})
	assert.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, sub.Names())

	_, err = r.Subset([]string{"a", "missing"})
	assert.Error(t, err)
}

func TestRegistry_ExecuteUnknownTool(t *testing.T) {
	r := NewRegistry()
	tc := newTestToolContext(t)

	_, err := r.Execute(tc, "ghost", map[string]any{}, false)
	var toolErr *ToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("expected ToolError, got %v", err)
	}
	assert.Equal(t, "UNKNOWN_TOOL", toolErr.Code)
}

func TestRegistry_ProtectedToolRequiresApproval(t *testing.T) {
	r := NewRegistry()
	review := &core.ReviewConfig{AllowedDecisions: []core.DecisionType{core.DecisionApprove, core.DecisionReject}}
	if err := r.Register(echoTool("guarded"), review); err != nil {
		t.Fatal(err)
	}
	tc := newTestToolContext(t)
	args := map[string]any{"text": "hi"}

	_, err := r.Execute(tc, "guarded", args, false)
	var violation *core.PolicyViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("expected PolicyViolationError, got %v", err)
	}
	assert.Equal(t, "guarded", violation.Tool)

	out, err := r.Execute(tc, "guarded", args, true)
	assert.NoError(t, err)
	assert.Equal(t, "hi", out)
}

func TestRegistry_ReviewActionNameDefaulted(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(echoTool("guarded"), &core.ReviewConfig{}); err != nil {
		t.Fatal(err)
	}
	reg, ok := r.Get("guarded")
	assert.True(t, ok)
	assert.Equal(t, "guarded", reg.Review.ActionName)
}

func TestFunctionTool_ValidationError(t *testing.T) {
	tc := newTestToolContext(t)
	tool := echoTool("echo")

	_, err := tool.Call(tc, map[string]any{})
	var toolErr *ToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("expected ToolError, got %v", err)
	}
	assert.Equal(t, "VALIDATION_ERROR", toolErr.Code)
}

func TestFilesystemTools_RoundTrip(t *testing.T) {
	tc := newTestToolContext(t)
	r := NewRegistry()
	for _, tl := range FilesystemTools() {
		if err := r.Register(tl, nil); err != nil {
			t.Fatal(err)
		}
	}

	_, err := r.Execute(tc, NameWriteFile, map[string]any{"path": "/notes/a.txt", "content": "alpha"}, false)
	assert.NoError(t, err)

	out, err := r.Execute(tc, NameReadFile, map[string]any{"path": "/notes/a.txt"}, false)
	assert.NoError(t, err)
	assert.Equal(t, "alpha", out)

	out, err = r.Execute(tc, NameLs, map[string]any{"path": "/notes"}, false)
	assert.NoError(t, err)
	assert.Equal(t, "a.txt", out)

	_, err = r.Execute(tc, NameEditFile, map[string]any{
		"path": "/notes/a.txt", "old_string": "alpha", "new_string": "beta",
	}, false)
	assert.NoError(t, err)

	out, _ = r.Execute(tc, NameReadFile, map[string]any{"path": "/notes/a.txt"}, false)
	assert.Equal(t, "beta", out)
}
