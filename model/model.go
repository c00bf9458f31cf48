package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/deeprun/core"
)

// ToolDefinition declaratively exposes a callable tool to the model.
// Parameters is a JSON Schema object (minimal draft-agnostic subset).
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Request captures the normalized model input produced by the engine loop.
type Request struct {
	System   string           `json:"system,omitempty"`
	Messages []core.Message   `json:"messages"`
	Tools    []ToolDefinition `json:"tools,omitempty"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the completed output of one generation step.
type Response struct {
	Text         string          `json:"text,omitempty"`
	ToolCalls    []core.ToolCall `json:"tool_calls,omitempty"`
	FinishReason string          `json:"finish_reason"` // "stop", "length", "tool_calls", etc.
	Usage        *TokenUsage     `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "mock", etc.
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface required by the engine to drive generation.
// Generate blocks until a complete response is available or ctx is done.
type Model interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockModel replays a scripted queue of responses, one per Generate call.
// Useful for tests & examples where deterministic tool-call sequences are
// needed.
type MockModel struct {
	mu        sync.Mutex
	info      Info
	queue     []Response
	requests  []Request
	callCount int
}

var _ Model = (*MockModel)(nil)

// NewMockModel constructs a MockModel with basic tool support enabled.
func NewMockModel(responses ...Response) *MockModel {
	return &MockModel{
		info:  Info{Name: "mock", Provider: "mock", SupportsTools: true},
		queue: responses,
	}
}

// Enqueue appends further scripted responses.
func (m *MockModel) Enqueue(responses ...Response) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, responses...)
}

// Generate pops the next scripted response. Once the script is exhausted it
// returns a plain text completion so loops terminate.
func (m *MockModel) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	m.callCount++
	if len(m.queue) == 0 {
		return &Response{Text: "done", FinishReason: "stop"}, nil
	}
	resp := m.queue[0]
	m.queue = m.queue[1:]
	if resp.FinishReason == "" {
		if len(resp.ToolCalls) > 0 {
			resp.FinishReason = "tool_calls"
		} else {
			resp.FinishReason = "stop"
		}
	}
	return &resp, nil
}

// Requests returns the requests seen so far, for assertions.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// CallCount returns how many times Generate has been invoked.
func (m *MockModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Info implements Model interface.
func (m *MockModel) Info() Info { return m.info }

// TextResponse is a shorthand for a plain completion with no tool calls.
func TextResponse(text string) Response {
	return Response{Text: text, FinishReason: "stop"}
}

// ToolCallResponse is a shorthand for a response that issues the given calls.
func ToolCallResponse(calls ...core.ToolCall) Response {
	return Response{ToolCalls: calls, FinishReason: "tool_calls"}
}

// ValidateRequest performs basic sanity checks shared by provider adapters.
func ValidateRequest(req Request) error {
	if len(req.Messages) == 0 {
		return fmt.Errorf("no messages provided")
	}
	return nil
}
