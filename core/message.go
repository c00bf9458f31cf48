package core

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Conversation roles used throughout the runtime.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ToolCall is a model-issued request to execute a named tool. Arguments is
// the raw JSON payload exactly as produced by the provider.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// ToolResult records the outcome of one tool call. A non-empty Error marks a
// failed or refused execution; the engine feeds it back to the model as an
// ordinary tool failure, never as a fatal abort.
type ToolResult struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Message is one turn of the execution transcript. The flat shape (no
// polymorphic parts) keeps checkpoints trivially JSON-serializable.
//
// Role invariants: ToolCalls only appear on assistant messages, ToolResults
// only on tool messages, and a tool message carries the results for every
// call of the preceding assistant message in call order.
type Message struct {
	Role        string       `json:"role"`
	Text        string       `json:"text,omitempty"`
	ToolCalls   []ToolCall   `json:"tool_calls,omitempty"`
	ToolResults []ToolResult `json:"tool_results,omitempty"`
}

// NewUserMessage builds a user-authored text message.
func NewUserMessage(text string) Message {
	return Message{Role: RoleUser, Text: text}
}

// NewAssistantMessage builds an assistant message carrying optional text and
// the tool calls issued in that step.
func NewAssistantMessage(text string, calls []ToolCall) Message {
	return Message{Role: RoleAssistant, Text: text, ToolCalls: calls}
}

// NewToolMessage builds a tool message carrying the step's results in call order.
func NewToolMessage(results []ToolResult) Message {
	return Message{Role: RoleTool, ToolResults: results}
}

// NewID generates a unique identifier for runs, tool calls and checkpoints.
func NewID() string { return uuid.NewString() }
