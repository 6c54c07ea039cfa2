package ports

import (
	"context"
)

// Message roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one turn of a chat exchange
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
}

// ToolDefinition describes a tool that the model can invoke
type ToolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"` // JSON Schema
}

// ToolCall represents a tool invocation requested by the model.
// Arguments is the raw JSON text exactly as the model produced it.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ChatOptions tune a single completion
type ChatOptions struct {
	Temperature float64
	MaxTokens   int
}

// Usage captures token counts reported by the provider
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// ChatResponse is either final content or a set of tool calls
type ChatResponse struct {
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	StopReason string     `json:"stop_reason,omitempty"`
	Usage      Usage      `json:"usage"`
}

// HasToolCalls reports whether the model asked for tools
func (r *ChatResponse) HasToolCalls() bool {
	return r != nil && len(r.ToolCalls) > 0
}

// LLMProvider defines the interface for language model backends
type LLMProvider interface {
	// Chat sends the conversation and tool definitions and returns the model's turn
	Chat(ctx context.Context, messages []Message, tools []ToolDefinition, options ChatOptions) (*ChatResponse, error)

	// Name identifies the provider in logs and metrics
	Name() string

	// IsAvailable reports whether the provider is configured and reachable
	IsAvailable() bool
}
