// Package orchestrator drives the conversation loop: it sends the user's
// request and the operation catalog to an LLM provider, executes the tool
// calls the model chooses, and feeds results back until the model answers
// in text.
package orchestrator

import (
	"context"
	"encoding/json"

	"github.com/haasonsaas/chartd/internal/agent"
)

// ToolCall is a model-requested operation invocation.
type ToolCall struct {
	ID    string
	Name  string
	Input json.RawMessage
}

// ToolResultMsg carries one executed tool's outcome back to the model.
type ToolResultMsg struct {
	ToolCallID string
	Content    string
	IsError    bool
}

// Message is one conversation turn in provider-neutral form.
type Message struct {
	Role        string // "user" or "assistant"
	Content     string
	ToolCalls   []ToolCall      // assistant turns
	ToolResults []ToolResultMsg // user turns answering tool calls
}

// Turn is a single model response: text, tool calls, or both.
type Turn struct {
	Text      string
	ToolCalls []ToolCall
}

// Provider completes a conversation against one LLM backend.
type Provider interface {
	Complete(ctx context.Context, system string, messages []Message, tools []agent.Tool) (*Turn, error)
}
