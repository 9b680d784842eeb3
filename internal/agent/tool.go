// Package agent defines the operation catalog consumed by the orchestrator
// boundary: a Tool interface for named operations with JSON Schema argument
// contracts, and a Registry that validates arguments before dispatch.
package agent

import (
	"context"
	"encoding/json"
)

// Tool is one named operation in the catalog. Implementations live in
// internal/tools and operate on per-session state; the session key travels
// in the context (observability.SessionIDKey).
type Tool interface {
	// Name returns the operation name used for function calling.
	Name() string

	// Description returns a natural language description of the operation.
	Description() string

	// Schema returns the JSON Schema for the operation's arguments.
	Schema() json.RawMessage

	// Execute runs the operation. Recoverable failures (no data loaded,
	// column not found, invalid operator) are reported via
	// ToolResult.IsError, not the error return; the error return is for
	// unexpected failures only.
	Execute(ctx context.Context, params json.RawMessage) (*ToolResult, error)
}

// ToolResult is the textual outcome of one operation.
type ToolResult struct {
	// Content is the human-readable result shown in the trace.
	Content string `json:"content"`

	// IsError marks a reported (recoverable) failure.
	IsError bool `json:"is_error,omitempty"`
}

// Errorf builds an error result.
func Errorf(format string, args ...any) *ToolResult {
	return &ToolResult{Content: sprintf(format, args...), IsError: true}
}

// Textf builds a success result.
func Textf(format string, args ...any) *ToolResult {
	return &ToolResult{Content: sprintf(format, args...)}
}
