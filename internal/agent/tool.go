// Package agent defines the tool abstraction consumed by an agent loop and
// the registry that dispatches schema-validated tool calls.
package agent

import (
	"context"
	"encoding/json"

	"github.com/edgaragent/edgaragent/internal/usage"
)

// Tool defines the interface for executable agent tools.
//
// Tools extend the agent's capabilities: searching SEC filings, fetching
// web pages into the document store, and re-querying stored documents
// through the secondary model.
type Tool interface {
	// Name returns the tool name for LLM function calling.
	// Must be a valid function name (alphanumeric, underscores).
	Name() string

	// Description returns a natural language description of what the tool
	// does. This helps the LLM decide when to use the tool.
	Description() string

	// Schema returns the JSON Schema defining the tool's parameters. The
	// registry validates raw arguments against it before execution.
	Schema() json.RawMessage

	// Execute runs the tool with the given JSON parameters.
	Execute(ctx context.Context, params json.RawMessage) (*ToolResult, error)
}

// ToolResult contains the output from a tool execution. Errors are also
// communicated via ToolResult with IsError=true, allowing the agent to
// handle failures gracefully.
type ToolResult struct {
	// Content is the tool's output (text or JSON-encoded text).
	Content string `json:"content"`

	// Usage carries token usage for tools that make a model call (the
	// retrieval tool); nil for every other tool.
	Usage *usage.Usage `json:"usage,omitempty"`

	// IsError indicates this result represents an error condition.
	IsError bool `json:"is_error,omitempty"`
}

// Envelope is the normalized outcome the dispatcher hands back to the agent
// loop for every tool call. Failures never cross the dispatcher boundary as
// raised errors; they arrive here as Success=false with the error text in
// Result.
type Envelope struct {
	Success bool         `json:"success"`
	Result  string       `json:"result"`
	Usage   *usage.Usage `json:"usage,omitempty"`
}
