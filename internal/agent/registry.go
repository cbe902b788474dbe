package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/edgaragent/edgaragent/internal/metrics"
)

// VerboseEnv enables appending stack traces to error results when set to 1.
const VerboseEnv = "EDGAR_AGENT_VERBOSE"

// Registry manages available tools with thread-safe registration and lookup,
// and dispatches validated calls.
type Registry struct {
	mu      sync.RWMutex
	tools   map[string]Tool
	schemas map[string]*jsonschema.Schema

	logger  *slog.Logger
	verbose bool
}

// RegistryOption customizes a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) { r.logger = logger }
}

// WithVerboseErrors appends stack traces to error results, for debugging
// agent transcripts.
func WithVerboseErrors(verbose bool) RegistryOption {
	return func(r *Registry) { r.verbose = verbose }
}

// NewRegistry creates an empty registry ready for tool registration.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		tools:   make(map[string]Tool),
		schemas: make(map[string]*jsonschema.Schema),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a tool to the registry by its name. A tool with the same
// name is replaced. The tool's schema is compiled eagerly so a malformed
// schema fails at startup, not at dispatch time.
func (r *Registry) Register(tool Tool) error {
	schema, err := compileSchema(tool.Name(), tool.Schema())
	if err != nil {
		return fmt.Errorf("register %s: %w", tool.Name(), err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Name()] = tool
	r.schemas[tool.Name()] = schema
	return nil
}

// Get returns a tool by name and whether it was found.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

// Tools returns all registered tools for passing to an LLM provider.
func (r *Registry) Tools() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tools := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		tools = append(tools, t)
	}
	return tools
}

// Dispatch runs a tool by name with the given raw argument mapping and
// normalizes the outcome. It never returns an unhandled failure: unknown
// tools, invalid arguments, handler errors, and handler panics all come
// back as a Success=false envelope.
func (r *Registry) Dispatch(ctx context.Context, name string, args json.RawMessage) Envelope {
	envelope := r.dispatch(ctx, name, args)
	metrics.ToolDispatches.WithLabelValues(name, outcomeLabel(envelope)).Inc()
	if !envelope.Success {
		r.logger.Warn("tool call failed", "tool", name, "error", envelope.Result)
	}
	return envelope
}

func (r *Registry) dispatch(ctx context.Context, name string, args json.RawMessage) (envelope Envelope) {
	defer func() {
		if rec := recover(); rec != nil {
			envelope = r.failure(fmt.Errorf("tool %s panicked: %v", name, rec))
		}
	}()

	r.mu.RLock()
	tool, ok := r.tools[name]
	schema := r.schemas[name]
	r.mu.RUnlock()
	if !ok {
		return Envelope{Success: false, Result: "tool not found: " + name}
	}

	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}
	if err := validateArgs(schema, args); err != nil {
		return r.failure(fmt.Errorf("invalid arguments for %s: %w", name, err))
	}

	result, err := tool.Execute(ctx, args)
	if err != nil {
		return r.failure(err)
	}
	if result == nil {
		return r.failure(fmt.Errorf("tool %s returned no result", name))
	}
	if result.IsError {
		return Envelope{Success: false, Result: result.Content, Usage: result.Usage}
	}
	return Envelope{Success: true, Result: result.Content, Usage: result.Usage}
}

func (r *Registry) failure(err error) Envelope {
	msg := err.Error()
	if r.verbose {
		msg += "\ntraceback:\n" + string(debug.Stack())
	}
	return Envelope{Success: false, Result: msg}
}

func compileSchema(name string, raw json.RawMessage) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	url := "tool://" + name + "/schema.json"
	if err := compiler.AddResource(url, bytes.NewReader(raw)); err != nil {
		return nil, err
	}
	return compiler.Compile(url)
}

func validateArgs(schema *jsonschema.Schema, args json.RawMessage) error {
	if schema == nil {
		return nil
	}
	var decoded any
	if err := json.Unmarshal(args, &decoded); err != nil {
		return fmt.Errorf("arguments are not valid JSON: %w", err)
	}
	return schema.Validate(decoded)
}

func outcomeLabel(e Envelope) string {
	if e.Success {
		return "success"
	}
	return "error"
}
