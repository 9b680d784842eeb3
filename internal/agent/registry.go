package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

func sprintf(format string, args ...any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

// MaxToolParamsSize caps the accepted argument payload.
const MaxToolParamsSize = 1 << 20

type entry struct {
	tool   Tool
	schema *jsonschema.Schema
}

// Registry maps operation names to their schema, validator, and executor.
// Registration compiles the tool's JSON Schema once; Execute validates the
// incoming arguments against it before dispatching.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register adds a tool, compiling its argument schema. A tool with the same
// name replaces the previous registration.
func (r *Registry) Register(tool Tool) error {
	compiler := jsonschema.NewCompiler()
	url := "registry:///" + tool.Name() + ".json"
	if err := compiler.AddResource(url, strings.NewReader(string(tool.Schema()))); err != nil {
		return fmt.Errorf("tool %s: add schema: %w", tool.Name(), err)
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		return fmt.Errorf("tool %s: compile schema: %w", tool.Name(), err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[tool.Name()] = entry{tool: tool, schema: schema}
	return nil
}

// MustRegister registers tools and panics on a schema error; tool schemas
// are compiled in, so a failure is a programming error.
func (r *Registry) MustRegister(tools ...Tool) {
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			panic(err)
		}
	}
}

// Get returns a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e.tool, ok
}

// Names returns the registered operation names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for n := range r.entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Catalog returns all registered tools sorted by name, the fixed catalog
// handed to the orchestrator boundary.
func (r *Registry) Catalog() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tools := make([]Tool, 0, len(r.entries))
	for _, e := range r.entries {
		tools = append(tools, e.tool)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name() < tools[j].Name() })
	return tools
}

// Execute validates params against the named tool's schema and runs it.
// Unknown tools and invalid arguments are reported as error results so the
// orchestrator can surface them in the trace.
func (r *Registry) Execute(ctx context.Context, name string, params json.RawMessage) (*ToolResult, error) {
	if len(params) > MaxToolParamsSize {
		return Errorf("tool parameters exceed maximum size of %d bytes", MaxToolParamsSize), nil
	}
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		return Errorf("tool not found: %s", name), nil
	}

	if len(params) == 0 {
		params = json.RawMessage(`{}`)
	}
	var doc any
	if err := json.Unmarshal(params, &doc); err != nil {
		return Errorf("invalid params for %s: %v", name, err), nil
	}
	if err := e.schema.Validate(doc); err != nil {
		return Errorf("invalid params for %s: %v", name, err), nil
	}

	return e.tool.Execute(ctx, params)
}
