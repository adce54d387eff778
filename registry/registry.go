// Package registry holds the directory of retrieval tools available to the
// chat agent. Tool specs use the MCP tool format so the same directory can be
// served over MCP stdio or handed to the model as function definitions.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"

	"kulturarv/logger"
)

// Handler executes a tool call and returns its text output.
type Handler func(ctx context.Context, args map[string]any) (string, error)

// Tool pairs an MCP tool definition with its handler.
type Tool struct {
	Def     mcp.Tool
	Handler Handler
}

// Registry is a thread-safe name to tool directory.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*Tool
	order []string
	log   logger.Logger
}

// New creates an empty registry.
func New(log logger.Logger) *Registry {
	if log == nil {
		log = logger.NewNoop()
	}
	return &Registry{
		tools: make(map[string]*Tool),
		log:   log,
	}
}

// Register adds a tool under the given name. Registering a duplicate name is
// an error so providers cannot silently shadow each other.
func (r *Registry) Register(name, description string, schema json.RawMessage, h Handler) error {
	if name == "" {
		return fmt.Errorf("tool name is required")
	}
	if h == nil {
		return fmt.Errorf("tool %s: handler is required", name)
	}
	if len(schema) == 0 {
		schema = json.RawMessage(`{"type":"object","properties":{}}`)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool already registered: %s", name)
	}

	r.tools[name] = &Tool{
		Def:     mcp.NewToolWithRawSchema(name, description, schema),
		Handler: h,
	}
	r.order = append(r.order, name)

	r.log.Debug("Registered tool", logger.String("tool", name))
	return nil
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (*Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// List returns all tool definitions in registration order.
func (r *Registry) List() []mcp.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]mcp.Tool, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Def)
	}
	return defs
}

// Names returns all registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := append([]string{}, r.order...)
	sort.Strings(names)
	return names
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Call executes the named tool. Handler panics are recovered and returned as
// errors so one misbehaving tool cannot take down a request.
func (r *Registry) Call(ctx context.Context, name string, args map[string]any) (result string, err error) {
	tool, ok := r.Get(name)
	if !ok {
		return "", fmt.Errorf("unknown tool: %s", name)
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("Tool handler panicked", nil,
				logger.String("tool", name),
				logger.Any("panic", rec))
			result = ""
			err = fmt.Errorf("tool %s panicked: %v", name, rec)
		}
	}()

	return tool.Handler(ctx, args)
}
