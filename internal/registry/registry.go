// ABOUTME: Process-wide catalogue of tool declarations and their bound handlers.
// ABOUTME: Built once at startup, frozen on first read, and shared lock-free across dispatches.

package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/soundctl/spotify-mcp/internal/schema"
)

// ErrDuplicateTool indicates a tool with the same name is already registered.
var ErrDuplicateTool = errors.New("duplicate tool name")

// ErrUnknownTool indicates the requested tool is not in the registry.
var ErrUnknownTool = errors.New("unknown tool")

// ErrRegistryFrozen indicates a Register call after the registry was first read.
// Registration happens exactly once during startup; registering mid-flight is
// a programming error and fails loudly instead of mutating behavior.
var ErrRegistryFrozen = errors.New("registry is frozen")

// Handler executes a tool with validated, defaulted arguments. Handlers are
// the only place upstream-service calls occur; they report failures through
// the error return and must not retain args across calls.
type Handler func(ctx context.Context, args map[string]any) (any, error)

// Tool is a tool declaration: a unique name, a human-readable description,
// and the input schema callers are validated against.
type Tool struct {
	Name        string
	Description string
	Schema      schema.Definition
}

type entry struct {
	tool    Tool
	handler Handler
}

// Registry holds the immutable tool catalogue. Reads are safe from any
// goroutine once registration is complete.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	order   []string
	frozen  atomic.Bool
	logger  *slog.Logger
}

// New creates an empty Registry.
func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		entries: make(map[string]*entry),
		logger:  logger,
	}
}

// Register adds a tool and its handler to the catalogue. It fails with
// ErrDuplicateTool on a name collision, with a schema.ErrInvalidSchema
// wrapped error when the declaration is self-contradictory, and with
// ErrRegistryFrozen after the registry has served its first Lookup or List.
func (r *Registry) Register(tool Tool, handler Handler) error {
	if tool.Name == "" {
		return fmt.Errorf("%w: tool has empty name", schema.ErrInvalidSchema)
	}
	if handler == nil {
		return fmt.Errorf("tool %q: handler is required", tool.Name)
	}
	if err := tool.Schema.Check(); err != nil {
		return fmt.Errorf("tool %q: %w", tool.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen.Load() {
		return fmt.Errorf("%w: cannot register %q", ErrRegistryFrozen, tool.Name)
	}
	if _, exists := r.entries[tool.Name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateTool, tool.Name)
	}

	r.entries[tool.Name] = &entry{tool: tool, handler: handler}
	r.order = append(r.order, tool.Name)

	r.logger.Debug("tool registered", "tool_name", tool.Name, "total_tools", len(r.order))
	return nil
}

// MustRegister is Register for the startup wiring path; it panics on error,
// which aborts initialization per the startup error contract.
func (r *Registry) MustRegister(tool Tool, handler Handler) {
	if err := r.Register(tool, handler); err != nil {
		panic(err)
	}
}

// Lookup returns the declaration and handler for name, freezing the registry.
func (r *Registry) Lookup(name string) (Tool, Handler, error) {
	r.frozen.Store(true)

	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	if !ok {
		return Tool{}, nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
	return e.tool, e.handler, nil
}

// List returns every declaration in registration order, freezing the
// registry. The order is stable across calls for the process lifetime.
func (r *Registry) List() []Tool {
	r.frozen.Store(true)

	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		tools = append(tools, r.entries[name].tool)
	}
	return tools
}

// Len returns the number of registered tools without freezing the registry.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
