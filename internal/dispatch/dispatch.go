// ABOUTME: Routes a (name, arguments) call through lookup, validation, and handler invocation.
// ABOUTME: Stateless between calls; every outcome, including panics, becomes an envelope.

package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/soundctl/spotify-mcp/internal/registry"
)

// CallRequest is the transport-neutral unit of work the dispatcher consumes.
type CallRequest struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// Dispatcher resolves tool calls against the registry. It holds no per-call
// state and is safe to invoke concurrently from any number of transports.
type Dispatcher struct {
	registry *registry.Registry
	logger   *slog.Logger
}

// New creates a Dispatcher over the given registry.
func New(reg *registry.Registry, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{registry: reg, logger: logger}
}

// Dispatch resolves the named tool, validates the raw arguments against its
// schema, invokes the handler at most once, and wraps the outcome. An unknown
// name and a validation failure are normal outcomes, not faults; both return
// a failure envelope without invoking any handler.
func (d *Dispatcher) Dispatch(ctx context.Context, req CallRequest) Envelope {
	requestID := uuid.NewString()

	tool, handler, err := d.registry.Lookup(req.Name)
	if err != nil {
		d.logger.Debug("dispatch to unknown tool", "tool_name", req.Name, "request_id", requestID)
		return Failf("unknown tool: %s", req.Name)
	}

	args, err := tool.Schema.Validate(req.Arguments)
	if err != nil {
		d.logger.Debug("argument validation failed",
			"tool_name", req.Name,
			"request_id", requestID,
			"error", err,
		)
		return Failf("%s", err)
	}

	d.logger.Debug("dispatching", "tool_name", req.Name, "request_id", requestID)

	result, err := d.invoke(ctx, tool.Name, handler, args)
	if err != nil {
		d.logger.Warn("tool failed",
			"tool_name", req.Name,
			"request_id", requestID,
			"error", err,
		)
		return Failf("%s", err)
	}

	d.logger.Debug("dispatch complete", "tool_name", req.Name, "request_id", requestID)
	return OK(result)
}

// invoke runs the handler exactly once. A panic escaping the handler is a
// defect, not an expected outcome; it is contained here so an unhandled fault
// never crosses into a transport adapter.
func (d *Dispatcher) invoke(ctx context.Context, name string, handler registry.Handler, args map[string]any) (result any, err error) {
	defer func() {
		if p := recover(); p != nil {
			d.logger.Error("tool panicked", "tool_name", name, "panic", p)
			result = nil
			err = fmt.Errorf("internal error in tool %s: %v", name, p)
		}
	}()
	return handler(ctx, args)
}
