// ABOUTME: Stream transport adapter: JSON-RPC 2.0 over a long-lived reader/writer pair.
// ABOUTME: One request at a time in arrival order; initialize -> serving -> closed, no way back.

package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/soundctl/spotify-mcp/internal/dispatch"
	"github.com/soundctl/spotify-mcp/internal/registry"
)

// protocolVersion is the MCP protocol revision advertised on initialize.
const protocolVersion = "2025-03-26"

// JSON-RPC 2.0 types

type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Standard JSON-RPC error codes
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
)

// connState tracks where a connection is in its lifecycle.
type connState int

const (
	stateUninitialized connState = iota
	stateReady
	stateServing
	stateClosed
)

// toolInfo is one entry in a tools/list result.
type toolInfo struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// callParams are the params of a tools/call request.
type callParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// callContent is one content block in a tools/call result.
type callContent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// callResult is the tools/call result shape. Tool failures travel here with
// IsError set, never as JSON-RPC errors: an unknown tool or a validation
// failure is an envelope outcome, not a protocol fault.
type callResult struct {
	Content []callContent `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

// Config holds the collaborators the stream server needs.
type Config struct {
	Dispatcher *dispatch.Dispatcher
	Registry   *registry.Registry
	Logger     *slog.Logger
	Name       string
	Version    string
}

// Server serves one stream connection at a time. Each Serve call owns its
// connection's state; the Server itself carries no per-connection state and
// may serve successive connections.
type Server struct {
	dispatcher *dispatch.Dispatcher
	registry   *registry.Registry
	logger     *slog.Logger
	name       string
	version    string
}

// New creates a stream Server.
func New(cfg Config) (*Server, error) {
	if cfg.Dispatcher == nil {
		return nil, errors.New("dispatcher is required")
	}
	if cfg.Registry == nil {
		return nil, errors.New("registry is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		dispatcher: cfg.Dispatcher,
		registry:   cfg.Registry,
		logger:     logger,
		name:       cfg.Name,
		version:    cfg.Version,
	}, nil
}

// Serve reads JSON-RPC messages from r and writes responses to w until EOF,
// an unrecoverable transport error, or ctx cancellation. Messages are
// processed strictly one at a time in arrival order, so response IDs appear
// in request order.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	conn := &connection{
		server: s,
		out:    bufio.NewWriter(w),
		state:  stateUninitialized,
	}
	dec := json.NewDecoder(bufio.NewReader(r))

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var req request
		if err := dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Debug("stream closed by peer")
				return nil
			}
			// A frame that is not valid JSON is unrecoverable: the decoder
			// cannot resynchronize, so report and drop the connection.
			_ = conn.writeError(nil, codeParseError, "invalid JSON")
			conn.state = stateClosed
			return fmt.Errorf("reading stream message: %w", err)
		}

		conn.handle(ctx, req)

		if conn.state == stateClosed {
			return nil
		}
	}
}

// connection is the per-Serve state: output buffer plus lifecycle position.
type connection struct {
	server *Server
	out    *bufio.Writer
	state  connState
}

func (c *connection) handle(ctx context.Context, req request) {
	s := c.server
	isNotification := len(req.ID) == 0 || string(req.ID) == "null"

	if req.JSONRPC != "2.0" {
		if !isNotification {
			_ = c.writeError(req.ID, codeInvalidRequest, "invalid JSON-RPC version")
		}
		return
	}

	s.logger.Debug("stream request", "method", req.Method, "is_notification", isNotification)

	if isNotification {
		switch req.Method {
		case "notifications/initialized":
			if c.state == stateReady {
				c.state = stateServing
			}
		default:
			s.logger.Debug("ignoring notification", "method", req.Method)
		}
		return
	}

	switch req.Method {
	case "initialize":
		c.handleInitialize(req)
	case "ping":
		_ = c.writeResult(req.ID, map[string]any{})
	case "tools/list":
		c.handleToolsList(req)
	case "tools/call":
		c.handleToolsCall(ctx, req)
	default:
		_ = c.writeError(req.ID, codeMethodNotFound, "method not found")
	}
}

func (c *connection) handleInitialize(req request) {
	if c.state != stateUninitialized {
		_ = c.writeError(req.ID, codeInvalidRequest, "already initialized")
		return
	}
	c.state = stateReady

	c.server.logger.Info("stream session initialized", "protocol_version", protocolVersion)

	_ = c.writeResult(req.ID, map[string]any{
		"protocolVersion": protocolVersion,
		"capabilities": map[string]any{
			"tools": map[string]any{},
		},
		"serverInfo": map[string]any{
			"name":    c.server.name,
			"version": c.server.version,
		},
	})
}

func (c *connection) handleToolsList(req request) {
	if c.state == stateUninitialized {
		_ = c.writeError(req.ID, codeInvalidRequest, "server not initialized")
		return
	}

	declared := c.server.registry.List()
	tools := make([]toolInfo, 0, len(declared))
	for _, t := range declared {
		tools = append(tools, toolInfo{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.Schema.JSONSchema(),
		})
	}

	c.server.logger.Debug("tools/list", "count", len(tools))
	_ = c.writeResult(req.ID, map[string]any{"tools": tools})
}

func (c *connection) handleToolsCall(ctx context.Context, req request) {
	if c.state == stateUninitialized {
		_ = c.writeError(req.ID, codeInvalidRequest, "server not initialized")
		return
	}

	var params callParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			_ = c.writeError(req.ID, codeInvalidParams, "invalid params")
			return
		}
	}
	if params.Name == "" {
		_ = c.writeError(req.ID, codeInvalidParams, "tool name is required")
		return
	}

	env := c.server.dispatcher.Dispatch(ctx, dispatch.CallRequest{
		Name:      params.Name,
		Arguments: params.Arguments,
	})

	var result callResult
	if env.Success {
		text, err := json.Marshal(env.Result)
		if err != nil {
			text = []byte(fmt.Sprintf("%v", env.Result))
		}
		result = callResult{Content: []callContent{{Type: "text", Text: string(text)}}}
	} else {
		result = callResult{
			Content: []callContent{{Type: "text", Text: env.ErrMessage()}},
			IsError: true,
		}
	}

	_ = c.writeResult(req.ID, result)
}

func (c *connection) writeResult(id json.RawMessage, result any) error {
	return c.write(response{JSONRPC: "2.0", ID: id, Result: result})
}

func (c *connection) writeError(id json.RawMessage, code int, message string) error {
	return c.write(response{JSONRPC: "2.0", ID: id, Error: &rpcError{Code: code, Message: message}})
}

func (c *connection) write(resp response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		c.server.logger.Warn("failed to encode stream response", "error", err)
		return err
	}
	data = append(data, '\n')
	if _, err := c.out.Write(data); err != nil {
		c.state = stateClosed
		return err
	}
	if err := c.out.Flush(); err != nil {
		c.state = stateClosed
		return err
	}
	return nil
}
