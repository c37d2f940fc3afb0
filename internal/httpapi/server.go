// ABOUTME: Stateless request/response transport adapter over the shared dispatcher.
// ABOUTME: Tool failures are HTTP 200 envelopes; only pre-dispatch faults get error statuses.

package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/cors"

	"github.com/soundctl/spotify-mcp/internal/dispatch"
	"github.com/soundctl/spotify-mcp/internal/registry"
)

// MaxRequestBodySize is the maximum allowed size for request bodies (1MB).
const MaxRequestBodySize = 1 << 20

// Config holds the collaborators the HTTP server needs.
type Config struct {
	Dispatcher *dispatch.Dispatcher
	Registry   *registry.Registry
	Logger     *slog.Logger
	Name       string
	Version    string
	Dashboard  http.Handler // optional
}

// Server exposes the tool catalogue over plain HTTP. Every request is
// independent; requests may be served concurrently without coordination.
type Server struct {
	dispatcher *dispatch.Dispatcher
	registry   *registry.Registry
	logger     *slog.Logger
	name       string
	version    string
	dashboard  http.Handler
}

// New creates an HTTP Server.
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
		dashboard:  cfg.Dashboard,
	}, nil
}

// Handler returns the fully routed handler with CORS applied, mirroring the
// allow-everything middleware the original service ran.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /tools", s.handleTools)
	mux.HandleFunc("POST /call_tool", s.handleCallTool)
	mux.HandleFunc("GET /top-songs", s.handleTopSongs)
	mux.HandleFunc("GET /recent-songs", s.handleRecentSongs)
	if s.dashboard != nil {
		mux.Handle("GET /dashboard", s.dashboard)
	}
	return cors.AllowAll().Handler(mux)
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	endpoints := map[string]string{
		"health":       "/health",
		"tools":        "/tools",
		"call_tool":    "/call_tool",
		"top-songs":    "/top-songs",
		"recent-songs": "/recent-songs",
	}
	if s.dashboard != nil {
		endpoints["dashboard"] = "/dashboard"
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"name":        s.name,
		"version":     s.version,
		"description": "Spotify API integration via MCP",
		"status":      "running",
		"endpoints":   endpoints,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"server":    s.name,
		"version":   s.version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleTools(w http.ResponseWriter, _ *http.Request) {
	declared := s.registry.List()
	tools := make([]map[string]any, 0, len(declared))
	for _, t := range declared {
		tools = append(tools, map[string]any{
			"name":        t.Name,
			"description": t.Description,
			"inputSchema": t.Schema.JSONSchema(),
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"tools": tools,
		"count": len(tools),
	})
}

// handleCallTool is the request/response tool invocation path. Whether the
// call succeeded is carried inside the envelope: callers inspect the error
// field, not the status code. Only failures that occur before a CallRequest
// exists (unreadable or oversized body, bad JSON, missing name) surface as
// transport-level statuses.
func (s *Server) handleCallTool(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxRequestBodySize+1))
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}
	if int64(len(body)) > MaxRequestBodySize {
		http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
		return
	}

	var req dispatch.CallRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "tool name is required", http.StatusBadRequest)
		return
	}

	env := s.dispatcher.Dispatch(r.Context(), req)
	s.writeJSON(w, http.StatusOK, env)
}

// handleTopSongs mirrors the original /top-songs feed: the top-tracks tool
// with a fixed limit, unwrapped from its envelope.
func (s *Server) handleTopSongs(w http.ResponseWriter, r *http.Request) {
	s.serveFeed(w, r, "spotify_get_user_top_tracks")
}

// handleRecentSongs mirrors the original /recent-songs feed.
func (s *Server) handleRecentSongs(w http.ResponseWriter, r *http.Request) {
	s.serveFeed(w, r, "spotify_get_recently_played")
}

func (s *Server) serveFeed(w http.ResponseWriter, r *http.Request, tool string) {
	env := s.dispatcher.Dispatch(r.Context(), dispatch.CallRequest{
		Name:      tool,
		Arguments: map[string]any{"limit": 10},
	})
	if !env.Success {
		s.writeJSON(w, http.StatusInternalServerError, map[string]any{"detail": env.ErrMessage()})
		return
	}

	payload, ok := env.Result.(map[string]any)
	if !ok {
		s.writeJSON(w, http.StatusInternalServerError, map[string]any{"detail": "unexpected tool payload"})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"tracks":  payload["tracks"],
		"count":   payload["count"],
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to encode response", "error", err)
	}
}

// ListenAndServe runs the server on addr until the context is cancelled,
// then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info("http server listening", "addr", addr)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
