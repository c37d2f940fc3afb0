// ABOUTME: Tests for the HTTP transport adapter.
// ABOUTME: Covers routing, envelope semantics on /call_tool, feeds, and CORS headers.

package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundctl/spotify-mcp/internal/dispatch"
	"github.com/soundctl/spotify-mcp/internal/registry"
	"github.com/soundctl/spotify-mcp/internal/schema"
)

func ptr(v int) *int { return &v }

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	reg := registry.New(nil)

	echo := registry.Tool{
		Name:        "echo",
		Description: "Echo validated arguments",
		Schema: schema.Definition{Fields: []schema.Field{
			{Name: "message", Kind: schema.String, Required: true},
		}},
	}
	require.NoError(t, reg.Register(echo, func(_ context.Context, args map[string]any) (any, error) {
		return args, nil
	}))

	feed := func(_ context.Context, args map[string]any) (any, error) {
		limit, _ := args["limit"].(int)
		tracks := make([]map[string]any, 0, limit)
		for i := 0; i < limit; i++ {
			tracks = append(tracks, map[string]any{"rank": i + 1, "name": "Song"})
		}
		return map[string]any{"tracks": tracks, "count": len(tracks)}, nil
	}
	for _, name := range []string{"spotify_get_user_top_tracks", "spotify_get_recently_played"} {
		tool := registry.Tool{
			Name:        name,
			Description: "Feed",
			Schema: schema.Definition{Fields: []schema.Field{
				{Name: "limit", Kind: schema.Integer, Default: 20, Min: ptr(1), Max: ptr(50)},
			}},
		}
		require.NoError(t, reg.Register(tool, feed))
	}

	srv, err := New(Config{
		Dispatcher: dispatch.New(reg, nil),
		Registry:   reg,
		Name:       "test-server",
		Version:    "0.0.1",
	})
	require.NoError(t, err)
	return srv.Handler()
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func TestRootListsEndpoints(t *testing.T) {
	h := newTestHandler(t)

	rec, body := doJSON(t, h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "test-server", body["name"])
	assert.Equal(t, "running", body["status"])

	endpoints := body["endpoints"].(map[string]any)
	assert.Equal(t, "/call_tool", endpoints["call_tool"])
	assert.Equal(t, "/tools", endpoints["tools"])
}

func TestHealth(t *testing.T) {
	rec, body := doJSON(t, newTestHandler(t), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestToolsListing(t *testing.T) {
	rec, body := doJSON(t, newTestHandler(t), http.MethodGet, "/tools", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(3), body["count"])

	tools := body["tools"].([]any)
	first := tools[0].(map[string]any)
	assert.Equal(t, "echo", first["name"])

	inputSchema := first["inputSchema"].(map[string]any)
	assert.Equal(t, "object", inputSchema["type"])
}

func TestCallToolSuccess(t *testing.T) {
	rec, body := doJSON(t, newTestHandler(t), http.MethodPost, "/call_tool",
		`{"name":"echo","arguments":{"message":"hi"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Nil(t, body["error"])

	result := body["result"].(map[string]any)
	assert.Equal(t, "hi", result["message"])
}

func TestCallToolFailureIsStillHTTP200(t *testing.T) {
	t.Run("unknown tool", func(t *testing.T) {
		rec, body := doJSON(t, newTestHandler(t), http.MethodPost, "/call_tool",
			`{"name":"nonexistent_tool"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "unknown tool: nonexistent_tool", body["error"])
		assert.Nil(t, body["result"])
	})

	t.Run("validation failure", func(t *testing.T) {
		rec, body := doJSON(t, newTestHandler(t), http.MethodPost, "/call_tool",
			`{"name":"echo","arguments":{}}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, false, body["success"])
		assert.Contains(t, body["error"], "message")
	})
}

func TestCallToolTransportFaults(t *testing.T) {
	t.Run("malformed JSON", func(t *testing.T) {
		rec, _ := doJSON(t, newTestHandler(t), http.MethodPost, "/call_tool", `{not json`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing name", func(t *testing.T) {
		rec, _ := doJSON(t, newTestHandler(t), http.MethodPost, "/call_tool", `{"arguments":{}}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("oversized body", func(t *testing.T) {
		big := `{"name":"echo","arguments":{"message":"` + strings.Repeat("x", MaxRequestBodySize) + `"}}`
		rec, _ := doJSON(t, newTestHandler(t), http.MethodPost, "/call_tool", big)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}

func TestFeeds(t *testing.T) {
	for _, path := range []string{"/top-songs", "/recent-songs"} {
		rec, body := doJSON(t, newTestHandler(t), http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, true, body["success"], path)
		assert.Equal(t, float64(10), body["count"], path)

		tracks := body["tracks"].([]any)
		require.Len(t, tracks, 10, path)
		first := tracks[0].(map[string]any)
		assert.Equal(t, float64(1), first["rank"], path)
	}
}

func TestCORSHeaders(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodOptions, "/call_tool", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
