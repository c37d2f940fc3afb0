// ABOUTME: Tests for the dashboard page rendering.

package webui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundctl/spotify-mcp/internal/registry"
	"github.com/soundctl/spotify-mcp/internal/schema"
)

func TestDashboardRenders(t *testing.T) {
	reg := registry.New(nil)
	tool := registry.Tool{
		Name:        "spotify_search",
		Description: "Search Spotify for tracks",
		Schema: schema.Definition{Fields: []schema.Field{
			{Name: "query", Kind: schema.String, Description: "Search query", Required: true},
		}},
	}
	require.NoError(t, reg.Register(tool, func(_ context.Context, _ map[string]any) (any, error) {
		return nil, nil
	}))

	d := NewDashboard(reg, nil, "test-server")
	rec := httptest.NewRecorder()
	d.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	body := rec.Body.String()
	assert.Contains(t, body, "test-server")
	assert.Contains(t, body, "1 tools registered")
	assert.Contains(t, body, "<h3")
	assert.Contains(t, body, "spotify_search")
	assert.Contains(t, body, "Search query")
	assert.Contains(t, body, "/top-songs")
}

func TestToolReferenceMarksParameterless(t *testing.T) {
	reg := registry.New(nil)
	require.NoError(t, reg.Register(registry.Tool{
		Name:        "spotify_get_devices",
		Description: "List devices",
	}, func(_ context.Context, _ map[string]any) (any, error) {
		return nil, nil
	}))

	d := NewDashboard(reg, nil, "x")
	md := d.toolReference()
	assert.Contains(t, md, "### spotify_get_devices")
	assert.Contains(t, md, "_No parameters._")
}
