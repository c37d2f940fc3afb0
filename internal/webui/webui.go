// ABOUTME: Serves the browser dashboard with listening stats and a tool reference.
// ABOUTME: The tool reference is generated from the registry as markdown and rendered with goldmark.

package webui

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/soundctl/spotify-mcp/internal/registry"
)

//go:embed templates/*.html
var templateFS embed.FS

// Dashboard renders the single-page dashboard. Stats are fetched client-side
// from the /top-songs and /recent-songs endpoints.
type Dashboard struct {
	registry *registry.Registry
	logger   *slog.Logger
	name     string
}

// NewDashboard creates the dashboard handler.
func NewDashboard(reg *registry.Registry, logger *slog.Logger, name string) *Dashboard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dashboard{registry: reg, logger: logger, name: name}
}

func (d *Dashboard) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	var htmlBuf bytes.Buffer
	if err := goldmark.Convert([]byte(d.toolReference()), &htmlBuf); err != nil {
		d.logger.Error("failed to convert tool reference", "error", err)
		htmlBuf.WriteString("<p>Tool reference unavailable.</p>")
	}

	data := struct {
		Name      string
		ToolCount int
		Reference template.HTML
	}{
		Name:      d.name,
		ToolCount: d.registry.Len(),
		Reference: template.HTML(htmlBuf.String()),
	}

	tmpl := template.Must(template.ParseFS(templateFS, "templates/dashboard.html"))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		d.logger.Error("failed to render dashboard", "error", err)
	}
}

// toolReference builds a markdown summary of every registered tool and its
// parameters, in registration order.
func (d *Dashboard) toolReference() string {
	var b strings.Builder
	for _, t := range d.registry.List() {
		fmt.Fprintf(&b, "### %s\n\n%s\n\n", t.Name, t.Description)
		if len(t.Schema.Fields) == 0 {
			b.WriteString("_No parameters._\n\n")
			continue
		}
		for _, f := range t.Schema.Fields {
			req := "optional"
			if f.Required {
				req = "required"
			}
			fmt.Fprintf(&b, "- `%s` (%s, %s): %s\n", f.Name, f.Kind, req, f.Description)
		}
		b.WriteString("\n")
	}
	return b.String()
}
