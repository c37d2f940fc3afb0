// ABOUTME: Entry point for the Spotify MCP server.
// ABOUTME: Serves the tool catalogue over stdio or HTTP and handles OAuth login.

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/fatih/color"

	"github.com/soundctl/spotify-mcp/internal/config"
	"github.com/soundctl/spotify-mcp/internal/dispatch"
	"github.com/soundctl/spotify-mcp/internal/httpapi"
	"github.com/soundctl/spotify-mcp/internal/registry"
	"github.com/soundctl/spotify-mcp/internal/spotify"
	"github.com/soundctl/spotify-mcp/internal/stream"
	"github.com/soundctl/spotify-mcp/internal/tools"
	"github.com/soundctl/spotify-mcp/internal/webui"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
                 _   _  __
 ___ _ __   ___ | |_(_)/ _|_   _       _ __ ___   ___ _ __
/ __| '_ \ / _ \| __| | |_| | | |_____| '_ ' _ \ / __| '_ \
\__ \ |_) | (_) | |_| |  _| |_| |_____| | | | | | (__| |_) |
|___/ .__/ \___/ \__|_|_|  \__, |     |_| |_| |_|\___| .__/
    |_|                    |___/                     |_|
`

// getConfigPath returns the path to the server config file.
// Priority: SPOTIFY_MCP_CONFIG env var > XDG_CONFIG_HOME/spotify-mcp/config.yaml > ~/.config/spotify-mcp/config.yaml
func getConfigPath() string {
	if envPath := os.Getenv("SPOTIFY_MCP_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "spotify-mcp", "config.yaml")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: spotify-mcp <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve   Serve MCP over stdio")
		fmt.Println("  http    Serve the HTTP API")
		fmt.Println("  tools   List the registered tools")
		fmt.Println("  login   Authorize with Spotify and save the token")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "http":
		err = runHTTP(ctx)
	case "tools":
		err = runTools()
	case "login":
		err = runLogin(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// build wires the full stack. Logs go to w; the stdio transport owns stdout,
// so serve passes stderr.
func build(logWriter io.Writer) (*config.Config, *slog.Logger, *registry.Registry, *dispatch.Dispatcher, error) {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("validating config: %w", err)
	}

	logger := setupLogger(cfg.Logging, logWriter)

	client, err := spotify.NewClient(spotify.Config{
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
		RedirectURL:  cfg.Spotify.RedirectURI,
		Scopes:       cfg.Spotify.Scopes,
		TokenFile:    cfg.Spotify.TokenFile,
	}, logger)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("creating spotify client: %w", err)
	}

	reg := registry.New(logger)
	if err := tools.RegisterAll(reg, client); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("registering tools: %w", err)
	}

	return cfg, logger, reg, dispatch.New(reg, logger), nil
}

func runServe(ctx context.Context) error {
	cfg, logger, reg, disp, err := build(os.Stderr)
	if err != nil {
		return err
	}

	srv, err := stream.New(stream.Config{
		Dispatcher: disp,
		Registry:   reg,
		Logger:     logger,
		Name:       cfg.Server.Name,
		Version:    cfg.Server.Version,
	})
	if err != nil {
		return fmt.Errorf("creating stream server: %w", err)
	}

	logger.Info("serving mcp over stdio", "tools", reg.Len())
	return srv.Serve(ctx, os.Stdin, os.Stdout)
}

func runHTTP(ctx context.Context) error {
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)
	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, logger, reg, disp, err := build(os.Stdout)
	if err != nil {
		return err
	}

	dashboard := webui.NewDashboard(reg, logger, cfg.Server.Name)
	srv, err := httpapi.New(httpapi.Config{
		Dispatcher: disp,
		Registry:   reg,
		Logger:     logger,
		Name:       cfg.Server.Name,
		Version:    cfg.Server.Version,
		Dashboard:  dashboard,
	})
	if err != nil {
		return fmt.Errorf("creating http server: %w", err)
	}

	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:  %s\n", cfg.Server.HTTPAddr)
	green.Print("    ▶ ")
	fmt.Printf("Tools: %d\n\n", reg.Len())

	return srv.ListenAndServe(ctx, cfg.Server.HTTPAddr)
}

func runTools() error {
	_, _, reg, _, err := build(os.Stderr)
	if err != nil {
		return err
	}

	bold := color.New(color.Bold)
	for _, t := range reg.List() {
		bold.Println(t.Name)
		fmt.Printf("    %s\n", t.Description)
	}
	fmt.Printf("\n%d tools\n", reg.Len())
	return nil
}

func runLogin(ctx context.Context) error {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}
	logger := setupLogger(cfg.Logging, os.Stderr)

	client, err := spotify.NewClient(spotify.Config{
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
		RedirectURL:  cfg.Spotify.RedirectURI,
		Scopes:       cfg.Spotify.Scopes,
		TokenFile:    cfg.Spotify.TokenFile,
	}, logger)
	if err != nil {
		return fmt.Errorf("creating spotify client: %w", err)
	}

	fmt.Println("Open this URL in your browser and authorize the app:")
	fmt.Println()
	color.New(color.FgCyan).Println("  " + client.AuthCodeURL("spotify-mcp"))
	fmt.Println()
	fmt.Print("Paste the 'code' parameter from the redirect URL: ")

	reader := bufio.NewReader(os.Stdin)
	code, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("reading code: %w", err)
	}

	if err := client.Authorize(ctx, strings.TrimSpace(code)); err != nil {
		return fmt.Errorf("authorizing: %w", err)
	}

	color.New(color.FgGreen).Printf("Token saved to %s\n", cfg.Spotify.TokenFile)
	return nil
}

func setupLogger(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = &colorHandler{
			level: level,
			out:   w,
		}
	}

	return slog.New(handler)
}

// colorHandler provides colorized log output with thread-safe writes.
type colorHandler struct {
	mu     sync.Mutex
	level  slog.Level
	out    io.Writer
	attrs  []slog.Attr
	groups []string
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var buf strings.Builder

	buf.WriteString(color.HiBlackString(r.Time.Format("15:04:05") + " "))

	switch r.Level {
	case slog.LevelDebug:
		buf.WriteString(color.MagentaString("DBG "))
	case slog.LevelInfo:
		buf.WriteString(color.CyanString("INF "))
	case slog.LevelWarn:
		buf.WriteString(color.YellowString("WRN "))
	case slog.LevelError:
		buf.WriteString(color.New(color.FgRed, color.Bold).Sprint("ERR "))
	default:
		buf.WriteString("??? ")
	}

	buf.WriteString(r.Message)

	// Handler-level attrs first (from WithAttrs)
	for _, a := range h.attrs {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
	}

	r.Attrs(func(a slog.Attr) bool {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
		return true
	})

	buf.WriteString("\n")
	_, err := io.WriteString(h.out, buf.String())
	return err
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	newAttrs = append(newAttrs, attrs...)
	return &colorHandler{
		level:  h.level,
		out:    h.out,
		attrs:  newAttrs,
		groups: h.groups,
	}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	newGroups := make([]string, len(h.groups), len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups = append(newGroups, name)
	return &colorHandler{
		level:  h.level,
		out:    h.out,
		attrs:  h.attrs,
		groups: newGroups,
	}
}
