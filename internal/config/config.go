// ABOUTME: Configuration loading for the Spotify MCP server.
// ABOUTME: Reads YAML with ${VAR} expansion, falling back to environment variables.

package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// defaultScopes are the Spotify OAuth scopes the tool catalogue needs.
var defaultScopes = []string{
	"user-read-playback-state",
	"user-modify-playback-state",
	"user-read-currently-playing",
	"playlist-read-private",
	"playlist-modify-public",
	"playlist-modify-private",
	"user-read-recently-played",
	"user-top-read",
	"user-read-email",
	"user-read-private",
}

// Config holds the complete server configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Spotify SpotifyConfig `yaml:"spotify"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig holds server identity and listener settings
type ServerConfig struct {
	Name     string `yaml:"name"`
	Version  string `yaml:"version"`
	HTTPAddr string `yaml:"http_addr"`
}

// SpotifyConfig holds the OAuth application credentials
type SpotifyConfig struct {
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	RedirectURI  string   `yaml:"redirect_uri"`
	Scopes       []string `yaml:"scopes"`
	TokenFile    string   `yaml:"token_file"`
}

// LoggingConfig holds log output settings
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded. A missing file
// is not an error; credentials can come entirely from the environment, including
// a .env file in the working directory.
func Load(path string) (*Config, error) {
	// Best-effort; a missing .env file is normal
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		expandedData := expandEnvVars(string(data))
		if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// fall through to env and defaults
	default:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyEnv fills credentials from well-known environment variables when the
// file did not provide them.
func (c *Config) applyEnv() {
	if c.Spotify.ClientID == "" {
		c.Spotify.ClientID = os.Getenv("SPOTIFY_CLIENT_ID")
	}
	if c.Spotify.ClientSecret == "" {
		c.Spotify.ClientSecret = os.Getenv("SPOTIFY_CLIENT_SECRET")
	}
	if c.Spotify.RedirectURI == "" {
		c.Spotify.RedirectURI = os.Getenv("SPOTIFY_REDIRECT_URI")
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Name == "" {
		c.Server.Name = "spotify-mcp-server"
	}
	if c.Server.Version == "" {
		c.Server.Version = "1.0.0"
	}
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = ":8000"
	}
	if c.Spotify.RedirectURI == "" {
		c.Spotify.RedirectURI = "http://localhost:8888/callback"
	}
	if len(c.Spotify.Scopes) == 0 {
		c.Spotify.Scopes = defaultScopes
	}
	if c.Spotify.TokenFile == "" {
		c.Spotify.TokenFile = "spotify_token.json"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Validate checks that all required configuration fields are present.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Spotify.ClientID == "" {
		return fmt.Errorf("spotify.client_id is required (or set SPOTIFY_CLIENT_ID)")
	}
	if c.Spotify.ClientSecret == "" {
		return fmt.Errorf("spotify.client_secret is required (or set SPOTIFY_CLIENT_SECRET)")
	}
	return nil
}
