// ABOUTME: OAuth token persistence: a single JSON document on disk, rewritten when the token rotates.

package spotify

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/oauth2"
)

// tokenStore reads and writes the saved token file. Tokens are the only
// durable state this process keeps.
type tokenStore struct {
	path   string
	logger *slog.Logger
}

func newTokenStore(path string, logger *slog.Logger) *tokenStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &tokenStore{path: path, logger: logger}
}

// load returns the saved token, or nil when no token has been saved yet.
func (s *tokenStore) load() (*oauth2.Token, error) {
	if s.path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("parsing token file %s: %w", s.path, err)
	}
	return &tok, nil
}

func (s *tokenStore) save(tok *oauth2.Token) error {
	if s.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("writing token file %s: %w", s.path, err)
	}
	return nil
}

// wrap decorates a token source so refreshed tokens are written back to
// disk, keeping the saved token usable across restarts.
func (s *tokenStore) wrap(src oauth2.TokenSource) oauth2.TokenSource {
	return &savingSource{store: s, src: src}
}

type savingSource struct {
	mu    sync.Mutex
	store *tokenStore
	src   oauth2.TokenSource
	last  string // access token last persisted
}

func (p *savingSource) Token() (*oauth2.Token, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tok, err := p.src.Token()
	if err != nil {
		return nil, err
	}
	if tok.AccessToken != p.last {
		if err := p.store.save(tok); err != nil {
			// A failed write is not fatal: the refreshed token still works
			// for this process, it just won't survive a restart.
			p.store.logger.Warn("failed to persist refreshed token", "error", err)
		} else {
			p.store.logger.Debug("refreshed token persisted")
		}
		p.last = tok.AccessToken
	}
	return tok, nil
}
