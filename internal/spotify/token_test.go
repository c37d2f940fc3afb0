// ABOUTME: Tests for token persistence and re-persistence on rotation.

package spotify

import (
	"errors"
	"path/filepath"
	"testing"

	"golang.org/x/oauth2"
)

func TestTokenStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	store := newTokenStore(path, nil)

	if tok, err := store.load(); err != nil || tok != nil {
		t.Fatalf("load before save = %v, %v", tok, err)
	}

	saved := &oauth2.Token{AccessToken: "at-1", RefreshToken: "rt-1", TokenType: "Bearer"}
	if err := store.save(saved); err != nil {
		t.Fatalf("save() = %v", err)
	}

	tok, err := store.load()
	if err != nil {
		t.Fatalf("load() = %v", err)
	}
	if tok.AccessToken != "at-1" || tok.RefreshToken != "rt-1" {
		t.Errorf("loaded token = %+v", tok)
	}
}

type staticSource struct {
	tok *oauth2.Token
	err error
}

func (s *staticSource) Token() (*oauth2.Token, error) { return s.tok, s.err }

func TestSavingSourcePersistsRotatedTokens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	store := newTokenStore(path, nil)

	src := &staticSource{tok: &oauth2.Token{AccessToken: "at-1", RefreshToken: "rt-1"}}
	wrapped := store.wrap(src)

	if _, err := wrapped.Token(); err != nil {
		t.Fatal(err)
	}
	first, err := store.load()
	if err != nil || first.AccessToken != "at-1" {
		t.Fatalf("first persisted token = %v, %v", first, err)
	}

	src.tok = &oauth2.Token{AccessToken: "at-2", RefreshToken: "rt-1"}
	if _, err := wrapped.Token(); err != nil {
		t.Fatal(err)
	}
	second, err := store.load()
	if err != nil || second.AccessToken != "at-2" {
		t.Fatalf("rotated token not persisted: %v, %v", second, err)
	}
}

func TestSavingSourcePropagatesSourceErrors(t *testing.T) {
	store := newTokenStore("", nil)
	wantErr := errors.New("refresh failed")
	wrapped := store.wrap(&staticSource{err: wantErr})

	if _, err := wrapped.Token(); !errors.Is(err, wantErr) {
		t.Errorf("Token() = %v, want %v", err, wantErr)
	}
}
