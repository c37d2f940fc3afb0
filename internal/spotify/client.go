// ABOUTME: Spotify Web API client implementing the Service interface.
// ABOUTME: Owns OAuth token lifecycle: load from disk, auto-refresh, persist on rotation.

package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
	oauthspotify "golang.org/x/oauth2/spotify"
)

const defaultBaseURL = "https://api.spotify.com/v1"

// Config holds the OAuth application credentials and token storage location.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
	TokenFile    string
}

// APIError is a non-2xx response from the Spotify Web API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("spotify api: %s (status %d)", e.Message, e.Status)
}

// Client talks to the Spotify Web API. It is safe for concurrent use; each
// request is independent and the token source serializes refreshes.
type Client struct {
	oauth   *oauth2.Config
	http    *http.Client
	baseURL string
	tokens  *tokenStore
	logger  *slog.Logger
}

// NewClient builds a Client from credentials. If a previously saved token
// exists it is loaded and refreshed transparently; otherwise API calls fail
// with an auth error until Authorize completes (see the login command).
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	oc := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       cfg.Scopes,
		Endpoint:     oauthspotify.Endpoint,
	}

	c := &Client{
		oauth:   oc,
		http:    http.DefaultClient,
		baseURL: defaultBaseURL,
		tokens:  newTokenStore(cfg.TokenFile, logger),
		logger:  logger,
	}

	tok, err := c.tokens.load()
	if err != nil {
		return nil, fmt.Errorf("loading saved token: %w", err)
	}
	if tok != nil {
		c.installToken(tok)
		logger.Debug("spotify token loaded", "token_file", cfg.TokenFile)
	}

	return c, nil
}

// AuthCodeURL returns the URL the user visits to authorize the application.
func (c *Client) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Authorize exchanges an authorization code for a token, persists it, and
// switches the client to authenticated requests.
func (c *Client) Authorize(ctx context.Context, code string) error {
	tok, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchanging authorization code: %w", err)
	}
	if err := c.tokens.save(tok); err != nil {
		return err
	}
	c.installToken(tok)
	c.logger.Info("spotify authorization complete")
	return nil
}

// installToken wires an http.Client whose token source refreshes and
// re-persists tokens as they rotate.
func (c *Client) installToken(tok *oauth2.Token) {
	src := c.oauth.TokenSource(context.Background(), tok)
	c.http = oauth2.NewClient(context.Background(), c.tokens.wrap(src))
}

// Search queries the catalogue for one content kind.
func (c *Client) Search(ctx context.Context, query, kind string, limit int) (*SearchResults, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("type", kind)
	q.Set("limit", strconv.Itoa(limit))

	var body struct {
		Tracks    page[Track]        `json:"tracks"`
		Albums    page[Album]        `json:"albums"`
		Artists   page[artistWire]   `json:"artists"`
		Playlists page[playlistWire] `json:"playlists"`
	}
	if err := c.send(ctx, http.MethodGet, "/search", q, nil, &body); err != nil {
		return nil, err
	}

	out := &SearchResults{
		Tracks: body.Tracks.Items,
		Albums: body.Albums.Items,
	}
	for _, a := range body.Artists.Items {
		out.Artists = append(out.Artists, a.artist())
	}
	for _, p := range body.Playlists.Items {
		out.Playlists = append(out.Playlists, p.playlist())
	}
	return out, nil
}

// CurrentPlayback returns the playback state, or nil when nothing is active.
func (c *Client) CurrentPlayback(ctx context.Context) (*Playback, error) {
	var pb Playback
	found, err := c.sendMaybe(ctx, http.MethodGet, "/me/player", nil, nil, &pb)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &pb, nil
}

// StartPlayback starts or resumes playback per opts.
func (c *Client) StartPlayback(ctx context.Context, opts PlayOptions) error {
	q := deviceQuery(opts.DeviceID)
	payload := map[string]any{}
	if opts.ContextURI != "" {
		payload["context_uri"] = opts.ContextURI
	}
	if len(opts.URIs) > 0 {
		payload["uris"] = opts.URIs
	}
	var body any
	if len(payload) > 0 {
		body = payload
	}
	return c.send(ctx, http.MethodPut, "/me/player/play", q, body, nil)
}

// PausePlayback pauses playback on the given (or active) device.
func (c *Client) PausePlayback(ctx context.Context, deviceID string) error {
	return c.send(ctx, http.MethodPut, "/me/player/pause", deviceQuery(deviceID), nil, nil)
}

// NextTrack skips to the next track.
func (c *Client) NextTrack(ctx context.Context, deviceID string) error {
	return c.send(ctx, http.MethodPost, "/me/player/next", deviceQuery(deviceID), nil, nil)
}

// PreviousTrack skips to the previous track.
func (c *Client) PreviousTrack(ctx context.Context, deviceID string) error {
	return c.send(ctx, http.MethodPost, "/me/player/previous", deviceQuery(deviceID), nil, nil)
}

// SetVolume sets the playback volume percentage.
func (c *Client) SetVolume(ctx context.Context, percent int, deviceID string) error {
	q := deviceQuery(deviceID)
	q.Set("volume_percent", strconv.Itoa(percent))
	return c.send(ctx, http.MethodPut, "/me/player/volume", q, nil, nil)
}

// Devices lists the user's available playback devices.
func (c *Client) Devices(ctx context.Context) ([]Device, error) {
	var body struct {
		Devices []Device `json:"devices"`
	}
	if err := c.send(ctx, http.MethodGet, "/me/player/devices", nil, nil, &body); err != nil {
		return nil, err
	}
	return body.Devices, nil
}

// UserPlaylists lists the current user's playlists.
func (c *Client) UserPlaylists(ctx context.Context, limit int) ([]Playlist, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))

	var body page[playlistWire]
	if err := c.send(ctx, http.MethodGet, "/me/playlists", q, nil, &body); err != nil {
		return nil, err
	}
	out := make([]Playlist, 0, len(body.Items))
	for _, p := range body.Items {
		out = append(out, p.playlist())
	}
	return out, nil
}

// CreatePlaylist creates a playlist owned by the current user.
func (c *Client) CreatePlaylist(ctx context.Context, name, description string, public bool) (*Playlist, error) {
	me, err := c.UserProfile(ctx)
	if err != nil {
		return nil, err
	}

	payload := map[string]any{
		"name":        name,
		"description": description,
		"public":      public,
	}
	var created playlistWire
	path := "/users/" + url.PathEscape(me.ID) + "/playlists"
	if err := c.send(ctx, http.MethodPost, path, nil, payload, &created); err != nil {
		return nil, err
	}
	pl := created.playlist()
	return &pl, nil
}

// AddToPlaylist appends track URIs to a playlist.
func (c *Client) AddToPlaylist(ctx context.Context, playlistID string, trackURIs []string) error {
	payload := map[string]any{"uris": trackURIs}
	path := "/playlists/" + url.PathEscape(playlistID) + "/tracks"
	return c.send(ctx, http.MethodPost, path, nil, payload, nil)
}

// TopTracks returns the user's top tracks over the given time range.
func (c *Client) TopTracks(ctx context.Context, timeRange string, limit int) ([]Track, error) {
	q := url.Values{}
	q.Set("time_range", timeRange)
	q.Set("limit", strconv.Itoa(limit))

	var body page[Track]
	if err := c.send(ctx, http.MethodGet, "/me/top/tracks", q, nil, &body); err != nil {
		return nil, err
	}
	return body.Items, nil
}

// RecentlyPlayed returns the user's recently played tracks.
func (c *Client) RecentlyPlayed(ctx context.Context, limit int) ([]PlayHistory, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))

	var body page[PlayHistory]
	if err := c.send(ctx, http.MethodGet, "/me/player/recently-played", q, nil, &body); err != nil {
		return nil, err
	}
	return body.Items, nil
}

// UserProfile returns the current user's profile.
func (c *Client) UserProfile(ctx context.Context) (*User, error) {
	var body userWire
	if err := c.send(ctx, http.MethodGet, "/me", nil, nil, &body); err != nil {
		return nil, err
	}
	u := body.user()
	return &u, nil
}

// send performs one API request. A 204 with an expected body is an error;
// use sendMaybe for endpoints where "nothing there" is a normal outcome.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, payload, out any) error {
	found, err := c.sendMaybe(ctx, method, path, query, payload, out)
	if err != nil {
		return err
	}
	if out != nil && !found {
		return &APIError{Status: http.StatusNoContent, Message: "empty response"}
	}
	return nil
}

// sendMaybe performs one API request and reports whether a body was present.
func (c *Client) sendMaybe(ctx context.Context, method, path string, query url.Values, payload, out any) (bool, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return false, fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return false, fmt.Errorf("building request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("calling spotify api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return false, apiError(resp)
	}
	if resp.StatusCode == http.StatusNoContent || out == nil {
		return false, nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("reading response: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("decoding response: %w", err)
	}
	return true, nil
}

// apiError decodes the API's {"error":{"status","message"}} shape, falling
// back to the raw body when the response is not that shape.
func apiError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var body struct {
		Error struct {
			Status  int    `json:"status"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Error.Message != "" {
		return &APIError{Status: resp.StatusCode, Message: body.Error.Message}
	}

	msg := strings.TrimSpace(string(data))
	if msg == "" {
		msg = resp.Status
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}

func deviceQuery(deviceID string) url.Values {
	q := url.Values{}
	if deviceID != "" {
		q.Set("device_id", deviceID)
	}
	return q
}
