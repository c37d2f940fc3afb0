// ABOUTME: Capability interface the tool handlers depend on, one method per domain operation.
// ABOUTME: The dispatch core never sees transport details of the upstream API, only these results.

package spotify

import "context"

// Service is the capability boundary between the tool handlers and the
// Spotify Web API. Implementations own authentication and HTTP concerns;
// callers see structured values or an error.
type Service interface {
	Search(ctx context.Context, query, kind string, limit int) (*SearchResults, error)
	CurrentPlayback(ctx context.Context) (*Playback, error)
	StartPlayback(ctx context.Context, opts PlayOptions) error
	PausePlayback(ctx context.Context, deviceID string) error
	NextTrack(ctx context.Context, deviceID string) error
	PreviousTrack(ctx context.Context, deviceID string) error
	SetVolume(ctx context.Context, percent int, deviceID string) error
	Devices(ctx context.Context) ([]Device, error)
	UserPlaylists(ctx context.Context, limit int) ([]Playlist, error)
	CreatePlaylist(ctx context.Context, name, description string, public bool) (*Playlist, error)
	AddToPlaylist(ctx context.Context, playlistID string, trackURIs []string) error
	TopTracks(ctx context.Context, timeRange string, limit int) ([]Track, error)
	RecentlyPlayed(ctx context.Context, limit int) ([]PlayHistory, error)
	UserProfile(ctx context.Context) (*User, error)
}

// PlayOptions selects what StartPlayback plays. With a zero value, playback
// resumes whatever is paused on the (optionally named) device.
type PlayOptions struct {
	DeviceID   string
	ContextURI string   // album/playlist URI
	URIs       []string // individual track URIs
}
