// ABOUTME: The Spotify tool catalogue: declarations with schemas bound to handlers.
// ABOUTME: Single source of truth consumed by every transport through the registry.

package tools

import (
	"github.com/soundctl/spotify-mcp/internal/registry"
	"github.com/soundctl/spotify-mcp/internal/schema"
	"github.com/soundctl/spotify-mcp/internal/spotify"
)

// Binding pairs a tool declaration with its handler.
type Binding struct {
	Tool    registry.Tool
	Handler registry.Handler
}

// Catalogue returns every Spotify tool bound to handlers over svc, in the
// order they are listed to callers.
func Catalogue(svc spotify.Service) []Binding {
	h := &handlers{svc: svc}
	return []Binding{
		{
			Tool: registry.Tool{
				Name:        "spotify_search",
				Description: "Search for tracks, albums, artists, or playlists on Spotify",
				Schema: schema.Definition{Fields: []schema.Field{
					{Name: "query", Kind: schema.String, Description: "Search query", Required: true},
					{Name: "search_type", Kind: schema.String, Description: "Type of content to search for",
						Enum: []string{"track", "album", "artist", "playlist"}, Default: "track"},
					{Name: "limit", Kind: schema.Integer, Description: "Number of results to return",
						Default: 20, Min: ptr(1), Max: ptr(50)},
				}},
			},
			Handler: h.Search,
		},
		{
			Tool: registry.Tool{
				Name:        "spotify_play",
				Description: "Start or resume Spotify playback",
				Schema: schema.Definition{Fields: []schema.Field{
					{Name: "track_uri", Kind: schema.String, Description: "Spotify URI of the track to play (optional)"},
					{Name: "playlist_uri", Kind: schema.String, Description: "Spotify URI of the playlist to play (optional)"},
					{Name: "device_id", Kind: schema.String, Description: "Device ID to play on (optional)"},
				}},
			},
			Handler: h.Play,
		},
		{
			Tool: registry.Tool{
				Name:        "spotify_pause",
				Description: "Pause Spotify playback",
				Schema: schema.Definition{Fields: []schema.Field{
					{Name: "device_id", Kind: schema.String, Description: "Device ID to pause on (optional)"},
				}},
			},
			Handler: h.Pause,
		},
		{
			Tool: registry.Tool{
				Name:        "spotify_resume",
				Description: "Resume paused Spotify playback",
				Schema: schema.Definition{Fields: []schema.Field{
					{Name: "device_id", Kind: schema.String, Description: "Device ID to resume on (optional)"},
				}},
			},
			Handler: h.Resume,
		},
		{
			Tool: registry.Tool{
				Name:        "spotify_skip_next",
				Description: "Skip to the next track",
				Schema: schema.Definition{Fields: []schema.Field{
					{Name: "device_id", Kind: schema.String, Description: "Device ID to skip on (optional)"},
				}},
			},
			Handler: h.SkipNext,
		},
		{
			Tool: registry.Tool{
				Name:        "spotify_skip_previous",
				Description: "Skip to the previous track",
				Schema: schema.Definition{Fields: []schema.Field{
					{Name: "device_id", Kind: schema.String, Description: "Device ID to skip on (optional)"},
				}},
			},
			Handler: h.SkipPrevious,
		},
		{
			Tool: registry.Tool{
				Name:        "spotify_set_volume",
				Description: "Set Spotify playback volume",
				Schema: schema.Definition{Fields: []schema.Field{
					{Name: "volume", Kind: schema.Integer, Description: "Volume percentage (0-100)",
						Required: true, Min: ptr(0), Max: ptr(100)},
					{Name: "device_id", Kind: schema.String, Description: "Device ID to set volume on (optional)"},
				}},
			},
			Handler: h.SetVolume,
		},
		{
			Tool: registry.Tool{
				Name:        "spotify_get_current_track",
				Description: "Get information about the currently playing track",
				Schema:      schema.Definition{},
			},
			Handler: h.CurrentTrack,
		},
		{
			Tool: registry.Tool{
				Name:        "spotify_get_devices",
				Description: "Get available Spotify devices",
				Schema:      schema.Definition{},
			},
			Handler: h.Devices,
		},
		{
			Tool: registry.Tool{
				Name:        "spotify_get_user_playlists",
				Description: "Get user's playlists",
				Schema: schema.Definition{Fields: []schema.Field{
					{Name: "limit", Kind: schema.Integer, Description: "Number of playlists to return",
						Default: 50, Min: ptr(1), Max: ptr(50)},
				}},
			},
			Handler: h.UserPlaylists,
		},
		{
			Tool: registry.Tool{
				Name:        "spotify_create_playlist",
				Description: "Create a new playlist",
				Schema: schema.Definition{Fields: []schema.Field{
					{Name: "name", Kind: schema.String, Description: "Playlist name", Required: true},
					{Name: "description", Kind: schema.String, Description: "Playlist description", Default: ""},
					{Name: "public", Kind: schema.Boolean, Description: "Whether the playlist should be public", Default: false},
				}},
			},
			Handler: h.CreatePlaylist,
		},
		{
			Tool: registry.Tool{
				Name:        "spotify_add_to_playlist",
				Description: "Add tracks to a playlist",
				Schema: schema.Definition{Fields: []schema.Field{
					{Name: "playlist_id", Kind: schema.String, Description: "Spotify playlist ID", Required: true},
					{Name: "track_uris", Kind: schema.StringArray, Description: "List of Spotify track URIs to add", Required: true},
				}},
			},
			Handler: h.AddToPlaylist,
		},
		{
			Tool: registry.Tool{
				Name:        "spotify_get_user_top_tracks",
				Description: "Get user's top tracks",
				Schema: schema.Definition{Fields: []schema.Field{
					{Name: "time_range", Kind: schema.String, Description: "Time range for top tracks",
						Enum: []string{"short_term", "medium_term", "long_term"}, Default: "medium_term"},
					{Name: "limit", Kind: schema.Integer, Description: "Number of tracks to return",
						Default: 20, Min: ptr(1), Max: ptr(50)},
				}},
			},
			Handler: h.TopTracks,
		},
		{
			Tool: registry.Tool{
				Name:        "spotify_get_recently_played",
				Description: "Get recently played tracks",
				Schema: schema.Definition{Fields: []schema.Field{
					{Name: "limit", Kind: schema.Integer, Description: "Number of tracks to return",
						Default: 20, Min: ptr(1), Max: ptr(50)},
				}},
			},
			Handler: h.RecentlyPlayed,
		},
		{
			Tool: registry.Tool{
				Name:        "spotify_get_user_profile",
				Description: "Get current user's profile information",
				Schema:      schema.Definition{},
			},
			Handler: h.UserProfile,
		},
	}
}

// RegisterAll registers the full catalogue on reg.
func RegisterAll(reg *registry.Registry, svc spotify.Service) error {
	for _, b := range Catalogue(svc) {
		if err := reg.Register(b.Tool, b.Handler); err != nil {
			return err
		}
	}
	return nil
}

func ptr(v int) *int { return &v }
