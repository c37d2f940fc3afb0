// ABOUTME: Structured values returned across the Service boundary.
// ABOUTME: Field names mirror the Spotify Web API JSON for direct unmarshaling.

package spotify

import "time"

// Artist is a performing artist. Followers is only populated on artist
// search results; the API omits it on the artist stubs inside tracks.
type Artist struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Followers int    `json:"-"`
}

// Album is the album stub attached to tracks and album search results.
type Album struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	TotalTracks int      `json:"total_tracks"`
	Artists     []Artist `json:"artists"`
}

// Track is a playable track.
type Track struct {
	ID           string            `json:"id"`
	URI          string            `json:"uri"`
	Name         string            `json:"name"`
	Artists      []Artist          `json:"artists"`
	Album        Album             `json:"album"`
	Popularity   int               `json:"popularity"`
	DurationMS   int               `json:"duration_ms"`
	ExternalURLs map[string]string `json:"external_urls"`
}

// PlayHistory is one entry from the recently-played feed.
type PlayHistory struct {
	Track    Track     `json:"track"`
	PlayedAt time.Time `json:"played_at"`
}

// Playback is the current playback state; Item is nil when nothing plays.
type Playback struct {
	IsPlaying  bool    `json:"is_playing"`
	ProgressMS int     `json:"progress_ms"`
	Item       *Track  `json:"item"`
	Device     *Device `json:"device"`
}

// Device is a Spotify Connect playback device.
type Device struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	IsActive      bool   `json:"is_active"`
	VolumePercent int    `json:"volume_percent"`
}

// Playlist is a user playlist.
type Playlist struct {
	ID          string `json:"id"`
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Public      bool   `json:"public"`
	Owner       string `json:"-"`
	TrackCount  int    `json:"-"`
}

// User is the current user's profile.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Country     string `json:"country"`
	Followers   int    `json:"-"`
}

// SearchResults holds the slice matching the requested search kind; the
// other slices are empty.
type SearchResults struct {
	Tracks    []Track
	Albums    []Album
	Artists   []Artist
	Playlists []Playlist
}
