// ABOUTME: Result payload formatting shared by the track-listing tools and the REST song feeds.

package tools

import (
	"time"

	"github.com/soundctl/spotify-mcp/internal/spotify"
)

// formatTrack flattens a track into the ranked shape the original feeds
// expose. rank 0 omits the rank field (single-track contexts).
func formatTrack(t spotify.Track, rank int) map[string]any {
	out := map[string]any{
		"name":          t.Name,
		"uri":           t.URI,
		"artists":       artistNames(t.Artists),
		"album":         t.Album.Name,
		"popularity":    t.Popularity,
		"duration_ms":   t.DurationMS,
		"external_urls": t.ExternalURLs,
	}
	if rank > 0 {
		out["rank"] = rank
	}
	return out
}

func formatTracks(tracks []spotify.Track) []map[string]any {
	out := make([]map[string]any, 0, len(tracks))
	for i, t := range tracks {
		out = append(out, formatTrack(t, i+1))
	}
	return out
}

func formatHistory(history []spotify.PlayHistory) []map[string]any {
	out := make([]map[string]any, 0, len(history))
	for i, h := range history {
		entry := formatTrack(h.Track, i+1)
		entry["played_at"] = h.PlayedAt.Format(time.RFC3339)
		out = append(out, entry)
	}
	return out
}

func formatAlbums(albums []spotify.Album) []map[string]any {
	out := make([]map[string]any, 0, len(albums))
	for _, a := range albums {
		out = append(out, map[string]any{
			"name":         a.Name,
			"artists":      artistNames(a.Artists),
			"total_tracks": a.TotalTracks,
		})
	}
	return out
}

func formatArtists(artists []spotify.Artist) []map[string]any {
	out := make([]map[string]any, 0, len(artists))
	for _, a := range artists {
		out = append(out, map[string]any{
			"name":      a.Name,
			"followers": a.Followers,
		})
	}
	return out
}

func formatPlaylists(playlists []spotify.Playlist) []map[string]any {
	out := make([]map[string]any, 0, len(playlists))
	for _, p := range playlists {
		out = append(out, map[string]any{
			"id":          p.ID,
			"name":        p.Name,
			"owner":       p.Owner,
			"track_count": p.TrackCount,
			"public":      p.Public,
		})
	}
	return out
}

func artistNames(artists []spotify.Artist) []string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		names = append(names, a.Name)
	}
	return names
}
