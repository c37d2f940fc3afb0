// ABOUTME: Handlers behind the Spotify tool catalogue.
// ABOUTME: Arguments arrive validated and defaulted; failures surface through the error return.

package tools

import (
	"context"
	"fmt"

	"github.com/soundctl/spotify-mcp/internal/spotify"
)

type handlers struct {
	svc spotify.Service
}

func (h *handlers) Search(ctx context.Context, args map[string]any) (any, error) {
	query := stringArg(args, "query")
	kind := stringArg(args, "search_type")
	limit := intArg(args, "limit")

	results, err := h.svc.Search(ctx, query, kind, limit)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	out := map[string]any{
		"query":       query,
		"search_type": kind,
	}
	switch kind {
	case "track":
		out["tracks"] = formatTracks(results.Tracks)
		out["count"] = len(results.Tracks)
	case "album":
		out["albums"] = formatAlbums(results.Albums)
		out["count"] = len(results.Albums)
	case "artist":
		out["artists"] = formatArtists(results.Artists)
		out["count"] = len(results.Artists)
	case "playlist":
		out["playlists"] = formatPlaylists(results.Playlists)
		out["count"] = len(results.Playlists)
	}
	return out, nil
}

func (h *handlers) Play(ctx context.Context, args map[string]any) (any, error) {
	opts := spotify.PlayOptions{DeviceID: stringArg(args, "device_id")}

	switch {
	case stringArg(args, "track_uri") != "":
		opts.URIs = []string{stringArg(args, "track_uri")}
		if err := h.svc.StartPlayback(ctx, opts); err != nil {
			return nil, fmt.Errorf("failed to play track: %w", err)
		}
		return map[string]string{"status": "playing", "track_uri": opts.URIs[0]}, nil
	case stringArg(args, "playlist_uri") != "":
		opts.ContextURI = stringArg(args, "playlist_uri")
		if err := h.svc.StartPlayback(ctx, opts); err != nil {
			return nil, fmt.Errorf("failed to play playlist: %w", err)
		}
		return map[string]string{"status": "playing", "playlist_uri": opts.ContextURI}, nil
	default:
		if err := h.svc.StartPlayback(ctx, opts); err != nil {
			return nil, fmt.Errorf("failed to resume playback: %w", err)
		}
		return map[string]string{"status": "resumed"}, nil
	}
}

func (h *handlers) Pause(ctx context.Context, args map[string]any) (any, error) {
	if err := h.svc.PausePlayback(ctx, stringArg(args, "device_id")); err != nil {
		return nil, fmt.Errorf("failed to pause playback: %w", err)
	}
	return map[string]string{"status": "paused"}, nil
}

func (h *handlers) Resume(ctx context.Context, args map[string]any) (any, error) {
	opts := spotify.PlayOptions{DeviceID: stringArg(args, "device_id")}
	if err := h.svc.StartPlayback(ctx, opts); err != nil {
		return nil, fmt.Errorf("failed to resume playback: %w", err)
	}
	return map[string]string{"status": "resumed"}, nil
}

func (h *handlers) SkipNext(ctx context.Context, args map[string]any) (any, error) {
	if err := h.svc.NextTrack(ctx, stringArg(args, "device_id")); err != nil {
		return nil, fmt.Errorf("failed to skip to next track: %w", err)
	}
	return map[string]string{"status": "skipped to next track"}, nil
}

func (h *handlers) SkipPrevious(ctx context.Context, args map[string]any) (any, error) {
	if err := h.svc.PreviousTrack(ctx, stringArg(args, "device_id")); err != nil {
		return nil, fmt.Errorf("failed to skip to previous track: %w", err)
	}
	return map[string]string{"status": "skipped to previous track"}, nil
}

func (h *handlers) SetVolume(ctx context.Context, args map[string]any) (any, error) {
	volume := intArg(args, "volume")
	if err := h.svc.SetVolume(ctx, volume, stringArg(args, "device_id")); err != nil {
		return nil, fmt.Errorf("failed to set volume: %w", err)
	}
	return map[string]any{"status": "volume set", "volume": volume}, nil
}

func (h *handlers) CurrentTrack(ctx context.Context, _ map[string]any) (any, error) {
	playback, err := h.svc.CurrentPlayback(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current playback: %w", err)
	}
	if playback == nil || playback.Item == nil {
		return map[string]any{"playing": false}, nil
	}

	out := map[string]any{
		"playing":     playback.IsPlaying,
		"progress_ms": playback.ProgressMS,
		"track":       formatTrack(*playback.Item, 0),
	}
	if playback.Device != nil {
		out["device"] = playback.Device.Name
	}
	return out, nil
}

func (h *handlers) Devices(ctx context.Context, _ map[string]any) (any, error) {
	devices, err := h.svc.Devices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get devices: %w", err)
	}

	out := make([]map[string]any, 0, len(devices))
	for _, d := range devices {
		out = append(out, map[string]any{
			"id":             d.ID,
			"name":           d.Name,
			"type":           d.Type,
			"is_active":      d.IsActive,
			"volume_percent": d.VolumePercent,
		})
	}
	return map[string]any{"devices": out, "count": len(out)}, nil
}

func (h *handlers) UserPlaylists(ctx context.Context, args map[string]any) (any, error) {
	playlists, err := h.svc.UserPlaylists(ctx, intArg(args, "limit"))
	if err != nil {
		return nil, fmt.Errorf("failed to get user playlists: %w", err)
	}
	return map[string]any{"playlists": formatPlaylists(playlists), "count": len(playlists)}, nil
}

func (h *handlers) CreatePlaylist(ctx context.Context, args map[string]any) (any, error) {
	playlist, err := h.svc.CreatePlaylist(ctx,
		stringArg(args, "name"),
		stringArg(args, "description"),
		boolArg(args, "public"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create playlist: %w", err)
	}
	return map[string]any{
		"status": "created",
		"id":     playlist.ID,
		"name":   playlist.Name,
		"public": playlist.Public,
	}, nil
}

func (h *handlers) AddToPlaylist(ctx context.Context, args map[string]any) (any, error) {
	uris := stringsArg(args, "track_uris")
	if err := h.svc.AddToPlaylist(ctx, stringArg(args, "playlist_id"), uris); err != nil {
		return nil, fmt.Errorf("failed to add tracks to playlist: %w", err)
	}
	return map[string]any{"status": "added", "track_count": len(uris)}, nil
}

func (h *handlers) TopTracks(ctx context.Context, args map[string]any) (any, error) {
	timeRange := stringArg(args, "time_range")
	tracks, err := h.svc.TopTracks(ctx, timeRange, intArg(args, "limit"))
	if err != nil {
		return nil, fmt.Errorf("failed to get top tracks: %w", err)
	}
	return map[string]any{
		"time_range": timeRange,
		"tracks":     formatTracks(tracks),
		"count":      len(tracks),
	}, nil
}

func (h *handlers) RecentlyPlayed(ctx context.Context, args map[string]any) (any, error) {
	history, err := h.svc.RecentlyPlayed(ctx, intArg(args, "limit"))
	if err != nil {
		return nil, fmt.Errorf("failed to get recently played tracks: %w", err)
	}
	return map[string]any{"tracks": formatHistory(history), "count": len(history)}, nil
}

func (h *handlers) UserProfile(ctx context.Context, _ map[string]any) (any, error) {
	profile, err := h.svc.UserProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}
	return map[string]any{
		"id":           profile.ID,
		"display_name": profile.DisplayName,
		"country":      profile.Country,
		"followers":    profile.Followers,
	}, nil
}

// Argument getters. The dispatcher only passes maps that already validated
// against the declared schema, so a present value has the declared kind.

func stringArg(args map[string]any, name string) string {
	s, _ := args[name].(string)
	return s
}

func intArg(args map[string]any, name string) int {
	n, _ := args[name].(int)
	return n
}

func boolArg(args map[string]any, name string) bool {
	b, _ := args[name].(bool)
	return b
}

func stringsArg(args map[string]any, name string) []string {
	a, _ := args[name].([]string)
	return a
}
