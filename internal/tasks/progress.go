package tasks

import (
	"fmt"

	"github.com/desertthunder/spotsort/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchLibrary Phase = iota
	FetchPlaylists
	FetchPlaylistItems
	ResolveArtists
	ResolveFeatures
	Classify
	CreatePlaylists
	WriteTracks
	ExportBuckets
)

func (p Phase) String() string {
	switch p {
	case FetchLibrary:
		return "fetch_library"
	case FetchPlaylists:
		return "fetch_playlists"
	case FetchPlaylistItems:
		return "fetch_playlist_items"
	case ResolveArtists:
		return "resolve_artists"
	case ResolveFeatures:
		return "resolve_features"
	case Classify:
		return "classify"
	case CreatePlaylists:
		return "create_playlists"
	case WriteTracks:
		return "write_tracks"
	case ExportBuckets:
		return "export_buckets"
	default:
		return ""
	}
}

func fetchLibraryUpdate(step, total int) ProgressUpdate {
	msg := "Fetching saved tracks..."
	if total > 0 {
		msg = fmt.Sprintf("[%d/%d] Fetching saved tracks...", step, total)
	}
	return ProgressUpdate{
		Phase:   FetchLibrary,
		Step:    step,
		Total:   total,
		Message: msg,
	}
}

func fetchPlaylistsUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylists,
		Step:    step,
		Total:   total,
		Message: "Fetching playlists...",
	}
}

func fetchPlaylistItemsUpdate(step, total int, playlistID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylistItems,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching tracks from %s...", playlistID),
	}
}

func resolveArtistsUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveArtists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Resolving artist metadata...", step, total),
	}
}

func resolveFeaturesUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveFeatures,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Resolving audio features...", step, total),
	}
}

func classifyUpdate(scheme string, trackCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Classify,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Grouping %d tracks by %s...", trackCount, scheme),
	}
}

func createPlaylistUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Creating playlist: %s", step, total, name),
	}
}

func writeTracksUpdate(step, total int, label string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Adding %d tracks to %s...", step, total, count, label),
	}
}

func bucketWrittenUpdate(step, total int, pl *models.Playlist, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d tracks)", step, total, pl.Name, count),
		Data:    pl,
	}
}

func bucketFailedUpdate(step, total int, label string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, label, err),
	}
}

func exportingBucketUpdate(step, total int, label string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportBuckets,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting: %s...", step, total, label),
	}
}

func exportCompletedUpdate(step, total int, label string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportBuckets,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, label, filesCount),
	}
}

func exportFailedUpdate(step, total int, label string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportBuckets,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, label, err),
	}
}
