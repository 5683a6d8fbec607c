package tasks

import "github.com/desertthunder/spotsort/internal/models"

// TrackSource is one fetched source (the liked-songs collection or a single
// playlist) awaiting merge.
type TrackSource struct {
	ID     string // Source identity ([models.LikedSongsID] or a playlist ID)
	Name   string // Display name
	Liked  bool   // True for the liked-songs pseudo-playlist
	Tracks []models.Track
}

// AggregateResult is the merged, deduplicated view of several sources.
type AggregateResult struct {
	Tracks     []models.Track // Deduplicated, first-seen order
	Sources    []TrackSource  // Inputs in the order they were fetched
	Duplicates int            // Occurrences dropped by identity
}

// MergeSources flattens sources in order and deduplicates by track identity.
//
// The first occurrence of each track wins its position; later occurrences
// are dropped and counted. Tracks the catalog returned without an identity
// cannot be deduplicated and are kept as-is.
func MergeSources(sources []TrackSource) ([]models.Track, int) {
	seen := make(map[string]bool)
	var merged []models.Track
	duplicates := 0

	for _, source := range sources {
		for _, track := range source.Tracks {
			if track.ID == "" {
				merged = append(merged, track)
				continue
			}
			if seen[track.ID] {
				duplicates++
				continue
			}
			seen[track.ID] = true
			merged = append(merged, track)
		}
	}

	return merged, duplicates
}
