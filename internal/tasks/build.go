package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/spotsort/internal/services"
	"github.com/desertthunder/spotsort/internal/shared"
)

// DefaultPrefix names every created playlist when no prefix is configured.
const DefaultPrefix = "SpotifySort"

// MaterializeOpts configures a playlist build.
type MaterializeOpts struct {
	Prefix    string // Playlist name prefix (default: [DefaultPrefix])
	Public    bool   // Visibility of created playlists
	MinTracks int    // Skip buckets with fewer writable tracks (0 = no floor)
}

// BucketWriteResult is the outcome of writing one bucket.
type BucketWriteResult struct {
	Label        string `json:"label"`
	PlaylistID   string `json:"playlist_id,omitempty"`
	PlaylistName string `json:"playlist_name,omitempty"`
	Written      int    `json:"written"` // Tracks successfully appended
	Skipped      int    `json:"skipped"` // Unwritable tracks excluded up front
	Error        error  `json:"-"`
}

// MaterializeResult summarizes a playlist build. Created maps bucket label
// to the playlist it produced; failed buckets keep whatever tracks were
// appended before the failure (no rollback).
type MaterializeResult struct {
	Created        map[string]string   `json:"created"`
	Results        []BucketWriteResult `json:"results"`
	CreatedCount   int                 `json:"created_count"`
	FailedCount    int                 `json:"failed_count"`
	SkippedBuckets int                 `json:"skipped_buckets"`
}

// Materialize writes classification buckets to the catalog as playlists,
// in bucket order.
//
// Buckets with no writable tracks, or fewer than opts.MinTracks of them,
// are skipped without creating anything. A failure while creating or
// filling one bucket marks that bucket failed and moves on; earlier and
// later buckets are unaffected.
func (e *LibraryEngine) Materialize(ctx context.Context, progress chan<- ProgressUpdate, result *ClassificationResult, opts MaterializeOpts) (*MaterializeResult, error) {
	if e.service == nil {
		return nil, fmt.Errorf("%w: service not initialized", shared.ErrCatalogUnavailable)
	}
	if result == nil || result.Buckets == nil {
		return nil, fmt.Errorf("%w: nothing to materialize", shared.ErrInvalidArgument)
	}
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}

	if err := e.wait(ctx); err != nil {
		return nil, err
	}
	user, err := e.service.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load user profile: %w", err)
	}

	labels := result.Buckets.Labels()
	out := &MaterializeResult{
		Created: make(map[string]string),
		Results: make([]BucketWriteResult, 0, len(labels)),
	}

	for i, label := range labels {
		tracks := result.Buckets.Tracks(label)

		var uris []string
		for _, track := range tracks {
			if track.Writable() {
				uris = append(uris, track.URI)
			}
		}
		skipped := len(tracks) - len(uris)

		if len(uris) == 0 || (opts.MinTracks > 0 && len(uris) < opts.MinTracks) {
			out.SkippedBuckets++
			continue
		}

		name := fmt.Sprintf("%s - %s", opts.Prefix, label)
		e.sendProgress(progress, createPlaylistUpdate(i+1, len(labels), name))

		bucketResult := BucketWriteResult{Label: label, PlaylistName: name, Skipped: skipped}

		if err := e.wait(ctx); err != nil {
			return out, err
		}
		playlist, err := e.service.CreatePlaylist(ctx, user.ID, name, bucketDescription(result.Scheme, label, len(uris)), opts.Public)
		if err != nil {
			bucketResult.Error = fmt.Errorf("%w: create %s: %v", shared.ErrWriteFailure, name, err)
			out.Results = append(out.Results, bucketResult)
			out.FailedCount++
			e.sendProgress(progress, bucketFailedUpdate(i+1, len(labels), label, err))
			e.logger.Error("failed to create playlist", "bucket", label, "error", err)
			continue
		}
		bucketResult.PlaylistID = playlist.ID

		failed := false
		for _, batch := range chunkStrings(uris, services.MaxTrackBatch) {
			e.sendProgress(progress, writeTracksUpdate(i+1, len(labels), label, len(batch)))

			if err := e.wait(ctx); err != nil {
				return out, err
			}
			if err := e.service.AddPlaylistTracks(ctx, playlist.ID, batch); err != nil {
				bucketResult.Error = fmt.Errorf("%w: fill %s: %v", shared.ErrWriteFailure, name, err)
				e.logger.Error("failed to add tracks", "bucket", label, "written", bucketResult.Written, "error", err)
				failed = true
				break
			}
			bucketResult.Written += len(batch)
		}

		out.Results = append(out.Results, bucketResult)
		if failed {
			out.FailedCount++
			e.sendProgress(progress, bucketFailedUpdate(i+1, len(labels), label, bucketResult.Error))
			continue
		}

		out.Created[label] = playlist.ID
		out.CreatedCount++
		e.sendProgress(progress, bucketWrittenUpdate(i+1, len(labels), playlist, bucketResult.Written))
	}

	return out, nil
}

func bucketDescription(scheme, label string, count int) string {
	switch scheme {
	case SchemeMood:
		if rule, ok := MoodRuleFor(label); ok {
			return fmt.Sprintf("%s (%d tracks)", rule.Description, count)
		}
	case SchemeDecade:
		return fmt.Sprintf("Tracks released in the %s (%d tracks)", label, count)
	case SchemeArtist:
		return fmt.Sprintf("Tracks by %s (%d tracks)", label, count)
	}
	return fmt.Sprintf("%s tracks from your library (%d tracks)", label, count)
}
