package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/spotsort/internal/models"
	"github.com/desertthunder/spotsort/internal/services"
	"github.com/desertthunder/spotsort/internal/shared"
)

// FetchSavedTracks aggregates the user's saved tracks across all pages.
func (e *LibraryEngine) FetchSavedTracks(ctx context.Context, progress chan<- ProgressUpdate, limit int) ([]models.Track, error) {
	if e.service == nil {
		return nil, fmt.Errorf("%w: service not initialized", shared.ErrCatalogUnavailable)
	}

	e.sendProgress(progress, fetchLibraryUpdate(0, 0))

	fetched := 0
	tracks, err := Paginate(ctx, func(ctx context.Context, offset int) ([]models.Track, *int, int, error) {
		if err := e.wait(ctx); err != nil {
			return nil, nil, 0, err
		}
		page, err := e.service.SavedTracks(ctx, offset, e.pageSize)
		if err != nil {
			return nil, nil, 0, err
		}
		fetched += len(page.Items)
		e.sendProgress(progress, fetchLibraryUpdate(fetched, page.Total))
		return page.Items, page.Next, page.Total, nil
	}, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch saved tracks: %w", err)
	}

	e.logger.Debug("fetched saved tracks", "count", len(tracks))
	return tracks, nil
}

// FetchPlaylists aggregates the user's playlists across all pages.
func (e *LibraryEngine) FetchPlaylists(ctx context.Context, progress chan<- ProgressUpdate) ([]models.Playlist, error) {
	if e.service == nil {
		return nil, fmt.Errorf("%w: service not initialized", shared.ErrCatalogUnavailable)
	}

	e.sendProgress(progress, fetchPlaylistsUpdate(0, 0))

	playlists, err := Paginate(ctx, func(ctx context.Context, offset int) ([]models.Playlist, *int, int, error) {
		if err := e.wait(ctx); err != nil {
			return nil, nil, 0, err
		}
		page, err := e.service.Playlists(ctx, offset, e.pageSize)
		if err != nil {
			return nil, nil, 0, err
		}
		e.sendProgress(progress, fetchPlaylistsUpdate(offset+len(page.Items), page.Total))
		return page.Items, page.Next, page.Total, nil
	}, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playlists: %w", err)
	}

	e.logger.Debug("fetched playlists", "count", len(playlists))
	return playlists, nil
}

// FetchPlaylistTracks aggregates one playlist's tracks across all pages.
// The liked-songs sentinel routes to the saved-tracks collection.
func (e *LibraryEngine) FetchPlaylistTracks(ctx context.Context, progress chan<- ProgressUpdate, playlistID string, limit int) ([]models.Track, error) {
	if e.service == nil {
		return nil, fmt.Errorf("%w: service not initialized", shared.ErrCatalogUnavailable)
	}
	if playlistID == models.LikedSongsID {
		return e.FetchSavedTracks(ctx, progress, limit)
	}
	if playlistID == "" {
		return nil, fmt.Errorf("%w: playlist ID is required", shared.ErrMissingArgument)
	}

	e.sendProgress(progress, fetchPlaylistItemsUpdate(0, 0, playlistID))

	tracks, err := Paginate(ctx, func(ctx context.Context, offset int) ([]models.Track, *int, int, error) {
		if err := e.wait(ctx); err != nil {
			return nil, nil, 0, err
		}
		page, err := e.service.PlaylistTracks(ctx, playlistID, offset, services.MaxTrackBatch)
		if err != nil {
			return nil, nil, 0, err
		}
		e.sendProgress(progress, fetchPlaylistItemsUpdate(offset+len(page.Items), page.Total, playlistID))
		return page.Items, page.Next, page.Total, nil
	}, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playlist %s: %w", playlistID, err)
	}

	return tracks, nil
}

// AggregateSources fetches every named source and merges them into one
// deduplicated track list in first-seen order. An empty source list defaults
// to the liked-songs collection.
func (e *LibraryEngine) AggregateSources(ctx context.Context, progress chan<- ProgressUpdate, sourceIDs []string, limit int) (*AggregateResult, error) {
	if len(sourceIDs) == 0 {
		sourceIDs = []string{models.LikedSongsID}
	}

	sources := make([]TrackSource, 0, len(sourceIDs))
	for _, id := range sourceIDs {
		source := TrackSource{ID: id, Name: id}
		if id == models.LikedSongsID {
			source.Name = "Liked Songs"
			source.Liked = true
		}

		tracks, err := e.FetchPlaylistTracks(ctx, progress, id, limit)
		if err != nil {
			return nil, err
		}
		source.Tracks = tracks
		sources = append(sources, source)
	}

	merged, duplicates := MergeSources(sources)
	if duplicates > 0 {
		e.logger.Debug("deduplicated sources", "sources", len(sources), "duplicates", duplicates)
	}

	return &AggregateResult{
		Tracks:     merged,
		Sources:    sources,
		Duplicates: duplicates,
	}, nil
}
