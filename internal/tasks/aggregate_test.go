package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/spotsort/internal/models"
	"github.com/desertthunder/spotsort/internal/shared"
	itesting "github.com/desertthunder/spotsort/internal/testing"
)

func TestFetchSavedTracks(t *testing.T) {
	ctx := context.Background()

	t.Run("walks every page", func(t *testing.T) {
		svc := &itesting.MockService{
			Tracks: []models.Track{
				track("t1", "One"), track("t2", "Two"), track("t3", "Three"),
				track("t4", "Four"), track("t5", "Five"),
			},
			PageSize: 2,
		}
		engine := newTestEngine(svc)

		tracks, err := engine.FetchSavedTracks(ctx, nil, 0)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(tracks) != 5 {
			t.Errorf("expected 5 tracks, got %d", len(tracks))
		}
	})

	t.Run("honors the track cap", func(t *testing.T) {
		svc := &itesting.MockService{
			Tracks: []models.Track{
				track("t1", "One"), track("t2", "Two"), track("t3", "Three"),
			},
			PageSize: 2,
		}
		engine := newTestEngine(svc)

		tracks, err := engine.FetchSavedTracks(ctx, nil, 2)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(tracks) != 2 {
			t.Errorf("expected 2 tracks, got %d", len(tracks))
		}
	})

	t.Run("empty library yields empty result", func(t *testing.T) {
		engine := newTestEngine(&itesting.MockService{})

		tracks, err := engine.FetchSavedTracks(ctx, nil, 0)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(tracks) != 0 {
			t.Errorf("expected no tracks, got %d", len(tracks))
		}
	})

	t.Run("aborts on catalog failure", func(t *testing.T) {
		svc := &itesting.MockService{ReadErr: shared.ErrCatalogUnavailable}
		engine := newTestEngine(svc)

		_, err := engine.FetchSavedTracks(ctx, nil, 0)
		if !errors.Is(err, shared.ErrCatalogUnavailable) {
			t.Errorf("expected ErrCatalogUnavailable, got %v", err)
		}
	})
}

func TestFetchPlaylistTracks(t *testing.T) {
	ctx := context.Background()

	t.Run("liked-songs sentinel routes to saved tracks", func(t *testing.T) {
		svc := &itesting.MockService{Tracks: []models.Track{track("t1", "One")}}
		engine := newTestEngine(svc)

		tracks, err := engine.FetchPlaylistTracks(ctx, nil, models.LikedSongsID, 0)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(tracks) != 1 {
			t.Errorf("expected 1 track, got %d", len(tracks))
		}
	})

	t.Run("requires a playlist ID", func(t *testing.T) {
		engine := newTestEngine(&itesting.MockService{})

		_, err := engine.FetchPlaylistTracks(ctx, nil, "", 0)
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestAggregateSources(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to the liked-songs collection", func(t *testing.T) {
		svc := &itesting.MockService{Tracks: []models.Track{track("t1", "One"), track("t2", "Two")}}
		engine := newTestEngine(svc)

		result, err := engine.AggregateSources(ctx, nil, nil, 0)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(result.Sources) != 1 {
			t.Fatalf("expected 1 source, got %d", len(result.Sources))
		}
		if !result.Sources[0].Liked || result.Sources[0].Name != "Liked Songs" {
			t.Errorf("expected the liked-songs source, got %+v", result.Sources[0])
		}
		if len(result.Tracks) != 2 {
			t.Errorf("expected 2 tracks, got %d", len(result.Tracks))
		}
	})

	t.Run("deduplicates across sources", func(t *testing.T) {
		// The mock serves the same track list for every source, so a
		// two-source aggregate sees each track twice.
		svc := &itesting.MockService{Tracks: []models.Track{track("t1", "One"), track("t2", "Two")}}
		engine := newTestEngine(svc)

		result, err := engine.AggregateSources(ctx, nil, []string{models.LikedSongsID, "pl1"}, 0)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(result.Tracks) != 2 {
			t.Errorf("expected 2 deduplicated tracks, got %d", len(result.Tracks))
		}
		if result.Duplicates != 2 {
			t.Errorf("expected 2 duplicates, got %d", result.Duplicates)
		}
	})

	t.Run("a failing source aborts the aggregate", func(t *testing.T) {
		svc := &itesting.MockService{ReadErr: shared.ErrCatalogUnavailable}
		engine := newTestEngine(svc)

		_, err := engine.AggregateSources(ctx, nil, []string{"pl1"}, 0)
		if !errors.Is(err, shared.ErrCatalogUnavailable) {
			t.Errorf("expected ErrCatalogUnavailable, got %v", err)
		}
	})
}
