package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/spotsort/internal/models"
	"github.com/desertthunder/spotsort/internal/shared"
	tu "github.com/desertthunder/spotsort/internal/testing"
	"github.com/urfave/cli/v3"
)

func year(y int) *int { return &y }

func libraryTrack(id, name, artistID, artistName string, releaseYear int) models.Track {
	track := models.Track{
		ID:      id,
		Name:    name,
		Artists: []models.ArtistRef{{ID: artistID, Name: artistName}},
		URI:     "spotify:track:" + id,
	}
	if releaseYear > 0 {
		track.ReleaseYear = year(releaseYear)
	}
	return track
}

// newTestApp wires a Runner around a mock catalog, pointing the run-history
// database at a temp file so tests never touch the working directory.
func newTestApp(t *testing.T, svc *tu.MockService) (*cli.Command, *Runner, *bytes.Buffer) {
	t.Helper()

	config := shared.DefaultConfig()
	config.Database.Path = filepath.Join(t.TempDir(), "spotsort.db")
	config.Sort.RateLimit = 100000

	output := &bytes.Buffer{}
	logs := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config:  config,
		Spotify: svc,
		Logger:  shared.NewLogger(logs),
		Output:  output,
		Input:   strings.NewReader(""),
	})
	t.Cleanup(func() { runner.Close() })

	app := &cli.Command{
		Name:     "spotsort",
		Commands: runner.register(),
	}
	return app, runner, output
}

func TestSortCommand(t *testing.T) {
	t.Run("creates playlists by artist", func(t *testing.T) {
		svc := &tu.MockService{
			Tracks: []models.Track{
				libraryTrack("t1", "First", "a1", "Alpha", 1994),
				libraryTrack("t2", "Second", "a1", "Alpha", 1996),
				libraryTrack("t3", "Third", "a2", "Beta", 2003),
			},
		}
		app, _, output := newTestApp(t, svc)

		err := app.Run(context.Background(), []string{"spotsort", "sort", "artist", "--yes", "--min-tracks", "1"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(svc.CreatedPlaylists) != 2 {
			t.Fatalf("expected 2 playlists, got %d", len(svc.CreatedPlaylists))
		}
		for _, p := range svc.CreatedPlaylists {
			if !strings.HasPrefix(p.Name, "SpotifySort - ") {
				t.Errorf("expected configured prefix, got %q", p.Name)
			}
		}
		if got := len(svc.AddedTracks["mock_playlist_SpotifySort - Alpha"]); got != 2 {
			t.Errorf("expected 2 tracks in the Alpha playlist, got %d", got)
		}
		if !strings.Contains(output.String(), "Created 2 playlists") {
			t.Errorf("expected build summary, got %q", output.String())
		}
	})

	t.Run("dry run creates nothing", func(t *testing.T) {
		svc := &tu.MockService{
			Tracks: []models.Track{
				libraryTrack("t1", "First", "a1", "Alpha", 1994),
			},
		}
		app, _, output := newTestApp(t, svc)

		err := app.Run(context.Background(), []string{"spotsort", "sort", "decade", "--dry-run"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(svc.CreatedPlaylists) != 0 {
			t.Errorf("expected no playlists, got %d", len(svc.CreatedPlaylists))
		}
		if !strings.Contains(output.String(), "1990s: 1 tracks") {
			t.Errorf("expected decade preview, got %q", output.String())
		}
		if !strings.Contains(output.String(), "Dry run") {
			t.Errorf("expected dry run notice, got %q", output.String())
		}
	})

	t.Run("declined confirmation aborts the build", func(t *testing.T) {
		svc := &tu.MockService{
			Tracks: []models.Track{
				libraryTrack("t1", "First", "a1", "Alpha", 1994),
			},
		}
		app, runner, output := newTestApp(t, svc)
		runner.input = strings.NewReader("n\n")

		err := app.Run(context.Background(), []string{"spotsort", "sort", "artist"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(svc.CreatedPlaylists) != 0 {
			t.Errorf("expected no playlists after decline, got %d", len(svc.CreatedPlaylists))
		}
		if !strings.Contains(output.String(), "Aborted") {
			t.Errorf("expected abort notice, got %q", output.String())
		}
	})

	t.Run("custom prefix overrides config", func(t *testing.T) {
		svc := &tu.MockService{
			Tracks: []models.Track{
				libraryTrack("t1", "First", "a1", "Alpha", 1994),
			},
		}
		app, _, _ := newTestApp(t, svc)

		err := app.Run(context.Background(), []string{"spotsort", "sort", "artist", "--yes", "--prefix", "Mine", "--min-tracks", "1"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(svc.CreatedPlaylists) != 1 {
			t.Fatalf("expected 1 playlist, got %d", len(svc.CreatedPlaylists))
		}
		if svc.CreatedPlaylists[0].Name != "Mine - Alpha" {
			t.Errorf("expected prefixed name, got %q", svc.CreatedPlaylists[0].Name)
		}
	})

	t.Run("records run history", func(t *testing.T) {
		svc := &tu.MockService{
			Tracks: []models.Track{
				libraryTrack("t1", "First", "a1", "Alpha", 1994),
			},
		}
		app, _, output := newTestApp(t, svc)

		if err := app.Run(context.Background(), []string{"spotsort", "sort", "artist", "--yes", "--min-tracks", "1"}); err != nil {
			t.Fatalf("sort failed: %v", err)
		}

		output.Reset()
		if err := app.Run(context.Background(), []string{"spotsort", "history", "list"}); err != nil {
			t.Fatalf("history list failed: %v", err)
		}

		if !strings.Contains(output.String(), "#1 artist") {
			t.Errorf("expected recorded run in history, got %q", output.String())
		}
	})

	t.Run("artist scheme floors small buckets by default", func(t *testing.T) {
		svc := &tu.MockService{
			Tracks: []models.Track{
				libraryTrack("t1", "First", "a1", "Alpha", 1994),
				libraryTrack("t2", "Second", "a2", "Beta", 1996),
			},
		}
		app, _, output := newTestApp(t, svc)

		err := app.Run(context.Background(), []string{"spotsort", "sort", "artist", "--yes"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(svc.CreatedPlaylists) != 0 {
			t.Errorf("expected single-track artist buckets skipped, got %d playlists", len(svc.CreatedPlaylists))
		}
		if !strings.Contains(output.String(), "Skipped 2 buckets") {
			t.Errorf("expected skip summary, got %q", output.String())
		}
	})

	t.Run("empty library short-circuits", func(t *testing.T) {
		svc := &tu.MockService{}
		app, _, output := newTestApp(t, svc)

		err := app.Run(context.Background(), []string{"spotsort", "sort", "genre", "--yes"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !strings.Contains(output.String(), "No tracks found") {
			t.Errorf("expected empty-library notice, got %q", output.String())
		}
	})
}

func TestFilterCommand(t *testing.T) {
	t.Run("filters by artist", func(t *testing.T) {
		svc := &tu.MockService{
			Tracks: []models.Track{
				libraryTrack("t1", "First", "a1", "Alpha", 1994),
				libraryTrack("t2", "Second", "a2", "Beta", 1996),
			},
		}
		app, _, output := newTestApp(t, svc)

		err := app.Run(context.Background(), []string{"spotsort", "filter", "--artist", "alpha"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !strings.Contains(output.String(), "Matched 1 of 2 tracks") {
			t.Errorf("expected one match, got %q", output.String())
		}
		if !strings.Contains(output.String(), "Alpha - First") {
			t.Errorf("expected matching track listed, got %q", output.String())
		}
	})

	t.Run("requires at least one criterion", func(t *testing.T) {
		svc := &tu.MockService{}
		app, _, _ := newTestApp(t, svc)

		err := app.Run(context.Background(), []string{"spotsort", "filter"})
		if err == nil {
			t.Fatal("expected error without criteria")
		}
		if !strings.Contains(err.Error(), "at least one") {
			t.Errorf("expected missing-argument error, got %v", err)
		}
	})

	t.Run("save creates a playlist from matches", func(t *testing.T) {
		svc := &tu.MockService{
			Tracks: []models.Track{
				libraryTrack("t1", "First", "a1", "Alpha", 1994),
				libraryTrack("t2", "Second", "a2", "Beta", 1996),
			},
		}
		app, _, output := newTestApp(t, svc)

		err := app.Run(context.Background(), []string{"spotsort", "filter", "--artist", "alpha", "--save", "Alpha Hits"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(svc.CreatedPlaylists) != 1 {
			t.Fatalf("expected 1 playlist, got %d", len(svc.CreatedPlaylists))
		}
		if svc.CreatedPlaylists[0].Name != "Alpha Hits" {
			t.Errorf("expected the save name, got %q", svc.CreatedPlaylists[0].Name)
		}
		if got := len(svc.AddedTracks["mock_playlist_Alpha Hits"]); got != 1 {
			t.Errorf("expected 1 track in the playlist, got %d", got)
		}
		if !strings.Contains(output.String(), `Playlist "Alpha Hits" created with 1 tracks`) {
			t.Errorf("expected save confirmation, got %q", output.String())
		}
	})

	t.Run("save fails without writable matches", func(t *testing.T) {
		track := libraryTrack("t1", "Local", "a1", "Alpha", 1994)
		track.URI = ""
		svc := &tu.MockService{Tracks: []models.Track{track}}
		app, _, _ := newTestApp(t, svc)

		err := app.Run(context.Background(), []string{"spotsort", "filter", "--artist", "alpha", "--save", "Empty"})
		if err == nil {
			t.Fatal("expected error without writable tracks")
		}
		if len(svc.CreatedPlaylists) != 0 {
			t.Errorf("expected no playlist created, got %d", len(svc.CreatedPlaylists))
		}
	})

	t.Run("year bounds exclude unknown years", func(t *testing.T) {
		svc := &tu.MockService{
			Tracks: []models.Track{
				libraryTrack("t1", "Dated", "a1", "Alpha", 1994),
				libraryTrack("t2", "Undated", "a2", "Beta", 0),
			},
		}
		app, _, output := newTestApp(t, svc)

		err := app.Run(context.Background(), []string{"spotsort", "filter", "--year-from", "1990"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !strings.Contains(output.String(), "Matched 1 of 2 tracks") {
			t.Errorf("expected dated track only, got %q", output.String())
		}
	})
}

func TestLibraryCommand(t *testing.T) {
	t.Run("tracks lists the aggregated library", func(t *testing.T) {
		svc := &tu.MockService{
			Tracks: []models.Track{
				libraryTrack("t1", "First", "a1", "Alpha", 1994),
				libraryTrack("t1", "First", "a1", "Alpha", 1994),
				libraryTrack("t2", "Second", "a2", "Beta", 1996),
			},
		}
		app, _, output := newTestApp(t, svc)

		err := app.Run(context.Background(), []string{"spotsort", "library", "tracks"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !strings.Contains(output.String(), "Found 2 tracks (1 duplicates dropped)") {
			t.Errorf("expected deduplicated listing, got %q", output.String())
		}
	})

	t.Run("playlists lead with liked songs", func(t *testing.T) {
		svc := &tu.MockService{
			Tracks: []models.Track{
				libraryTrack("t1", "First", "a1", "Alpha", 1994),
				libraryTrack("t2", "Second", "a2", "Beta", 1996),
			},
			Lists: []models.Playlist{
				{ID: "p1", Name: "One", TrackCount: 3},
			},
		}
		app, _, output := newTestApp(t, svc)

		err := app.Run(context.Background(), []string{"spotsort", "library", "playlists"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		got := output.String()
		if !strings.Contains(got, "Found 2 playlists") {
			t.Errorf("expected liked songs plus one playlist, got %q", got)
		}
		if !strings.Contains(got, "1. ♥ Liked Songs") {
			t.Errorf("expected liked songs first, got %q", got)
		}
		if !strings.Contains(got, "Tracks: 2") {
			t.Errorf("expected saved-track count, got %q", got)
		}
	})

	t.Run("playlists honors limit", func(t *testing.T) {
		svc := &tu.MockService{
			Lists: []models.Playlist{
				{ID: "p1", Name: "One", TrackCount: 3},
				{ID: "p2", Name: "Two", TrackCount: 5},
			},
		}
		app, _, output := newTestApp(t, svc)

		err := app.Run(context.Background(), []string{"spotsort", "library", "playlists", "--limit", "1"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !strings.Contains(output.String(), "Found 1 playlists") {
			t.Errorf("expected limited listing, got %q", output.String())
		}
	})

	t.Run("top artists honors limit and time range", func(t *testing.T) {
		svc := &tu.MockService{
			Top: []models.Artist{
				{ID: "a1", Name: "Alpha", Genres: []string{"rock", "indie rock"}, Popularity: 80, Followers: 1200},
				{ID: "a2", Name: "Beta"},
			},
		}
		app, _, output := newTestApp(t, svc)

		err := app.Run(context.Background(), []string{"spotsort", "library", "top-artists", "--limit", "1"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		got := output.String()
		if !strings.Contains(got, "Top 1 artists (last 6 months)") {
			t.Errorf("expected limited default-range listing, got %q", got)
		}
		if !strings.Contains(got, "1. Alpha") || strings.Contains(got, "Beta") {
			t.Errorf("expected only the first artist, got %q", got)
		}
	})

	t.Run("top artists rejects unknown time ranges", func(t *testing.T) {
		svc := &tu.MockService{}
		app, _, _ := newTestApp(t, svc)

		err := app.Run(context.Background(), []string{"spotsort", "library", "top-artists", "--time", "forever"})
		if err == nil {
			t.Fatal("expected error for unknown time range")
		}
		if !strings.Contains(err.Error(), "time range") {
			t.Errorf("expected time-range error, got %v", err)
		}
	})

	t.Run("stats summarizes the library", func(t *testing.T) {
		svc := &tu.MockService{
			Tracks: []models.Track{
				libraryTrack("t1", "First", "a1", "Alpha", 1994),
				libraryTrack("t2", "Second", "a1", "Alpha", 2003),
			},
			ArtistSet: []models.Artist{
				{ID: "a1", Name: "Alpha", Genres: []string{"rock", "indie rock"}},
			},
		}
		app, _, output := newTestApp(t, svc)

		err := app.Run(context.Background(), []string{"spotsort", "library", "stats"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		got := output.String()
		if !strings.Contains(got, "Unique artists: 1") {
			t.Errorf("expected artist count, got %q", got)
		}
		if !strings.Contains(got, "Genres:         2") {
			t.Errorf("expected genre count, got %q", got)
		}
		if !strings.Contains(got, "1990s: 1") || !strings.Contains(got, "2000s: 1") {
			t.Errorf("expected decade breakdown, got %q", got)
		}
	})
}

func TestInfoCommand(t *testing.T) {
	t.Run("renders the account profile", func(t *testing.T) {
		svc := &tu.MockService{
			User: &models.User{ID: "u1", DisplayName: "Tester", Product: "premium", Country: "US", Followers: 42},
		}
		app, _, output := newTestApp(t, svc)

		err := app.Run(context.Background(), []string{"spotsort", "info"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		got := output.String()
		for _, want := range []string{"Name:      Tester", "User ID:   u1", "Account:   PREMIUM", "Country:   US", "Followers: 42"} {
			if !strings.Contains(got, want) {
				t.Errorf("expected %q in profile output, got %q", want, got)
			}
		}
	})

	t.Run("requires credentials", func(t *testing.T) {
		config := shared.DefaultConfig()
		runner := NewRunner(RunnerOpts{Config: config, Output: &bytes.Buffer{}})
		app := &cli.Command{Name: "spotsort", Commands: runner.register()}

		err := app.Run(context.Background(), []string{"spotsort", "info"})
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})
}
