package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/spotsort/internal/models"
	"github.com/desertthunder/spotsort/internal/services"
	"github.com/desertthunder/spotsort/internal/shared"
	"github.com/desertthunder/spotsort/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Filter lists the library tracks matching every given criterion.
func (r *Runner) Filter(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireEngine(); err != nil {
		return err
	}

	opts := tasks.FilterOptions{
		Artists: cmd.StringSlice("artist"),
		Genres:  cmd.StringSlice("genre"),
		Mood:    cmd.String("mood"),
	}
	if cmd.IsSet("year-from") {
		year := cmd.Int("year-from")
		opts.YearFrom = &year
	}
	if cmd.IsSet("year-to") {
		year := cmd.Int("year-to")
		opts.YearTo = &year
	}

	if opts.Empty() {
		return fmt.Errorf("%w: set at least one of --year-from, --year-to, --artist, --genre, --mood", shared.ErrMissingArgument)
	}

	aggregate, err := r.aggregate(ctx, cmd)
	if err != nil {
		return err
	}

	progress, done := r.progressPrinter()
	result, err := r.engine.FilterTracks(ctx, progress, aggregate.Tracks, opts)
	close(progress)
	<-done
	if err != nil {
		return fmt.Errorf("filter failed: %w", err)
	}

	if name := cmd.String("save"); name != "" {
		if err := r.savePlaylist(ctx, name, result.Tracks); err != nil {
			return err
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(result.Tracks, cmd.Bool("pretty"))
	}

	r.writePlain("Matched %d of %d tracks:\n\n", len(result.Tracks), result.Examined)
	for i, track := range result.Tracks {
		r.writePlain("%d. %s - %s", i+1, track.PrimaryArtist().Name, track.Name)
		if track.ReleaseYear != nil {
			r.writePlain(" (%d)", *track.ReleaseYear)
		}
		r.writePlain("\n")
	}

	if result.Unresolved > 0 {
		r.writePlain("\nDropped %d tracks with unresolvable artist genres\n", result.Unresolved)
	}
	if result.Unscored > 0 {
		r.writePlain("\nDropped %d tracks without audio features\n", result.Unscored)
	}

	return nil
}

// savePlaylist materializes filtered tracks as a single named playlist.
func (r *Runner) savePlaylist(ctx context.Context, name string, tracks []models.Track) error {
	var uris []string
	for _, track := range tracks {
		if track.Writable() {
			uris = append(uris, track.URI)
		}
	}
	if len(uris) == 0 {
		return fmt.Errorf("%w: no writable tracks matched the filter", shared.ErrInvalidInput)
	}

	user, err := r.spotify.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("failed to load user profile: %w", err)
	}

	description := fmt.Sprintf("Filtered tracks from your library (%d tracks)", len(uris))
	playlist, err := r.spotify.CreatePlaylist(ctx, user.ID, name, description, false)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", shared.ErrWriteFailure, name, err)
	}

	for start := 0; start < len(uris); start += services.MaxTrackBatch {
		end := start + services.MaxTrackBatch
		if end > len(uris) {
			end = len(uris)
		}
		if err := r.spotify.AddPlaylistTracks(ctx, playlist.ID, uris[start:end]); err != nil {
			return fmt.Errorf("%w: fill %s: %v", shared.ErrWriteFailure, name, err)
		}
	}

	r.writePlain("✓ Playlist %q created with %d tracks\n", name, len(uris))
	return nil
}
