package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/desertthunder/spotsort/internal/models"
	"github.com/desertthunder/spotsort/internal/services"
	"github.com/desertthunder/spotsort/internal/shared"
	"github.com/desertthunder/spotsort/internal/tasks"
	"github.com/urfave/cli/v3"
)

// aggregate fetches and merges the sources named by the command's flags,
// reauthorizing once when the stored token has expired.
func (r *Runner) aggregate(ctx context.Context, cmd *cli.Command) (*tasks.AggregateResult, error) {
	sources := cmd.StringSlice("sources")
	limit := cmd.Int("limit")

	progress, done := r.progressPrinter()
	defer func() {
		close(progress)
		<-done
	}()

	result, err := r.engine.AggregateSources(ctx, progress, sources, limit)
	if err != nil {
		retry, authErr := r.handleAuthError(ctx, err, cmd)
		if !retry {
			return nil, err
		}
		if authErr != nil {
			return nil, authErr
		}
		if result, err = r.engine.AggregateSources(ctx, progress, sources, limit); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// LibraryTracks lists the aggregated library tracks.
func (r *Runner) LibraryTracks(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireEngine(); err != nil {
		return err
	}

	result, err := r.aggregate(ctx, cmd)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(result.Tracks, cmd.Bool("pretty"))
	}

	r.writePlain("Found %d tracks (%d duplicates dropped):\n\n", len(result.Tracks), result.Duplicates)
	for i, track := range result.Tracks {
		r.writePlain("%d. %s - %s\n", i+1, track.PrimaryArtist().Name, track.Name)
		if track.Album.Name != "" {
			r.writePlain("   Album: %s\n", track.Album.Name)
		}
		r.writePlain("   Duration: %s\n", shared.FormatDuration(track.DurationMS))
	}

	return nil
}

// LibraryPlaylists lists the user's playlists.
func (r *Runner) LibraryPlaylists(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireEngine(); err != nil {
		return err
	}

	limit := cmd.Int("limit")

	progress, done := r.progressPrinter()
	defer func() {
		close(progress)
		<-done
	}()

	playlists, err := r.engine.FetchPlaylists(ctx, progress)
	if err != nil {
		retry, authErr := r.handleAuthError(ctx, err, cmd)
		if !retry {
			return err
		}
		if authErr != nil {
			return authErr
		}
		if playlists, err = r.engine.FetchPlaylists(ctx, progress); err != nil {
			return err
		}
	}

	// Liked songs are not a real playlist but every other command accepts
	// them as a source, so the listing leads with them.
	liked := models.Playlist{ID: models.LikedSongsID, Name: "♥ Liked Songs", Liked: true}
	if page, err := r.spotify.SavedTracks(ctx, 0, 1); err == nil {
		liked.TrackCount = page.Total
	} else {
		r.logger.Warn("failed to count saved tracks", "error", err)
	}
	playlists = append([]models.Playlist{liked}, playlists...)

	if limit > 0 && limit < len(playlists) {
		playlists = playlists[:limit]
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	r.writePlain("Found %d playlists:\n\n", len(playlists))
	for i, p := range playlists {
		r.writePlain("%d. %s\n", i+1, p.Name)
		if p.Description != "" {
			r.writePlain("   Description: %s\n", p.Description)
		}
		r.writePlain("   ID: %s\n", p.ID)
		r.writePlain("   Tracks: %d\n", p.TrackCount)
		r.writePlain("   Visibility: %s\n", shared.VisibilityString(p.Public))
		r.writePlain("\n")
	}

	return nil
}

// LibraryTopArtists lists the user's most-listened artists from the
// personalization endpoint.
func (r *Runner) LibraryTopArtists(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireEngine(); err != nil {
		return err
	}

	timeRange, label, err := topTimeRange(cmd.String("time"))
	if err != nil {
		return err
	}
	limit := cmd.Int("limit")

	artists, err := r.spotify.TopArtists(ctx, timeRange, limit)
	if err != nil {
		retry, authErr := r.handleAuthError(ctx, err, cmd)
		if !retry {
			return err
		}
		if authErr != nil {
			return authErr
		}
		if artists, err = r.spotify.TopArtists(ctx, timeRange, limit); err != nil {
			return err
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(artists, cmd.Bool("pretty"))
	}

	r.writePlain("Top %d artists (%s):\n\n", len(artists), label)
	for i, artist := range artists {
		r.writePlain("%d. %s\n", i+1, artist.Name)
		if len(artist.Genres) > 0 {
			genres := artist.Genres
			if len(genres) > 3 {
				genres = genres[:3]
			}
			r.writePlain("   Genres: %s\n", strings.Join(genres, ", "))
		}
		r.writePlain("   Popularity: %d\n", artist.Popularity)
		r.writePlain("   Followers: %d\n", artist.Followers)
	}

	return nil
}

// topTimeRange maps the CLI time flag onto the catalog's range names.
func topTimeRange(name string) (timeRange, label string, err error) {
	switch name {
	case "short":
		return services.TimeRangeShort, "last 4 weeks", nil
	case "medium", "":
		return services.TimeRangeMedium, "last 6 months", nil
	case "long":
		return services.TimeRangeLong, "all time", nil
	default:
		return "", "", fmt.Errorf("%w: unknown time range %q (want short, medium, or long)", shared.ErrInvalidFlag, name)
	}
}

// LibraryStats summarizes the aggregated library without remote lookups
// beyond the track fetch itself.
func (r *Runner) LibraryStats(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireEngine(); err != nil {
		return err
	}

	result, err := r.aggregate(ctx, cmd)
	if err != nil {
		return err
	}

	artists := make(map[string]int)
	albums := make(map[string]struct{})
	decades := make(map[int]int)
	writable := 0
	missingYear := 0
	totalMS := 0

	for _, track := range result.Tracks {
		if name := track.PrimaryArtist().Name; name != "" {
			artists[name]++
		}
		if track.Album.ID != "" {
			albums[track.Album.ID] = struct{}{}
		}
		if decade, ok := track.Decade(); ok {
			decades[decade]++
		} else {
			missingYear++
		}
		if track.Writable() {
			writable++
		}
		totalMS += track.DurationMS
	}

	genreCount := r.countGenres(ctx, result.Tracks)

	r.writePlainHeader("Library Stats")
	r.writePlain("Sources:        %d\n", len(result.Sources))
	r.writePlain("Tracks:         %d (%d duplicates dropped)\n", len(result.Tracks), result.Duplicates)
	r.writePlain("Writable:       %d\n", writable)
	r.writePlain("Unique artists: %d\n", len(artists))
	r.writePlain("Unique albums:  %d\n", len(albums))
	if genreCount >= 0 {
		r.writePlain("Genres:         %d\n", genreCount)
	}
	r.writePlain("Total duration: %s\n", shared.FormatDuration(totalMS))

	if len(decades) > 0 {
		keys := make([]int, 0, len(decades))
		for decade := range decades {
			keys = append(keys, decade)
		}
		sort.Ints(keys)

		r.writePlainln("By decade:")
		for _, decade := range keys {
			r.writePlain("  %ds: %d\n", decade, decades[decade])
		}
		if missingYear > 0 {
			r.writePlain("  unknown: %d\n", missingYear)
		}
	}

	if len(artists) > 0 {
		type artistCount struct {
			name  string
			count int
		}
		top := make([]artistCount, 0, len(artists))
		for name, count := range artists {
			top = append(top, artistCount{name, count})
		}
		sort.Slice(top, func(i, j int) bool {
			if top[i].count != top[j].count {
				return top[i].count > top[j].count
			}
			return top[i].name < top[j].name
		})
		if len(top) > 10 {
			top = top[:10]
		}

		r.writePlainln("Top artists:")
		for _, a := range top {
			r.writePlain("  %s: %d\n", a.name, a.count)
		}
	}

	return nil
}

// countGenres resolves artist genres and returns the number of distinct
// ones, or -1 when resolution fails. Stats stay useful without it.
func (r *Runner) countGenres(ctx context.Context, tracks []models.Track) int {
	progress, done := r.progressPrinter()
	result, err := r.engine.Classify(ctx, progress, tasks.SchemeGenre, tracks)
	close(progress)
	<-done
	if err != nil {
		r.logger.Warn("failed to resolve genres for stats", "error", err)
		return -1
	}

	count := 0
	for _, label := range result.Buckets.Labels() {
		if label != tasks.UnknownBucket {
			count++
		}
	}
	return count
}
