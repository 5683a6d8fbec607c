package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/spotsort/internal/models"
	"github.com/desertthunder/spotsort/internal/shared"
)

// FilterOptions narrows a track list. Every set option must pass for a track
// to survive; unset options match everything.
type FilterOptions struct {
	YearFrom *int     // Earliest release year, inclusive
	YearTo   *int     // Latest release year, inclusive
	Artists  []string // Artist names, case-insensitive exact match against any credited artist
	Genres   []string // Genre fragments, case-insensitive substring match
	Mood     string   // Mood rule name
}

// Empty reports whether no option is set.
func (o FilterOptions) Empty() bool {
	return o.YearFrom == nil && o.YearTo == nil &&
		len(o.Artists) == 0 && len(o.Genres) == 0 && o.Mood == ""
}

// FilterResult is the outcome of one filter pass.
type FilterResult struct {
	Tracks     []models.Track // Survivors, in input order
	Examined   int            // Tracks examined
	Unresolved int            // Tracks dropped for unresolvable artist genres
	Unscored   int            // Tracks dropped for missing audio features
}

// FilterTracks returns the tracks matching every set option, preserving
// input order.
//
// Genre matching is deliberately fuzzy: a track passes when any of its
// primary artist's genres contains any requested fragment, so "rock" matches
// "indie rock" and "rock and roll". Year bounds require a known release
// year; the mood option requires audio features. Tracks missing the data a
// set option needs are dropped and counted.
func (e *LibraryEngine) FilterTracks(ctx context.Context, progress chan<- ProgressUpdate, tracks []models.Track, opts FilterOptions) (*FilterResult, error) {
	var rule MoodRule
	if opts.Mood != "" {
		found, ok := MoodRuleFor(opts.Mood)
		if !ok {
			return nil, fmt.Errorf("%w: unknown mood %q", shared.ErrInvalidArgument, opts.Mood)
		}
		rule = found
	}

	var genres map[string][]string
	if len(opts.Genres) > 0 {
		resolved, _, err := e.resolveArtistGenres(ctx, progress, tracks)
		if err != nil {
			return nil, err
		}
		genres = resolved
	}

	var features map[string]models.AudioFeatures
	if opts.Mood != "" {
		resolved, err := e.resolveFeatures(ctx, progress, tracks)
		if err != nil {
			return nil, err
		}
		features = resolved
	}

	result := &FilterResult{Examined: len(tracks)}

	for _, track := range tracks {
		if !matchesYears(track, opts) {
			continue
		}
		if !matchesArtists(track, opts.Artists) {
			continue
		}

		if len(opts.Genres) > 0 {
			artistGenres, ok := genres[track.PrimaryArtist().ID]
			if !ok {
				result.Unresolved++
				continue
			}
			if !matchesGenres(artistGenres, opts.Genres) {
				continue
			}
		}

		if opts.Mood != "" {
			f, ok := features[track.ID]
			if !ok {
				result.Unscored++
				continue
			}
			if !rule.Matches(f) {
				continue
			}
		}

		result.Tracks = append(result.Tracks, track)
	}

	return result, nil
}

func matchesYears(track models.Track, opts FilterOptions) bool {
	if opts.YearFrom == nil && opts.YearTo == nil {
		return true
	}
	if track.ReleaseYear == nil {
		return false
	}
	if opts.YearFrom != nil && *track.ReleaseYear < *opts.YearFrom {
		return false
	}
	if opts.YearTo != nil && *track.ReleaseYear > *opts.YearTo {
		return false
	}
	return true
}

func matchesArtists(track models.Track, names []string) bool {
	if len(names) == 0 {
		return true
	}
	for _, artist := range track.Artists {
		for _, name := range names {
			if strings.EqualFold(artist.Name, name) {
				return true
			}
		}
	}
	return false
}

func matchesGenres(artistGenres, wanted []string) bool {
	for _, genre := range artistGenres {
		lower := strings.ToLower(genre)
		for _, fragment := range wanted {
			if strings.Contains(lower, strings.ToLower(fragment)) {
				return true
			}
		}
	}
	return false
}
