package tasks

import (
	"context"
	"fmt"
	"sort"

	"github.com/desertthunder/spotsort/internal/models"
	"github.com/desertthunder/spotsort/internal/services"
)

// UnknownBucket collects tracks that cannot be classified under the genre or
// artist schemes (unresolvable or genreless artists, artistless tracks).
const UnknownBucket = "Unknown"

// MoodRule is one named mood with its matching predicate. A track can match
// several rules; mood membership is not exclusive.
type MoodRule struct {
	Name        string
	Description string
	Matches     func(f models.AudioFeatures) bool
}

// moodRules holds every mood in presentation order. Thresholds operate on
// [0,1] feature scalars except tempo, which is BPM.
var moodRules = []MoodRule{
	{
		Name:        "Happy",
		Description: "Upbeat, positive tracks",
		Matches:     func(f models.AudioFeatures) bool { return f.Valence > 0.6 && f.Energy > 0.6 },
	},
	{
		Name:        "Sad",
		Description: "Low-energy, melancholic tracks",
		Matches:     func(f models.AudioFeatures) bool { return f.Valence < 0.4 && f.Energy < 0.4 },
	},
	{
		Name:        "Energetic",
		Description: "High-energy, fast tracks",
		Matches:     func(f models.AudioFeatures) bool { return f.Energy > 0.7 && f.Tempo > 120 },
	},
	{
		Name:        "Calm",
		Description: "Relaxed, slow tracks",
		Matches:     func(f models.AudioFeatures) bool { return f.Energy < 0.4 && f.Tempo < 100 },
	},
	{
		Name:        "Party",
		Description: "Danceable, high-energy tracks",
		Matches:     func(f models.AudioFeatures) bool { return f.Danceability > 0.7 && f.Energy > 0.7 },
	},
	{
		Name:        "Chill",
		Description: "Acoustic, low-key tracks",
		Matches:     func(f models.AudioFeatures) bool { return f.Acousticness > 0.5 && f.Energy < 0.5 },
	},
}

// MoodRules returns every mood rule in presentation order.
func MoodRules() []MoodRule {
	return moodRules
}

// MoodRuleFor looks up a mood rule by name.
func MoodRuleFor(name string) (MoodRule, bool) {
	for _, rule := range moodRules {
		if rule.Name == name {
			return rule, true
		}
	}
	return MoodRule{}, false
}

// chunkStrings splits ids into batches of at most size.
func chunkStrings(ids []string, size int) [][]string {
	var chunks [][]string
	for len(ids) > 0 {
		n := size
		if n > len(ids) {
			n = len(ids)
		}
		chunks = append(chunks, ids[:n])
		ids = ids[n:]
	}
	return chunks
}

// resolveArtistGenres batch-reads genre lists for every distinct primary
// artist across tracks. Returns the genre map and the number of artist IDs
// the catalog could not resolve.
func (e *LibraryEngine) resolveArtistGenres(ctx context.Context, progress chan<- ProgressUpdate, tracks []models.Track) (map[string][]string, int, error) {
	seen := make(map[string]bool)
	var ids []string
	for _, track := range tracks {
		id := track.PrimaryArtist().ID
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}

	genres := make(map[string][]string, len(ids))
	chunks := chunkStrings(ids, services.MaxArtistBatch)

	for i, chunk := range chunks {
		e.sendProgress(progress, resolveArtistsUpdate(i+1, len(chunks)))
		if err := e.wait(ctx); err != nil {
			return nil, 0, err
		}

		artists, err := e.service.Artists(ctx, chunk)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to resolve artists: %w", err)
		}
		for _, artist := range artists {
			genres[artist.ID] = artist.Genres
		}
	}

	unresolved := len(ids) - len(genres)
	if unresolved > 0 {
		e.logger.Warn("some artists could not be resolved", "count", unresolved)
	}
	return genres, unresolved, nil
}

// resolveFeatures batch-reads audio features for every track with an
// identity. Returns the feature map keyed by track ID.
func (e *LibraryEngine) resolveFeatures(ctx context.Context, progress chan<- ProgressUpdate, tracks []models.Track) (map[string]models.AudioFeatures, error) {
	var ids []string
	for _, track := range tracks {
		if track.ID != "" {
			ids = append(ids, track.ID)
		}
	}

	features := make(map[string]models.AudioFeatures, len(ids))
	chunks := chunkStrings(ids, services.MaxTrackBatch)

	for i, chunk := range chunks {
		e.sendProgress(progress, resolveFeaturesUpdate(i+1, len(chunks)))
		if err := e.wait(ctx); err != nil {
			return nil, err
		}

		scored, err := e.service.AudioFeatures(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve audio features: %w", err)
		}
		for _, f := range scored {
			features[f.TrackID] = f
		}
	}

	return features, nil
}

// ClassifyByGenre groups tracks by their primary artist's genres. A track
// joins one bucket per genre; tracks whose artist is unresolvable or carries
// no genres land in [UnknownBucket].
func (e *LibraryEngine) ClassifyByGenre(ctx context.Context, progress chan<- ProgressUpdate, tracks []models.Track) (*ClassificationResult, error) {
	genres, unresolved, err := e.resolveArtistGenres(ctx, progress, tracks)
	if err != nil {
		return nil, err
	}

	e.sendProgress(progress, classifyUpdate(SchemeGenre, len(tracks)))

	buckets := models.NewBuckets()
	for _, track := range tracks {
		artistGenres := genres[track.PrimaryArtist().ID]
		if len(artistGenres) == 0 {
			buckets.Add(UnknownBucket, track)
			continue
		}
		for _, genre := range artistGenres {
			buckets.Add(genre, track)
		}
	}

	return &ClassificationResult{
		Scheme:      SchemeGenre,
		Buckets:     buckets,
		TotalTracks: len(tracks),
		Unresolved:  unresolved,
	}, nil
}

// ClassifyByMood groups tracks by audio-feature thresholds. A track joins
// every mood it matches; unscored tracks are counted and left unbucketed.
func (e *LibraryEngine) ClassifyByMood(ctx context.Context, progress chan<- ProgressUpdate, tracks []models.Track) (*ClassificationResult, error) {
	features, err := e.resolveFeatures(ctx, progress, tracks)
	if err != nil {
		return nil, err
	}

	e.sendProgress(progress, classifyUpdate(SchemeMood, len(tracks)))

	buckets := models.NewBuckets()
	for _, rule := range moodRules {
		buckets.AddEmpty(rule.Name)
	}

	unscored := 0
	for _, track := range tracks {
		f, ok := features[track.ID]
		if !ok {
			unscored++
			continue
		}
		for _, rule := range moodRules {
			if rule.Matches(f) {
				buckets.Add(rule.Name, track)
			}
		}
	}

	return &ClassificationResult{
		Scheme:      SchemeMood,
		Buckets:     buckets,
		TotalTracks: len(tracks),
		Unscored:    unscored,
	}, nil
}

// ClassifyByDecade groups tracks by release decade in ascending order.
// Tracks without a release year are counted and left unbucketed.
func (e *LibraryEngine) ClassifyByDecade(ctx context.Context, progress chan<- ProgressUpdate, tracks []models.Track) (*ClassificationResult, error) {
	e.sendProgress(progress, classifyUpdate(SchemeDecade, len(tracks)))

	byDecade := make(map[int][]models.Track)
	missing := 0
	for _, track := range tracks {
		decade, ok := track.Decade()
		if !ok {
			missing++
			continue
		}
		byDecade[decade] = append(byDecade[decade], track)
	}

	decades := make([]int, 0, len(byDecade))
	for decade := range byDecade {
		decades = append(decades, decade)
	}
	sort.Ints(decades)

	buckets := models.NewBuckets()
	for _, decade := range decades {
		label := fmt.Sprintf("%ds", decade)
		for _, track := range byDecade[decade] {
			buckets.Add(label, track)
		}
	}

	return &ClassificationResult{
		Scheme:      SchemeDecade,
		Buckets:     buckets,
		TotalTracks: len(tracks),
		MissingYear: missing,
	}, nil
}

// ClassifyByArtist groups tracks by primary artist name in first-seen order.
// Tracks the catalog returned without any artist land in [UnknownBucket].
func (e *LibraryEngine) ClassifyByArtist(ctx context.Context, progress chan<- ProgressUpdate, tracks []models.Track) (*ClassificationResult, error) {
	e.sendProgress(progress, classifyUpdate(SchemeArtist, len(tracks)))

	buckets := models.NewBuckets()
	for _, track := range tracks {
		name := track.PrimaryArtist().Name
		if name == "" {
			name = UnknownBucket
		}
		buckets.Add(name, track)
	}

	return &ClassificationResult{
		Scheme:      SchemeArtist,
		Buckets:     buckets,
		TotalTracks: len(tracks),
	}, nil
}
