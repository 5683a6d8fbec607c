// package tasks implements library aggregation, classification, and playlist building.
//
// The core abstraction is SortEngine, which fetches the user's library across
// paginated sources, deduplicates it, groups tracks into labeled buckets, and
// materializes those buckets as playlists.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotsort/internal/models"
	"github.com/desertthunder/spotsort/internal/services"
	"github.com/desertthunder/spotsort/internal/shared"
	"golang.org/x/time/rate"
)

// Classification schemes supported by the engine.
const (
	SchemeGenre  = "genre"
	SchemeMood   = "mood"
	SchemeDecade = "decade"
	SchemeArtist = "artist"
)

// Schemes lists every supported classification scheme.
func Schemes() []string {
	return []string{SchemeGenre, SchemeMood, SchemeDecade, SchemeArtist}
}

// ClassificationResult is the outcome of one classification pass.
// Buckets is freshly built on every call; nothing is cached between runs.
type ClassificationResult struct {
	Scheme      string          // Scheme that produced the buckets
	Buckets     *models.Buckets // Label → tracks, in bucket order
	TotalTracks int             // Tracks examined (after dedupe)
	Unresolved  int             // Distinct artists that could not be resolved (genre scheme)
	Unscored    int             // Tracks without audio features (mood scheme)
	MissingYear int             // Tracks without a release year (decade scheme)
}

// SortEngine defines the aggregation and classification operations the CLI
// and UI layers consume.
type SortEngine interface {
	// FetchSavedTracks aggregates the user's saved tracks across all pages.
	// limit > 0 caps the number of tracks fetched.
	FetchSavedTracks(ctx context.Context, progress chan<- ProgressUpdate, limit int) ([]models.Track, error)

	// FetchPlaylists aggregates the user's playlists across all pages.
	FetchPlaylists(ctx context.Context, progress chan<- ProgressUpdate) ([]models.Playlist, error)

	// FetchPlaylistTracks aggregates one playlist's tracks across all pages.
	FetchPlaylistTracks(ctx context.Context, progress chan<- ProgressUpdate, playlistID string, limit int) ([]models.Track, error)

	// AggregateSources fetches every named source and merges them into one
	// deduplicated track list in first-seen order.
	AggregateSources(ctx context.Context, progress chan<- ProgressUpdate, sourceIDs []string, limit int) (*AggregateResult, error)

	// Classify groups tracks into buckets under the named scheme.
	Classify(ctx context.Context, progress chan<- ProgressUpdate, scheme string, tracks []models.Track) (*ClassificationResult, error)

	// Materialize writes classification buckets to the catalog as playlists.
	Materialize(ctx context.Context, progress chan<- ProgressUpdate, result *ClassificationResult, opts MaterializeOpts) (*MaterializeResult, error)
}

// LibraryEngine implements SortEngine against a catalog Service.
// A rate limiter paces every remote call made inside aggregation and
// classification loops.
type LibraryEngine struct {
	service  services.Service
	logger   *log.Logger
	limiter  *rate.Limiter
	pageSize int
}

// EngineOpts configures a LibraryEngine.
type EngineOpts struct {
	RateLimit float64 // Requests per second (default: 5)
	PageSize  int     // Page size for paginated reads (default: 50)
}

// NewLibraryEngine creates a LibraryEngine backed by the given service.
func NewLibraryEngine(service services.Service, logger *log.Logger, opts EngineOpts) *LibraryEngine {
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 50
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &LibraryEngine{
		service:  service,
		logger:   logger,
		limiter:  rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
		pageSize: opts.PageSize,
	}
}

// SetLogger replaces the engine's logger, used when the TUI redirects logs
// to a file.
func (e *LibraryEngine) SetLogger(logger *log.Logger) {
	if logger != nil {
		e.logger = logger
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *LibraryEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// wait paces the next remote call against the engine's rate limiter.
func (e *LibraryEngine) wait(ctx context.Context) error {
	if err := e.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrCatalogUnavailable, err)
	}
	return nil
}

// Classify dispatches to the scheme-specific classifier.
func (e *LibraryEngine) Classify(ctx context.Context, progress chan<- ProgressUpdate, scheme string, tracks []models.Track) (*ClassificationResult, error) {
	switch scheme {
	case SchemeGenre:
		return e.ClassifyByGenre(ctx, progress, tracks)
	case SchemeMood:
		return e.ClassifyByMood(ctx, progress, tracks)
	case SchemeDecade:
		return e.ClassifyByDecade(ctx, progress, tracks)
	case SchemeArtist:
		return e.ClassifyByArtist(ctx, progress, tracks)
	default:
		return nil, fmt.Errorf("%w: unknown scheme %q (want one of %v)", shared.ErrInvalidArgument, scheme, Schemes())
	}
}
