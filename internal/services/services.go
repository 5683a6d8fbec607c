// package services defines interface Service for the remote music catalog
package services

import (
	"context"

	"github.com/desertthunder/spotsort/internal/models"
	"golang.org/x/oauth2"
)

// Limits imposed by the catalog per request. Batch reads and playlist
// writes beyond these sizes are rejected remotely, so callers chunk.
const (
	MaxTrackBatch  = 100 // audio features reads, playlist item writes
	MaxArtistBatch = 50  // artist batch reads
)

// Time ranges accepted by the personalization endpoints.
const (
	TimeRangeShort  = "short_term"  // roughly the last 4 weeks
	TimeRangeMedium = "medium_term" // roughly the last 6 months
	TimeRangeLong   = "long_term"   // several years of history
)

// TrackPage is one page of a paginated track read.
// Next is the offset of the following page, nil on the final page.
type TrackPage struct {
	Items []models.Track
	Next  *int
	Total int
}

// PlaylistPage is one page of a paginated playlist read.
type PlaylistPage struct {
	Items []models.Playlist
	Next  *int
	Total int
}

// Service defines the catalog operations the sorting engine depends on.
type Service interface {
	// Authenticate performs OAuth or token authentication with the catalog.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// CurrentUser retrieves the authenticated user's profile.
	CurrentUser(ctx context.Context) (*models.User, error)

	// SavedTracks reads one page of the user's saved tracks.
	SavedTracks(ctx context.Context, offset, limit int) (*TrackPage, error)

	// Playlists reads one page of the user's playlists.
	Playlists(ctx context.Context, offset, limit int) (*PlaylistPage, error)

	// PlaylistTracks reads one page of a playlist's tracks.
	PlaylistTracks(ctx context.Context, playlistID string, offset, limit int) (*TrackPage, error)

	// Artists batch-reads artists by ID (at most [MaxArtistBatch]).
	// Unresolvable IDs are dropped from the result without error.
	Artists(ctx context.Context, ids []string) ([]models.Artist, error)

	// TopArtists reads the user's most-listened artists over the given
	// time range (at most [MaxArtistBatch]).
	TopArtists(ctx context.Context, timeRange string, limit int) ([]models.Artist, error)

	// AudioFeatures batch-reads audio features by track ID (at most
	// [MaxTrackBatch]). Unscored tracks are dropped from the result.
	AudioFeatures(ctx context.Context, ids []string) ([]models.AudioFeatures, error)

	// CreatePlaylist creates an empty playlist owned by the given user.
	CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (*models.Playlist, error)

	// AddPlaylistTracks appends track URIs to a playlist (at most
	// [MaxTrackBatch] per call).
	AddPlaylistTracks(ctx context.Context, playlistID string, uris []string) error

	// Name returns the catalog name (e.g. "Spotify")
	Name() string
}

// OAuthService extends Service for providers using server-side OAuth flows.
type OAuthService interface {
	Service

	// GetAuthURL returns the authorization URL for user login.
	GetAuthURL(state string) string

	// GetOAuthConfig exposes the underlying OAuth2 config for callback handling.
	GetOAuthConfig() *oauth2.Config

	// OAuthenticate installs a previously issued token.
	OAuthenticate(ctx context.Context, token *oauth2.Token) error
}
