package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTokenExpired     = fmt.Errorf("access token expired")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// Catalog errors. ErrCatalogUnavailable is fatal to the operation that
	// hit it; ErrResolutionGap marks a single unresolved item and never
	// aborts a run; ErrWriteFailure is scoped to one bucket.
	ErrCatalogUnavailable = fmt.Errorf("catalog unavailable")
	ErrRateLimited        = fmt.Errorf("catalog rate limit hit")
	ErrResolutionGap      = fmt.Errorf("lookup returned nothing")
	ErrWriteFailure       = fmt.Errorf("playlist write failed")
	ErrPlaylistNotFound   = fmt.Errorf("playlist not found")
	ErrReadOnlyPlaylist   = fmt.Errorf("playlist is read-only")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
