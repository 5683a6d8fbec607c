// Package services defines the [Service] interface for the remote catalog
// and implements it for Spotify.
//
// # Service Interface
//
// [Service] is the minimum catalog surface the engine consumes: paginated
// reads (saved tracks, playlists, playlist items), batch reads by identity
// (artists, audio features), and playlist writes (create, add items). The
// engine never sees raw payloads; every response is mapped to the strict
// shapes in the models package at this boundary.
//
// # Spotify Implementation
//
// [SpotifyService] uses OAuth2 for authentication. The [oauth2.Client]
// refreshes expired tokens using the refresh token; a refresh callback lets
// the CLI persist new tokens back to config.toml.
//
// # Error Handling
//
// Responses map onto typed errors from the shared package:
//   - [shared.ErrNotAuthenticated] : Authenticate() not called
//   - [shared.ErrTokenExpired] : OAuth token expired (401), reauth needed
//   - [shared.ErrRateLimited] : remote rate limit hit (429); never retried here
//   - [shared.ErrCatalogUnavailable] : network failure or other non-2xx status
//
// Batch reads drop unresolvable identities silently; accounting for those
// gaps belongs to the engine, not the adapter.
package services
