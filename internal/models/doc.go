// Package models defines the domain entities for the library sorting service.
//
// The package contains two categories of types:
//
// 1. Catalog shapes mapped at the adapter boundary from raw Spotify payloads:
//   - [Track] : immutable track metadata with a derived release year
//   - [Artist] : artist metadata with genre labels
//   - [AudioFeatures] : per-track scalar metrics used for mood scoring
//   - [Playlist] : playlist metadata; [LikedSongsID] marks the read-only
//     liked-songs pseudo-playlist presented alongside real playlists
//   - [User] : the authenticated account profile
//
// 2. Engine output:
//   - [Buckets] : an insertion-ordered label → track-list mapping produced
//     fresh by every classification run
//
// All catalog shapes are plain structs with no behavior beyond small derived
// accessors; the core engine never inspects raw payloads.
package models
