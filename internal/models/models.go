package models

// LikedSongsID is the sentinel identity of the user's liked-songs
// pseudo-playlist. It can be read like any playlist source but is never a
// valid write target.
const LikedSongsID = "liked_songs"

// ArtistRef is the lightweight artist reference embedded in a track.
// The first entry of [Track.Artists] is the track's primary artist.
type ArtistRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AlbumRef is the lightweight album reference embedded in a track.
type AlbumRef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
}

// Track represents one catalog track. Instances are built once at the
// adapter boundary and treated as immutable afterwards.
type Track struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Artists     []ArtistRef `json:"artists"`
	Album       AlbumRef    `json:"album"`
	DurationMS  int         `json:"duration_ms"`
	Explicit    bool        `json:"explicit"`
	Popularity  int         `json:"popularity"`
	URI         string      `json:"uri"`
	ReleaseYear *int        `json:"release_year,omitempty"` // nil when the album has no release date
}

// PrimaryArtist returns the track's first artist reference, or a zero value
// when the catalog supplied none.
func (t Track) PrimaryArtist() ArtistRef {
	if len(t.Artists) == 0 {
		return ArtistRef{}
	}
	return t.Artists[0]
}

// Decade returns the release decade (1994 → 1990) and whether the track has
// a known release year at all.
func (t Track) Decade() (int, bool) {
	if t.ReleaseYear == nil {
		return 0, false
	}
	return (*t.ReleaseYear / 10) * 10, true
}

// Writable reports whether the track carries a resolvable playable URI.
// Tracks without one stay visible in read-only analysis but are excluded
// from every playlist write.
func (t Track) Writable() bool {
	return t.URI != ""
}

// Artist represents a full catalog artist, fetched in batches during genre
// classification. Never cached across engine invocations.
type Artist struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Genres     []string `json:"genres"`
	Popularity int      `json:"popularity"`
	Followers  int      `json:"followers"`
}

// AudioFeatures holds per-track scalar metrics. Valence, energy,
// danceability, and acousticness are in [0,1]; tempo is BPM. Keyed by track
// identity; a missing entry means the track is unscored.
type AudioFeatures struct {
	TrackID      string  `json:"id"`
	Valence      float64 `json:"valence"`
	Energy       float64 `json:"energy"`
	Danceability float64 `json:"danceability"`
	Acousticness float64 `json:"acousticness"`
	Tempo        float64 `json:"tempo"`
}

// Playlist represents catalog playlist metadata.
type Playlist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Owner       string `json:"owner"`
	TrackCount  int    `json:"track_count"`
	Public      bool   `json:"public"`
	Description string `json:"description,omitempty"`
	Liked       bool   `json:"liked,omitempty"` // true only for the liked-songs pseudo-playlist
}

// User represents the authenticated account profile.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email,omitempty"`
	Country     string `json:"country,omitempty"`
	Product     string `json:"product,omitempty"`
	Followers   int    `json:"followers"`
}
