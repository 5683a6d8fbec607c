// Spotify API implementation of [Service]
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/desertthunder/spotsort/internal/models"
	"github.com/desertthunder/spotsort/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

type followers struct {
	Total int `json:"total"`
}

type spotifyUser struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	Country     string    `json:"country"`
	Product     string    `json:"product"` // premium, free, etc.
	Followers   followers `json:"followers"`
}

type spotifyArtistRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type spotifyAlbum struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
}

type spotifyTrack struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Artists    []spotifyArtistRef `json:"artists"`
	Album      spotifyAlbum       `json:"album"`
	DurationMS int                `json:"duration_ms"`
	Explicit   bool               `json:"explicit"`
	Popularity int                `json:"popularity"`
	URI        string             `json:"uri"`
}

type spotifyArtist struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Genres     []string  `json:"genres"`
	Popularity int       `json:"popularity"`
	Followers  followers `json:"followers"`
}

type spotifyAudioFeatures struct {
	ID           string  `json:"id"`
	Valence      float64 `json:"valence"`
	Energy       float64 `json:"energy"`
	Danceability float64 `json:"danceability"`
	Acousticness float64 `json:"acousticness"`
	Tempo        float64 `json:"tempo"`
}

type spotifyOwner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type simplePlaylistTracks struct {
	Total int `json:"total"`
}

type spotifyPlaylist struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Owner       spotifyOwner         `json:"owner"`
	Public      bool                 `json:"public"`
	Tracks      simplePlaylistTracks `json:"tracks"`
}

type spotifySavedTrack struct {
	AddedAt string       `json:"added_at"`
	Track   spotifyTrack `json:"track"`
}

type spotifyPlaylistTrack struct {
	AddedAt string        `json:"added_at"`
	Track   *spotifyTrack `json:"track"` // null for unavailable items
}

type paginated[T any] struct {
	Items  []T     `json:"items"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
	Next   *string `json:"next"`
}

// mapTrack converts a wire track into the strict domain shape, deriving the
// release year from the album release date when one exists.
func mapTrack(wire spotifyTrack) models.Track {
	track := models.Track{
		ID:         wire.ID,
		Name:       wire.Name,
		DurationMS: wire.DurationMS,
		Explicit:   wire.Explicit,
		Popularity: wire.Popularity,
		URI:        wire.URI,
		Album: models.AlbumRef{
			ID:          wire.Album.ID,
			Name:        wire.Album.Name,
			ReleaseDate: wire.Album.ReleaseDate,
		},
	}

	for _, a := range wire.Artists {
		track.Artists = append(track.Artists, models.ArtistRef{ID: a.ID, Name: a.Name})
	}

	if len(wire.Album.ReleaseDate) >= 4 {
		if year, err := strconv.Atoi(wire.Album.ReleaseDate[:4]); err == nil {
			track.ReleaseYear = &year
		}
	}

	return track
}

func mapArtist(wire spotifyArtist) models.Artist {
	return models.Artist{
		ID:         wire.ID,
		Name:       wire.Name,
		Genres:     wire.Genres,
		Popularity: wire.Popularity,
		Followers:  wire.Followers.Total,
	}
}

func mapPlaylist(wire spotifyPlaylist) models.Playlist {
	return models.Playlist{
		ID:          wire.ID,
		Name:        wire.Name,
		Owner:       wire.Owner.DisplayName,
		TrackCount:  wire.Tracks.Total,
		Public:      wire.Public,
		Description: wire.Description,
	}
}

// SpotifyService implements the Service interface for Spotify API interactions.
// Uses [oauth2] for authentication and token refresh.
type SpotifyService struct {
	config         *oauth2.Config
	token          *oauth2.Token
	httpClient     *http.Client
	credentials    map[string]string
	onTokenRefresh func(*oauth2.Token)
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(credentials map[string]string) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://localhost:8888/callback"
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"user-read-private",
			"user-read-email",
			"playlist-read-private",
			"playlist-read-collaborative",
			"playlist-modify-public",
			"playlist-modify-private",
			"user-library-read",
			"user-top-read",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyService{
		config:      config,
		httpClient:  http.DefaultClient,
		credentials: credentials,
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// GetOAuthConfig exposes the OAuth2 config for the callback server.
func (s *SpotifyService) GetOAuthConfig() *oauth2.Config {
	return s.config
}

// SetTokenRefreshCallback registers a function invoked whenever the token
// source hands out a new access token, so callers can persist it.
func (s *SpotifyService) SetTokenRefreshCallback(fn func(*oauth2.Token)) {
	s.onTokenRefresh = fn
}

// Authenticate performs authentication with Spotify. Expects either an
// "access_token" or "auth_code" in credentials.
func (s *SpotifyService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken, ok := credentials["access_token"]; ok && accessToken != "" {
		token := &oauth2.Token{
			AccessToken:  accessToken,
			RefreshToken: credentials["refresh_token"],
		}
		return s.OAuthenticate(ctx, token)
	}

	if authCode, ok := credentials["auth_code"]; ok && authCode != "" {
		token, err := s.config.Exchange(ctx, authCode)
		if err != nil {
			return fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
		}
		return s.OAuthenticate(ctx, token)
	}

	return fmt.Errorf("%w: missing access_token or auth_code", shared.ErrMissingCredentials)
}

// OAuthenticate installs an issued token and builds a refreshing HTTP client.
func (s *SpotifyService) OAuthenticate(ctx context.Context, token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: empty token", shared.ErrInvalidCredentials)
	}

	s.token = token
	source := &refreshableTokenSource{
		source:   s.config.TokenSource(ctx, token),
		callback: s.onTokenRefresh,
	}
	s.httpClient = oauth2.NewClient(ctx, source)
	return nil
}

// refreshableTokenSource wraps an [oauth2.TokenSource] and notifies a
// callback whenever the access token it vends changes.
type refreshableTokenSource struct {
	source   oauth2.TokenSource
	callback func(*oauth2.Token)
	mu       sync.Mutex
	last     string
}

func (r *refreshableTokenSource) Token() (*oauth2.Token, error) {
	token, err := r.source.Token()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	changed := token.AccessToken != r.last
	if changed {
		r.last = token.AccessToken
	}
	r.mu.Unlock()

	if changed && r.callback != nil {
		func() {
			defer func() { _ = recover() }()
			r.callback(token)
		}()
	}

	return token, nil
}

// doRequest performs an authenticated HTTP request to the Spotify API and
// decodes the JSON response into result when result is non-nil.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	if s.token == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, spotifyBaseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: status 401", shared.ErrTokenExpired)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: retry-after %s", shared.ErrRateLimited, resp.Header.Get("Retry-After"))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: status %d on %s", shared.ErrCatalogUnavailable, resp.StatusCode, endpoint)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// nextOffset converts the API's "next page" URL into the offset of the
// following page, nil on the final page.
func nextOffset(next *string, offset, got int) *int {
	if next == nil || got == 0 {
		return nil
	}
	n := offset + got
	return &n
}

// CurrentUser retrieves the current authenticated user's profile.
func (s *SpotifyService) CurrentUser(ctx context.Context) (*models.User, error) {
	var user spotifyUser
	if err := s.doRequest(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &models.User{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Country:     user.Country,
		Product:     user.Product,
		Followers:   user.Followers.Total,
	}, nil
}

// SavedTracks reads one page of the user's saved tracks.
func (s *SpotifyService) SavedTracks(ctx context.Context, offset, limit int) (*TrackPage, error) {
	limit = clampPageSize(limit, 50)
	endpoint := fmt.Sprintf("/me/tracks?limit=%d&offset=%d", limit, offset)

	var resp paginated[spotifySavedTrack]
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}

	page := &TrackPage{Total: resp.Total}
	for _, item := range resp.Items {
		page.Items = append(page.Items, mapTrack(item.Track))
	}
	page.Next = nextOffset(resp.Next, offset, len(resp.Items))
	return page, nil
}

// Playlists reads one page of the user's playlists.
func (s *SpotifyService) Playlists(ctx context.Context, offset, limit int) (*PlaylistPage, error) {
	limit = clampPageSize(limit, 50)
	endpoint := fmt.Sprintf("/me/playlists?limit=%d&offset=%d", limit, offset)

	var resp paginated[spotifyPlaylist]
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}

	page := &PlaylistPage{Total: resp.Total}
	for _, item := range resp.Items {
		page.Items = append(page.Items, mapPlaylist(item))
	}
	page.Next = nextOffset(resp.Next, offset, len(resp.Items))
	return page, nil
}

// PlaylistTracks reads one page of a playlist's tracks. Items the catalog
// reports as unavailable (null track) are skipped.
func (s *SpotifyService) PlaylistTracks(ctx context.Context, playlistID string, offset, limit int) (*TrackPage, error) {
	limit = clampPageSize(limit, 100)
	endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=%d&offset=%d", url.PathEscape(playlistID), limit, offset)

	var resp paginated[spotifyPlaylistTrack]
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}

	page := &TrackPage{Total: resp.Total}
	for _, item := range resp.Items {
		if item.Track == nil {
			continue
		}
		page.Items = append(page.Items, mapTrack(*item.Track))
	}
	page.Next = nextOffset(resp.Next, offset, len(resp.Items))
	return page, nil
}

// Artists batch-reads up to [MaxArtistBatch] artists by ID.
// IDs the catalog cannot resolve come back as nulls and are dropped.
func (s *SpotifyService) Artists(ctx context.Context, ids []string) ([]models.Artist, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > MaxArtistBatch {
		return nil, fmt.Errorf("%w: at most %d artist IDs per request", shared.ErrInvalidArgument, MaxArtistBatch)
	}

	endpoint := "/artists?ids=" + url.QueryEscape(strings.Join(ids, ","))

	var resp struct {
		Artists []*spotifyArtist `json:"artists"`
	}
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}

	var artists []models.Artist
	for _, a := range resp.Artists {
		if a == nil {
			continue
		}
		artists = append(artists, mapArtist(*a))
	}
	return artists, nil
}

// TopArtists reads the user's most-listened artists over the given time
// range, up to [MaxArtistBatch] of them.
func (s *SpotifyService) TopArtists(ctx context.Context, timeRange string, limit int) ([]models.Artist, error) {
	switch timeRange {
	case TimeRangeShort, TimeRangeMedium, TimeRangeLong:
	case "":
		timeRange = TimeRangeMedium
	default:
		return nil, fmt.Errorf("%w: unknown time range %q", shared.ErrInvalidArgument, timeRange)
	}

	limit = clampPageSize(limit, MaxArtistBatch)
	endpoint := fmt.Sprintf("/me/top/artists?time_range=%s&limit=%d", timeRange, limit)

	var resp paginated[spotifyArtist]
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}

	artists := make([]models.Artist, 0, len(resp.Items))
	for _, a := range resp.Items {
		artists = append(artists, mapArtist(a))
	}
	return artists, nil
}

// AudioFeatures batch-reads up to [MaxTrackBatch] feature sets by track ID.
// Unscored tracks come back as nulls and are dropped.
func (s *SpotifyService) AudioFeatures(ctx context.Context, ids []string) ([]models.AudioFeatures, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > MaxTrackBatch {
		return nil, fmt.Errorf("%w: at most %d track IDs per request", shared.ErrInvalidArgument, MaxTrackBatch)
	}

	endpoint := "/audio-features?ids=" + url.QueryEscape(strings.Join(ids, ","))

	var resp struct {
		AudioFeatures []*spotifyAudioFeatures `json:"audio_features"`
	}
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}

	var features []models.AudioFeatures
	for _, f := range resp.AudioFeatures {
		if f == nil {
			continue
		}
		features = append(features, models.AudioFeatures{
			TrackID:      f.ID,
			Valence:      f.Valence,
			Energy:       f.Energy,
			Danceability: f.Danceability,
			Acousticness: f.Acousticness,
			Tempo:        f.Tempo,
		})
	}
	return features, nil
}

// CreatePlaylist creates an empty playlist owned by the given user.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (*models.Playlist, error) {
	if userID == "" || name == "" {
		return nil, fmt.Errorf("%w: user ID and playlist name are required", shared.ErrMissingArgument)
	}

	body := map[string]any{
		"name":        name,
		"description": description,
		"public":      public,
	}

	var resp spotifyPlaylist
	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(userID))
	if err := s.doRequest(ctx, http.MethodPost, endpoint, body, &resp); err != nil {
		return nil, err
	}

	playlist := mapPlaylist(resp)
	return &playlist, nil
}

// AddPlaylistTracks appends up to [MaxTrackBatch] track URIs to a playlist.
func (s *SpotifyService) AddPlaylistTracks(ctx context.Context, playlistID string, uris []string) error {
	if playlistID == models.LikedSongsID {
		return fmt.Errorf("%w: liked songs cannot be written to", shared.ErrReadOnlyPlaylist)
	}
	if len(uris) == 0 {
		return fmt.Errorf("%w: no track URIs provided", shared.ErrMissingArgument)
	}
	if len(uris) > MaxTrackBatch {
		return fmt.Errorf("%w: at most %d URIs per request", shared.ErrInvalidArgument, MaxTrackBatch)
	}

	body := map[string]any{"uris": uris}
	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))
	return s.doRequest(ctx, http.MethodPost, endpoint, body, nil)
}

// clampPageSize bounds a requested page size to the endpoint's ceiling.
func clampPageSize(limit, max int) int {
	if limit <= 0 {
		return 20
	}
	if limit > max {
		return max
	}
	return limit
}
