// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/desertthunder/spotsort/internal/models"
	"github.com/desertthunder/spotsort/internal/services"
)

// MockService is a configurable test double for [services.Service]
type MockService struct {
	User      *models.User
	Tracks    []models.Track
	Lists     []models.Playlist
	ArtistSet []models.Artist
	Top       []models.Artist
	Features  []models.AudioFeatures

	PageSize int // page size for SavedTracks/PlaylistTracks/Playlists, 0 means everything at once

	AuthErr     error
	ReadErr     error
	ArtistErr   error
	TopErr      error
	FeaturesErr error
	CreateErr   error
	AddErr      error

	CreatedPlaylists []models.Playlist
	AddedTracks      map[string][]string // playlist ID → appended URIs
	AddCalls         int
}

func (m *MockService) Authenticate(ctx context.Context, credentials map[string]string) error {
	return m.AuthErr
}

func (m *MockService) CurrentUser(ctx context.Context) (*models.User, error) {
	if m.User == nil {
		return &models.User{ID: "mock_user", DisplayName: "Mock User"}, nil
	}
	return m.User, nil
}

func (m *MockService) trackPage(all []models.Track, offset, limit int) *services.TrackPage {
	size := m.PageSize
	if size <= 0 || size > limit {
		size = limit
	}
	if size <= 0 || size > len(all) {
		size = len(all)
	}

	page := &services.TrackPage{Total: len(all)}
	if offset >= len(all) {
		return page
	}

	end := offset + size
	if end > len(all) {
		end = len(all)
	}
	page.Items = all[offset:end]
	if end < len(all) {
		page.Next = &end
	}
	return page
}

func (m *MockService) SavedTracks(ctx context.Context, offset, limit int) (*services.TrackPage, error) {
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	return m.trackPage(m.Tracks, offset, limit), nil
}

func (m *MockService) Playlists(ctx context.Context, offset, limit int) (*services.PlaylistPage, error) {
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	page := &services.PlaylistPage{Total: len(m.Lists)}
	if offset >= len(m.Lists) {
		return page, nil
	}
	page.Items = m.Lists[offset:]
	return page, nil
}

func (m *MockService) PlaylistTracks(ctx context.Context, playlistID string, offset, limit int) (*services.TrackPage, error) {
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	return m.trackPage(m.Tracks, offset, limit), nil
}

func (m *MockService) Artists(ctx context.Context, ids []string) ([]models.Artist, error) {
	if m.ArtistErr != nil {
		return nil, m.ArtistErr
	}
	byID := make(map[string]models.Artist, len(m.ArtistSet))
	for _, a := range m.ArtistSet {
		byID[a.ID] = a
	}
	var out []models.Artist
	for _, id := range ids {
		if a, ok := byID[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *MockService) TopArtists(ctx context.Context, timeRange string, limit int) ([]models.Artist, error) {
	if m.TopErr != nil {
		return nil, m.TopErr
	}
	if limit > 0 && limit < len(m.Top) {
		return m.Top[:limit], nil
	}
	return m.Top, nil
}

func (m *MockService) AudioFeatures(ctx context.Context, ids []string) ([]models.AudioFeatures, error) {
	if m.FeaturesErr != nil {
		return nil, m.FeaturesErr
	}
	byID := make(map[string]models.AudioFeatures, len(m.Features))
	for _, f := range m.Features {
		byID[f.TrackID] = f
	}
	var out []models.AudioFeatures
	for _, id := range ids {
		if f, ok := byID[id]; ok {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *MockService) CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (*models.Playlist, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	playlist := models.Playlist{
		ID:          "mock_playlist_" + name,
		Name:        name,
		Owner:       userID,
		Public:      public,
		Description: description,
	}
	m.CreatedPlaylists = append(m.CreatedPlaylists, playlist)
	return &playlist, nil
}

func (m *MockService) AddPlaylistTracks(ctx context.Context, playlistID string, uris []string) error {
	m.AddCalls++
	if m.AddErr != nil {
		return m.AddErr
	}
	if m.AddedTracks == nil {
		m.AddedTracks = make(map[string][]string)
	}
	m.AddedTracks[playlistID] = append(m.AddedTracks[playlistID], uris...)
	return nil
}

func (m *MockService) Name() string { return "mock" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// SequenceRoundTripper returns canned responses in order, recording each
// request it sees.
type SequenceRoundTripper struct {
	Responses []*http.Response
	Requests  []*http.Request
	calls     int
}

func (s *SequenceRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	s.Requests = append(s.Requests, req)
	if s.calls >= len(s.Responses) {
		return nil, errors.New("no response configured for request")
	}
	resp := s.Responses[s.calls]
	s.calls++
	return resp, nil
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
