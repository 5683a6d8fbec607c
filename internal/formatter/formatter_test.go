package formatter

import (
	"encoding/csv"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/spotsort/internal/models"
	itesting "github.com/desertthunder/spotsort/internal/testing"
)

func sampleTracks() []models.Track {
	year := 1994
	return []models.Track{
		{
			ID:          "t1",
			Name:        "First Song",
			Artists:     []models.ArtistRef{{ID: "a1", Name: "Alpha"}, {ID: "a2", Name: "Beta"}},
			Album:       models.AlbumRef{ID: "al1", Name: "Debut", ReleaseDate: "1994-06-21"},
			DurationMS:  201000,
			URI:         "spotify:track:t1",
			ReleaseYear: &year,
		},
		{
			ID:      "t2",
			Name:    "Second Song",
			Artists: []models.ArtistRef{{ID: "a1", Name: "Alpha"}},
		},
	}
}

func TestTracksToCSV(t *testing.T) {
	data, err := TracksToCSV(sampleTracks())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d records", len(records))
	}
	if records[0][0] != "ID" || records[0][6] != "URI" {
		t.Errorf("unexpected header: %v", records[0])
	}
	if records[1][2] != "Alpha; Beta" {
		t.Errorf("expected joined artist names, got %q", records[1][2])
	}
	if records[1][4] != "1994" {
		t.Errorf("expected year 1994, got %q", records[1][4])
	}
	if records[2][4] != "" {
		t.Errorf("expected empty year for undated track, got %q", records[2][4])
	}
}

func TestTracksToMarkdown(t *testing.T) {
	data, err := TracksToMarkdown("Indie Rock", sampleTracks())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	out := string(data)
	if !strings.HasPrefix(out, "# Indie Rock\n") {
		t.Error("expected label as document title")
	}
	if !strings.Contains(out, "**Tracks**: 2") {
		t.Error("expected track count")
	}
	if !strings.Contains(out, "1. Alpha - First Song (Debut) [3:21]") {
		t.Errorf("unexpected track line, got:\n%s", out)
	}
}

func TestTracksToText(t *testing.T) {
	data, err := TracksToText("Indie Rock", sampleTracks())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	out := string(data)
	if !strings.Contains(out, "Bucket: Indie Rock") {
		t.Error("expected bucket label")
	}
	if !strings.Contains(out, "2. Alpha - Second Song") {
		t.Errorf("unexpected track line, got:\n%s", out)
	}
}

func TestWriteTracksJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bucket.json")

	if err := WriteTracksJSON("Indie Rock", sampleTracks(), path); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	var payload struct {
		Label  string         `json:"label"`
		Count  int            `json:"count"`
		Tracks []models.Track `json:"tracks"`
	}
	if err := json.Unmarshal([]byte(itesting.MustReadFile(t, path)), &payload); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if payload.Label != "Indie Rock" || payload.Count != 2 {
		t.Errorf("unexpected payload header: %+v", payload)
	}
	if len(payload.Tracks) != 2 || payload.Tracks[0].ID != "t1" {
		t.Errorf("unexpected tracks: %+v", payload.Tracks)
	}
}

func TestWriteExportManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")

	manifest := map[string]any{"total_buckets": 2, "output_directory": "out"}
	if err := WriteExportManifest(manifest, path); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	content := itesting.MustReadFile(t, path)
	if !strings.Contains(content, `"total_buckets": 2`) {
		t.Errorf("unexpected manifest contents:\n%s", content)
	}
}
