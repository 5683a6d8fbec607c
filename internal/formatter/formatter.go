// package formatter provides functions to export track buckets to various formats (CSV, Markdown, JSON, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/spotsort/internal/models"
	"github.com/desertthunder/spotsort/internal/shared"
)

// TracksToCSV converts a track list to CSV with columns: ID, Title, Artists, Album, Year, Duration, URI
func TracksToCSV(tracks []models.Track) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artists", "Album", "Year", "Duration", "URI"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range tracks {
		record := []string{
			track.ID,
			track.Name,
			artistNames(track),
			track.Album.Name,
			yearString(track),
			strconv.Itoa(track.DurationMS),
			track.URI,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// TracksToMarkdown converts a labeled track list to Markdown
func TracksToMarkdown(label string, tracks []models.Track) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", label))
	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n\n", len(tracks)))

	buf.WriteString("## Tracks\n\n")
	for i, track := range tracks {
		duration := shared.FormatDuration(track.DurationMS)
		albumPart := ""
		if track.Album.Name != "" {
			albumPart = fmt.Sprintf(" (%s)", track.Album.Name)
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s%s [%s]\n", i+1, track.PrimaryArtist().Name, track.Name, albumPart, duration))
	}

	return buf.Bytes(), nil
}

// TracksToText converts a labeled track list to plain text
func TracksToText(label string, tracks []models.Track) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Bucket: %s\n", label))
	buf.WriteString(fmt.Sprintf("Tracks: %d\n\n", len(tracks)))

	for i, track := range tracks {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, track.PrimaryArtist().Name, track.Name))
	}

	return buf.Bytes(), nil
}

// WriteTracksCSV writes a track list to a CSV file.
func WriteTracksCSV(tracks []models.Track, path string) error {
	data, err := TracksToCSV(tracks)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

// WriteTracksMarkdown writes a labeled track list to a Markdown file.
func WriteTracksMarkdown(label string, tracks []models.Track, path string) error {
	data, err := TracksToMarkdown(label, tracks)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

// WriteTracksText writes a labeled track list to a plain text file.
func WriteTracksText(label string, tracks []models.Track, path string) error {
	data, err := TracksToText(label, tracks)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

// WriteTracksJSON writes a labeled track list to a JSON file.
func WriteTracksJSON(label string, tracks []models.Track, path string) error {
	payload := struct {
		Label  string         `json:"label"`
		Count  int            `json:"count"`
		Tracks []models.Track `json:"tracks"`
	}{Label: label, Count: len(tracks), Tracks: tracks}

	data, err := shared.MarshalJSON(payload, true)
	if err != nil {
		return fmt.Errorf("JSON marshal failed: %w", err)
	}
	return writeFile(path, data)
}

// WriteExportManifest writes an export summary as pretty-printed JSON.
func WriteExportManifest(manifest any, path string) error {
	data, err := shared.MarshalJSON(manifest, true)
	if err != nil {
		return fmt.Errorf("manifest marshal failed: %w", err)
	}
	return writeFile(path, data)
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func artistNames(track models.Track) string {
	names := make([]string, 0, len(track.Artists))
	for _, artist := range track.Artists {
		names = append(names, artist.Name)
	}
	return strings.Join(names, "; ")
}

func yearString(track models.Track) string {
	if track.ReleaseYear == nil {
		return ""
	}
	return strconv.Itoa(*track.ReleaseYear)
}
