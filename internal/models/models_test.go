package models

import "testing"

func TestTrack(t *testing.T) {
	t.Run("PrimaryArtist", func(t *testing.T) {
		track := Track{Artists: []ArtistRef{{ID: "a1", Name: "Alpha"}, {ID: "a2", Name: "Beta"}}}
		if got := track.PrimaryArtist(); got.Name != "Alpha" {
			t.Errorf("expected first artist, got %q", got.Name)
		}

		var empty Track
		if got := empty.PrimaryArtist(); got.ID != "" || got.Name != "" {
			t.Errorf("expected zero ref without artists, got %+v", got)
		}
	})

	t.Run("Decade", func(t *testing.T) {
		cases := []struct {
			year int
			want int
		}{
			{1994, 1990},
			{1990, 1990},
			{1999, 1990},
			{2000, 2000},
			{2023, 2020},
		}
		for _, tc := range cases {
			y := tc.year
			track := Track{ReleaseYear: &y}
			decade, ok := track.Decade()
			if !ok {
				t.Errorf("year %d: expected a decade", tc.year)
			}
			if decade != tc.want {
				t.Errorf("year %d: expected %d, got %d", tc.year, tc.want, decade)
			}
		}

		var undated Track
		if _, ok := undated.Decade(); ok {
			t.Error("expected no decade without a release year")
		}
	})

	t.Run("Writable", func(t *testing.T) {
		if (Track{URI: "spotify:track:t1"}).Writable() != true {
			t.Error("expected track with URI to be writable")
		}
		if (Track{}).Writable() {
			t.Error("expected track without URI to be unwritable")
		}
	})
}
