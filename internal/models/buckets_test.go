package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestBuckets(t *testing.T) {
	t.Run("Add preserves insertion order", func(t *testing.T) {
		b := NewBuckets()
		b.Add("rock", Track{ID: "t1"})
		b.Add("jazz", Track{ID: "t2"})
		b.Add("rock", Track{ID: "t3"})

		labels := b.Labels()
		if len(labels) != 2 || labels[0] != "rock" || labels[1] != "jazz" {
			t.Errorf("expected [rock jazz], got %v", labels)
		}
		if len(b.Tracks("rock")) != 2 {
			t.Errorf("expected 2 rock tracks, got %d", len(b.Tracks("rock")))
		}
	})

	t.Run("AddEmpty registers a label without tracks", func(t *testing.T) {
		b := NewBuckets()
		b.AddEmpty("calm")
		b.Add("happy", Track{ID: "t1"})

		if b.Len() != 2 {
			t.Errorf("expected 2 buckets, got %d", b.Len())
		}
		if tracks := b.Tracks("calm"); len(tracks) != 0 {
			t.Errorf("expected empty bucket, got %d tracks", len(tracks))
		}
	})

	t.Run("AddEmpty never resets an existing bucket", func(t *testing.T) {
		b := NewBuckets()
		b.Add("happy", Track{ID: "t1"})
		b.AddEmpty("happy")

		if len(b.Tracks("happy")) != 1 {
			t.Error("expected existing tracks to survive AddEmpty")
		}
		if b.Len() != 1 {
			t.Errorf("expected 1 bucket, got %d", b.Len())
		}
	})

	t.Run("Tracks returns nil for unknown labels", func(t *testing.T) {
		b := NewBuckets()
		if b.Tracks("missing") != nil {
			t.Error("expected nil for unknown bucket")
		}
	})

	t.Run("TotalTracks counts multi-membership once per bucket", func(t *testing.T) {
		b := NewBuckets()
		track := Track{ID: "t1"}
		b.Add("happy", track)
		b.Add("party", track)

		if got := b.TotalTracks(); got != 2 {
			t.Errorf("expected 2 memberships, got %d", got)
		}
	})

	t.Run("MarshalJSON keeps bucket order", func(t *testing.T) {
		b := NewBuckets()
		b.Add("zeta", Track{ID: "t1"})
		b.Add("alpha", Track{ID: "t2"})

		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		out := string(data)
		if strings.Index(out, "zeta") > strings.Index(out, "alpha") {
			t.Errorf("expected insertion order in JSON, got %s", out)
		}
	})
}
