package models

import "encoding/json"

// Buckets is an insertion-ordered mapping of bucket label → track list.
//
// Classification runs produce a fresh Buckets value; nothing is persisted.
// Label order is first-insertion order, which the classifier controls
// (first-seen order for genre/mood/artist, ascending numeric order for
// decades) and downstream consumers preserve.
type Buckets struct {
	labels []string
	groups map[string][]Track
}

// NewBuckets creates an empty Buckets value.
func NewBuckets() *Buckets {
	return &Buckets{groups: make(map[string][]Track)}
}

// Add appends a track to the named bucket, creating the bucket on first use.
func (b *Buckets) Add(label string, track Track) {
	if _, ok := b.groups[label]; !ok {
		b.labels = append(b.labels, label)
	}
	b.groups[label] = append(b.groups[label], track)
}

// AddEmpty registers a bucket label without any tracks, preserving order.
func (b *Buckets) AddEmpty(label string) {
	if _, ok := b.groups[label]; !ok {
		b.labels = append(b.labels, label)
		b.groups[label] = nil
	}
}

// Labels returns bucket labels in insertion order.
func (b *Buckets) Labels() []string {
	return b.labels
}

// Tracks returns the track list for a label (nil when the bucket is absent).
func (b *Buckets) Tracks(label string) []Track {
	return b.groups[label]
}

// Len returns the number of buckets, including empty ones.
func (b *Buckets) Len() int {
	return len(b.labels)
}

// TotalTracks returns the summed bucket sizes. Tracks in several buckets
// count once per membership.
func (b *Buckets) TotalTracks() int {
	n := 0
	for _, tracks := range b.groups {
		n += len(tracks)
	}
	return n
}

// MarshalJSON renders buckets as an array of {label, tracks} objects so
// insertion order survives serialization.
func (b *Buckets) MarshalJSON() ([]byte, error) {
	type bucket struct {
		Label  string  `json:"label"`
		Tracks []Track `json:"tracks"`
	}
	out := make([]bucket, 0, len(b.labels))
	for _, label := range b.labels {
		out = append(out, bucket{Label: label, Tracks: b.groups[label]})
	}
	return json.Marshal(out)
}
