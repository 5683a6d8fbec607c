package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/spotsort/internal/models"
)

var (
	_ list.Item = sourceItem{}
	_ list.Item = schemeItem{}
	_ list.Item = bucketItem{}
)

// sourceItem wraps [models.Playlist] to implement [list.Item] with a
// multi-select checkbox.
type sourceItem struct {
	playlist models.Playlist
	selected bool
}

func (i sourceItem) FilterValue() string { return i.playlist.Name }
func (i sourceItem) Title() string {
	box := "[ ]"
	if i.selected {
		box = "[x]"
	}
	return fmt.Sprintf("%s %s", box, i.playlist.Name)
}
func (i sourceItem) Description() string {
	if i.playlist.Liked {
		return "Your saved tracks"
	}
	return fmt.Sprintf("%d tracks • %s", i.playlist.TrackCount, i.playlist.Owner)
}

// schemeItem is one classification scheme to pick from.
type schemeItem struct {
	scheme string
	blurb  string
}

func (i schemeItem) FilterValue() string { return i.scheme }
func (i schemeItem) Title() string       { return i.scheme }
func (i schemeItem) Description() string { return i.blurb }

// bucketItem is one classification bucket for the preview list.
type bucketItem struct {
	label string
	count int
}

func (i bucketItem) FilterValue() string { return i.label }
func (i bucketItem) Title() string       { return i.label }
func (i bucketItem) Description() string {
	return fmt.Sprintf("%d tracks", i.count)
}
