// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for sorting a library into playlists:
//  1. [SourceListView] : Pick the sources to aggregate (liked songs, playlists)
//  2. [SchemeListView] : Pick the classification scheme
//  3. [SortingView] : Monitor aggregation and classification progress
//  4. [PreviewView] : Inspect the buckets before anything is written
//  5. [ConfirmView] : Confirm playlist creation
//  6. [BuildView] : Monitor playlist writes
//  7. [ResultView] : Display created playlists and failures
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the LibraryEngine, providing non-blocking status reporting.
//
// Keyboard navigation uses vim-style bindings (j/k, space, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
