package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spotsort/internal/models"
	"github.com/desertthunder/spotsort/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SourceListView ViewState = iota
	SchemeListView
	SortingView
	PreviewView
	ConfirmView
	BuildView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx            context.Context
	view           ViewState
	engine         *tasks.LibraryEngine
	opts           tasks.MaterializeOpts
	width          int
	height         int
	sourceList     list.Model
	schemeList     list.Model
	bucketList     list.Model
	scheme         string
	classification *tasks.ClassificationResult
	progressChan   chan tasks.ProgressUpdate
	progress       tasks.ProgressUpdate
	result         *tasks.MaterializeResult
	err            error
	help           help.Model
	keys           keyMap
}

type sourcesFetchedMsg struct {
	playlists []models.Playlist
	err       error
}

type classifiedMsg struct {
	result *tasks.ClassificationResult
	err    error
}

type progressUpdateMsg tasks.ProgressUpdate

type buildCompleteMsg struct {
	result *tasks.MaterializeResult
	err    error
}

type progressDrainedMsg struct{}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, engine *tasks.LibraryEngine, opts tasks.MaterializeOpts) *Model {
	return &Model{
		ctx:    ctx,
		view:   SourceListView,
		engine: engine,
		opts:   opts,
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Init initializes the TUI by fetching the selectable sources.
func (m *Model) Init() tea.Cmd {
	return m.fetchSources()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Zero-value lists have no delegate yet and cannot be resized.
		for _, l := range []*list.Model{&m.sourceList, &m.schemeList, &m.bucketList} {
			if l.Items() != nil {
				l.SetSize(msg.Width-4, msg.Height-8)
			}
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case SourceListView:
			return m.handleSourceKeys(msg)
		case SchemeListView:
			return m.handleSchemeKeys(msg)
		case PreviewView:
			return m.handlePreviewKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case sourcesFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		items := make([]list.Item, 0, len(msg.playlists)+1)
		items = append(items, sourceItem{
			playlist: models.Playlist{ID: models.LikedSongsID, Name: "Liked Songs", Liked: true},
			selected: true,
		})
		for _, pl := range msg.playlists {
			items = append(items, sourceItem{playlist: pl})
		}
		m.sourceList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.sourceList.Title = "Pick Sources"
		m.sourceList.SetSize(m.width-4, m.height-8)
		return m, nil

	case classifiedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = ResultView
			return m, nil
		}
		m.classification = msg.result
		items := make([]list.Item, 0, msg.result.Buckets.Len())
		for _, label := range msg.result.Buckets.Labels() {
			items = append(items, bucketItem{label: label, count: len(msg.result.Buckets.Tracks(label))})
		}
		m.bucketList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.bucketList.Title = fmt.Sprintf("Buckets by %s", m.scheme)
		m.bucketList.SetSize(m.width-4, m.height-8)
		m.view = PreviewView
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case progressDrainedMsg:
		return m, nil

	case buildCompleteMsg:
		m.result = msg.result
		m.err = msg.err
		m.view = ResultView
		m.progressChan = nil
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case SourceListView:
		return m.renderSourceList()
	case SchemeListView:
		return m.renderSchemeList()
	case SortingView, BuildView:
		return m.renderProgress()
	case PreviewView:
		return m.renderPreview()
	case ConfirmView:
		return m.renderConfirm()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleSourceKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		idx := m.sourceList.Index()
		if item, ok := m.sourceList.SelectedItem().(sourceItem); ok {
			item.selected = !item.selected
			return m, m.sourceList.SetItem(idx, item)
		}
	case "enter":
		if len(m.selectedSources()) == 0 {
			return m, nil
		}
		m.schemeList = newSchemeList(m.width, m.height)
		m.view = SchemeListView
		return m, nil
	}

	var cmd tea.Cmd
	m.sourceList, cmd = m.sourceList.Update(msg)
	return m, cmd
}

func (m *Model) handleSchemeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = SourceListView
		return m, nil
	case "enter":
		if item, ok := m.schemeList.SelectedItem().(schemeItem); ok {
			m.scheme = item.scheme
			m.view = SortingView
			return m, m.startClassification()
		}
	}

	var cmd tea.Cmd
	m.schemeList, cmd = m.schemeList.Update(msg)
	return m, cmd
}

func (m *Model) handlePreviewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = SchemeListView
		return m, nil
	case "enter":
		m.view = ConfirmView
		return m, nil
	}

	var cmd tea.Cmd
	m.bucketList, cmd = m.bucketList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n":
		m.view = PreviewView
		return m, nil
	case "y":
		m.view = BuildView
		return m, m.startBuild()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = SourceListView
		m.classification = nil
		m.result = nil
		m.err = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case SourceListView:
		m.sourceList, cmd = m.sourceList.Update(msg)
	case SchemeListView:
		m.schemeList, cmd = m.schemeList.Update(msg)
	case PreviewView:
		m.bucketList, cmd = m.bucketList.Update(msg)
	}
	return m, cmd
}

func (m *Model) selectedSources() []string {
	var ids []string
	for _, item := range m.sourceList.Items() {
		if src, ok := item.(sourceItem); ok && src.selected {
			ids = append(ids, src.playlist.ID)
		}
	}
	return ids
}

func (m *Model) fetchSources() tea.Cmd {
	return func() tea.Msg {
		playlists, err := m.engine.FetchPlaylists(m.ctx, nil)
		return sourcesFetchedMsg{playlists: playlists, err: err}
	}
}

func (m *Model) startClassification() tea.Cmd {
	sources := m.selectedSources()
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	done := make(chan classifiedMsg, 1)

	go func() {
		defer close(m.progressChan)
		aggregate, err := m.engine.AggregateSources(m.ctx, m.progressChan, sources, 0)
		if err != nil {
			done <- classifiedMsg{err: err}
			return
		}
		result, err := m.engine.Classify(m.ctx, m.progressChan, m.scheme, aggregate.Tracks)
		done <- classifiedMsg{result: result, err: err}
	}()

	return tea.Batch(m.waitForProgress(), func() tea.Msg { return <-done })
}

func (m *Model) startBuild() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	done := make(chan buildCompleteMsg, 1)

	go func() {
		defer close(m.progressChan)
		result, err := m.engine.Materialize(m.ctx, m.progressChan, m.classification, m.opts)
		done <- buildCompleteMsg{result: result, err: err}
	}()

	return tea.Batch(m.waitForProgress(), func() tea.Msg { return <-done })
}

func (m *Model) waitForProgress() tea.Cmd {
	progress := m.progressChan
	return func() tea.Msg {
		if progress == nil {
			return progressDrainedMsg{}
		}
		update, ok := <-progress
		if !ok {
			return progressDrainedMsg{}
		}
		return progressUpdateMsg(update)
	}
}

func newSchemeList(width, height int) list.Model {
	items := []list.Item{
		schemeItem{scheme: tasks.SchemeGenre, blurb: "Group by the primary artist's genres"},
		schemeItem{scheme: tasks.SchemeMood, blurb: "Group by audio-feature moods"},
		schemeItem{scheme: tasks.SchemeDecade, blurb: "Group by release decade"},
		schemeItem{scheme: tasks.SchemeArtist, blurb: "Group by primary artist"},
	}
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Pick a Scheme"
	l.SetSize(width-4, height-8)
	return l
}

func (m *Model) renderSourceList() string {
	helpKeys := []key.Binding{m.keys.toggle, m.keys.enter, m.keys.quit}
	return fmt.Sprintf("%s\n\n%s", m.sourceList.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderSchemeList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.back, m.keys.quit}
	return fmt.Sprintf("%s\n\n%s", m.schemeList.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderProgress() string {
	title := styles.title.Render("Sorting Library")
	if m.view == BuildView {
		title = styles.title.Render("Creating Playlists")
	}

	var phase string
	switch m.progress.Phase {
	case tasks.FetchLibrary, tasks.FetchPlaylistItems:
		phase = fmt.Sprintf("Fetching tracks (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.ResolveArtists:
		phase = "Resolving artists..."
	case tasks.ResolveFeatures:
		phase = "Resolving audio features..."
	case tasks.CreatePlaylists, tasks.WriteTracks:
		phase = fmt.Sprintf("Writing playlists (%d/%d)", m.progress.Step, m.progress.Total)
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderPreview() string {
	summary := fmt.Sprintf("%d tracks in %d buckets", m.classification.TotalTracks, m.classification.Buckets.Len())
	buildKey := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "build"))
	helpKeys := []key.Binding{buildKey, m.keys.back, m.keys.quit}
	return fmt.Sprintf("%s\n%s\n\n%s", m.bucketList.View(), styles.help.Render(summary), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Create %d playlists on Spotify?", m.classification.Buckets.Len()))
	info := fmt.Sprintf("\nScheme: %s\nPrefix: %s\nTracks: %d\n", m.scheme, m.opts.Prefix, m.classification.TotalTracks)

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	return fmt.Sprintf("%s\n%s\n%s", title, info, m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Sort failed: %v\n\nPress r to retry, q to quit", m.err))
	}

	if m.result == nil {
		return styles.err.Render("No result available\n\nPress r to retry, q to quit")
	}

	title := styles.ok.Render("✓ Sort Complete!")
	var lines []string
	lines = append(lines, fmt.Sprintf("\nCreated: %d playlists", m.result.CreatedCount))
	if m.result.SkippedBuckets > 0 {
		lines = append(lines, fmt.Sprintf("Skipped: %d buckets", m.result.SkippedBuckets))
	}
	for _, res := range m.result.Results {
		if res.Error == nil {
			lines = append(lines, fmt.Sprintf("  • %s (%d tracks)", res.PlaylistName, res.Written))
		}
	}

	var failed string
	if m.result.FailedCount > 0 {
		failed = "\n\n" + styles.warn.Render(fmt.Sprintf("%d buckets failed:", m.result.FailedCount))
		for _, res := range m.result.Results {
			if res.Error != nil {
				failed += fmt.Sprintf("\n  • %s: %v", res.Label, res.Error)
			}
		}
	}

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	return fmt.Sprintf("%s\n%s%s\n\n%s", title, strings.Join(lines, "\n"), failed, m.help.ShortHelpView(helpKeys))
}
