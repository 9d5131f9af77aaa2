package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/csvlist/internal/models"
	"github.com/desertthunder/csvlist/internal/shared"
	"github.com/desertthunder/csvlist/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PreviewView ViewState = iota
	ConfirmView
	ImportView
	ResultView
)

// recentLines is how many outcome lines the import view keeps on screen.
const recentLines = 8

// Model represents the TUI application state.
type Model struct {
	ctx         context.Context
	cancel      context.CancelFunc
	view        ViewState
	engine      *tasks.ImportEngine
	opts        tasks.ImportOptions
	width       int
	height      int
	requestList list.Model
	updates     chan tasks.ProgressUpdate
	done        chan Msg
	progress    tasks.ProgressUpdate
	recent      []string
	bar         progress.Model
	spinner     spinner.Model
	result      *models.RunSummary
	err         error
	help        help.Model
	keys        keyMap
}

// NewModel creates a TUI model that previews opts.Requests and runs the import through engine once confirmed.
func NewModel(ctx context.Context, engine *tasks.ImportEngine, opts tasks.ImportOptions) *Model {
	ctx, cancel := context.WithCancel(ctx)

	requestList := list.New(requestItems(opts.Requests), list.NewDefaultDelegate(), 0, 0)
	requestList.Title = fmt.Sprintf("%d songs for '%s'", len(opts.Requests), opts.Name)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.ok

	return &Model{
		ctx:         ctx,
		cancel:      cancel,
		view:        PreviewView,
		engine:      engine,
		opts:        opts,
		requestList: requestList,
		bar:         progress.New(progress.WithDefaultGradient()),
		spinner:     s,
		help:        help.New(),
		keys:        newKeyMap(),
	}
}

// Init implements [tea.Model]. The preview needs no startup command.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.requestList.SetSize(msg.Width-4, msg.Height-8)
		m.bar.Width = min(max(msg.Width-8, 10), 80)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PreviewView:
			return m.handlePreviewKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ImportView:
			return m.handleImportKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case spinner.TickMsg:
		if m.view != ImportView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		switch msg.kind {
		case MsgProgressUpdate:
			m.applyProgress(msg.data.(tasks.ProgressUpdate))
			return m, m.waitForProgress()
		case MsgImportComplete:
			res := msg.data.(importResult)
			m.result = res.summary
			m.err = res.err
			m.view = ResultView
			m.updates = nil
			return m, nil
		}
	}

	if m.view == PreviewView {
		var cmd tea.Cmd
		m.requestList, cmd = m.requestList.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case PreviewView:
		return m.renderPreview()
	case ConfirmView:
		return m.renderConfirm()
	case ImportView:
		return m.renderImport()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

// Result returns the summary of the finished import, or nil if none ran.
func (m *Model) Result() (*models.RunSummary, error) {
	return m.result, m.err
}

func (m *Model) handlePreviewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.requestList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.requestList, cmd = m.requestList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		m.cancel()
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if len(m.opts.Requests) > 0 {
			m.view = ConfirmView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.requestList, cmd = m.requestList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		m.view = ImportView
		return m, m.startImport()
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.quit):
		m.view = PreviewView
	}
	return m, nil
}

// handleImportKeys only honors quit, which cancels the running import.
func (m *Model) handleImportKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.quit) {
		m.cancel()
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.quit) || key.Matches(msg, m.keys.enter) {
		m.cancel()
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) applyProgress(update tasks.ProgressUpdate) {
	m.progress = update
	if update.Phase != tasks.SearchTracks {
		return
	}

	line := update.Message
	if o, ok := update.Data.(models.Outcome); ok {
		line = fmt.Sprintf("%s %s", styles.mark(o.Matched), o.Request)
		if o.Reason != models.ReasonMatched {
			line += styles.help.Render(fmt.Sprintf(" (%s)", o.Reason))
		}
	}
	m.recent = append(m.recent, line)
	if len(m.recent) > recentLines {
		m.recent = m.recent[len(m.recent)-recentLines:]
	}
}

// startImport runs the engine in a goroutine. Updates are read one at a time by [Model.waitForProgress]; the
// final result is delivered after the update channel closes.
func (m *Model) startImport() tea.Cmd {
	m.updates = make(chan tasks.ProgressUpdate, 50)
	m.done = make(chan Msg, 1)

	updates, done := m.updates, m.done
	go func() {
		summary, err := m.engine.Run(m.ctx, updates, m.opts)
		close(updates)
		done <- importCompleteMsg(summary, err)
	}()

	return tea.Batch(m.spinner.Tick, m.waitForProgress())
}

func (m *Model) waitForProgress() tea.Cmd {
	updates, done := m.updates, m.done
	return func() tea.Msg {
		if updates != nil {
			if update, ok := <-updates; ok {
				return progressUpdateMsg(update)
			}
		}
		return <-done
	}
}

func (m *Model) renderPreview() string {
	helpKeys := []key.Binding{m.keys.up, m.keys.down, m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.requestList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Import %d songs into '%s'?", len(m.opts.Requests), m.opts.Name))

	var info strings.Builder
	fmt.Fprintf(&info, "\nPlaylist: %s\n", m.opts.Name)
	if m.opts.Description != "" {
		fmt.Fprintf(&info, "Description: %s\n", m.opts.Description)
	}
	fmt.Fprintf(&info, "Visibility: %s\n", shared.VisibilityString(m.opts.Public))
	fmt.Fprintf(&info, "Songs: %d\n", len(m.opts.Requests))
	if m.opts.DryRun {
		info.WriteString(styles.warn.Render("Dry run: no playlist will be created") + "\n")
	}

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info.String(), helpView)
}

func (m *Model) renderImport() string {
	title := styles.title.Render("Importing Songs")

	var phase string
	switch m.progress.Phase {
	case tasks.CreatePlaylist:
		phase = m.progress.Message
	case tasks.SearchTracks:
		phase = fmt.Sprintf("Searching tracks (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.AddTracks:
		phase = m.progress.Message
	default:
		phase = "Starting..."
	}

	var percent float64
	if total := len(m.opts.Requests); total > 0 && m.progress.Phase == tasks.SearchTracks {
		percent = float64(m.progress.Step) / float64(total)
	} else if m.progress.Phase == tasks.AddTracks || m.progress.Phase == tasks.Done {
		percent = 1
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.quit})

	return fmt.Sprintf("%s\n\n%s %s\n%s\n\n%s\n\n%s",
		title, m.spinner.View(), phase, m.bar.ViewAs(percent), strings.Join(m.recent, "\n"), helpView)
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.quit})

	if m.result == nil || (m.err != nil && m.result.Total == 0) {
		return styles.err.Render(fmt.Sprintf("✗ Import failed: %v", m.err)) + "\n\n" + helpView
	}

	s := m.result
	var title string
	switch {
	case m.err != nil:
		title = styles.err.Render(fmt.Sprintf("✗ Import failed: %v", m.err))
	case s.PopulateErr != nil:
		title = styles.warn.Render(fmt.Sprintf("⚠ Import incomplete: %v", s.PopulateErr))
	case s.DryRun:
		title = styles.ok.Render("✓ Dry Run Complete!")
	default:
		title = styles.ok.Render("✓ Import Complete!")
	}

	var info strings.Builder
	if s.Playlist != nil {
		fmt.Fprintf(&info, "\nPlaylist: %s", s.Playlist.Name)
		if s.Playlist.URL != "" {
			fmt.Fprintf(&info, "\nURL: %s", s.Playlist.URL)
		}
	}
	fmt.Fprintf(&info, "\nMatched: %d/%d (%.1f%%)", len(s.Matched), s.Total, s.MatchPercentage())
	if !s.DryRun {
		fmt.Fprintf(&info, "\nAppended: %d", s.Appended)
	}

	var failed string
	if len(s.Unmatched) > 0 {
		failed = fmt.Sprintf("\n\n%s", styles.warn.Render(fmt.Sprintf("No matches found for %d songs:", len(s.Unmatched))))
		for _, o := range s.Outcomes {
			if !o.Matched {
				failed += fmt.Sprintf("\n  %s %s %s", styles.mark(false), o.Request, styles.help.Render(o.Reason.String()))
			}
		}
	}

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info.String(), failed, helpView)
}
