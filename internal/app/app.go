// Package app is the root Bubble Tea model of the terminal client. It routes
// messages between the views and turns their requests into client store
// operations.
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/nhle/notekeeper/internal/client"
	"github.com/nhle/notekeeper/internal/keys"
	"github.com/nhle/notekeeper/internal/model"
	notesync "github.com/nhle/notekeeper/internal/sync"
	"github.com/nhle/notekeeper/internal/ui"
	"github.com/nhle/notekeeper/internal/ui/command"
	configview "github.com/nhle/notekeeper/internal/ui/config"
	"github.com/nhle/notekeeper/internal/ui/detail"
	"github.com/nhle/notekeeper/internal/ui/foldermgr"
	helpview "github.com/nhle/notekeeper/internal/ui/help"
	"github.com/nhle/notekeeper/internal/ui/noteform"
	"github.com/nhle/notekeeper/internal/ui/notelist"
	"github.com/nhle/notekeeper/internal/ui/tagmgr"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewDetail
	ViewHelp
	ViewCommand
	ViewNoteCreate
	ViewNoteEdit
	ViewTags
	ViewFolders
	ViewSettings
)

// Options configures the root model.
type Options struct {
	// Context is the parent of every store operation. It defaults to
	// context.Background.
	Context context.Context

	// Tags and Folders back the manager views. Either may be nil, which
	// disables that view.
	Tags    tagmgr.TagService
	Folders foldermgr.FolderService

	// Config is shown and edited by the settings view, which is enabled
	// only when Settings is set.
	Config   model.AppConfig
	Settings *configview.Options

	// Auth receives a token saved from the settings view so later calls
	// use it. It may be nil.
	Auth TokenSetter

	// ExportDir receives Markdown exports.
	ExportDir string
	Log       zerolog.Logger
}

// TokenSetter swaps the bearer token of a live backend. *rpc.Client
// satisfies it.
type TokenSetter interface {
	SetToken(token string)
}

// Model is the root Bubble Tea model that manages view routing, layout,
// and access to the client store.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	ctx          context.Context
	store        *client.Store
	poller       *notesync.Poller
	keys         *keys.KeyMap
	noteList     notelist.Model
	detail       detail.Model
	noteForm     noteform.Model
	helpView     helpview.Model
	commandView  command.Model
	tagView      tagmgr.Model
	folderView   foldermgr.Model
	settingsView configview.Model
	auth         TokenSetter
	hasTags      bool
	hasFolders   bool
	hasSettings  bool
	exportDir    string
	log          zerolog.Logger
	ready        bool
	notice       string
	authError    bool
}

// New creates a new root application model.
func New(s *client.Store, p *notesync.Poller, opts Options) Model {
	k := keys.DefaultKeyMap()
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	m := Model{
		currentView: ViewList,
		ctx:         ctx,
		store:       s,
		poller:      p,
		keys:        k,
		noteList:    notelist.New(s, k, 80, 24),
		detail:      detail.New(k, 80, 24),
		noteForm:    noteform.New(80, 24),
		helpView:    helpview.New(k, 80, 24),
		commandView: command.New(80, 24),
		exportDir:   opts.ExportDir,
		auth:        opts.Auth,
		log:         opts.Log,
	}
	if opts.Tags != nil {
		m.tagView = tagmgr.New(ctx, opts.Tags, k, 80, 24)
		m.hasTags = true
	}
	if opts.Folders != nil {
		m.folderView = foldermgr.New(ctx, opts.Folders, k, 80, 24)
		m.hasFolders = true
	}
	if opts.Settings != nil {
		m.settingsView = configview.New(ctx, opts.Config, *opts.Settings, k, 80, 24)
		m.hasSettings = true
	}
	return m
}

// Init loads the local snapshot and starts polling the server.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.bootstrap(),
		m.poller.Start(),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.noteList.SetSize(contentWidth, contentHeight)
		m.detail.SetSize(contentWidth, contentHeight)
		m.noteForm.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		m.commandView.SetSize(contentWidth, contentHeight)
		m.tagView.SetSize(contentWidth, contentHeight)
		m.folderView.SetSize(contentWidth, contentHeight)
		m.settingsView.SetSize(contentWidth, contentHeight)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case StateChangedMsg:
		cmd := m.syncViews()
		return m, cmd

	case opResultMsg:
		if msg.err != nil {
			m.log.Debug().Err(msg.err).Str("op", msg.op).Msg("operation failed")
		}
		cmd := m.syncViews()
		return m, cmd

	case exportedMsg:
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Msg("export failed")
			m.store.Dispatch(client.SetError{Message: "export failed: " + msg.err.Error()})
			return m, nil
		}
		m.notice = exportNotice(msg)
		return m, nil

	case notesync.SyncResultMsg:
		m.authError = msg.AuthError
		if msg.Error != nil {
			m.log.Warn().Err(msg.Error).Bool("auth", msg.AuthError).Msg("sync failed")
		}
		cmd := m.syncViews()
		return m, tea.Batch(cmd, m.poller.WaitForNextResult())

	case notelist.SelectedNoteMsg:
		m.notice = ""
		m.previousView = m.currentView
		m.currentView = ViewDetail
		m.detail.SetNote(msg.Note)
		m.detail.SetTasks(m.store.State().Tasks[msg.Note.ID])
		return m, m.fetchTasks(msg.Note.ID)

	case notelist.NewNoteMsg:
		m.previousView = m.currentView
		m.currentView = ViewNoteCreate
		cmd := m.noteForm.StartCreate()
		return m, cmd

	case notelist.EditNoteMsg:
		cmd := m.startEdit(msg.Note)
		return m, cmd

	case notelist.DeleteNoteMsg:
		return m, m.deleteNote(msg.ID)

	case notelist.ArchiveNoteMsg:
		return m, m.archiveNote(msg.ID)

	case notelist.PinNoteMsg:
		return m, m.pinNote(msg.ID, msg.Pinned)

	case noteform.NoteCreatedMsg:
		m.currentView = m.previousView
		return m, m.createNote(msg.Input)

	case noteform.NoteUpdatedMsg:
		m.currentView = m.previousView
		if msg.Patch.Empty() {
			return m, nil
		}
		return m, m.updateNote(msg.ID, msg.Patch)

	case noteform.CancelMsg:
		m.currentView = m.previousView
		return m, nil

	case detail.BackMsg:
		m.currentView = ViewList
		cmd := m.noteList.Refresh()
		return m, cmd

	case detail.AddTaskMsg:
		return m, m.createTask(msg.NoteID, msg.Title)

	case detail.ToggleTaskMsg:
		return m, m.toggleTask(msg.NoteID, msg.ID, msg.Completed)

	case detail.DeleteTaskMsg:
		return m, m.deleteTask(msg.NoteID, msg.ID)

	case detail.ReorderTasksMsg:
		return m, m.reorderTasks(msg.NoteID, msg.Orders)

	case detail.ExportMsg:
		return m, m.exportNote(msg.Note, msg.Tasks)

	case helpview.CloseMsg:
		m.currentView = m.previousView
		return m, nil

	case tagmgr.CloseMsg, foldermgr.CloseMsg, configview.ConfigDoneMsg:
		m.currentView = ViewList
		return m, nil

	case configview.SavedMsg:
		m.exportDir = msg.Config.Client.ExportDir
		m.log.Info().Str("server", msg.Config.Client.ServerURL).Msg("settings saved")
		if msg.Token != "" && m.auth != nil {
			m.auth.SetToken(msg.Token)
			m.poller.Refresh()
		}
		return m, nil

	case foldermgr.ChangedMsg:
		// Deleting a folder detaches its notes on the server.
		m.poller.Refresh()
		return m, nil

	case command.CancelMsg:
		m.currentView = m.previousView
		return m, nil

	case command.CommandMsg:
		m.currentView = m.previousView
		cmd := m.executeCommand(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.poller.Stop()
			return m, tea.Quit
		}
		if !m.capturing() {
			if cmd, handled := m.handleGlobalKey(msg); handled {
				return m, cmd
			}
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// capturing reports whether the active view consumes every key, for text
// entry or confirmation.
func (m Model) capturing() bool {
	switch m.currentView {
	case ViewNoteCreate, ViewNoteEdit, ViewCommand:
		return true
	case ViewList:
		return m.noteList.Capturing()
	case ViewDetail:
		return m.detail.Capturing()
	case ViewTags:
		return m.tagView.Capturing()
	case ViewFolders:
		return m.folderView.Capturing()
	case ViewSettings:
		return m.settingsView.Capturing()
	}
	return false
}

// handleGlobalKey processes keys that work across views.
func (m *Model) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit) && m.currentView == ViewList:
		m.poller.Stop()
		return tea.Quit, true

	case key.Matches(msg, m.keys.Help):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return nil, true
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return nil, true

	case key.Matches(msg, m.keys.Command) && m.currentView != ViewHelp:
		m.previousView = m.currentView
		m.currentView = ViewCommand
		return m.commandView.Focus(), true

	case key.Matches(msg, m.keys.Tags) && m.currentView == ViewList:
		return m.openTags(), true

	case key.Matches(msg, m.keys.Folders) && m.currentView == ViewList:
		return m.openFolders(), true

	case key.Matches(msg, m.keys.Settings) && m.currentView == ViewList:
		return m.openSettings(), true

	case key.Matches(msg, m.keys.Refresh) && m.currentView == ViewList:
		m.notice = ""
		m.poller.Refresh()
		return nil, true

	case key.Matches(msg, m.keys.Refresh) && m.currentView == ViewDetail:
		if n, ok := m.detail.Note(); ok {
			m.poller.Refresh()
			return m.fetchTasks(n.ID), true
		}

	case key.Matches(msg, m.keys.Edit) && m.currentView == ViewDetail:
		if n, ok := m.detail.Note(); ok {
			return m.startEdit(n), true
		}
	}
	return nil, false
}

func (m *Model) openTags() tea.Cmd {
	if !m.hasTags {
		m.notice = "tag management is unavailable"
		return nil
	}
	m.previousView = m.currentView
	m.currentView = ViewTags
	return m.tagView.Init()
}

func (m *Model) openFolders() tea.Cmd {
	if !m.hasFolders {
		m.notice = "folder management is unavailable"
		return nil
	}
	m.previousView = m.currentView
	m.currentView = ViewFolders
	return m.folderView.Init()
}

func (m *Model) openSettings() tea.Cmd {
	if !m.hasSettings {
		m.notice = "settings are unavailable"
		return nil
	}
	m.previousView = m.currentView
	m.currentView = ViewSettings
	return nil
}

func (m *Model) startEdit(n model.Note) tea.Cmd {
	m.previousView = m.currentView
	m.currentView = ViewNoteEdit
	return m.noteForm.StartEdit(n)
}

// syncViews copies the store state into the list and detail views.
func (m *Model) syncViews() tea.Cmd {
	state := m.store.State()
	cmd := m.noteList.Refresh()

	n, ok := m.detail.Note()
	if !ok {
		return cmd
	}
	for _, note := range state.Notes {
		if note.ID == n.ID {
			m.detail.SetNote(note)
			m.detail.SetTasks(state.Tasks[note.ID])
			return cmd
		}
	}

	// The note is gone from the collection, either deleted or archived.
	if m.currentView == ViewDetail {
		m.currentView = ViewList
	}
	return cmd
}

// executeCommand handles a command from the command palette.
func (m *Model) executeCommand(c command.CommandMsg) tea.Cmd {
	switch c.Name {
	case command.CmdSync, "refresh":
		m.poller.Refresh()
		return nil
	case command.CmdNew:
		m.previousView = m.currentView
		m.currentView = ViewNoteCreate
		return m.noteForm.StartCreate()
	case command.CmdSearch:
		m.currentView = ViewList
		return m.noteList.SetQuery(c.Arg)
	case command.CmdExport:
		if n, ok := m.detail.Note(); ok && m.currentView == ViewDetail {
			return m.exportNote(n, m.store.State().Tasks[n.ID])
		}
		return m.exportAll()
	case command.CmdTags:
		return m.openTags()
	case command.CmdFolders:
		return m.openFolders()
	case command.CmdSettings:
		return m.openSettings()
	case command.CmdHelp:
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return nil
	case command.CmdQuit, "q":
		m.poller.Stop()
		return tea.Quit
	default:
		m.notice = fmt.Sprintf("unknown command %q", c.Name)
		return nil
	}
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewList:
		m.noteList, cmd = m.noteList.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	case ViewNoteCreate, ViewNoteEdit:
		m.noteForm, cmd = m.noteForm.Update(msg)
	case ViewTags:
		m.tagView, cmd = m.tagView.Update(msg)
	case ViewFolders:
		m.folderView, cmd = m.folderView.Update(msg)
	case ViewSettings:
		m.settingsView, cmd = m.settingsView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	state := m.store.State()
	header := m.layout.RenderHeader(m.title(state), m.syncStatus(state))
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints(), m.errorText(state))

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewList:
		return m.noteList.View()
	case ViewDetail:
		return m.detail.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	case ViewNoteCreate, ViewNoteEdit:
		return m.noteForm.View()
	case ViewTags:
		return m.tagView.View()
	case ViewFolders:
		return m.folderView.View()
	case ViewSettings:
		return m.settingsView.View()
	default:
		return ""
	}
}

func (m Model) title(state client.State) string {
	return fmt.Sprintf("Notekeeper (%d)", len(state.Notes))
}

// syncStatus returns a short string describing loading and sync progress.
func (m Model) syncStatus(state client.State) string {
	var parts []string
	if state.Loading {
		parts = append(parts, "loading…")
	}

	status := m.poller.Status()
	if status.State != notesync.SyncIdle || state.LastSync == nil {
		parts = append(parts, status.State.String())
	}
	if state.LastSync != nil {
		parts = append(parts, "synced "+state.LastSync.Local().Format("15:04:05"))
	}
	return strings.Join(parts, " | ")
}

// errorText returns the message shown in the error bar, if any.
func (m Model) errorText(state client.State) string {
	if m.authError {
		return "the server rejected your token; restart with --token"
	}
	return state.Error
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	if m.notice != "" && m.currentView == ViewList {
		return m.notice
	}

	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | tab complete | esc back"
	case ViewDetail:
		if m.notice != "" {
			return m.notice
		}
		return "esc back | t add | space toggle | K/J move | x delete | e edit | m export"
	case ViewNoteCreate, ViewNoteEdit:
		return "enter submit | esc cancel"
	case ViewTags, ViewFolders:
		return "n new | e edit | d delete | esc back"
	case ViewSettings:
		return "e edit | esc back"
	default:
		return "q quit | ? help | n new | e edit | d delete | a archive | p pin | / search | r sync | T tags | F folders | S settings"
	}
}
