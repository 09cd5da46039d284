package notelist

import (
	"slices"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/notekeeper/internal/keys"
	"github.com/nhle/notekeeper/internal/model"
	"github.com/nhle/notekeeper/internal/theme"
)

// Searcher filters the loaded notes by a free-text query.
type Searcher interface {
	SearchNotes(query string) []model.Note
}

// SelectedNoteMsg is sent when a user opens a note.
type SelectedNoteMsg struct {
	Note model.Note
}

// NewNoteMsg asks for the create form.
type NewNoteMsg struct{}

// EditNoteMsg asks for the edit form for Note.
type EditNoteMsg struct {
	Note model.Note
}

// DeleteNoteMsg is sent after the user confirmed a delete.
type DeleteNoteMsg struct {
	ID string
}

// ArchiveNoteMsg asks to archive a note.
type ArchiveNoteMsg struct {
	ID string
}

// PinNoteMsg asks to set the pinned flag of a note.
type PinNoteMsg struct {
	ID     string
	Pinned bool
}

// Model is the note list view component.
type Model struct {
	list        list.Model
	searcher    Searcher
	keys        *keys.KeyMap
	query       string
	searchMode  bool
	searchInput textinput.Model
	confirming  *model.Note
	width       int
	height      int
}

// New creates a new note list model.
func New(s Searcher, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, NoteDelegate{}, width, height-2)
	l.Title = "Notes"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle
	l.KeyMap.Quit.SetEnabled(false)

	si := textinput.New()
	si.Placeholder = "search notes..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:        l,
		searcher:    s,
		keys:        k,
		searchInput: si,
		width:       width,
		height:      height,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// Refresh reloads the items from the searcher using the active query.
func (m *Model) Refresh() tea.Cmd {
	notes := sortByUpdated(m.searcher.SearchNotes(m.query))
	items := make([]list.Item, len(notes))
	for i, n := range notes {
		items[i] = NoteItem{Note: n}
	}
	return m.list.SetItems(items)
}

// SetQuery replaces the active search query and reloads the items.
func (m *Model) SetQuery(query string) tea.Cmd {
	m.query = query
	m.searchMode = false
	m.searchInput.SetValue(query)
	m.searchInput.Blur()
	return m.Refresh()
}

// Query returns the active search query.
func (m Model) Query() string { return m.query }

// Capturing reports whether the list is consuming keys for a text input or
// a confirmation prompt.
func (m Model) Capturing() bool { return m.searchMode || m.confirming != nil }

// Selected returns the highlighted note.
func (m Model) Selected() (model.Note, bool) {
	item, ok := m.list.SelectedItem().(NoteItem)
	if !ok {
		return model.Note{}, false
	}
	return item.Note, true
}

// Update handles messages for the note list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case m.confirming != nil:
			return m.handleConfirmKeys(msg)
		case m.searchMode:
			return m.handleSearchKeys(msg)
		default:
			return m.handleNormalKeys(msg)
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleConfirmKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		id := m.confirming.ID
		m.confirming = nil
		return m, emit(DeleteNoteMsg{ID: id})
	case key.Matches(msg, m.keys.Cancel):
		m.confirming = nil
	}
	return m, nil
}

// handleSearchKeys processes key input while in search mode.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.searchInput.Blur()
		return m, nil

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.searchInput.Blur()
		m.query = ""
		return m, m.Refresh()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.query = m.searchInput.Value()
	return m, tea.Batch(cmd, m.Refresh())
}

// handleNormalKeys processes key input in normal (non-search) mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Search) {
		m.searchMode = true
		m.searchInput.SetValue(m.query)
		return m, m.searchInput.Focus()
	}
	if key.Matches(msg, m.keys.New) {
		return m, emit(NewNoteMsg{})
	}

	note, ok := m.Selected()
	switch {
	case !ok:
	case key.Matches(msg, m.keys.Select):
		return m, emit(SelectedNoteMsg{Note: note})
	case key.Matches(msg, m.keys.Edit):
		return m, emit(EditNoteMsg{Note: note})
	case key.Matches(msg, m.keys.Delete):
		m.confirming = &note
		return m, nil
	case key.Matches(msg, m.keys.Archive):
		return m, emit(ArchiveNoteMsg{ID: note.ID})
	case key.Matches(msg, m.keys.Pin):
		return m, emit(PinNoteMsg{ID: note.ID, Pinned: !note.IsPinned})
	}

	// Navigation keys (up/down/pgup/pgdn).
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the note list view.
func (m Model) View() string {
	var top string
	switch {
	case m.confirming != nil:
		top = theme.ErrorBarStyle.Render("Delete \"" + m.confirming.Title + "\"? (y/n)")
	case m.searchMode:
		top = lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View())
	case m.query != "":
		top = theme.HelpStyle.Render("filter: " + m.query + "  (/ to change, esc in search to clear)")
	}

	body := m.list.View()
	if len(m.list.Items()) == 0 {
		body = m.renderEmptyState()
	}

	if top == "" {
		return body
	}
	return lipgloss.JoinVertical(lipgloss.Left, top, body)
}

// renderEmptyState shows guidance text when no notes are available.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height-1).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.query != "" {
		return style.Render("No notes match \"" + m.query + "\".")
	}
	return style.Render("No notes yet.\n\nPress n to create one.")
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.searchInput.Width = width - 4
}

// sortByUpdated returns notes ordered most recently updated first.
func sortByUpdated(notes []model.Note) []model.Note {
	out := slices.Clone(notes)
	slices.SortStableFunc(out, func(a, b model.Note) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return out
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}
