package detail

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/notekeeper/internal/keys"
	"github.com/nhle/notekeeper/internal/model"
	"github.com/nhle/notekeeper/internal/theme"
)

// BackMsg signals the parent to navigate back to the list view.
type BackMsg struct{}

// AddTaskMsg asks to append a task to a note.
type AddTaskMsg struct {
	NoteID string
	Title  string
}

// ToggleTaskMsg asks to set the completed flag of a task.
type ToggleTaskMsg struct {
	NoteID    string
	ID        string
	Completed bool
}

// DeleteTaskMsg asks to delete a task.
type DeleteTaskMsg struct {
	NoteID string
	ID     string
}

// ReorderTasksMsg carries the full new ordering of a note's tasks.
type ReorderTasksMsg struct {
	NoteID string
	Orders []model.TaskOrder
}

// ExportMsg asks to export the note and its tasks to Markdown.
type ExportMsg struct {
	Note  model.Note
	Tasks []model.Task
}

// Model is the note detail view component.
type Model struct {
	note     *model.Note
	tasks    []model.Task
	cursor   int
	adding   bool
	input    textinput.Model
	viewport viewport.Model
	keys     *keys.KeyMap
	now      func() time.Time
	width    int
	height   int
}

// New creates a new detail view model.
func New(keys *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	ti := textinput.New()
	ti.Placeholder = "new task..."
	ti.Prompt = "+ "
	ti.CharLimit = 255
	ti.Width = width - 4

	return Model{
		input:    ti,
		viewport: vp,
		keys:     keys,
		now:      time.Now,
		width:    width,
		height:   height,
	}
}

// Init returns the initial command for the detail view.
func (m Model) Init() tea.Cmd {
	return nil
}

// Note returns the displayed note, if any.
func (m Model) Note() (model.Note, bool) {
	if m.note == nil {
		return model.Note{}, false
	}
	return *m.note, true
}

// Capturing reports whether the task title input has focus.
func (m Model) Capturing() bool { return m.adding }

// SetNote replaces the displayed note. Switching to a different note
// resets the cursor and scroll position.
func (m *Model) SetNote(n model.Note) {
	if m.note == nil || m.note.ID != n.ID {
		m.cursor = 0
		m.tasks = nil
		m.viewport.GotoTop()
	}
	m.note = &n
	m.refresh()
}

// SetTasks replaces the task list of the displayed note.
func (m *Model) SetTasks(tasks []model.Task) {
	m.tasks = sortTasks(tasks)
	if m.cursor >= len(m.tasks) {
		m.cursor = max(len(m.tasks)-1, 0)
	}
	m.refresh()
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.note == nil {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if m.adding {
		return m.handleInputKeys(keyMsg)
	}

	noteID := m.note.ID
	switch {
	case key.Matches(keyMsg, m.keys.Back):
		return m, emit(BackMsg{})

	case key.Matches(keyMsg, m.keys.AddTask):
		m.adding = true
		m.input.Reset()
		m.refresh()
		return m, m.input.Focus()

	case key.Matches(keyMsg, m.keys.Export):
		return m, emit(ExportMsg{Note: *m.note, Tasks: slices.Clone(m.tasks)})

	case key.Matches(keyMsg, m.keys.Down) && len(m.tasks) > 0:
		m.cursor = min(m.cursor+1, len(m.tasks)-1)
		m.refresh()
		return m, nil

	case key.Matches(keyMsg, m.keys.Up) && len(m.tasks) > 0:
		m.cursor = max(m.cursor-1, 0)
		m.refresh()
		return m, nil
	}

	if task, ok := m.current(); ok {
		switch {
		case key.Matches(keyMsg, m.keys.ToggleTask):
			return m, emit(ToggleTaskMsg{NoteID: noteID, ID: task.ID, Completed: !task.Completed})

		case key.Matches(keyMsg, m.keys.DeleteTask):
			return m, emit(DeleteTaskMsg{NoteID: noteID, ID: task.ID})

		case key.Matches(keyMsg, m.keys.MoveUp):
			return m.move(-1)

		case key.Matches(keyMsg, m.keys.MoveDown):
			return m.move(1)
		}
	}

	// Delegate to viewport for scrolling (pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleInputKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		title := strings.TrimSpace(m.input.Value())
		m.adding = false
		m.input.Blur()
		m.refresh()
		if title == "" {
			return m, nil
		}
		return m, emit(AddTaskMsg{NoteID: m.note.ID, Title: title})

	case tea.KeyEsc:
		m.adding = false
		m.input.Blur()
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.refresh()
	return m, cmd
}

// move swaps the selected task with its neighbour and emits the resulting
// positions for every task of the note.
func (m Model) move(delta int) (Model, tea.Cmd) {
	j := m.cursor + delta
	if j < 0 || j >= len(m.tasks) {
		return m, nil
	}

	tasks := slices.Clone(m.tasks)
	tasks[m.cursor], tasks[j] = tasks[j], tasks[m.cursor]

	orders := make([]model.TaskOrder, len(tasks))
	for i := range tasks {
		tasks[i].Order = i
		orders[i] = model.TaskOrder{ID: tasks[i].ID, Order: i}
	}

	m.tasks = tasks
	m.cursor = j
	m.refresh()
	return m, emit(ReorderTasksMsg{NoteID: m.note.ID, Orders: orders})
}

func (m Model) current() (model.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.tasks) {
		return model.Task{}, false
	}
	return m.tasks[m.cursor], true
}

// View renders the detail view.
func (m Model) View() string {
	if m.note == nil {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No note selected")
	}
	return m.viewport.View()
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderContent())
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	if m.note == nil {
		return ""
	}

	n := m.note
	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, titleStyle.Render(n.Title))

	badges := []string{theme.NoteTypeStyle(n.Type).Render(strings.ToUpper(string(n.Type)))}
	if n.IsPinned {
		badges = append(badges, theme.PinnedStyle.Render("pinned"))
	}
	if n.IsArchived {
		badges = append(badges, theme.HelpStyle.Render("archived"))
	}
	for _, t := range n.Tags {
		badges = append(badges, theme.TagStyle.Render("#"+t))
	}
	sections = append(sections, strings.Join(badges, "  "), "")

	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)
	if !n.CreatedAt.IsZero() {
		sections = append(sections, fmt.Sprintf(
			"%s  %s",
			metaStyle.Render("Created:"),
			valStyle.Render(n.CreatedAt.Local().Format("2006-01-02 15:04")),
		))
	}
	if !n.UpdatedAt.IsZero() {
		sections = append(sections, fmt.Sprintf(
			"%s  %s",
			metaStyle.Render("Updated:"),
			valStyle.Render(n.UpdatedAt.Local().Format("2006-01-02 15:04")),
		))
	}

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", max(min(m.width-4, 80), 1)))
	sections = append(sections, "", separator, "")

	body := n.Content
	if body == "" {
		body = lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render("No content")
	}
	sections = append(sections, body)

	if n.Type == model.NoteTypeTodo || len(m.tasks) > 0 || m.adding {
		sections = append(sections, "", separator, "")
		sections = append(sections, m.renderTasks()...)
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderTasks() []string {
	done := 0
	for _, t := range m.tasks {
		if t.Completed {
			done++
		}
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	lines := []string{headerStyle.Render(fmt.Sprintf("Tasks (%d/%d)", done, len(m.tasks))), ""}

	if len(m.tasks) == 0 && !m.adding {
		lines = append(lines, theme.HelpStyle.Render("No tasks. Press t to add one."))
	}

	now := m.now()
	for i, t := range m.tasks {
		lines = append(lines, renderTask(t, i == m.cursor, now))
	}

	if m.adding {
		lines = append(lines, m.input.View())
	}
	return lines
}

// renderTask draws one checklist line.
func renderTask(t model.Task, selected bool, now time.Time) string {
	box := "[ ]"
	title := t.Title
	if t.Completed {
		box = "[x]"
		title = theme.DimmedStyle.Render(title)
	}

	indent := ""
	if t.ParentTaskID != nil {
		indent = "  "
	}

	line := fmt.Sprintf("%s%s %s %s", indent, box, title,
		theme.PriorityStyle(t.Priority).Render(string(t.Priority)))

	if t.DueDate != nil {
		due := "due " + t.DueDate.Local().Format("2006-01-02")
		if t.IsOverdue(now) {
			line += " " + theme.OverdueStyle.Render(due)
		} else {
			line += " " + theme.DueDateStyle.Render(due)
		}
	}

	if selected {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	m.input.Width = width - 4
	m.refresh()
}

// sortTasks orders tasks by position, then creation time.
func sortTasks(tasks []model.Task) []model.Task {
	out := slices.Clone(tasks)
	slices.SortStableFunc(out, func(a, b model.Task) int {
		if a.Order != b.Order {
			return a.Order - b.Order
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}
