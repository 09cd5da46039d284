package noteform

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/notekeeper/internal/model"
	"github.com/nhle/notekeeper/internal/service"
	"github.com/nhle/notekeeper/internal/theme"
)

// NoteCreatedMsg is dispatched when a new note is submitted.
type NoteCreatedMsg struct {
	Input service.CreateNoteInput
}

// NoteUpdatedMsg is dispatched when an existing note is submitted. Patch
// only carries fields that changed.
type NoteUpdatedMsg struct {
	ID    string
	Patch model.NotePatch
}

// CancelMsg is dispatched when the user aborts the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title    string
	content  string
	noteType model.NoteType
	tags     string
}

// Model is the Bubble Tea model for the note create/edit form.
type Model struct {
	form    *huh.Form
	fb      *formBindings
	editing *model.Note
	width   int
	height  int
}

// New creates a new note form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{noteType: model.NoteTypeNote},
		width:  width,
		height: height,
	}
}

// StartCreate initializes the form for a new note.
func (m *Model) StartCreate() tea.Cmd {
	m.editing = nil
	*m.fb = formBindings{noteType: model.NoteTypeNote}
	m.form = m.buildForm()
	return m.form.Init()
}

// StartEdit initializes the form with the fields of n.
func (m *Model) StartEdit(n model.Note) tea.Cmd {
	m.editing = &n
	*m.fb = formBindings{
		title:    n.Title,
		content:  n.Content,
		noteType: n.Type,
		tags:     strings.Join(n.Tags, ", "),
	}
	if !m.fb.noteType.Valid() {
		m.fb.noteType = model.NoteTypeNote
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the note form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}
	if k, ok := msg.(tea.KeyMsg); ok && k.Type == tea.KeyEsc {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		return m, m.handleSubmit()
	case huh.StateAborted:
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the note form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New Note"
	if m.editing != nil {
		titleText = "Edit Note"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(titleText) + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Placeholder("Give it a name").
				Value(&m.fb.title).
				Validate(validateRequired("Title")),
			huh.NewText().
				Title("Content").
				Placeholder("Write something...").
				Value(&m.fb.content),
			huh.NewSelect[model.NoteType]().
				Title("Type").
				Options(
					huh.NewOption("Note", model.NoteTypeNote),
					huh.NewOption("To-do list", model.NoteTypeTodo),
				).
				Value(&m.fb.noteType),
			huh.NewInput().
				Title("Tags").
				Placeholder("comma separated (optional)").
				Value(&m.fb.tags),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) handleSubmit() tea.Cmd {
	title := strings.TrimSpace(m.fb.title)
	tags := splitTags(m.fb.tags)

	if m.editing == nil {
		in := service.CreateNoteInput{
			Title:   title,
			Content: m.fb.content,
			Type:    m.fb.noteType,
			Tags:    tags,
		}
		return func() tea.Msg { return NoteCreatedMsg{Input: in} }
	}

	prev := *m.editing
	var patch model.NotePatch
	if title != prev.Title {
		patch.Title = model.Some(title)
	}
	if m.fb.content != prev.Content {
		patch.Content = model.Some(m.fb.content)
	}
	if m.fb.noteType != prev.Type {
		patch.Type = model.Some(m.fb.noteType)
	}
	if strings.Join(tags, ",") != strings.Join(prev.Tags, ",") {
		if tags == nil {
			tags = []string{}
		}
		patch.Tags = model.Some(tags)
	}
	return func() tea.Msg { return NoteUpdatedMsg{ID: prev.ID, Patch: patch} }
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func (m Model) formHeight() int {
	return max(m.height-4, 10)
}

// splitTags parses a comma separated tag list, dropping blanks and
// duplicates while keeping the first-seen order.
func splitTags(s string) []string {
	var tags []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(s, ",") {
		t := strings.TrimSpace(part)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tags = append(tags, t)
	}
	return tags
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}
