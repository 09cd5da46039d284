package tagmgr

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/notekeeper/internal/keys"
	"github.com/nhle/notekeeper/internal/model"
	"github.com/nhle/notekeeper/internal/service"
	"github.com/nhle/notekeeper/internal/theme"
)

// TagService is the subset of the notes API used by the tag manager.
// *rpc.Client satisfies it.
type TagService interface {
	ListTags(ctx context.Context) ([]model.Tag, error)
	CreateTag(ctx context.Context, in service.CreateTagInput) (*model.Tag, error)
	UpdateTag(ctx context.Context, id string, in service.CreateTagInput) (*model.Tag, error)
	DeleteTag(ctx context.Context, id string) error
}

// CloseMsg signals the parent to close the tag view.
type CloseMsg struct{}

type tagMode int

const (
	modeList tagMode = iota
	modeForm
	modeConfirmDelete
)

const defaultColor = "#6BCB77"

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

type formBindings struct {
	name    string
	color   string
	confirm bool
}

type tagsLoadedMsg struct {
	tags []model.Tag
	err  error
}

type tagSavedMsg struct{ err error }
type tagDeletedMsg struct{ err error }

// Model is the Bubble Tea model for tag management.
type Model struct {
	ctx         context.Context
	mode        tagMode
	svc         TagService
	keys        *keys.KeyMap
	tags        []model.Tag
	selectedIdx int
	editingID   string
	form        *huh.Form
	confirmForm *huh.Form
	fb          *formBindings
	statusMsg   string
	width       int
	height      int
}

// New creates a new tag manager model. Calls to svc derive from ctx.
func New(ctx context.Context, svc TagService, k *keys.KeyMap, width, height int) Model {
	return Model{
		ctx:   ctx,
		mode:  modeList,
		svc:   svc,
		keys:  k,
		fb:    &formBindings{},
		width: width, height: height,
	}
}

// Init loads tags from the server.
func (m Model) Init() tea.Cmd {
	return m.loadTags()
}

// Capturing reports whether a form has keyboard focus.
func (m Model) Capturing() bool { return m.mode != modeList }

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tagsLoadedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}
		m.tags = msg.tags
		if m.selectedIdx >= len(m.tags) && m.selectedIdx > 0 {
			m.selectedIdx = len(m.tags) - 1
		}
		return m, nil

	case tagSavedMsg:
		m.statusMsg = result(msg.err, "Tag saved")
		m.mode = modeList
		return m, m.loadTags()

	case tagDeletedMsg:
		m.statusMsg = result(msg.err, "Tag deleted")
		m.mode = modeList
		return m, m.loadTags()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateActiveForm(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.mode {
	case modeList:
		return m.handleListKey(msg)
	case modeForm:
		return m.updateForm(msg)
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.Down):
		if len(m.tags) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.tags)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(m.tags) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(m.tags) - 1
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.New):
		m.editingID = ""
		m.fb.name = ""
		m.fb.color = defaultColor
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Edit):
		if len(m.tags) == 0 {
			return m, nil
		}
		t := m.tags[m.selectedIdx]
		m.editingID = t.ID
		m.fb.name = t.Name
		m.fb.color = t.Color
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Delete):
		if len(m.tags) == 0 {
			return m, nil
		}
		m.fb.confirm = false
		m.confirmForm = m.buildConfirmForm()
		m.mode = modeConfirmDelete
		return m, m.confirmForm.Init()
	}
	return m, nil
}

func (m Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder("Tag name").
				CharLimit(50).
				Value(&m.fb.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Color").
				Placeholder(defaultColor).
				Value(&m.fb.color).
				Validate(validateColor),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) buildConfirmForm() *huh.Form {
	name := ""
	if m.selectedIdx < len(m.tags) {
		name = m.tags[m.selectedIdx].Name
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete tag %q?", name)).
				Description("Notes keep their tag text.").
				Affirmative("Yes, delete").
				Negative("Cancel").
				Value(&m.fb.confirm),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}
	if k, ok := msg.(tea.KeyMsg); ok && k.Type == tea.KeyEsc {
		m.mode = modeList
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	switch m.form.State {
	case huh.StateCompleted:
		return m, m.saveTag()
	case huh.StateAborted:
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	if m.confirmForm == nil {
		return m, nil
	}
	if k, ok := msg.(tea.KeyMsg); ok && k.Type == tea.KeyEsc {
		m.mode = modeList
		return m, nil
	}
	mdl, cmd := m.confirmForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmForm = f
	}
	switch m.confirmForm.State {
	case huh.StateCompleted:
		if m.fb.confirm {
			return m, m.deleteTag(m.tags[m.selectedIdx].ID)
		}
		m.mode = modeList
		return m, nil
	case huh.StateAborted:
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) updateActiveForm(msg tea.Msg) (Model, tea.Cmd) {
	switch m.mode {
	case modeForm:
		return m.updateForm(msg)
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}
	return m, nil
}

// View renders the tag manager.
func (m Model) View() string {
	switch m.mode {
	case modeForm:
		return m.viewForm(m.form)
	case modeConfirmDelete:
		return m.viewForm(m.confirmForm)
	default:
		return m.viewList()
	}
}

func (m Model) viewList() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).MarginBottom(1)
	b.WriteString(titleStyle.Render("Tags"))
	b.WriteString("\n\n")

	if len(m.tags) == 0 {
		emptyStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Italic(true)
		b.WriteString(emptyStyle.Render("No tags yet. Press 'n' to create one."))
	} else {
		for i, t := range m.tags {
			swatch := "●"
			if t.Color != "" {
				swatch = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Color)).Render(swatch)
			}
			label := fmt.Sprintf("%s %s", swatch, t.Name)

			if i == m.selectedIdx {
				b.WriteString(theme.SelectedItemStyle.Render(label))
			} else {
				b.WriteString(theme.ListItemStyle.Render(label))
			}
			b.WriteString("\n")
		}
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorYellow).Italic(true).Render(m.statusMsg))
	}

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

func (m Model) viewForm(f *huh.Form) string {
	if f == nil {
		return ""
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(f.View())
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func (m Model) formHeight() int {
	return max(m.height-4, 10)
}

func (m Model) loadTags() tea.Cmd {
	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		tags, err := svc.ListTags(ctx)
		return tagsLoadedMsg{tags: tags, err: err}
	}
}

func (m Model) saveTag() tea.Cmd {
	ctx, svc := m.ctx, m.svc
	in := service.CreateTagInput{
		Name:  strings.TrimSpace(m.fb.name),
		Color: strings.TrimSpace(m.fb.color),
	}
	editID := m.editingID
	return func() tea.Msg {
		var err error
		if editID == "" {
			_, err = svc.CreateTag(ctx, in)
		} else {
			_, err = svc.UpdateTag(ctx, editID, in)
		}
		return tagSavedMsg{err: err}
	}
}

func (m Model) deleteTag(id string) tea.Cmd {
	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		return tagDeletedMsg{err: svc.DeleteTag(ctx, id)}
	}
}

// result formats the outcome of a save or delete for the status line.
func result(err error, ok string) string {
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	return ok
}

func validateColor(s string) error {
	s = strings.TrimSpace(s)
	if s == "" || hexColor.MatchString(s) {
		return nil
	}
	return fmt.Errorf("use a hex color like %s", defaultColor)
}
