package foldermgr

import (
	"context"
	"fmt"
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

// FolderService is the subset of the notes API used by the folder manager.
// *rpc.Client satisfies it.
type FolderService interface {
	ListFolders(ctx context.Context) ([]model.Folder, error)
	CreateFolder(ctx context.Context, in service.CreateFolderInput) (*model.Folder, error)
	RenameFolder(ctx context.Context, id, name string) (*model.Folder, error)
	DeleteFolder(ctx context.Context, id string) error
}

// CloseMsg signals the parent to close the folder view.
type CloseMsg struct{}

// ChangedMsg signals that folders were deleted, which detaches notes.
type ChangedMsg struct{}

type folderMode int

const (
	modeList folderMode = iota
	modeForm
	modeConfirmDelete
)

type formBindings struct {
	name     string
	parentID string
	confirm  bool
}

// row is a folder placed in the rendered tree.
type row struct {
	folder model.Folder
	depth  int
}

type foldersLoadedMsg struct {
	folders []model.Folder
	err     error
}

type folderSavedMsg struct{ err error }
type folderDeletedMsg struct{ err error }

// Model is the Bubble Tea model for folder management.
type Model struct {
	ctx         context.Context
	mode        folderMode
	svc         FolderService
	keys        *keys.KeyMap
	rows        []row
	selectedIdx int
	editingID   string
	form        *huh.Form
	confirmForm *huh.Form
	fb          *formBindings
	statusMsg   string
	width       int
	height      int
}

// New creates a new folder manager model. Calls to svc derive from ctx.
func New(ctx context.Context, svc FolderService, k *keys.KeyMap, width, height int) Model {
	return Model{
		ctx:   ctx,
		mode:  modeList,
		svc:   svc,
		keys:  k,
		fb:    &formBindings{},
		width: width, height: height,
	}
}

// Init loads folders from the server.
func (m Model) Init() tea.Cmd {
	return m.loadFolders()
}

// Capturing reports whether a form has keyboard focus.
func (m Model) Capturing() bool { return m.mode != modeList }

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case foldersLoadedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}
		m.rows = tree(msg.folders)
		if m.selectedIdx >= len(m.rows) && m.selectedIdx > 0 {
			m.selectedIdx = len(m.rows) - 1
		}
		return m, nil

	case folderSavedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.statusMsg = "Folder saved"
		}
		m.mode = modeList
		return m, m.loadFolders()

	case folderDeletedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.statusMsg = "Folder deleted"
		}
		m.mode = modeList
		return m, tea.Batch(m.loadFolders(), func() tea.Msg { return ChangedMsg{} })

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
		if len(m.rows) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.rows)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(m.rows) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(m.rows) - 1
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.New):
		m.editingID = ""
		m.fb.name = ""
		m.fb.parentID = ""
		if f, ok := m.selected(); ok {
			m.fb.parentID = f.ID
		}
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Edit):
		f, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.editingID = f.ID
		m.fb.name = f.Name
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Delete):
		if _, ok := m.selected(); !ok {
			return m, nil
		}
		m.fb.confirm = false
		m.confirmForm = m.buildConfirmForm()
		m.mode = modeConfirmDelete
		return m, m.confirmForm.Init()
	}
	return m, nil
}

func (m Model) selected() (model.Folder, bool) {
	if m.selectedIdx < 0 || m.selectedIdx >= len(m.rows) {
		return model.Folder{}, false
	}
	return m.rows[m.selectedIdx].folder, true
}

func (m Model) buildForm() *huh.Form {
	fields := []huh.Field{
		huh.NewInput().
			Title("Name").
			Placeholder("Folder name").
			CharLimit(255).
			Value(&m.fb.name).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("name is required")
				}
				return nil
			}),
	}

	// Only new folders pick a parent; renaming keeps the folder in place.
	if m.editingID == "" {
		opts := []huh.Option[string]{huh.NewOption("(top level)", "")}
		for _, r := range m.rows {
			opts = append(opts, huh.NewOption(strings.Repeat("  ", r.depth)+r.folder.Name, r.folder.ID))
		}
		fields = append(fields, huh.NewSelect[string]().
			Title("Inside").
			Options(opts...).
			Value(&m.fb.parentID))
	}

	return huh.NewForm(huh.NewGroup(fields...)).
		WithWidth(m.formWidth()).
		WithHeight(m.formHeight())
}

func (m Model) buildConfirmForm() *huh.Form {
	name := ""
	if f, ok := m.selected(); ok {
		name = f.Name
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete folder %q?", name)).
				Description("Sub-folders are deleted too. Notes inside are kept.").
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
		return m, m.saveFolder()
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
		if f, ok := m.selected(); ok && m.fb.confirm {
			return m, m.deleteFolder(f.ID)
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

// View renders the folder manager.
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
	b.WriteString(titleStyle.Render("Folders"))
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		emptyStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Italic(true)
		b.WriteString(emptyStyle.Render("No folders yet. Press 'n' to create one."))
	} else {
		for i, r := range m.rows {
			label := strings.Repeat("  ", r.depth) + "▸ " + r.folder.Name

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

func (m Model) loadFolders() tea.Cmd {
	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		folders, err := svc.ListFolders(ctx)
		return foldersLoadedMsg{folders: folders, err: err}
	}
}

func (m Model) saveFolder() tea.Cmd {
	ctx, svc := m.ctx, m.svc
	name := strings.TrimSpace(m.fb.name)
	parentID := m.fb.parentID
	editID := m.editingID
	return func() tea.Msg {
		if editID != "" {
			_, err := svc.RenameFolder(ctx, editID, name)
			return folderSavedMsg{err: err}
		}
		in := service.CreateFolderInput{Name: name}
		if parentID != "" {
			in.ParentFolderID = &parentID
		}
		_, err := svc.CreateFolder(ctx, in)
		return folderSavedMsg{err: err}
	}
}

func (m Model) deleteFolder(id string) tea.Cmd {
	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		return folderDeletedMsg{err: svc.DeleteFolder(ctx, id)}
	}
}

// tree orders folders depth-first under their parents, keeping the input
// order among siblings. Folders whose parent is missing are shown at the
// top level.
func tree(folders []model.Folder) []row {
	known := make(map[string]bool, len(folders))
	for _, f := range folders {
		known[f.ID] = true
	}

	children := make(map[string][]model.Folder)
	for _, f := range folders {
		parent := ""
		if f.ParentFolderID != nil && known[*f.ParentFolderID] {
			parent = *f.ParentFolderID
		}
		children[parent] = append(children[parent], f)
	}

	var rows []row
	var walk func(parent string, depth int)
	walk = func(parent string, depth int) {
		for _, f := range children[parent] {
			rows = append(rows, row{folder: f, depth: depth})
			walk(f.ID, depth+1)
		}
	}
	walk("", 0)
	return rows
}
