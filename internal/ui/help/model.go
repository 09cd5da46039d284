package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/notekeeper/internal/keys"
	"github.com/nhle/notekeeper/internal/theme"
)

// sectionTitles name the groups returned by KeyMap.FullHelp, in order.
var sectionTitles = []string{"Navigation", "General", "Notes", "Tasks"}

// paletteCommands lists what the : prompt accepts.
var paletteCommands = [][2]string{
	{"sync", "fetch notes now"},
	{"new", "create a note"},
	{"search <text>", "filter the list"},
	{"export", "write markdown"},
	{"tags", "manage tags"},
	{"folders", "manage folders"},
	{"settings", "edit settings"},
}

// CloseMsg asks the parent to leave the help view.
type CloseMsg struct{}

// Model is the help overlay view.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	width  int
	height int
}

// New creates a new help view model.
func New(keys *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.Width = width
	return Model{
		keys:   keys,
		help:   h,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update closes the overlay on esc or ?.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(msg, m.keys.Back, m.keys.Help) {
			return m, func() tea.Msg { return CloseMsg{} }
		}
	}
	return m, nil
}

// View renders every binding grouped by section, then the palette commands.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	var sections []string
	for i, group := range m.keys.FullHelp() {
		name := "More"
		if i < len(sectionTitles) {
			name = sectionTitles[i]
		}
		rows := make([][2]string, 0, len(group))
		for _, b := range group {
			if !b.Enabled() {
				continue
			}
			rows = append(rows, [2]string{b.Help().Key, b.Help().Desc})
		}
		sections = append(sections, renderSection(name, rows))
	}
	sections = append(sections, renderSection("Command palette", paletteCommands))

	columns := lipgloss.JoinHorizontal(lipgloss.Top, m.layoutColumns(sections)...)

	m.help.Width = m.width - 4
	footer := m.help.ShortHelpView([]key.Binding{m.keys.Back, m.keys.Help})

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Notekeeper keys"),
		columns,
		"",
		footer,
	)

	return theme.DetailPanelStyle.
		Width(max(m.width-4, 1)).
		Height(max(m.height-4, 1)).
		Render(content)
}

// layoutColumns stacks sections into two columns when the view is wide
// enough, otherwise into one.
func (m Model) layoutColumns(sections []string) []string {
	if m.width < 80 {
		return []string{strings.Join(sections, "\n\n")}
	}
	half := (len(sections) + 1) / 2
	left := strings.Join(sections[:half], "\n\n")
	right := strings.Join(sections[half:], "\n\n")
	return []string{
		lipgloss.NewStyle().Width((m.width - 8) / 2).Render(left),
		right,
	}
}

func renderSection(name string, rows [][2]string) string {
	headStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBlue)
	keyStyle := lipgloss.NewStyle().Foreground(theme.ColorYellow).Width(14)
	descStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)

	var b strings.Builder
	b.WriteString(headStyle.Render(name))
	for _, r := range rows {
		b.WriteString("\n")
		b.WriteString(keyStyle.Render(r[0]))
		b.WriteString(descStyle.Render(r[1]))
	}
	return b.String()
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
