package config

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/notekeeper/internal/credential"
	"github.com/nhle/notekeeper/internal/keys"
	"github.com/nhle/notekeeper/internal/model"
	"github.com/nhle/notekeeper/internal/theme"
)

// ConfigMode represents the current state of the settings view.
type ConfigMode int

const (
	ModeView           ConfigMode = iota // Show current settings
	ModeForm                             // Edit settings
	ModeValidating                       // Testing connection
	ModeValidateResult                   // Show validation result
)

const maxPollIntervalSec = 24 * 60 * 60

// Verifier checks that the server at serverURL accepts token and returns
// the display name of the authenticated user.
type Verifier func(ctx context.Context, serverURL, token string) (string, error)

// TokenSaver persists bearer tokens. *credential.Keyring satisfies it.
type TokenSaver interface {
	Set(key, value string) error
}

// Options wires the settings view to the outside world.
type Options struct {
	// Path is the YAML file settings are written to.
	Path string

	// Token is the bearer token currently in use. It is never displayed.
	Token string

	// Verify, when set, is run before saving a changed server or token.
	Verify Verifier

	// Tokens receives a newly entered token. May be nil.
	Tokens TokenSaver
}

// ConfigDoneMsg signals the settings view should close.
type ConfigDoneMsg struct{}

// SavedMsg is emitted after settings were written to disk.
type SavedMsg struct {
	Config model.AppConfig

	// Token is the new bearer token, or empty when unchanged.
	Token string
}

// ValidateResultMsg carries the result of a connection check followed by
// a save.
type ValidateResultMsg struct {
	Name  string
	Err   error
	saved *SavedMsg
}

type formBindings struct {
	serverURL    string
	token        string
	pollInterval string
	exportDir    string
	theme        string
}

// Model is the Bubble Tea model for the settings view.
type Model struct {
	ctx       context.Context
	mode      ConfigMode
	cfg       model.AppConfig
	opts      Options
	form      *huh.Form
	fb        *formBindings
	spinner   spinner.Model
	validName string
	validErr  error
	statusMsg string

	keys          *keys.KeyMap
	width, height int
}

// New creates a settings view editing a copy of cfg.
func New(ctx context.Context, cfg model.AppConfig, opts Options, k *keys.KeyMap, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctx:     ctx,
		mode:    ModeView,
		cfg:     cfg,
		opts:    opts,
		fb:      &formBindings{},
		spinner: sp,
		keys:    k,
		width:   width,
		height:  height,
	}
}

// Config returns the settings as last saved.
func (m Model) Config() model.AppConfig { return m.cfg }

// Capturing reports whether the view consumes every key.
func (m Model) Capturing() bool { return m.mode != ModeView }

// Update handles messages and dispatches based on current mode.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ValidateResultMsg:
		m.validName = msg.Name
		m.validErr = msg.Err
		m.mode = ModeValidateResult
		if msg.saved == nil {
			return m, nil
		}
		m.cfg = msg.saved.Config
		if msg.saved.Token != "" {
			m.opts.Token = msg.saved.Token
		}
		m.statusMsg = "Settings saved"
		saved := *msg.saved
		return m, func() tea.Msg { return saved }

	case spinner.TickMsg:
		if m.mode != ModeValidating {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	if m.mode == ModeForm {
		return m.updateForm(msg)
	}
	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.mode {
	case ModeView:
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg { return ConfigDoneMsg{} }
		case key.Matches(msg, m.keys.Edit), key.Matches(msg, m.keys.Select):
			return m.startForm()
		}
		return m, nil

	case ModeForm:
		return m.updateForm(msg)

	case ModeValidating:
		if msg.Type == tea.KeyEsc {
			m.mode = ModeForm
		}
		return m, nil

	case ModeValidateResult:
		switch msg.String() {
		case "r":
			if m.validErr != nil {
				return m.submit()
			}
		case "enter", "esc":
			if m.validErr != nil {
				m.mode = ModeForm
				return m, nil
			}
			m.mode = ModeView
		}
		return m, nil
	}
	return m, nil
}

func (m Model) startForm() (Model, tea.Cmd) {
	m.fb.serverURL = m.cfg.Client.ServerURL
	m.fb.token = ""
	m.fb.pollInterval = strconv.Itoa(m.cfg.Client.PollIntervalSec)
	m.fb.exportDir = m.cfg.Client.ExportDir
	m.fb.theme = m.cfg.Display.Theme
	if m.fb.theme == "" {
		m.fb.theme = "default"
	}
	m.statusMsg = ""
	m.form = m.buildForm()
	m.mode = ModeForm
	return m, m.form.Init()
}

func (m Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Server URL").
				Placeholder("http://localhost:8080").
				Value(&m.fb.serverURL).
				Validate(validateURL),
			huh.NewInput().
				Title("Token").
				Description("Leave empty to keep the current token.").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.token),
			huh.NewInput().
				Title("Poll interval (seconds)").
				Description("0 uses the default interval.").
				Value(&m.fb.pollInterval).
				Validate(validateInterval),
			huh.NewInput().
				Title("Export directory").
				Value(&m.fb.exportDir).
				Validate(validateRequired("export directory")),
			huh.NewSelect[string]().
				Title("Theme").
				Options(
					huh.NewOption("Default (dark)", "default"),
					huh.NewOption("Light", "light"),
				).
				Value(&m.fb.theme),
		),
	).WithWidth(m.formWidth()).WithShowHelp(true)
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}
	if k, ok := msg.(tea.KeyMsg); ok && k.Type == tea.KeyEsc {
		m.mode = ModeView
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	switch m.form.State {
	case huh.StateCompleted:
		return m.submit()
	case huh.StateAborted:
		m.mode = ModeView
		return m, nil
	}
	return m, cmd
}

// submit applies the form to a copy of the settings, then verifies and
// saves them.
func (m Model) submit() (Model, tea.Cmd) {
	cfg := m.buildConfig()
	token := strings.TrimSpace(m.fb.token)

	m.mode = ModeValidating
	m.validErr = nil
	m.validName = ""
	return m, tea.Batch(m.spinner.Tick, m.validateAndSave(cfg, token))
}

func (m Model) buildConfig() model.AppConfig {
	cfg := m.cfg
	cfg.Client.ServerURL = strings.TrimRight(strings.TrimSpace(m.fb.serverURL), "/")
	cfg.Client.ExportDir = strings.TrimSpace(m.fb.exportDir)
	if n, err := strconv.Atoi(strings.TrimSpace(m.fb.pollInterval)); err == nil {
		cfg.Client.PollIntervalSec = n
	}
	cfg.Display.Theme = m.fb.theme
	return cfg
}

// validateAndSave checks the connection when the server or token changed,
// then persists the settings and the token.
func (m Model) validateAndSave(cfg model.AppConfig, token string) tea.Cmd {
	ctx, opts := m.ctx, m.opts
	changed := token != "" || cfg.Client.ServerURL != m.cfg.Client.ServerURL
	return func() tea.Msg {
		var name string
		if changed && opts.Verify != nil {
			effective := token
			if effective == "" {
				effective = opts.Token
			}
			var err error
			name, err = opts.Verify(ctx, cfg.Client.ServerURL, effective)
			if err != nil {
				return ValidateResultMsg{Err: err}
			}
		}

		if token != "" && opts.Tokens != nil {
			if err := opts.Tokens.Set(credential.TokenKey(cfg.Client.ServerURL), token); err != nil {
				return ValidateResultMsg{Name: name, Err: fmt.Errorf("connection OK but saving token failed: %w", err)}
			}
		}
		if err := model.SaveConfig(opts.Path, &cfg); err != nil {
			return ValidateResultMsg{Name: name, Err: err}
		}
		return ValidateResultMsg{Name: name, saved: &SavedMsg{Config: cfg, Token: token}}
	}
}

// --- View ---

// View renders the settings UI based on the current mode.
func (m Model) View() string {
	switch m.mode {
	case ModeForm:
		return m.viewForm()
	case ModeValidating:
		return m.viewValidating()
	case ModeValidateResult:
		return m.viewValidateResult()
	default:
		return m.viewSettings()
	}
}

func (m Model) viewSettings() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	b.WriteString(titleStyle.Render("Settings"))
	b.WriteString("\n\n")

	labelStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Width(16)
	token := "(none)"
	if m.opts.Token != "" {
		token = "••••••"
	}
	poll := "default interval"
	if m.cfg.Client.PollIntervalSec > 0 {
		poll = fmt.Sprintf("every %ds", m.cfg.Client.PollIntervalSec)
	}
	rows := [][2]string{
		{"Server", m.cfg.Client.ServerURL},
		{"Token", token},
		{"Sync", poll},
		{"Export dir", m.cfg.Client.ExportDir},
		{"Theme", m.cfg.Display.Theme},
		{"Config file", m.opts.Path},
	}
	for _, r := range rows {
		b.WriteString(labelStyle.Render(r[0]))
		b.WriteString(r[1])
		b.WriteString("\n")
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		statusStyle := lipgloss.NewStyle().
			Foreground(theme.ColorYellow).
			Italic(true)
		b.WriteString(statusStyle.Render(m.statusMsg))
	}

	b.WriteString("\n\n")
	hintStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	b.WriteString(hintStyle.Render("e edit | esc back"))

	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height).
		Render(b.String())
}

func (m Model) viewForm() string {
	if m.form == nil {
		return ""
	}
	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height).
		Render(m.form.View())
}

func (m Model) viewValidating() string {
	content := fmt.Sprintf(
		"%s Testing connection...\n\nPress esc to cancel.",
		m.spinner.View(),
	)
	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m Model) viewValidateResult() string {
	var content string
	if m.validErr != nil {
		errStyle := lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.ColorRed)
		content = errStyle.Render("Settings not saved") + "\n\n" +
			m.validErr.Error() + "\n\n" +
			lipgloss.NewStyle().Foreground(theme.ColorGray).
				Render("r retry | enter/esc back")
	} else {
		okStyle := lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.ColorGreen)
		content = okStyle.Render("Settings saved")
		if m.validName != "" {
			content += "\n\n" + fmt.Sprintf("Authenticated as: %s", m.validName)
		}
		content += "\n\n" + lipgloss.NewStyle().Foreground(theme.ColorGray).
			Render("Theme and server changes apply on restart. enter/esc back")
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height).
		Render(content)
}

// --- Helpers ---

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

// --- Validators ---

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateURL(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("URL is required")
	}
	parsed, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" || parsed.Host == "" {
		return fmt.Errorf("URL must include scheme and host (e.g., https://example.com)")
	}
	return nil
}

func validateInterval(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("interval must be a number")
	}
	if n < 0 || n > maxPollIntervalSec {
		return fmt.Errorf("interval must be between 0 and %d", maxPollIntervalSec)
	}
	return nil
}
