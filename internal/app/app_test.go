package app

import (
	"context"
	"os"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/notekeeper/internal/client"
	"github.com/nhle/notekeeper/internal/model"
	"github.com/nhle/notekeeper/internal/service"
	notesync "github.com/nhle/notekeeper/internal/sync"
	"github.com/nhle/notekeeper/internal/testutil"
	"github.com/nhle/notekeeper/internal/ui/command"
	configview "github.com/nhle/notekeeper/internal/ui/config"
	"github.com/nhle/notekeeper/internal/ui/detail"
	"github.com/nhle/notekeeper/internal/ui/noteform"
	"github.com/nhle/notekeeper/internal/ui/notelist"
)

func newTestApp(t *testing.T) Model {
	t.Helper()
	st := testutil.NewTestStore(t)
	u := testutil.NewTestUser(t, st, "alice")
	svc := service.New(st, zerolog.Nop())

	s := client.NewStore(svc)
	p := notesync.New(s, time.Hour)
	t.Cleanup(p.Stop)

	m := New(s, p, Options{
		Context:   service.WithUser(context.Background(), u.ID),
		Tags:      svc,
		Folders:   svc,
		ExportDir: t.TempDir(),
		Log:       zerolog.Nop(),
	})
	return step(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
}

// step feeds msg to m and runs the resulting store command, if any, feeding
// its result back in.
func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd == nil {
		return m
	}
	switch out := cmd().(type) {
	case opResultMsg, exportedMsg:
		next, _ = m.Update(out)
		m = next.(Model)
	}
	return m
}

func TestCreateNoteFromForm(t *testing.T) {
	m := newTestApp(t)

	m = step(t, m, notelist.NewNoteMsg{})
	assert.Equal(t, ViewNoteCreate, m.currentView)

	m = step(t, m, noteform.NoteCreatedMsg{Input: service.CreateNoteInput{Title: "Groceries"}})
	assert.Equal(t, ViewList, m.currentView)
	require.Len(t, m.store.State().Notes, 1)
	assert.Contains(t, m.View(), "Groceries")
	assert.Contains(t, m.View(), "Notekeeper (1)")
}

func TestFailedCreateShowsError(t *testing.T) {
	m := newTestApp(t)

	m = step(t, m, noteform.NoteCreatedMsg{Input: service.CreateNoteInput{Title: "  "}})
	assert.NotEmpty(t, m.store.State().Error)
	assert.Contains(t, m.View(), "error:")
}

func TestDetailTaskFlow(t *testing.T) {
	m := newTestApp(t)
	m = step(t, m, noteform.NoteCreatedMsg{Input: service.CreateNoteInput{Title: "Chores"}})
	note := m.store.State().Notes[0]

	m = step(t, m, notelist.SelectedNoteMsg{Note: note})
	assert.Equal(t, ViewDetail, m.currentView)

	m = step(t, m, detail.AddTaskMsg{NoteID: note.ID, Title: "Laundry"})
	m = step(t, m, detail.AddTaskMsg{NoteID: note.ID, Title: "Dishes"})
	tasks := m.store.State().Tasks[note.ID]
	require.Len(t, tasks, 2)
	assert.Contains(t, m.View(), "Laundry")

	m = step(t, m, detail.ToggleTaskMsg{NoteID: note.ID, ID: tasks[0].ID, Completed: true})
	assert.True(t, m.store.State().Tasks[note.ID][0].Completed)

	m = step(t, m, detail.ExportMsg{Note: note, Tasks: m.store.State().Tasks[note.ID]})
	assert.Contains(t, m.notice, "exported ")
	_, err := os.Stat(m.notice[len("exported "):])
	assert.NoError(t, err)

	m = step(t, m, detail.BackMsg{})
	assert.Equal(t, ViewList, m.currentView)
}

func TestDeletingOpenNoteReturnsToList(t *testing.T) {
	m := newTestApp(t)
	m = step(t, m, noteform.NoteCreatedMsg{Input: service.CreateNoteInput{Title: "Scratch"}})
	note := m.store.State().Notes[0]

	m = step(t, m, notelist.SelectedNoteMsg{Note: note})
	m = step(t, m, notelist.DeleteNoteMsg{ID: note.ID})

	assert.Empty(t, m.store.State().Notes)
	assert.Equal(t, ViewList, m.currentView)
}

func TestEmptyEditIsIgnored(t *testing.T) {
	m := newTestApp(t)
	m = step(t, m, noteform.NoteCreatedMsg{Input: service.CreateNoteInput{Title: "Plan"}})
	before := m.store.State().Notes[0]

	m = step(t, m, notelist.EditNoteMsg{Note: before})
	assert.Equal(t, ViewNoteEdit, m.currentView)

	next, cmd := m.Update(noteform.NoteUpdatedMsg{ID: before.ID})
	m = next.(Model)
	assert.Nil(t, cmd)
	assert.Equal(t, ViewList, m.currentView)
}

func TestCommandPalette(t *testing.T) {
	m := newTestApp(t)
	m = step(t, m, noteform.NoteCreatedMsg{Input: service.CreateNoteInput{Title: "Alpha"}})
	m = step(t, m, noteform.NoteCreatedMsg{Input: service.CreateNoteInput{Title: "Beta"}})

	m = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(":")})
	assert.Equal(t, ViewCommand, m.currentView)

	m = step(t, m, command.CommandMsg{Name: command.CmdSearch, Arg: "alp"})
	assert.Equal(t, ViewList, m.currentView)
	assert.Equal(t, "alp", m.noteList.Query())
	assert.NotContains(t, m.View(), "Beta")

	m = step(t, m, command.CommandMsg{Name: "bogus"})
	assert.Equal(t, `unknown command "bogus"`, m.notice)
}

func TestHelpToggle(t *testing.T) {
	m := newTestApp(t)

	m = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	assert.Equal(t, ViewHelp, m.currentView)
	assert.Contains(t, m.View(), "Notekeeper keys")

	m = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	assert.Equal(t, ViewList, m.currentView)
}

func TestManagerViews(t *testing.T) {
	m := newTestApp(t)

	m = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("T")})
	assert.Equal(t, ViewTags, m.currentView)
	assert.Contains(t, m.View(), "Tags")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)
	require.NotNil(t, cmd)
	next, _ = m.Update(cmd())
	m = next.(Model)
	assert.Equal(t, ViewList, m.currentView)

	m = step(t, m, command.CommandMsg{Name: command.CmdFolders})
	assert.Equal(t, ViewFolders, m.currentView)
	assert.Contains(t, m.View(), "Folders")
}

func TestManagersUnavailableWithoutServices(t *testing.T) {
	st := testutil.NewTestStore(t)
	s := client.NewStore(service.New(st, zerolog.Nop()))
	p := notesync.New(s, time.Hour)
	m := New(s, p, Options{})

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("T")})
	m = next.(Model)
	assert.Nil(t, cmd)
	assert.Equal(t, ViewList, m.currentView)
	assert.Equal(t, "tag management is unavailable", m.notice)
}

func TestSettingsView(t *testing.T) {
	st := testutil.NewTestStore(t)
	s := client.NewStore(service.New(st, zerolog.Nop()))
	p := notesync.New(s, time.Hour)

	cfg := model.AppConfig{}
	cfg.Client.ServerURL = "http://localhost:8080"
	m := New(s, p, Options{
		Config:   cfg,
		Settings: &configview.Options{Path: t.TempDir() + "/config.yaml"},
	})
	m = step(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	m = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("S")})
	assert.Equal(t, ViewSettings, m.currentView)
	assert.Contains(t, m.View(), "http://localhost:8080")

	m = step(t, m, configview.ConfigDoneMsg{})
	assert.Equal(t, ViewList, m.currentView)

	m = step(t, m, command.CommandMsg{Name: command.CmdSettings})
	assert.Equal(t, ViewSettings, m.currentView)
}

type tokenRecorder struct{ tokens []string }

func (r *tokenRecorder) SetToken(token string) { r.tokens = append(r.tokens, token) }

func TestSavedTokenReachesBackend(t *testing.T) {
	st := testutil.NewTestStore(t)
	s := client.NewStore(service.New(st, zerolog.Nop()))
	p := notesync.New(s, time.Hour)
	rec := &tokenRecorder{}

	m := New(s, p, Options{
		Settings: &configview.Options{Path: t.TempDir() + "/config.yaml"},
		Auth:     rec,
	})
	m = step(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	cfg := model.AppConfig{}
	cfg.Client.ExportDir = "/srv/export"
	m = step(t, m, configview.SavedMsg{Config: cfg})
	assert.Empty(t, rec.tokens)
	assert.Equal(t, "/srv/export", m.exportDir)

	step(t, m, configview.SavedMsg{Config: cfg, Token: "fresh"})
	assert.Equal(t, []string{"fresh"}, rec.tokens)
}
