package notelist

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/notekeeper/internal/keys"
	"github.com/nhle/notekeeper/internal/model"
)

type fakeSearcher struct {
	notes   []model.Note
	queries []string
}

func (f *fakeSearcher) SearchNotes(query string) []model.Note {
	f.queries = append(f.queries, query)
	if query == "" {
		return f.notes
	}
	var out []model.Note
	for _, n := range f.notes {
		if strings.Contains(strings.ToLower(n.Title), strings.ToLower(query)) {
			out = append(out, n)
		}
	}
	return out
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T) (Model, *fakeSearcher) {
	t.Helper()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := &fakeSearcher{notes: []model.Note{
		{ID: "n1", Title: "Groceries", Type: model.NoteTypeTodo, UpdatedAt: base},
		{ID: "n2", Title: "Journal", Type: model.NoteTypeNote, UpdatedAt: base.Add(time.Hour), IsPinned: true},
	}}
	m := New(s, keys.DefaultKeyMap(), 80, 20)
	m.Refresh()
	return m, s
}

func TestRefreshSortsByUpdatedDesc(t *testing.T) {
	m, _ := newTestModel(t)

	note, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "n2", note.ID)
}

func TestNoteActionsEmitMessages(t *testing.T) {
	m, _ := newTestModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, SelectedNoteMsg{Note: m.list.SelectedItem().(NoteItem).Note}, cmd())

	_, cmd = m.Update(runes("p"))
	require.NotNil(t, cmd)
	assert.Equal(t, PinNoteMsg{ID: "n2", Pinned: false}, cmd())

	_, cmd = m.Update(runes("a"))
	require.NotNil(t, cmd)
	assert.Equal(t, ArchiveNoteMsg{ID: "n2"}, cmd())

	_, cmd = m.Update(runes("n"))
	require.NotNil(t, cmd)
	assert.Equal(t, NewNoteMsg{}, cmd())
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	m, _ := newTestModel(t)

	m, cmd := m.Update(runes("d"))
	assert.Nil(t, cmd)
	assert.True(t, m.Capturing())
	assert.Contains(t, m.View(), "Delete \"Journal\"?")

	m, cmd = m.Update(runes("n"))
	assert.Nil(t, cmd)
	assert.False(t, m.Capturing())

	m, _ = m.Update(runes("d"))
	m, cmd = m.Update(runes("y"))
	require.NotNil(t, cmd)
	assert.Equal(t, DeleteNoteMsg{ID: "n2"}, cmd())
	assert.False(t, m.Capturing())
}

func TestSearchFiltersAsYouType(t *testing.T) {
	m, s := newTestModel(t)

	m, _ = m.Update(runes("/"))
	require.True(t, m.Capturing())

	m, _ = m.Update(runes("g"))
	assert.Equal(t, "g", m.Query())
	assert.Equal(t, "g", s.queries[len(s.queries)-1])
	require.Len(t, m.list.Items(), 1)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.Capturing())
	assert.Equal(t, "g", m.Query())

	m, _ = m.Update(runes("/"))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Empty(t, m.Query())
	assert.Len(t, m.list.Items(), 2)
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "", relativeTime(time.Time{}, now))
	assert.Equal(t, "just now", relativeTime(now.Add(-10*time.Second), now))
	assert.Equal(t, "5m ago", relativeTime(now.Add(-5*time.Minute), now))
	assert.Equal(t, "3h ago", relativeTime(now.Add(-3*time.Hour), now))
	assert.Equal(t, "2d ago", relativeTime(now.Add(-48*time.Hour), now))
	assert.Equal(t, "2w ago", relativeTime(now.Add(-14*24*time.Hour), now))
}

func TestRenderLineShowsMarkers(t *testing.T) {
	n := model.Note{Title: "Plan", Type: model.NoteTypeTodo, IsPinned: true, Tags: []string{"a", "b", "c", "d"}}
	line := renderLine(n, false, time.Now())

	assert.Contains(t, line, "TODO")
	assert.Contains(t, line, "Plan")
	assert.Contains(t, line, "#a")
	assert.Contains(t, line, "…")
	assert.NotContains(t, line, "#d")
}
