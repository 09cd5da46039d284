package detail

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/notekeeper/internal/keys"
	"github.com/nhle/notekeeper/internal/model"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	m := New(keys.DefaultKeyMap(), 80, 30)
	m.SetNote(model.Note{ID: "n1", Title: "Groceries", Content: "weekly run", Type: model.NoteTypeTodo})
	m.SetTasks([]model.Task{
		{ID: "t2", NoteID: "n1", Title: "Bread", Order: 1, Priority: model.PriorityLow},
		{ID: "t1", NoteID: "n1", Title: "Milk", Order: 0, Priority: model.PriorityHigh, Completed: true},
		{ID: "t3", NoteID: "n1", Title: "Eggs", Order: 2, Priority: model.PriorityMedium},
	})
	return m
}

func TestRendersNoteAndSortedTasks(t *testing.T) {
	m := newTestModel(t)

	content := m.renderContent()
	assert.Contains(t, content, "Groceries")
	assert.Contains(t, content, "weekly run")
	assert.Contains(t, content, "Tasks (1/3)")
	assert.Contains(t, content, "[x] Milk")
	assert.Equal(t, []string{"t1", "t2", "t3"}, []string{m.tasks[0].ID, m.tasks[1].ID, m.tasks[2].ID})
}

func TestToggleAndDeleteSelectedTask(t *testing.T) {
	m := newTestModel(t)

	m, _ = m.Update(runes("j"))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")})
	require.NotNil(t, cmd)
	assert.Equal(t, ToggleTaskMsg{NoteID: "n1", ID: "t2", Completed: true}, cmd())

	_, cmd = m.Update(runes("x"))
	require.NotNil(t, cmd)
	assert.Equal(t, DeleteTaskMsg{NoteID: "n1", ID: "t2"}, cmd())
}

func TestMoveEmitsFullOrdering(t *testing.T) {
	m := newTestModel(t)

	m, cmd := m.Update(runes("J"))
	require.NotNil(t, cmd)
	assert.Equal(t, ReorderTasksMsg{NoteID: "n1", Orders: []model.TaskOrder{
		{ID: "t2", Order: 0},
		{ID: "t1", Order: 1},
		{ID: "t3", Order: 2},
	}}, cmd())
	assert.Equal(t, 1, m.cursor)

	_, cmd = m.Update(runes("K"))
	require.NotNil(t, cmd)
	msg := cmd().(ReorderTasksMsg)
	assert.Equal(t, "t1", msg.Orders[0].ID)

	m.cursor = 0
	_, cmd = m.Update(runes("K"))
	assert.Nil(t, cmd)
}

func TestAddTaskInput(t *testing.T) {
	m := newTestModel(t)

	m, _ = m.Update(runes("t"))
	require.True(t, m.Capturing())

	m, _ = m.Update(runes("Butter"))
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, AddTaskMsg{NoteID: "n1", Title: "Butter"}, cmd())
	assert.False(t, m.Capturing())

	m, _ = m.Update(runes("t"))
	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.False(t, m.Capturing())
}

func TestBackAndExport(t *testing.T) {
	m := newTestModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, BackMsg{}, cmd())

	_, cmd = m.Update(runes("m"))
	require.NotNil(t, cmd)
	export := cmd().(ExportMsg)
	assert.Equal(t, "n1", export.Note.ID)
	assert.Len(t, export.Tasks, 3)
}

func TestSwitchingNoteResetsCursor(t *testing.T) {
	m := newTestModel(t)
	m.cursor = 2

	m.SetNote(model.Note{ID: "n1", Title: "Groceries v2"})
	assert.Equal(t, 2, m.cursor)

	m.SetNote(model.Note{ID: "n2", Title: "Other"})
	assert.Equal(t, 0, m.cursor)
	assert.Empty(t, m.tasks)
}

func TestOverdueTaskRendering(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	due := now.Add(-24 * time.Hour)
	line := renderTask(model.Task{Title: "Pay rent", Priority: model.PriorityHigh, DueDate: &due}, false, now)

	assert.Contains(t, line, "[ ] Pay rent")
	assert.Contains(t, line, "due ")
}
