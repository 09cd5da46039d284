package foldermgr

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/notekeeper/internal/keys"
	"github.com/nhle/notekeeper/internal/model"
	"github.com/nhle/notekeeper/internal/service"
	"github.com/nhle/notekeeper/internal/testutil"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	st := testutil.NewTestStore(t)
	u := testutil.NewTestUser(t, st, "alice")
	ctx := service.WithUser(context.Background(), u.ID)
	m := New(ctx, service.New(st, zerolog.Nop()), keys.DefaultKeyMap(), 80, 24)
	return feed(t, m, m.Init()())
}

// feed applies msg and any folder reload it triggers.
func feed(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	m, cmd := m.Update(msg)
	if cmd == nil {
		return m
	}
	switch out := cmd().(type) {
	case foldersLoadedMsg:
		m, _ = m.Update(out)
	case tea.BatchMsg:
		for _, c := range out {
			if loaded, ok := c().(foldersLoadedMsg); ok {
				m, _ = m.Update(loaded)
			}
		}
	}
	return m
}

func TestCreateNestedRenameDelete(t *testing.T) {
	m := newTestModel(t)
	assert.Empty(t, m.rows)

	m.fb.name = "Work"
	m = feed(t, m, m.saveFolder()())
	require.Len(t, m.rows, 1)
	work := m.rows[0].folder

	m.fb.name = "Meetings"
	m.fb.parentID = work.ID
	m = feed(t, m, m.saveFolder()())
	require.Len(t, m.rows, 2)
	assert.Equal(t, "Meetings", m.rows[1].folder.Name)
	assert.Equal(t, 1, m.rows[1].depth)

	m.editingID = work.ID
	m.fb.name = "Office"
	m = feed(t, m, m.saveFolder()())
	assert.Equal(t, "Office", m.rows[0].folder.Name)
	assert.Contains(t, m.View(), "Office")

	m = feed(t, m, m.deleteFolder(work.ID)())
	assert.Empty(t, m.rows)
	assert.Equal(t, "Folder deleted", m.statusMsg)
}

func TestNewDefaultsParentToSelection(t *testing.T) {
	m := newTestModel(t)
	m.fb.name = "Home"
	m = feed(t, m, m.saveFolder()())

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	assert.NotNil(t, cmd)
	assert.True(t, m.Capturing())
	assert.Equal(t, m.rows[0].folder.ID, m.fb.parentID)
}

func TestTree(t *testing.T) {
	ptr := func(s string) *string { return &s }
	rows := tree([]model.Folder{
		{ID: "c", Name: "child", ParentFolderID: ptr("a")},
		{ID: "a", Name: "root"},
		{ID: "o", Name: "orphan", ParentFolderID: ptr("missing")},
		{ID: "g", Name: "grandchild", ParentFolderID: ptr("c")},
	})

	require.Len(t, rows, 4)
	got := make([]string, len(rows))
	for i, r := range rows {
		got[i] = r.folder.ID
	}
	assert.Equal(t, []string{"a", "c", "g", "o"}, got)
	assert.Equal(t, []int{0, 1, 2, 0}, []int{rows[0].depth, rows[1].depth, rows[2].depth, rows[3].depth})
}
