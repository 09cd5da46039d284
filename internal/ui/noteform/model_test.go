package noteform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/notekeeper/internal/model"
)

func TestSplitTags(t *testing.T) {
	assert.Nil(t, splitTags(""))
	assert.Nil(t, splitTags(" , ,"))
	assert.Equal(t, []string{"work", "home"}, splitTags(" work, home ,work,"))
}

func TestValidateRequired(t *testing.T) {
	v := validateRequired("Title")
	assert.EqualError(t, v("   "), "Title is required")
	assert.NoError(t, v("x"))
}

func TestSubmitCreate(t *testing.T) {
	m := New(80, 24)
	m.StartCreate()
	m.fb.title = "  Groceries "
	m.fb.noteType = model.NoteTypeTodo
	m.fb.tags = "home, errands"

	msg, ok := m.handleSubmit()().(NoteCreatedMsg)
	require.True(t, ok)
	assert.Equal(t, "Groceries", msg.Input.Title)
	assert.Equal(t, model.NoteTypeTodo, msg.Input.Type)
	assert.Equal(t, []string{"home", "errands"}, msg.Input.Tags)
}

func TestSubmitEditOnlyCarriesChanges(t *testing.T) {
	m := New(80, 24)
	m.StartEdit(model.Note{
		ID:      "n1",
		Title:   "Journal",
		Content: "day one",
		Type:    model.NoteTypeNote,
		Tags:    []string{"personal"},
	})
	assert.Equal(t, "personal", m.fb.tags)

	m.fb.content = "day two"
	m.fb.tags = ""

	msg, ok := m.handleSubmit()().(NoteUpdatedMsg)
	require.True(t, ok)
	assert.Equal(t, "n1", msg.ID)
	assert.False(t, msg.Patch.Title.Present())
	assert.False(t, msg.Patch.Type.Present())

	content, ok := msg.Patch.Content.Get()
	require.True(t, ok)
	assert.Equal(t, "day two", content)

	tags, ok := msg.Patch.Tags.Get()
	require.True(t, ok)
	assert.Empty(t, tags)
	assert.NotNil(t, tags)
}
