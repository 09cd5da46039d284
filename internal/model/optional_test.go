package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotePatchJSON(t *testing.T) {
	folder := "f1"
	data, err := json.Marshal(NotePatch{
		Title:    Some("Groceries"),
		FolderID: Some[*string](nil),
		Tags:     Some([]string{"home"}),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Groceries","folder_id":null,"tags":["home"]}`, string(data))

	var p NotePatch
	require.NoError(t, json.Unmarshal([]byte(`{"folder_id":null,"is_pinned":true}`), &p))
	assert.False(t, p.Title.Present())
	v, ok := p.FolderID.Get()
	assert.True(t, ok)
	assert.Nil(t, v)
	assert.False(t, p.Empty())

	n := p.Apply(Note{Title: "keep", FolderID: &folder})
	assert.Equal(t, "keep", n.Title)
	assert.Nil(t, n.FolderID)
	assert.True(t, n.IsPinned)
}

func TestEmptyPatch(t *testing.T) {
	var p NotePatch
	require.NoError(t, json.Unmarshal([]byte(`{}`), &p))
	assert.True(t, p.Empty())

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))
}
