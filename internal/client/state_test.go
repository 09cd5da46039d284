package client_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/notekeeper/internal/client"
	"github.com/nhle/notekeeper/internal/model"
)

func TestReduceNotes(t *testing.T) {
	s := client.Reduce(client.State{}, client.SetNotes{Notes: []model.Note{{ID: "a"}, {ID: "b"}}})
	s = client.Reduce(s, client.AddNote{Note: model.Note{ID: "c"}})
	require.Len(t, s.Notes, 3)
	assert.Equal(t, "c", s.Notes[0].ID)

	s = client.Reduce(s, client.UpdateNote{Note: model.Note{ID: "a", Title: "renamed"}})
	assert.Equal(t, "renamed", s.Notes[1].Title)

	s = client.Reduce(s, client.DeleteNote{ID: "b"})
	require.Len(t, s.Notes, 2)
	assert.Equal(t, "c", s.Notes[0].ID)
	assert.Equal(t, "a", s.Notes[1].ID)
}

func TestReduceTasks(t *testing.T) {
	s := client.Reduce(client.State{}, client.SetTasks{NoteID: "n", Tasks: []model.Task{{ID: "1", NoteID: "n"}}})
	s = client.Reduce(s, client.AddTask{Task: model.Task{ID: "2", NoteID: "n"}})
	require.Len(t, s.Tasks["n"], 2)
	assert.Equal(t, "2", s.Tasks["n"][1].ID)

	s = client.Reduce(s, client.UpdateTask{Task: model.Task{ID: "1", NoteID: "n", Completed: true}})
	assert.True(t, s.Tasks["n"][0].Completed)

	s = client.Reduce(s, client.DeleteTask{NoteID: "n", ID: "1"})
	require.Len(t, s.Tasks["n"], 1)
	assert.Equal(t, "2", s.Tasks["n"][0].ID)
}

func TestReduceDeleteNoteDropsItsTasks(t *testing.T) {
	s := client.Reduce(client.State{}, client.SetNotes{Notes: []model.Note{{ID: "n"}, {ID: "m"}}})
	s = client.Reduce(s, client.SetTasks{NoteID: "n", Tasks: []model.Task{{ID: "1", NoteID: "n"}}})
	s = client.Reduce(s, client.SetTasks{NoteID: "m", Tasks: []model.Task{{ID: "2", NoteID: "m"}}})

	s = client.Reduce(s, client.DeleteNote{ID: "n"})
	_, ok := s.Tasks["n"]
	assert.False(t, ok)
	assert.Len(t, s.Tasks["m"], 1)
}

func TestReduceFlags(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	s := client.Reduce(client.State{}, client.SetLoading{Loading: true})
	s = client.Reduce(s, client.SetError{Message: "boom"})
	s = client.Reduce(s, client.SetLastSync{At: at})

	assert.True(t, s.Loading)
	assert.Equal(t, "boom", s.Error)
	require.NotNil(t, s.LastSync)
	assert.True(t, s.LastSync.Equal(at))
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	before := client.Reduce(client.State{}, client.SetNotes{Notes: []model.Note{{ID: "a", Title: "old"}}})
	before = client.Reduce(before, client.SetTasks{NoteID: "a", Tasks: []model.Task{{ID: "1", NoteID: "a"}}})

	_ = client.Reduce(before, client.UpdateNote{Note: model.Note{ID: "a", Title: "new"}})
	_ = client.Reduce(before, client.UpdateTask{Task: model.Task{ID: "1", NoteID: "a", Title: "changed"}})
	_ = client.Reduce(before, client.AddTask{Task: model.Task{ID: "2", NoteID: "a"}})
	_ = client.Reduce(before, client.DeleteNote{ID: "a"})

	assert.Equal(t, "old", before.Notes[0].Title)
	require.Len(t, before.Tasks["a"], 1)
	assert.Equal(t, "", before.Tasks["a"][0].Title)
}
