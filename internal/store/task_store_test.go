package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/notekeeper/internal/model"
	"github.com/nhle/notekeeper/internal/store"
	"github.com/nhle/notekeeper/internal/testutil"
)

func newTodoNote(t *testing.T, s *store.SQLStore) *model.Note {
	t.Helper()
	u := testutil.NewTestUser(t, s, "alice")
	note, err := s.CreateNote(context.Background(), model.Note{
		UserID: u.ID, Title: "Chores", Type: model.NoteTypeTodo,
	})
	require.NoError(t, err)
	return note
}

func TestCreateTaskDefaults(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	note := newTodoNote(t, s)

	task, err := s.CreateTask(ctx, model.Task{NoteID: note.ID, Title: "dishes", Order: 3})
	require.NoError(t, err)
	assert.Equal(t, model.PriorityMedium, task.Priority)

	got, err := s.GetTask(ctx, note.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "dishes", got.Title)
	assert.Equal(t, 3, got.Order)
	assert.False(t, got.Completed)
	assert.Nil(t, got.DueDate)
}

func TestCreateTaskUnknownNote(t *testing.T) {
	s := testutil.NewTestStore(t)

	_, err := s.CreateTask(context.Background(), model.Task{NoteID: "missing", Title: "x"})
	assert.ErrorIs(t, err, store.ErrConflict)
}

func TestListTasksOrdersBySortOrder(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	note := newTodoNote(t, s)

	for i, title := range []string{"c", "a", "b"} {
		_, err := s.CreateTask(ctx, model.Task{NoteID: note.ID, Title: title, Order: []int{2, 0, 1}[i]})
		require.NoError(t, err)
	}

	tasks, err := s.ListTasks(ctx, note.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, "a", tasks[0].Title)
	assert.Equal(t, "b", tasks[1].Title)
	assert.Equal(t, "c", tasks[2].Title)
}

func TestUpdateTaskScopedToNote(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	note := newTodoNote(t, s)
	other, err := s.CreateNote(ctx, model.Note{UserID: note.UserID, Title: "Other"})
	require.NoError(t, err)

	task, err := s.CreateTask(ctx, model.Task{NoteID: note.ID, Title: "laundry"})
	require.NoError(t, err)

	_, err = s.UpdateTask(ctx, other.ID, task.ID, model.TaskPatch{Completed: model.Some(true)})
	assert.ErrorIs(t, err, store.ErrNotFound)

	due := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)
	updated, err := s.UpdateTask(ctx, note.ID, task.ID, model.TaskPatch{
		Completed: model.Some(true),
		Priority:  model.Some(model.PriorityHigh),
		DueDate:   model.Some(&due),
	})
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	assert.Equal(t, model.PriorityHigh, updated.Priority)
	assert.Equal(t, "laundry", updated.Title)
	assert.True(t, updated.UpdatedAt.After(task.UpdatedAt))

	got, err := s.GetTask(ctx, note.ID, task.ID)
	require.NoError(t, err)
	require.NotNil(t, got.DueDate)
	assert.True(t, got.DueDate.Equal(due))
}

func TestDeleteTaskCascadesToSubtasks(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	note := newTodoNote(t, s)

	parent, err := s.CreateTask(ctx, model.Task{NoteID: note.ID, Title: "trip"})
	require.NoError(t, err)
	_, err = s.CreateTask(ctx, model.Task{NoteID: note.ID, Title: "pack", ParentTaskID: &parent.ID, Order: 1})
	require.NoError(t, err)

	require.NoError(t, s.DeleteTask(ctx, note.ID, parent.ID))

	tasks, err := s.ListTasks(ctx, note.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	assert.ErrorIs(t, s.DeleteTask(ctx, note.ID, parent.ID), store.ErrNotFound)
}

func TestReorderTasks(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	note := newTodoNote(t, s)

	one, err := s.CreateTask(ctx, model.Task{NoteID: note.ID, Title: "one", Order: 1})
	require.NoError(t, err)
	two, err := s.CreateTask(ctx, model.Task{NoteID: note.ID, Title: "two", Order: 2})
	require.NoError(t, err)

	err = s.ReorderTasks(ctx, note.ID, []model.TaskOrder{
		{ID: one.ID, Order: 2},
		{ID: two.ID, Order: 1},
	})
	require.NoError(t, err)

	tasks, err := s.ListTasks(ctx, note.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, two.ID, tasks[0].ID)
	assert.Equal(t, one.ID, tasks[1].ID)
}

func TestReorderTasksIsAtomic(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	note := newTodoNote(t, s)

	one, err := s.CreateTask(ctx, model.Task{NoteID: note.ID, Title: "one", Order: 1})
	require.NoError(t, err)

	err = s.ReorderTasks(ctx, note.ID, []model.TaskOrder{
		{ID: one.ID, Order: 9},
		{ID: "missing", Order: 0},
	})
	assert.ErrorIs(t, err, store.ErrNotFound)

	got, err := s.GetTask(ctx, note.ID, one.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Order)
}
