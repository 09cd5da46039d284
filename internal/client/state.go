// Package client holds the client-side view of the user's notes and tasks
// and the operations that keep it in step with the server.
package client

import (
	"time"

	"github.com/nhle/notekeeper/internal/model"
)

// State is the client's view of the remote data.
type State struct {
	Notes []model.Note

	// Tasks maps a note ID to that note's tasks.
	Tasks map[string][]model.Task

	Loading  bool
	Error    string
	LastSync *time.Time
}

// Action is a state transition. The set of actions is closed.
type Action interface {
	action()
}

type (
	SetNotes struct{ Notes []model.Note }
	SetTasks struct {
		NoteID string
		Tasks  []model.Task
	}
	AddNote    struct{ Note model.Note }
	UpdateNote struct{ Note model.Note }
	DeleteNote struct{ ID string }
	AddTask    struct{ Task model.Task }
	UpdateTask struct{ Task model.Task }
	DeleteTask struct {
		NoteID string
		ID     string
	}
	SetLoading  struct{ Loading bool }
	SetError    struct{ Message string }
	SetLastSync struct{ At time.Time }
)

func (SetNotes) action()    {}
func (SetTasks) action()    {}
func (AddNote) action()     {}
func (UpdateNote) action()  {}
func (DeleteNote) action()  {}
func (AddTask) action()     {}
func (UpdateTask) action()  {}
func (DeleteTask) action()  {}
func (SetLoading) action()  {}
func (SetError) action()    {}
func (SetLastSync) action() {}

// Reduce returns the state that results from applying a to s. It never
// mutates s or anything s refers to.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case SetNotes:
		s.Notes = append([]model.Note{}, a.Notes...)

	case SetTasks:
		s.Tasks = withTasks(s.Tasks, a.NoteID, append([]model.Task{}, a.Tasks...))

	case AddNote:
		notes := make([]model.Note, 0, len(s.Notes)+1)
		notes = append(notes, a.Note)
		s.Notes = append(notes, s.Notes...)

	case UpdateNote:
		notes := make([]model.Note, len(s.Notes))
		for i, n := range s.Notes {
			if n.ID == a.Note.ID {
				n = a.Note
			}
			notes[i] = n
		}
		s.Notes = notes

	case DeleteNote:
		notes := make([]model.Note, 0, len(s.Notes))
		for _, n := range s.Notes {
			if n.ID != a.ID {
				notes = append(notes, n)
			}
		}
		s.Notes = notes
		s.Tasks = withoutNote(s.Tasks, a.ID)

	case AddTask:
		current := s.Tasks[a.Task.NoteID]
		tasks := make([]model.Task, 0, len(current)+1)
		tasks = append(tasks, current...)
		s.Tasks = withTasks(s.Tasks, a.Task.NoteID, append(tasks, a.Task))

	case UpdateTask:
		current := s.Tasks[a.Task.NoteID]
		tasks := make([]model.Task, len(current))
		for i, t := range current {
			if t.ID == a.Task.ID {
				t = a.Task
			}
			tasks[i] = t
		}
		s.Tasks = withTasks(s.Tasks, a.Task.NoteID, tasks)

	case DeleteTask:
		current := s.Tasks[a.NoteID]
		tasks := make([]model.Task, 0, len(current))
		for _, t := range current {
			if t.ID != a.ID {
				tasks = append(tasks, t)
			}
		}
		s.Tasks = withTasks(s.Tasks, a.NoteID, tasks)

	case SetLoading:
		s.Loading = a.Loading

	case SetError:
		s.Error = a.Message

	case SetLastSync:
		at := a.At
		s.LastSync = &at
	}
	return s
}

// withTasks copies m with noteID mapped to tasks.
func withTasks(m map[string][]model.Task, noteID string, tasks []model.Task) map[string][]model.Task {
	out := make(map[string][]model.Task, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	out[noteID] = tasks
	return out
}

// withoutNote copies m without noteID.
func withoutNote(m map[string][]model.Task, noteID string) map[string][]model.Task {
	out := make(map[string][]model.Task, len(m))
	for k, v := range m {
		if k != noteID {
			out[k] = v
		}
	}
	return out
}
