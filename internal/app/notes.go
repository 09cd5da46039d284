package app

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/notekeeper/internal/client"
	"github.com/nhle/notekeeper/internal/export"
	"github.com/nhle/notekeeper/internal/model"
	"github.com/nhle/notekeeper/internal/service"
)

// opTimeout bounds a single store operation started from the UI.
const opTimeout = 30 * time.Second

// StateChangedMsg tells the root model that the client store changed
// outside of a command it started, for example from the poller.
type StateChangedMsg struct{}

// opResultMsg is sent after a store operation finishes.
type opResultMsg struct {
	op  string
	err error
}

// exportedMsg is sent after notes were written to disk.
type exportedMsg struct {
	paths []string
	err   error
}

// run executes fn against the store off the UI goroutine.
func (m Model) run(op string, fn func(ctx context.Context, s *client.Store) error) tea.Cmd {
	s, parent := m.store, m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, opTimeout)
		defer cancel()
		return opResultMsg{op: op, err: fn(ctx, s)}
	}
}

func (m Model) bootstrap() tea.Cmd {
	return m.run("bootstrap", func(ctx context.Context, s *client.Store) error {
		return s.Bootstrap(ctx)
	})
}

func (m Model) createNote(in service.CreateNoteInput) tea.Cmd {
	return m.run("create note", func(ctx context.Context, s *client.Store) error {
		return s.CreateNote(ctx, in)
	})
}

func (m Model) updateNote(id string, patch model.NotePatch) tea.Cmd {
	return m.run("update note", func(ctx context.Context, s *client.Store) error {
		return s.UpdateNote(ctx, id, patch)
	})
}

func (m Model) deleteNote(id string) tea.Cmd {
	return m.run("delete note", func(ctx context.Context, s *client.Store) error {
		return s.DeleteNote(ctx, id)
	})
}

func (m Model) archiveNote(id string) tea.Cmd {
	return m.run("archive note", func(ctx context.Context, s *client.Store) error {
		return s.ArchiveNote(ctx, id)
	})
}

func (m Model) pinNote(id string, pinned bool) tea.Cmd {
	return m.run("pin note", func(ctx context.Context, s *client.Store) error {
		return s.PinNote(ctx, id, pinned)
	})
}

func (m Model) fetchTasks(noteID string) tea.Cmd {
	return m.run("fetch tasks", func(ctx context.Context, s *client.Store) error {
		return s.FetchTasks(ctx, noteID)
	})
}

func (m Model) createTask(noteID, title string) tea.Cmd {
	return m.run("create task", func(ctx context.Context, s *client.Store) error {
		return s.CreateTask(ctx, noteID, title, model.PriorityMedium)
	})
}

func (m Model) toggleTask(noteID, id string, completed bool) tea.Cmd {
	return m.run("update task", func(ctx context.Context, s *client.Store) error {
		return s.UpdateTask(ctx, noteID, id, model.TaskPatch{Completed: model.Some(completed)})
	})
}

func (m Model) deleteTask(noteID, id string) tea.Cmd {
	return m.run("delete task", func(ctx context.Context, s *client.Store) error {
		return s.DeleteTask(ctx, noteID, id)
	})
}

func (m Model) reorderTasks(noteID string, orders []model.TaskOrder) tea.Cmd {
	return m.run("reorder tasks", func(ctx context.Context, s *client.Store) error {
		return s.ReorderTasks(ctx, noteID, orders)
	})
}

// exportNote writes one note and the given tasks as Markdown.
func (m Model) exportNote(n model.Note, tasks []model.Task) tea.Cmd {
	dir := m.exportDir
	return func() tea.Msg {
		path, err := export.WriteFile(dir, n, tasks)
		if err != nil {
			return exportedMsg{err: err}
		}
		return exportedMsg{paths: []string{path}}
	}
}

// exportAll refreshes the tasks of every loaded note and writes each note
// as Markdown.
func (m Model) exportAll() tea.Cmd {
	s, parent := m.store, m.ctx
	dir := m.exportDir
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, opTimeout)
		defer cancel()

		var paths []string
		for _, n := range s.State().Notes {
			if err := s.FetchTasks(ctx, n.ID); err != nil {
				return exportedMsg{paths: paths, err: err}
			}
			path, err := export.WriteFile(dir, n, s.State().Tasks[n.ID])
			if err != nil {
				return exportedMsg{paths: paths, err: err}
			}
			paths = append(paths, path)
		}
		return exportedMsg{paths: paths}
	}
}

// exportNotice describes a finished export for the status bar.
func exportNotice(msg exportedMsg) string {
	switch len(msg.paths) {
	case 0:
		return "nothing exported"
	case 1:
		return "exported " + msg.paths[0]
	default:
		return fmt.Sprintf("exported %d notes", len(msg.paths))
	}
}
