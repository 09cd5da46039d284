package client

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nhle/notekeeper/internal/model"
	"github.com/nhle/notekeeper/internal/rpc"
	"github.com/nhle/notekeeper/internal/service"
)

// Backend is the remote query service. *rpc.Client satisfies it.
type Backend interface {
	ListNotes(ctx context.Context) ([]model.Note, error)
	CreateNote(ctx context.Context, in service.CreateNoteInput) (*model.Note, error)
	UpdateNote(ctx context.Context, in service.UpdateNoteInput) (*model.Note, error)
	DeleteNote(ctx context.Context, id string) error
	ArchiveNote(ctx context.Context, id string) (*model.Note, error)
	PinNote(ctx context.Context, id string, pinned bool) (*model.Note, error)

	ListTasks(ctx context.Context, noteID string) ([]model.Task, error)
	CreateTask(ctx context.Context, in service.CreateTaskInput) (*model.Task, error)
	UpdateTask(ctx context.Context, in service.UpdateTaskInput) (*model.Task, error)
	DeleteTask(ctx context.Context, noteID, id string) error
	ReorderTasks(ctx context.Context, in service.ReorderTasksInput) error
}

// Snapshotter persists the note collection locally. *snapshot.Snapshot
// satisfies it.
type Snapshotter interface {
	Save(ctx context.Context, notes []model.Note) error
	Load(ctx context.Context) ([]model.Note, error)
}

var _ Backend = (*rpc.Client)(nil)

// Store owns the client State and runs every mutation as: set loading,
// clear error, remote call, authoritative refetch, record any error, clear
// loading. It never predicts server-computed fields.
type Store struct {
	backend Backend
	snap    Snapshotter
	log     zerolog.Logger
	now     func() time.Time

	mu    sync.RWMutex
	state State
	subs  []func(State)
	// fetched is set once server notes have been dispatched. A snapshot
	// loaded after that point is stale.
	fetched bool
}

// Option configures a Store.
type Option func(*Store)

// WithSnapshot sets the local snapshot used by Bootstrap and FetchNotes.
func WithSnapshot(snap Snapshotter) Option {
	return func(s *Store) { s.snap = snap }
}

// WithLogger sets the store's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// WithClock overrides the time source used for the last-sync stamp.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a Store over backend with an empty state.
func NewStore(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		log:     zerolog.Nop(),
		now:     func() time.Time { return time.Now().UTC() },
		state: State{
			Notes: []model.Note{},
			Tasks: map[string][]model.Task{},
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current state. Callers must not modify it.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers fn to be called with the new state after every
// dispatch.
func (s *Store) Subscribe(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// Dispatch applies a to the state and notifies subscribers.
func (s *Store) Dispatch(a Action) {
	s.dispatchUnless(a, nil)
}

// dispatchUnless is Dispatch, except that a is dropped when skip, evaluated
// under the lock, reports true. It reports whether a was applied.
func (s *Store) dispatchUnless(a Action, skip func() bool) bool {
	s.mu.Lock()
	if skip != nil && skip() {
		s.mu.Unlock()
		return false
	}
	s.state = Reduce(s.state, a)
	state := s.state
	subs := append([]func(State){}, s.subs...)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
	return true
}

// Bootstrap loads the local snapshot as the initial note collection. It
// leaves the state alone if notes have already arrived from the server.
func (s *Store) Bootstrap(ctx context.Context) error {
	if s.snap == nil {
		return nil
	}
	notes, err := s.snap.Load(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to load notes from snapshot")
		return err
	}
	if len(notes) == 0 {
		return nil
	}
	if !s.dispatchUnless(SetNotes{Notes: notes}, func() bool { return s.fetched }) {
		s.log.Debug().Int("count", len(notes)).Msg("snapshot ignored, server notes already loaded")
	}
	return nil
}

// FetchNotes replaces the note collection with the server's.
func (s *Store) FetchNotes(ctx context.Context) error {
	return s.run(ctx, "Failed to fetch notes", s.fetchNotes)
}

// FetchTasks replaces the tasks of noteID with the server's.
func (s *Store) FetchTasks(ctx context.Context, noteID string) error {
	return s.run(ctx, "Failed to fetch tasks", func(ctx context.Context) error {
		return s.fetchTasks(ctx, noteID)
	})
}

// Sync refetches the notes and records the sync time.
func (s *Store) Sync(ctx context.Context) error {
	return s.run(ctx, "Failed to sync with server", func(ctx context.Context) error {
		if err := s.fetchNotes(ctx); err != nil {
			return err
		}
		s.Dispatch(SetLastSync{At: s.now()})
		return nil
	})
}

// CreateNote creates a note and refetches the collection.
func (s *Store) CreateNote(ctx context.Context, in service.CreateNoteInput) error {
	return s.run(ctx, "Failed to create note", func(ctx context.Context) error {
		if _, err := s.backend.CreateNote(ctx, in); err != nil {
			return err
		}
		return s.fetchNotes(ctx)
	})
}

// UpdateNote applies patch to note id and refetches the collection.
func (s *Store) UpdateNote(ctx context.Context, id string, patch model.NotePatch) error {
	return s.run(ctx, "Failed to update note", func(ctx context.Context) error {
		if _, err := s.backend.UpdateNote(ctx, service.UpdateNoteInput{ID: id, Patch: patch}); err != nil {
			return err
		}
		return s.fetchNotes(ctx)
	})
}

// DeleteNote deletes a note and drops it locally without a refetch.
func (s *Store) DeleteNote(ctx context.Context, id string) error {
	return s.run(ctx, "Failed to delete note", func(ctx context.Context) error {
		if err := s.backend.DeleteNote(ctx, id); err != nil {
			return err
		}
		s.Dispatch(DeleteNote{ID: id})
		return nil
	})
}

// ArchiveNote archives a note and refetches the collection.
func (s *Store) ArchiveNote(ctx context.Context, id string) error {
	return s.run(ctx, "Failed to archive note", func(ctx context.Context) error {
		if _, err := s.backend.ArchiveNote(ctx, id); err != nil {
			return err
		}
		return s.fetchNotes(ctx)
	})
}

// PinNote sets the pinned flag and refetches the collection.
func (s *Store) PinNote(ctx context.Context, id string, pinned bool) error {
	return s.run(ctx, "Failed to pin note", func(ctx context.Context) error {
		if _, err := s.backend.PinNote(ctx, id, pinned); err != nil {
			return err
		}
		return s.fetchNotes(ctx)
	})
}

// CreateTask appends a task to noteID's list.
func (s *Store) CreateTask(ctx context.Context, noteID, title string, priority model.Priority) error {
	order := len(s.State().Tasks[noteID])
	return s.run(ctx, "Failed to create task", func(ctx context.Context) error {
		_, err := s.backend.CreateTask(ctx, service.CreateTaskInput{
			NoteID:   noteID,
			Title:    title,
			Priority: priority,
			Order:    order,
		})
		if err != nil {
			return err
		}
		return s.fetchTasks(ctx, noteID)
	})
}

// UpdateTask applies patch to a task and refetches noteID's tasks.
func (s *Store) UpdateTask(ctx context.Context, noteID, id string, patch model.TaskPatch) error {
	return s.run(ctx, "Failed to update task", func(ctx context.Context) error {
		_, err := s.backend.UpdateTask(ctx, service.UpdateTaskInput{NoteID: noteID, ID: id, Patch: patch})
		if err != nil {
			return err
		}
		return s.fetchTasks(ctx, noteID)
	})
}

// DeleteTask deletes a task and refetches noteID's tasks.
func (s *Store) DeleteTask(ctx context.Context, noteID, id string) error {
	return s.run(ctx, "Failed to delete task", func(ctx context.Context) error {
		if err := s.backend.DeleteTask(ctx, noteID, id); err != nil {
			return err
		}
		return s.fetchTasks(ctx, noteID)
	})
}

// ReorderTasks applies new positions and refetches noteID's tasks.
func (s *Store) ReorderTasks(ctx context.Context, noteID string, orders []model.TaskOrder) error {
	return s.run(ctx, "Failed to reorder tasks", func(ctx context.Context) error {
		err := s.backend.ReorderTasks(ctx, service.ReorderTasksInput{NoteID: noteID, Orders: orders})
		if err != nil {
			return err
		}
		return s.fetchTasks(ctx, noteID)
	})
}

// SearchNotes filters the loaded notes by a case-insensitive substring of
// the title or content. A blank query returns every loaded note.
func (s *Store) SearchNotes(query string) []model.Note {
	notes := s.State().Notes
	if strings.TrimSpace(query) == "" {
		return notes
	}

	q := strings.ToLower(query)
	var out []model.Note
	for _, n := range notes {
		if strings.Contains(strings.ToLower(n.Title), q) ||
			strings.Contains(strings.ToLower(n.Content), q) {
			out = append(out, n)
		}
	}
	return out
}

// run wraps fn in the loading and error bookkeeping shared by every remote
// operation.
func (s *Store) run(ctx context.Context, fallback string, fn func(context.Context) error) error {
	s.Dispatch(SetLoading{Loading: true})
	s.Dispatch(SetError{})
	defer s.Dispatch(SetLoading{Loading: false})

	if err := fn(ctx); err != nil {
		s.log.Warn().Err(err).Msg(fallback)
		s.Dispatch(SetError{Message: errorMessage(err, fallback)})
		return err
	}
	return nil
}

func (s *Store) fetchNotes(ctx context.Context) error {
	notes, err := s.backend.ListNotes(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.fetched = true
	s.mu.Unlock()
	s.Dispatch(SetNotes{Notes: notes})

	if s.snap != nil {
		if err := s.snap.Save(ctx, notes); err != nil {
			s.log.Warn().Err(err).Msg("failed to save notes to snapshot")
		}
	}
	return nil
}

func (s *Store) fetchTasks(ctx context.Context, noteID string) error {
	tasks, err := s.backend.ListTasks(ctx, noteID)
	if err != nil {
		return err
	}
	s.Dispatch(SetTasks{NoteID: noteID, Tasks: tasks})
	return nil
}

// errorMessage returns the text shown to the user for err.
func errorMessage(err error, fallback string) string {
	var rpcErr *rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.Message != "" {
		return rpcErr.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
