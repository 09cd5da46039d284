package store

import (
	"context"

	"github.com/nhle/notekeeper/internal/model"
)

// NoteFilter selects the notes returned by ListNotes.
type NoteFilter struct {
	UserID          string  // required; every query is owner-scoped
	IncludeArchived bool    // archived notes are hidden unless set
	Query           *string // case-insensitive substring of title or content
}

// Store defines the persistence interface for users, notes and the
// entities hanging off them. Lookups by ID are not owner-scoped; callers
// compare UserID to decide between not-found and forbidden.
type Store interface {
	// === Users ===

	UpsertUserByOpenID(ctx context.Context, user model.User) (*model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)

	// === Notes ===

	CreateNote(ctx context.Context, note model.Note) (*model.Note, error)
	GetNote(ctx context.Context, id string) (*model.Note, error)
	ListNotes(ctx context.Context, filter NoteFilter) ([]model.Note, error)
	CountNotes(ctx context.Context, userID string) (int, error)
	UpdateNote(ctx context.Context, id string, patch model.NotePatch) (*model.Note, error)
	DeleteNote(ctx context.Context, id string) error

	// === Tasks ===

	CreateTask(ctx context.Context, task model.Task) (*model.Task, error)
	GetTask(ctx context.Context, noteID, id string) (*model.Task, error)
	ListTasks(ctx context.Context, noteID string) ([]model.Task, error)
	UpdateTask(ctx context.Context, noteID, id string, patch model.TaskPatch) (*model.Task, error)
	DeleteTask(ctx context.Context, noteID, id string) error
	ReorderTasks(ctx context.Context, noteID string, orders []model.TaskOrder) error

	// === Folders ===

	CreateFolder(ctx context.Context, folder model.Folder) (*model.Folder, error)
	GetFolder(ctx context.Context, id string) (*model.Folder, error)
	ListFolders(ctx context.Context, userID string) ([]model.Folder, error)
	RenameFolder(ctx context.Context, id, name string) (*model.Folder, error)
	DeleteFolder(ctx context.Context, id string) error

	// === Tags ===

	CreateTag(ctx context.Context, tag model.Tag) (*model.Tag, error)
	GetTag(ctx context.Context, id string) (*model.Tag, error)
	ListTags(ctx context.Context, userID string) ([]model.Tag, error)
	UpdateTag(ctx context.Context, tag model.Tag) (*model.Tag, error)
	DeleteTag(ctx context.Context, id string) error

	// === Attachments ===

	AddAttachment(ctx context.Context, a model.Attachment) (*model.Attachment, error)
	ListAttachments(ctx context.Context, noteID string) ([]model.Attachment, error)
	DeleteAttachment(ctx context.Context, noteID, id string) error

	// === Collaborators ===

	AddCollaborator(ctx context.Context, c model.Collaborator) (*model.Collaborator, error)
	ListCollaborators(ctx context.Context, noteID string) ([]model.Collaborator, error)
	RemoveCollaborator(ctx context.Context, noteID, id string) error

	Ping(ctx context.Context) error
	Close() error
}

var _ Store = (*SQLStore)(nil)
