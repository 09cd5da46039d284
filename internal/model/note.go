package model

import "time"

// NoteType distinguishes freeform notes from to-do containers.
type NoteType string

const (
	NoteTypeNote NoteType = "note"
	NoteTypeTodo NoteType = "todo"
)

// Valid reports whether t is a known note type.
func (t NoteType) Valid() bool {
	return t == NoteTypeNote || t == NoteTypeTodo
}

// Note is a user-owned document.
type Note struct {
	// ID is the unique identifier for this note.
	ID string `json:"id" db:"id"`

	// UserID is the owner. Every query is scoped by it.
	UserID string `json:"user_id" db:"user_id"`

	Title   string   `json:"title" db:"title"`
	Content string   `json:"content" db:"content"`
	Type    NoteType `json:"type" db:"type"`

	// Tags is stored as a JSON array.
	Tags []string `json:"tags" db:"-"`

	// FolderID is cleared when the folder is deleted.
	FolderID *string `json:"folder_id,omitempty" db:"folder_id"`

	IsArchived bool `json:"is_archived" db:"is_archived"`
	IsPinned   bool `json:"is_pinned" db:"is_pinned"`

	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty" db:"last_synced_at"`
}

// NotePatch describes a partial note update. Absent fields are left as is.
type NotePatch struct {
	Title      Optional[string]   `json:"title,omitzero"`
	Content    Optional[string]   `json:"content,omitzero"`
	Type       Optional[NoteType] `json:"type,omitzero"`
	Tags       Optional[[]string] `json:"tags,omitzero"`
	FolderID   Optional[*string]  `json:"folder_id,omitzero"`
	IsArchived Optional[bool]     `json:"is_archived,omitzero"`
	IsPinned   Optional[bool]     `json:"is_pinned,omitzero"`
}

// Empty reports whether the patch carries no fields.
func (p NotePatch) Empty() bool {
	return !p.Title.Present() && !p.Content.Present() && !p.Type.Present() &&
		!p.Tags.Present() && !p.FolderID.Present() &&
		!p.IsArchived.Present() && !p.IsPinned.Present()
}

// Apply returns a copy of n with the present fields of p applied.
// Timestamps are not touched.
func (p NotePatch) Apply(n Note) Note {
	if v, ok := p.Title.Get(); ok {
		n.Title = v
	}
	if v, ok := p.Content.Get(); ok {
		n.Content = v
	}
	if v, ok := p.Type.Get(); ok {
		n.Type = v
	}
	if v, ok := p.Tags.Get(); ok {
		n.Tags = append([]string(nil), v...)
	}
	if v, ok := p.FolderID.Get(); ok {
		n.FolderID = v
	}
	if v, ok := p.IsArchived.Get(); ok {
		n.IsArchived = v
	}
	if v, ok := p.IsPinned.Get(); ok {
		n.IsPinned = v
	}
	return n
}
