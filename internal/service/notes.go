package service

import (
	"context"
	"fmt"

	"github.com/nhle/notekeeper/internal/model"
	"github.com/nhle/notekeeper/internal/store"
)

// CreateNoteInput is the payload of notes.create.
type CreateNoteInput struct {
	Title    string         `json:"title" validate:"notblank,max=255"`
	Content  string         `json:"content"`
	Type     model.NoteType `json:"type,omitempty" validate:"omitempty,oneof=note todo"`
	Tags     []string       `json:"tags,omitempty" validate:"omitempty,dive,notblank,max=64"`
	FolderID *string        `json:"folder_id,omitempty"`
}

// UpdateNoteInput is the payload of notes.update.
type UpdateNoteInput struct {
	ID    string          `json:"id" validate:"required"`
	Patch model.NotePatch `json:"patch"`
}

// SearchNotesInput is the payload of notes.search. Tags is accepted for
// compatibility and does not narrow the result.
type SearchNotesInput struct {
	Query string   `json:"query"`
	Tags  []string `json:"tags,omitempty"`
}

// CreateNote inserts a note owned by the caller.
func (s *Service) CreateNote(ctx context.Context, in CreateNoteInput) (*model.Note, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if err := s.checkFolderRef(ctx, userID, in.FolderID); err != nil {
		return nil, err
	}

	note, err := s.store.CreateNote(ctx, model.Note{
		UserID:   userID,
		Title:    in.Title,
		Content:  in.Content,
		Type:     in.Type,
		Tags:     in.Tags,
		FolderID: in.FolderID,
	})
	if err != nil {
		return nil, storeErr("creating note", err)
	}

	s.log.Debug().Str("user_id", userID).Str("note_id", note.ID).Msg("note created")
	return note, nil
}

// ListNotes returns the caller's non-archived notes by last update.
func (s *Service) ListNotes(ctx context.Context) ([]model.Note, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	notes, err := s.store.ListNotes(ctx, store.NoteFilter{UserID: userID})
	if err != nil {
		return nil, storeErr("listing notes", err)
	}
	return notes, nil
}

// ListArchivedNotes returns the caller's archived notes by last update.
func (s *Service) ListArchivedNotes(ctx context.Context) ([]model.Note, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	notes, err := s.store.ListNotes(ctx, store.NoteFilter{UserID: userID, IncludeArchived: true})
	if err != nil {
		return nil, storeErr("listing archived notes", err)
	}
	archived := make([]model.Note, 0, len(notes))
	for _, n := range notes {
		if n.IsArchived {
			archived = append(archived, n)
		}
	}
	return archived, nil
}

// GetNote returns one of the caller's notes. Notes of other users are
// reported as not found.
func (s *Service) GetNote(ctx context.Context, id string) (*model.Note, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	return s.ownedNote(ctx, userID, id, true)
}

// UpdateNote applies the present fields of the patch.
func (s *Service) UpdateNote(ctx context.Context, in UpdateNoteInput) (*model.Note, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if err := validateNotePatch(in.Patch); err != nil {
		return nil, err
	}
	if _, err := s.ownedNote(ctx, userID, in.ID, false); err != nil {
		return nil, err
	}
	if folderID, ok := in.Patch.FolderID.Get(); ok {
		if err := s.checkFolderRef(ctx, userID, folderID); err != nil {
			return nil, err
		}
	}

	note, err := s.store.UpdateNote(ctx, in.ID, in.Patch)
	if err != nil {
		return nil, storeErr("updating note "+in.ID, err)
	}
	return note, nil
}

func validateNotePatch(p model.NotePatch) error {
	if v, ok := p.Title.Get(); ok {
		if err := validateVar("title", v, "notblank,max=255"); err != nil {
			return err
		}
	}
	if v, ok := p.Type.Get(); ok && !v.Valid() {
		return fmt.Errorf("%w: type must be one of [note todo]", ErrValidation)
	}
	if v, ok := p.Tags.Get(); ok {
		if err := validateVar("tags", v, "dive,notblank,max=64"); err != nil {
			return err
		}
	}
	return nil
}

// DeleteNote removes one of the caller's notes with its tasks,
// attachments and collaborators.
func (s *Service) DeleteNote(ctx context.Context, id string) error {
	userID, err := s.caller(ctx)
	if err != nil {
		return err
	}
	if _, err := s.ownedNote(ctx, userID, id, true); err != nil {
		return err
	}
	if err := s.store.DeleteNote(ctx, id); err != nil {
		return storeErr("deleting note "+id, err)
	}
	s.log.Debug().Str("user_id", userID).Str("note_id", id).Msg("note deleted")
	return nil
}

// SearchNotes returns the caller's non-archived notes whose title or
// content contains the query. Matching ignores case.
func (s *Service) SearchNotes(ctx context.Context, in SearchNotesInput) ([]model.Note, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	q := in.Query
	notes, err := s.store.ListNotes(ctx, store.NoteFilter{UserID: userID, Query: &q})
	if err != nil {
		return nil, storeErr("searching notes", err)
	}
	return notes, nil
}

// ArchiveNote hides a note from the default listing.
func (s *Service) ArchiveNote(ctx context.Context, id string) (*model.Note, error) {
	return s.UpdateNote(ctx, UpdateNoteInput{
		ID:    id,
		Patch: model.NotePatch{IsArchived: model.Some(true)},
	})
}

// UnarchiveNote returns a note to the default listing.
func (s *Service) UnarchiveNote(ctx context.Context, id string) (*model.Note, error) {
	return s.UpdateNote(ctx, UpdateNoteInput{
		ID:    id,
		Patch: model.NotePatch{IsArchived: model.Some(false)},
	})
}

// PinNote sets or clears the pinned flag.
func (s *Service) PinNote(ctx context.Context, id string, pinned bool) (*model.Note, error) {
	return s.UpdateNote(ctx, UpdateNoteInput{
		ID:    id,
		Patch: model.NotePatch{IsPinned: model.Some(pinned)},
	})
}
