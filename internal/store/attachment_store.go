package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nhle/notekeeper/internal/model"
)

// AddAttachment records a media file on a note.
func (s *SQLStore) AddAttachment(
	ctx context.Context,
	a model.Attachment,
) (*model.Attachment, error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	a.CreatedAt = s.now()

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO attachments (
			id, note_id, type, url, local_path, duration, transcription, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		a.ID, a.NoteID, a.Type, a.URL, a.LocalPath, a.Duration, a.Transcription, a.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("adding attachment: %w", translateErr(err))
	}
	return &a, nil
}

// ListAttachments returns the attachments of a note, oldest first.
func (s *SQLStore) ListAttachments(
	ctx context.Context,
	noteID string,
) ([]model.Attachment, error) {
	attachments := []model.Attachment{}
	err := s.db.SelectContext(ctx, &attachments, s.rebind(
		"SELECT * FROM attachments WHERE note_id = ? ORDER BY created_at, id"), noteID)
	if err != nil {
		return nil, fmt.Errorf("querying attachments: %w", translateErr(err))
	}
	return attachments, nil
}

// DeleteAttachment removes an attachment of the given note.
func (s *SQLStore) DeleteAttachment(ctx context.Context, noteID, id string) error {
	result, err := s.db.ExecContext(ctx,
		s.rebind("DELETE FROM attachments WHERE id = ? AND note_id = ?"), id, noteID)
	if err != nil {
		return fmt.Errorf("deleting attachment %s: %w", id, translateErr(err))
	}
	if !rowsAffected(result) {
		return fmt.Errorf("attachment %s: %w", id, ErrNotFound)
	}
	return nil
}

// AddCollaborator grants a user access to a note.
func (s *SQLStore) AddCollaborator(
	ctx context.Context,
	c model.Collaborator,
) (*model.Collaborator, error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Permission == "" {
		c.Permission = model.PermissionView
	}
	c.AddedAt = s.now()

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO collaborators (id, note_id, user_id, permission, added_at)
		VALUES (?, ?, ?, ?, ?)`),
		c.ID, c.NoteID, c.UserID, c.Permission, c.AddedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("adding collaborator: %w", translateErr(err))
	}
	return &c, nil
}

// ListCollaborators returns the collaborators of a note.
func (s *SQLStore) ListCollaborators(
	ctx context.Context,
	noteID string,
) ([]model.Collaborator, error) {
	collaborators := []model.Collaborator{}
	err := s.db.SelectContext(ctx, &collaborators, s.rebind(
		"SELECT * FROM collaborators WHERE note_id = ? ORDER BY added_at, id"), noteID)
	if err != nil {
		return nil, fmt.Errorf("querying collaborators: %w", translateErr(err))
	}
	return collaborators, nil
}

// RemoveCollaborator revokes a collaborator of the given note.
func (s *SQLStore) RemoveCollaborator(ctx context.Context, noteID, id string) error {
	result, err := s.db.ExecContext(ctx,
		s.rebind("DELETE FROM collaborators WHERE id = ? AND note_id = ?"), id, noteID)
	if err != nil {
		return fmt.Errorf("removing collaborator %s: %w", id, translateErr(err))
	}
	if !rowsAffected(result) {
		return fmt.Errorf("collaborator %s: %w", id, ErrNotFound)
	}
	return nil
}
