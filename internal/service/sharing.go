package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/nhle/notekeeper/internal/model"
)

// AddAttachmentInput is the payload of attachments.add.
type AddAttachmentInput struct {
	NoteID        string               `json:"note_id" validate:"required"`
	Type          model.AttachmentType `json:"type" validate:"required,oneof=image audio video"`
	URL           string               `json:"url" validate:"required,url"`
	LocalPath     *string              `json:"local_path,omitempty"`
	Duration      *int                 `json:"duration,omitempty" validate:"omitempty,gte=0"`
	Transcription *string              `json:"transcription,omitempty"`
}

// AddCollaboratorInput is the payload of collaborators.add.
type AddCollaboratorInput struct {
	NoteID     string           `json:"note_id" validate:"required"`
	UserID     string           `json:"user_id" validate:"required"`
	Permission model.Permission `json:"permission,omitempty" validate:"omitempty,oneof=view edit admin"`
}

// AddAttachment records a media file on one of the caller's notes.
func (s *Service) AddAttachment(ctx context.Context, in AddAttachmentInput) (*model.Attachment, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if _, err := s.ownedNote(ctx, userID, in.NoteID, false); err != nil {
		return nil, err
	}
	a, err := s.store.AddAttachment(ctx, model.Attachment{
		NoteID:        in.NoteID,
		Type:          in.Type,
		URL:           in.URL,
		LocalPath:     in.LocalPath,
		Duration:      in.Duration,
		Transcription: in.Transcription,
	})
	if err != nil {
		return nil, storeErr("adding attachment", err)
	}
	return a, nil
}

// ListAttachments returns the attachments of one of the caller's notes.
func (s *Service) ListAttachments(ctx context.Context, noteID string) ([]model.Attachment, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedNote(ctx, userID, noteID, false); err != nil {
		return nil, err
	}
	attachments, err := s.store.ListAttachments(ctx, noteID)
	if err != nil {
		return nil, storeErr("listing attachments", err)
	}
	return attachments, nil
}

// DeleteAttachment removes an attachment from one of the caller's notes.
func (s *Service) DeleteAttachment(ctx context.Context, noteID, id string) error {
	userID, err := s.caller(ctx)
	if err != nil {
		return err
	}
	if _, err := s.ownedNote(ctx, userID, noteID, false); err != nil {
		return err
	}
	if err := s.store.DeleteAttachment(ctx, noteID, id); err != nil {
		return storeErr("deleting attachment "+id, err)
	}
	return nil
}

// AddCollaborator shares one of the caller's notes with another user.
func (s *Service) AddCollaborator(ctx context.Context, in AddCollaboratorInput) (*model.Collaborator, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if in.UserID == userID {
		return nil, fmt.Errorf("%w: cannot share a note with its owner", ErrValidation)
	}
	if _, err := s.ownedNote(ctx, userID, in.NoteID, false); err != nil {
		return nil, err
	}
	if _, err := s.store.GetUser(ctx, in.UserID); err != nil {
		err = storeErr("loading user "+in.UserID, err)
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: user %s does not exist", ErrValidation, in.UserID)
		}
		return nil, err
	}

	c, err := s.store.AddCollaborator(ctx, model.Collaborator{
		NoteID:     in.NoteID,
		UserID:     in.UserID,
		Permission: in.Permission,
	})
	if err != nil {
		return nil, storeErr("adding collaborator", err)
	}
	return c, nil
}

// ListCollaborators returns who one of the caller's notes is shared with.
func (s *Service) ListCollaborators(ctx context.Context, noteID string) ([]model.Collaborator, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedNote(ctx, userID, noteID, false); err != nil {
		return nil, err
	}
	collaborators, err := s.store.ListCollaborators(ctx, noteID)
	if err != nil {
		return nil, storeErr("listing collaborators", err)
	}
	return collaborators, nil
}

// RemoveCollaborator stops sharing one of the caller's notes with a user.
func (s *Service) RemoveCollaborator(ctx context.Context, noteID, id string) error {
	userID, err := s.caller(ctx)
	if err != nil {
		return err
	}
	if _, err := s.ownedNote(ctx, userID, noteID, false); err != nil {
		return err
	}
	if err := s.store.RemoveCollaborator(ctx, noteID, id); err != nil {
		return storeErr("removing collaborator "+id, err)
	}
	return nil
}
