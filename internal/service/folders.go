package service

import (
	"context"
	"fmt"

	"github.com/nhle/notekeeper/internal/model"
)

// CreateFolderInput is the payload of folders.create.
type CreateFolderInput struct {
	Name           string  `json:"name" validate:"notblank,max=255"`
	ParentFolderID *string `json:"parent_folder_id,omitempty"`
}

// CreateTagInput is the payload of tags.create and tags.update.
type CreateTagInput struct {
	Name  string `json:"name" validate:"notblank,max=50"`
	Color string `json:"color,omitempty" validate:"omitempty,len=7,hexcolor"`
}

// CreateFolder adds a folder for the caller, optionally nested.
func (s *Service) CreateFolder(ctx context.Context, in CreateFolderInput) (*model.Folder, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if err := s.checkFolderRef(ctx, userID, in.ParentFolderID); err != nil {
		return nil, err
	}

	folder, err := s.store.CreateFolder(ctx, model.Folder{
		UserID:         userID,
		Name:           in.Name,
		ParentFolderID: in.ParentFolderID,
	})
	if err != nil {
		return nil, storeErr("creating folder", err)
	}
	return folder, nil
}

// ListFolders returns the caller's folders by name.
func (s *Service) ListFolders(ctx context.Context) ([]model.Folder, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	folders, err := s.store.ListFolders(ctx, userID)
	if err != nil {
		return nil, storeErr("listing folders", err)
	}
	return folders, nil
}

// RenameFolder changes the name of one of the caller's folders.
func (s *Service) RenameFolder(ctx context.Context, id, name string) (*model.Folder, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateVar("name", name, "notblank,max=255"); err != nil {
		return nil, err
	}
	if _, err := s.ownedFolder(ctx, userID, id); err != nil {
		return nil, err
	}
	folder, err := s.store.RenameFolder(ctx, id, name)
	if err != nil {
		return nil, storeErr("renaming folder "+id, err)
	}
	return folder, nil
}

// DeleteFolder removes one of the caller's folders and its sub-folders.
// Notes inside are kept and detached.
func (s *Service) DeleteFolder(ctx context.Context, id string) error {
	userID, err := s.caller(ctx)
	if err != nil {
		return err
	}
	if _, err := s.ownedFolder(ctx, userID, id); err != nil {
		return err
	}
	if err := s.store.DeleteFolder(ctx, id); err != nil {
		return storeErr("deleting folder "+id, err)
	}
	return nil
}

// CreateTag adds a tag for the caller. Names are unique per user.
func (s *Service) CreateTag(ctx context.Context, in CreateTagInput) (*model.Tag, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	tag, err := s.store.CreateTag(ctx, model.Tag{UserID: userID, Name: in.Name, Color: in.Color})
	if err != nil {
		return nil, storeErr("creating tag", err)
	}
	return tag, nil
}

// ListTags returns the caller's tags by name.
func (s *Service) ListTags(ctx context.Context) ([]model.Tag, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	tags, err := s.store.ListTags(ctx, userID)
	if err != nil {
		return nil, storeErr("listing tags", err)
	}
	return tags, nil
}

// UpdateTag renames or recolors one of the caller's tags.
func (s *Service) UpdateTag(ctx context.Context, id string, in CreateTagInput) (*model.Tag, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if err := s.checkTagOwner(ctx, userID, id); err != nil {
		return nil, err
	}
	tag, err := s.store.UpdateTag(ctx, model.Tag{ID: id, Name: in.Name, Color: in.Color})
	if err != nil {
		return nil, storeErr("updating tag "+id, err)
	}
	return tag, nil
}

// DeleteTag removes one of the caller's tags.
func (s *Service) DeleteTag(ctx context.Context, id string) error {
	userID, err := s.caller(ctx)
	if err != nil {
		return err
	}
	if err := s.checkTagOwner(ctx, userID, id); err != nil {
		return err
	}
	if err := s.store.DeleteTag(ctx, id); err != nil {
		return storeErr("deleting tag "+id, err)
	}
	return nil
}

func (s *Service) checkTagOwner(ctx context.Context, userID, id string) error {
	tag, err := s.store.GetTag(ctx, id)
	if err != nil {
		return storeErr("loading tag "+id, err)
	}
	if tag.UserID != userID {
		return fmt.Errorf("tag %s: %w", id, ErrForbidden)
	}
	return nil
}
