package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nhle/notekeeper/internal/model"
)

// CreateFolder inserts a new folder.
func (s *SQLStore) CreateFolder(ctx context.Context, folder model.Folder) (*model.Folder, error) {
	if strings.TrimSpace(folder.Name) == "" {
		return nil, fmt.Errorf("folder name must not be empty")
	}
	if folder.ID == "" {
		folder.ID = uuid.New().String()
	}
	now := s.now()
	folder.CreatedAt = now
	folder.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO folders (id, user_id, name, parent_folder_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`),
		folder.ID, folder.UserID, folder.Name, folder.ParentFolderID,
		folder.CreatedAt, folder.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating folder: %w", translateErr(err))
	}
	return &folder, nil
}

// GetFolder retrieves a folder by ID regardless of owner.
func (s *SQLStore) GetFolder(ctx context.Context, id string) (*model.Folder, error) {
	var folder model.Folder
	err := s.db.GetContext(ctx, &folder, s.rebind("SELECT * FROM folders WHERE id = ?"), id)
	if err != nil {
		return nil, fmt.Errorf("getting folder %s: %w", id, translateErr(err))
	}
	return &folder, nil
}

// ListFolders returns all folders of a user ordered by name.
func (s *SQLStore) ListFolders(ctx context.Context, userID string) ([]model.Folder, error) {
	folders := []model.Folder{}
	err := s.db.SelectContext(ctx, &folders,
		s.rebind("SELECT * FROM folders WHERE user_id = ? ORDER BY name, id"), userID)
	if err != nil {
		return nil, fmt.Errorf("querying folders: %w", translateErr(err))
	}
	return folders, nil
}

// RenameFolder changes a folder's name.
func (s *SQLStore) RenameFolder(ctx context.Context, id, name string) (*model.Folder, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("folder name must not be empty")
	}
	result, err := s.db.ExecContext(ctx,
		s.rebind("UPDATE folders SET name = ?, updated_at = ? WHERE id = ?"),
		name, s.now(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("renaming folder %s: %w", id, translateErr(err))
	}
	if !rowsAffected(result) {
		return nil, fmt.Errorf("folder %s: %w", id, ErrNotFound)
	}
	return s.GetFolder(ctx, id)
}

// DeleteFolder removes a folder. Child folders are deleted and the notes
// inside are detached.
func (s *SQLStore) DeleteFolder(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM folders WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("deleting folder %s: %w", id, translateErr(err))
	}
	if !rowsAffected(result) {
		return fmt.Errorf("folder %s: %w", id, ErrNotFound)
	}
	return nil
}
