package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nhle/notekeeper/internal/model"
)

// CreateTag inserts a new tag.
func (s *SQLStore) CreateTag(ctx context.Context, tag model.Tag) (*model.Tag, error) {
	if strings.TrimSpace(tag.Name) == "" {
		return nil, fmt.Errorf("tag name must not be empty")
	}
	if tag.ID == "" {
		tag.ID = uuid.New().String()
	}
	tag.CreatedAt = s.now()

	_, err := s.db.ExecContext(ctx,
		s.rebind("INSERT INTO tags (id, user_id, name, color, created_at) VALUES (?, ?, ?, ?, ?)"),
		tag.ID, tag.UserID, tag.Name, tag.Color, tag.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating tag: %w", translateErr(err))
	}
	return &tag, nil
}

// GetTag retrieves a tag by ID regardless of owner.
func (s *SQLStore) GetTag(ctx context.Context, id string) (*model.Tag, error) {
	var tag model.Tag
	err := s.db.GetContext(ctx, &tag, s.rebind("SELECT * FROM tags WHERE id = ?"), id)
	if err != nil {
		return nil, fmt.Errorf("getting tag %s: %w", id, translateErr(err))
	}
	return &tag, nil
}

// ListTags returns all tags of a user ordered by name.
func (s *SQLStore) ListTags(ctx context.Context, userID string) ([]model.Tag, error) {
	tags := []model.Tag{}
	err := s.db.SelectContext(ctx, &tags,
		s.rebind("SELECT * FROM tags WHERE user_id = ? ORDER BY name"), userID)
	if err != nil {
		return nil, fmt.Errorf("querying tags: %w", translateErr(err))
	}
	return tags, nil
}

// UpdateTag updates a tag's name and color.
func (s *SQLStore) UpdateTag(ctx context.Context, tag model.Tag) (*model.Tag, error) {
	if strings.TrimSpace(tag.Name) == "" {
		return nil, fmt.Errorf("tag name must not be empty")
	}
	result, err := s.db.ExecContext(ctx,
		s.rebind("UPDATE tags SET name = ?, color = ? WHERE id = ?"),
		tag.Name, tag.Color, tag.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating tag %s: %w", tag.ID, translateErr(err))
	}
	if !rowsAffected(result) {
		return nil, fmt.Errorf("tag %s: %w", tag.ID, ErrNotFound)
	}
	return s.GetTag(ctx, tag.ID)
}

// DeleteTag removes a tag. Notes keep the tag name in their own tag list.
func (s *SQLStore) DeleteTag(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM tags WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("deleting tag %s: %w", id, translateErr(err))
	}
	if !rowsAffected(result) {
		return fmt.Errorf("tag %s: %w", id, ErrNotFound)
	}
	return nil
}
