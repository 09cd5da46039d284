package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nhle/notekeeper/internal/model"
)

// noteRow is a notes row with the tags column still JSON-encoded.
type noteRow struct {
	model.Note
	TagsJSON string `db:"tags"`
}

func (r noteRow) toNote() (model.Note, error) {
	note := r.Note
	note.Tags = []string{}
	if r.TagsJSON != "" {
		if err := json.Unmarshal([]byte(r.TagsJSON), &note.Tags); err != nil {
			return model.Note{}, fmt.Errorf("unmarshaling tags for note %s: %w", note.ID, err)
		}
	}
	return note, nil
}

func marshalTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("marshaling tags: %w", err)
	}
	return string(data), nil
}

// CreateNote inserts a new note. Generates a UUID if ID is empty.
func (s *SQLStore) CreateNote(ctx context.Context, note model.Note) (*model.Note, error) {
	if strings.TrimSpace(note.Title) == "" {
		return nil, fmt.Errorf("note title must not be empty")
	}
	if note.ID == "" {
		note.ID = uuid.New().String()
	}
	if note.Type == "" {
		note.Type = model.NoteTypeNote
	}
	if note.Tags == nil {
		note.Tags = []string{}
	}
	now := s.now()
	note.CreatedAt = now
	note.UpdatedAt = now

	tags, err := marshalTags(note.Tags)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO notes (
			id, user_id, title, content, type, tags, folder_id,
			is_archived, is_pinned, created_at, updated_at, last_synced_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		note.ID, note.UserID, note.Title, note.Content, note.Type, tags, note.FolderID,
		note.IsArchived, note.IsPinned, note.CreatedAt, note.UpdatedAt, note.LastSyncedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating note: %w", translateErr(err))
	}
	return &note, nil
}

// GetNote retrieves a single note by ID regardless of owner.
func (s *SQLStore) GetNote(ctx context.Context, id string) (*model.Note, error) {
	return getNote(ctx, s.db, id)
}

func getNote(ctx context.Context, q queryer, id string) (*model.Note, error) {
	var row noteRow
	err := sqlx.GetContext(ctx, q, &row, q.Rebind("SELECT * FROM notes WHERE id = ?"), id)
	if err != nil {
		return nil, fmt.Errorf("getting note %s: %w", id, translateErr(err))
	}
	note, err := row.toNote()
	if err != nil {
		return nil, err
	}
	return &note, nil
}

// ListNotes retrieves the notes matching filter, ordered by updated_at and
// then id.
func (s *SQLStore) ListNotes(ctx context.Context, filter NoteFilter) ([]model.Note, error) {
	if filter.UserID == "" {
		return nil, fmt.Errorf("listing notes: user id is required")
	}

	conditions := []string{"user_id = ?"}
	args := []interface{}{filter.UserID}

	if !filter.IncludeArchived {
		conditions = append(conditions, "is_archived = ?")
		args = append(args, false)
	}
	if filter.Query != nil && *filter.Query != "" {
		conditions = append(conditions,
			"("+s.containsExpr("title")+" OR "+s.containsExpr("content")+")")
		args = append(args, *filter.Query, *filter.Query)
	}

	query := "SELECT * FROM notes WHERE " + strings.Join(conditions, " AND ") +
		" ORDER BY updated_at, id"

	var rows []noteRow
	if err := s.db.SelectContext(ctx, &rows, s.rebind(query), args...); err != nil {
		return nil, fmt.Errorf("querying notes: %w", translateErr(err))
	}

	notes := make([]model.Note, 0, len(rows))
	for _, r := range rows {
		note, err := r.toNote()
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	return notes, nil
}

// CountNotes returns how many notes the user owns, archived included.
func (s *SQLStore) CountNotes(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		s.rebind("SELECT COUNT(*) FROM notes WHERE user_id = ?"), userID)
	if err != nil {
		return 0, fmt.Errorf("counting notes: %w", translateErr(err))
	}
	return count, nil
}

// UpdateNote applies the present fields of patch and refreshes updated_at,
// even when the patch is empty.
func (s *SQLStore) UpdateNote(
	ctx context.Context,
	id string,
	patch model.NotePatch,
) (*model.Note, error) {
	var updated model.Note
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		current, err := getNote(ctx, tx, id)
		if err != nil {
			return err
		}

		updated = patch.Apply(*current)
		if strings.TrimSpace(updated.Title) == "" {
			return fmt.Errorf("note title must not be empty")
		}
		updated.UpdatedAt = s.now()

		tags, err := marshalTags(updated.Tags)
		if err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, tx.Rebind(`
			UPDATE notes SET
				title = ?, content = ?, type = ?, tags = ?, folder_id = ?,
				is_archived = ?, is_pinned = ?, updated_at = ?
			WHERE id = ?`),
			updated.Title, updated.Content, updated.Type, tags, updated.FolderID,
			updated.IsArchived, updated.IsPinned, updated.UpdatedAt,
			id,
		)
		if err != nil {
			return fmt.Errorf("updating note %s: %w", id, translateErr(err))
		}
		if !rowsAffected(result) {
			return fmt.Errorf("note %s: %w", id, ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteNote removes a note by ID. Cascades to tasks, attachments and
// collaborators.
func (s *SQLStore) DeleteNote(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM notes WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("deleting note %s: %w", id, translateErr(err))
	}
	if !rowsAffected(result) {
		return fmt.Errorf("note %s: %w", id, ErrNotFound)
	}
	return nil
}
