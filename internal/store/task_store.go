package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nhle/notekeeper/internal/model"
)

// CreateTask inserts a new task under its note. Generates a UUID if ID is
// empty and defaults priority to medium.
func (s *SQLStore) CreateTask(ctx context.Context, task model.Task) (*model.Task, error) {
	if strings.TrimSpace(task.Title) == "" {
		return nil, fmt.Errorf("task title must not be empty")
	}
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	if task.Priority == "" {
		task.Priority = model.PriorityMedium
	}
	now := s.now()
	task.CreatedAt = now
	task.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO tasks (
			id, note_id, title, completed, priority,
			due_date, parent_task_id, sort_order,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		task.ID, task.NoteID, task.Title, task.Completed, task.Priority,
		task.DueDate, task.ParentTaskID, task.Order,
		task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating task: %w", translateErr(err))
	}
	return &task, nil
}

// GetTask retrieves a task by ID within the given note.
func (s *SQLStore) GetTask(ctx context.Context, noteID, id string) (*model.Task, error) {
	return getTask(ctx, s.db, noteID, id)
}

func getTask(ctx context.Context, q queryer, noteID, id string) (*model.Task, error) {
	var task model.Task
	err := sqlx.GetContext(ctx, q, &task,
		q.Rebind("SELECT * FROM tasks WHERE id = ? AND note_id = ?"), id, noteID)
	if err != nil {
		return nil, fmt.Errorf("getting task %s: %w", id, translateErr(err))
	}
	return &task, nil
}

// ListTasks returns the tasks of a note ordered by sort_order.
func (s *SQLStore) ListTasks(ctx context.Context, noteID string) ([]model.Task, error) {
	tasks := []model.Task{}
	err := s.db.SelectContext(ctx, &tasks, s.rebind(`
		SELECT * FROM tasks WHERE note_id = ?
		ORDER BY sort_order, created_at, id`), noteID)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", translateErr(err))
	}
	return tasks, nil
}

// UpdateTask applies the present fields of patch to a task of the given
// note and refreshes its updated_at.
func (s *SQLStore) UpdateTask(
	ctx context.Context,
	noteID, id string,
	patch model.TaskPatch,
) (*model.Task, error) {
	var updated model.Task
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		current, err := getTask(ctx, tx, noteID, id)
		if err != nil {
			return err
		}

		updated = patch.Apply(*current)
		if strings.TrimSpace(updated.Title) == "" {
			return fmt.Errorf("task title must not be empty")
		}
		updated.UpdatedAt = s.now()

		result, err := tx.ExecContext(ctx, tx.Rebind(`
			UPDATE tasks SET
				title = ?, completed = ?, priority = ?, due_date = ?,
				parent_task_id = ?, sort_order = ?, updated_at = ?
			WHERE id = ? AND note_id = ?`),
			updated.Title, updated.Completed, updated.Priority, updated.DueDate,
			updated.ParentTaskID, updated.Order, updated.UpdatedAt,
			id, noteID,
		)
		if err != nil {
			return fmt.Errorf("updating task %s: %w", id, translateErr(err))
		}
		if !rowsAffected(result) {
			return fmt.Errorf("task %s: %w", id, ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteTask removes a task of the given note. Sub-tasks cascade.
func (s *SQLStore) DeleteTask(ctx context.Context, noteID, id string) error {
	result, err := s.db.ExecContext(ctx,
		s.rebind("DELETE FROM tasks WHERE id = ? AND note_id = ?"), id, noteID)
	if err != nil {
		return fmt.Errorf("deleting task %s: %w", id, translateErr(err))
	}
	if !rowsAffected(result) {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return nil
}

// ReorderTasks assigns new sort orders to tasks of one note. The batch is
// applied in a single transaction: if any task is missing, nothing changes.
func (s *SQLStore) ReorderTasks(
	ctx context.Context,
	noteID string,
	orders []model.TaskOrder,
) error {
	if len(orders) == 0 {
		return nil
	}

	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		stmt, err := tx.PreparexContext(ctx, tx.Rebind(
			"UPDATE tasks SET sort_order = ?, updated_at = ? WHERE id = ? AND note_id = ?"))
		if err != nil {
			return fmt.Errorf("preparing reorder statement: %w", err)
		}
		defer stmt.Close()

		now := s.now()
		for _, o := range orders {
			result, err := stmt.ExecContext(ctx, o.Order, now, o.ID, noteID)
			if err != nil {
				return fmt.Errorf("reordering task %s: %w", o.ID, translateErr(err))
			}
			if !rowsAffected(result) {
				return fmt.Errorf("task %s: %w", o.ID, ErrNotFound)
			}
		}
		return nil
	})
}
