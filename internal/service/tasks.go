package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nhle/notekeeper/internal/model"
)

// CreateTaskInput is the payload of tasks.create.
type CreateTaskInput struct {
	NoteID       string         `json:"note_id" validate:"required"`
	Title        string         `json:"title" validate:"notblank,max=255"`
	Order        int            `json:"order" validate:"gte=0"`
	Priority     model.Priority `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	DueDate      *time.Time     `json:"due_date,omitempty"`
	ParentTaskID *string        `json:"parent_task_id,omitempty"`
}

// UpdateTaskInput is the payload of tasks.update.
type UpdateTaskInput struct {
	NoteID string          `json:"note_id" validate:"required"`
	ID     string          `json:"id" validate:"required"`
	Patch  model.TaskPatch `json:"patch"`
}

// ReorderTasksInput is the payload of tasks.reorder.
type ReorderTasksInput struct {
	NoteID string            `json:"note_id" validate:"required"`
	Orders []model.TaskOrder `json:"orders" validate:"dive"`
}

// CreateTask adds a task to one of the caller's notes.
func (s *Service) CreateTask(ctx context.Context, in CreateTaskInput) (*model.Task, error) {
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
	if err := s.checkParentTask(ctx, in.NoteID, "", in.ParentTaskID); err != nil {
		return nil, err
	}

	task, err := s.store.CreateTask(ctx, model.Task{
		NoteID:       in.NoteID,
		Title:        in.Title,
		Order:        in.Order,
		Priority:     in.Priority,
		DueDate:      in.DueDate,
		ParentTaskID: in.ParentTaskID,
	})
	if err != nil {
		return nil, storeErr("creating task", err)
	}
	return task, nil
}

// ListTasks returns the tasks of one of the caller's notes in order.
func (s *Service) ListTasks(ctx context.Context, noteID string) ([]model.Task, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedNote(ctx, userID, noteID, false); err != nil {
		return nil, err
	}
	tasks, err := s.store.ListTasks(ctx, noteID)
	if err != nil {
		return nil, storeErr("listing tasks", err)
	}
	return tasks, nil
}

// UpdateTask applies the present fields of the patch to a task.
func (s *Service) UpdateTask(ctx context.Context, in UpdateTaskInput) (*model.Task, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if err := validateTaskPatch(in.Patch); err != nil {
		return nil, err
	}
	if _, err := s.ownedNote(ctx, userID, in.NoteID, false); err != nil {
		return nil, err
	}
	if parentID, ok := in.Patch.ParentTaskID.Get(); ok {
		if err := s.checkParentTask(ctx, in.NoteID, in.ID, parentID); err != nil {
			return nil, err
		}
	}

	task, err := s.store.UpdateTask(ctx, in.NoteID, in.ID, in.Patch)
	if err != nil {
		return nil, storeErr("updating task "+in.ID, err)
	}
	return task, nil
}

func validateTaskPatch(p model.TaskPatch) error {
	if v, ok := p.Title.Get(); ok {
		if err := validateVar("title", v, "notblank,max=255"); err != nil {
			return err
		}
	}
	if v, ok := p.Priority.Get(); ok && !v.Valid() {
		return fmt.Errorf("%w: priority must be one of [low medium high]", ErrValidation)
	}
	if v, ok := p.Order.Get(); ok && v < 0 {
		return fmt.Errorf("%w: order must be at least 0", ErrValidation)
	}
	return nil
}

// checkParentTask verifies that parentID, when set, names another task of
// the same note.
func (s *Service) checkParentTask(ctx context.Context, noteID, taskID string, parentID *string) error {
	if parentID == nil {
		return nil
	}
	if *parentID == taskID {
		return fmt.Errorf("%w: a task cannot be its own parent", ErrValidation)
	}
	_, err := s.store.GetTask(ctx, noteID, *parentID)
	if err != nil {
		err = storeErr("loading parent task", err)
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%w: parent task %s is not in note %s", ErrValidation, *parentID, noteID)
		}
		return err
	}
	return nil
}

// DeleteTask removes a task and its sub-tasks.
func (s *Service) DeleteTask(ctx context.Context, noteID, id string) error {
	userID, err := s.caller(ctx)
	if err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("%w: task id is required", ErrValidation)
	}
	if _, err := s.ownedNote(ctx, userID, noteID, false); err != nil {
		return err
	}
	if err := s.store.DeleteTask(ctx, noteID, id); err != nil {
		return storeErr("deleting task "+id, err)
	}
	return nil
}

// ReorderTasks assigns new positions to tasks of one note. The whole batch
// is applied or none of it.
func (s *Service) ReorderTasks(ctx context.Context, in ReorderTasksInput) error {
	userID, err := s.caller(ctx)
	if err != nil {
		return err
	}
	if err := validateInput(in); err != nil {
		return err
	}
	if _, err := s.ownedNote(ctx, userID, in.NoteID, false); err != nil {
		return err
	}
	if err := s.store.ReorderTasks(ctx, in.NoteID, in.Orders); err != nil {
		return storeErr("reordering tasks", err)
	}
	return nil
}
