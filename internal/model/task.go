package model

import "time"

// Priority is the urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is a single to-do item inside a note.
type Task struct {
	// ID is the unique identifier for this task.
	ID string `json:"id" db:"id"`

	// NoteID is the owning note. Deleting the note deletes the task.
	NoteID string `json:"note_id" db:"note_id"`

	// Title is the text of the to-do item.
	Title string `json:"title" db:"title"`

	// Completed is set when the item is checked off.
	Completed bool `json:"completed" db:"completed"`

	// Priority defaults to medium.
	Priority Priority `json:"priority" db:"priority"`

	// DueDate is optional.
	DueDate *time.Time `json:"due_date,omitempty" db:"due_date"`

	// ParentTaskID makes this task a sub-task. Deleting the parent
	// deletes its sub-tasks.
	ParentTaskID *string `json:"parent_task_id,omitempty" db:"parent_task_id"`

	// Order is the position within the note's task list. It is unique by
	// convention only.
	Order int `json:"order" db:"sort_order"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsOverdue reports whether the task is past due and still open.
func (t Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && !t.Completed
}

// TaskPatch describes a partial task update.
type TaskPatch struct {
	Title        Optional[string]     `json:"title,omitzero"`
	Completed    Optional[bool]       `json:"completed,omitzero"`
	Priority     Optional[Priority]   `json:"priority,omitzero"`
	DueDate      Optional[*time.Time] `json:"due_date,omitzero"`
	ParentTaskID Optional[*string]    `json:"parent_task_id,omitzero"`
	Order        Optional[int]        `json:"order,omitzero"`
}

// Empty reports whether the patch carries no fields.
func (p TaskPatch) Empty() bool {
	return !p.Title.Present() && !p.Completed.Present() && !p.Priority.Present() &&
		!p.DueDate.Present() && !p.ParentTaskID.Present() && !p.Order.Present()
}

// Apply returns a copy of t with the present fields of p applied.
func (p TaskPatch) Apply(t Task) Task {
	if v, ok := p.Title.Get(); ok {
		t.Title = v
	}
	if v, ok := p.Completed.Get(); ok {
		t.Completed = v
	}
	if v, ok := p.Priority.Get(); ok {
		t.Priority = v
	}
	if v, ok := p.DueDate.Get(); ok {
		t.DueDate = v
	}
	if v, ok := p.ParentTaskID.Get(); ok {
		t.ParentTaskID = v
	}
	if v, ok := p.Order.Get(); ok {
		t.Order = v
	}
	return t
}

// TaskOrder assigns a new position to one task in a reorder batch.
type TaskOrder struct {
	ID    string `json:"id" validate:"required"`
	Order int    `json:"order" validate:"gte=0"`
}
