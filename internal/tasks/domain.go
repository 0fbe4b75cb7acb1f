package tasks

import "time"

// Status is the task workflow state.
type Status string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Task is a unit of staff work, optionally tied to an event.
type Task struct {
	ID          int64      `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description *string    `json:"description,omitempty" db:"description"`
	AssigneeID  *int64     `json:"assignee_id,omitempty" db:"assignee_id"`
	EventID     *int64     `json:"event_id,omitempty" db:"event_id"`
	DueDate     *time.Time `json:"due_date,omitempty" db:"due_date"`
	Status      Status     `json:"status" db:"status"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

type CreateTaskRequest struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=2000"`
	AssigneeID  *int64     `json:"assignee_id,omitempty" validate:"omitempty,gt=0"`
	EventID     *int64     `json:"event_id,omitempty" validate:"omitempty,gt=0"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

type UpdateTaskRequest struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,max=200"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=2000"`
	AssigneeID  *int64     `json:"assignee_id,omitempty" validate:"omitempty,gt=0"`
	EventID     *int64     `json:"event_id,omitempty" validate:"omitempty,gt=0"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Status      *Status    `json:"status,omitempty"`
}

type ListTasksRequest struct {
	AssigneeID *int64  `json:"assignee_id,omitempty"`
	EventID    *int64  `json:"event_id,omitempty"`
	Status     *Status `json:"status,omitempty"`
	Limit      int     `json:"limit" validate:"gte=0,lte=1000"`
	Offset     int     `json:"offset" validate:"gte=0"`
}
