package task

import (
	"time"

	"taskhub.org/internal/user"
)

// Status of a task. Persisted as the literal strings below.
type Status string

const (
	StatusTodo       Status = "Todo"
	StatusInProgress Status = "InProgress"
	StatusDone       Status = "Done"
)

// Valid reports whether the status is one of the persisted values.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Task is a unit of work owned by its creator and optionally assigned to
// another user. An empty AssigneeID means unassigned. Creator and Assignee
// carry the resolved accounts when the task was read through the store.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	CreatorID   string     `json:"creatorId"`
	AssigneeID  string     `json:"assigneeId,omitempty"`
	Creator     *user.User `json:"creator,omitempty"`
	Assignee    *user.User `json:"assignee,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// CreateTask carries the caller-supplied fields for a new task.
type CreateTask struct {
	Title       string
	Description string
}

// Patch carries a partial update; nil fields are left untouched.
type Patch struct {
	Title       *string
	Description *string
	Status      *Status
}
