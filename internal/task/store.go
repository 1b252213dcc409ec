package task

import "context"

// Filter narrows List results. A zero Filter matches every task.
type Filter struct {
	// UserID restricts the result to tasks the user created or is
	// assigned to.
	UserID string
}

// Store persists tasks. Find and List resolve the creator and assignee
// accounts; List orders by creation time descending.
type Store interface {
	Create(ctx context.Context, t *Task) error
	Find(ctx context.Context, id string) (*Task, error)
	List(ctx context.Context, f Filter) ([]*Task, error)
	// Update persists title, description, status and assignee. Returns
	// ErrNotFound when the task does not exist.
	Update(ctx context.Context, t *Task) error
	Delete(ctx context.Context, id string) error
}
