package task

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"taskhub.org/internal/ids"
	"taskhub.org/internal/user"
)

// InMemory implements Store with in-process concurrency safety. Relations
// are resolved against the shared user store on every read.
type InMemory struct {
	mu    sync.RWMutex
	tasks map[string]*Task
	users user.Store
}

var _ Store = (*InMemory)(nil)

// NewInMemory creates an empty task store resolving users from the given
// user store.
func NewInMemory(users user.Store) *InMemory {
	return &InMemory{
		tasks: make(map[string]*Task),
		users: users,
	}
}

func (s *InMemory) Create(ctx context.Context, t *Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = ids.New()
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	stored := *t
	stored.Creator = nil
	stored.Assignee = nil
	s.tasks[t.ID] = &stored
	return nil
}

func (s *InMemory) Find(ctx context.Context, id string) (*Task, error) {
	s.mu.RLock()
	t, ok := s.tasks[id]
	if !ok {
		s.mu.RUnlock()
		return nil, ErrNotFound
	}
	out := *t
	s.mu.RUnlock()

	if err := s.resolve(ctx, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *InMemory) List(ctx context.Context, f Filter) ([]*Task, error) {
	s.mu.RLock()
	matched := make([]*Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if f.UserID != "" && t.CreatorID != f.UserID && t.AssigneeID != f.UserID {
			continue
		}
		out := *t
		matched = append(matched, &out)
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		// ULIDs sort by creation order, so break ties newest-first.
		return matched[i].ID > matched[j].ID
	})

	for _, t := range matched {
		if err := s.resolve(ctx, t); err != nil {
			return nil, err
		}
	}
	return matched, nil
}

func (s *InMemory) Update(ctx context.Context, t *Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.tasks[t.ID]
	if !ok {
		return ErrNotFound
	}
	t.CreatedAt = current.CreatedAt
	t.CreatorID = current.CreatorID
	t.UpdatedAt = time.Now().UTC()

	stored := *t
	stored.Creator = nil
	stored.Assignee = nil
	s.tasks[t.ID] = &stored
	return nil
}

func (s *InMemory) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *InMemory) resolve(ctx context.Context, t *Task) error {
	creator, err := s.users.Find(ctx, t.CreatorID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil
		}
		return err
	}
	sanitized := creator.Sanitized()
	t.Creator = &sanitized

	if t.AssigneeID == "" {
		return nil
	}
	assignee, err := s.users.Find(ctx, t.AssigneeID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil
		}
		return err
	}
	sanitizedAssignee := assignee.Sanitized()
	t.Assignee = &sanitizedAssignee
	return nil
}
