package user

import (
	"context"
	"sort"
	"sync"
	"time"

	"taskhub.org/internal/ids"
)

// InMemory implements Store with in-process concurrency safety. Used in
// tests and when the server runs without a database.
type InMemory struct {
	mu      sync.RWMutex
	users   map[string]*User
	byEmail map[string]string
}

var _ Store = (*InMemory)(nil)

// NewInMemory creates an empty user store.
func NewInMemory() *InMemory {
	return &InMemory{
		users:   make(map[string]*User),
		byEmail: make(map[string]string),
	}
}

func (s *InMemory) Create(ctx context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[u.Email]; ok {
		return ErrEmailTaken
	}
	if u.ID == "" {
		u.ID = ids.New()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	stored := *u
	s.users[u.ID] = &stored
	s.byEmail[u.Email] = u.ID
	return nil
}

func (s *InMemory) Find(ctx context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *u
	return &out, nil
}

func (s *InMemory) FindByEmail(ctx context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	out := *s.users[id]
	return &out, nil
}

func (s *InMemory) List(ctx context.Context) ([]*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*User, 0, len(s.users))
	for _, u := range s.users {
		copied := *u
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemory) Update(ctx context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.users[u.ID]
	if !ok {
		return ErrNotFound
	}
	if other, ok := s.byEmail[u.Email]; ok && other != u.ID {
		return ErrEmailTaken
	}

	delete(s.byEmail, current.Email)
	u.CreatedAt = current.CreatedAt
	u.UpdatedAt = time.Now().UTC()

	stored := *u
	s.users[u.ID] = &stored
	s.byEmail[u.Email] = u.ID
	return nil
}
