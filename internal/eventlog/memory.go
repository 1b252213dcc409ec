package eventlog

import (
	"context"
	"sync"
)

// InMemory implements Store with an in-process slice. Entries are held in
// append order and read back newest-first.
type InMemory struct {
	mu      sync.RWMutex
	entries []Entry
}

var _ Store = (*InMemory)(nil)

// NewInMemory creates an empty event store.
func NewInMemory() *InMemory {
	return &InMemory{}
}

func (s *InMemory) Append(ctx context.Context, entry *Entry) error {
	s.mu.Lock()
	s.entries = append(s.entries, *entry)
	s.mu.Unlock()
	return nil
}

func (s *InMemory) List(ctx context.Context, userID string, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, limit)
	for i := len(s.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if userID != "" && s.entries[i].UserID != userID {
			continue
		}
		out = append(out, s.entries[i])
	}
	return out, nil
}
