// Package eventlog records user actions in an append-only log.
package eventlog

import (
	"context"
	"errors"
	"strings"
	"time"

	"taskhub.org/internal/ids"
)

// Action tags for task lifecycle events. Persisted as-is; do not rename.
const (
	ActionTaskCreated  = "TASK_CREATED"
	ActionTaskUpdated  = "TASK_UPDATED"
	ActionTaskAssigned = "TASK_ASSIGNED"
	ActionTaskDeleted  = "TASK_DELETED"
)

const defaultQueryLimit = 100

// Entry is a single append-only record of a user action. Entries are never
// mutated or deleted.
type Entry struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Action    string         `json:"action"`
	UserID    string         `json:"userId"`
	Details   map[string]any `json:"details"`
}

// Store persists entries.
type Store interface {
	Append(ctx context.Context, entry *Entry) error
	// List returns entries newest-first, optionally filtered to one actor,
	// truncated to limit.
	List(ctx context.Context, userID string, limit int) ([]Entry, error)
}

// Log is the event log service. Timestamps are server-assigned on append.
type Log struct {
	store Store
	now   func() time.Time
}

// New constructs a Log over the given store.
func New(store Store) *Log {
	return &Log{store: store, now: time.Now}
}

// Append records an action. Fails only when the store is unavailable; the
// error is propagated to the caller as fatal to the request.
func (l *Log) Append(ctx context.Context, action, userID string, details map[string]any) error {
	if strings.TrimSpace(action) == "" {
		return errors.New("action is required")
	}
	if details == nil {
		details = map[string]any{}
	}
	entry := &Entry{
		ID:        ids.New(),
		Timestamp: l.now().UTC(),
		Action:    action,
		UserID:    userID,
		Details:   details,
	}
	return l.store.Append(ctx, entry)
}

// Query returns entries newest-first. An empty userID matches all actors;
// a non-positive limit falls back to 100.
func (l *Log) Query(ctx context.Context, userID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	return l.store.List(ctx, userID, limit)
}
