package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskhub.org/internal/cache"
	"taskhub.org/internal/eventlog"
	"taskhub.org/internal/obs"
	"taskhub.org/internal/user"
)

const (
	// cacheSweepPrefix covers every per-actor task-list cache key. Any
	// task mutation deletes all of them before the caller observes
	// success; lists repopulate lazily on the next read-through.
	cacheSweepPrefix = "tasks"

	defaultListTTL = 5 * time.Minute
)

// Broadcaster pushes task-change events to connected realtime clients.
// Delivery is best-effort and must never block the caller.
type Broadcaster interface {
	TaskUpdated(t Task)
	TaskDeleted(taskID string)
}

// Service composes the task store, the result cache, the event log and the
// broadcaster into the task operations. Every mutation runs the same tail:
// persist, sweep the list cache, append to the event log, broadcast.
type Service struct {
	store     Store
	users     user.Store
	cache     cache.Cache
	events    *eventlog.Log
	broadcast Broadcaster
	listTTL   time.Duration
}

// Option configures Service.
type Option func(*Service)

// WithListTTL overrides the task-list cache TTL.
func WithListTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.listTTL = ttl
		}
	}
}

// NewService wires the task orchestration service.
func NewService(store Store, users user.Store, c cache.Cache, events *eventlog.Log, b Broadcaster, opts ...Option) *Service {
	s := &Service{
		store:     store,
		users:     users,
		cache:     c,
		events:    events,
		broadcast: b,
		listTTL:   defaultListTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create persists a new task with status Todo owned by creatorID and
// returns it with relations resolved.
func (s *Service) Create(ctx context.Context, in CreateTask, creatorID string) (*Task, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	t := &Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      StatusTodo,
		CreatorID:   creatorID,
	}
	if err := s.store.Create(ctx, t); err != nil {
		return nil, err
	}
	resolved, err := s.store.Find(ctx, t.ID)
	if err != nil {
		return nil, err
	}

	if err := s.invalidateLists(ctx); err != nil {
		return nil, err
	}
	if err := s.events.Append(ctx, eventlog.ActionTaskCreated, creatorID, map[string]any{
		"taskId": resolved.ID,
		"title":  resolved.Title,
	}); err != nil {
		return nil, err
	}
	s.broadcast.TaskUpdated(*resolved)

	return resolved, nil
}

// FindAll returns the actor's task list: everything for admins, otherwise
// tasks the actor created or is assigned to, newest first. Lists are served
// from the per-actor cache when fresh and repopulated on miss.
func (s *Service) FindAll(ctx context.Context, actor user.User) ([]Task, error) {
	key := cacheSweepPrefix + ":" + actor.ID

	if data, err := s.cache.Get(ctx, key); err == nil {
		var cached []Task
		if jsonErr := json.Unmarshal(data, &cached); jsonErr == nil {
			obs.CacheHit()
			return cached, nil
		}
		// An unreadable entry is treated as a miss and overwritten below.
	} else if !errors.Is(err, cache.ErrMiss) {
		// A degraded cache backend must not take reads down with it.
		obs.LogEvent("task.cache.read_failed", map[string]any{"error": err.Error()})
	}
	obs.CacheMiss()

	filter := Filter{}
	if actor.Role != user.RoleAdmin {
		filter.UserID = actor.ID
	}
	tasks, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, *t)
	}

	if data, err := json.Marshal(out); err == nil {
		if err := s.cache.Set(ctx, key, data, s.listTTL); err != nil {
			obs.LogEvent("task.cache.write_failed", map[string]any{"error": err.Error()})
		}
	}
	return out, nil
}

// FindOne returns the task with relations resolved or ErrNotFound.
func (s *Service) FindOne(ctx context.Context, id string) (*Task, error) {
	return s.store.Find(ctx, id)
}

// CanAccess reports whether the actor may read the task. Admins always
// can; otherwise the task is loaded and ErrNotFound propagates when it
// does not exist.
func (s *Service) CanAccess(ctx context.Context, taskID, actorID string, role user.Role) (bool, error) {
	if role == user.RoleAdmin {
		return true, nil
	}
	t, err := s.store.Find(ctx, taskID)
	if err != nil {
		return false, err
	}
	return t.CreatorID == actorID || (t.AssigneeID != "" && t.AssigneeID == actorID), nil
}

// Update merges the patch onto the task. Admin, creator or assignee only.
func (s *Service) Update(ctx context.Context, id string, patch Patch, actor user.User) (*Task, error) {
	t, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !Allowed(actor, t, ActionUpdate) {
		return nil, ErrForbidden
	}

	changes := map[string]any{}
	if patch.Title != nil {
		if strings.TrimSpace(*patch.Title) == "" {
			return nil, fmt.Errorf("%w: title must not be empty", ErrInvalidInput)
		}
		t.Title = *patch.Title
		changes["title"] = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
		changes["description"] = *patch.Description
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *patch.Status)
		}
		t.Status = *patch.Status
		changes["status"] = string(*patch.Status)
	}

	if err := s.store.Update(ctx, t); err != nil {
		return nil, err
	}

	if err := s.invalidateLists(ctx); err != nil {
		return nil, err
	}
	if err := s.events.Append(ctx, eventlog.ActionTaskUpdated, actor.ID, map[string]any{
		"taskId":  id,
		"changes": changes,
	}); err != nil {
		return nil, err
	}
	s.broadcast.TaskUpdated(*t)

	return t, nil
}

// Assign sets or clears the task's assignee. Admin or creator only. A
// non-empty assigneeID must resolve to an existing user; empty unassigns.
func (s *Service) Assign(ctx context.Context, id, assigneeID string, actor user.User) (*Task, error) {
	t, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !Allowed(actor, t, ActionAssign) {
		return nil, ErrForbidden
	}

	if assigneeID != "" {
		if _, err := s.users.Find(ctx, assigneeID); err != nil {
			if errors.Is(err, user.ErrNotFound) {
				return nil, ErrAssigneeNotFound
			}
			return nil, err
		}
	}
	t.AssigneeID = assigneeID

	if err := s.store.Update(ctx, t); err != nil {
		return nil, err
	}
	resolved, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.invalidateLists(ctx); err != nil {
		return nil, err
	}
	var loggedAssignee any
	if assigneeID != "" {
		loggedAssignee = assigneeID
	}
	if err := s.events.Append(ctx, eventlog.ActionTaskAssigned, actor.ID, map[string]any{
		"taskId":     id,
		"assigneeId": loggedAssignee,
	}); err != nil {
		return nil, err
	}
	s.broadcast.TaskUpdated(*resolved)

	return resolved, nil
}

// Remove deletes the task. Admin or creator only.
func (s *Service) Remove(ctx context.Context, id string, actor user.User) error {
	t, err := s.store.Find(ctx, id)
	if err != nil {
		return err
	}
	if !Allowed(actor, t, ActionDelete) {
		return ErrForbidden
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.invalidateLists(ctx); err != nil {
		return err
	}
	if err := s.events.Append(ctx, eventlog.ActionTaskDeleted, actor.ID, map[string]any{
		"taskId": id,
	}); err != nil {
		return err
	}
	s.broadcast.TaskDeleted(id)

	return nil
}

// invalidateLists sweeps every per-actor task-list key. Full-prefix sweep
// rather than targeted eviction: any mutation can change any actor's list.
func (s *Service) invalidateLists(ctx context.Context) error {
	return s.cache.DeletePrefix(ctx, cacheSweepPrefix)
}
