package stream

import (
	"context"
	"sync"
	"time"

	"taskhub.org/internal/obs"
	"taskhub.org/internal/task"
)

// Event types pushed to realtime clients.
const (
	EventTaskUpdated = "taskUpdated"
	EventTaskDeleted = "taskDeleted"
)

// Event is a single realtime notification. Task is set for taskUpdated,
// TaskID for taskDeleted.
type Event struct {
	Type      string     `json:"type"`
	Task      *task.Task `json:"task,omitempty"`
	TaskID    string     `json:"taskId,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// Stream fan-outs task events to all active subscribers (SSE clients).
type Stream struct {
	mu   sync.RWMutex
	subs map[int]chan Event
	next int
}

var _ task.Broadcaster = (*Stream)(nil)

// New initialises an empty stream.
func New() *Stream {
	return &Stream{subs: make(map[int]chan Event)}
}

// Subscribe registers a subscriber and returns a channel which will receive
// events. The channel is closed when the provided context ends.
func (s *Stream) Subscribe(ctx context.Context) <-chan Event {
	ch := make(chan Event, 16)

	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = ch
	s.mu.Unlock()
	obs.StreamSubscriberAdd(1)
	obs.LogEvent("stream.subscribed", map[string]any{"subscriber": id})

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, id)
		close(ch)
		s.mu.Unlock()
		obs.StreamSubscriberAdd(-1)
		obs.LogEvent("stream.unsubscribed", map[string]any{"subscriber": id})
	}()

	return ch
}

// Publish fan-outs the event to all subscribers.
func (s *Stream) Publish(evt Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- evt:
		default:
			// Drop when subscriber is slow to avoid blocking.
		}
	}
}

// TaskUpdated broadcasts a created, updated or reassigned task.
func (s *Stream) TaskUpdated(t task.Task) {
	s.Publish(Event{
		Type:      EventTaskUpdated,
		Task:      &t,
		Timestamp: time.Now().UTC(),
	})
}

// TaskDeleted broadcasts a deletion by task id.
func (s *Stream) TaskDeleted(taskID string) {
	s.Publish(Event{
		Type:      EventTaskDeleted,
		TaskID:    taskID,
		Timestamp: time.Now().UTC(),
	})
}
