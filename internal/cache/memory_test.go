package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if err := m.Set(ctx, "tasks:u1", []byte(`[1,2]`), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := m.Get(ctx, "tasks:u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != `[1,2]` {
		t.Fatalf("Get = %q", got)
	}

	// Mutating the returned slice must not affect the stored copy.
	got[0] = 'x'
	again, err := m.Get(ctx, "tasks:u1")
	if err != nil || string(again) != `[1,2]` {
		t.Fatalf("stored value mutated: %q, err=%v", again, err)
	}
}

func TestMemoryMiss(t *testing.T) {
	m := NewMemory()
	if _, err := m.Get(context.Background(), "absent"); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected ErrMiss, got %v", err)
	}
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	current := time.Now()
	m.now = func() time.Time { return current }

	if err := m.Set(ctx, "tasks:u1", []byte("v"), 5*time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := m.Get(ctx, "tasks:u1"); err != nil {
		t.Fatalf("fresh entry should hit: %v", err)
	}

	current = current.Add(5*time.Minute + time.Second)
	if _, err := m.Get(ctx, "tasks:u1"); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected ErrMiss after TTL, got %v", err)
	}
	if m.Len() != 0 {
		t.Fatalf("expired entry not dropped, len=%d", m.Len())
	}
}

func TestMemoryDeletePrefix(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	for _, key := range []string{"tasks:u1", "tasks:u2", "sessions:u1"} {
		if err := m.Set(ctx, key, []byte("v"), time.Minute); err != nil {
			t.Fatalf("Set %s: %v", key, err)
		}
	}

	if err := m.DeletePrefix(ctx, "tasks"); err != nil {
		t.Fatalf("DeletePrefix: %v", err)
	}

	if _, err := m.Get(ctx, "tasks:u1"); !errors.Is(err, ErrMiss) {
		t.Fatal("tasks:u1 should be swept")
	}
	if _, err := m.Get(ctx, "tasks:u2"); !errors.Is(err, ErrMiss) {
		t.Fatal("tasks:u2 should be swept")
	}
	if _, err := m.Get(ctx, "sessions:u1"); err != nil {
		t.Fatalf("sessions:u1 should survive the sweep: %v", err)
	}
}
