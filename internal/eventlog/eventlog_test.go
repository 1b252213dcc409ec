package eventlog

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestAppendAssignsTimestampAndID(t *testing.T) {
	log := New(NewInMemory())
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	log.now = func() time.Time { return fixed }

	ctx := context.Background()
	if err := log.Append(ctx, ActionTaskCreated, "u1", map[string]any{"taskId": "t1"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	entries, err := log.Query(ctx, "", 0)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries", len(entries))
	}
	e := entries[0]
	if e.ID == "" {
		t.Fatal("entry id not assigned")
	}
	if !e.Timestamp.Equal(fixed) {
		t.Fatalf("timestamp = %s, want %s", e.Timestamp, fixed)
	}
	if e.Action != ActionTaskCreated || e.UserID != "u1" {
		t.Fatalf("entry = %+v", e)
	}
}

func TestAppendRejectsEmptyAction(t *testing.T) {
	log := New(NewInMemory())
	if err := log.Append(context.Background(), " ", "u1", nil); err == nil {
		t.Fatal("expected error for empty action")
	}
}

func TestQueryNewestFirstAndFiltered(t *testing.T) {
	log := New(NewInMemory())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		userID := "u1"
		if i%2 == 1 {
			userID = "u2"
		}
		details := map[string]any{"seq": i}
		if err := log.Append(ctx, ActionTaskUpdated, userID, details); err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
	}

	all, err := log.Query(ctx, "", 0)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("got %d entries, want 5", len(all))
	}
	if all[0].Details["seq"] != 4 {
		t.Fatalf("newest entry first: got seq %v", all[0].Details["seq"])
	}

	filtered, err := log.Query(ctx, "u2", 0)
	if err != nil {
		t.Fatalf("Query u2: %v", err)
	}
	if len(filtered) != 2 {
		t.Fatalf("got %d entries for u2, want 2", len(filtered))
	}
	for _, e := range filtered {
		if e.UserID != "u2" {
			t.Fatalf("foreign entry in filtered result: %+v", e)
		}
	}
}

func TestQueryLimit(t *testing.T) {
	log := New(NewInMemory())
	ctx := context.Background()
	for i := 0; i < 120; i++ {
		if err := log.Append(ctx, ActionTaskUpdated, "u1", map[string]any{"i": fmt.Sprint(i)}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	defaulted, err := log.Query(ctx, "", 0)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(defaulted) != 100 {
		t.Fatalf("default limit: got %d, want 100", len(defaulted))
	}

	limited, err := log.Query(ctx, "", 3)
	if err != nil {
		t.Fatalf("Query limit 3: %v", err)
	}
	if len(limited) != 3 {
		t.Fatalf("got %d, want 3", len(limited))
	}
}
