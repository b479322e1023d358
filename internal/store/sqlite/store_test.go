package sqlite

import (
	"context"
	"testing"

	"carechat-backend/internal/models"
)

func openTestStore(t *testing.T) *SqliteStore {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(s.Close)
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return s
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestAppendAssignsIncreasingIDs(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first, err := s.AppendMessage(ctx, "u1", models.RoleUser, "hello")
	if err != nil {
		t.Fatalf("append first: %v", err)
	}
	second, err := s.AppendMessage(ctx, "u1", models.RoleAssistant, "hi there")
	if err != nil {
		t.Fatalf("append second: %v", err)
	}
	if second <= first {
		t.Fatalf("expected id %d > %d", second, first)
	}
}

func TestGetHistoryPreservesInsertionOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	contents := []string{"A", "B", "C"}
	for _, c := range contents {
		if _, err := s.AppendMessage(ctx, "u1", models.RoleUser, c); err != nil {
			t.Fatalf("append %q: %v", c, err)
		}
	}
	// Interleave another user to make sure filtering holds.
	if _, err := s.AppendMessage(ctx, "u2", models.RoleUser, "other"); err != nil {
		t.Fatalf("append other user: %v", err)
	}

	history, err := s.GetHistory(ctx, "u1")
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if len(history) != len(contents) {
		t.Fatalf("expected %d messages, got %d", len(contents), len(history))
	}
	for i, m := range history {
		if m.Content != contents[i] {
			t.Fatalf("position %d: expected %q, got %q", i, contents[i], m.Content)
		}
		if m.UserID != "u1" {
			t.Fatalf("unexpected user %q in history", m.UserID)
		}
	}

	// Fetching again with no intervening writes returns the same result.
	again, err := s.GetHistory(ctx, "u1")
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if len(again) != len(history) {
		t.Fatalf("second fetch returned %d messages, expected %d", len(again), len(history))
	}
	for i := range history {
		if again[i] != history[i] {
			t.Fatalf("fetch not stable at position %d", i)
		}
	}
}

func TestGetHistoryUnknownUserReturnsEmptySlice(t *testing.T) {
	s := openTestStore(t)

	history, err := s.GetHistory(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if history == nil {
		t.Fatalf("expected empty slice, got nil")
	}
	if len(history) != 0 {
		t.Fatalf("expected no messages, got %d", len(history))
	}
}
