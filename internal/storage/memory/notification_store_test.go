package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"watch2give-vendor/internal/domain"
	"watch2give-vendor/internal/storage"
)

func TestNotificationStore_ListNewestFirst(t *testing.T) {
	store := NewNotificationStore()
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"not-1", "not-2", "not-3"} {
		n := &domain.Notification{
			ID:        id,
			Sender:    "Alice",
			Amount:    decimal.NewFromInt(int64(i + 1)),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.Insert(ctx, n); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	got, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3, got %d", len(got))
	}
	if got[0].ID != "not-3" || got[2].ID != "not-1" {
		t.Errorf("unexpected order: %s, %s, %s", got[0].ID, got[1].ID, got[2].ID)
	}

	limited, _ := store.List(ctx, 1)
	if len(limited) != 1 || limited[0].ID != "not-3" {
		t.Errorf("unexpected limited list: %v", limited)
	}
}

func TestNotificationStore_MarkRead(t *testing.T) {
	store := NewNotificationStore()
	ctx := context.Background()

	_ = store.Insert(ctx, &domain.Notification{ID: "a", Timestamp: time.Now()})
	_ = store.Insert(ctx, &domain.Notification{ID: "b", Timestamp: time.Now()})

	unread, _ := store.UnreadCount(ctx)
	if unread != 2 {
		t.Fatalf("expected 2 unread, got %d", unread)
	}

	if err := store.MarkRead(ctx, "a"); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	unread, _ = store.UnreadCount(ctx)
	if unread != 1 {
		t.Errorf("expected 1 unread, got %d", unread)
	}

	if err := store.MarkRead(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	if err := store.MarkAllRead(ctx); err != nil {
		t.Fatalf("MarkAllRead failed: %v", err)
	}
	unread, _ = store.UnreadCount(ctx)
	if unread != 0 {
		t.Errorf("expected 0 unread, got %d", unread)
	}
}

func TestNotificationStore_DuplicateKey(t *testing.T) {
	store := NewNotificationStore()
	ctx := context.Background()

	n := &domain.Notification{ID: "a", Timestamp: time.Now()}
	_ = store.Insert(ctx, n)

	if err := store.Insert(ctx, n); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}
