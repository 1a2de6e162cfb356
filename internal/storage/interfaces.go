package storage

import (
	"context"

	"watch2give-vendor/internal/domain"
)

// KVStore is a key-value surface for small client-state records such as the
// vendor streak.
type KVStore interface {
	// Get returns the value stored under key. Returns ErrNotFound if absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key string, value []byte) error
}

// ActionStore provides access to action_records storage.
type ActionStore interface {
	// Insert adds a new record. Returns ErrDuplicateKey if transaction_id exists.
	Insert(ctx context.Context, r *domain.ActionRecord) error

	// ListByVendor retrieves the most recent records of a vendor, newest first.
	// A limit <= 0 returns all records.
	ListByVendor(ctx context.Context, vendor string, limit int) ([]*domain.ActionRecord, error)

	// CountByVendor returns the number of records of a vendor.
	CountByVendor(ctx context.Context, vendor string) (int64, error)
}

// ActionStatsStore provides access to action_events analytics storage.
type ActionStatsStore interface {
	// InsertEvent appends an action event.
	InsertEvent(ctx context.Context, r *domain.ActionRecord) error

	// CountsByAction returns per-action counts for a vendor, ordered by action name.
	CountsByAction(ctx context.Context, vendor string) ([]domain.ActionCount, error)
}

// NotificationStore provides access to notifications storage.
type NotificationStore interface {
	// Insert adds a notification. Returns ErrDuplicateKey if id exists.
	Insert(ctx context.Context, n *domain.Notification) error

	// List retrieves notifications newest first. A limit <= 0 returns all.
	List(ctx context.Context, limit int) ([]*domain.Notification, error)

	// MarkRead marks one notification as read. Returns ErrNotFound if not exists.
	MarkRead(ctx context.Context, id string) error

	// MarkAllRead marks every notification as read.
	MarkAllRead(ctx context.Context) error

	// UnreadCount returns the number of unread notifications.
	UnreadCount(ctx context.Context) (int, error)
}

// ProofStore provides access to uploaded photo proofs.
type ProofStore interface {
	// Insert adds a proof. Returns ErrDuplicateKey if id exists.
	Insert(ctx context.Context, p *domain.Proof) error

	// Get retrieves a proof with its content. Returns ErrNotFound if not exists.
	Get(ctx context.Context, id string) (*domain.Proof, error)
}
