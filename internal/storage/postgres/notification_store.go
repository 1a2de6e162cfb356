package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"watch2give-vendor/internal/domain"
	"watch2give-vendor/internal/storage"
)

// NotificationStore implements storage.NotificationStore using PostgreSQL.
// Amounts are exchanged as numeric text to keep full decimal precision.
type NotificationStore struct {
	pool *Pool
}

// NewNotificationStore creates a new NotificationStore.
func NewNotificationStore(pool *Pool) *NotificationStore {
	return &NotificationStore{pool: pool}
}

// Compile-time interface check.
var _ storage.NotificationStore = (*NotificationStore)(nil)

// Insert adds a notification. Returns ErrDuplicateKey if id exists.
func (s *NotificationStore) Insert(ctx context.Context, n *domain.Notification) (err error) {
	defer func(start time.Time) { observe("notification_insert", start, err) }(time.Now())

	query := `
		INSERT INTO notifications (id, sender, amount, usd_value, message, created_at, read)
		VALUES ($1, $2, $3::numeric, $4::numeric, $5, $6, $7)
	`
	_, err = s.pool.Exec(ctx, query,
		n.ID, n.Sender, n.Amount.String(), n.USDValue.String(), n.Message, n.Timestamp, n.Read,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// List retrieves notifications newest first. A limit <= 0 returns all.
func (s *NotificationStore) List(ctx context.Context, limit int) (_ []*domain.Notification, err error) {
	defer func(start time.Time) { observe("notification_list", start, err) }(time.Now())

	query := `
		SELECT id, sender, amount::text, usd_value::text, message, created_at, read
		FROM notifications
		ORDER BY created_at DESC, id ASC
	`
	var args []any
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	return scanNotifications(rows)
}

// MarkRead marks one notification as read. Returns ErrNotFound if not exists.
func (s *NotificationStore) MarkRead(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { observe("notification_mark_read", start, err) }(time.Now())

	tag, err := s.pool.Exec(ctx, `UPDATE notifications SET read = true WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// MarkAllRead marks every notification as read.
func (s *NotificationStore) MarkAllRead(ctx context.Context) (err error) {
	defer func(start time.Time) { observe("notification_mark_all_read", start, err) }(time.Now())

	if _, err = s.pool.Exec(ctx, `UPDATE notifications SET read = true WHERE NOT read`); err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}

// UnreadCount returns the number of unread notifications.
func (s *NotificationStore) UnreadCount(ctx context.Context) (_ int, err error) {
	defer func(start time.Time) { observe("notification_unread_count", start, err) }(time.Now())

	var count int
	if err = s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE NOT read`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

// scanNotifications scans multiple rows into Notification slice.
func scanNotifications(rows pgx.Rows) ([]*domain.Notification, error) {
	var result []*domain.Notification
	for rows.Next() {
		var n domain.Notification
		var amount, usd string
		if err := rows.Scan(&n.ID, &n.Sender, &amount, &usd, &n.Message, &n.Timestamp, &n.Read); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}

		var err error
		if n.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse amount of %s: %w", n.ID, err)
		}
		if n.USDValue, err = decimal.NewFromString(usd); err != nil {
			return nil, fmt.Errorf("parse usd value of %s: %w", n.ID, err)
		}
		n.Timestamp = n.Timestamp.UTC()
		result = append(result, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return result, nil
}
