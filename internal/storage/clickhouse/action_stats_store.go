package clickhouse

import (
	"context"
	"fmt"
	"time"

	"watch2give-vendor/internal/domain"
	"watch2give-vendor/internal/idhash"
	"watch2give-vendor/internal/storage"
)

// ActionStatsStore implements storage.ActionStatsStore using ClickHouse.
type ActionStatsStore struct {
	conn *Conn
}

// NewActionStatsStore creates a new ActionStatsStore.
func NewActionStatsStore(conn *Conn) *ActionStatsStore {
	return &ActionStatsStore{conn: conn}
}

// Compile-time interface check.
var _ storage.ActionStatsStore = (*ActionStatsStore)(nil)

// InsertEvent appends an action event. Re-inserting the same transaction is
// collapsed by the ReplacingMergeTree engine.
func (s *ActionStatsStore) InsertEvent(ctx context.Context, r *domain.ActionRecord) (err error) {
	defer func(start time.Time) { observe("action_event_insert", start, err) }(time.Now())

	if r == nil || r.TransactionID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO action_events (
			event_id, transaction_id, vendor, token_id, action, amount, submitted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	err = s.conn.Exec(ctx, query,
		idhash.ComputeEventID(r.TransactionID, r.Action),
		r.TransactionID,
		r.Vendor,
		r.TokenID,
		string(r.Action),
		r.Amount,
		time.UnixMilli(r.SubmittedAt).UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert action event: %w", err)
	}
	return nil
}

// CountsByAction returns per-action counts for a vendor, ordered by action name.
func (s *ActionStatsStore) CountsByAction(ctx context.Context, vendor string) (_ []domain.ActionCount, err error) {
	defer func(start time.Time) { observe("action_event_counts", start, err) }(time.Now())

	query := `
		SELECT action, count() AS cnt
		FROM action_events FINAL
		WHERE vendor = ?
		GROUP BY action
		ORDER BY action ASC
	`
	rows, err := s.conn.Query(ctx, query, vendor)
	if err != nil {
		return nil, fmt.Errorf("query action counts: %w", err)
	}
	defer rows.Close()

	var result []domain.ActionCount
	for rows.Next() {
		var action string
		var count uint64
		if err := rows.Scan(&action, &count); err != nil {
			return nil, fmt.Errorf("scan action count: %w", err)
		}
		result = append(result, domain.ActionCount{
			Action: domain.ActionType(action),
			Count:  int64(count),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate action counts: %w", err)
	}
	return result, nil
}
