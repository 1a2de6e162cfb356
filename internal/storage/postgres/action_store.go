package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"watch2give-vendor/internal/domain"
	"watch2give-vendor/internal/storage"
)

// ActionStore implements storage.ActionStore using PostgreSQL.
type ActionStore struct {
	pool *Pool
}

// NewActionStore creates a new ActionStore.
func NewActionStore(pool *Pool) *ActionStore {
	return &ActionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ActionStore = (*ActionStore)(nil)

// Insert adds a new record. Returns ErrDuplicateKey if transaction_id exists.
func (s *ActionStore) Insert(ctx context.Context, r *domain.ActionRecord) (err error) {
	defer func(start time.Time) { observe("action_insert", start, err) }(time.Now())

	query := `
		INSERT INTO action_records (
			transaction_id, vendor, token_id, action, amount, proof_urls, submitted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	proofURLs := r.ProofURLs
	if proofURLs == nil {
		proofURLs = []string{}
	}

	_, err = s.pool.Exec(ctx, query,
		r.TransactionID, r.Vendor, r.TokenID, string(r.Action), r.Amount, proofURLs, r.SubmittedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert action record: %w", err)
	}
	return nil
}

// ListByVendor retrieves the most recent records of a vendor, newest first.
func (s *ActionStore) ListByVendor(ctx context.Context, vendor string, limit int) (_ []*domain.ActionRecord, err error) {
	defer func(start time.Time) { observe("action_list", start, err) }(time.Now())

	query := `
		SELECT transaction_id, vendor, token_id, action, amount, proof_urls, submitted_at
		FROM action_records
		WHERE vendor = $1
		ORDER BY submitted_at DESC, transaction_id ASC
	`
	args := []any{vendor}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query action records: %w", err)
	}
	defer rows.Close()

	return scanActionRecords(rows)
}

// CountByVendor returns the number of records of a vendor.
func (s *ActionStore) CountByVendor(ctx context.Context, vendor string) (_ int64, err error) {
	defer func(start time.Time) { observe("action_count", start, err) }(time.Now())

	var count int64
	err = s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM action_records WHERE vendor = $1`, vendor).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count action records: %w", err)
	}
	return count, nil
}

// scanActionRecords scans multiple rows into ActionRecord slice.
func scanActionRecords(rows pgx.Rows) ([]*domain.ActionRecord, error) {
	var result []*domain.ActionRecord
	for rows.Next() {
		var r domain.ActionRecord
		var action string
		err := rows.Scan(
			&r.TransactionID, &r.Vendor, &r.TokenID, &action, &r.Amount, &r.ProofURLs, &r.SubmittedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan action record: %w", err)
		}
		r.Action = domain.ActionType(action)
		if len(r.ProofURLs) == 0 {
			r.ProofURLs = nil
		}
		result = append(result, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate action records: %w", err)
	}
	return result, nil
}
