package postgres

import (
	"context"
	"fmt"
	"time"

	"watch2give-vendor/internal/storage"
)

// KVStore implements storage.KVStore using PostgreSQL.
type KVStore struct {
	pool *Pool
}

// NewKVStore creates a new KVStore.
func NewKVStore(pool *Pool) *KVStore {
	return &KVStore{pool: pool}
}

// Compile-time interface check.
var _ storage.KVStore = (*KVStore)(nil)

// Get returns the value stored under key. Returns ErrNotFound if absent.
func (s *KVStore) Get(ctx context.Context, key string) (_ []byte, err error) {
	defer func(start time.Time) { observe("kv_get", start, err) }(time.Now())

	var value []byte
	err = s.pool.QueryRow(ctx, `SELECT value FROM client_state WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get client state: %w", err)
	}
	return value, nil
}

// Set stores value under key, overwriting any previous value.
func (s *KVStore) Set(ctx context.Context, key string, value []byte) (err error) {
	defer func(start time.Time) { observe("kv_set", start, err) }(time.Now())

	if key == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO client_state (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
	`
	if _, err = s.pool.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("set client state: %w", err)
	}
	return nil
}
