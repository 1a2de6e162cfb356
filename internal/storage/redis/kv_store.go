// Package redis implements storage.KVStore on Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	goredis "github.com/redis/go-redis/v9"

	"watch2give-vendor/internal/observability"
	"watch2give-vendor/internal/storage"
)

// KeyPrefix namespaces every key written by KVStore.
const KeyPrefix = "watch2give:"

// KVStore implements storage.KVStore using Redis string values.
type KVStore struct {
	client goredis.Cmdable
	prefix string
}

// NewKVStore creates a KVStore over client. Keys are stored under KeyPrefix.
func NewKVStore(client goredis.Cmdable) *KVStore {
	return &KVStore{client: client, prefix: KeyPrefix}
}

// NewClient creates a Redis client and pings it with exponential backoff
// until it answers or maxElapsed passes.
func NewClient(ctx context.Context, addr, password string, db int, maxElapsed time.Duration) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = maxElapsed

	err := backoff.Retry(func() error {
		return client.Ping(ctx).Err()
	}, backoff.WithContext(b, ctx))
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Compile-time interface check.
var _ storage.KVStore = (*KVStore)(nil)

// Get returns the value stored under key. Returns ErrNotFound if absent.
func (s *KVStore) Get(ctx context.Context, key string) (_ []byte, err error) {
	defer func(start time.Time) { observe("kv_get", start, err) }(time.Now())

	value, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, nil
}

// Set stores value under key without expiry, overwriting any previous value.
func (s *KVStore) Set(ctx context.Context, key string, value []byte) (err error) {
	defer func(start time.Time) { observe("kv_set", start, err) }(time.Now())

	if key == "" {
		return storage.ErrInvalidInput
	}
	if err = s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func observe(operation string, start time.Time, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		err = nil
	}
	observability.RecordDBQuery("redis", operation, time.Since(start).Seconds(), err)
}
