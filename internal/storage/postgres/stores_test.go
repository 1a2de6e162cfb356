package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watch2give-vendor/internal/domain"
	"watch2give-vendor/internal/storage"
)

func TestKVStore_SetGet(t *testing.T) {
	pool := setupTestDB(t)

	ctx := context.Background()
	store := NewKVStore(pool)

	_, err := store.Get(ctx, "vendorStreak")
	assert.True(t, errors.Is(err, storage.ErrNotFound))

	require.NoError(t, store.Set(ctx, "vendorStreak", []byte(`{"count":1}`)))
	require.NoError(t, store.Set(ctx, "vendorStreak", []byte(`{"count":2}`)))

	got, err := store.Get(ctx, "vendorStreak")
	require.NoError(t, err)
	assert.Equal(t, `{"count":2}`, string(got))

	assert.ErrorIs(t, store.Set(ctx, "", []byte("x")), storage.ErrInvalidInput)
}

func TestActionStore_InsertListCount(t *testing.T) {
	pool := setupTestDB(t)

	ctx := context.Background()
	store := NewActionStore(pool)

	for i, at := range []int64{1000, 3000, 2000} {
		err := store.Insert(ctx, &domain.ActionRecord{
			TransactionID: fmt.Sprintf("tx-%d", i),
			Vendor:        "vendorA",
			TokenID:       "GIVE-1",
			Action:        domain.ActionRestock,
			ProofURLs:     []string{"/api/proofs/p1"},
			SubmittedAt:   at,
		})
		require.NoError(t, err)
	}
	require.NoError(t, store.Insert(ctx, &domain.ActionRecord{
		TransactionID: "tx-b", Vendor: "vendorB", TokenID: "GIVE-2", Action: domain.ActionStake, Amount: 5, SubmittedAt: 500,
	}))

	err := store.Insert(ctx, &domain.ActionRecord{
		TransactionID: "tx-0", Vendor: "vendorA", TokenID: "GIVE-1", Action: domain.ActionRedeem, SubmittedAt: 1,
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	list, err := store.ListByVendor(ctx, "vendorA", 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, int64(3000), list[0].SubmittedAt)
	assert.Equal(t, int64(1000), list[2].SubmittedAt)
	assert.Equal(t, []string{"/api/proofs/p1"}, list[0].ProofURLs)

	limited, err := store.ListByVendor(ctx, "vendorA", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	b, err := store.ListByVendor(ctx, "vendorB", 0)
	require.NoError(t, err)
	require.Len(t, b, 1)
	assert.Nil(t, b[0].ProofURLs)
	assert.Equal(t, 5.0, b[0].Amount)

	count, err := store.CountByVendor(ctx, "vendorA")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestNotificationStore(t *testing.T) {
	pool := setupTestDB(t)

	ctx := context.Background()
	store := NewNotificationStore(pool)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Insert(ctx, &domain.Notification{
		ID: "not-1", Sender: "Alice", Amount: decimal.NewFromInt(25),
		USDValue: decimal.RequireFromString("30.00"), Message: "Payment", Timestamp: now.Add(-5 * time.Minute),
	}))
	require.NoError(t, store.Insert(ctx, &domain.Notification{
		ID: "not-2", Sender: "Bob", Amount: decimal.RequireFromString("10.5"),
		USDValue: decimal.RequireFromString("12.6"), Timestamp: now.Add(-30 * time.Minute),
	}))

	err := store.Insert(ctx, &domain.Notification{ID: "not-1", Timestamp: now})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	list, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "not-1", list[0].ID)
	assert.True(t, list[0].USDValue.Equal(decimal.NewFromInt(30)))
	assert.True(t, list[1].Amount.Equal(decimal.RequireFromString("10.5")))
	assert.True(t, list[0].Timestamp.Equal(now.Add(-5*time.Minute)))

	unread, err := store.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, unread)

	require.NoError(t, store.MarkRead(ctx, "not-2"))
	assert.ErrorIs(t, store.MarkRead(ctx, "missing"), storage.ErrNotFound)

	unread, _ = store.UnreadCount(ctx)
	assert.Equal(t, 1, unread)

	require.NoError(t, store.MarkAllRead(ctx))
	unread, _ = store.UnreadCount(ctx)
	assert.Zero(t, unread)
}

func TestProofStore(t *testing.T) {
	pool := setupTestDB(t)

	ctx := context.Background()
	store := NewProofStore(pool)

	p := &domain.Proof{
		ID:          "p1",
		ContentType: "image/png",
		Size:        3,
		URL:         "/api/proofs/p1",
		UploadedAt:  time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
		Data:        []byte{1, 2, 3},
	}
	require.NoError(t, store.Insert(ctx, p))
	assert.ErrorIs(t, store.Insert(ctx, p), storage.ErrDuplicateKey)

	got, err := store.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, p.Data, got.Data)
	assert.Equal(t, p.ContentType, got.ContentType)
	assert.True(t, got.UploadedAt.Equal(p.UploadedAt))

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestConnectWithRetry_BadDSN(t *testing.T) {
	_, err := ConnectWithRetry(context.Background(), "://not a dsn", time.Second)
	assert.Error(t, err)
}
