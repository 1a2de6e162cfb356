package memory

import (
	"context"
	"sort"
	"sync"

	"watch2give-vendor/internal/domain"
	"watch2give-vendor/internal/storage"
)

// ActionStore is an in-memory implementation of storage.ActionStore.
type ActionStore struct {
	mu   sync.RWMutex
	data map[string]*domain.ActionRecord // keyed by transaction_id
}

// NewActionStore creates a new in-memory action store.
func NewActionStore() *ActionStore {
	return &ActionStore{
		data: make(map[string]*domain.ActionRecord),
	}
}

// Insert adds a new record. Returns ErrDuplicateKey if transaction_id exists.
func (s *ActionStore) Insert(_ context.Context, r *domain.ActionRecord) error {
	if r == nil || r.TransactionID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.TransactionID]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[r.TransactionID] = copyRecord(r)
	return nil
}

// ListByVendor retrieves the most recent records of a vendor, newest first.
func (s *ActionStore) ListByVendor(_ context.Context, vendor string, limit int) ([]*domain.ActionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ActionRecord
	for _, r := range s.data {
		if r.Vendor == vendor {
			result = append(result, copyRecord(r))
		}
	}

	// Sort by submitted_at DESC, transaction_id for ties
	sort.Slice(result, func(i, j int) bool {
		if result[i].SubmittedAt != result[j].SubmittedAt {
			return result[i].SubmittedAt > result[j].SubmittedAt
		}
		return result[i].TransactionID < result[j].TransactionID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// CountByVendor returns the number of records of a vendor.
func (s *ActionStore) CountByVendor(_ context.Context, vendor string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, r := range s.data {
		if r.Vendor == vendor {
			n++
		}
	}
	return n, nil
}

func copyRecord(r *domain.ActionRecord) *domain.ActionRecord {
	c := *r
	if r.ProofURLs != nil {
		c.ProofURLs = append([]string(nil), r.ProofURLs...)
	}
	return &c
}

// Verify interface compliance at compile time.
var _ storage.ActionStore = (*ActionStore)(nil)
