package memory

import (
	"context"
	"sort"
	"sync"

	"watch2give-vendor/internal/domain"
	"watch2give-vendor/internal/storage"
)

// ActionStatsStore is an in-memory implementation of storage.ActionStatsStore.
type ActionStatsStore struct {
	mu     sync.RWMutex
	counts map[string]map[domain.ActionType]int64 // vendor -> action -> count
}

// NewActionStatsStore creates a new in-memory action stats store.
func NewActionStatsStore() *ActionStatsStore {
	return &ActionStatsStore{
		counts: make(map[string]map[domain.ActionType]int64),
	}
}

// InsertEvent appends an action event.
func (s *ActionStatsStore) InsertEvent(_ context.Context, r *domain.ActionRecord) error {
	if r == nil || r.Action == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	byAction, ok := s.counts[r.Vendor]
	if !ok {
		byAction = make(map[domain.ActionType]int64)
		s.counts[r.Vendor] = byAction
	}
	byAction[r.Action]++
	return nil
}

// CountsByAction returns per-action counts for a vendor, ordered by action name.
func (s *ActionStatsStore) CountsByAction(_ context.Context, vendor string) ([]domain.ActionCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.ActionCount, 0, len(s.counts[vendor]))
	for action, n := range s.counts[vendor] {
		result = append(result, domain.ActionCount{Action: action, Count: n})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Action < result[j].Action
	})
	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.ActionStatsStore = (*ActionStatsStore)(nil)
