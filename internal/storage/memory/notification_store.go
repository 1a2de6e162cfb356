package memory

import (
	"context"
	"sort"
	"sync"

	"watch2give-vendor/internal/domain"
	"watch2give-vendor/internal/storage"
)

// NotificationStore is an in-memory implementation of storage.NotificationStore.
type NotificationStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Notification // keyed by id
}

// NewNotificationStore creates a new in-memory notification store.
func NewNotificationStore() *NotificationStore {
	return &NotificationStore{
		data: make(map[string]*domain.Notification),
	}
}

// Insert adds a notification. Returns ErrDuplicateKey if id exists.
func (s *NotificationStore) Insert(_ context.Context, n *domain.Notification) error {
	if n == nil || n.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[n.ID]; exists {
		return storage.ErrDuplicateKey
	}

	nCopy := *n
	s.data[n.ID] = &nCopy
	return nil
}

// List retrieves notifications newest first.
func (s *NotificationStore) List(_ context.Context, limit int) ([]*domain.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Notification, 0, len(s.data))
	for _, n := range s.data {
		nCopy := *n
		result = append(result, &nCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].Timestamp.Equal(result[j].Timestamp) {
			return result[i].Timestamp.After(result[j].Timestamp)
		}
		return result[i].ID < result[j].ID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// MarkRead marks one notification as read. Returns ErrNotFound if not exists.
func (s *NotificationStore) MarkRead(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.data[id]
	if !ok {
		return storage.ErrNotFound
	}
	n.Read = true
	return nil
}

// MarkAllRead marks every notification as read.
func (s *NotificationStore) MarkAllRead(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range s.data {
		n.Read = true
	}
	return nil
}

// UnreadCount returns the number of unread notifications.
func (s *NotificationStore) UnreadCount(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.data {
		if !n.Read {
			count++
		}
	}
	return count, nil
}

// Verify interface compliance at compile time.
var _ storage.NotificationStore = (*NotificationStore)(nil)
