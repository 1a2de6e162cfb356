package memory

import (
	"context"
	"sync"

	"watch2give-vendor/internal/domain"
	"watch2give-vendor/internal/storage"
)

// ProofStore is an in-memory implementation of storage.ProofStore.
type ProofStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Proof
}

// NewProofStore creates a new in-memory proof store.
func NewProofStore() *ProofStore {
	return &ProofStore{
		data: make(map[string]*domain.Proof),
	}
}

// Insert adds a proof. Returns ErrDuplicateKey if id exists.
func (s *ProofStore) Insert(_ context.Context, p *domain.Proof) error {
	if p == nil || p.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[p.ID]; exists {
		return storage.ErrDuplicateKey
	}

	pCopy := *p
	pCopy.Data = append([]byte(nil), p.Data...)
	s.data[p.ID] = &pCopy
	return nil
}

// Get retrieves a proof with its content. Returns ErrNotFound if not exists.
func (s *ProofStore) Get(_ context.Context, id string) (*domain.Proof, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.data[id]
	if !ok {
		return nil, storage.ErrNotFound
	}

	pCopy := *p
	pCopy.Data = append([]byte(nil), p.Data...)
	return &pCopy, nil
}

// Verify interface compliance at compile time.
var _ storage.ProofStore = (*ProofStore)(nil)
