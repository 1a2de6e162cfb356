package postgres

import (
	"context"
	"fmt"
	"time"

	"watch2give-vendor/internal/domain"
	"watch2give-vendor/internal/storage"
)

// ProofStore implements storage.ProofStore using PostgreSQL.
type ProofStore struct {
	pool *Pool
}

// NewProofStore creates a new ProofStore.
func NewProofStore(pool *Pool) *ProofStore {
	return &ProofStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ProofStore = (*ProofStore)(nil)

// Insert adds a proof. Returns ErrDuplicateKey if id exists.
func (s *ProofStore) Insert(ctx context.Context, p *domain.Proof) (err error) {
	defer func(start time.Time) { observe("proof_insert", start, err) }(time.Now())

	query := `
		INSERT INTO proofs (id, content_type, size, url, uploaded_at, data)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = s.pool.Exec(ctx, query, p.ID, p.ContentType, p.Size, p.URL, p.UploadedAt, p.Data)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert proof: %w", err)
	}
	return nil
}

// Get retrieves a proof with its content. Returns ErrNotFound if not exists.
func (s *ProofStore) Get(ctx context.Context, id string) (_ *domain.Proof, err error) {
	defer func(start time.Time) { observe("proof_get", start, err) }(time.Now())

	query := `
		SELECT id, content_type, size, url, uploaded_at, data
		FROM proofs
		WHERE id = $1
	`
	var p domain.Proof
	err = s.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.ContentType, &p.Size, &p.URL, &p.UploadedAt, &p.Data)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get proof: %w", err)
	}
	p.UploadedAt = p.UploadedAt.UTC()
	return &p, nil
}
