// Package proofs stores photo proofs of delivery uploaded with restock actions.
package proofs

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"watch2give-vendor/internal/domain"
	"watch2give-vendor/internal/observability"
	"watch2give-vendor/internal/storage"
)

// Upload errors.
var (
	ErrMalformed       = errors.New("malformed image data")
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrTooLarge        = errors.New("image too large")
)

// DefaultMaxBytes bounds the decoded size of one image.
const DefaultMaxBytes = 5 << 20

// URLPrefix is the path under which stored proofs are served.
const URLPrefix = "/api/proofs/"

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// Service validates and stores uploaded proofs.
type Service struct {
	store    storage.ProofStore
	maxBytes int
	now      func() time.Time
	logger   logrus.FieldLogger
}

// Options contains configuration for creating a Service.
type Options struct {
	Store    storage.ProofStore
	MaxBytes int // Default: DefaultMaxBytes
	Now      func() time.Time
	Logger   logrus.FieldLogger
}

// NewService creates a proof service.
func NewService(opts Options) *Service {
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Service{
		store:    opts.Store,
		maxBytes: maxBytes,
		now:      now,
		logger:   logger.WithField("component", "proofs"),
	}
}

// MaxBytes returns the decoded size limit of one image.
func (s *Service) MaxBytes() int {
	return s.maxBytes
}

// Upload decodes a data URI ("data:image/png;base64,...") and stores it.
func (s *Service) Upload(ctx context.Context, dataURI string) (*domain.Proof, error) {
	p, err := s.upload(ctx, dataURI)
	if err != nil {
		observability.RecordProofUpload("error")
		return nil, err
	}
	observability.RecordProofUpload("ok")
	return p, nil
}

func (s *Service) upload(ctx context.Context, dataURI string) (*domain.Proof, error) {
	contentType, data, err := s.decode(dataURI)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	p := &domain.Proof{
		ID:          id,
		ContentType: contentType,
		Size:        len(data),
		URL:         URLPrefix + id,
		UploadedAt:  s.now().UTC(),
		Data:        data,
	}
	if err := s.store.Insert(ctx, p); err != nil {
		return nil, fmt.Errorf("store proof: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"id":           id,
		"content_type": contentType,
		"size":         len(data),
	}).Info("stored proof")
	return p, nil
}

// Get returns a stored proof with its content.
func (s *Service) Get(ctx context.Context, id string) (*domain.Proof, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) decode(dataURI string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(dataURI, "data:")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing data: scheme", ErrMalformed)
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing payload", ErrMalformed)
	}
	contentType, ok := strings.CutSuffix(header, ";base64")
	if !ok {
		return "", nil, fmt.Errorf("%w: payload must be base64", ErrMalformed)
	}
	contentType = strings.ToLower(contentType)
	if !allowedTypes[contentType] {
		return "", nil, fmt.Errorf("%w: %q", ErrUnsupportedType, contentType)
	}

	if base64.StdEncoding.DecodedLen(len(payload)) > s.maxBytes+2 {
		return "", nil, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, s.maxBytes)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(data) == 0 {
		return "", nil, fmt.Errorf("%w: empty image", ErrMalformed)
	}
	if len(data) > s.maxBytes {
		return "", nil, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, s.maxBytes)
	}
	return contentType, data, nil
}
