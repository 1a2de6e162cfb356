package proofs

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watch2give-vendor/internal/storage"
	"watch2give-vendor/internal/storage/memory"
)

func dataURI(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func newTestService(maxBytes int) *Service {
	return NewService(Options{
		Store:    memory.NewProofStore(),
		MaxBytes: maxBytes,
		Now:      func() time.Time { return time.Unix(1704067200, 0) },
	})
}

func TestUpload_StoresAndServes(t *testing.T) {
	svc := newTestService(0)
	ctx := context.Background()
	img := []byte{0x89, 'P', 'N', 'G', 1, 2, 3}

	p, err := svc.Upload(ctx, dataURI("image/png", img))
	require.NoError(t, err)

	assert.Equal(t, "image/png", p.ContentType)
	assert.Equal(t, len(img), p.Size)
	assert.Equal(t, URLPrefix+p.ID, p.URL)
	assert.True(t, strings.HasPrefix(p.URL, "/api/proofs/"))

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, img, got.Data)
}

func TestUpload_Rejects(t *testing.T) {
	svc := newTestService(8)

	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"no scheme", "image/png;base64,AAAA", ErrMalformed},
		{"no comma", "data:image/png;base64", ErrMalformed},
		{"not base64 encoded", "data:image/png,rawbytes", ErrMalformed},
		{"bad base64", "data:image/png;base64,!!!!", ErrMalformed},
		{"empty", "data:image/png;base64,", ErrMalformed},
		{"gif", dataURI("image/gif", []byte("GIF89a")), ErrUnsupportedType},
		{"text", dataURI("text/plain", []byte("hi")), ErrUnsupportedType},
		{"too large", dataURI("image/jpeg", make([]byte, 9)), ErrTooLarge},
		{"far too large", dataURI("image/jpeg", make([]byte, 1024)), ErrTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Upload(context.Background(), tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUpload_AcceptsAtLimit(t *testing.T) {
	svc := newTestService(8)

	_, err := svc.Upload(context.Background(), dataURI("image/webp", make([]byte, 8)))
	assert.NoError(t, err)
}

func TestGet_NotFound(t *testing.T) {
	svc := newTestService(0)

	_, err := svc.Get(context.Background(), "missing")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}
