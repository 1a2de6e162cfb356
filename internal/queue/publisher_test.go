package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watch2give-vendor/internal/domain"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &recordingWriter{}
	at := time.Unix(1704067200, 0)
	p := &KafkaPublisher{writer: w, now: func() time.Time { return at }}

	rec := &domain.ActionRecord{
		TransactionID: "tx-abc",
		Vendor:        "vendorA",
		TokenID:       "GIVE-1",
		Action:        domain.ActionStake,
		Amount:        10,
		SubmittedAt:   1704067200000,
	}
	require.NoError(t, p.Publish(context.Background(), rec))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "vendorA", string(msg.Key))
	assert.Equal(t, at, msg.Time)

	var got domain.ActionRecord
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, *rec, got)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	boom := errors.New("broker unavailable")
	p := &KafkaPublisher{writer: &recordingWriter{err: boom}, now: time.Now}

	err := p.Publish(context.Background(), &domain.ActionRecord{TransactionID: "tx-1"})
	assert.ErrorIs(t, err, boom)
}

func TestNew(t *testing.T) {
	_, ok := New(KafkaConfig{}).(NopPublisher)
	assert.True(t, ok, "expected NopPublisher without brokers")

	pub := New(KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "vendor-actions"})
	_, ok = pub.(*KafkaPublisher)
	assert.True(t, ok, "expected KafkaPublisher with brokers")
	assert.NoError(t, pub.Close())
}
