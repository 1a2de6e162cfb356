// Package queue publishes accepted vendor actions to downstream consumers.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"watch2give-vendor/internal/domain"
	"watch2give-vendor/internal/observability"
)

// Publisher emits action events.
type Publisher interface {
	Publish(ctx context.Context, r *domain.ActionRecord) error
	Close() error
}

// KafkaConfig holds Kafka connection configuration.
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration // Default: 50ms
}

// messageWriter is the subset of *kafka.Writer used by KafkaPublisher.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher implements Publisher using Kafka.
type KafkaPublisher struct {
	writer messageWriter
	now    func() time.Time
}

// NewKafkaPublisher creates a Kafka publisher. Messages are keyed by vendor so
// each vendor's actions stay ordered within a partition.
func NewKafkaPublisher(config KafkaConfig) *KafkaPublisher {
	batchTimeout := config.BatchTimeout
	if batchTimeout == 0 {
		batchTimeout = 50 * time.Millisecond
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(config.Brokers...),
		Topic:                  config.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           batchTimeout,
		AllowAutoTopicCreation: true,
	}

	return &KafkaPublisher{writer: writer, now: time.Now}
}

// Publish sends an action event to Kafka.
func (p *KafkaPublisher) Publish(ctx context.Context, r *domain.ActionRecord) error {
	data, err := json.Marshal(r)
	if err != nil {
		observability.RecordEventPublished("error")
		return fmt.Errorf("marshal action event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(r.Vendor),
		Value: data,
		Time:  p.now(),
	})
	if err != nil {
		observability.RecordEventPublished("error")
		return fmt.Errorf("publish action event: %w", err)
	}

	observability.RecordEventPublished("ok")
	return nil
}

// Close flushes pending messages and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher discards events. Used when no brokers are configured.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, *domain.ActionRecord) error { return nil }

// Close implements Publisher.
func (NopPublisher) Close() error { return nil }

// New returns a KafkaPublisher when brokers are configured, otherwise a NopPublisher.
func New(config KafkaConfig) Publisher {
	if len(config.Brokers) == 0 || config.Topic == "" {
		return NopPublisher{}
	}
	return NewKafkaPublisher(config)
}

// Verify interface compliance at compile time.
var (
	_ Publisher = (*KafkaPublisher)(nil)
	_ Publisher = NopPublisher{}
)
