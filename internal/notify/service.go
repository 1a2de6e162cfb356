package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"watch2give-vendor/internal/domain"
	"watch2give-vendor/internal/storage"
)

// PriceSource quotes the token price used for usdValue.
type PriceSource interface {
	Price(ctx context.Context) (decimal.Decimal, error)
}

// Broadcaster pushes a stored notification to live clients.
type Broadcaster interface {
	Broadcast(n *domain.Notification)
}

// Service manages the vendor's notification feed.
type Service struct {
	store       storage.NotificationStore
	prices      PriceSource
	broadcaster Broadcaster
	now         func() time.Time
	logger      logrus.FieldLogger
}

// Options contains configuration for creating a Service.
type Options struct {
	Store       storage.NotificationStore
	Prices      PriceSource
	Broadcaster Broadcaster // optional
	Now         func() time.Time
	Logger      logrus.FieldLogger
}

// NewService creates a notification service.
func NewService(opts Options) *Service {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Service{
		store:       opts.Store,
		prices:      opts.Prices,
		broadcaster: opts.Broadcaster,
		now:         now,
		logger:      logger.WithField("component", "notify"),
	}
}

// Feed is a page of notifications with the total unread count.
type Feed struct {
	Notifications []*domain.Notification `json:"notifications"`
	UnreadCount   int                    `json:"unreadCount"`
}

// List returns the newest notifications and the unread count.
func (s *Service) List(ctx context.Context, limit int) (*Feed, error) {
	items, err := s.store.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	unread, err := s.store.UnreadCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("count unread: %w", err)
	}
	return &Feed{Notifications: items, UnreadCount: unread}, nil
}

// MarkRead marks one notification as read. Returns storage.ErrNotFound for an unknown id.
func (s *Service) MarkRead(ctx context.Context, id string) error {
	return s.store.MarkRead(ctx, id)
}

// MarkAllRead marks every notification as read.
func (s *Service) MarkAllRead(ctx context.Context) error {
	return s.store.MarkAllRead(ctx)
}

// Receive records an incoming transfer of amount tokens from sender and
// pushes it to connected clients.
func (s *Service) Receive(ctx context.Context, sender string, amount decimal.Decimal, message string) (*domain.Notification, error) {
	usd, err := s.usdValue(ctx, amount)
	if err != nil {
		return nil, err
	}

	n := &domain.Notification{
		ID:        uuid.NewString(),
		Sender:    sender,
		Amount:    amount,
		USDValue:  usd,
		Message:   message,
		Timestamp: s.now().UTC(),
	}
	if err := s.publish(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// Seed inserts the sample transfers shown on a fresh dashboard. Existing
// entries are left alone.
func (s *Service) Seed(ctx context.Context) error {
	now := s.now().UTC()
	samples := []struct {
		id      string
		sender  string
		amount  int64
		message string
		age     time.Duration
	}{
		{"not-1", "Alice", 25, "Payment for community service", 5 * time.Minute},
		{"not-2", "Bob", 10, "Weekly allocation", 30 * time.Minute},
	}

	for _, sm := range samples {
		amount := decimal.NewFromInt(sm.amount)
		usd, err := s.usdValue(ctx, amount)
		if err != nil {
			return err
		}
		err = s.store.Insert(ctx, &domain.Notification{
			ID:        sm.id,
			Sender:    sm.sender,
			Amount:    amount,
			USDValue:  usd,
			Message:   sm.message,
			Timestamp: now.Add(-sm.age),
		})
		if err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			return fmt.Errorf("seed notification %s: %w", sm.id, err)
		}
	}
	return nil
}

func (s *Service) publish(ctx context.Context, n *domain.Notification) error {
	if err := s.store.Insert(ctx, n); err != nil {
		return fmt.Errorf("store notification: %w", err)
	}
	if s.broadcaster != nil {
		s.broadcaster.Broadcast(n)
	}

	s.logger.WithFields(logrus.Fields{
		"id":     n.ID,
		"sender": n.Sender,
		"amount": n.Amount,
	}).Info("notification created")
	return nil
}

func (s *Service) usdValue(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	if s.prices == nil || amount.IsZero() {
		return decimal.Zero, nil
	}
	price, err := s.prices.Price(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("get price: %w", err)
	}
	return amount.Mul(price), nil
}
