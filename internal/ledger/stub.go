package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"watch2give-vendor/internal/domain"
)

// Stub defaults.
var (
	DefaultPrice          = decimal.RequireFromString("1.2")
	DefaultInitialBalance = decimal.NewFromInt(125)
)

const (
	defaultHoldingScore = 68
	defaultHoldingDays  = 30
)

// Stub is an in-memory Ledger for development and tests.
type Stub struct {
	mu       sync.RWMutex
	balances map[string]*domain.TokenBalance
	price    decimal.Decimal
	now      func() time.Time
	logger   logrus.FieldLogger
}

// StubOptions contains configuration for creating a Stub.
type StubOptions struct {
	// Accounts are seeded with InitialBalance free tokens.
	Accounts       []string
	InitialBalance decimal.Decimal // Default: 125
	Price          decimal.Decimal // Default: 1.2
	Now            func() time.Time
	Logger         logrus.FieldLogger
}

// NewStub creates a stub ledger.
func NewStub(opts StubOptions) *Stub {
	initial := opts.InitialBalance
	if initial.IsZero() {
		initial = DefaultInitialBalance
	}
	price := opts.Price
	if price.IsZero() {
		price = DefaultPrice
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	s := &Stub{
		balances: make(map[string]*domain.TokenBalance),
		price:    price,
		now:      now,
		logger:   logger.WithField("component", "ledger"),
	}
	for _, addr := range opts.Accounts {
		s.balances[addr] = &domain.TokenBalance{Free: initial}
	}
	return s
}

// Balance returns the balance of address. Unknown accounts have zero balance.
func (s *Stub) Balance(_ context.Context, address string) (domain.TokenBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if b, ok := s.balances[address]; ok {
		return *b, nil
	}
	return domain.TokenBalance{}, nil
}

// Price returns the token price in USDT.
func (s *Stub) Price(_ context.Context) (decimal.Decimal, error) {
	return s.price, nil
}

// HoldingMetric returns a fixed holding profile anchored at the current time.
func (s *Stub) HoldingMetric(_ context.Context, _ string) (domain.HoldingMetric, error) {
	return domain.HoldingMetric{
		Score:              defaultHoldingScore,
		HoldingSince:       s.now().AddDate(0, 0, -defaultHoldingDays),
		AverageHoldingDays: defaultHoldingDays,
	}, nil
}

// Redeem burns amount from the free balance of address.
func (s *Stub) Redeem(_ context.Context, address string, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.debit(address, amount)
	if err != nil {
		return fmt.Errorf("redeem: %w", err)
	}
	b.Free = b.Free.Sub(amount)

	s.logger.WithFields(logrus.Fields{"address": address, "amount": amount}).Info("redeemed tokens")
	return nil
}

// Stake moves amount from the free to the reserved balance of address.
func (s *Stub) Stake(_ context.Context, address string, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.debit(address, amount)
	if err != nil {
		return fmt.Errorf("stake: %w", err)
	}
	b.Free = b.Free.Sub(amount)
	b.Reserved = b.Reserved.Add(amount)

	s.logger.WithFields(logrus.Fields{"address": address, "amount": amount}).Info("staked tokens")
	return nil
}

// Refund credits amount back to the free balance of address.
func (s *Stub) Refund(_ context.Context, address string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("refund: %w", ErrInvalidAmount)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.balances[address]
	if !ok {
		b = &domain.TokenBalance{}
		s.balances[address] = b
	}
	b.Free = b.Free.Add(amount)

	s.logger.WithFields(logrus.Fields{"address": address, "amount": amount}).Info("refunded tokens")
	return nil
}

// Unstake moves amount from the reserved back to the free balance of address.
func (s *Stub) Unstake(_ context.Context, address string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("unstake: %w", ErrInvalidAmount)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.balances[address]
	if !ok || b.Reserved.LessThan(amount) {
		return fmt.Errorf("unstake: %w", ErrInsufficientBalance)
	}
	b.Reserved = b.Reserved.Sub(amount)
	b.Free = b.Free.Add(amount)

	s.logger.WithFields(logrus.Fields{"address": address, "amount": amount}).Info("unstaked tokens")
	return nil
}

// ValidateToken accepts any well-formed token code.
func (s *Stub) ValidateToken(_ context.Context, tokenID string) (bool, error) {
	return WellFormedToken(tokenID), nil
}

// debit checks that address can spend amount. Caller must hold s.mu.
func (s *Stub) debit(address string, amount decimal.Decimal) (*domain.TokenBalance, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	b, ok := s.balances[address]
	if !ok || b.Free.LessThan(amount) {
		return nil, ErrInsufficientBalance
	}
	return b, nil
}

// Verify interface compliance at compile time.
var _ Ledger = (*Stub)(nil)
