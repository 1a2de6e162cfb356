// Package ledger exposes the $GIVE token ledger to the dashboard.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
	"github.com/shopspring/decimal"

	"watch2give-vendor/internal/domain"
)

// Errors returned by ledgers.
var (
	ErrInvalidAddress      = errors.New("invalid address")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidAmount       = errors.New("amount must be positive")
)

// Token display constants.
const (
	TokenDataID = "gives-token"

	// MaxTokenLength is the longest accepted token code, in characters.
	MaxTokenLength = 128
)

// Ledger is the account and token view the dashboard needs.
type Ledger interface {
	Balance(ctx context.Context, address string) (domain.TokenBalance, error)
	Price(ctx context.Context) (decimal.Decimal, error)
	HoldingMetric(ctx context.Context, address string) (domain.HoldingMetric, error)
	Redeem(ctx context.Context, address string, amount decimal.Decimal) error
	Stake(ctx context.Context, address string, amount decimal.Decimal) error
	// Refund and Unstake reverse a Redeem and a Stake of the same amount.
	Refund(ctx context.Context, address string, amount decimal.Decimal) error
	Unstake(ctx context.Context, address string, amount decimal.Decimal) error
	ValidateToken(ctx context.Context, tokenID string) (bool, error)
}

// ValidateAddress checks that address is base58 and decodes to a 32-byte
// ed25519 public key that lies on the curve.
func ValidateAddress(address string) error {
	raw, err := base58.Decode(address)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(raw) != 32 {
		return fmt.Errorf("%w: decoded length %d", ErrInvalidAddress, len(raw))
	}
	if _, err := new(edwards25519.Point).SetBytes(raw); err != nil {
		return fmt.Errorf("%w: not an ed25519 point", ErrInvalidAddress)
	}
	return nil
}

// WellFormedToken reports whether tokenID looks like a scannable token code:
// 1..MaxTokenLength printable characters without whitespace.
func WellFormedToken(tokenID string) bool {
	n := utf8.RuneCountInString(tokenID)
	if n == 0 || n > MaxTokenLength || !utf8.ValidString(tokenID) {
		return false
	}
	for _, r := range tokenID {
		if !unicode.IsPrint(r) || unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// TokenData composes the balance widget payload for address.
func TokenData(ctx context.Context, l Ledger, address string) (*domain.TokenData, error) {
	bal, err := l.Balance(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("get balance: %w", err)
	}
	price, err := l.Price(ctx)
	if err != nil {
		return nil, fmt.Errorf("get price: %w", err)
	}

	return &domain.TokenData{
		ID:        TokenDataID,
		Balance:   bal.Free,
		USDValue:  bal.Free.Mul(price),
		Change24h: 3.5,
	}, nil
}
