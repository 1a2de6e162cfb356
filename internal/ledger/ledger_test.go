package ledger

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"errors"
	"strings"
	"testing"
	"time"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
	"github.com/shopspring/decimal"
)

const vendor = "vendor-1"

func testAddress() string {
	pub := ed25519.NewKeyFromSeed(make([]byte, ed25519.SeedSize)).Public().(ed25519.PublicKey)
	return base58.Encode(pub)
}

// offCurveAddress returns a 32-byte value that is not a valid point encoding.
func offCurveAddress(t *testing.T) string {
	t.Helper()
	for i := 0; i < 256; i++ {
		h := sha256.Sum256([]byte{byte(i)})
		if _, err := new(edwards25519.Point).SetBytes(h[:]); err != nil {
			return base58.Encode(h[:])
		}
	}
	t.Fatal("no off-curve value found")
	return ""
}

func newTestStub() *Stub {
	return NewStub(StubOptions{
		Accounts: []string{vendor},
		Now:      func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) },
	})
}

func TestValidateAddress(t *testing.T) {
	if err := ValidateAddress(testAddress()); err != nil {
		t.Errorf("expected valid address, got %v", err)
	}

	invalid := []string{
		"",
		"0OIl",                        // not in the base58 alphabet
		base58.Encode([]byte("short")), // wrong length
		offCurveAddress(t),
	}
	for _, addr := range invalid {
		if err := ValidateAddress(addr); !errors.Is(err, ErrInvalidAddress) {
			t.Errorf("ValidateAddress(%q): expected ErrInvalidAddress, got %v", addr, err)
		}
	}
}

func TestWellFormedToken(t *testing.T) {
	tests := []struct {
		token string
		want  bool
	}{
		{"GIVE-1234", true},
		{"a", true},
		{strings.Repeat("x", MaxTokenLength), true},
		{strings.Repeat("x", MaxTokenLength+1), false},
		{"", false},
		{"has space", false},
		{"tab\there", false},
		{"bell\x07", false},
		{"\xff\xfe", false},
	}

	for _, tt := range tests {
		if got := WellFormedToken(tt.token); got != tt.want {
			t.Errorf("WellFormedToken(%q) = %v, want %v", tt.token, got, tt.want)
		}
	}
}

func TestStub_Balance(t *testing.T) {
	s := newTestStub()
	ctx := context.Background()

	bal, err := s.Balance(ctx, vendor)
	if err != nil {
		t.Fatalf("Balance failed: %v", err)
	}
	if !bal.Free.Equal(decimal.NewFromInt(125)) {
		t.Errorf("expected 125 free, got %s", bal.Free)
	}

	other, err := s.Balance(ctx, "unknown")
	if err != nil {
		t.Fatalf("Balance failed: %v", err)
	}
	if !other.Free.IsZero() {
		t.Errorf("expected zero balance for unknown account, got %s", other.Free)
	}
}

func TestStub_RedeemAndStake(t *testing.T) {
	s := newTestStub()
	ctx := context.Background()

	if err := s.Redeem(ctx, vendor, decimal.NewFromInt(25)); err != nil {
		t.Fatalf("Redeem failed: %v", err)
	}
	if err := s.Stake(ctx, vendor, decimal.NewFromInt(40)); err != nil {
		t.Fatalf("Stake failed: %v", err)
	}

	bal, _ := s.Balance(ctx, vendor)
	if !bal.Free.Equal(decimal.NewFromInt(60)) {
		t.Errorf("expected 60 free, got %s", bal.Free)
	}
	if !bal.Reserved.Equal(decimal.NewFromInt(40)) {
		t.Errorf("expected 40 reserved, got %s", bal.Reserved)
	}
}

func TestStub_RefundAndUnstake(t *testing.T) {
	s := newTestStub()
	ctx := context.Background()

	if err := s.Redeem(ctx, vendor, decimal.NewFromInt(25)); err != nil {
		t.Fatalf("Redeem failed: %v", err)
	}
	if err := s.Stake(ctx, vendor, decimal.NewFromInt(40)); err != nil {
		t.Fatalf("Stake failed: %v", err)
	}
	if err := s.Refund(ctx, vendor, decimal.NewFromInt(25)); err != nil {
		t.Fatalf("Refund failed: %v", err)
	}
	if err := s.Unstake(ctx, vendor, decimal.NewFromInt(40)); err != nil {
		t.Fatalf("Unstake failed: %v", err)
	}

	bal, _ := s.Balance(ctx, vendor)
	if !bal.Free.Equal(decimal.NewFromInt(125)) || !bal.Reserved.IsZero() {
		t.Errorf("expected 125 free and 0 reserved, got %s/%s", bal.Free, bal.Reserved)
	}

	if err := s.Unstake(ctx, vendor, decimal.NewFromInt(1)); !errors.Is(err, ErrInsufficientBalance) {
		t.Errorf("expected ErrInsufficientBalance, got %v", err)
	}
	if err := s.Refund(ctx, vendor, decimal.Zero); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestStub_Errors(t *testing.T) {
	s := newTestStub()
	ctx := context.Background()

	if err := s.Redeem(ctx, vendor, decimal.NewFromInt(126)); !errors.Is(err, ErrInsufficientBalance) {
		t.Errorf("expected ErrInsufficientBalance, got %v", err)
	}
	if err := s.Stake(ctx, "unknown", decimal.NewFromInt(1)); !errors.Is(err, ErrInsufficientBalance) {
		t.Errorf("expected ErrInsufficientBalance, got %v", err)
	}
	if err := s.Stake(ctx, vendor, decimal.Zero); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}

	bal, _ := s.Balance(ctx, vendor)
	if !bal.Free.Equal(decimal.NewFromInt(125)) {
		t.Errorf("failed operations must not change balance, got %s", bal.Free)
	}
}

func TestStub_HoldingMetric(t *testing.T) {
	s := newTestStub()

	m, err := s.HoldingMetric(context.Background(), vendor)
	if err != nil {
		t.Fatalf("HoldingMetric failed: %v", err)
	}
	if m.Score != 68 || m.AverageHoldingDays != 30 {
		t.Errorf("unexpected metric: %+v", m)
	}
	want := time.Date(2026, 2, 8, 12, 0, 0, 0, time.UTC)
	if !m.HoldingSince.Equal(want) {
		t.Errorf("holdingSince = %v, want %v", m.HoldingSince, want)
	}
}

func TestTokenData(t *testing.T) {
	s := newTestStub()

	td, err := TokenData(context.Background(), s, vendor)
	if err != nil {
		t.Fatalf("TokenData failed: %v", err)
	}
	if td.ID != TokenDataID {
		t.Errorf("id = %s", td.ID)
	}
	if !td.Balance.Equal(decimal.NewFromInt(125)) {
		t.Errorf("balance = %s", td.Balance)
	}
	if !td.USDValue.Equal(decimal.NewFromInt(150)) {
		t.Errorf("usdValue = %s, want 150", td.USDValue)
	}
	if td.Change24h != 3.5 {
		t.Errorf("change24h = %v", td.Change24h)
	}
}
