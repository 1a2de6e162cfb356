package idhash

import (
	"strings"
	"testing"

	"github.com/mr-tron/base58"

	"watch2give-vendor/internal/domain"
)

func TestComputeTransactionID(t *testing.T) {
	tests := []struct {
		name        string
		vendor      string
		tokenID     string
		action      domain.ActionType
		submittedAt int64
	}{
		{
			name:        "redeem",
			vendor:      "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU",
			tokenID:     "GIVE-1234",
			action:      domain.ActionRedeem,
			submittedAt: 1704067234567,
		},
		{
			name:        "restock",
			vendor:      "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU",
			tokenID:     "GIVE-9999",
			action:      domain.ActionRestock,
			submittedAt: 1704067300000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTransactionID(tt.vendor, tt.tokenID, tt.action, tt.submittedAt)

			if !strings.HasPrefix(got, TransactionIDPrefix) {
				t.Fatalf("ComputeTransactionID() = %s, missing %q prefix", got, TransactionIDPrefix)
			}

			raw, err := base58.Decode(strings.TrimPrefix(got, TransactionIDPrefix))
			if err != nil {
				t.Fatalf("suffix is not base58: %v", err)
			}
			if len(raw) != 32 {
				t.Errorf("decoded hash length = %d, want 32", len(raw))
			}

			// Verify determinism: same inputs should produce same output
			got2 := ComputeTransactionID(tt.vendor, tt.tokenID, tt.action, tt.submittedAt)
			if got != got2 {
				t.Errorf("ComputeTransactionID() not deterministic: %s != %s", got, got2)
			}
		})
	}
}

func TestComputeTransactionID_DifferentInputs(t *testing.T) {
	base := ComputeTransactionID("vendor", "token", domain.ActionStake, 1000)

	if base == ComputeTransactionID("other_vendor", "token", domain.ActionStake, 1000) {
		t.Error("Different vendor should produce different id")
	}
	if base == ComputeTransactionID("vendor", "other_token", domain.ActionStake, 1000) {
		t.Error("Different token should produce different id")
	}
	if base == ComputeTransactionID("vendor", "token", domain.ActionRedeem, 1000) {
		t.Error("Different action should produce different id")
	}
	if base == ComputeTransactionID("vendor", "token", domain.ActionStake, 2000) {
		t.Error("Different time should produce different id")
	}
}

func TestComputeEventID(t *testing.T) {
	got := ComputeEventID("tx-abc", domain.ActionRedeem)
	if len(got) != 64 {
		t.Errorf("ComputeEventID() length = %d, want 64", len(got))
	}
	if got != ComputeEventID("tx-abc", domain.ActionRedeem) {
		t.Error("ComputeEventID() not deterministic")
	}
	if got == ComputeEventID("tx-abc", domain.ActionStake) {
		t.Error("Different action should produce different id")
	}
}
