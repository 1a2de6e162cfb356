// Package idhash derives deterministic identifiers from record contents.
package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/mr-tron/base58"

	"watch2give-vendor/internal/domain"
)

// TransactionIDPrefix marks identifiers issued for vendor actions.
const TransactionIDPrefix = "tx-"

// ComputeTransactionID computes a deterministic transaction id using SHA256.
// Formula: SHA256(vendor|token_id|action|submitted_at)
// Returns "tx-" followed by the base58-encoded hash.
func ComputeTransactionID(
	vendor string,
	tokenID string,
	action domain.ActionType,
	submittedAt int64,
) string {
	data := fmt.Sprintf("%s|%s|%s|%d",
		vendor,
		tokenID,
		string(action),
		submittedAt,
	)

	hash := sha256.Sum256([]byte(data))
	return TransactionIDPrefix + base58.Encode(hash[:])
}

// ComputeEventID computes the analytics event id of an action record.
// Formula: SHA256(transaction_id|action)
// Returns hex-encoded hash (64 characters).
func ComputeEventID(transactionID string, action domain.ActionType) string {
	data := fmt.Sprintf("%s|%s", transactionID, string(action))

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
