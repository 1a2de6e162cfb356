package domain

import "strings"

// ActionType is a vendor action on a scanned token.
type ActionType string

// Action type constants
const (
	ActionRedeem  ActionType = "redeem"
	ActionStake   ActionType = "stake"
	ActionRestock ActionType = "restock"
)

// ParseActionType normalizes a user supplied action name ("Restock", "stake", ...).
// Returns false for unknown actions.
func ParseActionType(s string) (ActionType, bool) {
	switch ActionType(strings.ToLower(strings.TrimSpace(s))) {
	case ActionRedeem:
		return ActionRedeem, true
	case ActionStake:
		return ActionStake, true
	case ActionRestock:
		return ActionRestock, true
	}
	return "", false
}

// ActionRequest is a vendor submission.
type ActionRequest struct {
	TokenID     string   `json:"tokenId"`
	Action      string   `json:"action"`
	Amount      float64  `json:"amount,omitempty"`
	ProofImages []string `json:"proofImages,omitempty"`
}

// ActionResponse is returned after a submission.
type ActionResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	TransactionID string `json:"transactionId,omitempty"`
}

// ActionRecord is a persisted, accepted submission.
type ActionRecord struct {
	TransactionID string     `json:"transactionId"` // deterministic hash, see idhash
	Vendor        string     `json:"vendor"`        // vendor address
	TokenID       string     `json:"tokenId"`
	Action        ActionType `json:"action"`
	Amount        float64    `json:"amount"`
	ProofURLs     []string   `json:"proofUrls,omitempty"`
	SubmittedAt   int64      `json:"submittedAt"` // unix ms
}

// ActionCount is an aggregated count of actions of one type.
type ActionCount struct {
	Action ActionType `json:"action"`
	Count  int64      `json:"count"`
}
