package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Notification is an incoming token transfer or system message shown to the vendor.
type Notification struct {
	ID        string          `json:"id"`
	Sender    string          `json:"sender"`
	Amount    decimal.Decimal `json:"amount"`
	USDValue  decimal.Decimal `json:"usdValue"`
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
	Read      bool            `json:"read"`
}
