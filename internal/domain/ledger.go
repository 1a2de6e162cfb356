package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TokenBalance is the $GIVE balance of an account.
type TokenBalance struct {
	Free     decimal.Decimal `json:"free"`
	Reserved decimal.Decimal `json:"reserved"`
	Frozen   decimal.Decimal `json:"frozen"`
}

// HoldingMetric reports how long a vendor retains tokens.
type HoldingMetric struct {
	Score              int       `json:"score"` // 0-100
	HoldingSince       time.Time `json:"holdingSince"`
	AverageHoldingDays int       `json:"averageHoldingTime"`
}

// TokenData is the balance widget payload.
type TokenData struct {
	ID        string          `json:"id"`
	Balance   decimal.Decimal `json:"balance"`
	USDValue  decimal.Decimal `json:"usdValue"`
	Change24h float64         `json:"change24h"` // percent
}
