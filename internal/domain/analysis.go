package domain

import "encoding/json"

// Recommendation is the suggested action for a token.
type Recommendation string

// Recommendation constants
const (
	RecommendationHold  Recommendation = "hold"
	RecommendationSell  Recommendation = "sell"
	RecommendationStake Recommendation = "stake"
)

// RiskLevel classifies the risk attached to a token.
type RiskLevel string

// Risk level constants
const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// TokenAnalysisRequest is the input of a token analysis.
// TransactionHistory and MarketData are accepted but not used for scoring.
type TokenAnalysisRequest struct {
	TokenID            string          `json:"tokenId"`
	Amount             float64         `json:"amount"`
	TransactionHistory json.RawMessage `json:"transactionHistory,omitempty"`
	MarketData         json.RawMessage `json:"marketData,omitempty"`
}

// TokenAnalysisResponse is the deterministic analysis of a token.
type TokenAnalysisResponse struct {
	EstimatedValue float64        `json:"estimatedValue"`
	ValueChange    float64        `json:"valueChange"` // percent
	Recommendation Recommendation `json:"recommendation"`
	RiskLevel      RiskLevel      `json:"riskLevel"`
	Insights       []string       `json:"insights"`
}
