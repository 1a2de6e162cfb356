// Package analysis derives a deterministic pseudo-analysis of a token from its identifier.
package analysis

import (
	"errors"
	"fmt"
	"unicode/utf16"

	"watch2give-vendor/internal/domain"
)

// ErrInvalidInput is returned for an empty token id or a non-positive amount.
var ErrInvalidInput = errors.New("invalid input")

// Scoring constants.
const (
	SeedModulus = 100

	// StakeAbove and SellBelow partition the seed: (70,99] stake/low risk,
	// [0,30) sell/high risk, [30,70] hold/medium risk.
	StakeAbove = 70
	SellBelow  = 30

	BaseValue       = 1.0
	ValueSteps      = 10
	ValueChangeBase = -5
	ValueChangeSpan = 15

	InsightCount = 3
)

// insightOffsets select catalog entries relative to the seed. Offsets may
// collide modulo the catalog size; duplicates are kept.
var insightOffsets = [InsightCount]int{0, 3, 7}

// Analyzer scores tokens. The zero value is ready to use.
type Analyzer struct{}

// New creates an Analyzer.
func New() *Analyzer {
	return &Analyzer{}
}

// Seed sums the UTF-16 code units of tokenID modulo 100.
func Seed(tokenID string) int {
	sum := 0
	for _, unit := range utf16.Encode([]rune(tokenID)) {
		sum += int(unit)
	}
	return sum % SeedModulus
}

// Analyze returns the analysis for req. Only req.TokenID affects the result.
func (a *Analyzer) Analyze(req domain.TokenAnalysisRequest) (*domain.TokenAnalysisResponse, error) {
	if req.TokenID == "" {
		return nil, fmt.Errorf("%w: tokenId is required", ErrInvalidInput)
	}
	// !(x > 0) also rejects NaN
	if !(req.Amount > 0) {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}

	return FromSeed(Seed(req.TokenID)), nil
}

// FromSeed builds the analysis for a seed in [0,99].
func FromSeed(seed int) *domain.TokenAnalysisResponse {
	insights := make([]string, 0, InsightCount)
	for _, off := range insightOffsets {
		insights = append(insights, insightCatalog[(seed+off)%len(insightCatalog)])
	}

	return &domain.TokenAnalysisResponse{
		EstimatedValue: BaseValue + float64(seed%ValueSteps)/ValueSteps,
		ValueChange:    float64(ValueChangeBase + seed%ValueChangeSpan),
		Recommendation: recommendationFor(seed),
		RiskLevel:      riskFor(seed),
		Insights:       insights,
	}
}

func recommendationFor(seed int) domain.Recommendation {
	switch {
	case seed > StakeAbove:
		return domain.RecommendationStake
	case seed < SellBelow:
		return domain.RecommendationSell
	default:
		return domain.RecommendationHold
	}
}

func riskFor(seed int) domain.RiskLevel {
	switch {
	case seed > StakeAbove:
		return domain.RiskLow
	case seed < SellBelow:
		return domain.RiskHigh
	default:
		return domain.RiskMedium
	}
}
