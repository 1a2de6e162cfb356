package analysis

// insightCatalog is the ordered set of canned insights. Order is part of the
// output contract.
var insightCatalog = [10]string{
	"Token shows stable growth pattern",
	"Community engagement is increasing",
	"Recent protocol upgrades add value",
	"Market volatility may affect short-term price",
	"Trading volume has increased by 15%",
	"New partnerships announced recently",
	"Development activity remains strong",
	"Token utility is expanding to new use cases",
	"Staking rewards are competitive in the market",
	"Governance participation is growing",
}

// Insights returns a copy of the catalog.
func Insights() []string {
	out := make([]string, len(insightCatalog))
	copy(out, insightCatalog[:])
	return out
}
