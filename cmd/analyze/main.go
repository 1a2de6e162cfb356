package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"watch2give-vendor/internal/analysis"
	"watch2give-vendor/internal/domain"
)

func main() {
	// Parse flags
	tokenID := flag.String("token", "", "Token identifier to analyze")
	amount := flag.Float64("amount", 1, "Token amount (must be positive)")
	format := flag.String("format", "json", "Output format (json, text)")
	flag.Parse()

	if *tokenID == "" && flag.NArg() > 0 {
		*tokenID = flag.Arg(0)
	}
	if *tokenID == "" {
		fmt.Fprintln(os.Stderr, "Error: --token is required")
		flag.Usage()
		os.Exit(2)
	}

	resp, err := analysis.New().Analyze(domain.TokenAnalysisRequest{TokenID: *tokenID, Amount: *amount})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := write(os.Stdout, *format, *tokenID, resp); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func write(w io.Writer, format, tokenID string, resp *domain.TokenAnalysisResponse) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	case "text":
		fmt.Fprintf(w, "Token:          %s\n", tokenID)
		fmt.Fprintf(w, "Seed:           %d\n", analysis.Seed(tokenID))
		fmt.Fprintf(w, "Estimated:      %.2f\n", resp.EstimatedValue)
		fmt.Fprintf(w, "Value change:   %+.0f%%\n", resp.ValueChange)
		fmt.Fprintf(w, "Recommendation: %s\n", resp.Recommendation)
		fmt.Fprintf(w, "Risk level:     %s\n", resp.RiskLevel)
		fmt.Fprintln(w, "Insights:")
		for _, in := range resp.Insights {
			fmt.Fprintf(w, "  - %s\n", in)
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
