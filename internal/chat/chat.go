package chat

import (
	"fmt"
	"regexp"
	"strings"

	"fundamentals-agent/internal/types"
)

// UsageHint is the reply when a message names no ticker
const UsageHint = "Please include stock tickers in your message using the $ symbol (e.g., $AAPL, $GOOGL)"

var tickerPattern = regexp.MustCompile(`\$([A-Za-z]+)`)

// ExtractTickers returns the $-prefixed symbols in text, upper-cased, in order of
// first appearance
func ExtractTickers(text string) []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range tickerPattern.FindAllStringSubmatch(text, -1) {
		t := strings.ToUpper(m[1])
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// FormatAnalysis renders one ticker's analysis as a plain-text report
func FormatAnalysis(ticker string, a types.TickerAnalysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s (%d%% confidence)\n\n", strings.ToUpper(ticker), strings.ToUpper(string(a.Signal)), a.Confidence)

	if a.Unavailable() {
		fmt.Fprintf(&b, "Metrics unavailable: %s", a.Error)
		return b.String()
	}

	if a.Metrics != nil {
		b.WriteString(formatMetrics(*a.Metrics))
		b.WriteString("\n\n")
	}

	r := a.Reasoning
	b.WriteString("Analysis:\n")
	fmt.Fprintf(&b, "- Profitability: %s\n", r.Profitability.Details)
	fmt.Fprintf(&b, "- Growth: %s\n", r.Growth.Details)
	fmt.Fprintf(&b, "- Financial Health: %s\n", r.FinancialHealth.Details)
	fmt.Fprintf(&b, "- Price Ratios: %s", r.PriceRatios.Details)
	return b.String()
}

// FormatResult renders every ticker of a batch in request order
func FormatResult(result *types.AnalysisResult) string {
	parts := make([]string, 0, len(result.Tickers))
	for _, t := range result.Tickers {
		if a, ok := result.Analyses[t]; ok {
			parts = append(parts, FormatAnalysis(t, a))
		}
	}
	return strings.Join(parts, "\n\n")
}

func formatMetrics(m types.FinancialMetrics) string {
	lines := []string{
		"Raw Financial Metrics:",
		"Profitability:",
		"- Return on Equity: " + pct(m.ReturnOnEquity),
		"- Net Margin: " + pct(m.NetMargin),
		"- Operating Margin: " + pct(m.OperatingMargin),
		"",
		"Growth:",
		"- Revenue Growth: " + pct(m.RevenueGrowth),
		"- Earnings Growth: " + pct(m.EarningsGrowth),
		"- Book Value Growth: " + pct(m.BookValueGrowth),
		"",
		"Financial Health:",
		"- Current Ratio: " + num(m.CurrentRatio),
		"- Debt to Equity: " + num(m.DebtToEquity),
		"- Free Cash Flow per Share: " + num(m.FreeCashFlowPerShare),
		"- Earnings per Share: " + num(m.EarningsPerShare),
		"",
		"Price Ratios:",
		"- P/E Ratio: " + num(m.PriceToEarningsRatio),
		"- P/B Ratio: " + num(m.PriceToBookRatio),
		"- P/S Ratio: " + num(m.PriceToSalesRatio),
	}
	return strings.Join(lines, "\n")
}

func pct(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%%", *v)
}

func num(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", *v)
}
