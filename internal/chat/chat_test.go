package chat

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"fundamentals-agent/internal/types"
)

func TestExtractTickers(t *testing.T) {
	assert.Equal(t, []string{"AAPL", "MSFT"}, ExtractTickers("How are $aapl and $MSFT doing vs $AAPL?"))
	assert.Equal(t, []string{"BRK"}, ExtractTickers("what about $BRK.B"))
	assert.Empty(t, ExtractTickers("no tickers here, just $5"))
}

func TestFormatAnalysis(t *testing.T) {
	f := types.Float
	a := types.TickerAnalysis{
		FundamentalAnalysis: types.FundamentalAnalysis{
			Signal:     types.Bullish,
			Confidence: 75,
			Reasoning: types.Reasoning{
				Profitability:   types.CategorySignal{Signal: types.Bullish, Details: "ROE: 20.00%, Net Margin: N/A, Op Margin: N/A"},
				Growth:          types.CategorySignal{Signal: types.Bearish, Details: "growth"},
				FinancialHealth: types.CategorySignal{Signal: types.Bullish, Details: "health"},
				PriceRatios:     types.CategorySignal{Signal: types.Bullish, Details: "ratios"},
			},
		},
		Metrics: &types.FinancialMetrics{ReturnOnEquity: f(20), CurrentRatio: f(2)},
		Status:  types.StatusOK,
	}

	out := FormatAnalysis("aapl", a)

	assert.Contains(t, out, "AAPL: BULLISH (75% confidence)\n\n")
	assert.Contains(t, out, "- Return on Equity: 20.00%\n")
	assert.Contains(t, out, "- Net Margin: N/A\n")
	assert.Contains(t, out, "- Current Ratio: 2.00\n")
	assert.Contains(t, out, "Analysis:\n- Profitability: ROE: 20.00%, Net Margin: N/A, Op Margin: N/A\n")
	assert.Contains(t, out, "- Price Ratios: ratios")
}

func TestFormatUnavailable(t *testing.T) {
	a := types.UnavailableAnalysis(errors.New("ticker not found"))

	out := FormatAnalysis("ZZZZ", a)
	assert.Equal(t, "ZZZZ: NEUTRAL (0% confidence)\n\nMetrics unavailable: ticker not found", out)
}

func TestFormatResultKeepsOrder(t *testing.T) {
	r := &types.AnalysisResult{
		Tickers: []string{"B", "A"},
		Analyses: map[string]types.TickerAnalysis{
			"A": types.UnavailableAnalysis(errors.New("x")),
			"B": types.UnavailableAnalysis(errors.New("y")),
		},
	}
	out := FormatResult(r)
	assert.Less(t, strings.Index(out, "B:"), strings.Index(out, "A:"))
}
