package fundamentals

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundamentals-agent/internal/types"
)

var f = types.Float

func newTestScorer() *Scorer {
	return NewScorer(DefaultThresholds())
}

func TestScoreMixedSnapshot(t *testing.T) {
	m := types.FinancialMetrics{
		ReturnOnEquity:       f(20),
		NetMargin:            f(25),
		OperatingMargin:      f(18),
		CurrentRatio:         f(2.0),
		DebtToEquity:         f(0.3),
		FreeCashFlowPerShare: f(4),
		EarningsPerShare:     f(4),
		PriceToEarningsRatio: f(30),
		PriceToBookRatio:     f(4),
		PriceToSalesRatio:    f(6),
	}

	got := newTestScorer().Score("AAPL", m)

	assert.Equal(t, types.Bullish, got.Reasoning.Profitability.Signal)
	assert.Equal(t, types.Bearish, got.Reasoning.Growth.Signal)
	assert.Equal(t, types.Bullish, got.Reasoning.FinancialHealth.Signal)
	assert.Equal(t, types.Bullish, got.Reasoning.PriceRatios.Signal)
	assert.Equal(t, types.Bullish, got.Signal)
	assert.Equal(t, 75, got.Confidence)

	assert.Equal(t, "ROE: 20.00%, Net Margin: 25.00%, Op Margin: 18.00%", got.Reasoning.Profitability.Details)
	assert.Equal(t, "Revenue Growth: N/A, Earnings Growth: N/A, Book Value Growth: N/A", got.Reasoning.Growth.Details)
	assert.Equal(t, "Current Ratio: 2.00, D/E: 0.30", got.Reasoning.FinancialHealth.Details)
	assert.Equal(t, "P/E: 30.00, P/B: 4.00, P/S: 6.00", got.Reasoning.PriceRatios.Details)
}

func TestScoreAllUnknown(t *testing.T) {
	got := newTestScorer().Score("NONE", types.FinancialMetrics{})

	for _, sig := range got.Reasoning.Signals() {
		assert.Equal(t, types.Bearish, sig)
	}
	assert.Equal(t, types.Bearish, got.Signal)
	assert.Equal(t, 100, got.Confidence)
	assert.Equal(t, "ROE: N/A, Net Margin: N/A, Op Margin: N/A", got.Reasoning.Profitability.Details)
	assert.Equal(t, "P/E: N/A, P/B: N/A, P/S: N/A", got.Reasoning.PriceRatios.Details)
}

func TestScoreTwoTwoTieIsNeutral(t *testing.T) {
	m := types.FinancialMetrics{
		ReturnOnEquity:  f(30),
		NetMargin:       f(30),
		OperatingMargin: f(30),
		RevenueGrowth:   f(12),
		EarningsGrowth:  f(15),
		BookValueGrowth: f(0.05),
		CurrentRatio:    f(1.0),
		DebtToEquity:    f(2.0),
	}

	got := newTestScorer().Score("TIE", m)

	assert.Equal(t, []types.Signal{types.Bullish, types.Bullish, types.Bearish, types.Bearish}, got.Reasoning.Signals())
	assert.Equal(t, types.Neutral, got.Signal)
	assert.Equal(t, 50, got.Confidence)
}

func TestFinancialHealthNoPoints(t *testing.T) {
	m := types.FinancialMetrics{
		CurrentRatio: f(1.4),
		DebtToEquity: f(0.6),
	}

	got := newTestScorer().Score("WEAK", m).Reasoning.FinancialHealth

	assert.Equal(t, types.Bearish, got.Signal)
	assert.Equal(t, "Current Ratio: 1.40, D/E: 0.60", got.Details)
}

func TestClassificationByPointCount(t *testing.T) {
	tests := []struct {
		name   string
		points int
		want   types.Signal
	}{
		{"zero points", 0, types.Bearish},
		{"one point", 1, types.Neutral},
		{"two points", 2, types.Bullish},
		{"three points", 3, types.Bullish},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.points))
		})
	}
}

// pass/fail values for each category; index i passes the i-th check
type categoryCase struct {
	name   string
	pass   func(m *types.FinancialMetrics, i int)
	fail   func(m *types.FinancialMetrics, i int)
	signal func(a types.FundamentalAnalysis) types.Signal
}

func categoryCases() []categoryCase {
	return []categoryCase{
		{
			name: "profitability",
			pass: func(m *types.FinancialMetrics, i int) {
				[]func(){func() { m.ReturnOnEquity = f(16) }, func() { m.NetMargin = f(21) }, func() { m.OperatingMargin = f(16) }}[i]()
			},
			fail: func(m *types.FinancialMetrics, i int) {
				[]func(){func() { m.ReturnOnEquity = f(0.1) }, func() { m.NetMargin = f(0.1) }, func() { m.OperatingMargin = f(0.1) }}[i]()
			},
			signal: func(a types.FundamentalAnalysis) types.Signal { return a.Reasoning.Profitability.Signal },
		},
		{
			name: "growth",
			pass: func(m *types.FinancialMetrics, i int) {
				[]func(){func() { m.RevenueGrowth = f(11) }, func() { m.EarningsGrowth = f(11) }, func() { m.BookValueGrowth = f(11) }}[i]()
			},
			fail: func(m *types.FinancialMetrics, i int) {
				[]func(){func() { m.RevenueGrowth = f(-5) }, func() { m.EarningsGrowth = f(-5) }, func() { m.BookValueGrowth = f(-5) }}[i]()
			},
			signal: func(a types.FundamentalAnalysis) types.Signal { return a.Reasoning.Growth.Signal },
		},
		{
			name: "financial health",
			pass: func(m *types.FinancialMetrics, i int) {
				[]func(){
					func() { m.CurrentRatio = f(2) },
					func() { m.DebtToEquity = f(0.2) },
					func() { m.FreeCashFlowPerShare, m.EarningsPerShare = f(5), f(5) },
				}[i]()
			},
			fail: func(m *types.FinancialMetrics, i int) {
				[]func(){
					func() { m.CurrentRatio = f(1) },
					func() { m.DebtToEquity = f(1) },
					func() { m.FreeCashFlowPerShare, m.EarningsPerShare = f(1), f(5) },
				}[i]()
			},
			signal: func(a types.FundamentalAnalysis) types.Signal { return a.Reasoning.FinancialHealth.Signal },
		},
		{
			name: "price ratios",
			pass: func(m *types.FinancialMetrics, i int) {
				[]func(){func() { m.PriceToEarningsRatio = f(40) }, func() { m.PriceToBookRatio = f(5) }, func() { m.PriceToSalesRatio = f(8) }}[i]()
			},
			fail: func(m *types.FinancialMetrics, i int) {
				[]func(){func() { m.PriceToEarningsRatio = f(10) }, func() { m.PriceToBookRatio = f(1) }, func() { m.PriceToSalesRatio = f(1) }}[i]()
			},
			signal: func(a types.FundamentalAnalysis) types.Signal { return a.Reasoning.PriceRatios.Signal },
		},
	}
}

func TestCategoryPointCounts(t *testing.T) {
	s := newTestScorer()

	for _, cc := range categoryCases() {
		t.Run(cc.name, func(t *testing.T) {
			// all three evaluable, k passing
			for k := 0; k <= 3; k++ {
				var m types.FinancialMetrics
				for i := 0; i < 3; i++ {
					if i < k {
						cc.pass(&m, i)
					} else {
						cc.fail(&m, i)
					}
				}
				assert.Equal(t, classify(k), cc.signal(s.Score("T", m)), "passing checks: %d", k)
			}

			// all unknown is zero points
			assert.Equal(t, types.Bearish, cc.signal(s.Score("T", types.FinancialMetrics{})))

			// a single passing check with the others unknown is neutral
			var one types.FinancialMetrics
			cc.pass(&one, 2)
			assert.Equal(t, types.Neutral, cc.signal(s.Score("T", one)))
		})
	}
}

func TestThresholdsAreStrict(t *testing.T) {
	th := DefaultThresholds()
	m := types.FinancialMetrics{
		ReturnOnEquity:       f(th.ReturnOnEquity),
		NetMargin:            f(th.NetMargin),
		OperatingMargin:      f(th.OperatingMargin),
		CurrentRatio:         f(th.CurrentRatio),
		DebtToEquity:         f(th.DebtToEquity),
		PriceToEarningsRatio: f(th.PriceToEarnings),
		PriceToBookRatio:     f(th.PriceToBook),
		PriceToSalesRatio:    f(th.PriceToSales),
	}

	got := NewScorer(th).Score("EDGE", m)
	assert.Equal(t, types.Bearish, got.Reasoning.Profitability.Signal)
	assert.Equal(t, types.Bearish, got.Reasoning.FinancialHealth.Signal)
	assert.Equal(t, types.Bearish, got.Reasoning.PriceRatios.Signal)
}

func TestCashConversionNeedsBothOperands(t *testing.T) {
	s := newTestScorer()

	onlyFCF := types.FinancialMetrics{FreeCashFlowPerShare: f(10)}
	assert.Equal(t, types.Bearish, s.Score("X", onlyFCF).Reasoning.FinancialHealth.Signal)

	onlyEPS := types.FinancialMetrics{EarningsPerShare: f(-10)}
	assert.Equal(t, types.Bearish, s.Score("X", onlyEPS).Reasoning.FinancialHealth.Signal)

	both := types.FinancialMetrics{FreeCashFlowPerShare: f(1), EarningsPerShare: f(-10)}
	assert.Equal(t, types.Neutral, s.Score("X", both).Reasoning.FinancialHealth.Signal)
}

func TestNegativeValuesAcceptedVerbatim(t *testing.T) {
	m := types.FinancialMetrics{
		CurrentRatio: f(-3),
		DebtToEquity: f(-1),
	}
	got := newTestScorer().Score("NEG", m).Reasoning.FinancialHealth
	assert.Equal(t, types.Neutral, got.Signal)
	assert.Equal(t, "Current Ratio: -3.00, D/E: -1.00", got.Details)
}

func TestAggregateDependsOnlyOnLabels(t *testing.T) {
	tests := []struct {
		name       string
		signals    []types.Signal
		want       types.Signal
		confidence int
	}{
		{"all neutral", []types.Signal{types.Neutral, types.Neutral, types.Neutral, types.Neutral}, types.Neutral, 0},
		{"one bullish", []types.Signal{types.Bullish, types.Neutral, types.Neutral, types.Neutral}, types.Bullish, 25},
		{"three bearish", []types.Signal{types.Bearish, types.Bearish, types.Bullish, types.Bearish}, types.Bearish, 75},
		{"one each", []types.Signal{types.Bullish, types.Bearish, types.Neutral, types.Neutral}, types.Neutral, 25},
		{"all bullish", []types.Signal{types.Bullish, types.Bullish, types.Bullish, types.Bullish}, types.Bullish, 100},
		{"empty", nil, types.Neutral, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, conf := Aggregate(tt.signals)
			assert.Equal(t, tt.want, sig)
			assert.Equal(t, tt.confidence, conf)
		})
	}
}

func TestScoreIsIdempotent(t *testing.T) {
	m := types.FinancialMetrics{
		ReturnOnEquity:   f(12.3456),
		RevenueGrowth:    f(-4.2),
		CurrentRatio:     f(1.75),
		PriceToBookRatio: f(3.3),
	}
	s := newTestScorer()

	first, err := json.Marshal(s.Score("IDEM", m))
	require.NoError(t, err)
	second, err := json.Marshal(s.Score("IDEM", m))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestProgressCheckpoints(t *testing.T) {
	var stages []types.Stage
	s := NewScorer(DefaultThresholds(), WithProgress(ProgressFunc(func(ticker string, stage types.Stage) {
		assert.Equal(t, "MSFT", ticker)
		stages = append(stages, stage)
	})))

	s.Score("MSFT", types.FinancialMetrics{})

	assert.Equal(t, []types.Stage{
		types.StageScoringProfitability,
		types.StageScoringGrowth,
		types.StageScoringFinancialHealth,
		types.StageScoringPriceRatios,
		types.StageAggregating,
	}, stages)
}

func TestRuleScorerNeverFails(t *testing.T) {
	rs := NewRuleScorer(newTestScorer())

	got, err := rs.Score(context.Background(), "AAPL", types.FinancialMetrics{})
	require.NoError(t, err)
	assert.Equal(t, types.Bearish, got.Signal)
}

func TestJSONShape(t *testing.T) {
	got := newTestScorer().Score("AAPL", types.FinancialMetrics{})

	b, err := json.Marshal(got)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, "bearish", decoded["signal"])
	assert.EqualValues(t, 100, decoded["confidence"])

	reasoning, ok := decoded["reasoning"].(map[string]any)
	require.True(t, ok)
	for _, key := range []string{"profitability_signal", "growth_signal", "financial_health_signal", "price_ratios_signal"} {
		assert.Contains(t, reasoning, key)
	}
}
