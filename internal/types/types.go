package types

import (
	"fmt"
	"time"
)

// Signal is a bullish/bearish/neutral verdict
type Signal string

const (
	Bullish Signal = "bullish"
	Bearish Signal = "bearish"
	Neutral Signal = "neutral"
)

// Valid reports whether s is one of the three known labels
func (s Signal) Valid() bool {
	return s == Bullish || s == Bearish || s == Neutral
}

// FinancialMetrics is one snapshot of ratios for a ticker. A nil field is unknown.
type FinancialMetrics struct {
	Ticker    string    `json:"ticker,omitempty"`
	PeriodEnd time.Time `json:"period_end,omitempty"`
	Currency  string    `json:"currency,omitempty"`

	// Profitability (percent)
	ReturnOnEquity  *float64 `json:"return_on_equity"`
	NetMargin       *float64 `json:"net_margin"`
	OperatingMargin *float64 `json:"operating_margin"`

	// Growth vs. prior period (percent)
	RevenueGrowth   *float64 `json:"revenue_growth"`
	EarningsGrowth  *float64 `json:"earnings_growth"`
	BookValueGrowth *float64 `json:"book_value_growth"`

	// Financial health
	CurrentRatio         *float64 `json:"current_ratio"`
	DebtToEquity         *float64 `json:"debt_to_equity"`
	FreeCashFlowPerShare *float64 `json:"free_cash_flow_per_share"`
	EarningsPerShare     *float64 `json:"earnings_per_share"`

	// Price ratios
	PriceToEarningsRatio *float64 `json:"price_to_earnings_ratio"`
	PriceToBookRatio     *float64 `json:"price_to_book_ratio"`
	PriceToSalesRatio    *float64 `json:"price_to_sales_ratio"`
}

// Float returns a pointer to v, for building known metric values
func Float(v float64) *float64 {
	return &v
}

// CategorySignal is the verdict for one of the four categories
type CategorySignal struct {
	Signal  Signal `json:"signal"`
	Details string `json:"details"`
}

// Reasoning holds the four category verdicts
type Reasoning struct {
	Profitability   CategorySignal `json:"profitability_signal"`
	Growth          CategorySignal `json:"growth_signal"`
	FinancialHealth CategorySignal `json:"financial_health_signal"`
	PriceRatios     CategorySignal `json:"price_ratios_signal"`
}

// Signals returns the category labels in evaluation order
func (r Reasoning) Signals() []Signal {
	return []Signal{r.Profitability.Signal, r.Growth.Signal, r.FinancialHealth.Signal, r.PriceRatios.Signal}
}

// FundamentalAnalysis is the scored result for one ticker
type FundamentalAnalysis struct {
	Signal     Signal    `json:"signal"`
	Confidence int       `json:"confidence"` // 0-100
	Reasoning  Reasoning `json:"reasoning"`
}

// Analysis status values
const (
	StatusOK                 = "ok"
	StatusMetricsUnavailable = "metrics_unavailable"
)

// TickerAnalysis is what the agent reports per ticker: the analysis, the metrics it was
// computed from, and whether the metrics were available at all.
type TickerAnalysis struct {
	FundamentalAnalysis
	Metrics *FinancialMetrics `json:"metrics,omitempty"`
	Status  string            `json:"status"`
	Error   string            `json:"error,omitempty"`
}

// Unavailable reports whether this entry is a placeholder for a failed fetch
func (t TickerAnalysis) Unavailable() bool {
	return t.Status == StatusMetricsUnavailable
}

// NeutralAnalysis returns a neutral verdict where every category carries the same details
func NeutralAnalysis(confidence int, details string) FundamentalAnalysis {
	c := CategorySignal{Signal: Neutral, Details: details}
	return FundamentalAnalysis{
		Signal:     Neutral,
		Confidence: confidence,
		Reasoning: Reasoning{
			Profitability:   c,
			Growth:          c,
			FinancialHealth: c,
			PriceRatios:     c,
		},
	}
}

// UnavailableAnalysis builds the placeholder used when no metrics could be fetched
func UnavailableAnalysis(err error) TickerAnalysis {
	reason := "unknown error"
	if err != nil {
		reason = err.Error()
	}
	return TickerAnalysis{
		FundamentalAnalysis: NeutralAnalysis(0, fmt.Sprintf("metrics unavailable: %s", reason)),
		Status:              StatusMetricsUnavailable,
		Error:               reason,
	}
}

// AnalysisResult is the outcome of one batch run
type AnalysisResult struct {
	RunID     string                    `json:"run_id"`
	AsOf      time.Time                 `json:"as_of"`
	Tickers   []string                  `json:"tickers"`
	Analyses  map[string]TickerAnalysis `json:"analyses"`
	Failed    int                       `json:"failed"`
	Evaluated int                       `json:"evaluated"`
}

// Stage is a checkpoint reported while a ticker is being analyzed
type Stage string

const (
	StageFetchingMetrics        Stage = "fetching_metrics"
	StageMetricsFetched         Stage = "metrics_fetched"
	StageScoringProfitability   Stage = "scoring_profitability"
	StageScoringGrowth          Stage = "scoring_growth"
	StageScoringFinancialHealth Stage = "scoring_financial_health"
	StageScoringPriceRatios     Stage = "scoring_price_ratios"
	StageAggregating            Stage = "aggregating"
	StageDone                   Stage = "done"
	StageFailed                 Stage = "failed"
)

// SignalEntry is one line of the signal log
type SignalEntry struct {
	Time            string `json:"time"`
	RunID           string `json:"run_id,omitempty"`
	Ticker          string `json:"ticker"`
	AsOf            string `json:"as_of"`
	Signal          Signal `json:"signal"`
	Confidence      int    `json:"confidence"`
	Status          string `json:"status"`
	Profitability   Signal `json:"profitability"`
	Growth          Signal `json:"growth"`
	FinancialHealth Signal `json:"financial_health"`
	PriceRatios     Signal `json:"price_ratios"`
	Error           string `json:"error,omitempty"`
}

// NewSignalEntry flattens a ticker analysis into a log entry
func NewSignalEntry(runID, ticker string, asOf time.Time, a TickerAnalysis) SignalEntry {
	return SignalEntry{
		RunID:           runID,
		Ticker:          ticker,
		AsOf:            asOf.Format("2006-01-02"),
		Signal:          a.Signal,
		Confidence:      a.Confidence,
		Status:          a.Status,
		Profitability:   a.Reasoning.Profitability.Signal,
		Growth:          a.Reasoning.Growth.Signal,
		FinancialHealth: a.Reasoning.FinancialHealth.Signal,
		PriceRatios:     a.Reasoning.PriceRatios.Signal,
		Error:           a.Error,
	}
}
