package fundamentals

import (
	"context"
	"fmt"
	"math"

	"fundamentals-agent/internal/interfaces"
	"fundamentals-agent/internal/types"
)

// Thresholds are the per-check cut-offs used by the scorer
type Thresholds struct {
	// Profitability: point when metric > threshold
	ReturnOnEquity  float64 `yaml:"return_on_equity"`
	NetMargin       float64 `yaml:"net_margin"`
	OperatingMargin float64 `yaml:"operating_margin"`

	// Growth: point when metric > threshold
	RevenueGrowth   float64 `yaml:"revenue_growth"`
	EarningsGrowth  float64 `yaml:"earnings_growth"`
	BookValueGrowth float64 `yaml:"book_value_growth"`

	// Financial health
	CurrentRatio float64 `yaml:"current_ratio"`  // point when > threshold
	DebtToEquity float64 `yaml:"debt_to_equity"` // point when < threshold
	FCFToEPS     float64 `yaml:"fcf_to_eps"`     // point when FCF/share > EPS * threshold

	// Price ratios: point when metric > threshold
	PriceToEarnings float64 `yaml:"price_to_earnings"`
	PriceToBook     float64 `yaml:"price_to_book"`
	PriceToSales    float64 `yaml:"price_to_sales"`
}

// DefaultThresholds returns the stock rule set
func DefaultThresholds() Thresholds {
	return Thresholds{
		ReturnOnEquity:  0.15,
		NetMargin:       0.20,
		OperatingMargin: 0.15,
		RevenueGrowth:   0.10,
		EarningsGrowth:  0.10,
		BookValueGrowth: 0.10,
		CurrentRatio:    1.5,
		DebtToEquity:    0.5,
		FCFToEPS:        0.8,
		PriceToEarnings: 25,
		PriceToBook:     3,
		PriceToSales:    5,
	}
}

// Scorer maps one FinancialMetrics snapshot to a FundamentalAnalysis.
// It holds no mutable state and is safe for concurrent use.
type Scorer struct {
	thresholds Thresholds
	progress   interfaces.ProgressReporter
}

// ScorerOption configures a Scorer
type ScorerOption func(*Scorer)

// WithProgress sets the reporter notified as each category is scored
func WithProgress(p interfaces.ProgressReporter) ScorerOption {
	return func(s *Scorer) {
		if p != nil {
			s.progress = p
		}
	}
}

// NewScorer creates a scorer with the given thresholds
func NewScorer(thresholds Thresholds, opts ...ScorerOption) *Scorer {
	s := &Scorer{
		thresholds: thresholds,
		progress:   NopProgress{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Thresholds returns the scorer's thresholds
func (s *Scorer) Thresholds() Thresholds {
	return s.thresholds
}

// Score classifies the four categories and aggregates them into an overall signal
func (s *Scorer) Score(ticker string, m types.FinancialMetrics) types.FundamentalAnalysis {
	var r types.Reasoning

	s.progress.Update(ticker, types.StageScoringProfitability)
	r.Profitability = s.scoreProfitability(m)

	s.progress.Update(ticker, types.StageScoringGrowth)
	r.Growth = s.scoreGrowth(m)

	s.progress.Update(ticker, types.StageScoringFinancialHealth)
	r.FinancialHealth = s.scoreFinancialHealth(m)

	s.progress.Update(ticker, types.StageScoringPriceRatios)
	r.PriceRatios = s.scorePriceRatios(m)

	s.progress.Update(ticker, types.StageAggregating)
	signal, confidence := Aggregate(r.Signals())

	return types.FundamentalAnalysis{
		Signal:     signal,
		Confidence: confidence,
		Reasoning:  r,
	}
}

func (s *Scorer) scoreProfitability(m types.FinancialMetrics) types.CategorySignal {
	t := s.thresholds
	points := above(m.ReturnOnEquity, t.ReturnOnEquity) +
		above(m.NetMargin, t.NetMargin) +
		above(m.OperatingMargin, t.OperatingMargin)

	return types.CategorySignal{
		Signal: classify(points),
		Details: fmt.Sprintf("ROE: %s, Net Margin: %s, Op Margin: %s",
			percent(m.ReturnOnEquity), percent(m.NetMargin), percent(m.OperatingMargin)),
	}
}

func (s *Scorer) scoreGrowth(m types.FinancialMetrics) types.CategorySignal {
	t := s.thresholds
	points := above(m.RevenueGrowth, t.RevenueGrowth) +
		above(m.EarningsGrowth, t.EarningsGrowth) +
		above(m.BookValueGrowth, t.BookValueGrowth)

	return types.CategorySignal{
		Signal: classify(points),
		Details: fmt.Sprintf("Revenue Growth: %s, Earnings Growth: %s, Book Value Growth: %s",
			percent(m.RevenueGrowth), percent(m.EarningsGrowth), percent(m.BookValueGrowth)),
	}
}

func (s *Scorer) scoreFinancialHealth(m types.FinancialMetrics) types.CategorySignal {
	t := s.thresholds
	points := above(m.CurrentRatio, t.CurrentRatio) + below(m.DebtToEquity, t.DebtToEquity)

	// Cash conversion: both operands must be known
	if m.FreeCashFlowPerShare != nil && m.EarningsPerShare != nil &&
		*m.FreeCashFlowPerShare > *m.EarningsPerShare*t.FCFToEPS {
		points++
	}

	return types.CategorySignal{
		Signal: classify(points),
		Details: fmt.Sprintf("Current Ratio: %s, D/E: %s",
			number(m.CurrentRatio), number(m.DebtToEquity)),
	}
}

// scorePriceRatios awards a point for each ratio above its bound, the same way the
// other categories award points. Expensive therefore leans bullish.
func (s *Scorer) scorePriceRatios(m types.FinancialMetrics) types.CategorySignal {
	t := s.thresholds
	points := above(m.PriceToEarningsRatio, t.PriceToEarnings) +
		above(m.PriceToBookRatio, t.PriceToBook) +
		above(m.PriceToSalesRatio, t.PriceToSales)

	return types.CategorySignal{
		Signal: classify(points),
		Details: fmt.Sprintf("P/E: %s, P/B: %s, P/S: %s",
			number(m.PriceToEarningsRatio), number(m.PriceToBookRatio), number(m.PriceToSalesRatio)),
	}
}

// Aggregate counts bullish and bearish labels: the larger count wins, a tie is neutral.
// Confidence is the dominant count over the number of labels, even on a tie.
func Aggregate(signals []types.Signal) (types.Signal, int) {
	if len(signals) == 0 {
		return types.Neutral, 0
	}

	var bullish, bearish int
	for _, sig := range signals {
		switch sig {
		case types.Bullish:
			bullish++
		case types.Bearish:
			bearish++
		}
	}

	overall := types.Neutral
	if bullish > bearish {
		overall = types.Bullish
	} else if bearish > bullish {
		overall = types.Bearish
	}

	dominant := max(bullish, bearish)
	confidence := int(math.Round(float64(dominant) / float64(len(signals)) * 100))
	return overall, confidence
}

// classify maps a 0-3 point total to a label
func classify(points int) types.Signal {
	switch {
	case points >= 2:
		return types.Bullish
	case points == 0:
		return types.Bearish
	default:
		return types.Neutral
	}
}

// above scores 1 when v is known and strictly greater than threshold
func above(v *float64, threshold float64) int {
	if v != nil && *v > threshold {
		return 1
	}
	return 0
}

// below scores 1 when v is known and strictly less than threshold
func below(v *float64, threshold float64) int {
	if v != nil && *v < threshold {
		return 1
	}
	return 0
}

func percent(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%%", *v)
}

func number(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", *v)
}

// RuleScorer adapts Scorer to interfaces.SignalScorer
type RuleScorer struct {
	scorer *Scorer
}

var _ interfaces.SignalScorer = (*RuleScorer)(nil)

// NewRuleScorer wraps a deterministic scorer
func NewRuleScorer(scorer *Scorer) *RuleScorer {
	return &RuleScorer{scorer: scorer}
}

// Score never fails; unknown metrics only withhold points
func (r *RuleScorer) Score(ctx context.Context, ticker string, metrics types.FinancialMetrics) (types.FundamentalAnalysis, error) {
	return r.scorer.Score(ticker, metrics), nil
}
