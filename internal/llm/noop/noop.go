package noop

import (
	"context"

	"fundamentals-agent/internal/interfaces"
	"fundamentals-agent/internal/llm"
	"fundamentals-agent/internal/logger"
	"fundamentals-agent/internal/types"
)

// Scorer is used when the LLM engine is selected but no model is configured.
// It always returns the neutral fallback.
type Scorer struct{}

var _ interfaces.SignalScorer = Scorer{}

func NewScorer() Scorer {
	return Scorer{}
}

func (Scorer) Score(ctx context.Context, ticker string, metrics types.FinancialMetrics) (types.FundamentalAnalysis, error) {
	logger.Debug(ctx, "Noop scorer called - returning neutral fallback", "ticker", ticker)
	return llm.Fallback(), nil
}
