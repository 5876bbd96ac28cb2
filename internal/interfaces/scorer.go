package interfaces

import (
	"context"

	"fundamentals-agent/internal/types"
)

type SignalScorer interface {
	Score(ctx context.Context, ticker string, metrics types.FinancialMetrics) (types.FundamentalAnalysis, error)
}
