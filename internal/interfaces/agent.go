package interfaces

import (
	"context"
	"time"

	"fundamentals-agent/internal/types"
)

// FundamentalsAgent fetches metrics and scores a batch of tickers
type FundamentalsAgent interface {
	// Analyze evaluates every ticker independently; a failed fetch yields a placeholder entry
	Analyze(ctx context.Context, tickers []string, asOf time.Time) (*types.AnalysisResult, error)

	// AnalyzeTicker evaluates a single ticker
	AnalyzeTicker(ctx context.Context, ticker string, asOf time.Time) (types.TickerAnalysis, error)
}
