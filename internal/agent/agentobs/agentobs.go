package agentobs

import (
	"context"
	"time"

	"fundamentals-agent/internal/interfaces"
	"fundamentals-agent/internal/logger"
	"fundamentals-agent/internal/trace"
	"fundamentals-agent/internal/types"
)

// observableAgent wraps a FundamentalsAgent with logging and tracing
type observableAgent struct {
	agent interfaces.FundamentalsAgent
}

var _ interfaces.FundamentalsAgent = (*observableAgent)(nil)

// Wrap wraps an agent with observability middleware
func Wrap(agent interfaces.FundamentalsAgent) interfaces.FundamentalsAgent {
	return &observableAgent{agent: agent}
}

func (oa *observableAgent) Analyze(ctx context.Context, tickers []string, asOf time.Time) (*types.AnalysisResult, error) {
	ctx, span := trace.StartSpan(ctx, "fundamentals.Analyze")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Starting fundamental analysis",
		"ticker_count", len(tickers),
		"as_of", asOf.Format("2006-01-02"),
	)
	start := time.Now()

	result, err := oa.agent.Analyze(ctx, tickers, asOf)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Fundamental analysis failed", err,
			"ticker_count", len(tickers),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	logger.InfoSkip(ctx, 1, "Fundamental analysis completed",
		"run_id", result.RunID,
		"evaluated", result.Evaluated,
		"unavailable", result.Failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

func (oa *observableAgent) AnalyzeTicker(ctx context.Context, ticker string, asOf time.Time) (types.TickerAnalysis, error) {
	ctx, span := trace.StartSpan(ctx, "fundamentals.AnalyzeTicker")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Analyzing ticker", "ticker", ticker)

	analysis, err := oa.agent.AnalyzeTicker(ctx, ticker, asOf)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Ticker analysis failed", err, "ticker", ticker)
		return types.TickerAnalysis{}, err
	}

	logger.DebugSkip(ctx, 1, "Ticker analysis completed",
		"ticker", ticker,
		"signal", string(analysis.Signal),
		"confidence", analysis.Confidence,
		"status", analysis.Status,
	)
	return analysis, nil
}
