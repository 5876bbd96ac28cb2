package llmobs

import (
	"context"

	"fundamentals-agent/internal/interfaces"
	"fundamentals-agent/internal/logger"
	"fundamentals-agent/internal/trace"
	"fundamentals-agent/internal/types"
)

// observableScorer wraps a SignalScorer with observability (logging & tracing)
type observableScorer struct {
	scorer interfaces.SignalScorer
	engine string
}

// Compile-time interface check
var _ interfaces.SignalScorer = (*observableScorer)(nil)

// Wrap wraps a scorer with observability middleware
func Wrap(scorer interfaces.SignalScorer, engine string) interfaces.SignalScorer {
	return &observableScorer{scorer: scorer, engine: engine}
}

func (o *observableScorer) Score(ctx context.Context, ticker string, metrics types.FinancialMetrics) (types.FundamentalAnalysis, error) {
	ctx, span := trace.StartSpan(ctx, "scorer.Score")
	defer span.End()

	// DebugSkip(1) reports the actual caller, not this wrapper
	logger.DebugSkip(ctx, 1, "Requesting fundamental score",
		"ticker", ticker,
		"engine", o.engine,
	)

	analysis, err := o.scorer.Score(ctx, ticker, metrics)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to score ticker", err,
			"ticker", ticker,
			"engine", o.engine,
		)
		return types.FundamentalAnalysis{}, err
	}

	logger.DebugSkip(ctx, 1, "Fundamental score computed",
		"ticker", ticker,
		"engine", o.engine,
		"signal", string(analysis.Signal),
		"confidence", analysis.Confidence,
	)
	return analysis, nil
}
