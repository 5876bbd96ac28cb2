package providerobs

import (
	"context"
	"errors"
	"time"

	"fundamentals-agent/internal/interfaces"
	"fundamentals-agent/internal/logger"
	"fundamentals-agent/internal/provider"
	"fundamentals-agent/internal/trace"
	"fundamentals-agent/internal/types"
)

type observableProvider struct {
	provider interfaces.MetricsProvider
	name     string
}

var _ interfaces.MetricsProvider = (*observableProvider)(nil)

// Wrap wraps a metrics provider with logging and tracing
func Wrap(provider interfaces.MetricsProvider, name string) interfaces.MetricsProvider {
	return &observableProvider{provider: provider, name: name}
}

func (op *observableProvider) FetchMetrics(ctx context.Context, ticker string, asOf time.Time, limit int) ([]types.FinancialMetrics, error) {
	ctx, span := trace.StartSpan(ctx, "provider.FetchMetrics")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Fetching financial metrics",
		"provider", op.name,
		"ticker", ticker,
		"as_of", asOf.Format("2006-01-02"),
		"limit", limit,
	)

	start := time.Now()
	records, err := op.provider.FetchMetrics(ctx, ticker, asOf, limit)
	if err != nil {
		// a missing ticker is an expected per-ticker outcome, anything else is a fault
		var unavailable *provider.MetricsUnavailableError
		if errors.As(err, &unavailable) {
			logger.WarnSkip(ctx, 1, "Financial metrics unavailable",
				"provider", op.name,
				"ticker", ticker,
				"reason", err.Error(),
				"duration_ms", time.Since(start).Milliseconds(),
			)
			return nil, err
		}
		logger.ErrorWithErrSkip(ctx, 1, "Financial metrics fetch failed", err,
			"provider", op.name,
			"ticker", ticker,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	fields := []any{
		"provider", op.name,
		"ticker", ticker,
		"records", len(records),
		"duration_ms", time.Since(start).Milliseconds(),
	}
	if len(records) > 0 {
		fields = append(fields, "latest_period", records[0].PeriodEnd.Format("2006-01-02"))
	}
	logger.InfoSkip(ctx, 1, "Financial metrics fetched", fields...)

	return records, nil
}
