package interfaces

import (
	"context"
	"time"

	"fundamentals-agent/internal/types"
)

// MetricsProvider yields financial metrics for a ticker as of a date.
// Records are ordered most recent first; at most limit records are returned.
// Records may be shared with a cache and must not be modified.
type MetricsProvider interface {
	FetchMetrics(ctx context.Context, ticker string, asOf time.Time, limit int) ([]types.FinancialMetrics, error)
}
