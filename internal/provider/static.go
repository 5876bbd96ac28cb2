package provider

import (
	"context"
	"sort"
	"strings"
	"time"

	"fundamentals-agent/internal/interfaces"
	"fundamentals-agent/internal/types"
)

// StaticProvider serves fixed records keyed by ticker
type StaticProvider struct {
	records map[string][]types.FinancialMetrics
}

var _ interfaces.MetricsProvider = (*StaticProvider)(nil)

// NewStaticProvider creates a provider over the given records. Records are returned
// ordered by PeriodEnd, most recent first.
func NewStaticProvider(records map[string][]types.FinancialMetrics) *StaticProvider {
	s := &StaticProvider{records: make(map[string][]types.FinancialMetrics, len(records))}
	for ticker, recs := range records {
		sorted := append([]types.FinancialMetrics(nil), recs...)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].PeriodEnd.After(sorted[j].PeriodEnd)
		})
		s.records[strings.ToUpper(ticker)] = sorted
	}
	return s
}

// FetchMetrics returns records ending on or before asOf. Records without a PeriodEnd
// are always eligible.
func (s *StaticProvider) FetchMetrics(ctx context.Context, ticker string, asOf time.Time, limit int) ([]types.FinancialMetrics, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	recs, ok := s.records[strings.ToUpper(ticker)]
	if !ok {
		return nil, unavailable(ticker, ErrTickerNotFound)
	}

	var out []types.FinancialMetrics
	for _, r := range recs {
		if !r.PeriodEnd.IsZero() && r.PeriodEnd.After(asOf) {
			continue
		}
		out = append(out, r)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	if len(out) == 0 {
		return nil, unavailable(ticker, ErrNoStatements)
	}
	return out, nil
}
