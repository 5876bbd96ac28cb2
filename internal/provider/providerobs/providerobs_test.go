package providerobs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundamentals-agent/internal/logger"
	"fundamentals-agent/internal/provider"
	"fundamentals-agent/internal/types"
)

type failingProvider struct{ err error }

func (f failingProvider) FetchMetrics(ctx context.Context, ticker string, asOf time.Time, limit int) ([]types.FinancialMetrics, error) {
	return nil, f.err
}

func lastRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var rec map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &rec))
	return rec
}

func TestFetchFailureLevels(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		level string
		msg   string
	}{
		{"unknown ticker", &provider.MetricsUnavailableError{Ticker: "ZZZZ", Err: provider.ErrTickerNotFound}, "WARN", "Financial metrics unavailable"},
		{"transport fault", errors.New("connection reset"), "ERROR", "Financial metrics fetch failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, logger.InitWithConfig(logger.LogConfig{Level: "INFO", Format: "json", Output: &buf}))

			p := Wrap(failingProvider{err: tt.err}, "TEST")
			_, err := p.FetchMetrics(context.Background(), "ZZZZ", time.Now(), 5)
			require.ErrorIs(t, err, tt.err)

			rec := lastRecord(t, &buf)
			assert.Equal(t, tt.level, rec["level"])
			assert.Equal(t, tt.msg, rec["msg"])
			assert.Equal(t, "ZZZZ", rec["ticker"])
		})
	}
}

func TestFetchSuccessPassesRecordsThrough(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, logger.InitWithConfig(logger.LogConfig{Level: "INFO", Format: "json", Output: &buf}))

	inner := provider.NewStaticProvider(map[string][]types.FinancialMetrics{
		"AAPL": {{Ticker: "AAPL", NetMargin: types.Float(25)}},
	})
	records, err := Wrap(inner, "STATIC").FetchMetrics(context.Background(), "AAPL", time.Now(), 5)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := lastRecord(t, &buf)
	assert.Equal(t, "Financial metrics fetched", rec["msg"])
	assert.EqualValues(t, 1, rec["records"])
}
