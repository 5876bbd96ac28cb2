package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"fundamentals-agent/internal/api"
	"fundamentals-agent/internal/interfaces"
	"fundamentals-agent/internal/types"
)

const (
	DefaultYahooBaseURL = "https://query2.finance.yahoo.com"

	quoteSummaryModules = "incomeStatementHistory,balanceSheetHistory,cashflowStatementHistory," +
		"defaultKeyStatistics,financialData,summaryDetail"
)

// YahooConfig configures the Yahoo quoteSummary provider
type YahooConfig struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	MaxAttempts       int
	HTTPClient        *http.Client
}

// YahooProvider fetches statements from Yahoo Finance and derives the metric ratios
type YahooProvider struct {
	client  *api.Client
	limiter *rate.Limiter
	retry   *api.RetryConfig
}

var _ interfaces.MetricsProvider = (*YahooProvider)(nil)

// NewYahooProvider creates a Yahoo-backed metrics provider
func NewYahooProvider(cfg YahooConfig) *YahooProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultYahooBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 2
	}

	retry := api.DefaultRetryConfig()
	if cfg.MaxAttempts > 0 {
		retry.MaxAttempts = cfg.MaxAttempts
	}

	burst := int(cfg.RequestsPerSecond)
	if burst < 1 {
		burst = 1
	}

	return &YahooProvider{
		client: api.NewClient(
			api.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")),
			api.WithTimeout(cfg.Timeout),
			api.WithHeaders(api.YahooFinanceHeaders()),
			api.WithHTTPClient(cfg.HTTPClient),
			api.WithLogging(true),
		),
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst),
		retry:   retry,
	}
}

// FetchMetrics returns up to limit metric records for ticker, most recent first.
// Every failure is reported as a *MetricsUnavailableError.
func (y *YahooProvider) FetchMetrics(ctx context.Context, ticker string, asOf time.Time, limit int) ([]types.FinancialMetrics, error) {
	if err := y.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/v10/finance/quoteSummary/%s?modules=%s",
		url.PathEscape(strings.ToUpper(ticker)), url.QueryEscape(quoteSummaryModules))
	req := api.NewRequest(http.MethodGet, path).WithContext(ctx)

	resp, err := y.client.DoWithRetry(req, y.retry)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var statusErr *api.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return nil, unavailable(ticker, ErrTickerNotFound)
		}
		return nil, unavailable(ticker, fmt.Errorf("quoteSummary request: %w", err))
	}

	var body quoteSummaryResponse
	if err := resp.ParseJSON(&body); err != nil {
		return nil, unavailable(ticker, err)
	}
	if e := body.QuoteSummary.Error; e != nil {
		if strings.EqualFold(e.Code, "Not Found") {
			return nil, unavailable(ticker, ErrTickerNotFound)
		}
		return nil, unavailable(ticker, fmt.Errorf("quoteSummary error %s: %s", e.Code, e.Description))
	}
	if len(body.QuoteSummary.Result) == 0 {
		return nil, unavailable(ticker, ErrTickerNotFound)
	}

	records := extractMetrics(ticker, body.QuoteSummary.Result[0], asOf, limit)
	if len(records) == 0 {
		return nil, unavailable(ticker, ErrNoStatements)
	}
	return records, nil
}
