package provider

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"fundamentals-agent/internal/interfaces"
	"fundamentals-agent/internal/types"
)

// MockProvider generates plausible statements for any ticker. The numbers depend only on
// the ticker and asOf, so repeated runs give the same metrics.
type MockProvider struct {
	missing map[string]bool
}

var _ interfaces.MetricsProvider = (*MockProvider)(nil)

// MockOption configures a MockProvider
type MockOption func(*MockProvider)

// WithMissingTickers makes the mock report the given tickers as not found
func WithMissingTickers(tickers ...string) MockOption {
	return func(m *MockProvider) {
		for _, t := range tickers {
			m.missing[strings.ToUpper(t)] = true
		}
	}
}

// NewMockProvider creates a new mock provider
func NewMockProvider(opts ...MockOption) *MockProvider {
	m := &MockProvider{missing: make(map[string]bool)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// FetchMetrics builds limit+1 annual periods ending before asOf and derives the ratios the
// same way the Yahoo provider does
func (m *MockProvider) FetchMetrics(ctx context.Context, ticker string, asOf time.Time, limit int) ([]types.FinancialMetrics, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.missing[strings.ToUpper(ticker)] {
		return nil, unavailable(ticker, ErrTickerNotFound)
	}
	if limit <= 0 {
		limit = 4
	}

	res := m.generate(ticker, asOf, limit+1)
	records := extractMetrics(ticker, res, asOf, limit)
	if len(records) == 0 {
		return nil, unavailable(ticker, ErrNoStatements)
	}
	return records, nil
}

func (m *MockProvider) generate(ticker string, asOf time.Time, periods int) quoteSummaryResult {
	symbolSeed := int64(0)
	for _, c := range strings.ToUpper(ticker) {
		symbolSeed = symbolSeed*31 + int64(c)
	}
	r := rand.New(rand.NewSource(symbolSeed + int64(asOf.Year())))

	var res quoteSummaryResult
	res.FinancialData.FinancialCurrency = "USD"

	revenue := 1e9 + r.Float64()*9e10
	netMargin := -0.05 + r.Float64()*0.35
	opMargin := netMargin + r.Float64()*0.10
	equity := revenue * (0.2 + r.Float64()*1.5)
	shares := 1e8 + r.Float64()*5e9

	// Walk backwards from the last fiscal year end before asOf
	year := asOf.Year() - 1
	for i := 0; i < periods; i++ {
		end := time.Date(year-i, time.December, 31, 0, 0, 0, 0, time.UTC).Unix()

		netIncome := revenue * netMargin
		res.IncomeStatementHistory.Statements = append(res.IncomeStatementHistory.Statements, incomeStatement{
			EndDate:         yahooDate{Raw: &end},
			TotalRevenue:    value(revenue),
			OperatingIncome: value(revenue * opMargin),
			NetIncome:       value(netIncome),
		})

		currentLiabilities := revenue * (0.1 + r.Float64()*0.3)
		res.BalanceSheetHistory.Statements = append(res.BalanceSheetHistory.Statements, balanceSheet{
			EndDate:                 yahooDate{Raw: &end},
			TotalStockholderEquity:  value(equity),
			TotalCurrentAssets:      value(currentLiabilities * (0.6 + r.Float64()*2.0)),
			TotalCurrentLiabilities: value(currentLiabilities),
			LongTermDebt:            value(equity * r.Float64() * 1.2),
		})

		ocf := netIncome * (0.6 + r.Float64()*0.9)
		res.CashflowStatementHistory.Statements = append(res.CashflowStatementHistory.Statements, cashflowStatement{
			EndDate:                          yahooDate{Raw: &end},
			TotalCashFromOperatingActivities: value(ocf),
			CapitalExpenditures:              value(-revenue * r.Float64() * 0.08),
		})

		// Prior year is the current one shrunk by a random growth rate
		revenue /= 1 + (-0.10 + r.Float64()*0.35)
		equity /= 1 + (-0.05 + r.Float64()*0.25)
		netMargin = clamp(netMargin+(-0.03+r.Float64()*0.06), -0.2, 0.4)
		opMargin = netMargin + r.Float64()*0.10
	}

	stats := &res.DefaultKeyStatistics
	stats.SharesOutstanding = value(shares)
	stats.ForwardEps = value(revenue * netMargin / shares * (0.9 + r.Float64()*0.3))
	stats.ForwardPE = value(8 + r.Float64()*40)
	stats.PriceToBook = value(0.8 + r.Float64()*6)
	res.SummaryDetail.PriceToSalesTrailing12Months = value(0.5 + r.Float64()*9)
	res.SummaryDetail.Currency = "USD"

	return res
}

func value(v float64) yahooValue {
	return yahooValue{Raw: &v}
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}
