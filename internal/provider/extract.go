package provider

import (
	"math"
	"sort"
	"strings"
	"time"

	"fundamentals-agent/internal/types"
)

// Yahoo wraps every number as {"raw": 1.23, "fmt": "1.23"}; an empty object means unknown
type yahooValue struct {
	Raw *float64 `json:"raw"`
}

type yahooDate struct {
	Raw *int64 `json:"raw"`
}

func (d yahooDate) time() (time.Time, bool) {
	if d.Raw == nil {
		return time.Time{}, false
	}
	return time.Unix(*d.Raw, 0).UTC(), true
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []quoteSummaryResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

type incomeStatement struct {
	EndDate         yahooDate  `json:"endDate"`
	TotalRevenue    yahooValue `json:"totalRevenue"`
	OperatingIncome yahooValue `json:"operatingIncome"`
	NetIncome       yahooValue `json:"netIncome"`
}

type balanceSheet struct {
	EndDate                 yahooDate  `json:"endDate"`
	TotalStockholderEquity  yahooValue `json:"totalStockholderEquity"`
	TotalCurrentAssets      yahooValue `json:"totalCurrentAssets"`
	TotalCurrentLiabilities yahooValue `json:"totalCurrentLiabilities"`
	LongTermDebt            yahooValue `json:"longTermDebt"`
}

type cashflowStatement struct {
	EndDate                          yahooDate  `json:"endDate"`
	TotalCashFromOperatingActivities yahooValue `json:"totalCashFromOperatingActivities"`
	CapitalExpenditures              yahooValue `json:"capitalExpenditures"`
	FreeCashFlow                     yahooValue `json:"freeCashFlow"`
}

type quoteSummaryResult struct {
	IncomeStatementHistory struct {
		Statements []incomeStatement `json:"incomeStatementHistory"`
	} `json:"incomeStatementHistory"`
	BalanceSheetHistory struct {
		Statements []balanceSheet `json:"balanceSheetStatements"`
	} `json:"balanceSheetHistory"`
	CashflowStatementHistory struct {
		Statements []cashflowStatement `json:"cashflowStatements"`
	} `json:"cashflowStatementHistory"`
	DefaultKeyStatistics struct {
		SharesOutstanding yahooValue `json:"sharesOutstanding"`
		ForwardEps        yahooValue `json:"forwardEps"`
		ForwardPE         yahooValue `json:"forwardPE"`
		PriceToBook       yahooValue `json:"priceToBook"`
	} `json:"defaultKeyStatistics"`
	SummaryDetail struct {
		PriceToSalesTrailing12Months yahooValue `json:"priceToSalesTrailing12Months"`
		Currency                     string     `json:"currency"`
	} `json:"summaryDetail"`
	FinancialData struct {
		FinancialCurrency string `json:"financialCurrency"`
	} `json:"financialData"`
}

// period joins the three statements that share an end date
type period struct {
	end      time.Time
	income   incomeStatement
	balance  *balanceSheet
	cashflow *cashflowStatement
}

// extractMetrics turns a quoteSummary result into metric records, most recent first.
// Only periods ending on or before asOf are used; quote-based ratios (EPS, P/E, P/B,
// P/S) describe today's price and are attached to the most recent period only.
func extractMetrics(ticker string, res quoteSummaryResult, asOf time.Time, limit int) []types.FinancialMetrics {
	periods := collectPeriods(res, asOf)
	if len(periods) == 0 {
		return nil
	}

	currency := res.FinancialData.FinancialCurrency
	if currency == "" {
		currency = res.SummaryDetail.Currency
	}
	shares := res.DefaultKeyStatistics.SharesOutstanding.Raw

	n := len(periods)
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]types.FinancialMetrics, 0, n)
	for i := 0; i < n; i++ {
		cur := periods[i]
		m := types.FinancialMetrics{
			Ticker:    strings.ToUpper(ticker),
			PeriodEnd: cur.end,
			Currency:  currency,
		}

		var equity, currentAssets, currentLiabilities, longTermDebt *float64
		if cur.balance != nil {
			equity = cur.balance.TotalStockholderEquity.Raw
			currentAssets = cur.balance.TotalCurrentAssets.Raw
			currentLiabilities = cur.balance.TotalCurrentLiabilities.Raw
			longTermDebt = cur.balance.LongTermDebt.Raw
		}

		m.ReturnOnEquity = percentOf(cur.income.NetIncome.Raw, equity)
		m.NetMargin = percentOf(cur.income.NetIncome.Raw, cur.income.TotalRevenue.Raw)
		m.OperatingMargin = percentOf(cur.income.OperatingIncome.Raw, cur.income.TotalRevenue.Raw)
		m.CurrentRatio = ratio(currentAssets, currentLiabilities)
		m.DebtToEquity = ratio(longTermDebt, equity)

		if cur.cashflow != nil {
			m.FreeCashFlowPerShare = ratio(freeCashFlow(*cur.cashflow), shares)
		}

		if i+1 < len(periods) {
			prev := periods[i+1]
			m.RevenueGrowth = growth(cur.income.TotalRevenue.Raw, prev.income.TotalRevenue.Raw)
			m.EarningsGrowth = growth(cur.income.NetIncome.Raw, prev.income.NetIncome.Raw)
			if cur.balance != nil && prev.balance != nil {
				m.BookValueGrowth = growth(equity, prev.balance.TotalStockholderEquity.Raw)
			}
		}

		if i == 0 {
			stats := res.DefaultKeyStatistics
			m.EarningsPerShare = finite(stats.ForwardEps.Raw)
			m.PriceToEarningsRatio = finite(stats.ForwardPE.Raw)
			m.PriceToBookRatio = finite(stats.PriceToBook.Raw)
			m.PriceToSalesRatio = finite(res.SummaryDetail.PriceToSalesTrailing12Months.Raw)
		}

		out = append(out, m)
	}
	return out
}

func collectPeriods(res quoteSummaryResult, asOf time.Time) []period {
	balances := make(map[int64]*balanceSheet)
	for i := range res.BalanceSheetHistory.Statements {
		b := &res.BalanceSheetHistory.Statements[i]
		if b.EndDate.Raw != nil {
			balances[*b.EndDate.Raw] = b
		}
	}
	cashflows := make(map[int64]*cashflowStatement)
	for i := range res.CashflowStatementHistory.Statements {
		c := &res.CashflowStatementHistory.Statements[i]
		if c.EndDate.Raw != nil {
			cashflows[*c.EndDate.Raw] = c
		}
	}

	var periods []period
	for _, inc := range res.IncomeStatementHistory.Statements {
		end, ok := inc.EndDate.time()
		if !ok || end.After(asOf) {
			continue
		}
		key := *inc.EndDate.Raw
		periods = append(periods, period{
			end:      end,
			income:   inc,
			balance:  balances[key],
			cashflow: cashflows[key],
		})
	}

	sort.Slice(periods, func(i, j int) bool {
		return periods[i].end.After(periods[j].end)
	})
	return periods
}

// freeCashFlow prefers the reported figure, otherwise operating cash flow plus capex
// (capex is reported as a negative number)
func freeCashFlow(c cashflowStatement) *float64 {
	if c.FreeCashFlow.Raw != nil {
		return c.FreeCashFlow.Raw
	}
	ocf, capex := c.TotalCashFromOperatingActivities.Raw, c.CapitalExpenditures.Raw
	if ocf == nil || capex == nil {
		return nil
	}
	return types.Float(*ocf + *capex)
}

func ratio(num, den *float64) *float64 {
	if num == nil || den == nil || *den == 0 {
		return nil
	}
	return finite(types.Float(*num / *den))
}

func percentOf(num, den *float64) *float64 {
	r := ratio(num, den)
	if r == nil {
		return nil
	}
	return types.Float(*r * 100)
}

func growth(cur, prev *float64) *float64 {
	if cur == nil || prev == nil || *prev == 0 {
		return nil
	}
	return finite(types.Float((*cur - *prev) / math.Abs(*prev) * 100))
}

func finite(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	return v
}
