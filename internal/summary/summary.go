package summary

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"fundamentals-agent/internal/interfaces"
	"fundamentals-agent/internal/signallog"
	"fundamentals-agent/internal/types"
)

// aggRow collects one ticker's evaluations for the day
type aggRow struct {
	Ticker          string
	Evaluations     int
	Bullish         int
	Bearish         int
	Neutral         int
	Unavailable     int
	ConfidenceTotal int
	LastSignal      types.Signal
}

type summarizer struct {
	dir string
	now func() time.Time
}

var _ interfaces.Summarizer = (*summarizer)(nil)

// NewSummarizer reads signal logs from dir and writes CSVs to dir/summary
func NewSummarizer(dir string) interfaces.Summarizer {
	if dir == "" {
		dir = "logs"
	}
	return &summarizer{dir: dir, now: time.Now}
}

func csvPath(dir string, t time.Time) string {
	return filepath.Join(dir, "summary", t.UTC().Format("2006-01-02")+".csv")
}

// SummarizeDay writes the per-ticker CSV for t's day. It returns "" when nothing was logged.
func (s *summarizer) SummarizeDay(t time.Time) (string, error) {
	entries, err := signallog.ReadDay(s.dir, t)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", nil
	}

	aggs := map[string]*aggRow{}
	for _, e := range entries {
		row := aggs[e.Ticker]
		if row == nil {
			row = &aggRow{Ticker: e.Ticker}
			aggs[e.Ticker] = row
		}
		row.Evaluations++
		row.LastSignal = e.Signal

		// placeholders carry a neutral label but are counted apart
		if e.Status == types.StatusMetricsUnavailable {
			row.Unavailable++
			continue
		}
		row.ConfidenceTotal += e.Confidence
		switch e.Signal {
		case types.Bullish:
			row.Bullish++
		case types.Bearish:
			row.Bearish++
		default:
			row.Neutral++
		}
	}

	keys := make([]string, 0, len(aggs))
	for k := range aggs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	outPath := csvPath(s.dir, t)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", err
	}
	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	w := csv.NewWriter(out)
	headers := []string{"ticker", "evaluations", "bullish", "bearish", "neutral", "unavailable", "avg_confidence", "last_signal"}
	if err := w.Write(headers); err != nil {
		return "", err
	}

	var total aggRow
	for _, k := range keys {
		r := aggs[k]
		if err := w.Write(r.record()); err != nil {
			return "", err
		}
		total.Evaluations += r.Evaluations
		total.Bullish += r.Bullish
		total.Bearish += r.Bearish
		total.Neutral += r.Neutral
		total.Unavailable += r.Unavailable
		total.ConfidenceTotal += r.ConfidenceTotal
	}
	total.Ticker = "TOTAL"
	if err := w.Write(total.record()); err != nil {
		return "", err
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return outPath, nil
}

func (s *summarizer) SummarizeToday() (string, error) {
	return s.SummarizeDay(s.now())
}

func (r aggRow) record() []string {
	scored := r.Evaluations - r.Unavailable
	avg := 0.0
	if scored > 0 {
		avg = float64(r.ConfidenceTotal) / float64(scored)
	}
	return []string{
		r.Ticker,
		strconv.Itoa(r.Evaluations),
		strconv.Itoa(r.Bullish),
		strconv.Itoa(r.Bearish),
		strconv.Itoa(r.Neutral),
		strconv.Itoa(r.Unavailable),
		fmt.Sprintf("%.2f", avg),
		string(r.LastSignal),
	}
}
