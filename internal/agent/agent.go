package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"fundamentals-agent/internal/fundamentals"
	"fundamentals-agent/internal/interfaces"
	"fundamentals-agent/internal/logger"
	"fundamentals-agent/internal/provider"
	"fundamentals-agent/internal/types"
)

// ErrNoTickers is returned when a batch has no usable ticker after normalization
var ErrNoTickers = errors.New("no valid tickers provided")

const (
	DefaultLookback       = 10
	DefaultMaxConcurrency = 4
)

// Config controls how much history is fetched and how many tickers run at once
type Config struct {
	Lookback       int
	MaxConcurrency int
}

// Agent fetches metrics for each ticker and scores the most recent record
type Agent struct {
	provider interfaces.MetricsProvider
	scorer   interfaces.SignalScorer
	progress interfaces.ProgressReporter
	recorder interfaces.SignalRecorder
	cfg      Config
}

var _ interfaces.FundamentalsAgent = (*Agent)(nil)

// Option configures an Agent
type Option func(*Agent)

// WithProgress sets the reporter notified at fetch and completion checkpoints
func WithProgress(p interfaces.ProgressReporter) Option {
	return func(a *Agent) {
		if p != nil {
			a.progress = p
		}
	}
}

// WithRecorder appends every finished analysis to a signal log
func WithRecorder(r interfaces.SignalRecorder) Option {
	return func(a *Agent) {
		a.recorder = r
	}
}

// New creates an agent. A nil scorer uses the rule scorer with default thresholds.
func New(p interfaces.MetricsProvider, scorer interfaces.SignalScorer, cfg Config, opts ...Option) *Agent {
	if cfg.Lookback <= 0 {
		cfg.Lookback = DefaultLookback
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = DefaultMaxConcurrency
	}
	if scorer == nil {
		scorer = fundamentals.NewRuleScorer(fundamentals.NewScorer(fundamentals.DefaultThresholds()))
	}

	a := &Agent{
		provider: p,
		scorer:   scorer,
		progress: fundamentals.NopProgress{},
		cfg:      cfg,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze evaluates every ticker concurrently. One ticker's failed fetch does not affect
// the others; it shows up as a metrics_unavailable entry.
func (a *Agent) Analyze(ctx context.Context, tickers []string, asOf time.Time) (*types.AnalysisResult, error) {
	tickers = NormalizeTickers(tickers)
	if len(tickers) == 0 {
		return nil, ErrNoTickers
	}

	result := &types.AnalysisResult{
		RunID:    uuid.NewString(),
		AsOf:     asOf,
		Tickers:  tickers,
		Analyses: make(map[string]types.TickerAnalysis, len(tickers)),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.MaxConcurrency)

	for _, ticker := range tickers {
		g.Go(func() error {
			analysis, err := a.analyze(gctx, ticker, asOf)
			if err != nil {
				return fmt.Errorf("analyze %s: %w", ticker, err)
			}
			a.record(gctx, result.RunID, ticker, asOf, analysis)

			mu.Lock()
			defer mu.Unlock()
			result.Analyses[ticker] = analysis
			if analysis.Unavailable() {
				result.Failed++
			} else {
				result.Evaluated++
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// AnalyzeTicker evaluates a single ticker
func (a *Agent) AnalyzeTicker(ctx context.Context, ticker string, asOf time.Time) (types.TickerAnalysis, error) {
	normalized := NormalizeTickers([]string{ticker})
	if len(normalized) == 0 {
		return types.TickerAnalysis{}, ErrNoTickers
	}
	ticker = normalized[0]

	analysis, err := a.analyze(ctx, ticker, asOf)
	if err != nil {
		return types.TickerAnalysis{}, err
	}
	a.record(ctx, uuid.NewString(), ticker, asOf, analysis)
	return analysis, nil
}

func (a *Agent) analyze(ctx context.Context, ticker string, asOf time.Time) (types.TickerAnalysis, error) {
	a.progress.Update(ticker, types.StageFetchingMetrics)

	records, err := a.provider.FetchMetrics(ctx, ticker, asOf, a.cfg.Lookback)
	if err == nil && len(records) == 0 {
		err = &provider.MetricsUnavailableError{Ticker: ticker, Err: provider.ErrNoStatements}
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return types.TickerAnalysis{}, ctxErr
		}
		a.progress.Update(ticker, types.StageFailed)
		return types.UnavailableAnalysis(unwrapUnavailable(err)), nil
	}
	a.progress.Update(ticker, types.StageMetricsFetched)

	latest := records[0]
	fa, err := a.scorer.Score(ctx, ticker, latest)
	if err != nil {
		a.progress.Update(ticker, types.StageFailed)
		return types.TickerAnalysis{}, err
	}

	a.progress.Update(ticker, types.StageDone)
	return types.TickerAnalysis{
		FundamentalAnalysis: fa,
		Metrics:             &latest,
		Status:              types.StatusOK,
	}, nil
}

// unwrapUnavailable strips the ticker prefix so the placeholder reads "metrics unavailable: <reason>"
func unwrapUnavailable(err error) error {
	var mu *provider.MetricsUnavailableError
	if errors.As(err, &mu) && mu.Err != nil {
		return mu.Err
	}
	return err
}

func (a *Agent) record(ctx context.Context, runID, ticker string, asOf time.Time, analysis types.TickerAnalysis) {
	logger.Signal(ctx, ticker, string(analysis.Signal), analysis.Confidence, analysis.Status,
		"run_id", runID,
		"as_of", asOf.Format("2006-01-02"),
	)

	if a.recorder == nil {
		return
	}
	if err := a.recorder.Append(types.NewSignalEntry(runID, ticker, asOf, analysis)); err != nil {
		logger.ErrorWithErr(ctx, "Failed to append signal log", err, "ticker", ticker)
	}
}

// NormalizeTickers trims whitespace and a leading '$', upper-cases, and drops empty and
// duplicate symbols while keeping the first-seen order
func NormalizeTickers(tickers []string) []string {
	seen := make(map[string]bool, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		t = strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(t), "$"))
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
