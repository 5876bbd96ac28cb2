package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	jsonrepair "github.com/RealAlexandreAI/json-repair"

	"fundamentals-agent/internal/interfaces"
	"fundamentals-agent/internal/logger"
	"fundamentals-agent/internal/types"
)

const (
	DefaultSystemPrompt = "You are a fundamental equity analyst. Classify each category of the " +
		"provided financial metrics as bullish, bearish or neutral and give an overall signal. " +
		"Respond ONLY with compact JSON matching the schema."

	// OutputSchema is sent with every prompt
	OutputSchema = `{"signal":"bullish|bearish|neutral","confidence":0-100,"reasoning":{` +
		`"profitability_signal":{"signal":"...","details":"..."},` +
		`"growth_signal":{"signal":"...","details":"..."},` +
		`"financial_health_signal":{"signal":"...","details":"..."},` +
		`"price_ratios_signal":{"signal":"...","details":"..."}}}`

	FallbackDetails    = "Error in analysis, defaulting to neutral"
	FallbackConfidence = 50
)

// ErrEmptyResponse is returned by completers when the model produced no text
var ErrEmptyResponse = errors.New("empty response from model")

// Config holds the model settings shared by the completers
type Config struct {
	Model       string
	MaxTokens   int
	Temperature float64
	System      string
	Timeout     time.Duration
}

// Completer sends one system+user exchange to a model and returns its text reply
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Scorer asks a model to classify the metrics. Any call or parse failure yields the
// neutral fallback instead of an error.
type Scorer struct {
	completer Completer
	system    string
	name      string
}

var _ interfaces.SignalScorer = (*Scorer)(nil)

// NewScorer creates a model-backed scorer; name is used in logs only
func NewScorer(name string, completer Completer, system string) *Scorer {
	if system == "" {
		system = DefaultSystemPrompt
	}
	return &Scorer{completer: completer, system: system, name: name}
}

func (s *Scorer) Score(ctx context.Context, ticker string, metrics types.FinancialMetrics) (types.FundamentalAnalysis, error) {
	prompt, err := BuildPrompt(ticker, metrics)
	if err != nil {
		return Fallback(), nil
	}

	text, err := s.completer.Complete(ctx, s.system, prompt)
	if err != nil {
		if ctx.Err() != nil {
			return types.FundamentalAnalysis{}, ctx.Err()
		}
		logger.ErrorWithErr(ctx, "Model call failed, using neutral fallback", err, "ticker", ticker, "backend", s.name)
		return Fallback(), nil
	}

	analysis, err := ParseAnalysis(text)
	if err != nil {
		logger.Warn(ctx, "Unable to parse model output, using neutral fallback",
			"ticker", ticker,
			"backend", s.name,
			"error", err,
			"text_preview", text[:min(100, len(text))],
		)
		return Fallback(), nil
	}
	return analysis, nil
}

// BuildPrompt renders the user message for ticker
func BuildPrompt(ticker string, metrics types.FinancialMetrics) (string, error) {
	b, err := json.Marshal(metrics)
	if err != nil {
		return "", fmt.Errorf("marshal metrics: %w", err)
	}
	return fmt.Sprintf("Ticker: %s\nSchema:%s\nMetrics:%s\n\nUnknown metrics are null and must not count in favor of any signal. "+
		"Respond ONLY with compact JSON matching the schema.", ticker, OutputSchema, string(b)), nil
}

// Fallback is the verdict used when the model cannot produce one
func Fallback() types.FundamentalAnalysis {
	return types.NeutralAnalysis(FallbackConfidence, FallbackDetails)
}

type rawCategory struct {
	Signal  string `json:"signal"`
	Details string `json:"details"`
}

type rawAnalysis struct {
	Signal     string   `json:"signal"`
	Confidence *float64 `json:"confidence"`
	Reasoning  struct {
		Profitability   *rawCategory `json:"profitability_signal"`
		Growth          *rawCategory `json:"growth_signal"`
		FinancialHealth *rawCategory `json:"financial_health_signal"`
		PriceRatios     *rawCategory `json:"price_ratios_signal"`
	} `json:"reasoning"`
}

// ParseAnalysis repairs and decodes model output. Labels are lower-cased and unknown ones
// become neutral; confidence is clamped to 0-100 (a 0-1 fraction is scaled up).
func ParseAnalysis(text string) (types.FundamentalAnalysis, error) {
	t := strings.TrimSpace(text)
	if start, end := strings.Index(t, "{"), strings.LastIndex(t, "}"); start >= 0 && end > start {
		t = t[start : end+1]
	}
	if t == "" {
		return types.FundamentalAnalysis{}, ErrEmptyResponse
	}

	repaired, err := jsonrepair.RepairJSON(t)
	if err != nil {
		return types.FundamentalAnalysis{}, fmt.Errorf("repair model JSON: %w", err)
	}

	var raw rawAnalysis
	if err := json.Unmarshal([]byte(repaired), &raw); err != nil {
		return types.FundamentalAnalysis{}, fmt.Errorf("decode model JSON: %w", err)
	}

	signal, ok := normalizeSignal(raw.Signal)
	if !ok {
		return types.FundamentalAnalysis{}, fmt.Errorf("invalid signal %q", raw.Signal)
	}

	return types.FundamentalAnalysis{
		Signal:     signal,
		Confidence: normalizeConfidence(raw.Confidence),
		Reasoning: types.Reasoning{
			Profitability:   normalizeCategory(raw.Reasoning.Profitability),
			Growth:          normalizeCategory(raw.Reasoning.Growth),
			FinancialHealth: normalizeCategory(raw.Reasoning.FinancialHealth),
			PriceRatios:     normalizeCategory(raw.Reasoning.PriceRatios),
		},
	}, nil
}

func normalizeSignal(s string) (types.Signal, bool) {
	sig := types.Signal(strings.ToLower(strings.TrimSpace(s)))
	return sig, sig.Valid()
}

func normalizeConfidence(c *float64) int {
	if c == nil || math.IsNaN(*c) {
		return FallbackConfidence
	}
	v := *c
	if v > 0 && v <= 1 {
		v *= 100
	}
	return int(math.Round(math.Min(math.Max(v, 0), 100)))
}

func normalizeCategory(c *rawCategory) types.CategorySignal {
	if c == nil {
		return types.CategorySignal{Signal: types.Neutral, Details: "not provided"}
	}
	sig, ok := normalizeSignal(c.Signal)
	if !ok {
		sig = types.Neutral
	}
	return types.CategorySignal{Signal: sig, Details: strings.TrimSpace(c.Details)}
}
