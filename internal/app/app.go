package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/joho/godotenv"

	"fundamentals-agent/internal/agent"
	"fundamentals-agent/internal/agent/agentobs"
	"fundamentals-agent/internal/fundamentals"
	"fundamentals-agent/internal/interfaces"
	"fundamentals-agent/internal/llm"
	"fundamentals-agent/internal/llm/claude"
	"fundamentals-agent/internal/llm/llmobs"
	"fundamentals-agent/internal/llm/noop"
	"fundamentals-agent/internal/llm/openai"
	"fundamentals-agent/internal/logger"
	"fundamentals-agent/internal/provider"
	"fundamentals-agent/internal/provider/providerobs"
	"fundamentals-agent/internal/signallog"
	"fundamentals-agent/internal/store"
	"fundamentals-agent/internal/summary"
	"fundamentals-agent/internal/summary/summaryobs"
	"fundamentals-agent/internal/trace"
)

// DefaultConfigPath is used when CONFIG_PATH is unset
const DefaultConfigPath = "config.yaml"

// App holds the wired components shared by the binaries.
type App struct {
	Config     *store.Config
	Agent      interfaces.FundamentalsAgent
	SignalLog  *signallog.Log // nil when the signal log is disabled
	Summarizer interfaces.Summarizer
}

// Init loads .env and starts the logger, writing records to logOutput, and the tracer
func Init(logOutput io.Writer) error {
	_ = godotenv.Load()

	lc := logger.LoadConfigFromEnv()
	lc.Output = logOutput
	if err := logger.InitWithConfig(lc); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

// ConfigPath returns CONFIG_PATH, or the default when it is unset
func ConfigPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return DefaultConfigPath
}

// LoadConfig reads the configuration at path
func LoadConfig(ctx context.Context, path string) (*store.Config, error) {
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	return cfg, nil
}

// New wires provider, scorer, agent and signal log from cfg.
func New(ctx context.Context, cfg *store.Config) (*App, error) {
	a := &App{Config: cfg}

	scorer, err := newScorer(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var opts []agent.Option
	opts = append(opts, agent.WithProgress(agent.LogProgress{}))
	if cfg.SignalLog.Enabled {
		a.SignalLog = signallog.New(cfg.SignalLog.Dir)
		a.Summarizer = summaryobs.Wrap(summary.NewSummarizer(cfg.SignalLog.Dir))
		opts = append(opts, agent.WithRecorder(a.SignalLog))
	}

	base := agent.New(newProvider(ctx, cfg), scorer, agent.Config{
		Lookback:       cfg.Provider.Lookback,
		MaxConcurrency: cfg.Scorer.MaxConcurrency,
	}, opts...)
	a.Agent = agentobs.Wrap(base)

	logger.Info(ctx, "Application initialized",
		"provider", cfg.Provider.Source,
		"engine", cfg.Scorer.Engine,
		"signal_log", cfg.SignalLog.Enabled,
	)
	return a, nil
}

// Close writes today's summary and compresses signal logs past retention.
// It does nothing when the signal log is disabled.
func (a *App) Close(ctx context.Context) {
	if a.SignalLog == nil {
		return
	}

	if p, err := a.Summarizer.SummarizeToday(); err != nil {
		logger.Warn(ctx, "Failed to write daily summary", "error", err)
	} else if p != "" {
		logger.Info(ctx, "Daily summary written", "path", p)
	}

	if days := a.Config.SignalLog.RetentionDays; days > 0 {
		if err := a.SignalLog.CompressOlder(days); err != nil {
			logger.Warn(ctx, "Failed to compress old signal logs", "error", err)
		}
	}
}

func newProvider(ctx context.Context, cfg *store.Config) interfaces.MetricsProvider {
	var p interfaces.MetricsProvider
	switch cfg.Provider.Source {
	case "MOCK":
		logger.Info(ctx, "Using MOCK metrics provider")
		p = provider.NewMockProvider(provider.WithMissingTickers(cfg.Provider.MissingTickers...))
	default:
		logger.Info(ctx, "Using Yahoo Finance metrics provider")
		p = provider.NewYahooProvider(provider.YahooConfig{
			BaseURL:           cfg.Provider.BaseURL,
			Timeout:           cfg.ProviderTimeout(),
			RequestsPerSecond: cfg.Provider.RequestsPerSecond,
			MaxAttempts:       cfg.Provider.MaxAttempts,
		})
	}

	if ttl := cfg.CacheTTL(); ttl > 0 {
		p = provider.NewCachedProvider(p, ttl)
	}
	return providerobs.Wrap(p, cfg.Provider.Source)
}

func newScorer(ctx context.Context, cfg *store.Config) (interfaces.SignalScorer, error) {
	if cfg.Scorer.Engine != "LLM" {
		rules := fundamentals.NewScorer(cfg.Thresholds(), fundamentals.WithProgress(agent.LogProgress{}))
		return llmobs.Wrap(fundamentals.NewRuleScorer(rules), "RULES"), nil
	}

	lc := llm.Config{
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		System:      cfg.LLM.System,
		Timeout:     cfg.LLMTimeout(),
	}

	var scorer interfaces.SignalScorer
	switch cfg.LLM.Provider {
	case "CLAUDE":
		var opts []option.RequestOption
		if cfg.LLM.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.LLM.BaseURL))
		}
		c, err := claude.New(cfg.AnthropicAPIKey, lc, opts...)
		if err != nil {
			return nil, fmt.Errorf("claude scorer: %w", err)
		}
		scorer = llm.NewScorer("claude", c, lc.System)
	case "OPENAI":
		c, err := openai.New(cfg.OpenAIAPIKey, cfg.LLM.BaseURL, lc)
		if err != nil {
			return nil, fmt.Errorf("openai scorer: %w", err)
		}
		scorer = llm.NewScorer("openai", c, lc.System)
	default:
		logger.Warn(ctx, "No LLM provider configured - every ticker scores neutral")
		scorer = noop.NewScorer()
	}
	return llmobs.Wrap(scorer, cfg.LLM.Provider), nil
}
