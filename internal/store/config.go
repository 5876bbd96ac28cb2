package store

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"fundamentals-agent/internal/fundamentals"
)

type Config struct {
	Server struct {
		Addr                string `yaml:"addr"`
		ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds"`
		WriteTimeoutSeconds int    `yaml:"write_timeout_seconds"`
	} `yaml:"server"`
	Provider struct {
		Source            string   `yaml:"source"`
		BaseURL           string   `yaml:"base_url"`
		TimeoutSeconds    int      `yaml:"timeout_seconds"`
		RequestsPerSecond float64  `yaml:"requests_per_second"`
		CacheTTLSeconds   int      `yaml:"cache_ttl_seconds"`
		Lookback          int      `yaml:"lookback"`
		MaxAttempts       int      `yaml:"max_attempts"`
		MissingTickers    []string `yaml:"missing_tickers"` // MOCK only
	} `yaml:"provider"`
	Scorer struct {
		Engine         string `yaml:"engine"`
		MaxConcurrency int    `yaml:"max_concurrency"`
		// Pointers so an explicit zero can be told apart from "not set"
		Thresholds struct {
			ReturnOnEquity  *float64 `yaml:"return_on_equity"`
			NetMargin       *float64 `yaml:"net_margin"`
			OperatingMargin *float64 `yaml:"operating_margin"`
			RevenueGrowth   *float64 `yaml:"revenue_growth"`
			EarningsGrowth  *float64 `yaml:"earnings_growth"`
			BookValueGrowth *float64 `yaml:"book_value_growth"`
			CurrentRatio    *float64 `yaml:"current_ratio"`
			DebtToEquity    *float64 `yaml:"debt_to_equity"`
			FCFToEPS        *float64 `yaml:"fcf_to_eps"`
			PriceToEarnings *float64 `yaml:"price_to_earnings"`
			PriceToBook     *float64 `yaml:"price_to_book"`
			PriceToSales    *float64 `yaml:"price_to_sales"`
		} `yaml:"thresholds"`
	} `yaml:"scorer"`
	LLM struct {
		Provider       string  `yaml:"provider"`
		Model          string  `yaml:"model"`
		MaxTokens      int     `yaml:"max_tokens"`
		Temperature    float64 `yaml:"temperature"`
		System         string  `yaml:"system"`
		BaseURL        string  `yaml:"base_url"`
		TimeoutSeconds int     `yaml:"timeout_seconds"`
	} `yaml:"llm"`
	SignalLog struct {
		Enabled       bool   `yaml:"enabled"`
		Dir           string `yaml:"dir"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"signal_log"`

	// Secrets come from the environment only
	AnthropicAPIKey string `yaml:"-"`
	OpenAIAPIKey    string `yaml:"-"`
}

func (c *Config) Validate() error {
	if c.Provider.Source != "YAHOO" && c.Provider.Source != "MOCK" {
		return fmt.Errorf("invalid provider.source '%s': must be 'YAHOO' or 'MOCK'", c.Provider.Source)
	}
	if c.Scorer.Engine != "RULES" && c.Scorer.Engine != "LLM" {
		return fmt.Errorf("invalid scorer.engine '%s': must be 'RULES' or 'LLM'", c.Scorer.Engine)
	}
	if c.Scorer.Engine == "LLM" {
		switch c.LLM.Provider {
		case "CLAUDE", "OPENAI", "NONE":
		default:
			return fmt.Errorf("invalid llm.provider '%s': must be 'CLAUDE', 'OPENAI' or 'NONE'", c.LLM.Provider)
		}
	}
	if c.Provider.Lookback < 1 {
		return fmt.Errorf("provider.lookback must be at least 1, got %d", c.Provider.Lookback)
	}
	if c.Provider.RequestsPerSecond <= 0 {
		return fmt.Errorf("provider.requests_per_second must be positive, got %.2f", c.Provider.RequestsPerSecond)
	}
	if c.Scorer.MaxConcurrency < 1 {
		return fmt.Errorf("scorer.max_concurrency must be at least 1, got %d", c.Scorer.MaxConcurrency)
	}
	if c.SignalLog.Enabled && c.SignalLog.Dir == "" {
		return errors.New("signal_log.dir cannot be empty when the signal log is enabled")
	}
	return nil
}

// Default returns a configuration with every default applied
func Default() *Config {
	var c Config
	c.applyDefaults()
	return &c
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeoutSeconds == 0 {
		c.Server.ReadTimeoutSeconds = 15
	}
	if c.Server.WriteTimeoutSeconds == 0 {
		c.Server.WriteTimeoutSeconds = 60
	}
	if c.Provider.Source == "" {
		c.Provider.Source = "YAHOO"
	}
	if c.Provider.TimeoutSeconds == 0 {
		c.Provider.TimeoutSeconds = 15
	}
	if c.Provider.RequestsPerSecond == 0 {
		c.Provider.RequestsPerSecond = 2
	}
	if c.Provider.Lookback == 0 {
		c.Provider.Lookback = 10
	}
	if c.Provider.MaxAttempts == 0 {
		c.Provider.MaxAttempts = 3
	}
	if c.Scorer.Engine == "" {
		c.Scorer.Engine = "RULES"
	}
	if c.Scorer.MaxConcurrency == 0 {
		c.Scorer.MaxConcurrency = 4
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "NONE"
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 1024
	}
	if c.LLM.TimeoutSeconds == 0 {
		c.LLM.TimeoutSeconds = 60
	}
	if c.SignalLog.Dir == "" {
		c.SignalLog.Dir = "logs"
	}
}

// applyEnv lets deployment settings override the file
func (c *Config) applyEnv() {
	if v := os.Getenv("FUNDAMENTALS_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("FUNDAMENTALS_PROVIDER"); v != "" {
		c.Provider.Source = v
	}
	if v := os.Getenv("SIGNAL_LOG_DIR"); v != "" {
		c.SignalLog.Dir = v
	}
	c.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	c.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(b)
}

// ParseConfig decodes YAML, then applies defaults and environment overrides before validating
func ParseConfig(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	c.applyDefaults()
	c.applyEnv()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

// Thresholds overlays the configured overrides on the default rule set
func (c *Config) Thresholds() fundamentals.Thresholds {
	th := fundamentals.DefaultThresholds()
	o := c.Scorer.Thresholds

	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	set(&th.ReturnOnEquity, o.ReturnOnEquity)
	set(&th.NetMargin, o.NetMargin)
	set(&th.OperatingMargin, o.OperatingMargin)
	set(&th.RevenueGrowth, o.RevenueGrowth)
	set(&th.EarningsGrowth, o.EarningsGrowth)
	set(&th.BookValueGrowth, o.BookValueGrowth)
	set(&th.CurrentRatio, o.CurrentRatio)
	set(&th.DebtToEquity, o.DebtToEquity)
	set(&th.FCFToEPS, o.FCFToEPS)
	set(&th.PriceToEarnings, o.PriceToEarnings)
	set(&th.PriceToBook, o.PriceToBook)
	set(&th.PriceToSales, o.PriceToSales)
	return th
}

func (c *Config) ProviderTimeout() time.Duration {
	return time.Duration(c.Provider.TimeoutSeconds) * time.Second
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Provider.CacheTTLSeconds) * time.Second
}

func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLM.TimeoutSeconds) * time.Second
}
