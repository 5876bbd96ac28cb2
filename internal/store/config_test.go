package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundamentals-agent/internal/fundamentals"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"FUNDAMENTALS_ADDR", "FUNDAMENTALS_PROVIDER", "SIGNAL_LOG_DIR", "ANTHROPIC_API_KEY", "OPENAI_API_KEY"} {
		t.Setenv(k, "")
	}
}

func TestParseConfigDefaults(t *testing.T) {
	clearEnv(t)

	c, err := ParseConfig([]byte("{}"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", c.Server.Addr)
	assert.Equal(t, "YAHOO", c.Provider.Source)
	assert.Equal(t, 10, c.Provider.Lookback)
	assert.Equal(t, "RULES", c.Scorer.Engine)
	assert.Equal(t, 4, c.Scorer.MaxConcurrency)
	assert.Equal(t, fundamentals.DefaultThresholds(), c.Thresholds())
}

func TestThresholdOverrides(t *testing.T) {
	clearEnv(t)

	c, err := ParseConfig([]byte(`
scorer:
  thresholds:
    return_on_equity: 15
    debt_to_equity: 0
`))
	require.NoError(t, err)

	th := c.Thresholds()
	assert.Equal(t, 15.0, th.ReturnOnEquity)
	assert.Equal(t, 0.0, th.DebtToEquity, "explicit zero is kept")
	assert.Equal(t, fundamentals.DefaultThresholds().NetMargin, th.NetMargin)
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("FUNDAMENTALS_ADDR", ":9999")
	t.Setenv("FUNDAMENTALS_PROVIDER", "MOCK")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")

	c, err := ParseConfig([]byte("provider:\n  source: YAHOO\n"))
	require.NoError(t, err)
	assert.Equal(t, ":9999", c.Server.Addr)
	assert.Equal(t, "MOCK", c.Provider.Source)
	assert.Equal(t, "sk-ant", c.AnthropicAPIKey)
}

func TestValidate(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name string
		yaml string
	}{
		{"bad source", "provider:\n  source: CSV\n"},
		{"bad engine", "scorer:\n  engine: MAGIC\n"},
		{"bad llm provider", "scorer:\n  engine: LLM\nllm:\n  provider: GEMINI\n"},
		{"negative lookback", "provider:\n  lookback: -1\n"},
		{"negative concurrency", "scorer:\n  max_concurrency: -2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("provider:\n  source: MOCK\n  lookback: 3\n"), 0o644))

	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "MOCK", c.Provider.Source)
	assert.Equal(t, 3, c.Provider.Lookback)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
