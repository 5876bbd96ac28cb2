package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundamentals-agent/internal/types"
)

func writeConfig(t *testing.T, body string) {
	t.Helper()
	t.Setenv("FUNDAMENTALS_PROVIDER", "")
	t.Setenv("SIGNAL_LOG_DIR", "")

	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	configPath = p
	t.Cleanup(func() { configPath = "" })
}

func TestParseDate(t *testing.T) {
	got, err := parseDate("2023-12-31")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), got)

	_, err = parseDate("12/31/2023")
	assert.Error(t, err)

	got, err = parseDate("")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), got, time.Minute)
}

func TestAnalyzeCommandPrintsJSON(t *testing.T) {
	writeConfig(t, "provider:\n  source: MOCK\n")

	var out bytes.Buffer
	cmd := newAnalyzeCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"aapl", "$msft", "--date", "2024-06-30", "--json"})
	require.NoError(t, cmd.Execute())

	var res types.AnalysisResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.Equal(t, []string{"AAPL", "MSFT"}, res.Tickers)
	assert.Equal(t, 2, res.Evaluated)
}

func TestAnalyzeCommandPrintsReport(t *testing.T) {
	writeConfig(t, "provider:\n  source: MOCK\n")

	var out bytes.Buffer
	cmd := newAnalyzeCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"AAPL", "--date", "2024-06-30"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "AAPL: ")
	assert.Contains(t, out.String(), "Analysis:")
}

func TestSummaryCommandRequiresSignalLog(t *testing.T) {
	writeConfig(t, "provider:\n  source: MOCK\n")

	cmd := newSummaryCmd()
	cmd.SetArgs([]string{})
	cmd.SetOut(&bytes.Buffer{})
	assert.Error(t, cmd.Execute())
}

func TestSummaryCommandWithNoSignals(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, "provider:\n  source: MOCK\nsignal_log:\n  enabled: true\n  dir: "+dir+"\n")

	var out bytes.Buffer
	cmd := newSummaryCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--date", "2001-01-01"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "No signals logged on 2001-01-01")
}
