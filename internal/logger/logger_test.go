package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initBuffer(t *testing.T, cfg LogConfig) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	cfg.Output = &buf
	require.NoError(t, InitWithConfig(cfg))
	return &buf
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", parseLogLevel("debug").String())
	assert.Equal(t, "WARN", parseLogLevel("WARN").String())
	assert.Equal(t, "ERROR", parseLogLevel("error").String())
	assert.Equal(t, "INFO", parseLogLevel("bogus").String())
}

func TestSignalIsLoggedAsJSON(t *testing.T) {
	buf := initBuffer(t, LogConfig{Level: "INFO", Format: "json"})

	Signal(context.Background(), "AAPL", "bullish", 75, "ok", "source", "test")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "Fundamental signal computed", rec["msg"])
	assert.Equal(t, "SIGNAL", rec["type"])
	assert.Equal(t, "AAPL", rec["ticker"])
	assert.Equal(t, "bullish", rec["signal"])
	assert.EqualValues(t, 75, rec["confidence"])
	assert.Equal(t, "test", rec["source"])
}

func TestDebugSuppressedUnlessDetailed(t *testing.T) {
	buf := initBuffer(t, LogConfig{Level: "DEBUG", Format: "text"})
	Debug(context.Background(), "hidden")
	assert.Empty(t, buf.String())

	buf = initBuffer(t, LogConfig{Level: "DEBUG", Format: "text", DetailedLogging: true})
	Debug(context.Background(), "shown")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "source.function")
}

func TestErrorWithErr(t *testing.T) {
	buf := initBuffer(t, LogConfig{Level: "INFO", Format: "text"})
	ErrorWithErr(context.Background(), "fetch failed", errors.New("boom"), "ticker", "MSFT")

	out := buf.String()
	assert.True(t, strings.Contains(out, "level=ERROR"))
	assert.Contains(t, out, "error=boom")
	assert.Contains(t, out, "ticker=MSFT")
}

func TestOperationTimerWithoutTracing(t *testing.T) {
	buf := initBuffer(t, LogConfig{Level: "INFO", Format: "text"})

	op := StartOperation(context.Background(), "score", "ticker", "AAPL")
	require.NotNil(t, op.GetContext())
	op.EndWithError(errors.New("bad"))

	assert.Contains(t, buf.String(), "Operation failed")
	assert.Contains(t, buf.String(), "ticker=AAPL")
}

func warnFromWrapper(ctx context.Context) {
	WarnSkip(ctx, 1, "wrapped warning")
}

func TestWarnSkipReportsCaller(t *testing.T) {
	buf := initBuffer(t, LogConfig{Level: "INFO", Format: "text", DetailedLogging: true})

	warnFromWrapper(context.Background())

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "TestWarnSkipReportsCaller")
	assert.NotContains(t, out, "warnFromWrapper")
}

func TestTracingFlag(t *testing.T) {
	initBuffer(t, LogConfig{Level: "INFO", Format: "text", TracingEnabled: true})
	assert.True(t, IsTracingEnabled())

	buf := initBuffer(t, LogConfig{Level: "INFO", Format: "text"})
	assert.False(t, IsTracingEnabled())
	Info(context.Background(), "plain")
	assert.NotContains(t, buf.String(), "trace_id")
}
