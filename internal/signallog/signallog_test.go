package signallog

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundamentals-agent/internal/types"
)

func TestAppendAndReadDay(t *testing.T) {
	dir := t.TempDir()
	l := New(dir)
	day := time.Date(2024, 6, 30, 14, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return day }

	var wg sync.WaitGroup
	for _, ticker := range []string{"AAPL", "MSFT", "NVDA"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, l.Append(types.SignalEntry{Ticker: ticker, Signal: types.Bullish, Confidence: 75, Status: types.StatusOK}))
		}()
	}
	wg.Wait()

	// a corrupt line is skipped
	f, err := os.OpenFile(DailyPath(dir, day), os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, _ = f.WriteString("not json\n")
	require.NoError(t, f.Close())

	entries, err := ReadDay(dir, day)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "2024-06-30 14:00:00", entries[0].Time)

	none, err := ReadDay(dir, day.AddDate(0, 0, -1))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCompressOlder(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "2024-01-01.txt")
	fresh := filepath.Join(dir, "2024-06-30.txt")
	require.NoError(t, os.WriteFile(old, []byte(`{"ticker":"AAPL"}`+"\n"), 0o644))
	require.NoError(t, os.WriteFile(fresh, []byte(`{"ticker":"MSFT"}`+"\n"), 0o644))

	past := time.Now().AddDate(0, 0, -30)
	require.NoError(t, os.Chtimes(old, past, past))

	require.NoError(t, New(dir).CompressOlder(7))

	_, err := os.Stat(old)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(fresh)
	assert.NoError(t, err)

	gzf, err := os.Open(old + ".gz")
	require.NoError(t, err)
	defer gzf.Close()
	gr, err := gzip.NewReader(gzf)
	require.NoError(t, err)
	b, err := io.ReadAll(gr)
	require.NoError(t, err)
	assert.Contains(t, string(b), "AAPL")
}
