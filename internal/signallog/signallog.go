package signallog

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"fundamentals-agent/internal/interfaces"
	"fundamentals-agent/internal/types"
)

const timeLayout = "2006-01-02 15:04:05"

// Log appends one JSON line per analysis to <dir>/YYYY-MM-DD.txt (UTC dates)
type Log struct {
	dir string
	now func() time.Time
	mu  sync.Mutex
}

var _ interfaces.SignalRecorder = (*Log)(nil)

func New(dir string) *Log {
	if dir == "" {
		dir = "logs"
	}
	return &Log{dir: dir, now: time.Now}
}

func (l *Log) Dir() string {
	return l.dir
}

// DailyPath is the log file for the UTC day containing t
func DailyPath(dir string, t time.Time) string {
	return filepath.Join(dir, t.UTC().Format("2006-01-02")+".txt")
}

func (l *Log) Append(e types.SignalEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now().UTC()
	e.Time = now.Format(timeLayout)
	p := DailyPath(l.dir, now)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// ReadDay returns the entries logged on t's UTC day. Malformed lines are skipped;
// a missing file yields no entries.
func ReadDay(dir string, t time.Time) ([]types.SignalEntry, error) {
	f, err := os.Open(DailyPath(dir, t))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var entries []types.SignalEntry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e types.SignalEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, sc.Err()
}

// CompressOlder gzips daily logs last modified more than retentionDays ago
func (l *Log) CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().AddDate(0, 0, -retentionDays)
	return filepath.WalkDir(l.dir, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(p) != ".txt" {
			return nil
		}
		info, err := d.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			return nil
		}

		gz := p + ".gz"
		// already compressed on an earlier run
		if _, err := os.Stat(gz); err == nil {
			_ = os.Remove(p)
			return nil
		}
		if err := gzipFile(p, gz); err != nil {
			_ = os.Remove(gz)
			return nil
		}
		_ = os.Remove(p)
		return nil
	})
}

func gzipFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	gw := gzip.NewWriter(out)
	if _, err := io.Copy(gw, in); err != nil {
		_ = gw.Close()
		_ = out.Close()
		return err
	}
	if err := gw.Close(); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
