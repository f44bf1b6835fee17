package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

// JSONLZstdWriter appends one JSON document per line to a zstd stream,
// starting a new file every UTC hour.
type JSONLZstdWriter struct {
	baseDir string
	prefix  string
	now     func() time.Time

	mu      sync.Mutex
	curHour string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

func NewJSONLZstdWriter(baseDir, prefix string) *JSONLZstdWriter {
	return &JSONLZstdWriter{baseDir: baseDir, prefix: prefix, now: time.Now}
}

func (w *JSONLZstdWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

func (w *JSONLZstdWriter) Write(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	hour := w.now().UTC().Format("2006-01-02-15")
	if hour != w.curHour || w.w == nil {
		if err := w.rotateLocked(hour); err != nil {
			return err
		}
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	// Flush the zstd frame too so a crash loses at most the current record.
	if err := w.w.Flush(); err != nil {
		return err
	}
	return w.enc.Flush()
}

func (w *JSONLZstdWriter) rotateLocked(hour string) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	path := w.PathForHour(hour)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, 64*1024)
	w.curHour = hour
	return nil
}

func (w *JSONLZstdWriter) closeLocked() error {
	var err error
	if w.w != nil {
		_ = w.w.Flush()
		w.w = nil
	}
	if w.enc != nil {
		err = w.enc.Close()
		w.enc = nil
	}
	if w.f != nil {
		if cerr := w.f.Close(); err == nil {
			err = cerr
		}
		w.f = nil
	}
	return err
}

func (w *JSONLZstdWriter) PathForHour(hour string) string {
	return filepath.Join(w.baseDir, fmt.Sprintf("%s-%s.jsonl.zst", w.prefix, hour))
}

// RequestRecord is one served generate request.
type RequestRecord struct {
	Time       string  `json:"time"`
	Transport  string  `json:"transport"`
	RequestID  string  `json:"request_id,omitempty"`
	Seed       string  `json:"seed"`
	SeedValue  uint64  `json:"seed_value"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Spacing    float64 `json:"spacing"`
	Chaos      float64 `json:"chaos"`
	Backend    string  `json:"backend"`
	Points     int     `json:"points"`
	Digest     string  `json:"digest,omitempty"`
	Cached     bool    `json:"cached,omitempty"`
	DurationMs float64 `json:"duration_ms"`
	Code       string  `json:"code,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// RequestLogger writes request records under <dataDir>/logs.
type RequestLogger struct{ w *JSONLZstdWriter }

func NewRequestLogger(dataDir string) *RequestLogger {
	return &RequestLogger{w: NewJSONLZstdWriter(filepath.Join(dataDir, "logs"), "requests")}
}

func (l *RequestLogger) WriteRequest(r RequestRecord) error {
	if l == nil {
		return nil
	}
	if r.Time == "" {
		r.Time = l.w.now().UTC().Format(time.RFC3339Nano)
	}
	return l.w.Write(r)
}

func (l *RequestLogger) Close() error {
	if l == nil {
		return nil
	}
	return l.w.Close()
}
