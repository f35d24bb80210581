package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// LogRecord represents a captured log record for testing
type LogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

type logStore struct {
	mu      sync.Mutex
	records []LogRecord
	closed  bool
}

// BufferedSlogHandler captures log records for testing. Handlers derived with
// WithAttrs share the same store.
type BufferedSlogHandler struct {
	store *logStore
	attrs []slog.Attr
	t     testing.TB
}

// NewTestLogger creates a logger with a buffered handler for testing
func NewTestLogger(t testing.TB) (*slog.Logger, *BufferedSlogHandler) {
	h := &BufferedSlogHandler{store: &logStore{}, t: t}
	// Goroutines may outlive the test; t.Logf panics once it has completed
	t.Cleanup(func() {
		h.store.mu.Lock()
		h.store.closed = true
		h.store.mu.Unlock()
	})
	return slog.New(h), h
}

// Enabled implements slog.Handler; every level is captured.
func (h *BufferedSlogHandler) Enabled(context.Context, slog.Level) bool { return true }

// Handle implements slog.Handler
func (h *BufferedSlogHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	h.store.records = append(h.store.records, LogRecord{Level: r.Level, Message: r.Message, Attrs: attrs})
	if h.t != nil && !h.store.closed {
		h.t.Logf("[%s] %s %v", r.Level, r.Message, attrs)
	}
	return nil
}

// WithAttrs implements slog.Handler
func (h *BufferedSlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &BufferedSlogHandler{store: h.store, attrs: merged, t: h.t}
}

// WithGroup implements slog.Handler; groups are flattened.
func (h *BufferedSlogHandler) WithGroup(string) slog.Handler { return h }

// Records returns a copy of all captured records
func (h *BufferedSlogHandler) Records() []LogRecord {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	return append([]LogRecord(nil), h.store.records...)
}

// ByLevel returns captured records at level
func (h *BufferedSlogHandler) ByLevel(level slog.Level) []LogRecord {
	var out []LogRecord
	for _, r := range h.Records() {
		if r.Level == level {
			out = append(out, r)
		}
	}
	return out
}

// HasAttr reports whether any record carries key=value
func (h *BufferedSlogHandler) HasAttr(key string, value any) bool {
	for _, r := range h.Records() {
		if v, ok := r.Attrs[key]; ok && v == value {
			return true
		}
	}
	return false
}

// AssertLogContains fails t unless a record at level contains message
func AssertLogContains(t testing.TB, h *BufferedSlogHandler, level slog.Level, message string) {
	t.Helper()
	records := h.ByLevel(level)
	for _, r := range records {
		if strings.Contains(r.Message, message) {
			return
		}
	}
	t.Errorf("Expected log message not found at level %s: %q", level, message)
	for _, r := range records {
		t.Logf("  - %s", r.Message)
	}
}

// AssertNoErrors fails t if any error-level record was captured
func AssertNoErrors(t testing.TB, h *BufferedSlogHandler) {
	t.Helper()
	for _, r := range h.ByLevel(slog.LevelError) {
		t.Errorf("Unexpected error log: %s: %v", r.Message, r.Attrs)
	}
}
