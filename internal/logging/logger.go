// Package logging provides leveled logging and block event tracing for nback.
// It offers two complementary outputs:
//   - A leveled slog.Logger for stderr (operational output)
//   - An EventLogger for structured JSONL block events (~/.nback/events.jsonl)
package logging

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LevelTrace is a custom slog level below Debug. At this level every step
// and confirmation of a block is logged.
const LevelTrace = slog.LevelDebug - 4

// EventsFile is the name of the JSONL event trace inside the data directory.
const EventsFile = "events.jsonl"

// ParseLevel maps a string level name to a slog.Level.
// Supported values: "info", "debug", "trace" (case-insensitive).
// Unknown values default to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "trace":
		return LevelTrace
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a leveled slog.Logger writing to w.
func NewLogger(level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// EventLogger appends block events (started, finalized, abandoned) to a
// JSONL file. It is safe for concurrent use. A nil EventLogger is safe to
// use; all methods are no-ops on a nil receiver.
type EventLogger struct {
	mu   sync.Mutex
	w    io.Writer
	file *os.File
	now  func() time.Time
}

// NewEventLogger creates an event logger writing to dir/events.jsonl.
// At "info" level (the default) it returns nil and no file is created.
// At "debug" or "trace" level the file is opened for append.
// Returns nil if the file cannot be opened.
func NewEventLogger(dir string, level string) *EventLogger {
	if ParseLevel(level) == slog.LevelInfo {
		return nil
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil
	}

	f, err := os.OpenFile(filepath.Join(dir, EventsFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil
	}

	return &EventLogger{w: f, file: f, now: time.Now}
}

// NewEventWriter creates an event logger writing to w. Used by tests and by
// commands that stream events to stdout.
func NewEventWriter(w io.Writer) *EventLogger {
	return &EventLogger{w: w, now: time.Now}
}

// Log writes an event as a single JSONL line. The event name is stored
// under "event" and a "time" field is added. The caller's map is not mutated.
func (el *EventLogger) Log(event string, fields map[string]any) {
	if el == nil || el.w == nil {
		return
	}

	entry := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		entry[k] = v
	}
	entry["event"] = event
	entry["time"] = el.now().UTC().Format(time.RFC3339Nano)

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	data = append(data, '\n')

	el.mu.Lock()
	defer el.mu.Unlock()
	_, _ = el.w.Write(data)
}

// Close closes the underlying file, if any.
func (el *EventLogger) Close() {
	if el == nil {
		return
	}

	el.mu.Lock()
	defer el.mu.Unlock()

	if el.file != nil {
		el.file.Close()
		el.file = nil
	}
	el.w = nil
}
