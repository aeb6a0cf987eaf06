// logger.go provides the explicitly constructed Logger: a level-filtered,
// append-only in-memory history fanned out to pluggable sinks.

package resil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Config is the logger configuration, fully populated once at construction.
type Config struct {
	// MinLevel discards entries below it entirely: they are neither
	// retained in history nor emitted to any sink.
	MinLevel Level

	// Console and File select the standard sinks assembled by
	// sinks.ForConfig. The remaining fields configure those sinks.
	Console           bool
	File              bool
	FilePath          string
	IncludeStackTrace bool
	Colorize          bool
}

// DefaultConfig returns the default logger configuration: INFO minimum,
// colorized console on, file sink off.
func DefaultConfig() Config {
	return Config{
		MinLevel:          LevelInfo,
		Console:           true,
		File:              false,
		FilePath:          "./e2e-seo-errors.log",
		IncludeStackTrace: true,
		Colorize:          true,
	}
}

// Logger records entries to an in-memory history and to its sinks.
// Construct one at startup and Close it at shutdown; there is no
// package-level instance.
type Logger struct {
	cfg   Config
	sinks []Sink

	mu      sync.Mutex
	history []Entry
}

// New creates a Logger with the given configuration and sinks. With no
// sinks the history is still retained, which is enough for tests and for
// callers that only consume summaries.
func New(cfg Config, sinks ...Sink) *Logger {
	return &Logger{cfg: cfg, sinks: sinks}
}

// Debug logs a message at DEBUG.
func (l *Logger) Debug(msg string, metadata map[string]any) {
	l.log(LevelDebug, msg, nil, metadata)
}

// Info logs a message at INFO.
func (l *Logger) Info(msg string, metadata map[string]any) {
	l.log(LevelInfo, msg, nil, metadata)
}

// Warn logs a message at WARN.
func (l *Logger) Warn(msg string, metadata map[string]any) {
	l.log(LevelWarn, msg, nil, metadata)
}

// LogError records a failure at the level its severity maps to. Raw
// failures are categorized first.
func (l *Logger) LogError(err error, metadata map[string]any) {
	cerr := Categorize(err)
	if cerr == nil {
		return
	}
	l.log(LevelForSeverity(cerr.Context.Severity), cerr.Error(), cerr, metadata)
}

// LogRetry records a scheduled retry. Retries always log at WARN.
func (l *Logger) LogRetry(err error, attempt int, delay time.Duration) {
	cerr := Categorize(err)
	msg := fmt.Sprintf("retry attempt %d scheduled in %s: %s", attempt, delay, cerr.Error())
	l.log(LevelWarn, msg, cerr, map[string]any{
		"attempt": attempt,
		"delayMs": delay.Milliseconds(),
	})
}

// log filters, retains, and fans out one entry. Sink failures never reach
// the caller: logging must not itself become a source of failure.
func (l *Logger) log(level Level, msg string, cerr *CategorizedError, metadata map[string]any) {
	if level < l.cfg.MinLevel {
		return
	}

	e := Entry{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Level:     level,
		Message:   msg,
		Err:       cerr,
		Metadata:  metadata,
	}

	l.mu.Lock()
	l.history = append(l.history, e)
	l.mu.Unlock()

	logEntriesTotal.WithLabelValues(level.String()).Inc()

	ctx := context.Background()
	for _, s := range l.sinks {
		_ = s.Write(ctx, e)
	}
}

// Entries returns a copy of the full retained history, in append order.
func (l *Logger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.history))
	copy(out, l.history)
	return out
}

// EntriesByLevel returns the retained entries at exactly the given level.
func (l *Logger) EntriesByLevel(level Level) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Entry
	for _, e := range l.history {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// Errors returns the retained entries with level >= ERROR.
func (l *Logger) Errors() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Entry
	for _, e := range l.history {
		if e.Level >= LevelError {
			out = append(out, e)
		}
	}
	return out
}

// Summary aggregates the retained error entries by category, severity, and
// check name. Entries without an attached failure are bucketed under the
// unknown category; entries without a check name under "unknown".
func (l *Logger) Summary() ErrorSummary {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := ErrorSummary{
		TotalLogs:  len(l.history),
		ByCategory: make(map[string]int),
		BySeverity: make(map[string]int),
		ByCheck:    make(map[string]int),
		Errors:     []SummaryEntry{},
	}

	for _, e := range l.history {
		if e.Level < LevelError {
			continue
		}
		s.TotalErrors++

		cat := CategoryUnknown
		sev := severityForLevel(e.Level)
		check := "unknown"
		if e.Err != nil {
			cat = e.Err.Context.Category
			sev = e.Err.Context.Severity
			if e.Err.Context.CheckName != "" {
				check = e.Err.Context.CheckName
			}
		}

		s.ByCategory[string(cat)]++
		s.BySeverity[string(sev)]++
		s.ByCheck[check]++
		s.Errors = append(s.Errors, SummaryEntry{
			Timestamp: e.Timestamp,
			Message:   e.Message,
			Category:  cat,
			Severity:  sev,
			CheckName: check,
		})
	}
	return s
}

// ExportSummary writes the current summary as indented JSON, creating the
// parent directory if needed.
func (l *Logger) ExportSummary(path string) error {
	data, err := json.MarshalIndent(l.Summary(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create summary directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

// Clear empties the retained history. Sinks and configuration persist.
func (l *Logger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.history = nil
}

// Flush flushes all sinks.
func (l *Logger) Flush(ctx context.Context) error {
	var errs []error
	for _, s := range l.sinks {
		if err := s.Flush(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close flushes and closes all sinks. The history is left intact so
// diagnostics survive shutdown-time inspection.
func (l *Logger) Close() error {
	var errs []error
	ctx := context.Background()
	for _, s := range l.sinks {
		if err := s.Flush(ctx); err != nil {
			errs = append(errs, err)
		}
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func severityForLevel(l Level) Severity {
	switch l {
	case LevelCritical:
		return SeverityCritical
	case LevelError:
		return SeverityError
	case LevelWarn:
		return SeverityWarning
	}
	return SeverityInfo
}
