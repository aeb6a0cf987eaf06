// entry.go defines log levels, the immutable log entry, and the Sink
// interface that log destinations implement.

package resil

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Level is an ordered log level. Entries below a logger's minimum level are
// discarded entirely.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelCritical
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelCritical:
		return "CRITICAL"
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// ParseLevel converts a level name (case-insensitive) into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug, nil
	case "INFO":
		return LevelInfo, nil
	case "WARN", "WARNING":
		return LevelWarn, nil
	case "ERROR":
		return LevelError, nil
	case "CRITICAL":
		return LevelCritical, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// LevelForSeverity maps a failure severity onto a log level. Unmapped
// severities land at INFO.
func LevelForSeverity(s Severity) Level {
	switch s {
	case SeverityCritical:
		return LevelCritical
	case SeverityError:
		return LevelError
	case SeverityWarning:
		return LevelWarn
	case SeverityInfo:
		return LevelInfo
	}
	return LevelInfo
}

// Entry is one retained log record. Entries are never mutated after
// creation.
type Entry struct {
	// ID is a unique identifier for this entry (UUID).
	ID string

	Timestamp time.Time
	Level     Level
	Message   string

	// Err is the categorized failure attached to this entry, if any.
	Err *CategorizedError

	// Metadata holds additional key-value context.
	Metadata map[string]any
}

// Sink is a destination for log entries.
// Implementations must be safe for concurrent use.
type Sink interface {
	// Write emits one entry. Called only for entries at or above the
	// logger's minimum level.
	Write(ctx context.Context, e Entry) error

	// Flush ensures any buffered entries are persisted.
	// For synchronous sinks, this may be a no-op.
	Flush(ctx context.Context) error

	// Close releases resources held by the sink.
	Close() error
}

// SummaryEntry is the flattened view of one error entry inside an
// ErrorSummary.
type SummaryEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Category  Category  `json:"category"`
	Severity  Severity  `json:"severity"`
	CheckName string    `json:"checkName"`
}

// ErrorSummary aggregates the retained entries with level >= ERROR.
type ErrorSummary struct {
	TotalErrors int            `json:"totalErrors"`
	TotalLogs   int            `json:"totalLogs"`
	ByCategory  map[string]int `json:"byCategory"`
	BySeverity  map[string]int `json:"bySeverity"`
	ByCheck     map[string]int `json:"byCheck"`
	Errors      []SummaryEntry `json:"errors"`
}
