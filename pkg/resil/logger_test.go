package resil

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureSink records entries for verification in tests.
type captureSink struct {
	mu      sync.Mutex
	entries []Entry
	flushed int
	closed  bool
}

func (s *captureSink) Write(ctx context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return nil
}

func (s *captureSink) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushed++
	return nil
}

func (s *captureSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *captureSink) all() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

func TestLogger_MinLevelFiltering(t *testing.T) {
	sink := &captureSink{}
	log := New(Config{MinLevel: LevelInfo}, sink)

	log.Debug("dropped entirely", nil)
	log.Info("kept", nil)

	entries := log.Entries()
	require.Len(t, entries, 1, "entries below min level are never retained")
	assert.Equal(t, "kept", entries[0].Message)
	assert.Len(t, sink.all(), 1, "entries below min level are never emitted")
}

func TestLogger_EntryShape(t *testing.T) {
	sink := &captureSink{}
	log := New(Config{MinLevel: LevelDebug}, sink)

	before := time.Now()
	log.Info("page fetched", map[string]any{"durationMs": 42})

	entries := log.Entries()
	require.Len(t, entries, 1)
	e := entries[0]
	assert.NotEmpty(t, e.ID)
	assert.Len(t, e.ID, 36, "entry IDs are UUIDs")
	assert.False(t, e.Timestamp.Before(before))
	assert.Equal(t, LevelInfo, e.Level)
	assert.Equal(t, 42, e.Metadata["durationMs"])
}

func TestLogger_SeverityToLevelMapping(t *testing.T) {
	log := New(Config{MinLevel: LevelDebug})

	log.LogError(NewNetworkError(errors.New("down"), WithSeverity(SeverityCritical)), nil)
	log.LogError(NewNetworkError(errors.New("down")), nil)
	log.LogError(NewValidationError(errors.New("thin content"), WithSeverity(SeverityWarning)), nil)
	log.LogError(NewValidationError(errors.New("note"), WithSeverity(SeverityInfo)), nil)

	entries := log.Entries()
	require.Len(t, entries, 4)
	assert.Equal(t, LevelCritical, entries[0].Level)
	assert.Equal(t, LevelError, entries[1].Level)
	assert.Equal(t, LevelWarn, entries[2].Level)
	assert.Equal(t, LevelInfo, entries[3].Level)
}

func TestLogger_LogRetryAlwaysWarn(t *testing.T) {
	log := New(Config{MinLevel: LevelDebug})

	log.LogRetry(errors.New("connection refused"), 2, 500*time.Millisecond)

	entries := log.EntriesByLevel(LevelWarn)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Message, "retry attempt 2")
	assert.EqualValues(t, 2, entries[0].Metadata["attempt"])
	assert.EqualValues(t, 500, entries[0].Metadata["delayMs"])
}

func TestLogger_Queries(t *testing.T) {
	log := New(Config{MinLevel: LevelDebug})

	log.Debug("d", nil)
	log.Info("i", nil)
	log.Warn("w", nil)
	log.LogError(NewNetworkError(errors.New("e")), nil)
	log.LogError(NewBrowserError(errors.New("c"), WithSeverity(SeverityCritical)), nil)

	assert.Len(t, log.Entries(), 5)
	assert.Len(t, log.EntriesByLevel(LevelWarn), 1, "exact-level filter")
	assert.Len(t, log.Errors(), 2, "level >= ERROR")
}

func TestLogger_Summary(t *testing.T) {
	log := New(Config{MinLevel: LevelDebug})

	log.Info("fine", nil)
	log.LogError(NewNetworkError(errors.New("refused"), WithCheckName("fetch-page")), nil)
	log.LogError(NewNetworkError(errors.New("reset"), WithCheckName("fetch-page")), nil)
	log.LogError(NewTimeoutError(errors.New("slow"), WithSeverity(SeverityCritical)), nil)

	s := log.Summary()
	assert.Equal(t, 3, s.TotalErrors, "totalErrors counts retained entries with level >= ERROR")
	assert.Equal(t, 4, s.TotalLogs)
	assert.Equal(t, 2, s.ByCategory["network"])
	assert.Equal(t, 1, s.ByCategory["timeout"])
	assert.Equal(t, 2, s.BySeverity["error"])
	assert.Equal(t, 1, s.BySeverity["critical"])
	assert.Equal(t, 2, s.ByCheck["fetch-page"])
	assert.Equal(t, 1, s.ByCheck["unknown"], "missing check names bucketed as unknown")
	require.Len(t, s.Errors, 3)
	assert.Equal(t, "refused", s.Errors[0].Message)
}

func TestLogger_SummaryWithoutAttachedError(t *testing.T) {
	log := New(Config{MinLevel: LevelDebug})
	log.log(LevelError, "plain error message", nil, nil)

	s := log.Summary()
	assert.Equal(t, 1, s.TotalErrors)
	assert.Equal(t, 1, s.ByCategory["unknown"])
	assert.Equal(t, 1, s.BySeverity["error"])
}

func TestLogger_ExportSummary(t *testing.T) {
	log := New(Config{MinLevel: LevelDebug})
	log.LogError(NewNetworkError(errors.New("refused"), WithCheckName("fetch-page")), nil)

	path := filepath.Join(t.TempDir(), "reports", "summary.json")
	require.NoError(t, log.ExportSummary(path), "parent directory is auto-created")

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var s ErrorSummary
	require.NoError(t, json.Unmarshal(data, &s))
	assert.Equal(t, 1, s.TotalErrors)
	assert.Equal(t, 1, s.ByCheck["fetch-page"])
}

func TestLogger_ClearKeepsSinksAndConfig(t *testing.T) {
	sink := &captureSink{}
	log := New(Config{MinLevel: LevelInfo}, sink)

	log.Info("before", nil)
	log.Clear()
	assert.Empty(t, log.Entries())

	log.Info("after", nil)
	assert.Len(t, log.Entries(), 1)
	assert.Len(t, sink.all(), 2, "sinks keep working after Clear")

	log.Debug("still filtered", nil)
	assert.Len(t, log.Entries(), 1, "configuration persists after Clear")
}

func TestLogger_CloseFlushesAndClosesSinks(t *testing.T) {
	sink := &captureSink{}
	log := New(DefaultConfig(), sink)

	require.NoError(t, log.Close())
	assert.Equal(t, 1, sink.flushed)
	assert.True(t, sink.closed)
}

func TestParseLevel(t *testing.T) {
	for name, want := range map[string]Level{
		"debug":    LevelDebug,
		"INFO":     LevelInfo,
		"Warn":     LevelWarn,
		"warning":  LevelWarn,
		"error":    LevelError,
		"CRITICAL": LevelCritical,
	} {
		got, err := ParseLevel(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestLevelOrdering(t *testing.T) {
	assert.True(t, LevelDebug < LevelInfo)
	assert.True(t, LevelInfo < LevelWarn)
	assert.True(t, LevelWarn < LevelError)
	assert.True(t, LevelError < LevelCritical)
}
