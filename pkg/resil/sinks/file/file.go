// Package file provides an append-only file sink. Entries are written as
// blank-line-separated human-readable blocks with the attached failure
// serialized losslessly. Write failures are reported to stderr and
// swallowed: logging must never raise.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pagewatch/resil/pkg/resil"
)

type fileSink struct {
	path string

	mu     sync.Mutex
	f      *os.File
	broken bool
}

// New creates a file sink appending to the given path. The file and its
// parent directory are created on first write.
func New(path string) resil.Sink {
	return &fileSink{path: path}
}

// Write appends one entry. Errors are reported to stderr, never returned.
func (s *fileSink) Write(ctx context.Context, e resil.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.open(); err != nil {
		s.report(err)
		return nil
	}
	if _, err := s.f.WriteString(render(e)); err != nil {
		s.report(err)
	}
	return nil
}

// open lazily creates the parent directory and the file.
func (s *fileSink) open() error {
	if s.f != nil {
		return nil
	}
	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	s.f = f
	return nil
}

// report surfaces a write failure on stderr, once.
func (s *fileSink) report(err error) {
	if s.broken {
		return
	}
	s.broken = true
	fmt.Fprintf(os.Stderr, "file sink: cannot write to %s: %v\n", s.path, err)
}

// serializedError is the lossless on-disk form of a categorized failure.
type serializedError struct {
	ID         string         `json:"id"`
	Timestamp  time.Time      `json:"timestamp"`
	Category   resil.Category `json:"category"`
	Severity   resil.Severity `json:"severity"`
	Message    string         `json:"message"`
	URL        string         `json:"url,omitempty"`
	CheckName  string         `json:"checkName,omitempty"`
	RetryCount int            `json:"retryCount,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	StackTrace string         `json:"stackTrace,omitempty"`
}

func render(e resil.Entry) string {
	out := fmt.Sprintf("[%s] [%s] %s\n", e.Timestamp.Format("2006-01-02T15:04:05.000Z07:00"), e.Level, e.Message)

	if e.Err != nil {
		c := e.Err.Context
		blob, err := json.MarshalIndent(serializedError{
			ID:         c.ID,
			Timestamp:  c.Timestamp,
			Category:   c.Category,
			Severity:   c.Severity,
			Message:    e.Err.Error(),
			URL:        c.URL,
			CheckName:  c.CheckName,
			RetryCount: c.RetryCount,
			Metadata:   c.Metadata,
			StackTrace: c.StackTrace,
		}, "", "  ")
		if err == nil {
			out += "Error: " + string(blob) + "\n"
		}
	}

	if len(e.Metadata) > 0 {
		if blob, err := json.MarshalIndent(e.Metadata, "", "  "); err == nil {
			out += "Metadata: " + string(blob) + "\n"
		}
	}
	return out + "\n"
}

// Flush syncs the file.
func (s *fileSink) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil
	}
	return s.f.Sync()
}

// Close closes the file. Write after Close reopens it.
func (s *fileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}
