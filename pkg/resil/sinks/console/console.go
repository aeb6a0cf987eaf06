// Package console provides a sink that renders log entries in
// human-readable form, entries at ERROR or above to the error stream and
// everything else to the standard stream.
package console

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pagewatch/resil/pkg/resil"
)

// ANSI styles, one per level. Colorization is a presentation detail only.
var levelColors = map[resil.Level]string{
	resil.LevelDebug:    "\x1b[90m",
	resil.LevelInfo:     "\x1b[36m",
	resil.LevelWarn:     "\x1b[33m",
	resil.LevelError:    "\x1b[31m",
	resil.LevelCritical: "\x1b[1;31m",
}

const colorReset = "\x1b[0m"

// Option configures the console sink.
type Option func(*config)

type config struct {
	colorize    bool
	stackTraces bool
	out         io.Writer
	errOut      io.Writer
}

// WithColor enables ANSI colorization of the level tag.
func WithColor() Option {
	return func(c *config) { c.colorize = true }
}

// WithStackTraces includes captured stack traces in error blocks.
func WithStackTraces() Option {
	return func(c *config) { c.stackTraces = true }
}

// WithStreams overrides the standard and error streams, for tests.
func WithStreams(out, errOut io.Writer) Option {
	return func(c *config) {
		c.out = out
		c.errOut = errOut
	}
}

type consoleSink struct {
	cfg config
}

// New creates a console sink writing to stdout and stderr.
func New(opts ...Option) resil.Sink {
	cfg := config{out: os.Stdout, errOut: os.Stderr}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &consoleSink{cfg: cfg}
}

// Write renders one entry.
func (s *consoleSink) Write(ctx context.Context, e resil.Entry) error {
	w := s.cfg.out
	if e.Level >= resil.LevelError {
		w = s.cfg.errOut
	}

	tag := fmt.Sprintf("[%s]", e.Level)
	if s.cfg.colorize {
		tag = levelColors[e.Level] + tag + colorReset
	}
	fmt.Fprintf(w, "[%s] %s %s\n", e.Timestamp.Format("2006-01-02T15:04:05.000Z07:00"), tag, e.Message)

	if e.Err != nil {
		s.writeErrorBlock(w, e.Err)
	}

	if len(e.Metadata) > 0 {
		pretty, err := json.MarshalIndent(e.Metadata, "        ", "  ")
		if err == nil {
			fmt.Fprintf(w, "        Metadata: %s\n", pretty)
		}
	}
	return nil
}

func (s *consoleSink) writeErrorBlock(w io.Writer, cerr *resil.CategorizedError) {
	c := cerr.Context
	fmt.Fprintf(w, "        Error: %s\n", c.ID)
	fmt.Fprintf(w, "        Category: %s\n", c.Category)
	fmt.Fprintf(w, "        Severity: %s\n", c.Severity)
	if c.URL != "" {
		fmt.Fprintf(w, "        URL: %s\n", c.URL)
	}
	if c.CheckName != "" {
		fmt.Fprintf(w, "        Check: %s\n", c.CheckName)
	}
	if c.RetryCount > 0 {
		fmt.Fprintf(w, "        Retries: %d\n", c.RetryCount)
	}
	if s.cfg.stackTraces && c.StackTrace != "" {
		fmt.Fprintf(w, "        Stack trace:\n")
		for _, line := range strings.Split(strings.TrimRight(c.StackTrace, "\n"), "\n") {
			fmt.Fprintf(w, "          %s\n", line)
		}
	}
}

// Flush is a no-op for the console sink.
func (s *consoleSink) Flush(ctx context.Context) error {
	return nil
}

// Close is a no-op for the console sink.
func (s *consoleSink) Close() error {
	return nil
}
