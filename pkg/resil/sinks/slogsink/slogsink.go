// Package slogsink bridges log entries into a *slog.Logger, so a host
// application can route them through its own handler (tint, JSON, etc.).
package slogsink

import (
	"context"
	"log/slog"

	"github.com/pagewatch/resil/pkg/resil"
)

type slogSink struct {
	l *slog.Logger
}

// New creates a sink forwarding entries to the given slog logger.
func New(l *slog.Logger) resil.Sink {
	return &slogSink{l: l}
}

// Write forwards one entry with its error context flattened into attrs.
func (s *slogSink) Write(ctx context.Context, e resil.Entry) error {
	attrs := make([]slog.Attr, 0, 8)
	for k, v := range e.Metadata {
		attrs = append(attrs, slog.Any(k, v))
	}
	if e.Err != nil {
		c := e.Err.Context
		attrs = append(attrs,
			slog.String("category", string(c.Category)),
			slog.String("severity", string(c.Severity)),
		)
		if c.CheckName != "" {
			attrs = append(attrs, slog.String("check", c.CheckName))
		}
		if c.URL != "" {
			attrs = append(attrs, slog.String("url", c.URL))
		}
		if c.RetryCount > 0 {
			attrs = append(attrs, slog.Int("retries", c.RetryCount))
		}
	}
	s.l.LogAttrs(ctx, level(e.Level), e.Message, attrs...)
	return nil
}

func level(l resil.Level) slog.Level {
	switch l {
	case resil.LevelDebug:
		return slog.LevelDebug
	case resil.LevelInfo:
		return slog.LevelInfo
	case resil.LevelWarn:
		return slog.LevelWarn
	case resil.LevelError:
		return slog.LevelError
	case resil.LevelCritical:
		// slog has no CRITICAL; use ERROR+4 as slog itself does for custom levels.
		return slog.LevelError + 4
	}
	return slog.LevelInfo
}

// Flush is a no-op; slog handlers are synchronous.
func (s *slogSink) Flush(ctx context.Context) error {
	return nil
}

// Close is a no-op.
func (s *slogSink) Close() error {
	return nil
}
