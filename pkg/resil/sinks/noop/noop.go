// Package noop provides a sink that discards all entries.
// Useful for tests and for disabling logging output entirely.
package noop

import (
	"context"

	"github.com/pagewatch/resil/pkg/resil"
)

type noopSink struct{}

// New creates a sink that discards everything.
func New() resil.Sink {
	return &noopSink{}
}

// Write discards the entry.
func (s *noopSink) Write(ctx context.Context, e resil.Entry) error {
	return nil
}

// Flush is a no-op.
func (s *noopSink) Flush(ctx context.Context) error {
	return nil
}

// Close is a no-op.
func (s *noopSink) Close() error {
	return nil
}
