// Package multi provides a sink that fans out to multiple sinks.
// All sinks receive all entries; errors are aggregated.
package multi

import (
	"context"
	"errors"

	"github.com/pagewatch/resil/pkg/resil"
)

// multiSink fans out to multiple sinks.
type multiSink struct {
	sinks []resil.Sink
}

// New creates a sink that writes to multiple sinks.
// All sinks receive all entries. Errors are aggregated via errors.Join.
func New(sinks ...resil.Sink) resil.Sink {
	return &multiSink{sinks: sinks}
}

// Write sends the entry to all sinks, collecting any errors.
// All sinks are called even if some return errors.
func (s *multiSink) Write(ctx context.Context, e resil.Entry) error {
	var errs []error
	for _, sink := range s.sinks {
		if err := sink.Write(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Flush calls Flush on all sinks, collecting any errors.
func (s *multiSink) Flush(ctx context.Context) error {
	var errs []error
	for _, sink := range s.sinks {
		if err := sink.Flush(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close calls Close on all sinks, collecting any errors.
func (s *multiSink) Close() error {
	var errs []error
	for _, sink := range s.sinks {
		if err := sink.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
