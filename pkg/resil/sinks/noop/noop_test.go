package noop

import (
	"context"
	"testing"

	"github.com/pagewatch/resil/pkg/resil"
)

func TestNoop(t *testing.T) {
	sink := New()

	if err := sink.Write(context.Background(), resil.Entry{Message: "discarded"}); err != nil {
		t.Errorf("Write returned error: %v", err)
	}
	if err := sink.Flush(context.Background()); err != nil {
		t.Errorf("Flush returned error: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Errorf("Close returned error: %v", err)
	}
}
