package slogsink

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/pagewatch/resil/pkg/resil"
)

func TestWrite_ForwardsToSlog(t *testing.T) {
	var buf bytes.Buffer
	sink := New(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	e := resil.Entry{
		Level:    resil.LevelWarn,
		Message:  "slow page",
		Metadata: map[string]any{"durationMs": 900},
	}
	if err := sink.Write(context.Background(), e); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "level=WARN") {
		t.Errorf("level not forwarded: %q", got)
	}
	if !strings.Contains(got, "slow page") || !strings.Contains(got, "durationMs=900") {
		t.Errorf("message or metadata missing: %q", got)
	}
}

func TestWrite_FlattensErrorContext(t *testing.T) {
	var buf bytes.Buffer
	sink := New(slog.New(slog.NewTextHandler(&buf, nil)))

	e := resil.Entry{
		Level:   resil.LevelError,
		Message: "fetch failed",
		Err: resil.NewNetworkError(errors.New("connection refused"),
			resil.WithCheckName("fetch-page"),
			resil.WithURL("https://example.com"),
		),
	}
	_ = sink.Write(context.Background(), e)

	got := buf.String()
	for _, want := range []string{"category=network", "severity=error", "check=fetch-page", "url=https://example.com"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in %q", want, got)
		}
	}
}

func TestWrite_CriticalAboveSlogError(t *testing.T) {
	var buf bytes.Buffer
	sink := New(slog.New(slog.NewTextHandler(&buf, nil)))

	_ = sink.Write(context.Background(), resil.Entry{Level: resil.LevelCritical, Message: "panic"})

	if !strings.Contains(buf.String(), "level=ERROR+4") {
		t.Errorf("critical entries should map above slog ERROR: %q", buf.String())
	}
}

func TestFlushClose_NoOps(t *testing.T) {
	sink := New(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	if err := sink.Flush(context.Background()); err != nil {
		t.Errorf("Flush returned error: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Errorf("Close returned error: %v", err)
	}
}
