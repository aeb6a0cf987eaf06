package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pagewatch/resil/pkg/resil"
)

func entry(msg string) resil.Entry {
	return resil.Entry{
		ID:        "test-id",
		Timestamp: time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC),
		Level:     resil.LevelError,
		Message:   msg,
	}
}

func TestWrite_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "nested", "errors.log")
	sink := New(path)

	if err := sink.Write(context.Background(), entry("first failure")); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	t.Cleanup(func() { _ = sink.Close() })

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not created: %v", err)
	}
	if !strings.Contains(string(data), "[ERROR] first failure") {
		t.Errorf("entry not rendered: %q", data)
	}
}

func TestWrite_AppendsBlankLineSeparatedEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "errors.log")
	sink := New(path)

	_ = sink.Write(context.Background(), entry("one"))
	_ = sink.Write(context.Background(), entry("two"))
	_ = sink.Close()

	data, _ := os.ReadFile(path)
	blocks := strings.Split(strings.TrimRight(string(data), "\n"), "\n\n")
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blank-line-separated blocks, got %d:\n%s", len(blocks), data)
	}
}

func TestWrite_SerializesErrorLosslessly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "errors.log")
	sink := New(path)

	e := entry("fetch failed")
	e.Err = resil.NewNetworkError(errors.New("connection refused"),
		resil.WithCheckName("fetch-page"),
		resil.WithErrorMetadata("host", "example.com"),
	)
	_ = sink.Write(context.Background(), e)
	_ = sink.Close()

	data, _ := os.ReadFile(path)
	for _, want := range []string{
		`"category": "network"`,
		`"severity": "error"`,
		`"checkName": "fetch-page"`,
		`"host": "example.com"`,
		`"stackTrace"`,
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("serialized error missing %s in:\n%s", want, data)
		}
	}
}

func TestWrite_FailureNeverReturnsError(t *testing.T) {
	// A directory path cannot be opened as a file.
	dir := t.TempDir()
	sink := New(dir)

	if err := sink.Write(context.Background(), entry("ignored")); err != nil {
		t.Errorf("write failure must be swallowed, got: %v", err)
	}
	// Repeated writes stay silent too.
	if err := sink.Write(context.Background(), entry("ignored")); err != nil {
		t.Errorf("write failure must be swallowed, got: %v", err)
	}
}

func TestCloseThenWrite_Reopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "errors.log")
	sink := New(path)

	_ = sink.Write(context.Background(), entry("before close"))
	if err := sink.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	_ = sink.Write(context.Background(), entry("after close"))
	_ = sink.Close()

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "before close") || !strings.Contains(string(data), "after close") {
		t.Errorf("entries lost across close/reopen:\n%s", data)
	}
}

func TestFlush(t *testing.T) {
	sink := New(filepath.Join(t.TempDir(), "errors.log"))
	if err := sink.Flush(context.Background()); err != nil {
		t.Errorf("Flush before first write should be a no-op, got: %v", err)
	}
	_ = sink.Write(context.Background(), entry("x"))
	if err := sink.Flush(context.Background()); err != nil {
		t.Errorf("Flush returned error: %v", err)
	}
	_ = sink.Close()
}
