package sinks

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pagewatch/resil/pkg/resil"
)

func TestForConfig_FileOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "errors.log")
	cfg := resil.Config{File: true, FilePath: path}

	sink := ForConfig(cfg)
	if err := sink.Write(context.Background(), resil.Entry{Level: resil.LevelError, Message: "boom"}); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("file sink not assembled: %v", err)
	}
	if !strings.Contains(string(data), "boom") {
		t.Errorf("entry missing from file: %q", data)
	}
}

func TestForConfig_NothingEnabled(t *testing.T) {
	sink := ForConfig(resil.Config{})
	if err := sink.Write(context.Background(), resil.Entry{Message: "discarded"}); err != nil {
		t.Errorf("noop assembly should accept writes: %v", err)
	}
}

func TestForConfig_ConsoleAndFile(t *testing.T) {
	cfg := resil.DefaultConfig()
	cfg.File = true
	cfg.FilePath = filepath.Join(t.TempDir(), "errors.log")

	sink := ForConfig(cfg)
	// Both sinks receive the entry; only the file is easy to observe here.
	_ = sink.Write(context.Background(), resil.Entry{Level: resil.LevelInfo, Message: "hello"})
	_ = sink.Close()

	data, err := os.ReadFile(cfg.FilePath)
	if err != nil {
		t.Fatalf("file sink missing from fan-out: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Errorf("entry missing from file: %q", data)
	}
}
