package chainrpc

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// These tests exercise the Driver against the system shell, not a real chain
// node, so they can run without network or node dependencies.

func TestDriverRunCapturesStdout(t *testing.T) {
	d := New("echo", time.Second)
	out, err := d.Run(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out.String()) != "hello" {
		t.Fatalf("got %q", out.String())
	}
}

func TestDriverRunReportsNonZeroExit(t *testing.T) {
	d := New("false", time.Second)
	_, err := d.Run(context.Background())
	if err == nil {
		t.Fatal("expected an error for a failing command")
	}
}

func TestDriverRunRespectsTimeout(t *testing.T) {
	d := New("sleep", 10*time.Millisecond)
	_, err := d.Run(context.Background(), "5")
	if err == nil {
		t.Fatal("expected a timeout error")
	}
}

func TestDriverGetBlockCountParsesInt(t *testing.T) {
	script := filepath.Join(t.TempDir(), "fake-cli")
	if err := os.WriteFile(script, []byte("#!/bin/sh\necho 100\n"), 0o755); err != nil {
		t.Fatalf("write fake cli: %v", err)
	}
	d := New(script, time.Second)
	got, err := d.GetBlockCount(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 100 {
		t.Fatalf("got %d", got)
	}
}
