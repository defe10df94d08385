// Copyright 2026 The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"

	"github.com/pmaojo/agent-swarm-dev/lib/clock"
)

// testContext returns a context canceled when the test finishes.
func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Fix the Build!", "fix-the-build"},
		{"  spaced   out  ", "spaced-out"},
		{"already-fine", "already-fine"},
		{"UPPER case 123", "upper-case-123"},
		{"???", "worker"},
		{"", "worker"},
		{strings.Repeat("long-title-", 10), "long-title-long-title-long-title-long-title-long"},
	}
	for _, test := range tests {
		if got := slugify(test.title); got != test.want {
			t.Errorf("slugify(%q) = %q, want %q", test.title, got, test.want)
		}
	}
}

func TestExecLauncherNoCommand(t *testing.T) {
	launcher := newExecLauncher(nil, "", clock.Real(), testLogger())
	if _, err := launcher.Start(testContext(t), "Anything"); err == nil {
		t.Fatal("Start with no command succeeded")
	}
}

func TestExecLauncherAppendsTitle(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "argv.txt")
	launcher := newExecLauncher([]string{"/bin/sh", "-c", `printf '%s' "$1" > ` + marker, "argv0"}, "", clock.Real(), testLogger())

	handle, err := launcher.Start(testContext(t), "The Task Title")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := handle.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	written, err := os.ReadFile(marker)
	if err != nil {
		t.Fatalf("reading marker: %v", err)
	}
	if string(written) != "The Task Title" {
		t.Errorf("worker argv tail = %q, want the task title", written)
	}
}

func TestExecLauncherExitError(t *testing.T) {
	launcher := newExecLauncher([]string{"/bin/sh", "-c", "exit 3"}, "", clock.Real(), testLogger())
	handle, err := launcher.Start(testContext(t), "Failing")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitErr := handle.Wait()
	var exitErr *exec.ExitError
	if !errors.As(waitErr, &exitErr) {
		t.Fatalf("Wait error = %v, want exec.ExitError", waitErr)
	}
	if exitErr.ExitCode() != 3 {
		t.Errorf("exit code = %d, want 3", exitErr.ExitCode())
	}
}

func TestExecLauncherCapturesOutput(t *testing.T) {
	captureDir := t.TempDir()
	clk := clock.Fake(testStart)
	launcher := newExecLauncher([]string{"/bin/sh", "-c", "echo captured line"}, captureDir, clk, testLogger())

	handle, err := launcher.Start(testContext(t), "Capture Me")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := handle.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(captureDir, "capture-me-*.log.zst"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("capture files = %v (err %v), want exactly one", matches, err)
	}

	if content := readCompressed(t, matches[0]); content != "captured line\n" {
		t.Errorf("capture content = %q, want the worker's output", content)
	}
}

// readCompressed reads and decompresses a zstd capture file.
func readCompressed(t *testing.T, path string) string {
	t.Helper()
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		t.Fatalf("creating zstd reader: %v", err)
	}
	defer decoder.Close()
	decoded, err := decoder.DecodeAll(raw, nil)
	if err != nil {
		t.Fatalf("decompressing %s: %v", path, err)
	}
	return string(decoded)
}
