// Copyright 2026 The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/pmaojo/agent-swarm-dev/lib/clock"
)

// launcher starts worker processes bound to a task title.
type launcher interface {
	Start(ctx context.Context, title string) (workerHandle, error)
}

// workerHandle is a started worker. Wait blocks until the process exits
// and returns its exit error, exec.ExitError for non-zero exits.
type workerHandle interface {
	Wait() error
}

// execLauncher runs the configured worker argv with the task title
// appended as the final argument. Workers are deliberately not bound to
// the daemon's context: a shutdown must not kill in-flight work.
type execLauncher struct {
	command    []string
	captureDir string
	clock      clock.Clock
	logger     *slog.Logger
}

func newExecLauncher(command []string, captureDir string, clk clock.Clock, logger *slog.Logger) *execLauncher {
	return &execLauncher{
		command:    command,
		captureDir: captureDir,
		clock:      clk,
		logger:     logger,
	}
}

func (l *execLauncher) Start(ctx context.Context, title string) (workerHandle, error) {
	if len(l.command) == 0 {
		return nil, errors.New("no worker command configured")
	}

	argv := append(slices.Clone(l.command), title)
	cmd := exec.Command(argv[0], argv[1:]...)

	var capture io.WriteCloser
	if l.captureDir != "" {
		file, err := l.openCapture(title)
		if err != nil {
			return nil, err
		}
		capture = file
		cmd.Stdout = capture
		cmd.Stderr = capture
	} else {
		cmd.Stdout = os.Stderr
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Start(); err != nil {
		if capture != nil {
			capture.Close()
		}
		return nil, fmt.Errorf("starting worker: %w", err)
	}

	l.logger.Info("worker started",
		"pid", cmd.Process.Pid,
		"title", title)

	return &execHandle{cmd: cmd, capture: capture}, nil
}

// openCapture creates the zstd-compressed output file for one launch,
// named <slug>-<unixtime>.log.zst under the capture directory.
func (l *execLauncher) openCapture(title string) (io.WriteCloser, error) {
	name := fmt.Sprintf("%s-%d.log.zst", slugify(title), l.clock.Now().Unix())
	file, err := os.Create(filepath.Join(l.captureDir, name))
	if err != nil {
		return nil, fmt.Errorf("creating capture file: %w", err)
	}
	writer, err := zstd.NewWriter(file, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("creating capture writer: %w", err)
	}
	return &captureFile{writer: writer, file: file}, nil
}

type execHandle struct {
	cmd     *exec.Cmd
	capture io.Closer
}

func (h *execHandle) Wait() error {
	err := h.cmd.Wait()
	if h.capture != nil {
		if closeErr := h.capture.Close(); err == nil {
			err = closeErr
		}
	}
	return err
}

// captureFile finalizes the zstd frame before closing the underlying
// file so truncated captures still decompress.
type captureFile struct {
	writer *zstd.Encoder
	file   *os.File
}

func (c *captureFile) Write(p []byte) (int, error) { return c.writer.Write(p) }

func (c *captureFile) Close() error {
	err := c.writer.Close()
	if closeErr := c.file.Close(); err == nil {
		err = closeErr
	}
	return err
}

// slugify converts a task title into a filesystem-safe file name stem.
func slugify(title string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		} else {
			pendingDash = true
		}
	}
	slug := b.String()
	if slug == "" {
		return "worker"
	}
	if len(slug) > 48 {
		slug = strings.TrimSuffix(slug[:48], "-")
	}
	return slug
}
