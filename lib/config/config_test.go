// Copyright 2026 The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	os.Unsetenv("GATEWAY_PORT")
	cfg := Default()
	cfg.expandVariables()

	if cfg.Synapse.URL != "http://127.0.0.1:50051" {
		t.Errorf("synapse.url = %q", cfg.Synapse.URL)
	}
	if cfg.Synapse.Namespace != "default" {
		t.Errorf("synapse.namespace = %q", cfg.Synapse.Namespace)
	}
	if cfg.Gateway.Listen != ":18789" {
		t.Errorf("gateway.listen = %q", cfg.Gateway.Listen)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestGatewayPortEnvHonored(t *testing.T) {
	t.Setenv("GATEWAY_PORT", "9999")
	cfg := Default()
	cfg.expandVariables()

	if cfg.Gateway.Listen != ":9999" {
		t.Errorf("gateway.listen = %q, want %q", cfg.Gateway.Listen, ":9999")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swarmd.yaml")
	content := `
synapse:
  url: http://store.internal:8080
gateway:
  listen: ":${TEST_PORT:-4000}"
worker:
  command: ["${TEST_WORKER:-/usr/bin/worker}", "--run"]
  capture_dir: /var/log/swarmd
roster: /etc/swarmd/roster.jsonc
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	os.Unsetenv("TEST_PORT")
	os.Unsetenv("TEST_WORKER")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if cfg.Synapse.URL != "http://store.internal:8080" {
		t.Errorf("synapse.url = %q", cfg.Synapse.URL)
	}
	// Unset fields keep their defaults.
	if cfg.Synapse.Namespace != "default" {
		t.Errorf("synapse.namespace = %q, want default", cfg.Synapse.Namespace)
	}
	if cfg.Gateway.Listen != ":4000" {
		t.Errorf("gateway.listen = %q, want :4000", cfg.Gateway.Listen)
	}
	if len(cfg.Worker.Command) != 2 || cfg.Worker.Command[0] != "/usr/bin/worker" {
		t.Errorf("worker.command = %v", cfg.Worker.Command)
	}
	if cfg.Roster != "/etc/swarmd/roster.jsonc" {
		t.Errorf("roster = %q", cfg.Roster)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("synapse: [not a map"), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}

	message := err.Error()
	for _, want := range []string{"synapse.url", "synapse.namespace", "gateway.listen", "socket.path"} {
		if !strings.Contains(message, want) {
			t.Errorf("validation error missing %q: %v", want, message)
		}
	}
}

func TestEnsurePaths(t *testing.T) {
	base := t.TempDir()
	cfg := Default()
	cfg.Socket.Path = filepath.Join(base, "run", "swarmd.sock")
	cfg.Worker.CaptureDir = filepath.Join(base, "captures")

	if err := cfg.EnsurePaths(); err != nil {
		t.Fatalf("EnsurePaths: %v", err)
	}

	for _, dir := range []string{filepath.Join(base, "run"), cfg.Worker.CaptureDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("directory %s not created: %v", dir, err)
		}
	}
}
