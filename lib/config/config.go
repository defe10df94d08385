// Copyright 2026 The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for the swarmd daemon.
//
// Configuration is loaded from a single YAML file specified by the
// SWARMD_CONFIG environment variable or the --config flag. When neither
// is set, built-in defaults apply — swarmd runs against a local fact
// store with no worker command and both ingesters disabled (they are
// enabled by their credential environment variables, see package doc).
//
// Values in the file may use ${VAR} and ${VAR:-default} expansion.
// Credentials never live in the file: the bot token and board key/token
// are read from the environment into secret buffers by the daemon.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config is the swarmd daemon configuration.
type Config struct {
	// Synapse configures the fact store connection.
	Synapse SynapseConfig `yaml:"synapse"`

	// Gateway configures the read-only HTTP aggregation endpoint.
	Gateway GatewayConfig `yaml:"gateway"`

	// Socket configures the ops socket for swarmctl.
	Socket SocketConfig `yaml:"socket"`

	// Worker configures the execution units launched by the scheduler.
	Worker WorkerConfig `yaml:"worker"`

	// Roster is the path to a JSONC roster document describing the
	// repositories and agents seeded at startup. Empty selects the
	// built-in default roster.
	Roster string `yaml:"roster"`
}

// SynapseConfig configures the fact store connection.
type SynapseConfig struct {
	// URL is the base URL of the store's HTTP API.
	URL string `yaml:"url"`

	// Namespace is the fact namespace all reads and writes target.
	Namespace string `yaml:"namespace"`
}

// GatewayConfig configures the HTTP aggregation endpoint.
type GatewayConfig struct {
	// Listen is the TCP listen address, e.g. ":18789".
	Listen string `yaml:"listen"`
}

// SocketConfig configures the ops socket.
type SocketConfig struct {
	// Path is the Unix socket path swarmctl connects to.
	Path string `yaml:"path"`
}

// WorkerConfig configures worker process launches.
type WorkerConfig struct {
	// Command is the argv prefix for worker launches; the task title
	// is appended as the final argument. When empty every launch fails
	// immediately and the assigned task is marked FAILED, so a real
	// deployment must set it.
	Command []string `yaml:"command"`

	// CaptureDir, when set, receives zstd-compressed worker output
	// capture files. Empty inherits the daemon's stderr.
	CaptureDir string `yaml:"capture_dir"`
}

// Default returns the built-in configuration used when no file is given.
// The gateway listen address honors the GATEWAY_PORT environment
// variable through the standard expansion pass.
func Default() *Config {
	return &Config{
		Synapse: SynapseConfig{
			URL:       "http://127.0.0.1:50051",
			Namespace: "default",
		},
		Gateway: GatewayConfig{
			Listen: ":${GATEWAY_PORT:-18789}",
		},
		Socket: SocketConfig{
			Path: "/run/swarmd/swarmd.sock",
		},
	}
}

// Load loads configuration from the SWARMD_CONFIG environment variable,
// falling back to built-in defaults when it is unset.
func Load() (*Config, error) {
	path := os.Getenv("SWARMD_CONFIG")
	if path == "" {
		cfg := Default()
		cfg.expandVariables()
		return cfg, nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file path. File values
// merge over the built-in defaults; ${VAR} references are expanded
// after parsing.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.expandVariables()
	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in every
// string-valued field that can reasonably reference the environment.
func (c *Config) expandVariables() {
	c.Synapse.URL = expandVars(c.Synapse.URL)
	c.Gateway.Listen = expandVars(c.Gateway.Listen)
	c.Socket.Path = expandVars(c.Socket.Path)
	c.Worker.CaptureDir = expandVars(c.Worker.CaptureDir)
	c.Roster = expandVars(c.Roster)
	for i, arg := range c.Worker.Command {
		c.Worker.Command[i] = expandVars(arg)
	}
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Synapse.URL == "" {
		errs = append(errs, fmt.Errorf("synapse.url is required"))
	} else if _, err := url.Parse(c.Synapse.URL); err != nil {
		errs = append(errs, fmt.Errorf("synapse.url is invalid: %w", err))
	}

	if c.Synapse.Namespace == "" {
		errs = append(errs, fmt.Errorf("synapse.namespace is required"))
	}

	if c.Gateway.Listen == "" {
		errs = append(errs, fmt.Errorf("gateway.listen is required"))
	}

	if c.Socket.Path == "" {
		errs = append(errs, fmt.Errorf("socket.path is required"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// EnsurePaths creates the directories swarmd writes into: the socket's
// parent directory and the worker capture directory when configured.
func (c *Config) EnsurePaths() error {
	paths := []string{filepath.Dir(c.Socket.Path)}
	if c.Worker.CaptureDir != "" {
		paths = append(paths, c.Worker.CaptureDir)
	}

	for _, path := range paths {
		if err := os.MkdirAll(path, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
	}
	return nil
}
