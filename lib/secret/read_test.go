// Copyright 2026 The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		set      bool
		expected string
	}{
		{name: "plain value", value: "bot-token-123", set: true, expected: "bot-token-123"},
		{name: "trailing newline", value: "bot-token-123\n", set: true, expected: "bot-token-123"},
		{name: "whitespace only", value: "   ", set: true, expected: ""},
		{name: "unset", set: false, expected: ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if test.set {
				t.Setenv("SWARM_TEST_SECRET", test.value)
			} else {
				os.Unsetenv("SWARM_TEST_SECRET")
			}

			buffer, err := FromEnv("SWARM_TEST_SECRET")
			if err != nil {
				t.Fatalf("FromEnv failed: %v", err)
			}

			if test.expected == "" {
				if buffer != nil {
					t.Fatalf("expected nil buffer, got %q", buffer.String())
				}
				return
			}

			if buffer == nil {
				t.Fatal("expected buffer, got nil")
			}
			defer buffer.Close()
			if got := buffer.String(); got != test.expected {
				t.Errorf("expected %q, got %q", test.expected, got)
			}
		})
	}
}

func TestReadFromPath_File(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{name: "plain value", content: "my-secret-token", expected: "my-secret-token"},
		{name: "trailing newline", content: "my-secret-token\n", expected: "my-secret-token"},
		{name: "surrounding whitespace", content: "  my-secret-token  \n", expected: "my-secret-token"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "secret")
			if err := os.WriteFile(path, []byte(test.content), 0600); err != nil {
				t.Fatalf("writing test file: %v", err)
			}

			buffer, err := ReadFromPath(path)
			if err != nil {
				t.Fatalf("ReadFromPath failed: %v", err)
			}
			defer buffer.Close()

			if got := buffer.String(); got != test.expected {
				t.Errorf("expected %q, got %q", test.expected, got)
			}
		})
	}
}

func TestReadFromPath_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty")
	if err := os.WriteFile(path, []byte("\n"), 0600); err != nil {
		t.Fatalf("writing test file: %v", err)
	}

	if _, err := ReadFromPath(path); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestReadFromPath_Missing(t *testing.T) {
	if _, err := ReadFromPath(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
