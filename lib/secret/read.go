// Copyright 2026 The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
)

// FromEnv reads a secret from the named environment variable into a
// protected buffer. Returns (nil, nil) when the variable is unset or
// empty after trimming — optional credentials (bot token, board token)
// disable their feature by absence rather than erroring.
//
// The returned buffer, when non-nil, must be closed by the caller.
func FromEnv(name string) (*Buffer, error) {
	value, ok := os.LookupEnv(name)
	if !ok {
		return nil, nil
	}

	trimmed := bytes.TrimSpace([]byte(value))
	if len(trimmed) == 0 {
		return nil, nil
	}

	buffer, err := NewFromBytes(trimmed)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return buffer, nil
}

// ReadFromPath reads a secret from a file path, or from stdin if path is
// "-". Leading/trailing whitespace is trimmed before storing. Returns an
// error if the source is empty after trimming.
//
// The returned buffer must be closed by the caller.
func ReadFromPath(path string) (*Buffer, error) {
	var data []byte

	if path == "-" {
		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, fmt.Errorf("reading stdin: %w", err)
			}
			return nil, fmt.Errorf("stdin is empty")
		}
		data = scanner.Bytes()
	} else {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, err
		}
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		Zero(data)
		return nil, fmt.Errorf("secret is empty")
	}

	// NewFromBytes copies into mmap-backed memory and zeros trimmed.
	buffer, err := NewFromBytes(trimmed)
	// Zero remaining bytes (whitespace prefix/suffix) not covered by trimmed.
	Zero(data)
	if err != nil {
		return nil, err
	}
	return buffer, nil
}
