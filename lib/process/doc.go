// Copyright 2026 The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers for the swarmd
// daemon and the swarmctl CLI. It centralizes the one legitimate raw
// I/O pattern that exists outside the structured logger: fatal error
// reporting from main(), where the logger may not be initialized yet.
package process
