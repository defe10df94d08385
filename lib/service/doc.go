// Copyright 2026 The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

// Package service provides the transport plumbing shared by swarmd's
// two local surfaces: the Unix-socket ops protocol (CBOR request per
// connection, used by swarmctl) and the TCP HTTP server backing the
// read-only state API.
//
// Both servers follow the same lifecycle: construct, then Serve(ctx),
// which blocks until the context is cancelled and in-flight work has
// drained. Neither authenticates — the socket is guarded by file
// permissions and the HTTP listener is expected to bind loopback or
// sit behind something that cares.
package service
