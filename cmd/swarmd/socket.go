// Copyright 2026 The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"

	"github.com/pmaojo/agent-swarm-dev/lib/service"
)

// statusResult is the "status" action payload.
type statusResult struct {
	OperationalStatus    string `cbor:"operational_status"`
	OpenTasks            int    `cbor:"open_tasks"`
	ProcessingTasks      int    `cbor:"processing_tasks"`
	QueueDepth           int    `cbor:"notification_queue_depth"`
	DroppedNotifications uint64 `cbor:"dropped_notifications"`
	Repositories         int    `cbor:"repositories"`
	Agents               int    `cbor:"agents"`
	UptimeSeconds        int64  `cbor:"uptime_seconds"`
}

// registerActions wires the swarmctl operator surface onto the socket
// server. The socket is local and permission-guarded; actions carry no
// further authentication.
func (d *Daemon) registerActions(server *service.SocketServer) {
	server.Handle("ping", func(ctx context.Context, raw []byte) (any, error) {
		return map[string]any{"pong": true}, nil
	})

	server.Handle("status", func(ctx context.Context, raw []byte) (any, error) {
		status, err := d.queryOperationalStatus(ctx)
		if err != nil {
			return nil, err
		}
		tasks, err := d.queryTasks(ctx)
		if err != nil {
			return nil, err
		}
		open, processing := countTaskStates(tasks)
		return statusResult{
			OperationalStatus:    status,
			OpenTasks:            open,
			ProcessingTasks:      processing,
			QueueDepth:           d.notifications.Depth(),
			DroppedNotifications: d.notifications.Dropped(),
			Repositories:         d.rosterRepos,
			Agents:               d.rosterAgents,
			UptimeSeconds:        int64(d.clock.Now().Sub(d.startedAt).Seconds()),
		}, nil
	})

	server.Handle("tasks", func(ctx context.Context, raw []byte) (any, error) {
		tasks, err := d.queryTasks(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"tasks": tasks}, nil
	})

	server.Handle("agents", func(ctx context.Context, raw []byte) (any, error) {
		agents, err := d.queryAgents(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"agents": agents}, nil
	})

	server.Handle("halt", func(ctx context.Context, raw []byte) (any, error) {
		if err := d.ingestStatusChange(ctx, statusHalted, "swarmctl"); err != nil {
			return nil, err
		}
		return map[string]any{"status": statusHalted}, nil
	})

	server.Handle("resume", func(ctx context.Context, raw []byte) (any, error) {
		if err := d.ingestStatusChange(ctx, statusOperational, "swarmctl"); err != nil {
			return nil, err
		}
		return map[string]any{"status": statusOperational}, nil
	})
}
