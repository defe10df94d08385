// Copyright 2026 The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"log/slog"
	"sync/atomic"
)

// notificationQueueCapacity bounds the outbound queue. Publishers never
// block: when the chat loop falls behind (or no bot is configured) excess
// notifications are dropped and counted rather than stalling the
// scheduler.
const notificationQueueCapacity = 64

type notificationKind int

const (
	kindTrace notificationKind = iota
	kindAlert
)

func (k notificationKind) String() string {
	if k == kindAlert {
		return "alert"
	}
	return "trace"
}

type notification struct {
	kind notificationKind
	text string
}

// render returns the outbound message text for the chat channel.
func (n notification) render() string {
	if n.kind == kindAlert {
		return "[ALERT] " + n.text
	}
	return "[TRACE] " + n.text
}

// Notifications is the bounded fan-in queue between the daemon's loops
// and the single goroutine that owns the outbound chat channel. Trace
// and Alert are safe for concurrent use.
type Notifications struct {
	queue   chan notification
	logger  *slog.Logger
	dropped atomic.Uint64
}

func newNotifications(capacity int, logger *slog.Logger) *Notifications {
	return &Notifications{
		queue:  make(chan notification, capacity),
		logger: logger,
	}
}

// Trace publishes a routine progress notification.
func (n *Notifications) Trace(text string) {
	n.publish(notification{kind: kindTrace, text: text})
}

// Alert publishes a failure notification. Alerts share the queue with
// traces; the priority drain in the chat loop means both are delivered
// ahead of command polling, in enqueue order.
func (n *Notifications) Alert(text string) {
	n.publish(notification{kind: kindAlert, text: text})
}

func (n *Notifications) publish(item notification) {
	select {
	case n.queue <- item:
	default:
		n.drop(item, "queue full")
	}
}

// drop records a lost notification. Also used by the chat loop when no
// outbound chat is configured.
func (n *Notifications) drop(item notification, reason string) {
	n.dropped.Add(1)
	n.logger.Warn("dropping notification",
		"kind", item.kind.String(),
		"reason", reason,
		"text", item.text)
}

// Depth reports how many notifications are waiting for delivery.
func (n *Notifications) Depth() int { return len(n.queue) }

// Dropped reports how many notifications have been lost since startup.
func (n *Notifications) Dropped() uint64 { return n.dropped.Load() }
