// Copyright 2026 The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"testing"
)

func TestNotificationRender(t *testing.T) {
	trace := notification{kind: kindTrace, text: "worker finished: Build"}
	if got := trace.render(); got != "[TRACE] worker finished: Build" {
		t.Errorf("trace render = %q", got)
	}
	alert := notification{kind: kindAlert, text: "worker failed: Build: exit status 1"}
	if got := alert.render(); got != "[ALERT] worker failed: Build: exit status 1" {
		t.Errorf("alert render = %q", got)
	}
}

func TestNotificationsPreserveOrder(t *testing.T) {
	notifications := newNotifications(8, testLogger())
	notifications.Trace("one")
	notifications.Alert("two")
	notifications.Trace("three")

	want := []string{"[TRACE] one", "[ALERT] two", "[TRACE] three"}
	for i, expected := range want {
		select {
		case item := <-notifications.queue:
			if item.render() != expected {
				t.Errorf("item %d = %q, want %q", i, item.render(), expected)
			}
		default:
			t.Fatalf("queue empty at item %d", i)
		}
	}
}

func TestNotificationsFullQueueDrops(t *testing.T) {
	notifications := newNotifications(2, testLogger())
	for i := 0; i < 5; i++ {
		notifications.Trace(fmt.Sprintf("message %d", i))
	}

	if depth := notifications.Depth(); depth != 2 {
		t.Errorf("depth = %d, want capacity 2", depth)
	}
	if dropped := notifications.Dropped(); dropped != 3 {
		t.Errorf("dropped = %d, want 3", dropped)
	}

	// The survivors are the oldest: drops discard the new arrival.
	first := <-notifications.queue
	if first.text != "message 0" {
		t.Errorf("first queued = %q, want message 0", first.text)
	}
}

func TestNotificationKindString(t *testing.T) {
	if kindTrace.String() != "trace" || kindAlert.String() != "alert" {
		t.Errorf("kind strings = %q / %q", kindTrace.String(), kindAlert.String())
	}
}
