// Copyright 2026 The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"testing"
)

func TestLastSegment(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"http://swarm.os/trello/card/abc123", "abc123"},
		{"http://swarm.os/agent/PM_1", "PM_1"},
		{"bare-value", "bare-value"},
		{"", ""},
	}
	for _, test := range tests {
		if got := lastSegment(test.uri); got != test.want {
			t.Errorf("lastSegment(%q) = %q, want %q", test.uri, got, test.want)
		}
	}
}

func TestCountTaskStates(t *testing.T) {
	tasks := []taskRow{
		{State: "REQUIREMENTS"},
		{State: "TODO"},
		{State: "INBOX"},
		{State: "PROCESSING"},
		{State: "DONE"},
		{State: "FAILED"},
	}
	open, processing := countTaskStates(tasks)
	if open != 3 || processing != 1 {
		t.Errorf("counts = %d open / %d processing, want 3 / 1", open, processing)
	}
}

func TestQueryOperationalStatusDefaultsToOperational(t *testing.T) {
	daemon, _, _ := newTestDaemon(t)
	status, err := daemon.queryOperationalStatus(context.Background())
	if err != nil {
		t.Fatalf("queryOperationalStatus: %v", err)
	}
	if status != statusOperational {
		t.Errorf("status with empty store = %q, want OPERATIONAL", status)
	}
}

func TestQueryDailySpend(t *testing.T) {
	daemon, store, _ := newTestDaemon(t)
	store.spendTotal = "3.25"

	spent, err := daemon.queryDailySpend(context.Background())
	if err != nil {
		t.Fatalf("queryDailySpend: %v", err)
	}
	if spent != 3.25 {
		t.Errorf("spent = %v, want 3.25", spent)
	}

	// The date is bound as a quoted parameter, never spliced into the
	// query text.
	if got := paramValue(store.lastParams, "date"); got != `"2026-03-14"` {
		t.Errorf("date param = %q, want the fake clock's date as a literal", got)
	}
}

func TestQueryDailySpendEmptyStore(t *testing.T) {
	daemon, _, _ := newTestDaemon(t)
	spent, err := daemon.queryDailySpend(context.Background())
	if err != nil {
		t.Fatalf("queryDailySpend: %v", err)
	}
	if spent != 0 {
		t.Errorf("spent = %v, want 0", spent)
	}
}

func TestQueryDailySpendBadTotal(t *testing.T) {
	daemon, store, _ := newTestDaemon(t)
	store.spendTotal = "not-a-number"
	if _, err := daemon.queryDailySpend(context.Background()); err == nil {
		t.Fatal("queryDailySpend accepted an unparseable total")
	}
}

func TestIsOpenState(t *testing.T) {
	for _, state := range openStates {
		if !isOpenState(state) {
			t.Errorf("isOpenState(%q) = false", state)
		}
	}
	for _, state := range []string{stateProcessing, stateDone, stateFailed, "", "todo"} {
		if isOpenState(state) {
			t.Errorf("isOpenState(%q) = true", state)
		}
	}
}
