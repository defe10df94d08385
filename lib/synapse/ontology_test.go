// Copyright 2026 The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

package synapse

import "testing"

func TestLiteral(t *testing.T) {
	if got := Literal("TODO"); got != `"TODO"` {
		t.Errorf("Literal(TODO) = %q", got)
	}
	if got := Literal(""); got != `""` {
		t.Errorf("Literal of empty string = %q", got)
	}
}

func TestCleanValue(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`"Standby"`, "Standby"},
		{`<http://swarm.os/agent/PM_1>`, "http://swarm.os/agent/PM_1"},
		{"http://swarm.os/agent/PM_1", "http://swarm.os/agent/PM_1"},
		{"plain", "plain"},
		{`""`, ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := CleanValue(tt.in); got != tt.want {
			t.Errorf("CleanValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSubjects(t *testing.T) {
	if got := CardSubject("abc123"); got != "http://swarm.os/trello/card/abc123" {
		t.Errorf("CardSubject = %q", got)
	}
	if got := AgentSubject("PM_1"); got != "http://swarm.os/agent/PM_1" {
		t.Errorf("AgentSubject = %q", got)
	}
	if got := RepositorySubject("synapse-engine"); got != "http://swarm.os/repository/synapse-engine" {
		t.Errorf("RepositorySubject = %q", got)
	}
	if got := StatusEventSubject("deadbeef"); got != "http://nist.gov/caisi/event/status/deadbeef" {
		t.Errorf("StatusEventSubject = %q", got)
	}
	if got := RequestSubject("42"); got != "http://nist.gov/caisi/request/42" {
		t.Errorf("RequestSubject = %q", got)
	}
}
