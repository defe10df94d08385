// Copyright 2026 The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts time operations so the orchestrator's polling
// loops can be driven deterministically in tests. Production code
// injects Real(); tests inject Fake() and advance time explicitly.
package clock

import "time"

// Clock is the time source injected into every polling loop. Production
// functions that would call time.Now, time.After, time.NewTicker, or
// time.Sleep take a Clock instead (or are methods on a struct holding
// one).
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel that receives the current time after
	// duration d elapses. If d <= 0, the channel receives immediately.
	After(d time.Duration) <-chan time.Time

	// NewTicker returns a Ticker delivering ticks on its C channel at
	// the given interval. Panics if d <= 0.
	NewTicker(d time.Duration) *Ticker

	// Sleep pauses the current goroutine for at least duration d.
	Sleep(d time.Duration)
}

// Ticker wraps a periodic timer. Read ticks from C; call Stop to
// release resources. C has capacity 1, matching time.Ticker: if the
// consumer falls behind, ticks are dropped rather than queued.
type Ticker struct {
	// C delivers ticks. Buffered with capacity 1.
	C <-chan time.Time

	stopFunc func()
}

// Stop turns off the ticker. No more ticks are sent on C after Stop
// returns. Stop does not close C.
func (t *Ticker) Stop() { t.stopFunc() }
