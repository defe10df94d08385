// Copyright 2026 The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pmaojo/agent-swarm-dev/lib/clock"
	"github.com/pmaojo/agent-swarm-dev/lib/synapse"
	"github.com/pmaojo/agent-swarm-dev/lib/telegram"
	"github.com/pmaojo/agent-swarm-dev/lib/trello"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testStart is the fake clock's epoch for daemon tests.
var testStart = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

// newTestDaemon builds a Daemon wired to an in-memory store and a fake
// clock. Tests attach chat, board, and launcher fakes as needed.
func newTestDaemon(t *testing.T) (*Daemon, *fakeStore, *clock.FakeClock) {
	t.Helper()
	store := newFakeStore()
	clk := clock.Fake(testStart)
	logger := testLogger()
	daemon := &Daemon{
		store:         store,
		clock:         clk,
		logger:        logger,
		notifications: newNotifications(notificationQueueCapacity, logger),
		launcher:      &fakeLauncher{},
		startedAt:     clk.Now(),
	}
	return daemon, store, clk
}

// waitFor polls until the condition holds or the deadline passes.
// Used to observe work done by goroutines (reapers, loop iterations)
// without sleeping fixed amounts.
func waitFor(t *testing.T, condition func() bool, message string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", message)
}

// takeNotification pops one queued notification, waiting briefly for
// asynchronous publishers (reapers) to catch up.
func takeNotification(t *testing.T, notifications *Notifications) notification {
	t.Helper()
	select {
	case item := <-notifications.queue:
		return item
	case <-time.After(2 * time.Second):
		t.Fatal("no notification queued")
		return notification{}
	}
}

// fakeStore implements factStore in memory. Ingested triples update a
// current-fact table (upsert per subject and predicate) and every
// batch is recorded for assertions. Queries are answered from scripted
// projection rows, except the status query, which reads the fact
// table like the real store would.
type fakeStore struct {
	mu sync.Mutex

	// facts holds current state: subject → predicate → object, with
	// objects stored exactly as ingested (literals keep their quotes).
	facts map[string]map[string]string

	// Scripted projection results, already in normalized row shape.
	selection    map[string][]synapse.Row // open state → selection rows
	tasks        []synapse.Row
	agents       []synapse.Row
	repositories []synapse.Row
	spendTotal   string

	ingests    [][]synapse.Triple
	conditions []synapse.Condition
	refusals   int
	queryCount int
	lastParams []synapse.Param

	failQuery  error
	failIngest error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		facts:     make(map[string]map[string]string),
		selection: make(map[string][]synapse.Row),
	}
}

func (f *fakeStore) Ingest(_ context.Context, triples ...synapse.Triple) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failIngest != nil {
		return f.failIngest
	}
	f.apply(triples)
	return nil
}

func (f *fakeStore) IngestWhen(_ context.Context, condition synapse.Condition, triples ...synapse.Triple) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failIngest != nil {
		return false, f.failIngest
	}
	f.conditions = append(f.conditions, condition)
	if f.facts[condition.Subject][condition.Predicate] != condition.Equals {
		f.refusals++
		return false, nil
	}
	f.apply(triples)
	return true, nil
}

func (f *fakeStore) apply(triples []synapse.Triple) {
	for _, triple := range triples {
		if f.facts[triple.Subject] == nil {
			f.facts[triple.Subject] = make(map[string]string)
		}
		f.facts[triple.Subject][triple.Predicate] = triple.Object
	}
	f.ingests = append(f.ingests, triples)
}

func (f *fakeStore) Query(_ context.Context, query string, params ...synapse.Param) ([]synapse.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queryCount++
	f.lastParams = params
	if f.failQuery != nil {
		return nil, f.failQuery
	}
	switch {
	case strings.Contains(query, "operationalStatus"):
		status := f.facts[synapse.ControlSubject][synapse.PredOperationalStatus]
		if status == "" {
			return nil, nil
		}
		return []synapse.Row{{"status": synapse.CleanValue(status)}}, nil
	case strings.Contains(query, "SUM(?amount)"):
		if f.spendTotal == "" {
			return nil, nil
		}
		return []synapse.Row{{"total": f.spendTotal}}, nil
	case strings.Contains(query, "LIMIT 1"):
		state := synapse.CleanValue(paramValue(params, "state"))
		return f.selection[state], nil
	case strings.Contains(query, "SELECT ?task ?title ?state"):
		return f.tasks, nil
	case strings.Contains(query, "SELECT ?agent"):
		return f.agents, nil
	case strings.Contains(query, "SELECT ?repo ?name"):
		return f.repositories, nil
	}
	return nil, fmt.Errorf("fakeStore: unrecognized query: %s", query)
}

// fact returns the current object for (subject, predicate), "" when
// nothing has been ingested for it.
func (f *fakeStore) fact(subject, predicate string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.facts[subject][predicate]
}

// setFact seeds current state without recording an ingest.
func (f *fakeStore) setFact(subject, predicate, object string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.facts[subject] == nil {
		f.facts[subject] = make(map[string]string)
	}
	f.facts[subject][predicate] = object
}

func (f *fakeStore) ingestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.ingests)
}

func (f *fakeStore) queries() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queryCount
}

func paramValue(params []synapse.Param, name string) string {
	for _, param := range params {
		if param.Name == name {
			return param.Value
		}
	}
	return ""
}

// fakeChat implements chatAPI. Each GetUpdates call pops one scripted
// batch; sends are recorded for assertions.
type fakeChat struct {
	mu       sync.Mutex
	batches  [][]telegram.Update
	offsets  []int64
	sent     []sentMessage
	failGet  error
	failSend error
}

type sentMessage struct {
	chatID int64
	text   string
}

func (f *fakeChat) GetUpdates(_ context.Context, offset int64, _ time.Duration) ([]telegram.Update, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offsets = append(f.offsets, offset)
	if f.failGet != nil {
		return nil, f.failGet
	}
	if len(f.batches) == 0 {
		return nil, nil
	}
	batch := f.batches[0]
	f.batches = f.batches[1:]
	return batch, nil
}

func (f *fakeChat) SendMessage(_ context.Context, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSend != nil {
		return f.failSend
	}
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text})
	return nil
}

func (f *fakeChat) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

// polls reports how many GetUpdates calls the fake has served.
func (f *fakeChat) polls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.offsets)
}

// command builds an update carrying a text message from the given chat.
func command(updateID int64, chatID int64, text string) telegram.Update {
	return telegram.Update{
		UpdateID: updateID,
		Message: &telegram.Message{
			MessageID: updateID,
			From:      &telegram.User{Username: "operator"},
			Chat:      telegram.Chat{ID: chatID},
			Text:      text,
		},
	}
}

// fakeBoard implements boardAPI with a fixed set of lists and cards.
type fakeBoard struct {
	mu        sync.Mutex
	lists     []trello.List
	cards     map[string][]trello.Card
	failLists error
	failCards error
}

func (f *fakeBoard) Lists(_ context.Context, _ string) ([]trello.List, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failLists != nil {
		return nil, f.failLists
	}
	return f.lists, nil
}

func (f *fakeBoard) Cards(_ context.Context, listID string) ([]trello.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCards != nil {
		return nil, f.failCards
	}
	return f.cards[listID], nil
}

// fakeLauncher records launch titles and hands out scripted handles.
// With no scripted handles each launch gets one that reports success
// as soon as Wait is called.
type fakeLauncher struct {
	mu       sync.Mutex
	titles   []string
	handles  []*fakeHandle
	failWith error
}

func (f *fakeLauncher) Start(_ context.Context, title string) (workerHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.titles = append(f.titles, title)
	if len(f.handles) == 0 {
		handle := newFakeHandle()
		handle.release(nil)
		return handle, nil
	}
	handle := f.handles[0]
	f.handles = f.handles[1:]
	return handle, nil
}

func (f *fakeLauncher) launched() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.titles...)
}

// fakeHandle blocks Wait until release supplies the exit error.
type fakeHandle struct {
	exit chan error
}

func newFakeHandle() *fakeHandle {
	return &fakeHandle{exit: make(chan error, 1)}
}

func (h *fakeHandle) release(err error) { h.exit <- err }

func (h *fakeHandle) Wait() error { return <-h.exit }
