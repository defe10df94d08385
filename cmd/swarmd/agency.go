// Copyright 2026 The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/pmaojo/agent-swarm-dev/lib/synapse"
)

// agencyInterval is the reconciliation cadence. Each tick assigns at
// most one task; ticks never overlap because the loop is sequential.
const agencyInterval = 15 * time.Second

// completionTimeout bounds the store writes a reaper performs after its
// worker exits. Reapers outlive the tick that started them, so they
// carry their own deadline instead of the loop context.
const completionTimeout = 30 * time.Second

// taskSelectionQuery pairs one open task in a given state with one
// Standby agent. The scheduler runs it once per open state, in priority
// order, and assigns the first hit.
const taskSelectionQuery = `
PREFIX swarm: <http://swarm.os/ontology/>
SELECT ?task ?title ?agent
WHERE {
    ?task a swarm:Task ;
          swarm:internalState $state ;
          swarm:title ?title .
    ?agent a swarm:Agent ;
           swarm:status "Standby" .
}
LIMIT 1`

func (d *Daemon) runAgency(ctx context.Context) {
	d.logger.Info("agency scheduler started", "interval", agencyInterval)
	ticker := d.clock.NewTicker(agencyInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("agency scheduler stopped")
			return
		case <-ticker.C:
			d.agencyTick(ctx)
		}
	}
}

// agencyTick performs one reconciliation pass: check the kill switch,
// find work, claim it, launch a worker.
func (d *Daemon) agencyTick(ctx context.Context) {
	status, err := d.queryOperationalStatus(ctx)
	if err != nil {
		d.logger.Error("agency: reading operational status", "error", err)
		return
	}
	if status == statusHalted {
		d.logger.Debug("agency: system halted, skipping assignment")
		return
	}

	for _, state := range openStates {
		rows, err := d.store.Query(ctx, taskSelectionQuery,
			synapse.Param{Name: "state", Value: synapse.Literal(state)})
		if err != nil {
			d.logger.Error("agency: task selection failed", "state", state, "error", err)
			return
		}
		if len(rows) == 0 {
			continue
		}
		row := rows[0]
		d.assign(ctx, row["task"], row["title"], row["agent"], state)
		return
	}
}

// assign claims the task for the agent and launches a worker. The claim
// is a single conditional write: both the task transition and the agent
// status land only if the task is still in the state it was selected
// with, so two schedulers can never double-assign.
func (d *Daemon) assign(ctx context.Context, taskSubject, title, agentSubject, fromState string) {
	applied, err := d.store.IngestWhen(ctx,
		synapse.Condition{
			Subject:   taskSubject,
			Predicate: synapse.PredInternalState,
			Equals:    synapse.Literal(fromState),
		},
		synapse.Triple{Subject: taskSubject, Predicate: synapse.PredInternalState, Object: synapse.Literal(stateProcessing)},
		synapse.Triple{Subject: agentSubject, Predicate: synapse.PredStatus, Object: synapse.Literal("Working on: " + title)},
	)
	if err != nil {
		d.logger.Error("agency: claiming task failed", "task", taskSubject, "error", err)
		return
	}
	if !applied {
		d.logger.Info("agency: task changed state before claim, abandoning",
			"task", taskSubject, "expected_state", fromState)
		return
	}

	d.logger.Info("agency: task assigned",
		"task", taskSubject,
		"title", title,
		"agent", agentSubject)

	handle, err := d.launcher.Start(ctx, title)
	if err != nil {
		d.logger.Error("agency: worker launch failed", "task", taskSubject, "error", err)
		d.finish(ctx, taskSubject, agentSubject, stateFailed)
		d.notifications.Alert(fmt.Sprintf("worker failed: %s: %v", title, err))
		return
	}

	go d.reap(taskSubject, agentSubject, title, handle)
}

// reap waits for a worker to exit, then records the outcome and tells
// the chat channel. Reapers are fire-and-forget: they are not joined on
// shutdown, and a store failure here is logged, never fatal.
func (d *Daemon) reap(taskSubject, agentSubject, title string, handle workerHandle) {
	waitErr := handle.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), completionTimeout)
	defer cancel()

	if waitErr != nil {
		d.logger.Error("agency: worker failed", "task", taskSubject, "title", title, "error", waitErr)
		d.finish(ctx, taskSubject, agentSubject, stateFailed)
		d.notifications.Alert(fmt.Sprintf("worker failed: %s: %v", title, waitErr))
		return
	}

	d.logger.Info("agency: worker finished", "task", taskSubject, "title", title)
	d.finish(ctx, taskSubject, agentSubject, stateDone)
	d.notifications.Trace("worker finished: " + title)
}

// finish moves the task to a terminal state and returns the agent to
// Standby in one write.
func (d *Daemon) finish(ctx context.Context, taskSubject, agentSubject, state string) {
	err := d.store.Ingest(ctx,
		synapse.Triple{Subject: taskSubject, Predicate: synapse.PredInternalState, Object: synapse.Literal(state)},
		synapse.Triple{Subject: agentSubject, Predicate: synapse.PredStatus, Object: synapse.Literal(agentStandby)},
	)
	if err != nil {
		d.logger.Error("agency: recording completion failed",
			"task", taskSubject,
			"state", state,
			"error", err)
	}
}
