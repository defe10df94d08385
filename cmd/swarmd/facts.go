// Copyright 2026 The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pmaojo/agent-swarm-dev/lib/synapse"
)

// Canned queries for the daemon's projections. Variable parts are bound
// as named parameters, never spliced into the query text.
const (
	operationalStatusQuery = `
PREFIX nist: <http://nist.gov/caisi/>
SELECT ?status
WHERE { <http://nist.gov/caisi/SystemControl> nist:operationalStatus ?status . }`

	dailySpendQuery = `
PREFIX swarm: <http://swarm.os/ontology/>
SELECT (SUM(?amount) AS ?total)
WHERE {
    ?event a swarm:SpendEvent ;
           swarm:date $date ;
           swarm:amount ?amount .
}`

	tasksQuery = `
PREFIX swarm: <http://swarm.os/ontology/>
SELECT ?task ?title ?state
WHERE {
    ?task a swarm:Task ;
          swarm:internalState ?state .
    OPTIONAL { ?task swarm:title ?title }
}`

	agentsQuery = `
PREFIX swarm: <http://swarm.os/ontology/>
SELECT ?agent ?name ?class ?status ?repo
WHERE {
    ?agent a swarm:Agent ;
           swarm:name ?name ;
           swarm:class ?class ;
           swarm:status ?status .
    ?repo swarm:hasPopulation ?agent .
}`

	repositoriesQuery = `
PREFIX swarm: <http://swarm.os/ontology/>
SELECT ?repo ?name
WHERE {
    ?repo a swarm:Repository ;
          swarm:name ?name .
}`
)

// taskRow is one task in the gateway and socket projections.
type taskRow struct {
	ID    string `json:"id" cbor:"id"`
	Title string `json:"title" cbor:"title"`
	State string `json:"state" cbor:"state"`
}

// agentRow is one agent in the gateway and socket projections.
type agentRow struct {
	ID         string `json:"id" cbor:"id"`
	Name       string `json:"name" cbor:"name"`
	Class      string `json:"class" cbor:"class"`
	Status     string `json:"status" cbor:"status"`
	Repository string `json:"repository" cbor:"repository"`
}

// repositoryRow is one repository before its agents are grouped in.
type repositoryRow struct {
	ID   string
	Name string
}

// queryOperationalStatus reads the current system status. A store with
// no recorded status is operational: nothing has halted it yet.
func (d *Daemon) queryOperationalStatus(ctx context.Context) (string, error) {
	rows, err := d.store.Query(ctx, operationalStatusQuery)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 || rows[0]["status"] == "" {
		return statusOperational, nil
	}
	return rows[0]["status"], nil
}

// queryDailySpend sums today's spend events in dollars.
func (d *Daemon) queryDailySpend(ctx context.Context) (float64, error) {
	today := d.clock.Now().UTC().Format("2006-01-02")
	rows, err := d.store.Query(ctx, dailySpendQuery,
		synapse.Param{Name: "date", Value: synapse.Literal(today)})
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 || rows[0]["total"] == "" {
		return 0, nil
	}
	total, err := strconv.ParseFloat(rows[0]["total"], 64)
	if err != nil {
		return 0, fmt.Errorf("parsing spend total %q: %w", rows[0]["total"], err)
	}
	return total, nil
}

func (d *Daemon) queryTasks(ctx context.Context) ([]taskRow, error) {
	rows, err := d.store.Query(ctx, tasksQuery)
	if err != nil {
		return nil, err
	}
	tasks := make([]taskRow, 0, len(rows))
	for _, row := range rows {
		task := taskRow{
			ID:    lastSegment(row["task"]),
			Title: row["title"],
			State: row["state"],
		}
		if task.Title == "" {
			task.Title = task.ID
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (d *Daemon) queryAgents(ctx context.Context) ([]agentRow, error) {
	rows, err := d.store.Query(ctx, agentsQuery)
	if err != nil {
		return nil, err
	}
	agents := make([]agentRow, 0, len(rows))
	for _, row := range rows {
		agents = append(agents, agentRow{
			ID:         lastSegment(row["agent"]),
			Name:       row["name"],
			Class:      row["class"],
			Status:     row["status"],
			Repository: lastSegment(row["repo"]),
		})
	}
	return agents, nil
}

func (d *Daemon) queryRepositories(ctx context.Context) ([]repositoryRow, error) {
	rows, err := d.store.Query(ctx, repositoriesQuery)
	if err != nil {
		return nil, err
	}
	repos := make([]repositoryRow, 0, len(rows))
	for _, row := range rows {
		repos = append(repos, repositoryRow{
			ID:   lastSegment(row["repo"]),
			Name: row["name"],
		})
	}
	return repos, nil
}

// ingestStatusChange records a system status transition: a fresh
// StatusChangeEvent (typed, dated, linked into the control subject's
// history) plus the updated current-status fact, in one ingest call.
func (d *Daemon) ingestStatusChange(ctx context.Context, newStatus, actor string) error {
	eventSubject := synapse.StatusEventSubject(uuid.NewString())
	timestamp := d.clock.Now().UTC().Format(time.RFC3339)

	err := d.store.Ingest(ctx,
		synapse.Triple{Subject: eventSubject, Predicate: synapse.PredType, Object: synapse.TypeStatusChangeEvent},
		synapse.Triple{Subject: eventSubject, Predicate: synapse.PredNewStatus, Object: synapse.Literal(newStatus)},
		synapse.Triple{Subject: eventSubject, Predicate: synapse.PredGeneratedAtTime, Object: synapse.Literal(timestamp)},
		synapse.Triple{Subject: synapse.ControlSubject, Predicate: synapse.PredHasStatusHistory, Object: eventSubject},
		synapse.Triple{Subject: synapse.ControlSubject, Predicate: synapse.PredOperationalStatus, Object: synapse.Literal(newStatus)},
	)
	if err != nil {
		return err
	}
	d.logger.Info("system status changed", "new_status", newStatus, "actor", actor)
	return nil
}

// lastSegment returns the final path segment of a subject URI, used as
// the external id in projections.
func lastSegment(uri string) string {
	if i := strings.LastIndexByte(uri, '/'); i >= 0 {
		return uri[i+1:]
	}
	return uri
}

// countTaskStates tallies open and in-flight tasks for status summaries.
func countTaskStates(tasks []taskRow) (open, processing int) {
	for _, task := range tasks {
		switch {
		case isOpenState(task.State):
			open++
		case task.State == stateProcessing:
			processing++
		}
	}
	return open, processing
}
