// Copyright 2026 The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"testing"

	"github.com/pmaojo/agent-swarm-dev/lib/roster"
	"github.com/pmaojo/agent-swarm-dev/lib/synapse"
)

func TestSeedRoster(t *testing.T) {
	store := newFakeStore()
	population := roster.Default()

	if err := seedRoster(context.Background(), store, population, testLogger()); err != nil {
		t.Fatalf("seedRoster: %v", err)
	}

	repo := synapse.RepositorySubject("agent-swarm-dev")
	if got := store.fact(repo, synapse.PredType); got != synapse.TypeRepository {
		t.Errorf("repo type = %q", got)
	}
	if got := store.fact(repo, synapse.PredName); got != `"The Swarm Motherland"` {
		t.Errorf("repo name = %q", got)
	}
	if got := store.fact(repo, synapse.PredShortName); got != `"The Swarm Motherland"` {
		t.Errorf("repo short name = %q", got)
	}
	if got := store.fact(repo, synapse.PredStatus); got != `"STABLE"` {
		t.Errorf("repo status = %q, want STABLE", got)
	}

	agent := synapse.AgentSubject("PM_1")
	if got := store.fact(agent, synapse.PredType); got != synapse.TypeAgent {
		t.Errorf("agent type = %q", got)
	}
	if got := store.fact(agent, synapse.PredClass); got != `"ProductManager"` {
		t.Errorf("agent class = %q", got)
	}
	if got := store.fact(agent, synapse.PredStatus); got != `"Standby"` {
		t.Errorf("agent status = %q, want Standby", got)
	}

	// One ingest call carrying the whole population: 4 facts per
	// repository, 5 per agent plus its population link.
	if count := store.ingestCount(); count != 1 {
		t.Fatalf("ingest calls = %d, want 1", count)
	}
	batch := store.ingests[0]
	wantTriples := 4*len(population.Repositories) + 6*population.AgentCount()
	if len(batch) != wantTriples {
		t.Errorf("seed triples = %d, want %d", len(batch), wantTriples)
	}

	populationLinks := 0
	for _, triple := range batch {
		if triple.Predicate == synapse.PredHasPopulation {
			populationLinks++
			if triple.Object == "" || triple.Object[0] == '"' {
				t.Errorf("population link object = %q, want a bare subject URI", triple.Object)
			}
		}
	}
	if populationLinks != population.AgentCount() {
		t.Errorf("population links = %d, want %d", populationLinks, population.AgentCount())
	}
}

func TestSeedRosterStoreError(t *testing.T) {
	store := newFakeStore()
	store.failIngest = errors.New("store down")

	if err := seedRoster(context.Background(), store, roster.Default(), testLogger()); err == nil {
		t.Fatal("seedRoster succeeded with failing store")
	}
}
