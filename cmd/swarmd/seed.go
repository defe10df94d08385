// Copyright 2026 The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pmaojo/agent-swarm-dev/lib/roster"
	"github.com/pmaojo/agent-swarm-dev/lib/synapse"
)

// seedRoster writes the repository and agent population into the fact
// store at startup. Every agent starts Standby and every repository
// STABLE; re-seeding an existing store is a harmless upsert of the same
// facts.
func seedRoster(ctx context.Context, store factStore, population *roster.Roster, logger *slog.Logger) error {
	var triples []synapse.Triple
	for _, repo := range population.Repositories {
		repoSubject := synapse.RepositorySubject(repo.ID)
		triples = append(triples,
			synapse.Triple{Subject: repoSubject, Predicate: synapse.PredType, Object: synapse.TypeRepository},
			synapse.Triple{Subject: repoSubject, Predicate: synapse.PredName, Object: synapse.Literal(repo.Name)},
			synapse.Triple{Subject: repoSubject, Predicate: synapse.PredShortName, Object: synapse.Literal(repo.Name)},
			synapse.Triple{Subject: repoSubject, Predicate: synapse.PredStatus, Object: synapse.Literal(repoStable)},
		)
		for _, agent := range repo.Agents {
			agentSubject := synapse.AgentSubject(agent.ID)
			triples = append(triples,
				synapse.Triple{Subject: agentSubject, Predicate: synapse.PredType, Object: synapse.TypeAgent},
				synapse.Triple{Subject: agentSubject, Predicate: synapse.PredName, Object: synapse.Literal(agent.Name)},
				synapse.Triple{Subject: agentSubject, Predicate: synapse.PredShortName, Object: synapse.Literal(agent.Name)},
				synapse.Triple{Subject: agentSubject, Predicate: synapse.PredClass, Object: synapse.Literal(agent.Class)},
				synapse.Triple{Subject: agentSubject, Predicate: synapse.PredStatus, Object: synapse.Literal(agentStandby)},
				synapse.Triple{Subject: repoSubject, Predicate: synapse.PredHasPopulation, Object: agentSubject},
			)
		}
	}

	if err := store.Ingest(ctx, triples...); err != nil {
		return fmt.Errorf("seeding roster: %w", err)
	}
	logger.Info("roster seeded",
		"repositories", len(population.Repositories),
		"agents", population.AgentCount())
	return nil
}
