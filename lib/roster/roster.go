// Copyright 2026 The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

// Package roster defines the repository/agent population seeded into
// the fact store at daemon startup. Rosters are authored on disk as
// JSONC files (JSON extended with comments and trailing commas) so
// operators can annotate why an agent exists; the built-in default
// roster is used when no file is configured.
package roster

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"
)

// Roster is the full population description.
type Roster struct {
	// Repositories lists every repository and its resident agents.
	Repositories []Repository `json:"repositories"`
}

// Repository is a codebase the swarm works on. Its agents are written
// to the store as the repository's population.
type Repository struct {
	// ID is the repository identifier used in fact subjects.
	ID string `json:"id"`

	// Name is the human-readable display name.
	Name string `json:"name"`

	// Agents is the repository's resident agent population.
	Agents []Agent `json:"agents"`
}

// Agent is a worker identity seeded with status Standby.
type Agent struct {
	// ID is the agent identifier used in fact subjects.
	ID string `json:"id"`

	// Name is the human-readable display name.
	Name string `json:"name"`

	// Class is the agent's role (Coder, Analyst, Reviewer, ...).
	Class string `json:"class"`
}

// Parse strips JSONC comments and trailing commas from data, then
// unmarshals the result into a Roster.
func Parse(data []byte) (*Roster, error) {
	stripped := jsonc.ToJSON(data)

	var parsed Roster
	if err := json.Unmarshal(stripped, &parsed); err != nil {
		return nil, fmt.Errorf("parsing roster: %w", err)
	}

	return &parsed, nil
}

// ReadFile reads a JSONC roster file from disk and parses it.
func ReadFile(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	parsed, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return parsed, nil
}

// Validate checks identifiers are present and unique across the roster.
func (r *Roster) Validate() error {
	seenRepos := make(map[string]bool)
	seenAgents := make(map[string]bool)

	for _, repo := range r.Repositories {
		if repo.ID == "" {
			return fmt.Errorf("repository with empty id (name %q)", repo.Name)
		}
		if repo.Name == "" {
			return fmt.Errorf("repository %q has no name", repo.ID)
		}
		if seenRepos[repo.ID] {
			return fmt.Errorf("duplicate repository id %q", repo.ID)
		}
		seenRepos[repo.ID] = true

		for _, agent := range repo.Agents {
			if agent.ID == "" {
				return fmt.Errorf("agent with empty id in repository %q", repo.ID)
			}
			if agent.Name == "" || agent.Class == "" {
				return fmt.Errorf("agent %q needs both name and class", agent.ID)
			}
			if seenAgents[agent.ID] {
				return fmt.Errorf("duplicate agent id %q", agent.ID)
			}
			seenAgents[agent.ID] = true
		}
	}

	return nil
}

// AgentCount returns the total number of agents across all repositories.
func (r *Roster) AgentCount() int {
	count := 0
	for _, repo := range r.Repositories {
		count += len(repo.Agents)
	}
	return count
}

// Default returns the built-in roster: four repositories, nine agents,
// matching the population the swarm launched with.
func Default() *Roster {
	return &Roster{
		Repositories: []Repository{
			{
				ID:   "agent-swarm-dev",
				Name: "The Swarm Motherland",
				Agents: []Agent{
					{ID: "PM_1", Name: "ProductManager", Class: "ProductManager"},
					{ID: "Coder_1", Name: "Coder", Class: "Coder"},
					{ID: "Architect_1", Name: "Architect", Class: "Architect"},
				},
			},
			{
				ID:   "synapse-engine",
				Name: "The Core Empire",
				Agents: []Agent{
					{ID: "Coder_Core", Name: "Core Dev", Class: "Coder"},
					{ID: "Analyst_Core", Name: "Data Seer", Class: "Analyst"},
				},
			},
			{
				ID:   "agent-swarm-visualizer",
				Name: "The Front-End Republic",
				Agents: []Agent{
					{ID: "UI_Master", Name: "UI Master", Class: "Coder"},
					{ID: "Reviewer_FE", Name: "UX Critic", Class: "Reviewer"},
				},
			},
			{
				ID:   "swarm-security",
				Name: "The Security Kingdom",
				Agents: []Agent{
					{ID: "Sentinel", Name: "The Sentinel", Class: "Security"},
					{ID: "Sec_Analyst", Name: "Warden", Class: "Analyst"},
				},
			},
		},
	}
}
