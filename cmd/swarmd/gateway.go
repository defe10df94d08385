// Copyright 2026 The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"net/http"
)

// dailySpendMax is the daily budget reported by the gateway and the
// /status chat command, in USD.
const dailySpendMax = 10.0

// stateResponse is the GET /api/v1/state payload.
type stateResponse struct {
	OperationalStatus string            `json:"operational_status"`
	DailySpend        spendStatus       `json:"daily_spend"`
	Agents            []agentRow        `json:"agents"`
	Tasks             []taskRow         `json:"tasks"`
	Repositories      []repositoryState `json:"repositories"`
}

type spendStatus struct {
	Max   float64 `json:"max"`
	Spent float64 `json:"spent"`
	Unit  string  `json:"unit"`
}

type repositoryState struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Agents []agentRow `json:"agents"`
}

// gatewayHandler serves the read-only aggregation endpoint for
// dashboards. Unknown paths fall through to the mux's 404.
func (d *Daemon) gatewayHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/state", d.handleState)
	return mux
}

// handleState projects the fact store into one JSON document. Each
// section degrades independently on store trouble: a failed query
// leaves its section empty and is logged, and the response is still
// 200. Dashboards get whatever the store can answer.
func (d *Daemon) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()

	response := stateResponse{
		DailySpend:   spendStatus{Max: dailySpendMax, Unit: "USD"},
		Agents:       []agentRow{},
		Tasks:        []taskRow{},
		Repositories: []repositoryState{},
	}

	if status, err := d.queryOperationalStatus(ctx); err != nil {
		d.logger.Warn("gateway: status query failed", "error", err)
	} else {
		response.OperationalStatus = status
	}

	if spent, err := d.queryDailySpend(ctx); err != nil {
		d.logger.Warn("gateway: spend query failed", "error", err)
	} else {
		response.DailySpend.Spent = spent
	}

	var agents []agentRow
	if rows, err := d.queryAgents(ctx); err != nil {
		d.logger.Warn("gateway: agent query failed", "error", err)
	} else {
		agents = rows
		response.Agents = rows
	}

	if tasks, err := d.queryTasks(ctx); err != nil {
		d.logger.Warn("gateway: task query failed", "error", err)
	} else {
		response.Tasks = tasks
	}

	if repos, err := d.queryRepositories(ctx); err != nil {
		d.logger.Warn("gateway: repository query failed", "error", err)
	} else {
		response.Repositories = groupByRepository(repos, agents)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		d.logger.Warn("gateway: writing response failed", "error", err)
	}
}

// groupByRepository nests each agent under its repository row.
func groupByRepository(repos []repositoryRow, agents []agentRow) []repositoryState {
	grouped := make([]repositoryState, 0, len(repos))
	for _, repo := range repos {
		entry := repositoryState{
			ID:     repo.ID,
			Name:   repo.Name,
			Agents: []agentRow{},
		}
		for _, agent := range agents {
			if agent.Repository == repo.ID {
				entry.Agents = append(entry.Agents, agent)
			}
		}
		grouped = append(grouped, entry)
	}
	return grouped
}
