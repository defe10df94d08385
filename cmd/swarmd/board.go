// Copyright 2026 The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"time"

	"github.com/pmaojo/agent-swarm-dev/lib/synapse"
	"github.com/pmaojo/agent-swarm-dev/lib/trello"
)

// boardInterval is the Trello polling cadence.
const boardInterval = 10 * time.Second

// boardAPI is the slice of the Trello client the poller uses.
type boardAPI interface {
	Lists(ctx context.Context, boardID string) ([]trello.List, error)
	Cards(ctx context.Context, listID string) ([]trello.Card, error)
}

// runBoard polls the configured board and ingests newly seen cards as
// tasks. Only lists whose names are workflow open states are read; a
// card is keyed by (card id, list name), so moving a card to another
// open list ingests it again under the new state while a card sitting
// still is ingested once.
func (d *Daemon) runBoard(ctx context.Context) {
	d.logger.Info("board poller started", "board", d.boardID, "interval", boardInterval)
	seen := make(map[string]bool)
	ticker := d.clock.NewTicker(boardInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("board poller stopped")
			return
		case <-ticker.C:
			d.boardTick(ctx, seen)
		}
	}
}

func (d *Daemon) boardTick(ctx context.Context, seen map[string]bool) {
	lists, err := d.board.Lists(ctx, d.boardID)
	if err != nil {
		if ctx.Err() == nil {
			d.logger.Warn("board: fetching lists failed", "error", err)
		}
		return
	}

	for _, list := range lists {
		if !isOpenState(list.Name) {
			continue
		}
		cards, err := d.board.Cards(ctx, list.ID)
		if err != nil {
			d.logger.Warn("board: fetching cards failed", "list", list.Name, "error", err)
			continue
		}
		for _, card := range cards {
			key := card.ID + ":" + list.Name
			if seen[key] {
				continue
			}
			subject := synapse.CardSubject(card.ID)
			err := d.store.Ingest(ctx,
				synapse.Triple{Subject: subject, Predicate: synapse.PredType, Object: synapse.TypeTask},
				synapse.Triple{Subject: subject, Predicate: synapse.PredTitle, Object: synapse.Literal(card.Name)},
				synapse.Triple{Subject: subject, Predicate: synapse.PredInternalState, Object: synapse.Literal(list.Name)},
			)
			if err != nil {
				// Not marked seen: the card is retried next round.
				d.logger.Error("board: ingesting card failed", "card", card.ID, "error", err)
				continue
			}
			seen[key] = true
			d.logger.Info("board: card ingested",
				"card", card.ID,
				"title", card.Name,
				"state", list.Name)
		}
	}
}
