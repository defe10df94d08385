// Copyright 2026 The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pmaojo/agent-swarm-dev/lib/synapse"
	"github.com/pmaojo/agent-swarm-dev/lib/telegram"
)

const (
	// chatPollInterval paces command polling; notifications are drained
	// ahead of every poll.
	chatPollInterval = 2 * time.Second

	// chatLongPollTimeout is the server-side getUpdates hold time. Kept
	// short so notification delivery is never stuck behind a long poll.
	chatLongPollTimeout = 1 * time.Second
)

// chatAPI is the slice of the Telegram client the chat loop uses.
type chatAPI interface {
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]telegram.Update, error)
	SendMessage(ctx context.Context, chatID int64, text string) error
}

const startReply = `Swarm control online.
Commands:
/status - system health and daily spend
/stop_all - halt task assignment
/resume - resume task assignment
/approve <id> - approve a pending command request
/deny <id> - deny a pending command request`

const greetingReply = "Hello! I am the swarm monitor. I only respond to specific commands; try /status."

// runChat owns the outbound bot channel. One loop both delivers queued
// notifications and polls for operator commands; notifications win when
// both are ready, and the pending queue is drained before every poll.
func (d *Daemon) runChat(ctx context.Context) {
	d.logger.Info("chat loop started",
		"poll_interval", chatPollInterval,
		"authorized_chat_configured", d.chatIDSet)
	ticker := d.clock.NewTicker(chatPollInterval)
	defer ticker.Stop()

	var offset int64
	for {
		// Priority drain: queued notifications go out before anything
		// else, in enqueue order.
		select {
		case item := <-d.notifications.queue:
			d.deliver(ctx, item)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			d.logger.Info("chat loop stopped")
			return
		case item := <-d.notifications.queue:
			d.deliver(ctx, item)
		case <-ticker.C:
			offset = d.pollCommands(ctx, offset)
		}
	}
}

// deliver sends one notification to the configured chat. Without a
// configured chat there is no destination; the notification is dropped
// and counted.
func (d *Daemon) deliver(ctx context.Context, item notification) {
	if !d.chatIDSet {
		d.notifications.drop(item, "no chat configured")
		return
	}
	if err := d.chat.SendMessage(ctx, d.chatID, item.render()); err != nil {
		if ctx.Err() == nil {
			d.logger.Error("chat: sending notification failed", "kind", item.kind.String(), "error", err)
		}
	}
}

// pollCommands fetches pending updates and dispatches each message. The
// offset advances past every update before it is handled, so a failing
// handler can never wedge the stream on one update.
func (d *Daemon) pollCommands(ctx context.Context, offset int64) int64 {
	updates, err := d.chat.GetUpdates(ctx, offset, chatLongPollTimeout)
	if err != nil {
		if ctx.Err() == nil {
			d.logger.Warn("chat: fetching updates failed", "error", err)
		}
		return offset
	}
	for _, update := range updates {
		if update.UpdateID >= offset {
			offset = update.UpdateID + 1
		}
		if update.Message == nil || update.Message.Text == "" {
			continue
		}
		d.handleMessage(ctx, update.Message)
	}
	return offset
}

func (d *Daemon) handleMessage(ctx context.Context, message *telegram.Message) {
	command, args := splitCommand(message.Text)
	switch command {
	case "/start":
		d.reply(ctx, message.Chat.ID, startReply)
	case "/status":
		d.replyStatus(ctx, message.Chat.ID)
	case "/stop_all":
		d.handleStatusChange(ctx, message, statusHalted,
			"System HALTED. The scheduler stops assigning on its next cycle.")
	case "/resume":
		d.handleStatusChange(ctx, message, statusOperational,
			"System OPERATIONAL. The scheduler resumes on its next cycle.")
	case "/approve":
		d.handleApproval(ctx, message, args, "APPROVED")
	case "/deny":
		d.handleApproval(ctx, message, args, "REJECTED")
	default:
		if containsGreeting(message.Text) {
			d.reply(ctx, message.Chat.ID, greetingReply)
		}
	}
}

// handleStatusChange runs the kill switch and its inverse.
func (d *Daemon) handleStatusChange(ctx context.Context, message *telegram.Message, newStatus, confirmation string) {
	if !d.authorized(message.Chat.ID) {
		d.rejectUnauthorized(ctx, message)
		return
	}
	if err := d.ingestStatusChange(ctx, newStatus, senderName(message)); err != nil {
		d.logger.Error("chat: recording status change failed", "new_status", newStatus, "error", err)
		d.reply(ctx, message.Chat.ID, "Failed to record the status change. Check the daemon logs.")
		return
	}
	d.reply(ctx, message.Chat.ID, confirmation)
}

// handleApproval records a verdict on a command request subject. The
// argument may be a full request URI or a bare id.
func (d *Daemon) handleApproval(ctx context.Context, message *telegram.Message, args, verdict string) {
	if !d.authorized(message.Chat.ID) {
		d.rejectUnauthorized(ctx, message)
		return
	}
	id, _, _ := strings.Cut(strings.TrimSpace(args), " ")
	if id == "" {
		verb := "/approve"
		if verdict == "REJECTED" {
			verb = "/deny"
		}
		d.reply(ctx, message.Chat.ID, "Usage: "+verb+" <request-id>")
		return
	}
	subject := id
	if !strings.HasPrefix(subject, "http") {
		subject = synapse.RequestSubject(subject)
	}

	err := d.store.Ingest(ctx,
		synapse.Triple{Subject: subject, Predicate: synapse.PredApprovalStatus, Object: synapse.Literal(verdict)},
		synapse.Triple{Subject: subject, Predicate: synapse.PredWasAttributedTo, Object: synapse.Literal(senderName(message))},
	)
	if err != nil {
		d.logger.Error("chat: recording approval failed", "request", subject, "verdict", verdict, "error", err)
		d.reply(ctx, message.Chat.ID, "Failed to record the decision. Check the daemon logs.")
		return
	}
	d.logger.Info("chat: command request decided",
		"request", subject,
		"verdict", verdict,
		"by", senderName(message))
	d.reply(ctx, message.Chat.ID, "Recorded "+verdict+" for "+lastSegment(subject)+".")
}

// replyStatus answers /status with the health summary. Partial store
// failures degrade to an apologetic reply rather than silence.
func (d *Daemon) replyStatus(ctx context.Context, chatID int64) {
	status, err := d.queryOperationalStatus(ctx)
	if err != nil {
		d.logger.Error("chat: status query failed", "error", err)
		d.reply(ctx, chatID, "Status check failed. Try again shortly.")
		return
	}
	tasks, err := d.queryTasks(ctx)
	if err != nil {
		d.logger.Error("chat: task query failed", "error", err)
		d.reply(ctx, chatID, "Status check failed. Try again shortly.")
		return
	}
	spent, err := d.queryDailySpend(ctx)
	if err != nil {
		d.logger.Error("chat: spend query failed", "error", err)
		d.reply(ctx, chatID, "Status check failed. Try again shortly.")
		return
	}
	open, processing := countTaskStates(tasks)
	d.reply(ctx, chatID, fmt.Sprintf(
		"Status: %s\nOpen tasks: %d\nProcessing: %d\nDaily spend: $%.4f / $%.2f",
		status, open, processing, spent, dailySpendMax))
}

// authorized reports whether a chat may run privileged commands. With
// no authorized chat configured every chat qualifies; main logs a
// warning about that mode at startup.
func (d *Daemon) authorized(chatID int64) bool {
	return !d.chatIDSet || chatID == d.chatID
}

func (d *Daemon) rejectUnauthorized(ctx context.Context, message *telegram.Message) {
	d.logger.Info("chat: unauthorized command",
		"chat_id", message.Chat.ID,
		"from", senderName(message),
		"text", message.Text)
	d.reply(ctx, message.Chat.ID, "Unauthorized.")
}

func (d *Daemon) reply(ctx context.Context, chatID int64, text string) {
	if err := d.chat.SendMessage(ctx, chatID, text); err != nil {
		if ctx.Err() == nil {
			d.logger.Error("chat: sending reply failed", "chat_id", chatID, "error", err)
		}
	}
}

// splitCommand separates the command token from its arguments.
func splitCommand(text string) (command, args string) {
	trimmed := strings.TrimSpace(text)
	command, args, _ = strings.Cut(trimmed, " ")
	return command, strings.TrimSpace(args)
}

func containsGreeting(text string) bool {
	lowered := strings.ToLower(text)
	return strings.Contains(lowered, "hello") || strings.Contains(lowered, "hola")
}

func senderName(message *telegram.Message) string {
	if message.From == nil {
		return "unknown"
	}
	return message.From.Name()
}
