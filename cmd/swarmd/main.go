// Copyright 2026 The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

// swarmd is the swarm orchestration daemon. It reconciles a shared
// fact store against a population of repository-bound agents: Trello
// cards become task facts, a Telegram bot carries operator commands
// and outbound notifications, and a fixed-cadence scheduler assigns
// open tasks to Standby agents, launching one worker process per
// assignment.
//
// All coordination state lives in the synapse fact store. swarmd keeps
// only loop-local dedup and offset state, so it can be restarted at
// any time without losing work.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"syscall"
	"time"

	"github.com/pmaojo/agent-swarm-dev/lib/clock"
	"github.com/pmaojo/agent-swarm-dev/lib/config"
	"github.com/pmaojo/agent-swarm-dev/lib/process"
	"github.com/pmaojo/agent-swarm-dev/lib/roster"
	"github.com/pmaojo/agent-swarm-dev/lib/secret"
	"github.com/pmaojo/agent-swarm-dev/lib/service"
	"github.com/pmaojo/agent-swarm-dev/lib/synapse"
	"github.com/pmaojo/agent-swarm-dev/lib/telegram"
	"github.com/pmaojo/agent-swarm-dev/lib/trello"
	"github.com/pmaojo/agent-swarm-dev/lib/version"
)

// Task workflow states. A task enters in one of the open states, is
// claimed into PROCESSING, and ends DONE or FAILED.
const (
	stateProcessing = "PROCESSING"
	stateDone       = "DONE"
	stateFailed     = "FAILED"
)

// System and population status values.
const (
	statusOperational = "OPERATIONAL"
	statusHalted      = "HALTED"

	agentStandby = "Standby"
	repoStable   = "STABLE"
)

// openStates is the assignment scan order; earlier states win. The
// same names form the board poller's list allow-list.
var openStates = []string{"REQUIREMENTS", "DESIGN", "TODO", "INBOX"}

func isOpenState(state string) bool { return slices.Contains(openStates, state) }

// factStore is the slice of the synapse client the daemon uses.
type factStore interface {
	Ingest(ctx context.Context, triples ...synapse.Triple) error
	IngestWhen(ctx context.Context, condition synapse.Condition, triples ...synapse.Triple) (bool, error)
	Query(ctx context.Context, query string, params ...synapse.Param) ([]synapse.Row, error)
}

// Daemon is the shared state behind every loop and server. The store
// handle is safe for concurrent use; everything else is set once in
// run and read-only afterwards.
type Daemon struct {
	store         factStore
	clock         clock.Clock
	logger        *slog.Logger
	notifications *Notifications
	launcher      launcher

	// chat is nil when TELEGRAM_BOT_TOKEN is absent. chatID is both
	// the authorized operator chat and the notification destination;
	// chatIDSet false means every chat is authorized and
	// notifications have nowhere to go.
	chat      chatAPI
	chatID    int64
	chatIDSet bool

	// board is nil unless all Trello credentials are configured.
	board   boardAPI
	boardID string

	startedAt    time.Time
	rosterRepos  int
	rosterAgents int
}

var (
	configPath  = flag.String("config", "", "path to the YAML config file (overrides SWARMD_CONFIG)")
	showVersion = flag.Bool("version", false, "print version information and exit")
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	flag.Parse()

	if *showVersion {
		version.Print("swarmd")
		return nil
	}

	logLevel := slog.LevelInfo
	if os.Getenv("SWARMD_DEBUG") != "" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.EnsurePaths(); err != nil {
		return err
	}

	store, err := synapse.NewClient(synapse.ClientConfig{
		BaseURL:    cfg.Synapse.URL,
		Namespace:  cfg.Synapse.Namespace,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("creating synapse client: %w", err)
	}

	population, err := loadRoster(cfg.Roster)
	if err != nil {
		return fmt.Errorf("loading roster: %w", err)
	}
	if err := seedRoster(ctx, store, population, logger); err != nil {
		return err
	}

	clk := clock.Real()
	daemon := &Daemon{
		store:         store,
		clock:         clk,
		logger:        logger,
		notifications: newNotifications(notificationQueueCapacity, logger),
		launcher:      newExecLauncher(cfg.Worker.Command, cfg.Worker.CaptureDir, clk, logger),
		startedAt:     clk.Now(),
		rosterRepos:   len(population.Repositories),
		rosterAgents:  population.AgentCount(),
	}

	if len(cfg.Worker.Command) == 0 {
		logger.Warn("worker.command not configured, every assignment will fail immediately")
	}

	botToken, err := secret.FromEnv("TELEGRAM_BOT_TOKEN")
	if err != nil {
		return fmt.Errorf("reading TELEGRAM_BOT_TOKEN: %w", err)
	}
	if botToken != nil {
		defer botToken.Close()
		chatClient, err := telegram.NewClient(telegram.ClientConfig{
			Token:      botToken,
			HTTPClient: &http.Client{Timeout: 30 * time.Second},
			Logger:     logger,
		})
		if err != nil {
			return fmt.Errorf("creating telegram client: %w", err)
		}
		daemon.chat = chatClient

		if raw := os.Getenv("TELEGRAM_CHAT_ID"); raw != "" {
			chatID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return fmt.Errorf("parsing TELEGRAM_CHAT_ID: %w", err)
			}
			daemon.chatID = chatID
			daemon.chatIDSet = true
		} else {
			logger.Warn("TELEGRAM_CHAT_ID not set: every chat may run privileged commands and notifications have no destination")
		}
	} else {
		logger.Info("TELEGRAM_BOT_TOKEN not set, chat loop disabled")
	}

	boardToken, err := secret.FromEnv("TRELLO_TOKEN")
	if err != nil {
		return fmt.Errorf("reading TRELLO_TOKEN: %w", err)
	}
	boardKey := os.Getenv("TRELLO_API_KEY")
	boardID := os.Getenv("TRELLO_BOARD_ID")
	if boardToken != nil && boardKey != "" && boardID != "" {
		defer boardToken.Close()
		boardClient, err := trello.NewClient(trello.ClientConfig{
			Key:        boardKey,
			Token:      boardToken,
			HTTPClient: &http.Client{Timeout: 30 * time.Second},
			Logger:     logger,
		})
		if err != nil {
			return fmt.Errorf("creating trello client: %w", err)
		}
		daemon.board = boardClient
		daemon.boardID = boardID
	} else {
		if boardToken != nil {
			boardToken.Close()
		}
		logger.Info("trello credentials not fully set, board poller disabled")
	}

	// Start the ops socket and the HTTP gateway in goroutines.
	socketServer := service.NewSocketServer(cfg.Socket.Path, logger)
	daemon.registerActions(socketServer)

	socketDone := make(chan error, 1)
	go func() {
		socketDone <- socketServer.Serve(ctx)
	}()

	gateway := service.NewHTTPServer(service.HTTPServerConfig{
		Address: cfg.Gateway.Listen,
		Handler: daemon.gatewayHandler(),
		Logger:  logger,
	})
	gatewayDone := make(chan error, 1)
	go func() {
		gatewayDone <- gateway.Serve(ctx)
	}()

	// The loops exit on context cancellation; workers they started do
	// not (reapers record completions on their own deadline).
	go daemon.runAgency(ctx)
	if daemon.board != nil {
		go daemon.runBoard(ctx)
	}
	if daemon.chat != nil {
		go daemon.runChat(ctx)
	}

	logger.Info("swarmd running",
		"socket", cfg.Socket.Path,
		"gateway", cfg.Gateway.Listen,
		"synapse", cfg.Synapse.URL,
		"repositories", daemon.rosterRepos,
		"agents", daemon.rosterAgents,
		"board_poller", daemon.board != nil,
		"chat_loop", daemon.chat != nil,
	)

	// Wait for shutdown signal.
	<-ctx.Done()
	logger.Info("shutting down")

	// Wait for the servers to drain active connections.
	if err := <-socketDone; err != nil {
		logger.Error("socket server error", "error", err)
	}
	if err := <-gatewayDone; err != nil {
		logger.Error("gateway error", "error", err)
	}

	return nil
}

// loadConfig resolves the config source: an explicit -config path wins
// over the SWARMD_CONFIG environment variable, which wins over the
// built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// loadRoster reads the configured roster file, falling back to the
// built-in population when none is configured.
func loadRoster(path string) (*roster.Roster, error) {
	if path == "" {
		return roster.Default(), nil
	}
	population, err := roster.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := population.Validate(); err != nil {
		return nil, fmt.Errorf("invalid roster %s: %w", path, err)
	}
	return population, nil
}
