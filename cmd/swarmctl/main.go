// Copyright 2026 The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

// swarmctl is the operator CLI for a running swarmd daemon. It talks
// CBOR over the daemon's Unix ops socket, so it works on the daemon
// host (or anywhere the socket is forwarded) without touching the fact
// store or the HTTP gateway.
//
// All commands are read-only except halt and resume, which record an
// operator status change; the scheduler honors it on its next cycle.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/pmaojo/agent-swarm-dev/lib/process"
	"github.com/pmaojo/agent-swarm-dev/lib/service"
	"github.com/pmaojo/agent-swarm-dev/lib/version"
)

// callTimeout bounds one socket round trip, including the daemon's
// fact store queries behind it.
const callTimeout = 30 * time.Second

// defaultSocketPath matches the daemon's built-in socket config.
const defaultSocketPath = "/run/swarmd/swarmd.sock"

// Response mirrors. The server-side types live in the swarmd binary;
// the wire format is the contract.

type statusInfo struct {
	OperationalStatus    string `cbor:"operational_status" json:"operational_status"`
	OpenTasks            int    `cbor:"open_tasks" json:"open_tasks"`
	ProcessingTasks      int    `cbor:"processing_tasks" json:"processing_tasks"`
	QueueDepth           int    `cbor:"notification_queue_depth" json:"notification_queue_depth"`
	DroppedNotifications uint64 `cbor:"dropped_notifications" json:"dropped_notifications"`
	Repositories         int    `cbor:"repositories" json:"repositories"`
	Agents               int    `cbor:"agents" json:"agents"`
	UptimeSeconds        int64  `cbor:"uptime_seconds" json:"uptime_seconds"`
}

type taskInfo struct {
	ID    string `cbor:"id" json:"id"`
	Title string `cbor:"title" json:"title"`
	State string `cbor:"state" json:"state"`
}

type taskList struct {
	Tasks []taskInfo `cbor:"tasks" json:"tasks"`
}

type agentInfo struct {
	ID         string `cbor:"id" json:"id"`
	Name       string `cbor:"name" json:"name"`
	Class      string `cbor:"class" json:"class"`
	Status     string `cbor:"status" json:"status"`
	Repository string `cbor:"repository" json:"repository"`
}

type agentList struct {
	Agents []agentInfo `cbor:"agents" json:"agents"`
}

type statusChange struct {
	Status string `cbor:"status" json:"status"`
}

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	var socketPath string
	var outputJSON bool

	flagSet := pflag.NewFlagSet("swarmctl", pflag.ContinueOnError)
	flagSet.StringVar(&socketPath, "socket", defaultSocketPath, "path to the swarmd ops socket")
	flagSet.BoolVar(&outputJSON, "json", false, "output as JSON instead of text")
	flagSet.BoolP("help", "h", false, "show help")

	// Handle --version before flag parsing to match the daemon.
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("swarmctl")
		return nil
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	args := flagSet.Args()
	if len(args) == 0 {
		return fmt.Errorf("missing command (try --help)")
	}
	if len(args) > 1 {
		return fmt.Errorf("unexpected argument: %s", args[1])
	}

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	client := service.NewClient(socketPath)

	switch command := args[0]; command {
	case "ping":
		return runPing(ctx, client, os.Stdout, outputJSON)
	case "status":
		return runStatus(ctx, client, os.Stdout, outputJSON)
	case "tasks":
		return runTasks(ctx, client, os.Stdout, outputJSON)
	case "agents":
		return runAgents(ctx, client, os.Stdout, outputJSON)
	case "halt", "resume":
		return runStatusChange(ctx, client, os.Stdout, command, outputJSON)
	default:
		return fmt.Errorf("unknown command %q (try --help)", command)
	}
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `swarmctl — operator CLI for a running swarmd daemon.

Talks to the daemon over its Unix ops socket. All commands are
read-only except halt and resume, which record an operator status
change in the fact store; the scheduler stops or resumes assigning on
its next cycle.

Usage:
  swarmctl [flags] <command>

Commands:
  ping      check the daemon is alive
  status    system summary: status, task counts, queue depth, uptime
  tasks     list every known task and its workflow state
  agents    list the agent population and what each is doing
  halt      stop the scheduler from making new assignments
  resume    lift a halt

Examples:
  # Summarize a production daemon
  swarmctl status

  # Machine-readable task list from a non-default socket
  swarmctl --socket /tmp/swarmd-dev.sock --json tasks

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}

func runPing(ctx context.Context, client *service.Client, stdout io.Writer, outputJSON bool) error {
	var result struct {
		Pong bool `cbor:"pong" json:"pong"`
	}
	if err := client.Call(ctx, "ping", nil, &result); err != nil {
		return err
	}
	if outputJSON {
		return printJSON(stdout, result)
	}
	fmt.Fprintln(stdout, "pong")
	return nil
}

func runStatus(ctx context.Context, client *service.Client, stdout io.Writer, outputJSON bool) error {
	var status statusInfo
	if err := client.Call(ctx, "status", nil, &status); err != nil {
		return err
	}
	if outputJSON {
		return printJSON(stdout, status)
	}

	writer := tabwriter.NewWriter(stdout, 2, 0, 3, ' ', 0)
	fmt.Fprintf(writer, "Status:\t%s\n", status.OperationalStatus)
	fmt.Fprintf(writer, "Open tasks:\t%d\n", status.OpenTasks)
	fmt.Fprintf(writer, "Processing:\t%d\n", status.ProcessingTasks)
	fmt.Fprintf(writer, "Queue depth:\t%d\n", status.QueueDepth)
	fmt.Fprintf(writer, "Dropped:\t%d\n", status.DroppedNotifications)
	fmt.Fprintf(writer, "Repositories:\t%d\n", status.Repositories)
	fmt.Fprintf(writer, "Agents:\t%d\n", status.Agents)
	fmt.Fprintf(writer, "Uptime:\t%s\n", time.Duration(status.UptimeSeconds)*time.Second)
	return writer.Flush()
}

func runTasks(ctx context.Context, client *service.Client, stdout io.Writer, outputJSON bool) error {
	var result taskList
	if err := client.Call(ctx, "tasks", nil, &result); err != nil {
		return err
	}
	if outputJSON {
		// Ensure empty array in JSON output, not null.
		if result.Tasks == nil {
			result.Tasks = []taskInfo{}
		}
		return printJSON(stdout, result.Tasks)
	}

	if len(result.Tasks) == 0 {
		fmt.Fprintln(os.Stderr, "no tasks recorded")
		return nil
	}

	writer := tabwriter.NewWriter(stdout, 2, 0, 3, ' ', 0)
	fmt.Fprintf(writer, "ID\tSTATE\tTITLE\n")
	for _, task := range result.Tasks {
		fmt.Fprintf(writer, "%s\t%s\t%s\n", task.ID, task.State, task.Title)
	}
	return writer.Flush()
}

func runAgents(ctx context.Context, client *service.Client, stdout io.Writer, outputJSON bool) error {
	var result agentList
	if err := client.Call(ctx, "agents", nil, &result); err != nil {
		return err
	}
	if outputJSON {
		if result.Agents == nil {
			result.Agents = []agentInfo{}
		}
		return printJSON(stdout, result.Agents)
	}

	if len(result.Agents) == 0 {
		fmt.Fprintln(os.Stderr, "no agents recorded")
		return nil
	}

	writer := tabwriter.NewWriter(stdout, 2, 0, 3, ' ', 0)
	fmt.Fprintf(writer, "ID\tNAME\tCLASS\tREPOSITORY\tSTATUS\n")
	for _, agent := range result.Agents {
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\n",
			agent.ID, agent.Name, agent.Class, agent.Repository, agent.Status)
	}
	return writer.Flush()
}

func runStatusChange(ctx context.Context, client *service.Client, stdout io.Writer, action string, outputJSON bool) error {
	var result statusChange
	if err := client.Call(ctx, action, nil, &result); err != nil {
		return err
	}
	if outputJSON {
		return printJSON(stdout, result)
	}
	fmt.Fprintf(stdout, "operational status: %s\n", result.Status)
	return nil
}

func printJSON(stdout io.Writer, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	fmt.Fprintln(stdout, string(data))
	return nil
}
