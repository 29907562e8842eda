// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ticket

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/smartsupport/smartsupport/cmd/smartsupport/cli"
	"github.com/smartsupport/smartsupport/lib/schema"
)

// --- list ---

type listParams struct {
	cli.ConnectionParams
	cli.JSONOutput
	Status   string `json:"status"   flag:"status,s"   desc:"filter by status (open, in_progress, resolved, closed)"`
	Priority string `json:"priority" flag:"priority,p" desc:"filter by priority (low, medium, high, urgent)"`
	Search   string `json:"search"   flag:"search"     desc:"search subjects, descriptions, and ticket numbers"`
}

// filter validates the filter flags.
func (params *listParams) filter() (schema.Filter, error) {
	filter := schema.Filter{Search: params.Search}
	if params.Status != "" {
		status, err := schema.ParseStatus(params.Status)
		if err != nil {
			return filter, cli.Validation("--status: %w", err)
		}
		filter.Status = status
	}
	if params.Priority != "" {
		priority, err := schema.ParsePriority(params.Priority)
		if err != nil {
			return filter, cli.Validation("--priority: %w", err)
		}
		filter.Priority = priority
	}
	return filter, nil
}

func listCommand() *cli.Command {
	var params listParams

	return &cli.Command{
		Name:    "list",
		Summary: "List tickets visible to the signed-in user",
		Description: `List tickets with optional filters. Customers see their own tickets;
agents and admins see the queue the backend gives them. Filters are
combined: only tickets matching every given filter are returned.`,
		Usage: "smartsupport ticket list [flags]",
		Examples: []cli.Example{
			{
				Description: "Open urgent tickets",
				Command:     "smartsupport ticket list --status open --priority urgent",
			},
			{
				Description: "Search for refunds",
				Command:     "smartsupport ticket list --search refund",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			filter, err := params.filter()
			if err != nil {
				return err
			}
			connection, err := connect(&params.ConnectionParams, logger)
			if err != nil {
				return err
			}

			ctx, cancel := cli.WithTimeout(ctx)
			defer cancel()

			tickets, err := connection.Client.ListTickets(ctx, filter)
			if err != nil {
				return cli.Categorize(err, "listing tickets")
			}
			for i := range tickets {
				tickets[i].Messages = schema.VisibleMessages(connection.Role(), tickets[i].Messages)
			}

			out := cli.IOFrom(ctx).Out
			if done, err := params.EmitJSON(out, tickets); done {
				return err
			}
			if len(tickets) == 0 {
				if filter.IsEmpty() {
					fmt.Fprintln(out, "No tickets yet")
				} else {
					fmt.Fprintln(out, "No tickets match the current filters")
				}
				return nil
			}
			return writeTicketTable(out, tickets, connection.Role(), time.Now())
		},
	}
}

// --- stats ---

type statsParams struct {
	cli.ConnectionParams
	cli.JSONOutput
}

func statsCommand() *cli.Command {
	var params statsParams

	return &cli.Command{
		Name:    "stats",
		Summary: "Show dashboard counters",
		Description: `Print the counters shown at the top of the dashboard. Agents and
admins get them from the backend's stats endpoint; for customers
they are counted from the customer's own tickets.`,
		Usage:  "smartsupport ticket stats [flags]",
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			connection, err := connect(&params.ConnectionParams, logger)
			if err != nil {
				return err
			}

			ctx, cancel := cli.WithTimeout(ctx)
			defer cancel()

			dashboard := connection.dashboard()
			defer dashboard.Close()
			if err := dashboard.Load(ctx); err != nil {
				return cli.Categorize(err, "loading stats")
			}
			stats := dashboard.Snapshot().Stats

			out := cli.IOFrom(ctx).Out
			if done, err := params.EmitJSON(out, stats); done {
				return err
			}
			return writeStats(out, stats, connection.Role())
		},
	}
}

// --- show ---

type showParams struct {
	cli.ConnectionParams
	cli.JSONOutput
}

func showCommand() *cli.Command {
	var params showParams

	return &cli.Command{
		Name:    "show",
		Summary: "Show a ticket and its conversation",
		Description: `Display a ticket's fields, description, and message thread.

Agents and admins see internal notes, marked "(internal note)".
Customers never do.`,
		Usage: "smartsupport ticket show <id> [flags]",
		Examples: []cli.Example{
			{
				Description: "Show ticket 42",
				Command:     "smartsupport ticket show 42",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			id, rest, err := parseID(args, "smartsupport ticket show <id>")
			if err != nil {
				return err
			}
			if len(rest) > 0 {
				return cli.Validation("unexpected argument: %s", rest[0])
			}
			connection, err := connect(&params.ConnectionParams, logger)
			if err != nil {
				return err
			}

			ctx, cancel := cli.WithTimeout(ctx)
			defer cancel()

			detail := connection.detail(id)
			if err := detail.Load(ctx); err != nil {
				return cli.Categorize(err, fmt.Sprintf("loading ticket %s", id))
			}
			ticket := *detail.Snapshot().Ticket

			out := cli.IOFrom(ctx).Out
			if done, err := params.EmitJSON(out, ticket); done {
				return err
			}
			return writeTicket(out, ticket, time.Now())
		},
	}
}

// --- agents ---

type agentsParams struct {
	cli.ConnectionParams
	cli.JSONOutput
}

func agentsCommand() *cli.Command {
	var params agentsParams

	return &cli.Command{
		Name:        "agents",
		Summary:     "List agents tickets can be assigned to (admin)",
		Description: `List the agents an admin can assign tickets to.`,
		Usage:       "smartsupport ticket agents [flags]",
		Params:      func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			connection, err := connect(&params.ConnectionParams, logger, schema.RoleAdmin)
			if err != nil {
				return err
			}

			ctx, cancel := cli.WithTimeout(ctx)
			defer cancel()

			agents, err := connection.Client.Agents(ctx)
			if err != nil {
				return cli.Categorize(err, "listing agents")
			}

			out := cli.IOFrom(ctx).Out
			if done, err := params.EmitJSON(out, agents); done {
				return err
			}
			return writeAgents(out, agents)
		},
	}
}
