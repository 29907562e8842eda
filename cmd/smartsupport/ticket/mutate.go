// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ticket

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/smartsupport/smartsupport/cmd/smartsupport/cli"
	"github.com/smartsupport/smartsupport/lib/schema"
	"github.com/smartsupport/smartsupport/lib/ticketdetail"
	"github.com/smartsupport/smartsupport/lib/tui"
)

// --- create ---

type createParams struct {
	cli.ConnectionParams
	cli.JSONOutput
	Subject     string `json:"subject"     flag:"subject"     desc:"one-line summary (required)"`
	Description string `json:"description" flag:"description" desc:"full description of the problem (required)"`
	Priority    string `json:"priority"    flag:"priority,p"  desc:"low, medium, high, or urgent" default:"medium"`
}

func createCommand() *cli.Command {
	var params createParams

	return &cli.Command{
		Name:    "create",
		Summary: "File a new ticket (customer)",
		Description: `File a support ticket as the signed-in customer. Subject and
description are required; priority defaults to medium.`,
		Usage: "smartsupport ticket create --subject TEXT --description TEXT [flags]",
		Examples: []cli.Example{
			{
				Description: "Report a billing problem",
				Command:     `smartsupport ticket create --subject "Charged twice" --description "My card was charged twice for March." --priority high`,
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			ticket := schema.NewTicket{
				Subject:     params.Subject,
				Description: params.Description,
				Priority:    schema.Priority(params.Priority),
			}
			if err := ticket.Validate(); err != nil {
				return cli.Validation("%w", err)
			}
			connection, err := connect(&params.ConnectionParams, logger, schema.RoleCustomer)
			if err != nil {
				return err
			}

			ctx, cancel := cli.WithTimeout(ctx)
			defer cancel()

			created, err := connection.Client.CreateTicket(ctx, ticket)
			if err != nil {
				return cli.Categorize(err, "creating ticket")
			}
			logger.Info("ticket created", "ticket", created.ID)

			out := cli.IOFrom(ctx).Out
			if done, err := params.EmitJSON(out, created); done {
				return err
			}
			fmt.Fprintf(out, "Created %s (id %s)\n", created.TicketNumber, created.ID)
			return nil
		},
	}
}

// --- reply ---

type replyParams struct {
	cli.ConnectionParams
	cli.JSONOutput
	Internal bool `json:"internal" flag:"internal" desc:"post an internal note hidden from the customer (agent, admin)"`
}

func replyCommand() *cli.Command {
	var params replyParams

	return &cli.Command{
		Name:    "reply",
		Summary: "Add a message to a ticket's conversation",
		Description: `Post a reply to a ticket. The remaining arguments are joined into the
message; "-" reads the message from standard input.

Agents and admins can post an internal note with --internal. Internal
notes are never shown to the customer.`,
		Usage: "smartsupport ticket reply <id> <message> [flags]",
		Examples: []cli.Example{
			{
				Description: "Answer the customer",
				Command:     `smartsupport ticket reply 42 "We have refunded the duplicate charge."`,
			},
			{
				Description: "Leave a note for other agents",
				Command:     `smartsupport ticket reply 42 --internal "Escalated to billing."`,
			},
			{
				Description: "Reply with the contents of a file",
				Command:     "smartsupport ticket reply 42 - < answer.txt",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			id, rest, err := parseID(args, "smartsupport ticket reply <id> <message>")
			if err != nil {
				return err
			}
			message, err := replyText(ctx, rest)
			if err != nil {
				return err
			}
			connection, err := connect(&params.ConnectionParams, logger)
			if err != nil {
				return err
			}

			ctx, cancel := cli.WithTimeout(ctx)
			defer cancel()

			detail := connection.detail(id)
			err = detail.Reply(ctx, message, params.Internal)
			return report(ctx, logger, detail, err, fmt.Sprintf("replying to ticket %s", id), &params.JSONOutput)
		},
	}
}

// replyText joins the message arguments, or reads standard input for
// a lone "-".
func replyText(ctx context.Context, args []string) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(cli.IOFrom(ctx).In)
		if err != nil {
			return "", cli.Internal("reading message from stdin: %w", err)
		}
		return strings.TrimRight(string(data), "\n"), nil
	}
	message := strings.Join(args, " ")
	if strings.TrimSpace(message) == "" {
		return "", cli.Validation("message is required")
	}
	return message, nil
}

// --- status ---

type updateParams struct {
	cli.ConnectionParams
	cli.JSONOutput
}

func statusCommand() *cli.Command {
	var params updateParams

	return &cli.Command{
		Name:    "status",
		Summary: "Change a ticket's status (agent, admin)",
		Usage:   "smartsupport ticket status <id> <open|in_progress|resolved|closed> [flags]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			usage := "smartsupport ticket status <id> <status>"
			id, rest, err := parseID(args, usage)
			if err != nil {
				return err
			}
			if len(rest) != 1 {
				return cli.Validation("exactly one status is required\n\nUsage: %s", usage)
			}
			status, err := schema.ParseStatus(rest[0])
			if err != nil {
				return cli.Validation("%w", err)
			}
			connection, err := connect(&params.ConnectionParams, logger, schema.RoleAgent, schema.RoleAdmin)
			if err != nil {
				return err
			}

			ctx, cancel := cli.WithTimeout(ctx)
			defer cancel()

			detail := connection.detail(id)
			err = detail.UpdateStatus(ctx, status)
			return report(ctx, logger, detail, err, fmt.Sprintf("updating status of ticket %s", id), &params.JSONOutput)
		},
	}
}

// --- priority ---

func priorityCommand() *cli.Command {
	var params updateParams

	return &cli.Command{
		Name:    "priority",
		Summary: "Change a ticket's priority (agent, admin)",
		Usage:   "smartsupport ticket priority <id> <low|medium|high|urgent> [flags]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			usage := "smartsupport ticket priority <id> <priority>"
			id, rest, err := parseID(args, usage)
			if err != nil {
				return err
			}
			if len(rest) != 1 {
				return cli.Validation("exactly one priority is required\n\nUsage: %s", usage)
			}
			priority, err := schema.ParsePriority(rest[0])
			if err != nil {
				return cli.Validation("%w", err)
			}
			connection, err := connect(&params.ConnectionParams, logger, schema.RoleAgent, schema.RoleAdmin)
			if err != nil {
				return err
			}

			ctx, cancel := cli.WithTimeout(ctx)
			defer cancel()

			detail := connection.detail(id)
			err = detail.UpdatePriority(ctx, priority)
			return report(ctx, logger, detail, err, fmt.Sprintf("updating priority of ticket %s", id), &params.JSONOutput)
		},
	}
}

// --- assign ---

func assignCommand() *cli.Command {
	var params updateParams

	return &cli.Command{
		Name:    "assign",
		Summary: "Assign a ticket to an agent (admin)",
		Description: `Assign a ticket to an agent, or unassign it with "none".

The agent is given by ID or by name. Names are fuzzy matched against
the assignable agents ("sam" finds "Sam Support"); an ambiguous name
is refused with the candidates listed.`,
		Usage: "smartsupport ticket assign <id> <agent|none> [flags]",
		Examples: []cli.Example{
			{
				Description: "Assign by name",
				Command:     "smartsupport ticket assign 42 sam",
			},
			{
				Description: "Return the ticket to the unassigned queue",
				Command:     "smartsupport ticket assign 42 none",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			usage := "smartsupport ticket assign <id> <agent|none>"
			id, rest, err := parseID(args, usage)
			if err != nil {
				return err
			}
			query := strings.TrimSpace(strings.Join(rest, " "))
			if query == "" {
				return cli.Validation("an agent (or \"none\") is required\n\nUsage: %s", usage)
			}
			connection, err := connect(&params.ConnectionParams, logger, schema.RoleAdmin)
			if err != nil {
				return err
			}

			ctx, cancel := cli.WithTimeout(ctx)
			defer cancel()

			detail := connection.detail(id)
			var agentID *schema.ID
			if !strings.EqualFold(query, "none") {
				if err := detail.LoadAgents(ctx); err != nil {
					return categorize(err, "listing agents")
				}
				agent, err := resolveAgent(detail.Snapshot().Agents, query)
				if err != nil {
					return err
				}
				logger.Debug("resolved agent", "query", query, "agent", agent.ID)
				agentID = &agent.ID
			}

			err = detail.Assign(ctx, agentID)
			return report(ctx, logger, detail, err, fmt.Sprintf("assigning ticket %s", id), &params.JSONOutput)
		},
	}
}

// resolveAgent finds the agent query names: an exact ID, otherwise the
// single best fuzzy match on name and email.
func resolveAgent(agents []schema.Agent, query string) (schema.Agent, error) {
	if id, err := schema.ParseID(query); err == nil {
		for _, agent := range agents {
			if agent.ID == id {
				return agent, nil
			}
		}
		return schema.Agent{}, cli.NotFound("no assignable agent with id %s", id)
	}

	ranked := tui.Rank(agents, func(agent schema.Agent) string {
		return agent.Name + " " + agent.Email
	}, query)
	if len(ranked) == 0 {
		return schema.Agent{}, cli.NotFound("no assignable agent matches %q", query)
	}
	if len(ranked) > 1 && ranked[1].Match.Score == ranked[0].Match.Score {
		var names []string
		for _, candidate := range ranked {
			if candidate.Match.Score != ranked[0].Match.Score {
				break
			}
			names = append(names, fmt.Sprintf("%s (id %s)", tui.SafeText(candidate.Item.Name), candidate.Item.ID))
		}
		return schema.Agent{}, cli.Validation("%q matches several agents: %s", query, strings.Join(names, ", "))
	}
	return ranked[0].Item, nil
}

// --- delete ---

type deleteParams struct {
	cli.ConnectionParams
	Yes bool `json:"-" flag:"yes,y" desc:"delete without asking for confirmation"`
}

func deleteCommand() *cli.Command {
	var params deleteParams

	return &cli.Command{
		Name:    "delete",
		Summary: "Delete a ticket (admin)",
		Description: `Permanently delete a ticket and its conversation. You are asked to
confirm unless --yes is given. Declining leaves the ticket untouched.`,
		Usage:  "smartsupport ticket delete <id> [flags]",
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			id, rest, err := parseID(args, "smartsupport ticket delete <id>")
			if err != nil {
				return err
			}
			if len(rest) > 0 {
				return cli.Validation("unexpected argument: %s", rest[0])
			}
			connection, err := connect(&params.ConnectionParams, logger, schema.RoleAdmin)
			if err != nil {
				return err
			}

			ctx, cancel := cli.WithTimeout(ctx)
			defer cancel()

			streams := cli.IOFrom(ctx)
			var confirmer ticketdetail.Confirmer = streams.Prompter()
			if params.Yes {
				confirmer = ticketdetail.ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })
			}

			err = connection.detail(id).Delete(ctx, confirmer)
			if errors.Is(err, ticketdetail.ErrCancelled) {
				fmt.Fprintln(streams.Out, "Deletion cancelled")
				return nil
			}
			if err != nil {
				return categorize(err, fmt.Sprintf("deleting ticket %s", id))
			}
			logger.Info("ticket deleted", "ticket", id)
			fmt.Fprintf(streams.Out, "Deleted ticket %s\n", id)
			return nil
		},
	}
}

// report finishes a mutation: it prints the controller's notice (or
// the reloaded ticket with --json) and maps failures to CLI errors. A
// mutation that succeeded but whose reload failed is still reported
// as a success.
func report(ctx context.Context, logger *slog.Logger, detail *ticketdetail.Controller, err error, action string, output *cli.JSONOutput) error {
	snapshot := detail.Snapshot()
	if err != nil {
		if snapshot.Notice.Kind != ticketdetail.NoticeSuccess {
			return categorize(err, action)
		}
		logger.Warn("change applied but the ticket could not be reloaded", "error", err)
	}

	out := cli.IOFrom(ctx).Out
	if snapshot.Ticket != nil {
		if done, err := output.EmitJSON(out, *snapshot.Ticket); done {
			return err
		}
	}
	fmt.Fprintln(out, snapshot.Notice.Text)
	return nil
}
