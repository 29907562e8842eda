// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ticket

import "github.com/smartsupport/smartsupport/cmd/smartsupport/cli"

// Command returns the "ticket" subcommand group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "ticket",
		Summary: "Ticket commands",
		Description: `View and manage support tickets as the signed-in user.

Customers list, file, and reply to their own tickets. Agents also see
internal notes and change status and priority. Admins additionally
assign agents and delete tickets.`,
		Subcommands: []*cli.Command{
			listCommand(),
			statsCommand(),
			showCommand(),
			createCommand(),
			replyCommand(),
			statusCommand(),
			priorityCommand(),
			assignCommand(),
			deleteCommand(),
			agentsCommand(),
		},
	}
}
