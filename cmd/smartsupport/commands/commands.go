// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete smartsupport command tree.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/smartsupport/smartsupport/cmd/smartsupport/account"
	"github.com/smartsupport/smartsupport/cmd/smartsupport/chat"
	"github.com/smartsupport/smartsupport/cmd/smartsupport/cli"
	"github.com/smartsupport/smartsupport/cmd/smartsupport/ticket"
	tuicmd "github.com/smartsupport/smartsupport/cmd/smartsupport/tui"
	"github.com/smartsupport/smartsupport/lib/version"
)

// Root builds and returns the smartsupport command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "smartsupport",
		Description: `SmartSupport: a terminal client for the SmartSupport help desk.

Customers file tickets and ask the support assistant; agents work
their queue; admins assign and delete. Sign in once with
"smartsupport login" and every later command reuses the session.`,
		Subcommands: []*cli.Command{
			account.LoginCommand(),
			account.LogoutCommand(),
			account.WhoAmICommand(),
			account.HealthCommand(),
			ticket.Command(),
			chat.Command(),
			tuicmd.Command(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(ctx context.Context, args []string, _ *slog.Logger) error {
					if len(args) > 0 {
						return cli.Validation("unexpected argument: %s", args[0])
					}
					fmt.Fprintf(cli.IOFrom(ctx).Out, "smartsupport %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Sign in with a demo account",
				Command:     "smartsupport login --demo agent",
			},
			{
				Description: "List your open tickets",
				Command:     "smartsupport ticket list --status open",
			},
			{
				Description: "Open the full-screen client",
				Command:     "smartsupport tui",
			},
		},
	}
}
