// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/smartsupport/smartsupport/cmd/smartsupport/cli"
	"github.com/smartsupport/smartsupport/lib/auth"
	"github.com/smartsupport/smartsupport/lib/schema"
)

type logoutParams struct {
	cli.ConnectionParams
}

// LogoutCommand returns the "logout" command.
func LogoutCommand() *cli.Command {
	var params logoutParams

	return &cli.Command{
		Name:    "logout",
		Summary: "Forget the saved session",
		Description: `Remove the saved token and profile. The backend is not contacted.
Logging out when nobody is signed in is not an error.`,
		Usage:  "smartsupport logout [flags]",
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			connection, err := params.Connect(logger)
			if err != nil {
				return err
			}
			if err := auth.Logout(connection.Store); err != nil {
				return cli.Internal("%w", err)
			}
			fmt.Fprintln(cli.IOFrom(ctx).Out, "Logged out")
			return nil
		},
	}
}

type whoamiParams struct {
	cli.ConnectionParams
	cli.JSONOutput
}

type whoamiOutput struct {
	User        schema.User  `json:"user"`
	Home        schema.Route `json:"home"`
	SessionFile string       `json:"session_file"`
}

// WhoAmICommand returns the "whoami" command. It reads only the local
// session file.
func WhoAmICommand() *cli.Command {
	var params whoamiParams

	return &cli.Command{
		Name:    "whoami",
		Summary: "Show the signed-in user",
		Description: `Display the user saved by "smartsupport login": name, email, role,
and the dashboard the full-screen client opens on. Only the local
session file is read.`,
		Usage: "smartsupport whoami [flags]",
		Examples: []cli.Example{
			{
				Description: "Print the signed-in role for a script",
				Command:     "smartsupport whoami --json | jq -r .user.role",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			connection, err := params.Connect(logger)
			if err != nil {
				return err
			}
			current, err := connection.Require()
			if err != nil {
				return err
			}

			output := whoamiOutput{
				User:        *current.User,
				Home:        current.Role().LandingRoute(),
				SessionFile: connection.SessionPath,
			}
			out := cli.IOFrom(ctx).Out
			if done, err := params.EmitJSON(out, output); done {
				return err
			}
			fmt.Fprintf(out, "Name:         %s\n", output.User.Name)
			fmt.Fprintf(out, "Email:        %s\n", output.User.Email)
			fmt.Fprintf(out, "Role:         %s\n", output.User.Role)
			fmt.Fprintf(out, "Home:         %s\n", output.Home)
			fmt.Fprintf(out, "Session file: %s\n", output.SessionFile)
			return nil
		},
	}
}

type healthParams struct {
	cli.ConnectionParams
	cli.JSONOutput
}

type healthOutput struct {
	API        string          `json:"api"`
	Connection auth.Connection `json:"connection"`
}

// HealthCommand returns the "health" command. It exits 1 when the
// backend is unreachable.
func HealthCommand() *cli.Command {
	var params healthParams

	return &cli.Command{
		Name:    "health",
		Summary: "Check whether the backend is reachable",
		Description: `Probe the backend's health endpoint and print "Connected" or
"Disconnected". No session is needed. The exit status is 1 when the
backend cannot be reached.`,
		Usage:  "smartsupport health [flags]",
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			connection, err := params.Connect(logger)
			if err != nil {
				return err
			}

			ctx, cancel := cli.WithTimeout(ctx)
			defer cancel()

			output := healthOutput{
				API:        connection.Client.BaseURL(),
				Connection: auth.Probe(ctx, connection.Client),
			}
			out := cli.IOFrom(ctx).Out
			if done, err := params.EmitJSON(out, output); done {
				if err != nil {
					return err
				}
			} else {
				fmt.Fprintf(out, "%s: %s\n", output.API, output.Connection)
			}
			if output.Connection != auth.Connected {
				return &cli.ExitError{Code: 1}
			}
			return nil
		},
	}
}
