// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/smartsupport/smartsupport/cmd/smartsupport/cli"
	"github.com/smartsupport/smartsupport/lib/auth"
	"github.com/smartsupport/smartsupport/lib/schema"
)

type loginParams struct {
	cli.ConnectionParams
	cli.JSONOutput
	PasswordFile string `json:"-" flag:"password-file" desc:"read the password from this file instead of prompting (\"-\" prompts)"`
	Demo         string `json:"-" flag:"demo"          desc:"sign in with a demo account: customer, agent, or admin"`
}

type loginOutput struct {
	User        schema.User  `json:"user"`
	Route       schema.Route `json:"route"`
	SessionFile string       `json:"session_file"`
}

// LoginCommand returns the "login" command.
func LoginCommand() *cli.Command {
	var params loginParams

	return &cli.Command{
		Name:    "login",
		Summary: "Sign in and save the session",
		Description: `Authenticate with the SmartSupport backend and save the returned
token and profile to the session file. Later commands and the
full-screen client reuse the saved session until "smartsupport logout".

The password is read from --password-file, or prompted for on the
terminal with echo disabled. --demo signs in with one of the seeded
demo accounts and needs neither an email nor a password.`,
		Usage: "smartsupport login [email] [flags]",
		Examples: []cli.Example{
			{
				Description: "Sign in interactively",
				Command:     "smartsupport login agent@example.com",
			},
			{
				Description: "Sign in from a script",
				Command:     "smartsupport login admin@example.com --password-file ~/.config/smartsupport/password",
			},
			{
				Description: "Try the client as a customer",
				Command:     "smartsupport login --demo customer",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			credentials, err := params.credentials(args)
			if err != nil {
				return err
			}

			connection, err := params.Connect(logger)
			if err != nil {
				return err
			}

			ctx, cancel := cli.WithTimeout(ctx)
			defer cancel()

			user, route, err := auth.Login(ctx, connection.Client, connection.Store, credentials)
			if errors.Is(err, auth.ErrMissingCredentials) {
				return cli.Validation("%s", auth.FailureMessage(err))
			}
			if err != nil {
				return cli.Categorize(err, "login")
			}
			logger.Info("logged in", "user", user.ID, "role", user.Role)

			out := cli.IOFrom(ctx).Out
			output := loginOutput{User: user, Route: route, SessionFile: connection.SessionPath}
			if done, err := params.EmitJSON(out, output); done {
				return err
			}
			fmt.Fprintf(out, "Logged in as %s (%s)\n", user.Name, user.Role)
			fmt.Fprintf(out, "Session saved to %s\n", connection.SessionPath)
			return nil
		},
	}
}

// credentials resolves the email and password from --demo, the
// positional email, and the password source.
func (params *loginParams) credentials(args []string) (schema.Credentials, error) {
	if params.Demo != "" {
		if len(args) > 0 {
			return schema.Credentials{}, cli.Validation("--demo does not take an email argument")
		}
		role, err := schema.ParseRole(params.Demo)
		if err != nil {
			return schema.Credentials{}, cli.Validation("--demo: %w", err)
		}
		credentials, _ := auth.Demo(role)
		return credentials, nil
	}

	switch len(args) {
	case 0:
		return schema.Credentials{}, cli.Validation("email is required (or use --demo)")
	case 1:
	default:
		return schema.Credentials{}, cli.Validation("unexpected argument: %s", args[1])
	}

	password, err := cli.ReadPassword(params.PasswordFile)
	if err != nil {
		return schema.Credentials{}, err
	}
	return schema.Credentials{Email: args[0], Password: password}, nil
}
