// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package tui implements "smartsupport tui", the full-screen client.
package tui

import (
	"context"
	"errors"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/smartsupport/smartsupport/cmd/smartsupport/cli"
	"github.com/smartsupport/smartsupport/lib/ticketui"
)

type tuiParams struct {
	cli.ConnectionParams
	Ephemeral bool `json:"-" flag:"ephemeral" desc:"keep the session in memory only; the session file is neither read nor written"`
}

// Command returns the "tui" command.
func Command() *cli.Command {
	var params tuiParams

	return &cli.Command{
		Name:    "tui",
		Summary: "Open the full-screen client",
		Description: `Open the interactive terminal client.

A saved session resumes on its role's dashboard; otherwise the login
view opens, with one-key demo logins for each role. Customers get
their ticket list and the assistant chat, agents their queue with
internal notes, and admins every ticket with assignment and deletion.

Failures are shown in the status bar while the client is running.
With --ephemeral the session lives only as long as the process.`,
		Usage:  "smartsupport tui [flags]",
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			connect := params.Connect
			if params.Ephemeral {
				connect = params.ConnectEphemeral
			}
			connection, err := connect(logger)
			if err != nil {
				return err
			}

			searchDelay, _ := connection.Config.SearchDelay()
			requestTimeout, _ := connection.Config.RequestTimeout()

			// Command logging would corrupt the alternate screen, so
			// controller failures go to the status bar instead.
			handler := ticketui.NewTUILogHandler(slog.LevelWarn)
			model := ticketui.NewModel(ticketui.Config{
				Backend:        connection.Client,
				Store:          connection.Store,
				Logger:         slog.New(handler),
				SearchDelay:    searchDelay,
				RequestTimeout: requestTimeout,
				RenderMarkdown: connection.Config.MarkdownEnabled(),
			})

			program := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen())
			model.SetProgram(program)
			handler.SetProgram(program)

			if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return cli.Internal("running terminal client: %w", err)
			}
			return nil
		},
	}
}
