// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ticket

import (
	"errors"
	"log/slog"

	"github.com/smartsupport/smartsupport/cmd/smartsupport/cli"
	"github.com/smartsupport/smartsupport/lib/schema"
	"github.com/smartsupport/smartsupport/lib/session"
	"github.com/smartsupport/smartsupport/lib/ticketdetail"
	"github.com/smartsupport/smartsupport/lib/ticketlist"
)

// signedIn is the connection plus the signed-in session it was checked
// against.
type signedIn struct {
	*cli.Connection
	Session session.Session
}

// Role returns the signed-in role.
func (s signedIn) Role() schema.Role { return s.Session.Role() }

// connect opens the backend connection and checks that the saved
// session holds one of roles (any role when none are given).
func connect(params *cli.ConnectionParams, logger *slog.Logger, roles ...schema.Role) (signedIn, error) {
	connection, err := params.Connect(logger)
	if err != nil {
		return signedIn{}, err
	}
	current, err := connection.Require(roles...)
	if err != nil {
		return signedIn{}, err
	}
	connection.Logger = connection.Logger.With("role", current.Role())
	return signedIn{Connection: connection, Session: current}, nil
}

// detail returns a controller for one ticket viewed by the session.
func (s signedIn) detail(id schema.ID) *ticketdetail.Controller {
	return ticketdetail.New(ticketdetail.Config{
		Source:   s.Client,
		TicketID: id,
		Viewer:   s.Role(),
		Logger:   s.Logger,
	})
}

// dashboard returns a list controller whose counters come from where
// the session's dashboard gets them.
func (s signedIn) dashboard() *ticketlist.Controller {
	return ticketlist.New(ticketlist.Config{
		Source:    s.Client,
		Logger:    s.Logger,
		StatsMode: ticketlist.StatsModeFor(s.Role()),
	})
}

// parseID parses the ticket ID argument.
func parseID(args []string, usage string) (schema.ID, []string, error) {
	if len(args) == 0 {
		return 0, nil, cli.Validation("ticket ID is required\n\nUsage: %s", usage)
	}
	id, err := schema.ParseID(args[0])
	if err != nil {
		return 0, nil, cli.Validation("%w", err)
	}
	return id, args[1:], nil
}

// categorize maps controller refusals and backend failures to CLI
// error categories.
func categorize(err error, action string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ticketdetail.ErrEmptyReply):
		return cli.Validation("%s: %w", action, err)
	case errors.Is(err, ticketdetail.ErrInternalNotAllowed), errors.Is(err, ticketdetail.ErrNotPermitted):
		return cli.Forbidden("%s: %w", action, err)
	}
	return cli.Categorize(err, action)
}
