// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/smartsupport/smartsupport/lib/envelope"
	"github.com/smartsupport/smartsupport/lib/schema"
)

// LoginFailedMessage is the fallback for failed logins.
const LoginFailedMessage = "Login failed"

// ErrEmptyUpdate is returned by UpdateTicket when the update changes
// nothing. No request is sent.
var ErrEmptyUpdate = errors.New("ticket update has no fields set")

// Login exchanges credentials for a token and profile. The request
// never carries a bearer token.
func (client *Client) Login(ctx context.Context, credentials schema.Credentials) (schema.LoginResult, error) {
	response, err := client.Request(ctx, "/login", Options{
		Method:        http.MethodPost,
		Body:          credentials,
		Anonymous:     true,
		ErrorFallback: LoginFailedMessage,
	})
	if err != nil {
		return schema.LoginResult{}, err
	}
	result, ok := envelope.Entity[schema.LoginResult](response.Data)
	if !ok || result.Token == "" {
		return schema.LoginResult{}, &Error{
			Status:  response.Status,
			Message: LoginFailedMessage,
			Err:     errors.New("login response carries no token"),
		}
	}
	return result, nil
}

// Health probes GET /health. The response shape is opaque; any 2xx is
// healthy.
func (client *Client) Health(ctx context.Context) error {
	_, err := client.Request(ctx, "/health", Options{Anonymous: true})
	return err
}

// ListTickets fetches the tickets visible to the caller. Only the
// filter's non-empty fields become query parameters. An unrecognized
// envelope yields an empty list.
func (client *Client) ListTickets(ctx context.Context, filter schema.Filter) ([]schema.Ticket, error) {
	response, err := client.Get(ctx, "/tickets", filter.Query())
	if err != nil {
		return nil, err
	}
	return envelope.List[schema.Ticket](response.Data), nil
}

// TicketStats fetches the role-dependent dashboard counters. A body
// that does not decode yields zero counters.
func (client *Client) TicketStats(ctx context.Context) (schema.Stats, error) {
	response, err := client.Get(ctx, "/tickets/stats", nil)
	if err != nil {
		return schema.Stats{}, err
	}
	stats, _ := envelope.Entity[schema.Stats](response.Data)
	return stats, nil
}

// GetTicket fetches one ticket with its message thread.
func (client *Client) GetTicket(ctx context.Context, id schema.ID) (schema.Ticket, error) {
	response, err := client.Get(ctx, ticketPath(id), nil)
	if err != nil {
		return schema.Ticket{}, err
	}
	ticket, ok := envelope.Entity[schema.Ticket](response.Data)
	if !ok {
		return schema.Ticket{}, &Error{
			Status:  response.Status,
			Message: DefaultErrorMessage,
			Err:     fmt.Errorf("decoding ticket %s", id),
		}
	}
	return ticket, nil
}

// CreateTicket files a new ticket. The ticket is validated first, which
// also applies the default priority. The returned ticket is whatever
// the backend echoed back and may be partially populated.
func (client *Client) CreateTicket(ctx context.Context, ticket schema.NewTicket) (schema.Ticket, error) {
	if err := ticket.Validate(); err != nil {
		return schema.Ticket{}, err
	}
	response, err := client.Post(ctx, "/tickets", ticket)
	if err != nil {
		return schema.Ticket{}, err
	}
	created, _ := envelope.Entity[schema.Ticket](response.Data)
	return created, nil
}

// Reply appends a message to a ticket's thread.
func (client *Client) Reply(ctx context.Context, id schema.ID, reply schema.Reply) error {
	_, err := client.Post(ctx, ticketPath(id)+"/reply", reply)
	return err
}

// UpdateTicket sends a partial update. Only the fields set on update
// appear in the body.
func (client *Client) UpdateTicket(ctx context.Context, id schema.ID, update schema.TicketUpdate) error {
	if update.Empty() {
		return ErrEmptyUpdate
	}
	_, err := client.Patch(ctx, ticketPath(id), update)
	return err
}

// DeleteTicket permanently removes a ticket.
func (client *Client) DeleteTicket(ctx context.Context, id schema.ID) error {
	_, err := client.Delete(ctx, ticketPath(id))
	return err
}

// Agents lists the agents a ticket can be assigned to.
func (client *Client) Agents(ctx context.Context) ([]schema.Agent, error) {
	response, err := client.Get(ctx, "/users/agents", nil)
	if err != nil {
		return nil, err
	}
	return envelope.List[schema.Agent](response.Data), nil
}

// ChatbotQuery asks the backend assistant a question and returns its
// reply text. An empty string means the response carried no message.
func (client *Client) ChatbotQuery(ctx context.Context, message string) (string, error) {
	response, err := client.Post(ctx, "/chatbot/query", chatbotQuery{Message: message})
	if err != nil {
		return "", err
	}
	reply, _ := envelope.Entity[chatbotQuery](response.Data)
	return reply.Message, nil
}

type chatbotQuery struct {
	Message string `json:"message"`
}

func ticketPath(id schema.ID) string {
	return "/tickets/" + id.String()
}
