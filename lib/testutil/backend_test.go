// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/smartsupport/smartsupport/lib/apiclient"
	"github.com/smartsupport/smartsupport/lib/schema"
)

type staticToken string

func (token staticToken) Token() string { return string(token) }

func clientFor(backend *Backend, user *schema.User) *apiclient.Client {
	config := apiclient.Config{BaseURL: backend.URL()}
	if user != nil {
		config.Tokens = staticToken(TokenFor(*user))
	}
	return apiclient.New(config)
}

func TestBackendLogin(t *testing.T) {
	t.Parallel()

	backend := NewBackend(t)
	client := clientFor(backend, nil)

	result, err := client.Login(context.Background(), schema.Credentials{Email: Agent.Email, Password: "password"})
	if err != nil {
		t.Fatal(err)
	}
	if result.Token != TokenFor(Agent) || result.User != Agent {
		t.Errorf("login = %+v", result)
	}

	_, err = client.Login(context.Background(), schema.Credentials{Email: Agent.Email, Password: "wrong"})
	if apiclient.Message(err, "") != "Invalid email or password" {
		t.Errorf("bad password error = %v", err)
	}
}

func TestBackendScopesCustomerTickets(t *testing.T) {
	t.Parallel()

	backend := NewBackend(t)
	tickets, err := clientFor(backend, &Customer).ListTickets(context.Background(), schema.Filter{Status: schema.StatusOpen})
	if err != nil {
		t.Fatal(err)
	}
	if len(tickets) != 1 || tickets[0].TicketNumber != "TKT-0002" {
		t.Errorf("open customer tickets = %+v", tickets)
	}
	requests := backend.RequestsTo(http.MethodGet, "/tickets")
	if len(requests) != 1 || requests[0].Query != "status=open" || requests[0].Token != TokenFor(Customer) {
		t.Errorf("recorded = %+v", requests)
	}
}

func TestBackendLeaksInternalNotes(t *testing.T) {
	t.Parallel()

	backend := NewBackend(t)
	ticket, err := clientFor(backend, &Customer).GetTicket(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, message := range ticket.Messages {
		if message.Message == InternalNote && message.IsInternal {
			found = true
		}
	}
	if !found {
		t.Error("the fake backend should return internal notes to every caller")
	}
}

func TestBackendRoleRules(t *testing.T) {
	t.Parallel()

	backend := NewBackend(t)
	ctx := context.Background()

	forbidden := func(name string, err error) {
		t.Helper()
		apiErr, ok := apiclient.AsError(err)
		if !ok || !apiErr.Forbidden() {
			t.Errorf("%s: error = %v, want 403", name, err)
		}
	}
	forbidden("customer stats", func() error { _, err := clientFor(backend, &Customer).TicketStats(ctx); return err }())
	forbidden("agent assign", clientFor(backend, &Agent).UpdateTicket(ctx, 2, schema.TicketUpdate{Assignment: schema.AssignTo(Support.ID)}))
	forbidden("agent delete", clientFor(backend, &Agent).DeleteTicket(ctx, 2))
	forbidden("customer internal", clientFor(backend, &Customer).Reply(ctx, 2, schema.Reply{Message: "psst", IsInternal: true}))

	if err := clientFor(backend, &Admin).UpdateTicket(ctx, 2, schema.TicketUpdate{Assignment: schema.AssignTo(Support.ID)}); err != nil {
		t.Fatal(err)
	}
	ticket, _ := backend.Ticket(2)
	if ticket.AssignedTo == nil || *ticket.AssignedTo != Support.ID || ticket.Agent.Name != Support.Name {
		t.Errorf("assignment not applied: %+v", ticket)
	}

	if err := clientFor(backend, &Admin).DeleteTicket(ctx, 2); err != nil {
		t.Fatal(err)
	}
	if _, exists := backend.Ticket(2); exists {
		t.Error("ticket 2 survived deletion")
	}
}

func TestBackendFailureInjection(t *testing.T) {
	t.Parallel()

	backend := NewBackend(t)
	backend.Fail(http.MethodPost, "/chatbot/query", http.StatusServiceUnavailable, "Assistant offline")

	_, err := clientFor(backend, &Customer).ChatbotQuery(context.Background(), "hello")
	apiErr, ok := apiclient.AsError(err)
	if !ok || apiErr.Status != http.StatusServiceUnavailable || apiErr.Message != "Assistant offline" {
		t.Errorf("injected failure = %v", err)
	}
}

func TestBackendCreateAndChat(t *testing.T) {
	t.Parallel()

	backend := NewBackend(t)
	client := clientFor(backend, &Customer)
	created, err := client.CreateTicket(context.Background(), schema.NewTicket{Subject: "Printer on fire", Description: "Smoke."})
	if err != nil {
		t.Fatal(err)
	}
	if created.TicketNumber != "TKT-0003" || created.Priority != schema.DefaultPriority {
		t.Errorf("created = %+v", created)
	}

	backend.SetChatReply("Try turning it off.")
	reply, err := client.ChatbotQuery(context.Background(), "printer?")
	if err != nil || !strings.HasPrefix(reply, "Try turning") {
		t.Errorf("reply = %q, %v", reply, err)
	}
}
