// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ticket

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/smartsupport/smartsupport/cmd/smartsupport/cli"
	"github.com/smartsupport/smartsupport/lib/schema"
	"github.com/smartsupport/smartsupport/lib/session"
	"github.com/smartsupport/smartsupport/lib/testutil"
)

type fixture struct {
	backend     *testutil.Backend
	sessionPath string
}

// signIn starts a backend and saves a session for user.
func signIn(t *testing.T, user schema.User) *fixture {
	t.Helper()
	fixture := &fixture{
		backend:     testutil.NewBackend(t),
		sessionPath: filepath.Join(t.TempDir(), "session.json"),
	}
	store := session.NewStore(session.NewFileStorage(fixture.sessionPath), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := store.Save(testutil.TokenFor(user), user); err != nil {
		t.Fatal(err)
	}
	return fixture
}

// run executes "ticket <args>" with stdin and returns stdout.
func (fixture *fixture) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	ctx := cli.WithIO(context.Background(), cli.IO{In: strings.NewReader(stdin), Out: &stdout, Err: &stderr})
	args = append(args, "--api-url", fixture.backend.URL(), "--session-file", fixture.sessionPath)
	err := Command().Execute(ctx, args)
	return stdout.String(), err
}

func category(err error) cli.ErrorCategory {
	var toolErr *cli.ToolError
	if errors.As(err, &toolErr) {
		return toolErr.Category
	}
	return ""
}

func TestListTable(t *testing.T) {
	t.Parallel()
	fixture := signIn(t, testutil.Admin)

	output, err := fixture.run(t, "", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, want := range []string{"CUSTOMER", "TKT-0001", "In Progress", "Alex Agent", "TKT-0002", "Unassigned"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestListFilters(t *testing.T) {
	t.Parallel()
	fixture := signIn(t, testutil.Agent)

	output, err := fixture.run(t, "", "list", "--status", "open", "--search", "invoice", "--json")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var tickets []schema.Ticket
	if err := json.Unmarshal([]byte(output), &tickets); err != nil {
		t.Fatalf("decoding %q: %v", output, err)
	}
	if len(tickets) != 1 || tickets[0].ID != 2 {
		t.Errorf("tickets = %+v, want only ticket 2", tickets)
	}

	requests := fixture.backend.RequestsTo(http.MethodGet, "/tickets")
	if len(requests) != 1 {
		t.Fatalf("list requests = %d", len(requests))
	}
	if got := requests[0].Query; !strings.Contains(got, "status=open") || !strings.Contains(got, "search=invoice") || strings.Contains(got, "priority") {
		t.Errorf("query = %q", got)
	}
}

func TestListNoMatches(t *testing.T) {
	t.Parallel()
	fixture := signIn(t, testutil.Customer)

	output, err := fixture.run(t, "", "list", "--priority", "urgent")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(output) != "No tickets match the current filters" {
		t.Errorf("output = %q", output)
	}
}

func TestListRejectsUnknownStatus(t *testing.T) {
	t.Parallel()
	fixture := signIn(t, testutil.Agent)

	if _, err := fixture.run(t, "", "list", "--status", "pending"); category(err) != cli.CategoryValidation {
		t.Errorf("err = %v, want validation", err)
	}
	if len(fixture.backend.Requests()) != 0 {
		t.Error("an invalid filter reached the backend")
	}
}

func TestStats(t *testing.T) {
	t.Parallel()

	t.Run("staff", func(t *testing.T) {
		t.Parallel()
		fixture := signIn(t, testutil.Agent)
		output, err := fixture.run(t, "", "stats", "--json")
		if err != nil {
			t.Fatal(err)
		}
		var stats schema.Stats
		if err := json.Unmarshal([]byte(output), &stats); err != nil {
			t.Fatal(err)
		}
		if stats.Total != 2 || stats.Assigned != 1 {
			t.Errorf("stats = %+v", stats)
		}
		if len(fixture.backend.RequestsTo(http.MethodGet, "/tickets/stats")) != 1 {
			t.Error("staff stats did not use the stats endpoint")
		}
	})

	t.Run("customer", func(t *testing.T) {
		t.Parallel()
		fixture := signIn(t, testutil.Customer)
		output, err := fixture.run(t, "", "stats")
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(output, "Total:") || strings.Contains(output, "Assigned:") {
			t.Errorf("output = %q", output)
		}
		if len(fixture.backend.RequestsTo(http.MethodGet, "/tickets/stats")) != 0 {
			t.Error("customer stats called the staff-only endpoint")
		}
	})
}

func TestShowHidesInternalNotesFromCustomers(t *testing.T) {
	t.Parallel()
	fixture := signIn(t, testutil.Customer)

	for _, args := range [][]string{{"show", "1"}, {"show", "1", "--json"}} {
		output, err := fixture.run(t, "", args...)
		if err != nil {
			t.Fatalf("%v: %v", args, err)
		}
		if strings.Contains(output, testutil.InternalNote) {
			t.Errorf("%v printed the internal note:\n%s", args, output)
		}
		if !strings.Contains(output, "We are looking into it.") {
			t.Errorf("%v is missing the public reply:\n%s", args, output)
		}
	}
}

func TestShowMarksInternalNotesForStaff(t *testing.T) {
	t.Parallel()
	fixture := signIn(t, testutil.Agent)

	output, err := fixture.run(t, "", "show", "1")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"TKT-0001", "Cannot reset my password", testutil.InternalNote, "(internal note)", "Messages (3)"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestShowErrors(t *testing.T) {
	t.Parallel()
	fixture := signIn(t, testutil.Agent)

	if _, err := fixture.run(t, "", "show"); category(err) != cli.CategoryValidation {
		t.Errorf("missing id: err = %v", err)
	}
	if _, err := fixture.run(t, "", "show", "abc"); category(err) != cli.CategoryValidation {
		t.Errorf("bad id: err = %v", err)
	}
	if _, err := fixture.run(t, "", "show", "99"); category(err) != cli.CategoryNotFound {
		t.Errorf("unknown ticket: err = %v", err)
	}
}

func TestCreate(t *testing.T) {
	t.Parallel()
	fixture := signIn(t, testutil.Customer)

	output, err := fixture.run(t, "", "create", "--subject", "App crashes", "--description", "On launch.")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.Contains(output, "Created TKT-0003") {
		t.Errorf("output = %q", output)
	}
	created, ok := fixture.backend.Ticket(3)
	if !ok || created.Priority != schema.PriorityMedium {
		t.Errorf("created ticket = %+v, want default priority", created)
	}
}

func TestCreateValidation(t *testing.T) {
	t.Parallel()
	fixture := signIn(t, testutil.Customer)

	if _, err := fixture.run(t, "", "create", "--subject", "No description"); category(err) != cli.CategoryValidation {
		t.Errorf("err = %v, want validation", err)
	}
	if len(fixture.backend.Requests()) != 0 {
		t.Error("an invalid ticket reached the backend")
	}
}

func TestCreateIsForCustomers(t *testing.T) {
	t.Parallel()
	fixture := signIn(t, testutil.Agent)

	_, err := fixture.run(t, "", "create", "--subject", "s", "--description", "d")
	if category(err) != cli.CategoryForbidden {
		t.Errorf("err = %v, want forbidden", err)
	}
}

func TestReply(t *testing.T) {
	t.Parallel()
	fixture := signIn(t, testutil.Customer)

	output, err := fixture.run(t, "", "reply", "1", "Any", "update?")
	if err != nil {
		t.Fatalf("reply: %v", err)
	}
	if strings.TrimSpace(output) != "Reply sent successfully!" {
		t.Errorf("output = %q", output)
	}
	replies := fixture.backend.RequestsTo(http.MethodPost, "/tickets/1/reply")
	if len(replies) != 1 || !strings.Contains(replies[0].Body, `"Any update?"`) || !strings.Contains(replies[0].Body, `"is_internal":false`) {
		t.Errorf("reply requests = %+v", replies)
	}
}

func TestReplyFromStdin(t *testing.T) {
	t.Parallel()
	fixture := signIn(t, testutil.Agent)

	if _, err := fixture.run(t, "Checked the logs.\n", "reply", "1", "-", "--internal"); err != nil {
		t.Fatalf("reply: %v", err)
	}
	ticket, _ := fixture.backend.Ticket(1)
	last := ticket.Messages[len(ticket.Messages)-1]
	if last.Message != "Checked the logs." || !last.IsInternal {
		t.Errorf("last message = %+v", last)
	}
}

func TestReplyRefusals(t *testing.T) {
	t.Parallel()
	fixture := signIn(t, testutil.Customer)

	if _, err := fixture.run(t, "", "reply", "1"); category(err) != cli.CategoryValidation {
		t.Errorf("missing message: err = %v", err)
	}
	if _, err := fixture.run(t, "   \n", "reply", "1", "-"); category(err) != cli.CategoryValidation {
		t.Errorf("blank stdin: err = %v", err)
	}
	if _, err := fixture.run(t, "", "reply", "1", "note", "--internal"); category(err) != cli.CategoryForbidden {
		t.Errorf("customer internal note: err = %v", err)
	}
	if got := fixture.backend.RequestsTo(http.MethodPost, "/tickets/1/reply"); len(got) != 0 {
		t.Errorf("refused replies reached the backend: %+v", got)
	}
}

func TestStatusAndPriority(t *testing.T) {
	t.Parallel()
	fixture := signIn(t, testutil.Agent)

	output, err := fixture.run(t, "", "status", "2", "resolved")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if strings.TrimSpace(output) != "Status updated successfully!" {
		t.Errorf("output = %q", output)
	}
	if _, err := fixture.run(t, "", "priority", "2", "urgent"); err != nil {
		t.Fatalf("priority: %v", err)
	}
	ticket, _ := fixture.backend.Ticket(2)
	if ticket.Status != schema.StatusResolved || ticket.Priority != schema.PriorityUrgent {
		t.Errorf("ticket = %s/%s", ticket.Status, ticket.Priority)
	}

	if _, err := fixture.run(t, "", "status", "2", "done"); category(err) != cli.CategoryValidation {
		t.Errorf("bad status: err = %v", err)
	}
}

func TestStaffOnlyCommandsRefuseCustomersLocally(t *testing.T) {
	t.Parallel()
	fixture := signIn(t, testutil.Customer)

	for _, args := range [][]string{
		{"status", "1", "closed"},
		{"priority", "1", "low"},
		{"assign", "1", "sam"},
		{"delete", "1", "--yes"},
		{"agents"},
	} {
		if _, err := fixture.run(t, "", args...); category(err) != cli.CategoryForbidden {
			t.Errorf("%v: err = %v, want forbidden", args, err)
		}
	}
	if requests := fixture.backend.Requests(); len(requests) != 0 {
		t.Errorf("refused commands reached the backend: %+v", requests)
	}
}

func TestAssign(t *testing.T) {
	t.Parallel()
	fixture := signIn(t, testutil.Admin)

	if _, err := fixture.run(t, "", "assign", "2", "sam"); err != nil {
		t.Fatalf("assign by name: %v", err)
	}
	ticket, _ := fixture.backend.Ticket(2)
	if ticket.AssignedTo == nil || *ticket.AssignedTo != testutil.Support.ID {
		t.Fatalf("assigned_to = %v, want Sam", ticket.AssignedTo)
	}

	if _, err := fixture.run(t, "", "assign", "2", "2"); err != nil {
		t.Fatalf("assign by id: %v", err)
	}
	ticket, _ = fixture.backend.Ticket(2)
	if ticket.AssignedTo == nil || *ticket.AssignedTo != testutil.Agent.ID {
		t.Fatalf("assigned_to = %v, want Alex", ticket.AssignedTo)
	}

	if _, err := fixture.run(t, "", "assign", "2", "none"); err != nil {
		t.Fatalf("unassign: %v", err)
	}
	ticket, _ = fixture.backend.Ticket(2)
	if ticket.AssignedTo != nil {
		t.Errorf("assigned_to = %v after unassign", *ticket.AssignedTo)
	}
	updates := fixture.backend.RequestsTo(http.MethodPatch, "/tickets/2")
	if len(updates) != 3 || !strings.Contains(updates[2].Body, `"assigned_to":null`) {
		t.Errorf("updates = %+v", updates)
	}
}

func TestAssignUnknownAgent(t *testing.T) {
	t.Parallel()
	fixture := signIn(t, testutil.Admin)

	if _, err := fixture.run(t, "", "assign", "2", "zzz"); category(err) != cli.CategoryNotFound {
		t.Errorf("err = %v, want not found", err)
	}
	if _, err := fixture.run(t, "", "assign", "2", "9"); category(err) != cli.CategoryNotFound {
		t.Errorf("err = %v, want not found", err)
	}
	if len(fixture.backend.RequestsTo(http.MethodPatch, "/tickets/2")) != 0 {
		t.Error("an unresolved agent was sent to the backend")
	}
}

func TestResolveAgentAmbiguous(t *testing.T) {
	t.Parallel()
	agents := []schema.Agent{
		{ID: 1, Name: "Jo Smith"},
		{ID: 2, Name: "Jo Smith"},
	}
	_, err := resolveAgent(agents, "jo")
	if category(err) != cli.CategoryValidation || !strings.Contains(err.Error(), "several agents") {
		t.Errorf("err = %v", err)
	}
}

func TestDelete(t *testing.T) {
	t.Parallel()
	fixture := signIn(t, testutil.Admin)

	output, err := fixture.run(t, "n\n", "delete", "2")
	if err != nil {
		t.Fatalf("declined delete: %v", err)
	}
	if strings.TrimSpace(output) != "Deletion cancelled" {
		t.Errorf("output = %q", output)
	}
	if _, ok := fixture.backend.Ticket(2); !ok {
		t.Fatal("declined delete removed the ticket")
	}

	if _, err := fixture.run(t, "yes\n", "delete", "2"); err != nil {
		t.Fatalf("confirmed delete: %v", err)
	}
	if _, ok := fixture.backend.Ticket(2); ok {
		t.Error("ticket 2 still exists")
	}

	if _, err := fixture.run(t, "", "delete", "1", "--yes"); err != nil {
		t.Fatalf("delete --yes: %v", err)
	}
	if len(fixture.backend.RequestsTo(http.MethodDelete, "/tickets/1")) != 1 {
		t.Error("--yes did not delete ticket 1")
	}
}

func TestAgents(t *testing.T) {
	t.Parallel()
	fixture := signIn(t, testutil.Admin)

	output, err := fixture.run(t, "", "agents")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Alex Agent", "Sam Support", "sam@test.com"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestBackendFailureIsCategorized(t *testing.T) {
	t.Parallel()
	fixture := signIn(t, testutil.Agent)
	fixture.backend.Fail(http.MethodGet, "/tickets", http.StatusServiceUnavailable, "Maintenance")

	_, err := fixture.run(t, "", "list")
	if category(err) != cli.CategoryTransient || !strings.Contains(err.Error(), "Maintenance") {
		t.Errorf("err = %v", err)
	}
}

func TestRequiresSession(t *testing.T) {
	t.Parallel()
	fixture := &fixture{backend: testutil.NewBackend(t), sessionPath: filepath.Join(t.TempDir(), "session.json")}

	if _, err := fixture.run(t, "", "list"); category(err) != cli.CategoryUnauthenticated {
		t.Errorf("err = %v, want unauthenticated", err)
	}
}

func TestWriteTicketStripsTerminalEscapes(t *testing.T) {
	t.Parallel()

	ticket := schema.Ticket{
		ID: 9, TicketNumber: "TKT-0009",
		Subject:     "Login \x1b[2Jbroken",
		Description: "Use <username> in the URL",
		Customer:    &schema.User{ID: 1, Name: "Casey\x1b]0;owned\x07", Role: schema.RoleCustomer},
		Messages: []schema.Message{{
			ID:      1,
			Sender:  &schema.User{ID: 1, Name: "Casey", Role: schema.RoleCustomer},
			Message: "hi\x1b]52;c;cHduZWQ=\x07there",
		}},
	}
	var out bytes.Buffer
	if err := writeTicket(&out, ticket, time.Now()); err != nil {
		t.Fatalf("writeTicket: %v", err)
	}
	output := out.String()
	if strings.ContainsAny(output, "\x1b\x07") {
		t.Errorf("escape sequence reached the output: %q", output)
	}
	for _, want := range []string{"Login broken", "Use <username> in the URL", "hithere", "Casey"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}
