// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ticketdetail

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/smartsupport/smartsupport/lib/schema"
)

// fakeBackend is an in-memory ticket store implementing Source.
type fakeBackend struct {
	mu      sync.Mutex
	tickets map[schema.ID]schema.Ticket
	agents  []schema.Agent
	calls   []string
	replies []schema.Reply
	updates []schema.TicketUpdate
	fail    map[string]error
}

func newFakeBackend(tickets ...schema.Ticket) *fakeBackend {
	backend := &fakeBackend{
		tickets: make(map[schema.ID]schema.Ticket),
		fail:    make(map[string]error),
		agents:  []schema.Agent{{ID: 2, Name: "Alex Agent"}},
	}
	for _, ticket := range tickets {
		backend.tickets[ticket.ID] = ticket
	}
	return backend
}

func (backend *fakeBackend) record(call string) error {
	backend.mu.Lock()
	defer backend.mu.Unlock()
	backend.calls = append(backend.calls, call)
	return backend.fail[call]
}

func (backend *fakeBackend) callCount(call string) int {
	backend.mu.Lock()
	defer backend.mu.Unlock()
	count := 0
	for _, recorded := range backend.calls {
		if recorded == call {
			count++
		}
	}
	return count
}

func (backend *fakeBackend) GetTicket(ctx context.Context, id schema.ID) (schema.Ticket, error) {
	if err := backend.record("get"); err != nil {
		return schema.Ticket{}, err
	}
	backend.mu.Lock()
	defer backend.mu.Unlock()
	ticket, ok := backend.tickets[id]
	if !ok {
		return schema.Ticket{}, errors.New("not found")
	}
	ticket.Messages = append([]schema.Message{}, ticket.Messages...)
	return ticket, nil
}

func (backend *fakeBackend) Reply(ctx context.Context, id schema.ID, reply schema.Reply) error {
	if err := backend.record("reply"); err != nil {
		return err
	}
	backend.mu.Lock()
	defer backend.mu.Unlock()
	backend.replies = append(backend.replies, reply)
	ticket := backend.tickets[id]
	ticket.Messages = append(ticket.Messages, schema.Message{
		ID:         schema.ID(len(ticket.Messages) + 1),
		Message:    reply.Message,
		IsInternal: reply.IsInternal,
	})
	backend.tickets[id] = ticket
	return nil
}

func (backend *fakeBackend) UpdateTicket(ctx context.Context, id schema.ID, update schema.TicketUpdate) error {
	if err := backend.record("update"); err != nil {
		return err
	}
	backend.mu.Lock()
	defer backend.mu.Unlock()
	backend.updates = append(backend.updates, update)
	ticket := backend.tickets[id]
	if update.Status != "" {
		ticket.Status = update.Status
	}
	if update.Priority != "" {
		ticket.Priority = update.Priority
	}
	if update.Assignment != nil {
		ticket.AssignedTo = update.Assignment.AgentID
	}
	backend.tickets[id] = ticket
	return nil
}

func (backend *fakeBackend) DeleteTicket(ctx context.Context, id schema.ID) error {
	if err := backend.record("delete"); err != nil {
		return err
	}
	backend.mu.Lock()
	defer backend.mu.Unlock()
	delete(backend.tickets, id)
	return nil
}

func (backend *fakeBackend) Agents(ctx context.Context) ([]schema.Agent, error) {
	if err := backend.record("agents"); err != nil {
		return nil, err
	}
	return backend.agents, nil
}

func sampleTicket() schema.Ticket {
	customer := &schema.User{ID: 3, Name: "Casey", Role: schema.RoleCustomer}
	agent := &schema.User{ID: 2, Name: "Alex Agent", Role: schema.RoleAgent}
	return schema.Ticket{
		ID:       10,
		Subject:  "Cannot log in",
		Status:   schema.StatusOpen,
		Priority: schema.PriorityHigh,
		Customer: customer,
		Messages: []schema.Message{
			{ID: 1, Sender: customer, Message: "Help, my password fails"},
			{ID: 2, Sender: agent, Message: "customer is on the legacy SSO plan", IsInternal: true},
			{ID: 3, Sender: agent, Message: "Looking into it"},
		},
	}
}

func confirmWith(answer bool) ConfirmFunc {
	return func(ctx context.Context, prompt string) (bool, error) {
		return answer, nil
	}
}

func TestCustomerNeverSeesInternalNotes(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(sampleTicket())
	controller := New(Config{Source: backend, TicketID: 10, Viewer: schema.RoleCustomer})

	if err := controller.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	snapshot := controller.Snapshot()
	for _, message := range snapshot.Ticket.Messages {
		if strings.Contains(message.Message, "legacy SSO") {
			t.Errorf("snapshot exposed internal note %q", message.Message)
		}
	}
	visible := controller.VisibleMessages()
	if len(visible) != 2 {
		t.Fatalf("customer sees %d messages, want 2", len(visible))
	}
	for _, message := range visible {
		if message.IsInternal {
			t.Errorf("internal message %d visible to customer", message.ID)
		}
	}
}

func TestAgentSeesInternalNotes(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(sampleTicket())
	controller := New(Config{Source: backend, TicketID: 10, Viewer: schema.RoleAgent})

	if err := controller.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := len(controller.VisibleMessages()); got != 3 {
		t.Errorf("agent sees %d messages, want 3", got)
	}
}

func TestLoadFailureKeepsPreviousTicket(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(sampleTicket())
	controller := New(Config{Source: backend, TicketID: 10, Viewer: schema.RoleAgent})
	ctx := context.Background()

	if err := controller.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	backend.fail["get"] = errors.New("backend down")
	if err := controller.Load(ctx); err == nil {
		t.Fatal("second Load succeeded")
	}

	snapshot := controller.Snapshot()
	if snapshot.Err != LoadFailedMessage {
		t.Errorf("Err = %q", snapshot.Err)
	}
	if snapshot.Ticket == nil || snapshot.Ticket.Subject != "Cannot log in" {
		t.Errorf("previous ticket lost: %+v", snapshot.Ticket)
	}
	if snapshot.Loading {
		t.Error("Loading still set")
	}
}

func TestEmptyReplyIsNoOp(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(sampleTicket())
	controller := New(Config{Source: backend, TicketID: 10, Viewer: schema.RoleCustomer})
	controller.SetDraft("   ")

	if err := controller.Reply(context.Background(), "", false); !errors.Is(err, ErrEmptyReply) {
		t.Errorf("Reply(\"\") = %v, want ErrEmptyReply", err)
	}
	if err := controller.SendDraft(context.Background(), false); !errors.Is(err, ErrEmptyReply) {
		t.Errorf("SendDraft(blank) = %v, want ErrEmptyReply", err)
	}
	if backend.callCount("reply") != 0 {
		t.Errorf("%d reply requests sent", backend.callCount("reply"))
	}
	if draft := controller.Draft(); draft != "   " {
		t.Errorf("draft = %q, want it untouched", draft)
	}
}

func TestReplySuccessClearsDraftAndReloads(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(sampleTicket())
	controller := New(Config{Source: backend, TicketID: 10, Viewer: schema.RoleAgent})
	controller.SetDraft("We reset your password")

	if err := controller.SendDraft(context.Background(), true); err != nil {
		t.Fatalf("SendDraft: %v", err)
	}
	snapshot := controller.Snapshot()
	if snapshot.Draft != "" {
		t.Errorf("draft = %q, want cleared", snapshot.Draft)
	}
	if snapshot.Notice != (Notice{Kind: NoticeSuccess, Text: ReplySentMessage}) {
		t.Errorf("notice = %+v", snapshot.Notice)
	}
	if backend.callCount("get") != 1 {
		t.Errorf("%d reloads, want 1", backend.callCount("get"))
	}
	if len(backend.replies) != 1 || !backend.replies[0].IsInternal {
		t.Errorf("replies = %+v", backend.replies)
	}
	last := snapshot.Ticket.Messages[len(snapshot.Ticket.Messages)-1]
	if last.Message != "We reset your password" {
		t.Errorf("reloaded thread ends with %q", last.Message)
	}
}

func TestReplyFailureKeepsDraft(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(sampleTicket())
	backend.fail["reply"] = errors.New("boom")
	controller := New(Config{Source: backend, TicketID: 10, Viewer: schema.RoleCustomer})
	controller.SetDraft("Any update?")

	if err := controller.SendDraft(context.Background(), false); err == nil {
		t.Fatal("SendDraft succeeded")
	}
	snapshot := controller.Snapshot()
	if snapshot.Draft != "Any update?" {
		t.Errorf("draft = %q", snapshot.Draft)
	}
	if snapshot.Notice != (Notice{Kind: NoticeError, Text: ReplyFailedMessage}) {
		t.Errorf("notice = %+v", snapshot.Notice)
	}
}

func TestCustomerCannotWriteInternalNote(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(sampleTicket())
	controller := New(Config{Source: backend, TicketID: 10, Viewer: schema.RoleCustomer})

	if err := controller.Reply(context.Background(), "secret", true); !errors.Is(err, ErrInternalNotAllowed) {
		t.Errorf("Reply internal = %v, want ErrInternalNotAllowed", err)
	}
	if backend.callCount("reply") != 0 {
		t.Error("internal reply reached the backend")
	}
}

func TestStaffMutations(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(sampleTicket())
	controller := New(Config{Source: backend, TicketID: 10, Viewer: schema.RoleAdmin})
	ctx := context.Background()

	if err := controller.UpdateStatus(ctx, schema.StatusResolved); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if notice := controller.Snapshot().Notice.Text; notice != StatusUpdatedMessage {
		t.Errorf("notice = %q", notice)
	}
	if err := controller.UpdatePriority(ctx, schema.PriorityUrgent); err != nil {
		t.Fatalf("UpdatePriority: %v", err)
	}
	agent := schema.ID(2)
	if err := controller.Assign(ctx, &agent); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	snapshot := controller.Snapshot()
	if snapshot.Notice.Text != AgentAssignedMessage {
		t.Errorf("notice = %q", snapshot.Notice.Text)
	}
	ticket := snapshot.Ticket
	if ticket.Status != schema.StatusResolved || ticket.Priority != schema.PriorityUrgent {
		t.Errorf("ticket = %+v", ticket)
	}
	if ticket.AssignedTo == nil || *ticket.AssignedTo != 2 {
		t.Errorf("AssignedTo = %v", ticket.AssignedTo)
	}

	if err := controller.Assign(ctx, nil); err != nil {
		t.Fatalf("Assign(nil): %v", err)
	}
	last := backend.updates[len(backend.updates)-1]
	if last.Assignment == nil || last.Assignment.AgentID != nil {
		t.Errorf("unassign update = %+v", last)
	}
	if backend.callCount("get") != 4 {
		t.Errorf("%d reloads, want one per mutation", backend.callCount("get"))
	}
}

func TestMutationFailureNotice(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(sampleTicket())
	backend.fail["update"] = errors.New("conflict")
	controller := New(Config{Source: backend, TicketID: 10, Viewer: schema.RoleAgent})

	if err := controller.UpdatePriority(context.Background(), schema.PriorityLow); err == nil {
		t.Fatal("UpdatePriority succeeded")
	}
	if notice := controller.Snapshot().Notice; notice != (Notice{Kind: NoticeError, Text: PriorityFailedMessage}) {
		t.Errorf("notice = %+v", notice)
	}
	if backend.callCount("get") != 0 {
		t.Error("failed mutation reloaded the ticket")
	}
}

func TestRolePermissions(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(sampleTicket())
	ctx := context.Background()
	customer := New(Config{Source: backend, TicketID: 10, Viewer: schema.RoleCustomer})
	agent := New(Config{Source: backend, TicketID: 10, Viewer: schema.RoleAgent})

	if err := customer.UpdateStatus(ctx, schema.StatusClosed); !errors.Is(err, ErrNotPermitted) {
		t.Errorf("customer UpdateStatus = %v", err)
	}
	if err := agent.Assign(ctx, nil); !errors.Is(err, ErrNotPermitted) {
		t.Errorf("agent Assign = %v", err)
	}
	if err := agent.Delete(ctx, confirmWith(true)); !errors.Is(err, ErrNotPermitted) {
		t.Errorf("agent Delete = %v", err)
	}
	if err := agent.LoadAgents(ctx); !errors.Is(err, ErrNotPermitted) {
		t.Errorf("agent LoadAgents = %v", err)
	}
	if err := agent.UpdateStatus(ctx, schema.Status("bogus")); err == nil {
		t.Error("unknown status accepted")
	}
	if len(backend.calls) != 0 {
		t.Errorf("rejected operations reached the backend: %v", backend.calls)
	}
}

func TestUnconfirmedDeleteSendsNothing(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(sampleTicket())
	controller := New(Config{Source: backend, TicketID: 10, Viewer: schema.RoleAdmin})
	ctx := context.Background()

	var asked string
	declined := ConfirmFunc(func(ctx context.Context, prompt string) (bool, error) {
		asked = prompt
		return false, nil
	})
	if err := controller.Delete(ctx, declined); !errors.Is(err, ErrCancelled) {
		t.Errorf("Delete = %v, want ErrCancelled", err)
	}
	if asked != DeletePrompt {
		t.Errorf("prompt = %q", asked)
	}
	if backend.callCount("delete") != 0 {
		t.Error("DELETE sent without confirmation")
	}
	if err := controller.Load(ctx); err != nil {
		t.Errorf("ticket no longer retrievable: %v", err)
	}
}

func TestConfirmedDelete(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(sampleTicket())
	controller := New(Config{Source: backend, TicketID: 10, Viewer: schema.RoleAdmin})
	ctx := context.Background()

	if err := controller.Delete(ctx, confirmWith(true)); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	snapshot := controller.Snapshot()
	if !snapshot.Deleted || snapshot.Route != schema.RouteAdminDashboard {
		t.Errorf("snapshot = %+v", snapshot)
	}
	if err := controller.Load(ctx); !errors.Is(err, ErrDeleted) {
		t.Errorf("Load after delete = %v, want ErrDeleted", err)
	}
}

func TestDeleteWithoutConfirmerDeclines(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(sampleTicket())
	controller := New(Config{Source: backend, TicketID: 10, Viewer: schema.RoleAdmin})
	ctx := context.Background()

	if err := controller.Delete(ctx, nil); !errors.Is(err, ErrCancelled) {
		t.Errorf("Delete(nil) = %v, want ErrCancelled", err)
	}
	if err := controller.Delete(ctx, ConfirmFunc(nil)); !errors.Is(err, ErrCancelled) {
		t.Errorf("Delete(ConfirmFunc(nil)) = %v, want ErrCancelled", err)
	}
	if backend.callCount("delete") != 0 {
		t.Error("DELETE sent without a confirmer")
	}
	if controller.Snapshot().Deleted {
		t.Error("ticket marked deleted")
	}
}

func TestDeleteFailureNotice(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(sampleTicket())
	backend.fail["delete"] = errors.New("forbidden")
	controller := New(Config{Source: backend, TicketID: 10, Viewer: schema.RoleAdmin})

	if err := controller.Delete(context.Background(), confirmWith(true)); err == nil {
		t.Fatal("Delete succeeded")
	}
	snapshot := controller.Snapshot()
	if snapshot.Deleted || snapshot.Notice.Text != DeleteFailedMessage {
		t.Errorf("snapshot = %+v", snapshot)
	}
}

func TestLoadAgents(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(sampleTicket())
	controller := New(Config{Source: backend, TicketID: 10, Viewer: schema.RoleAdmin})

	if err := controller.LoadAgents(context.Background()); err != nil {
		t.Fatalf("LoadAgents: %v", err)
	}
	if agents := controller.Snapshot().Agents; len(agents) != 1 || agents[0].Name != "Alex Agent" {
		t.Errorf("agents = %+v", agents)
	}

	backend.fail["agents"] = errors.New("down")
	if err := controller.LoadAgents(context.Background()); err == nil {
		t.Fatal("LoadAgents succeeded")
	}
	if agents := controller.Snapshot().Agents; len(agents) != 0 || agents == nil {
		t.Errorf("agents after failure = %v, want empty", agents)
	}
}
