// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package ticketdetail drives the single-ticket view: loading the
// ticket and its thread, composing replies, and the staff mutations
// (status, priority, assignment, deletion). Every successful mutation
// reloads the ticket so the view shows the backend's state.
//
// The controller is parameterized by the viewer's role. Internal notes
// are removed from everything a customer viewer can reach, whatever
// the backend returned.
package ticketdetail

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/smartsupport/smartsupport/lib/schema"
)

// User-facing notices.
const (
	LoadFailedMessage      = "Failed to load ticket"
	ReplySentMessage       = "Reply sent successfully!"
	ReplyFailedMessage     = "Failed to send reply"
	StatusUpdatedMessage   = "Status updated successfully!"
	StatusFailedMessage    = "Failed to update status"
	PriorityUpdatedMessage = "Priority updated successfully!"
	PriorityFailedMessage  = "Failed to update priority"
	AgentAssignedMessage   = "Agent assigned successfully!"
	AssignFailedMessage    = "Failed to assign agent"
	DeleteFailedMessage    = "Failed to delete ticket"
)

// DeletePrompt is the confirmation question asked before deleting.
const DeletePrompt = "Are you sure you want to delete this ticket? This action cannot be undone."

var (
	// ErrEmptyReply is returned for a blank reply. No request is sent
	// and the draft is left as it was.
	ErrEmptyReply = errors.New("reply message is empty")

	// ErrInternalNotAllowed is returned when a viewer who cannot see
	// internal notes tries to write one.
	ErrInternalNotAllowed = errors.New("internal notes are only available to agents and admins")

	// ErrNotPermitted is returned when the viewer's role does not allow
	// the operation.
	ErrNotPermitted = errors.New("operation not permitted for this role")

	// ErrCancelled is returned by Delete when confirmation is declined.
	ErrCancelled = errors.New("deletion cancelled")

	// ErrDeleted is returned by operations on a deleted ticket.
	ErrDeleted = errors.New("ticket has been deleted")
)

// Source is the backend surface the controller needs.
// *apiclient.Client implements it.
type Source interface {
	GetTicket(ctx context.Context, id schema.ID) (schema.Ticket, error)
	Reply(ctx context.Context, id schema.ID, reply schema.Reply) error
	UpdateTicket(ctx context.Context, id schema.ID, update schema.TicketUpdate) error
	DeleteTicket(ctx context.Context, id schema.ID) error
	Agents(ctx context.Context) ([]schema.Agent, error)
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

// Confirm calls function. A nil function declines.
func (function ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	if function == nil {
		return false, nil
	}
	return function(ctx, prompt)
}

// NoticeKind distinguishes success from failure notices.
type NoticeKind int

const (
	NoticeSuccess NoticeKind = iota + 1
	NoticeError
)

// Notice is the transient feedback shown after an action.
type Notice struct {
	Kind NoticeKind
	Text string
}

// Snapshot is a copy of the controller's view state.
type Snapshot struct {
	// Ticket is nil until the first successful load. Its Messages are
	// already filtered for the viewer.
	Ticket *schema.Ticket

	Agents []schema.Agent
	Draft  string

	Loading bool

	// Err is the load failure message. A failed reload keeps the
	// previous Ticket.
	Err string

	Notice Notice

	// Deleted is set after a successful delete; Route is where the
	// viewer goes next.
	Deleted bool
	Route   schema.Route
}

// Config configures a Controller.
type Config struct {
	Source   Source
	TicketID schema.ID
	Viewer   schema.Role

	// Logger receives failure traces. Nil discards.
	Logger *slog.Logger

	// OnChange, when set, receives a snapshot after every state
	// transition. It must not call back into the controller
	// synchronously.
	OnChange func(Snapshot)
}

// Controller holds one ticket view. Safe for concurrent use.
type Controller struct {
	source   Source
	id       schema.ID
	viewer   schema.Role
	logger   *slog.Logger
	onChange func(Snapshot)

	mu      sync.Mutex
	ticket  *schema.Ticket
	agents  []schema.Agent
	draft   string
	loading bool
	err     string
	notice  Notice
	deleted bool
}

// New creates a Controller. Call Load to fetch the ticket.
func New(config Config) *Controller {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Controller{
		source:   config.Source,
		id:       config.TicketID,
		viewer:   config.Viewer,
		logger:   logger.With("ticket", config.TicketID),
		onChange: config.OnChange,
		agents:   []schema.Agent{},
	}
}

// ID returns the ticket being viewed.
func (controller *Controller) ID() schema.ID { return controller.id }

// Viewer returns the viewer's role.
func (controller *Controller) Viewer() schema.Role { return controller.viewer }

// Snapshot returns a copy of the current state.
func (controller *Controller) Snapshot() Snapshot {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	return controller.snapshotLocked()
}

func (controller *Controller) snapshotLocked() Snapshot {
	snapshot := Snapshot{
		Agents:  append([]schema.Agent{}, controller.agents...),
		Draft:   controller.draft,
		Loading: controller.loading,
		Err:     controller.err,
		Notice:  controller.notice,
		Deleted: controller.deleted,
	}
	if controller.ticket != nil {
		ticket := *controller.ticket
		ticket.Messages = append([]schema.Message{}, controller.ticket.Messages...)
		snapshot.Ticket = &ticket
	}
	if controller.deleted {
		snapshot.Route = controller.viewer.LandingRoute()
	}
	return snapshot
}

// changed releases the lock and notifies OnChange.
func (controller *Controller) changed() {
	snapshot := controller.snapshotLocked()
	controller.mu.Unlock()
	if controller.onChange != nil {
		controller.onChange(snapshot)
	}
}

// VisibleMessages returns the thread as the viewer may see it.
func (controller *Controller) VisibleMessages() []schema.Message {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	if controller.ticket == nil {
		return []schema.Message{}
	}
	return schema.VisibleMessages(controller.viewer, controller.ticket.Messages)
}

// Load fetches the ticket. On failure the previous ticket, if any, is
// kept and Err is set.
func (controller *Controller) Load(ctx context.Context) error {
	controller.mu.Lock()
	if controller.deleted {
		controller.mu.Unlock()
		return ErrDeleted
	}
	controller.loading = true
	controller.changed()

	ticket, err := controller.source.GetTicket(ctx, controller.id)

	controller.mu.Lock()
	controller.loading = false
	if err != nil {
		controller.logger.Warn("loading ticket failed", "error", err)
		controller.err = LoadFailedMessage
	} else {
		ticket.Messages = schema.VisibleMessages(controller.viewer, ticket.Messages)
		controller.ticket = &ticket
		controller.err = ""
	}
	controller.changed()
	return err
}

// LoadAgents fetches the assignable agents for the admin view. On
// failure the list is empty.
func (controller *Controller) LoadAgents(ctx context.Context) error {
	if controller.viewer != schema.RoleAdmin {
		return ErrNotPermitted
	}
	agents, err := controller.source.Agents(ctx)
	if err != nil {
		controller.logger.Warn("loading agents failed", "error", err)
		agents = []schema.Agent{}
	}
	controller.mu.Lock()
	controller.agents = agents
	controller.changed()
	return err
}

// SetDraft replaces the compose field.
func (controller *Controller) SetDraft(text string) {
	controller.mu.Lock()
	controller.draft = text
	controller.changed()
}

// Draft returns the compose field.
func (controller *Controller) Draft() string {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	return controller.draft
}

// SendDraft replies with the compose field's contents.
func (controller *Controller) SendDraft(ctx context.Context, internal bool) error {
	return controller.Reply(ctx, controller.Draft(), internal)
}

// Reply posts a message to the thread. A blank message is rejected
// without a request and leaves the draft untouched. On success the
// draft is cleared and the ticket reloaded.
func (controller *Controller) Reply(ctx context.Context, message string, internal bool) error {
	if strings.TrimSpace(message) == "" {
		return ErrEmptyReply
	}
	if internal && !controller.viewer.SeesInternalNotes() {
		return ErrInternalNotAllowed
	}
	if controller.isDeleted() {
		return ErrDeleted
	}

	err := controller.source.Reply(ctx, controller.id, schema.Reply{Message: message, IsInternal: internal})

	controller.mu.Lock()
	if err != nil {
		controller.logger.Warn("sending reply failed", "error", err)
		controller.notice = Notice{Kind: NoticeError, Text: ReplyFailedMessage}
		controller.changed()
		return err
	}
	controller.draft = ""
	controller.notice = Notice{Kind: NoticeSuccess, Text: ReplySentMessage}
	controller.changed()

	return controller.reload(ctx)
}

// UpdateStatus changes the ticket's status (agents and admins).
func (controller *Controller) UpdateStatus(ctx context.Context, status schema.Status) error {
	if !controller.viewer.Staff() {
		return ErrNotPermitted
	}
	if !status.Valid() {
		return fmt.Errorf("unknown status %q", status)
	}
	return controller.mutate(ctx, "updating status",
		schema.TicketUpdate{Status: status},
		StatusUpdatedMessage, StatusFailedMessage)
}

// UpdatePriority changes the ticket's priority (agents and admins).
func (controller *Controller) UpdatePriority(ctx context.Context, priority schema.Priority) error {
	if !controller.viewer.Staff() {
		return ErrNotPermitted
	}
	if !priority.Valid() {
		return fmt.Errorf("unknown priority %q", priority)
	}
	return controller.mutate(ctx, "updating priority",
		schema.TicketUpdate{Priority: priority},
		PriorityUpdatedMessage, PriorityFailedMessage)
}

// Assign sets the ticket's agent, or unassigns it when agent is nil
// (admins only).
func (controller *Controller) Assign(ctx context.Context, agent *schema.ID) error {
	if controller.viewer != schema.RoleAdmin {
		return ErrNotPermitted
	}
	assignment := schema.Unassign()
	if agent != nil {
		assignment = schema.AssignTo(*agent)
	}
	return controller.mutate(ctx, "assigning agent",
		schema.TicketUpdate{Assignment: assignment},
		AgentAssignedMessage, AssignFailedMessage)
}

func (controller *Controller) mutate(ctx context.Context, action string, update schema.TicketUpdate, success, failure string) error {
	if controller.isDeleted() {
		return ErrDeleted
	}
	err := controller.source.UpdateTicket(ctx, controller.id, update)

	controller.mu.Lock()
	if err != nil {
		controller.logger.Warn(action+" failed", "error", err)
		controller.notice = Notice{Kind: NoticeError, Text: failure}
		controller.changed()
		return err
	}
	controller.notice = Notice{Kind: NoticeSuccess, Text: success}
	controller.changed()

	return controller.reload(ctx)
}

// reload refetches after a successful mutation. A failed reload keeps
// the success notice; the load error is recorded in Err.
func (controller *Controller) reload(ctx context.Context) error {
	if err := controller.Load(ctx); err != nil {
		return fmt.Errorf("reloading ticket: %w", err)
	}
	return nil
}

// Delete removes the ticket after confirmer agrees (admins only). A
// declined confirmation returns ErrCancelled without a request,
// and so does a nil confirmer.
func (controller *Controller) Delete(ctx context.Context, confirmer Confirmer) error {
	if controller.viewer != schema.RoleAdmin {
		return ErrNotPermitted
	}
	if controller.isDeleted() {
		return ErrDeleted
	}
	if confirmer == nil {
		return ErrCancelled
	}
	confirmed, err := confirmer.Confirm(ctx, DeletePrompt)
	if err != nil {
		return fmt.Errorf("confirming deletion: %w", err)
	}
	if !confirmed {
		return ErrCancelled
	}

	err = controller.source.DeleteTicket(ctx, controller.id)

	controller.mu.Lock()
	if err != nil {
		controller.logger.Warn("deleting ticket failed", "error", err)
		controller.notice = Notice{Kind: NoticeError, Text: DeleteFailedMessage}
		controller.changed()
		return err
	}
	controller.deleted = true
	controller.notice = Notice{}
	controller.changed()
	return nil
}

func (controller *Controller) isDeleted() bool {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	return controller.deleted
}
