// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Status is a ticket's lifecycle state.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusClosed     Status = "closed"
)

// Statuses lists every status in workflow order.
var Statuses = []Status{StatusOpen, StatusInProgress, StatusResolved, StatusClosed}

// Valid reports whether the status is one of the four known states.
func (status Status) Valid() bool {
	switch status {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// ParseStatus validates a status in wire form. A hyphen or space is
// accepted in place of the underscore ("in-progress").
func ParseStatus(value string) (Status, error) {
	status := Status(strings.NewReplacer("-", "_", " ", "_").Replace(strings.ToLower(strings.TrimSpace(value))))
	if !status.Valid() {
		return "", fmt.Errorf("unknown status %q (expected open, in_progress, resolved, or closed)", value)
	}
	return status, nil
}

// Priority is a ticket's urgency.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Priorities lists every priority from least to most urgent.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// DefaultPriority is applied to new tickets that do not specify one.
const DefaultPriority = PriorityMedium

// Valid reports whether the priority is one of the four known levels.
func (priority Priority) Valid() bool {
	switch priority {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// ParsePriority validates a priority in wire form.
func ParsePriority(value string) (Priority, error) {
	priority := Priority(strings.ToLower(strings.TrimSpace(value)))
	if !priority.Valid() {
		return "", fmt.Errorf("unknown priority %q (expected low, medium, high, or urgent)", value)
	}
	return priority, nil
}

// Ticket is a support ticket as returned by the list and detail
// endpoints. The backend owns tickets; clients hold a read-mostly copy
// for the lifetime of a view and refetch after every mutation.
type Ticket struct {
	ID ID `json:"id"`

	// TicketNumber is the human-facing reference (e.g., "TKT-00042").
	TicketNumber string `json:"ticket_number"`

	Subject     string   `json:"subject"`
	Description string   `json:"description"`
	Status      Status   `json:"status"`
	Priority    Priority `json:"priority"`

	// Customer is the user who filed the ticket.
	Customer *User `json:"customer"`

	// Agent is the assigned agent's profile, nil when unassigned.
	Agent *User `json:"agent"`

	// AssignedTo is the assigned agent's ID, nil when unassigned.
	AssignedTo *ID `json:"assigned_to"`

	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`

	// Messages is the conversation thread in server order
	// (chronological). Only the detail endpoint populates it.
	Messages []Message `json:"messages"`
}

// Message is one entry in a ticket's conversation thread.
type Message struct {
	ID ID `json:"id"`

	// Sender is nil for system-generated messages.
	Sender *User `json:"sender"`

	Message string `json:"message"`

	// IsInternal marks an agent/admin note hidden from customers.
	IsInternal bool `json:"is_internal"`

	// IsBot marks an automatic reply generated by the backend's
	// assistant.
	IsBot bool `json:"is_bot"`

	CreatedAt Timestamp `json:"created_at"`
}

// SenderName returns the sender's name, or "System" for messages
// without a sender.
func (message Message) SenderName() string {
	return message.Sender.DisplayName("System")
}

// Badge returns the label shown next to the sender: "Bot" for
// automatic replies, otherwise the sender's role.
func (message Message) Badge() string {
	if message.IsBot {
		return "Bot"
	}
	if message.Sender == nil || message.Sender.Role == "" {
		return ""
	}
	return string(message.Sender.Role)
}

// VisibleMessages returns the messages a viewer with the given role may
// read, preserving order. Internal notes are removed for every role
// that does not see them, whatever the backend returned.
func VisibleMessages(viewer Role, messages []Message) []Message {
	visible := make([]Message, 0, len(messages))
	for _, message := range messages {
		if message.IsInternal && !viewer.SeesInternalNotes() {
			continue
		}
		visible = append(visible, message)
	}
	return visible
}

// NewTicket is the POST /tickets request body.
type NewTicket struct {
	Subject     string   `json:"subject"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
}

// Validate checks the fields the create form requires and applies the
// default priority.
func (ticket *NewTicket) Validate() error {
	if strings.TrimSpace(ticket.Subject) == "" {
		return fmt.Errorf("subject is required")
	}
	if strings.TrimSpace(ticket.Description) == "" {
		return fmt.Errorf("description is required")
	}
	if ticket.Priority == "" {
		ticket.Priority = DefaultPriority
	}
	if !ticket.Priority.Valid() {
		return fmt.Errorf("unknown priority %q", ticket.Priority)
	}
	return nil
}

// Reply is the POST /tickets/{id}/reply request body.
type Reply struct {
	Message    string `json:"message"`
	IsInternal bool   `json:"is_internal"`
}

// TicketUpdate is a PATCH /tickets/{id} body carrying any subset of
// status, priority, and assignment. Unset fields are omitted from the
// encoded body. Assignment distinguishes "leave unchanged" (nil) from
// "unassign" (an Assignment with a nil AgentID, encoded as null).
type TicketUpdate struct {
	Status     Status
	Priority   Priority
	Assignment *Assignment
}

// Assignment sets or clears a ticket's agent.
type Assignment struct {
	// AgentID is the agent to assign, nil to unassign.
	AgentID *ID
}

// AssignTo returns an Assignment for the given agent.
func AssignTo(agent ID) *Assignment {
	return &Assignment{AgentID: &agent}
}

// Unassign returns an Assignment that clears the agent.
func Unassign() *Assignment {
	return &Assignment{}
}

// Empty reports whether the update changes nothing.
func (update TicketUpdate) Empty() bool {
	return update.Status == "" && update.Priority == "" && update.Assignment == nil
}

// MarshalJSON encodes only the fields being changed.
func (update TicketUpdate) MarshalJSON() ([]byte, error) {
	fields := make(map[string]any, 3)
	if update.Status != "" {
		fields["status"] = update.Status
	}
	if update.Priority != "" {
		fields["priority"] = update.Priority
	}
	if update.Assignment != nil {
		if update.Assignment.AgentID == nil {
			fields["assigned_to"] = nil
		} else {
			fields["assigned_to"] = *update.Assignment.AgentID
		}
	}
	return json.Marshal(fields)
}
