// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/smartsupport/smartsupport/lib/schema"
)

// Seeded identities. Every account's password is "password".
var (
	Admin    = schema.User{ID: 1, Name: "Avery Admin", Email: "admin@test.com", Role: schema.RoleAdmin}
	Agent    = schema.User{ID: 2, Name: "Alex Agent", Email: "agent@test.com", Role: schema.RoleAgent}
	Customer = schema.User{ID: 3, Name: "Casey Customer", Email: "customer@test.com", Role: schema.RoleCustomer}
	Support  = schema.User{ID: 4, Name: "Sam Support", Email: "sam@test.com", Role: schema.RoleAgent}
)

// InternalNote is the text of the seeded internal note on ticket 1.
const InternalNote = "Customer is on the legacy billing plan; check before refunding."

// ChatReply is what the assistant answers unless Backend.ChatReply is set.
const ChatReply = "Our support team is available **9am to 5pm**, Monday to Friday."

// Request is one recorded call.
type Request struct {
	Method string
	Path   string
	Query  string
	Token  string
	Body   string
}

type failure struct {
	status  int
	message string
}

// Backend is a fake SmartSupport API. Its methods are safe for
// concurrent use.
type Backend struct {
	server *httptest.Server

	mu        sync.Mutex
	tickets   []schema.Ticket
	nextID    schema.ID
	requests  []Request
	failures  map[string]failure
	chatReply string
}

// NewBackend starts a seeded backend that is closed when the test ends.
func NewBackend(t testing.TB) *Backend {
	t.Helper()
	backend := &Backend{failures: map[string]failure{}, chatReply: ChatReply}
	backend.seed(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/login", backend.login)
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /api/tickets", backend.authorized(backend.listTickets))
	mux.HandleFunc("GET /api/tickets/stats", backend.authorized(backend.stats))
	mux.HandleFunc("POST /api/tickets", backend.authorized(backend.createTicket))
	mux.HandleFunc("GET /api/tickets/{id}", backend.authorized(backend.getTicket))
	mux.HandleFunc("POST /api/tickets/{id}/reply", backend.authorized(backend.reply))
	mux.HandleFunc("PATCH /api/tickets/{id}", backend.authorized(backend.updateTicket))
	mux.HandleFunc("DELETE /api/tickets/{id}", backend.authorized(backend.deleteTicket))
	mux.HandleFunc("GET /api/users/agents", backend.authorized(backend.agents))
	mux.HandleFunc("POST /api/chatbot/query", backend.authorized(backend.chatbot))

	backend.server = httptest.NewServer(backend.record(mux))
	t.Cleanup(backend.server.Close)
	return backend
}

// URL is the API root to configure clients with.
func (backend *Backend) URL() string { return backend.server.URL + "/api" }

// TokenFor returns the bearer token login issues for user.
func TokenFor(user schema.User) string { return "token-" + string(user.Role) }

// Requests returns a copy of every request received so far.
func (backend *Backend) Requests() []Request {
	backend.mu.Lock()
	defer backend.mu.Unlock()
	return slices.Clone(backend.requests)
}

// RequestsTo returns the recorded requests matching method and path.
func (backend *Backend) RequestsTo(method, path string) []Request {
	var matched []Request
	for _, request := range backend.Requests() {
		if request.Method == method && request.Path == path {
			matched = append(matched, request)
		}
	}
	return matched
}

// Ticket returns the stored ticket, including internal notes.
func (backend *Backend) Ticket(id schema.ID) (schema.Ticket, bool) {
	backend.mu.Lock()
	defer backend.mu.Unlock()
	index := backend.indexLocked(id)
	if index < 0 {
		return schema.Ticket{}, false
	}
	return backend.tickets[index], true
}

// Fail makes every later request to method and path answer status with
// a {"message": message} body. A blank message sends an empty object.
func (backend *Backend) Fail(method, path string, status int, message string) {
	backend.mu.Lock()
	defer backend.mu.Unlock()
	backend.failures[method+" "+path] = failure{status: status, message: message}
}

// SetChatReply changes the assistant's answer.
func (backend *Backend) SetChatReply(reply string) {
	backend.mu.Lock()
	defer backend.mu.Unlock()
	backend.chatReply = reply
}

func (backend *Backend) seed(start time.Time) {
	at := func(hours int) schema.Timestamp {
		return schema.Timestamp{Time: start.Add(time.Duration(hours) * time.Hour)}
	}
	agentID := Agent.ID
	backend.tickets = []schema.Ticket{
		{
			ID: 1, TicketNumber: "TKT-0001", Subject: "Cannot reset my password",
			Description: "The reset email never arrives.",
			Status:      schema.StatusInProgress, Priority: schema.PriorityHigh,
			Customer: &Customer, Agent: &Agent, AssignedTo: &agentID,
			CreatedAt: at(0), UpdatedAt: at(2),
			Messages: []schema.Message{
				{ID: 1, Sender: &Customer, Message: "Still nothing in my inbox.", CreatedAt: at(1)},
				{ID: 2, Sender: &Agent, Message: "We are looking into it.", CreatedAt: at(2)},
				{ID: 3, Sender: &Agent, Message: InternalNote, IsInternal: true, CreatedAt: at(2)},
			},
		},
		{
			ID: 2, TicketNumber: "TKT-0002", Subject: "Invoice shows the wrong amount",
			Description: "I was charged twice in February.",
			Status:      schema.StatusOpen, Priority: schema.PriorityMedium,
			Customer: &Customer, CreatedAt: at(3), UpdatedAt: at(3),
		},
	}
	backend.nextID = 3
}

// record logs the request and applies injected failures.
func (backend *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		backend.mu.Lock()
		backend.requests = append(backend.requests, Request{
			Method: r.Method,
			Path:   strings.TrimPrefix(r.URL.Path, "/api"),
			Query:  r.URL.RawQuery,
			Token:  strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "),
			Body:   string(body),
		})
		injected, failing := backend.failures[r.Method+" "+strings.TrimPrefix(r.URL.Path, "/api")]
		backend.mu.Unlock()

		if failing {
			if injected.message == "" {
				writeJSON(w, injected.status, map[string]string{})
				return
			}
			writeError(w, injected.status, injected.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type handler func(w http.ResponseWriter, r *http.Request, caller schema.User)

func (backend *Backend) authorized(next handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		for _, user := range []schema.User{Admin, Agent, Customer} {
			if token == TokenFor(user) {
				next(w, r, user)
				return
			}
		}
		writeError(w, http.StatusUnauthorized, "Unauthenticated")
	}
}

func (backend *Backend) login(w http.ResponseWriter, r *http.Request) {
	var credentials schema.Credentials
	if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed request")
		return
	}
	for _, user := range []schema.User{Admin, Agent, Customer} {
		if credentials.Email == user.Email && credentials.Password == "password" {
			writeJSON(w, http.StatusOK, schema.LoginResult{Token: TokenFor(user), User: user})
			return
		}
	}
	writeError(w, http.StatusUnauthorized, "Invalid email or password")
}

func (backend *Backend) listTickets(w http.ResponseWriter, r *http.Request, caller schema.User) {
	query := r.URL.Query()
	backend.mu.Lock()
	defer backend.mu.Unlock()

	visible := []schema.Ticket{}
	for _, ticket := range backend.tickets {
		if caller.Role == schema.RoleCustomer && (ticket.Customer == nil || ticket.Customer.ID != caller.ID) {
			continue
		}
		if status := query.Get("status"); status != "" && string(ticket.Status) != status {
			continue
		}
		if priority := query.Get("priority"); priority != "" && string(ticket.Priority) != priority {
			continue
		}
		if search := strings.ToLower(query.Get("search")); search != "" &&
			!strings.Contains(strings.ToLower(ticket.Subject+" "+ticket.TicketNumber), search) {
			continue
		}
		summary := ticket
		summary.Messages = nil
		visible = append(visible, summary)
	}
	// The paginated envelope, as the production backend sends it.
	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"data": visible, "current_page": 1}})
}

func (backend *Backend) stats(w http.ResponseWriter, _ *http.Request, caller schema.User) {
	if caller.Role == schema.RoleCustomer {
		writeError(w, http.StatusForbidden, "Only staff can view statistics")
		return
	}
	backend.mu.Lock()
	defer backend.mu.Unlock()
	var stats schema.Stats
	for _, ticket := range backend.tickets {
		stats.Total++
		switch ticket.Status {
		case schema.StatusOpen:
			stats.Open++
		case schema.StatusInProgress:
			stats.InProgress++
		case schema.StatusResolved:
			stats.Resolved++
			stats.ResolvedTotal++
		case schema.StatusClosed:
			stats.Closed++
		}
		if ticket.AssignedTo != nil && *ticket.AssignedTo == caller.ID {
			stats.Assigned++
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": stats})
}

func (backend *Backend) createTicket(w http.ResponseWriter, r *http.Request, caller schema.User) {
	if caller.Role != schema.RoleCustomer {
		writeError(w, http.StatusForbidden, "Only customers can create tickets")
		return
	}
	var request schema.NewTicket
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || strings.TrimSpace(request.Subject) == "" {
		writeError(w, http.StatusUnprocessableEntity, "The subject field is required.")
		return
	}
	backend.mu.Lock()
	defer backend.mu.Unlock()
	customer := caller
	now := schema.Timestamp{Time: time.Now().UTC()}
	ticket := schema.Ticket{
		ID:           backend.nextID,
		TicketNumber: fmt.Sprintf("TKT-%04d", backend.nextID),
		Subject:      request.Subject,
		Description:  request.Description,
		Status:       schema.StatusOpen,
		Priority:     request.Priority,
		Customer:     &customer,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	backend.nextID++
	backend.tickets = append(backend.tickets, ticket)
	writeJSON(w, http.StatusCreated, map[string]any{"data": ticket})
}

// lookupLocked resolves {id} and enforces customer ownership. It writes the
// error response and returns -1 on failure. The lock must be held.
func (backend *Backend) lookupLocked(w http.ResponseWriter, r *http.Request, caller schema.User) int {
	id, err := schema.ParseID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Ticket not found")
		return -1
	}
	index := backend.indexLocked(id)
	if index < 0 {
		writeError(w, http.StatusNotFound, "Ticket not found")
		return -1
	}
	ticket := backend.tickets[index]
	if caller.Role == schema.RoleCustomer && (ticket.Customer == nil || ticket.Customer.ID != caller.ID) {
		writeError(w, http.StatusForbidden, "This ticket belongs to another customer")
		return -1
	}
	return index
}

func (backend *Backend) indexLocked(id schema.ID) int {
	return slices.IndexFunc(backend.tickets, func(ticket schema.Ticket) bool { return ticket.ID == id })
}

func (backend *Backend) getTicket(w http.ResponseWriter, r *http.Request, caller schema.User) {
	backend.mu.Lock()
	defer backend.mu.Unlock()
	if index := backend.lookupLocked(w, r, caller); index >= 0 {
		writeJSON(w, http.StatusOK, backend.tickets[index])
	}
}

func (backend *Backend) reply(w http.ResponseWriter, r *http.Request, caller schema.User) {
	var request schema.Reply
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || strings.TrimSpace(request.Message) == "" {
		writeError(w, http.StatusUnprocessableEntity, "The message field is required.")
		return
	}
	if request.IsInternal && caller.Role == schema.RoleCustomer {
		writeError(w, http.StatusForbidden, "Customers cannot add internal notes")
		return
	}
	backend.mu.Lock()
	defer backend.mu.Unlock()
	index := backend.lookupLocked(w, r, caller)
	if index < 0 {
		return
	}
	sender := caller
	ticket := &backend.tickets[index]
	message := schema.Message{
		ID:         schema.ID(len(ticket.Messages) + 100),
		Sender:     &sender,
		Message:    request.Message,
		IsInternal: request.IsInternal,
		CreatedAt:  schema.Timestamp{Time: time.Now().UTC()},
	}
	ticket.Messages = append(ticket.Messages, message)
	writeJSON(w, http.StatusCreated, map[string]any{"data": message})
}

func (backend *Backend) updateTicket(w http.ResponseWriter, r *http.Request, caller schema.User) {
	if caller.Role == schema.RoleCustomer {
		writeError(w, http.StatusForbidden, "Only staff can update tickets")
		return
	}
	var fields map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil || len(fields) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "Nothing to update")
		return
	}
	if _, assigning := fields["assigned_to"]; assigning && caller.Role != schema.RoleAdmin {
		writeError(w, http.StatusForbidden, "Only admins can assign tickets")
		return
	}

	backend.mu.Lock()
	defer backend.mu.Unlock()
	index := backend.lookupLocked(w, r, caller)
	if index < 0 {
		return
	}
	ticket := &backend.tickets[index]
	if raw, ok := fields["status"]; ok {
		var status schema.Status
		if json.Unmarshal(raw, &status) != nil || !status.Valid() {
			writeError(w, http.StatusUnprocessableEntity, "Invalid status")
			return
		}
		ticket.Status = status
	}
	if raw, ok := fields["priority"]; ok {
		var priority schema.Priority
		if json.Unmarshal(raw, &priority) != nil || !priority.Valid() {
			writeError(w, http.StatusUnprocessableEntity, "Invalid priority")
			return
		}
		ticket.Priority = priority
	}
	if raw, ok := fields["assigned_to"]; ok {
		if string(raw) == "null" {
			ticket.AssignedTo, ticket.Agent = nil, nil
		} else {
			var agentID schema.ID
			if err := json.Unmarshal(raw, &agentID); err != nil {
				writeError(w, http.StatusUnprocessableEntity, "Invalid agent")
				return
			}
			agent, found := findAgent(agentID)
			if !found {
				writeError(w, http.StatusUnprocessableEntity, "Unknown agent")
				return
			}
			ticket.AssignedTo, ticket.Agent = &agentID, &agent
		}
	}
	ticket.UpdatedAt = schema.Timestamp{Time: time.Now().UTC()}
	writeJSON(w, http.StatusOK, map[string]any{"data": ticket})
}

func (backend *Backend) deleteTicket(w http.ResponseWriter, r *http.Request, caller schema.User) {
	if caller.Role != schema.RoleAdmin {
		writeError(w, http.StatusForbidden, "Only admins can delete tickets")
		return
	}
	backend.mu.Lock()
	defer backend.mu.Unlock()
	if index := backend.lookupLocked(w, r, caller); index >= 0 {
		backend.tickets = slices.Delete(backend.tickets, index, index+1)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (backend *Backend) agents(w http.ResponseWriter, _ *http.Request, caller schema.User) {
	if caller.Role != schema.RoleAdmin {
		writeError(w, http.StatusForbidden, "Only admins can list agents")
		return
	}
	writeJSON(w, http.StatusOK, []schema.Agent{
		{ID: Agent.ID, Name: Agent.Name, Email: Agent.Email},
		{ID: Support.ID, Name: Support.Name, Email: Support.Email},
	})
}

func (backend *Backend) chatbot(w http.ResponseWriter, r *http.Request, _ schema.User) {
	var request struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.Message == "" {
		writeError(w, http.StatusUnprocessableEntity, "The message field is required.")
		return
	}
	backend.mu.Lock()
	reply := backend.chatReply
	backend.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"message": reply})
}

func findAgent(id schema.ID) (schema.User, bool) {
	for _, agent := range []schema.User{Agent, Support} {
		if agent.ID == id {
			return agent, true
		}
	}
	return schema.User{}, false
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
