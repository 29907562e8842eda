// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import "fmt"

// Role determines which views a session may open and which backend
// actions it is expected to perform. The backend enforces authorization
// on every request; client-side role checks only pick the right view.
type Role string

const (
	// RoleCustomer files tickets, replies to them, and uses the chatbot.
	RoleCustomer Role = "customer"

	// RoleAgent works an assigned queue: replies (including internal
	// notes) and status/priority changes.
	RoleAgent Role = "agent"

	// RoleAdmin sees every ticket and additionally assigns and deletes.
	RoleAdmin Role = "admin"
)

// Roles lists every valid role in display order.
var Roles = []Role{RoleCustomer, RoleAgent, RoleAdmin}

// Valid reports whether the role is one of the three known roles.
func (role Role) Valid() bool {
	switch role {
	case RoleCustomer, RoleAgent, RoleAdmin:
		return true
	}
	return false
}

// ParseRole validates a role string.
func ParseRole(value string) (Role, error) {
	role := Role(value)
	if !role.Valid() {
		return "", fmt.Errorf("unknown role %q (expected customer, agent, or admin)", value)
	}
	return role, nil
}

// SeesInternalNotes reports whether viewers with this role may read
// messages flagged is_internal. Customers never do.
func (role Role) SeesInternalNotes() bool {
	return role == RoleAgent || role == RoleAdmin
}

// Staff reports whether the role belongs to the support organization
// (agent or admin) rather than to a customer.
func (role Role) Staff() bool {
	return role == RoleAgent || role == RoleAdmin
}

// LandingRoute returns the dashboard a freshly logged-in user of this
// role is sent to. Unknown roles land on the customer dashboard.
func (role Role) LandingRoute() Route {
	switch role {
	case RoleAdmin:
		return RouteAdminDashboard
	case RoleAgent:
		return RouteAgentDashboard
	default:
		return RouteCustomerDashboard
	}
}

// Route names a client view. The terminal UI maps routes to screens;
// the CLI maps them to guidance messages.
type Route string

const (
	RouteHome              Route = "/"
	RouteLogin             Route = "/login"
	RouteCustomerDashboard Route = "/customer/dashboard"
	RouteCustomerChatbot   Route = "/customer/chatbot"
	RouteAgentDashboard    Route = "/agent/dashboard"
	RouteAdminDashboard    Route = "/admin/dashboard"
)
