// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package schema

// Stats holds dashboard counters. GET /tickets/stats returns one of two
// shapes depending on the caller's role; both decode into Stats and the
// fields a shape does not carry stay zero.
//
// Organization-wide (admin): Total, Open, InProgress, Resolved, Closed.
// Own queue (agent): Assigned, InProgress, ResolvedToday, ResolvedTotal.
type Stats struct {
	Total      int `json:"total"`
	Open       int `json:"open"`
	InProgress int `json:"in_progress"`
	Resolved   int `json:"resolved"`
	Closed     int `json:"closed"`

	Assigned      int `json:"assigned"`
	ResolvedToday int `json:"resolved_today"`
	ResolvedTotal int `json:"resolved_total"`
}

// Summarize computes customer-dashboard counters from a ticket list.
// Customers have no stats endpoint, so the dashboard counts locally:
// Open includes in-progress tickets ("still being worked on").
func Summarize(tickets []Ticket) Stats {
	stats := Stats{Total: len(tickets)}
	for _, ticket := range tickets {
		switch ticket.Status {
		case StatusOpen:
			stats.Open++
		case StatusInProgress:
			stats.Open++
			stats.InProgress++
		case StatusResolved:
			stats.Resolved++
		case StatusClosed:
			stats.Closed++
		}
	}
	return stats
}
