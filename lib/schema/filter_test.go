// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import "testing"

func TestFilterQueryOmitsEmptyFields(t *testing.T) {
	t.Parallel()

	query := Filter{Status: StatusOpen}.Query()
	if got := query.Encode(); got != "status=open" {
		t.Errorf("Query().Encode() = %q, want %q", got, "status=open")
	}
	if query.Has("priority") || query.Has("search") {
		t.Errorf("query carries unset keys: %v", query)
	}

	full := Filter{Status: StatusClosed, Priority: PriorityLow, Search: "refund please"}.Query()
	if got := full.Encode(); got != "priority=low&search=refund+please&status=closed" {
		t.Errorf("Query().Encode() = %q", got)
	}

	if !(Filter{}).IsEmpty() {
		t.Error("zero Filter should be empty")
	}
	if (Filter{Search: "x"}).IsEmpty() {
		t.Error("Filter with search should not be empty")
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	stats := Summarize([]Ticket{
		{Status: StatusOpen},
		{Status: StatusInProgress},
		{Status: StatusResolved},
		{Status: StatusClosed},
		{Status: StatusOpen},
	})
	if stats.Total != 5 || stats.Open != 3 || stats.InProgress != 1 || stats.Resolved != 1 || stats.Closed != 1 {
		t.Errorf("Summarize = %+v", stats)
	}
}
