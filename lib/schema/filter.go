// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import "net/url"

// Filter is the transient ticket-list filter. An empty field means "no
// constraint" and is never sent to the backend.
type Filter struct {
	Status   Status   `json:"status,omitempty"`
	Priority Priority `json:"priority,omitempty"`
	Search   string   `json:"search,omitempty"`
}

// IsEmpty reports whether no field constrains the list.
func (filter Filter) IsEmpty() bool {
	return filter.Status == "" && filter.Priority == "" && filter.Search == ""
}

// Query encodes the non-empty fields as GET /tickets query parameters.
func (filter Filter) Query() url.Values {
	values := url.Values{}
	if filter.Status != "" {
		values.Set("status", string(filter.Status))
	}
	if filter.Priority != "" {
		values.Set("priority", string(filter.Priority))
	}
	if filter.Search != "" {
		values.Set("search", filter.Search)
	}
	return values
}
