// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package schema defines the SmartSupport wire types shared by the API
// client, the controllers, the CLI, and the terminal UI. Go structs
// define the JSON bodies exchanged with the SmartSupport REST backend.
//
// Key types:
//
//   - [User], [Agent], [Role] -- identity and the role that decides which
//     views and actions are available
//   - [Ticket], [Message], [Status], [Priority] -- support tickets and
//     their conversation threads
//   - [Filter] -- transient list filter state and its query encoding
//   - [Stats] -- dashboard counters for both stat shapes the backend
//     returns
//   - [NewTicket], [Reply], [TicketUpdate] -- mutation request bodies
//
// [ID] and [Timestamp] tolerate the loose encodings the backend emits
// (quoted numbers, several date layouts) so that a single odd field
// never discards an otherwise valid ticket.
//
// This package depends on no other SmartSupport packages.
package schema
