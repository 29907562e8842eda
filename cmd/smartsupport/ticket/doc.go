// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package ticket implements the "smartsupport ticket" commands: list,
// stats, show, create, reply, status, priority, assign, delete, and
// agents.
//
// Every command checks the saved session's role before contacting the
// backend, so a customer running an admin command gets a forbidden
// error without a request being made. The backend remains the
// authority; the local check only avoids a pointless round trip and
// gives a clearer message.
//
// Internal notes are filtered for customer sessions whatever the
// backend returns, in both text and --json output.
package ticket
