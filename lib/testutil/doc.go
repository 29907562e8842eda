// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for SmartSupport
// packages.
//
// [NewBackend] starts an in-process SmartSupport backend on an
// httptest server, seeded with the three demo accounts, two agents
// and a handful of tickets (one carrying an internal note). It enforces
// the backend's role rules so CLI and client tests can exercise
// forbidden paths, records every request for assertions, and accepts
// injected failures via [Backend.Fail].
//
// The server deliberately returns internal notes to customers on
// GET /tickets/{id}. Clients must filter them, and tests use this to
// prove they do.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
package testutil
