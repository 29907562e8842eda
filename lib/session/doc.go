// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package session holds the client-local authentication state: an
// opaque bearer token and the logged-in user's profile, persisted under
// the two keys "token" and "user".
//
// A [Store] is an explicit object handed to every component that needs
// the session (the API client reads the token through it, views guard
// on it). It is the only mutation surface: Save after a successful
// login, Clear on logout or when a guard finds a half-present pair.
// Token and user are written and cleared together; Load never reports
// a user without a token.
//
// Storage backends:
//
//   - [FileStorage] -- a 0600 JSON file under the user's config
//     directory, replaced atomically on every write
//   - [SealedStorage] -- the same file encrypted with an age scrypt
//     passphrase
//   - [MemoryStorage] -- process-local, for tests and ephemeral runs
//
// Role guards ([Store.Require]) choose which view to show. They are not
// a security boundary: the backend authorizes every request.
package session
