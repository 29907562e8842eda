// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package account implements the session commands: login, logout,
// whoami, and health. They read and write the local session file and
// are the only commands that work without a signed-in user.
package account
