// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package tui holds the terminal presentation shared by the smartsupport
// CLI and the full-screen client: the color theme, status and priority
// badges, relative timestamps, HTML stripping for user-authored text,
// markdown rendering for chatbot replies, and a fuzzy-filtered option
// picker.
//
// Nothing here talks to the backend. Callers hand in schema values and
// get styled strings back, so the same rendering serves line-oriented
// command output and bubbletea views.
package tui
