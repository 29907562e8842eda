// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the smartsupport
// CLI.
//
// The central type is [Command], which represents a named subcommand with
// optional nested [Command.Subcommands], a parameter struct whose tagged
// fields become pflag flags ([BindFlags]), and a Run function. Commands
// are assembled into a tree in cmd/smartsupport/commands and dispatched
// via [Command.Execute], which handles flag parsing, subcommand routing,
// and structured help output with examples.
//
// When a user types an unknown subcommand or flag, the framework computes
// Levenshtein edit distance against all known names and suggests the
// closest match (threshold: distance <= 3).
//
// Backend-facing commands embed [ConnectionParams] and call
// [ConnectionParams.Connect], which layers the configuration
// (lib/config), opens the session store (lib/session), and builds the
// API client (lib/apiclient). Failures are returned as [ToolError]
// values whose [ErrorCategory] decides the exit code; [Categorize]
// derives the category from session guard and backend errors.
package cli
