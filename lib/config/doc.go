// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for the SmartSupport
// client.
//
// Configuration starts from [Default] and merges at most one file,
// named by the --config flag or the SMARTSUPPORT_CONFIG environment
// variable. Files are YAML; a .json or .jsonc file may carry comments
// and trailing commas. With no file the defaults apply unchanged, so a
// fresh install talks to http://localhost:8000/api.
//
// The file may contain environment-specific sections (development,
// staging, production) that override base values when
// [Config].Environment matches. SMARTSUPPORT_ENVIRONMENT selects the
// environment before overrides apply. Production defaults seal the
// session file at rest.
//
// After overrides, ${HOME} and ${VAR:-default} patterns are expanded
// in the URL and path fields, and SMARTSUPPORT_API_URL and
// SMARTSUPPORT_SESSION_FILE replace their fields when set.
//
// Key exports:
//
//   - [Config] -- master struct with API, Session, UI
//   - [Default] -- returns a Config with development defaults
//   - [Load] and [LoadFile] -- the entry points for loading
//
// This package depends on no other SmartSupport packages.
package config
