// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports the build version of the smartsupport
// binary.
//
// GitCommit, GitDirty, and BuildTime are injected at build time via
// -ldflags, for example:
//
//	go build -ldflags "-X github.com/smartsupport/smartsupport/lib/version.GitCommit=$(git rev-parse --short HEAD)" ./cmd/smartsupport
//
// They default to "unknown" during development builds and test runs.
package version

import (
	"fmt"
	"runtime"
)

// These variables are set via -ldflags at build time.
var (
	// GitCommit is the short git SHA of the build.
	GitCommit = "unknown"

	// GitDirty indicates whether there were uncommitted changes.
	GitDirty = "false"

	// BuildTime is the UTC timestamp of the build.
	BuildTime = "unknown"

	// Version is the semantic version. This is set manually for releases.
	Version = "0.1.0-dev"
)

// Info returns a formatted version string suitable for --version output.
func Info() string {
	dirty := ""
	if GitDirty == "true" {
		dirty = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s, %s)", Version, GitCommit, dirty, BuildTime)
}

// Full returns detailed version information including Go version.
func Full() string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s/%s",
		Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// UserAgent is the User-Agent header sent to the backend when the
// configuration does not set one.
func UserAgent() string {
	return fmt.Sprintf("smartsupport/%s (%s/%s)", Version, runtime.GOOS, runtime.GOARCH)
}
