// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	info := Info()
	if !strings.HasPrefix(info, Version+" (") {
		t.Errorf("Info() = %q, want %q prefix", info, Version+" (")
	}
	if strings.Contains(info, "-dirty") != (GitDirty == "true") {
		t.Errorf("Info() = %q disagrees with GitDirty=%s", info, GitDirty)
	}
}

func TestFullIncludesInfo(t *testing.T) {
	if full := Full(); !strings.HasPrefix(full, Info()) || !strings.Contains(full, "Go: ") {
		t.Errorf("Full() = %q", full)
	}
}

func TestUserAgent(t *testing.T) {
	if agent := UserAgent(); !strings.HasPrefix(agent, "smartsupport/"+Version+" (") {
		t.Errorf("UserAgent() = %q", agent)
	}
}
