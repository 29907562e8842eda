// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestCenter(t *testing.T) {
	t.Parallel()

	view := strings.Join([]string{
		"aaaaaaaaaa",
		"bbbbbbbbbb",
		"cccccccccc",
	}, "\n")
	got := strings.Split(ansi.Strip(Center(view, "XX", 10)), "\n")
	want := []string{"aaaaaaaaaa", "bbbbXXbbbb", "cccccccccc"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCenterPadsShortViews(t *testing.T) {
	t.Parallel()

	got := ansi.Strip(Center("top", "1\n2\n3", 3))
	lines := strings.Split(got, "\n")
	if len(lines) != 3 || lines[0] != "t1p" || lines[1] != " 2" || lines[2] != " 3" {
		t.Errorf("Center = %q", got)
	}
}

func TestDialog(t *testing.T) {
	t.Parallel()

	box := ansi.Strip(Dialog(DefaultTheme, "Delete this ticket?", "[y/n]", 80))
	for _, want := range []string{"Delete this ticket?", "[y/n]", "╭", "╯"} {
		if !strings.Contains(box, want) {
			t.Errorf("dialog missing %q:\n%s", want, box)
		}
	}
	for _, line := range strings.Split(Dialog(DefaultTheme, strings.Repeat("word ", 40), "", 40), "\n") {
		if width := ansi.StringWidth(line); width > 40 {
			t.Errorf("line is %d columns wide, want at most 40: %q", width, ansi.Strip(line))
		}
	}
}

func TestScrollbar(t *testing.T) {
	t.Parallel()

	count := func(bar string) int { return strings.Count(ansi.Strip(bar), "┃") }
	if got := count(Scrollbar(DefaultTheme, 10, 5, 10, 0)); got != 10 {
		t.Errorf("fitting content thumb = %d rows, want 10", got)
	}
	if got := count(Scrollbar(DefaultTheme, 10, 100, 10, 0)); got != 1 {
		t.Errorf("long content thumb = %d rows, want 1", got)
	}
	bottom := strings.Split(ansi.Strip(Scrollbar(DefaultTheme, 10, 100, 10, 90)), "\n")
	if bottom[9] != "┃" {
		t.Errorf("thumb at full offset should reach the last row: %q", bottom)
	}
	if Scrollbar(DefaultTheme, 0, 1, 1, 0) != "" {
		t.Error("zero height should render nothing")
	}
}
