// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Scrollbar renders a one-column bar height rows tall for a window of
// visible lines at offset into total lines. The thumb spans the whole
// track when everything fits.
func Scrollbar(theme Theme, height, total, visible, offset int) string {
	if height <= 0 {
		return ""
	}
	track := lipgloss.NewStyle().Foreground(theme.BorderColor).Render("│")
	thumb := lipgloss.NewStyle().Foreground(theme.StatusInProgress).Render("┃")

	thumbSize, thumbStart := height, 0
	if total > visible && visible > 0 {
		thumbSize = max(height*visible/total, 1)
		if scrollable := total - visible; scrollable > 0 {
			thumbStart = min(offset*(height-thumbSize)/scrollable, height-thumbSize)
		}
	}

	rows := make([]string, height)
	for row := range rows {
		rows[row] = track
		if row >= thumbStart && row < thumbStart+thumbSize {
			rows[row] = thumb
		}
	}
	return strings.Join(rows, "\n")
}
