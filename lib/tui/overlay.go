// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Dialog renders a bordered confirmation box. The question wraps to
// at most maxWidth columns including the border; hint goes on its own
// line below it.
func Dialog(theme Theme, question, hint string, maxWidth int) string {
	inner := max(min(maxWidth-4, ansi.StringWidth(question)), 10)
	body := lipgloss.NewStyle().Foreground(theme.ErrorText).Bold(true).Render(ansi.Wrap(question, inner, " "))
	if hint != "" {
		body += "\n\n" + lipgloss.NewStyle().Foreground(theme.FaintText).Render(hint)
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.ErrorText).
		Padding(0, 1).
		Render(body)
}

// Center splices box over the middle of a width-column view. Text on
// either side of the box keeps its styling. A view shorter than the
// box is padded with blank lines.
func Center(view, box string, width int) string {
	boxLines := strings.Split(box, "\n")
	viewLines := strings.Split(view, "\n")
	for len(viewLines) < len(boxLines) {
		viewLines = append(viewLines, "")
	}

	boxWidth := 0
	for _, line := range boxLines {
		boxWidth = max(boxWidth, ansi.StringWidth(line))
	}
	left := max((width-boxWidth)/2, 0)
	top := (len(viewLines) - len(boxLines)) / 2

	for index, boxLine := range boxLines {
		viewLines[top+index] = splice(viewLines[top+index], boxLine, left, boxWidth)
	}
	return strings.Join(viewLines, "\n")
}

// splice overwrites columns [left, left+width) of line with overlay.
func splice(line, overlay string, left, width int) string {
	var result strings.Builder
	prefix := ansi.Truncate(line, left, "")
	result.WriteString(prefix)
	if gap := left - ansi.StringWidth(prefix); gap > 0 {
		result.WriteString(strings.Repeat(" ", gap))
	}
	result.WriteString("\x1b[0m")
	result.WriteString(overlay)
	if pad := width - ansi.StringWidth(overlay); pad > 0 {
		result.WriteString(strings.Repeat(" ", pad))
	}
	result.WriteString("\x1b[0m")
	if end := left + width; end < ansi.StringWidth(line) {
		result.WriteString(ansi.TruncateLeft(line, end, ""))
	}
	return result.String()
}
