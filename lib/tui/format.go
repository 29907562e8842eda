// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/microcosm-cc/bluemonday"
	"github.com/xeonx/timeago"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/smartsupport/smartsupport/lib/schema"
)

var (
	// stripPolicy removes every HTML tag. Message bodies are plain text
	// authored in a browser, and some arrive with markup pasted in.
	stripPolicy = bluemonday.StrictPolicy()

	// markupTag matches a well-formed tag of the kind browsers paste
	// into message bodies. Anything else that starts with "<" is text,
	// such as "a<b" or "<username>".
	markupTag = regexp.MustCompile(`(?i)^</?(?:a|b|blockquote|br|code|div|em|font|h[1-6]|hr|i|img|li|ol|p|pre|s|script|small|span|strong|style|sub|sup|table|tbody|td|th|thead|tr|u|ul)(?:\s+[a-z][a-z0-9-]*\s*=\s*(?:"[^"]*"|'[^']*'))*\s*/?>`)
)

// Label turns a wire value such as "in_progress" into "In Progress".
func Label(value string) string {
	if value == "" {
		return ""
	}
	// Casers keep state between calls, so each call gets its own.
	return cases.Title(language.English).String(strings.ReplaceAll(value, "_", " "))
}

// StatusLabel returns the display label for a status.
func StatusLabel(status schema.Status) string { return Label(string(status)) }

// PriorityLabel returns the display label for a priority.
func PriorityLabel(priority schema.Priority) string { return Label(string(priority)) }

// StatusBadge renders a colored status label.
func StatusBadge(status schema.Status, theme Theme) string {
	return lipgloss.NewStyle().Foreground(theme.StatusColor(status)).Bold(true).Render(StatusLabel(status))
}

// PriorityBadge renders a colored priority label.
func PriorityBadge(priority schema.Priority, theme Theme) string {
	return lipgloss.NewStyle().Foreground(theme.PriorityColor(priority)).Render(PriorityLabel(priority))
}

// RelativeTime formats timestamp relative to now ("3 hours ago"). The
// zero timestamp renders as an empty string.
func RelativeTime(timestamp schema.Timestamp, now time.Time) string {
	if timestamp.IsZero() {
		return ""
	}
	return timeago.English.FormatReference(timestamp.Time, now)
}

// PlainText returns user-authored text ready for the terminal. Pasted
// markup tags are removed, entities are decoded so that
// "<b>hi</b> &amp; bye" displays as "hi & bye", and the result goes
// through SafeText. A "<" that does not open a known tag is kept.
func PlainText(input string) string {
	return SafeText(html.UnescapeString(stripPolicy.Sanitize(escapeStrayBrackets(input))))
}

// escapeStrayBrackets entity-encodes every "<" that does not begin a
// markup tag, so the sanitizer treats it as text.
func escapeStrayBrackets(input string) string {
	if !strings.Contains(input, "<") {
		return input
	}
	var builder strings.Builder
	builder.Grow(len(input))
	for rest := input; rest != ""; {
		index := strings.IndexByte(rest, '<')
		if index < 0 {
			builder.WriteString(rest)
			break
		}
		builder.WriteString(rest[:index])
		rest = rest[index:]
		if tag := markupTag.FindString(rest); tag != "" {
			builder.WriteString(tag)
			rest = rest[len(tag):]
			continue
		}
		builder.WriteString("&lt;")
		rest = rest[1:]
	}
	return builder.String()
}

// SafeText removes terminal escape sequences and control characters
// other than newline and tab. Text from other users must pass through
// it before reaching the terminal: a raw ESC lets a message clear the
// screen or write the reader's clipboard.
func SafeText(input string) string {
	return strings.Map(func(r rune) rune {
		if isControl(r) {
			return -1
		}
		return r
	}, ansi.Strip(input))
}

func isControl(r rune) bool {
	switch {
	case r == '\n' || r == '\t':
		return false
	case r < 0x20 || r == 0x7f:
		return true
	case r >= 0x80 && r <= 0x9f:
		return true
	}
	return false
}
