// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// PickerOption is one selectable item.
type PickerOption struct {
	Label string // Display text, also the text the query matches.
	Value string // Value handed back on selection.
}

// Picker is a filterable option list: typed characters narrow the
// options by fuzzy match, up/down move the cursor, and the owner reads
// Selected on enter. The owning model routes keys to it while it is
// open.
type Picker struct {
	Title   string
	Options []PickerOption

	query   string
	visible []Ranked[PickerOption]
	cursor  int
}

// NewPicker returns a picker showing every option.
func NewPicker(title string, options []PickerOption) *Picker {
	picker := &Picker{Title: title, Options: options}
	picker.SetQuery("")
	return picker
}

// Query returns the filter text.
func (picker *Picker) Query() string { return picker.query }

// SetQuery refilters the options and resets the cursor to the best
// match.
func (picker *Picker) SetQuery(query string) {
	picker.query = query
	picker.visible = Rank(picker.Options, func(option PickerOption) string { return option.Label }, query)
	picker.cursor = 0
}

// Type appends text to the query.
func (picker *Picker) Type(text string) { picker.SetQuery(picker.query + text) }

// Backspace removes the last rune of the query.
func (picker *Picker) Backspace() {
	runes := []rune(picker.query)
	if len(runes) == 0 {
		return
	}
	picker.SetQuery(string(runes[:len(runes)-1]))
}

// MoveUp moves the cursor up by one, wrapping to the bottom.
func (picker *Picker) MoveUp() {
	if len(picker.visible) == 0 {
		return
	}
	picker.cursor--
	if picker.cursor < 0 {
		picker.cursor = len(picker.visible) - 1
	}
}

// MoveDown moves the cursor down by one, wrapping to the top.
func (picker *Picker) MoveDown() {
	if len(picker.visible) == 0 {
		return
	}
	picker.cursor++
	if picker.cursor >= len(picker.visible) {
		picker.cursor = 0
	}
}

// Selected returns the option under the cursor. False when the query
// matches nothing.
func (picker *Picker) Selected() (PickerOption, bool) {
	if len(picker.visible) == 0 {
		return PickerOption{}, false
	}
	return picker.visible[picker.cursor].Item, true
}

// Visible returns the options matching the query, best first.
func (picker *Picker) Visible() []PickerOption {
	options := make([]PickerOption, len(picker.visible))
	for index, ranked := range picker.visible {
		options[index] = ranked.Item
	}
	return options
}

// View renders the picker as a bordered box at most width columns
// wide.
func (picker *Picker) View(theme Theme, width int) string {
	innerWidth := width - 4
	if innerWidth < 10 {
		innerWidth = 10
	}

	title := lipgloss.NewStyle().Bold(true).Foreground(theme.HeaderForeground).Render(picker.Title)
	query := lipgloss.NewStyle().Foreground(theme.FaintText).Render("> ") + picker.query

	lines := []string{title, query}
	if len(picker.visible) == 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.FaintText).Italic(true).Render("no matches"))
	}
	for index, ranked := range picker.visible {
		label := ansi.Truncate(highlight(ranked.Item.Label, ranked.Match.Positions, theme), innerWidth-2, "…")
		if index == picker.cursor {
			marker := lipgloss.NewStyle().Foreground(theme.SelectedForeground).Bold(true).Render("▸ ")
			lines = append(lines, lipgloss.NewStyle().Background(theme.SelectedBackground).Render(marker+label))
		} else {
			lines = append(lines, "  "+label)
		}
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.BorderColor).
		Padding(0, 1).
		Width(innerWidth).
		Render(strings.Join(lines, "\n"))
}

// highlight colors the runes of text at positions.
func highlight(text string, positions []int, theme Theme) string {
	if len(positions) == 0 {
		return text
	}
	matched := make(map[int]bool, len(positions))
	for _, position := range positions {
		matched[position] = true
	}
	style := lipgloss.NewStyle().Foreground(theme.MatchForeground).Bold(true)
	var builder strings.Builder
	for index, character := range []rune(text) {
		if matched[index] {
			builder.WriteString(style.Render(string(character)))
		} else {
			builder.WriteRune(character)
		}
	}
	return builder.String()
}
