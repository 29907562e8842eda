// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/smartsupport/smartsupport/lib/schema"
)

// Theme defines the color palette for SmartSupport's terminal output.
// All colors use lipgloss ANSI 256-color codes for broad terminal
// compatibility.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Selected row.
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// Ticket status colors.
	StatusOpen       lipgloss.Color
	StatusInProgress lipgloss.Color
	StatusResolved   lipgloss.Color
	StatusClosed     lipgloss.Color

	// Ticket priority colors.
	PriorityUrgent lipgloss.Color
	PriorityHigh   lipgloss.Color
	PriorityMedium lipgloss.Color
	PriorityLow    lipgloss.Color

	// Conversation accents.
	BotAccent      lipgloss.Color
	UserAccent     lipgloss.Color
	InternalAccent lipgloss.Color

	// Action feedback.
	SuccessText lipgloss.Color
	ErrorText   lipgloss.Color

	// UI chrome.
	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color
	LinkForeground   lipgloss.Color

	// Fuzzy match highlighting in pickers.
	MatchForeground lipgloss.Color
}

// StatusColor returns the color for a ticket status, FaintText for
// unknown values.
func (theme Theme) StatusColor(status schema.Status) lipgloss.Color {
	switch status {
	case schema.StatusOpen:
		return theme.StatusOpen
	case schema.StatusInProgress:
		return theme.StatusInProgress
	case schema.StatusResolved:
		return theme.StatusResolved
	case schema.StatusClosed:
		return theme.StatusClosed
	default:
		return theme.FaintText
	}
}

// PriorityColor returns the color for a ticket priority, NormalText
// for unknown values.
func (theme Theme) PriorityColor(priority schema.Priority) lipgloss.Color {
	switch priority {
	case schema.PriorityUrgent:
		return theme.PriorityUrgent
	case schema.PriorityHigh:
		return theme.PriorityHigh
	case schema.PriorityMedium:
		return theme.PriorityMedium
	case schema.PriorityLow:
		return theme.PriorityLow
	default:
		return theme.NormalText
	}
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	StatusOpen:       lipgloss.Color("75"),  // blue
	StatusInProgress: lipgloss.Color("220"), // amber
	StatusResolved:   lipgloss.Color("114"), // green
	StatusClosed:     lipgloss.Color("245"), // gray

	PriorityUrgent: lipgloss.Color("196"), // bright red
	PriorityHigh:   lipgloss.Color("208"), // orange
	PriorityMedium: lipgloss.Color("220"), // amber
	PriorityLow:    lipgloss.Color("114"), // green

	BotAccent:      lipgloss.Color("141"), // light purple
	UserAccent:     lipgloss.Color("75"),
	InternalAccent: lipgloss.Color("178"), // gold, for internal notes

	SuccessText: lipgloss.Color("114"),
	ErrorText:   lipgloss.Color("203"),

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),
	LinkForeground:   lipgloss.Color("75"),

	MatchForeground: lipgloss.Color("214"),
}
