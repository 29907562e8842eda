// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ticketui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for every screen. Bindings are
// context-sensitive: the same key may act differently on the dashboard
// and in the ticket view, and text inputs capture printable keys while
// they have focus.
type KeyMap struct {
	// Navigation.
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Open     key.Binding
	Back     key.Binding

	// Login form.
	NextField   key.Binding
	DemoLogin   key.Binding // F1-F3 sign in as the customer, agent, or admin demo account.
	SubmitLogin key.Binding

	// Dashboard filters.
	Search         key.Binding
	CycleStatus    key.Binding
	CyclePriority  key.Binding
	ClearFilter    key.Binding
	Refresh        key.Binding
	NewTicket      key.Binding
	Chat           key.Binding
	Logout         key.Binding
	QuickQuestion  key.Binding // Chat: fill the input with the next suggestion.
	ComposeReply   key.Binding
	ComposeNote    key.Binding // Internal note (agents and admins).
	ChangeStatus   key.Binding
	ChangePriority key.Binding
	AssignAgent    key.Binding
	DeleteTicket   key.Binding
	Confirm        key.Binding
	Decline        key.Binding

	Quit key.Binding
}

// DefaultKeyMap is the built-in key binding set. Vim-style navigation
// (j/k) alongside arrow keys.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("ctrl+u", "pgup"),
		key.WithHelp("C-u", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("ctrl+d", "pgdown"),
		key.WithHelp("C-d", "page down"),
	),
	Open: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "open"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	NextField: key.NewBinding(
		key.WithKeys("tab", "shift+tab"),
		key.WithHelp("tab", "next field"),
	),
	DemoLogin: key.NewBinding(
		key.WithKeys("f1", "f2", "f3"),
		key.WithHelp("F1-F3", "demo login"),
	),
	SubmitLogin: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "sign in"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	CycleStatus: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "status"),
	),
	CyclePriority: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "priority"),
	),
	ClearFilter: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "clear filters"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("R"),
		key.WithHelp("R", "refresh"),
	),
	NewTicket: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new ticket"),
	),
	Chat: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "assistant"),
	),
	Logout: key.NewBinding(
		key.WithKeys("L"),
		key.WithHelp("L", "log out"),
	),
	QuickQuestion: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "suggestion"),
	),
	ComposeReply: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reply"),
	),
	ComposeNote: key.NewBinding(
		key.WithKeys("i"),
		key.WithHelp("i", "internal note"),
	),
	ChangeStatus: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "status"),
	),
	ChangePriority: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "priority"),
	),
	AssignAgent: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "assign"),
	),
	DeleteTicket: key.NewBinding(
		key.WithKeys("D"),
		key.WithHelp("D", "delete"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "yes"),
	),
	Decline: key.NewBinding(
		key.WithKeys("n", "esc"),
		key.WithHelp("n", "no"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
