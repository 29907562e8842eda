// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package ticketui implements the full-screen SmartSupport client.
// Built on bubbletea (Elm architecture), it renders the login view,
// the role dashboards, the ticket view, and the customer's AI
// assistant, driving the controllers in [ticketlist], [ticketdetail],
// and [chatbot] against a [Backend].
//
// Controllers run their requests off the event loop. When their state
// changes they notify the model through the program, and the model
// re-reads their snapshot:
//
//	[Backend] <- controllers <- tea.Cmd goroutines / timers
//	                 |  (OnChange -> Program.Send)
//	             [Model] <- bubbletea event loop
//	                 |
//	          [terminal output]
//
// Background failures reach the status bar through [TUILogHandler].
package ticketui
