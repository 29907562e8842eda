// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ticket

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/smartsupport/smartsupport/lib/schema"
	"github.com/smartsupport/smartsupport/lib/tui"
)

// subjectWidth truncates subjects in the list table.
const subjectWidth = 48

// writeTicketTable writes one row per ticket. Staff see the customer
// column; customers only ever see their own tickets.
func writeTicketTable(out io.Writer, tickets []schema.Ticket, viewer schema.Role, now time.Time) error {
	writer := tabwriter.NewWriter(out, 2, 0, 3, ' ', 0)
	header := "ID\tNUMBER\tSTATUS\tPRIORITY\tSUBJECT\t"
	if viewer.Staff() {
		header += "CUSTOMER\t"
	}
	fmt.Fprintln(writer, header+"AGENT\tUPDATED")

	for _, ticket := range tickets {
		row := fmt.Sprintf("%s\t%s\t%s\t%s\t%s\t",
			ticket.ID,
			ticket.TicketNumber,
			tui.StatusLabel(ticket.Status),
			tui.PriorityLabel(ticket.Priority),
			truncate(tui.PlainText(ticket.Subject), subjectWidth),
		)
		if viewer.Staff() {
			row += tui.SafeText(ticket.Customer.DisplayName("-")) + "\t"
		}
		fmt.Fprintln(writer, row+tui.SafeText(ticket.Agent.DisplayName("Unassigned"))+"\t"+tui.RelativeTime(ticket.UpdatedAt, now))
	}
	return writer.Flush()
}

// writeTicket writes a ticket's fields, description, and thread. The
// messages are expected to be filtered for the viewer already.
func writeTicket(out io.Writer, ticket schema.Ticket, now time.Time) error {
	fmt.Fprintf(out, "%s  %s\n\n", ticket.TicketNumber, tui.PlainText(ticket.Subject))

	writer := tabwriter.NewWriter(out, 2, 0, 2, ' ', 0)
	fmt.Fprintf(writer, "Status:\t%s\n", tui.StatusLabel(ticket.Status))
	fmt.Fprintf(writer, "Priority:\t%s\n", tui.PriorityLabel(ticket.Priority))
	fmt.Fprintf(writer, "Customer:\t%s\n", tui.SafeText(ticket.Customer.DisplayName("-")))
	fmt.Fprintf(writer, "Agent:\t%s\n", tui.SafeText(ticket.Agent.DisplayName("Unassigned")))
	fmt.Fprintf(writer, "Created:\t%s\n", timestamp(ticket.CreatedAt, now))
	fmt.Fprintf(writer, "Updated:\t%s\n", timestamp(ticket.UpdatedAt, now))
	if err := writer.Flush(); err != nil {
		return err
	}

	if description := strings.TrimSpace(tui.PlainText(ticket.Description)); description != "" {
		fmt.Fprintf(out, "\n%s\n", indent(description, "  "))
	}

	fmt.Fprintf(out, "\nMessages (%d):\n", len(ticket.Messages))
	if len(ticket.Messages) == 0 {
		fmt.Fprintln(out, "  No messages yet")
	}
	for _, message := range ticket.Messages {
		heading := tui.SafeText(message.SenderName())
		if badge := message.Badge(); badge != "" {
			heading += " [" + badge + "]"
		}
		if message.IsInternal {
			heading += " (internal note)"
		}
		if when := tui.RelativeTime(message.CreatedAt, now); when != "" {
			heading += " · " + when
		}
		fmt.Fprintf(out, "\n  %s\n%s\n", heading, indent(tui.PlainText(message.Message), "    "))
	}
	return nil
}

func writeStats(out io.Writer, stats schema.Stats, viewer schema.Role) error {
	writer := tabwriter.NewWriter(out, 2, 0, 2, ' ', 0)
	fmt.Fprintf(writer, "Total:\t%d\n", stats.Total)
	fmt.Fprintf(writer, "Open:\t%d\n", stats.Open)
	fmt.Fprintf(writer, "In progress:\t%d\n", stats.InProgress)
	fmt.Fprintf(writer, "Resolved:\t%d\n", stats.Resolved)
	fmt.Fprintf(writer, "Closed:\t%d\n", stats.Closed)
	if viewer.Staff() {
		fmt.Fprintf(writer, "Assigned:\t%d\n", stats.Assigned)
		fmt.Fprintf(writer, "Resolved today:\t%d\n", stats.ResolvedToday)
	}
	return writer.Flush()
}

func writeAgents(out io.Writer, agents []schema.Agent) error {
	writer := tabwriter.NewWriter(out, 2, 0, 3, ' ', 0)
	fmt.Fprintln(writer, "ID\tNAME\tEMAIL")
	for _, agent := range agents {
		fmt.Fprintf(writer, "%s\t%s\t%s\n", agent.ID, tui.SafeText(agent.Name), tui.SafeText(agent.Email))
	}
	return writer.Flush()
}

// timestamp renders "3 hours ago (2026-03-01 09:00 UTC)".
func timestamp(value schema.Timestamp, now time.Time) string {
	if value.IsZero() {
		return "-"
	}
	return fmt.Sprintf("%s (%s)", tui.RelativeTime(value, now), value.Time.Format("2006-01-02 15:04 MST"))
}

func truncate(text string, width int) string {
	runes := []rune(text)
	if len(runes) <= width {
		return text
	}
	return string(runes[:width-1]) + "…"
}

func indent(text, prefix string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
