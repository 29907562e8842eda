// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ticketui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/smartsupport/smartsupport/lib/apiclient"
	"github.com/smartsupport/smartsupport/lib/schema"
	"github.com/smartsupport/smartsupport/lib/ticketlist"
	"github.com/smartsupport/smartsupport/lib/tui"
)

// CreateFailedMessage is shown when the backend rejects a new ticket
// without saying why.
const CreateFailedMessage = "Failed to create ticket"

// Filter cycles start from "any" (the zero value).
var (
	statusCycle   = []schema.Status{"", schema.StatusOpen, schema.StatusInProgress, schema.StatusResolved, schema.StatusClosed}
	priorityCycle = []schema.Priority{"", schema.PriorityLow, schema.PriorityMedium, schema.PriorityHigh, schema.PriorityUrgent}
)

// next returns the element after current in cycle, wrapping around.
func next[T comparable](cycle []T, current T) T {
	for index, value := range cycle {
		if value == current {
			return cycle[(index+1)%len(cycle)]
		}
	}
	return cycle[0]
}

type dashboardState struct {
	list      *ticketlist.Controller
	snapshot  ticketlist.Snapshot
	cursor    int
	search    textinput.Model
	searching bool
	create    *createForm
}

func newDashboardState() dashboardState {
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "Search tickets..."
	return dashboardState{search: search, snapshot: ticketlist.Snapshot{Loading: true}}
}

// createForm is the customer's new-ticket form.
type createForm struct {
	subject     textinput.Model
	description textinput.Model
	priority    schema.Priority
	field       int // 0 subject, 1 description, 2 priority
	busy        bool
	err         string
}

func newCreateForm() *createForm {
	subject := textinput.New()
	subject.Prompt = ""
	subject.Placeholder = "Brief description of your issue"
	description := textinput.New()
	description.Prompt = ""
	description.Placeholder = "Detailed description of your issue"
	form := &createForm{subject: subject, description: description, priority: schema.DefaultPriority}
	return form
}

func (form *createForm) focus() tea.Cmd {
	form.subject.Blur()
	form.description.Blur()
	switch form.field {
	case 0:
		return form.subject.Focus()
	case 1:
		return form.description.Focus()
	}
	return nil
}

type ticketCreatedMsg struct {
	controller *ticketlist.Controller
	ticket     schema.Ticket
	err        error
}

// enterDashboard starts a fresh list controller for the signed-in role
// and issues the initial load.
func (model Model) enterDashboard() (Model, tea.Cmd) {
	if model.dashboard.list != nil {
		model.dashboard.list.Close()
	}
	model.dashboard = newDashboardState()
	model.dashboard.search.Width = max(model.width/3, 10)
	model.detail = newDetailState()
	model.resize()

	sender := model.sender
	var list *ticketlist.Controller
	list = ticketlist.New(ticketlist.Config{
		Source:      model.backend,
		Clock:       model.clock,
		Logger:      model.logger.With("view", "dashboard"),
		SearchDelay: model.searchDelay,
		StatsMode:   ticketlist.StatsModeFor(model.user.Role),
		OnChange: func(ticketlist.Snapshot) {
			sender.send(listChangedMsg{controller: list})
		},
	})
	model.dashboard.list = list
	model.screen = ScreenDashboard

	return model, model.perform(func(ctx context.Context) tea.Msg {
		_ = list.Load(ctx)
		return listChangedMsg{controller: list}
	})
}

// returnToDashboard leaves the ticket view, keeping the filter, and
// refetches so edits made there show in the list.
func (model Model) returnToDashboard() (Model, tea.Cmd) {
	model.detail = newDetailState()
	model.screen = ScreenDashboard
	list := model.dashboard.list
	if list == nil {
		return model.enterDashboard()
	}
	return model, model.refreshList(list)
}

func (model Model) refreshList(list *ticketlist.Controller) tea.Cmd {
	return model.perform(func(ctx context.Context) tea.Msg {
		_ = list.Refresh(ctx)
		return listChangedMsg{controller: list}
	})
}

func (model *Model) refreshDashboard() {
	if model.dashboard.list == nil {
		return
	}
	model.dashboard.snapshot = model.dashboard.list.Snapshot()
	count := len(model.dashboard.snapshot.Tickets)
	model.dashboard.cursor = max(min(model.dashboard.cursor, count-1), 0)
}

// selectedTicket returns the ticket under the cursor.
func (model Model) selectedTicket() (schema.Ticket, bool) {
	tickets := model.dashboard.snapshot.Tickets
	if model.dashboard.cursor < 0 || model.dashboard.cursor >= len(tickets) {
		return schema.Ticket{}, false
	}
	return tickets[model.dashboard.cursor], true
}

func (model Model) isCustomer() bool {
	return model.user != nil && model.user.Role == schema.RoleCustomer
}

func (model Model) handleDashboardKeys(message tea.KeyMsg) (Model, tea.Cmd) {
	if model.dashboard.create != nil {
		return model.handleCreateKeys(message)
	}
	if model.dashboard.searching {
		return model.handleSearchKeys(message)
	}
	list := model.dashboard.list
	keys := model.keys

	switch {
	case key.Matches(message, keys.Quit):
		return model, tea.Quit

	case key.Matches(message, keys.Up):
		model.dashboard.cursor = max(model.dashboard.cursor-1, 0)

	case key.Matches(message, keys.Down):
		model.dashboard.cursor = min(model.dashboard.cursor+1, max(len(model.dashboard.snapshot.Tickets)-1, 0))

	case key.Matches(message, keys.Open):
		if ticket, ok := model.selectedTicket(); ok {
			return model.openDetail(ticket.ID)
		}

	case key.Matches(message, keys.Search):
		model.dashboard.searching = true
		return model, model.dashboard.search.Focus()

	case key.Matches(message, keys.CycleStatus):
		list.SetStatus(next(statusCycle, model.dashboard.snapshot.Filter.Status))
		model.refreshDashboard()

	case key.Matches(message, keys.CyclePriority):
		list.SetPriority(next(priorityCycle, model.dashboard.snapshot.Filter.Priority))
		model.refreshDashboard()

	case key.Matches(message, keys.ClearFilter):
		model.dashboard.search.SetValue("")
		list.SetFilter(schema.Filter{})
		model.refreshDashboard()

	case key.Matches(message, keys.Refresh):
		return model, model.refreshList(list)

	case key.Matches(message, keys.NewTicket):
		if model.isCustomer() {
			model.dashboard.create = newCreateForm()
			return model, model.dashboard.create.focus()
		}

	case key.Matches(message, keys.Chat):
		if model.isCustomer() {
			return model.navigate(schema.RouteCustomerChatbot)
		}

	case key.Matches(message, keys.Logout):
		return model.logout()
	}
	return model, nil
}

// handleSearchKeys routes typing to the search box. Every edit goes to
// the controller, which debounces the request.
func (model Model) handleSearchKeys(message tea.KeyMsg) (Model, tea.Cmd) {
	if message.Type == tea.KeyEsc || message.Type == tea.KeyEnter {
		model.dashboard.searching = false
		model.dashboard.search.Blur()
		return model, nil
	}
	before := model.dashboard.search.Value()
	var command tea.Cmd
	model.dashboard.search, command = model.dashboard.search.Update(message)
	if value := model.dashboard.search.Value(); value != before {
		model.dashboard.list.SetSearch(value)
		model.refreshDashboard()
	}
	return model, command
}

func (model Model) handleCreateKeys(message tea.KeyMsg) (Model, tea.Cmd) {
	form := model.dashboard.create
	if form.busy {
		return model, nil
	}
	switch message.Type {
	case tea.KeyEsc:
		model.dashboard.create = nil
		return model, nil

	case tea.KeyTab, tea.KeyShiftTab:
		if message.Type == tea.KeyTab {
			form.field = (form.field + 1) % 3
		} else {
			form.field = (form.field + 2) % 3
		}
		return model, form.focus()

	case tea.KeyEnter:
		return model.submitCreate()
	}

	if form.field == 2 {
		switch message.String() {
		case " ", "right", "l":
			form.priority = next(priorityCycle[1:], form.priority)
		case "left", "h":
			cycle := priorityCycle[1:]
			for index, value := range cycle {
				if value == form.priority {
					form.priority = cycle[(index+len(cycle)-1)%len(cycle)]
					break
				}
			}
		}
		return model, nil
	}

	var command tea.Cmd
	if form.field == 0 {
		form.subject, command = form.subject.Update(message)
	} else {
		form.description, command = form.description.Update(message)
	}
	return model, command
}

func (model Model) submitCreate() (Model, tea.Cmd) {
	form := model.dashboard.create
	ticket := schema.NewTicket{
		Subject:     form.subject.Value(),
		Description: form.description.Value(),
		Priority:    form.priority,
	}
	if err := ticket.Validate(); err != nil {
		form.err = sentence(err.Error())
		return model, nil
	}
	form.busy = true
	form.err = ""
	list := model.dashboard.list
	return model, model.perform(func(ctx context.Context) tea.Msg {
		created, err := list.Create(ctx, ticket)
		return ticketCreatedMsg{controller: list, ticket: created, err: err}
	})
}

func (model Model) handleTicketCreated(message ticketCreatedMsg) (Model, tea.Cmd) {
	if message.controller != model.dashboard.list || model.dashboard.create == nil {
		return model, nil
	}
	form := model.dashboard.create
	form.busy = false
	// A ticket that was created but whose list refresh failed still
	// counts as created.
	if message.err != nil && message.ticket.ID == 0 {
		form.err = apiclient.Message(message.err, CreateFailedMessage)
		return model, nil
	}
	model.dashboard.create = nil
	model.refreshDashboard()
	text := "Ticket created successfully!"
	if message.ticket.TicketNumber != "" {
		text = fmt.Sprintf("Ticket %s created successfully!", message.ticket.TicketNumber)
	}
	return model.showStatus(text, slog.LevelInfo)
}

func (model Model) dashboardBindings() []key.Binding {
	keys := model.keys
	if model.dashboard.searching {
		return []key.Binding{keys.Back}
	}
	bindings := []key.Binding{keys.Up, keys.Down, keys.Open, keys.Search, keys.CycleStatus, keys.CyclePriority, keys.ClearFilter}
	if model.isCustomer() {
		bindings = append(bindings, keys.NewTicket, keys.Chat)
	}
	return append(bindings, keys.Refresh, keys.Logout)
}

func (model Model) dashboardView() string {
	theme := model.theme
	snapshot := model.dashboard.snapshot
	faint := lipgloss.NewStyle().Foreground(theme.FaintText)

	sections := []string{model.statsView(), model.filterView()}

	if snapshot.Err != "" {
		sections = append(sections, lipgloss.NewStyle().Foreground(theme.ErrorText).Render(snapshot.Err))
	}

	switch {
	case snapshot.Loading:
		sections = append(sections, faint.Render("Loading..."))
	case snapshot.Empty == ticketlist.EmptyNoMatches:
		sections = append(sections, faint.Render("No tickets match the current filters. Press x to clear them."))
	case snapshot.Empty == ticketlist.EmptyNoTickets:
		if model.isCustomer() {
			sections = append(sections, faint.Render("No tickets yet. Create your first ticket or chat with our AI assistant!"))
		} else {
			sections = append(sections, faint.Render("No tickets found"))
		}
	default:
		sections = append(sections, model.ticketTable())
	}

	if model.dashboard.create != nil {
		sections = append(sections, model.createFormView())
	}
	return strings.Join(sections, "\n\n")
}

// statsView renders the role's counters the way each dashboard labels
// them.
func (model Model) statsView() string {
	stats := model.dashboard.snapshot.Stats
	type counter struct {
		label string
		value int
	}
	var counters []counter
	switch {
	case model.isCustomer():
		counters = []counter{{"Total Tickets", stats.Total}, {"Open", stats.Open}, {"Resolved", stats.Resolved}}
	case model.user != nil && model.user.Role == schema.RoleAgent:
		counters = []counter{{"Assigned Tickets", stats.Assigned}, {"In Progress", stats.InProgress}, {"Resolved Today", stats.ResolvedToday}, {"Total Resolved", stats.ResolvedTotal}}
	default:
		counters = []counter{{"Total Tickets", stats.Total}, {"Open", stats.Open}, {"In Progress", stats.InProgress}, {"Resolved", stats.Resolved}, {"Closed", stats.Closed}}
	}
	parts := make([]string, len(counters))
	for index, counter := range counters {
		parts[index] = lipgloss.NewStyle().Foreground(model.theme.FaintText).Render(counter.label+" ") +
			lipgloss.NewStyle().Bold(true).Foreground(model.theme.HeaderForeground).Render(fmt.Sprint(counter.value))
	}
	return strings.Join(parts, "   ")
}

func (model Model) filterView() string {
	filter := model.dashboard.snapshot.Filter
	faint := lipgloss.NewStyle().Foreground(model.theme.FaintText)

	status := "All Status"
	if filter.Status != "" {
		status = tui.StatusLabel(filter.Status)
	}
	priority := "All Priority"
	if filter.Priority != "" {
		priority = tui.PriorityLabel(filter.Priority)
	}
	line := faint.Render("Status: ") + status + faint.Render("   Priority: ") + priority + "   "
	if model.dashboard.searching || model.dashboard.search.Value() != "" {
		line += model.dashboard.search.View()
	}
	if model.dashboard.snapshot.FilterLoading {
		line += faint.Render("   filtering...")
	}
	return line
}

// ticketTable renders one row per ticket with the columns the role's
// dashboard shows.
func (model Model) ticketTable() string {
	theme := model.theme
	now := model.clock.Now()
	staff := model.user != nil && model.user.Role.Staff()
	admin := model.user != nil && model.user.Role == schema.RoleAdmin

	subjectWidth := max(model.width-70, 16)
	var rows []string
	for index, ticket := range model.dashboard.snapshot.Tickets {
		columns := []string{
			pad(ticket.TicketNumber, 12),
			pad(truncate(tui.PlainText(ticket.Subject), subjectWidth), subjectWidth),
		}
		if staff {
			columns = append(columns, pad(truncate(tui.SafeText(ticket.Customer.DisplayName("N/A")), 16), 16))
		}
		if admin {
			columns = append(columns, pad(truncate(tui.SafeText(ticket.Agent.DisplayName("Unassigned")), 16), 16))
		}
		columns = append(columns,
			pad(tui.StatusBadge(ticket.Status, theme), 12),
			pad(tui.PriorityBadge(ticket.Priority, theme), 8),
			lipgloss.NewStyle().Foreground(theme.FaintText).Render(tui.RelativeTime(ticket.CreatedAt, now)),
		)
		row := strings.Join(columns, " ")
		if index == model.dashboard.cursor {
			row = lipgloss.NewStyle().Background(theme.SelectedBackground).Render("▸ " + row)
		} else {
			row = "  " + row
		}
		rows = append(rows, truncate(row, model.width))
	}
	return strings.Join(rows, "\n")
}

func (model Model) createFormView() string {
	theme := model.theme
	form := model.dashboard.create
	label := func(index int, text string) string {
		style := lipgloss.NewStyle().Width(13).Foreground(theme.FaintText)
		if form.field == index {
			style = style.Foreground(theme.HeaderForeground).Bold(true)
		}
		return style.Render(text)
	}
	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(theme.HeaderForeground).Render("Create New Ticket"),
		label(0, "Subject") + form.subject.View(),
		label(1, "Description") + form.description.View(),
		label(2, "Priority") + "‹ " + tui.PriorityBadge(form.priority, theme) + " ›",
	}
	switch {
	case form.busy:
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.FaintText).Render("Creating..."))
	case form.err != "":
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.ErrorText).Render(form.err))
	}
	lines = append(lines, lipgloss.NewStyle().Foreground(theme.HelpText).Render("tab next field  ←/→ priority  enter create  esc cancel"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.BorderColor).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

// sentence capitalizes the first letter of an error message for display.
func sentence(text string) string {
	if text == "" {
		return text
	}
	return strings.ToUpper(text[:1]) + text[1:]
}

// pad right-pads styled text to width display columns.
func pad(text string, width int) string {
	return text + strings.Repeat(" ", max(width-ansi.StringWidth(text), 0))
}

// truncate shortens styled text to width display columns.
func truncate(text string, width int) string {
	if width <= 0 {
		return text
	}
	return ansi.Truncate(text, width, "…")
}
