// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ticketui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/smartsupport/smartsupport/lib/schema"
	"github.com/smartsupport/smartsupport/lib/ticketdetail"
	"github.com/smartsupport/smartsupport/lib/tui"
)

// pickerKind says what an open picker edits.
type pickerKind int

const (
	pickStatus pickerKind = iota + 1
	pickPriority
	pickAgent
)

// unassignValue is the agent picker value that clears the assignment.
const unassignValue = "unassign"

type detailState struct {
	controller *ticketdetail.Controller
	snapshot   ticketdetail.Snapshot
	viewport   viewport.Model

	compose   textinput.Model
	composing bool
	internal  bool

	picker     *tui.Picker
	pickerKind pickerKind

	confirmingDelete bool

	// flash is local feedback for input the controller rejected without
	// a request (a blank reply).
	flash string
}

func newDetailState() detailState {
	compose := textinput.New()
	compose.Placeholder = "Type your reply..."
	return detailState{viewport: viewport.New(0, 0), compose: compose, snapshot: ticketdetail.Snapshot{Loading: true}}
}

// detailActionMsg reports a finished ticket action.
type detailActionMsg struct {
	controller *ticketdetail.Controller
	err        error
}

// openDetail switches to the ticket view and loads the ticket (and the
// agent list for admins).
func (model Model) openDetail(id schema.ID) (Model, tea.Cmd) {
	viewer := model.user.Role
	sender := model.sender
	var controller *ticketdetail.Controller
	controller = ticketdetail.New(ticketdetail.Config{
		Source:   model.backend,
		TicketID: id,
		Viewer:   viewer,
		Logger:   model.logger,
		OnChange: func(ticketdetail.Snapshot) {
			sender.send(detailChangedMsg{controller: controller})
		},
	})

	model.detail = newDetailState()
	model.detail.controller = controller
	model.screen = ScreenDetail
	model.resize()

	commands := []tea.Cmd{model.perform(func(ctx context.Context) tea.Msg {
		_ = controller.Load(ctx)
		return detailChangedMsg{controller: controller}
	})}
	if viewer == schema.RoleAdmin {
		commands = append(commands, model.perform(func(ctx context.Context) tea.Msg {
			_ = controller.LoadAgents(ctx)
			return detailChangedMsg{controller: controller}
		}))
	}
	return model, tea.Batch(commands...)
}

// refreshDetail re-reads the controller. A deleted ticket sends the
// viewer back to their dashboard.
func (model Model) refreshDetail() (Model, tea.Cmd) {
	model.detail.snapshot = model.detail.controller.Snapshot()
	if model.detail.snapshot.Deleted {
		updated, refresh := model.returnToDashboard()
		updated, fade := updated.showStatus("Ticket deleted", slog.LevelInfo)
		return updated, tea.Batch(refresh, fade)
	}
	model.renderDetailBody()
	return model, nil
}

// act runs a controller operation and reports back.
func (model Model) act(operation func(ctx context.Context, controller *ticketdetail.Controller) error) tea.Cmd {
	controller := model.detail.controller
	return model.perform(func(ctx context.Context) tea.Msg {
		return detailActionMsg{controller: controller, err: operation(ctx, controller)}
	})
}

func (model Model) handleDetailAction(message detailActionMsg) (Model, tea.Cmd) {
	if message.controller != model.detail.controller {
		return model, nil
	}
	switch {
	case errors.Is(message.err, ticketdetail.ErrEmptyReply):
		model.detail.flash = "Please enter a message"
	case errors.Is(message.err, ticketdetail.ErrInternalNotAllowed),
		errors.Is(message.err, ticketdetail.ErrNotPermitted):
		model.detail.flash = sentence(message.err.Error())
	case message.err == nil && !model.detail.controller.Snapshot().Deleted:
		model.detail.composing = false
		model.detail.compose.Blur()
		model.detail.compose.SetValue(model.detail.controller.Draft())
	}
	return model.refreshDetail()
}

func (model Model) handleDetailKeys(message tea.KeyMsg) (Model, tea.Cmd) {
	model.detail.flash = ""
	switch {
	case model.detail.confirmingDelete:
		return model.handleDeleteConfirmKeys(message)
	case model.detail.picker != nil:
		return model.handlePickerKeys(message)
	case model.detail.composing:
		return model.handleComposeKeys(message)
	}

	keys := model.keys
	viewer := model.user.Role
	loaded := model.detail.snapshot.Ticket != nil

	switch {
	case key.Matches(message, keys.Quit):
		return model, tea.Quit

	case key.Matches(message, keys.Back):
		return model.returnToDashboard()

	case key.Matches(message, keys.Up):
		model.detail.viewport.LineUp(1)

	case key.Matches(message, keys.Down):
		model.detail.viewport.LineDown(1)

	case key.Matches(message, keys.PageUp):
		model.detail.viewport.LineUp(model.detail.viewport.Height / 2)

	case key.Matches(message, keys.PageDown):
		model.detail.viewport.LineDown(model.detail.viewport.Height / 2)

	case key.Matches(message, keys.Refresh):
		return model, model.act(func(ctx context.Context, controller *ticketdetail.Controller) error {
			return controller.Load(ctx)
		})

	case key.Matches(message, keys.ComposeReply) && loaded:
		return model.startCompose(false)

	case key.Matches(message, keys.ComposeNote) && loaded && viewer.SeesInternalNotes():
		return model.startCompose(true)

	case key.Matches(message, keys.ChangeStatus) && loaded && viewer.Staff():
		model.openPicker(pickStatus)

	case key.Matches(message, keys.ChangePriority) && loaded && viewer.Staff():
		model.openPicker(pickPriority)

	case key.Matches(message, keys.AssignAgent) && loaded && viewer == schema.RoleAdmin:
		model.openPicker(pickAgent)

	case key.Matches(message, keys.DeleteTicket) && loaded && viewer == schema.RoleAdmin:
		model.detail.confirmingDelete = true
	}
	return model, nil
}

func (model Model) startCompose(internal bool) (Model, tea.Cmd) {
	model.detail.composing = true
	model.detail.internal = internal
	model.detail.compose.Prompt = "Reply> "
	model.detail.compose.Placeholder = "Type your reply..."
	if internal {
		model.detail.compose.Prompt = "Internal note> "
		model.detail.compose.Placeholder = "Only agents and admins will see this"
	}
	model.detail.compose.Width = max(model.width-lipgloss.Width(model.detail.compose.Prompt)-2, 10)
	return model, model.detail.compose.Focus()
}

// handleComposeKeys edits the reply. Enter sends; escape closes the
// field and keeps the draft.
func (model Model) handleComposeKeys(message tea.KeyMsg) (Model, tea.Cmd) {
	switch message.Type {
	case tea.KeyEsc:
		model.detail.composing = false
		model.detail.compose.Blur()
		return model, nil
	case tea.KeyEnter:
		internal := model.detail.internal
		return model, model.act(func(ctx context.Context, controller *ticketdetail.Controller) error {
			return controller.SendDraft(ctx, internal)
		})
	}
	var command tea.Cmd
	model.detail.compose, command = model.detail.compose.Update(message)
	if value := model.detail.compose.Value(); value != model.detail.controller.Draft() {
		model.detail.controller.SetDraft(value)
	}
	return model, command
}

func (model *Model) openPicker(kind pickerKind) {
	ticket := model.detail.snapshot.Ticket
	var (
		title   string
		options []tui.PickerOption
		current string
	)
	switch kind {
	case pickStatus:
		title, current = "Status", string(ticket.Status)
		for _, status := range statusCycle[1:] {
			options = append(options, tui.PickerOption{Label: tui.StatusLabel(status), Value: string(status)})
		}
	case pickPriority:
		title, current = "Priority", string(ticket.Priority)
		for _, priority := range priorityCycle[1:] {
			options = append(options, tui.PickerOption{Label: tui.PriorityLabel(priority), Value: string(priority)})
		}
	case pickAgent:
		title, current = "Assign agent", unassignValue
		if ticket.AssignedTo != nil {
			current = ticket.AssignedTo.String()
		}
		options = append(options, tui.PickerOption{Label: "Unassigned", Value: unassignValue})
		for _, agent := range model.detail.snapshot.Agents {
			options = append(options, tui.PickerOption{Label: tui.SafeText(agent.Name), Value: agent.ID.String()})
		}
	}
	picker := tui.NewPicker(title, options)
	for _, option := range picker.Visible() {
		if option.Value == current {
			break
		}
		picker.MoveDown()
	}
	model.detail.picker = picker
	model.detail.pickerKind = kind
}

func (model Model) handlePickerKeys(message tea.KeyMsg) (Model, tea.Cmd) {
	picker := model.detail.picker
	switch message.Type {
	case tea.KeyEsc:
		model.detail.picker = nil
		return model, nil
	case tea.KeyUp:
		picker.MoveUp()
		return model, nil
	case tea.KeyDown:
		picker.MoveDown()
		return model, nil
	case tea.KeyBackspace:
		picker.Backspace()
		return model, nil
	case tea.KeyRunes, tea.KeySpace:
		picker.Type(string(message.Runes))
		return model, nil
	case tea.KeyEnter:
	default:
		return model, nil
	}

	selected, ok := picker.Selected()
	if !ok {
		return model, nil
	}
	kind := model.detail.pickerKind
	model.detail.picker = nil
	return model, model.act(func(ctx context.Context, controller *ticketdetail.Controller) error {
		switch kind {
		case pickStatus:
			return controller.UpdateStatus(ctx, schema.Status(selected.Value))
		case pickPriority:
			return controller.UpdatePriority(ctx, schema.Priority(selected.Value))
		default:
			if selected.Value == unassignValue {
				return controller.Assign(ctx, nil)
			}
			id, err := schema.ParseID(selected.Value)
			if err != nil {
				return fmt.Errorf("agent option %q: %w", selected.Value, err)
			}
			return controller.Assign(ctx, &id)
		}
	})
}

func (model Model) handleDeleteConfirmKeys(message tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Confirm):
		model.detail.confirmingDelete = false
		return model, model.act(func(ctx context.Context, controller *ticketdetail.Controller) error {
			return controller.Delete(ctx, ticketdetail.ConfirmFunc(func(context.Context, string) (bool, error) {
				return true, nil
			}))
		})
	case key.Matches(message, model.keys.Decline):
		model.detail.confirmingDelete = false
	}
	return model, nil
}

func (model Model) detailBindings() []key.Binding {
	keys := model.keys
	switch {
	case model.detail.confirmingDelete:
		return []key.Binding{keys.Confirm, keys.Decline}
	case model.detail.picker != nil:
		return []key.Binding{keys.Up, keys.Down, keys.Open, keys.Back}
	case model.detail.composing:
		return []key.Binding{key.NewBinding(key.WithHelp("enter", "send")), keys.Back}
	}
	bindings := []key.Binding{keys.Back, keys.Up, keys.Down, keys.ComposeReply}
	if model.user == nil {
		return bindings
	}
	viewer := model.user.Role
	if viewer.SeesInternalNotes() {
		bindings = append(bindings, keys.ComposeNote)
	}
	if viewer.Staff() {
		bindings = append(bindings, keys.ChangeStatus, keys.ChangePriority)
	}
	if viewer == schema.RoleAdmin {
		bindings = append(bindings, keys.AssignAgent, keys.DeleteTicket)
	}
	return append(bindings, keys.Refresh)
}

// renderDetailBody lays out the ticket and its thread into the
// scrollable viewport.
func (model *Model) renderDetailBody() {
	ticket := model.detail.snapshot.Ticket
	if ticket == nil {
		model.detail.viewport.SetContent("")
		return
	}
	theme := model.theme
	width := max(model.width-1, 20)
	now := model.clock.Now()
	faint := lipgloss.NewStyle().Foreground(theme.FaintText)
	bold := lipgloss.NewStyle().Bold(true).Foreground(theme.HeaderForeground)

	lines := []string{
		bold.Render(ticket.TicketNumber) + "  " + bold.Render(tui.PlainText(ticket.Subject)),
		tui.StatusBadge(ticket.Status, theme) + faint.Render("  ·  ") +
			tui.PriorityBadge(ticket.Priority, theme) + faint.Render(" priority  ·  created ") +
			faint.Render(tui.RelativeTime(ticket.CreatedAt, now)),
	}
	if model.user != nil && model.user.Role.Staff() {
		lines = append(lines, faint.Render("Customer: ")+tui.SafeText(ticket.Customer.DisplayName("N/A"))+
			faint.Render("   Agent: ")+tui.SafeText(ticket.Agent.DisplayName("Unassigned")))
	}
	lines = append(lines, "", ansi.Wrap(tui.PlainText(ticket.Description), width, " "), "")

	// The controller has already removed what this viewer may not see;
	// filtering again keeps the view safe on its own.
	messages := ticket.Messages
	if model.user != nil {
		messages = schema.VisibleMessages(model.user.Role, messages)
	}
	lines = append(lines, bold.Render(fmt.Sprintf("Conversation (%d)", len(messages))))
	if len(messages) == 0 {
		lines = append(lines, faint.Render("No messages yet"))
	}
	for _, message := range messages {
		accent := theme.UserAccent
		switch {
		case message.IsInternal:
			accent = theme.InternalAccent
		case message.IsBot:
			accent = theme.BotAccent
		}
		heading := lipgloss.NewStyle().Bold(true).Foreground(accent).Render(tui.SafeText(message.SenderName()))
		if badge := message.Badge(); badge != "" {
			heading += " " + faint.Render("["+tui.Label(badge)+"]")
		}
		if message.IsInternal {
			heading += " " + lipgloss.NewStyle().Foreground(theme.InternalAccent).Render("Internal note")
		}
		heading += faint.Render("  " + tui.RelativeTime(message.CreatedAt, now))

		bar := lipgloss.NewStyle().Foreground(accent).Render("│ ")
		body := ansi.Wrap(tui.PlainText(message.Message), width-2, " ")
		lines = append(lines, "", heading)
		for _, line := range strings.Split(body, "\n") {
			lines = append(lines, bar+line)
		}
	}
	model.detail.viewport.SetContent(strings.Join(lines, "\n"))
}

func (model Model) detailView() string {
	theme := model.theme
	snapshot := model.detail.snapshot
	faint := lipgloss.NewStyle().Foreground(theme.FaintText)

	var sections []string
	switch {
	case snapshot.Ticket == nil && snapshot.Err != "":
		sections = append(sections, lipgloss.NewStyle().Foreground(theme.ErrorText).Render(snapshot.Err))
	case snapshot.Ticket == nil:
		sections = append(sections, faint.Render("Loading..."))
	default:
		sections = append(sections, model.threadView())
		if snapshot.Err != "" {
			sections = append(sections, lipgloss.NewStyle().Foreground(theme.ErrorText).Render(snapshot.Err))
		}
	}

	switch snapshot.Notice.Kind {
	case ticketdetail.NoticeSuccess:
		sections = append(sections, lipgloss.NewStyle().Foreground(theme.SuccessText).Render(snapshot.Notice.Text))
	case ticketdetail.NoticeError:
		sections = append(sections, lipgloss.NewStyle().Foreground(theme.ErrorText).Render(snapshot.Notice.Text))
	}
	if model.detail.flash != "" {
		sections = append(sections, lipgloss.NewStyle().Foreground(theme.ErrorText).Render(model.detail.flash))
	}

	switch {
	case model.detail.confirmingDelete:
		dialog := tui.Dialog(theme, ticketdetail.DeletePrompt, "[y] delete   [n] keep", min(model.width, 84))
		return tui.Center(strings.Join(sections, "\n"), dialog, model.width)
	case model.detail.picker != nil:
		sections = append(sections, model.detail.picker.View(theme, min(max(model.width, 24), 40)))
	case model.detail.composing:
		sections = append(sections, model.detail.compose.View())
	}
	return strings.Join(sections, "\n")
}

// threadView is the viewport with a scrollbar beside it once the
// thread outgrows the screen.
func (model Model) threadView() string {
	viewport := model.detail.viewport
	total := viewport.TotalLineCount()
	if total <= viewport.Height {
		return viewport.View()
	}
	bar := tui.Scrollbar(model.theme, viewport.Height, total, viewport.Height, viewport.YOffset)
	return lipgloss.JoinHorizontal(lipgloss.Top, viewport.View(), bar)
}
