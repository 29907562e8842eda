// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ticketui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smartsupport/smartsupport/lib/auth"
	"github.com/smartsupport/smartsupport/lib/schema"
	"github.com/smartsupport/smartsupport/lib/tui"
)

type loginState struct {
	email    textinput.Model
	password textinput.Model
	field    int // 0 email, 1 password
	busy     bool
	err      string
}

func newLoginState() loginState {
	email := textinput.New()
	email.Prompt = ""
	email.Placeholder = "you@example.com"
	email.CharLimit = 254

	password := textinput.New()
	password.Prompt = ""
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return loginState{email: email, password: password}
}

// focus gives keyboard focus to the active field.
func (state *loginState) focus() tea.Cmd {
	if state.field == 0 {
		state.password.Blur()
		return state.email.Focus()
	}
	state.email.Blur()
	return state.password.Focus()
}

type loginResultMsg struct {
	user  schema.User
	route schema.Route
	err   error
}

func (model Model) handleLoginKeys(message tea.KeyMsg) (Model, tea.Cmd) {
	if model.login.busy {
		return model, nil
	}
	switch {
	case key.Matches(message, model.keys.DemoLogin):
		index := demoIndex(message.Type)
		if index < 0 || index >= len(auth.DemoAccounts) {
			return model, nil
		}
		credentials, _ := auth.Demo(auth.DemoAccounts[index].Role)
		model.login.email.SetValue(credentials.Email)
		model.login.password.SetValue(credentials.Password)
		return model.submitLogin()

	case key.Matches(message, model.keys.NextField):
		model.login.field = 1 - model.login.field
		return model, model.login.focus()

	case key.Matches(message, model.keys.SubmitLogin):
		if model.login.field == 0 && model.login.password.Value() == "" {
			model.login.field = 1
			return model, model.login.focus()
		}
		return model.submitLogin()
	}

	var command tea.Cmd
	if model.login.field == 0 {
		model.login.email, command = model.login.email.Update(message)
	} else {
		model.login.password, command = model.login.password.Update(message)
	}
	return model, command
}

// demoIndex maps F1-F3 to a position in auth.DemoAccounts.
func demoIndex(keyType tea.KeyType) int {
	switch keyType {
	case tea.KeyF1:
		return 0
	case tea.KeyF2:
		return 1
	case tea.KeyF3:
		return 2
	}
	return -1
}

func (model Model) submitLogin() (Model, tea.Cmd) {
	credentials := schema.Credentials{
		Email:    strings.TrimSpace(model.login.email.Value()),
		Password: model.login.password.Value(),
	}
	model.login.busy = true
	model.login.err = ""
	backend, store := model.backend, model.store
	return model, model.perform(func(ctx context.Context) tea.Msg {
		user, route, err := auth.Login(ctx, backend, store, credentials)
		return loginResultMsg{user: user, route: route, err: err}
	})
}

func (model Model) handleLoginResult(message loginResultMsg) (Model, tea.Cmd) {
	model.login.busy = false
	if message.err != nil {
		model.login.err = auth.FailureMessage(message.err)
		model.logger.Warn("login failed", "error", message.err)
		return model, nil
	}
	model.login = newLoginState()
	user := message.user
	model.user = &user
	return model.navigate(message.route)
}

func (model Model) loginView() string {
	theme := model.theme
	label := lipgloss.NewStyle().Width(10).Foreground(theme.FaintText)
	active := lipgloss.NewStyle().Width(10).Foreground(theme.HeaderForeground).Bold(true)

	fieldLabel := func(index int, text string) string {
		if model.login.field == index {
			return active.Render(text)
		}
		return label.Render(text)
	}

	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(theme.HeaderForeground).Render("Welcome back"),
		lipgloss.NewStyle().Foreground(theme.FaintText).Render("Sign in to your account"),
		"",
		fieldLabel(0, "Email") + model.login.email.View(),
		fieldLabel(1, "Password") + model.login.password.View(),
		"",
	}
	switch {
	case model.login.busy:
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.FaintText).Render("Signing in..."))
	case model.login.err != "":
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.ErrorText).Render(model.login.err))
	}

	lines = append(lines, "", lipgloss.NewStyle().Bold(true).Foreground(theme.NormalText).Render("Demo accounts"))
	for index, account := range auth.DemoAccounts {
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.FaintText).Render(
			fmt.Sprintf("F%d  %-9s %s", index+1, tui.Label(string(account.Role)), account.Email)))
	}
	lines = append(lines, lipgloss.NewStyle().Foreground(theme.FaintText).Render("    password: "+auth.DemoPassword))

	if model.connection != "" {
		color := theme.SuccessText
		if model.connection == auth.Disconnected {
			color = theme.ErrorText
		}
		lines = append(lines, "", lipgloss.NewStyle().Foreground(theme.FaintText).Render("Backend: ")+
			lipgloss.NewStyle().Foreground(color).Render(string(model.connection)))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.BorderColor).
		Padding(1, 3).
		Render(strings.Join(lines, "\n"))
	return lipgloss.Place(model.width, max(model.height-2, lipgloss.Height(box)), lipgloss.Center, lipgloss.Center, box)
}
