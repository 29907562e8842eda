// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ticketui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/smartsupport/smartsupport/lib/chatbot"
	"github.com/smartsupport/smartsupport/lib/tui"
)

type chatState struct {
	conversation *chatbot.Conversation
	entries      []chatbot.Entry
	pending      bool
	input        textinput.Model
	viewport     viewport.Model

	// suggestion is the index of the next quick question offered by
	// the QuickQuestion key.
	suggestion int
}

func newChatState() chatState {
	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "Type your message..."
	return chatState{input: input, viewport: viewport.New(0, 0)}
}

type chatAnsweredMsg struct {
	conversation *chatbot.Conversation
}

// enterChat opens the assistant. The conversation lasts until logout,
// so leaving and coming back keeps the transcript.
func (model Model) enterChat() (Model, tea.Cmd) {
	if model.chat.conversation == nil {
		sender := model.sender
		var conversation *chatbot.Conversation
		conversation = chatbot.New(chatbot.Config{
			Source: model.backend,
			Clock:  model.clock,
			Logger: model.logger.With("view", "chatbot"),
			OnChange: func([]chatbot.Entry) {
				sender.send(chatChangedMsg{conversation: conversation})
			},
		})
		model.chat.conversation = conversation
	}
	model.screen = ScreenChat
	model.refreshChat()
	return model, model.chat.input.Focus()
}

func (model *Model) refreshChat() {
	if model.chat.conversation == nil {
		return
	}
	model.chat.entries = model.chat.conversation.Entries()
	model.chat.pending = model.chat.conversation.Pending()
	model.renderChatBody()
}

func (model Model) handleChatKeys(message tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Back):
		model.chat.input.Blur()
		return model.returnToDashboard()

	case key.Matches(message, model.keys.QuickQuestion):
		questions := chatbot.QuickQuestions
		model.chat.input.SetValue(questions[model.chat.suggestion%len(questions)])
		model.chat.input.CursorEnd()
		model.chat.suggestion++
		return model, nil

	case key.Matches(message, model.keys.PageUp):
		model.chat.viewport.LineUp(model.chat.viewport.Height / 2)
		return model, nil

	case key.Matches(message, model.keys.PageDown):
		model.chat.viewport.LineDown(model.chat.viewport.Height / 2)
		return model, nil

	case message.Type == tea.KeyEnter:
		text := model.chat.input.Value()
		if strings.TrimSpace(text) == "" || model.chat.pending {
			return model, nil
		}
		model.chat.input.SetValue("")
		model.chat.pending = true
		conversation := model.chat.conversation
		return model, model.perform(func(ctx context.Context) tea.Msg {
			// Failures come back as a fallback reply in the transcript.
			_, _ = conversation.Ask(ctx, text)
			return chatAnsweredMsg{conversation: conversation}
		})
	}

	var command tea.Cmd
	model.chat.input, command = model.chat.input.Update(message)
	return model, command
}

func (model Model) handleChatAnswered(message chatAnsweredMsg) (Model, tea.Cmd) {
	if message.conversation == model.chat.conversation {
		model.refreshChat()
	}
	return model, nil
}

// renderChatBody lays out the transcript, newest at the bottom.
func (model *Model) renderChatBody() {
	if model.chat.conversation == nil {
		return
	}
	theme := model.theme
	width := max(model.width-2, 20)
	faint := lipgloss.NewStyle().Foreground(theme.FaintText)

	var blocks []string
	for _, entry := range model.chat.entries {
		stamp := faint.Render("  " + entry.At.Format("3:04 PM"))
		switch entry.Sender {
		case chatbot.SenderBot:
			heading := lipgloss.NewStyle().Bold(true).Foreground(theme.BotAccent).Render("AI Assistant") + stamp
			body := ansi.Wrap(tui.PlainText(entry.Text), width, " ")
			if model.markdown {
				body = tui.RenderMarkdown(entry.Text, theme, width)
			}
			blocks = append(blocks, heading+"\n"+body)
		default:
			heading := lipgloss.NewStyle().Bold(true).Foreground(theme.UserAccent).Render("You") + stamp
			blocks = append(blocks, heading+"\n"+ansi.Wrap(entry.Text, width, " "))
		}
	}
	if model.chat.pending {
		blocks = append(blocks, faint.Italic(true).Render("AI Assistant is typing..."))
	}
	model.chat.viewport.SetContent(strings.Join(blocks, "\n\n"))
	model.chat.viewport.GotoBottom()
}

func (model Model) chatView() string {
	theme := model.theme
	faint := lipgloss.NewStyle().Foreground(theme.FaintText)

	var suggestions []string
	for index, question := range chatbot.QuickQuestions {
		style := faint
		if index == model.chat.suggestion%len(chatbot.QuickQuestions) {
			style = style.Foreground(theme.LinkForeground)
		}
		suggestions = append(suggestions, style.Render(question))
	}
	return strings.Join([]string{
		model.chat.viewport.View(),
		faint.Render("Quick questions: ") + strings.Join(suggestions, faint.Render(" · ")),
		model.chat.input.View(),
	}, "\n")
}
