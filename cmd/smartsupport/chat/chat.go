// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package chat implements "smartsupport chat", the customer's
// conversation with the support assistant on a line-oriented terminal.
package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/smartsupport/smartsupport/cmd/smartsupport/cli"
	"github.com/smartsupport/smartsupport/lib/chatbot"
	"github.com/smartsupport/smartsupport/lib/schema"
	"github.com/smartsupport/smartsupport/lib/tui"
)

// defaultWidth wraps rendered replies when the terminal size is
// unknown.
const defaultWidth = 80

type chatParams struct {
	cli.ConnectionParams
	Plain bool `json:"-" flag:"plain" desc:"print replies as raw markdown source"`
}

// Command returns the "chat" command.
func Command() *cli.Command {
	var params chatParams

	return &cli.Command{
		Name:    "chat",
		Summary: "Ask the support assistant (customer)",
		Description: `Talk to the SmartSupport assistant.

With a question argument, the assistant's answer is printed and the
command exits. Without one, an interactive session starts: type a
question, or the number of one of the quick questions, and "exit" or
end of input to leave.

Replies are rendered as terminal markdown when standard output is a
terminal and ui.render_markdown is enabled.`,
		Usage: "smartsupport chat [question] [flags]",
		Examples: []cli.Example{
			{
				Description: "Ask one question",
				Command:     `smartsupport chat "What are your support hours?"`,
			},
			{
				Description: "Start an interactive session",
				Command:     "smartsupport chat",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			connection, err := params.Connect(logger)
			if err != nil {
				return err
			}
			if _, err := connection.Require(schema.RoleCustomer); err != nil {
				return err
			}

			streams := cli.IOFrom(ctx)
			session := &chatSession{
				conversation: chatbot.New(chatbot.Config{Source: connection.Client, Logger: logger}),
				out:          streams.Out,
				prompt:       streams.Err,
				render:       !params.Plain && connection.Config.MarkdownEnabled(),
			}
			session.width, session.render = terminalWidth(streams.Out, session.render)

			if question := strings.TrimSpace(strings.Join(args, " ")); question != "" {
				return session.ask(ctx, question)
			}
			return session.repl(ctx, streams.In)
		},
	}
}

type chatSession struct {
	conversation *chatbot.Conversation
	out          io.Writer
	prompt       io.Writer
	render       bool
	width        int
}

// terminalWidth returns the wrap width for out and whether markdown
// should be rendered there. Only terminals get styled output.
func terminalWidth(out io.Writer, render bool) (int, bool) {
	file, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return defaultWidth, false
	}
	width, _, err := term.GetSize(int(file.Fd()))
	if err != nil || width <= 0 {
		width = defaultWidth
	}
	return width, render
}

func (session *chatSession) print(text string) {
	if session.render {
		text = tui.RenderMarkdown(text, tui.DefaultTheme, session.width)
	}
	fmt.Fprintln(session.out, text)
}

// ask sends one question and prints the reply. Backend failures are
// already turned into apology replies by the conversation.
func (session *chatSession) ask(ctx context.Context, question string) error {
	ctx, cancel := cli.WithTimeout(ctx)
	defer cancel()

	reply, err := session.conversation.Ask(ctx, question)
	if err != nil {
		return cli.Validation("%w", err)
	}
	session.print(reply.Text)
	return nil
}

func (session *chatSession) repl(ctx context.Context, in io.Reader) error {
	session.print(session.conversation.Entries()[0].Text)
	fmt.Fprintln(session.out)
	fmt.Fprintln(session.out, "Quick questions:")
	for i, question := range chatbot.QuickQuestions {
		fmt.Fprintf(session.out, "  %d. %s\n", i+1, question)
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(session.prompt, "\n> ")
		if !scanner.Scan() {
			fmt.Fprintln(session.prompt)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit":
			return nil
		}
		if number, err := strconv.Atoi(line); err == nil && number >= 1 && number <= len(chatbot.QuickQuestions) {
			line = chatbot.QuickQuestions[number-1]
			fmt.Fprintf(session.out, "> %s\n", line)
		}
		fmt.Fprintln(session.out)
		if err := session.ask(ctx, line); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}
