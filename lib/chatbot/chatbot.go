// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package chatbot holds a customer's conversation with the backend
// support assistant. A Conversation starts with a greeting, offers a
// handful of quick questions, and turns every backend failure into a
// friendly bot reply rather than an error the caller must render.
package chatbot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/smartsupport/smartsupport/lib/apiclient"
	"github.com/smartsupport/smartsupport/lib/clock"
)

// Greeting is the assistant's opening message, in markdown.
const Greeting = "👋 **Hello! I'm your SmartSupport AI assistant.**\n\n" +
	"I can help you with:\n" +
	"- Password resets and account issues\n" +
	"- Billing and subscription questions  \n" +
	"- Technical support and troubleshooting\n" +
	"- General inquiries about our services\n\n" +
	"Type your question below or choose from the quick questions! 🚀"

// Fallback replies.
const (
	EmptyReply        = "I apologize, I couldn't process that request."
	BackendErrorReply = "I'm having trouble connecting right now. Would you like to create a support ticket instead?"
	NetworkErrorReply = "I'm experiencing technical difficulties. Please try again or create a support ticket."
)

// QuickQuestions are offered as one-tap prompts.
var QuickQuestions = []string{
	"How do I reset my password?",
	"What are your support hours?",
	"How do I track my ticket?",
	"Can I cancel my subscription?",
}

var (
	// ErrEmpty is returned by Ask for blank input.
	ErrEmpty = errors.New("question is empty")

	// ErrBusy is returned by Ask while an earlier question is pending.
	ErrBusy = errors.New("a question is already pending")
)

// Sender identifies who wrote an Entry.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Entry is one message in the conversation.
type Entry struct {
	Sender Sender
	Text   string
	At     time.Time
}

// Source answers questions. *apiclient.Client implements it.
type Source interface {
	ChatbotQuery(ctx context.Context, message string) (string, error)
}

// Config configures a Conversation.
type Config struct {
	Source Source

	// Clock stamps entries. Nil selects clock.Real().
	Clock clock.Clock

	// Logger receives failure traces. Nil discards.
	Logger *slog.Logger

	// OnChange, when set, is called with the transcript after every
	// change.
	OnChange func([]Entry)
}

// Conversation is a running chat transcript. Safe for concurrent use.
type Conversation struct {
	source   Source
	clock    clock.Clock
	logger   *slog.Logger
	onChange func([]Entry)

	mu      sync.Mutex
	entries []Entry
	pending bool
}

// New starts a Conversation seeded with the greeting.
func New(config Config) *Conversation {
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Conversation{
		source:   config.Source,
		clock:    clk,
		logger:   logger,
		onChange: config.OnChange,
		entries:  []Entry{{Sender: SenderBot, Text: Greeting, At: clk.Now()}},
	}
}

// Entries returns a copy of the transcript.
func (conversation *Conversation) Entries() []Entry {
	conversation.mu.Lock()
	defer conversation.mu.Unlock()
	return append([]Entry(nil), conversation.entries...)
}

// Pending reports whether a question is awaiting its reply.
func (conversation *Conversation) Pending() bool {
	conversation.mu.Lock()
	defer conversation.mu.Unlock()
	return conversation.pending
}

// Ask appends text as a user entry, queries the assistant, and appends
// the reply. Backend failures become fallback replies, so the returned
// Entry is always the bot's answer when err is nil.
func (conversation *Conversation) Ask(ctx context.Context, text string) (Entry, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Entry{}, ErrEmpty
	}

	conversation.mu.Lock()
	if conversation.pending {
		conversation.mu.Unlock()
		return Entry{}, ErrBusy
	}
	conversation.pending = true
	conversation.entries = append(conversation.entries, Entry{Sender: SenderUser, Text: text, At: conversation.clock.Now()})
	conversation.changed()

	reply, err := conversation.source.ChatbotQuery(ctx, text)
	if err != nil {
		conversation.logger.Warn("chatbot query failed", "error", err)
		reply = fallbackFor(err)
	} else if strings.TrimSpace(reply) == "" {
		reply = EmptyReply
	}

	answer := Entry{Sender: SenderBot, Text: reply, At: conversation.clock.Now()}
	conversation.mu.Lock()
	conversation.pending = false
	conversation.entries = append(conversation.entries, answer)
	conversation.changed()
	return answer, nil
}

// changed releases the lock and notifies OnChange.
func (conversation *Conversation) changed() {
	entries := append([]Entry(nil), conversation.entries...)
	conversation.mu.Unlock()
	if conversation.onChange != nil {
		conversation.onChange(entries)
	}
}

func fallbackFor(err error) string {
	if apiErr, ok := apiclient.AsError(err); ok && !apiErr.Network() {
		return BackendErrorReply
	}
	return NetworkErrorReply
}
