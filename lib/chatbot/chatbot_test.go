// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package chatbot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/smartsupport/smartsupport/lib/apiclient"
	"github.com/smartsupport/smartsupport/lib/clock"
)

type sourceFunc func(ctx context.Context, message string) (string, error)

func (function sourceFunc) ChatbotQuery(ctx context.Context, message string) (string, error) {
	return function(ctx, message)
}

func TestNewSeedsGreeting(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	conversation := New(Config{Source: sourceFunc(nil), Clock: clock.Fake(start)})

	entries := conversation.Entries()
	if len(entries) != 1 {
		t.Fatalf("%d entries, want 1", len(entries))
	}
	if entries[0].Sender != SenderBot || entries[0].Text != Greeting || !entries[0].At.Equal(start) {
		t.Errorf("greeting entry = %+v", entries[0])
	}
}

func TestAsk(t *testing.T) {
	t.Parallel()

	fake := clock.Fake(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC))
	var asked string
	source := sourceFunc(func(ctx context.Context, message string) (string, error) {
		asked = message
		fake.Advance(2 * time.Second)
		return "Our support hours are 9am to 5pm.", nil
	})
	conversation := New(Config{Source: source, Clock: fake})

	answer, err := conversation.Ask(context.Background(), "  "+QuickQuestions[1]+" ")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if asked != "What are your support hours?" {
		t.Errorf("asked %q", asked)
	}
	if answer.Sender != SenderBot || answer.Text != "Our support hours are 9am to 5pm." {
		t.Errorf("answer = %+v", answer)
	}

	entries := conversation.Entries()
	if len(entries) != 3 {
		t.Fatalf("%d entries, want 3", len(entries))
	}
	if entries[1].Sender != SenderUser || entries[1].Text != "What are your support hours?" {
		t.Errorf("user entry = %+v", entries[1])
	}
	if got := entries[2].At.Sub(entries[1].At); got != 2*time.Second {
		t.Errorf("reply stamped %v after the question, want 2s", got)
	}
	if conversation.Pending() {
		t.Error("still pending after the reply")
	}
}

func TestAskFallbacks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		reply string
		err   error
		want  string
	}{
		{name: "empty reply", reply: "", want: EmptyReply},
		{name: "backend error", err: &apiclient.Error{Status: 500, Message: "boom"}, want: BackendErrorReply},
		{name: "network error", err: &apiclient.Error{Message: apiclient.NetworkErrorMessage, Err: errors.New("refused")}, want: NetworkErrorReply},
		{name: "other error", err: errors.New("unexpected"), want: NetworkErrorReply},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			source := sourceFunc(func(ctx context.Context, message string) (string, error) {
				return test.reply, test.err
			})
			conversation := New(Config{Source: source, Clock: clock.Fake(time.Unix(0, 0))})
			answer, err := conversation.Ask(context.Background(), "hello")
			if err != nil {
				t.Fatalf("Ask: %v", err)
			}
			if answer.Text != test.want {
				t.Errorf("answer = %q, want %q", answer.Text, test.want)
			}
		})
	}
}

func TestAskRejectsBlankAndConcurrent(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	release := make(chan struct{})
	source := sourceFunc(func(ctx context.Context, message string) (string, error) {
		close(started)
		<-release
		return "done", nil
	})
	conversation := New(Config{Source: source, Clock: clock.Fake(time.Unix(0, 0))})

	if _, err := conversation.Ask(context.Background(), "   "); !errors.Is(err, ErrEmpty) {
		t.Errorf("blank Ask = %v, want ErrEmpty", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := conversation.Ask(context.Background(), "first")
		done <- err
	}()
	<-started

	if _, err := conversation.Ask(context.Background(), "second"); !errors.Is(err, ErrBusy) {
		t.Errorf("concurrent Ask = %v, want ErrBusy", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first Ask: %v", err)
	}
	if got := len(conversation.Entries()); got != 3 {
		t.Errorf("%d entries, want 3 (greeting, question, reply)", got)
	}
}
