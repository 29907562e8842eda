// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ticketui

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// logRecordMsg carries a log record into the status bar.
type logRecordMsg struct {
	Summary string
	Level   slog.Level
}

// logRecordFadeMsg clears the status-bar record. Sequence matches the
// record it was scheduled for, so a newer record is not cleared early.
type logRecordFadeMsg struct {
	Sequence int
}

// logRecordFadeDelay is how long a record stays in the status bar.
const logRecordFadeDelay = 5 * time.Second

// TUILogHandler is a slog.Handler that shows records in the running
// program's status bar. While the program is running, stderr belongs
// to the renderer, so background failures (a refilter that could not
// reach the backend, a reply that failed) have nowhere else to go.
//
// Create the handler before the program and call SetProgram once the
// tea.Program exists. Records arriving before then are dropped.
// Handlers derived with WithAttrs and WithGroup share the program
// pointer, so one SetProgram call covers all of them.
type TUILogHandler struct {
	level   slog.Level
	program *atomic.Pointer[tea.Program]
	attrs   []slog.Attr
	prefix  string
}

// NewTUILogHandler returns a handler that forwards records at or
// above level.
func NewTUILogHandler(level slog.Level) *TUILogHandler {
	return &TUILogHandler{
		level:   level,
		program: &atomic.Pointer[tea.Program]{},
	}
}

// SetProgram sets the program that receives records. Safe to call from
// any goroutine.
func (handler *TUILogHandler) SetProgram(program *tea.Program) {
	handler.program.Store(program)
}

func (handler *TUILogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= handler.level
}

// Handle formats the record as "message (key=value, ...)". Delivery is
// asynchronous: controllers log from inside command goroutines and
// sometimes from the event loop itself, and Program.Send blocks until
// the loop receives.
func (handler *TUILogHandler) Handle(_ context.Context, record slog.Record) error {
	program := handler.program.Load()
	if program == nil {
		return nil
	}
	message := logRecordMsg{Summary: formatRecord(record, handler.attrs, handler.prefix), Level: record.Level}
	go program.Send(message)
	return nil
}

func (handler *TUILogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	derived := *handler
	qualified := make([]slog.Attr, len(attrs))
	for index, attr := range attrs {
		qualified[index] = slog.Attr{Key: handler.prefix + attr.Key, Value: attr.Value}
	}
	derived.attrs = append(slices.Clone(handler.attrs), qualified...)
	return &derived
}

func (handler *TUILogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return handler
	}
	derived := *handler
	derived.attrs = slices.Clone(handler.attrs)
	derived.prefix = handler.prefix + name + "."
	return &derived
}

// formatRecord renders the one-line summary shown in the status bar.
func formatRecord(record slog.Record, attrs []slog.Attr, prefix string) string {
	parts := make([]string, 0, len(attrs)+record.NumAttrs())
	for _, attr := range attrs {
		parts = append(parts, fmt.Sprintf("%s=%s", attr.Key, attr.Value))
	}
	record.Attrs(func(attr slog.Attr) bool {
		parts = append(parts, fmt.Sprintf("%s%s=%s", prefix, attr.Key, attr.Value))
		return true
	})
	if len(parts) == 0 {
		return record.Message
	}
	return record.Message + " (" + strings.Join(parts, ", ") + ")"
}
