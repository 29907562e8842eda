// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ticketui

import (
	"context"
	"log/slog"
	"testing"
	"time"
)

func TestFormatRecord(t *testing.T) {
	t.Parallel()

	record := slog.NewRecord(time.Now(), slog.LevelWarn, "refiltering tickets failed", 0)
	record.AddAttrs(slog.Int("sequence", 3))

	got := formatRecord(record, []slog.Attr{slog.String("ticket", "42")}, "list.")
	want := "refiltering tickets failed (ticket=42, list.sequence=3)"
	if got != want {
		t.Errorf("formatRecord = %q, want %q", got, want)
	}

	bare := slog.NewRecord(time.Now(), slog.LevelError, "boom", 0)
	if got := formatRecord(bare, nil, ""); got != "boom" {
		t.Errorf("formatRecord(no attrs) = %q", got)
	}
}

func TestTUILogHandlerLevelsAndDerivation(t *testing.T) {
	t.Parallel()

	handler := NewTUILogHandler(slog.LevelWarn)
	if handler.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be below a warn handler")
	}
	if !handler.Enabled(context.Background(), slog.LevelError) {
		t.Error("error should pass a warn handler")
	}

	derived := handler.WithGroup("detail").WithAttrs([]slog.Attr{slog.String("ticket", "7")}).(*TUILogHandler)
	if derived.program != handler.program {
		t.Error("derived handlers must share the program pointer")
	}
	if len(derived.attrs) != 1 || derived.attrs[0].Key != "detail.ticket" {
		t.Errorf("derived attrs = %+v", derived.attrs)
	}
	if len(handler.attrs) != 0 {
		t.Error("deriving must not modify the parent")
	}

	// No program yet: records are dropped without error.
	record := slog.NewRecord(time.Now(), slog.LevelWarn, "dropped", 0)
	if err := derived.Handle(context.Background(), record); err != nil {
		t.Errorf("Handle = %v", err)
	}
}
