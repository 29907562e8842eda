// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"io"
	"os"
)

// IO is the set of streams a command reads and writes. Commands take
// it from their context so tests can capture output without touching
// the process's file descriptors.
type IO struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

type ioKey struct{}

// WithIO returns a context whose commands use streams. Nil fields fall
// back to the process's standard streams.
func WithIO(ctx context.Context, streams IO) context.Context {
	return context.WithValue(ctx, ioKey{}, streams)
}

// IOFrom returns the streams attached to ctx, defaulting to stdin,
// stdout, and stderr.
func IOFrom(ctx context.Context) IO {
	streams, _ := ctx.Value(ioKey{}).(IO)
	if streams.In == nil {
		streams.In = os.Stdin
	}
	if streams.Out == nil {
		streams.Out = os.Stdout
	}
	if streams.Err == nil {
		streams.Err = os.Stderr
	}
	return streams
}

// Prompter returns a LinePrompter on the context's streams.
func (streams IO) Prompter() *LinePrompter {
	return &LinePrompter{In: streams.In, Out: streams.Err}
}
