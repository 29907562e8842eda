// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Smartsupport is the SmartSupport help desk client: one-shot commands
// for scripts plus a full-screen terminal UI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/smartsupport/smartsupport/cmd/smartsupport/cli"
	"github.com/smartsupport/smartsupport/cmd/smartsupport/commands"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := commands.Root().Execute(ctx, args)
	code, report := cli.ExitStatus(err)
	if report {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	return code
}
