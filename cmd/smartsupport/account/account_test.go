// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package account

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smartsupport/smartsupport/cmd/smartsupport/cli"
	"github.com/smartsupport/smartsupport/lib/schema"
	"github.com/smartsupport/smartsupport/lib/testutil"
)

// run executes command with the backend and session flags appended
// and returns what it wrote to stdout.
func run(t *testing.T, command *cli.Command, backendURL, sessionPath string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	ctx := cli.WithIO(context.Background(), cli.IO{In: strings.NewReader(""), Out: &stdout, Err: &stderr})
	args = append(args, "--api-url", backendURL, "--session-file", sessionPath)
	err := command.Execute(ctx, args)
	return stdout.String(), err
}

func category(err error) cli.ErrorCategory {
	var toolErr *cli.ToolError
	if errors.As(err, &toolErr) {
		return toolErr.Category
	}
	return ""
}

func TestLoginDemo(t *testing.T) {
	t.Parallel()
	backend := testutil.NewBackend(t)
	sessionPath := filepath.Join(t.TempDir(), "session.json")

	output, err := run(t, LoginCommand(), backend.URL(), sessionPath, "--demo", "agent")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(output, "Logged in as Alex Agent (agent)") {
		t.Errorf("output = %q", output)
	}
	if !strings.Contains(output, sessionPath) {
		t.Errorf("output does not name the session file: %q", output)
	}
	if _, err := os.Stat(sessionPath); err != nil {
		t.Errorf("session file not written: %v", err)
	}

	whoami, err := run(t, WhoAmICommand(), backend.URL(), sessionPath)
	if err != nil {
		t.Fatalf("whoami: %v", err)
	}
	for _, want := range []string{"Alex Agent", "agent@test.com", string(schema.RouteAgentDashboard)} {
		if !strings.Contains(whoami, want) {
			t.Errorf("whoami output missing %q:\n%s", want, whoami)
		}
	}
}

func TestLoginWithPasswordFile(t *testing.T) {
	t.Parallel()
	backend := testutil.NewBackend(t)
	directory := t.TempDir()
	sessionPath := filepath.Join(directory, "session.json")
	passwordPath := filepath.Join(directory, "password")
	if err := os.WriteFile(passwordPath, []byte("password\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	output, err := run(t, LoginCommand(), backend.URL(), sessionPath,
		"admin@test.com", "--password-file", passwordPath, "--json")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	var decoded loginOutput
	if err := json.Unmarshal([]byte(output), &decoded); err != nil {
		t.Fatalf("decoding %q: %v", output, err)
	}
	if decoded.User.ID != testutil.Admin.ID || decoded.Route != schema.RouteAdminDashboard {
		t.Errorf("login output = %+v", decoded)
	}
}

func TestLoginRejected(t *testing.T) {
	t.Parallel()
	backend := testutil.NewBackend(t)
	directory := t.TempDir()
	sessionPath := filepath.Join(directory, "session.json")
	passwordPath := filepath.Join(directory, "password")
	if err := os.WriteFile(passwordPath, []byte("wrong"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := run(t, LoginCommand(), backend.URL(), sessionPath, "admin@test.com", "--password-file", passwordPath)
	if category(err) != cli.CategoryUnauthenticated {
		t.Fatalf("err = %v, want unauthenticated", err)
	}
	if !strings.Contains(err.Error(), "Invalid email or password") {
		t.Errorf("err = %v, want the backend message", err)
	}
	if _, statErr := os.Stat(sessionPath); !os.IsNotExist(statErr) {
		t.Errorf("failed login wrote a session file (stat: %v)", statErr)
	}
}

func TestLoginValidation(t *testing.T) {
	t.Parallel()
	backend := testutil.NewBackend(t)
	sessionPath := filepath.Join(t.TempDir(), "session.json")

	for _, args := range [][]string{
		{},
		{"--demo", "manager"},
		{"--demo", "agent", "agent@test.com"},
	} {
		_, err := run(t, LoginCommand(), backend.URL(), sessionPath, args...)
		if category(err) != cli.CategoryValidation {
			t.Errorf("login %v: err = %v, want validation", args, err)
		}
	}
	if len(backend.RequestsTo("POST", "/login")) != 0 {
		t.Error("invalid invocations reached the backend")
	}
}

func TestWhoAmIWithoutSession(t *testing.T) {
	t.Parallel()
	backend := testutil.NewBackend(t)
	sessionPath := filepath.Join(t.TempDir(), "session.json")

	_, err := run(t, WhoAmICommand(), backend.URL(), sessionPath)
	if category(err) != cli.CategoryUnauthenticated {
		t.Fatalf("err = %v, want unauthenticated", err)
	}
	if !strings.Contains(err.Error(), "smartsupport login") {
		t.Errorf("err = %v, want a login hint", err)
	}
}

func TestLogout(t *testing.T) {
	t.Parallel()
	backend := testutil.NewBackend(t)
	sessionPath := filepath.Join(t.TempDir(), "session.json")

	if _, err := run(t, LoginCommand(), backend.URL(), sessionPath, "--demo", "customer"); err != nil {
		t.Fatal(err)
	}
	output, err := run(t, LogoutCommand(), backend.URL(), sessionPath)
	if err != nil {
		t.Fatalf("logout: %v", err)
	}
	if strings.TrimSpace(output) != "Logged out" {
		t.Errorf("output = %q", output)
	}
	if _, err := run(t, WhoAmICommand(), backend.URL(), sessionPath); category(err) != cli.CategoryUnauthenticated {
		t.Errorf("whoami after logout: err = %v", err)
	}

	// A second logout is harmless.
	if _, err := run(t, LogoutCommand(), backend.URL(), sessionPath); err != nil {
		t.Errorf("second logout: %v", err)
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()
	backend := testutil.NewBackend(t)
	sessionPath := filepath.Join(t.TempDir(), "session.json")

	output, err := run(t, HealthCommand(), backend.URL(), sessionPath)
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if !strings.Contains(output, "Connected") {
		t.Errorf("output = %q", output)
	}
}

func TestHealthUnreachable(t *testing.T) {
	t.Parallel()
	sessionPath := filepath.Join(t.TempDir(), "session.json")

	// Port 1 on loopback refuses connections.
	output, err := run(t, HealthCommand(), "http://127.0.0.1:1/api", sessionPath)
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 1 {
		t.Fatalf("err = %v, want exit code 1", err)
	}
	if !strings.Contains(output, "Disconnected") {
		t.Errorf("output = %q", output)
	}
}
