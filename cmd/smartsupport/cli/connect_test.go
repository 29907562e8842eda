// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smartsupport/smartsupport/lib/config"
	"github.com/smartsupport/smartsupport/lib/schema"
	"github.com/smartsupport/smartsupport/lib/session"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// isolate clears the environment variables Connect consults.
func isolate(t *testing.T) {
	t.Helper()
	for _, name := range []string{config.EnvConfig, config.EnvAPIURL, config.EnvSessionFile, config.EnvEnvironment, session.PassphraseEnv} {
		t.Setenv(name, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "smartsupport.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConnectAppliesFlagOverrides(t *testing.T) {
	isolate(t)

	sessionPath := filepath.Join(t.TempDir(), "session.json")
	params := ConnectionParams{
		ConfigFile:  writeConfig(t, "api:\n  base_url: http://config-host:8000/api\n"),
		APIURL:      "http://flag-host:9000/api",
		SessionFile: sessionPath,
	}
	connection, err := params.Connect(discardLogger())
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if got := connection.Client.BaseURL(); got != "http://flag-host:9000/api" {
		t.Errorf("BaseURL = %q, want the flag value", got)
	}
	if connection.SessionPath != sessionPath {
		t.Errorf("SessionPath = %q, want %q", connection.SessionPath, sessionPath)
	}

	user := schema.User{ID: 1, Name: "Avery", Email: "admin@test.com", Role: schema.RoleAdmin}
	if err := connection.Store.Save("token", user); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(sessionPath); err != nil {
		t.Errorf("session not written to --session-file: %v", err)
	}
}

func TestConnectEphemeralLeavesSessionFileAlone(t *testing.T) {
	isolate(t)

	sessionPath := filepath.Join(t.TempDir(), "session.json")
	params := ConnectionParams{SessionFile: sessionPath}
	connection, err := params.ConnectEphemeral(discardLogger())
	if err != nil {
		t.Fatalf("ConnectEphemeral: %v", err)
	}
	if connection.SessionPath != "" {
		t.Errorf("SessionPath = %q, want empty", connection.SessionPath)
	}

	user := schema.User{ID: 2, Name: "Jordan", Email: "agent@test.com", Role: schema.RoleAgent}
	if err := connection.Store.Save("token", user); err != nil {
		t.Fatal(err)
	}
	if connection.Store.Token() != "token" {
		t.Errorf("Token = %q, want the saved token", connection.Store.Token())
	}
	if _, err := os.Stat(sessionPath); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("session file touched: %v", err)
	}
}

func TestConnectUsesConfigFile(t *testing.T) {
	isolate(t)

	params := ConnectionParams{
		ConfigFile:  writeConfig(t, "api:\n  base_url: http://config-host:8000/api\n"),
		SessionFile: filepath.Join(t.TempDir(), "session.json"),
	}
	connection, err := params.Connect(discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	if got := connection.Client.BaseURL(); got != "http://config-host:8000/api" {
		t.Errorf("BaseURL = %q", got)
	}
}

func TestConnectRejectsInvalidConfiguration(t *testing.T) {
	isolate(t)

	params := ConnectionParams{APIURL: "ftp://files.example.com", SessionFile: filepath.Join(t.TempDir(), "s.json")}
	_, err := params.Connect(discardLogger())
	var toolErr *ToolError
	if !errors.As(err, &toolErr) || toolErr.Category != CategoryValidation {
		t.Fatalf("error = %v, want a validation error", err)
	}
	if !strings.Contains(err.Error(), "api.base_url") {
		t.Errorf("error = %q, want it to name api.base_url", err)
	}
}

func TestConnectSealedSessionNeedsPassphrase(t *testing.T) {
	isolate(t)

	params := ConnectionParams{
		ConfigFile:  writeConfig(t, "session:\n  sealed: true\n"),
		SessionFile: filepath.Join(t.TempDir(), "session.age"),
	}
	_, err := params.Connect(discardLogger())
	if err == nil || !strings.Contains(err.Error(), session.PassphraseEnv) {
		t.Errorf("error = %v, want it to name %s", err, session.PassphraseEnv)
	}
}

func TestConnectSealedSession(t *testing.T) {
	isolate(t)
	t.Setenv(session.PassphraseEnv, "correct horse battery staple")

	sessionPath := filepath.Join(t.TempDir(), "session.age")
	params := ConnectionParams{
		ConfigFile:  writeConfig(t, "session:\n  sealed: true\n  work_factor: 10\n"),
		SessionFile: sessionPath,
	}
	connection, err := params.Connect(discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	user := schema.User{ID: 3, Name: "Casey", Email: "customer@test.com", Role: schema.RoleCustomer}
	if err := connection.Store.Save("sealed-token", user); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(sessionPath)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "sealed-token") {
		t.Error("sealed session file contains the plaintext token")
	}
	if connection.Store.Token() != "sealed-token" {
		t.Errorf("Token() = %q after a sealed round trip", connection.Store.Token())
	}
}

func TestConnectionRequire(t *testing.T) {
	isolate(t)

	params := ConnectionParams{SessionFile: filepath.Join(t.TempDir(), "session.json")}
	connection, err := params.Connect(discardLogger())
	if err != nil {
		t.Fatal(err)
	}

	_, err = connection.Require(schema.RoleAdmin)
	var toolErr *ToolError
	if !errors.As(err, &toolErr) || toolErr.Category != CategoryUnauthenticated {
		t.Fatalf("Require without a session = %v, want unauthenticated", err)
	}

	user := schema.User{ID: 3, Name: "Casey", Email: "customer@test.com", Role: schema.RoleCustomer}
	if err := connection.Store.Save("token", user); err != nil {
		t.Fatal(err)
	}
	_, err = connection.Require(schema.RoleAdmin)
	if !errors.As(err, &toolErr) || toolErr.Category != CategoryForbidden {
		t.Fatalf("customer requiring admin = %v, want forbidden", err)
	}
	current, err := connection.Require(schema.RoleCustomer)
	if err != nil || current.User.Email != user.Email {
		t.Errorf("Require(customer) = %+v, %v", current, err)
	}
}
