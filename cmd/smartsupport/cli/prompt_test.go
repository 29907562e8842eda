// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLinePrompterConfirm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"  yes  \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"maybe\n", false},
	}
	for _, test := range tests {
		var out bytes.Buffer
		prompter := &LinePrompter{In: strings.NewReader(test.input), Out: &out}
		got, err := prompter.Confirm(context.Background(), "Delete ticket?")
		if err != nil {
			t.Fatalf("Confirm(%q): %v", test.input, err)
		}
		if got != test.want {
			t.Errorf("Confirm(%q) = %v, want %v", test.input, got, test.want)
		}
		if out.String() != "Delete ticket? [y/N] " {
			t.Errorf("prompt = %q", out.String())
		}
	}
}

func TestLinePrompterCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	prompter := &LinePrompter{In: strings.NewReader("y\n"), Out: &bytes.Buffer{}}
	if confirmed, err := prompter.Confirm(ctx, "Delete?"); err == nil || confirmed {
		t.Errorf("Confirm on a cancelled context = %v, %v", confirmed, err)
	}
}

func TestReadPasswordFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "password")
	if err := os.WriteFile(path, []byte("hunter2\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	password, err := ReadPassword(path)
	if err != nil {
		t.Fatal(err)
	}
	if password != "hunter2" {
		t.Errorf("password = %q, want hunter2", password)
	}

	if _, err := ReadPassword(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected an error for a missing password file")
	}
}
