// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/smartsupport/smartsupport/lib/apiclient"
	"github.com/smartsupport/smartsupport/lib/schema"
	"github.com/smartsupport/smartsupport/lib/session"
)

func TestCategorize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want ErrorCategory
	}{
		{"no session", &session.GuardError{Reason: session.ReasonNoSession, Redirect: schema.RouteLogin}, CategoryUnauthenticated},
		{"wrong role", &session.GuardError{Reason: session.ReasonWrongRole, Have: schema.RoleCustomer, Want: []schema.Role{schema.RoleAdmin}}, CategoryForbidden},
		{"network", &apiclient.Error{Message: apiclient.NetworkErrorMessage, Err: errors.New("refused")}, CategoryTransient},
		{"401", &apiclient.Error{Status: 401, Message: "Invalid token"}, CategoryUnauthenticated},
		{"403", &apiclient.Error{Status: 403, Message: "Admins only"}, CategoryForbidden},
		{"404", &apiclient.Error{Status: 404, Message: "Ticket not found"}, CategoryNotFound},
		{"422", &apiclient.Error{Status: 422, Message: "Subject required"}, CategoryValidation},
		{"503", &apiclient.Error{Status: 503, Message: "Try later"}, CategoryTransient},
		{"500", &apiclient.Error{Status: 500, Message: "Boom"}, CategoryInternal},
		{"wrapped", fmt.Errorf("loading: %w", &apiclient.Error{Status: 404, Message: "gone"}), CategoryNotFound},
		{"deadline", fmt.Errorf("waiting: %w", context.DeadlineExceeded), CategoryTransient},
		{"other", errors.New("disk full"), CategoryInternal},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			err := Categorize(test.err, "load ticket 7")
			var toolErr *ToolError
			if !errors.As(err, &toolErr) {
				t.Fatalf("Categorize returned %T", err)
			}
			if toolErr.Category != test.want {
				t.Errorf("category = %s, want %s", toolErr.Category, test.want)
			}
			if !strings.HasPrefix(err.Error(), "load ticket 7: ") {
				t.Errorf("message = %q, want action prefix", err)
			}
			if !errors.Is(err, test.err) {
				t.Error("cause lost from the chain")
			}
		})
	}
}

func TestCategorizeKeepsToolErrors(t *testing.T) {
	t.Parallel()

	original := NotFound("agent %q not found", "sam")
	if got := Categorize(original, "assign"); got != error(original) {
		t.Errorf("Categorize rewrapped a ToolError: %v", got)
	}
	if Categorize(nil, "anything") != nil {
		t.Error("Categorize(nil) should be nil")
	}
}

func TestExitStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		code   int
		report bool
	}{
		{"nil", nil, 0, false},
		{"exit error", &ExitError{Code: 1}, 1, false},
		{"validation", Validation("bad"), 2, true},
		{"wrapped forbidden", fmt.Errorf("x: %w", Forbidden("no")), 5, true},
		{"plain", errors.New("plain"), 1, true},
	}
	for _, test := range tests {
		code, report := ExitStatus(test.err)
		if code != test.code || report != test.report {
			t.Errorf("%s: ExitStatus = (%d, %v), want (%d, %v)", test.name, code, report, test.code, test.report)
		}
	}
}
