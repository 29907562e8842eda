// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/smartsupport/smartsupport/lib/apiclient"
	"github.com/smartsupport/smartsupport/lib/session"
)

// ErrorCategory classifies command errors so that scripts can decide
// whether to retry, fix input, or sign in again without parsing
// message text. Each category has its own exit code.
type ErrorCategory string

const (
	// CategoryValidation: missing arguments, unparseable values, bad flags.
	CategoryValidation ErrorCategory = "validation"

	// CategoryNotFound: the referenced ticket or agent does not exist.
	CategoryNotFound ErrorCategory = "not_found"

	// CategoryUnauthenticated: no session, or the backend rejected it.
	// The fix is "smartsupport login".
	CategoryUnauthenticated ErrorCategory = "unauthenticated"

	// CategoryForbidden: the signed-in role may not do this.
	CategoryForbidden ErrorCategory = "forbidden"

	// CategoryTransient: network error or timeout; retrying may help.
	CategoryTransient ErrorCategory = "transient"

	// CategoryInternal: anything else, including backend 5xx answers.
	CategoryInternal ErrorCategory = "internal"
)

// ExitCode returns the process exit status for the category.
func (category ErrorCategory) ExitCode() int {
	switch category {
	case CategoryValidation:
		return 2
	case CategoryNotFound:
		return 3
	case CategoryUnauthenticated:
		return 4
	case CategoryForbidden:
		return 5
	case CategoryTransient:
		return 6
	default:
		return 1
	}
}

// ToolError is a categorized error returned by CLI commands. It wraps
// an inner error, preserving the chain for errors.Is and errors.As.
type ToolError struct {
	// Category classifies the error for programmatic handling.
	Category ErrorCategory

	// Err is the underlying error with the human-readable message.
	Err error
}

func (e *ToolError) Error() string { return e.Err.Error() }

func (e *ToolError) Unwrap() error { return e.Err }

// Validation creates a validation error: the caller provided bad input.
func Validation(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryValidation, Err: fmt.Errorf(format, args...)}
}

// NotFound creates a not-found error: a referenced resource does not exist.
func NotFound(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryNotFound, Err: fmt.Errorf(format, args...)}
}

// Unauthenticated creates an error for a missing or rejected session.
func Unauthenticated(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryUnauthenticated, Err: fmt.Errorf(format, args...)}
}

// Forbidden creates a forbidden error: the caller lacks permission.
func Forbidden(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryForbidden, Err: fmt.Errorf(format, args...)}
}

// Transient creates a transient error: a temporary failure that may succeed on retry.
func Transient(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryTransient, Err: fmt.Errorf(format, args...)}
}

// Internal creates an internal error: an unexpected failure, bug, or I/O error.
func Internal(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryInternal, Err: fmt.Errorf(format, args...)}
}

// Categorize wraps err in a ToolError whose category follows from what
// failed: a session guard, a backend status, or a network failure.
// action says what was being attempted ("load ticket 42"). The
// user-facing backend message is kept; the cause stays in the chain.
func Categorize(err error, action string) error {
	if err == nil {
		return nil
	}
	var toolErr *ToolError
	if errors.As(err, &toolErr) {
		return err
	}

	var guard *session.GuardError
	if errors.As(err, &guard) {
		if guard.Reason == session.ReasonNoSession {
			return &ToolError{Category: CategoryUnauthenticated, Err: fmt.Errorf("%s: not signed in (run \"smartsupport login\" first): %w", action, err)}
		}
		return &ToolError{Category: CategoryForbidden, Err: fmt.Errorf("%s: %w", action, err)}
	}

	if apiErr, ok := apiclient.AsError(err); ok {
		category := CategoryInternal
		switch {
		case apiErr.Network():
			category = CategoryTransient
		case apiErr.Unauthorized():
			category = CategoryUnauthenticated
		case apiErr.Forbidden():
			category = CategoryForbidden
		case apiErr.NotFound():
			category = CategoryNotFound
		case apiErr.Status == http.StatusBadRequest || apiErr.Status == http.StatusUnprocessableEntity:
			category = CategoryValidation
		case apiErr.Status == http.StatusTooManyRequests || apiErr.Status == http.StatusServiceUnavailable:
			category = CategoryTransient
		}
		return &ToolError{Category: category, Err: fmt.Errorf("%s: %w", action, err)}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &ToolError{Category: CategoryTransient, Err: fmt.Errorf("%s: %w", action, err)}
	}
	return &ToolError{Category: CategoryInternal, Err: fmt.Errorf("%s: %w", action, err)}
}
