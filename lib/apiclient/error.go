// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// DefaultErrorMessage is shown when a failed response carries no
// usable message.
const DefaultErrorMessage = "Something went wrong"

// NetworkErrorMessage is shown when no response was obtained.
const NetworkErrorMessage = "Network error. Please try again."

// Error is the single failure type returned by Client. Status is the
// HTTP status code, or 0 when the request never got a response.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s (%v)", e.Message, e.Err)
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

// Network reports whether the failure happened before a response was
// received.
func (e *Error) Network() bool { return e.Status == 0 }

// NotFound reports whether the backend answered 404.
func (e *Error) NotFound() bool { return e.Status == http.StatusNotFound }

// Unauthorized reports whether the backend rejected the credentials or
// token (401).
func (e *Error) Unauthorized() bool { return e.Status == http.StatusUnauthorized }

// Forbidden reports whether the backend refused the caller's role (403).
func (e *Error) Forbidden() bool { return e.Status == http.StatusForbidden }

// Message returns the user-facing text for err: the *Error message
// when err wraps one, otherwise fallback.
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// AsError returns the *Error wrapped by err, if any.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func networkError(method, path string, cause error) *Error {
	return &Error{
		Message: NetworkErrorMessage,
		Err:     fmt.Errorf("%s %s: %w", method, path, cause),
	}
}
