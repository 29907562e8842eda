// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil provides bounded HTTP response reading for the
// SmartSupport API client.
//
// ReadResponse caps body reads at MaxResponseSize so a misbehaving
// server cannot exhaust client memory. ErrorMessage pulls the
// human-readable "message" field out of an error body.
package netutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// MaxResponseSize bounds JSON API response body reads at 16 MiB. A
// paginated ticket page is a few hundred kilobytes at most.
const MaxResponseSize int64 = 16 << 20

// ErrResponseTooLarge is returned when a body exceeds MaxResponseSize.
var ErrResponseTooLarge = errors.New("response body exceeds size limit")

// ReadResponse reads a JSON API response body. Bodies longer than
// MaxResponseSize fail with ErrResponseTooLarge rather than being
// silently truncated into invalid JSON.
func ReadResponse(body io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if int64(len(data)) > MaxResponseSize {
		return nil, fmt.Errorf("%w (%d bytes)", ErrResponseTooLarge, MaxResponseSize)
	}
	return data, nil
}

// ErrorMessage returns the "message" string from a JSON error body, or
// fallback when the body is not JSON, has no message, or the message is
// blank.
func ErrorMessage(body []byte, fallback string) string {
	var payload struct {
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Message) == 0 {
		return fallback
	}
	var message string
	if err := json.Unmarshal(payload.Message, &message); err != nil {
		return fallback
	}
	if strings.TrimSpace(message) == "" {
		return fallback
	}
	return message
}
