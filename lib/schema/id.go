// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ID is a backend-assigned numeric identifier (ticket, user, message).
// It decodes from a JSON number or from a quoted decimal string and
// encodes as a JSON number. Null decodes to zero.
type ID int64

// ParseID parses a decimal identifier as typed on the command line.
func ParseID(value string) (ID, error) {
	parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: must be a decimal number", value)
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("invalid id %q: must be positive", value)
	}
	return ID(parsed), nil
}

// String returns the decimal form used in URL paths.
func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// UnmarshalJSON accepts 42, "42", and null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = 0
		return nil
	}

	text := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &text); err != nil {
			return fmt.Errorf("decoding id: %w", err)
		}
	}

	parsed, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return fmt.Errorf("decoding id %s: %w", data, err)
	}
	*id = ID(parsed)
	return nil
}

// Timestamp is a backend timestamp. Decoding is lenient: RFC 3339 with
// or without fractional seconds, the SQL "2006-01-02 15:04:05" layout,
// and bare dates are accepted. Null, non-string, and unparseable values
// decode to the zero time without error so that a single odd field
// never discards the enclosing ticket.
type Timestamp struct {
	time.Time
}

// timestampLayouts are tried in order. RFC3339Nano also accepts values
// without a fractional part.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses text with the accepted layouts. The boolean
// result reports whether any layout matched.
func ParseTimestamp(text string) (Timestamp, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Timestamp{}, false
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, text); err == nil {
			return Timestamp{Time: parsed}, true
		}
	}
	return Timestamp{}, false
}

// UnmarshalJSON decodes leniently; it never returns an error.
func (timestamp *Timestamp) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		timestamp.Time = time.Time{}
		return nil
	}
	parsed, _ := ParseTimestamp(text)
	*timestamp = parsed
	return nil
}

// MarshalJSON encodes RFC 3339 with nanoseconds, or null for the zero
// time.
func (timestamp Timestamp) MarshalJSON() ([]byte, error) {
	if timestamp.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(timestamp.Time.Format(time.RFC3339Nano))
}
