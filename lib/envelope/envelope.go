// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package envelope extracts payloads from the inconsistently wrapped
// JSON bodies the SmartSupport backend returns. List endpoints answer
// with a bare array, {"data": [...]}, or a paginated
// {"data": {"data": [...], ...}}; single-entity endpoints answer with
// either the entity or {"data": entity}.
//
// Nothing in this package fails. An unrecognized shape yields an empty
// list or the body itself, because an empty view is an acceptable
// degraded state and a shape mismatch is never surfaced to the user.
package envelope

import (
	"bytes"
	"encoding/json"
)

// Strategy tries to extract a list payload from body. It reports
// whether it recognized the shape; the returned value is only
// meaningful when matched is true.
type Strategy struct {
	Name    string
	Extract func(body json.RawMessage) (value json.RawMessage, matched bool)
}

// ListStrategies are tried in order. Paginated must precede Wrapped:
// a paginated wrapper is an object under "data", and checking the
// deeper path first keeps the wrapper from being mistaken for the
// payload.
var ListStrategies = []Strategy{
	{Name: "paginated", Extract: paginated},
	{Name: "wrapped", Extract: wrapped},
	{Name: "bare", Extract: bare},
}

// emptyArray is what ExtractList returns when no strategy matches.
var emptyArray = json.RawMessage("[]")

// ExtractList returns the raw JSON array inside body, or "[]" when no
// strategy matches.
func ExtractList(body []byte) json.RawMessage {
	value, _ := ExtractListWith(ListStrategies, body)
	return value
}

// ExtractListWith runs strategies in order and returns the first match
// and its strategy name. With no match it returns "[]" and "".
func ExtractListWith(strategies []Strategy, body []byte) (json.RawMessage, string) {
	for _, strategy := range strategies {
		if value, matched := strategy.Extract(body); matched {
			return value, strategy.Name
		}
	}
	return emptyArray, ""
}

// List decodes the list payload of body into a slice of T. A body whose
// payload does not decode as []T yields an empty, non-nil slice.
func List[T any](body []byte) []T {
	var items []T
	if err := json.Unmarshal(ExtractList(body), &items); err != nil || items == nil {
		return []T{}
	}
	return items
}

// ExtractEntity applies the single-entity rule: body.data when present,
// non-null, and not an array; otherwise body itself.
func ExtractEntity(body []byte) json.RawMessage {
	if data, ok := field(body, "data"); ok && !isNull(data) && !isArray(data) {
		return data
	}
	return json.RawMessage(bytes.TrimSpace(body))
}

// Entity decodes the single-entity payload of body into T. The boolean
// reports whether decoding succeeded; on failure the zero T is
// returned.
func Entity[T any](body []byte) (T, bool) {
	var value T
	payload := ExtractEntity(body)
	if len(payload) == 0 || isNull(payload) {
		return value, false
	}
	if err := json.Unmarshal(payload, &value); err != nil {
		var zero T
		return zero, false
	}
	return value, true
}

func paginated(body json.RawMessage) (json.RawMessage, bool) {
	outer, ok := field(body, "data")
	if !ok {
		return nil, false
	}
	inner, ok := field(outer, "data")
	if !ok || !isArray(inner) {
		return nil, false
	}
	return inner, true
}

func wrapped(body json.RawMessage) (json.RawMessage, bool) {
	data, ok := field(body, "data")
	if !ok || !isArray(data) {
		return nil, false
	}
	return data, true
}

func bare(body json.RawMessage) (json.RawMessage, bool) {
	if !isArray(body) {
		return nil, false
	}
	return json.RawMessage(bytes.TrimSpace(body)), true
}

// field returns the raw value of key when body is a JSON object that has
// it.
func field(body json.RawMessage, key string) (json.RawMessage, bool) {
	if !isObject(body) {
		return nil, false
	}
	var object map[string]json.RawMessage
	if err := json.Unmarshal(body, &object); err != nil {
		return nil, false
	}
	value, ok := object[key]
	return value, ok
}

func isArray(value json.RawMessage) bool {
	trimmed := bytes.TrimSpace(value)
	return len(trimmed) > 0 && trimmed[0] == '[' && json.Valid(trimmed)
}

func isObject(value json.RawMessage) bool {
	trimmed := bytes.TrimSpace(value)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func isNull(value json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(value), []byte("null"))
}
