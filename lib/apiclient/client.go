// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package apiclient is the HTTP client for the SmartSupport REST
// backend. It builds every outbound request the same way: JSON content
// headers, the session's bearer token when one exists, caller headers
// layered on top, and a JSON body only when the caller supplies one.
// Every failure, network or application, surfaces as a single *Error
// whose Message is safe to show to the user.
//
// Typed endpoint methods (Login, ListTickets, GetTicket, ...) sit on
// top of Request and run list and entity payloads through the envelope
// package, so callers see flat typed values regardless of how the
// backend wrapped them.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/smartsupport/smartsupport/lib/netutil"
)

// DefaultBaseURL is used when the configuration names no backend.
const DefaultBaseURL = "http://localhost:8000/api"

// DefaultTimeout bounds each request when Config.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// TokenSource supplies the bearer token for each request. An empty
// token sends no Authorization header. *session.Store implements it.
type TokenSource interface {
	Token() string
}

// Config configures a Client.
type Config struct {
	// BaseURL is the backend API root, e.g. "http://localhost:8000/api".
	BaseURL string

	// Tokens supplies the bearer token. Nil means unauthenticated.
	Tokens TokenSource

	// Timeout bounds each request. Zero selects DefaultTimeout;
	// negative disables the client-side bound (the context still
	// applies).
	Timeout time.Duration

	// HTTPClient overrides the underlying *http.Client. Tests use it to
	// point at an httptest.Server.
	HTTPClient *http.Client

	// UserAgent is sent on every request when non-empty.
	UserAgent string

	// Logger receives a debug line per request. Nil discards.
	Logger *slog.Logger
}

// Client issues requests against the SmartSupport backend. Safe for
// concurrent use.
type Client struct {
	rest   *resty.Client
	tokens TokenSource
	logger *slog.Logger
}

// New creates a Client.
func New(config Config) *Client {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var rest *resty.Client
	if config.HTTPClient != nil {
		rest = resty.NewWithClient(config.HTTPClient)
	} else {
		rest = resty.New()
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	rest.SetBaseURL(baseURL)

	switch {
	case config.Timeout > 0:
		rest.SetTimeout(config.Timeout)
	case config.Timeout == 0:
		rest.SetTimeout(DefaultTimeout)
	}
	if config.UserAgent != "" {
		rest.SetHeader("User-Agent", config.UserAgent)
	}
	rest.SetLogger(restyLogger{logger: logger})

	return &Client{rest: rest, tokens: config.Tokens, logger: logger}
}

// BaseURL returns the backend API root.
func (client *Client) BaseURL() string {
	return client.rest.BaseURL
}

// Options describes one request.
type Options struct {
	// Method is the HTTP method. Empty means GET.
	Method string

	// Body is JSON-encoded when non-nil. A nil Body sends no body at
	// all (never the literal text "null").
	Body any

	// Headers are applied after the defaults and win on collision.
	Headers map[string]string

	// Query is appended to the URL.
	Query url.Values

	// Anonymous suppresses the Authorization header (login, health).
	Anonymous bool

	// ErrorFallback replaces DefaultErrorMessage for failures that
	// carry no backend message.
	ErrorFallback string
}

// Response is a successful (2xx) result.
type Response struct {
	// Status is the HTTP status code.
	Status int

	// Data is the raw JSON body. Empty for bodiless responses such as
	// 204 No Content.
	Data json.RawMessage

	// Success is always true on a returned Response; failures are
	// returned as *Error instead.
	Success bool
}

// Request sends one request to path (relative to the base URL).
func (client *Client) Request(ctx context.Context, path string, options Options) (*Response, error) {
	method := options.Method
	if method == "" {
		method = http.MethodGet
	}
	fallback := options.ErrorFallback
	if fallback == "" {
		fallback = DefaultErrorMessage
	}

	request := client.rest.R().SetContext(ctx).SetDoNotParseResponse(true)
	request.SetHeader("Content-Type", "application/json")
	request.SetHeader("Accept", "application/json")
	request.SetHeader("X-Request-ID", uuid.NewString())
	if !options.Anonymous && client.tokens != nil {
		if token := client.tokens.Token(); token != "" {
			request.SetHeader("Authorization", "Bearer "+token)
		}
	}
	for name, value := range options.Headers {
		request.SetHeader(name, value)
	}
	if len(options.Query) > 0 {
		request.SetQueryParamsFromValues(options.Query)
	}
	if options.Body != nil {
		encoded, err := json.Marshal(options.Body)
		if err != nil {
			return nil, &Error{Message: fallback, Err: fmt.Errorf("encoding %s %s body: %w", method, path, err)}
		}
		request.SetBody(encoded)
	}

	started := time.Now()
	response, err := request.Execute(method, path)
	if err != nil {
		client.logger.Debug("request failed",
			"method", method,
			"path", path,
			"error", err,
		)
		return nil, networkError(method, path, err)
	}

	body, readErr := readBody(response)
	status := response.StatusCode()
	client.logger.Debug("request completed",
		"method", method,
		"path", path,
		"status", status,
		"duration", time.Since(started),
	)
	if readErr != nil {
		return nil, &Error{Status: status, Message: fallback, Err: fmt.Errorf("%s %s: %w", method, path, readErr)}
	}

	if !response.IsSuccess() {
		return nil, &Error{
			Status:  status,
			Message: netutil.ErrorMessage(body, fallback),
			Err:     fmt.Errorf("%s %s: HTTP %d", method, path, status),
		}
	}

	trimmed := strings.TrimSpace(string(body))
	if trimmed != "" && !json.Valid([]byte(trimmed)) {
		return nil, &Error{Status: status, Message: fallback, Err: fmt.Errorf("%s %s: response is not JSON", method, path)}
	}
	return &Response{Status: status, Data: json.RawMessage(trimmed), Success: true}, nil
}

// Get sends a GET request.
func (client *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return client.Request(ctx, path, Options{Method: http.MethodGet, Query: query})
}

// Post sends a POST request. A nil body sends no body.
func (client *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return client.Request(ctx, path, Options{Method: http.MethodPost, Body: body})
}

// Put sends a PUT request. A nil body sends no body.
func (client *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return client.Request(ctx, path, Options{Method: http.MethodPut, Body: body})
}

// Patch sends a PATCH request. A nil body sends no body.
func (client *Client) Patch(ctx context.Context, path string, body any) (*Response, error) {
	return client.Request(ctx, path, Options{Method: http.MethodPatch, Body: body})
}

// Delete sends a DELETE request.
func (client *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return client.Request(ctx, path, Options{Method: http.MethodDelete})
}

func readBody(response *resty.Response) ([]byte, error) {
	raw := response.RawBody()
	if raw == nil {
		return nil, nil
	}
	defer raw.Close()
	return netutil.ReadResponse(raw)
}

// restyLogger routes resty's internal warnings into slog.
type restyLogger struct {
	logger *slog.Logger
}

func (adapter restyLogger) Errorf(format string, values ...any) {
	adapter.logger.Error(strings.TrimSpace(fmt.Sprintf(format, values...)))
}

func (adapter restyLogger) Warnf(format string, values ...any) {
	adapter.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, values...)))
}

func (adapter restyLogger) Debugf(format string, values ...any) {
	adapter.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, values...)))
}
