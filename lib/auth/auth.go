// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package auth implements the login and home flows shared by the CLI
// and the full-screen client: authenticate, persist the session, and
// pick the landing view.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/smartsupport/smartsupport/lib/apiclient"
	"github.com/smartsupport/smartsupport/lib/schema"
	"github.com/smartsupport/smartsupport/lib/session"
)

// DemoPassword is shared by every demo account.
const DemoPassword = "password"

// DemoAccount is a quick-login identity seeded by the backend.
type DemoAccount struct {
	Role  schema.Role
	Email string
}

// DemoAccounts lists one account per role, in role order.
var DemoAccounts = []DemoAccount{
	{Role: schema.RoleCustomer, Email: "customer@test.com"},
	{Role: schema.RoleAgent, Email: "agent@test.com"},
	{Role: schema.RoleAdmin, Email: "admin@test.com"},
}

// Demo returns the demo credentials for role.
func Demo(role schema.Role) (schema.Credentials, bool) {
	for _, account := range DemoAccounts {
		if account.Role == role {
			return schema.Credentials{Email: account.Email, Password: DemoPassword}, true
		}
	}
	return schema.Credentials{}, false
}

// ErrMissingCredentials is returned when the email or password is blank.
var ErrMissingCredentials = errors.New("email and password are required")

// Backend is the backend surface the flows need.
// *apiclient.Client implements it.
type Backend interface {
	Login(ctx context.Context, credentials schema.Credentials) (schema.LoginResult, error)
	Health(ctx context.Context) error
}

// Login authenticates, saves the token and profile pair, and returns
// the signed-in user with their landing route. Backend failures come
// back as *apiclient.Error; show them with FailureMessage.
func Login(ctx context.Context, backend Backend, store *session.Store, credentials schema.Credentials) (schema.User, schema.Route, error) {
	credentials.Email = strings.TrimSpace(credentials.Email)
	if credentials.Email == "" || credentials.Password == "" {
		return schema.User{}, schema.RouteLogin, ErrMissingCredentials
	}

	result, err := backend.Login(ctx, credentials)
	if err != nil {
		return schema.User{}, schema.RouteLogin, err
	}
	if !result.User.Role.Valid() {
		return schema.User{}, schema.RouteLogin, &apiclient.Error{
			Message: apiclient.LoginFailedMessage,
			Err:     fmt.Errorf("login returned unknown role %q", result.User.Role),
		}
	}
	if err := store.Save(result.Token, result.User); err != nil {
		return schema.User{}, schema.RouteLogin, fmt.Errorf("saving session: %w", err)
	}
	return result.User, result.User.Role.LandingRoute(), nil
}

// FailureMessage is the line shown to the user for a Login error.
func FailureMessage(err error) string {
	if errors.Is(err, ErrMissingCredentials) {
		return "Please enter your email and password"
	}
	return apiclient.Message(err, apiclient.LoginFailedMessage)
}

// Logout clears the saved session.
func Logout(store *session.Store) error {
	if err := store.Clear(); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// Connection is the result of a health probe.
type Connection string

const (
	Connected    Connection = "Connected"
	Disconnected Connection = "Disconnected"
)

// Probe checks whether the backend answers its health endpoint.
func Probe(ctx context.Context, backend Backend) Connection {
	if err := backend.Health(ctx); err != nil {
		return Disconnected
	}
	return Connected
}

// Landing is what the home view resolves to.
type Landing struct {
	// Route is the role dashboard for a valid session, the login view
	// otherwise.
	Route schema.Route

	// User is set when a valid session exists.
	User *schema.User

	// Connection is probed only when there is no session to resume.
	Connection Connection
}

// Home resolves the opening view: a valid session goes straight to its
// dashboard; without one the backend is probed so the login view can
// show whether it is reachable.
func Home(ctx context.Context, backend Backend, store *session.Store) Landing {
	current, err := store.Load()
	if err == nil && current.Valid() {
		return Landing{Route: current.Role().LandingRoute(), User: current.User}
	}
	return Landing{Route: schema.RouteLogin, Connection: Probe(ctx, backend)}
}
