// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/smartsupport/smartsupport/lib/schema"
)

// Session is the logged-in state. The zero Session means "nobody is
// logged in".
type Session struct {
	Token string
	User  *schema.User
}

// Valid reports whether both halves of the pair are present.
func (session Session) Valid() bool {
	return session.Token != "" && session.User != nil
}

// Role returns the user's role, or "" for an empty session.
func (session Session) Role() schema.Role {
	if session.User == nil {
		return ""
	}
	return session.User.Role
}

// Store is the single source of truth for the client session. It is
// safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	storage Storage
	logger  *slog.Logger
}

// NewStore returns a Store over storage. A nil logger discards.
func NewStore(storage Storage, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{storage: storage, logger: logger}
}

// Save persists token and user together. Called only after a
// successful login.
func (store *Store) Save(token string, user schema.User) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("saving session: token is empty")
	}
	userJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("saving session: encoding user: %w", err)
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	if err := store.storage.Write(map[string]string{
		KeyToken: token,
		KeyUser:  string(userJSON),
	}); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// Load returns the persisted session, or the zero Session when either
// half is absent or the stored user cannot be decoded. The error is
// non-nil only when the storage itself fails (for example, a permission
// error); undecodable data is never an error.
func (store *Store) Load() (Session, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	session, _, err := store.loadLocked()
	return session, err
}

// loadLocked returns the session and whether any half of the pair was
// present in storage.
func (store *Store) loadLocked() (Session, bool, error) {
	entries, err := store.storage.Read()
	if err != nil {
		if errors.Is(err, ErrCorrupt) {
			store.logger.Warn("ignoring unreadable session data", "error", err)
			return Session{}, true, nil
		}
		return Session{}, false, fmt.Errorf("loading session: %w", err)
	}

	token := entries[KeyToken]
	userJSON := entries[KeyUser]
	present := token != "" || userJSON != ""
	if token == "" || userJSON == "" {
		return Session{}, present, nil
	}

	var user schema.User
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		store.logger.Warn("ignoring malformed session user", "error", err)
		return Session{}, present, nil
	}
	return Session{Token: token, User: &user}, present, nil
}

// Clear removes both entries.
func (store *Store) Clear() error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if err := store.storage.Write(map[string]string{}); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// Token returns the stored bearer token, or "" when no valid session
// exists. This makes a Store usable as the API client's token source.
func (store *Store) Token() string {
	session, err := store.Load()
	if err != nil || !session.Valid() {
		return ""
	}
	return session.Token
}

// GuardReason says why a guard refused a view.
type GuardReason string

const (
	ReasonNoSession GuardReason = "no_session"
	ReasonWrongRole GuardReason = "wrong_role"
)

// GuardError is returned by Require when the view must not be shown.
// Redirect is where the client should go instead.
type GuardError struct {
	Reason   GuardReason
	Redirect schema.Route
	Have     schema.Role
	Want     []schema.Role
}

func (e *GuardError) Error() string {
	if e.Reason == ReasonWrongRole {
		wanted := make([]string, len(e.Want))
		for index, role := range e.Want {
			wanted[index] = string(role)
		}
		return fmt.Sprintf("this view requires the %s role (logged in as %s)", strings.Join(wanted, " or "), e.Have)
	}
	return "not logged in"
}

// Require returns the current session if it is valid and, when roles
// are given, the user's role is one of them. Otherwise it returns a
// *GuardError redirecting to the login view. A half-present pair
// (token without user, user without token, or an undecodable user) is
// cleared before returning.
func (store *Store) Require(roles ...schema.Role) (Session, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	session, present, err := store.loadLocked()
	if err != nil {
		return Session{}, err
	}
	if !session.Valid() {
		if present {
			if err := store.storage.Write(map[string]string{}); err != nil {
				return Session{}, fmt.Errorf("clearing incomplete session: %w", err)
			}
			store.logger.Info("cleared incomplete session")
		}
		return Session{}, &GuardError{Reason: ReasonNoSession, Redirect: schema.RouteLogin}
	}
	if len(roles) > 0 && !slices.Contains(roles, session.User.Role) {
		return Session{}, &GuardError{
			Reason:   ReasonWrongRole,
			Redirect: schema.RouteLogin,
			Have:     session.User.Role,
			Want:     roles,
		}
	}
	return session, nil
}

// Home returns the route a session should open on: the role's landing
// route when logged in, the login view otherwise.
func (store *Store) Home() schema.Route {
	session, err := store.Load()
	if err != nil || !session.Valid() {
		return schema.RouteLogin
	}
	return session.User.Role.LandingRoute()
}
