// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package schema

// User is a backend user profile. The same shape appears as the login
// response profile, the session's persisted user, a ticket's customer
// and agent, and a message sender.
type User struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`

	// Email is present on login responses and nested ticket users but
	// is not required for the session profile.
	Email string `json:"email,omitempty"`

	Role Role `json:"role"`
}

// DisplayName returns the user's name, or fallback when the name is
// empty or the user is nil.
func (user *User) DisplayName(fallback string) string {
	if user == nil || user.Name == "" {
		return fallback
	}
	return user.Name
}

// Agent is an assignable support agent as returned by GET /users/agents.
type Agent struct {
	ID    ID     `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Credentials is the POST /login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the POST /login success body.
type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
