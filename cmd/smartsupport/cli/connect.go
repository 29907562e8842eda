// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/smartsupport/smartsupport/lib/apiclient"
	"github.com/smartsupport/smartsupport/lib/config"
	"github.com/smartsupport/smartsupport/lib/schema"
	"github.com/smartsupport/smartsupport/lib/session"
	"github.com/smartsupport/smartsupport/lib/version"
)

// CommandTimeout bounds a one-shot command's backend calls.
const CommandTimeout = 30 * time.Second

// ConnectionParams holds the flags every backend-facing command
// shares. Embed it in a command's parameter struct:
//
//	type showParams struct {
//	    cli.ConnectionParams
//	    cli.JSONOutput
//	}
type ConnectionParams struct {
	ConfigFile  string `json:"-" flag:"config"       desc:"configuration file (YAML, JSON, or JSONC; default $SMARTSUPPORT_CONFIG)"`
	APIURL      string `json:"-" flag:"api-url"      desc:"backend API root, overriding the configuration"`
	SessionFile string `json:"-" flag:"session-file" desc:"session file, overriding the configuration"`
	Verbose     bool   `json:"-" flag:"verbose,v"    desc:"log each request at debug level"`
}

// VerboseLogging implements [Verbosity].
func (params *ConnectionParams) VerboseLogging() bool { return params.Verbose }

// Connection is a configured backend client plus the session store
// that supplies its token.
type Connection struct {
	Config *config.Config
	Store  *session.Store
	Client *apiclient.Client
	Logger *slog.Logger

	// SessionPath is the file the session is persisted to.
	SessionPath string
}

// Connect loads the configuration, applies flag overrides, and builds
// the session store and API client. It does not contact the backend.
func (params *ConnectionParams) Connect(logger *slog.Logger) (*Connection, error) {
	return params.connect(logger, nil)
}

// ConnectEphemeral is Connect with a process-local session: nothing
// is read from or written to the session file.
func (params *ConnectionParams) ConnectEphemeral(logger *slog.Logger) (*Connection, error) {
	return params.connect(logger, session.NewMemoryStorage())
}

func (params *ConnectionParams) connect(logger *slog.Logger, storage session.Storage) (*Connection, error) {
	cfg, err := config.Load(params.ConfigFile)
	if err != nil {
		return nil, Validation("%w", err)
	}
	if params.APIURL != "" {
		cfg.API.BaseURL = params.APIURL
	}
	if params.SessionFile != "" {
		cfg.Session.Path = params.SessionFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, Validation("invalid configuration: %w", err)
	}

	sessionPath := cfg.Session.Path
	if sessionPath == "" {
		sessionPath = session.DefaultPath()
	}
	if storage == nil {
		storage, err = openStorage(cfg.Session, sessionPath)
		if err != nil {
			return nil, err
		}
	} else {
		sessionPath = ""
	}
	store := session.NewStore(storage, logger)

	timeout, _ := cfg.RequestTimeout()
	userAgent := cfg.API.UserAgent
	if userAgent == "" {
		userAgent = version.UserAgent()
	}
	client := apiclient.New(apiclient.Config{
		BaseURL:   cfg.API.BaseURL,
		Tokens:    store,
		Timeout:   timeout,
		UserAgent: userAgent,
		Logger:    logger,
	})

	logger.Debug("connection configured",
		"environment", cfg.Environment,
		"api", cfg.API.BaseURL,
		"sealed_session", cfg.Session.Sealed,
	)
	return &Connection{Config: cfg, Store: store, Client: client, Logger: logger, SessionPath: sessionPath}, nil
}

func openStorage(cfg config.SessionConfig, path string) (session.Storage, error) {
	if !cfg.Sealed {
		return session.NewFileStorage(path), nil
	}
	passphrase := os.Getenv(session.PassphraseEnv)
	if passphrase == "" {
		return nil, Validation("session.sealed is set but $%s is empty", session.PassphraseEnv)
	}
	storage, err := session.NewSealedStorage(path, passphrase, cfg.WorkFactor)
	if err != nil {
		return nil, Validation("%w", err)
	}
	return storage, nil
}

// Require returns the saved session when the signed-in user holds one
// of roles (any role when none are given). The refusal is categorized
// before any backend request is made.
func (connection *Connection) Require(roles ...schema.Role) (session.Session, error) {
	current, err := connection.Store.Require(roles...)
	if err != nil {
		return session.Session{}, Categorize(err, "session check")
	}
	return current, nil
}

// WithTimeout derives the per-command context. The caller must call
// cancel.
func WithTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, CommandTimeout)
}
