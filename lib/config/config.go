// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Environment variables consulted by Load.
const (
	EnvConfig      = "SMARTSUPPORT_CONFIG"
	EnvAPIURL      = "SMARTSUPPORT_API_URL"
	EnvSessionFile = "SMARTSUPPORT_SESSION_FILE"
	EnvEnvironment = "SMARTSUPPORT_ENVIRONMENT"
)

// Environment represents the deployment the client talks to.
type Environment string

const (
	// Development is a backend on the local machine.
	Development Environment = "development"
	// Staging is a pre-production backend.
	Staging Environment = "staging"
	// Production is the live support backend.
	Production Environment = "production"
)

// Config is the SmartSupport client configuration.
type Config struct {
	// Environment selects which override section applies.
	Environment Environment `yaml:"environment"`

	// API configures the backend connection.
	API APIConfig `yaml:"api"`

	// Session configures where the login session is persisted.
	Session SessionConfig `yaml:"session"`

	// UI configures the dashboards and terminal UI.
	UI UIConfig `yaml:"ui"`

	// Per-environment overrides, applied after the base config.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	API     *APIConfig     `yaml:"api,omitempty"`
	Session *SessionConfig `yaml:"session,omitempty"`
	UI      *UIConfig      `yaml:"ui,omitempty"`
}

// APIConfig configures the backend connection.
type APIConfig struct {
	// BaseURL is the REST API root.
	// Default: http://localhost:8000/api
	BaseURL string `yaml:"base_url"`

	// Timeout bounds each request, as a Go duration string.
	// Default: 30s
	Timeout string `yaml:"timeout"`

	// UserAgent is sent with every request.
	UserAgent string `yaml:"user_agent"`
}

// SessionConfig configures session persistence.
type SessionConfig struct {
	// Path is the session file. Empty selects the per-user default
	// under $XDG_CONFIG_HOME/smartsupport.
	Path string `yaml:"path"`

	// Sealed encrypts the session file with a passphrase from
	// SMARTSUPPORT_SESSION_PASSPHRASE.
	// Default: false (development), true (production)
	Sealed bool `yaml:"sealed"`

	// WorkFactor is the scrypt work factor for sealed sessions.
	// Default: 18
	WorkFactor int `yaml:"work_factor"`
}

// UIConfig configures the dashboards.
type UIConfig struct {
	// SearchDelay debounces search edits, as a Go duration string.
	// Default: 500ms
	SearchDelay string `yaml:"search_delay"`

	// RenderMarkdown renders assistant replies as terminal markdown.
	// Default: true
	RenderMarkdown *bool `yaml:"render_markdown,omitempty"`
}

// Default returns the default configuration.
func Default() *Config {
	renderMarkdown := true
	return &Config{
		Environment: Development,
		API: APIConfig{
			BaseURL: "http://localhost:8000/api",
			Timeout: "30s",
		},
		Session: SessionConfig{
			WorkFactor: 18,
		},
		UI: UIConfig{
			SearchDelay:    "500ms",
			RenderMarkdown: &renderMarkdown,
		},
	}
}

// Load builds the configuration: defaults, then the file named by
// path or $SMARTSUPPORT_CONFIG (if any), then the environment's
// override section, then variable expansion, then environment
// variable overrides. With no file the defaults stand alone.
//
// The result is not validated; callers apply flag overrides first and
// then call Validate.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, fmt.Errorf("loading config %s: %w", path, err)
		}
	}
	if environment := os.Getenv(EnvEnvironment); environment != "" {
		cfg.Environment = Environment(environment)
	}
	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()
	cfg.applyEnvironmentVariables()
	return cfg, nil
}

// LoadFile loads configuration from a specific file path, ignoring
// $SMARTSUPPORT_CONFIG.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}
	return Load(path)
}

// loadFile merges a single file into the current config. Files ending
// in .json or .jsonc may carry comments and trailing commas; the
// stripped JSON is valid YAML, so one decoder serves both.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		data = jsonc.ToJSON(data)
	}
	return yaml.Unmarshal(data, c)
}

// applyEnvironmentOverrides applies the section matching Environment.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
		// Production defaults: sessions are sealed at rest.
		if overrides == nil {
			overrides = &ConfigOverrides{
				Session: &SessionConfig{Sealed: true},
			}
		}
	}

	if overrides == nil {
		return
	}

	if overrides.API != nil {
		if overrides.API.BaseURL != "" {
			c.API.BaseURL = overrides.API.BaseURL
		}
		if overrides.API.Timeout != "" {
			c.API.Timeout = overrides.API.Timeout
		}
		if overrides.API.UserAgent != "" {
			c.API.UserAgent = overrides.API.UserAgent
		}
	}

	if overrides.Session != nil {
		if overrides.Session.Path != "" {
			c.Session.Path = overrides.Session.Path
		}
		// Sealed is a bool, so it always applies from overrides.
		c.Session.Sealed = overrides.Session.Sealed
		if overrides.Session.WorkFactor != 0 {
			c.Session.WorkFactor = overrides.Session.WorkFactor
		}
	}

	if overrides.UI != nil {
		if overrides.UI.SearchDelay != "" {
			c.UI.SearchDelay = overrides.UI.SearchDelay
		}
		if overrides.UI.RenderMarkdown != nil {
			c.UI.RenderMarkdown = overrides.UI.RenderMarkdown
		}
	}
}

// applyEnvironmentVariables lets the environment replace the backend
// URL and session file.
func (c *Config) applyEnvironmentVariables() {
	if value := os.Getenv(EnvAPIURL); value != "" {
		c.API.BaseURL = value
	}
	if value := os.Getenv(EnvSessionFile); value != "" {
		c.Session.Path = value
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in the
// URL and path fields.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.API.BaseURL = expandVars(c.API.BaseURL, vars)
	c.Session.Path = expandVars(c.Session.Path, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns, preferring
// vars over the process environment.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// RequestTimeout returns API.Timeout as a duration.
func (c *Config) RequestTimeout() (time.Duration, error) {
	return parseDuration("api.timeout", c.API.Timeout)
}

// SearchDelay returns UI.SearchDelay as a duration.
func (c *Config) SearchDelay() (time.Duration, error) {
	return parseDuration("ui.search_delay", c.UI.SearchDelay)
}

// MarkdownEnabled reports whether assistant replies render as markdown.
func (c *Config) MarkdownEnabled() bool {
	return c.UI.RenderMarkdown == nil || *c.UI.RenderMarkdown
}

func parseDuration(field, value string) (time.Duration, error) {
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if duration < 0 {
		return 0, fmt.Errorf("%s must not be negative", field)
	}
	return duration, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.API.BaseURL == "" {
		errs = append(errs, fmt.Errorf("api.base_url is required"))
	} else if parsed, err := url.Parse(c.API.BaseURL); err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		errs = append(errs, fmt.Errorf("api.base_url must be an http or https URL, got %q", c.API.BaseURL))
	}

	if _, err := c.RequestTimeout(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.SearchDelay(); err != nil {
		errs = append(errs, err)
	}

	if c.Session.Sealed && c.Session.WorkFactor <= 0 {
		errs = append(errs, fmt.Errorf("session.work_factor must be positive when session.sealed is set"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
