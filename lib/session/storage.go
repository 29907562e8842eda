// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"
)

// Storage keys.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// ErrCorrupt marks persisted session data that exists but cannot be
// decoded. The Store treats it as "no session".
var ErrCorrupt = errors.New("session data is corrupt")

// Storage is a persisted key/value map. Write replaces the whole map
// in one step, so multi-key updates are never observed half-applied.
type Storage interface {
	// Read returns all entries. A backing store that does not exist yet
	// yields an empty map and no error.
	Read() (map[string]string, error)

	// Write replaces all entries. An empty map removes every key.
	Write(entries map[string]string) error
}

// MemoryStorage keeps entries in process memory.
type MemoryStorage struct {
	mu      sync.Mutex
	entries map[string]string
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{entries: map[string]string{}}
}

func (storage *MemoryStorage) Read() (map[string]string, error) {
	storage.mu.Lock()
	defer storage.mu.Unlock()
	return maps.Clone(storage.entries), nil
}

func (storage *MemoryStorage) Write(entries map[string]string) error {
	storage.mu.Lock()
	defer storage.mu.Unlock()
	storage.entries = maps.Clone(entries)
	if storage.entries == nil {
		storage.entries = map[string]string{}
	}
	return nil
}

// FileStorage persists entries as a JSON object file. The parent
// directory is created with mode 0700 and the file written with mode
// 0600, since it contains a bearer token.
type FileStorage struct {
	path string
}

// NewFileStorage returns a FileStorage at path. Nothing is touched on
// disk until the first Write.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Path returns the session file path.
func (storage *FileStorage) Path() string { return storage.path }

func (storage *FileStorage) Read() (map[string]string, error) {
	data, err := readFileIfExists(storage.path)
	if err != nil || data == nil {
		return map[string]string{}, err
	}
	return decodeEntries(data, storage.path)
}

func (storage *FileStorage) Write(entries map[string]string) error {
	if len(entries) == 0 {
		return removeIfExists(storage.path)
	}
	data, err := encodeEntries(entries)
	if err != nil {
		return err
	}
	return writeFileAtomic(storage.path, data)
}

// DefaultPath returns the session file location: $SMARTSUPPORT_SESSION_FILE
// if set, else $XDG_CONFIG_HOME/smartsupport/session.json, else
// ~/.config/smartsupport/session.json.
func DefaultPath() string {
	if envPath := os.Getenv("SMARTSUPPORT_SESSION_FILE"); envPath != "" {
		return envPath
	}

	configDirectory := os.Getenv("XDG_CONFIG_HOME")
	if configDirectory == "" {
		homeDirectory, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "smartsupport-session.json")
		}
		configDirectory = filepath.Join(homeDirectory, ".config")
	}
	return filepath.Join(configDirectory, "smartsupport", "session.json")
}

func encodeEntries(entries map[string]string) ([]byte, error) {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling session: %w", err)
	}
	return append(data, '\n'), nil
}

func decodeEntries(data []byte, source string) (map[string]string, error) {
	entries := map[string]string{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return map[string]string{}, fmt.Errorf("parsing %s: %w: %v", source, ErrCorrupt, err)
	}
	return entries, nil
}

// readFileIfExists returns nil data and nil error for a missing file.
func readFileIfExists(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading session file %s: %w", path, err)
	}
	return data, nil
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing session file %s: %w", path, err)
	}
	return nil
}

// writeFileAtomic writes data to a temporary file beside path and
// renames it into place.
func writeFileAtomic(path string, data []byte) error {
	directory := filepath.Dir(path)
	if err := os.MkdirAll(directory, 0700); err != nil {
		return fmt.Errorf("creating session directory %s: %w", directory, err)
	}

	temporary, err := os.CreateTemp(directory, ".session-*")
	if err != nil {
		return fmt.Errorf("creating temporary session file: %w", err)
	}
	temporaryPath := temporary.Name()
	defer os.Remove(temporaryPath)

	if err := temporary.Chmod(0600); err != nil {
		temporary.Close()
		return fmt.Errorf("setting session file mode: %w", err)
	}
	if _, err := temporary.Write(data); err != nil {
		temporary.Close()
		return fmt.Errorf("writing session file: %w", err)
	}
	if err := temporary.Close(); err != nil {
		return fmt.Errorf("closing session file: %w", err)
	}
	if err := os.Rename(temporaryPath, path); err != nil {
		return fmt.Errorf("replacing session file %s: %w", path, err)
	}
	return nil
}
