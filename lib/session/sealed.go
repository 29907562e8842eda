// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"bytes"
	"fmt"
	"io"

	"filippo.io/age"
	"filippo.io/age/armor"
)

// PassphraseEnv names the environment variable that enables sealed
// session storage.
const PassphraseEnv = "SMARTSUPPORT_SESSION_PASSPHRASE"

// SealedStorage persists entries like FileStorage but encrypts the file
// with an age scrypt passphrase, ASCII-armored. A file that does not
// decrypt with the passphrase reads as corrupt, which the Store treats
// as "no session".
type SealedStorage struct {
	path       string
	passphrase string
	workFactor int
}

// NewSealedStorage returns a SealedStorage at path. workFactor is the
// scrypt log2 cost; zero selects age's default.
func NewSealedStorage(path, passphrase string, workFactor int) (*SealedStorage, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("sealed session storage requires a passphrase")
	}
	return &SealedStorage{path: path, passphrase: passphrase, workFactor: workFactor}, nil
}

// Path returns the session file path.
func (storage *SealedStorage) Path() string { return storage.path }

func (storage *SealedStorage) Read() (map[string]string, error) {
	ciphertext, err := readFileIfExists(storage.path)
	if err != nil || ciphertext == nil {
		return map[string]string{}, err
	}

	identity, err := age.NewScryptIdentity(storage.passphrase)
	if err != nil {
		return map[string]string{}, fmt.Errorf("creating age identity: %w", err)
	}
	if storage.workFactor > 0 {
		identity.SetMaxWorkFactor(storage.workFactor)
	}

	reader, err := age.Decrypt(armor.NewReader(bytes.NewReader(ciphertext)), identity)
	if err != nil {
		return map[string]string{}, fmt.Errorf("decrypting %s: %w: %v", storage.path, ErrCorrupt, err)
	}
	plaintext, err := io.ReadAll(reader)
	if err != nil {
		return map[string]string{}, fmt.Errorf("reading decrypted %s: %w: %v", storage.path, ErrCorrupt, err)
	}
	return decodeEntries(plaintext, storage.path)
}

func (storage *SealedStorage) Write(entries map[string]string) error {
	if len(entries) == 0 {
		return removeIfExists(storage.path)
	}

	plaintext, err := encodeEntries(entries)
	if err != nil {
		return err
	}

	recipient, err := age.NewScryptRecipient(storage.passphrase)
	if err != nil {
		return fmt.Errorf("creating age recipient: %w", err)
	}
	if storage.workFactor > 0 {
		recipient.SetWorkFactor(storage.workFactor)
	}

	var ciphertext bytes.Buffer
	armorWriter := armor.NewWriter(&ciphertext)
	writer, err := age.Encrypt(armorWriter, recipient)
	if err != nil {
		return fmt.Errorf("creating age encryptor: %w", err)
	}
	if _, err := writer.Write(plaintext); err != nil {
		return fmt.Errorf("encrypting session: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalizing session encryption: %w", err)
	}
	if err := armorWriter.Close(); err != nil {
		return fmt.Errorf("finalizing session armor: %w", err)
	}

	return writeFileAtomic(storage.path, ciphertext.Bytes())
}
