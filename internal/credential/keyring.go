// Package credential stores language-model API keys in the OS keyring.
// OAuth tokens for the mailbox are not kept here; the mail package caches
// them in a file.
package credential

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/99designs/keyring"

	"github.com/nhle/lenah/internal/model"
)

const serviceName = "lenah"

// Store reads and writes secrets in a keyring.
type Store struct {
	open func() (keyring.Keyring, error)
}

// NewStore returns a store backed by the platform keyring, falling back to
// an encrypted file under the config directory.
func NewStore() *Store {
	return &Store{open: openKeyring}
}

// NewStoreWithRing wraps an already-open keyring, such as an in-memory
// one in tests.
func NewStoreWithRing(ring keyring.Keyring) *Store {
	return &Store{open: func() (keyring.Keyring, error) { return ring, nil }}
}

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  filepath.Join(model.ConfigDir(), "credentials"),
		FilePasswordFunc:         keyring.FixedStringPrompt("lenah-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Get retrieves a credential value by key.
func (s *Store) Get(key string) (string, error) {
	ring, err := s.open()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(key)
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}

	return string(item.Data), nil
}

// Set stores a credential value by key.
func (s *Store) Set(key string, value string) error {
	ring, err := s.open()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:   key,
		Data:  []byte(value),
		Label: "LENAH " + key,
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}

	return nil
}

// Delete removes a credential by key.
func (s *Store) Delete(key string) error {
	ring, err := s.open()
	if err != nil {
		return err
	}

	err = ring.Remove(key)
	if err != nil {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}

	return nil
}

// KeyName is the keyring entry for provider's API key.
func KeyName(provider string) string {
	return provider + "-api-key"
}

// EnvName is the environment variable for provider's API key.
func EnvName(provider string) string {
	return strings.ToUpper(provider) + "_API_KEY"
}

// APIKey resolves provider's API key from the environment, then the
// keyring. It returns where the key came from ("env" or "keyring"). A key
// that is simply absent is not an error: both results are empty.
func (s *Store) APIKey(provider string) (key, source string, err error) {
	if v := strings.TrimSpace(os.Getenv(EnvName(provider))); v != "" {
		return v, "env", nil
	}

	v, err := s.Get(KeyName(provider))
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", "", nil
		}
		return "", "", err
	}
	return strings.TrimSpace(v), "keyring", nil
}
