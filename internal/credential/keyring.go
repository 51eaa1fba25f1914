package credential

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/99designs/keyring"
)

const serviceName = "timekeeper"

// GoogleTokenKey holds the OAuth access token used by the sync client.
const GoogleTokenKey = "google-oauth-token"

// ErrNotFound is returned when no credential is stored under a key.
var ErrNotFound = keyring.ErrKeyNotFound

// Store reads and writes secrets.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// Keyring is the OS-backed Store.
type Keyring struct {
	cfg keyring.Config
}

// NewKeyring configures the system keyring, falling back to an encrypted
// file under the user config directory.
func NewKeyring() *Keyring {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return &Keyring{cfg: keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  filepath.Join(dir, serviceName, "credentials"),
		FilePasswordFunc:         keyring.FixedStringPrompt("timekeeper-file-key"),
		KeychainTrustApplication: true,
	}}
}

func (k *Keyring) open() (keyring.Keyring, error) {
	ring, err := keyring.Open(k.cfg)
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Get retrieves a credential value by key.
func (k *Keyring) Get(key string) (string, error) {
	ring, err := k.open()
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
func (k *Keyring) Set(key, value string) error {
	ring, err := k.open()
	if err != nil {
		return err
	}
	if err := ring.Set(keyring.Item{Key: key, Data: []byte(value)}); err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}
	return nil
}

// Delete removes a credential. Deleting a missing key is not an error.
func (k *Keyring) Delete(key string) error {
	ring, err := k.open()
	if err != nil {
		return err
	}
	if err := ring.Remove(key); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}
	return nil
}

// Token returns a func reading key from s on every call, so a token
// stored or cleared while the app runs takes effect immediately.
func Token(s Store, key string) func() (string, error) {
	return func() (string, error) {
		return s.Get(key)
	}
}
