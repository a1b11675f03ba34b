package session

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "wakeup-cli"
	keyringKey     = "session-token"
)

// ErrNoToken is returned by TokenStore.Load when no token is persisted
var ErrNoToken = errors.New("no session token stored")

// TokenStore defines the interface for token storage operations.
// This allows us to mock the keyring in tests.
type TokenStore interface {
	Save(token string) error
	Load() (string, error)
	Delete() error
}

// KeyringTokenStore persists the session token in the OS keychain/credential manager
type KeyringTokenStore struct{}

func (k KeyringTokenStore) Save(token string) error {
	if err := keyring.Set(keyringService, keyringKey, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

func (k KeyringTokenStore) Load() (string, error) {
	token, err := keyring.Get(keyringService, keyringKey)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	return token, nil
}

func (k KeyringTokenStore) Delete() error {
	if err := keyring.Delete(keyringService, keyringKey); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
