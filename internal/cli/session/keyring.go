package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/zalando/go-keyring"
)

// KeyringStore keeps each key as a separate entry in the OS keychain/credential manager
type KeyringStore struct {
	mu      sync.Mutex
	service string
}

// NewKeyringStore creates a store scoped to the given app
func NewKeyringStore(app string) *KeyringStore {
	return &KeyringStore{service: fmt.Sprintf("appshell-%s", app)}
}

// Get reports a key as absent when the keychain has no entry or cannot be read
func (k *KeyringStore) Get(key string) (string, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()

	value, err := keyring.Get(k.service, key)
	if err != nil {
		return "", false
	}
	return value, true
}

func (k *KeyringStore) Set(key, value string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if err := keyring.Set(k.service, key, value); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

func (k *KeyringStore) Remove(key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if err := keyring.Delete(k.service, key); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}
