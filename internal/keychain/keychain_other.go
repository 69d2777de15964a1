//go:build !darwin

package keychain

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// SystemStore stores records in the platform keyring (Secret Service on
// Linux, Credential Manager on Windows).
type SystemStore struct {
	service string
}

// NewSystemStore creates a keyring-backed record store. An empty service
// selects DefaultService.
func NewSystemStore(service string) *SystemStore {
	if service == "" {
		service = DefaultService
	}
	return &SystemStore{service: service}
}

// Set stores a record. Overwrites if it already exists.
func (s *SystemStore) Set(alias string, rec Record) error {
	if err := validRecord(alias, rec); err != nil {
		return err
	}
	if err := keyring.Set(s.service, alias, packRecord(rec)); err != nil {
		return fmt.Errorf("keyring set %q: %w", alias, err)
	}
	return nil
}

// Get retrieves a record from the keyring.
func (s *SystemStore) Get(alias string) (Record, error) {
	val, err := keyring.Get(s.service, alias)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return Record{}, fmt.Errorf("%w: %s", ErrNotFound, alias)
		}
		return Record{}, fmt.Errorf("keyring get %q: %w", alias, err)
	}
	if val == "" {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, alias)
	}
	return unpackRecord(alias, val)
}

// Clear removes a record from the keyring.
func (s *SystemStore) Clear(alias string) error {
	err := keyring.Delete(s.service, alias)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("keyring delete %q: %w", alias, err)
	}
	return nil
}
