//go:build darwin

package keychain

import (
	"errors"
	"fmt"

	gokeychain "github.com/keybase/go-keychain"
)

// SystemStore stores records in macOS Keychain.
type SystemStore struct {
	service string
}

// NewSystemStore creates a Keychain-backed record store. An empty service
// selects DefaultService.
func NewSystemStore(service string) *SystemStore {
	if service == "" {
		service = DefaultService
	}
	return &SystemStore{service: service}
}

// Set stores a record, updating the existing item in place when there is one.
func (s *SystemStore) Set(alias string, rec Record) error {
	if err := validRecord(alias, rec); err != nil {
		return err
	}
	data := []byte(packRecord(rec))

	item := gokeychain.NewGenericPassword(
		s.service,
		alias,
		fmt.Sprintf("seedvault: %s", alias),
		data,
		"",
	)
	item.SetSynchronizable(gokeychain.SynchronizableNo)
	item.SetAccessible(gokeychain.AccessibleWhenUnlockedThisDeviceOnly)

	err := gokeychain.AddItem(item)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gokeychain.ErrorDuplicateItem) {
		return fmt.Errorf("keychain add %q: %w", alias, err)
	}

	query := gokeychain.NewItem()
	query.SetSecClass(gokeychain.SecClassGenericPassword)
	query.SetService(s.service)
	query.SetAccount(alias)

	update := gokeychain.NewItem()
	update.SetData(data)

	if err := gokeychain.UpdateItem(query, update); err != nil {
		return fmt.Errorf("keychain update %q: %w", alias, err)
	}
	return nil
}

// Get retrieves a record from the Keychain.
func (s *SystemStore) Get(alias string) (Record, error) {
	data, err := gokeychain.GetGenericPassword(s.service, alias, "", "")
	if err != nil {
		if errors.Is(err, gokeychain.ErrorItemNotFound) {
			return Record{}, fmt.Errorf("%w: %s", ErrNotFound, alias)
		}
		return Record{}, fmt.Errorf("keychain get %q: %w", alias, err)
	}
	if len(data) == 0 {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, alias)
	}
	return unpackRecord(alias, string(data))
}

// Clear removes a record from the Keychain.
func (s *SystemStore) Clear(alias string) error {
	err := gokeychain.DeleteGenericPasswordItem(s.service, alias)
	if err != nil && !errors.Is(err, gokeychain.ErrorItemNotFound) {
		return fmt.Errorf("keychain delete %q: %w", alias, err)
	}
	return nil
}
