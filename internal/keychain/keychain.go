// Package keychain provides the secure store that holds sealed vault records.
//
// Each alias (e.g. "seeds", "authKey") maps to exactly one Record made of two
// opaque strings: the nonce and the ciphertext. On macOS records are stored
// as generic passwords with:
//   - Service: "com.seedvault" by default
//   - Account: the alias
//   - Label: "seedvault: <alias>" (for Keychain Access.app visibility)
//
// Records are scoped with kSecAttrAccessibleWhenUnlockedThisDeviceOnly:
// never synced to iCloud, never available when the machine is locked.
// Other platforms use the desktop keyring (Secret Service, Windows
// Credential Manager).
package keychain

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultService is the service attribute shared by all seedvault records.
const DefaultService = "com.seedvault"

// ErrNotFound is returned when no record exists for an alias.
var ErrNotFound = errors.New("record not found")

// Record is the unit persisted under one alias. Both fields are text-safe
// encodings; the store never interprets them.
type Record struct {
	Nonce      string
	Ciphertext string
}

// IsZero reports whether r carries no data.
func (r Record) IsZero() bool {
	return r.Nonce == "" && r.Ciphertext == ""
}

// Store is the interface for secure record storage.
type Store interface {
	// Get returns ErrNotFound if alias was never stored or has been cleared.
	Get(alias string) (Record, error)
	// Set replaces any existing record for alias.
	Set(alias string, rec Record) error
	// Clear removes the record for alias. Clearing a missing alias is not an error.
	Clear(alias string) error
}

// recordSep joins the two fields for backends that hold a single string.
// It is outside the base64 alphabet.
const recordSep = "."

func packRecord(r Record) string {
	return r.Nonce + recordSep + r.Ciphertext
}

func unpackRecord(alias, s string) (Record, error) {
	nonce, box, ok := strings.Cut(s, recordSep)
	if !ok {
		return Record{}, fmt.Errorf("malformed record for %q", alias)
	}
	return Record{Nonce: nonce, Ciphertext: box}, nil
}

func validRecord(alias string, r Record) error {
	if r.Nonce == "" || r.Ciphertext == "" {
		return fmt.Errorf("incomplete record for %q", alias)
	}
	if strings.Contains(r.Nonce, recordSep) || strings.Contains(r.Ciphertext, recordSep) {
		return fmt.Errorf("record for %q contains %q", alias, recordSep)
	}
	return nil
}
