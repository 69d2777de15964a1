package vault

import (
	"errors"

	"github.com/benaskins/seedvault/internal/secretbox"
)

// Error kinds surfaced by vault operations. Callers match them with
// errors.Is; the wrapped message carries the detail.
var (
	// ErrStore means the secure store failed for a reason other than a
	// missing record.
	ErrStore = errors.New("secure store error")

	// ErrAuthentication means a record did not decrypt under the supplied
	// key: wrong key or tampered data. Retrying with the same key cannot succeed.
	ErrAuthentication = secretbox.ErrAuthentication

	// ErrCrypto means malformed key or nonce material.
	ErrCrypto = secretbox.ErrCrypto

	// ErrPolicy means a vault precondition does not hold.
	ErrPolicy = errors.New("policy violation")

	// ErrValidation means an input was rejected before any I/O.
	ErrValidation = errors.New("invalid input")

	// ErrNotFound means the operation needs an alias or account that does
	// not exist.
	ErrNotFound = errors.New("not found")
)
