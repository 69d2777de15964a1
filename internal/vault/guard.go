package vault

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/benaskins/seedvault/internal/keychain"
)

// Guard is a precondition checked before a policy-sensitive write. Guards
// run in order and the first failure aborts the operation before anything
// is written.
type Guard func(ctx context.Context, store keychain.Store) error

func checkGuards(ctx context.Context, store keychain.Store, guards ...Guard) error {
	for _, g := range guards {
		if err := g(ctx, store); err != nil {
			return err
		}
	}
	return nil
}

// RequireSecretValue rejects empty secrets and secrets that are not valid
// UTF-8 text. It performs no I/O.
func RequireSecretValue(what, value string) Guard {
	return func(context.Context, keychain.Store) error {
		if value == "" {
			return fmt.Errorf("%w: %s is empty", ErrValidation, what)
		}
		if !utf8.ValidString(value) {
			return fmt.Errorf("%w: %s is not valid text", ErrValidation, what)
		}
		return nil
	}
}

// RequireAccountName rejects blank account names. It performs no I/O.
func RequireAccountName(name string) Guard {
	return func(context.Context, keychain.Store) error {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: account name is blank", ErrValidation)
		}
		if !utf8.ValidString(name) {
			return fmt.Errorf("%w: account name is not valid text", ErrValidation)
		}
		return nil
	}
}

// RequireRecord fails with ErrPolicy unless a record exists under alias. It
// reads the store but never decrypts.
func RequireRecord(alias Alias, reason string) Guard {
	return func(ctx context.Context, store keychain.Store) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		_, err := store.Get(string(alias))
		if errors.Is(err, keychain.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrPolicy, reason)
		}
		if err != nil {
			return fmt.Errorf("%w: %w", ErrStore, err)
		}
		return nil
	}
}
