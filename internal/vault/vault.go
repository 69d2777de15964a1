// Package vault stores many named secrets as one sealed record per alias in
// a secure store.
//
// Every operation runs the same cycle under the alias lock: read the record,
// open it with the caller's key, mutate the plaintext in memory, seal the
// whole payload under a fresh nonce and write it back. Any failure aborts
// the cycle before the write, so a stored record is never partially updated.
// Keys and decrypted payloads live only for the duration of one call.
package vault

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/benaskins/seedvault/internal/keychain"
	"github.com/benaskins/seedvault/internal/secretbox"
)

// Alias names one sealed record in the secure store.
type Alias string

const (
	AliasSeeds   Alias = "seeds"
	AliasAuthKey Alias = "authKey"
)

// Aliases lists every alias the vault manages, in write order.
var Aliases = []Alias{AliasSeeds, AliasAuthKey}

// Vault orchestrates sealed reads and writes against a keychain.Store.
type Vault struct {
	store   keychain.Store
	locks   locker
	limiter *rate.Limiter
	logger  *slog.Logger
}

// Option configures a Vault.
type Option func(*Vault)

// WithLogger sets the logger. Secrets and keys are never logged.
func WithLogger(l *slog.Logger) Option {
	return func(v *Vault) { v.logger = l }
}

// WithAttemptLimiter throttles decryption attempts. Each open waits for a
// token, honouring the caller's context.
func WithAttemptLimiter(l *rate.Limiter) Option {
	return func(v *Vault) { v.limiter = l }
}

// New returns a Vault backed by store.
func New(store keychain.Store, opts ...Option) *Vault {
	v := &Vault{
		store:  store,
		locks:  newAliasLocks(),
		logger: slog.With("component", "vault"),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// read fetches the raw record for alias. A missing record is ErrNotFound.
func (v *Vault) read(alias Alias) (keychain.Record, error) {
	rec, err := v.store.Get(string(alias))
	if errors.Is(err, keychain.ErrNotFound) {
		return keychain.Record{}, fmt.Errorf("%w: no record for alias %q", ErrNotFound, alias)
	}
	if err != nil {
		return keychain.Record{}, fmt.Errorf("%w: reading %q: %w", ErrStore, alias, err)
	}
	return rec, nil
}

// open decrypts rec and checks it holds a payload of the wanted kind. Every
// failure past the limiter is ErrAuthentication.
func (v *Vault) open(ctx context.Context, key secretbox.Key, alias Alias, rec keychain.Record, want PayloadKind) (Payload, error) {
	if v.limiter != nil {
		if err := v.limiter.Wait(ctx); err != nil {
			return Payload{}, fmt.Errorf("waiting for unlock attempt: %w", err)
		}
	}

	sealed, err := secretbox.ParseSealed(rec.Nonce, rec.Ciphertext)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: record %q is corrupted: %w", ErrAuthentication, alias, err)
	}
	plaintext, err := secretbox.Open(sealed, key)
	if err != nil {
		v.logger.Warn("record failed authentication", "alias", alias)
		return Payload{}, fmt.Errorf("opening %q: %w", alias, err)
	}
	defer secretbox.Pin(plaintext)()

	p, err := decodePayload(plaintext, want)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: decoding %q: %v", ErrAuthentication, alias, err)
	}
	return p, nil
}

// load reads and opens alias.
func (v *Vault) load(ctx context.Context, key secretbox.Key, alias Alias, want PayloadKind) (Payload, error) {
	rec, err := v.read(alias)
	if err != nil {
		return Payload{}, err
	}
	return v.open(ctx, key, alias, rec, want)
}

func (v *Vault) loadMap(ctx context.Context, key secretbox.Key, alias Alias) (*SecretMap, error) {
	p, err := v.load(ctx, key, alias, KindMap)
	if err != nil {
		return nil, err
	}
	m, _ := p.Map()
	return m, nil
}

// seal encrypts p under a fresh nonce and returns the record to store.
func seal(key secretbox.Key, p Payload) (keychain.Record, error) {
	plaintext, err := p.encode()
	if err != nil {
		return keychain.Record{}, err
	}
	defer secretbox.Pin(plaintext)()

	sealed, err := secretbox.Seal(plaintext, key)
	if err != nil {
		return keychain.Record{}, fmt.Errorf("sealing payload: %w", err)
	}
	nonce, box := sealed.Text()
	return keychain.Record{Nonce: nonce, Ciphertext: box}, nil
}

func (v *Vault) write(alias Alias, rec keychain.Record) error {
	if err := v.store.Set(string(alias), rec); err != nil {
		return fmt.Errorf("%w: writing %q: %w", ErrStore, alias, err)
	}
	return nil
}

// save seals p and replaces the record for alias. A cancelled context
// aborts before anything is written.
func (v *Vault) save(ctx context.Context, key secretbox.Key, alias Alias, p Payload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rec, err := seal(key, p)
	if err != nil {
		return err
	}
	return v.write(alias, rec)
}

// StoreSeed adds or replaces the seed stored under accountName. The first
// seed creates the vault.
func (v *Vault) StoreSeed(ctx context.Context, key secretbox.Key, seed, accountName string) error {
	if err := checkGuards(ctx, v.store,
		RequireAccountName(accountName),
		RequireSecretValue("seed", seed),
	); err != nil {
		return err
	}

	release, err := v.locks.acquire(ctx, AliasSeeds)
	if err != nil {
		return err
	}
	defer release()

	m, err := v.loadMap(ctx, key, AliasSeeds)
	switch {
	case errors.Is(err, ErrNotFound):
		m = NewSecretMap()
	case err != nil:
		return err
	}
	defer m.Wipe()

	m.Insert(accountName, seed)
	if err := v.save(ctx, key, AliasSeeds, MapPayload(m)); err != nil {
		return err
	}
	v.logger.Debug("seed stored", "alias", AliasSeeds, "accounts", m.Len())
	return nil
}

// AllSeeds returns every stored account and seed. The caller owns the map
// and should Wipe it when done.
func (v *Vault) AllSeeds(ctx context.Context, key secretbox.Key) (*SecretMap, error) {
	release, err := v.locks.acquire(ctx, AliasSeeds)
	if err != nil {
		return nil, err
	}
	defer release()

	return v.loadMap(ctx, key, AliasSeeds)
}

// Seed returns the seed stored under accountName.
func (v *Vault) Seed(ctx context.Context, key secretbox.Key, accountName string) (string, error) {
	m, err := v.AllSeeds(ctx, key)
	if err != nil {
		return "", err
	}
	defer m.Wipe()

	seed, ok := m.Get(accountName)
	if !ok {
		return "", fmt.Errorf("%w: no account named %q", ErrNotFound, accountName)
	}
	return seed, nil
}

// RenameAccount moves the seed under oldName to newName. Renaming an
// unknown account leaves the stored accounts unchanged.
func (v *Vault) RenameAccount(ctx context.Context, key secretbox.Key, oldName, newName string) error {
	if err := checkGuards(ctx, v.store, RequireAccountName(newName)); err != nil {
		return err
	}

	release, err := v.locks.acquire(ctx, AliasSeeds)
	if err != nil {
		return err
	}
	defer release()

	m, err := v.loadMap(ctx, key, AliasSeeds)
	if err != nil {
		return err
	}
	defer m.Wipe()

	if !m.Rename(oldName, newName) {
		v.logger.Debug("rename of unknown account", "alias", AliasSeeds)
	}
	return v.save(ctx, key, AliasSeeds, MapPayload(m))
}

// DeleteAccount removes accountName. It fails with ErrNotFound when no
// seeds have ever been stored.
func (v *Vault) DeleteAccount(ctx context.Context, key secretbox.Key, accountName string) error {
	release, err := v.locks.acquire(ctx, AliasSeeds)
	if err != nil {
		return err
	}
	defer release()

	m, err := v.loadMap(ctx, key, AliasSeeds)
	if err != nil {
		return fmt.Errorf("deleting account from %q: %w", AliasSeeds, err)
	}
	defer m.Wipe()

	m.Remove(accountName)
	if err := v.save(ctx, key, AliasSeeds, MapPayload(m)); err != nil {
		return err
	}
	v.logger.Debug("account deleted", "alias", AliasSeeds, "accounts", m.Len())
	return nil
}

// StoreTwoFactorKey stores the two-factor key. It is only allowed once at
// least one seed exists; the check never reaches the crypto layer.
func (v *Vault) StoreTwoFactorKey(ctx context.Context, key secretbox.Key, authKey string) error {
	if err := checkGuards(ctx, v.store, RequireSecretValue("two-factor key", authKey)); err != nil {
		return err
	}

	release, err := v.locks.acquire(ctx, AliasSeeds, AliasAuthKey)
	if err != nil {
		return err
	}
	defer release()

	if err := checkGuards(ctx, v.store,
		RequireRecord(AliasSeeds, "cannot store two-factor key: no account exists"),
	); err != nil {
		return err
	}

	if err := v.save(ctx, key, AliasAuthKey, ScalarPayload(authKey)); err != nil {
		return err
	}
	v.logger.Debug("two-factor key stored", "alias", AliasAuthKey)
	return nil
}

// TwoFactorKey returns the stored two-factor key.
func (v *Vault) TwoFactorKey(ctx context.Context, key secretbox.Key) (string, error) {
	release, err := v.locks.acquire(ctx, AliasAuthKey)
	if err != nil {
		return "", err
	}
	defer release()

	p, err := v.load(ctx, key, AliasAuthKey, KindScalar)
	if err != nil {
		return "", err
	}
	s, _ := p.Scalar()
	return s, nil
}

// DeleteTwoFactorKey clears the two-factor record. Clearing when none is
// stored is not an error.
func (v *Vault) DeleteTwoFactorKey(ctx context.Context) error {
	release, err := v.locks.acquire(ctx, AliasAuthKey)
	if err != nil {
		return err
	}
	defer release()

	return v.clear(AliasAuthKey)
}

func (v *Vault) clear(alias Alias) error {
	if err := v.store.Clear(string(alias)); err != nil {
		return fmt.Errorf("%w: clearing %q: %w", ErrStore, alias, err)
	}
	return nil
}

// Initialized reports whether any seed has been stored. It does not decrypt.
func (v *Vault) Initialized(ctx context.Context) (bool, error) {
	err := checkGuards(ctx, v.store, RequireRecord(AliasSeeds, "no account exists"))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrPolicy):
		return false, nil
	default:
		return false, err
	}
}

// Rekey re-seals every stored alias under newKey. All records must open
// under oldKey before anything is written; if a write fails, aliases
// already rewritten are restored to their previous records.
func (v *Vault) Rekey(ctx context.Context, oldKey, newKey secretbox.Key) error {
	release, err := v.locks.acquire(ctx, Aliases...)
	if err != nil {
		return err
	}
	defer release()

	type pending struct {
		alias Alias
		prev  keychain.Record
		next  keychain.Record
	}
	var plan []pending

	for _, alias := range Aliases {
		rec, err := v.read(alias)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		p, err := v.open(ctx, oldKey, alias, rec, kindOf(alias))
		if err != nil {
			return err
		}
		next, err := seal(newKey, p)
		if m, ok := p.Map(); ok {
			m.Wipe()
		}
		if err != nil {
			return err
		}
		plan = append(plan, pending{alias: alias, prev: rec, next: next})
	}

	if len(plan) == 0 {
		return fmt.Errorf("%w: nothing to rekey", ErrNotFound)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	for i, step := range plan {
		if err := v.write(step.alias, step.next); err != nil {
			// The failed alias is restored too: a store may persist a
			// write and still report an error.
			for _, done := range plan[:i+1] {
				if rerr := v.write(done.alias, done.prev); rerr != nil {
					v.logger.Error("rekey rollback failed", "alias", done.alias, "error", rerr)
				}
			}
			return err
		}
	}
	v.logger.Info("vault rekeyed", "aliases", len(plan))
	return nil
}

// Reset clears every alias. The two-factor record goes first so it never
// outlives the seeds.
func (v *Vault) Reset(ctx context.Context) error {
	release, err := v.locks.acquire(ctx, Aliases...)
	if err != nil {
		return err
	}
	defer release()

	for i := len(Aliases) - 1; i >= 0; i-- {
		if err := v.clear(Aliases[i]); err != nil {
			return err
		}
	}
	v.logger.Info("vault reset")
	return nil
}

func kindOf(alias Alias) PayloadKind {
	if alias == AliasAuthKey {
		return KindScalar
	}
	return KindMap
}

// HasDuplicateAccountName reports whether m already holds name.
func HasDuplicateAccountName(m *SecretMap, name string) bool {
	return m.HasName(name)
}

// HasDuplicateSeed reports whether any account in m already holds seed.
func HasDuplicateSeed(m *SecretMap, seed string) bool {
	return m.HasValue(seed)
}
