package vault

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/benaskins/seedvault/internal/keychain"
	"github.com/benaskins/seedvault/internal/secretbox"
)

func testKey(t *testing.T, fill byte) secretbox.Key {
	t.Helper()
	k, err := secretbox.KeyFromBytes(bytes.Repeat([]byte{fill}, secretbox.KeySize))
	if err != nil {
		t.Fatalf("KeyFromBytes: %v", err)
	}
	return k
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestVault(t *testing.T, opts ...Option) (*Vault, *keychain.MemoryStore) {
	t.Helper()
	store := keychain.NewMemoryStore()
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	return New(store, opts...), store
}

// faultyStore wraps a MemoryStore and injects failures per alias.
type faultyStore struct {
	*keychain.MemoryStore

	mu       sync.Mutex
	getErr   error
	setErr   map[string]error
	lateErr  map[string]error // returned after the write lands
	clearErr map[string]error
	gets     int
	sets     int
}

func newFaultyStore() *faultyStore {
	return &faultyStore{
		MemoryStore: keychain.NewMemoryStore(),
		setErr:      make(map[string]error),
		lateErr:     make(map[string]error),
		clearErr:    make(map[string]error),
	}
}

func (s *faultyStore) Get(alias string) (keychain.Record, error) {
	s.mu.Lock()
	s.gets++
	err := s.getErr
	s.mu.Unlock()
	if err != nil {
		return keychain.Record{}, err
	}
	return s.MemoryStore.Get(alias)
}

func (s *faultyStore) Set(alias string, rec keychain.Record) error {
	s.mu.Lock()
	s.sets++
	err, late := s.setErr[alias], s.lateErr[alias]
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if err := s.MemoryStore.Set(alias, rec); err != nil {
		return err
	}
	return late
}

func (s *faultyStore) Clear(alias string) error {
	if err := s.clearErr[alias]; err != nil {
		return err
	}
	return s.MemoryStore.Clear(alias)
}

func (s *faultyStore) calls() (gets, sets int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gets, s.sets
}

// gatedStore holds every Get until a second reader arrives or wait elapses.
// Two unserialized cycles therefore both read the prior state before
// either writes.
type gatedStore struct {
	*keychain.MemoryStore

	mu      sync.Mutex
	readers int
	both    chan struct{}
	wait    time.Duration
}

func newGatedStore(wait time.Duration) *gatedStore {
	return &gatedStore{
		MemoryStore: keychain.NewMemoryStore(),
		both:        make(chan struct{}),
		wait:        wait,
	}
}

func (s *gatedStore) Get(alias string) (keychain.Record, error) {
	rec, err := s.MemoryStore.Get(alias)

	s.mu.Lock()
	s.readers++
	if s.readers == 2 {
		close(s.both)
	}
	s.mu.Unlock()

	select {
	case <-s.both:
	case <-time.After(s.wait):
	}
	return rec, err
}

// noLocks disables alias serialization.
type noLocks struct{}

func (noLocks) acquire(context.Context, ...Alias) (func(), error) {
	return func() {}, nil
}

func mustStoreSeed(t *testing.T, v *Vault, key secretbox.Key, seed, name string) {
	t.Helper()
	if err := v.StoreSeed(context.Background(), key, seed, name); err != nil {
		t.Fatalf("StoreSeed(%q): %v", name, err)
	}
}

func mustAllSeeds(t *testing.T, v *Vault, key secretbox.Key) *SecretMap {
	t.Helper()
	m, err := v.AllSeeds(context.Background(), key)
	if err != nil {
		t.Fatalf("AllSeeds: %v", err)
	}
	return m
}

func expectErr(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("expected %v, got %v", target, err)
	}
}
