package keychain

import (
	"fmt"
	"sync"
)

// MemoryStore is an in-memory implementation of Store for testing.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore creates a new in-memory record store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (s *MemoryStore) Set(alias string, rec Record) error {
	if err := validRecord(alias, rec); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[alias] = rec
	return nil
}

func (s *MemoryStore) Get(alias string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[alias]
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, alias)
	}
	return rec, nil
}

func (s *MemoryStore) Clear(alias string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, alias)
	return nil
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
