package keychain

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/benaskins/seedvault/internal/audit"
)

// RecordMetadata tracks when a record was first written and last replaced.
type RecordMetadata struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
	Writes    int       `json:"writes"`
}

// MetadataStore persists record metadata to a JSON file. It never holds
// record contents.
type MetadataStore struct {
	mu       sync.RWMutex
	path     string
	metadata map[string]*RecordMetadata
}

// NewMetadataStore loads or creates a metadata file. An empty path keeps
// metadata in memory only.
func NewMetadataStore(path string) (*MetadataStore, error) {
	ms := &MetadataStore{
		path:     path,
		metadata: make(map[string]*RecordMetadata),
	}
	if path == "" {
		return ms, nil
	}

	data, err := os.ReadFile(path)
	if err == nil {
		if jsonErr := json.Unmarshal(data, &ms.metadata); jsonErr != nil {
			slog.Warn("corrupt metadata file, starting fresh", "path", path, "error", jsonErr)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading metadata: %w", err)
	}

	return ms, nil
}

// Get returns a copy of the metadata for an alias, or nil if not tracked.
func (ms *MetadataStore) Get(alias string) *RecordMetadata {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	m, ok := ms.metadata[alias]
	if !ok {
		return nil
	}
	cp := *m
	return &cp
}

// Touch records a write of alias at now and persists to disk.
func (ms *MetadataStore) Touch(alias string, now time.Time) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	m, ok := ms.metadata[alias]
	if !ok {
		m = &RecordMetadata{CreatedAt: now}
		ms.metadata[alias] = m
	}
	m.UpdatedAt = now
	m.Writes++
	return ms.save()
}

// Delete removes metadata for an alias.
func (ms *MetadataStore) Delete(alias string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if _, ok := ms.metadata[alias]; !ok {
		return nil
	}
	delete(ms.metadata, alias)
	return ms.save()
}

// All returns copies of all metadata entries.
func (ms *MetadataStore) All() map[string]*RecordMetadata {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	result := make(map[string]*RecordMetadata, len(ms.metadata))
	for k, v := range ms.metadata {
		cp := *v
		result[k] = &cp
	}
	return result
}

func (ms *MetadataStore) save() error {
	if ms.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(ms.metadata, "", "  ")
	if err != nil {
		return err
	}
	tmpPath := ms.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmpPath, ms.path)
}

// AuditedStore wraps a Store and adds audit logging and metadata tracking.
type AuditedStore struct {
	inner    Store
	audit    *audit.Logger
	metadata *MetadataStore
	actor    string
	now      func() time.Time
}

// NewAuditedStore wraps an existing store with audit logging. auditLog may be
// nil to skip audit entries.
func NewAuditedStore(inner Store, auditLog *audit.Logger, metadata *MetadataStore, actor string) *AuditedStore {
	return &AuditedStore{
		inner:    inner,
		audit:    auditLog,
		metadata: metadata,
		actor:    actor,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *AuditedStore) log(e audit.Entry) {
	if s.audit == nil {
		return
	}
	e.Actor = s.actor
	// Audit logging is best-effort; a failure to log should not block the operation.
	if err := s.audit.Log(e); err != nil {
		slog.Warn("audit log write failed", "alias", e.Alias, "error", err)
	}
}

func (s *AuditedStore) Set(alias string, rec Record) error {
	if err := s.inner.Set(alias, rec); err != nil {
		s.log(audit.Entry{Action: audit.ActionRecordWrite, Alias: alias, Error: err.Error()})
		return fmt.Errorf("audited store set: %w", err)
	}

	s.log(audit.Entry{Action: audit.ActionRecordWrite, Alias: alias})

	// The record is already replaced; metadata is bookkeeping only.
	if s.metadata != nil {
		if err := s.metadata.Touch(alias, s.now()); err != nil {
			slog.Warn("saving record metadata failed", "alias", alias, "error", err)
		}
	}
	return nil
}

func (s *AuditedStore) Get(alias string) (Record, error) {
	rec, err := s.inner.Get(alias)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log(audit.Entry{Action: audit.ActionRecordRead, Alias: alias, Error: err.Error()})
		}
		return Record{}, fmt.Errorf("audited store get: %w", err)
	}

	s.log(audit.Entry{Action: audit.ActionRecordRead, Alias: alias})
	return rec, nil
}

func (s *AuditedStore) Clear(alias string) error {
	if err := s.inner.Clear(alias); err != nil {
		s.log(audit.Entry{Action: audit.ActionRecordClear, Alias: alias, Error: err.Error()})
		return fmt.Errorf("audited store clear: %w", err)
	}

	s.log(audit.Entry{Action: audit.ActionRecordClear, Alias: alias})

	if s.metadata != nil {
		if err := s.metadata.Delete(alias); err != nil {
			slog.Warn("deleting record metadata failed", "alias", alias, "error", err)
		}
	}
	return nil
}

// Metadata returns the metadata store for direct access.
func (s *AuditedStore) Metadata() *MetadataStore {
	return s.metadata
}
