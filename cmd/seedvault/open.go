package main

import (
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/benaskins/seedvault/internal/audit"
	"github.com/benaskins/seedvault/internal/config"
	"github.com/benaskins/seedvault/internal/keychain"
	"github.com/benaskins/seedvault/internal/vault"
)

// openVault builds a Vault from the loaded config. The returned close func
// flushes the audit log.
func openVault(c *config.Config) (*vault.Vault, func(), error) {
	var inner keychain.Store
	switch c.Backend {
	case config.BackendMemory:
		slog.Warn("using in-memory store; nothing will persist")
		inner = keychain.NewMemoryStore()
	default:
		inner = keychain.NewSystemStore(c.Service)
	}

	auditPath := c.AuditLog
	if auditPath == "" {
		p, err := defaultAuditLog()
		if err != nil {
			return nil, nil, fmt.Errorf("resolving audit log: %w", err)
		}
		auditPath = p
	}
	if err := ensureParentDir(auditPath); err != nil {
		return nil, nil, fmt.Errorf("creating audit log directory: %w", err)
	}
	auditLog, err := audit.NewLogger(auditPath)
	if err != nil {
		return nil, nil, err
	}

	metaPath := c.MetadataFile
	if metaPath == "" {
		if metaPath, err = defaultMetadataFile(); err != nil {
			auditLog.Close()
			return nil, nil, fmt.Errorf("resolving metadata file: %w", err)
		}
	}
	if err := ensureParentDir(metaPath); err != nil {
		auditLog.Close()
		return nil, nil, fmt.Errorf("creating metadata directory: %w", err)
	}
	meta, err := keychain.NewMetadataStore(metaPath)
	if err != nil {
		auditLog.Close()
		return nil, nil, err
	}

	store := keychain.NewAuditedStore(inner, auditLog, meta, "cli")

	opts := []vault.Option{vault.WithLogger(slog.With("component", "vault"))}
	if l := attemptLimiter(c); l != nil {
		opts = append(opts, vault.WithAttemptLimiter(l))
	}

	return vault.New(store, opts...), func() { auditLog.Close() }, nil
}

func attemptLimiter(c *config.Config) *rate.Limiter {
	if c.AttemptsPerSecond <= 0 {
		return nil
	}
	burst := c.AttemptBurst
	if burst == 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(c.AttemptsPerSecond), burst)
}

// describeError turns vault error kinds into user-facing messages.
func describeError(err error) string {
	switch {
	case errors.Is(err, vault.ErrAuthentication):
		return "Error: wrong key, or the stored data has been tampered with"
	case errors.Is(err, vault.ErrPolicy):
		return fmt.Sprintf("Error: not allowed: %v", err)
	case errors.Is(err, vault.ErrNotFound):
		return fmt.Sprintf("Error: %v", err)
	case errors.Is(err, vault.ErrValidation), errors.Is(err, vault.ErrCrypto):
		return fmt.Sprintf("Error: invalid input: %v", err)
	case errors.Is(err, vault.ErrStore):
		return fmt.Sprintf("Error: secure store unavailable: %v", err)
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}
