package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `service: com.seedvault.dev
backend: memory
audit_log: /tmp/seedvault/audit.log
metadata_file: /tmp/seedvault/meta.json
attempts_per_second: 0.5
attempt_burst: 3
log_level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Service != "com.seedvault.dev" {
		t.Errorf("Service = %q, want %q", cfg.Service, "com.seedvault.dev")
	}
	if cfg.Backend != BackendMemory {
		t.Errorf("Backend = %q, want %q", cfg.Backend, BackendMemory)
	}
	if cfg.AuditLog != "/tmp/seedvault/audit.log" {
		t.Errorf("AuditLog = %q", cfg.AuditLog)
	}
	if cfg.MetadataFile != "/tmp/seedvault/meta.json" {
		t.Errorf("MetadataFile = %q", cfg.MetadataFile)
	}
	if cfg.AttemptsPerSecond != 0.5 || cfg.AttemptBurst != 3 {
		t.Errorf("attempts = %v/%d, want 0.5/3", cfg.AttemptsPerSecond, cfg.AttemptBurst)
	}
	if cfg.Level() != slog.LevelDebug {
		t.Errorf("Level = %v, want debug", cfg.Level())
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if cfg.Service != "" || cfg.Backend != "" {
		t.Errorf("expected empty config, got %+v", cfg)
	}
	if cfg.Level() != slog.LevelInfo {
		t.Errorf("Level = %v, want info", cfg.Level())
	}
}

func TestLoadEmptyFile(t *testing.T) {
	t.Parallel()
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Service != "" {
		t.Errorf("Service = %q, want empty", cfg.Service)
	}
}

func TestLoadPartialConfig(t *testing.T) {
	t.Parallel()
	cfg, err := Load(writeConfig(t, "service: com.example\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Service != "com.example" {
		t.Errorf("Service = %q, want %q", cfg.Service, "com.example")
	}
	if cfg.Backend != "" {
		t.Errorf("Backend = %q, want empty", cfg.Backend)
	}
}

func TestLoadCommentsOnly(t *testing.T) {
	t.Parallel()
	cfg, err := Load(writeConfig(t, "# service: com.example\n# backend: memory\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Service != "" || cfg.Backend != "" {
		t.Errorf("expected empty config, got %+v", cfg)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"backend":  "backend: floppy\n",
		"attempts": "attempts_per_second: -1\n",
		"burst":    "attempt_burst: -2\n",
		"level":    "log_level: chatty\n",
		"yaml":     "service: [unterminated\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, content)); err == nil {
				t.Errorf("expected error for %q", content)
			}
		})
	}
}
