package main

import (
	"os"
	"path/filepath"
)

// seedvaultHome returns the path to the seedvault home directory (~/.seedvault).
func seedvaultHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".seedvault"), nil
}

// defaultAuditLog returns ~/.seedvault/audit.log, creating the directory.
func defaultAuditLog() (string, error) {
	dir, err := seedvaultHome()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return filepath.Join(dir, "audit.log"), nil
}

// defaultMetadataFile returns ~/.seedvault/record-metadata.json.
func defaultMetadataFile() (string, error) {
	dir, err := seedvaultHome()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return filepath.Join(dir, "record-metadata.json"), nil
}

// ensureParentDir creates the directory holding path (0700) if missing.
func ensureParentDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0700)
}
