package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/benaskins/seedvault/internal/secretbox"
)

const (
	keyEnv    = "SEEDVAULT_KEY"
	newKeyEnv = "SEEDVAULT_NEW_KEY"
)

// readKey loads the hex encryption key from env, or prompts for it without
// echo when stdin is a terminal.
func readKey(env, prompt string) (secretbox.Key, error) {
	if v := os.Getenv(env); v != "" {
		return secretbox.ParseKey(strings.TrimSpace(v))
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return secretbox.Key{}, fmt.Errorf("no key: set %s or run interactively", env)
	}
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return secretbox.Key{}, fmt.Errorf("reading key: %w", err)
	}
	defer secretbox.Zero(b)
	return secretbox.ParseKey(strings.TrimSpace(string(b)))
}

// readSecret returns args[i] when present, otherwise prompts (terminal) or
// reads stdin (pipe).
func readSecret(args []string, i int, prompt string) (string, error) {
	if len(args) > i {
		return args[i], nil
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprint(os.Stderr, prompt)
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading secret: %w", err)
		}
		return string(b), nil
	}
	b, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return strings.TrimRight(string(b), "\n"), nil
}
