// Package secretbox wraps NaCl secretbox (XSalsa20-Poly1305) for sealing
// vault payloads.
//
// Every Seal draws a fresh 24-byte nonce from crypto/rand. Keys are exactly
// 32 bytes; anything else is rejected rather than padded or truncated.
// Nonces and boxes travel as standard base64 text because the secure store
// only accepts strings.
package secretbox

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	naclbox "golang.org/x/crypto/nacl/secretbox"
)

const (
	KeySize   = 32
	NonceSize = 24
)

var (
	// ErrCrypto is the base for malformed key or nonce material.
	ErrCrypto = errors.New("crypto error")

	ErrInvalidKey   = fmt.Errorf("%w: invalid key", ErrCrypto)
	ErrInvalidNonce = fmt.Errorf("%w: invalid nonce", ErrCrypto)

	// ErrAuthentication is returned when a box does not verify under the
	// supplied key and nonce: the key is wrong or the data was tampered with.
	ErrAuthentication = errors.New("authentication failed")
)

// randReader is swapped in tests.
var randReader io.Reader = rand.Reader

// Key is a secretbox key. It is never persisted.
type Key [KeySize]byte

// Nonce is a single-use secretbox nonce.
type Nonce [NonceSize]byte

// ParseKey decodes a hex-encoded key. The input must decode to exactly
// KeySize bytes.
func ParseKey(s string) (Key, error) {
	if len(s) != hex.EncodedLen(KeySize) {
		return Key{}, fmt.Errorf("%w: want %d hex characters, got %d", ErrInvalidKey, hex.EncodedLen(KeySize), len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return Key{}, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	defer Pin(b)()
	return KeyFromBytes(b)
}

// KeyFromBytes copies b into a Key.
func KeyFromBytes(b []byte) (Key, error) {
	var k Key
	if len(b) != KeySize {
		return k, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidKey, KeySize, len(b))
	}
	copy(k[:], b)
	return k, nil
}

// Zero overwrites the key in place.
func (k *Key) Zero() {
	Zero(k[:])
}

// NewNonce returns a fresh random nonce.
func NewNonce() (Nonce, error) {
	var n Nonce
	if _, err := io.ReadFull(randReader, n[:]); err != nil {
		return n, fmt.Errorf("reading nonce: %w", err)
	}
	return n, nil
}

// Sealed is one encryption result: the nonce and the authenticated box.
type Sealed struct {
	Nonce Nonce
	Box   []byte
}

// Seal encrypts plaintext under key with a newly generated nonce.
func Seal(plaintext []byte, key Key) (Sealed, error) {
	nonce, err := NewNonce()
	if err != nil {
		return Sealed{}, err
	}
	k := [KeySize]byte(key)
	release := Pin(k[:])
	n := [NonceSize]byte(nonce)
	box := naclbox.Seal(nil, plaintext, &n, &k)
	release()
	return Sealed{Nonce: nonce, Box: box}, nil
}

// Open verifies and decrypts s under key.
func Open(s Sealed, key Key) ([]byte, error) {
	if len(s.Box) < naclbox.Overhead {
		return nil, fmt.Errorf("%w: box shorter than %d bytes", ErrAuthentication, naclbox.Overhead)
	}
	k := [KeySize]byte(key)
	release := Pin(k[:])
	n := [NonceSize]byte(s.Nonce)
	plaintext, ok := naclbox.Open(nil, s.Box, &n, &k)
	release()
	if !ok {
		return nil, ErrAuthentication
	}
	return plaintext, nil
}

// Text returns the text encodings of the nonce and box.
func (s Sealed) Text() (nonce, box string) {
	return EncodeText(s.Nonce[:]), EncodeText(s.Box)
}

// ParseSealed decodes the text form produced by Sealed.Text.
func ParseSealed(nonce, box string) (Sealed, error) {
	nb, err := DecodeText(nonce)
	if err != nil {
		return Sealed{}, fmt.Errorf("%w: %v", ErrInvalidNonce, err)
	}
	if len(nb) != NonceSize {
		return Sealed{}, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidNonce, NonceSize, len(nb))
	}
	bb, err := DecodeText(box)
	if err != nil {
		return Sealed{}, fmt.Errorf("decoding box: %w", err)
	}
	var s Sealed
	copy(s.Nonce[:], nb)
	s.Box = bb
	return s, nil
}

// EncodeText is the inverse of DecodeText.
func EncodeText(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// DecodeText is the inverse of EncodeText.
func DecodeText(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}

// Zero overwrites b with zeros.
func Zero(b []byte) {
	clear(b)
}
