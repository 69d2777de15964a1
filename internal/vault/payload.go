package vault

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// PayloadKind tags which shape a Payload holds.
type PayloadKind int

const (
	KindMap PayloadKind = iota + 1
	KindScalar
)

func (k PayloadKind) String() string {
	switch k {
	case KindMap:
		return "map"
	case KindScalar:
		return "scalar"
	default:
		return fmt.Sprintf("PayloadKind(%d)", int(k))
	}
}

// Payload is the plaintext sealed under one alias: a SecretMap for seeds,
// a single string for the two-factor key.
type Payload struct {
	kind   PayloadKind
	m      *SecretMap
	scalar string
}

// MapPayload wraps m as a map payload. A nil m encodes as an empty object.
func MapPayload(m *SecretMap) Payload {
	return Payload{kind: KindMap, m: m}
}

// ScalarPayload wraps a single secret string.
func ScalarPayload(s string) Payload {
	return Payload{kind: KindScalar, scalar: s}
}

// Kind reports which shape p holds. The zero Payload has kind 0.
func (p Payload) Kind() PayloadKind { return p.kind }

// Map returns the wrapped map, and false when p is not a map payload.
func (p Payload) Map() (*SecretMap, bool) {
	return p.m, p.kind == KindMap
}

// Scalar returns the wrapped string, and false when p is not a scalar.
func (p Payload) Scalar() (string, bool) {
	return p.scalar, p.kind == KindScalar
}

// encode serializes the payload as JSON: an object for maps, a string for
// scalars.
func (p Payload) encode() ([]byte, error) {
	switch p.kind {
	case KindMap:
		if p.m == nil {
			return []byte("{}"), nil
		}
		return p.m.MarshalJSON()
	case KindScalar:
		return json.Marshal(p.scalar)
	default:
		return nil, fmt.Errorf("encoding payload: unknown kind %v", p.kind)
	}
}

// decodePayload parses plaintext and checks it has the wanted shape.
func decodePayload(data []byte, want PayloadKind) (Payload, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Payload{}, fmt.Errorf("empty payload")
	}

	var got PayloadKind
	switch trimmed[0] {
	case '{':
		got = KindMap
	case '"':
		got = KindScalar
	default:
		return Payload{}, fmt.Errorf("unrecognised payload")
	}
	if got != want {
		return Payload{}, fmt.Errorf("expected %v payload, found %v", want, got)
	}

	if got == KindMap {
		m := NewSecretMap()
		if err := m.UnmarshalJSON(trimmed); err != nil {
			return Payload{}, err
		}
		return MapPayload(m), nil
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return Payload{}, err
	}
	return ScalarPayload(s), nil
}
