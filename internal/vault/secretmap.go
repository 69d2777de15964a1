package vault

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"slices"
)

// SecretMap maps account names to secrets. Names are unique. Insertion
// order is kept so listings are stable; it carries no other meaning.
type SecretMap struct {
	names  []string
	values map[string]string
}

// NewSecretMap returns an empty map.
func NewSecretMap() *SecretMap {
	return &SecretMap{values: make(map[string]string)}
}

// SecretMapOf builds a map from name/secret pairs in argument order.
func SecretMapOf(pairs ...[2]string) *SecretMap {
	m := NewSecretMap()
	for _, p := range pairs {
		m.Insert(p[0], p[1])
	}
	return m
}

// Len returns the number of accounts.
func (m *SecretMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.names)
}

// Get returns the secret stored under name.
func (m *SecretMap) Get(name string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m.values[name]
	return v, ok
}

// Insert sets name to secret. An existing name keeps its position.
// Like assigning into a nil Go map, Insert on a nil *SecretMap panics; the
// read-only methods treat nil as empty.
func (m *SecretMap) Insert(name, secret string) {
	if m == nil {
		panic("vault: Insert on nil *SecretMap")
	}
	if m.values == nil {
		m.values = make(map[string]string)
	}
	if _, ok := m.values[name]; !ok {
		m.names = append(m.names, name)
	}
	m.values[name] = secret
}

// Remove deletes name and reports whether it was present.
func (m *SecretMap) Remove(name string) bool {
	if m == nil {
		return false
	}
	if _, ok := m.values[name]; !ok {
		return false
	}
	delete(m.values, name)
	m.names = slices.DeleteFunc(m.names, func(n string) bool { return n == name })
	return true
}

// Rename moves the secret stored under oldName to newName, taking over
// oldName's position and replacing any secret already at newName. It
// reports false and leaves the map unchanged when oldName is absent.
func (m *SecretMap) Rename(oldName, newName string) bool {
	if m == nil {
		return false
	}
	secret, ok := m.values[oldName]
	if !ok {
		return false
	}
	if oldName == newName {
		return true
	}
	if _, exists := m.values[newName]; exists {
		m.Remove(newName)
	}
	i := slices.Index(m.names, oldName)
	m.names[i] = newName
	delete(m.values, oldName)
	m.values[newName] = secret
	return true
}

// Names returns the account names in insertion order.
func (m *SecretMap) Names() []string {
	if m == nil {
		return nil
	}
	return slices.Clone(m.names)
}

// All iterates name/secret pairs in insertion order.
func (m *SecretMap) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		if m == nil {
			return
		}
		for _, n := range m.names {
			if !yield(n, m.values[n]) {
				return
			}
		}
	}
}

// HasName reports whether name is present.
func (m *SecretMap) HasName(name string) bool {
	_, ok := m.Get(name)
	return ok
}

// HasValue reports whether any account holds secret.
func (m *SecretMap) HasValue(secret string) bool {
	for _, v := range m.All() {
		if v == secret {
			return true
		}
	}
	return false
}

// Clone returns an independent copy.
func (m *SecretMap) Clone() *SecretMap {
	c := NewSecretMap()
	for n, v := range m.All() {
		c.Insert(n, v)
	}
	return c
}

// Equal reports whether both maps hold the same pairs, ignoring order.
func (m *SecretMap) Equal(o *SecretMap) bool {
	if m.Len() != o.Len() {
		return false
	}
	for n, v := range m.All() {
		if ov, ok := o.Get(n); !ok || ov != v {
			return false
		}
	}
	return true
}

// Wipe drops every entry.
func (m *SecretMap) Wipe() {
	if m == nil {
		return
	}
	clear(m.values)
	clear(m.names)
	m.names = m.names[:0]
}

// MarshalJSON encodes the map as a JSON object in insertion order.
func (m *SecretMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, n := range m.Names() {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(n)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(m.values[n])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object of string values, keeping key order.
func (m *SecretMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("secret map: expected object, got %v", tok)
	}

	out := NewSecretMap()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("secret map: expected name, got %v", tok)
		}
		var secret string
		if err := dec.Decode(&secret); err != nil {
			return fmt.Errorf("secret map: value for %q: %w", name, err)
		}
		out.Insert(name, secret)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*m = *out
	return nil
}
