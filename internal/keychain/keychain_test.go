package keychain

import (
	"errors"
	"testing"
)

// Unit tests use MemoryStore; no platform keychain interaction needed.

func testStore() Store {
	return NewMemoryStore()
}

var testRecord = Record{Nonce: "bm9uY2U=", Ciphertext: "Ym94"}

func TestSetAndGet(t *testing.T) {
	s := testStore()

	if err := s.Set("seeds", testRecord); err != nil {
		t.Fatalf("Set: %v", err)
	}

	rec, err := s.Get("seeds")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec != testRecord {
		t.Errorf("expected %+v, got %+v", testRecord, rec)
	}
}

func TestGetNotFound(t *testing.T) {
	s := testStore()

	_, err := s.Get("seeds")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSetOverwrites(t *testing.T) {
	s := testStore()

	s.Set("seeds", Record{Nonce: "first", Ciphertext: "first"})
	s.Set("seeds", Record{Nonce: "second", Ciphertext: "second"})

	rec, err := s.Get("seeds")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.Nonce != "second" || rec.Ciphertext != "second" {
		t.Errorf("expected both fields replaced, got %+v", rec)
	}
}

func TestSetRejectsIncompleteRecord(t *testing.T) {
	s := testStore()

	for _, rec := range []Record{{}, {Nonce: "n"}, {Ciphertext: "c"}, {Nonce: "a.b", Ciphertext: "c"}} {
		if err := s.Set("seeds", rec); err == nil {
			t.Errorf("expected error for %+v", rec)
		}
	}
	if _, err := s.Get("seeds"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected nothing stored, got %v", err)
	}
}

func TestClear(t *testing.T) {
	s := testStore()

	s.Set("authKey", testRecord)

	if err := s.Clear("authKey"); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	_, err := s.Get("authKey")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after clear, got %v", err)
	}
}

func TestClearNonexistent(t *testing.T) {
	s := testStore()

	if err := s.Clear("never-existed"); err != nil {
		t.Errorf("Clear nonexistent: %v", err)
	}
}

func TestAliasesAreIndependent(t *testing.T) {
	s := NewMemoryStore()

	s.Set("seeds", testRecord)
	s.Set("authKey", Record{Nonce: "other", Ciphertext: "other"})
	s.Clear("authKey")

	if _, err := s.Get("seeds"); err != nil {
		t.Errorf("expected seeds to survive clearing authKey: %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 record, got %d", s.Len())
	}
}

func TestPackRecordRoundTrip(t *testing.T) {
	got, err := unpackRecord("seeds", packRecord(testRecord))
	if err != nil {
		t.Fatalf("unpackRecord: %v", err)
	}
	if got != testRecord {
		t.Errorf("expected %+v, got %+v", testRecord, got)
	}

	if _, err := unpackRecord("seeds", "no-separator"); err == nil {
		t.Error("expected error for malformed packed record")
	}
}
