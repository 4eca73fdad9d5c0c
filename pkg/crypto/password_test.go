package crypto

import (
	"bytes"
	"testing"
)

func TestHashPasswordNeverStoresPlaintext(t *testing.T) {
	hash, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if bytes.Equal(hash, []byte("secret1")) {
		t.Fatalf("hash equals plaintext")
	}
	if err := ComparePassword(hash, "secret1"); err != nil {
		t.Fatalf("expected match, got %v", err)
	}
	if err := ComparePassword(hash, "secret2"); err == nil {
		t.Fatalf("expected mismatch for wrong password")
	}
}

func TestHashPasswordIsSalted(t *testing.T) {
	first, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	second, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if bytes.Equal(first, second) {
		t.Fatalf("expected distinct salted hashes")
	}
}
