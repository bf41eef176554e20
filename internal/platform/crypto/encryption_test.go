package crypto

import (
	"bytes"
	"strings"
	"testing"
)

func TestSealOpenRoundTrip(t *testing.T) {
	sealer, err := New(strings.Repeat("ab", 32))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !sealer.Configured() {
		t.Fatal("expected configured sealer")
	}

	sealed, err := sealer.SealString("JBSWY3DPEHPK3PXP")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if bytes.Contains(sealed, []byte("JBSWY3DPEHPK3PXP")) {
		t.Fatal("sealed value leaks plaintext")
	}
	plain, err := sealer.OpenString(sealed)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if plain != "JBSWY3DPEHPK3PXP" {
		t.Fatalf("unexpected plaintext %q", plain)
	}
}

func TestOpenRejectsTamperedData(t *testing.T) {
	sealer, err := New(strings.Repeat("k", 31) + "!")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	sealed, _ := sealer.SealString("secret")
	sealed[len(sealed)-1] ^= 0xff
	if _, err := sealer.Open(sealed); err == nil {
		t.Fatal("expected authentication failure")
	}
	if _, err := sealer.Open([]byte{1, 2}); err != ErrCiphertextTooShort {
		t.Fatalf("expected short ciphertext error, got %v", err)
	}
}

func TestUnconfiguredSealerPassesThrough(t *testing.T) {
	sealer, err := New("")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	sealed, _ := sealer.SealString("plain")
	if string(sealed) != "plain" {
		t.Fatalf("expected passthrough, got %q", sealed)
	}
}

func TestNewRejectsShortKey(t *testing.T) {
	if _, err := New("short"); err == nil {
		t.Fatal("expected key length error")
	}
}
