package password

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_HashAndVerify(t *testing.T) {
	h := &BcryptHasher{Cost: bcrypt.MinCost}

	hash, err := h.Hash("pw1")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if hash == "pw1" || !strings.HasPrefix(hash, "$2") {
		t.Fatalf("unexpected hash %q", hash)
	}
	if !h.Verify(hash, "pw1") {
		t.Error("expected correct password to verify")
	}
	if h.Verify(hash, "pw2") {
		t.Error("expected wrong password to fail")
	}
}

func TestBcryptHasher_Salted(t *testing.T) {
	h := &BcryptHasher{Cost: bcrypt.MinCost}

	a, err := h.Hash("same")
	if err != nil {
		t.Fatal(err)
	}
	b, err := h.Hash("same")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("expected two hashes of the same password to differ")
	}
}

func TestBcryptHasher_ZeroCostUsesDefault(t *testing.T) {
	h := &BcryptHasher{}
	hash, err := h.Hash("pw")
	if err != nil {
		t.Fatal(err)
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatal(err)
	}
	if cost != bcrypt.DefaultCost {
		t.Errorf("cost = %d; want %d", cost, bcrypt.DefaultCost)
	}
}

func TestBcryptHasher_VerifyGarbageHash(t *testing.T) {
	h := NewBcryptHasher()
	if h.Verify("not-a-hash", "pw") {
		t.Error("expected garbage hash to fail verification")
	}
}

func TestBcryptHasher_TooLong(t *testing.T) {
	h := &BcryptHasher{Cost: bcrypt.MinCost}
	if _, err := h.Hash(strings.Repeat("a", 100)); err == nil {
		t.Error("expected error for password longer than 72 bytes")
	}
}
