package credentials

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHashAndMatch(t *testing.T) {
	hasher := Bcrypt{Cost: bcrypt.MinCost}
	credential, err := hasher.Hash("Passw0rd!")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if !strings.HasPrefix(credential, "$2") {
		t.Fatalf("expected bcrypt credential, got %q", credential)
	}
	if credential == "Passw0rd!" {
		t.Fatal("credential must not equal the password")
	}
	if !hasher.Matches(credential, "Passw0rd!") {
		t.Fatal("expected password to match its hash")
	}
	if hasher.Matches(credential, "Passw0rd?") {
		t.Fatal("expected different password to be rejected")
	}
}

func TestBcryptAcceptsLegacyPlaintextCredential(t *testing.T) {
	hasher := Bcrypt{Cost: bcrypt.MinCost}
	if !hasher.Matches("Admin@123", "Admin@123") {
		t.Fatal("expected legacy plaintext credential to match")
	}
	if hasher.Matches("Admin@123", "admin@123") {
		t.Fatal("expected legacy plaintext mismatch to fail")
	}
	if hasher.Matches("", "") {
		t.Fatal("expected empty credential to never match")
	}
}

func TestBcryptHandlesPasswordsPastSeventyTwoBytes(t *testing.T) {
	hasher := Bcrypt{Cost: bcrypt.MinCost}
	long := "Passw0rd!" + strings.Repeat("x", 70)
	credential, err := hasher.Hash(long)
	if err != nil {
		t.Fatalf("hash %d-byte password: %v", len(long), err)
	}
	if !hasher.Matches(credential, long) {
		t.Fatal("expected long password to match its hash")
	}
	// Passwords sharing the first 72 bytes must still be told apart.
	if hasher.Matches(credential, long+"y") {
		t.Fatal("expected longer variant to be rejected")
	}
	if hasher.Matches(credential, long[:72]) {
		t.Fatal("expected truncated variant to be rejected")
	}
}
