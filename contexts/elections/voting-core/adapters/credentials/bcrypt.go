package credentials

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"ballotbox/contexts/elections/voting-core/ports"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/bcrypt"
)

const MinCost = bcrypt.MinCost

// Bcrypt stores credentials as bcrypt hashes of a BLAKE3 digest of the
// password, which lifts bcrypt's 72-byte input limit. Records written before
// hashing was introduced hold the password itself and are still accepted.
type Bcrypt struct {
	Cost int
}

func (b Bcrypt) Hash(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword(prehash(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash credential: %w", err)
	}
	return string(hashed), nil
}

func (b Bcrypt) Matches(credential string, password string) bool {
	if credential == "" {
		return false
	}
	if isBcryptHash(credential) {
		return bcrypt.CompareHashAndPassword([]byte(credential), prehash(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(credential), []byte(password)) == 1
}

// prehash yields 44 base64 bytes with no NUL, well inside bcrypt's limit.
func prehash(password string) []byte {
	digest := blake3.Sum256([]byte(password))
	encoded := make([]byte, base64.StdEncoding.EncodedLen(len(digest)))
	base64.StdEncoding.Encode(encoded, digest[:])
	return encoded
}

func isBcryptHash(credential string) bool {
	if !strings.HasPrefix(credential, "$2") {
		return false
	}
	_, err := bcrypt.Cost([]byte(credential))
	return err == nil
}

var _ ports.CredentialHasher = Bcrypt{}
