package confidentiality

import (
	"crypto/cipher"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"

	domainerrors "ballotbox/contexts/elections/voting-core/domain/errors"
	"ballotbox/contexts/elections/voting-core/ports"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/chacha20poly1305"
)

var sealedAAD = []byte("ballotbox/vote-choice/v1")

// Sealed encrypts the candidate id with XChaCha20-Poly1305. The nonce is a
// BLAKE3 keyed hash of the plaintext, so equal ids encode to equal strings
// and decoding can verify the nonce was derived, not chosen.
type Sealed struct {
	aead     cipher.AEAD
	nonceKey [32]byte
}

func NewSealed(secret string) (*Sealed, error) {
	if secret == "" {
		return nil, errors.New("sealed confidentiality secret is required")
	}
	encryptionKey := blake3.Sum256([]byte("ballotbox vote choice encryption\x00" + secret))
	aead, err := chacha20poly1305.NewX(encryptionKey[:])
	if err != nil {
		return nil, fmt.Errorf("init xchacha20-poly1305: %w", err)
	}
	return &Sealed{
		aead:     aead,
		nonceKey: blake3.Sum256([]byte("ballotbox vote choice nonce\x00" + secret)),
	}, nil
}

func (s *Sealed) Encode(candidateID int) (string, error) {
	if candidateID <= 0 {
		return "", fmt.Errorf("%w: candidate id %d", domainerrors.ErrInvalidConfidentialChoice, candidateID)
	}
	plaintext := []byte(strconv.Itoa(candidateID))
	nonce, err := s.nonceFor(plaintext)
	if err != nil {
		return "", err
	}
	out := make([]byte, len(nonce), len(nonce)+len(plaintext)+s.aead.Overhead())
	copy(out, nonce)
	return base64.RawURLEncoding.EncodeToString(s.aead.Seal(out, nonce, plaintext, sealedAAD)), nil
}

func (s *Sealed) Decode(confidentialChoice string) (int, error) {
	raw, err := base64.RawURLEncoding.DecodeString(confidentialChoice)
	if err != nil || len(raw) < s.aead.NonceSize()+s.aead.Overhead() {
		return 0, domainerrors.ErrInvalidConfidentialChoice
	}
	nonce, ciphertext := raw[:s.aead.NonceSize()], raw[s.aead.NonceSize():]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, sealedAAD)
	if err != nil {
		return 0, domainerrors.ErrInvalidConfidentialChoice
	}
	expected, err := s.nonceFor(plaintext)
	if err != nil {
		return 0, err
	}
	if subtle.ConstantTimeCompare(expected, nonce) != 1 {
		return 0, domainerrors.ErrInvalidConfidentialChoice
	}
	candidateID, err := strconv.Atoi(string(plaintext))
	if err != nil || candidateID <= 0 {
		return 0, domainerrors.ErrInvalidConfidentialChoice
	}
	return candidateID, nil
}

func (s *Sealed) nonceFor(plaintext []byte) ([]byte, error) {
	hasher, err := blake3.NewKeyed(s.nonceKey[:])
	if err != nil {
		return nil, fmt.Errorf("init blake3 keyed hash: %w", err)
	}
	if _, err := hasher.Write(plaintext); err != nil {
		return nil, err
	}
	size := s.aead.NonceSize()
	return hasher.Sum(nil)[:size:size], nil
}

var _ ports.ConfidentialityTransform = (*Sealed)(nil)
