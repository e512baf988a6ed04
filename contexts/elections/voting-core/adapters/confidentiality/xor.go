package confidentiality

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"

	domainerrors "ballotbox/contexts/elections/voting-core/domain/errors"
	"ballotbox/contexts/elections/voting-core/ports"
)

const DefaultKey = "SimpleKey123"

// XOR masks the decimal candidate id with a repeating key and hex-encodes
// the result so it fits a whitespace-delimited record. It hides choices from
// casual inspection only.
type XOR struct {
	key []byte
}

func NewXOR(key string) (XOR, error) {
	if key == "" {
		return XOR{}, errors.New("xor confidentiality key is required")
	}
	return XOR{key: []byte(key)}, nil
}

func (x XOR) Encode(candidateID int) (string, error) {
	if candidateID <= 0 {
		return "", fmt.Errorf("%w: candidate id %d", domainerrors.ErrInvalidConfidentialChoice, candidateID)
	}
	return hex.EncodeToString(x.mask([]byte(strconv.Itoa(candidateID)))), nil
}

func (x XOR) Decode(confidentialChoice string) (int, error) {
	masked, err := hex.DecodeString(confidentialChoice)
	if err != nil || len(masked) == 0 {
		return 0, domainerrors.ErrInvalidConfidentialChoice
	}
	candidateID, err := strconv.Atoi(string(x.mask(masked)))
	if err != nil || candidateID <= 0 {
		return 0, domainerrors.ErrInvalidConfidentialChoice
	}
	return candidateID, nil
}

func (x XOR) mask(input []byte) []byte {
	out := make([]byte, len(input))
	for i := range input {
		out[i] = input[i] ^ x.key[i%len(x.key)]
	}
	return out
}

var _ ports.ConfidentialityTransform = XOR{}
