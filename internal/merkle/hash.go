package merkle

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Supported hash algorithm names.
const (
	AlgoSHA256    = "sha256"
	AlgoKeccak256 = "keccak256"
)

// ErrUnknownHash indicates an unsupported hash algorithm name.
var ErrUnknownHash = errors.New("merkle: unknown hash algorithm")

// HashFunc digests raw bytes into a lowercase hex string.
type HashFunc func([]byte) string

// HashByName resolves an algorithm name to its hash function and canonical
// name. An empty name selects SHA-256.
func HashByName(name string) (HashFunc, string, error) {
	switch strings.ToLower(name) {
	case "", AlgoSHA256:
		return sha256Hex, AlgoSHA256, nil
	case AlgoKeccak256:
		return keccak256Hex, AlgoKeccak256, nil
	default:
		return nil, "", fmt.Errorf("%w: %s", ErrUnknownHash, name)
	}
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func keccak256Hex(data []byte) string {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
