package password

import (
	"errors"
	"fmt"
	"strings"
)

// Supported algorithms
const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

// ErrTooLong is returned when a plaintext exceeds what the algorithm can
// hash without truncation.
var ErrTooLong = errors.New("password is too long")

// ErrUnsupportedAlgorithm is returned for unknown algorithm names.
var ErrUnsupportedAlgorithm = errors.New("unsupported password hash algorithm")

// Hasher produces and checks one-way password hashes.
type Hasher interface {
	// Hash returns a salted, encoded hash of plaintext.
	Hash(plaintext string) (string, error)

	// Verify reports whether plaintext matches the encoded hash.
	Verify(plaintext, encoded string) bool
}

// New returns the hasher for the named algorithm. cost is the bcrypt cost
// and is ignored for argon2id.
func New(algorithm string, cost int) (Hasher, error) {
	switch strings.ToLower(algorithm) {
	case "", AlgorithmBcrypt:
		return NewBcrypt(cost), nil
	case AlgorithmArgon2id:
		return NewArgon2id(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, algorithm)
	}
}

// Verify checks plaintext against a hash produced by any supported
// algorithm, selected by the hash prefix. Unknown formats never match.
func Verify(plaintext, encoded string) bool {
	switch {
	case isBcryptHash(encoded):
		return verifyBcrypt(plaintext, encoded)
	case strings.HasPrefix(encoded, "$"+AlgorithmArgon2id+"$"):
		ok, err := verifyArgon2id(plaintext, encoded)
		return err == nil && ok
	default:
		return false
	}
}
