package password

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt only looks at the first 72 bytes of input
const bcryptMaxLength = 72

// Bcrypt hashes passwords with bcrypt at a fixed cost.
type Bcrypt struct {
	Cost int
}

// NewBcrypt returns a bcrypt hasher. Costs outside bcrypt's range fall
// back to bcrypt.DefaultCost.
func NewBcrypt(cost int) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{Cost: cost}
}

// Hash hashes a password using bcrypt.
func (b *Bcrypt) Hash(plaintext string) (string, error) {
	if len(plaintext) > bcryptMaxLength {
		return "", fmt.Errorf("%w: bcrypt accepts at most %d bytes", ErrTooLong, bcryptMaxLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), b.Cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrTooLong
		}
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hash), nil
}

// Verify compares a plaintext password with any supported hash.
func (b *Bcrypt) Verify(plaintext, encoded string) bool {
	return Verify(plaintext, encoded)
}

func verifyBcrypt(plaintext, encoded string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(plaintext))
	return err == nil
}

func isBcryptHash(encoded string) bool {
	return strings.HasPrefix(encoded, "$2a$") ||
		strings.HasPrefix(encoded, "$2b$") ||
		strings.HasPrefix(encoded, "$2y$")
}
