package auth

import (
	"crypto/sha256"
	"encoding/base64"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt ignores everything past 72 bytes and newer versions reject it.
const maxBcryptInput = 72

// PasswordHasher hashes and verifies passwords with bcrypt.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher returns a hasher using cost, clamped to bcrypt's range.
func NewPasswordHasher(cost int) *PasswordHasher {
	switch {
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash returns a salted bcrypt hash. Every call draws a new salt.
func (h *PasswordHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(prepare(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether plain matches hash. Malformed hashes never match.
func (h *PasswordHasher) Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), prepare(plain)) == nil
}

// prepare reduces oversized passwords to a fixed-size digest so any input
// length is accepted and every byte contributes.
func prepare(password string) []byte {
	if len(password) <= maxBcryptInput {
		return []byte(password)
	}
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}
