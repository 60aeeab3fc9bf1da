package utils

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// ErrEmptySecret is returned when a shared secret is blank after trimming.
var ErrEmptySecret = errors.New("secret is empty")

// SecretHash is the bcrypt form of a shared operator secret.  Operators type
// the secret by hand, so surrounding whitespace never counts.
type SecretHash []byte

// HashSecret trims secret and hashes it.  A cost outside bcrypt's range
// falls back to bcrypt.DefaultCost.
func HashSecret(secret string, cost int) (SecretHash, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return bcrypt.GenerateFromPassword([]byte(secret), cost)
}

// Matches reports whether the trimmed input is the hashed secret.  Blank
// input never matches.
func (h SecretHash) Matches(input string) bool {
	input = strings.TrimSpace(input)
	if input == "" || len(h) == 0 {
		return false
	}
	return bcrypt.CompareHashAndPassword(h, []byte(input)) == nil
}

// Cost reports the work factor the hash was built with, or 0 when the hash
// is malformed.
func (h SecretHash) Cost() int {
	c, err := bcrypt.Cost(h)
	if err != nil {
		return 0
	}
	return c
}
