package helpers

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt only looks at the first 72 bytes; longer passwords are refused
// instead of silently truncated.
const (
	MinPasswordLength = 8
	MaxPasswordBytes  = 72
)

var ErrPasswordTooLong = errors.New("password longer than 72 bytes")

// HashPassword hashes the plain text password using bcrypt
func HashPassword(plain string) (string, error) {
	if len(plain) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CompareHashAndPassword reports whether plain matches hash. Malformed hashes
// never match.
func CompareHashAndPassword(hash string, plain string) bool {
	if hash == "" || len(plain) > MaxPasswordBytes {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
