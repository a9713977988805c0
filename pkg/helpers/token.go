package helpers

import (
	"crypto/rand"
	"encoding/base64"
)

// KeyResetToken is the Redis key mapping a password reset token to its user.
func KeyResetToken(token string) string {
	return "pwd:reset:token:" + token
}

// GenToken returns n random bytes encoded as URL-safe base64.
func GenToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
