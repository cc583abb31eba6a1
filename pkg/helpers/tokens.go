package helpers

import (
	"crypto/rand"
	"encoding/base64"
)

// Redis keys shared by handlers and services.
func KeyPasswordReset(token string) string { return "pwd:reset:token:" + token }
func KeyOrderIdempotency(userID, key string) string {
	return "order:idem:" + userID + ":" + key
}

// RandomToken returns n random bytes encoded as URL-safe base64.
func RandomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
