package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// NewToken mints n random bytes and returns the raw hex value (sent to
// the client) and its SHA-256 hex (stored server side).
func NewToken(n int) (raw string, hash string, err error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	raw = hex.EncodeToString(b)
	return raw, HashToken(raw), nil
}

func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// NewVerificationCode returns a short hex code typed in by the user.
func NewVerificationCode() (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
