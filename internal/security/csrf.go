package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"

	"github.com/fawaidy/fawaidy/internal/config"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// CSRFToken returns the per-session token, minting one the first time
// the session is seen.
func CSRFToken(sess *session.Session) (string, error) {
	if v, ok := sess.Get(config.CSRFTokenName).(string); ok && v != "" {
		return v, nil
	}

	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	token := hex.EncodeToString(b)
	sess.Set(config.CSRFTokenName, token)
	if err := sess.Save(); err != nil {
		return "", err
	}
	return token, nil
}

// VerifyCSRF accepts the token from the hidden form field or, for
// AJAX-style calls, the custom header. Comparison is constant time.
func VerifyCSRF(sess *session.Session, c *fiber.Ctx) bool {
	submitted := c.FormValue(config.CSRFTokenName)
	if submitted == "" {
		submitted = c.Get(config.CSRFHeaderName)
	}
	if submitted == "" {
		return false
	}

	stored, _ := sess.Get(config.CSRFTokenName).(string)
	if stored == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) == 1
}
