package session

import (
	"github.com/fawaidy/fawaidy/internal/config"
	"github.com/fawaidy/fawaidy/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// Identity is the authenticated user as carried by the session and
// handed to handlers through the request context.
type Identity struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     int    `json:"role"`
}

// Manager wraps the server-side session store. Session state never
// leaves the process; only the session id travels in the cookie.
type Manager struct {
	store *session.Store
}

func NewManager(debug bool) *Manager {
	return &Manager{
		store: session.New(session.Config{
			KeyLookup:      "cookie:" + config.SessionCookie,
			Expiration:     config.SessionTimeout,
			CookieHTTPOnly: true,
			CookieSameSite: "Strict",
			CookieSecure:   !debug,
		}),
	}
}

func (m *Manager) Get(c *fiber.Ctx) (*session.Session, error) {
	return m.store.Get(c)
}

// SetIdentity writes the user's identity into the session. Callers
// regenerate the session id first when establishing a fresh login.
func (m *Manager) SetIdentity(sess *session.Session, u *models.User) error {
	sess.Set("user_id", u.ID)
	sess.Set("username", u.Username)
	sess.Set("email", u.Email)
	sess.Set("user_role", u.Role)
	return sess.Save()
}

func IdentityFrom(sess *session.Session) *Identity {
	id, ok := sess.Get("user_id").(uint)
	if !ok || id == 0 {
		return nil
	}
	username, _ := sess.Get("username").(string)
	email, _ := sess.Get("email").(string)
	role, _ := sess.Get("user_role").(int)
	return &Identity{UserID: id, Username: username, Email: email, Role: role}
}

// SetPending marks a freshly registered, not yet verified account so
// the verify page knows who is confirming.
func (m *Manager) SetPending(sess *session.Session, userID uint, email string) error {
	sess.Set("temp_user_id", userID)
	sess.Set("temp_email", email)
	return sess.Save()
}

func Pending(sess *session.Session) (uint, string, bool) {
	id, ok := sess.Get("temp_user_id").(uint)
	if !ok || id == 0 {
		return 0, "", false
	}
	email, _ := sess.Get("temp_email").(string)
	return id, email, true
}

func (m *Manager) ClearPending(sess *session.Session) error {
	sess.Delete("temp_user_id")
	sess.Delete("temp_email")
	return sess.Save()
}

// CurrentIdentity reads the identity placed on the request context by
// the auth middleware.
func CurrentIdentity(c *fiber.Ctx) *Identity {
	ident, _ := c.Locals("identity").(*Identity)
	return ident
}
