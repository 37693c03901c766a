package auth

import (
	"strings"
	"time"

	"github.com/fawaidy/fawaidy/internal/config"
	"github.com/fawaidy/fawaidy/internal/response"
	"github.com/fawaidy/fawaidy/internal/session"
	"github.com/gofiber/fiber/v2"
)

// RequireLogin resolves the caller's identity from the session, falling
// back to the remember-me cookie. A valid remember cookie reinstates a
// full session; an invalid one is cleared so the client stops sending
// it.
func (h *Handler) RequireLogin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := h.Sessions.Get(c)
		if err != nil {
			return response.InternalError(c)
		}

		if ident := session.IdentityFrom(sess); ident != nil {
			c.Locals("identity", ident)
			return c.Next()
		}

		raw := c.Cookies(config.RememberCookie)
		if raw != "" {
			user, err := h.Svc.ConsumeRememberToken(raw)
			if err == nil {
				if err := sess.Regenerate(); err != nil {
					return response.InternalError(c)
				}
				if err := h.Sessions.SetIdentity(sess, user); err != nil {
					return response.InternalError(c)
				}
				c.Locals("identity", &session.Identity{
					UserID:   user.ID,
					Username: user.Username,
					Email:    user.Email,
					Role:     user.Role,
				})
				return c.Next()
			}

			c.Cookie(&fiber.Cookie{
				Name:     config.RememberCookie,
				Value:    "",
				Expires:  time.Now().Add(-time.Hour),
				HTTPOnly: true,
				SameSite: fiber.CookieSameSiteStrictMode,
				Path:     "/",
			})
		}

		return response.Unauthorized(c, "يجب تسجيل الدخول أولاً")
	}
}

// RequireRole runs after RequireLogin and gates by minimum role tier.
func RequireRole(minRole int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ident := session.CurrentIdentity(c)
		if ident == nil {
			return response.Unauthorized(c, "يجب تسجيل الدخول أولاً")
		}
		if ident.Role < minRole {
			return response.Forbidden(c, "ليس لديك صلاحية الوصول إلى هذه الصفحة")
		}
		return c.Next()
	}
}

// BearerProtected guards the JSON API group. It accepts either a
// Bearer token minted at login or an established session, so both AJAX
// and first-party pages can call the same endpoints.
func (h *Handler) BearerProtected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				return response.Error(c, fiber.StatusUnauthorized,
					"INVALID_TOKEN_FORMAT", "Invalid token format", nil)
			}

			userID, role, err := ParseAPIToken(parts[1])
			if err != nil {
				return response.Error(c, fiber.StatusUnauthorized,
					"INVALID_TOKEN", "Invalid or expired token", nil)
			}

			var ident session.Identity
			if err := h.Svc.DB.Table("users").
				Select("id AS user_id, username, email, role").
				Where("id = ? AND is_active = ? AND is_locked = ? AND deleted_at IS NULL", userID, true, false).
				Scan(&ident).Error; err != nil || ident.UserID == 0 {
				return response.Unauthorized(c, "يجب تسجيل الدخول أولاً")
			}
			if ident.Role != role {
				// Role changed since the token was minted; force a refresh.
				return response.Error(c, fiber.StatusUnauthorized,
					"INVALID_TOKEN", "Invalid or expired token", nil)
			}

			c.Locals("identity", &ident)
			return c.Next()
		}

		return h.RequireLogin()(c)
	}
}
