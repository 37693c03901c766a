package user

import (
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/fawaidy/fawaidy/internal/config"
	"github.com/fawaidy/fawaidy/internal/models"
	"github.com/fawaidy/fawaidy/internal/response"
	"github.com/fawaidy/fawaidy/internal/security"
	"github.com/fawaidy/fawaidy/internal/session"
	"github.com/fawaidy/fawaidy/internal/validation"
	"github.com/gofiber/fiber/v2"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var bioPolicy = bluemonday.StrictPolicy()

type Handler struct {
	DB       *gorm.DB
	Sessions *session.Manager
}

func NewHandler(db *gorm.DB, sessions *session.Manager) *Handler {
	return &Handler{DB: db, Sessions: sessions}
}

func roleBadge(role int) string {
	switch role {
	case config.RoleSuperAdmin:
		return "مدير"
	case config.RoleAdmin:
		return "مشرف"
	case config.RolePremium:
		return "عضو مميز"
	default:
		return "عضو"
	}
}

type recentItem struct {
	ID         uint      `json:"id"`
	Title      string    `json:"title"`
	ViewsCount int64     `json:"views_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// ProfileHandler is the public profile page: account card, role badge
// and the member's three latest published benefits. Premium members
// also show their latest articles.
func (h *Handler) ProfileHandler(c *fiber.Ctx) error {
	username := strings.TrimSpace(c.Params("username"))

	var u models.User
	err := h.DB.Where("username = ? AND is_active = ?", username, true).First(&u).Error
	if err != nil {
		return response.NotFound(c, "العضو غير موجود")
	}

	var benefits []recentItem
	h.DB.Table("benefits").
		Select("id, title, views_count, created_at").
		Where("user_id = ? AND status = ? AND deleted_at IS NULL", u.ID, models.StatusPublished).
		Order("created_at DESC").
		Limit(config.RecentItems).
		Scan(&benefits)

	profile := fiber.Map{
		"id":         u.ID,
		"username":   u.Username,
		"full_name":  u.FullName,
		"avatar":     u.Avatar,
		"bio":        u.Bio,
		"country":    u.Country,
		"role":       u.Role,
		"role_badge": roleBadge(u.Role),
		"created_at": u.CreatedAt,
		"benefits":   benefits,
	}

	if u.Role >= config.RolePremium {
		var articles []recentItem
		h.DB.Table("articles").
			Select("id, title, views_count, created_at").
			Where("user_id = ? AND status = ? AND deleted_at IS NULL", u.ID, models.StatusPublished).
			Order("created_at DESC").
			Limit(config.RecentItems).
			Scan(&articles)
		profile["articles"] = articles
	}

	return response.Success(c, profile, "")
}

// MeHandler returns the logged-in user's own account including email
// and preferences.
func (h *Handler) MeHandler(c *fiber.Ctx) error {
	ident := session.CurrentIdentity(c)
	if ident == nil {
		return response.Unauthorized(c, "يجب تسجيل الدخول أولاً")
	}

	var u models.User
	if err := h.DB.First(&u, ident.UserID).Error; err != nil {
		return response.Unauthorized(c, "يجب تسجيل الدخول أولاً")
	}

	return response.Success(c, u, "")
}

func (h *Handler) UpdateSettingsHandler(c *fiber.Ctx) error {
	sess, err := h.Sessions.Get(c)
	if err != nil {
		return response.InternalError(c)
	}
	if !security.VerifyCSRF(sess, c) {
		return response.Forbidden(c, "انتهت صلاحية الجلسة. يرجى إعادة المحاولة")
	}

	ident := session.CurrentIdentity(c)
	if ident == nil {
		return response.Unauthorized(c, "يجب تسجيل الدخول أولاً")
	}

	var body struct {
		Bio     string `json:"bio" form:"bio"`
		Country string `json:"country" form:"country"`
		Avatar  string `json:"avatar" form:"avatar"`
		Gender  string `json:"gender" form:"gender"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "طلب غير صالح", err.Error())
	}

	errs := validation.Errors{}
	country := strings.TrimSpace(body.Country)
	if msg := validation.Country(country); msg != "" {
		errs["country"] = msg
	}
	if msg := validation.Gender(body.Gender); msg != "" {
		errs["gender"] = msg
	}
	bio := strings.TrimSpace(bioPolicy.Sanitize(body.Bio))
	if len([]rune(bio)) > 500 {
		errs["bio"] = "النبذة طويلة جداً (500 حرف كحد أقصى)"
	}
	if len(errs) > 0 {
		return response.ValidationError(c, errs)
	}

	updates := map[string]interface{}{
		"bio":     bio,
		"country": country,
		"avatar":  strings.TrimSpace(body.Avatar),
		"gender":  body.Gender,
	}
	if err := h.DB.Model(&models.User{}).Where("id = ?", ident.UserID).
		Updates(updates).Error; err != nil {
		log.Printf("❌ settings update for user %d failed: %v", ident.UserID, err)
		return response.InternalError(c)
	}

	return response.Success(c, nil, "تم حفظ الإعدادات بنجاح")
}

// ChangePasswordHandler requires the current password before storing a
// new one, then revokes every live remember-me token.
func (h *Handler) ChangePasswordHandler(c *fiber.Ctx) error {
	sess, err := h.Sessions.Get(c)
	if err != nil {
		return response.InternalError(c)
	}
	if !security.VerifyCSRF(sess, c) {
		return response.Forbidden(c, "انتهت صلاحية الجلسة. يرجى إعادة المحاولة")
	}

	ident := session.CurrentIdentity(c)
	if ident == nil {
		return response.Unauthorized(c, "يجب تسجيل الدخول أولاً")
	}

	var body struct {
		CurrentPassword string `json:"current_password" form:"current_password"`
		Password        string `json:"password" form:"password"`
		PasswordConfirm string `json:"password_confirm" form:"password_confirm"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "طلب غير صالح", err.Error())
	}

	var u models.User
	if err := h.DB.First(&u, ident.UserID).Error; err != nil {
		return response.Unauthorized(c, "يجب تسجيل الدخول أولاً")
	}

	if !security.VerifyPassword(body.CurrentPassword, u.Password) {
		return response.ValidationError(c, validation.Errors{
			"current_password": "كلمة المرور الحالية غير صحيحة",
		})
	}
	if msg := validation.Password(body.Password); msg != "" {
		return response.ValidationError(c, validation.Errors{"password": msg})
	}
	if msg := validation.PasswordMatch(body.Password, body.PasswordConfirm); msg != "" {
		return response.ValidationError(c, validation.Errors{"password_confirm": msg})
	}

	hashed, err := security.HashPassword(body.Password)
	if err != nil {
		log.Printf("❌ password hash failed: %v", err)
		return response.InternalError(c)
	}
	if err := h.DB.Model(&u).Update("password", hashed).Error; err != nil {
		log.Printf("❌ password update for user %d failed: %v", u.ID, err)
		return response.InternalError(c)
	}

	h.DB.Where("user_id = ? AND expires_at > ?", u.ID, time.Now()).
		Delete(&models.RememberToken{})

	return response.Success(c, nil, "تم تغيير كلمة المرور بنجاح")
}

// UpdatePreferencesHandler stores the free-form UI preference blob
// (theme, feed defaults) as JSON on the account.
func (h *Handler) UpdatePreferencesHandler(c *fiber.Ctx) error {
	sess, err := h.Sessions.Get(c)
	if err != nil {
		return response.InternalError(c)
	}
	if !security.VerifyCSRF(sess, c) {
		return response.Forbidden(c, "انتهت صلاحية الجلسة. يرجى إعادة المحاولة")
	}

	ident := session.CurrentIdentity(c)
	if ident == nil {
		return response.Unauthorized(c, "يجب تسجيل الدخول أولاً")
	}

	var prefs map[string]interface{}
	if err := json.Unmarshal(c.Body(), &prefs); err != nil {
		return response.BadRequest(c, "طلب غير صالح", err.Error())
	}

	raw, err := json.Marshal(prefs)
	if err != nil {
		return response.BadRequest(c, "طلب غير صالح", err.Error())
	}

	if err := h.DB.Model(&models.User{}).Where("id = ?", ident.UserID).
		Update("preferences", datatypes.JSON(raw)).Error; err != nil {
		log.Printf("❌ preferences update for user %d failed: %v", ident.UserID, err)
		return response.InternalError(c)
	}

	return response.Success(c, nil, "تم حفظ التفضيلات بنجاح")
}
