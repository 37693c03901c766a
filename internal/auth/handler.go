package auth

import (
	"errors"
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
)

type Handler struct {
	Svc      *Service
	Sessions *session.Manager
}

func NewHandler(svc *Service, sessions *session.Manager) *Handler {
	return &Handler{Svc: svc, Sessions: sessions}
}

// CSRFTokenHandler hands the session's CSRF token to the frontend.
func (h *Handler) CSRFTokenHandler(c *fiber.Ctx) error {
	sess, err := h.Sessions.Get(c)
	if err != nil {
		return response.InternalError(c)
	}

	token, err := security.CSRFToken(sess)
	if err != nil {
		return response.InternalError(c)
	}

	return response.Success(c, fiber.Map{config.CSRFTokenName: token}, "")
}

func (h *Handler) RegisterHandler(c *fiber.Ctx) error {
	sess, err := h.Sessions.Get(c)
	if err != nil {
		return response.InternalError(c)
	}
	if !security.VerifyCSRF(sess, c) {
		return response.Forbidden(c, "انتهت صلاحية الجلسة. يرجى إعادة المحاولة")
	}

	var body struct {
		FullName        string `json:"full_name" form:"full_name"`
		Username        string `json:"username" form:"username"`
		Email           string `json:"email" form:"email"`
		Password        string `json:"password" form:"password"`
		PasswordConfirm string `json:"password_confirm" form:"password_confirm"`
		Gender          string `json:"gender" form:"gender"`
		Country         string `json:"country" form:"country"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "طلب غير صالح", err.Error())
	}

	in := validation.RegistrationInput{
		FullName:        strings.TrimSpace(body.FullName),
		Username:        strings.TrimSpace(body.Username),
		Email:           strings.TrimSpace(body.Email),
		Password:        body.Password,
		PasswordConfirm: body.PasswordConfirm,
		Gender:          body.Gender,
		Country:         strings.TrimSpace(body.Country),
	}

	if errs := validation.ValidateRegistration(h.Svc.DB, in); len(errs) > 0 {
		return response.ValidationError(c, errs)
	}

	hashed, err := security.HashPassword(in.Password)
	if err != nil {
		log.Printf("❌ password hash failed: %v", err)
		return response.InternalError(c)
	}

	u := models.User{
		FullName: in.FullName,
		Username: in.Username,
		Email:    in.Email,
		Password: hashed,
		Gender:   in.Gender,
		Country:  in.Country,
		Provider: "local",
		Role:     config.RoleMember,
		IsActive: true,
	}
	if err := h.Svc.DB.Create(&u).Error; err != nil {
		log.Printf("❌ user insert failed: %v", err)
		return response.InternalError(c)
	}

	if err := h.Svc.StartVerification(&u); err != nil {
		log.Printf("❌ verification setup for user %d failed: %v", u.ID, err)
		return response.InternalError(c)
	}

	if err := h.Sessions.SetPending(sess, u.ID, u.Email); err != nil {
		return response.InternalError(c)
	}

	return response.Created(c, fiber.Map{
		"user_id": u.ID,
		"email":   u.Email,
	}, "تم إنشاء حسابك. يرجى إدخال رمز التحقق المرسل إلى بريدك")
}

// VerifyHandler consumes the emailed code for the pending account held
// in the temp session.
func (h *Handler) VerifyHandler(c *fiber.Ctx) error {
	sess, err := h.Sessions.Get(c)
	if err != nil {
		return response.InternalError(c)
	}
	if !security.VerifyCSRF(sess, c) {
		return response.Forbidden(c, "انتهت صلاحية الجلسة. يرجى إعادة المحاولة")
	}

	userID, _, ok := session.Pending(sess)
	if !ok {
		return response.Unauthorized(c, "لا يوجد حساب بانتظار التحقق")
	}

	var body struct {
		Code string `json:"code" form:"verification_code"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "طلب غير صالح", err.Error())
	}

	code := strings.TrimSpace(body.Code)
	if code == "" {
		return response.ValidationError(c, validation.Errors{"code": "رمز التحقق مطلوب"})
	}

	if err := h.Svc.VerifyCode(userID, code); err != nil {
		if errors.Is(err, ErrInvalidCode) {
			return response.ValidationError(c, validation.Errors{"code": err.Error()})
		}
		log.Printf("❌ verify for user %d failed: %v", userID, err)
		return response.InternalError(c)
	}

	if err := h.Sessions.ClearPending(sess); err != nil {
		return response.InternalError(c)
	}

	return response.Success(c, nil, "تم تفعيل حسابك بنجاح. يمكنك تسجيل الدخول الآن")
}

// ResendCodeHandler issues a fresh verification code for the pending
// account.
func (h *Handler) ResendCodeHandler(c *fiber.Ctx) error {
	sess, err := h.Sessions.Get(c)
	if err != nil {
		return response.InternalError(c)
	}
	if !security.VerifyCSRF(sess, c) {
		return response.Forbidden(c, "انتهت صلاحية الجلسة. يرجى إعادة المحاولة")
	}

	userID, _, ok := session.Pending(sess)
	if !ok {
		return response.Unauthorized(c, "لا يوجد حساب بانتظار التحقق")
	}

	var u models.User
	if err := h.Svc.DB.First(&u, userID).Error; err != nil {
		return response.Unauthorized(c, "لا يوجد حساب بانتظار التحقق")
	}
	if u.EmailVerified {
		return response.Success(c, nil, "حسابك مفعل بالفعل")
	}

	if err := h.Svc.StartVerification(&u); err != nil {
		log.Printf("❌ resend code for user %d failed: %v", u.ID, err)
		return response.InternalError(c)
	}

	return response.Success(c, nil, "تم إرسال رمز تحقق جديد إلى بريدك")
}

func (h *Handler) LoginHandler(c *fiber.Ctx) error {
	sess, err := h.Sessions.Get(c)
	if err != nil {
		return response.InternalError(c)
	}
	if !security.VerifyCSRF(sess, c) {
		return response.Forbidden(c, "انتهت صلاحية الجلسة. يرجى إعادة المحاولة")
	}

	var body struct {
		Identifier string `json:"identifier" form:"identifier"`
		Password   string `json:"password" form:"password"`
		Remember   bool   `json:"remember" form:"remember"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "طلب غير صالح", err.Error())
	}

	identifier := strings.TrimSpace(body.Identifier)
	if identifier == "" || body.Password == "" {
		return response.ValidationError(c, validation.Errors{
			"identifier": "البريد الإلكتروني أو اسم المستخدم مطلوب",
			"password":   "كلمة المرور مطلوبة",
		})
	}

	user, err := h.Svc.Authenticate(identifier, body.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials),
			errors.Is(err, ErrAccountDisabled),
			errors.Is(err, ErrAccountLocked),
			errors.Is(err, ErrEmailUnverified):
			return response.Unauthorized(c, err.Error())
		}
		log.Printf("❌ login lookup failed: %v", err)
		return response.InternalError(c)
	}

	// Fresh session id on privilege change.
	if err := sess.Regenerate(); err != nil {
		return response.InternalError(c)
	}
	if err := h.Sessions.SetIdentity(sess, user); err != nil {
		return response.InternalError(c)
	}

	if body.Remember {
		raw, err := h.Svc.IssueRememberToken(user.ID)
		if err != nil {
			log.Printf("⚠️ remember token for user %d failed: %v", user.ID, err)
		} else {
			c.Cookie(&fiber.Cookie{
				Name:     config.RememberCookie,
				Value:    raw,
				Expires:  time.Now().Add(config.RememberTTL),
				HTTPOnly: true,
				Secure:   !h.Svc.Cfg.Debug,
				SameSite: fiber.CookieSameSiteStrictMode,
				Path:     "/",
			})
		}
	}

	apiToken, _ := GenerateAPIToken(user.ID, user.Role)

	return response.Success(c, fiber.Map{
		"user": fiber.Map{
			"id":        user.ID,
			"username":  user.Username,
			"full_name": user.FullName,
			"email":     user.Email,
			"role":      user.Role,
		},
		"api_token": apiToken,
	}, "تم تسجيل الدخول بنجاح")
}

// LogoutHandler destroys the session and revokes the remember cookie
// plus every live remember token for the user.
func (h *Handler) LogoutHandler(c *fiber.Ctx) error {
	sess, err := h.Sessions.Get(c)
	if err != nil {
		return response.InternalError(c)
	}

	if ident := session.IdentityFrom(sess); ident != nil {
		h.Svc.ClearRememberTokens(ident.UserID)
	}

	if err := sess.Destroy(); err != nil {
		return response.InternalError(c)
	}

	c.Cookie(&fiber.Cookie{
		Name:     config.RememberCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
		Path:     "/",
	})

	return response.Success(c, nil, "تم تسجيل الخروج بنجاح")
}

// ForgotPasswordHandler answers identically whether or not the address
// belongs to an account.
func (h *Handler) ForgotPasswordHandler(c *fiber.Ctx) error {
	sess, err := h.Sessions.Get(c)
	if err != nil {
		return response.InternalError(c)
	}
	if !security.VerifyCSRF(sess, c) {
		return response.Forbidden(c, "انتهت صلاحية الجلسة. يرجى إعادة المحاولة")
	}

	var body struct {
		Email string `json:"email" form:"email"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "طلب غير صالح", err.Error())
	}

	email := strings.TrimSpace(body.Email)
	if msg := validation.EmailFormat(email); msg != "" {
		return response.ValidationError(c, validation.Errors{"email": msg})
	}

	h.Svc.StartPasswordReset(email)

	return response.Success(c, nil,
		"إذا كان البريد مسجلاً لدينا فستصلك رسالة تحتوي رابط إعادة التعيين")
}

func (h *Handler) ResetPasswordHandler(c *fiber.Ctx) error {
	sess, err := h.Sessions.Get(c)
	if err != nil {
		return response.InternalError(c)
	}
	if !security.VerifyCSRF(sess, c) {
		return response.Forbidden(c, "انتهت صلاحية الجلسة. يرجى إعادة المحاولة")
	}

	var body struct {
		Token           string `json:"token" form:"token"`
		Password        string `json:"password" form:"password"`
		PasswordConfirm string `json:"password_confirm" form:"password_confirm"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "طلب غير صالح", err.Error())
	}

	if msg := validation.Password(body.Password); msg != "" {
		return response.ValidationError(c, validation.Errors{"password": msg})
	}
	if msg := validation.PasswordMatch(body.Password, body.PasswordConfirm); msg != "" {
		return response.ValidationError(c, validation.Errors{"password_confirm": msg})
	}

	if err := h.Svc.ResetPassword(strings.TrimSpace(body.Token), body.Password); err != nil {
		if errors.Is(err, ErrInvalidResetToken) {
			return response.ValidationError(c, validation.Errors{"token": err.Error()})
		}
		log.Printf("❌ password reset failed: %v", err)
		return response.InternalError(c)
	}

	return response.Success(c, nil, "تم تغيير كلمة المرور بنجاح. يمكنك تسجيل الدخول الآن")
}
