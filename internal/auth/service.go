package auth

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/fawaidy/fawaidy/internal/config"
	"github.com/fawaidy/fawaidy/internal/mailer"
	"github.com/fawaidy/fawaidy/internal/models"
	"github.com/fawaidy/fawaidy/internal/security"
	"gorm.io/gorm"
)

// Login failures. Unknown identifier and wrong password collapse into
// the same message; account-state failures are explicit on purpose,
// they only fire after the caller already proved the account exists
// via the password on a previous session, or will learn nothing new.
var (
	ErrInvalidCredentials = errors.New("بيانات الدخول غير صحيحة")
	ErrAccountDisabled    = errors.New("حسابك معطل. يرجى التواصل مع الدعم")
	ErrAccountLocked      = errors.New("حسابك مقفل. يرجى محاولة لاحقاً")
	ErrEmailUnverified    = errors.New("يجب التحقق من بريدك الإلكتروني أولاً")
	ErrInvalidCode        = errors.New("رمز التحقق غير صحيح أو منتهي الصلاحية")
	ErrInvalidResetToken  = errors.New("رابط إعادة التعيين غير صالح أو منتهي الصلاحية. يرجى طلب رابط جديد")
)

type Service struct {
	DB   *gorm.DB
	Mail mailer.Mailer
	Cfg  *config.Config
}

func NewService(db *gorm.DB, mail mailer.Mailer, cfg *config.Config) *Service {
	return &Service{DB: db, Mail: mail, Cfg: cfg}
}

// Authenticate checks identifier (email or username) and password.
// Check order matters: account-state failures are reported before the
// password is ever compared.
func (s *Service) Authenticate(identifier, password string) (*models.User, error) {
	var user models.User
	err := s.DB.Where("email = ? OR LOWER(username) = LOWER(?)", identifier, identifier).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, ErrAccountDisabled
	}
	if user.IsLocked {
		return nil, ErrAccountLocked
	}
	if !user.EmailVerified {
		return nil, ErrEmailUnverified
	}

	if !security.VerifyPassword(password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	if security.PasswordNeedsRehash(user.Password) {
		if rehashed, err := security.HashPassword(password); err == nil {
			s.DB.Model(&user).Update("password", rehashed)
		}
	}

	now := time.Now()
	s.DB.Model(&user).Update("last_login", now)
	user.LastLogin = &now

	return &user, nil
}

// IssueRememberToken mints a 30-day remember-me token. The raw value
// goes to the cookie; only its hash is stored.
func (s *Service) IssueRememberToken(userID uint) (string, error) {
	raw, hash, err := security.NewToken(32)
	if err != nil {
		return "", err
	}

	token := models.RememberToken{
		UserID:    userID,
		TokenHash: hash,
		ExpiresAt: time.Now().Add(config.RememberTTL),
	}
	if err := s.DB.Create(&token).Error; err != nil {
		return "", err
	}

	return raw, nil
}

// ConsumeRememberToken resolves a remember-me cookie back to its user.
// Expired, unknown and revoked tokens are indistinguishable to the
// caller, and the user must still pass the account-state checks.
func (s *Service) ConsumeRememberToken(raw string) (*models.User, error) {
	var token models.RememberToken
	err := s.DB.Where("token_hash = ? AND expires_at > ?", security.HashToken(raw), time.Now()).
		First(&token).Error
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	var user models.User
	if err := s.DB.First(&user, token.UserID).Error; err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive || user.IsLocked || !user.EmailVerified {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

// ClearRememberTokens revokes every live remember-me token for the
// user. Called on logout and after a password reset.
func (s *Service) ClearRememberTokens(userID uint) {
	s.DB.Where("user_id = ? AND expires_at > ?", userID, time.Now()).
		Delete(&models.RememberToken{})
}

// StartVerification creates a fresh email verification code and mails
// it. Mail delivery failure is logged, not surfaced: the user can
// request a resend.
func (s *Service) StartVerification(user *models.User) error {
	code, err := security.NewVerificationCode()
	if err != nil {
		return err
	}

	record := models.VerificationCode{
		UserID:    user.ID,
		Code:      code,
		Type:      "email",
		ExpiresAt: time.Now().Add(config.VerifyCodeTTL),
	}
	if err := s.DB.Create(&record).Error; err != nil {
		return err
	}

	if _, err := s.Mail.Send(user.Email, mailer.TemplateVerifyEmail, map[string]string{
		"name": user.FullName,
		"code": code,
	}); err != nil {
		log.Printf("⚠️ verification mail to %s failed: %v", user.Email, err)
	}

	return nil
}

// VerifyCode consumes a pending verification code and activates the
// account. Wrong, expired and already-used codes all fail the same way.
func (s *Service) VerifyCode(userID uint, code string) error {
	var record models.VerificationCode
	err := s.DB.Where("user_id = ? AND code = ? AND expires_at > ? AND used_at IS NULL",
		userID, code, time.Now()).First(&record).Error
	if err != nil {
		return ErrInvalidCode
	}

	now := time.Now()
	if err := s.DB.Model(&record).Update("used_at", now).Error; err != nil {
		return err
	}

	return s.DB.Model(&models.User{}).Where("id = ?", userID).
		Update("email_verified", true).Error
}

// StartPasswordReset mints a reset token for the address if it belongs
// to a user. The caller answers identically either way; requesting a
// new token consumes any older unused ones.
func (s *Service) StartPasswordReset(email string) {
	var user models.User
	if err := s.DB.Where("email = ?", email).First(&user).Error; err != nil {
		return
	}

	raw, hash, err := security.NewToken(32)
	if err != nil {
		log.Printf("⚠️ reset token generation failed: %v", err)
		return
	}

	now := time.Now()
	s.DB.Model(&models.PasswordReset{}).
		Where("user_id = ? AND used_at IS NULL", user.ID).
		Update("used_at", now)

	record := models.PasswordReset{
		UserID:    user.ID,
		TokenHash: hash,
		ExpiresAt: now.Add(config.ResetTokenTTL),
	}
	if err := s.DB.Create(&record).Error; err != nil {
		log.Printf("⚠️ reset token insert failed: %v", err)
		return
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", s.Cfg.SiteURL, raw)
	if _, err := s.Mail.Send(user.Email, mailer.TemplateResetPassword, map[string]string{
		"name": user.FullName,
		"link": link,
	}); err != nil {
		log.Printf("⚠️ reset mail to %s failed: %v", user.Email, err)
	}
}

// ResetPassword consumes a reset token and stores the new password
// hash. All live remember-me tokens for the user are revoked.
func (s *Service) ResetPassword(rawToken, password string) error {
	var record models.PasswordReset
	err := s.DB.Where("token_hash = ? AND expires_at > ? AND used_at IS NULL",
		security.HashToken(rawToken), time.Now()).First(&record).Error
	if err != nil {
		return ErrInvalidResetToken
	}

	hashed, err := security.HashPassword(password)
	if err != nil {
		return err
	}

	if err := s.DB.Model(&models.User{}).Where("id = ?", record.UserID).
		Update("password", hashed).Error; err != nil {
		return err
	}

	now := time.Now()
	if err := s.DB.Model(&record).Update("used_at", now).Error; err != nil {
		return err
	}

	s.ClearRememberTokens(record.UserID)

	return nil
}

// SweepExpiredTokens removes expired verification codes, reset tokens
// and remember tokens. Run periodically from main.
func (s *Service) SweepExpiredTokens() {
	now := time.Now()

	if res := s.DB.Where("expires_at < ?", now).Delete(&models.VerificationCode{}); res.RowsAffected > 0 {
		log.Printf("🧹 Cleaned up %d expired verification codes", res.RowsAffected)
	}
	if res := s.DB.Where("expires_at < ?", now).Delete(&models.PasswordReset{}); res.RowsAffected > 0 {
		log.Printf("🧹 Cleaned up %d expired reset tokens", res.RowsAffected)
	}
	if res := s.DB.Where("expires_at < ?", now).Delete(&models.RememberToken{}); res.RowsAffected > 0 {
		log.Printf("🧹 Cleaned up %d expired remember tokens", res.RowsAffected)
	}
}
