package auth_test

import (
	"testing"
	"time"

	"github.com/fawaidy/fawaidy/internal/config"
	"github.com/fawaidy/fawaidy/internal/models"
	"github.com/fawaidy/fawaidy/internal/security"
	"github.com/fawaidy/fawaidy/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerBody() map[string]interface{} {
	return map[string]interface{}{
		"full_name":        "علي محمد",
		"username":         "ali_99",
		"email":            "ali@example.com",
		"password":         "Sttrong@123",
		"password_confirm": "Sttrong@123",
		"gender":           "male",
		"country":          "السعودية",
	}
}

func TestRegisterAndVerify(t *testing.T) {
	app, db := testutils.SetupTestApp(t)

	t.Run("register without CSRF rejected", func(t *testing.T) {
		bare := testutils.NewClient(app)
		resp, err := bare.Do("POST", "/auth/register", registerBody())
		assert.NoError(t, err)
		assert.Equal(t, 403, resp.Code)
	})

	cl := testutils.NewClient(app)
	cl.FetchCSRF(t)

	t.Run("register creates unverified member with a pending code", func(t *testing.T) {
		resp, err := cl.Do("POST", "/auth/register", registerBody())
		assert.NoError(t, err)
		require.Equal(t, 201, resp.Code)

		var u models.User
		require.NoError(t, db.Where("username = ?", "ali_99").First(&u).Error)
		assert.False(t, u.EmailVerified)
		assert.True(t, u.IsActive)
		assert.Equal(t, config.RoleMember, u.Role)
		assert.Equal(t, "local", u.Provider)
		assert.NotEqual(t, "Sttrong@123", u.Password)
		assert.True(t, security.VerifyPassword("Sttrong@123", u.Password))

		var code models.VerificationCode
		require.NoError(t, db.Where("user_id = ?", u.ID).First(&code).Error)
		assert.Len(t, code.Code, 6)
		assert.Nil(t, code.UsedAt)
		assert.WithinDuration(t, time.Now().Add(config.VerifyCodeTTL), code.ExpiresAt, time.Minute)
	})

	t.Run("wrong code rejected without detail", func(t *testing.T) {
		resp, err := cl.Do("POST", "/auth/verify", map[string]interface{}{"code": "zzzzzz"})
		assert.NoError(t, err)
		assert.Equal(t, 422, resp.Code)
		testutils.AssertError(t, resp, "VALIDATION_ERROR")
	})

	t.Run("expired code fails exactly like a wrong one", func(t *testing.T) {
		var u models.User
		require.NoError(t, db.Where("username = ?", "ali_99").First(&u).Error)

		stale := models.VerificationCode{
			UserID:    u.ID,
			Code:      "dead01",
			Type:      "email",
			ExpiresAt: time.Now().Add(-time.Minute),
		}
		require.NoError(t, db.Create(&stale).Error)

		resp, err := cl.Do("POST", "/auth/verify", map[string]interface{}{"code": stale.Code})
		assert.NoError(t, err)
		assert.Equal(t, 422, resp.Code)
		testutils.AssertError(t, resp, "VALIDATION_ERROR")

		require.NoError(t, db.First(&u, u.ID).Error)
		assert.False(t, u.EmailVerified)

		db.Delete(&stale)
	})

	t.Run("correct code activates the account", func(t *testing.T) {
		var u models.User
		require.NoError(t, db.Where("username = ?", "ali_99").First(&u).Error)
		var code models.VerificationCode
		require.NoError(t, db.Where("user_id = ?", u.ID).First(&code).Error)

		resp, err := cl.Do("POST", "/auth/verify", map[string]interface{}{"code": code.Code})
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		require.NoError(t, db.First(&u, u.ID).Error)
		assert.True(t, u.EmailVerified)

		require.NoError(t, db.First(&code, code.ID).Error)
		assert.NotNil(t, code.UsedAt)
	})

	t.Run("verify after activation has no pending account", func(t *testing.T) {
		resp, err := cl.Do("POST", "/auth/verify", map[string]interface{}{"code": "aaaaaa"})
		assert.NoError(t, err)
		assert.Equal(t, 401, resp.Code)
	})

	t.Run("first failing field reported alone", func(t *testing.T) {
		body := registerBody()
		body["full_name"] = "Ali Latin"
		body["email"] = "broken"

		resp, err := cl.Do("POST", "/auth/register", body)
		assert.NoError(t, err)
		require.Equal(t, 422, resp.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		details, ok := result.Error.Details.(map[string]interface{})
		require.True(t, ok)
		assert.Len(t, details, 1)
		assert.Contains(t, details, "fullname")
	})

	t.Run("duplicate username rejected", func(t *testing.T) {
		body := registerBody()
		body["full_name"] = "سالم أحمد"
		body["email"] = "other@example.com"

		resp, err := cl.Do("POST", "/auth/register", body)
		assert.NoError(t, err)
		assert.Equal(t, 422, resp.Code)
	})
}

func TestLoginHandler(t *testing.T) {
	app, db := testutils.SetupTestApp(t)
	testutils.CreateTestUser(t, db, "ali_99", "ali@example.com", "Sttrong@123")

	t.Run("missing CSRF rejected", func(t *testing.T) {
		bare := testutils.NewClient(app)
		resp, err := bare.Do("POST", "/auth/login", map[string]interface{}{
			"identifier": "ali_99", "password": "Sttrong@123",
		})
		assert.NoError(t, err)
		assert.Equal(t, 403, resp.Code)
	})

	cl := testutils.NewClient(app)
	cl.FetchCSRF(t)

	t.Run("wrong password yields generic error and no lockout", func(t *testing.T) {
		resp, err := cl.Do("POST", "/auth/login", map[string]interface{}{
			"identifier": "ali_99", "password": "Wrong@1234",
		})
		assert.NoError(t, err)
		require.Equal(t, 401, resp.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		require.NotNil(t, result.Error)
		assert.Equal(t, "بيانات الدخول غير صحيحة", result.Error.Message)

		var u models.User
		require.NoError(t, db.Where("username = ?", "ali_99").First(&u).Error)
		assert.False(t, u.IsLocked)
	})

	t.Run("login by email with remember mints cookie and token", func(t *testing.T) {
		resp, err := cl.Do("POST", "/auth/login", map[string]interface{}{
			"identifier": "ali@example.com", "password": "Sttrong@123", "remember": true,
		})
		assert.NoError(t, err)
		require.Equal(t, 200, resp.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		data := result.Data.(map[string]interface{})
		assert.NotEmpty(t, data["api_token"])

		raw := cl.Cookie(config.RememberCookie)
		require.NotEmpty(t, raw)

		// Only the hash is stored.
		var token models.RememberToken
		require.NoError(t, db.Where("token_hash = ?", security.HashToken(raw)).First(&token).Error)
		var count int64
		db.Model(&models.RememberToken{}).Where("token_hash = ?", raw).Count(&count)
		assert.Equal(t, int64(0), count)

		var u models.User
		require.NoError(t, db.Where("username = ?", "ali_99").First(&u).Error)
		assert.NotNil(t, u.LastLogin)
	})

	t.Run("session grants access to the member area", func(t *testing.T) {
		resp, err := cl.Do("GET", "/me", nil)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)
	})
}

func TestLoginAccountStates(t *testing.T) {
	app, db := testutils.SetupTestApp(t)

	disabled := testutils.CreateTestUser(t, db, "disabled_u", "disabled@example.com", "Sttrong@123")
	require.NoError(t, db.Model(disabled).Update("is_active", false).Error)
	locked := testutils.CreateTestUser(t, db, "locked_u", "locked@example.com", "Sttrong@123")
	require.NoError(t, db.Model(locked).Update("is_locked", true).Error)
	unverified := testutils.CreateTestUser(t, db, "pending_u", "pending@example.com", "Sttrong@123")
	require.NoError(t, db.Model(unverified).Update("email_verified", false).Error)

	cl := testutils.NewClient(app)
	cl.FetchCSRF(t)

	login := func(identifier string) string {
		resp, err := cl.Do("POST", "/auth/login", map[string]interface{}{
			"identifier": identifier, "password": "Sttrong@123",
		})
		require.NoError(t, err)
		require.Equal(t, 401, resp.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		require.NotNil(t, result.Error)
		return result.Error.Message
	}

	assert.Equal(t, "حسابك معطل. يرجى التواصل مع الدعم", login("disabled_u"))
	assert.Equal(t, "حسابك مقفل. يرجى محاولة لاحقاً", login("locked_u"))
	assert.Equal(t, "يجب التحقق من بريدك الإلكتروني أولاً", login("pending_u"))
	assert.Equal(t, "بيانات الدخول غير صحيحة", login("nobody_here"))
}

func TestRememberMeAndLogout(t *testing.T) {
	app, db := testutils.SetupTestApp(t)
	user := testutils.CreateTestUser(t, db, "ali_99", "ali@example.com", "Sttrong@123")

	cl := testutils.NewClient(app)
	cl.FetchCSRF(t)

	resp, err := cl.Do("POST", "/auth/login", map[string]interface{}{
		"identifier": "ali_99", "password": "Sttrong@123", "remember": true,
	})
	require.NoError(t, err)
	require.Equal(t, 200, resp.Code)

	remember := cl.Cookie(config.RememberCookie)
	require.NotEmpty(t, remember)

	t.Run("remember cookie reinstates a lost session", func(t *testing.T) {
		cl.ClearCookies()
		cl.SetCookie(config.RememberCookie, remember)

		resp, err := cl.Do("GET", "/me", nil)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)
	})

	t.Run("logout revokes the remember tokens", func(t *testing.T) {
		resp, err := cl.Do("POST", "/auth/logout", nil)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		var count int64
		db.Model(&models.RememberToken{}).Where("user_id = ?", user.ID).Count(&count)
		assert.Equal(t, int64(0), count)
	})

	t.Run("revoked cookie no longer reinstates", func(t *testing.T) {
		cl.ClearCookies()
		cl.SetCookie(config.RememberCookie, remember)

		resp, err := cl.Do("GET", "/me", nil)
		assert.NoError(t, err)
		assert.Equal(t, 401, resp.Code)
	})

	t.Run("tampered cookie rejected", func(t *testing.T) {
		cl.ClearCookies()
		cl.SetCookie(config.RememberCookie, "0000000000000000000000000000000000000000000000000000000000000000")

		resp, err := cl.Do("GET", "/me", nil)
		assert.NoError(t, err)
		assert.Equal(t, 401, resp.Code)
	})

	t.Run("expired cookie rejected like a tampered one", func(t *testing.T) {
		raw, hash, err := security.NewToken(32)
		require.NoError(t, err)
		require.NoError(t, db.Create(&models.RememberToken{
			UserID:    user.ID,
			TokenHash: hash,
			ExpiresAt: time.Now().Add(-time.Minute),
		}).Error)

		cl.ClearCookies()
		cl.SetCookie(config.RememberCookie, raw)

		resp, err := cl.Do("GET", "/me", nil)
		assert.NoError(t, err)
		assert.Equal(t, 401, resp.Code)
	})
}

func TestForgotPassword(t *testing.T) {
	app, db := testutils.SetupTestApp(t)
	user := testutils.CreateTestUser(t, db, "ali_99", "ali@example.com", "Sttrong@123")

	cl := testutils.NewClient(app)
	cl.FetchCSRF(t)

	forgot := func(email string) *testutils.StandardResponse {
		resp, err := cl.Do("POST", "/auth/forgot-password", map[string]interface{}{"email": email})
		require.NoError(t, err)
		require.Equal(t, 200, resp.Code)
		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		return &result
	}

	t.Run("known and unknown addresses answer identically", func(t *testing.T) {
		known := forgot("ali@example.com")
		unknown := forgot("ghost@example.com")
		assert.Equal(t, known.Message, unknown.Message)
		assert.Equal(t, known.Success, unknown.Success)

		var count int64
		db.Model(&models.PasswordReset{}).Where("user_id = ?", user.ID).Count(&count)
		assert.Equal(t, int64(1), count)
		db.Model(&models.PasswordReset{}).Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("new request consumes the previous token", func(t *testing.T) {
		forgot("ali@example.com")

		var used, live int64
		db.Model(&models.PasswordReset{}).
			Where("user_id = ? AND used_at IS NOT NULL", user.ID).Count(&used)
		db.Model(&models.PasswordReset{}).
			Where("user_id = ? AND used_at IS NULL", user.ID).Count(&live)
		assert.Equal(t, int64(1), used)
		assert.Equal(t, int64(1), live)
	})
}

func TestResetPassword(t *testing.T) {
	app, db := testutils.SetupTestApp(t)
	user := testutils.CreateTestUser(t, db, "ali_99", "ali@example.com", "Sttrong@123")

	newReset := func(expiresAt time.Time) (string, *models.PasswordReset) {
		raw, hash, err := security.NewToken(32)
		require.NoError(t, err)
		record := &models.PasswordReset{UserID: user.ID, TokenHash: hash, ExpiresAt: expiresAt}
		require.NoError(t, db.Create(record).Error)
		return raw, record
	}

	cl := testutils.NewClient(app)
	cl.FetchCSRF(t)

	reset := func(token, password string) (int, *testutils.StandardResponse) {
		resp, err := cl.Do("POST", "/auth/reset-password", map[string]interface{}{
			"token":            token,
			"password":         password,
			"password_confirm": password,
		})
		require.NoError(t, err)
		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		return resp.Code, &result
	}

	t.Run("valid token rotates the password once", func(t *testing.T) {
		raw, record := newReset(time.Now().Add(config.ResetTokenTTL))

		// A live remember token should not survive the reset.
		_, hash, err := security.NewToken(32)
		require.NoError(t, err)
		require.NoError(t, db.Create(&models.RememberToken{
			UserID: user.ID, TokenHash: hash, ExpiresAt: time.Now().Add(config.RememberTTL),
		}).Error)

		code, _ := reset(raw, "Fresshh@456")
		assert.Equal(t, 200, code)

		var u models.User
		require.NoError(t, db.First(&u, user.ID).Error)
		assert.True(t, security.VerifyPassword("Fresshh@456", u.Password))
		assert.False(t, security.VerifyPassword("Sttrong@123", u.Password))

		require.NoError(t, db.First(record, record.ID).Error)
		assert.NotNil(t, record.UsedAt)

		var count int64
		db.Model(&models.RememberToken{}).Where("user_id = ?", user.ID).Count(&count)
		assert.Equal(t, int64(0), count)

		// Second use fails like an unknown token.
		code, reused := reset(raw, "Fresshh@789")
		assert.Equal(t, 422, code)
		assert.NotNil(t, reused.Error)
	})

	t.Run("expired and unknown tokens fail identically", func(t *testing.T) {
		expiredRaw, _ := newReset(time.Now().Add(-time.Minute))

		codeExpired, expired := reset(expiredRaw, "Fresshh@456")
		codeUnknown, unknown := reset("deadbeef", "Fresshh@456")

		assert.Equal(t, 422, codeExpired)
		assert.Equal(t, 422, codeUnknown)
		require.NotNil(t, expired.Error)
		require.NotNil(t, unknown.Error)
		assert.Equal(t, expired.Error.Details, unknown.Error.Details)
	})

	t.Run("weak password rejected before token lookup", func(t *testing.T) {
		raw, _ := newReset(time.Now().Add(config.ResetTokenTTL))
		code, result := reset(raw, "weak")
		assert.Equal(t, 422, code)
		details, ok := result.Error.Details.(map[string]interface{})
		require.True(t, ok)
		assert.Contains(t, details, "password")
	})
}
