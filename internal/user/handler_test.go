package user_test

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

func TestProfileHandler(t *testing.T) {
	app, db := testutils.SetupTestApp(t)
	member := testutils.CreateTestUser(t, db, "member_u", "member@example.com", "Sttrong@123")
	cat := testutils.CreateTestCategory(t, db, "تقنية")
	for i := 1; i <= 5; i++ {
		testutils.CreateTestBenefit(t, db, member.ID, cat.ID,
			"فائدة", int64(i))
	}

	cl := testutils.NewClient(app)

	t.Run("member profile shows badge and three recent benefits", func(t *testing.T) {
		resp, err := cl.Do("GET", "/users/member_u", nil)
		assert.NoError(t, err)
		require.Equal(t, 200, resp.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		data := result.Data.(map[string]interface{})
		assert.Equal(t, "member_u", data["username"])
		assert.Equal(t, "عضو", data["role_badge"])
		assert.Len(t, data["benefits"], 3)
		assert.NotContains(t, data, "email")
		assert.NotContains(t, data, "articles")
	})

	t.Run("premium profile also lists articles", func(t *testing.T) {
		premium := testutils.CreateTestUser(t, db, "premium_u", "premium@example.com", "Sttrong@123")
		require.NoError(t, db.Model(premium).Update("role", config.RolePremium).Error)
		require.NoError(t, db.Create(&models.Article{
			UserID: premium.ID, CategoryID: cat.ID,
			Title: "مقال", Content: "نص", Status: models.StatusPublished,
		}).Error)

		resp, err := cl.Do("GET", "/users/premium_u", nil)
		assert.NoError(t, err)
		require.Equal(t, 200, resp.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		data := result.Data.(map[string]interface{})
		assert.Equal(t, "عضو مميز", data["role_badge"])
		assert.Len(t, data["articles"], 1)
	})

	t.Run("disabled account is not found", func(t *testing.T) {
		hidden := testutils.CreateTestUser(t, db, "hidden_u", "hidden@example.com", "Sttrong@123")
		require.NoError(t, db.Model(hidden).Update("is_active", false).Error)

		resp, err := cl.Do("GET", "/users/hidden_u", nil)
		assert.NoError(t, err)
		assert.Equal(t, 404, resp.Code)
	})
}

func TestSettingsAndPassword(t *testing.T) {
	app, db := testutils.SetupTestApp(t)
	user := testutils.CreateTestUser(t, db, "member_u", "member@example.com", "Sttrong@123")

	cl := testutils.NewClient(app)
	cl.FetchCSRF(t)
	resp, err := cl.Do("POST", "/auth/login", map[string]interface{}{
		"identifier": "member_u", "password": "Sttrong@123",
	})
	require.NoError(t, err)
	require.Equal(t, 200, resp.Code)

	t.Run("settings update sanitizes the bio", func(t *testing.T) {
		resp, err := cl.Do("PUT", "/me/settings", map[string]interface{}{
			"bio":     "نبذة <img src=x onerror=alert(1)> قصيرة",
			"country": "مصر",
			"gender":  "female",
		})
		assert.NoError(t, err)
		require.Equal(t, 200, resp.Code)

		var fresh models.User
		require.NoError(t, db.First(&fresh, user.ID).Error)
		assert.NotContains(t, fresh.Bio, "<img")
		assert.Contains(t, fresh.Bio, "نبذة")
		assert.Equal(t, "مصر", fresh.Country)
		assert.Equal(t, "female", fresh.Gender)
	})

	t.Run("latin country rejected", func(t *testing.T) {
		resp, err := cl.Do("PUT", "/me/settings", map[string]interface{}{
			"country": "Egypt",
			"gender":  "female",
		})
		assert.NoError(t, err)
		assert.Equal(t, 422, resp.Code)
	})

	t.Run("wrong current password blocks the change", func(t *testing.T) {
		resp, err := cl.Do("PUT", "/me/password", map[string]interface{}{
			"current_password": "Wrong@1234",
			"password":         "Fresshh@456",
			"password_confirm": "Fresshh@456",
		})
		assert.NoError(t, err)
		assert.Equal(t, 422, resp.Code)

		var fresh models.User
		require.NoError(t, db.First(&fresh, user.ID).Error)
		assert.True(t, security.VerifyPassword("Sttrong@123", fresh.Password))
	})

	t.Run("password change stores the new hash and clears remember tokens", func(t *testing.T) {
		_, hash, err := security.NewToken(32)
		require.NoError(t, err)
		require.NoError(t, db.Create(&models.RememberToken{
			UserID: user.ID, TokenHash: hash,
			ExpiresAt: time.Now().Add(config.RememberTTL),
		}).Error)

		resp, err := cl.Do("PUT", "/me/password", map[string]interface{}{
			"current_password": "Sttrong@123",
			"password":         "Fresshh@456",
			"password_confirm": "Fresshh@456",
		})
		assert.NoError(t, err)
		require.Equal(t, 200, resp.Code)

		var fresh models.User
		require.NoError(t, db.First(&fresh, user.ID).Error)
		assert.True(t, security.VerifyPassword("Fresshh@456", fresh.Password))

		var count int64
		db.Model(&models.RememberToken{}).Where("user_id = ?", user.ID).Count(&count)
		assert.Equal(t, int64(0), count)
	})

	t.Run("preferences stored as JSON", func(t *testing.T) {
		resp, err := cl.Do("PUT", "/me/preferences", map[string]interface{}{
			"theme": "dark",
			"feed":  map[string]interface{}{"sort": "popular"},
		})
		assert.NoError(t, err)
		require.Equal(t, 200, resp.Code)

		var fresh models.User
		require.NoError(t, db.First(&fresh, user.ID).Error)
		assert.Contains(t, string(fresh.Preferences), "dark")
	})
}
