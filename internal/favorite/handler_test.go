package favorite_test

import (
	"fmt"
	"testing"

	"github.com/fawaidy/fawaidy/internal/models"
	"github.com/fawaidy/fawaidy/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFavoriteToggleAndList(t *testing.T) {
	app, db := testutils.SetupTestApp(t)
	author := testutils.CreateTestUser(t, db, "author", "author@example.com", "Sttrong@123")
	testutils.CreateTestUser(t, db, "reader", "reader@example.com", "Sttrong@123")
	cat := testutils.CreateTestCategory(t, db, "تقنية")
	b := testutils.CreateTestBenefit(t, db, author.ID, cat.ID, "فائدة محفوظة", 7)

	cl := testutils.NewClient(app)
	cl.FetchCSRF(t)
	resp, err := cl.Do("POST", "/auth/login", map[string]interface{}{
		"identifier": "reader", "password": "Sttrong@123",
	})
	require.NoError(t, err)
	require.Equal(t, 200, resp.Code)

	toggle := func(id uint) (int, *testutils.StandardResponse) {
		resp, err := cl.Do("POST", fmt.Sprintf("/me/favorites/%d", id), nil)
		require.NoError(t, err)
		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		return resp.Code, &result
	}

	t.Run("first toggle favorites", func(t *testing.T) {
		code, result := toggle(b.ID)
		assert.Equal(t, 200, code)
		data := result.Data.(map[string]interface{})
		assert.Equal(t, true, data["favorited"])

		var count int64
		db.Model(&models.Favorite{}).Where("benefit_id = ?", b.ID).Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("favorites list shows the entry", func(t *testing.T) {
		resp, err := cl.Do("GET", "/me/favorites", nil)
		assert.NoError(t, err)
		require.Equal(t, 200, resp.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		require.NotNil(t, result.Meta)
		assert.Equal(t, int64(1), result.Meta.Total)

		rows := result.Data.([]interface{})
		require.Len(t, rows, 1)
		row := rows[0].(map[string]interface{})
		assert.Equal(t, "فائدة محفوظة", row["title"])
		assert.NotEmpty(t, row["favorite_date"])
	})

	t.Run("second toggle removes", func(t *testing.T) {
		code, result := toggle(b.ID)
		assert.Equal(t, 200, code)
		data := result.Data.(map[string]interface{})
		assert.Equal(t, false, data["favorited"])

		var count int64
		db.Model(&models.Favorite{}).Where("benefit_id = ?", b.ID).Count(&count)
		assert.Equal(t, int64(0), count)
	})

	t.Run("unknown benefit is 404", func(t *testing.T) {
		code, _ := toggle(9999)
		assert.Equal(t, 404, code)
	})

	t.Run("draft benefit cannot be favorited", func(t *testing.T) {
		draft := &models.Benefit{UserID: author.ID, CategoryID: cat.ID,
			Title: "مسودة", Content: "x", Status: models.StatusDraft}
		require.NoError(t, db.Create(draft).Error)

		code, _ := toggle(draft.ID)
		assert.Equal(t, 404, code)
	})

	t.Run("anonymous list rejected", func(t *testing.T) {
		bare := testutils.NewClient(app)
		resp, err := bare.Do("GET", "/me/favorites", nil)
		assert.NoError(t, err)
		assert.Equal(t, 401, resp.Code)
	})
}
