package testutils

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fawaidy/fawaidy/internal/auth"
	"github.com/fawaidy/fawaidy/internal/config"
	"github.com/fawaidy/fawaidy/internal/database"
	"github.com/fawaidy/fawaidy/internal/mailer"
	"github.com/fawaidy/fawaidy/internal/models"
	"github.com/fawaidy/fawaidy/internal/security"
	"github.com/fawaidy/fawaidy/internal/server"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err, "Failed to create test database")

	err = db.AutoMigrate(
		&models.User{},
		&models.VerificationCode{},
		&models.PasswordReset{},
		&models.RememberToken{},
		&models.Category{},
		&models.Benefit{},
		&models.Article{},
		&models.Favorite{},
	)
	assert.NoError(t, err, "Failed to migrate test database")

	return db
}

func TestConfig() *config.Config {
	return &config.Config{
		ServerAddr: ":3000",
		SiteURL:    "http://localhost:3000",
		Debug:      true,
	}
}

func SetupTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	db := TestDB(t)

	err := database.SeedCategories(db)
	assert.NoError(t, err, "Failed to seed categories")

	cfg := TestConfig()
	app := server.New(db, cfg, auth.NewService(db, mailer.New(cfg), cfg))
	return app, db
}

// Client carries session cookies and the CSRF token across requests so
// tests can walk the register/login flows the way a browser does.
type Client struct {
	App     *fiber.App
	CSRF    string
	cookies map[string]string
}

func NewClient(app *fiber.App) *Client {
	return &Client{App: app, cookies: make(map[string]string)}
}

func (cl *Client) Do(method, url string, body interface{}) (*httptest.ResponseRecorder, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(jsonBody)
	}

	req := httptest.NewRequest(method, url, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	for name, value := range cl.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	if cl.CSRF != "" {
		req.Header.Set(config.CSRFHeaderName, cl.CSRF)
	}

	rec := httptest.NewRecorder()

	resp, err := cl.App.Test(req, -1)
	if err != nil {
		return rec, err
	}

	for _, cookie := range resp.Cookies() {
		if cookie.Value == "" || cookie.Expires.Before(time.Now()) && !cookie.Expires.IsZero() {
			delete(cl.cookies, cookie.Name)
			continue
		}
		cl.cookies[cookie.Name] = cookie.Value
	}

	rec.Code = resp.StatusCode
	io.Copy(rec.Body, resp.Body)
	resp.Body.Close()

	return rec, nil
}

// FetchCSRF primes the client with a session and its CSRF token.
func (cl *Client) FetchCSRF(t *testing.T) {
	resp, err := cl.Do("GET", "/auth/csrf", nil)
	assert.NoError(t, err)
	assert.Equal(t, 200, resp.Code, "CSRF endpoint failed")

	var result StandardResponse
	ParseResponse(t, resp, &result)
	data, ok := result.Data.(map[string]interface{})
	if !ok {
		t.Fatal("CSRF response has no data")
	}
	token, _ := data[config.CSRFTokenName].(string)
	assert.NotEmpty(t, token, "CSRF token missing")
	cl.CSRF = token
}

func (cl *Client) Cookie(name string) string {
	return cl.cookies[name]
}

func (cl *Client) SetCookie(name, value string) {
	cl.cookies[name] = value
}

func (cl *Client) ClearCookies() {
	cl.cookies = make(map[string]string)
}

// CreateTestUser inserts a verified, active member.
func CreateTestUser(t *testing.T, db *gorm.DB, username, email, password string) *models.User {
	hashedPassword, err := security.HashPassword(password)
	assert.NoError(t, err, "Failed to hash password")

	user := &models.User{
		FullName:      "عضو تجريبي",
		Username:      username,
		Email:         email,
		Password:      hashedPassword,
		Provider:      "local",
		Role:          config.RoleMember,
		EmailVerified: true,
		IsActive:      true,
	}
	err = db.Create(user).Error
	assert.NoError(t, err, "Failed to create test user")

	return user
}

func CreateTestCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	cat := &models.Category{Name: name, IsActive: true}
	err := db.Create(cat).Error
	assert.NoError(t, err, "Failed to create test category")
	return cat
}

func CreateTestBenefit(t *testing.T, db *gorm.DB, userID, categoryID uint, title string, views int64) *models.Benefit {
	b := &models.Benefit{
		UserID:     userID,
		CategoryID: categoryID,
		Title:      title,
		Content:    "محتوى " + title,
		Status:     models.StatusPublished,
		ViewsCount: views,
	}
	err := db.Create(b).Error
	assert.NoError(t, err, "Failed to create test benefit")
	return b
}

func ParseResponse(t *testing.T, resp *httptest.ResponseRecorder, v interface{}) {
	if resp.Body.Len() == 0 {
		t.Log("Warning: Response body is empty")
		return
	}

	err := json.NewDecoder(resp.Body).Decode(v)
	if err != nil && err != io.EOF {
		t.Logf("Response body: %s", resp.Body.String())
		assert.NoError(t, err, "Failed to parse response")
	}
}

type StandardResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Data    interface{}  `json:"data"`
	Meta    *Meta        `json:"meta"`
	Error   *ErrorDetail `json:"error"`
}

type Meta struct {
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	Total      int64  `json:"total"`
	TotalPages int64  `json:"total_pages"`
	Search     string `json:"search"`
	Category   uint   `json:"category"`
	Sort       string `json:"sort"`
}

type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details"`
}

func AssertError(t *testing.T, resp *httptest.ResponseRecorder, expectedCode string) {
	var result StandardResponse
	ParseResponse(t, resp, &result)
	assert.False(t, result.Success)
	if result.Error != nil {
		assert.Equal(t, expectedCode, result.Error.Code)
	}
}
