package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fawaidy/fawaidy/internal/config"
	"github.com/fawaidy/fawaidy/internal/models"
	"github.com/fawaidy/fawaidy/internal/response"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var googleOauthConfig = &oauth2.Config{
	RedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),
	ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
	ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
	Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
	Endpoint:     google.Endpoint,
}

var (
	stateStore = make(map[string]time.Time)
	stateMutex sync.RWMutex
)

func generateState() string {
	b := make([]byte, 32)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}

func storeState(state string) {
	stateMutex.Lock()
	defer stateMutex.Unlock()
	stateStore[state] = time.Now().Add(5 * time.Minute)

	for k, v := range stateStore {
		if time.Now().After(v) {
			delete(stateStore, k)
		}
	}
}

func validateState(state string) bool {
	stateMutex.Lock()
	defer stateMutex.Unlock()

	expiry, exists := stateStore[state]
	if !exists || time.Now().After(expiry) {
		return false
	}
	delete(stateStore, state)
	return true
}

func (h *Handler) GoogleLoginHandler(c *fiber.Ctx) error {
	state := generateState()
	storeState(state)
	url := googleOauthConfig.AuthCodeURL(state)
	return c.Redirect(url)
}

// GoogleCallbackHandler finishes the OAuth dance. Google accounts
// arrive with the email already verified, so they skip the code flow.
func (h *Handler) GoogleCallbackHandler(c *fiber.Ctx) error {
	state := c.Query("state")
	if !validateState(state) {
		return response.BadRequest(c, "Invalid state parameter", nil)
	}

	code := c.Query("code")

	token, err := googleOauthConfig.Exchange(context.Background(), code)
	if err != nil {
		log.Printf("❌ google token exchange failed: %v", err)
		return response.InternalError(c)
	}

	client := googleOauthConfig.Client(context.Background(), token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		log.Printf("❌ google userinfo failed: %v", err)
		return response.InternalError(c)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	var userData map[string]interface{}
	json.Unmarshal(data, &userData)

	email, _ := userData["email"].(string)
	name, _ := userData["name"].(string)
	if email == "" {
		return response.InternalError(c)
	}

	var u models.User
	err = h.Svc.DB.Where("email = ?", email).First(&u).Error
	if err != nil {
		u = models.User{
			FullName:      name,
			Username:      h.uniqueUsername(email),
			Email:         email,
			Provider:      "google",
			Role:          config.RoleMember,
			EmailVerified: true,
			IsActive:      true,
		}
		if err := h.Svc.DB.Create(&u).Error; err != nil {
			log.Printf("❌ google user insert failed: %v", err)
			return response.InternalError(c)
		}
	}

	if !u.IsActive {
		return response.Unauthorized(c, ErrAccountDisabled.Error())
	}
	if u.IsLocked {
		return response.Unauthorized(c, ErrAccountLocked.Error())
	}

	now := time.Now()
	h.Svc.DB.Model(&u).Update("last_login", now)

	sess, err := h.Sessions.Get(c)
	if err != nil {
		return response.InternalError(c)
	}
	if err := sess.Regenerate(); err != nil {
		return response.InternalError(c)
	}
	if err := h.Sessions.SetIdentity(sess, &u); err != nil {
		return response.InternalError(c)
	}

	return c.Redirect(h.Svc.Cfg.SiteURL)
}

// uniqueUsername derives a login name from the email's local part,
// suffixing until it is free.
func (h *Handler) uniqueUsername(email string) string {
	base := strings.SplitN(email, "@", 2)[0]
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '_' || r == '-':
			return r
		}
		return -1
	}, base)
	if base == "" || !(base[0] >= 'a' && base[0] <= 'z' || base[0] >= 'A' && base[0] <= 'Z') {
		base = "user" + base
	}
	if len(base) > 24 {
		base = base[:24]
	}

	candidate := base
	for i := 1; ; i++ {
		var count int64
		if err := h.Svc.DB.Model(&models.User{}).
			Where("username = ?", candidate).Count(&count).Error; err != nil || count == 0 {
			return candidate
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
}
