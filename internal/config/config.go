package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Site-wide constants carried over from the original deployment.
const (
	SiteName = "فوائدي"

	ItemsPerPage = 10
	RecentItems  = 3

	PasswordMinLength = 8
	BcryptCost        = 12

	CSRFTokenName  = "_csrf_token"
	CSRFHeaderName = "X-CSRF-Token"
	SessionCookie  = "fawaidy_session"
	RememberCookie = "remember_token"
	SessionTimeout = 1 * time.Hour
	VerifyCodeTTL  = 24 * time.Hour
	ResetTokenTTL  = 1 * time.Hour
	RememberTTL    = 30 * 24 * time.Hour
	APITokenTTL    = 15 * time.Minute
)

// Member role tiers, ordered.
const (
	RoleMember     = 1
	RolePremium    = 2
	RoleAdmin      = 3
	RoleSuperAdmin = 4
)

type Config struct {
	ServerAddr string
	SiteURL    string
	Debug      bool

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	SMTPHost  string
	SMTPPort  string
	SMTPUser  string
	SMTPPass  string
	MailFrom  string
	AdminMail string
}

func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
		SiteURL:    getEnv("SITE_URL", "http://localhost:8080/"),
		Debug:      getEnvBool("DEBUG_MODE", true),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "fawaidy"),
		SMTPHost:   getEnv("SMTP_HOST", ""),
		SMTPPort:   getEnv("SMTP_PORT", "587"),
		SMTPUser:   getEnv("SMTP_USER", ""),
		SMTPPass:   getEnv("SMTP_PASS", ""),
		MailFrom:   getEnv("MAIL_FROM", "no-reply@fawaidy.com"),
		AdminMail:  getEnv("ADMIN_EMAIL", "admin@fawaidy.com"),
	}

	log.Println("✅ Config loaded")
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
