package auth

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/fawaidy/fawaidy/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
)

var jwtKey []byte

func init() {
	if err := godotenv.Load(); err != nil {
		log.Default().Println("No .env file found")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "test_secret_key_minimum_32_characters_long_for_testing_only"
	}

	jwtKey = []byte(secret)
}

func ValidateJWTSecret() error {
	secret := os.Getenv("JWT_SECRET")

	if secret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}

	if len(secret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters long (current: %d)", len(secret))
	}

	if secret == "test_secret_key_minimum_32_characters_long_for_testing_only" {
		return fmt.Errorf("cannot use default test secret in production")
	}

	return nil
}

type apiClaims struct {
	Role int `json:"role"`
	jwt.RegisteredClaims
}

// GenerateAPIToken mints a short-lived bearer token for the JSON API
// endpoints, so AJAX calls don't need the session cookie.
func GenerateAPIToken(userID uint, role int) (string, error) {
	claims := apiClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(int(userID)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(config.APITokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtKey)
}

func ParseAPIToken(tokenStr string) (uint, int, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &apiClaims{}, func(token *jwt.Token) (interface{}, error) {
		return jwtKey, nil
	})
	if err != nil || !token.Valid {
		return 0, 0, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(*apiClaims)
	if !ok {
		return 0, 0, fmt.Errorf("invalid token claims")
	}

	id, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return 0, 0, err
	}

	return uint(id), claims.Role, nil
}
