package main

import (
	"log"
	"os"
	"time"

	"github.com/fawaidy/fawaidy/internal/auth"
	"github.com/fawaidy/fawaidy/internal/config"
	"github.com/fawaidy/fawaidy/internal/database"
	"github.com/fawaidy/fawaidy/internal/mailer"
	"github.com/fawaidy/fawaidy/internal/server"
)

func main() {
	cfg := config.Load()

	if err := auth.ValidateJWTSecret(); err != nil {
		log.Fatal("❌ JWT Configuration Error: ", err)
	}
	log.Println("✅ JWT secret validated")

	requiredEnvVars := map[string]string{
		"DB_HOST":     os.Getenv("DB_HOST"),
		"DB_NAME":     os.Getenv("DB_NAME"),
		"DB_USER":     os.Getenv("DB_USER"),
		"DB_PASSWORD": os.Getenv("DB_PASSWORD"),
	}

	for key, value := range requiredEnvVars {
		if value == "" {
			log.Fatalf("❌ Required environment variable %s is not set", key)
		}
	}
	log.Println("✅ Required environment variables validated")

	// ========== DATABASE SETUP ==========
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("❌ Database connection failed:", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatal("❌ Migration failed: ", err)
	}
	log.Println("✅ Database migrated successfully")

	// ========== SEED DEFAULT DATA ==========
	if err := database.SeedCategories(db); err != nil {
		log.Println("⚠️  Failed to seed categories (may already exist):", err)
	} else {
		log.Println("✅ Default categories seeded")
	}

	authSvc := auth.NewService(db, mailer.New(cfg), cfg)

	// ========== BACKGROUND JOBS ==========
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			authSvc.SweepExpiredTokens()
		}
	}()

	// ========== START SERVER ==========
	app := server.New(db, cfg, authSvc)

	log.Printf("🚀 %s starting on %s", config.SiteName, cfg.ServerAddr)
	log.Printf("📚 Health check: %s/health", cfg.ServerAddr)
	log.Printf("🔐 Session + Remember-Me Authentication: Enabled")

	if err := app.Listen(cfg.ServerAddr); err != nil {
		log.Fatal("❌ Failed to start server:", err)
	}
}
