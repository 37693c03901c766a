package server

import (
	"time"

	"github.com/fawaidy/fawaidy/internal/article"
	"github.com/fawaidy/fawaidy/internal/auth"
	"github.com/fawaidy/fawaidy/internal/benefit"
	"github.com/fawaidy/fawaidy/internal/category"
	"github.com/fawaidy/fawaidy/internal/config"
	"github.com/fawaidy/fawaidy/internal/favorite"
	"github.com/fawaidy/fawaidy/internal/session"
	"github.com/fawaidy/fawaidy/internal/user"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, sessions *session.Manager, authSvc *auth.Service) {
	// Middleware
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.SiteURL,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, " + config.CSRFHeaderName,
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS, PATCH",
		AllowCredentials: true,
	}))

	authHandler := auth.NewHandler(authSvc, sessions)
	benefitHandler := benefit.NewHandler(db, sessions)
	articleHandler := article.NewHandler(db, sessions)
	categoryHandler := category.NewHandler(db)
	favoriteHandler := favorite.NewHandler(db, sessions)
	userHandler := user.NewHandler(db, sessions)

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Fawaidy API is running",
		})
	})

	// ==========================================
	// AUTH ROUTES
	// ==========================================
	authGroup := app.Group("/auth")
	authGroup.Use(limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Minute,
	}))
	authGroup.Get("/csrf", authHandler.CSRFTokenHandler)
	authGroup.Post("/register", authHandler.RegisterHandler)
	authGroup.Post("/verify", authHandler.VerifyHandler)
	authGroup.Post("/resend-code", authHandler.ResendCodeHandler)
	authGroup.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 15 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}), authHandler.LoginHandler)
	authGroup.Get("/google/login", authHandler.GoogleLoginHandler)
	authGroup.Get("/google/callback", authHandler.GoogleCallbackHandler)
	authGroup.Post("/forgot-password", authHandler.ForgotPasswordHandler)
	authGroup.Post("/reset-password", authHandler.ResetPasswordHandler)
	authGroup.Post("/logout", authHandler.RequireLogin(), authHandler.LogoutHandler)

	// ==========================================
	// PUBLIC CONTENT
	// ==========================================
	app.Get("/benefits", benefitHandler.ListHandler)
	app.Get("/benefits/:id", benefitHandler.DetailHandler)
	app.Post("/benefits", authHandler.RequireLogin(), benefitHandler.CreateHandler)

	app.Get("/categories", categoryHandler.ListHandler)
	app.Get("/categories/:id", categoryHandler.ShowHandler)

	app.Get("/users/:username", userHandler.ProfileHandler)

	// ==========================================
	// PREMIUM CONTENT
	// ==========================================
	articleGroup := app.Group("/articles")
	articleGroup.Use(authHandler.RequireLogin())
	articleGroup.Use(auth.RequireRole(config.RolePremium))
	articleGroup.Get("/", articleHandler.ListHandler)
	articleGroup.Get("/:id", articleHandler.DetailHandler)
	articleGroup.Post("/", articleHandler.CreateHandler)

	// ==========================================
	// MEMBER AREA
	// ==========================================
	memberGroup := app.Group("/me")
	memberGroup.Use(authHandler.RequireLogin())
	memberGroup.Get("/", userHandler.MeHandler)
	memberGroup.Put("/settings", userHandler.UpdateSettingsHandler)
	memberGroup.Put("/password", userHandler.ChangePasswordHandler)
	memberGroup.Put("/preferences", userHandler.UpdatePreferencesHandler)
	memberGroup.Get("/favorites", favoriteHandler.ListHandler)
	memberGroup.Post("/favorites/:id", favoriteHandler.ToggleHandler)

	// ==========================================
	// JSON API (Bearer token or session)
	// ==========================================
	apiGroup := app.Group("/api")
	apiGroup.Use(authHandler.BearerProtected())
	apiGroup.Get("/benefits", benefitHandler.ListHandler)
	apiGroup.Get("/favorites", favoriteHandler.ListHandler)
	apiGroup.Post("/favorites/:id", favoriteHandler.ToggleHandler)
}
