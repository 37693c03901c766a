package server

import (
	"github.com/fawaidy/fawaidy/internal/auth"
	"github.com/fawaidy/fawaidy/internal/config"
	"github.com/fawaidy/fawaidy/internal/session"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func New(db *gorm.DB, cfg *config.Config, authSvc *auth.Service) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   config.SiteName,
		BodyLimit: 1 * 1024 * 1024,
	})

	sessions := session.NewManager(cfg.Debug)

	SetupRoutes(app, db, cfg, sessions, authSvc)

	return app
}
