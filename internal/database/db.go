package database

import (
	"fmt"
	"log"

	"github.com/fawaidy/fawaidy/internal/config"
	"github.com/fawaidy/fawaidy/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.VerificationCode{},
		&models.PasswordReset{},
		&models.RememberToken{},
		&models.Category{},
		&models.Benefit{},
		&models.Article{},
		&models.Favorite{},
	)
	if err != nil {
		return err
	}
	log.Println("Database migrated successfully!")
	return nil
}

// SeedCategories inserts the default category set on an empty table.
func SeedCategories(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	defaults := []models.Category{
		{Name: "العقيدة", Description: "فوائد في العقيدة", IsActive: true},
		{Name: "الفقه", Description: "فوائد في الفقه وأصوله", IsActive: true},
		{Name: "الحديث", Description: "فوائد في الحديث وعلومه", IsActive: true},
		{Name: "التفسير", Description: "فوائد في التفسير وعلوم القرآن", IsActive: true},
		{Name: "السيرة", Description: "فوائد في السيرة النبوية", IsActive: true},
		{Name: "اللغة", Description: "فوائد في اللغة العربية", IsActive: true},
	}
	return db.Create(&defaults).Error
}
