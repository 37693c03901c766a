package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

type Category struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:100;uniqueIndex" json:"name"`
	Description string `gorm:"size:500" json:"description"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Benefit is the primary content type: a short user-submitted item.
type Benefit struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	UserID     uint           `gorm:"index" json:"user_id"`
	CategoryID uint           `gorm:"index" json:"category_id"`
	Title      string         `gorm:"size:200" json:"title"`
	Content    string         `gorm:"type:text" json:"content"`
	Tags       string         `gorm:"size:255" json:"tags"`
	Status     string         `gorm:"size:20;default:'draft';index" json:"status"`
	ViewsCount int64          `gorm:"default:0" json:"views_count"`
	User       *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Category   *Category      `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// Article is the longer-form content type, readable by premium members
// and above.
type Article struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	UserID     uint           `gorm:"index" json:"user_id"`
	CategoryID uint           `gorm:"index" json:"category_id"`
	Title      string         `gorm:"size:200" json:"title"`
	Content    string         `gorm:"type:text" json:"content"`
	Tags       string         `gorm:"size:255" json:"tags"`
	Status     string         `gorm:"size:20;default:'draft';index" json:"status"`
	ViewsCount int64          `gorm:"default:0" json:"views_count"`
	User       *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Category   *Category      `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

type Favorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index:idx_fav_user_benefit,unique" json:"user_id"`
	BenefitID uint      `gorm:"index:idx_fav_user_benefit,unique" json:"benefit_id"`
	CreatedAt time.Time `json:"created_at"`
}
