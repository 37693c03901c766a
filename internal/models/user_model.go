package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	FullName      string         `gorm:"size:100;index" json:"full_name"`
	Username      string         `gorm:"uniqueIndex;size:30" json:"username"`
	Email         string         `gorm:"uniqueIndex;size:100" json:"email"`
	Password      string         `gorm:"size:255" json:"-"`
	Gender        string         `gorm:"size:20;default:'unspecified'" json:"gender"`
	Country       string         `gorm:"size:100" json:"country"`
	Avatar        string         `gorm:"size:255" json:"avatar,omitempty"`
	Bio           string         `gorm:"size:500" json:"bio,omitempty"`
	Provider      string         `gorm:"size:50;default:'local'" json:"provider"`
	Role          int            `gorm:"default:1" json:"role"`
	EmailVerified bool           `gorm:"default:false" json:"email_verified"`
	IsActive      bool           `gorm:"default:true" json:"is_active"`
	IsLocked      bool           `gorm:"default:false" json:"is_locked"`
	Preferences   datatypes.JSON `json:"preferences,omitempty"`
	LastLogin     *time.Time     `json:"last_login,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
