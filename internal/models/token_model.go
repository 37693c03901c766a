package models

import "time"

// VerificationCode is a one-time email verification code. Expired codes
// stay in the table until the cleanup job removes them.
type VerificationCode struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index;not null"`
	Code      string `gorm:"size:12;not null"`
	Type      string `gorm:"size:20;default:'email'"`
	ExpiresAt time.Time `gorm:"not null"`
	UsedAt    *time.Time
	CreatedAt time.Time
}

// PasswordReset stores only the SHA-256 of the emailed token.
type PasswordReset struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index;not null"`
	TokenHash string `gorm:"uniqueIndex;size:64;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	UsedAt    *time.Time
	CreatedAt time.Time
}

// RememberToken reinstates a session without credentials. Hashed server
// side, raw value lives only in the client cookie.
type RememberToken struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index;not null"`
	TokenHash string `gorm:"uniqueIndex;size:64;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time
}
