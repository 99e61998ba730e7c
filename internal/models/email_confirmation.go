package models

import (
	"time"

	"github.com/google/uuid"
)

// EmailConfirmation is a one-shot link issued at sign-up.
type EmailConfirmation struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index"`
	TokenHash   string    `gorm:"uniqueIndex;not null;size:64"`
	RedirectURL string    `gorm:"type:text"`
	ExpiresAt   time.Time `gorm:"not null"`
	UsedAt      *time.Time
	CreatedAt   time.Time
	User        User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}
