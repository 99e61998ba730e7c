package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the public display metadata of a user. Its ID is the user ID.
type Profile struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DisplayName *string   `gorm:"size:120" json:"display_name"`
	AvatarURL   *string   `gorm:"type:text" json:"avatar_url"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

func (Profile) TableName() string {
	return "profiles"
}
