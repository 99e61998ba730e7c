package models

import (
	"time"

	"github.com/google/uuid"
)

// List is a named collection of tasks owned by one family member.
type List struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	Owner     User      `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
	Tasks     []Task    `gorm:"foreignKey:ListID;constraint:OnDelete:CASCADE" json:"-"`
}

func (List) TableName() string {
	return "lists"
}
