package repository

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/family-todo/internal/models"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/session"
	"gorm.io/gorm"
)

type ProfileStore struct {
	db *gorm.DB
}

func NewProfileStore(db *gorm.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

// Select returns the profiles for filter.IDs. An empty filter selects nothing.
func (s *ProfileStore) Select(ctx context.Context, filter ProfileFilter) ([]models.Profile, error) {
	if _, ok := session.UserFrom(ctx); !ok {
		return nil, ErrUnauthenticated
	}

	profiles := make([]models.Profile, 0, len(filter.IDs))
	if len(filter.IDs) == 0 {
		return profiles, nil
	}
	if err := s.db.WithContext(ctx).Where("id IN ?", filter.IDs).Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}
