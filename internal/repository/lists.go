package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/ahmetcoskunkizilkaya/family-todo/internal/models"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/session"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListStore is the PostgreSQL-backed ListRepository. Every family member can
// read every list; only the owner may rename or delete one.
type ListStore struct {
	db *gorm.DB
}

func NewListStore(db *gorm.DB) *ListStore {
	return &ListStore{db: db}
}

func (s *ListStore) Select(ctx context.Context, filter ListFilter) ([]models.List, error) {
	if _, ok := session.UserFrom(ctx); !ok {
		return nil, ErrUnauthenticated
	}

	q := s.db.WithContext(ctx).Order("created_at ASC").Order("id ASC")
	if len(filter.IDs) > 0 {
		q = q.Where("id IN ?", filter.IDs)
	}

	lists := make([]models.List, 0)
	if err := q.Find(&lists).Error; err != nil {
		return nil, err
	}
	return lists, nil
}

func (s *ListStore) Insert(ctx context.Context, in NewList) (*models.List, error) {
	caller, ok := session.UserFrom(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	if in.OwnerID != caller.ID {
		return nil, ErrNotOwner
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	list := models.List{
		ID:      uuid.New(),
		OwnerID: in.OwnerID,
		Title:   title,
	}
	if err := s.db.WithContext(ctx).Create(&list).Error; err != nil {
		return nil, err
	}
	return &list, nil
}

func (s *ListStore) Update(ctx context.Context, id uuid.UUID, patch ListPatch) (*models.List, error) {
	list, err := s.owned(ctx, id)
	if err != nil || list == nil {
		return nil, err
	}

	if !patch.Title.Set {
		return list, nil
	}
	title := strings.TrimSpace(patch.Title.Value)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	if err := s.db.WithContext(ctx).Model(list).Update("title", title).Error; err != nil {
		return nil, err
	}
	list.Title = title
	return list, nil
}

func (s *ListStore) Delete(ctx context.Context, id uuid.UUID) error {
	list, err := s.owned(ctx, id)
	if err != nil || list == nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(list).Error
}

// owned loads a list the caller owns. A missing row yields (nil, nil).
func (s *ListStore) owned(ctx context.Context, id uuid.UUID) (*models.List, error) {
	caller, ok := session.UserFrom(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	var list models.List
	if err := s.db.WithContext(ctx).First(&list, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if list.OwnerID != caller.ID {
		return nil, ErrNotOwner
	}
	return &list, nil
}
