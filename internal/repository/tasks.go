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

// TaskStore is the PostgreSQL-backed TaskRepository. Tasks are shared: any
// family member may add, edit, complete or delete them.
type TaskStore struct {
	db *gorm.DB
}

func NewTaskStore(db *gorm.DB) *TaskStore {
	return &TaskStore{db: db}
}

func (s *TaskStore) Select(ctx context.Context, filter TaskFilter) ([]models.Task, error) {
	if _, ok := session.UserFrom(ctx); !ok {
		return nil, ErrUnauthenticated
	}

	q := s.db.WithContext(ctx).Order("created_at ASC").Order("id ASC")
	if filter.ListID != uuid.Nil {
		q = q.Where("list_id = ?", filter.ListID)
	}

	tasks := make([]models.Task, 0)
	if err := q.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *TaskStore) Insert(ctx context.Context, in NewTask) (*models.Task, error) {
	caller, ok := session.UserFrom(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	task := models.Task{
		ID:          uuid.New(),
		ListID:      in.ListID,
		Title:       title,
		Description: in.Description,
		DueDate:     in.DueDate,
		CreatedBy:   caller.ID,
	}
	if err := s.db.WithContext(ctx).Create(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *TaskStore) Update(ctx context.Context, id uuid.UUID, patch TaskPatch) (*models.Task, error) {
	if _, ok := session.UserFrom(ctx); !ok {
		return nil, ErrUnauthenticated
	}

	updates := map[string]interface{}{}
	if patch.Title.Set {
		title := strings.TrimSpace(patch.Title.Value)
		if title == "" {
			return nil, ErrEmptyTitle
		}
		updates["title"] = title
	}
	if patch.Description.Set {
		updates["description"] = patch.Description.Value
	}
	if patch.Completed.Set {
		updates["completed"] = patch.Completed.Value
	}
	if patch.DueDate.Set {
		updates["due_date"] = patch.DueDate.Value
	}

	db := s.db.WithContext(ctx)
	if len(updates) > 0 {
		res := db.Model(&models.Task{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, nil
		}
	}

	var task models.Task
	if err := db.First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &task, nil
}

func (s *TaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := session.UserFrom(ctx); !ok {
		return ErrUnauthenticated
	}
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Task{}).Error
}
