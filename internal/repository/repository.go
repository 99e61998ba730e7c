// Package repository is the typed data client for the lists, tasks and
// profiles collections. Every collection speaks the same four verbs:
// select, insert, update (by id, returning the row or nil) and delete (by id).
//
// The caller's identity travels in the context (session.WithUser) and the
// stores enforce the family access policy with it.
package repository

import (
	"context"
	"errors"

	"github.com/ahmetcoskunkizilkaya/family-todo/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

var (
	ErrUnauthenticated = errors.New("not signed in")
	ErrNotOwner        = errors.New("only the owner of this list can change it")
	ErrEmptyTitle      = errors.New("title must not be empty")
	ErrNotFound        = errors.New("record not found")
)

// Field is an optional patch value. The zero Field leaves the column alone;
// Set(nil) on a pointer type clears it.
type Field[T any] struct {
	Set   bool
	Value T
}

func Set[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

type ListFilter struct {
	IDs []uuid.UUID
}

type NewList struct {
	Title   string
	OwnerID uuid.UUID
}

type ListPatch struct {
	Title Field[string]
}

type TaskFilter struct {
	ListID uuid.UUID
}

type NewTask struct {
	ListID      uuid.UUID
	Title       string
	Description *string
	DueDate     *datatypes.Date
}

type TaskPatch struct {
	Title       Field[string]
	Description Field[*string]
	Completed   Field[bool]
	DueDate     Field[*datatypes.Date]
}

type ProfileFilter struct {
	IDs []uuid.UUID
}

// ListRepository selects lists oldest first.
type ListRepository interface {
	Select(ctx context.Context, filter ListFilter) ([]models.List, error)
	Insert(ctx context.Context, in NewList) (*models.List, error)
	Update(ctx context.Context, id uuid.UUID, patch ListPatch) (*models.List, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// TaskRepository selects tasks oldest first.
type TaskRepository interface {
	Select(ctx context.Context, filter TaskFilter) ([]models.Task, error)
	Insert(ctx context.Context, in NewTask) (*models.Task, error)
	Update(ctx context.Context, id uuid.UUID, patch TaskPatch) (*models.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProfileRepository is read-only.
type ProfileRepository interface {
	Select(ctx context.Context, filter ProfileFilter) ([]models.Profile, error)
}
