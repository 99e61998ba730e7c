package dto

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/family-todo/internal/models"
	"github.com/google/uuid"
)

type CreateListRequest struct {
	Title string `json:"title"`
}

type UpdateListRequest struct {
	Title string `json:"title"`
}

type ListResponse struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

func NewListResponse(l models.List) ListResponse {
	return ListResponse{ID: l.ID, OwnerID: l.OwnerID, Title: l.Title, CreatedAt: l.CreatedAt}
}

type CreateTaskRequest struct {
	ListID      uuid.UUID `json:"list_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	DueDate     *string   `json:"due_date"`
}

// UpdateTaskRequest distinguishes absent keys from explicit nulls: absent
// fields are left alone, a null description or due_date clears it.
type UpdateTaskRequest struct {
	Title       *string          `json:"title"`
	Description Nullable[string] `json:"description"`
	Completed   *bool            `json:"completed"`
	DueDate     Nullable[string] `json:"due_date"`
}

type TaskResponse struct {
	ID          uuid.UUID `json:"id"`
	ListID      uuid.UUID `json:"list_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Completed   bool      `json:"completed"`
	DueDate     *string   `json:"due_date"`
	CreatedAt   time.Time `json:"created_at"`
	CreatedBy   uuid.UUID `json:"created_by"`
}

func NewTaskResponse(t models.Task) TaskResponse {
	resp := TaskResponse{
		ID:          t.ID,
		ListID:      t.ListID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		CreatedBy:   t.CreatedBy,
	}
	if due := t.DueDateString(); due != "" {
		resp.DueDate = &due
	}
	return resp
}

type ProfileResponse struct {
	ID          uuid.UUID `json:"id"`
	DisplayName *string   `json:"display_name"`
	AvatarURL   *string   `json:"avatar_url"`
}

func NewProfileResponse(p models.Profile) ProfileResponse {
	return ProfileResponse{ID: p.ID, DisplayName: p.DisplayName, AvatarURL: p.AvatarURL}
}
