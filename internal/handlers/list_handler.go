package handlers

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/family-todo/internal/dto"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/repository"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/session"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ListHandler struct {
	lists repository.ListRepository
}

func NewListHandler(lists repository.ListRepository) *ListHandler {
	return &ListHandler{lists: lists}
}

// List returns every list, oldest first. ?ids=a,b narrows the result.
func (h *ListHandler) List(c *fiber.Ctx) error {
	ids, err := parseIDs(c.Query("ids"))
	if err != nil {
		return badRequest(c, "Invalid ids")
	}

	lists, err := h.lists.Select(c.UserContext(), repository.ListFilter{IDs: ids})
	if err != nil {
		return repoError(c, err, "list lists")
	}

	resp := make([]dto.ListResponse, 0, len(lists))
	for _, l := range lists {
		resp = append(resp, dto.NewListResponse(l))
	}
	return c.JSON(resp)
}

func (h *ListHandler) Create(c *fiber.Ctx) error {
	u, ok := session.UserFrom(c.UserContext())
	if !ok {
		return repoError(c, repository.ErrUnauthenticated, "create list")
	}

	var req dto.CreateListRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if strings.TrimSpace(req.Title) == "" {
		return repoError(c, repository.ErrEmptyTitle, "create list")
	}

	list, err := h.lists.Insert(c.UserContext(), repository.NewList{Title: req.Title, OwnerID: u.ID})
	if err != nil {
		return repoError(c, err, "create list")
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewListResponse(*list))
}

func (h *ListHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid list id")
	}

	var req dto.UpdateListRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if strings.TrimSpace(req.Title) == "" {
		return repoError(c, repository.ErrEmptyTitle, "rename list")
	}

	list, err := h.lists.Update(c.UserContext(), id, repository.ListPatch{Title: repository.Set(req.Title)})
	if err != nil {
		return repoError(c, err, "rename list")
	}
	if list == nil {
		return repoError(c, repository.ErrNotFound, "rename list")
	}
	return c.JSON(dto.NewListResponse(*list))
}

func (h *ListHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid list id")
	}

	if err := h.lists.Delete(c.UserContext(), id); err != nil {
		return repoError(c, err, "delete list")
	}
	return c.JSON(dto.MessageResponse{Message: "List deleted"})
}

func parseIDs(raw string) ([]uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]uuid.UUID, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := uuid.Parse(p)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
