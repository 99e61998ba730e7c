package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/family-todo/internal/dto"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/repository"
	"github.com/gofiber/fiber/v2"
)

// repoError maps repository sentinels to status codes. Anything else is
// logged and masked.
func repoError(c *fiber.Ctx, err error, action string) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, repository.ErrEmptyTitle):
		status = fiber.StatusBadRequest
	case errors.Is(err, repository.ErrUnauthenticated):
		status = fiber.StatusUnauthorized
	case errors.Is(err, repository.ErrNotOwner):
		status = fiber.StatusForbidden
	case errors.Is(err, repository.ErrNotFound):
		status = fiber.StatusNotFound
	}

	if status == fiber.StatusInternalServerError {
		slog.Error(action+" failed", "error", err, "path", c.Path())
		return c.Status(status).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}
	return c.Status(status).JSON(dto.ErrorResponse{
		Error: true, Message: err.Error(),
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: message,
	})
}
