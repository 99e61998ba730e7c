package handlers

import (
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/dto"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/repository"
	"github.com/gofiber/fiber/v2"
)

type ProfileHandler struct {
	profiles repository.ProfileRepository
}

func NewProfileHandler(profiles repository.ProfileRepository) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// List returns the profiles named by ?ids=a,b. Unknown ids are skipped.
func (h *ProfileHandler) List(c *fiber.Ctx) error {
	ids, err := parseIDs(c.Query("ids"))
	if err != nil {
		return badRequest(c, "Invalid ids")
	}

	profiles, err := h.profiles.Select(c.UserContext(), repository.ProfileFilter{IDs: ids})
	if err != nil {
		return repoError(c, err, "list profiles")
	}

	resp := make([]dto.ProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		resp = append(resp, dto.NewProfileResponse(p))
	}
	return c.JSON(resp)
}
