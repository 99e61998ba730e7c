package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/family-todo/internal/dto"
	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	ping     func() error
	sessions func() int
}

// NewHealthHandler takes the database ping and the live session count.
func NewHealthHandler(ping func() error, sessions func() int) *HealthHandler {
	return &HealthHandler{ping: ping, sessions: sessions}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "ok"
	if err := h.ping(); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	return c.JSON(dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
		Sessions:  h.sessions(),
	})
}
