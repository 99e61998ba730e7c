package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/family-todo/internal/dto"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/services"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/session"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *services.AuthService
	publicURL   string
}

func NewAuthHandler(authService *services.AuthService, publicURL string) *AuthHandler {
	return &AuthHandler{authService: authService, publicURL: publicURL}
}

func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var req dto.SignUpRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if req.RedirectURL == "" {
		req.RedirectURL = h.publicURL + session.HomePath
	}

	if err := h.authService.SignUp(c.UserContext(), req.Email, req.Password, req.RedirectURL); err != nil {
		switch {
		case errors.Is(err, services.ErrEmailTaken):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrInvalidEmail), errors.Is(err, services.ErrWeakPassword):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		slog.Error("sign up failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.MessageResponse{
		Message: "Check your email to confirm your address",
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	tokens, err := h.authService.SignIn(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		if errors.Is(err, services.ErrEmailNotConfirmed) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		slog.Error("login failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}

	return c.JSON(authResponse(tokens))
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	tokens, err := h.authService.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, services.ErrInvalidToken) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		slog.Error("refresh failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}

	return c.JSON(authResponse(tokens))
}

func (h *AuthHandler) Confirm(c *fiber.Ctx) error {
	redirect, err := h.authService.ConfirmEmail(c.UserContext(), c.Query("token"))
	if err != nil {
		if errors.Is(err, services.ErrInvalidToken) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Confirmation link is invalid or has expired",
			})
		}
		slog.Error("email confirmation failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}

	return c.JSON(fiber.Map{"message": "Email confirmed", "redirect_url": redirect})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	if err := h.authService.SignOut(c.UserContext(), req.RefreshToken); err != nil {
		slog.Error("logout failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to logout",
		})
	}

	return c.JSON(dto.MessageResponse{Message: "Logged out successfully"})
}

// Session reports the identity behind the bearer token.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	u, ok := session.UserFrom(c.UserContext())
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}
	return c.JSON(dto.UserResponse{ID: u.ID, Email: u.Email, SessionID: u.SessionID})
}

func authResponse(t *session.Tokens) dto.AuthResponse {
	return dto.AuthResponse{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		ExpiresAt:    t.AccessExpiresAt,
		User: dto.UserResponse{
			ID:        t.User.ID,
			Email:     t.User.Email,
			SessionID: t.User.SessionID,
		},
	}
}
