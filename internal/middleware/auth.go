package middleware

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/family-todo/internal/config"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/dto"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/session"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
)

// JWTProtected accepts the access token from the Authorization header or,
// for calls from the signed-in browser, from the session cookie. The caller
// identity is then put on the request context, where the repositories look
// for it.
func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:     jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(cfg.JWTSecret)},
		TokenLookup:    "header:" + fiber.HeaderAuthorization + ",cookie:" + session.AccessCookie,
		AuthScheme:     "Bearer",
		SuccessHandler: attachIdentity,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if errors.Is(err, jwtware.ErrJWTMissingOrMalformed) {
				return unauthorized(c, "missing or malformed token")
			}
			return unauthorized(c, "invalid or expired token")
		},
	})
}

func attachIdentity(c *fiber.Ctx) error {
	u, err := session.GetUser(c)
	if err != nil {
		return unauthorized(c, err.Error())
	}

	c.Locals("user_id", u.ID.String())
	c.SetUserContext(session.WithUser(c.UserContext(), u))
	return c.Next()
}

func unauthorized(c *fiber.Ctx, reason string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error:   true,
		Message: "Unauthorized: " + reason,
	})
}
