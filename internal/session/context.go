// Package session owns the signed-in identity: who the caller is, how a
// browser session is resolved from cookies, and who hears about sign-in and
// sign-out.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// User is the identity attached to an authenticated request.
type User struct {
	ID        uuid.UUID
	Email     string
	SessionID uuid.UUID
}

// Tokens is what a successful sign-in or refresh hands back.
type Tokens struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
	User             User
}

type ctxKey struct{}

func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

func UserFrom(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(ctxKey{}).(User)
	return u, ok && u.ID != uuid.Nil
}

// UserFromClaims reads sub, email and sid from access token claims.
func UserFromClaims(claims jwt.MapClaims) (User, error) {
	sub, ok := claims["sub"].(string)
	if !ok {
		return User{}, errors.New("missing sub claim")
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return User{}, errors.New("invalid sub claim")
	}
	u := User{ID: id}
	u.Email, _ = claims["email"].(string)
	if sid, ok := claims["sid"].(string); ok {
		u.SessionID, _ = uuid.Parse(sid)
	}
	return u, nil
}

// GetUser extracts the caller from JWT claims placed in Fiber locals by the
// bearer-token middleware.
func GetUser(c *fiber.Ctx) (User, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return User{}, errors.New("invalid token in context")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return User{}, errors.New("invalid claims")
	}

	return UserFromClaims(claims)
}
