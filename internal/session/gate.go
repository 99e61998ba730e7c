package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	AccessCookie  = "ft_access"
	RefreshCookie = "ft_refresh"

	SignInPath = "/auth"
	HomePath   = "/"

	localsKey = "session_user"
)

// Authenticator is the slice of the auth service the gate needs.
type Authenticator interface {
	Verify(accessToken string) (User, error)
	Refresh(ctx context.Context, refreshToken string) (*Tokens, error)
}

type CookieConfig struct {
	Secure bool
}

// Gate resolves the browser session of a page request and decides where the
// request may go.
type Gate struct {
	auth    Authenticator
	cookies CookieConfig
}

func NewGate(auth Authenticator, cookies CookieConfig) *Gate {
	return &Gate{auth: auth, cookies: cookies}
}

// Resolve is the single session-resolution routine: a valid access cookie
// wins; otherwise the refresh cookie is exchanged (and rotated); otherwise the
// request is anonymous and stale cookies are cleared.
func (g *Gate) Resolve(c *fiber.Ctx) (User, bool) {
	if u, ok := Current(c); ok {
		return u, true
	}

	if access := c.Cookies(AccessCookie); access != "" {
		if u, err := g.auth.Verify(access); err == nil {
			g.attach(c, u)
			return u, true
		}
	}

	refresh := c.Cookies(RefreshCookie)
	if refresh == "" {
		return User{}, false
	}

	tokens, err := g.auth.Refresh(c.UserContext(), refresh)
	if err != nil {
		slog.Info("session refresh rejected", "error", err, "ip", c.IP())
		g.ClearCookies(c)
		return User{}, false
	}

	g.SetCookies(c, tokens)
	g.attach(c, tokens.User)
	return tokens.User, true
}

// RequireSession redirects anonymous requests to the sign-in view.
func (g *Gate) RequireSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := g.Resolve(c); !ok {
			return c.Redirect(SignInPath, fiber.StatusSeeOther)
		}
		return c.Next()
	}
}

// RedirectSignedIn keeps signed-in users away from the sign-in view.
func (g *Gate) RedirectSignedIn() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := g.Resolve(c); ok {
			return c.Redirect(HomePath, fiber.StatusSeeOther)
		}
		return c.Next()
	}
}

func (g *Gate) SetCookies(c *fiber.Ctx, t *Tokens) {
	c.Cookie(&fiber.Cookie{
		Name:     AccessCookie,
		Value:    t.AccessToken,
		Path:     "/",
		Expires:  t.AccessExpiresAt,
		HTTPOnly: true,
		Secure:   g.cookies.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	c.Cookie(&fiber.Cookie{
		Name:     RefreshCookie,
		Value:    t.RefreshToken,
		Path:     "/",
		Expires:  t.RefreshExpiresAt,
		HTTPOnly: true,
		Secure:   g.cookies.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (g *Gate) ClearCookies(c *fiber.Ctx) {
	for _, name := range []string{AccessCookie, RefreshCookie} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			MaxAge:   -1,
			HTTPOnly: true,
			Secure:   g.cookies.Secure,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
}

func (g *Gate) attach(c *fiber.Ctx, u User) {
	c.Locals(localsKey, u)
	c.SetUserContext(WithUser(c.UserContext(), u))
}

// Current returns the user the gate attached to this request, if any.
func Current(c *fiber.Ctx) (User, bool) {
	u, ok := c.Locals(localsKey).(User)
	return u, ok
}
