package web

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/ahmetcoskunkizilkaya/family-todo/internal/viewmodel"
	"github.com/gofiber/fiber/v2"
)

// flashCookie carries toasts across a redirect for requests that have no
// session state yet (the sign-in page).
const flashCookie = "ft_flash"

func (s *Server) setFlash(c *fiber.Ctx, toasts ...viewmodel.Toast) {
	for i := range toasts {
		if toasts[i].Variant == "" {
			toasts[i].Variant = viewmodel.VariantDefault
		}
	}
	raw, err := json.Marshal(toasts)
	if err != nil {
		return
	}
	c.Cookie(&fiber.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		MaxAge:   60,
		HTTPOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// takeFlash reads and clears the flash cookie.
func (s *Server) takeFlash(c *fiber.Ctx) []viewmodel.Toast {
	value := c.Cookies(flashCookie)
	if value == "" {
		return nil
	}
	c.Cookie(&fiber.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil
	}
	var toasts []viewmodel.Toast
	if err := json.Unmarshal(raw, &toasts); err != nil {
		return nil
	}
	return toasts
}
