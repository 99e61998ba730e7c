package web

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/ahmetcoskunkizilkaya/family-todo/internal/session"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/viewmodel"
	"github.com/gofiber/fiber/v2"
)

type authVM struct {
	pageVM
	Tab         string
	Email       string
	MinPassword int
}

func (s *Server) handleAuthPage(c *fiber.Ctx) error {
	tab := c.Query("tab")
	if tab != "signup" {
		tab = "signin"
	}

	return s.render(c, "auth.html", authVM{
		pageVM: pageVM{
			Title:       authTitle,
			Description: authDescription,
			Toasts:      s.takeFlash(c),
		},
		Tab:         tab,
		Email:       c.Query("email"),
		MinPassword: s.cfg.PasswordMinLength,
	})
}

func (s *Server) handleSignIn(c *fiber.Ctx) error {
	email := strings.TrimSpace(formValue(c, "email"))

	tokens, err := s.cfg.Auth.SignIn(c.UserContext(), email, formValue(c, "password"))
	if err != nil {
		s.setFlash(c, viewmodel.Toast{
			Title:       "Sign in failed",
			Description: err.Error(),
			Variant:     viewmodel.VariantDestructive,
		})
		return c.Redirect(authURL("signin", email), fiber.StatusSeeOther)
	}

	s.gate.SetCookies(c, tokens)
	s.cfg.State.Get(tokens.User).Model.Notify(viewmodel.Toast{
		Title:       "Welcome back!",
		Description: "You are now signed in.",
	})
	slog.Info("user signed in", "user_id", tokens.User.ID.String(), "session_id", tokens.User.SessionID.String())
	return c.Redirect(session.HomePath, fiber.StatusSeeOther)
}

func (s *Server) handleSignUp(c *fiber.Ctx) error {
	email := strings.TrimSpace(formValue(c, "email"))
	redirectURL := c.BaseURL() + session.HomePath

	if err := s.cfg.Auth.SignUp(c.UserContext(), email, formValue(c, "password"), redirectURL); err != nil {
		s.setFlash(c, viewmodel.Toast{
			Title:       "Sign up failed",
			Description: err.Error(),
			Variant:     viewmodel.VariantDestructive,
		})
		return c.Redirect(authURL("signup", email), fiber.StatusSeeOther)
	}

	s.setFlash(c, viewmodel.Toast{
		Title:       "Check your email",
		Description: "Confirm your address to finish signing up.",
	})
	return c.Redirect(authURL("signup", email), fiber.StatusSeeOther)
}

// handleConfirm consumes an emailed confirmation link and sends the browser
// to the address chosen at sign-up, if it is on this site.
func (s *Server) handleConfirm(c *fiber.Ctx) error {
	redirect, err := s.cfg.Auth.ConfirmEmail(c.UserContext(), c.Query("token"))
	if err != nil {
		s.setFlash(c, viewmodel.Toast{
			Title:       "Confirmation failed",
			Description: err.Error(),
			Variant:     viewmodel.VariantDestructive,
		})
		return c.Redirect(session.SignInPath, fiber.StatusSeeOther)
	}

	s.setFlash(c, viewmodel.Toast{
		Title:       "Email confirmed",
		Description: "You can now sign in.",
	})
	return c.Redirect(localRedirect(redirect, c.Hostname()), fiber.StatusSeeOther)
}

func (s *Server) handleLogout(c *fiber.Ctx) error {
	if refresh := c.Cookies(session.RefreshCookie); refresh != "" {
		if err := s.cfg.Auth.SignOut(c.UserContext(), refresh); err != nil {
			slog.Error("sign out failed", "error", err)
		}
	}
	s.gate.ClearCookies(c)
	return c.Redirect(session.SignInPath, fiber.StatusSeeOther)
}

func authURL(tab, email string) string {
	q := url.Values{"tab": {tab}}
	if email != "" {
		q.Set("email", email)
	}
	return session.SignInPath + "?" + q.Encode()
}

// localRedirect keeps redirects on this host. Anything else goes home.
func localRedirect(raw, host string) string {
	u, err := url.Parse(raw)
	if err != nil || raw == "" {
		return session.HomePath
	}
	if u.Host != "" && u.Hostname() != host {
		return session.HomePath
	}
	if u.Host == "" && !strings.HasPrefix(u.Path, "/") {
		return session.HomePath
	}
	path := u.EscapedPath()
	if path == "" {
		path = session.HomePath
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return path
}
