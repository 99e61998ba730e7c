// Package web serves the browser UI: the sign-in page and the lists page,
// rendered on the server from each session's view model. Forms post to
// action routes that redirect back (POST-redirect-GET).
package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/ahmetcoskunkizilkaya/family-todo/internal/appstate"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/session"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/viewmodel"
	"github.com/gofiber/fiber/v2"
)

//go:embed templates/*.html static/*.css
var assetsFS embed.FS

const (
	mainTitle       = "Family To‑Do Lists"
	mainDescription = "Shared family to‑do lists with tasks."
	authTitle       = "Sign in · Family To‑Do"
	authDescription = "Sign in or create an account to access your shared family to‑do lists."
)

// Auth is the slice of the auth service the pages use.
type Auth interface {
	session.Authenticator
	SignIn(ctx context.Context, email, password string) (*session.Tokens, error)
	SignUp(ctx context.Context, email, password, redirectURL string) error
	ConfirmEmail(ctx context.Context, token string) (string, error)
	SignOut(ctx context.Context, refreshToken string) error
}

type ServerConfig struct {
	Auth              Auth
	State             *appstate.Container
	CookieSecure      bool
	PasswordMinLength int
}

type Server struct {
	cfg   ServerConfig
	gate  *session.Gate
	pages map[string]*template.Template
}

type pageVM struct {
	Title       string
	Description string
	Toasts      []viewmodel.Toast
}

func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Auth == nil {
		return nil, errors.New("web: auth is nil")
	}
	if cfg.State == nil {
		return nil, errors.New("web: state container is nil")
	}

	pages := make(map[string]*template.Template)
	for _, name := range []string{"auth.html", "index.html"} {
		tmpl, err := template.New(name).Funcs(template.FuncMap{
			"trim": strings.TrimSpace,
		}).ParseFS(assetsFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("web: parse %s: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &Server{
		cfg:   cfg,
		gate:  session.NewGate(cfg.Auth, session.CookieConfig{Secure: cfg.CookieSecure}),
		pages: pages,
	}, nil
}

func (s *Server) Gate() *session.Gate {
	return s.gate
}

// Register mounts the page and form routes. Session checks are per route so
// the API group is never affected.
func (s *Server) Register(app fiber.Router) {
	requireSession := s.gate.RequireSession()

	app.Get("/static/app.css", s.handleCSS)

	app.Get(session.SignInPath, s.gate.RedirectSignedIn(), s.handleAuthPage)
	app.Post("/auth/signin", s.handleSignIn)
	app.Post("/auth/signup", s.handleSignUp)
	app.Get("/auth/confirm", s.handleConfirm)
	app.Post("/logout", s.handleLogout)

	app.Get(session.HomePath, requireSession, s.handleHome)

	app.Post("/lists", requireSession, s.handleAddList)
	app.Post("/lists/:id/select", requireSession, s.handleSelectList)
	app.Post("/lists/:id/rename", requireSession, s.handleRenameList)
	app.Post("/lists/:id/delete", requireSession, s.handleDeleteList)

	app.Post("/tasks", requireSession, s.handleAddTask)
	app.Post("/tasks/:id/toggle", requireSession, s.handleToggleTask)
	app.Post("/tasks/:id/edit", requireSession, s.handleEditTask)
	app.Post("/tasks/:id/delete", requireSession, s.handleDeleteTask)

	app.Post("/dialogs/rename/:id", requireSession, s.handleOpenRename)
	app.Post("/dialogs/edit/:id", requireSession, s.handleOpenEdit)
	app.Post("/dialogs/close", requireSession, s.handleCloseDialogs)
}

func (s *Server) render(c *fiber.Ctx, name string, data any) error {
	tmpl, ok := s.pages[name]
	if !ok {
		return fmt.Errorf("web: unknown page %s", name)
	}

	var b bytes.Buffer
	if err := tmpl.ExecuteTemplate(&b, "layout", data); err != nil {
		return err
	}
	c.Set(fiber.HeaderCacheControl, "no-store")
	c.Type("html", "utf-8")
	return c.Send(b.Bytes())
}

func (s *Server) handleCSS(c *fiber.Ctx) error {
	css, err := assetsFS.ReadFile("static/app.css")
	if err != nil {
		return err
	}
	c.Type("css", "utf-8")
	return c.Send(css)
}

// state returns the per-session state of a request that passed
// RequireSession.
func (s *Server) state(c *fiber.Ctx) *appstate.Session {
	u, _ := session.Current(c)
	return s.cfg.State.Get(u)
}

func backHome(c *fiber.Ctx) error {
	return c.Redirect(session.HomePath, fiber.StatusSeeOther)
}
