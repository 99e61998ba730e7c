package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/family-todo/internal/config"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/web"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type Handlers struct {
	Auth     *handlers.AuthHandler
	Health   *handlers.HealthHandler
	Lists    *handlers.ListHandler
	Tasks    *handlers.TaskHandler
	Profiles *handlers.ProfileHandler
}

func perMinute(max int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	})
}

func Setup(app *fiber.App, cfg *config.Config, h Handlers, site *web.Server) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(perMinute(60))

	api.Get("/health", h.Health.Check)

	// Auth: stricter 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(perMinute(10))
	auth.Post("/signup", h.Auth.SignUp)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh", h.Auth.Refresh)
	auth.Get("/confirm", h.Auth.Confirm)

	// Protected routes: middleware per route so public routes stay untouched
	jwt := middleware.JWTProtected(cfg)

	api.Post("/auth/logout", jwt, h.Auth.Logout)
	api.Get("/auth/session", jwt, h.Auth.Session)

	api.Get("/lists", jwt, h.Lists.List)
	api.Post("/lists", jwt, h.Lists.Create)
	api.Patch("/lists/:id", jwt, h.Lists.Update)
	api.Delete("/lists/:id", jwt, h.Lists.Delete)

	api.Get("/tasks", jwt, h.Tasks.List)
	api.Post("/tasks", jwt, h.Tasks.Create)
	api.Patch("/tasks/:id", jwt, h.Tasks.Update)
	api.Delete("/tasks/:id", jwt, h.Tasks.Delete)

	api.Get("/profiles", jwt, h.Profiles.List)

	// Browser pages. Sign-in and sign-up forms share the auth limit.
	formLimit := perMinute(10)
	app.Use("/auth/signin", formLimit)
	app.Use("/auth/signup", formLimit)
	site.Register(app)
}
