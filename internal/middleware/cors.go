package middleware

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/family-todo/internal/config"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CORS lets the configured origins call the API. Named origins may send the
// session cookies; a wildcard cannot carry credentials.
func CORS(cfg *config.Config) fiber.Handler {
	origins := allowedOrigins(cfg.CORSOrigins)
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Authorization, Accept, X-Request-ID",
		AllowMethods:     "GET, POST, PATCH, DELETE, OPTIONS",
		ExposeHeaders:    "X-Request-ID",
		AllowCredentials: origins != "*",
		MaxAge:           600,
	})
}

// allowedOrigins normalizes a comma-separated origin list. Empty entries and
// trailing slashes are dropped; any "*" or an empty list means every origin.
func allowedOrigins(raw string) string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "" {
			continue
		}
		if o == "*" {
			return "*"
		}
		out = append(out, o)
	}
	if len(out) == 0 {
		return "*"
	}
	return strings.Join(out, ",")
}
