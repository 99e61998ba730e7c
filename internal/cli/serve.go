package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/spf13/cobra"

	"github.com/ahmetcoskunkizilkaya/family-todo/internal/appstate"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/config"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/database"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/logging"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/repository"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/routes"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/services"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/session"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/viewmodel"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/web"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (JSON API and web pages)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}
}

func runServe(cmd *cobra.Command) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Database
	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(db)
	logging.UseDatabase(pgLogHandler)

	// Sessions and per-session UI state
	broker := session.NewBroker()
	authService := services.NewAuthService(db, cfg, broker, services.LogMailer{})

	lists := repository.NewListStore(db)
	tasks := repository.NewTaskStore(db)
	profiles := repository.NewProfileStore(db)
	state := appstate.NewContainer(viewmodel.Repositories{
		Lists:    lists,
		Tasks:    tasks,
		Profiles: profiles,
	}, cfg.JWTRefreshExpiry)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go state.Subscribe(broker)(ctx)
	go state.RunEviction(ctx, 10*time.Minute)
	go logging.NewCleanup(db, cfg).Run(ctx)

	site, err := web.NewServer(web.ServerConfig{
		Auth:              authService,
		State:             state,
		CookieSecure:      cfg.CookieSecure,
		PasswordMinLength: cfg.PasswordMinLength,
	})
	if err != nil {
		return err
	}

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		}
	}

	app := fiber.New(appConfig())

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())

	routes.Setup(app, cfg, routes.Handlers{
		Auth:     handlers.NewAuthHandler(authService, cfg.PublicURL),
		Health:   handlers.NewHealthHandler(func() error { return database.Ping(db) }, state.Len),
		Lists:    handlers.NewListHandler(lists),
		Tasks:    handlers.NewTaskHandler(tasks),
		Profiles: handlers.NewProfileHandler(profiles),
	}, site)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	listenErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv)
		listenErr <- app.Listen(":" + cfg.Port)
	}()

	var runErr error
	select {
	case <-quit:
		slog.Info("shutting down server...")
	case err := <-listenErr:
		slog.Error("server failed to start", "error", err)
		runErr = err
	}

	cancel()
	broker.Close()

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := database.Close(db); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
	return runErr
}

// appConfig makes request strings immutable: form titles are kept in session
// state after the request buffer is recycled.
func appConfig() fiber.Config {
	return fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		Immutable:    true,
		ErrorHandler: customErrorHandler,
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.ErrorContext(c.UserContext(), "unhandled server error",
			"method", c.Method(),
			"path", c.Path(),
			"request_id", c.Locals("requestid"),
			"error", err.Error(),
		)
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
