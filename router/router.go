package router

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"habitual/config"
	"habitual/handlers"
	"habitual/logger"
	"habitual/middleware"
)

// New builds the HTTP application with every route mounted
func New(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Habitual",
		ErrorHandler:          customErrorHandler,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
		Output: logger.Writer(),
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: !strings.Contains(cfg.AllowOrigins, "*"),
	}))

	// Event stream (registered before the groups so the auth middleware doesn't see it)
	app.Use("/api/events/ws", handlers.EventsUpgrade)
	app.Get("/api/events/ws", websocket.New(handlers.EventsWebSocket))

	api := app.Group("/api")

	// Rate limiter for auth endpoints (5 requests per minute per IP)
	authLimiter := limiter.New(limiter.Config{
		Max:        5,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many attempts. Please try again later.",
			})
		},
	})

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	auth := api.Group("/auth")
	auth.Post("/register", authLimiter, handlers.Register)
	auth.Post("/login", authLimiter, handlers.Login)
	auth.Get("/me", middleware.AuthRequired(), handlers.GetCurrentUser)

	protected := api.Group("", middleware.AuthRequired())

	habits := protected.Group("/habits")
	habits.Get("/", handlers.ListHabits)
	habits.Post("/", handlers.CreateHabit)
	habits.Get("/stats/summary", handlers.GetStatsSummary)
	habits.Get("/:id", handlers.GetHabit)
	habits.Put("/:id", handlers.UpdateHabit)
	habits.Delete("/:id", handlers.DeleteHabit)
	habits.Get("/:id/calendar", handlers.GetCalendar)
	habits.Post("/:id/complete", handlers.ToggleCompletion)

	protected.Get("/settings", handlers.GetSettings)
	protected.Put("/settings", handlers.UpdateSettings)

	activity := protected.Group("/activity")
	activity.Get("/", handlers.ListActivity)
	activity.Get("/actions", handlers.GetActivityActions)

	backup := protected.Group("/backup")
	backup.Get("/export", handlers.ExportBackup)
	backup.Post("/sftp", handlers.UploadBackup)

	// Serve static files (frontend) in production
	if cfg.Production {
		app.Static("/", "./public")
		app.Get("/*", func(c *fiber.Ctx) error {
			return c.SendFile("./public/index.html")
		})
	}

	return app
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	} else {
		logger.Error("unhandled request error", "path", c.Path(), "err", err)
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
