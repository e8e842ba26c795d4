package routes

import (
	"time"

	"github.com/codmarsenal/attachments-bot/internal/config"
	"github.com/codmarsenal/attachments-bot/internal/handlers"
	"github.com/codmarsenal/attachments-bot/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	submissionHandler *handlers.SubmissionHandler,
	reportHandler *handlers.ReportHandler,
	statsHandler *handlers.StatsHandler,
	settingsHandler *handlers.SettingsHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth — stricter rate limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/login", authHandler.Login)

	// Admin moderation panel (JWT + admin role required)
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(cfg))

	admin.Get("/submissions", submissionHandler.List)
	admin.Get("/submissions/:id", submissionHandler.Get)
	admin.Post("/submissions/:id/approve", submissionHandler.Approve)
	admin.Post("/submissions/:id/reject", submissionHandler.Reject)
	admin.Post("/submissions/:id/irrelevant", submissionHandler.MarkIrrelevant)
	admin.Post("/submissions/:id/restore", submissionHandler.Restore)
	admin.Delete("/submissions/:id", submissionHandler.Delete)

	admin.Get("/reports", reportHandler.List)
	admin.Put("/reports/:id", reportHandler.Resolve)
	admin.Post("/submissions/:id/recount-reports", reportHandler.Recount)

	admin.Get("/stats", statsHandler.Snapshot)
	admin.Post("/stats/refresh", statsHandler.Refresh)

	admin.Get("/settings", settingsHandler.List)
	admin.Put("/settings/:key", settingsHandler.Set)

	admin.Post("/users/:id/ban", submissionHandler.BanUser)
	admin.Post("/users/:id/unban", submissionHandler.UnbanUser)
}
