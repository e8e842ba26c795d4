package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/codmarsenal/attachments-bot/internal/bot"
	"github.com/codmarsenal/attachments-bot/internal/cache"
	"github.com/codmarsenal/attachments-bot/internal/config"
	"github.com/codmarsenal/attachments-bot/internal/database"
	"github.com/codmarsenal/attachments-bot/internal/handlers"
	"github.com/codmarsenal/attachments-bot/internal/logging"
	"github.com/codmarsenal/attachments-bot/internal/middleware"
	"github.com/codmarsenal/attachments-bot/internal/routes"
	"github.com/codmarsenal/attachments-bot/internal/services"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.BotToken == "" {
		slog.Error("BOT_TOKEN environment variable is required")
		os.Exit(1)
	}
	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// Redis cache (optional)
	cache.Init(cfg.RedisAddr)
	defer cache.Close()

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		pgLogHandler,
	)))

	// Log cleanup
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cfg.LogRetentionDays, cleanupDone)

	// Services
	roles := services.NewDBRoleChecker(database.DB, cfg.AdminUserIDs)
	settingsService := services.NewSettingsService(database.DB, cfg.DefaultDailyLimit)
	statsService := services.NewStatsService(database.DB, cfg.StatsRefreshThreshold, cfg.StatsRefreshInterval)
	filter := services.NewContentFilter()
	submissionService := services.NewSubmissionService(database.DB, settingsService, filter, roles, statsService)
	reportService := services.NewReportService(database.DB, roles, statsService)
	engagementService := services.NewEngagementService(database.DB, statsService)
	catalogService := services.NewCatalogService(database.DB)
	userService := services.NewUserService(database.DB)
	authService := services.NewAuthService(database.DB, cfg)

	// Bootstrap dashboard admin from env, if configured
	if email, password := os.Getenv("ADMIN_EMAIL"), os.Getenv("ADMIN_PASSWORD"); email != "" && password != "" {
		if _, err := authService.CreateAccount(context.Background(), email, password, "admin"); err != nil {
			slog.Error("admin bootstrap failed", "error", err)
		} else if raw := os.Getenv("ADMIN_TELEGRAM_ID"); raw != "" {
			if tgID, err := strconv.ParseInt(raw, 10, 64); err == nil {
				if err := authService.LinkTelegramID(context.Background(), email, tgID); err != nil {
					slog.Error("admin telegram link failed", "error", err)
				}
			}
		}
	}

	// Stats cache maintainer
	statsService.Start()

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Telegram bot
	tgBot, err := bot.New(cfg.BotToken, userService, submissionService, reportService,
		engagementService, catalogService, settingsService, statsService, roles)
	if err != nil {
		slog.Error("telegram bot init failed", "error", err)
		os.Exit(1)
	}

	botCtx, cancelBot := context.WithCancel(context.Background())
	go func() {
		if err := tgBot.Run(botCtx); err != nil && err != context.Canceled {
			slog.Error("telegram bot stopped", "error", err)
		}
	}()

	// Admin API (Fiber)
	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

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

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	healthHandler := handlers.NewHealthHandler()
	submissionHandler := handlers.NewSubmissionHandler(submissionService)
	reportHandler := handlers.NewReportHandler(reportService)
	statsHandler := handlers.NewStatsHandler(statsService)
	settingsHandler := handlers.NewSettingsHandler(settingsService)

	routes.Setup(app, cfg, authHandler, healthHandler, submissionHandler,
		reportHandler, statsHandler, settingsHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("admin api starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("admin api failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down...")

	cancelBot()
	statsService.Stop()
	close(cleanupDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("admin api shutdown error", "error", err)
	}

	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
