package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/mollier-diagram/internal/api/http"
	"github.com/i474232898/mollier-diagram/internal/config"
	"github.com/i474232898/mollier-diagram/internal/history"
	"github.com/i474232898/mollier-diagram/internal/logging"
	"github.com/i474232898/mollier-diagram/internal/mollier"
	"github.com/i474232898/mollier-diagram/internal/observability"
	"github.com/i474232898/mollier-diagram/internal/scheduler"
	"github.com/i474232898/mollier-diagram/internal/store"
)

const appName = "mollier-diagram"

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logging.New(cfg, appName)
	slog.SetDefault(log)

	settings, err := cfg.Settings()
	if err != nil {
		log.Error("invalid diagram settings", "error", err)
		os.Exit(1)
	}

	source, closeSource, err := newHistorySource(cfg)
	if err != nil {
		log.Error("failed to set up history source", "backend", cfg.HistoryBackend, "error", err)
		os.Exit(1)
	}
	defer closeSource()

	// In-memory store with configured retention.
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	service := mollier.NewService(memStore, source, settings, log, observability.NewMetrics())

	// Scheduler that periodically refreshes the diagram.
	sched := scheduler.New(service, cfg.RefreshInterval, cfg.RefreshInterval, log)
	if err := sched.Start(); err != nil {
		log.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": appName,
		})
	})

	httpapi.RegisterRoutes(app, service)

	go func() {
		log.Info("http server listening", "port", cfg.Port, "backend", source.Name(), "sensors", len(settings.Sensors))
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("fiber server stopped", "error", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("error during shutdown", "error", err)
	}
}

func newHistorySource(cfg *config.AppConfig) (mollier.HistorySource, func(), error) {
	switch cfg.HistoryBackend {
	case config.BackendSQLite:
		src, err := history.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return src, func() { _ = src.Close() }, nil
	default:
		// Shared HTTP client for outbound history requests.
		httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
		src := history.NewHomeAssistantSource(cfg.HABaseURL, cfg.HAToken, history.HTTPClientConfig{Client: httpClient})
		return src, func() {}, nil
	}
}
