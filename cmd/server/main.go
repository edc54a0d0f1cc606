package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SAP-F-2025/assessment-session/internal/cache"
	"github.com/SAP-F-2025/assessment-session/internal/config"
	"github.com/SAP-F-2025/assessment-session/internal/events"
	"github.com/SAP-F-2025/assessment-session/internal/handlers"
	"github.com/SAP-F-2025/assessment-session/internal/middleware"
	"github.com/SAP-F-2025/assessment-session/internal/repositories/postgres"
	"github.com/SAP-F-2025/assessment-session/internal/services"
	"github.com/SAP-F-2025/assessment-session/internal/utils"
	"github.com/SAP-F-2025/assessment-session/internal/validator"
	"github.com/SAP-F-2025/assessment-session/pkg"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.NewLogger(false).LogError(err, "Failed to load configuration")
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.IsProduction())
	if err := run(cfg, logger); err != nil {
		logger.LogError(err, "Server stopped with error")
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger utils.Logger) error {
	slogger := utils.ToSlogLogger(logger)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return err
	}
	if err := pkg.Migrate(db); err != nil {
		return err
	}
	repo := postgres.NewRepository(db)

	var snapshots cache.SnapshotStore = cache.NewMemorySnapshotStore()
	if cfg.Session.SnapshotEnabled {
		client, err := pkg.NewRedisClient(ctx, cfg)
		if err != nil {
			return err
		}
		defer client.Close()
		snapshots = cache.NewSnapshotStore(cache.NewRedisCache(client, slogger), cfg.Session.SnapshotTTL)
	} else {
		logger.Warn("Session snapshots disabled, sessions will not survive a restart")
	}

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		logger.LogError(err, "Failed to create event publisher, falling back to mock")
		publisher = events.NewMockEventPublisher(slogger)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.LogError(err, "Failed to close event publisher")
		}
	}()

	manager := services.NewServiceManager(repo, snapshots, publisher, slogger, validator.New(), services.SessionServiceConfig{
		TickInterval:          cfg.Session.TickInterval,
		SnapshotEnabled:       cfg.Session.SnapshotEnabled,
		SnapshotIntervalTicks: cfg.Session.SnapshotIntervalTicks,
		CompletedRetention:    cfg.Session.CompletedRetention,
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), utils.LoggerMiddleware(logger), utils.ContextLogger(logger))
	handlers.NewHandlerManager(manager, logger).SetupRoutes(router, middleware.NewAuthMiddleware(cfg.Auth, logger))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			manager.Shutdown()
			return err
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.LogError(err, "HTTP server shutdown failed")
	}

	// Snapshots in-progress sessions so they can be resumed after restart.
	manager.Shutdown()
	logger.Info("Server stopped")
	return nil
}
