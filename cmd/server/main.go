package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	httpadapter "github.com/kompas/kompas/internal/adapter/http"
	"github.com/kompas/kompas/internal/adapter/persistence"
	"github.com/kompas/kompas/internal/config"
	"github.com/kompas/kompas/internal/domain"
	"github.com/kompas/kompas/internal/service/logger"
	"github.com/kompas/kompas/internal/usecase"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize structured logger
	structuredLogger := logger.NewStructuredLogger(logger.LoggerConfig{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		ServiceName: "objective-tracker",
	})
	structuredLogger.Info(ctx, "Application starting", map[string]interface{}{
		"env":      cfg.Server.Environment,
		"strategy": cfg.Tracker.Strategy,
	})

	// Connect to database
	db, err := sql.Open("postgres", cfg.GetDatabaseURL())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxConnections)
	db.SetConnMaxIdleTime(cfg.Database.MaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Database.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		structuredLogger.Error(ctx, "Failed to ping database", err, map[string]interface{}{
			"host": cfg.Database.Host,
		})
		log.Fatalf("Failed to ping database: %v", err)
	}
	structuredLogger.Info(ctx, "Database connection established", map[string]interface{}{
		"host":   cfg.Database.Host,
		"dbname": cfg.Database.DBName,
	})

	// Initialize registry and repositories
	registry := domain.NewRegistry()

	cacheLogger := logger.NewLogrus(logger.LoggerConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	typeRepo := persistence.NewCachedObjectiveTypeRepository(
		persistence.NewPostgresObjectiveTypeRepository(db),
		persistence.CacheConfig{
			Enabled:  cfg.Redis.Enabled,
			RedisURL: cfg.GetRedisURL(),
			TTL:      cfg.Redis.CacheTTL,
		},
		cacheLogger,
	)
	objectiveRepo := persistence.NewPostgresObjectiveRepository(db)
	progressRepo := persistence.NewPostgresProgressRepository(db)

	// Initialize use cases
	trackerUseCase := usecase.NewTrackerUseCase(
		registry,
		typeRepo,
		objectiveRepo,
		progressRepo,
		usecase.ParseTrackStrategy(cfg.Tracker.Strategy),
		structuredLogger,
	)
	typeUseCase := usecase.NewObjectiveTypeUseCase(registry, typeRepo)
	objectiveUseCase := usecase.NewObjectiveUseCase(typeRepo, objectiveRepo, progressRepo)

	// Initialize HTTP layer
	auth := httpadapter.NewAuthMiddleware(cfg.Security.JWTSecret, cfg.Security.AuthEnabled)
	server := httpadapter.NewServer(
		httpadapter.ServerConfig{
			Port:         cfg.Server.Port,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
		httpadapter.NewEventHandler(trackerUseCase),
		httpadapter.NewObjectiveTypeHandler(typeUseCase, auth),
		httpadapter.NewObjectiveHandler(objectiveUseCase, auth),
		httpadapter.NewRegistryHandler(registry, auth),
	)

	// Start server and wait for shutdown signal
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		structuredLogger.Error(ctx, "HTTP server stopped", err, nil)
	case sig := <-quit:
		structuredLogger.Info(ctx, "Shutdown signal received", map[string]interface{}{
			"signal": sig.String(),
		})
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		structuredLogger.Error(ctx, "Graceful shutdown failed", err, nil)
	}
	structuredLogger.Info(ctx, "Application stopped", nil)
}
