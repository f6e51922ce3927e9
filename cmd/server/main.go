package main

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arjunc477/telemetry-hub/internal/api"
	"github.com/arjunc477/telemetry-hub/internal/config"
	"github.com/arjunc477/telemetry-hub/internal/engine"
	"github.com/arjunc477/telemetry-hub/internal/ingest"
	"github.com/arjunc477/telemetry-hub/internal/journal"
	"github.com/arjunc477/telemetry-hub/internal/stats"
	"github.com/arjunc477/telemetry-hub/internal/store"
	ws "github.com/arjunc477/telemetry-hub/internal/websocket"
)

// frontendDir is the built dashboard location. When absent, the embedded
// fallback page is served at /.
const frontendDir = "frontend/dist"

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize PostgreSQL
	ctx := context.Background()
	pgStore, err := store.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer pgStore.Close()
	logger.Info("connected to PostgreSQL")

	// Ensure the events table and index exist
	if err := pgStore.EnsureSchema(ctx); err != nil {
		logger.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}
	logger.Info("database schema ensured")

	// Append-only journal, one file per UTC day
	jrnl, err := journal.New(cfg.LogDir)
	if err != nil {
		logger.Error("failed to create journal", "error", err)
		os.Exit(1)
	}
	logger.Info("journal ready", "dir", jrnl.Dir())

	// Optional Redis for capture rate limiting
	var limiter *engine.RateLimiter
	if cfg.RedisURL != "" {
		redisStore, err := store.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer redisStore.Close()
		limiter = engine.NewRateLimiter(redisStore.Client(), logger)
		logger.Info("capture rate limiting enabled", "limit_per_second", cfg.RateLimit)
	} else {
		logger.Info("capture rate limiting disabled")
	}

	// Live-tail hub for dashboard clients
	hub := ws.NewHub(logger)
	go hub.Run()

	// Durability writer: synchronous journal leg, pooled store inserts
	writerCtx, stopWriter := context.WithCancel(ctx)
	writer := ingest.NewWriter(jrnl, pgStore, logger,
		ingest.WithWorkers(cfg.NumWriters),
		ingest.WithHub(hub),
	)
	writer.Start(writerCtx)

	statsEngine := stats.NewEngine(pgStore)

	router := api.NewRouter(
		writer,
		pgStore,
		statsEngine,
		limiter,
		hub,
		frontendFS(logger),
		cfg.RateLimit,
		logger,
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	// Drain pending store inserts before closing the pool
	writer.Stop()
	stopWriter()

	logger.Info("server stopped")
}

// frontendFS returns the built dashboard as a file system, or nil when no
// build is present.
func frontendFS(logger *slog.Logger) fs.FS {
	info, err := os.Stat(frontendDir)
	if err != nil || !info.IsDir() {
		return nil
	}
	logger.Info("serving built frontend", "dir", frontendDir)
	return os.DirFS(frontendDir)
}
