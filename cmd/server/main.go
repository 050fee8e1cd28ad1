package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dom/qr-code-website/internal/api"
	"github.com/dom/qr-code-website/internal/api/handlers"
	"github.com/dom/qr-code-website/internal/config"
	"github.com/dom/qr-code-website/internal/logging"
	"github.com/dom/qr-code-website/internal/repository/memory"
	"github.com/dom/qr-code-website/internal/repository/postgres"
	redisrepo "github.com/dom/qr-code-website/internal/repository/redis"
	"github.com/dom/qr-code-website/internal/service"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(os.Stdout, cfg.LogLevel, cfg.IsProduction())
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := postgres.NewConnection(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.MigrateOnStart {
		if err := postgres.Migrate(ctx, db, log); err != nil {
			return err
		}
	}

	// Initialize repositories
	repos := postgres.NewRepositories(db)
	checks := map[string]handlers.Check{
		"database": func(ctx context.Context) error { return postgres.Ping(ctx, db) },
	}

	switch cfg.SessionStore {
	case config.SessionStoreRedis:
		client, err := redisrepo.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		repos.Session = redisrepo.NewSessionRepository(client)
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	case config.SessionStoreMemory:
		log.Warn("using in-memory session store, sessions are lost on restart")
		repos.Session = memory.NewSessionRepository()
	}

	// Initialize services
	services, err := service.NewServices(repos, cfg, service.DefaultArgon2Params)
	if err != nil {
		return err
	}

	go services.Session.RunSweeper(ctx, cfg.SessionSweepInterval, log)

	// Initialize router
	router := api.NewRouter(services, cfg, log, checks)

	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server starting",
			slog.String("port", cfg.Port),
			slog.String("environment", cfg.Environment),
			slog.String("session_store", cfg.SessionStore),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	closeDB(db, log)

	log.Info("server stopped")
	return nil
}

func closeDB(db *gorm.DB, log *slog.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn("failed to close database", slog.Any("error", err))
	}
}
