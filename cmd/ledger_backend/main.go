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

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/SscSPs/ledger_engine/internal/adapters/database/memory"
	"github.com/SscSPs/ledger_engine/internal/adapters/database/pgsql"
	"github.com/SscSPs/ledger_engine/internal/adapters/messaging/kafka"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_engine/internal/core/services"
	"github.com/SscSPs/ledger_engine/internal/handlers"
	"github.com/SscSPs/ledger_engine/internal/middleware"
	"github.com/SscSPs/ledger_engine/internal/outbox"
	"github.com/SscSPs/ledger_engine/internal/platform/config"
	"github.com/SscSPs/ledger_engine/pkg/database"
)

const shutdownTimeout = 15 * time.Second

// @title Ledger Engine API
// @version 1.0
// @description Double-entry ledger: chart of accounts, journal entries, fiscal periods and financial reports.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		// logger is not initialized yet
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("Ledger backend stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Ledger backend stopped")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	repos, closeStore, err := openStore(appCtx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	serviceContainer := services.NewServiceContainer(cfg, repos)

	if err := handlers.RegisterValidators(); err != nil {
		return fmt.Errorf("failed to register validators: %w", err)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if err := r.SetTrustedProxies(nil); err != nil {
		return fmt.Errorf("failed to set trusted proxies: %w", err)
	}

	rateLimiter, err := middleware.NewRateLimiter(cfg.RateLimit)
	if err != nil {
		return fmt.Errorf("failed to create rate limiter: %w", err)
	}

	r.Use(
		gin.Recovery(),
		middleware.StructuredLoggingMiddleware(logger),
		middleware.MetricsMiddleware(),
		cors.New(cors.Config{
			AllowOrigins:     cfg.CORSAllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		middleware.RateLimit(rateLimiter),
	)

	handlers.RegisterRoutes(r, cfg, serviceContainer)

	relay, err := startRelay(appCtx, cfg, repos.Outbox, logger)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("storage", cfg.StorageDriver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var serverErr error
	select {
	case sig := <-quit:
		logger.Info("Shutdown signal received", slog.String("signal", sig.String()))
	case serverErr = <-errChan:
	}

	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	logger.Info("Starting graceful shutdown...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during server shutdown", slog.String("error", err.Error()))
	}
	if relay != nil {
		if err := relay.Close(); err != nil {
			logger.Error("Error closing outbox relay", slog.String("error", err.Error()))
		}
	}

	return serverErr
}

// openStore builds the configured repositories and returns a func that
// releases them.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		logger.Warn("Using in-memory storage; ledger data will not survive a restart")
		var opts []memory.Option
		if len(cfg.Kafka.Brokers) == 0 {
			logger.Info("No outbox relay will run; in-memory outbox messages are discarded")
			opts = append(opts, memory.WithoutOutbox())
		}
		return memory.New(opts...).Provider(), func() {}, nil

	case config.StoragePostgres:
		if cfg.RunMigrations {
			logger.Info("Running database migrations...")
			if err := database.RunMigrations(cfg.DatabaseURL, pgsql.Migrations()); err != nil {
				return portsrepo.RepositoryProvider{}, nil, fmt.Errorf("failed to apply migrations: %w", err)
			}
		}

		dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return portsrepo.RepositoryProvider{}, nil, fmt.Errorf("failed to initialize database pool: %w", err)
		}
		logger.Info("Database connection pool established.")
		return pgsql.NewRepositoryProvider(dbPool), func() { database.ClosePgxPool(dbPool) }, nil

	default:
		return portsrepo.RepositoryProvider{}, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// startRelay starts publishing outbox messages to Kafka. It returns a nil
// relay when no brokers are configured; messages then stay PENDING.
func startRelay(ctx context.Context, cfg *config.Config, repo portsrepo.OutboxRepository, logger *slog.Logger) (*outbox.Relay, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		logger.Info("Kafka brokers not configured; outbox relay disabled")
		return nil, nil
	}

	publisher, err := kafka.NewEventPublisher(logger, cfg.Kafka)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Kafka publisher: %w", err)
	}

	relay, err := outbox.NewRelay(cfg.Outbox, repo, publisher, logger)
	if err != nil {
		_ = publisher.Close()
		return nil, fmt.Errorf("failed to initialize outbox relay: %w", err)
	}

	go relay.Start(ctx)
	return relay, nil
}
