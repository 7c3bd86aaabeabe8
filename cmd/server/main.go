package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wanderstay/wanderstay/internal"
	"github.com/wanderstay/wanderstay/internal/handler"
	"github.com/wanderstay/wanderstay/internal/jobs"
	"github.com/wanderstay/wanderstay/internal/metrics"
	"github.com/wanderstay/wanderstay/internal/middleware"
	"github.com/wanderstay/wanderstay/internal/repository"
	"github.com/wanderstay/wanderstay/internal/service"
	"github.com/wanderstay/wanderstay/internal/storage"
	"github.com/wanderstay/wanderstay/internal/worker"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database connection
	db, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	// Run migrations
	if err := internal.RunMigrations(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database ready")

	// Initialize repository
	repo := repository.New(db)

	// Initialize storage
	var store storage.Storage
	switch cfg.StorageProvider {
	case storage.ProviderR2:
		store, err = storage.NewR2Storage(storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicURL:       cfg.R2PublicURL,
		}, logger)
	default:
		store, err = storage.NewLocalStorage(storage.LocalConfig{
			BasePath: cfg.LocalStoragePath,
			BaseURL:  cfg.LocalStorageURL,
		}, logger)
	}
	if err != nil {
		return fmt.Errorf("storage initialization failed: %w", err)
	}
	logger.Info("Storage ready", "provider", cfg.StorageProvider)

	// Initialize services
	userService := service.NewUserService(repo, logger, service.UserServiceConfig{
		SessionDuration: cfg.SessionDuration,
	})
	propertyService := service.NewPropertyService(repo, logger)
	bookingService := service.NewBookingService(repo, worker.NewScheduler(repo), logger)
	photoService := service.NewPhotoService(repo, store, service.NewImagingProcessor(), logger)
	favoriteService := service.NewFavoriteService(repo, logger)
	messageService := service.NewMessageService(repo, logger)

	// Initialize middleware
	isSecure := cfg.Env != "development"
	authMw := middleware.NewAuthMiddleware(userService, logger, isSecure)
	loggingMw := middleware.NewRequestLoggingMiddleware(logger)
	securityMw := middleware.NewSecurityHeadersMiddleware(isSecure)
	metricsAuthMw := middleware.NewMetricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword)
	authLimiter := middleware.NewAuthRateLimiter(logger)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(userService, photoService, authLimiter, logger, isSecure)
	propertyHandler := handler.NewPropertyHandler(propertyService, photoService, logger)
	bookingHandler := handler.NewBookingHandler(bookingService, logger)
	favoriteHandler := handler.NewFavoriteHandler(favoriteService, logger)
	messageHandler := handler.NewMessageHandler(messageService, logger)

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Metrics scrape endpoint, behind basic auth when configured
	mux.Handle("GET /metrics", metricsAuthMw.Handler(promhttp.Handler()))

	// Locally stored files (development)
	if cfg.StorageProvider == storage.ProviderLocal {
		filesFS := http.FileServer(http.Dir(cfg.LocalStoragePath))
		mux.Handle("GET /files/", http.StripPrefix("/files/", filesFS))
	}

	authHandler.RegisterRoutes(mux, authMw.WithUser, authMw.RequireUser)
	propertyHandler.RegisterRoutes(mux, authMw.WithUser, authMw.RequireUser)
	bookingHandler.RegisterRoutes(mux, authMw.WithUser, authMw.RequireUser)
	favoriteHandler.RegisterRoutes(mux, authMw.WithUser, authMw.RequireUser)
	messageHandler.RegisterRoutes(mux, authMw.WithUser, authMw.RequireUser)

	rootHandler := securityMw.Handler(loggingMw.Handler(metrics.Middleware(mux)))

	// ==========================================================================
	// Start background worker
	// ==========================================================================

	var jobWorker *worker.Worker
	if cfg.WorkerEnabled {
		workerCfg := worker.DefaultConfig()
		workerCfg.Concurrency = cfg.WorkerConcurrency
		workerCfg.PollInterval = cfg.WorkerPollInterval
		workerCfg.JobTimeout = cfg.WorkerJobTimeout

		jobWorker, err = worker.New(db, repo, workerCfg, logger)
		if err != nil {
			return fmt.Errorf("worker initialization failed: %w", err)
		}
		jobWorker.Register(jobs.NewCompleteBookingHandler(repo, logger))
		jobWorker.Register(jobs.NewCleanupSessionsHandler(repo, logger))
		jobWorker.Start(ctx)

		// Expired sessions are swept periodically; enqueueing is idempotent
		// enough since completed jobs are cheap.
		if _, err := worker.EnqueueCleanupSessions(ctx, repo); err != nil {
			logger.Error("failed to enqueue session cleanup", "error", err)
		}
	}

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: rootHandler,
	}

	// Channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	<-sigChan
	logger.Info("Shutdown signal received, initiating graceful shutdown...")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}
	if jobWorker != nil {
		jobWorker.Stop()
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
