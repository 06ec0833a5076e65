package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	gocache "github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	database "github.com/FACorreiaa/trip-tailor/app/db"
	appLogger "github.com/FACorreiaa/trip-tailor/app/logger"
	"github.com/FACorreiaa/trip-tailor/app/observability/metrics"
	"github.com/FACorreiaa/trip-tailor/app/tracer"
	"github.com/FACorreiaa/trip-tailor/config"
	"github.com/FACorreiaa/trip-tailor/internal/api/auth"
	"github.com/FACorreiaa/trip-tailor/internal/api/city"
	generativeAI "github.com/FACorreiaa/trip-tailor/internal/api/generative_ai"
	"github.com/FACorreiaa/trip-tailor/internal/api/sharing"
	"github.com/FACorreiaa/trip-tailor/internal/api/trip"
	"github.com/FACorreiaa/trip-tailor/internal/router"
)

func main() {
	// Use standard log until slog is configured, in case godotenv fails.
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	logger := setupLogger(cfg.Mode)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// --- Database ---
	dbConfig, err := database.NewDatabaseConfig(&cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		os.Exit(1)
	}

	if err = database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
		logger.Error("Failed to run database migrations", slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if !database.WaitForDB(ctx, pool, logger) {
		logger.Error("Database not ready after waiting, exiting.")
		os.Exit(1)
	}

	// --- Observability ---
	if err = tracer.InitTracingAndMetrics(); err != nil {
		logger.Error("Failed to initialize tracing and metrics", slog.Any("error", err))
		os.Exit(1)
	}
	metrics.InitAppMetrics()

	// --- Generation client ---
	aiClient, err := generativeAI.NewAIClient(ctx, cfg.Generation.Model)
	if err != nil {
		logger.Error("Failed to initialize generation client", slog.Any("error", err))
		os.Exit(1)
	}

	// --- Dependency wiring ---
	authRepo := auth.NewRepository(pool, logger)
	authService := auth.NewServiceImpl(authRepo, cfg.JWT, logger)
	authHandler := auth.NewHandler(authService, logger)

	tripRepo := trip.NewRepository(pool, logger)
	tripService := trip.NewServiceImpl(tripRepo, aiClient, logger)
	tripHandler := trip.NewHandler(tripService, logger)

	publicTripCache := gocache.New(5*time.Minute, 10*time.Minute)
	sharingRepo := sharing.NewRepository(pool, logger)
	sharingService := sharing.NewServiceImpl(sharingRepo, publicTripCache, cfg.Server.BaseURL, logger)
	sharingHandler := sharing.NewHandler(sharingService, logger)

	cityService := city.NewServiceImpl(cfg.Places.GeoNamesBaseURL, cfg.Places.GeoNamesUsername, logger)
	cityHandler := city.NewHandler(cityService, logger)

	apiRouter := router.SetupRouter(&router.Config{
		AuthHandler:            authHandler,
		TripHandler:            tripHandler,
		SharingHandler:         sharingHandler,
		CityHandler:            cityHandler,
		AuthenticateMiddleware: auth.Authenticate(logger, cfg.JWT),
	})

	mux := chi.NewMux()
	mux.Use(chiMiddleware.RequestID)
	mux.Use(chiMiddleware.RealIP)
	mux.Use(appLogger.StructuredLogger(logger))
	mux.Use(chiMiddleware.Recoverer)
	mux.Use(chiMiddleware.StripSlashes)
	mux.Use(chiMiddleware.Timeout(cfg.Server.Timeout))
	mux.Use(chiMiddleware.Compress(5, "application/json"))
	mux.Mount("/", apiRouter)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.HTTPPort),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Handlers.Prometheus.Port),
		Handler: metricsMux,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("Starting metrics server", slog.String("address", metricsSrv.Addr))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutdown signal received, starting graceful shutdown...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server graceful shutdown failed", slog.Any("error", err))
		}
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Metrics server graceful shutdown failed", slog.Any("error", err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Application shut down complete.")
}

// setupLogger configures the application logger: colored text in
// development, JSON elsewhere.
func setupLogger(mode string) *slog.Logger {
	if mode == "development" || mode == "" {
		tintOpts := &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}
		return slog.New(tint.NewHandler(os.Stdout, tintOpts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
