// Package main is the entry point for the trip planner API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/joho/godotenv"

	"github.com/ecoroute/trip-planner/backend/api"
	"github.com/ecoroute/trip-planner/backend/internal/auth"
	"github.com/ecoroute/trip-planner/backend/internal/config"
	"github.com/ecoroute/trip-planner/backend/internal/gateway"
	"github.com/ecoroute/trip-planner/backend/internal/handler"
	"github.com/ecoroute/trip-planner/backend/internal/metrics"
	"github.com/ecoroute/trip-planner/backend/internal/middleware"
	"github.com/ecoroute/trip-planner/backend/internal/repo"
	"github.com/ecoroute/trip-planner/backend/internal/service"
	"github.com/ecoroute/trip-planner/backend/migrations"
)

func main() {
	// --- Config -----------------------------------------------------------
	// A missing .env file is normal in containers; real env vars win either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	if cfg.AutoMigrate {
		if err := migrate(cfg.DatabaseURL); err != nil {
			slog.Error("failed to apply migrations", "error", err)
			os.Exit(1)
		}
	}

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	// --- Services ---------------------------------------------------------
	verifier, err := newVerifier(cfg.Auth)
	if err != nil {
		slog.Error("failed to configure identity provider", "error", err)
		os.Exit(1)
	}

	trips := repo.NewTripRepo(pool)
	collector := metrics.NewCollector("trip_planner")
	authz := service.NewAuthorizer(verifier, trips)
	completions := gateway.NewClient(gateway.Config{
		URL:         cfg.AI.GatewayURL,
		APIKey:      cfg.AI.APIKey,
		Model:       cfg.AI.Model,
		MaxTokens:   cfg.AI.MaxTokens,
		Temperature: cfg.AI.Temperature,
		Timeout:     cfg.AI.Timeout,
	}, &http.Client{})
	planner := service.NewPlannerService(authz, completions, trips, collector, logger)
	server := handler.NewServer(planner, service.NewTripService(trips), authz, logger)

	// --- Router -----------------------------------------------------------
	// Middleware order: RequestID → RealIP → Logger → Recoverer → CORS → body limit.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	r.Handle("/metrics", collector.Handler())
	r.Handle("/openapi.yaml", api.Handler())
	r.Mount("/", server.Routes())

	// --- HTTP Server ------------------------------------------------------
	// A planning request may make two gateway calls, each bounded by AI_TIMEOUT.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      2*cfg.AI.Timeout + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then let in-flight requests finish.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "model", completions.Model(), "auth_provider", cfg.Auth.Provider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), srv.WriteTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// migrate applies pending goose migrations over a short-lived database/sql connection.
func migrate(dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	applied, err := migrations.Up(ctx, db)
	if err != nil {
		return err
	}
	slog.Info("migrations applied", "versions", applied)
	return nil
}

func newVerifier(cfg config.AuthConfig) (service.IdentityVerifier, error) {
	switch cfg.Provider {
	case config.AuthSupabase:
		v, err := auth.NewSupabaseVerifier(cfg.SupabaseURL, cfg.SupabaseServiceKey)
		if err != nil {
			return nil, err
		}
		return v, nil
	default:
		return auth.NewJWTVerifier(cfg.JWTSecret, cfg.JWTAudience), nil
	}
}
