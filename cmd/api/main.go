// Package main is the entry point for the Ryokou API server.
// Its sole responsibility is wiring dependencies together and starting the
// server. No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ryokou-app/backend/internal/config"
	"github.com/ryokou-app/backend/internal/flightdata"
	"github.com/ryokou-app/backend/internal/handler"
	"github.com/ryokou-app/backend/internal/middleware"
	"github.com/ryokou-app/backend/internal/rates"
	"github.com/ryokou-app/backend/internal/service"
	"github.com/ryokou-app/backend/internal/store"
	"github.com/ryokou-app/backend/spec"
)

// maxBodySize caps request bodies at 1 MiB. Trip documents are small; a
// larger body is always a mistake or abuse.
const maxBodySize = 1 << 20

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	// JSON handler writes machine-readable output suitable for log aggregators.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	// pgxpool manages a pool of Postgres connections.
	// New() does not open connections immediately — the first query does.
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

	// --- Collaborators ----------------------------------------------------
	var rateCache rates.Cache
	if cfg.RedisURL != "" {
		rateCache, err = rates.NewRedisCache(cfg.RedisURL, 0)
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		slog.Info("redis rate cache enabled")
	} else {
		rateCache = rates.NewMemoryCache(0)
	}
	rateClient := rates.NewClient(cfg.RatesBaseURL, rateCache)
	flightClient := flightdata.NewClient(cfg.FlightsBaseURL, cfg.FlightsAPIKey)
	if cfg.FlightsAPIKey == "" {
		slog.Warn("AVIATIONSTACK_API_KEY not set; flight time lookups disabled")
	}

	// --- Services ---------------------------------------------------------
	trips := store.NewTripStore(pool)
	tripSvc := service.NewTripService(trips)
	memberSvc := service.NewMemberService(trips)
	ledgerSvc := service.NewLedgerService(trips)
	currencySvc := service.NewCurrencyService(trips, rateClient)
	flightSvc := service.NewFlightService(trips, flightClient)

	// --- Router -----------------------------------------------------------
	// Middleware order: RequestID → RealIP → Logger → Recoverer → CORS →
	// body limit → identity. RequestID first so every log line carries it;
	// identity last so rejected requests are still logged.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(maxBodySize))
	r.Use(middleware.NewIdentityHandler(cfg.AuthSecret))

	server := handler.NewServer(tripSvc, memberSvc, ledgerSvc, currencySvc, flightSvc)
	r.Mount("/", server.Routes())

	r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(spec.OpenAPI)
	})

	// --- HTTP Server ------------------------------------------------------
	// ReadHeaderTimeout rather than ReadTimeout: the watch endpoint holds
	// its connection open indefinitely, and WriteTimeout would kill it too.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
