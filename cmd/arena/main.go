package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	arenahttp "github.com/enterprisearena/arena/internal/adapter/http"
	"github.com/enterprisearena/arena/internal/adapter/memory"
	arenanats "github.com/enterprisearena/arena/internal/adapter/nats"
	"github.com/enterprisearena/arena/internal/adapter/otel"
	"github.com/enterprisearena/arena/internal/adapter/postgres"
	"github.com/enterprisearena/arena/internal/adapter/ristretto"
	"github.com/enterprisearena/arena/internal/adapter/sandbox"
	"github.com/enterprisearena/arena/internal/adapter/ws"
	"github.com/enterprisearena/arena/internal/config"
	"github.com/enterprisearena/arena/internal/logger"
	"github.com/enterprisearena/arena/internal/middleware"
	"github.com/enterprisearena/arena/internal/port/history"
	"github.com/enterprisearena/arena/internal/resilience"
	"github.com/enterprisearena/arena/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log := logger.New(cfg.Logging)
	log.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"max_concurrent_tasks", cfg.Engine.MaxConcurrentTasks,
	)

	ctx := context.Background()

	// --- Telemetry ---
	shutdownOtel, err := otel.Setup(ctx, cfg.Logging.Service, cfg.Telemetry.Endpoint, cfg.Telemetry.Insecure)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownOtel(shutdownCtx)
	}()

	// --- History store ---
	var store history.Store
	if cfg.Postgres.DSN != "" {
		pool, err := postgres.NewPool(ctx, cfg.Postgres)
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		defer pool.Close()

		if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		log.Info("postgres history store ready")
		store = postgres.NewStore(pool)
	} else {
		log.Info("in-memory history store ready", "limit", cfg.Engine.HistoryLimit)
		store = memory.NewHistory(cfg.Engine.HistoryLimit)
	}

	// --- Record cache ---
	recordCache, err := ristretto.New(cfg.Cache.MaxCostBytes)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer recordCache.Close()

	// --- Platform registry ---
	breakers := resilience.NewSet(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout)
	registry := service.NewRegistry(breakers, log)

	sandboxOpts := func(pc config.PlatformConfig) []sandbox.Option {
		opts := []sandbox.Option{sandbox.WithCache(recordCache, cfg.Cache.TTL)}
		if pc.Latency > 0 {
			opts = append(opts, sandbox.WithLatency(pc.Latency))
		}
		return opts
	}
	if pc := cfg.Platforms.Salesforce; pc.Enabled {
		registry.Register(sandbox.NewSalesforce(pc.Credentials, sandboxOpts(pc)...))
	}
	if pc := cfg.Platforms.ServiceNow; pc.Enabled {
		registry.Register(sandbox.NewServiceNow(pc.Credentials, sandboxOpts(pc)...))
	}
	if pc := cfg.Platforms.NetSuite; pc.Enabled {
		registry.Register(sandbox.NewNetSuite(pc.Credentials, sandboxOpts(pc)...))
	}
	if pc := cfg.Platforms.QuickBooks; pc.Enabled {
		registry.Register(sandbox.NewQuickBooks(pc.Credentials, sandboxOpts(pc)...))
	}

	if err := registry.ConnectAll(ctx); err != nil {
		return fmt.Errorf("platforms: %w", err)
	}
	defer registry.DisconnectAll(ctx)

	// --- Engine ---
	engine := service.NewEngine(registry, store, log, service.Options{
		MaxConcurrentTasks:   cfg.Engine.MaxConcurrentTasks,
		DefaultStepTimeout:   cfg.Engine.DefaultStepTimeout,
		DefaultTaskTimeout:   cfg.Engine.DefaultTaskTimeout,
		DefaultRetryDelay:    cfg.Engine.DefaultRetryDelay,
		RequireCompletedDeps: cfg.Engine.RequireCompletedDeps,
	})

	metrics, err := otel.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	engine.SetMetrics(metrics)

	hub := ws.NewHub()
	engine.AddBroadcaster(hub)

	if cfg.NATS.URL != "" {
		events, err := arenanats.Connect(ctx, cfg.NATS.URL)
		if err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		defer func() { _ = events.Close() }()
		engine.AddBroadcaster(events)
	}

	library, err := service.NewLibrary(cfg.Engine.TaskDirectory, log)
	if err != nil {
		return fmt.Errorf("task library: %w", err)
	}

	// --- HTTP ---
	handlers := arenahttp.NewHandlers(engine, library, registry, store)

	r := chi.NewRouter()
	r.Use(arenahttp.CORS(cfg.Server.CORSOrigin))
	r.Use(arenahttp.SecurityHeaders)
	r.Use(middleware.RequestID)
	r.Use(arenahttp.Logger)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(otel.HTTPMiddleware(cfg.Logging.Service))

	arenahttp.MountRoutes(r, handlers, hub.HandleWS)

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info("starting server", "addr", addr, "platforms", len(registry.Platforms()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "error", err)
		}
	}()

	<-done
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
