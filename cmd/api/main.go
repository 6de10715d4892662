package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"economy-ledger/config"
	httpHandler "economy-ledger/internal/adapter/http/handler"
	memoryStorage "economy-ledger/internal/adapter/storage/memory"
	pgStorage "economy-ledger/internal/adapter/storage/postgres"
	redisStorage "economy-ledger/internal/adapter/storage/redis"
	"economy-ledger/internal/core/ports"
	"economy-ledger/internal/service"
	"economy-ledger/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Str("backend", cfg.Storage.Backend).
		Int("port", cfg.Server.Port).
		Msg("Starting economy ledger")

	ctx := context.Background()

	// Currency registry and restriction policy, fixed for the process lifetime
	provider, err := service.ProviderFromConfig(cfg.Currencies)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid currency configuration")
	}
	policy, err := service.PolicyFromConfig(cfg.Restrictions)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid restriction configuration")
	}

	// Storage backend selection
	var (
		store      ports.AccountStore
		publisher  ports.TransactionPublisher
		checkers   []ports.HealthChecker
		rateLimits *redisStorage.RateLimitStore
	)
	switch cfg.Storage.Backend {
	case "postgres":
		pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer pool.Close()
		store = pgStorage.NewAccountStore(pool)
		checkers = append(checkers, pgStorage.NewHealthCheck(pool))
	case "redis":
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		store = redisStorage.NewAccountStore(rdb)
		publisher = redisStorage.NewTransactionPublisher(rdb)
		rateLimits = redisStorage.NewRateLimitStore(rdb)
		checkers = append(checkers, redisStorage.NewHealthCheck(rdb))
	case "memory":
		store = memoryStorage.NewAccountStore()
	default:
		log.Fatal().Str("backend", cfg.Storage.Backend).Msg("Unknown storage backend")
	}

	// Event publishing and rate limiting ride on Redis even when accounts
	// live in PostgreSQL, as long as Redis is reachable.
	if publisher == nil && cfg.Storage.Backend == "postgres" {
		if rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log); err == nil {
			defer rdb.Close()
			publisher = redisStorage.NewTransactionPublisher(rdb)
			rateLimits = redisStorage.NewRateLimitStore(rdb)
			checkers = append(checkers, redisStorage.NewHealthCheck(rdb))
		} else {
			log.Warn().Err(err).Msg("Redis unavailable, transaction events and rate limiting disabled")
		}
	}

	eco := service.NewEconomy(provider, policy, store, publisher, log)
	defer eco.Close()

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		Economy:        eco,
		HealthCheckers: checkers,
		RateLimits:     rateLimits,
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
