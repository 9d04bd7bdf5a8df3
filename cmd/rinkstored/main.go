package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/config"
	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/devstore"
	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/health"
	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/logger"
	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/remote"
	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/remote/memstore"
	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/remote/postgres"
)

func main() {
	// Optional store-driver flag override (memory | postgres)
	storeDriver := flag.String("store-driver", "", "Override STORE_DRIVER (memory, postgres)")
	flag.Parse()

	cfg, err := config.New()
	if err != nil {
		fallback := logger.New("rinkstored", "info")
		fallback.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *storeDriver != "" {
		cfg.StoreDriver = *storeDriver
		if err := cfg.ResolveDefaults(); err != nil {
			fallback := logger.New("rinkstored", "info")
			fallback.Fatal().Err(err).Msg("Invalid store-driver override")
		}
	}

	log := logger.New("rinkstored", cfg.LogLevel)

	log.Info().
		Str("store_driver", cfg.StoreDriver).
		Int("http_port", cfg.HTTPPort).
		Msg("Rink store service starting…")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// -------- Storage layer -----------------
	var store remote.Store
	opts := []devstore.Option{}
	if cfg.APIKey != "" {
		opts = append(opts, devstore.WithAPIKey(cfg.APIKey))
	}
	switch cfg.StoreDriver {
	case "postgres":
		pg, err := postgres.New(cfg.PostgresDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("Postgres store unavailable")
		}
		defer func() { _ = pg.Close() }()
		store = pg

		// -------- Health monitor ---------------
		dbCheck := health.NewPingChecker("postgres", pg, log, 2*time.Second)
		agg := health.NewAggregate(log, dbCheck)
		go dbCheck.Start(ctx, 30*time.Second)
		go agg.Start(ctx, 30*time.Second)
		opts = append(opts, devstore.WithReadiness(agg.IsHealthy))
	default:
		store = memstore.New()
	}

	// -------- Router & Server --------------
	srv := devstore.New(store, log, opts...)
	server := &http.Server{
		Addr:         cfg.GetHTTPAddr(),
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server…")
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}
