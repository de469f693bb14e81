package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/fragdeck/internal/api"
	"github.com/dgallion1/fragdeck/internal/config"
	"github.com/dgallion1/fragdeck/internal/render"
	"github.com/dgallion1/fragdeck/internal/stats"
	"github.com/dgallion1/fragdeck/internal/viewer"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Session store with background eviction.
	store := viewer.NewStore(cfg.SessionTTL)
	go store.Run(ctx, cfg.CleanupInterval, log.With("component", "store"))

	srv := api.NewServer(store, render.NewEvaluator(nil), stats.NewBuildStats(time.Hour), log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting fragdeck", "port", cfg.Port, "auth", cfg.APIKey != "", "session_ttl", cfg.SessionTTL.String())
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
