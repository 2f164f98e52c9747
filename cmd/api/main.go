// Package main contains the entrypoint for the friends directory API service.
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

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/edgard/friendbook/internal/answer"
	"github.com/edgard/friendbook/internal/api"
	"github.com/edgard/friendbook/internal/config"
	"github.com/edgard/friendbook/internal/database"
	"github.com/edgard/friendbook/internal/logger"
	"github.com/edgard/friendbook/internal/media"

	_ "modernc.org/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes and starts all application components (config, logger, db,
// media processor, answer provider, HTTP server), handles graceful shutdown,
// and returns an exit code (0 for success, 1 for failure).
func run(ctx context.Context) int {
	// A local .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load(false)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format == "json")
	log.Info("Logger initialized", "level", cfg.Log.Level, "format", cfg.Log.Format)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	processor, err := media.NewProcessor(cfg.Server.MediaDir, log)
	if err != nil {
		log.Error("Failed to initialize media processor", "dir", cfg.Server.MediaDir, "error", err)
		return 1
	}

	provider := answer.New(ctx, cfg.AI, log)

	handler := api.NewHandler(log, store, processor, provider)
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Starting HTTP server", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		log.Info("Shutdown signal received, stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Server stopped due to error", "error", err)
		return 1
	}

	log.Info("Server stopped gracefully.")
	return 0
}
