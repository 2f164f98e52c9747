// Package main contains the entrypoint for the Telegram bot application.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/joho/godotenv"

	"github.com/edgard/friendbook/internal/bot"
	"github.com/edgard/friendbook/internal/bot/handlers"
	"github.com/edgard/friendbook/internal/botapi"
	"github.com/edgard/friendbook/internal/config"
	"github.com/edgard/friendbook/internal/logger"
	"github.com/edgard/friendbook/internal/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes and starts all bot components (config, logger, API client,
// sessions, Telegram client, scheduler), handles graceful shutdown, and
// returns an exit code (0 for success, 1 for failure).
func run(ctx context.Context) int {
	_ = godotenv.Load()

	cfg, err := config.Load(true)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format == "json")
	log.Info("Logger initialized", "level", cfg.Log.Level, "format", cfg.Log.Format)

	apiClient := botapi.NewClient(cfg.Bot.APIBaseURL, log)
	sessions := bot.NewSessionStore(log)

	hDeps := handlers.HandlerDeps{
		Logger:   log,
		Config:   cfg,
		API:      apiClient,
		Sessions: sessions,
	}

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.UpdateMiddleware(log)),
		tgbot.WithDefaultHandler(handlers.NewConversationHandler(hDeps)),
	}
	tg, err := telegram.NewTelegramBot(cfg.Bot.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	cmdHandlers := handlers.RegisterAllCommands(hDeps)
	if err := telegram.RegisterHandlers(tg, log, cmdHandlers); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}
	if err := telegram.SetCommands(ctx, tg, log, cmdHandlers); err != nil {
		log.Warn("Failed to publish bot command menu", "error", err)
	}

	sched, err := bot.NewScheduler(log, sessions, cfg.Bot.SessionTTL, cfg.Bot.SweepInterval)
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	app := bot.NewBot(log, cfg, apiClient, sessions, tg, sched)

	log.Info("Starting bot...")
	runErr := app.Run(ctx)
	log.Info("Bot run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}
