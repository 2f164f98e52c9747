package handlers

import (
	"log/slog"

	session "github.com/edgard/friendbook/internal/bot"
	"github.com/edgard/friendbook/internal/botapi"
	"github.com/edgard/friendbook/internal/config"
)

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger   *slog.Logger
	Config   *config.Config
	API      *botapi.Client
	Sessions *session.SessionStore
}
