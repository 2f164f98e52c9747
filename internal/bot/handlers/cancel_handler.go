package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewCancelHandler returns a handler for the /cancel command.
func NewCancelHandler(deps HandlerDeps) bot.HandlerFunc {
	return cancelHandler{deps}.Handle
}

type cancelHandler struct {
	deps HandlerDeps
}

func (h cancelHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "cancel")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Cancel handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	userID := update.Message.From.ID
	if !h.deps.Sessions.Cancel(userID) {
		sendText(ctx, b, log, update.Message.Chat.ID, "Nothing to cancel. Use /addfriend to add a friend.")
		return
	}

	log.InfoContext(ctx, "Cancelled add-friend conversation", "user_id", userID)
	sendText(ctx, b, log, update.Message.Chat.ID,
		"❌ Operation cancelled.\n\nUse /help to see the available commands.")
}
