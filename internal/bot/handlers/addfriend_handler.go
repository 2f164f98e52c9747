package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewAddFriendHandler returns a handler for the /addfriend command, which
// starts the step-by-step add-friend conversation.
func NewAddFriendHandler(deps HandlerDeps) bot.HandlerFunc {
	return addFriendHandler{deps}.Handle
}

type addFriendHandler struct {
	deps HandlerDeps
}

func (h addFriendHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "addfriend")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Addfriend handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	userID := update.Message.From.ID
	h.deps.Sessions.Begin(userID)
	log.InfoContext(ctx, "Started add-friend conversation", "user_id", userID, "chat_id", update.Message.Chat.ID)

	sendText(ctx, b, log, update.Message.Chat.ID,
		"📸 Step 1/4: Send a photo of your friend\n\nUse /cancel to abort")
}
