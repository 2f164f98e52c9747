package handlers

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/friendbook/internal/botapi"
)

// NewFriendHandler returns a handler for the /friend <id> command.
func NewFriendHandler(deps HandlerDeps) bot.HandlerFunc {
	return friendHandler{deps}.Handle
}

type friendHandler struct {
	deps HandlerDeps
}

func (h friendHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "friend")

	if update.Message == nil {
		log.WarnContext(ctx, "Friend handler received update with nil message", "update_id", update.ID)
		return
	}
	chatID := update.Message.Chat.ID

	args := commandArgs(update.Message.Text)
	if len(args) == 0 {
		sendText(ctx, b, log, chatID, "❌ Please provide a friend ID.\nExample: /friend 1")
		return
	}

	friendID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		sendText(ctx, b, log, chatID, "❌ The ID must be a number.")
		return
	}

	friend, err := h.deps.API.GetFriend(ctx, friendID)
	if err != nil {
		if botapi.NotFound(err) {
			sendText(ctx, b, log, chatID, fmt.Sprintf("❌ No friend with ID %d.", friendID))
			return
		}
		log.ErrorContext(ctx, "Failed to fetch friend", "error", err, "friend_id", friendID, "chat_id", chatID)
		sendText(ctx, b, log, chatID, "❌ Could not load the friend. Please try again later.")
		return
	}

	sendText(ctx, b, log, chatID, formatFriendDetails(friend))

	photoURL := h.deps.API.PhotoURL(friend.PhotoURL)
	_, err = b.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID: chatID,
		Photo:  &models.InputFileString{Data: photoURL},
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send friend photo", "error", err, "photo_url", photoURL, "chat_id", chatID)
		sendText(ctx, b, log, chatID, "⚠️ Could not load the photo")
	}
}
