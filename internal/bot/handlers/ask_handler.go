package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/friendbook/internal/botapi"
)

const maxQuestionLength = 500

// NewAskHandler returns a handler for the /ask <id> <question> command.
func NewAskHandler(deps HandlerDeps) bot.HandlerFunc {
	return askHandler{deps}.Handle
}

type askHandler struct {
	deps HandlerDeps
}

func (h askHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "ask")

	if update.Message == nil {
		log.WarnContext(ctx, "Ask handler received update with nil message", "update_id", update.ID)
		return
	}
	chatID := update.Message.Chat.ID

	args := commandArgs(update.Message.Text)
	if len(args) < 2 {
		sendText(ctx, b, log, chatID,
			"❌ Usage: /ask <id> <question>\nExample: /ask 1 What are the main challenges in this profession?")
		return
	}

	friendID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		sendText(ctx, b, log, chatID, "❌ The ID must be a number.")
		return
	}

	question := strings.Join(args[1:], " ")
	if !withinLimit(question, maxQuestionLength) {
		sendText(ctx, b, log, chatID, "❌ The question must be between 1 and 500 characters.")
		return
	}

	sendText(ctx, b, log, chatID, fmt.Sprintf("🤔 Thinking about friend #%d...", friendID))

	answer, err := h.deps.API.Ask(ctx, friendID, question)
	if err != nil {
		if botapi.NotFound(err) {
			sendText(ctx, b, log, chatID, fmt.Sprintf("❌ No friend with ID %d.", friendID))
			return
		}
		log.ErrorContext(ctx, "Failed to get answer", "error", err, "friend_id", friendID, "chat_id", chatID)
		sendText(ctx, b, log, chatID, "❌ Could not get an answer. Please try again later.")
		return
	}

	sendText(ctx, b, log, chatID, fmt.Sprintf("💬 Answer:\n\n%s", answer))
}
