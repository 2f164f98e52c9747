package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const helpText = "📚 Command reference:\n\n" +
	"/addfriend - Add a friend\n" +
	"Step by step:\n" +
	"1️⃣ Send a photo\n" +
	"2️⃣ Enter the name\n" +
	"3️⃣ Enter the profession\n" +
	"4️⃣ Enter a description (or skip)\n\n" +
	"/list - Show all friends\n" +
	"Lists names and professions\n\n" +
	"/friend <id> - Show a friend\n" +
	"Example: /friend 1\n\n" +
	"/ask <id> <question> - Ask about a profession\n" +
	"Example: /ask 1 What are the main challenges in this profession?\n\n" +
	"/cancel - Cancel the current operation"

// NewHelpHandler returns a handler for the /help command.
func NewHelpHandler(deps HandlerDeps) bot.HandlerFunc {
	return helpHandler{deps}.Handle
}

type helpHandler struct {
	deps HandlerDeps
}

func (h helpHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "help")

	if update.Message == nil {
		log.WarnContext(ctx, "Help handler received update with nil message", "update_id", update.ID)
		return
	}

	_, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: update.Message.Chat.ID, Text: helpText})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send help message", "error", err, "chat_id", update.Message.Chat.ID)
	}
}
