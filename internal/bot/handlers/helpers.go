package handlers

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/go-telegram/bot"
)

// sendText sends a plain text message and logs delivery failures.
func sendText(ctx context.Context, b *bot.Bot, log *slog.Logger, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send message", "error", err, "chat_id", chatID)
	}
}

// commandArgs returns the whitespace-separated arguments after the command
// itself, e.g. "/ask 1 how?" yields ["1", "how?"].
func commandArgs(text string) []string {
	fields := strings.Fields(text)
	if len(fields) <= 1 {
		return nil
	}
	return fields[1:]
}

// withinLimit reports whether s is at most max characters long. Limits count
// characters, not bytes, matching the API's validation.
func withinLimit(s string, max int) bool {
	return utf8.RuneCountInString(s) <= max
}
