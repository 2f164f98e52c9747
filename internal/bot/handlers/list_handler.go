package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/friendbook/internal/botapi"
)

// NewListHandler returns a handler for the /list command.
func NewListHandler(deps HandlerDeps) bot.HandlerFunc {
	return listHandler{deps}.Handle
}

type listHandler struct {
	deps HandlerDeps
}

func (h listHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "list")

	if update.Message == nil {
		log.WarnContext(ctx, "List handler received update with nil message", "update_id", update.ID)
		return
	}
	chatID := update.Message.Chat.ID

	friends, err := h.deps.API.ListFriends(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Failed to list friends", "error", err, "chat_id", chatID)
		sendText(ctx, b, log, chatID, "❌ Could not load the friends list. Please try again later.")
		return
	}

	if len(friends) == 0 {
		sendText(ctx, b, log, chatID, "📭 The friends list is empty. Add the first one with /addfriend")
		return
	}

	var sb strings.Builder
	sb.WriteString("👥 Friends:\n\n")
	for _, friend := range friends {
		fmt.Fprintf(&sb, "🆔 ID: %d\n👤 Name: %s\n💼 Profession: %s\n", friend.ID, friend.Name, friend.Profession)
		if friend.ProfessionDescription != nil && *friend.ProfessionDescription != "" {
			fmt.Fprintf(&sb, "📝 Description: %s\n", *friend.ProfessionDescription)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("💡 Use /friend <id> for details")

	sendText(ctx, b, log, chatID, sb.String())
}

// formatFriendDetails renders a friend record for chat output.
func formatFriendDetails(friend *botapi.Friend) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "👤 %s\n\n🆔 ID: %d\n💼 Profession: %s\n", friend.Name, friend.ID, friend.Profession)
	if friend.ProfessionDescription != nil && *friend.ProfessionDescription != "" {
		fmt.Fprintf(&sb, "📝 Description: %s\n", *friend.ProfessionDescription)
	}
	return sb.String()
}
