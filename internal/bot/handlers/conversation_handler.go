package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	session "github.com/edgard/friendbook/internal/bot"
	"github.com/edgard/friendbook/internal/botapi"
)

const (
	maxNameLength       = 255
	maxProfessionLength = 255
	skipKeyword         = "skip"
)

// NewConversationHandler returns the default handler that advances a user's
// add-friend conversation. Messages from users without an active session are
// ignored.
func NewConversationHandler(deps HandlerDeps) tgbot.HandlerFunc {
	return conversationHandler{deps}.Handle
}

type conversationHandler struct {
	deps HandlerDeps
}

func (h conversationHandler) Handle(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "conversation")

	if update.Message == nil || update.Message.From == nil {
		return
	}
	// Unmatched commands never advance a conversation step.
	if strings.HasPrefix(update.Message.Text, "/") {
		return
	}

	userID := update.Message.From.ID
	sess := h.deps.Sessions.Get(userID)
	if sess == nil {
		return
	}

	chatID := update.Message.Chat.ID
	log = log.With("user_id", userID, "state", sess.State.String())

	switch sess.State {
	case session.StatePhoto:
		h.handlePhotoStep(ctx, b, log, chatID, userID, sess, update.Message)
	case session.StateName:
		h.handleNameStep(ctx, b, log, chatID, userID, sess, update.Message)
	case session.StateProfession:
		h.handleProfessionStep(ctx, b, log, chatID, userID, sess, update.Message)
	case session.StateDescription:
		h.handleDescriptionStep(ctx, b, log, chatID, userID, sess, update.Message)
	default:
		log.WarnContext(ctx, "Session in unknown state, cancelling")
		h.deps.Sessions.Cancel(userID)
	}
}

func (h conversationHandler) handlePhotoStep(ctx context.Context, b *tgbot.Bot, log *slog.Logger, chatID, userID int64, sess *session.Session, msg *models.Message) {
	if len(msg.Photo) == 0 {
		return
	}

	best := bestPhotoSize(msg.Photo)
	path, err := downloadPhotoToTemp(ctx, b, h.deps.Config.Bot.Token, best.FileID)
	if err != nil {
		log.ErrorContext(ctx, "Photo download failed", "error", err, "file_id", best.FileID)
		sendText(ctx, b, log, chatID, "❌ Could not download the photo. Please send it again.")
		return
	}

	sess.PhotoPath = path
	sess.State = session.StateName
	h.deps.Sessions.Touch(userID)

	sendText(ctx, b, log, chatID, "✅ Photo received!\n\n👤 Step 2/4: Enter the friend's name")
}

func (h conversationHandler) handleNameStep(ctx context.Context, b *tgbot.Bot, log *slog.Logger, chatID, userID int64, sess *session.Session, msg *models.Message) {
	name := strings.TrimSpace(msg.Text)
	if name == "" || !withinLimit(name, maxNameLength) {
		sendText(ctx, b, log, chatID, "❌ The name must be between 1 and 255 characters. Try again:")
		return
	}

	sess.Name = name
	sess.State = session.StateProfession
	h.deps.Sessions.Touch(userID)

	sendText(ctx, b, log, chatID, fmt.Sprintf("✅ Name: %s\n\n💼 Step 3/4: Enter the friend's profession", name))
}

func (h conversationHandler) handleProfessionStep(ctx context.Context, b *tgbot.Bot, log *slog.Logger, chatID, userID int64, sess *session.Session, msg *models.Message) {
	profession := strings.TrimSpace(msg.Text)
	if profession == "" || !withinLimit(profession, maxProfessionLength) {
		sendText(ctx, b, log, chatID, "❌ The profession must be between 1 and 255 characters. Try again:")
		return
	}

	sess.Profession = profession
	sess.State = session.StateDescription
	h.deps.Sessions.Touch(userID)

	sendText(ctx, b, log, chatID, fmt.Sprintf(
		"✅ Profession: %s\n\n📝 Step 4/4: Enter a description of the profession (optional)\n\nOr type \"skip\"",
		profession))
}

func (h conversationHandler) handleDescriptionStep(ctx context.Context, b *tgbot.Bot, log *slog.Logger, chatID, userID int64, sess *session.Session, msg *models.Message) {
	// Non-text input (photos, stickers, voice) does not advance this step.
	// Omitting the description takes the explicit skip keyword.
	if msg.Text == "" {
		return
	}

	description := strings.TrimSpace(msg.Text)
	if strings.EqualFold(description, skipKeyword) {
		description = ""
	}
	sess.Description = description

	sendText(ctx, b, log, chatID, "⏳ Creating the friend...")

	friend, err := h.deps.API.CreateFriend(ctx, sess.Name, sess.Profession, sess.Description, sess.PhotoPath)

	// The photo file is no longer needed whether or not creation succeeded.
	if removeErr := os.Remove(sess.PhotoPath); removeErr != nil && !os.IsNotExist(removeErr) {
		log.WarnContext(ctx, "Failed to remove temporary photo", "path", sess.PhotoPath, "error", removeErr)
	}
	h.deps.Sessions.End(userID)

	if err != nil {
		log.ErrorContext(ctx, "Failed to create friend", "error", err)
		sendText(ctx, b, log, chatID, createFailureMessage(err))
		return
	}

	log.InfoContext(ctx, "Friend created", "friend_id", friend.ID)

	summary := fmt.Sprintf("✅ Friend created!\n\n🆔 ID: %d\n👤 Name: %s\n💼 Profession: %s\n",
		friend.ID, friend.Name, friend.Profession)
	if friend.ProfessionDescription != nil && *friend.ProfessionDescription != "" {
		summary += fmt.Sprintf("📝 Description: %s\n", *friend.ProfessionDescription)
	}

	sendText(ctx, b, log, chatID, summary)
	sendText(ctx, b, log, chatID, "💡 Use /list to see all friends")
}

// createFailureMessage includes the API's error detail when one is available.
func createFailureMessage(err error) string {
	var apiErr *botapi.APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("❌ Failed to create the friend:\n%s\n\nTry again with /addfriend", apiErr.Detail)
	}
	return "❌ Failed to create the friend.\n\nTry again with /addfriend"
}
