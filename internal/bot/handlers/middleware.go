// Package handlers contains the Telegram command and message handlers of the
// wellness bot, along with their registration and middleware.
package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// AdminOnly lets only the configured admin user through. Everyone else gets
// the unauthorized message. With no admin configured nobody passes.
func AdminOnly(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			if update.Message == nil || update.Message.From == nil {
				return
			}

			userID := update.Message.From.ID
			adminID := deps.Config.Telegram.AdminUserID
			if adminID != 0 && userID == adminID {
				next(ctx, b, update)
				return
			}

			chatID := update.Message.Chat.ID
			log := deps.Logger.With("middleware", "AdminOnly")
			log.WarnContext(ctx, "Unauthorized access attempt", "user_id", userID, "chat_id", chatID)
			if _, err := b.SendMessage(ctx, &tgbot.SendMessageParams{
				ChatID: chatID,
				Text:   deps.Config.Messages.Unauthorized,
			}); err != nil {
				log.ErrorContext(ctx, "Failed to send unauthorized message", "error", err, "chat_id", chatID)
			}
		}
	}
}
