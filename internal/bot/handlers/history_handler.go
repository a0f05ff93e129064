package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/wellnessbot/internal/text"
)

const historyLimit = 5

// NewHistoryHandler returns a handler for /history, listing the latest saved
// suggestions of the sender.
func NewHistoryHandler(deps HandlerDeps) bot.HandlerFunc {
	return historyHandler{deps}.Handle
}

type historyHandler struct {
	deps HandlerDeps
}

func (h historyHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "history")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "History handler received update with nil message or sender", "update_id", update.ID)
		return
	}
	chatID, userID := update.Message.Chat.ID, update.Message.From.ID

	items, err := h.deps.Coach.History(ctx, userID, historyLimit)
	if err != nil {
		log.ErrorContext(ctx, "Failed to list suggestions", "error", err, "user_id", userID)
		reply(ctx, b, log, chatID, h.deps.Config.Messages.GeneralError)
		return
	}
	if len(items) == 0 {
		reply(ctx, b, log, chatID, "No saved suggestions yet. Try /suggest.")
		return
	}

	var sb strings.Builder
	for i, s := range items {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "%s (%s)\n%s", s.Title, s.CreatedAt.Format("2006-01-02"), text.Plain(s.Content))
	}
	reply(ctx, b, log, chatID, sb.String())
}
