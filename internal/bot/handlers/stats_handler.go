package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewStatsHandler returns a handler for the admin /stats command.
func NewStatsHandler(deps HandlerDeps) bot.HandlerFunc {
	return statsHandler{deps}.Handle
}

type statsHandler struct {
	deps HandlerDeps
}

func (h statsHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "stats")

	if update.Message == nil || update.Message.From == nil {
		log.ErrorContext(ctx, "Stats handler called with nil Message or From", "update_id", update.ID)
		return
	}
	chatID := update.Message.Chat.ID
	log.InfoContext(ctx, "Admin requested stats", "chat_id", chatID, "user_id", update.Message.From.ID)

	stats, err := h.deps.Stats.Stats(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load stats", "error", err)
		reply(ctx, b, log, chatID, h.deps.Config.Messages.GeneralError)
		return
	}

	text := fmt.Sprintf("Profiles: %d\nSuggestions: %d", stats.Profiles, stats.Suggestions)
	if h.deps.Gateway != nil {
		text += fmt.Sprintf("\nCached responses: %d\nModels: %s", h.deps.Gateway.CacheLen(), strings.Join(h.deps.Gateway.Roster(), ", "))
	}
	reply(ctx, b, log, chatID, text)
}
