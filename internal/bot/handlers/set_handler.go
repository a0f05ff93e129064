package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewSetHandler returns a handler for "/set <field> <value>".
func NewSetHandler(deps HandlerDeps) bot.HandlerFunc {
	return setHandler{deps}.Handle
}

type setHandler struct {
	deps HandlerDeps
}

func (h setHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "set")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Set handler received update with nil message or sender", "update_id", update.ID)
		return
	}
	chatID, userID := update.Message.Chat.ID, update.Message.From.ID
	msgs := h.deps.Config.Messages

	field, value, ok := strings.Cut(commandArgs(update.Message.Text), " ")
	if !ok || strings.TrimSpace(value) == "" {
		reply(ctx, b, log, chatID, msgs.SetUsage)
		return
	}

	profile, err := h.deps.Coach.UpdateProfileField(ctx, userID, field, value)
	if err != nil {
		log.InfoContext(ctx, "Profile update rejected", "user_id", userID, "field", field, "error", err)
		reply(ctx, b, log, chatID, errorText(err, msgs))
		return
	}

	log.InfoContext(ctx, "Profile field updated", "user_id", userID, "field", field)
	reply(ctx, b, log, chatID, msgs.ProfileUpdated+"\n\n"+formatProfile(profile))
}
