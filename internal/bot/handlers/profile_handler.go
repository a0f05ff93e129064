package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewProfileHandler returns a handler for /profile. "/profile clear" deletes
// the stored profile.
func NewProfileHandler(deps HandlerDeps) bot.HandlerFunc {
	return profileHandler{deps}.Handle
}

type profileHandler struct {
	deps HandlerDeps
}

func (h profileHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "profile")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Profile handler received update with nil message or sender", "update_id", update.ID)
		return
	}
	chatID, userID := update.Message.Chat.ID, update.Message.From.ID
	msgs := h.deps.Config.Messages

	if strings.EqualFold(commandArgs(update.Message.Text), "clear") {
		deleted, err := h.deps.Coach.DeleteProfile(ctx, userID)
		switch {
		case err != nil:
			log.ErrorContext(ctx, "Failed to delete profile", "error", err, "user_id", userID)
			reply(ctx, b, log, chatID, msgs.GeneralError)
		case !deleted:
			reply(ctx, b, log, chatID, msgs.NoProfile)
		default:
			log.InfoContext(ctx, "Profile deleted", "user_id", userID)
			reply(ctx, b, log, chatID, "Your profile has been deleted.")
		}
		return
	}

	profile, err := h.deps.Coach.Profile(ctx, userID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load profile", "error", err, "user_id", userID)
		reply(ctx, b, log, chatID, msgs.GeneralError)
		return
	}
	if profile == nil {
		reply(ctx, b, log, chatID, msgs.NoProfile)
		return
	}
	reply(ctx, b, log, chatID, formatProfile(profile))
}
