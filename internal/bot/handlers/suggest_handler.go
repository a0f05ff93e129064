package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/wellnessbot/internal/advice"
)

// NewSuggestHandler returns a handler for "/suggest [intent]". Without an
// argument the general intent is used.
func NewSuggestHandler(deps HandlerDeps) bot.HandlerFunc {
	return suggestHandler{deps}.Handle
}

type suggestHandler struct {
	deps HandlerDeps
}

func (h suggestHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "suggest")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Suggest handler received update with nil message or sender", "update_id", update.ID)
		return
	}
	chatID, userID := update.Message.Chat.ID, update.Message.From.ID
	msgs := h.deps.Config.Messages

	intent := advice.IntentGeneral
	if arg := commandArgs(update.Message.Text); arg != "" {
		parsed, ok := advice.ParseIntent(arg)
		if !ok {
			reply(ctx, b, log, chatID, msgs.SuggestIntentUsage)
			return
		}
		intent = parsed
	}

	sendTyping(ctx, b, chatID)
	aiCtx, cancel := context.WithTimeout(ctx, aiProcessingTimeout)
	defer cancel()

	res, err := h.deps.Coach.Suggest(aiCtx, userID, intent)
	if err != nil {
		log.ErrorContext(ctx, "Suggestion generation failed", "error", err, "user_id", userID, "intent", intent, "kind", advice.KindOf(err))
		reply(ctx, b, log, chatID, errorText(err, msgs))
		return
	}

	log.InfoContext(ctx, "Suggestions sent", "user_id", userID, "intent", intent, "from_cache", res.FromCache, "rate_limited", res.RateLimited)
	reply(ctx, b, log, chatID, resultText(res, msgs))
}
