package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/wellnessbot/internal/advice"
)

// NewAskHandler returns a handler for "/ask <question>".
func NewAskHandler(deps HandlerDeps) bot.HandlerFunc {
	return askHandler{deps: deps}.Handle
}

// NewPrivateChatHandler returns the default handler: plain text sent in a
// private chat is treated as a question. Everything else is ignored.
func NewPrivateChatHandler(deps HandlerDeps) bot.HandlerFunc {
	return askHandler{deps: deps, privateOnly: true}.Handle
}

type askHandler struct {
	deps        HandlerDeps
	privateOnly bool
}

func (h askHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "ask")

	msg := update.Message
	if msg == nil || msg.From == nil {
		log.DebugContext(ctx, "Ignoring update with nil message or sender", "update_id", update.ID)
		return
	}

	question := commandArgs(msg.Text)
	if h.privateOnly {
		if msg.Chat.Type != models.ChatTypePrivate || strings.HasPrefix(msg.Text, "/") {
			return
		}
		question = strings.TrimSpace(msg.Text)
	}
	chatID, userID := msg.Chat.ID, msg.From.ID
	msgs := h.deps.Config.Messages

	if question == "" {
		reply(ctx, b, log, chatID, msgs.ProvideQuestion)
		return
	}

	sendTyping(ctx, b, chatID)
	aiCtx, cancel := context.WithTimeout(ctx, aiProcessingTimeout)
	defer cancel()

	res, err := h.deps.Coach.Ask(aiCtx, userID, question)
	if err != nil {
		log.ErrorContext(ctx, "Question answering failed", "error", err, "user_id", userID, "kind", advice.KindOf(err))
		reply(ctx, b, log, chatID, errorText(err, msgs))
		return
	}

	log.InfoContext(ctx, "Answer sent", "user_id", userID, "rate_limited", res.RateLimited)
	reply(ctx, b, log, chatID, resultText(res, msgs))
}
