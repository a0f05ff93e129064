package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/wellnessbot/internal/config"
)

// NewStartHandler returns a handler for /start that sends the welcome text.
func NewStartHandler(deps HandlerDeps) bot.HandlerFunc {
	return staticHandler{deps: deps, name: "start", text: func(m config.MessagesConfig) string { return m.Welcome }}.Handle
}

// NewHelpHandler returns a handler for /help that lists the commands.
func NewHelpHandler(deps HandlerDeps) bot.HandlerFunc {
	return staticHandler{deps: deps, name: "help", text: func(m config.MessagesConfig) string { return m.Help }}.Handle
}

// staticHandler answers a command with a configured message.
type staticHandler struct {
	deps HandlerDeps
	name string
	text func(config.MessagesConfig) string
}

func (h staticHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", h.name)

	msg := update.Message
	if msg == nil || msg.From == nil {
		log.DebugContext(ctx, "Ignoring update with nil message or sender", "update_id", update.ID)
		return
	}

	log.DebugContext(ctx, "Sending static reply", "chat_id", msg.Chat.ID, "user_id", msg.From.ID)
	reply(ctx, b, log, msg.Chat.ID, withBotName(h.deps.Config, h.text(h.deps.Config.Messages)))
}

// withBotName fills the @botname placeholder once the bot's username is
// known.
func withBotName(cfg *config.Config, text string) string {
	if cfg.Telegram.BotInfo == nil || cfg.Telegram.BotInfo.Username == "" {
		return text
	}
	return strings.ReplaceAll(text, "@botname", "@"+cfg.Telegram.BotInfo.Username)
}
