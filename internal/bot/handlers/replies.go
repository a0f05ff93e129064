package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/wellnessbot/internal/advice"
	"github.com/edgard/wellnessbot/internal/coach"
	"github.com/edgard/wellnessbot/internal/config"
	"github.com/edgard/wellnessbot/internal/database"
	"github.com/edgard/wellnessbot/internal/text"
)

const (
	// maxMessageLength is Telegram's limit for a single text message.
	maxMessageLength    = 4096
	aiProcessingTimeout = 2 * time.Minute
)

// commandArgs returns the text after the leading /command (or
// /command@botname) token.
func commandArgs(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return text
	}
	_, rest, _ := strings.Cut(text, " ")
	return strings.TrimSpace(rest)
}

// splitMessage breaks text into chunks of at most limit runes, preferring to
// cut at a newline, then at a space.
func splitMessage(text string, limit int) []string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var chunks []string
	runes := []rune(text)
	for len(runes) > limit {
		cut := limit
		window := string(runes[:limit])
		if i := strings.LastIndex(window, "\n"); i > 0 {
			cut = utf8.RuneCountInString(window[:i])
		} else if i := strings.LastIndex(window, " "); i > 0 {
			cut = utf8.RuneCountInString(window[:i])
		}
		chunks = append(chunks, strings.TrimRight(string(runes[:cut]), " \n"))
		runes = []rune(strings.TrimLeft(string(runes[cut:]), " \n"))
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}

// reply sends text to chatID, split into as many messages as needed.
func reply(ctx context.Context, b *bot.Bot, log *slog.Logger, chatID int64, text string) {
	for _, chunk := range splitMessage(text, maxMessageLength) {
		if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: chunk}); err != nil {
			log.ErrorContext(ctx, "Failed to send message", "error", err, "chat_id", chatID)
			return
		}
	}
}

func sendTyping(ctx context.Context, b *bot.Bot, chatID int64) {
	_, _ = b.SendChatAction(ctx, &bot.SendChatActionParams{ChatID: chatID, Action: models.ChatActionTyping})
}

// errorText maps a failure to the text shown to the user.
func errorText(err error, msgs config.MessagesConfig) string {
	var classified *advice.Error
	switch {
	case errors.Is(err, advice.ErrEmptyQuestion):
		return msgs.ProvideQuestion
	case errors.Is(err, coach.ErrInvalidProfile):
		return strings.TrimPrefix(err.Error(), coach.ErrInvalidProfile.Error()+": ")
	case errors.As(err, &classified):
		return classified.Message
	default:
		return msgs.GeneralError
	}
}

// resultText renders advice as plain text, prefixed with a notice when it is
// substitute content served while the upstream was rate limited.
func resultText(res coach.Result, msgs config.MessagesConfig) string {
	content := text.Plain(res.Content)
	if res.RateLimited && msgs.RateLimitedNotice != "" {
		return msgs.RateLimitedNotice + "\n\n" + content
	}
	return content
}

// formatProfile renders a stored profile as one attribute per line.
func formatProfile(p *database.WellnessProfile) string {
	var lines []string
	add := func(label, value string) {
		lines = append(lines, fmt.Sprintf("%s: %s", label, value))
	}

	if p.Age.Valid {
		add("Age", fmt.Sprint(p.Age.Int64))
	}
	if p.Gender.Valid {
		add("Gender", p.Gender.String)
	}
	if p.HeightCm.Valid {
		add("Height", fmt.Sprintf("%g cm", p.HeightCm.Float64))
	}
	if p.WeightKg.Valid {
		add("Weight", fmt.Sprintf("%g kg", p.WeightKg.Float64))
	}
	if bmi, ok := coach.ToUserContext(p).BMI(); ok {
		add("BMI", fmt.Sprintf("%.1f", bmi))
	}
	if p.ActivityLevel.Valid {
		add("Activity", p.ActivityLevel.String)
	}
	if p.SleepGoal.Valid {
		add("Sleep goal", fmt.Sprintf("%d hours", p.SleepGoal.Int64))
	}
	if p.Budget.Valid {
		add("Budget", p.Budget.String)
	}

	if len(lines) == 0 {
		return "Your profile is empty. Use /set to add your details."
	}
	return "Your profile\n" + strings.Join(lines, "\n")
}
