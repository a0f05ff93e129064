// Package config loads and validates the application configuration.
package config

import (
	"time"

	"github.com/go-telegram/bot/models"
)

// Config is the root configuration structure.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Messages  MessagesConfig  `mapstructure:"messages"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// GeminiConfig configures the upstream client and the advice gateway in front
// of it. An empty APIKey is accepted; the gateway then refuses every call.
type GeminiConfig struct {
	APIKey             string        `mapstructure:"api_key"`
	Models             []string      `mapstructure:"models" validate:"required,min=1,dive,required"`
	Temperature        float32       `mapstructure:"temperature" validate:"min=0,max=2"`
	MaxOutputTokens    int32         `mapstructure:"max_output_tokens" validate:"min=0"`
	MaxRetries         int           `mapstructure:"max_retries" validate:"min=0,max=10"`
	RateLimitBackoff   time.Duration `mapstructure:"rate_limit_backoff" validate:"min=0s,max=1m"`
	MinRequestInterval time.Duration `mapstructure:"min_request_interval" validate:"min=0s,max=1m"`
	CacheTTL           time.Duration `mapstructure:"cache_ttl" validate:"min=1s,max=24h"`
	CacheMaxEntries    int           `mapstructure:"cache_max_entries" validate:"min=1,max=100000"`
	RequestTimeout     time.Duration `mapstructure:"request_timeout" validate:"min=1s,max=10m"`
	SystemInstruction  string        `mapstructure:"system_instruction"`
}

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	Path                string        `mapstructure:"path" validate:"required"`
	SuggestionRetention time.Duration `mapstructure:"suggestion_retention" validate:"min=1h"`
}

// TelegramConfig configures the Telegram transport.
type TelegramConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Token       string `mapstructure:"token" validate:"required_if=Enabled true"`
	AdminUserID int64  `mapstructure:"admin_user_id" validate:"min=0"`

	// BotInfo is filled at startup from getMe.
	BotInfo *models.User `mapstructure:"-"`
}

// HTTPConfig configures the JSON API listener.
type HTTPConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	Addr              string        `mapstructure:"addr" validate:"required_if=Enabled true"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" validate:"gt=0"`
	Burst             int           `mapstructure:"burst" validate:"min=1"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" validate:"min=1s,max=1m"`
}

// SchedulerConfig maps task names to their schedules.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

// TaskConfig configures one scheduled task. Schedule is a cron expression
// with an optional seconds field.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}

// MessagesConfig holds user-facing Telegram texts.
type MessagesConfig struct {
	Welcome            string `mapstructure:"welcome" validate:"required"`
	Help               string `mapstructure:"help" validate:"required"`
	Unauthorized       string `mapstructure:"unauthorized" validate:"required"`
	GeneralError       string `mapstructure:"general_error" validate:"required"`
	ProvideQuestion    string `mapstructure:"provide_question" validate:"required"`
	SetUsage           string `mapstructure:"set_usage" validate:"required"`
	ProfileUpdated     string `mapstructure:"profile_updated" validate:"required"`
	NoProfile          string `mapstructure:"no_profile" validate:"required"`
	RateLimitedNotice  string `mapstructure:"rate_limited_notice" validate:"required"`
	SuggestIntentUsage string `mapstructure:"suggest_intent_usage" validate:"required"`
}
