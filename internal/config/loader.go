package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. WELLNESS_GEMINI_MODELS.
const EnvPrefix = "WELLNESS"

// LoadConfig builds the configuration from, in increasing precedence:
// built-in defaults, the YAML file at path, a .env file in the working
// directory, and WELLNESS_* environment variables. Missing files are skipped.
func LoadConfig(path string) (*Config, error) {
	return load(path, ".env")
}

func load(path, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("gemini.api_key", EnvPrefix+"_GEMINI_API_KEY", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind api key env: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.models", []string{"gemini-2.0-flash", "gemini-1.5-flash", "gemini-pro"})
	v.SetDefault("gemini.temperature", 0.7)
	v.SetDefault("gemini.max_output_tokens", 1024)
	v.SetDefault("gemini.max_retries", 1)
	v.SetDefault("gemini.rate_limit_backoff", time.Second)
	v.SetDefault("gemini.min_request_interval", 4*time.Second)
	v.SetDefault("gemini.cache_ttl", 5*time.Minute)
	v.SetDefault("gemini.cache_max_entries", 50)
	v.SetDefault("gemini.request_timeout", 60*time.Second)
	v.SetDefault("gemini.system_instruction", "")

	v.SetDefault("database.path", "wellness.db")
	v.SetDefault("database.suggestion_retention", 90*24*time.Hour)

	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.admin_user_id", 0)

	v.SetDefault("http.enabled", true)
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.requests_per_second", 2.0)
	v.SetDefault("http.burst", 5)
	v.SetDefault("http.shutdown_timeout", 10*time.Second)

	v.SetDefault("scheduler.tasks", map[string]any{
		"cache_purge":        map[string]any{"enabled": true, "schedule": "0 */5 * * * *"},
		"sql_maintenance":    map[string]any{"enabled": true, "schedule": "0 0 4 * * 0"},
		"suggestion_pruning": map[string]any{"enabled": true, "schedule": "0 30 3 * * *"},
	})

	v.SetDefault("messages.welcome", "Hi! I'm your wellness coach. Tell me about yourself with /set, then ask for /suggest or just send me a question.")
	v.SetDefault("messages.help", "Commands:\n/profile - show your profile (/profile clear deletes it)\n/set <field> <value> - update your profile (age, gender, height, weight, activity, sleep, budget)\n/suggest [general|diet|exercise|product|all] - personalized suggestions\n/ask <question> - ask a wellness question\n/history - your latest saved suggestions\n\nIn a private chat you can also just type your question.")
	v.SetDefault("messages.unauthorized", "You are not authorized to use this command.")
	v.SetDefault("messages.general_error", "Something went wrong. Please try again later.")
	v.SetDefault("messages.provide_question", "Please type a question, for example: /ask how much water should I drink?")
	v.SetDefault("messages.set_usage", "Usage: /set <field> <value>\nFields: age, gender, height, weight, activity, sleep, budget")
	v.SetDefault("messages.profile_updated", "Profile updated.")
	v.SetDefault("messages.no_profile", "You have no profile yet. Use /set to add your details.")
	v.SetDefault("messages.rate_limited_notice", "The coach is busy right now, so here is some saved advice:")
	v.SetDefault("messages.suggest_intent_usage", "Unknown topic. Choose one of: general, diet, exercise, product, all.")
}
