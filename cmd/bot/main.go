// Package main is the entrypoint of the wellness bot: a Telegram bot and JSON
// HTTP API in front of a throttled, cached Gemini gateway.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/edgard/wellnessbot/internal/advice"
	"github.com/edgard/wellnessbot/internal/bot"
	"github.com/edgard/wellnessbot/internal/bot/handlers"
	"github.com/edgard/wellnessbot/internal/bot/tasks"
	"github.com/edgard/wellnessbot/internal/coach"
	"github.com/edgard/wellnessbot/internal/config"
	"github.com/edgard/wellnessbot/internal/database"
	"github.com/edgard/wellnessbot/internal/gemini"
	"github.com/edgard/wellnessbot/internal/httpapi"
	"github.com/edgard/wellnessbot/internal/logger"
	"github.com/edgard/wellnessbot/internal/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run wires every component, blocks until shutdown and returns the exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Log.Level, cfg.Log.JSON)
	log.Info("Logger initialized", "level", cfg.Log.Level, "json", cfg.Log.JSON)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	var upstream advice.Upstream
	if cfg.Gemini.APIKey == "" {
		log.Warn("Gemini API key is not set, advice requests will fail until it is configured")
	} else {
		client, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:         cfg.Gemini.APIKey,
			Temperature:    cfg.Gemini.Temperature,
			MaxOutputToken: cfg.Gemini.MaxOutputTokens,
			RequestTimeout: cfg.Gemini.RequestTimeout,
		}, log)
		if err != nil {
			log.Error("Failed to initialize Gemini client", "error", err)
			return 1
		}
		upstream = client
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	gateway := advice.New(advice.Config{
		APIKey:             cfg.Gemini.APIKey,
		Models:             cfg.Gemini.Models,
		MaxRetries:         cfg.Gemini.MaxRetries,
		RateLimitBackoff:   cfg.Gemini.RateLimitBackoff,
		MinRequestInterval: cfg.Gemini.MinRequestInterval,
		CacheTTL:           cfg.Gemini.CacheTTL,
		CacheMaxEntries:    cfg.Gemini.CacheMaxEntries,
		SystemInstruction:  cfg.Gemini.SystemInstruction,
		Metrics:            advice.NewMetrics(registry),
	}, upstream, log)
	log.Info("Advice gateway ready", "models", gateway.Roster(), "configured", gateway.Configured())

	svc := coach.NewService(gateway, store, log)

	var opts []bot.Option

	if cfg.Telegram.Enabled {
		tg, err := setupTelegram(ctx, cfg, log, handlers.HandlerDeps{
			Logger:  log,
			Config:  cfg,
			Coach:   svc,
			Stats:   store,
			Gateway: gateway,
		})
		if err != nil {
			log.Error("Failed to set up Telegram bot", "error", err)
			return 1
		}
		opts = append(opts, bot.WithTelegram(tg))
	}

	if cfg.HTTP.Enabled {
		router := httpapi.NewRouter(svc, store, httpapi.Config{
			RequestsPerSecond: cfg.HTTP.RequestsPerSecond,
			Burst:             cfg.HTTP.Burst,
			RequestTimeout:    cfg.Gemini.RequestTimeout * time.Duration(len(cfg.Gemini.Models)+1),
		}, registry, registry, log)
		opts = append(opts, bot.WithHTTPServer(httpapi.NewServer(cfg.HTTP.Addr, router), cfg.HTTP.ShutdownTimeout))
	}

	taskMap := tasks.RegisterAllTasks(tasks.TaskDeps{
		Logger: log,
		Store:  store,
		Cache:  gateway,
		Config: cfg,
	})
	sched, err := bot.NewScheduler(log, &cfg.Scheduler, taskMap)
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}
	opts = append(opts, bot.WithScheduler(sched))

	app := bot.NewBot(log, opts...)
	runErr := app.Run(ctx)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		return 1
	}

	log.Info("Bot stopped gracefully")
	return 0
}

func setupTelegram(ctx context.Context, cfg *config.Config, log *slog.Logger, deps handlers.HandlerDeps) (*tgbot.Bot, error) {
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log,
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(handlers.NewPrivateChatHandler(deps)),
	)
	if err != nil {
		return nil, err
	}

	cfg.Telegram.BotInfo, err = tg.GetMe(ctx)
	if err != nil {
		return nil, err
	}
	log.Info("Retrieved bot info", "bot_id", cfg.Telegram.BotInfo.ID, "bot_username", cfg.Telegram.BotInfo.Username)

	if _, err := telegram.RegisterHandlers(tg, log, handlers.RegisterAllCommands(deps)); err != nil {
		return nil, err
	}
	return tg, nil
}
