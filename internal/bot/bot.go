// Package bot orchestrates the long-running components of the wellness bot:
// the Telegram listener, the HTTP API server and the task scheduler.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	tgbot "github.com/go-telegram/bot"
	"golang.org/x/sync/errgroup"
)

const defaultShutdownTimeout = 10 * time.Second

// Bot runs the configured components until its context is cancelled or one
// of them fails.
type Bot struct {
	logger          *slog.Logger
	tgBot           *tgbot.Bot
	httpServer      *http.Server
	scheduler       *Scheduler
	shutdownTimeout time.Duration
}

// Option configures a Bot.
type Option func(*Bot)

// WithTelegram runs b as the Telegram listener.
func WithTelegram(b *tgbot.Bot) Option {
	return func(o *Bot) { o.tgBot = b }
}

// WithHTTPServer serves srv until shutdown, allowing timeout for in-flight
// requests to finish.
func WithHTTPServer(srv *http.Server, timeout time.Duration) Option {
	return func(o *Bot) {
		o.httpServer = srv
		if timeout > 0 {
			o.shutdownTimeout = timeout
		}
	}
}

// WithScheduler runs s alongside the other components.
func WithScheduler(s *Scheduler) Option {
	return func(o *Bot) { o.scheduler = s }
}

// NewBot creates the orchestrator. Components not passed as options are not
// started.
func NewBot(logger *slog.Logger, opts ...Option) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Bot{
		logger:          logger.With("component", "bot_orchestrator"),
		shutdownTimeout: defaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run starts every configured component and blocks until ctx is cancelled
// or a component stops with an error.
func (b *Bot) Run(ctx context.Context) error {
	if b.tgBot == nil && b.httpServer == nil {
		return fmt.Errorf("no transport configured: enable telegram or http")
	}

	b.logger.Info("Starting bot orchestrator")
	g, gCtx := errgroup.WithContext(ctx)

	if b.tgBot != nil {
		g.Go(func() error { return b.runTelegram(gCtx) })
	}
	if b.httpServer != nil {
		g.Go(func() error { return b.runHTTP(gCtx) })
	}
	if b.scheduler != nil {
		g.Go(func() error { return b.runScheduler(gCtx) })
	}

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot orchestrator stopped gracefully")
	return nil
}

func (b *Bot) runTelegram(ctx context.Context) error {
	b.logger.Info("Starting Telegram bot listener")
	b.tgBot.Start(ctx)
	b.logger.Info("Telegram bot listener stopped")

	if ctx.Err() == nil {
		return fmt.Errorf("telegram listener stopped unexpectedly")
	}
	return nil
}

func (b *Bot) runHTTP(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		b.logger.Info("Starting HTTP server", "addr", b.httpServer.Addr)
		errCh <- b.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	b.logger.Info("Shutdown signal received, stopping HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), b.shutdownTimeout)
	defer cancel()
	if err := b.httpServer.Shutdown(shutdownCtx); err != nil {
		b.logger.Error("Error shutting down HTTP server", "error", err)
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}

func (b *Bot) runScheduler(ctx context.Context) error {
	if err := b.scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	<-ctx.Done()
	b.logger.Info("Shutdown signal received, stopping scheduler")
	if err := b.scheduler.Stop(); err != nil {
		b.logger.Error("Error stopping scheduler", "error", err)
	}
	return nil
}
