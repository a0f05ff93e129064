package advice

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
)

// Request is one upstream completion request.
type Request struct {
	Model             string
	SystemInstruction string
	Prompt            string
}

// Upstream is the generative text service behind the gateway.
type Upstream interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Config configures a Gateway. Zero durations and sizes select the package
// defaults; MaxRetries is taken as given.
type Config struct {
	APIKey             string
	Models             []string
	MaxRetries         int
	RateLimitBackoff   time.Duration
	MinRequestInterval time.Duration
	CacheTTL           time.Duration
	CacheMaxEntries    int
	SystemInstruction  string

	// Clock and Metrics are optional.
	Clock   clockwork.Clock
	Metrics *Metrics
}

// Gateway is the single entry point to the upstream. One instance is shared
// by every request handler of the process.
type Gateway struct {
	upstream          Upstream
	configured        bool
	systemInstruction string
	cache             *Cache
	throttle          *Throttle
	controller        *Controller
	metrics           *Metrics
	log               *slog.Logger
}

// New creates a gateway. A missing API key or upstream is not an error here:
// every call then fails with a NotAuthorized error wrapping ErrNotConfigured.
func New(cfg Config, upstream Upstream, log *slog.Logger) *Gateway {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	log = log.With("component", "advice_gateway")

	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.SystemInstruction == "" {
		cfg.SystemInstruction = SystemInstruction
	}
	if cfg.MinRequestInterval == 0 {
		cfg.MinRequestInterval = DefaultMinRequestInterval
	}
	if cfg.RateLimitBackoff == 0 {
		cfg.RateLimitBackoff = DefaultRateLimitBackoff
	}

	throttle := NewThrottle(cfg.MinRequestInterval, cfg.Clock)
	return &Gateway{
		upstream:          upstream,
		configured:        cfg.APIKey != "" && upstream != nil,
		systemInstruction: cfg.SystemInstruction,
		cache:             NewCache(cfg.CacheTTL, cfg.CacheMaxEntries, cfg.Clock),
		throttle:          throttle,
		controller: NewController(cfg.Models, RetryPolicy{
			MaxRetries: cfg.MaxRetries,
			Backoff:    cfg.RateLimitBackoff,
		}, throttle, cfg.Clock, log, cfg.Metrics),
		metrics: cfg.Metrics,
		log:     log,
	}
}

// Configured reports whether an upstream credential is available.
func (g *Gateway) Configured() bool {
	return g.configured
}

// GenerateSuggestions returns personalized suggestions for intent. Unknown
// intents are served with the general template.
func (g *Gateway) GenerateSuggestions(ctx context.Context, profile UserContext, intent Intent) (string, error) {
	if !g.configured {
		return "", newError(KindNotAuthorized, MsgNotConfigured, ErrNotConfigured)
	}
	if !intent.Valid() {
		intent = IntentGeneral
	}

	key := "suggestions:" + string(intent) + ":" + profile.cacheKey()
	prompt := BuildPrompt(intent, profile.Describe(), profile.Budget)
	return g.generate(ctx, key, intent, prompt)
}

// AskQuestion answers a free-form question. Answers are cached by the
// normalized question text alone, so identical questions share one answer
// across profiles for the cache lifetime.
func (g *Gateway) AskQuestion(ctx context.Context, question string, profile UserContext) (string, error) {
	if !g.configured {
		return "", newError(KindNotAuthorized, MsgNotConfigured, ErrNotConfigured)
	}
	normalized := strings.ToLower(strings.TrimSpace(question))
	if normalized == "" {
		return "", ErrEmptyQuestion
	}

	key := "ask:" + normalized
	prompt := BuildQuestionPrompt(profile.Describe(), question)
	return g.generate(ctx, key, IntentQuestion, prompt)
}

func (g *Gateway) generate(ctx context.Context, key string, intent Intent, prompt string) (string, error) {
	if text, ok := g.cache.Get(key); ok {
		g.metrics.cacheLookup(true, g.cache.Len())
		g.log.DebugContext(ctx, "Cache hit", "intent", intent)
		return text, nil
	}
	g.metrics.cacheLookup(false, g.cache.Len())
	g.log.DebugContext(ctx, "Cache miss", "intent", intent)

	text, err := g.controller.Run(ctx, func(ctx context.Context, model string) (string, error) {
		return g.upstream.Generate(ctx, Request{
			Model:             model,
			SystemInstruction: g.systemInstruction,
			Prompt:            prompt,
		})
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", newError(KindUnknown, MsgUnexpectedFailure, fmt.Errorf("upstream returned empty text"))
	}

	g.cache.Put(key, text)
	g.metrics.cacheSize(g.cache.Len())
	return text, nil
}

// PurgeExpired drops expired cache entries and returns how many were removed.
func (g *Gateway) PurgeExpired() int {
	n := g.cache.Purge()
	g.metrics.cacheSize(g.cache.Len())
	return n
}

// CacheLen returns the number of cached responses.
func (g *Gateway) CacheLen() int {
	return g.cache.Len()
}

// Roster returns the model roster in preference order.
func (g *Gateway) Roster() []string {
	return g.controller.Roster()
}
