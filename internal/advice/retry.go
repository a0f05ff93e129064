package advice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

// Defaults for the retry controller.
const (
	DefaultMaxRetries       = 1
	DefaultRateLimitBackoff = time.Second
)

// DefaultModels is the model roster, most preferred first.
var DefaultModels = []string{"gemini-2.0-flash", "gemini-1.5-flash", "gemini-pro"}

// CallFunc performs one upstream attempt against the named model.
type CallFunc func(ctx context.Context, model string) (string, error)

// RetryPolicy bounds the work done for one request.
type RetryPolicy struct {
	// MaxRetries is the number of extra attempts allowed after a rate limit.
	MaxRetries int
	// Backoff is the fixed pause before a rate-limit retry.
	Backoff time.Duration
}

// Controller runs a request across the model roster. Every attempt passes the
// throttle first. A missing model moves the request to the next roster entry
// without spending a retry; a rate limit is retried on the current model after
// a fixed pause until MaxRetries is spent; anything else ends the request.
type Controller struct {
	roster   []string
	policy   RetryPolicy
	throttle *Throttle
	clock    clockwork.Clock
	log      *slog.Logger
	metrics  *Metrics
}

// NewController creates a retry controller. An empty roster selects
// DefaultModels.
func NewController(roster []string, policy RetryPolicy, throttle *Throttle, clock clockwork.Clock, log *slog.Logger, metrics *Metrics) *Controller {
	if len(roster) == 0 {
		roster = DefaultModels
	}
	if policy.MaxRetries < 0 {
		policy.MaxRetries = 0
	}
	if policy.Backoff < 0 {
		policy.Backoff = DefaultRateLimitBackoff
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if throttle == nil {
		throttle = NewThrottle(DefaultMinRequestInterval, clock)
	}
	return &Controller{
		roster:   append([]string(nil), roster...),
		policy:   policy,
		throttle: throttle,
		clock:    clock,
		log:      log,
		metrics:  metrics,
	}
}

// Roster returns a copy of the configured model roster.
func (c *Controller) Roster() []string {
	return append([]string(nil), c.roster...)
}

// Run executes call until it succeeds or the failure is terminal. Failures are
// returned as *Error; a cancelled ctx is returned wrapped as is.
func (c *Controller) Run(ctx context.Context, call CallFunc) (string, error) {
	modelIdx := 0
	retries := 0

	for attempt := 1; ; attempt++ {
		waited, err := c.throttle.Wait(ctx)
		if err != nil {
			return "", fmt.Errorf("waiting for request throttle: %w", err)
		}
		c.metrics.waited(waited.Seconds())

		model := c.roster[modelIdx]
		text, err := call(ctx, model)
		if err == nil {
			c.metrics.attempt(model, "success")
			c.log.DebugContext(ctx, "Upstream call succeeded", "model", model, "attempt", attempt)
			return text, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			c.metrics.attempt(model, "cancelled")
			return "", fmt.Errorf("upstream call abandoned: %w", err)
		}

		classified := Classify(err)
		c.metrics.attempt(model, classified.Kind.String())
		c.log.WarnContext(ctx, "Upstream call failed",
			"model", model,
			"attempt", attempt,
			"kind", classified.Kind.String(),
			"error", err)

		switch {
		case classified.Kind == KindModelUnavailable && modelIdx+1 < len(c.roster):
			modelIdx++
			c.log.InfoContext(ctx, "Model unavailable, falling back", "from", model, "to", c.roster[modelIdx])
			continue

		case classified.Retryable && retries < c.policy.MaxRetries:
			retries++
			c.log.InfoContext(ctx, "Rate limited, retrying",
				"retry", retries,
				"max_retries", c.policy.MaxRetries,
				"delay", c.policy.Backoff)
			if err := c.sleep(ctx, c.policy.Backoff); err != nil {
				return "", fmt.Errorf("waiting to retry: %w", err)
			}
			continue
		}

		c.log.ErrorContext(ctx, "Upstream call failed permanently",
			"model", model,
			"attempts", attempt,
			"kind", classified.Kind.String(),
			"error", err)
		return "", classified
	}
}

func (c *Controller) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := c.clock.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.Chan():
		return nil
	}
}
