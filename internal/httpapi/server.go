// Package httpapi exposes the coach service as a JSON HTTP API.
package httpapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/edgard/wellnessbot/internal/advice"
	"github.com/edgard/wellnessbot/internal/coach"
	"github.com/edgard/wellnessbot/internal/database"
)

// Service is the part of *coach.Service the API uses.
type Service interface {
	Suggest(ctx context.Context, userID int64, intent advice.Intent) (coach.Result, error)
	Ask(ctx context.Context, userID int64, question string) (coach.Result, error)
	Profile(ctx context.Context, userID int64) (*database.WellnessProfile, error)
	SaveProfile(ctx context.Context, userID int64, in coach.ProfileInput) (*database.WellnessProfile, error)
	DeleteProfile(ctx context.Context, userID int64) (bool, error)
	History(ctx context.Context, userID int64, limit int) ([]*database.Suggestion, error)
	RateSuggestion(ctx context.Context, userID, suggestionID int64, helpful bool) (bool, error)
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config configures the API.
type Config struct {
	// RequestsPerSecond and Burst limit each remote address. A zero rate
	// disables the limiter.
	RequestsPerSecond float64
	Burst             int
	// RequestTimeout bounds the advice endpoints.
	RequestTimeout time.Duration
}

const defaultRequestTimeout = 2 * time.Minute

type api struct {
	svc      Service
	db       Pinger
	validate *validator.Validate
	timeout  time.Duration
	log      *slog.Logger
}

// NewRouter builds the API router. Metrics of the router itself are
// registered with reg, and /metrics serves everything gathered by gatherer.
// reg and gatherer may be nil.
func NewRouter(svc Service, db Pinger, cfg Config, reg prometheus.Registerer, gatherer prometheus.Gatherer, log *slog.Logger) http.Handler {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	log = log.With("component", "http_api")

	a := &api{
		svc:      svc,
		db:       db,
		validate: validator.New(),
		timeout:  cfg.RequestTimeout,
		log:      log,
	}
	if a.timeout <= 0 {
		a.timeout = defaultRequestTimeout
	}

	r := mux.NewRouter()
	r.Use(requestID, logRequests(log), newMetrics(reg).middleware)
	if cfg.RequestsPerSecond > 0 {
		r.Use(newClientLimiter(cfg.RequestsPerSecond, cfg.Burst, log).middleware)
	}

	r.HandleFunc("/healthz", a.health).Methods(http.MethodGet)
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	v1 := r.PathPrefix("/v1/users/{userID:[0-9]+}").Subrouter()
	v1.HandleFunc("/profile", a.getProfile).Methods(http.MethodGet)
	v1.HandleFunc("/profile", a.putProfile).Methods(http.MethodPut)
	v1.HandleFunc("/profile", a.deleteProfile).Methods(http.MethodDelete)
	v1.HandleFunc("/suggestions", a.createSuggestion).Methods(http.MethodPost)
	v1.HandleFunc("/suggestions", a.listSuggestions).Methods(http.MethodGet)
	v1.HandleFunc("/suggestions/{suggestionID:[0-9]+}/feedback", a.rateSuggestion).Methods(http.MethodPut)
	v1.HandleFunc("/questions", a.askQuestion).Methods(http.MethodPost)

	// A subrouter does not hand method mismatches back to its parent, so both
	// routers carry the JSON fallbacks.
	for _, router := range []*mux.Router{r, v1} {
		router.NotFoundHandler = http.HandlerFunc(notFound)
		router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
	}
	return r
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, "not found")
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// NewServer wraps handler in an http.Server listening on addr.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
