package advice

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records gateway activity. A nil *Metrics records nothing.
type Metrics struct {
	cacheRequests    *prometheus.CounterVec
	cacheEntries     prometheus.Gauge
	upstreamAttempts *prometheus.CounterVec
	throttleWait     prometheus.Histogram
}

// NewMetrics creates the gateway collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wellness",
			Subsystem: "advice",
			Name:      "cache_requests_total",
			Help:      "Response cache lookups by result.",
		}, []string{"result"}),
		cacheEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "wellness",
			Subsystem: "advice",
			Name:      "cache_entries",
			Help:      "Entries currently held by the response cache.",
		}),
		upstreamAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wellness",
			Subsystem: "advice",
			Name:      "upstream_attempts_total",
			Help:      "Upstream calls by model and outcome.",
		}, []string{"model", "outcome"}),
		throttleWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wellness",
			Subsystem: "advice",
			Name:      "throttle_wait_seconds",
			Help:      "Time spent waiting for the request throttle.",
			Buckets:   []float64{0, 0.5, 1, 2, 3, 4, 6, 8, 12, 20},
		}),
	}
	if reg != nil {
		reg.MustRegister(m.cacheRequests, m.cacheEntries, m.upstreamAttempts, m.throttleWait)
	}
	return m
}

func (m *Metrics) cacheLookup(hit bool, entries int) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheRequests.WithLabelValues(result).Inc()
	m.cacheEntries.Set(float64(entries))
}

func (m *Metrics) cacheSize(entries int) {
	if m == nil {
		return
	}
	m.cacheEntries.Set(float64(entries))
}

func (m *Metrics) attempt(model, outcome string) {
	if m == nil {
		return
	}
	m.upstreamAttempts.WithLabelValues(model, outcome).Inc()
}

func (m *Metrics) waited(seconds float64) {
	if m == nil {
		return
	}
	m.throttleWait.Observe(seconds)
}
