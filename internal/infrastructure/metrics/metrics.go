package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Classification outcomes
const (
	OutcomeMatched = "matched"
	OutcomeNone    = "none"
	OutcomeError   = "error"
)

// Metrics records classification counters and completion latency
type Metrics struct {
	classifications *prometheus.CounterVec
	completion      *prometheus.HistogramVec
	httpRequests    *prometheus.CounterVec
}

// New registers the collectors on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		classifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "classifier",
			Name:      "classifications_total",
			Help:      "Classification requests by dataset and outcome.",
		}, []string{"dataset", "outcome"}),
		completion: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "classifier",
			Name:      "completion_duration_seconds",
			Help:      "Latency of remote completion calls.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}, []string{"provider"}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "classifier",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "status"}),
	}
}

// ObserveClassification counts one classification outcome
func (m *Metrics) ObserveClassification(dataset, outcome string) {
	if m == nil {
		return
	}
	m.classifications.WithLabelValues(dataset, outcome).Inc()
}

// ObserveCompletion records the latency of one remote call
func (m *Metrics) ObserveCompletion(provider string, d time.Duration) {
	if m == nil {
		return
	}
	m.completion.WithLabelValues(provider).Observe(d.Seconds())
}

// ObserveHTTPRequest counts one served HTTP request
func (m *Metrics) ObserveHTTPRequest(route, status string) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, status).Inc()
}
