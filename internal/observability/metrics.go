package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters for the ingestion pipeline and
// the recommendation surface.
type Metrics struct {
	PollsTotal        prometheus.Counter
	PollFailures      prometheus.Counter
	AlertsIngested    prometheus.Counter
	DuplicateAlerts   prometheus.Counter
	DangerousAlerts   prometheus.Counter
	ZonesCreated      *prometheus.CounterVec // labels: mode={circle,area}
	RecommendRequests prometheus.Counter
}

func newMetrics() *Metrics {
	return &Metrics{
		PollsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "safetynevi",
			Name:      "polls_total",
			Help:      "Total ingestion ticks attempted.",
		}),
		PollFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "safetynevi",
			Name:      "poll_failures_total",
			Help:      "Ticks that failed to fetch or parse the alert source.",
		}),
		AlertsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "safetynevi",
			Name:      "alerts_ingested_total",
			Help:      "New alert messages persisted.",
		}),
		DuplicateAlerts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "safetynevi",
			Name:      "duplicate_alerts_total",
			Help:      "Fetched messages discarded as exact repeats of the latest stored alert.",
		}),
		DangerousAlerts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "safetynevi",
			Name:      "dangerous_alerts_total",
			Help:      "Alerts the classifier flagged as DANGER.",
		}),
		ZonesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "safetynevi",
			Name:      "zones_created_total",
			Help:      "Disaster zones created, by representation mode.",
		}, []string{"mode"}),
		RecommendRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "safetynevi",
			Name:      "recommend_requests_total",
			Help:      "Shelter recommendation requests served.",
		}),
	}
}

// NewMetrics creates the metrics and registers them with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.PollsTotal,
		m.PollFailures,
		m.AlertsIngested,
		m.DuplicateAlerts,
		m.DangerousAlerts,
		m.ZonesCreated,
		m.RecommendRequests,
	)
	return m
}

// NewMetricsForTesting creates unregistered metrics to avoid
// "already registered" panics across tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
