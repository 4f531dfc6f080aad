package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vidvault/ingestd/internal/domain"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	ItemsRefreshed  *prometheus.CounterVec
	RefreshFailed   *prometheus.CounterVec
	QueueDepth      *prometheus.GaugeVec
	IntakeRequested prometheus.Counter
	IntakeCreated   prometheus.Counter
}

// New registers all instruments with the given Prometheus registerer and
// returns the populated Metrics struct.
// Using a custom registry (instead of prometheus.DefaultRegisterer) keeps
// tests isolated and avoids global state.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ItemsRefreshed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "refresh_items_total",
			Help: "Total number of successfully refreshed entities.",
		}, []string{"type"}),

		RefreshFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "refresh_failed_total",
			Help: "Total number of entities whose refresh failed.",
		}, []string{"type"}),

		QueueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "refresh_queue_depth",
			Help: "Current number of entries waiting in a refresh queue.",
		}, []string{"type"}),

		IntakeRequested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "intake_requested_total",
			Help: "Total number of identifiers that survived intake dedup.",
		}),

		IntakeCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "intake_created_total",
			Help: "Total number of work items actually committed by intake.",
		}),
	}

	reg.MustRegister(
		m.ItemsRefreshed,
		m.RefreshFailed,
		m.QueueDepth,
		m.IntakeRequested,
		m.IntakeCreated,
	)

	return m
}

// WorkerHooks returns the callback pair expected by refresh.Hooks.
// Centralises the prometheus observation calls so the worker stays
// import-free.
func (m *Metrics) WorkerHooks() (onRefreshed, onFailed func(domain.EntityType)) {
	onRefreshed = func(t domain.EntityType) {
		m.ItemsRefreshed.WithLabelValues(string(t)).Inc()
	}
	onFailed = func(t domain.EntityType) {
		m.RefreshFailed.WithLabelValues(string(t)).Inc()
	}
	return
}

// ObserveIntake records the outcome of one intake pass.
func (m *Metrics) ObserveIntake(requested, created int) {
	m.IntakeRequested.Add(float64(requested))
	m.IntakeCreated.Add(float64(created))
}
