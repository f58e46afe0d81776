package trigger

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "firedoc"

// Outcome labels for the events counter.
const (
	OutcomeUpdated = "updated"
	OutcomeDryRun  = "dry_run"
	OutcomeError   = "error"
)

// Mode labels for the writes counter.
const (
	ModeLive   = "live"
	ModeDryRun = "dry_run"
)

// Metrics counts handled events.
type Metrics struct {
	Events  *prometheus.CounterVec
	Dropped prometheus.Counter
	Writes  *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them with reg when reg is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "events_total",
			Help:      "Document-change events handled, by outcome.",
		}, []string{"outcome"}),
		Dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "dropped_fields_total",
			Help:      "Tagged values dropped for carrying no recognized type tag.",
		}),
		Writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "writes_total",
			Help:      "Status writes, by mode.",
		}, []string{"mode"}),
	}
	if reg != nil {
		reg.MustRegister(m.Events, m.Dropped, m.Writes)
	}
	return m
}
