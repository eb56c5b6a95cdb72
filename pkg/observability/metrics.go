package observability

import (
	"github.com/aretw0/replet/pkg/repl"
	"github.com/prometheus/client_golang/prometheus"
)

const outcomeOK = "ok"

// Metrics records loop activity in a private Prometheus registry.
type Metrics struct {
	registry   *prometheus.Registry
	dispatches *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	panics     *prometheus.CounterVec
	decisions  *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors under namespace (e.g. "replet").
func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		dispatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dispatch_total",
				Help:      "Total number of dispatched lines by command and outcome",
			},
			[]string{"command", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "dispatch_duration_seconds",
				Help:      "Duration of dispatches, handler included",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		panics: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "handler_panics_total",
				Help:      "Total number of recovered handler panics",
			},
			[]string{"command"},
		),
		decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "policy_decisions_total",
				Help:      "Policy decisions by error kind",
			},
			[]string{"kind", "decision"},
		),
	}
	m.registry.MustRegister(m.dispatches, m.duration, m.panics, m.decisions)
	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Hooks returns loop hooks feeding the collectors.
func (m *Metrics) Hooks() repl.Hooks {
	return repl.Hooks{
		OnDispatch: m.ObserveDispatch,
		OnDecision: m.ObserveDecision,
	}
}

// ObserveDispatch records one dispatch.
func (m *Metrics) ObserveDispatch(ev repl.DispatchEvent) {
	outcome := outcomeOK
	if ev.Err != nil {
		outcome = ev.Err.Kind.String()
	}
	command := ev.Command
	if command == "" {
		command = "unmatched"
	}

	m.dispatches.WithLabelValues(command, outcome).Inc()
	m.duration.WithLabelValues(outcome).Observe(ev.Duration.Seconds())
	if ev.Err != nil && ev.Err.Kind == repl.KindPanic {
		m.panics.WithLabelValues(command).Inc()
	}
}

// ObserveDecision records one policy decision.
func (m *Metrics) ObserveDecision(err *repl.Error, d repl.Decision) {
	m.decisions.WithLabelValues(err.Kind.String(), d.String()).Inc()
}
