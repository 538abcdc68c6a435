package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yurixander/minimal/pkg/domain"
)

// Outcome label values.
const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeChanged = "changed"
)

// Metrics holds the shell's collectors on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	commands    *prometheus.CounterVec
	durations   *prometheus.HistogramVec
	events      *prometheus.CounterVec
	featureRuns *prometheus.CounterVec
	capExceeded prometheus.Counter
}

// NewMetrics creates and registers every collector.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "minimal_commands_total",
				Help: "Commands executed, by outcome.",
			},
			[]string{"command", "outcome"},
		),
		durations: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "minimal_command_duration_seconds",
				Help:    "Duration of command handlers.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"command"},
		),
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "minimal_events_total",
				Help: "Propagation passes, by the event processed.",
			},
			[]string{"event"},
		),
		featureRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "minimal_feature_calls_total",
				Help: "Feature listener calls, by outcome.",
			},
			[]string{"feature", "outcome"},
		),
		capExceeded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "minimal_iteration_cap_exceeded_total",
			Help: "Transitions stopped by the iteration cap.",
		}),
	}
	m.Registry.MustRegister(m.commands, m.durations, m.events, m.featureRuns, m.capExceeded)
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCommandEnd: func(_ context.Context, t *domain.CommandTrace) {
			outcome := OutcomeOK
			if t.Err != nil {
				outcome = OutcomeError
			}
			m.commands.WithLabelValues(t.Command, outcome).Inc()
			m.durations.WithLabelValues(t.Command).Observe(t.Duration.Seconds())
		},
		OnPass: func(_ context.Context, t *domain.PassTrace) {
			m.events.WithLabelValues(t.Event.String()).Inc()
		},
		OnFeatureReturn: func(_ context.Context, t *domain.FeatureTrace) {
			outcome := OutcomeOK
			switch {
			case t.Err != nil:
				outcome = OutcomeError
			case t.Changed:
				outcome = OutcomeChanged
			}
			m.featureRuns.WithLabelValues(t.Feature, outcome).Inc()
		},
		OnCapExceeded: func(context.Context, *domain.PassTrace) {
			m.capExceeded.Inc()
		},
	}
}
