package observability

import (
	"context"

	"github.com/aretw0/fieldsweep/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors of a sweep.
type Metrics struct {
	Points        *prometheus.CounterVec
	Pauses        prometheus.Counter
	SolverSeconds prometheus.Histogram
	LastCompleted prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Points: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fieldsweep_points_total",
				Help: "Solver attempts by outcome",
			},
			[]string{"outcome"},
		),
		Pauses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fieldsweep_pauses_total",
			Help: "Times the sweep paused for a replacement input",
		}),
		SolverSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fieldsweep_solver_duration_seconds",
			Help:    "Wall time of solver runs",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10), // 1s .. ~3d
		}),
		LastCompleted: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fieldsweep_last_completed_index",
			Help: "Index of the last point that completed, -1 for none",
		}),
	}
	m.LastCompleted.Set(-1)
	reg.MustRegister(m.Points, m.Pauses, m.SolverSeconds, m.LastCompleted)
	return m
}

// Hooks returns lifecycle hooks that update the metrics.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			if e.To == domain.StatusPausedForInput {
				m.Pauses.Inc()
			}
		},
		OnPointDone: func(ctx context.Context, e *domain.PointEvent) {
			if e.Outcome == domain.OutcomePaused {
				return
			}
			m.Points.WithLabelValues(string(e.Outcome)).Inc()
			if e.Outcome != domain.OutcomeLaunchError {
				m.SolverSeconds.Observe(e.Duration.Seconds())
			}
			if e.Outcome == domain.OutcomeSucceeded {
				m.LastCompleted.Set(float64(e.Index))
			}
		},
	}
}
