package observability

import (
	"context"

	"github.com/aretw0/accelerate/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics records engine activity as Prometheus metrics.
type Metrics struct {
	Steps        *prometheus.CounterVec
	StepDuration *prometheus.HistogramVec
	Runs         *prometheus.CounterVec
	Cursor       prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Steps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "accelerate_steps_total",
				Help: "Total number of motion steps applied",
			},
			[]string{"operation"},
		),
		StepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "accelerate_step_duration_seconds",
				Help:    "Duration of motion steps",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "accelerate_runs_total",
				Help: "Total number of runs by outcome",
			},
			[]string{"result"},
		),
		Cursor: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "accelerate_cursor",
				Help: "Last cursor reached by the engine",
			},
		),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{m.Steps, m.StepDuration, m.Runs, m.Cursor} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that feed the metrics.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStep: func(_ context.Context, e *domain.StepEvent) {
			op := e.Operation.Name()
			m.Steps.WithLabelValues(op).Inc()
			m.StepDuration.WithLabelValues(op).Observe(e.Duration.Seconds())
			m.Cursor.Set(float64(e.Status))
		},
		OnRunFinish: func(_ context.Context, e *domain.RunEvent) {
			result := ResultSuccess
			if e.Err != nil {
				result = ResultFailure
			}
			m.Runs.WithLabelValues(result).Inc()
			m.Cursor.Set(float64(e.Reached))
		},
	}
}
