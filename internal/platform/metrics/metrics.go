package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the onboarding pipeline.
type Metrics struct {
	RunsStarted       prometheus.Counter
	StageTransitions  *prometheus.CounterVec
	Submissions       *prometheus.CounterVec
	Verifications     *prometheus.CounterVec
	AutoLoginDegraded prometheus.Counter
	RemoteLatency     prometheus.Histogram
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		RunsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "enroll_runs_started_total",
			Help: "Total number of onboarding runs started",
		}),
		StageTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "enroll_stage_transitions_total",
			Help: "Stage transitions by destination state",
		}, []string{"to"}),
		Submissions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "enroll_submissions_total",
			Help: "Account-creation submissions by outcome",
		}, []string{"outcome"}),
		Verifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "enroll_verifications_total",
			Help: "One-time-code verifications by outcome",
		}, []string{"outcome"}),
		AutoLoginDegraded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "enroll_auto_login_degraded_total",
			Help: "Verifications where the silent login did not produce a session",
		}),
		RemoteLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "enroll_remote_call_duration_seconds",
			Help:    "Latency of account-service calls",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}),
	}
}

// NewNop returns an unregistered Metrics for tests, so test packages never
// fight over the default registry.
func NewNop() *Metrics {
	return &Metrics{
		RunsStarted: prometheus.NewCounter(prometheus.CounterOpts{Name: "nop_runs_started_total"}),
		StageTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nop_stage_transitions_total",
		}, []string{"to"}),
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nop_submissions_total",
		}, []string{"outcome"}),
		Verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nop_verifications_total",
		}, []string{"outcome"}),
		AutoLoginDegraded: prometheus.NewCounter(prometheus.CounterOpts{Name: "nop_auto_login_degraded_total"}),
		RemoteLatency:     prometheus.NewHistogram(prometheus.HistogramOpts{Name: "nop_remote_call_duration_seconds"}),
	}
}
