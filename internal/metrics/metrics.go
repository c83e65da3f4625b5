// Package metrics provides Prometheus metrics collection for the credit risk service.
// It defines the assessment, per-model inference and registry metrics that are
// exposed via the Prometheus metrics endpoint for monitoring and alerting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry model states.
const (
	StateLoaded   = "loaded"
	StateFailed   = "failed"
	StateRejected = "rejected"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Assessment metrics
	AssessmentsTotal        prometheus.Counter     // Completed assessments
	AssessmentFailuresTotal prometheus.Counter     // Assessments rejected or without predictions
	AssessmentLatency       prometheus.Histogram   // End-to-end assessment latency
	MeanRepayProbability    prometheus.Histogram   // Distribution of soft-vote repay probabilities
	VerdictsTotal           *prometheus.CounterVec // Verdicts by risk category

	// Model metrics
	ModelInferencesTotal *prometheus.CounterVec   // Successful per-model inferences
	ModelFailuresTotal   *prometheus.CounterVec   // Failed per-model inferences
	ModelLatency         *prometheus.HistogramVec // Per-model inference latency
	VotingLatency        prometheus.Histogram     // Fan-out/fan-in latency of one vote

	// Registry metrics
	RegistryModels *prometheus.GaugeVec // Configured models by load state
}

// New creates and registers all Prometheus metrics using the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics with a custom registry (useful for testing).
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		AssessmentsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "assessments_total",
			Help: "Total number of completed credit assessments",
		}),
		AssessmentFailuresTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "assessment_failures_total",
			Help: "Total number of assessments that produced no verdict",
		}),
		AssessmentLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "assessment_latency_seconds",
			Help:    "Credit assessment latency in seconds (end-to-end)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}),
		MeanRepayProbability: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "mean_repay_probability",
			Help:    "Distribution of soft-vote mean repayment probabilities",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
		VerdictsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "verdicts_total",
			Help: "Total number of verdicts by risk category",
		}, []string{"category"}),
		ModelInferencesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "model_inferences_total",
			Help: "Total number of successful model inferences",
		}, []string{"model"}),
		ModelFailuresTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "model_failures_total",
			Help: "Total number of failed model inferences",
		}, []string{"model"}),
		ModelLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "model_latency_seconds",
			Help:    "Model inference latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 15),
		}, []string{"model"}),
		VotingLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "voting_latency_seconds",
			Help:    "Soft-vote latency across all models in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 15),
		}),
		RegistryModels: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "registry_models",
			Help: "Number of configured models by load state",
		}, []string{"state"}),
	}
}

// SetRegistryState publishes the outcome of model loading.
func (m *Metrics) SetRegistryState(loaded, failed, rejected int) {
	m.RegistryModels.WithLabelValues(StateLoaded).Set(float64(loaded))
	m.RegistryModels.WithLabelValues(StateFailed).Set(float64(failed))
	m.RegistryModels.WithLabelValues(StateRejected).Set(float64(rejected))
}
