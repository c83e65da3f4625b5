package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"credit-risk/internal/assess"
	"credit-risk/internal/ml"
)

var (
	_ ml.MetricsInterface     = (*MetricsWrapper)(nil)
	_ assess.MetricsInterface = (*MetricsWrapper)(nil)
)

func TestNewWrapper(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewWithRegistry(registry)
	wrapper := NewWrapper(metrics)

	if wrapper == nil {
		t.Fatal("NewWrapper returned nil")
	}
	if wrapper.m != metrics {
		t.Error("Wrapper does not contain correct metrics instance")
	}
}

func TestMetricsWrapper_ModelCounters(t *testing.T) {
	metrics := NewWithRegistry(prometheus.NewRegistry())
	wrapper := NewWrapper(metrics)

	wrapper.ModelInferenceInc("MLP")
	wrapper.ModelInferenceInc("MLP")
	wrapper.ModelInferenceInc("SVM")
	wrapper.ModelFailureInc("SVM")

	if v := testutil.ToFloat64(metrics.ModelInferencesTotal.WithLabelValues("MLP")); v != 2 {
		t.Errorf("Expected 2 MLP inferences, got %f", v)
	}
	if v := testutil.ToFloat64(metrics.ModelInferencesTotal.WithLabelValues("SVM")); v != 1 {
		t.Errorf("Expected 1 SVM inference, got %f", v)
	}
	if v := testutil.ToFloat64(metrics.ModelFailuresTotal.WithLabelValues("SVM")); v != 1 {
		t.Errorf("Expected 1 SVM failure, got %f", v)
	}
}

func TestMetricsWrapper_AssessmentCounters(t *testing.T) {
	metrics := NewWithRegistry(prometheus.NewRegistry())
	wrapper := NewWrapper(metrics)

	wrapper.AssessmentInc()
	wrapper.AssessmentFailureInc()
	wrapper.AssessmentFailureInc()
	wrapper.VerdictInc("high")

	if v := testutil.ToFloat64(metrics.AssessmentsTotal); v != 1 {
		t.Errorf("Expected 1 assessment, got %f", v)
	}
	if v := testutil.ToFloat64(metrics.AssessmentFailuresTotal); v != 2 {
		t.Errorf("Expected 2 failures, got %f", v)
	}
	if v := testutil.ToFloat64(metrics.VerdictsTotal.WithLabelValues("high")); v != 1 {
		t.Errorf("Expected 1 high verdict, got %f", v)
	}
}

func TestMetricsWrapper_Histograms(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewWithRegistry(registry)
	wrapper := NewWrapper(metrics)

	wrapper.AssessmentLatencyObserve(0.02)
	wrapper.MeanRepayObserve(0.8)
	wrapper.ModelLatencyObserve("MLP", 0.001)
	wrapper.VotingLatencyObserve(0.003)

	for _, name := range []string{
		"assessment_latency_seconds",
		"mean_repay_probability",
		"model_latency_seconds",
		"voting_latency_seconds",
	} {
		count, err := testutil.GatherAndCount(registry, name)
		if err != nil {
			t.Fatalf("gather %s: %v", name, err)
		}
		if count != 1 {
			t.Errorf("Expected one %s series, got %d", name, count)
		}
	}
}

func TestSetRegistryState(t *testing.T) {
	metrics := NewWithRegistry(prometheus.NewRegistry())
	metrics.SetRegistryState(3, 1, 1)

	testCases := []struct {
		state string
		want  float64
	}{
		{StateLoaded, 3},
		{StateFailed, 1},
		{StateRejected, 1},
	}
	for _, tc := range testCases {
		if v := testutil.ToFloat64(metrics.RegistryModels.WithLabelValues(tc.state)); v != tc.want {
			t.Errorf("state %s: expected %f, got %f", tc.state, tc.want, v)
		}
	}
}

func TestNewWithRegistry_DuplicateRegistrationPanics(t *testing.T) {
	registry := prometheus.NewRegistry()
	NewWithRegistry(registry)

	defer func() {
		if recover() == nil {
			t.Error("Expected panic when registering metrics twice on one registry")
		}
	}()
	NewWithRegistry(registry)
}
